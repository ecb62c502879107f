package router

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mkulima/pkg/logging"
	"mkulima/pkg/middleware"
)

// Controllers groups the handlers mounted by New.
type Controllers struct {
	Farmer interface {
		Register(echo.Context) error
		Login(echo.Context) error
		Logout(echo.Context) error
		WhoAmI(echo.Context) error
	}
	Process interface {
		Evaluate(echo.Context) error
		EvaluateAndSave(echo.Context) error
		Record(echo.Context) error
		List(echo.Context) error
		Export(echo.Context) error
		Recommend(echo.Context) error
	}
	Feedback interface {
		Submit(echo.Context) error
		List(echo.Context) error
	}
	Advice interface {
		Weather(echo.Context) error
		Chat(echo.Context) error
		Diagnose(echo.Context) error
	}
	KB interface {
		IngestText(echo.Context) error
		IngestURL(echo.Context) error
		Search(echo.Context) error
		Docs(echo.Context) error
	}
	USSD interface {
		Callback(echo.Context) error
		Interpret(echo.Context) error
	}
	Health interface{ Health(echo.Context) error }
}

// New mounts every route on e. gatherer backs /metrics; staticDir may be
// empty.
func New(e *echo.Echo, log *zap.Logger, gatherer prometheus.Gatherer, staticDir string, h Controllers) *echo.Echo {
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(logging.Requests(log))
	e.Use(middleware.FarmerSession())

	e.GET("/health", h.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// feature-phone gateway
	e.POST("/ussd", h.USSD.Callback)

	api := e.Group("/api")
	api.POST("/register", h.Farmer.Register)
	api.POST("/login", h.Farmer.Login)
	api.POST("/logout", h.Farmer.Logout)
	api.GET("/whoami", h.Farmer.WhoAmI)

	api.POST("/session", h.USSD.Interpret)

	api.POST("/process-eval", h.Process.Evaluate)
	api.POST("/process-eval-save", h.Process.EvaluateAndSave)
	api.POST("/processes", h.Process.Record)
	api.GET("/processes", h.Process.List)
	api.GET("/get-processes", h.Process.List)
	api.GET("/processes/export", h.Process.Export)
	api.POST("/ml-recommend", h.Process.Recommend)

	api.GET("/weather", h.Advice.Weather)
	api.POST("/chat", h.Advice.Chat)
	api.POST("/diagnose-symptoms", h.Advice.Diagnose)

	fb := api.Group("/feedback", middleware.RequireFarmer())
	fb.POST("", h.Feedback.Submit)
	fb.GET("", h.Feedback.List)

	api.POST("/kb/ingest", h.KB.IngestText)
	api.POST("/kb/ingest/url", h.KB.IngestURL)
	api.GET("/kb/search", h.KB.Search)
	api.GET("/kb/docs", h.KB.Docs)

	if staticDir != "" {
		e.Static("/", staticDir)
	}
	return e
}
