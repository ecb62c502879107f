package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"mkulima/pkg/middleware"
)

// stub answers every handler with its own name.
type stub struct{}

func named(name string) echo.HandlerFunc {
	return func(c echo.Context) error { return c.String(http.StatusOK, name) }
}

func (stub) Register(c echo.Context) error        { return named("register")(c) }
func (stub) Login(c echo.Context) error           { return named("login")(c) }
func (stub) Logout(c echo.Context) error          { return named("logout")(c) }
func (stub) WhoAmI(c echo.Context) error          { return named("whoami")(c) }
func (stub) Evaluate(c echo.Context) error        { return named("evaluate")(c) }
func (stub) EvaluateAndSave(c echo.Context) error { return named("evaluate_save")(c) }
func (stub) Record(c echo.Context) error          { return named("record")(c) }
func (stub) List(c echo.Context) error            { return named("list")(c) }
func (stub) Export(c echo.Context) error          { return named("export")(c) }
func (stub) Recommend(c echo.Context) error       { return named("recommend")(c) }
func (stub) Submit(c echo.Context) error          { return named("submit")(c) }
func (stub) Weather(c echo.Context) error         { return named("weather")(c) }
func (stub) Chat(c echo.Context) error            { return named("chat")(c) }
func (stub) Diagnose(c echo.Context) error        { return named("diagnose")(c) }
func (stub) IngestText(c echo.Context) error      { return named("ingest")(c) }
func (stub) IngestURL(c echo.Context) error       { return named("ingest_url")(c) }
func (stub) Search(c echo.Context) error          { return named("search")(c) }
func (stub) Docs(c echo.Context) error            { return named("docs")(c) }
func (stub) Callback(c echo.Context) error        { return named("ussd")(c) }
func (stub) Interpret(c echo.Context) error       { return named("session")(c) }
func (stub) Health(c echo.Context) error          { return named("health")(c) }

func newRouter() *echo.Echo {
	s := stub{}
	return New(echo.New(), zap.NewNop(), prometheus.NewRegistry(), "", Controllers{
		Farmer: s, Process: s, Feedback: s, Advice: s, KB: s, USSD: s, Health: s,
	})
}

func serve(e *echo.Echo, method, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	e := newRouter()
	cases := []struct{ method, path, want string }{
		{http.MethodGet, "/health", "health"},
		{http.MethodPost, "/ussd", "ussd"},
		{http.MethodPost, "/api/session", "session"},
		{http.MethodPost, "/api/register", "register"},
		{http.MethodPost, "/api/login", "login"},
		{http.MethodPost, "/api/process-eval", "evaluate"},
		{http.MethodPost, "/api/process-eval-save", "evaluate_save"},
		{http.MethodPost, "/api/processes", "record"},
		{http.MethodGet, "/api/get-processes", "list"},
		{http.MethodGet, "/api/processes/export", "export"},
		{http.MethodPost, "/api/ml-recommend", "recommend"},
		{http.MethodGet, "/api/weather", "weather"},
		{http.MethodPost, "/api/chat", "chat"},
		{http.MethodPost, "/api/diagnose-symptoms", "diagnose"},
		{http.MethodGet, "/api/kb/search", "search"},
	}
	for _, tc := range cases {
		rec := serve(e, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, tc.path)
		assert.Equal(t, tc.want, rec.Body.String(), tc.path)
	}
}

func TestFeedbackNeedsLogin(t *testing.T) {
	e := newRouter()

	rec := serve(e, http.MethodPost, "/api/feedback", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodPost, "/api/feedback", &http.Cookie{Name: middleware.CookieName, Value: "F100"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "submit", rec.Body.String())
}

func TestMetrics(t *testing.T) {
	rec := serve(newRouter(), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
