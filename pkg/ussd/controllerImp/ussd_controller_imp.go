package controllerImp

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"mkulima/pkg/session"
	"mkulima/pkg/ussd/controller"
)

// Interpreter is satisfied by *session.Interpreter.
type Interpreter interface {
	Interpret(ctx context.Context, trail string) session.Response
}

type ussdCtrl struct {
	s   Interpreter
	log *zap.Logger
}

func New(s Interpreter, log *zap.Logger) controller.USSDController {
	return &ussdCtrl{s: s, log: log}
}

// prefix maps a disposition onto the gateway's reply convention.
func prefix(st session.Status) string {
	if st == session.Terminal {
		return "END "
	}
	return "CON "
}

func (h *ussdCtrl) Callback(c echo.Context) error {
	trail := c.FormValue("text")
	out := h.s.Interpret(c.Request().Context(), trail)
	h.log.Debug("ussd turn",
		zap.String("session_id", c.FormValue("sessionId")),
		zap.String("service_code", c.FormValue("serviceCode")),
		zap.String("status", string(out.Status)))
	return c.String(http.StatusOK, prefix(out.Status)+out.Text)
}

func (h *ussdCtrl) Interpret(c echo.Context) error {
	var body struct {
		Trail string `json:"trail" form:"trail" query:"trail"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "bad request"})
	}
	return c.JSON(http.StatusOK, h.s.Interpret(c.Request().Context(), body.Trail))
}
