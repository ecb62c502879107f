package controllerImp

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"mkulima/pkg/advice/controller"
	"mkulima/pkg/ai"
	"mkulima/pkg/apperr"
	"mkulima/pkg/climate"
	"mkulima/pkg/diagnosis"
	"mkulima/pkg/weather"
)

type Diagnoser interface {
	Diagnose(ctx context.Context, symptoms string) (*diagnosis.Result, error)
}

type adviceCtrl struct {
	wx    weather.Lookup
	rules climate.RulesEngine
	chat  ai.Client
	diag  Diagnoser
}

func New(wx weather.Lookup, rules climate.RulesEngine, chat ai.Client, diag Diagnoser) controller.AdviceController {
	return &adviceCtrl{wx: wx, rules: rules, chat: chat, diag: diag}
}

func fail(c echo.Context, err error) error {
	code, body := apperr.Response(err)
	return c.JSON(code, body)
}

func (h *adviceCtrl) Weather(c echo.Context) error {
	cond, err := h.wx.Current(c.Request().Context(), c.QueryParam("city"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"weather":    cond,
		"suggestion": h.rules.Suggest(cond.Temperature, cond.Humidity, cond.WindSpeed),
	})
}

func text(c echo.Context, key string) (string, error) {
	body := map[string]any{}
	if err := c.Bind(&body); err != nil {
		return "", apperr.Invalid("bad json")
	}
	s, _ := body[key].(string)
	if s = strings.TrimSpace(s); s == "" {
		return "", apperr.MissingFields(key)
	}
	return s, nil
}

func (h *adviceCtrl) Chat(c echo.Context) error {
	msg, err := text(c, "message")
	if err != nil {
		return fail(c, err)
	}
	reply, err := h.chat.Chat(c.Request().Context(), msg)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"reply": reply})
}

func (h *adviceCtrl) Diagnose(c echo.Context) error {
	symptoms, err := text(c, "symptoms")
	if err != nil {
		return fail(c, err)
	}
	res, err := h.diag.Diagnose(c.Request().Context(), symptoms)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
