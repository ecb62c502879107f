package controllerImp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"mkulima/pkg/apperr"
	"mkulima/pkg/evaluation"
	"mkulima/pkg/middleware"
	"mkulima/pkg/process/controller"
	"mkulima/pkg/process/service"
	"mkulima/pkg/reading"
	"mkulima/pkg/stage"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ProcessCtrl struct {
	svc service.ProcessService
	rec evaluation.Recommender
}

func New(svc service.ProcessService, rec evaluation.Recommender) controller.ProcessController {
	return &ProcessCtrl{svc: svc, rec: rec}
}

func fail(c echo.Context, err error) error {
	code, body := apperr.Response(err)
	return c.JSON(code, body)
}

func bind(c echo.Context) (map[string]any, error) {
	body := map[string]any{}
	if err := c.Bind(&body); err != nil {
		return nil, apperr.Invalid("bad json")
	}
	return body, nil
}

func text(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return ""
}

func readings(body map[string]any) (reading.Set, error) {
	vals, err := reading.FromAny(body)
	if err != nil {
		return reading.Set{}, err
	}
	return reading.ToSet(vals)
}

// event reads the identity fields; the logged-in farmer fills a missing id.
func event(c echo.Context, body map[string]any) (service.Event, error) {
	ev := service.Event{
		FarmerID:    text(body, "farmers_id"),
		Crop:        text(body, "crop"),
		ProcessType: text(body, "process_type"),
	}
	if ev.FarmerID == "" {
		ev.FarmerID = middleware.FarmerID(c)
	}
	if d := text(body, "process_date"); d != "" {
		t, err := service.ParseDate(d)
		if err != nil {
			return ev, err
		}
		ev.Date = t
	}
	return ev, ev.Validate()
}

func resultView(res *evaluation.Result) echo.Map {
	return echo.Map{
		"crop":              res.Crop,
		"stage":             res.Stage,
		"prediction":        res.Prediction(),
		"suitable":          res.Suitable,
		"suitability_score": res.Score,
		"threshold":         res.Threshold,
		"flags":             res.Flags,
		"advice":            res.Advice,
	}
}

// Evaluate accepts an explicit stage or a process type to map.
func (h *ProcessCtrl) Evaluate(c echo.Context) error {
	body, err := bind(c)
	if err != nil {
		return fail(c, err)
	}
	stg := text(body, "stage")
	if pt := text(body, "process_type"); stg == "" && pt != "" {
		stg = stage.Map(pt)
	}
	set, err := readings(body)
	if err != nil {
		return fail(c, err)
	}
	res, err := h.svc.Evaluate(c.Request().Context(), text(body, "crop"), stg, set)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, resultView(res))
}

func (h *ProcessCtrl) EvaluateAndSave(c echo.Context) error {
	body, err := bind(c)
	if err != nil {
		return fail(c, err)
	}
	ev, err := event(c, body)
	if err != nil {
		return fail(c, err)
	}
	set, err := readings(body)
	if err != nil {
		return fail(c, err)
	}
	p, res, err := h.svc.EvaluateAndSave(c.Request().Context(), ev, set)
	if err != nil {
		return fail(c, err)
	}
	out := resultView(res)
	out["ok"] = true
	out["saved_id"] = p.ProcessID
	return c.JSON(http.StatusOK, out)
}

// Record saves a bare event.
func (h *ProcessCtrl) Record(c echo.Context) error {
	body, err := bind(c)
	if err != nil {
		return fail(c, err)
	}
	ev, err := event(c, body)
	if err != nil {
		return fail(c, err)
	}
	p, err := h.svc.Record(c.Request().Context(), ev)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"ok": true, "saved_id": p.ProcessID, "process": p})
}

func farmerParam(c echo.Context) (string, error) {
	id := strings.TrimSpace(c.QueryParam("farmers_id"))
	if id == "" {
		id = middleware.FarmerID(c)
	}
	if id == "" {
		return "", apperr.MissingFields("farmers_id")
	}
	return id, nil
}

func (h *ProcessCtrl) List(c echo.Context) error {
	id, err := farmerParam(c)
	if err != nil {
		return fail(c, err)
	}
	list, err := h.svc.List(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"processes": list})
}

func (h *ProcessCtrl) Export(c echo.Context) error {
	id, err := farmerParam(c)
	if err != nil {
		return fail(c, err)
	}
	var buf bytes.Buffer
	if err := h.svc.Export(c.Request().Context(), id, &buf); err != nil {
		return fail(c, err)
	}
	name := "processes-" + id + "-" + time.Now().Format("20060102") + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, xlsxType, buf.Bytes())
}

// Recommend suggests a crop from the seven readings alone.
func (h *ProcessCtrl) Recommend(c echo.Context) error {
	body, err := bind(c)
	if err != nil {
		return fail(c, err)
	}
	set, err := readings(body)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.rec.Recommend(c.Request().Context(), set)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
