package controllerImp

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"mkulima/pkg/apperr"
	"mkulima/pkg/kb/controller"
	"mkulima/pkg/kb/service"
)

type KBCtrl struct{ s service.KBService }

func New(s service.KBService) controller.KBController { return &KBCtrl{s: s} }

type ingestReq struct {
	Title     string `json:"title"`
	Tags      string `json:"tags"`
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
	URL       string `json:"url"`
}

func fail(c echo.Context, err error) error {
	code, body := apperr.Response(err)
	return c.JSON(code, body)
}

func (h *KBCtrl) IngestText(c echo.Context) error {
	var req ingestReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Invalid("bad json"))
	}
	doc, n, err := h.s.Ingest(c.Request().Context(), req.Title, req.Tags, req.Text, req.SourceURL)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"doc": doc, "chunks": n})
}

func (h *KBCtrl) IngestURL(c echo.Context) error {
	var req ingestReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Invalid("bad json"))
	}
	if strings.TrimSpace(req.URL) == "" {
		return fail(c, apperr.MissingFields("url"))
	}
	doc, n, err := h.s.IngestURL(c.Request().Context(), req.URL, req.Title, req.Tags)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"doc": doc, "chunks": n})
}

func (h *KBCtrl) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return fail(c, apperr.MissingFields("q"))
	}
	k := 6
	if v, err := strconv.Atoi(c.QueryParam("k")); err == nil && v > 0 && v <= 50 {
		k = v
	}
	hits, err := h.s.Search(c.Request().Context(), q, k)
	if err != nil {
		return fail(c, err)
	}
	if hits == nil {
		hits = []service.Hit{}
	}
	return c.JSON(http.StatusOK, hits)
}

func (h *KBCtrl) Docs(c echo.Context) error {
	docs, err := h.s.Docs(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, docs)
}
