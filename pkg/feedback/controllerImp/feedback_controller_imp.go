package controllerImp

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"mkulima/pkg/apperr"
	"mkulima/pkg/feedback/controller"
	"mkulima/pkg/feedback/service"
	"mkulima/pkg/middleware"
)

type feedbackCtrl struct{ s service.FeedbackService }

func New(s service.FeedbackService) controller.FeedbackController { return &feedbackCtrl{s} }

// status accepts true/false or "true"/"false".
func status(v any) *bool {
	var b bool
	switch x := v.(type) {
	case bool:
		b = x
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		b = strings.EqualFold(strings.TrimSpace(x), "true")
	default:
		return nil
	}
	return &b
}

// Submit records feedback for the logged-in farmer. Mount behind
// middleware.RequireFarmer.
func (h *feedbackCtrl) Submit(c echo.Context) error {
	body := map[string]any{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad request"})
	}
	comment, _ := body["comment"].(string)
	f, err := h.s.Submit(c.Request().Context(), service.Entry{
		FarmerID: middleware.FarmerID(c),
		Status:   status(body["status"]),
		Comment:  comment,
		Channel:  service.ChannelWeb,
	})
	if err != nil {
		code, body := apperr.Response(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Feedback submitted successfully", "feedbackId": f.ID})
}

func (h *feedbackCtrl) List(c echo.Context) error {
	list, err := h.s.List(c.Request().Context(), middleware.FarmerID(c))
	if err != nil {
		code, body := apperr.Response(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, echo.Map{"feedback": list})
}
