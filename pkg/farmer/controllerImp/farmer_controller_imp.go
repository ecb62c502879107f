package controllerImp

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"mkulima/pkg/apperr"
	"mkulima/pkg/farmer/controller"
	"mkulima/pkg/farmer/service"
	"mkulima/pkg/middleware"
)

type farmerCtrl struct{ s service.FarmerService }

func New(s service.FarmerService) controller.FarmerController { return &farmerCtrl{s} }

func fail(c echo.Context, err error) error {
	code, body := apperr.Response(err)
	return c.JSON(code, body)
}

// first returns the first non-empty value among keys; ids and land sizes may
// arrive as JSON numbers.
func first(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func (h *farmerCtrl) Register(c echo.Context) error {
	body := map[string]any{}
	if err := c.Bind(&body); err != nil {
		return fail(c, apperr.Invalid("bad json"))
	}
	f, err := h.s.Register(c.Request().Context(), service.Registration{
		FarmerID:        first(body, "farmers_id"),
		FullName:        first(body, "fullName", "full_name"),
		Contact:         first(body, "contact"),
		LandSize:        first(body, "land_size"),
		SoilType:        first(body, "soil_type"),
		Password:        first(body, "password"),
		ConfirmPassword: first(body, "confirmPassword", "confirm_password"),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Farmer registered successfully", "farmer": f, "redirectTo": "/home"})
}

func (h *farmerCtrl) Login(c echo.Context) error {
	body := map[string]any{}
	if err := c.Bind(&body); err != nil {
		return fail(c, apperr.Invalid("bad json"))
	}
	f, err := h.s.Login(c.Request().Context(), first(body, "farmers_id"), first(body, "password"))
	if err != nil {
		return fail(c, err)
	}
	middleware.SetFarmer(c, f.FarmerID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Login successful", "farmers_id": f.FarmerID, "redirectTo": "/home"})
}

func (h *farmerCtrl) Logout(c echo.Context) error {
	middleware.ClearFarmer(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

func (h *farmerCtrl) WhoAmI(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"farmers_id": middleware.FarmerID(c)})
}
