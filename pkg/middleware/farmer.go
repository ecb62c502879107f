package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	// CookieName carries the logged-in farmer id for the web client.
	CookieName = "FARMER_ID"
	headerName = "X-Farmer-Id"
	contextKey = "farmer_id"
)

// FarmerSession reads the farmer id from the login cookie or the
// X-Farmer-Id header and stores it on the context. Anonymous requests pass.
func FarmerSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(headerName))
			if id == "" {
				if ck, err := c.Cookie(CookieName); err == nil {
					id = strings.TrimSpace(ck.Value)
				}
			}
			if id != "" {
				c.Set(contextKey, id)
			}
			return next(c)
		}
	}
}

// RequireFarmer rejects requests that carry no farmer id. Mount it after
// FarmerSession.
func RequireFarmer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if FarmerID(c) == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "please log in first"})
			}
			return next(c)
		}
	}
}

// FarmerID returns the id stored by FarmerSession, or "".
func FarmerID(c echo.Context) string {
	id, _ := c.Get(contextKey).(string)
	return id
}

// SetFarmer writes the login cookie.
func SetFarmer(c echo.Context, id string) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})
	c.Set(contextKey, id)
}

// ClearFarmer expires the login cookie.
func ClearFarmer(c echo.Context) {
	c.SetCookie(&http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1})
}
