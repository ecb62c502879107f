package controller

import "github.com/labstack/echo/v4"

// AdviceController serves the read-only helpers of the rich client.
type AdviceController interface {
	Weather(c echo.Context) error
	Chat(c echo.Context) error
	Diagnose(c echo.Context) error
}
