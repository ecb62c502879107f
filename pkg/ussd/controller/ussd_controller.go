package controller

import "github.com/labstack/echo/v4"

type USSDController interface {
	// Callback serves the telecom gateway: form fields in, CON/END text out.
	Callback(c echo.Context) error
	// Interpret runs one trail for the rich client as JSON.
	Interpret(c echo.Context) error
}
