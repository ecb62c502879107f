package controller

import "github.com/labstack/echo/v4"

type ProcessController interface {
	Evaluate(c echo.Context) error
	EvaluateAndSave(c echo.Context) error
	Record(c echo.Context) error
	List(c echo.Context) error
	Export(c echo.Context) error
	Recommend(c echo.Context) error
}
