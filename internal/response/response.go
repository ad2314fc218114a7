// Package response writes the JSON envelope shared by every endpoint:
// {status, message, data?}.  The HTTP status always mirrors the status field.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Body is the response envelope.
type Body struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes an envelope with the given status.
func JSON(c echo.Context, status int, message string, data any) error {
	if message == "" {
		message = http.StatusText(status)
	}
	return c.JSON(status, Body{Status: status, Message: message, Data: data})
}

// OK is a 200 envelope.
func OK(c echo.Context, message string, data any) error {
	return JSON(c, http.StatusOK, message, data)
}

// Created is a 201 envelope.
func Created(c echo.Context, message string, data any) error {
	return JSON(c, http.StatusCreated, message, data)
}

// Fail writes an envelope without data.
func Fail(c echo.Context, status int, message string) error {
	return JSON(c, status, message, nil)
}

func BadRequest(c echo.Context, message string) error {
	return Fail(c, http.StatusBadRequest, message)
}

func Unauthorized(c echo.Context, message string) error {
	return Fail(c, http.StatusUnauthorized, message)
}

func Forbidden(c echo.Context, message string) error {
	return Fail(c, http.StatusForbidden, message)
}

func NotFound(c echo.Context, message string) error {
	return Fail(c, http.StatusNotFound, message)
}

// HTTPErrorHandler renders errors escaping the handlers (unknown routes,
// wrong methods, oversized bodies) in the envelope instead of echo's
// default {"message": ...} shape.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	message := http.StatusText(status)
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(status)
		}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = Fail(c, status, message)
}
