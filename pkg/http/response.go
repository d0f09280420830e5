package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

const internalErrorMessage = "An unexpected internal server error occurred."

// JSONResponse writes data with the given status.
func JSONResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, data)
}

// ErrorResponse writes {"error": message} with status.
func ErrorResponse(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorBody{Error: message})
}

// AppErrorResponse writes an AppError as {"error": ...}; anything else becomes a generic 500.
func AppErrorResponse(c echo.Context, err error) error {
	status, message := ErrorStatus(err)
	return ErrorResponse(c, status, message)
}

// ErrorStatus returns the status and client-facing message AppErrorResponse
// would write for err.
func ErrorStatus(err error) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status, appErr.Message
	}
	return http.StatusInternalServerError, internalErrorMessage
}
