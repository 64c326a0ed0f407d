package http

import (
	"errors"
	"net/http"

	apperrors "user-service/pkg/errors"

	"github.com/labstack/echo/v4"
)

const (
	jsonKeyErrorCode = "error_code"
	jsonKeyBadParams = "bad_params"
	msgInternalError = "INTERNAL SERVER ERROR"
)

// CustomHTTPErrorHandler handles errors that escape handlers and middleware.
// Handlers answer most failures themselves; this covers routing errors and
// any stray error return, mapping sentinels to statuses and making sure
// internals never leak.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := msgInternalError
	var badParams map[string]string

	var httpErr *echo.HTTPError
	var validationErr *apperrors.ValidationError

	switch {
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	case errors.As(err, &validationErr):
		code = http.StatusBadRequest
		message = "INVALID PARAMETERS"
		badParams = validationErr.Fields
	case errors.Is(err, apperrors.ErrNotFound):
		code = http.StatusNotFound
		message = "NOT FOUND"
	case errors.Is(err, apperrors.ErrUnauthorized):
		code = http.StatusUnauthorized
		message = "UNAUTHORIZED"
	case errors.Is(err, apperrors.ErrForbidden), errors.Is(err, apperrors.ErrInsufficientPerms):
		code = http.StatusForbidden
		message = "FORBIDDEN"
	case errors.Is(err, apperrors.ErrBadRequest), errors.Is(err, apperrors.ErrValidation):
		code = http.StatusBadRequest
		message = "BAD REQUEST"
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrEmailExists):
		code = http.StatusConflict
		message = "CONFLICT"
	case errors.Is(err, apperrors.ErrUpstream):
		code = http.StatusInternalServerError
	}

	if code >= 500 {
		c.Logger().Errorf("internal error (status %d): %v", code, err)
		// Don't expose internal errors to clients
		message = msgInternalError
	}

	body := map[string]interface{}{jsonKeyErrorCode: message}
	if badParams != nil {
		body[jsonKeyBadParams] = badParams
	}

	if err := c.JSON(code, body); err != nil {
		c.Logger().Error(err)
	}
}
