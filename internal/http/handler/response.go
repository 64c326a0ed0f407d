package handler

import (
	"errors"
	"net/http"

	"user-service/internal/authz"
	apperrors "user-service/pkg/errors"

	"github.com/labstack/echo/v4"
)

func respondError(c echo.Context, status int, code string) error {
	return c.JSON(status, map[string]string{jsonKeyErrorCode: code})
}

func respondBadParams(c echo.Context, fields map[string]string) error {
	return c.JSON(http.StatusBadRequest, map[string]interface{}{
		jsonKeyErrorCode: msgInvalidParams,
		jsonKeyBadParams: fields,
	})
}

// respondDenial maps a policy denial to its response status. 401 is reserved
// strictly for a missing credential; every valid-credential denial is 403.
func respondDenial(c echo.Context, decision authz.Decision) error {
	if decision.Reason == authz.ReasonMissingCredential {
		return respondError(c, http.StatusUnauthorized, msgMissingCredentials)
	}
	return respondError(c, http.StatusForbidden, msgInsufficientAccess)
}

// respondStoreError reclassifies store failures into the response taxonomy.
// Raw store errors never reach the client.
func respondStoreError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return respondError(c, http.StatusNotFound, msgUserNotFound)
	case errors.Is(err, apperrors.ErrConflict):
		return respondError(c, http.StatusConflict, msgEmailAlreadyExists)
	default:
		c.Logger().Errorf("store operation failed: %v", err)
		return respondError(c, http.StatusInternalServerError, msgInternalError)
	}
}
