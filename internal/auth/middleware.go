package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "user-service/pkg/errors"

	"github.com/labstack/echo/v4"
)

// Authorizer resolves a bearer token into a credential. Satisfied by
// *AuthorityClient; declared here so tests can stub the authority.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*Credential, error)
}

type Middleware struct {
	authority Authorizer
}

func NewMiddleware(authority Authorizer) *Middleware {
	return &Middleware{authority: authority}
}

// Authenticate gates every resource route. A request without a bearer token
// is terminated before the authority is ever invoked. The authority's own
// rejections are forwarded verbatim; outages and malformed answers surface
// as a generic 500 so upstream internals never reach the client.
func (m *Middleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearerToken(c)
			if token == "" {
				return respondError(c, http.StatusUnauthorized, msgMissingToken)
			}

			cred, err := m.authority.Authorize(c.Request().Context(), token)
			if err != nil {
				var rejection *RejectionError
				if errors.As(err, &rejection) {
					return respondError(c, rejection.Status, rejection.ErrorCode)
				}

				c.Logger().Errorf("authority call failed: %v", err)
				return respondError(c, http.StatusInternalServerError, msgAuthUnavailable)
			}

			c.Set(ContextKeyCredential, cred)

			return next(c)
		}
	}
}

func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(headerAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != bearerScheme {
		return ""
	}

	return parts[1]
}

// GetCredential extracts the credential the gate attached to the request
// context. Handlers treat a missing credential as a denial in its own right
// rather than assuming the gate ran.
func GetCredential(c echo.Context) (*Credential, error) {
	raw := c.Get(ContextKeyCredential)
	if raw == nil {
		return nil, apperrors.Unauthorized(msgCredentialNotFound)
	}

	cred, ok := raw.(*Credential)
	if !ok {
		return nil, apperrors.InternalServer(msgInvalidCredentialCtx, nil)
	}

	return cred, nil
}

func respondError(c echo.Context, status int, code string) error {
	return c.JSON(status, map[string]string{jsonKeyErrorCode: code})
}
