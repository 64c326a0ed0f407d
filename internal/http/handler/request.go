package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"user-service/internal/domain/user"
	"user-service/internal/repository"
	apperrors "user-service/pkg/errors"

	"github.com/labstack/echo/v4"
)

const (
	contentTypeJSON          = "application/json"
	maxStrictBodyBytes int64 = 1 << 20 // Keep parser bound aligned with global body limit.
)

func bindStrictJSON(c echo.Context, dst interface{}) error {
	if !strings.HasPrefix(strings.ToLower(c.Request().Header.Get(echo.HeaderContentType)), contentTypeJSON) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, msgContentTypeJSONRequired)
	}

	body := io.LimitReader(c.Request().Body, maxStrictBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequestBody)
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequestBody)
	}

	return nil
}

// parseListQuery translates list query parameters into a store query.
// Unknown sort columns and malformed values are rejected with a field
// breakdown rather than silently ignored.
func parseListQuery(c echo.Context, defaultLimit int) (repository.ListUsersQuery, error) {
	query := repository.ListUsersQuery{Limit: defaultLimit}
	bad := map[string]string{}

	if raw := c.QueryParam("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			bad["active"] = "must be boolean"
		} else {
			query.Active = &v
		}
	}

	if raw := c.QueryParam("email_confirmed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			bad["email_confirmed"] = "must be boolean"
		} else {
			query.EmailConfirmed = &v
		}
	}

	if raw := c.QueryParam("access_level"); raw != "" {
		level := user.AccessLevel(raw)
		if !level.Valid() {
			bad["access_level"] = "must be BASIC, ADMIN, SYS_ADMIN"
		} else {
			query.AccessLevel = &level
		}
	}

	if raw := c.QueryParam("email"); raw != "" {
		email := raw
		query.Email = &email
	}

	if raw := c.QueryParam("sort"); raw != "" {
		query.SortBy = strings.TrimPrefix(raw, "-")
		query.SortDesc = strings.HasPrefix(raw, "-")
	}

	if raw := c.QueryParam("skip"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			bad["skip"] = "must be a non-negative integer"
		} else {
			query.Skip = v
		}
	}

	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			bad["limit"] = "must be a positive integer"
		} else {
			query.Limit = v
		}
	}

	if len(bad) > 0 {
		return query, apperrors.Validation(bad)
	}

	return query, nil
}
