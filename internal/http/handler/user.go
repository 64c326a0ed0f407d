package handler

import (
	"errors"
	"net/http"

	"user-service/internal/auth"
	"user-service/internal/authz"
	"user-service/internal/domain/user"
	"user-service/internal/repository"
	apperrors "user-service/pkg/errors"
	"user-service/pkg/password"
	"user-service/pkg/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UserHandler serves the users resource. Every operation follows the same
// orchestration: extract credential, ask the policy engine, validate input,
// hit the store, translate store failures. No store access happens on denial.
type UserHandler struct {
	repo     repository.UserRepository
	engine   *authz.Engine
	pageSize int
}

func NewUserHandler(repo repository.UserRepository, engine *authz.Engine, pageSize int) *UserHandler {
	return &UserHandler{
		repo:     repo,
		engine:   engine,
		pageSize: pageSize,
	}
}

type CreateUserRequest struct {
	GoogleID       *string `json:"google_id"`
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Email          *string `json:"email"`
	Password       *string `json:"password"`
	EmailConfirmed *bool   `json:"email_confirmed"`
	Active         *bool   `json:"active"`
	AccessLevel    *string `json:"access_level"`
}

type UpdateUserRequest struct {
	GoogleID       *string `json:"google_id"`
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Email          *string `json:"email"`
	Password       *string `json:"password"`
	EmailConfirmed *bool   `json:"email_confirmed"`
	Active         *bool   `json:"active"`
	AccessLevel    *string `json:"access_level"`
}

// providedFields lists the field names present in the request body, for the
// engine's field-level restriction check.
func (r *UpdateUserRequest) providedFields() []string {
	var fields []string
	if r.GoogleID != nil {
		fields = append(fields, "google_id")
	}
	if r.FirstName != nil {
		fields = append(fields, "first_name")
	}
	if r.LastName != nil {
		fields = append(fields, "last_name")
	}
	if r.Email != nil {
		fields = append(fields, "email")
	}
	if r.Password != nil {
		fields = append(fields, "password")
	}
	if r.EmailConfirmed != nil {
		fields = append(fields, "email_confirmed")
	}
	if r.Active != nil {
		fields = append(fields, "active")
	}
	if r.AccessLevel != nil {
		fields = append(fields, "access_level")
	}
	return fields
}

func (h *UserHandler) List(c echo.Context) error {
	cred := credentialOrNil(c)

	if decision := h.engine.Decide(cred, authz.OperationList, ""); !decision.Permit {
		return respondDenial(c, decision)
	}

	query, err := parseListQuery(c, h.pageSize)
	if err != nil {
		var verr *apperrors.ValidationError
		if errors.As(err, &verr) {
			return respondBadParams(c, verr.Fields)
		}
		return respondError(c, http.StatusBadRequest, msgInvalidParams)
	}

	users, err := h.repo.List(c.Request().Context(), query)
	if err != nil {
		return respondStoreError(c, err)
	}

	if users == nil {
		users = []*user.User{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"query_results": users})
}

func (h *UserHandler) Get(c echo.Context) error {
	cred := credentialOrNil(c)
	target := c.Param(paramID)

	if decision := h.engine.Decide(cred, authz.OperationGet, target); !decision.Permit {
		return respondDenial(c, decision)
	}

	id, err := resolveTargetID(cred, target)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidUserID)
	}

	u, err := h.repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}

	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Create(c echo.Context) error {
	cred := credentialOrNil(c)

	if decision := h.engine.Decide(cred, authz.OperationCreate, ""); !decision.Permit {
		return respondDenial(c, decision)
	}

	var req CreateUserRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleBindError(c, err)
	}

	if bad := validateCreate(&req); len(bad) > 0 {
		return respondBadParams(c, bad)
	}

	ctx := c.Request().Context()

	// The unique index is the backstop; this pre-check just produces the
	// friendlier conflict before paying for a bcrypt hash.
	if _, err := h.repo.GetByEmail(ctx, *req.Email); err == nil {
		return respondError(c, http.StatusConflict, msgEmailAlreadyExists)
	}

	hashed, err := password.Hash(*req.Password)
	if err != nil {
		c.Logger().Errorf("password hashing failed: %v", err)
		return respondError(c, http.StatusInternalServerError, msgInternalError)
	}

	input := user.CreateUserInput{
		GoogleID:     req.GoogleID,
		FirstName:    *req.FirstName,
		LastName:     *req.LastName,
		Email:        *req.Email,
		PasswordHash: hashed,
		Active:       true,
		AccessLevel:  user.AccessLevelBasic,
	}
	if req.EmailConfirmed != nil {
		input.EmailConfirmed = *req.EmailConfirmed
	}
	if req.Active != nil {
		input.Active = *req.Active
	}
	if req.AccessLevel != nil {
		input.AccessLevel = user.AccessLevel(*req.AccessLevel)
	}

	u, err := h.repo.Create(ctx, input)
	if err != nil {
		return respondStoreError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{"new_user": u})
}

func (h *UserHandler) Update(c echo.Context) error {
	cred := credentialOrNil(c)
	target := c.Param(paramID)

	if decision := h.engine.Decide(cred, authz.OperationUpdate, target); !decision.Permit {
		return respondDenial(c, decision)
	}

	var req UpdateUserRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleBindError(c, err)
	}

	fields := req.providedFields()
	if len(fields) == 0 {
		return respondError(c, http.StatusBadRequest, msgNoUpdateFields)
	}

	// Identity fields (email, password, access_level) stay admin-only even
	// on a self-targeted update.
	if decision := h.engine.DecideUpdateFields(cred, fields); !decision.Permit {
		return respondDenial(c, decision)
	}

	if bad := validateUpdate(&req); len(bad) > 0 {
		return respondBadParams(c, bad)
	}

	id, err := resolveTargetID(cred, target)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidUserID)
	}

	input := user.UpdateUserInput{
		GoogleID:       req.GoogleID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		EmailConfirmed: req.EmailConfirmed,
		Active:         req.Active,
	}
	if req.AccessLevel != nil {
		level := user.AccessLevel(*req.AccessLevel)
		input.AccessLevel = &level
	}
	if req.Password != nil {
		hashed, err := password.Hash(*req.Password)
		if err != nil {
			c.Logger().Errorf("password hashing failed: %v", err)
			return respondError(c, http.StatusInternalServerError, msgInternalError)
		}
		input.PasswordHash = &hashed
	}

	u, err := h.repo.Update(c.Request().Context(), id, input)
	if err != nil {
		return respondStoreError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"updated_user": u})
}

func (h *UserHandler) Delete(c echo.Context) error {
	cred := credentialOrNil(c)
	target := c.Param(paramID)

	if decision := h.engine.Decide(cred, authz.OperationDelete, target); !decision.Permit {
		return respondDenial(c, decision)
	}

	id, err := resolveTargetID(cred, target)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidUserID)
	}

	u, err := h.repo.Delete(c.Request().Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"deleted_user": u})
}

// credentialOrNil hands back whatever credential the gate attached. A nil
// result flows into the policy engine, which denies it; the handlers never
// assume the gate ran.
func credentialOrNil(c echo.Context) *auth.Credential {
	cred, err := auth.GetCredential(c)
	if err != nil {
		return nil
	}
	return cred
}

// resolveTargetID substitutes the caller's own id for the self alias and
// parses the result. System callers never reach this with the alias; the
// policy engine denies that combination first.
func resolveTargetID(cred *auth.Credential, target string) (uuid.UUID, error) {
	if target == authz.SelfAlias {
		target = cred.UserID
	}
	return uuid.Parse(target)
}

func validateCreate(req *CreateUserRequest) map[string]string {
	bad := map[string]string{}

	requireString(bad, "first_name", req.FirstName)
	requireString(bad, "last_name", req.LastName)

	if req.Email == nil || *req.Email == "" {
		bad["email"] = reasonRequired
	} else if err := validator.Email(*req.Email); err != nil {
		bad["email"] = err.Error()
	}

	if req.Password == nil || *req.Password == "" {
		bad["password"] = reasonRequired
	} else if err := validator.Password(*req.Password); err != nil {
		bad["password"] = err.Error()
	}

	if req.AccessLevel != nil && !user.AccessLevel(*req.AccessLevel).Valid() {
		bad["access_level"] = "must be BASIC, ADMIN, SYS_ADMIN"
	}

	return bad
}

func validateUpdate(req *UpdateUserRequest) map[string]string {
	bad := map[string]string{}

	if req.FirstName != nil {
		if err := validator.Name(*req.FirstName); err != nil {
			bad["first_name"] = err.Error()
		}
	}
	if req.LastName != nil {
		if err := validator.Name(*req.LastName); err != nil {
			bad["last_name"] = err.Error()
		}
	}
	if req.Email != nil {
		if err := validator.Email(*req.Email); err != nil {
			bad["email"] = err.Error()
		}
	}
	if req.Password != nil {
		if err := validator.Password(*req.Password); err != nil {
			bad["password"] = err.Error()
		}
	}
	if req.AccessLevel != nil && !user.AccessLevel(*req.AccessLevel).Valid() {
		bad["access_level"] = "must be BASIC, ADMIN, SYS_ADMIN"
	}

	return bad
}

func requireString(bad map[string]string, field string, value *string) {
	if value == nil || *value == "" {
		bad[field] = reasonRequired
		return
	}
	if err := validator.Name(*value); err != nil {
		bad[field] = err.Error()
	}
}

func handleBindError(c echo.Context, err error) error {
	if he, ok := err.(*echo.HTTPError); ok {
		msg, _ := he.Message.(string)
		if msg == "" {
			msg = http.StatusText(he.Code)
		}
		return respondError(c, he.Code, msg)
	}

	return respondError(c, http.StatusInternalServerError, msgInternalError)
}
