package authz

import (
	"user-service/internal/auth"
	"user-service/internal/domain/user"
)

// SelfAlias is the path segment meaning "the identity of the requesting
// credential".
const SelfAlias = "me"

// Operation is the kind of access being requested on the users resource.
type Operation string

const (
	OperationList   Operation = "LIST"
	OperationGet    Operation = "GET"
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// Reason explains a denial.
type Reason string

const (
	ReasonMissingCredential Reason = "MISSING_CREDENTIAL"
	ReasonInsufficientRole  Reason = "INSUFFICIENT_ROLE"
	ReasonNotSelf           Reason = "NOT_SELF"
)

// Decision is the outcome of a single policy evaluation. Reason is set only
// when Permit is false.
type Decision struct {
	Permit bool
	Reason Reason
}

func permit() Decision {
	return Decision{Permit: true}
}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// identityFields are the fields a user may not change about themself;
// altering any of them requires an elevated credential.
var identityFields = map[string]bool{
	"email":        true,
	"password":     true,
	"access_level": true,
}

// Engine evaluates access decisions for the users resource. It is stateless
// apart from its role configuration and safe for concurrent use.
type Engine struct {
	writeRoles map[user.AccessLevel]bool
}

// New creates an Engine. writeRoles are the roles allowed to create users and
// list the full collection; when empty, ADMIN and SYS_ADMIN are used.
func New(writeRoles ...user.AccessLevel) *Engine {
	if len(writeRoles) == 0 {
		writeRoles = []user.AccessLevel{user.AccessLevelAdmin, user.AccessLevelSysAdmin}
	}

	roles := make(map[user.AccessLevel]bool, len(writeRoles))
	for _, r := range writeRoles {
		roles[r] = true
	}

	return &Engine{writeRoles: roles}
}

// Decide evaluates (credential, operation, target) into a decision. targetID
// is the raw path segment, possibly the self alias, or empty for LIST and
// CREATE. Every input combination yields a decision; Decide never errors.
func (e *Engine) Decide(cred *auth.Credential, op Operation, targetID string) Decision {
	if cred == nil {
		return deny(ReasonMissingCredential)
	}

	if cred.IsSystem() {
		// The system is not a user; it has no self to alias.
		if targetID == SelfAlias {
			return deny(ReasonNotSelf)
		}
		return permit()
	}

	effectiveTarget := targetID
	if targetID == SelfAlias {
		effectiveTarget = cred.UserID
	}

	switch op {
	case OperationList, OperationCreate:
		if e.writeRoles[cred.AccessLevel] {
			return permit()
		}
		return deny(ReasonInsufficientRole)

	case OperationDelete:
		// Deletion is admin-only; a self-match never qualifies.
		if cred.AccessLevel.IsElevated() {
			return permit()
		}
		return deny(ReasonInsufficientRole)

	case OperationGet, OperationUpdate:
		if cred.AccessLevel.IsElevated() {
			return permit()
		}
		if cred.AccessLevel == user.AccessLevelBasic {
			if effectiveTarget == cred.UserID {
				return permit()
			}
			return deny(ReasonNotSelf)
		}
		return deny(ReasonInsufficientRole)

	default:
		return deny(ReasonInsufficientRole)
	}
}

// DecideUpdateFields applies the field-level restriction on UPDATE: identity
// fields (email, password, access_level) require an elevated credential even
// when the target is the caller themself.
func (e *Engine) DecideUpdateFields(cred *auth.Credential, fields []string) Decision {
	if cred == nil {
		return deny(ReasonMissingCredential)
	}

	if cred.IsSystem() || cred.AccessLevel.IsElevated() {
		return permit()
	}

	for _, field := range fields {
		if identityFields[field] {
			return deny(ReasonInsufficientRole)
		}
	}

	return permit()
}

// IsIdentityField reports whether a field may only be changed by elevated
// credentials.
func IsIdentityField(field string) bool {
	return identityFields[field]
}
