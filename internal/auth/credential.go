package auth

import "user-service/internal/domain/user"

// CredentialKind discriminates the two caller kinds the authority can vouch
// for. The kind is fixed at creation and never reinterpreted.
type CredentialKind string

const (
	CredentialKindUser   CredentialKind = "USER"
	CredentialKindSystem CredentialKind = "SYSTEM"
)

// Credential is the result of resolving a bearer token against the token
// authority. It is created once per request by the authentication middleware,
// attached to the request context, and discarded at request end.
type Credential struct {
	Kind        CredentialKind   `json:"kind"`
	UserID      string           `json:"user_id,omitempty"`
	AccessLevel user.AccessLevel `json:"access_level,omitempty"`
}

// IsSystem reports whether the caller is a trusted internal service rather
// than an end user. System callers are never subject to ownership checks.
func (c *Credential) IsSystem() bool {
	return c != nil && c.Kind == CredentialKindSystem
}
