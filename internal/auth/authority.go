package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user-service/internal/domain/user"

	"github.com/go-resty/resty/v2"
)

const authorizePath = "/authorize"

var (
	// ErrAuthorityUnavailable covers transport failures and any authority
	// response without a structured error body. It always maps to a 5xx
	// outcome, never to 401/403.
	ErrAuthorityUnavailable = errors.New("token authority unavailable")

	// ErrMalformedResponse means the authority answered 2xx but the payload
	// could not be mapped to a credential.
	ErrMalformedResponse = errors.New("malformed authority response")
)

// RejectionError is the authority's own structured rejection of a token. The
// upstream status and error code are forwarded to the caller verbatim.
type RejectionError struct {
	Status    int
	ErrorCode string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("token rejected by authority (status %d): %s", e.Status, e.ErrorCode)
}

// AuthorityClient resolves bearer tokens against the external token
// authority. It holds no mutable state beyond the optional token cache.
type AuthorityClient struct {
	http     *resty.Client
	cache    TokenCache
	cacheTTL time.Duration
}

type authorizePayload struct {
	AccessType        string             `json:"access_type"`
	AuthenticatedUser *authenticatedUser `json:"authenticated_user"`
}

type authenticatedUser struct {
	ID          string           `json:"_id"`
	AccessLevel user.AccessLevel `json:"access_level"`
}

type authorityErrorBody struct {
	ErrorCode string `json:"error_code"`
}

// ClientOption configures an AuthorityClient.
type ClientOption func(*AuthorityClient)

// WithTokenCache attaches a credential cache with a fixed TTL.
func WithTokenCache(cache TokenCache, ttl time.Duration) ClientOption {
	return func(c *AuthorityClient) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

func NewAuthorityClient(apiURL string, timeout time.Duration, opts ...ClientOption) *AuthorityClient {
	client := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", "user-service/1.0")

	ac := &AuthorityClient{http: client}
	for _, opt := range opts {
		opt(ac)
	}

	return ac
}

// Authorize resolves a non-empty bearer token into a Credential. Callers must
// short-circuit empty tokens before reaching this method; the authority is
// never invoked with one.
func (c *AuthorityClient) Authorize(ctx context.Context, token string) (*Credential, error) {
	if c.cache != nil {
		if cred, ok := c.cache.Get(ctx, token); ok {
			return cred, nil
		}
	}

	var payload authorizePayload
	var errBody authorityErrorBody

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(headerAuthorization, "Bearer "+token).
		SetResult(&payload).
		SetError(&errBody).
		Get(authorizePath)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthorityUnavailable, err)
	}

	if resp.IsError() {
		// Only a structured client-class rejection is the authority's
		// own verdict; everything else is an outage.
		if resp.StatusCode() < 500 && errBody.ErrorCode != "" {
			return nil, &RejectionError{Status: resp.StatusCode(), ErrorCode: errBody.ErrorCode}
		}
		return nil, fmt.Errorf("%w: status %d", ErrAuthorityUnavailable, resp.StatusCode())
	}

	cred, err := mapPayload(payload)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(ctx, token, cred, c.cacheTTL)
	}

	return cred, nil
}

func mapPayload(payload authorizePayload) (*Credential, error) {
	switch CredentialKind(payload.AccessType) {
	case CredentialKindSystem:
		return &Credential{Kind: CredentialKindSystem}, nil
	case CredentialKindUser:
		u := payload.AuthenticatedUser
		if u == nil || u.ID == "" {
			return nil, fmt.Errorf("%w: missing authenticated_user", ErrMalformedResponse)
		}
		if !u.AccessLevel.Valid() {
			return nil, fmt.Errorf("%w: missing or unknown access_level %q", ErrMalformedResponse, u.AccessLevel)
		}
		return &Credential{
			Kind:        CredentialKindUser,
			UserID:      u.ID,
			AccessLevel: u.AccessLevel,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown access_type %q", ErrMalformedResponse, payload.AccessType)
	}
}
