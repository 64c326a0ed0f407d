package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"user-service/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryTokenCache struct {
	mu    sync.Mutex
	creds map[string]*Credential
	sets  int
}

func newMemoryTokenCache() *memoryTokenCache {
	return &memoryTokenCache{creds: map[string]*Credential{}}
}

func (m *memoryTokenCache) Get(_ context.Context, token string) (*Credential, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.creds[token]
	return cred, ok
}

func (m *memoryTokenCache) Set(_ context.Context, token string, cred *Credential, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[token] = cred
	m.sets++
}

func newAuthorityServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/authorize", r.URL.Path)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestAuthorityClient_Authorize_UserCredential(t *testing.T) {
	srv, _ := newAuthorityServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer good-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"access_type": "USER",
			"authenticated_user": {"_id": "user-1", "access_level": "ADMIN"}
		}`))
	})

	client := NewAuthorityClient(srv.URL, time.Second)
	cred, err := client.Authorize(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, CredentialKindUser, cred.Kind)
	assert.Equal(t, "user-1", cred.UserID)
	assert.Equal(t, user.AccessLevelAdmin, cred.AccessLevel)
}

func TestAuthorityClient_Authorize_SystemCredential(t *testing.T) {
	srv, _ := newAuthorityServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_type": "SYSTEM"}`))
	})

	client := NewAuthorityClient(srv.URL, time.Second)
	cred, err := client.Authorize(context.Background(), "service-token")
	require.NoError(t, err)
	assert.True(t, cred.IsSystem())
	assert.Empty(t, cred.UserID)
}

func TestAuthorityClient_Authorize_RejectionForwarded(t *testing.T) {
	srv, _ := newAuthorityServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error_code": "TOKEN EXPIRED"}`))
	})

	client := NewAuthorityClient(srv.URL, time.Second)
	_, err := client.Authorize(context.Background(), "stale-token")

	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, http.StatusUnauthorized, rejection.Status)
	assert.Equal(t, "TOKEN EXPIRED", rejection.ErrorCode)
}

func TestAuthorityClient_Authorize_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"upstream 5xx",
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			"4xx without structured body",
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
		},
		{
			"5xx with error code still an outage",
			func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error_code": "OOPS"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newAuthorityServer(t, tt.handler)
			client := NewAuthorityClient(srv.URL, time.Second)

			_, err := client.Authorize(context.Background(), "any-token")
			assert.ErrorIs(t, err, ErrAuthorityUnavailable)

			var rejection *RejectionError
			assert.False(t, errors.As(err, &rejection))
		})
	}
}

func TestAuthorityClient_Authorize_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	client := NewAuthorityClient(srv.URL, time.Second)
	_, err := client.Authorize(context.Background(), "any-token")
	assert.ErrorIs(t, err, ErrAuthorityUnavailable)
}

func TestAuthorityClient_Authorize_MalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown access type", `{"access_type": "ROBOT"}`},
		{"user without identity", `{"access_type": "USER"}`},
		{"user with empty id", `{"access_type": "USER", "authenticated_user": {"_id": "", "access_level": "BASIC"}}`},
		{"user with unknown access level", `{"access_type": "USER", "authenticated_user": {"_id": "user-1", "access_level": "ROOT"}}`},
		{"user without access level", `{"access_type": "USER", "authenticated_user": {"_id": "user-1"}}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newAuthorityServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			})

			client := NewAuthorityClient(srv.URL, time.Second)
			_, err := client.Authorize(context.Background(), "any-token")
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestAuthorityClient_Authorize_CacheHitSkipsAuthority(t *testing.T) {
	srv, calls := newAuthorityServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_type": "USER", "authenticated_user": {"_id": "user-1", "access_level": "BASIC"}}`))
	})

	cache := newMemoryTokenCache()
	client := NewAuthorityClient(srv.URL, time.Second, WithTokenCache(cache, time.Minute))

	first, err := client.Authorize(context.Background(), "cached-token")
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)
	assert.Equal(t, 1, cache.sets)

	second, err := client.Authorize(context.Background(), "cached-token")
	require.NoError(t, err)
	assert.Equal(t, 1, *calls, "cache hit must not reach the authority")
	assert.Equal(t, first, second)
}

func TestAuthorityClient_Authorize_FailuresNotCached(t *testing.T) {
	srv, calls := newAuthorityServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error_code": "INVALID TOKEN"}`))
	})

	cache := newMemoryTokenCache()
	client := NewAuthorityClient(srv.URL, time.Second, WithTokenCache(cache, time.Minute))

	_, err := client.Authorize(context.Background(), "bad-token")
	require.Error(t, err)
	assert.Equal(t, 0, cache.sets)

	_, err = client.Authorize(context.Background(), "bad-token")
	require.Error(t, err)
	assert.Equal(t, 2, *calls)
}
