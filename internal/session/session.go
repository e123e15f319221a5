// FilePath: internal/session/session.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	nuts "github.com/vaudience/go-nuts"

	"github.com/plantsense/sprout/internal/errors"
	"github.com/plantsense/sprout/internal/models"
)

// Store holds the client-side authentication state: current user, token
// pair and the authenticated flag. State is mutated only through Store
// methods; the API client reads it through accessors. The store performs
// refresh and revocation calls with its own bare HTTP client so that the
// bearer-injecting client can depend on it without a cycle.
//
// Invariant: authenticated == true implies user and tokens are non-nil.
type Store struct {
	mu        sync.RWMutex
	refreshMu sync.Mutex

	user          *models.User
	tokens        *models.Tokens
	authenticated bool

	filePath string
	http     *resty.Client
	now      func() time.Time
}

// persistedState is the partial state written to disk across restarts.
type persistedState struct {
	User   *models.User   `json:"user"`
	Tokens *models.Tokens `json:"tokens"`
}

// NewStore creates a session store persisting to filePath and performing
// token refresh/revocation against the given gateway base URL.
func NewStore(gatewayURL, filePath string, timeout time.Duration) *Store {
	client := resty.New().
		SetBaseURL(gatewayURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Store{
		filePath: filePath,
		http:     client,
		now:      time.Now,
	}
}

// IsAuthenticated reports whether a signed-in session is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// User returns a copy of the current user, or nil when signed out.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// AccessToken returns the current access token, or "" when signed out.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil {
		return ""
	}
	return s.tokens.AccessToken
}

// Tokens returns a copy of the current token pair, or nil when signed out.
func (s *Store) Tokens() *models.Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil {
		return nil
	}
	t := *s.tokens
	return &t
}

// Login transitions to SignedIn, setting user and tokens atomically, and
// persists the session.
func (s *Store) Login(resp *models.AuthResponse) error {
	if resp == nil {
		return errors.NewInternalError("nil auth response", nil)
	}
	tokens := models.TokensFromAuthResponse(resp)
	user := resp.User

	s.mu.Lock()
	s.user = &user
	s.tokens = &tokens
	s.authenticated = true
	s.mu.Unlock()

	nuts.L.Infof("[Session] Signed in as %s", user.Email)
	return s.persist()
}

// UpdateUser replaces the stored user record, keeping tokens untouched.
func (s *Store) UpdateUser(user models.User) {
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	if err := s.persist(); err != nil {
		nuts.L.Warnf("[Session] Failed to persist user update: %v", err)
	}
}

// Logout clears local state first, then makes a best-effort revocation
// call with the old refresh token. Revocation failure never reverses the
// local transition.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	oldTokens := s.tokens
	s.user = nil
	s.tokens = nil
	s.authenticated = false
	s.mu.Unlock()

	if err := s.persist(); err != nil {
		nuts.L.Warnf("[Session] Failed to persist logout: %v", err)
	}

	if oldTokens != nil && oldTokens.RefreshToken != "" {
		body := map[string]string{"refresh_token": oldTokens.RefreshToken}
		resp, err := s.http.R().
			SetContext(ctx).
			SetBody(body).
			Post("/api/v1/auth/logout")
		if err != nil || resp.IsError() {
			// Server-side revocation is fire-and-forget
			nuts.L.Warnf("[Session] Server-side logout failed, local logout complete")
		}
	}

	nuts.L.Infof("[Session] Signed out")
	return nil
}

// Refresh exchanges the refresh token for a new pair. Any failure is
// treated as fatal for the session and cascades to Logout, since a failing
// refresh usually signals revocation.
func (s *Store) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.RLock()
	tokens := s.tokens
	s.mu.RUnlock()

	if tokens == nil || tokens.RefreshToken == "" {
		return errors.NewAuthError("no refresh token available", nil)
	}

	var newTokens models.Tokens
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"refresh_token": tokens.RefreshToken}).
		SetResult(&newTokens).
		Post("/api/v1/auth/refresh")

	if err != nil {
		_ = s.Logout(ctx)
		return errors.NewTransportError("token refresh failed", err)
	}
	if resp.IsError() {
		_ = s.Logout(ctx)
		return errors.NewAuthError("token refresh rejected", fmt.Errorf("status %d", resp.StatusCode()))
	}
	if newTokens.AccessToken == "" {
		_ = s.Logout(ctx)
		return errors.NewAuthError("token refresh returned empty tokens", nil)
	}

	s.mu.Lock()
	s.tokens = &newTokens
	s.mu.Unlock()

	nuts.L.Debugf("[Session] Tokens refreshed")
	return s.persist()
}

// CheckStatus rehydrates the persisted session at process start and
// decides the initial state: still-valid tokens transition to SignedIn,
// expired tokens get one refresh attempt, and any failure leaves the
// store SignedOut.
func (s *Store) CheckStatus(ctx context.Context) error {
	state, err := s.loadPersisted()
	if err != nil {
		nuts.L.Debugf("[Session] No persisted session: %v", err)
		return nil
	}
	if state.User == nil || state.Tokens == nil {
		return nil
	}

	s.mu.Lock()
	s.user = state.User
	s.tokens = state.Tokens
	s.authenticated = false
	s.mu.Unlock()

	if s.tokenStillValid(state.Tokens, state.User) {
		s.mu.Lock()
		s.authenticated = true
		s.mu.Unlock()
		nuts.L.Infof("[Session] Restored session for %s", state.User.Email)
		return nil
	}

	// Token expired, try one refresh
	if err := s.Refresh(ctx); err != nil {
		nuts.L.Infof("[Session] Stored session expired and refresh failed")
		return nil
	}

	s.mu.Lock()
	s.authenticated = true
	s.mu.Unlock()
	nuts.L.Infof("[Session] Restored session for %s after refresh", state.User.Email)
	return nil
}

// tokenStillValid prefers the JWT exp claim; tokens that do not parse as
// JWTs fall back to the coarse check against the last user update time.
func (s *Store) tokenStillValid(tokens *models.Tokens, user *models.User) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokens.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return s.now().Before(exp.Time)
		}
	}

	// Coarse fallback: assume the pair was issued around the last user
	// update and expires expires_in seconds later.
	issuedAt, err := time.Parse(time.RFC3339, user.UpdatedAt)
	if err != nil {
		return false
	}
	return s.now().Sub(issuedAt) < time.Duration(tokens.ExpiresIn)*time.Second
}

func (s *Store) persist() error {
	s.mu.RLock()
	state := persistedState{User: s.user, Tokens: s.tokens}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.NewInternalError("failed to encode session", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o700); err != nil {
		return errors.NewInternalError("failed to create session dir", err)
	}
	if err := os.WriteFile(s.filePath, data, 0o600); err != nil {
		return errors.NewInternalError("failed to write session file", err)
	}
	return nil
}

func (s *Store) loadPersisted() (*persistedState, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, err
	}
	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("corrupt session file: %w", err)
	}
	return &state, nil
}
