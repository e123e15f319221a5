// FilePath: internal/session/session_test.go

package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantsense/sprout/internal/errors"
	"github.com/plantsense/sprout/internal/gatewaytest"
	"github.com/plantsense/sprout/internal/models"
)

func newTestStore(t *testing.T, gatewayURL string) *Store {
	t.Helper()
	return NewStore(gatewayURL, filepath.Join(t.TempDir(), "session.json"), 5*time.Second)
}

// loginResponse signs in against the fake gateway the way the auth
// service would and returns the raw response.
func loginResponse(t *testing.T, gateway *gatewaytest.Gateway) *models.AuthResponse {
	t.Helper()
	body, err := json.Marshal(models.LoginCredentials{
		Email:    gatewaytest.DefaultEmail,
		Password: gatewaytest.DefaultPassword,
	})
	require.NoError(t, err)

	resp, err := http.Post(gateway.URL()+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var auth models.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&auth))
	return &auth
}

func TestLoginSetsStateAndPersists(t *testing.T) {
	gateway := gatewaytest.New()
	defer gateway.Close()
	store := newTestStore(t, gateway.URL())

	require.False(t, store.IsAuthenticated())
	require.NoError(t, store.Login(loginResponse(t, gateway)))

	assert.True(t, store.IsAuthenticated())
	require.NotNil(t, store.User())
	assert.Equal(t, gatewaytest.DefaultEmail, store.User().Email)
	assert.NotEmpty(t, store.AccessToken())

	info, err := os.Stat(store.filePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoginNilResponse(t *testing.T) {
	store := newTestStore(t, "http://localhost:1")
	err := store.Login(nil)
	require.Error(t, err)
	assert.False(t, store.IsAuthenticated())
}

func TestLogoutClearsStateAndRevokes(t *testing.T) {
	gateway := gatewaytest.New()
	defer gateway.Close()
	store := newTestStore(t, gateway.URL())
	require.NoError(t, store.Login(loginResponse(t, gateway)))

	require.NoError(t, store.Logout(context.Background()))

	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.User())
	assert.Empty(t, store.AccessToken())
	assert.Equal(t, 1, gateway.Requests("POST /api/v1/auth/logout"))
}

func TestLogoutSucceedsWhenServerUnreachable(t *testing.T) {
	gateway := gatewaytest.New()
	store := newTestStore(t, gateway.URL())
	require.NoError(t, store.Login(loginResponse(t, gateway)))
	gateway.Close()

	require.NoError(t, store.Logout(context.Background()))

	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.Tokens())
}

func TestLogoutWithoutSession(t *testing.T) {
	store := newTestStore(t, "http://localhost:1")
	require.NoError(t, store.Logout(context.Background()))
	assert.False(t, store.IsAuthenticated())
}

func TestRefreshRotatesTokens(t *testing.T) {
	gateway := gatewaytest.New()
	defer gateway.Close()
	store := newTestStore(t, gateway.URL())
	require.NoError(t, store.Login(loginResponse(t, gateway)))
	before := store.AccessToken()

	require.NoError(t, store.Refresh(context.Background()))

	assert.NotEqual(t, before, store.AccessToken())
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, 1, gateway.Requests("POST /api/v1/auth/refresh"))
}

func TestRefreshFailureCascadesToLogout(t *testing.T) {
	gateway := gatewaytest.New()
	defer gateway.Close()
	store := newTestStore(t, gateway.URL())
	require.NoError(t, store.Login(loginResponse(t, gateway)))
	gateway.RevokeRefreshToken()

	err := store.Refresh(context.Background())

	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.AccessToken())
}

func TestRefreshWithoutRefreshToken(t *testing.T) {
	store := newTestStore(t, "http://localhost:1")
	err := store.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))
}

func TestCheckStatusNoPersistedSession(t *testing.T) {
	store := newTestStore(t, "http://localhost:1")
	require.NoError(t, store.CheckStatus(context.Background()))
	assert.False(t, store.IsAuthenticated())
}

func TestCheckStatusRestoresValidSession(t *testing.T) {
	gateway := gatewaytest.New()
	defer gateway.Close()

	path := filepath.Join(t.TempDir(), "session.json")
	first := NewStore(gateway.URL(), path, 5*time.Second)
	require.NoError(t, first.Login(loginResponse(t, gateway)))

	// Opaque tokens fall back to the updated-at heuristic, so a fresh
	// user record with expires_in 3600 counts as still valid.
	second := NewStore(gateway.URL(), path, 5*time.Second)
	require.NoError(t, second.CheckStatus(context.Background()))

	assert.True(t, second.IsAuthenticated())
	require.NotNil(t, second.User())
	assert.Equal(t, gatewaytest.DefaultEmail, second.User().Email)
	assert.Zero(t, gateway.Requests("POST /api/v1/auth/refresh"))
}

func TestCheckStatusRefreshesExpiredSession(t *testing.T) {
	gateway := gatewaytest.New()
	defer gateway.Close()

	path := filepath.Join(t.TempDir(), "session.json")
	first := NewStore(gateway.URL(), path, 5*time.Second)
	auth := loginResponse(t, gateway)
	// Backdate the user record so the expiry heuristic flags the pair.
	auth.User.UpdatedAt = time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC3339)
	require.NoError(t, first.Login(auth))

	second := NewStore(gateway.URL(), path, 5*time.Second)
	require.NoError(t, second.CheckStatus(context.Background()))

	assert.True(t, second.IsAuthenticated())
	assert.Equal(t, 1, gateway.Requests("POST /api/v1/auth/refresh"))
}

func TestCheckStatusExpiredAndRefreshRejected(t *testing.T) {
	gateway := gatewaytest.New()
	defer gateway.Close()

	path := filepath.Join(t.TempDir(), "session.json")
	first := NewStore(gateway.URL(), path, 5*time.Second)
	auth := loginResponse(t, gateway)
	auth.User.UpdatedAt = time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC3339)
	require.NoError(t, first.Login(auth))
	gateway.RevokeRefreshToken()

	second := NewStore(gateway.URL(), path, 5*time.Second)
	require.NoError(t, second.CheckStatus(context.Background()))

	assert.False(t, second.IsAuthenticated())
}

func TestCheckStatusCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewStore("http://localhost:1", path, 5*time.Second)
	require.NoError(t, store.CheckStatus(context.Background()))
	assert.False(t, store.IsAuthenticated())
}

func TestTokenStillValidPrefersJWTExpiry(t *testing.T) {
	store := newTestStore(t, "http://localhost:1")
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	signed := func(exp time.Time) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "usr_test",
			"exp": exp.Unix(),
		})
		s, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return s
	}

	// A live JWT wins even when the fallback heuristic would reject it.
	staleUser := &models.User{UpdatedAt: now.Add(-48 * time.Hour).Format(time.RFC3339)}
	live := &models.Tokens{AccessToken: signed(now.Add(time.Hour)), ExpiresIn: 3600}
	assert.True(t, store.tokenStillValid(live, staleUser))

	expired := &models.Tokens{AccessToken: signed(now.Add(-time.Hour)), ExpiresIn: 3600}
	assert.False(t, store.tokenStillValid(expired, staleUser))
}

func TestTokenStillValidFallback(t *testing.T) {
	store := newTestStore(t, "http://localhost:1")
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	freshUser := &models.User{UpdatedAt: now.Add(-time.Minute).Format(time.RFC3339)}
	opaque := &models.Tokens{AccessToken: "opaque-token", ExpiresIn: 3600}
	assert.True(t, store.tokenStillValid(opaque, freshUser))

	staleUser := &models.User{UpdatedAt: now.Add(-2 * time.Hour).Format(time.RFC3339)}
	assert.False(t, store.tokenStillValid(opaque, staleUser))

	badUser := &models.User{UpdatedAt: "yesterday"}
	assert.False(t, store.tokenStillValid(opaque, badUser))
}

func TestUpdateUserKeepsTokens(t *testing.T) {
	gateway := gatewaytest.New()
	defer gateway.Close()
	store := newTestStore(t, gateway.URL())
	require.NoError(t, store.Login(loginResponse(t, gateway)))
	token := store.AccessToken()

	updated := *store.User()
	updated.FirstName = "Flora"
	store.UpdateUser(updated)

	assert.Equal(t, "Flora", store.User().FirstName)
	assert.Equal(t, token, store.AccessToken())
}
