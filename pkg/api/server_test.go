package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cbodonnell/landmark/pkg/api/handlers"
	authproviders "github.com/cbodonnell/landmark/pkg/auth/providers"
	"github.com/cbodonnell/landmark/pkg/kinematic"
	"github.com/cbodonnell/landmark/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenAuthProvider accepts only the tokens it was issued, as "token-<uid>".
type tokenAuthProvider struct{}

func (tokenAuthProvider) VerifyToken(ctx context.Context, idToken string) (*authproviders.TokenClaims, error) {
	uid, ok := strings.CutPrefix(idToken, "token-")
	if !ok || uid == "" {
		return nil, errors.New("invalid token")
	}
	return &authproviders.TokenClaims{UID: uid}, nil
}

func newTestAPIServer(t *testing.T) (*APIServer, *store.InMemoryLandmarkStore, *store.InMemoryDeathStore) {
	t.Helper()
	landmarks := store.NewInMemoryLandmarkStore()
	deaths := store.NewInMemoryDeathStore()
	server, err := NewAPIServer(NewAPIServerOptions{
		AuthProvider: tokenAuthProvider{},
		Landmarks:    landmarks,
		Deaths:       deaths,
	})
	require.NoError(t, err)
	return server, landmarks, deaths
}

func do(t *testing.T, server *APIServer, method string, path string, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		req.Header.Set("Authorization", "Bearer token-"+userID)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAPIServer_Landmarks(t *testing.T) {
	ctx := context.Background()
	server, landmarks, _ := newTestAPIServer(t)

	_, err := landmarks.Add(ctx, "alice", "mine", kinematic.Vector{X: 3, Y: 4})
	require.NoError(t, err)
	_, err = landmarks.Add(ctx, "alice", "home", kinematic.Vector{X: 1, Y: 2})
	require.NoError(t, err)
	_, err = landmarks.Add(ctx, "bob", "secret", kinematic.Vector{X: 9, Y: 9})
	require.NoError(t, err)

	rec := do(t, server, http.MethodGet, "/landmarks", "alice")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []handlers.Landmark
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []handlers.Landmark{
		{Name: "home", X: 1, Y: 2},
		{Name: "mine", X: 3, Y: 4},
	}, list)

	rec = do(t, server, http.MethodGet, "/landmarks/mine", "alice")
	require.Equal(t, http.StatusOK, rec.Code)
	var one handlers.Landmark
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.Equal(t, handlers.Landmark{Name: "mine", X: 3, Y: 4}, one)

	rec = do(t, server, http.MethodGet, "/landmarks/secret", "alice")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, server, http.MethodDelete, "/landmarks/mine", "alice")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, server, http.MethodDelete, "/landmarks/mine", "alice")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	names, err := landmarks.List(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, names)
}

func TestAPIServer_NewUserGetsEmptyList(t *testing.T) {
	server, landmarks, _ := newTestAPIServer(t)

	rec := do(t, server, http.MethodGet, "/landmarks", "carol")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, 1, landmarks.Users())
}

func TestAPIServer_Death(t *testing.T) {
	server, _, deaths := newTestAPIServer(t)

	rec := do(t, server, http.MethodGet, "/death", "alice")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, deaths.RecordDeath(context.Background(), "alice", kinematic.Vector{X: 50, Y: 75}))
	rec = do(t, server, http.MethodGet, "/death", "alice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"x":50,"y":75}`, rec.Body.String())
}

func TestAPIServer_Auth(t *testing.T) {
	server, _, _ := newTestAPIServer(t)

	rec := do(t, server, http.MethodGet, "/landmarks", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/landmarks", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, server, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, server, http.MethodOptions, "/landmarks", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewAPIServer_RequiresVerifyingProvider(t *testing.T) {
	_, err := NewAPIServer(NewAPIServerOptions{
		AuthProvider: authproviders.NewTrustedAuthProvider(),
		Landmarks:    store.NewInMemoryLandmarkStore(),
		Deaths:       store.NewInMemoryDeathStore(),
	})
	assert.ErrorIs(t, err, ErrUnverifiedAuthProvider)

	_, err = NewAPIServer(NewAPIServerOptions{
		Landmarks: store.NewInMemoryLandmarkStore(),
		Deaths:    store.NewInMemoryDeathStore(),
	})
	assert.ErrorIs(t, err, ErrUnverifiedAuthProvider)
}

func TestAPIServer_RejectsBareUserID(t *testing.T) {
	server, landmarks, _ := newTestAPIServer(t)
	_, err := landmarks.Add(context.Background(), "alice", "home", kinematic.Vector{X: 1, Y: 2})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/landmarks/home", nil)
	req.Header.Set("Authorization", "Bearer alice")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	names, err := landmarks.List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, names)
}
