package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duncan19760605/GenAI-Kid/internal/config"
	"github.com/duncan19760605/GenAI-Kid/internal/providers"
	"github.com/duncan19760605/GenAI-Kid/internal/repository"
	"github.com/duncan19760605/GenAI-Kid/internal/service"
	"github.com/duncan19760605/GenAI-Kid/internal/session"
	"github.com/duncan19760605/GenAI-Kid/internal/storage"
	"github.com/duncan19760605/GenAI-Kid/internal/ws"
)

type apiFixture struct {
	handler http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()

	db, err := storage.NewSQLite(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.RunMigrations(ctx, db))

	childRepo := repository.NewChildRepository(db)
	convRepo := repository.NewConversationRepository(db)
	auth := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewUserSessionRepository(db),
		childRepo,
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	providerService := service.NewProviderService(repository.NewProviderConfigRepository(db), "test-encryption-key")

	gin.SetMode(gin.TestMode)
	handler := NewRouter(
		auth,
		service.NewChildService(childRepo),
		providerService,
		service.NewUsageService(repository.NewUsageRepository(db)),
		convRepo,
		providers.NewResolver(providerService, config.ProviderDefaults{}),
		ws.NewHandler(auth, childRepo, &session.Factory{Logger: logger}, logger),
		logger,
	)
	return &apiFixture{handler: handler}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) registerParent(t *testing.T) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/parent/auth/register", "", gin.H{
		"email":    "parent@example.com",
		"password": "hunter2hunter2",
		"name":     "Parent",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerParent(t)

	rec := f.do(t, http.MethodGet, "/api/v1/parent/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "parent@example.com", me.Email)

	rec = f.do(t, http.MethodGet, "/api/v1/parent/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/parent/auth/login", "", gin.H{
		"email": "parent@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/parent/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/v1/parent/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChildrenEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerParent(t)

	rec := f.do(t, http.MethodPost, "/api/v1/parent/children", token, gin.H{
		"name": "Mei", "age": 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var child struct {
		ID          string `json:"id"`
		CharacterID string `json:"character_id"`
		LoginCode   string `json:"login_code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &child))
	assert.Equal(t, "bear", child.CharacterID)
	assert.Len(t, child.LoginCode, 6)

	rec = f.do(t, http.MethodPost, "/api/v1/parent/children", token, gin.H{
		"name": "Tiny", "age": 2,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/parent/children", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var children []json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &children))
	assert.Len(t, children, 1)

	rec = f.do(t, http.MethodPut, "/api/v1/parent/children/"+child.ID, token, gin.H{
		"name": "Mei-Mei", "character_id": "cat",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Kid login and character lookup ride on the created child.
	rec = f.do(t, http.MethodPost, "/api/v1/kid/auth/login", "", gin.H{"login_code": child.LoginCode})
	require.Equal(t, http.StatusOK, rec.Code)
	var kid struct {
		AccessToken string `json:"access_token"`
		CharacterID string `json:"character_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kid))
	assert.NotEmpty(t, kid.AccessToken)
	assert.Equal(t, "cat", kid.CharacterID)

	rec = f.do(t, http.MethodGet, "/api/v1/kid/character/"+child.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/parent/children/"+child.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestProviderEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerParent(t)

	rec := f.do(t, http.MethodPost, "/api/v1/parent/providers", token, gin.H{
		"modality":   "llm",
		"vendor":     "anthropic",
		"api_key":    "sk-ant-secret",
		"model_name": "claude-sonnet-4-5-20250929",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sk-ant-secret")

	rec = f.do(t, http.MethodGet, "/api/v1/parent/providers", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var configs []struct {
		Vendor    string `json:"vendor"`
		HasAPIKey bool   `json:"has_api_key"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &configs))
	require.Len(t, configs, 1)
	assert.Equal(t, "anthropic", configs[0].Vendor)
	assert.True(t, configs[0].HasAPIKey)

	rec = f.do(t, http.MethodDelete, "/api/v1/parent/providers/llm/anthropic", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/parent/providers", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestUsageEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerParent(t)

	rec := f.do(t, http.MethodGet, "/api/v1/parent/usage/daily", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/parent/usage/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		TotalSessions int `json:"total_sessions"`
		DaysActive    int `json:"days_active"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Zero(t, summary.TotalSessions)
	assert.Zero(t, summary.DaysActive)
}

func TestStickerWithoutProviderConfig(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerParent(t)

	// No wavespeed key stored and no env default in the fixture.
	rec := f.do(t, http.MethodPost, "/api/v1/kid/sticker", token, gin.H{"prompt": "a happy bear"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "provider_not_configured")
}

func TestConversationEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerParent(t)

	rec := f.do(t, http.MethodGet, "/api/v1/parent/conversations", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/parent/conversations/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
