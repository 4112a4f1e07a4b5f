package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app/internal/middleware"
	"app/internal/model"
	"app/internal/repository"
	"app/internal/service"
	"app/internal/util"
)

type apiKeyFixture struct {
	mux    *http.ServeMux
	store  *repository.MemoryStore
	user   *model.User
	apiKey service.APIKeyService
}

func newAPIKeyFixture(t *testing.T) *apiKeyFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	userSvc := service.NewUserService(store, 5, zerolog.Nop())
	apiKeySvc := service.NewAPIKeyService(store, store, zerolog.Nop())

	h := NewAPIKeyHandler(apiKeySvc, userSvc, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, middleware.AuthMiddleware(testSecret))

	u, err := userSvc.Register(context.Background(), "carol", "carol@example.com", "hunter2222")
	require.NoError(t, err)

	return &apiKeyFixture{mux: mux, store: store, user: u, apiKey: apiKeySvc}
}

func (f *apiKeyFixture) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := util.GenerateJWT(f.user.ID, testSecret, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestAPIKeyRoutesRequireProTier(t *testing.T) {
	f := newAPIKeyFixture(t)

	rec := f.do(t, http.MethodPost, "/api-keys", []byte(`{"name":"ci"}`))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api-keys", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "pro subscription required")

	rec = f.do(t, http.MethodDelete, "/api-keys/1", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPIKeyRoutesForProUser(t *testing.T) {
	f := newAPIKeyFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.UpdateSubscriptionStatus(ctx, f.user.ID, true))

	rec := f.do(t, http.MethodPost, "/api-keys", []byte(`{"name":"ci"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID  int64  `json:"id"`
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.Key, "convert_"))

	rec = f.do(t, http.MethodGet, "/api-keys", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	// Listed keys are masked; the full value never reappears.
	assert.Contains(t, rec.Body.String(), "...")
	assert.NotContains(t, rec.Body.String(), created.Key)

	rec = f.do(t, http.MethodDelete, "/api-keys/"+strconv.FormatInt(created.ID, 10), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
