package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app/internal/api/v1/dto"
	"app/internal/converter"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/service"
	"app/internal/util"
)

func TestDashboardIncludesHistoryCounts(t *testing.T) {
	store := repository.NewMemoryStore()
	userSvc := service.NewUserService(store, 5, zerolog.Nop())
	quotaSvc := service.NewQuotaService(store, 5, 24*time.Hour, time.Hour, zerolog.Nop())
	conversionSvc := service.NewConversionService(store, quotaSvc, converter.NewEngine(), t.TempDir(), false, zerolog.Nop())
	qrSvc := service.NewQRCodeService(store, zerolog.Nop())

	h := NewUserHandler(userSvc, conversionSvc, qrSvc)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, middleware.AuthMiddleware(testSecret))

	ctx := context.Background()
	u, err := userSvc.Register(ctx, "erin", "erin@example.com", "hunter2222")
	require.NoError(t, err)
	_, _, err = qrSvc.Generate(ctx, u.ID, "https://example.com", "", "", nil)
	require.NoError(t, err)
	_, _, err = qrSvc.Generate(ctx, u.ID, "hello", "text", "", nil)
	require.NoError(t, err)

	token, err := util.GenerateJWT(u.ID, testSecret, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.DashboardResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "erin", resp.User.Username)
	assert.Len(t, resp.QRCodes, 2)
	assert.Equal(t, 2, resp.QRCodeCount)
	assert.Equal(t, 0, resp.ConversionCount)

	// The count keys are present even when a list is empty.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Contains(t, raw, "conversionCount")
	assert.Contains(t, raw, "qrCodeCount")
}
