package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/repository"
	"app/internal/service"
	"app/internal/util"
)

type qrFixture struct {
	mux  *http.ServeMux
	user *model.User
}

func newQRFixture(t *testing.T) *qrFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	userSvc := service.NewUserService(store, 5, zerolog.Nop())
	qrSvc := service.NewQRCodeService(store, zerolog.Nop())

	h := NewQRCodeHandler(qrSvc, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, middleware.AuthMiddleware(testSecret))

	u, err := userSvc.Register(context.Background(), "dave", "dave@example.com", "hunter2222")
	require.NoError(t, err)
	return &qrFixture{mux: mux, user: u}
}

func (f *qrFixture) post(t *testing.T, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/qr-code", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	token, err := util.GenerateJWT(f.user.ID, testSecret, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestGenerateQRCodeReturnsRecordAndSVG(t *testing.T) {
	f := newQRFixture(t)

	rec := f.post(t, dto.QRCodeCreateDTO{
		Content: "https://example.com",
		Name:    "homepage",
		Options: &dto.QRCodeOptionsDTO{Color: "#112233", Size: 400},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp dto.QRCodeResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.QRCode.ID)
	assert.Equal(t, "https://example.com", resp.QRCode.Content)
	assert.Equal(t, "url", resp.QRCode.Type)
	assert.Equal(t, "homepage", resp.QRCode.Name)
	require.NotNil(t, resp.QRCode.Options)
	assert.Equal(t, "#112233", resp.QRCode.Options.Color)
	assert.True(t, strings.HasPrefix(resp.QRSvg, "<svg"))
	assert.Contains(t, resp.QRSvg, "#112233")
}

func TestGenerateQRCodeRejectsBadOptions(t *testing.T) {
	f := newQRFixture(t)

	rec := f.post(t, dto.QRCodeCreateDTO{
		Content: "hello",
		Options: &dto.QRCodeOptionsDTO{Color: "not-a-color"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
