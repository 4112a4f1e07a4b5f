package handler

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app/internal/converter"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/repository"
	"app/internal/service"
	"app/internal/util"
)

type convertFixture struct {
	mux    *http.ServeMux
	store  *repository.MemoryStore
	user   *model.User
	apiKey service.APIKeyService
}

func newConvertFixture(t *testing.T, freeQuota int) *convertFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	tempDir := t.TempDir()

	quotaSvc := service.NewQuotaService(store, freeQuota, 24*time.Hour, time.Hour, zerolog.Nop())
	userSvc := service.NewUserService(store, freeQuota, zerolog.Nop())
	conversionSvc := service.NewConversionService(store, quotaSvc, converter.NewEngine(), tempDir, false, zerolog.Nop())
	apiKeySvc := service.NewAPIKeyService(store, store, zerolog.Nop())

	h := NewConvertHandler(conversionSvc, userSvc, tempDir, 8<<20, zerolog.Nop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, middleware.AuthMiddleware(testSecret), middleware.APIKeyMiddleware(apiKeySvc))

	u, err := userSvc.Register(context.Background(), "alice", "alice@example.com", "hunter2222")
	require.NoError(t, err)

	return &convertFixture{mux: mux, store: store, user: u, apiKey: apiKeySvc}
}

func buildUpload(t *testing.T, filename, targetFormat string) (*bytes.Buffer, string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < 8; i++ {
		img.Set(i, i, color.RGBA{R: 255, A: 255})
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, img))
	require.NoError(t, mw.WriteField("targetFormat", targetFormat))
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func (f *convertFixture) bearerToken(t *testing.T) string {
	t.Helper()
	token, err := util.GenerateJWT(f.user.ID, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func TestConvertEndpoint(t *testing.T) {
	f := newConvertFixture(t, 5)
	body, contentType := buildUpload(t, "photo.png", "jpg")

	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+f.bearerToken(t))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment; filename="`)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "_photo.jpg")

	_, err := jpeg.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err, "response body should be a decodable JPEG")

	got, _ := f.store.GetUserByID(context.Background(), f.user.ID)
	assert.Equal(t, 4, got.DailyConversionsRemaining)
}

func TestConvertEndpointQuotaExceeded(t *testing.T) {
	f := newConvertFixture(t, 1)
	token := f.bearerToken(t)

	body, contentType := buildUpload(t, "photo.png", "jpg")
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body, contentType = buildUpload(t, "photo.png", "jpg")
	req = httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upgrade to Pro")
}

func TestConvertEndpointRejectsUnsupportedPair(t *testing.T) {
	f := newConvertFixture(t, 5)

	body, contentType := buildUpload(t, "photo.png", "png")
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+f.bearerToken(t))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	// The body names the rejected pair.
	assert.Contains(t, rec.Body.String(), "png to png")

	// A rejected pair must not cost quota.
	got, _ := f.store.GetUserByID(context.Background(), f.user.ID)
	assert.Equal(t, 5, got.DailyConversionsRemaining)
}

func TestConvertAPIEndpointWithKey(t *testing.T) {
	f := newConvertFixture(t, 5)
	ctx := context.Background()
	require.NoError(t, f.store.UpdateSubscriptionStatus(ctx, f.user.ID, true))
	f.user.IsPro = true
	key, err := f.apiKey.Create(ctx, f.user, "ci")
	require.NoError(t, err)

	body, contentType := buildUpload(t, "photo.png", "jpg")
	req := httptest.NewRequest(http.MethodPost, "/convert/api", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-api-key", key.Key)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
}

func TestConvertAPIEndpointRejectsBadKey(t *testing.T) {
	f := newConvertFixture(t, 5)

	body, contentType := buildUpload(t, "photo.png", "jpg")
	req := httptest.NewRequest(http.MethodPost, "/convert/api", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-api-key", "convert_deadbeef")
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
