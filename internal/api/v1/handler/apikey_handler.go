package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// APIKeyHandler handles programmatic access key management.
type APIKeyHandler struct {
	apiKeyService service.APIKeyService
	userService   service.UserService
	validate      *validator.Validate
	logger        zerolog.Logger
}

func NewAPIKeyHandler(apiKeyService service.APIKeyService, userService service.UserService, v *validator.Validate, logger zerolog.Logger) *APIKeyHandler {
	return &APIKeyHandler{apiKeyService: apiKeyService, userService: userService, validate: v, logger: logger}
}

// RegisterRoutes mounts v1 API key routes
func (h *APIKeyHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/api-keys", authMw(http.HandlerFunc(h.handleKeys)))
	mux.Handle("/api-keys/", authMw(http.HandlerFunc(h.revokeKey)))
}

// requireProUser resolves the signed-in user and rejects free-tier
// callers. Every /api-keys route is pro-only.
func (h *APIKeyHandler) requireProUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	if !user.IsPro {
		http.Error(w, "pro subscription required", http.StatusForbidden)
		return 0, false
	}
	return userID, true
}

func (h *APIKeyHandler) handleKeys(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createKey(w, r)
	case http.MethodGet:
		h.listKeys(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// createKey godoc
// @Summary Create an API key
// @Description Issues a new key for programmatic conversions. Requires a pro subscription. The full key value is only included in this response.
// @Tags api-keys
// @Accept json
// @Produce json
// @Param key body dto.APIKeyCreateDTO true "Key creation request"
// @Success 201 {object} dto.APIKeyCreatedDTO
// @Failure 403 {string} string "pro subscription required"
// @Router /api-keys [post]
func (h *APIKeyHandler) createKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req dto.APIKeyCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	key, err := h.apiKeyService.Create(r.Context(), user, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrProRequired) {
			http.Error(w, "pro subscription required", http.StatusForbidden)
			return
		}
		h.logger.Error().Err(err).Msg("failed to create API key")
		http.Error(w, "failed to create API key", http.StatusInternalServerError)
		return
	}

	resp := dto.APIKeyCreatedDTO{ID: key.ID, Name: key.Name, Key: key.Key, CreatedAt: key.CreatedAt}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// listKeys godoc
// @Summary List the caller's active API keys
// @Description Key values are masked; only a short prefix is returned.
// @Tags api-keys
// @Produce json
// @Success 200 {array} dto.APIKeyItemDTO
// @Failure 403 {string} string "pro subscription required"
// @Router /api-keys [get]
func (h *APIKeyHandler) listKeys(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireProUser(w, r)
	if !ok {
		return
	}
	keys, err := h.apiKeyService.List(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to retrieve API keys: "+err.Error(), http.StatusInternalServerError)
		return
	}
	items := make([]dto.APIKeyItemDTO, 0, len(keys))
	for _, k := range keys {
		items = append(items, dto.APIKeyItemDTO{
			ID:        k.ID,
			Name:      k.Name,
			Key:       k.Key,
			LastUsed:  k.LastUsed,
			CreatedAt: k.CreatedAt,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// revokeKey godoc
// @Summary Revoke an API key
// @Description Deactivates the key. A key owned by another user is reported as not found.
// @Tags api-keys
// @Param id path int true "Key ID"
// @Success 204 "revoked"
// @Failure 403 {string} string "pro subscription required"
// @Failure 404 {string} string "api key not found"
// @Router /api-keys/{id} [delete]
func (h *APIKeyHandler) revokeKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := h.requireProUser(w, r)
	if !ok {
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/api-keys/")
	keyID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid key id", http.StatusBadRequest)
		return
	}
	if err := h.apiKeyService.Revoke(r.Context(), userID, keyID); err != nil {
		if errors.Is(err, service.ErrAPIKeyNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Msg("failed to revoke API key")
		http.Error(w, "failed to revoke API key", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
