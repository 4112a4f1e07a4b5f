package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"
)

type UserHandler struct {
	userService       service.UserService
	conversionService service.ConversionService
	qrService         service.QRCodeService
}

func NewUserHandler(userService service.UserService, conversionService service.ConversionService, qrService service.QRCodeService) *UserHandler {
	return &UserHandler{userService: userService, conversionService: conversionService, qrService: qrService}
}

// RegisterRoutes mounts v1 user routes
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/users/me", authMw(http.HandlerFunc(h.getDashboard)))
}

// getDashboard godoc
// @Summary Get the signed-in user's dashboard
// @Description Returns the user's profile, remaining quota, conversion history and QR code history.
// @Tags users
// @Produce json
// @Success 200 {object} dto.DashboardResponseDTO
// @Failure 401 {string} string "unauthorized"
// @Router /users/me [get]
func (h *UserHandler) getDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	conversions, err := h.conversionService.History(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to retrieve conversion history: "+err.Error(), http.StatusInternalServerError)
		return
	}
	qrCodes, err := h.qrService.List(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to retrieve QR codes: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := dto.DashboardResponseDTO{
		User:            toUserResponse(user),
		Conversions:     make([]dto.ConversionItemDTO, 0, len(conversions)),
		QRCodes:         make([]dto.QRCodeItemDTO, 0, len(qrCodes)),
		ConversionCount: len(conversions),
		QRCodeCount:     len(qrCodes),
	}
	for _, c := range conversions {
		resp.Conversions = append(resp.Conversions, dto.ConversionItemDTO{
			ID:                c.ID,
			SourceFormat:      c.SourceFormat,
			TargetFormat:      c.TargetFormat,
			OriginalFilename:  c.OriginalFilename,
			ConvertedFilename: c.ConvertedFilename,
			Status:            c.Status,
			CreatedAt:         c.CreatedAt,
		})
	}
	for _, q := range qrCodes {
		resp.QRCodes = append(resp.QRCodes, dto.QRCodeItemDTO{
			ID:        q.ID,
			Content:   q.Content,
			Type:      q.Type,
			Name:      q.Name,
			CreatedAt: q.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
