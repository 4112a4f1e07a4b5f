package handler

import (
	"encoding/json"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// QRCodeHandler handles QR code generation and history.
type QRCodeHandler struct {
	qrService service.QRCodeService
	validate  *validator.Validate
	logger    zerolog.Logger
}

func NewQRCodeHandler(qrService service.QRCodeService, v *validator.Validate, logger zerolog.Logger) *QRCodeHandler {
	return &QRCodeHandler{qrService: qrService, validate: v, logger: logger}
}

// RegisterRoutes mounts v1 QR code routes
func (h *QRCodeHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/qr-code", authMw(http.HandlerFunc(h.generate)))
	mux.Handle("/qr-codes", authMw(http.HandlerFunc(h.list)))
}

// generate godoc
// @Summary Generate a QR code
// @Description Renders the content as an SVG QR code and records it. QR generation does not consume conversion quota.
// @Tags qr-codes
// @Accept json
// @Produce json
// @Param qrcode body dto.QRCodeCreateDTO true "QR code request"
// @Success 201 {object} dto.QRCodeResponseDTO
// @Failure 400 {string} string "validation failed"
// @Router /qr-code [post]
func (h *QRCodeHandler) generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req dto.QRCodeCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	var opts *model.QRCodeOptions
	if req.Options != nil {
		opts = &model.QRCodeOptions{
			Color:           req.Options.Color,
			BackgroundColor: req.Options.BackgroundColor,
			Size:            req.Options.Size,
			Margin:          req.Options.Margin,
		}
	}

	record, svg, err := h.qrService.Generate(r.Context(), userID, req.Content, req.Type, req.Name, opts)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to generate QR code")
		http.Error(w, "failed to generate QR code", http.StatusInternalServerError)
		return
	}

	resp := dto.QRCodeResponseDTO{
		QRCode: dto.QRCodeRecordDTO{
			ID:        record.ID,
			Content:   record.Content,
			Type:      record.Type,
			Name:      record.Name,
			CreatedAt: record.CreatedAt,
		},
		QRSvg: svg,
	}
	if record.Options != nil {
		resp.QRCode.Options = &dto.QRCodeOptionsDTO{
			Color:           record.Options.Color,
			BackgroundColor: record.Options.BackgroundColor,
			Size:            record.Options.Size,
			Margin:          record.Options.Margin,
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// list godoc
// @Summary List the caller's generated QR codes
// @Tags qr-codes
// @Produce json
// @Success 200 {array} dto.QRCodeItemDTO
// @Router /qr-codes [get]
func (h *QRCodeHandler) list(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	qrCodes, err := h.qrService.List(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to retrieve QR codes: "+err.Error(), http.StatusInternalServerError)
		return
	}
	items := make([]dto.QRCodeItemDTO, 0, len(qrCodes))
	for _, q := range qrCodes {
		items = append(items, dto.QRCodeItemDTO{
			ID:        q.ID,
			Content:   q.Content,
			Type:      q.Type,
			Name:      q.Name,
			CreatedAt: q.CreatedAt,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}
