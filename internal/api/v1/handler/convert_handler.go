package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"app/internal/api/v1/dto"
	"app/internal/converter"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// ConvertHandler handles file conversion uploads and history.
type ConvertHandler struct {
	conversionService service.ConversionService
	userService       service.UserService
	tempDir           string
	maxUploadBytes    int64
	logger            zerolog.Logger
}

func NewConvertHandler(conversionService service.ConversionService, userService service.UserService, tempDir string, maxUploadBytes int64, logger zerolog.Logger) *ConvertHandler {
	return &ConvertHandler{
		conversionService: conversionService,
		userService:       userService,
		tempDir:           tempDir,
		maxUploadBytes:    maxUploadBytes,
		logger:            logger,
	}
}

// RegisterRoutes mounts the conversion routes. /convert authenticates
// with a session token, /convert/api with an x-api-key header.
func (h *ConvertHandler) RegisterRoutes(mux *http.ServeMux, authMw, apiKeyMw func(http.Handler) http.Handler) {
	mux.Handle("/convert", authMw(http.HandlerFunc(h.convert)))
	mux.Handle("/convert/api", apiKeyMw(http.HandlerFunc(h.convert)))
	mux.Handle("/conversions", authMw(http.HandlerFunc(h.history)))
}

// convert godoc
// @Summary Convert an uploaded file to another format
// @Description Accepts a multipart upload and streams back the converted file. Each conversion consumes one unit of the caller's daily quota unless the account is pro.
// @Tags convert
// @Accept mpfd
// @Produce octet-stream
// @Param file formData file true "File to convert"
// @Param targetFormat formData string true "Target format (pdf, docx, jpg, jpeg, png, webp)"
// @Success 200 {file} binary "Converted file"
// @Failure 400 {string} string "unsupported conversion"
// @Failure 403 {object} map[string]string "daily limit reached"
// @Router /convert [post]
func (h *ConvertHandler) convert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	targetFormat := r.FormValue("targetFormat")
	if targetFormat == "" {
		http.Error(w, "Missing targetFormat field", http.StatusBadRequest)
		return
	}

	// Spool the upload to the temp dir; the converter works on paths.
	inPath := filepath.Join(h.tempDir, uuid.NewString()[:8]+"_in"+filepath.Ext(header.Filename))
	in, err := os.Create(inPath)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create upload temp file")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer os.Remove(inPath)
	if _, err := io.Copy(in, file); err != nil {
		in.Close()
		h.logger.Error().Err(err).Msg("failed to spool upload")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	in.Close()

	result, err := h.conversionService.Convert(r.Context(), user, header.Filename, inPath, r.FormValue("sourceFormat"), targetFormat)
	if err != nil {
		switch {
		case errors.Is(err, converter.ErrUnsupportedConversion):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrQuotaExceeded):
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "daily conversion limit reached",
				"message": "Upgrade to Pro for unlimited conversions.",
			})
		default:
			h.logger.Error().Err(err).Msg("conversion failed")
			http.Error(w, "conversion failed", http.StatusInternalServerError)
		}
		return
	}
	defer os.Remove(result.Path)

	out, err := os.Open(result.Path)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to open converted file")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer out.Close()

	ct := contentTypes[strings.TrimPrefix(filepath.Ext(result.Filename), ".")]
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	if _, err := io.Copy(w, out); err != nil {
		h.logger.Error().Err(err).Msg("failed to stream converted file")
	}
}

// history godoc
// @Summary List the caller's conversion history
// @Tags convert
// @Produce json
// @Success 200 {array} dto.ConversionItemDTO
// @Router /conversions [get]
func (h *ConvertHandler) history(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conversions, err := h.conversionService.History(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to retrieve conversion history: "+err.Error(), http.StatusInternalServerError)
		return
	}
	items := make([]dto.ConversionItemDTO, 0, len(conversions))
	for _, c := range conversions {
		items = append(items, dto.ConversionItemDTO{
			ID:                c.ID,
			SourceFormat:      c.SourceFormat,
			TargetFormat:      c.TargetFormat,
			OriginalFilename:  c.OriginalFilename,
			ConvertedFilename: c.ConvertedFilename,
			Status:            c.Status,
			CreatedAt:         c.CreatedAt,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}
