package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"app/internal/converter"
	"app/internal/model"
	"app/internal/repository"
)

var ErrQuotaExceeded = errors.New("daily conversion limit reached")

// ConversionResult points at the converted file on disk. The caller
// owns the file and must remove it once the response is written.
type ConversionResult struct {
	Path     string
	Filename string
}

type ConversionService interface {
	// Convert runs a conversion for the user. sourceFormat may be empty, in
	// which case it is derived from the original filename's extension.
	Convert(ctx context.Context, user *model.User, originalFilename, sourcePath, sourceFormat, targetFormat string) (*ConversionResult, error)
	History(ctx context.Context, userID int64) ([]model.Conversion, error)
}

type conversionService struct {
	conversionRepo  repository.ConversionRepository
	quota           QuotaService
	engine          converter.Converter
	tempDir         string
	refundOnFailure bool
	logger          zerolog.Logger
}

// NewConversionService creates a new ConversionService with a scoped logger.
func NewConversionService(conversionRepo repository.ConversionRepository, quota QuotaService, engine converter.Converter, tempDir string, refundOnFailure bool, logger zerolog.Logger) ConversionService {
	return &conversionService{
		conversionRepo:  conversionRepo,
		quota:           quota,
		engine:          engine,
		tempDir:         tempDir,
		refundOnFailure: refundOnFailure,
		logger:          logger.With().Str("service", "ConversionService").Logger(),
	}
}

// Convert validates the format pair, charges the user's quota, runs the
// conversion, and records it in the user's history. The format pair is
// checked before the quota so a rejected pair never costs a conversion.
func (s *conversionService) Convert(ctx context.Context, user *model.User, originalFilename, sourcePath, sourceFormat, targetFormat string) (*ConversionResult, error) {
	source := strings.ToLower(sourceFormat)
	if source == "" {
		source = formatFromFilename(originalFilename)
	}
	target := strings.ToLower(targetFormat)
	if !converter.Supported(source, target) {
		return nil, fmt.Errorf("%w: %s to %s", converter.ErrUnsupportedConversion, source, target)
	}

	ok, err := s.quota.TryConsume(ctx, user)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrQuotaExceeded
	}

	convertedName := convertedFilename(originalFilename, target)
	outPath := filepath.Join(s.tempDir, convertedName)

	if err := s.engine.Convert(ctx, source, target, sourcePath, outPath); err != nil {
		s.logger.Error().Err(err).
			Int64("user_id", user.ID).
			Str("source_format", source).
			Str("target_format", target).
			Msg("Conversion failed")
		if s.refundOnFailure {
			if refundErr := s.quota.Refund(ctx, user); refundErr != nil {
				s.logger.Error().Err(refundErr).Int64("user_id", user.ID).Msg("Failed to refund quota after conversion failure")
			}
		}
		return nil, err
	}

	c := &model.Conversion{
		UserID:            user.ID,
		SourceFormat:      source,
		TargetFormat:      target,
		OriginalFilename:  filepath.Base(originalFilename),
		ConvertedFilename: convertedName,
		Status:            model.ConversionStatusCompleted,
	}
	if err := s.conversionRepo.CreateConversion(ctx, c); err != nil {
		// The user already has their file; a history gap is preferable
		// to failing the request.
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to record conversion")
	}

	return &ConversionResult{Path: outPath, Filename: convertedName}, nil
}

func (s *conversionService) History(ctx context.Context, userID int64) ([]model.Conversion, error) {
	return s.conversionRepo.GetConversionsByUserID(ctx, userID)
}

func formatFromFilename(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// convertedFilename prefixes the original base name with a short unique
// id so parallel conversions of the same file never collide.
func convertedFilename(originalFilename, target string) string {
	base := filepath.Base(originalFilename)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return uuid.NewString()[:8] + "_" + base + "." + target
}
