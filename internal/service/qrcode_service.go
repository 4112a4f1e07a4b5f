package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	qrcode "github.com/skip2/go-qrcode"

	"app/internal/model"
	"app/internal/repository"
)

const (
	defaultQRSize       = 300
	defaultQRMargin     = 4
	defaultQRColor      = "#000000"
	defaultQRBackground = "#ffffff"
)

type QRCodeService interface {
	Generate(ctx context.Context, userID int64, content, qrType, name string, opts *model.QRCodeOptions) (*model.QRCode, string, error)
	List(ctx context.Context, userID int64) ([]model.QRCode, error)
}

type qrCodeService struct {
	qrRepo repository.QRCodeRepository
	logger zerolog.Logger
}

// NewQRCodeService creates a new QRCodeService with a scoped logger.
func NewQRCodeService(qrRepo repository.QRCodeRepository, logger zerolog.Logger) QRCodeService {
	return &qrCodeService{
		qrRepo: qrRepo,
		logger: logger.With().Str("service", "QRCodeService").Logger(),
	}
}

// Generate renders the content as an SVG QR code and records it in the
// user's history. Missing options fall back to defaults.
func (s *qrCodeService) Generate(ctx context.Context, userID int64, content, qrType, name string, opts *model.QRCodeOptions) (*model.QRCode, string, error) {
	if qrType == "" {
		qrType = "url"
	}
	if name == "" {
		name = fmt.Sprintf("QR-%d", time.Now().Unix())
	}
	opts = normalizeQROptions(opts)

	code, err := qrcode.New(content, qrcode.High)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to encode QR code")
		return nil, "", err
	}
	code.DisableBorder = true
	svg := renderQRSVG(code.Bitmap(), opts)

	record := &model.QRCode{
		UserID:  userID,
		Content: content,
		Type:    qrType,
		Name:    name,
		Options: opts,
	}
	if err := s.qrRepo.CreateQRCode(ctx, record); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to record QR code")
		return nil, "", err
	}
	return record, svg, nil
}

func (s *qrCodeService) List(ctx context.Context, userID int64) ([]model.QRCode, error) {
	return s.qrRepo.GetQRCodesByUserID(ctx, userID)
}

func normalizeQROptions(opts *model.QRCodeOptions) *model.QRCodeOptions {
	out := model.QRCodeOptions{
		Color:           defaultQRColor,
		BackgroundColor: defaultQRBackground,
		Size:            defaultQRSize,
		Margin:          defaultQRMargin,
	}
	if opts != nil {
		if opts.Color != "" {
			out.Color = opts.Color
		}
		if opts.BackgroundColor != "" {
			out.BackgroundColor = opts.BackgroundColor
		}
		if opts.Size > 0 {
			out.Size = opts.Size
		}
		if opts.Margin > 0 {
			out.Margin = opts.Margin
		}
	}
	return &out
}

// renderQRSVG emits one unit rect per dark module on a quiet-zone
// margin measured in modules, scaled by the viewBox to the target size.
func renderQRSVG(bitmap [][]bool, opts *model.QRCodeOptions) string {
	modules := len(bitmap)
	total := modules + 2*opts.Margin

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		opts.Size, opts.Size, total, total)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="%s"/>`, total, total, opts.BackgroundColor)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="1" height="1" fill="%s"/>`,
					x+opts.Margin, y+opts.Margin, opts.Color)
			}
		}
	}
	sb.WriteString("</svg>")
	return sb.String()
}
