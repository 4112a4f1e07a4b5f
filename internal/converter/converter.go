// Package converter routes a (sourceFormat, targetFormat) pair to the
// library call that performs it. Callers validate the pair with Supported
// before consuming quota; Convert itself never touches accounting state.
package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrUnsupportedConversion is returned for any pair outside the dispatch table.
var ErrUnsupportedConversion = errors.New("unsupported conversion")

// Formats is the fixed allow-list of format tags accepted anywhere in the API.
var Formats = map[string]bool{
	"pdf":  true,
	"docx": true,
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
}

func isImage(format string) bool {
	switch format {
	case "jpg", "jpeg", "png", "webp":
		return true
	}
	return false
}

// Supported reports whether the pair is in the dispatch table. Identical
// source and target is rejected; re-encoding jpg to jpeg is allowed.
func Supported(source, target string) bool {
	if !Formats[source] || !Formats[target] || source == target {
		return false
	}
	switch {
	case source == "pdf" && target == "docx":
		return true
	case source == "docx" && target == "pdf":
		return true
	case isImage(source) && isImage(target):
		return true
	case isImage(source) && target == "pdf":
		return true
	case source == "pdf" && isImage(target):
		return true
	}
	return false
}

// Converter is the dispatch contract the conversion service depends on.
type Converter interface {
	Convert(ctx context.Context, source, target, inPath, outPath string) error
}

// Engine is the production Converter backed by the format libraries.
type Engine struct{}

// NewEngine creates the production conversion engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Convert reads inPath, writes the converted artifact to outPath, and leaves
// no partial output behind on failure.
func (e *Engine) Convert(ctx context.Context, source, target, inPath, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var err error
	switch {
	case source == "pdf" && target == "docx":
		err = pdfToDocx(inPath, outPath)
	case source == "docx" && target == "pdf":
		err = docxToPDF(inPath, outPath)
	case isImage(source) && isImage(target):
		err = reencodeImage(source, target, inPath, outPath)
	case isImage(source) && target == "pdf":
		err = imageToPDF(source, inPath, outPath)
	case source == "pdf" && isImage(target):
		err = pdfToImage(target, outPath)
	default:
		return fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, source, target)
	}

	if err != nil {
		os.Remove(outPath)
		return fmt.Errorf("converting %s to %s: %w", source, target, err)
	}
	return nil
}
