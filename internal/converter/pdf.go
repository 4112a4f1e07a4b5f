package converter

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ledongthuc/pdf"
)

// A4 content box in millimeters with a 10mm margin on every side.
const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
	pageMarginMM = 10.0
)

// imageToPDF embeds the image as a single page, scaled to fit the content
// box while preserving its aspect ratio. The image is re-encoded to PNG
// first so every allow-listed source format takes the same path.
func imageToPDF(source, inPath, outPath string) error {
	img, err := decodeImage(source, inPath)
	if err != nil {
		return fmt.Errorf("decode %s: %w", source, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode intermediate png: %w", err)
	}

	bounds := img.Bounds()
	maxW := pageWidthMM - 2*pageMarginMM
	maxH := pageHeightMM - 2*pageMarginMM
	w := maxW
	h := w * float64(bounds.Dy()) / float64(bounds.Dx())
	if h > maxH {
		h = maxH
		w = h * float64(bounds.Dx()) / float64(bounds.Dy())
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader("page-image", opts, &buf)
	doc.ImageOptions("page-image", pageMarginMM, pageMarginMM, w, h, false, opts, 0, "")
	if err := doc.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// extractPDFText pulls the plain text out of a PDF document.
func extractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}

// textToPDF lays plain text out as wrapped paragraphs.
func textToPDF(paragraphs []string, outPath string) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pageMarginMM, pageMarginMM, pageMarginMM)
	doc.AddPage()
	doc.SetFont("Helvetica", "", 11)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			doc.Ln(5)
			continue
		}
		doc.MultiCell(0, 5, tr(p), "", "L", false)
		doc.Ln(2)
	}
	if err := doc.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func splitParagraphs(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, strings.TrimRight(line, " \t"))
	}
	// Trim trailing empties so an extractor newline at EOF does not add pages.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}
