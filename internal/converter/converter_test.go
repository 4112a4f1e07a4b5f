package converter

import (
	"archive/zip"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	docx "github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupported(t *testing.T) {
	cases := []struct {
		source, target string
		want           bool
	}{
		{"pdf", "docx", true},
		{"docx", "pdf", true},
		{"jpg", "png", true},
		{"jpg", "jpeg", true},
		{"png", "webp", true},
		{"webp", "jpg", true},
		{"png", "pdf", true},
		{"pdf", "png", true},
		{"pdf", "pdf", false},
		{"png", "png", false},
		{"docx", "jpg", false},
		{"jpeg", "docx", false},
		{"txt", "pdf", false},
		{"pdf", "gif", false},
		{"", "pdf", false},
	}
	for _, tc := range cases {
		if got := Supported(tc.source, tc.target); got != tc.want {
			t.Errorf("Supported(%q, %q) = %v, want %v", tc.source, tc.target, got, tc.want)
		}
	}
}

func writeTestPNG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 12), G: uint8(y * 25), B: 128, A: 255})
		}
	}
	path := filepath.Join(dir, "in.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestReencodePNGToJPG(t *testing.T) {
	dir := t.TempDir()
	inPath := writeTestPNG(t, dir)
	outPath := filepath.Join(dir, "out.jpg")

	err := NewEngine().Convert(context.Background(), "png", "jpg", inPath, outPath)
	require.NoError(t, err)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())
}

func TestImageToPDF(t *testing.T) {
	dir := t.TempDir()
	inPath := writeTestPNG(t, dir)
	outPath := filepath.Join(dir, "out.pdf")

	err := NewEngine().Convert(context.Background(), "png", "pdf", inPath, outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, len(data) > 4 && string(data[:4]) == "%PDF", "expected a PDF header")
}

func TestPDFToImagePlaceholder(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.png")

	err := NewEngine().Convert(context.Background(), "pdf", "png", filepath.Join(dir, "in.pdf"), outPath)
	require.NoError(t, err)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 1000, img.Bounds().Dy())
}

func writeTestDocx(t *testing.T, dir string, lines []string) string {
	t.Helper()
	doc := docx.New().WithDefaultTheme()
	for _, line := range lines {
		doc.AddParagraph().AddText(line)
	}
	path := filepath.Join(dir, "in.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = doc.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return path
}

func TestExtractDocxParagraphs(t *testing.T) {
	dir := t.TempDir()
	path := writeTestDocx(t, dir, []string{"first line", "second line"})

	paragraphs, err := extractDocxParagraphs(path)
	require.NoError(t, err)
	assert.Contains(t, paragraphs, "first line")
	assert.Contains(t, paragraphs, "second line")
}

func TestExtractDocxParagraphsKeepsRunOrder(t *testing.T) {
	const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:r>
        <w:rPr><w:b/></w:rPr>
        <w:t>before</w:t>
        <w:br/>
        <w:t>after</w:t>
      </w:r>
    </w:p>
    <w:p>
      <w:r><w:t>left</w:t><w:tab/><w:t>right</w:t></w:r>
    </w:p>
  </w:body>
</w:document>`

	path := filepath.Join(t.TempDir(), "in.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	entry, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = entry.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	paragraphs, err := extractDocxParagraphs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"before", "after", "left\tright"}, paragraphs)
}

func TestDocxToPDF(t *testing.T) {
	dir := t.TempDir()
	inPath := writeTestDocx(t, dir, []string{"hello from the converter"})
	outPath := filepath.Join(dir, "out.pdf")

	err := NewEngine().Convert(context.Background(), "docx", "pdf", inPath, outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, len(data) > 4 && string(data[:4]) == "%PDF", "expected a PDF header")
}

func TestConvertLeavesNoOutputOnFailure(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(inPath, []byte("not a jpeg"), 0o644))
	outPath := filepath.Join(dir, "out.png")

	err := NewEngine().Convert(context.Background(), "jpg", "png", inPath, outPath)
	require.Error(t, err)
	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr), "expected no partial output file")
}

func TestConvertUnknownPair(t *testing.T) {
	err := NewEngine().Convert(context.Background(), "docx", "png", "in", "out")
	require.ErrorIs(t, err, ErrUnsupportedConversion)
}

func TestConvertCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewEngine().Convert(ctx, "png", "jpg", "in", "out")
	require.ErrorIs(t, err, context.Canceled)
}

func TestSplitParagraphs(t *testing.T) {
	got := splitParagraphs("a\r\nb\n\nc\n")
	assert.Equal(t, []string{"a", "b", "", "c"}, got)
	assert.Equal(t, []string{""}, splitParagraphs(""))
}
