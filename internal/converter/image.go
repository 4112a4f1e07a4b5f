package converter

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/chai2010/webp"
)

const jpegQuality = 92

func decodeImage(format, path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case "jpg", "jpeg":
		return jpeg.Decode(f)
	case "png":
		return png.Decode(f)
	case "webp":
		return webp.Decode(f)
	}
	return nil, fmt.Errorf("no decoder for format %q", format)
}

func encodeImage(format string, w io.Writer, img image.Image) error {
	switch format {
	case "jpg", "jpeg":
		// JPEG has no alpha channel; flatten onto white first.
		return jpeg.Encode(w, flatten(img), &jpeg.Options{Quality: jpegQuality})
	case "png":
		return png.Encode(w, img)
	case "webp":
		return webp.Encode(w, img, &webp.Options{Quality: 90})
	}
	return fmt.Errorf("no encoder for format %q", format)
}

func reencodeImage(source, target, inPath, outPath string) error {
	img, err := decodeImage(source, inPath)
	if err != nil {
		return fmt.Errorf("decode %s: %w", source, err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := encodeImage(target, out, img); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", target, err)
	}
	return out.Close()
}

// pdfToImage emits a blank page-sized canvas in the target format.
// TODO: render the first page once a PDF rasterizer dependency is chosen.
func pdfToImage(target, outPath string) error {
	const width, height = 800, 1000
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := encodeImage(target, out, canvas); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", target, err)
	}
	return out.Close()
}

func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)
	return flat
}
