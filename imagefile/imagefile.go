// Package imagefile loads images in any common format and persists them only
// in formats that keep every pixel value exactly, so LSB payloads survive.
package imagefile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	stego "github.com/yyyoichi/stego_zero"
)

type Format string

const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	WebP Format = "webp"
)

// Lossless reports whether f stores 8-bit RGB samples without quantisation.
// JPEG and WebP quantise, GIF reduces to a palette.
func (f Format) Lossless() bool {
	switch f {
	case PNG, BMP, TIFF:
		return true
	}
	return false
}

var extensions = map[string]Format{
	".png":  PNG,
	".bmp":  BMP,
	".tif":  TIFF,
	".tiff": TIFF,
	".jpg":  JPEG,
	".jpeg": JPEG,
	".gif":  GIF,
	".webp": WebP,
}

// FormatFromPath returns the format implied by the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: extension %q", stego.ErrUnsupportedFormat, ext)
}

// CheckOutput fails unless path names a lossless format.
func CheckOutput(path string) (Format, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return "", err
	}
	if !f.Lossless() {
		return "", fmt.Errorf("%w: %s", stego.ErrLossyFormat, f)
	}
	return f, nil
}

// Load reads and decodes the image at path.
func Load(ctx context.Context, path string) (image.Image, Format, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", stego.ErrFileNotFound, path)
		}
		return nil, "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}

// Decode decodes an image in any of the registered formats.
func Decode(r io.Reader) (image.Image, Format, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", fmt.Errorf("%w: %w", stego.ErrUnsupportedFormat, err)
		}
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, Format(name), nil
}

// Encode writes img to w in format f. Only lossless formats are accepted.
func Encode(w io.Writer, f Format, img image.Image) error {
	switch f {
	case PNG:
		enc := &png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(w, img); err != nil {
			return fmt.Errorf("encode PNG: %w", err)
		}
	case BMP:
		if err := bmp.Encode(w, img); err != nil {
			return fmt.Errorf("encode BMP: %w", err)
		}
	case TIFF:
		if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return fmt.Errorf("encode TIFF: %w", err)
		}
	case JPEG, GIF, WebP:
		return fmt.Errorf("%w: %s", stego.ErrLossyFormat, f)
	default:
		return fmt.Errorf("%w: %q", stego.ErrUnsupportedFormat, f)
	}
	return nil
}

// Save writes img to path in the format implied by its extension.
// The file is written next to path and renamed into place, so a failed save
// never leaves a partial artifact behind.
func Save(ctx context.Context, path string, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	format, err := CheckOutput(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	w := bufio.NewWriter(tmp)
	if err := Encode(w, format, img); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
