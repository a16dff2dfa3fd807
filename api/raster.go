package api

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/voxelsplace/plainppm/go/ppm"
)

// Format names an image container the tools read or write.
type Format string

const (
	FormatPPM  Format = "ppm"
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// FormatFromPath picks a format from a file name, looking through a
// trailing .gz or .zst.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(TrimCompressionExt(path)))
	switch ext {
	case ".ppm", ".pnm":
		return FormatPPM, nil
	case ".png":
		return FormatPNG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	}
	return "", fmt.Errorf("unsupported image extension %q", ext)
}

// TrimCompressionExt strips a .gz or .zst suffix.
func TrimCompressionExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".zst":
		return strings.TrimSuffix(path, filepath.Ext(path))
	}
	return path
}

// ReadOptions control how ReadImage turns its input into a PPM image.
type ReadOptions struct {
	// Maxval for images converted from other formats. Zero means 255.
	Maxval uint16
	// Strict rejects trailing data after a PPM image.
	Strict bool
	// MaxPixels overrides ppm.DefaultMaxPixels when non-zero.
	MaxPixels uint64
}

// ReadImage reads one image in format f from r. Formats other than PPM are
// sniffed from the content, so f only selects the PPM decoder.
func ReadImage(r io.Reader, f Format, opts ReadOptions) (*ppm.Image, error) {
	if f == FormatPPM {
		dec := ppm.NewDecoder(r)
		dec.Strict = opts.Strict
		dec.MaxPixels = opts.MaxPixels
		return dec.Decode()
	}
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", f, err)
	}
	maxval := opts.Maxval
	if maxval == 0 {
		maxval = 255
	}
	return ppm.FromImage(src, maxval)
}

// WriteImage writes img to w in format f. comment is only used for PPM.
func WriteImage(w io.Writer, img *ppm.Image, f Format, comment string) error {
	switch f {
	case FormatPPM:
		enc := ppm.NewEncoder(w, img.Header)
		enc.Comment = comment
		return enc.Encode(img.Pixels)
	case FormatPNG:
		return png.Encode(w, img.ToImage())
	case FormatBMP:
		return bmp.Encode(w, img.ToImage())
	case FormatTIFF:
		return tiff.Encode(w, img.ToImage(), &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unsupported output format %q", f)
}

// MaxvalFromInt narrows a caller-supplied maxval, rejecting values a
// header cannot hold instead of letting them wrap.
func MaxvalFromInt(v int) (uint16, error) {
	if v < 1 || v >= math.MaxUint16 {
		return 0, fmt.Errorf("%w: maxval %d outside [1, %d]", ppm.ErrInvalidHeader, v, math.MaxUint16-1)
	}
	return uint16(v), nil
}

// PPMTo converts PPM bytes into format f.
func PPMTo(data []byte, f Format) ([]byte, error) {
	img, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := WriteImage(&out, img, f, ""); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// ImageToPPM converts PNG, BMP or TIFF bytes into PPM bytes.
func ImageToPPM(data []byte, maxval uint16) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	img, err := ReadImage(bytes.NewReader(data), FormatPNG, ReadOptions{Maxval: maxval})
	if err != nil {
		return nil, err
	}
	return EncodeBytes(img.Header, img.Pixels)
}
