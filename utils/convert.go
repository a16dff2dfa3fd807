package utils

import (
	"fmt"
	"os"

	"github.com/voxelsplace/plainppm/go/api"
	"github.com/voxelsplace/plainppm/go/ppm"
)

// ConvertOptions tune RunConvert.
type ConvertOptions struct {
	// Maxval for PPM output converted from PNG, BMP or TIFF. Zero means 255.
	Maxval uint16
	// Strict rejects trailing data after a PPM input image.
	Strict bool
	// MaxPixels overrides the decoder's default pixel limit.
	MaxPixels uint64
	// Comment is written into PPM output.
	Comment string
}

func (o ConvertOptions) readOptions() api.ReadOptions {
	return api.ReadOptions{Maxval: o.Maxval, Strict: o.Strict, MaxPixels: o.MaxPixels}
}

// RunConvert converts inputPath to outputPath. Both formats come from the
// file extensions; .gz and .zst suffixes add compression.
func RunConvert(inputPath, outputPath string, opts ConvertOptions) error {
	img, err := ReadImageFile(inputPath, opts.readOptions())
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}
	if err := WriteImageFile(outputPath, img, opts.Comment); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	logSaved(outputPath, img)
	return nil
}

// ReadImageFile reads a single image from path.
func ReadImageFile(path string, opts api.ReadOptions) (*ppm.Image, error) {
	format, err := api.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return api.ReadImage(r, format, opts)
}

// WriteImageFile writes img to path. A partially written file is removed.
func WriteImageFile(path string, img *ppm.Image, comment string) error {
	format, err := api.FormatFromPath(path)
	if err != nil {
		return err
	}
	w, err := CreateWriter(path)
	if err != nil {
		return err
	}
	err = api.WriteImage(w, img, format, comment)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
	}
	return err
}

func logSaved(path string, img *ppm.Image) {
	if fi, err := os.Stat(path); err == nil {
		ppm.Logger().Info("image saved", "path", path, "header", img.Header.String(), "bytes", fi.Size())
	}
}
