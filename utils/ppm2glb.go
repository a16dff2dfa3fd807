package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/voxelsplace/plainppm/go/api"
)

// RunPPM2GLB reads an image and writes it as a textured quad .glb.
func RunPPM2GLB(inputPath, outputPath string) error {
	img, err := ReadImageFile(inputPath, api.ReadOptions{})
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}
	glb, err := api.ImageToGLB(img)
	if err != nil {
		return fmt.Errorf("failed to build glb: %w", err)
	}
	if err := os.WriteFile(outputPath, glb, 0o644); err != nil {
		return err
	}
	logSaved(outputPath, img)
	return nil
}

// RunIdentify describes the PPM stream in path, which may be compressed.
func RunIdentify(path string) (api.Info, error) {
	r, err := OpenReader(path)
	if err != nil {
		return api.Info{}, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return api.Info{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return api.Identify(data)
}
