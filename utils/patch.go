package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/voxelsplace/plainppm/go/api"
	"github.com/voxelsplace/plainppm/go/ppm"
)

// pixelUpdates is { "<row-major pixel index>": [r, g, b], ... }
type pixelUpdates map[string][3]uint16

// RunPatch applies a JSON updates blob to an existing image and writes the
// result. Nothing is clamped: an index past the end or a channel above
// maxval fails the whole patch.
func RunPatch(jsonUpdates []byte, inputPath, outputPath string) error {
	img, err := ReadImageFile(inputPath, api.ReadOptions{})
	if err != nil {
		return fmt.Errorf("failed to load input image: %w", err)
	}
	if err := applyUpdates(img, jsonUpdates); err != nil {
		return err
	}
	if err := WriteImageFile(outputPath, img, ""); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	logSaved(outputPath, img)
	return nil
}

// RunPatchFile is RunPatch with the updates read from a file.
func RunPatchFile(updatesPath, inputPath, outputPath string) error {
	data, err := os.ReadFile(updatesPath)
	if err != nil {
		return err
	}
	return RunPatch(data, inputPath, outputPath)
}

func applyUpdates(img *ppm.Image, jsonBlob []byte) error {
	var up pixelUpdates
	if err := json.Unmarshal(jsonBlob, &up); err != nil {
		return fmt.Errorf("invalid updates JSON: %w", err)
	}
	for idxStr, rgb := range up {
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return fmt.Errorf("invalid pixel index '%s': %w", idxStr, err)
		}
		if idx < 0 || idx >= len(img.Pixels) {
			return fmt.Errorf("pixel index %d outside image of %d pixels", idx, len(img.Pixels))
		}
		img.Pixels[idx] = ppm.NewPixel(rgb[0], rgb[1], rgb[2])
	}
	return img.Validate()
}
