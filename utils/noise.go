package utils

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/voxelsplace/plainppm/go/ppm"
)

// NoiseOptions describe the images RunGenerateNoise writes.
type NoiseOptions struct {
	Width, Height uint32
	Maxval        uint16
	// PercentageMin and PercentageMax bound the share of non-black pixels;
	// each file draws its own value uniformly from the range.
	PercentageMin, PercentageMax float64
	// Seed makes the output reproducible. Zero seeds from the clock.
	Seed int64
}

// generateNoiseImage fills the given percentage of pixels with random
// colours in [0, maxval]. Remaining pixels are black.
func generateNoiseImage(h ppm.Header, percentage float64, r *rand.Rand) *ppm.Image {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	img := ppm.NewImage(h)
	total := len(img.Pixels)
	want := int(float64(total)*(percentage/100.0) + 0.5)
	if want > total {
		want = total
	}

	idx := make([]int, total)
	for i := range idx {
		idx[i] = i
	}
	// Fisher-Yates shuffle only the first 'want' items
	for i := 0; i < want; i++ {
		j := i + r.Intn(total-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	n := int(h.Maxval()) + 1
	for _, i := range idx[:want] {
		img.Pixels[i] = ppm.NewPixel(uint16(r.Intn(n)), uint16(r.Intn(n)), uint16(r.Intn(n)))
	}
	return img
}

// RunGenerateNoise writes amount images named 0.ppm..(amount-1).ppm into
// outDir.
func RunGenerateNoise(opts NoiseOptions, amount int, outDir string) error {
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	h, err := ppm.NewHeader(ppm.ImageDimensions{Width: opts.Width, Height: opts.Height}, opts.Maxval)
	if err != nil {
		return err
	}
	minP, maxP := opts.PercentageMin, opts.PercentageMax
	if maxP < minP {
		minP, maxP = maxP, minP
	}

	baseSeed := uint64(opts.Seed)
	if baseSeed == 0 {
		baseSeed = uint64(time.Now().UnixNano())
	}
	for i := 0; i < amount; i++ {
		// derive a seed per file using a Weyl-like progression
		const weyl = uint64(0x9e3779b97f4a7c15)
		seed := baseSeed ^ (uint64(i)+1)*weyl
		r := rand.New(rand.NewSource(int64(seed & 0x7fffffffffffffff)))

		perc := minP
		if maxP > minP {
			perc = minP + r.Float64()*(maxP-minP)
		}
		img := generateNoiseImage(h, perc, r)
		path := filepath.Join(outDir, fmt.Sprintf("%d.ppm", i))
		if err := WriteImageFile(path, img, ""); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
	}
	ppm.Logger().Info("noise images written", "dir", outDir, "count", amount, "header", h.String())
	return nil
}
