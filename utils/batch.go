package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/voxelsplace/plainppm/go/api"
	"github.com/voxelsplace/plainppm/go/ppm"
)

// BatchResult reports one file of a RunBatchConvert call.
type BatchResult struct {
	Input   string
	Output  string
	Digest  uint64
	Skipped bool // output already held the same image
	Err     error
}

// RunBatchConvert converts every input into outDir using format, with up to
// workers files in flight. Each worker owns its decoder and encoder.
// PPM outputs whose pixels already match the input are left untouched.
// Inputs sharing a base name get numbered outputs, see outputNames.
func RunBatchConvert(inputs []string, outDir string, format api.Format, workers int, opts ConvertOptions) ([]BatchResult, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input files provided")
	}
	if workers < 1 {
		workers = 1
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	outputs := outputNames(inputs, outDir, format)
	results := make([]BatchResult, len(inputs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	start := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = convertOne(inputs[i], outputs[i], format, opts)
			}
		}()
	}
	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Input, r.Err))
		}
	}
	ppm.Logger().Info("batch finished", "files", len(inputs), "failed", len(errs), "elapsed", time.Since(start))
	return results, errors.Join(errs...)
}

// outputNames maps each input to outDir/<base>.<format>. When several
// inputs share a base name the first keeps it and later ones become
// <base>-1.<format>, <base>-2.<format>, ... skipping names already taken.
func outputNames(inputs []string, outDir string, format api.Format) []string {
	taken := make(map[string]bool, len(inputs))
	out := make([]string, len(inputs))
	for i, in := range inputs {
		base := filepath.Base(api.TrimCompressionExt(in))
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		name := stem + "." + string(format)
		for n := 1; taken[name]; n++ {
			name = fmt.Sprintf("%s-%d.%s", stem, n, format)
		}
		taken[name] = true
		out[i] = filepath.Join(outDir, name)
	}
	return out
}

func convertOne(input, output string, format api.Format, opts ConvertOptions) BatchResult {
	res := BatchResult{Input: input, Output: output}

	img, err := ReadImageFile(input, opts.readOptions())
	if err != nil {
		res.Err = err
		return res
	}
	res.Digest = img.Digest()

	if format == api.FormatPPM {
		if prev, err := ReadImageFile(res.Output, api.ReadOptions{}); err == nil && prev.Digest() == res.Digest {
			res.Skipped = true
			return res
		}
	}
	res.Err = WriteImageFile(res.Output, img, opts.Comment)
	return res
}
