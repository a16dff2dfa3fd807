package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/voxelsplace/plainppm/go/api"
	"github.com/voxelsplace/plainppm/go/ppm"
)

const sample = "P3\n# sample\n2 2\n255\n255 0 0 0 255 0\n0 0 255 255 255 255\n"

func writeSample(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func decodeSample(t *testing.T) *ppm.Image {
	t.Helper()
	img, err := ppm.Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("decode sample: %v", err)
	}
	return img
}

func TestCompressedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir, "in.ppm")
	want := decodeSample(t)

	for _, name := range []string{"out.ppm", "out.ppm.gz", "out.ppm.zst"} {
		out := filepath.Join(dir, name)
		if err := RunConvert(in, out, ConvertOptions{}); err != nil {
			t.Fatalf("RunConvert(%s): %v", name, err)
		}
		got, err := ReadImageFile(out, api.ReadOptions{})
		if err != nil {
			t.Fatalf("ReadImageFile(%s): %v", name, err)
		}
		if got.Header != want.Header || !slices.Equal(got.Pixels, want.Pixels) {
			t.Errorf("%s: round trip changed the image", name)
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, "out.ppm.gz"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, gzipMagic) {
		t.Errorf("out.ppm.gz is not gzip compressed")
	}
	raw, err = os.ReadFile(filepath.Join(dir, "out.ppm.zst"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, zstdMagic) {
		t.Errorf("out.ppm.zst is not zstd compressed")
	}
}

func TestNewReader_SniffsContent(t *testing.T) {
	dir := t.TempDir()
	gz := filepath.Join(dir, "x.ppm.gz")
	if err := RunConvert(writeSample(t, dir, "x.ppm"), gz, ConvertOptions{}); err != nil {
		t.Fatalf("RunConvert: %v", err)
	}
	// Misleading name: compression comes from the magic bytes.
	renamed := filepath.Join(dir, "plain.ppm")
	if err := os.Rename(gz, renamed); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadImageFile(renamed, api.ReadOptions{}); err != nil {
		t.Fatalf("ReadImageFile: %v", err)
	}
}

func TestRunConvert_ToPNGAndBack(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir, "in.ppm")
	pngPath := filepath.Join(dir, "in.png")
	if err := RunConvert(in, pngPath, ConvertOptions{}); err != nil {
		t.Fatalf("RunConvert to png: %v", err)
	}
	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("png.Decode: %v", err)
	}

	back := filepath.Join(dir, "back.ppm")
	if err := RunConvert(pngPath, back, ConvertOptions{Comment: "from png"}); err != nil {
		t.Fatalf("RunConvert to ppm: %v", err)
	}
	got, err := ReadImageFile(back, api.ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got.Pixels, decodeSample(t).Pixels) {
		t.Errorf("ppm -> png -> ppm changed the pixels")
	}
}

func TestRunConvert_InvalidInputLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.ppm")
	if err := os.WriteFile(in, []byte("P3 1 1 255 1 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.ppm")
	err := RunConvert(in, out, ConvertOptions{})
	if !errors.Is(err, ppm.ErrTruncatedInput) {
		t.Fatalf("RunConvert error = %v, want ErrTruncatedInput", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output file should not exist, stat err = %v", err)
	}
}

func TestRunConvert_Strict(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "trailing.ppm")
	if err := os.WriteFile(in, []byte(sample+"junk"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RunConvert(in, filepath.Join(dir, "a.ppm"), ConvertOptions{}); err != nil {
		t.Fatalf("lenient RunConvert: %v", err)
	}
	err := RunConvert(in, filepath.Join(dir, "b.ppm"), ConvertOptions{Strict: true})
	if !errors.Is(err, ppm.ErrTrailingData) {
		t.Fatalf("strict RunConvert error = %v, want ErrTrailingData", err)
	}
}

func TestRunPPM2GLB(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.glb")
	if err := RunPPM2GLB(writeSample(t, dir, "in.ppm"), out); err != nil {
		t.Fatalf("RunPPM2GLB: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 4 || string(data[:4]) != "glTF" {
		t.Errorf("output is not a binary glTF")
	}
}

func TestRunIdentify(t *testing.T) {
	dir := t.TempDir()
	zst := filepath.Join(dir, "in.ppm.zst")
	if err := RunConvert(writeSample(t, dir, "in.ppm"), zst, ConvertOptions{}); err != nil {
		t.Fatal(err)
	}
	info, err := RunIdentify(zst)
	if err != nil {
		t.Fatalf("RunIdentify: %v", err)
	}
	if info.Width != 2 || info.Height != 2 || info.Maxval != 255 || info.Images != 1 {
		t.Errorf("RunIdentify = %+v", info)
	}
}

func TestRunGenerateNoise(t *testing.T) {
	dir := t.TempDir()
	opts := NoiseOptions{Width: 8, Height: 4, Maxval: 15, PercentageMin: 50, PercentageMax: 50, Seed: 42}
	if err := RunGenerateNoise(opts, 3, dir); err != nil {
		t.Fatalf("RunGenerateNoise: %v", err)
	}
	for i := 0; i < 3; i++ {
		img, err := ReadImageFile(filepath.Join(dir, fmt.Sprintf("%d.ppm", i)), api.ReadOptions{})
		if err != nil {
			t.Fatalf("reading noise image %d: %v", i, err)
		}
		if img.Header.Dimensions() != (ppm.ImageDimensions{Width: 8, Height: 4}) || img.Header.Maxval() != 15 {
			t.Errorf("noise image %d header = %v", i, img.Header)
		}
		if err := img.Validate(); err != nil {
			t.Errorf("noise image %d: %v", i, err)
		}
	}

	// Same seed, same output.
	again := t.TempDir()
	if err := RunGenerateNoise(opts, 1, again); err != nil {
		t.Fatal(err)
	}
	a, _ := os.ReadFile(filepath.Join(dir, "0.ppm"))
	b, _ := os.ReadFile(filepath.Join(again, "0.ppm"))
	if !bytes.Equal(a, b) {
		t.Errorf("seeded noise is not reproducible")
	}
}

func TestRunGenerateNoise_InvalidMaxval(t *testing.T) {
	err := RunGenerateNoise(NoiseOptions{Width: 1, Height: 1}, 1, t.TempDir())
	if !errors.Is(err, ppm.ErrInvalidHeader) {
		t.Errorf("RunGenerateNoise error = %v, want ErrInvalidHeader", err)
	}
}

func TestRunPatch(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir, "in.ppm")
	out := filepath.Join(dir, "out.ppm")
	if err := RunPatch([]byte(`{"3": [1, 2, 3], "0": [0, 0, 0]}`), in, out); err != nil {
		t.Fatalf("RunPatch: %v", err)
	}
	img, err := ReadImageFile(out, api.ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if img.Pixels[3] != ppm.NewPixel(1, 2, 3) || img.Pixels[0] != ppm.NewPixel(0, 0, 0) {
		t.Errorf("patched pixels = %+v", img.Pixels)
	}
	if img.Pixels[1] != ppm.NewPixel(0, 255, 0) {
		t.Errorf("untouched pixel changed: %+v", img.Pixels[1])
	}
}

func TestRunPatch_Rejects(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir, "in.ppm")
	for _, updates := range []string{
		`{"4": [1, 2, 3]}`,
		`{"-1": [1, 2, 3]}`,
		`{"x": [1, 2, 3]}`,
		`{"0": [256, 0, 0]}`,
		`not json`,
	} {
		if err := RunPatch([]byte(updates), in, filepath.Join(dir, "out.ppm")); err == nil {
			t.Errorf("RunPatch(%s) succeeded, want error", updates)
		}
	}
}

func TestRunBatchConvert(t *testing.T) {
	dir := t.TempDir()
	var inputs []string
	for _, name := range []string{"a.ppm", "b.ppm", "c.ppm"} {
		inputs = append(inputs, writeSample(t, dir, name))
	}
	outDir := filepath.Join(dir, "out")
	results, err := RunBatchConvert(inputs, outDir, api.FormatPPM, 2, ConvertOptions{})
	if err != nil {
		t.Fatalf("RunBatchConvert: %v", err)
	}
	for _, r := range results {
		if r.Err != nil || r.Skipped {
			t.Errorf("%s: err=%v skipped=%v", r.Input, r.Err, r.Skipped)
		}
		if _, err := os.Stat(r.Output); err != nil {
			t.Errorf("missing output %s: %v", r.Output, err)
		}
	}

	results, err = RunBatchConvert(inputs, outDir, api.FormatPPM, 2, ConvertOptions{})
	if err != nil {
		t.Fatalf("second RunBatchConvert: %v", err)
	}
	for _, r := range results {
		if !r.Skipped {
			t.Errorf("%s: unchanged output was rewritten", r.Input)
		}
	}
}

func TestRunBatchConvert_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeSample(t, dir, "good.ppm")
	bad := filepath.Join(dir, "bad.ppm")
	if err := os.WriteFile(bad, []byte("P6 1 1 255"), 0o644); err != nil {
		t.Fatal(err)
	}
	results, err := RunBatchConvert([]string{good, bad}, filepath.Join(dir, "out"), api.FormatPNG, 4, ConvertOptions{})
	if !errors.Is(err, ppm.ErrWrongMagic) {
		t.Fatalf("RunBatchConvert error = %v, want ErrWrongMagic", err)
	}
	if results[0].Err != nil {
		t.Errorf("good file failed: %v", results[0].Err)
	}
	if !strings.HasSuffix(results[0].Output, "good.png") {
		t.Errorf("output name = %s", results[0].Output)
	}
}

func TestRunBatchConvert_SameBaseName(t *testing.T) {
	dir := t.TempDir()
	var inputs []string
	for i, sub := range []string{"a", "b", "c", "d"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(dir, sub, "x.ppm")
		data := fmt.Sprintf("P3 1 1 255 %d 0 0\n", i)
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
		inputs = append(inputs, path)
	}
	outDir := filepath.Join(dir, "out")
	results, err := RunBatchConvert(inputs, outDir, api.FormatPPM, 4, ConvertOptions{})
	if err != nil {
		t.Fatalf("RunBatchConvert: %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != len(inputs) {
		t.Fatalf("%d outputs for %d inputs", len(entries), len(inputs))
	}
	seen := map[string]bool{}
	for i, r := range results {
		if seen[r.Output] {
			t.Errorf("output %s used twice", r.Output)
		}
		seen[r.Output] = true
		img, err := ReadImageFile(r.Output, api.ReadOptions{})
		if err != nil {
			t.Fatalf("reading %s: %v", r.Output, err)
		}
		if img.Pixels[0].R != uint16(i) {
			t.Errorf("%s holds red=%d, want %d from %s", r.Output, img.Pixels[0].R, i, r.Input)
		}
	}
	if filepath.Base(results[0].Output) != "x.ppm" || filepath.Base(results[1].Output) != "x-1.ppm" {
		t.Errorf("outputs = %s, %s", results[0].Output, results[1].Output)
	}
}
