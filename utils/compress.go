package utils

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

type multiCloser struct {
	io.Reader
	closers []func() error
}

func (m *multiCloser) Close() error {
	var errs []error
	for _, c := range m.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewReader wraps r, transparently decompressing gzip or zstd content.
// Compression is detected from the leading magic bytes, not the file name.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(zstdMagic))
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, nil
	case bytes.HasPrefix(head, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return dec.IOReadCloser(), nil
	}
	return io.NopCloser(br), nil
}

// OpenReader opens path for reading through NewReader.
func OpenReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	rc, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &multiCloser{Reader: rc, closers: []func() error{rc.Close, f.Close}}, nil
}

type writeCloser struct {
	io.Writer
	closers []func() error
}

// Close runs every closer in order and reports the first failure, so a
// failed compressor flush is not hidden by the file close.
func (w *writeCloser) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// CreateWriter creates path and compresses what is written to it when the
// name ends in .gz or .zst. Close must be called to flush the stream.
func CreateWriter(path string) (io.WriteCloser, error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zw, err := gzip.NewWriterLevel(f, gzip.BestCompression)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close, f.Close}}, nil
	case ".zst":
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return &writeCloser{Writer: enc, closers: []func() error{enc.Close, f.Close}}, nil
	}
	return &writeCloser{Writer: f, closers: []func() error{f.Close}}, nil
}
