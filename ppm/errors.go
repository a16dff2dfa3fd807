package ppm

import (
	"errors"
	"fmt"
)

// Codec errors. Every failure returned by this package matches one of
// these with errors.Is.
var (
	// ErrInvalidHeader is returned for an out-of-range maxval or an
	// unparsable width, height or maxval token.
	ErrInvalidHeader = errors.New("ppm: invalid header")

	// ErrWrongMagic is returned when a stream does not start with "P3".
	ErrWrongMagic = errors.New("ppm: wrong magic constant")

	// ErrShapeMismatch is returned by the encoder when the pixel count
	// differs from width*height.
	ErrShapeMismatch = errors.New("ppm: pixel count does not match dimensions")

	// ErrSampleOutOfRange is returned for a channel value above maxval or a
	// sample token that is not a decimal integer.
	ErrSampleOutOfRange = errors.New("ppm: sample out of range")

	// ErrTruncatedInput is returned when the stream ends before every
	// required token was read.
	ErrTruncatedInput = errors.New("ppm: truncated input")

	// ErrIO wraps failures reported by the underlying reader or writer.
	ErrIO = errors.New("ppm: i/o failure")

	// ErrImageTooLarge is returned when width*height exceeds the decoder's
	// pixel limit. It also matches ErrInvalidHeader.
	ErrImageTooLarge = errors.New("ppm: image too large")

	// ErrTrailingData is returned by a strict decoder when tokens follow the
	// last sample.
	ErrTrailingData = errors.New("ppm: trailing data after last sample")
)

// SampleError reports a bad sample in the pixel payload. Index counts
// samples (not pixels) from the start of the payload, so pixel Index/3
// channel Index%3 is the culprit.
type SampleError struct {
	Index int
	Token string
	Err   error
}

func (e *SampleError) Error() string {
	px, ch := e.Index/3, "rgb"[e.Index%3]
	if e.Token == "" {
		return fmt.Sprintf("%v: sample %d (pixel %d, %c)", e.Err, e.Index, px, ch)
	}
	return fmt.Sprintf("%v: sample %d (pixel %d, %c) = %q", e.Err, e.Index, px, ch, e.Token)
}

func (e *SampleError) Unwrap() error { return e.Err }

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
