package ppm

import (
	"fmt"
	"math"
)

// MagicConstant identifies the plain-text PPM format. It must be the
// first two bytes of every image.
const MagicConstant = "P3"

// ImageDimensions are the width and height of an image in pixels.
// {0, 0} marks a header-only image with no pixel payload.
type ImageDimensions struct {
	Width  uint32
	Height uint32
}

// PixelCount returns Width*Height.
func (d ImageDimensions) PixelCount() uint64 {
	return uint64(d.Width) * uint64(d.Height)
}

// Header holds the metadata written before the pixel payload. It is a
// small value type; encoders and decoders keep their own copy.
type Header struct {
	dimensions ImageDimensions
	maxval     uint16
}

// NewHeader builds a header. maxval must lie in (0, 65535), exclusive on
// both ends; anything else fails with ErrInvalidHeader.
//
// A zero-sized header is legal: encoding it writes only the header lines,
// and decoding it expects no samples.
func NewHeader(dims ImageDimensions, maxval uint16) (Header, error) {
	if maxval == 0 || maxval == math.MaxUint16 {
		return Header{}, fmt.Errorf("%w: maxval %d outside (0, %d)", ErrInvalidHeader, maxval, math.MaxUint16)
	}
	return Header{dimensions: dims, maxval: maxval}, nil
}

// Dimensions returns the image dimensions.
func (h Header) Dimensions() ImageDimensions { return h.dimensions }

// Maxval returns the largest legal channel value. It is always in
// (0, 65535) for a header built with NewHeader.
func (h Header) Maxval() uint16 { return h.maxval }

func (h Header) String() string {
	return fmt.Sprintf("%dx%d maxval=%d", h.dimensions.Width, h.dimensions.Height, h.maxval)
}
