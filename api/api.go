package api

import (
	"bytes"
	"fmt"

	"github.com/voxelsplace/plainppm/go/ppm"
)

// EncodeBytes returns the plain PPM encoding of pixels.
func EncodeBytes(h ppm.Header, pixels []ppm.Pixel) ([]byte, error) {
	var buf bytes.Buffer
	if err := ppm.Encode(&buf, h, pixels); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBytes parses the first image in data.
func DecodeBytes(data []byte) (*ppm.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty PPM data")
	}
	return ppm.Decode(bytes.NewReader(data))
}

// Info summarizes a PPM stream.
type Info struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
	Maxval uint16 `json:"maxval"`
	Pixels uint64 `json:"pixels"`
	// Images counts every image in a multi-image stream; the other fields
	// describe the first one.
	Images int    `json:"images"`
	Digest string `json:"digest"`
}

// Identify describes the images in data.
func Identify(data []byte) (Info, error) {
	imgs, err := ppm.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return Info{}, err
	}
	if len(imgs) == 0 {
		return Info{}, fmt.Errorf("no PPM image in %d bytes", len(data))
	}
	first := imgs[0]
	d := first.Header.Dimensions()
	return Info{
		Width:  d.Width,
		Height: d.Height,
		Maxval: first.Header.Maxval(),
		Pixels: d.PixelCount(),
		Images: len(imgs),
		Digest: fmt.Sprintf("%016x", first.Digest()),
	}, nil
}
