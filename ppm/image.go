package ppm

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
)

func init() {
	image.RegisterFormat("ppm", MagicConstant, decodeImage, decodeConfig)
}

// Image is a decoded PPM: a header and its row-major pixel buffer.
type Image struct {
	Header Header
	Pixels []Pixel
}

// NewImage returns an all-black image for h.
func NewImage(h Header) *Image {
	return &Image{Header: h, Pixels: make([]Pixel, h.dimensions.PixelCount())}
}

// At returns the pixel in column x of row y.
func (img *Image) At(x, y int) Pixel {
	return img.Pixels[y*int(img.Header.dimensions.Width)+x]
}

// Set stores p in column x of row y.
func (img *Image) Set(x, y int, p Pixel) {
	img.Pixels[y*int(img.Header.dimensions.Width)+x] = p
}

// Validate applies the encoder's checks: pixel count must equal
// width*height and every channel must be <= maxval.
func (img *Image) Validate() error {
	return validatePixels(img.Header, img.Pixels)
}

// Encode writes img to w.
func (img *Image) Encode(w io.Writer) error {
	return Encode(w, img.Header, img.Pixels)
}

// ToImage converts img to a standard library image. Samples are rescaled
// from [0, maxval] to the full channel range and alpha is opaque. A maxval
// of 255 yields *image.NRGBA, anything else *image.NRGBA64.
func (img *Image) ToImage() image.Image {
	d := img.Header.dimensions
	rect := image.Rect(0, 0, int(d.Width), int(d.Height))
	maxval := uint32(img.Header.maxval)

	if maxval == 0xff {
		out := image.NewNRGBA(rect)
		for i, p := range img.Pixels {
			out.Pix[i*4+0] = uint8(p.R)
			out.Pix[i*4+1] = uint8(p.G)
			out.Pix[i*4+2] = uint8(p.B)
			out.Pix[i*4+3] = 0xff
		}
		return out
	}

	scale := func(v uint16) uint16 {
		return uint16((uint32(v)*0xffff + maxval/2) / maxval)
	}
	out := image.NewNRGBA64(rect)
	for i, p := range img.Pixels {
		x, y := i%int(d.Width), i/int(d.Width)
		out.SetNRGBA64(x, y, color.NRGBA64{R: scale(p.R), G: scale(p.G), B: scale(p.B), A: 0xffff})
	}
	return out
}

// FromImage converts a standard library image to a PPM image with the
// given maxval. Alpha is discarded.
func FromImage(src image.Image, maxval uint16) (*Image, error) {
	b := src.Bounds()
	if uint64(b.Dx()) > math.MaxUint32 || uint64(b.Dy()) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, b.Dx(), b.Dy())
	}
	h, err := NewHeader(ImageDimensions{Width: uint32(b.Dx()), Height: uint32(b.Dy())}, maxval)
	if err != nil {
		return nil, err
	}
	m := uint32(maxval)
	scale := func(v uint16) uint16 {
		return uint16((uint32(v)*m + 0x7fff) / 0xffff)
	}
	img := NewImage(h)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(src.At(x, y)).(color.NRGBA64)
			img.Pixels[i] = Pixel{R: scale(c.R), G: scale(c.G), B: scale(c.B)}
			i++
		}
	}
	return img, nil
}

func decodeImage(r io.Reader) (image.Image, error) {
	img, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return img.ToImage(), nil
}

func decodeConfig(r io.Reader) (image.Config, error) {
	h, err := NewDecoder(r).DecodeHeader()
	if err != nil {
		return image.Config{}, err
	}
	model := color.NRGBA64Model
	if h.maxval == 0xff {
		model = color.NRGBAModel
	}
	return image.Config{
		ColorModel: model,
		Width:      int(h.dimensions.Width),
		Height:     int(h.dimensions.Height),
	}, nil
}
