package ppm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
)

// DefaultMaxPixels caps width*height for a Decoder whose MaxPixels is zero.
// 64Mi pixels keep the pixel buffer under 400 MB.
const DefaultMaxPixels = 64 * 1024 * 1024

// maxTokenLen bounds a single token once leading zeros are dropped. No
// decimal in range needs more; longer runs of non-space bytes are garbage.
const maxTokenLen = 20

// maxPreallocPixels caps the pixel buffer allocated on the header's word
// alone. Larger images grow the buffer as samples arrive.
const maxPreallocPixels = 1 << 16

var errTokenTooLong = errors.New("token too long")

// Decoder reads plain-text PPM images from a source.
//
// A Decoder may read several concatenated images from one stream: each call
// to Decode returns the next one and io.EOF once the stream ends cleanly
// between images.
type Decoder struct {
	s scanner

	// MaxPixels rejects headers announcing more than this many pixels before
	// anything is allocated. Zero means DefaultMaxPixels.
	MaxPixels uint64

	// Strict makes Decode fail with ErrTrailingData when anything other than
	// whitespace and comments follows the last sample. The decoded image is
	// still returned with that error.
	Strict bool

	started  bool
	badMagic bool
	pending  *Header
}

// NewDecoder returns a decoder reading from r. The decoder buffers its
// input and may read past the end of the image.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{s: scanner{r: bufio.NewReader(r)}}
}

// Decode reads a single image from r. Data after the image is ignored.
func Decode(r io.Reader) (*Image, error) {
	return NewDecoder(r).Decode()
}

// DecodeAll reads every image in r. Once one image has been read, data
// that does not start with the magic constant ends the stream like
// trailing data after a single image does.
func DecodeAll(r io.Reader) ([]*Image, error) {
	d := NewDecoder(r)
	var out []*Image
	for {
		img, err := d.Decode()
		if errors.Is(err, io.EOF) || (d.badMagic && len(out) > 0) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, img)
	}
}

// DecodeHeader reads the next header only. A following Decode call reads
// the pixels belonging to it.
func (d *Decoder) DecodeHeader() (Header, error) {
	if d.pending != nil {
		return *d.pending, nil
	}
	h, err := d.readHeader()
	if err != nil {
		return Header{}, err
	}
	d.pending = &h
	return h, nil
}

// Decode reads the next image.
func (d *Decoder) Decode() (*Image, error) {
	h, err := d.DecodeHeader()
	if err != nil {
		return nil, err
	}
	d.pending = nil

	img := &Image{Header: h}
	if img.Pixels, err = d.readPixels(h); err != nil {
		return nil, err
	}
	if d.Strict {
		if err := d.s.skipSeparators(); err == nil {
			return img, ErrTrailingData
		} else if !errors.Is(err, io.EOF) {
			return img, ioError("read", err)
		}
	}
	return img, nil
}

func (d *Decoder) readHeader() (Header, error) {
	if d.started {
		// Images after the first may be separated by whitespace and comments.
		if err := d.s.skipSeparators(); err != nil {
			if errors.Is(err, io.EOF) {
				return Header{}, io.EOF
			}
			return Header{}, ioError("read", err)
		}
	}
	d.started = true

	if err := d.s.readMagic(); err != nil {
		d.badMagic = !errors.Is(err, ErrIO)
		return Header{}, err
	}
	width, err := d.headerField("width", math.MaxUint32)
	if err != nil {
		return Header{}, err
	}
	height, err := d.headerField("height", math.MaxUint32)
	if err != nil {
		return Header{}, err
	}
	maxval, err := d.headerField("maxval", math.MaxUint16)
	if err != nil {
		return Header{}, err
	}
	h, err := NewHeader(ImageDimensions{Width: uint32(width), Height: uint32(height)}, uint16(maxval))
	if err != nil {
		return Header{}, err
	}

	limit := d.MaxPixels
	if limit == 0 {
		limit = DefaultMaxPixels
	}
	if n := h.dimensions.PixelCount(); n > limit || n > math.MaxInt/3 {
		return Header{}, fmt.Errorf("%w: %w: %dx%d exceeds %d pixels", ErrInvalidHeader, ErrImageTooLarge, width, height, limit)
	}
	Logger().Debug("ppm: decoded header", "header", h.String())
	return h, nil
}

func (d *Decoder) headerField(name string, limit uint64) (uint64, error) {
	tok, err := d.s.next()
	switch {
	case errors.Is(err, io.EOF):
		return 0, fmt.Errorf("%w: missing %s", ErrTruncatedInput, name)
	case errors.Is(err, errTokenTooLong):
		return 0, fmt.Errorf("%w: %s token %q... too long", ErrInvalidHeader, name, tok)
	case err != nil:
		return 0, ioError("read", err)
	}
	v, ok := parseDecimal(tok, limit)
	if !ok {
		return 0, fmt.Errorf("%w: %s %q is not an integer in [0, %d]", ErrInvalidHeader, name, tok, limit)
	}
	return v, nil
}

func (d *Decoder) readPixels(h Header) ([]Pixel, error) {
	n := int(h.dimensions.PixelCount())
	pixels := make([]Pixel, 0, min(n, maxPreallocPixels))
	maxval := uint64(h.maxval)
	var px [3]uint16
	for i := 0; i < n*3; i++ {
		tok, err := d.s.next()
		switch {
		case errors.Is(err, io.EOF):
			return nil, &SampleError{Index: i, Err: ErrTruncatedInput}
		case errors.Is(err, errTokenTooLong):
			return nil, &SampleError{Index: i, Token: string(tok) + "...", Err: fmt.Errorf("%w: not a decimal integer", ErrSampleOutOfRange)}
		case err != nil:
			return nil, ioError("read", err)
		}
		v, ok := parseDecimal(tok, maxval)
		if !ok {
			return nil, &SampleError{Index: i, Token: string(tok), Err: fmt.Errorf("%w: want integer in [0, %d]", ErrSampleOutOfRange, maxval)}
		}
		px[i%3] = uint16(v)
		if i%3 == 2 {
			pixels = append(pixels, Pixel{R: px[0], G: px[1], B: px[2]})
		}
	}
	return pixels, nil
}

// parseDecimal parses an unsigned decimal no larger than limit.
func parseDecimal(tok []byte, limit uint64) (uint64, bool) {
	if len(tok) == 0 {
		return 0, false
	}
	var v uint64
	for _, c := range tok {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint64(c-'0')
		if v > limit {
			return 0, false
		}
	}
	return v, true
}

// scanner splits a PPM stream into whitespace separated tokens, dropping
// '#' comments.
type scanner struct {
	r   *bufio.Reader
	tok [maxTokenLen]byte
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// readMagic consumes the magic constant, which must be followed by a
// separator.
func (s *scanner) readMagic() error {
	var m [2]byte
	n, err := io.ReadFull(s.r, m[:])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return ioError("read", err)
	}
	if string(m[:n]) != MagicConstant[:n] {
		return fmt.Errorf("%w: got %q", ErrWrongMagic, m[:n])
	}
	if n < len(MagicConstant) {
		return fmt.Errorf("%w: missing magic constant", ErrTruncatedInput)
	}
	b, err := s.r.ReadByte()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: missing width", ErrTruncatedInput)
	}
	if err != nil {
		return ioError("read", err)
	}
	if !isSpace(b) && b != '#' {
		return fmt.Errorf("%w: got %q", ErrWrongMagic, append(m[:], b))
	}
	return s.r.UnreadByte()
}

// skipComment discards the rest of the current line.
func (s *scanner) skipComment() error {
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			return err
		}
		if b == '\n' || b == '\r' {
			return nil
		}
	}
}

// skipSeparators advances to the first byte of the next token. It returns
// io.EOF when only whitespace and comments remain.
func (s *scanner) skipSeparators() error {
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			return err
		}
		switch {
		case isSpace(b):
		case b == '#':
			if err := s.skipComment(); err != nil {
				return err
			}
		default:
			return s.r.UnreadByte()
		}
	}
}

// next returns the next token with leading zeros collapsed, so "007"
// comes back as "7" and "000" as "0". The slice is only valid until the
// following call. io.EOF means no token was left.
func (s *scanner) next() ([]byte, error) {
	if err := s.skipSeparators(); err != nil {
		return nil, err
	}
	n := 0
	for {
		b, err := s.r.ReadByte()
		if errors.Is(err, io.EOF) {
			return s.tok[:n], nil
		}
		if err != nil {
			return nil, err
		}
		if isSpace(b) {
			return s.tok[:n], nil
		}
		if b == '#' {
			return s.tok[:n], s.r.UnreadByte()
		}
		if n == 1 && s.tok[0] == '0' && b >= '0' && b <= '9' {
			s.tok[0] = b
			continue
		}
		if n == len(s.tok) {
			return s.tok[:n], errTokenTooLong
		}
		s.tok[n] = b
		n++
	}
}
