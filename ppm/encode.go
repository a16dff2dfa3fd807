package ppm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxLineLen is the NetPbm limit on plain-format line length.
const maxLineLen = 70

// Encoder writes plain-text PPM images to a sink.
type Encoder struct {
	w      io.Writer
	header Header

	// Comment, when set, is written after the magic line, one "# " line
	// per line of text.
	Comment string
}

// NewEncoder returns an encoder that writes images described by h to w.
func NewEncoder(w io.Writer, h Header) *Encoder {
	return &Encoder{w: w, header: h}
}

// Encode is shorthand for NewEncoder(w, h).Encode(pixels).
func Encode(w io.Writer, h Header, pixels []Pixel) error {
	return NewEncoder(w, h).Encode(pixels)
}

// Encode validates pixels against the header and writes the image.
// Nothing is written when validation fails. A write failure is returned
// wrapped in ErrIO; some bytes may already have reached the sink.
func (e *Encoder) Encode(pixels []Pixel) error {
	if err := validatePixels(e.header, pixels); err != nil {
		return err
	}

	bw := bufio.NewWriter(e.w)
	if err := e.writeHeader(bw); err != nil {
		return ioError("write header", err)
	}
	if err := writeSamples(bw, int(e.header.dimensions.Width), pixels); err != nil {
		return ioError("write samples", err)
	}
	if err := bw.Flush(); err != nil {
		return ioError("flush", err)
	}
	Logger().Debug("ppm: encoded image", "header", e.header.String(), "pixels", len(pixels))
	return nil
}

func (e *Encoder) writeHeader(bw *bufio.Writer) error {
	d := e.header.dimensions
	if _, err := bw.WriteString(MagicConstant + "\n"); err != nil {
		return err
	}
	if e.Comment != "" {
		for _, line := range strings.Split(e.Comment, "\n") {
			line = strings.TrimRight(line, "\r")
			if _, err := bw.WriteString("# " + line + "\n"); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(bw, "%d %d\n%d\n", d.Width, d.Height, e.header.maxval)
	return err
}

// writeSamples writes one image row per line, breaking lines that would
// run past maxLineLen.
func writeSamples(bw *bufio.Writer, width int, pixels []Pixel) error {
	var tok [8]byte
	col := 0
	for i, p := range pixels {
		for c := 0; c < 3; c++ {
			t := strconv.AppendUint(tok[:0], uint64(p.channel(c)), 10)
			switch {
			case col == 0:
			case col+1+len(t) > maxLineLen:
				if err := bw.WriteByte('\n'); err != nil {
					return err
				}
				col = 0
			default:
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
				col++
			}
			if _, err := bw.Write(t); err != nil {
				return err
			}
			col += len(t)
		}
		if (i+1)%width == 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
			col = 0
		}
	}
	return nil
}

// validatePixels checks shape and sample range against h.
func validatePixels(h Header, pixels []Pixel) error {
	want := h.dimensions.PixelCount()
	if uint64(len(pixels)) != want {
		return fmt.Errorf("%w: header %s wants %d pixels, got %d", ErrShapeMismatch, h, want, len(pixels))
	}
	for i, p := range pixels {
		if p.Max() <= h.maxval {
			continue
		}
		for c := 0; c < 3; c++ {
			if v := p.channel(c); v > h.maxval {
				return &SampleError{
					Index: i*3 + c,
					Token: strconv.FormatUint(uint64(v), 10),
					Err:   fmt.Errorf("%w: %d > maxval %d", ErrSampleOutOfRange, v, h.maxval),
				}
			}
		}
	}
	return nil
}
