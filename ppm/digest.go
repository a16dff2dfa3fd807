package ppm

import (
	"encoding/binary"

	xxhash "github.com/cespare/xxhash/v2"
)

// Digest returns an xxhash64 of the header and every sample. Two images
// with the same dimensions, maxval and pixels have the same digest,
// regardless of how their PPM text was laid out.
func (img *Image) Digest() uint64 {
	h := xxhash.New()
	var b [10]byte
	d := img.Header.dimensions
	binary.LittleEndian.PutUint32(b[0:4], d.Width)
	binary.LittleEndian.PutUint32(b[4:8], d.Height)
	binary.LittleEndian.PutUint16(b[8:10], img.Header.maxval)
	_, _ = h.Write(b[:])

	buf := make([]byte, 0, 6*1024)
	for _, p := range img.Pixels {
		buf = binary.LittleEndian.AppendUint16(buf, p.R)
		buf = binary.LittleEndian.AppendUint16(buf, p.G)
		buf = binary.LittleEndian.AppendUint16(buf, p.B)
		if len(buf) == cap(buf) {
			_, _ = h.Write(buf)
			buf = buf[:0]
		}
	}
	_, _ = h.Write(buf)
	return h.Sum64()
}
