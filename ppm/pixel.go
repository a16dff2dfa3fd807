package ppm

// Pixel is one RGB sample. Channels are 16 bits wide because maxval may
// go up to 65534; with the usual maxval of 255 only the low byte is used.
type Pixel struct {
	R, G, B uint16
}

// NewPixel returns the pixel (r, g, b); order is significant.
func NewPixel(r, g, b uint16) Pixel {
	return Pixel{R: r, G: g, B: b}
}

// Red returns the red channel.
func (p Pixel) Red() uint16 { return p.R }

// Green returns the green channel.
func (p Pixel) Green() uint16 { return p.G }

// Blue returns the blue channel.
func (p Pixel) Blue() uint16 { return p.B }

// Max returns the largest of the three channels.
func (p Pixel) Max() uint16 {
	m := p.R
	if p.G > m {
		m = p.G
	}
	if p.B > m {
		m = p.B
	}
	return m
}

// channel returns the i-th channel, 0 for red.
func (p Pixel) channel(i int) uint16 {
	switch i {
	case 0:
		return p.R
	case 1:
		return p.G
	default:
		return p.B
	}
}
