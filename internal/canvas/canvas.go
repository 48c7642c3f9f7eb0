package canvas

import (
	"image"
	"image/color"
)

// Canvas is a flat, 8-bit view of an image's colour channels.
// Channels are laid out row-major, pixel by pixel, in R, G, B order.
// Alpha is kept in a separate plane and never exposed as a channel.
type Canvas struct {
	bounds        image.Rectangle
	width, height int
	area          int

	// R,G,B interleaved
	channels []uint8
	alpha    []uint8
}

// New copies src into a Canvas. src is never retained.
func New(src image.Image) Canvas {
	var c Canvas
	c.bounds = src.Bounds()
	c.width, c.height = c.bounds.Dx(), c.bounds.Dy()
	c.area = c.width * c.height
	c.channels = make([]uint8, c.area*3)
	c.alpha = make([]uint8, c.area)

	if nrgba, ok := src.(*image.NRGBA); ok {
		c.fromNRGBA(nrgba)
		return c
	}
	idx := 0
	for y := c.bounds.Min.Y; y < c.bounds.Max.Y; y++ {
		for x := c.bounds.Min.X; x < c.bounds.Max.X; x++ {
			px := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			c.channels[idx*3] = px.R
			c.channels[idx*3+1] = px.G
			c.channels[idx*3+2] = px.B
			c.alpha[idx] = px.A
			idx++
		}
	}
	return c
}

func (c *Canvas) fromNRGBA(src *image.NRGBA) {
	idx := 0
	for y := c.bounds.Min.Y; y < c.bounds.Max.Y; y++ {
		row := src.Pix[src.PixOffset(c.bounds.Min.X, y):]
		for x := range c.width {
			c.channels[idx*3] = row[x*4]
			c.channels[idx*3+1] = row[x*4+1]
			c.channels[idx*3+2] = row[x*4+2]
			c.alpha[idx] = row[x*4+3]
			idx++
		}
	}
}

// Copy returns a Canvas that shares no memory with c.
func (c Canvas) Copy() Canvas {
	channels := make([]uint8, len(c.channels))
	_ = copy(channels, c.channels)
	alpha := make([]uint8, len(c.alpha))
	_ = copy(alpha, c.alpha)
	c.channels, c.alpha = channels, alpha
	return c
}

// Channels returns the backing channel slice. Writes through it change the canvas.
func (c Canvas) Channels() []uint8 {
	return c.channels
}

// Len returns the number of colour channels.
func (c Canvas) Len() int {
	return len(c.channels)
}

func (c Canvas) Bounds() image.Rectangle {
	return c.bounds
}

// Build renders the canvas into a new *image.NRGBA with the original bounds.
func (c Canvas) Build() image.Image {
	var dist = image.NewNRGBA(c.bounds)
	idx := 0
	for y := c.bounds.Min.Y; y < c.bounds.Max.Y; y++ {
		row := dist.Pix[dist.PixOffset(c.bounds.Min.X, y):]
		for x := range c.width {
			row[x*4] = c.channels[idx*3]
			row[x*4+1] = c.channels[idx*3+1]
			row[x*4+2] = c.channels[idx*3+2]
			row[x*4+3] = c.alpha[idx]
			idx++
		}
	}
	return dist
}

// ChannelCount returns the number of colour channels an image of rect holds.
func ChannelCount(rect image.Rectangle) int {
	return rect.Dx() * rect.Dy() * 3
}
