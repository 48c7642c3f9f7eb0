package stego

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/yyyoichi/stego_zero/internal/bitplane"
	"github.com/yyyoichi/stego_zero/internal/canvas"
	"github.com/yyyoichi/stego_zero/internal/frame"
)

// DefaultMaxPayload is the largest payload length Decode trusts by default.
const DefaultMaxPayload = 64 << 20

// Encode embeds payload into src with the specified options.
// This is a convenience function that creates an LSB instance and calls its Encode method.
func Encode(ctx context.Context, src image.Image, payload []byte, opts ...Option) (image.Image, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return c.Encode(ctx, src, payload)
}

// Decode extracts a payload from src with the specified options.
// This is a convenience function that creates an LSB instance and calls its Decode method.
func Decode(ctx context.Context, src image.Image, opts ...Option) ([]byte, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return c.Decode(ctx, src)
}

// Channels returns the number of colour channels, and so payload bits, an image of rect offers.
func Channels(rect image.Rectangle) int {
	return canvas.ChannelCount(rect)
}

// LSB is a least-significant-bit codec over the R, G and B channels of an image.
type LSB struct {
	maxPayload int
	signature  []byte
	scheme     frame.Scheme
	workers    int

	frame frame.Frame
}

// New initializes an LSB codec.
// Without options it writes a bare 32-bit length header followed by the payload.
func New(opts ...Option) (*LSB, error) {
	c := new(LSB)
	if err := c.init(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *LSB) init(opts ...Option) error {
	c.maxPayload = DefaultMaxPayload
	c.workers = 1
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	if c.scheme == nil {
		c.scheme = frame.Plain()
	}
	c.frame = frame.New(c.scheme, c.signature)
	return nil
}

// Algorithm names the bit layout, e.g. "lsb-rgb" or "lsb-rgb+golay+sig".
func (c *LSB) Algorithm() string {
	return c.frame.Name()
}

// Capacity returns the largest payload in bytes that fits in an image of rect
// and that Decode accepts back.
func (c *LSB) Capacity(rect image.Rectangle) int {
	n := max(c.frame.MaxSize(Channels(rect)), 0)
	if c.maxPayload > 0 {
		n = min(n, c.maxPayload)
	}
	return n
}

// Encode embeds payload into a copy of src.
//
// Process:
//  1. Checks that the framed payload fits in the image's channels.
//  2. Copies src into a flat R,G,B channel buffer.
//  3. Writes the frame bits into the least significant bit of successive channels.
//  4. Builds a new image with the same bounds.
//
// Nothing is written when the payload does not fit or exceeds the payload limit.
func (c *LSB) Encode(ctx context.Context, src image.Image, payload []byte) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes do not fit the 32-bit header", ErrInvalidLength, len(payload))
	}
	if c.maxPayload > 0 && len(payload) > c.maxPayload {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrInvalidLength, len(payload), c.maxPayload)
	}
	var rect image.Rectangle
	if src != nil {
		rect = src.Bounds()
	}
	need, have := c.frame.Len(len(payload)), Channels(rect)
	if need > have {
		return nil, fmt.Errorf("%w: needs %d bits, has %d", ErrCapacityExceeded, need, have)
	}

	cv := canvas.New(src)
	bitplane.Embed(cv.Channels(), 0, c.frame.Encode(payload), c.workers)
	return cv.Build(), nil
}

// Decode extracts the payload carried by src.
//
// Process:
//  1. Reads the header bits and recovers the declared payload length.
//  2. Rejects lengths above the configured maximum or beyond the image's channels.
//  3. Reads the payload bits and packs them into bytes.
func (c *LSB) Decode(ctx context.Context, src image.Image) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: no image", ErrTruncatedImage)
	}
	cv := canvas.New(src)
	ch := cv.Channels()
	headerLen := c.frame.HeaderLen()
	if len(ch) < headerLen {
		return nil, fmt.Errorf("%w: header needs %d bits, has %d", ErrTruncatedImage, headerLen, len(ch))
	}

	size, err := c.frame.ParseHeader(bitplane.Extract(ch, 0, headerLen, c.workers))
	if err != nil {
		if errors.Is(err, frame.ErrSignatureMismatch) {
			return nil, fmt.Errorf("%w: %w", ErrNoPayload, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTruncatedImage, err)
	}
	if c.maxPayload > 0 && size > c.maxPayload {
		return nil, fmt.Errorf("%w: declared %d bytes, limit %d", ErrInvalidLength, size, c.maxPayload)
	}
	need := c.frame.Len(size)
	if need > len(ch) {
		return nil, fmt.Errorf("%w: declared %d bytes need %d bits, has %d", ErrTruncatedImage, size, need, len(ch))
	}

	payload, err := c.frame.DecodePayload(bitplane.Extract(ch, headerLen, need-headerLen, c.workers), size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoPayload, err)
	}
	return payload, nil
}
