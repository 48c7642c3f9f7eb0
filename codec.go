package stego

import (
	"context"
	"image"
)

// Codec hides a payload in an image and recovers it.
type Codec interface {
	// Encode returns a new image carrying payload. src is not modified.
	Encode(ctx context.Context, src image.Image, payload []byte) (image.Image, error)
	// Decode returns the payload carried by src.
	Decode(ctx context.Context, src image.Image) ([]byte, error)
}

var _ Codec = (*LSB)(nil)
