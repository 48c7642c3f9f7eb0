package stego

import (
	"fmt"

	"github.com/yyyoichi/stego_zero/internal/frame"
)

type Option func(*LSB) error

// WithMaxPayload bounds the payload length Decode accepts from a header.
// A declared length above n fails with ErrInvalidLength instead of reading
// n bytes of noise. 0 disables the bound.
func WithMaxPayload(n int) Option {
	return func(c *LSB) error {
		if n < 0 {
			return fmt.Errorf("%w: max payload %d", ErrInvalidLength, n)
		}
		c.maxPayload = n
		return nil
	}
}

// WithSignature writes sig in front of the length header.
// Decode reports ErrNoPayload when an image does not start with sig,
// which makes foreign images fail fast instead of yielding garbage.
func WithSignature(sig []byte) Option {
	return func(c *LSB) error {
		c.signature = sig
		return nil
	}
}

// WithGolay protects the payload bits with the Golay(24,12) code.
// Up to three flipped bits per codeword are corrected, at roughly twice the
// channel cost. The length header itself is not protected.
func WithGolay() Option {
	return func(c *LSB) error {
		c.scheme = frame.Golay(frame.DefaultShuffleSeed)
		return nil
	}
}

// WithParallel spreads bit reads and writes over workers goroutines.
// The result is identical to the sequential path.
func WithParallel(workers int) Option {
	return func(c *LSB) error {
		if workers < 1 {
			workers = 1
		}
		c.workers = workers
		return nil
	}
}
