package quality

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/yyyoichi/stego_zero/internal/canvas"
)

var ErrBoundsMismatch = errors.New("image bounds differ")

// Report compares the colour channels of a cover image and its stego copy.
type Report struct {
	Channels int
	// Changed is the number of channels whose value differs.
	Changed int
	// MaxDelta is the largest absolute per-channel difference.
	MaxDelta float64
	MSE      float64
	// PSNR in dB. +Inf when the images are identical.
	PSNR float64
}

func (r Report) Identical() bool {
	return r.Changed == 0
}

// Compare measures how far b drifts from a over the R, G and B channels.
func Compare(a, b image.Image) (Report, error) {
	if a.Bounds().Size() != b.Bounds().Size() {
		return Report{}, fmt.Errorf("%w: %v vs %v", ErrBoundsMismatch, a.Bounds().Size(), b.Bounds().Size())
	}
	ca, cb := canvas.New(a).Channels(), canvas.New(b).Channels()
	r := Report{Channels: len(ca)}
	if len(ca) == 0 {
		r.PSNR = math.Inf(1)
		return r, nil
	}

	diff := make([]float64, len(ca))
	for i := range ca {
		diff[i] = float64(ca[i]) - float64(cb[i])
		if diff[i] != 0 {
			r.Changed++
		}
	}
	sq := make([]float64, len(diff))
	floats.MulTo(sq, diff, diff)
	r.MSE = stat.Mean(sq, nil)
	r.MaxDelta = math.Max(floats.Max(diff), -floats.Min(diff))
	r.PSNR = psnr(r.MSE)
	return r, nil
}

func psnr(mse float64) float64 {
	if mse == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(255*255/mse)
}
