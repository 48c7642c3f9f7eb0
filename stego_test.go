package stego

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/stego_zero/internal/canvas"
)

func newNoiseImage(w, h int, seed int64) *image.NRGBA {
	rd := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rd.Intn(256))
		if i%4 == 3 {
			img.Pix[i] = 255
		}
	}
	return img
}

func TestEncodeDecode(t *testing.T) {
	test := []struct {
		name string
		opts []Option
	}{
		{"default", nil},
		{"signature", []Option{WithSignature([]byte("STEGOv1"))}},
		{"golay", []Option{WithGolay()}},
		{"parallel", []Option{WithParallel(4)}},
		{"all", []Option{WithGolay(), WithSignature([]byte("S")), WithParallel(3)}},
	}
	payloads := [][]byte{
		{},
		[]byte("hi"),
		[]byte("こんにちはHello"),
		[]byte(`{"certId":"c-1","serial":"A/001"}`),
	}
	ctx := context.Background()
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.opts...)
			require.NoError(t, err)
			src := newNoiseImage(40, 30, 1)
			for _, payload := range payloads {
				marked, err := c.Encode(ctx, src, payload)
				require.NoError(t, err)
				assert.Equal(t, src.Bounds(), marked.Bounds())

				got, err := c.Decode(ctx, marked)
				require.NoError(t, err)
				assert.Equal(t, len(payload), len(got))
				assert.Equal(t, string(payload), string(got))
			}
		})
	}
}

func TestScenarioHi(t *testing.T) {
	ctx := context.Background()
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	require.Equal(t, 300, Channels(src.Bounds()))

	marked, err := Encode(ctx, src, []byte("hi"))
	require.NoError(t, err)
	got, err := Decode(ctx, marked)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), got)
}

func TestEncodeOnlyTouchesLSBs(t *testing.T) {
	ctx := context.Background()
	src := newNoiseImage(16, 16, 7)
	orig := append([]uint8(nil), src.Pix...)
	payload := []byte("non destructive")

	c, err := New()
	require.NoError(t, err)
	marked, err := c.Encode(ctx, src, payload)
	require.NoError(t, err)

	assert.Equal(t, orig, src.Pix, "source must not be modified")

	before := canvas.New(src).Channels()
	after := canvas.New(marked).Channels()
	used := 32 + len(payload)*8
	for i := range before {
		diff := int(after[i]) - int(before[i])
		assert.LessOrEqual(t, diff*diff, 1, "channel %d", i)
		if i >= used {
			assert.Equal(t, before[i], after[i], "channel %d beyond the frame", i)
		}
	}
	// alpha untouched
	out := marked.(*image.NRGBA)
	for i := 3; i < len(out.Pix); i += 4 {
		assert.Equal(t, orig[i], out.Pix[i])
	}
}

func TestEncodeCapacity(t *testing.T) {
	ctx := context.Background()
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	c, err := New()
	require.NoError(t, err)

	capacity := c.Capacity(src.Bounds())
	require.Equal(t, 33, capacity)

	_, err = c.Encode(ctx, src, make([]byte, capacity))
	assert.NoError(t, err)

	marked, err := c.Encode(ctx, src, make([]byte, capacity+1))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Nil(t, marked)
	assert.Equal(t, KindCapacityExceeded, KindOf(err))

	t.Run("header does not fit", func(t *testing.T) {
		tiny := image.NewRGBA(image.Rect(0, 0, 3, 3))
		assert.Equal(t, 0, c.Capacity(tiny.Bounds()))
		_, err := c.Encode(ctx, tiny, nil)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})
	t.Run("nil image", func(t *testing.T) {
		_, err := c.Encode(ctx, nil, nil)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})
	t.Run("payload limit", func(t *testing.T) {
		test := []struct {
			name     string
			limit    int
			capacity int
		}{
			{"below image capacity", 10, 10},
			{"above image capacity", 100, 33},
			{"disabled", 0, 33},
		}
		for _, tt := range test {
			t.Run(tt.name, func(t *testing.T) {
				l, err := New(WithMaxPayload(tt.limit))
				require.NoError(t, err)
				n := l.Capacity(src.Bounds())
				assert.Equal(t, tt.capacity, n)

				payload := bytes.Repeat([]byte{0xa5}, n)
				marked, err := l.Encode(ctx, src, payload)
				require.NoError(t, err)
				got, err := l.Decode(ctx, marked)
				require.NoError(t, err)
				assert.Equal(t, payload, got)

				marked, err = l.Encode(ctx, src, append(payload, 0xa5))
				assert.Nil(t, marked)
				if tt.limit > 0 && tt.limit < 33 {
					assert.ErrorIs(t, err, ErrInvalidLength)
				} else {
					assert.ErrorIs(t, err, ErrCapacityExceeded)
				}
			})
		}
	})
	t.Run("golay needs more room", func(t *testing.T) {
		g, err := New(WithGolay())
		require.NoError(t, err)
		assert.Less(t, g.Capacity(src.Bounds()), capacity)
		_, err = g.Encode(ctx, src, make([]byte, g.Capacity(src.Bounds())+1))
		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})
}

func TestDecodeErrors(t *testing.T) {
	ctx := context.Background()

	// writeHeader stores a raw 32-bit length in the first channels.
	writeHeader := func(img *image.NRGBA, n uint32) *image.NRGBA {
		ch := 0
		for i := range img.Pix {
			if i%4 == 3 {
				continue
			}
			if ch == 32 {
				break
			}
			bit := uint8(n>>uint(31-ch)) & 1
			img.Pix[i] = img.Pix[i]&^1 | bit
			ch++
		}
		return img
	}

	test := []struct {
		name string
		img  image.Image
		opts []Option
		want error
	}{
		{"too small for header", image.NewRGBA(image.Rect(0, 0, 3, 3)), nil, ErrTruncatedImage},
		{"declared length beyond image", writeHeader(image.NewNRGBA(image.Rect(0, 0, 10, 10)), 34), nil, ErrTruncatedImage},
		{"declared length beyond limit", writeHeader(image.NewNRGBA(image.Rect(0, 0, 10, 10)), 1<<31), nil, ErrInvalidLength},
		{"limit disabled", writeHeader(image.NewNRGBA(image.Rect(0, 0, 10, 10)), 1<<31), []Option{WithMaxPayload(0)}, ErrTruncatedImage},
		{"custom limit", writeHeader(image.NewNRGBA(image.Rect(0, 0, 10, 10)), 20), []Option{WithMaxPayload(10)}, ErrInvalidLength},
		{"missing signature", newNoiseImage(10, 10, 3), []Option{WithSignature([]byte("STEGOv1"))}, ErrNoPayload},
		{"nil image", nil, nil, ErrTruncatedImage},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.opts...)
			require.NoError(t, err)
			_, err = c.Decode(ctx, tt.img)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("declared length exactly fits", func(t *testing.T) {
		img := writeHeader(image.NewNRGBA(image.Rect(0, 0, 10, 10)), 33)
		got, err := Decode(ctx, img)
		require.NoError(t, err)
		assert.Len(t, got, 33)
	})
}

func TestDecodeIdempotent(t *testing.T) {
	ctx := context.Background()
	marked, err := Encode(ctx, newNoiseImage(20, 20, 5), []byte("same every time"))
	require.NoError(t, err)

	first, err := Decode(ctx, marked)
	require.NoError(t, err)
	second, err := Decode(ctx, marked)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncodeDeterministic(t *testing.T) {
	ctx := context.Background()
	src := newNoiseImage(20, 20, 9)
	a, err := Encode(ctx, src, []byte("x"), WithParallel(1))
	require.NoError(t, err)
	b, err := Encode(ctx, src, []byte("x"), WithParallel(8))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSignatureMismatch(t *testing.T) {
	ctx := context.Background()
	marked, err := Encode(ctx, newNoiseImage(20, 20, 2), []byte("hello"), WithSignature([]byte("AAAA")))
	require.NoError(t, err)

	_, err = Decode(ctx, marked, WithSignature([]byte("BBBB")))
	assert.ErrorIs(t, err, ErrNoPayload)
	assert.Equal(t, KindNoPayload, KindOf(err))
}

func TestGolayRecoversFlippedBits(t *testing.T) {
	ctx := context.Background()
	c, err := New(WithGolay())
	require.NoError(t, err)
	payload := []byte("survives a few flipped bits")
	marked, err := c.Encode(ctx, newNoiseImage(40, 40, 4), payload)
	require.NoError(t, err)

	img := marked.(*image.NRGBA)
	// flip the LSB of three payload channels (pixel 20, 30 and 40, red)
	for _, px := range []int{20, 30, 40} {
		img.Pix[px*4] ^= 1
	}
	got, err := c.Decode(ctx, img)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestNonOpaqueImage(t *testing.T) {
	ctx := context.Background()
	src := image.NewNRGBA(image.Rect(0, 0, 12, 12))
	for i := range src.Pix {
		src.Pix[i] = uint8(i)
	}
	src.SetNRGBA(0, 0, color.NRGBA{10, 20, 30, 0})

	marked, err := Encode(ctx, src, []byte("alpha"))
	require.NoError(t, err)
	got, err := Decode(ctx, marked)
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), got)
}

func TestContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Encode(ctx, newNoiseImage(10, 10, 1), []byte("x"))
	assert.True(t, errors.Is(err, context.Canceled))
	_, err = Decode(ctx, newNoiseImage(10, 10, 1))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOptions(t *testing.T) {
	_, err := New(WithMaxPayload(-1))
	assert.ErrorIs(t, err, ErrInvalidLength)

	c, err := New()
	require.NoError(t, err)
	assert.Equal(t, "lsb-rgb", c.Algorithm())

	c, err = New(WithGolay(), WithSignature([]byte("S")))
	require.NoError(t, err)
	assert.Equal(t, "lsb-rgb+golay+sig", c.Algorithm())
}

func TestKindOf(t *testing.T) {
	test := []struct {
		err  error
		kind Kind
		name string
	}{
		{nil, KindNone, ""},
		{ErrUsage, KindUsage, "usage"},
		{ErrFileNotFound, KindFileNotFound, "file_not_found"},
		{ErrTruncatedImage, KindTruncatedImage, "truncated_image"},
		{ErrInvalidLength, KindInvalidLength, "invalid_length"},
		{ErrLossyFormat, KindLossyFormat, "lossy_format"},
		{ErrUnsupportedFormat, KindUnsupportedFormat, "unsupported_format"},
		{errors.New("other"), KindUnknown, "unknown"},
	}
	for _, tt := range test {
		assert.Equal(t, tt.kind, KindOf(tt.err))
		assert.Equal(t, tt.name, KindOf(tt.err).String())
	}
}
