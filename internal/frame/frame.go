package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/yyyoichi/bitstream-go"
)

// LengthBits is the width of the big-endian payload length header.
const LengthBits = 32

var (
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrShortHeader       = errors.New("short header")
)

// Frame lays a payload out as
//
//	[signature bytes][32-bit big-endian byte length][scheme encoded payload bits]
//
// with every byte written most significant bit first.
type Frame struct {
	scheme    Scheme
	signature []byte
}

func New(scheme Scheme, signature []byte) Frame {
	if scheme == nil {
		scheme = Plain()
	}
	return Frame{
		scheme:    scheme,
		signature: bytes.Clone(signature),
	}
}

// HeaderLen is the number of bits before the payload.
func (f Frame) HeaderLen() int {
	return len(f.signature)*8 + LengthBits
}

// Len is the total number of bits needed for a payload of size bytes.
func (f Frame) Len(size int) int {
	return f.HeaderLen() + f.scheme.encodedLen(size*8)
}

// Name identifies the layout, e.g. "lsb-rgb+golay+sig".
func (f Frame) Name() string {
	if len(f.signature) > 0 {
		return f.scheme.Name() + "+sig"
	}
	return f.scheme.Name()
}

// MaxSize returns the largest payload size in bytes whose frame fits in n bits.
// It returns -1 when not even the header fits.
func (f Frame) MaxSize(n int) int {
	if n < f.HeaderLen() {
		return -1
	}
	// Len is monotonic in size.
	lo, hi := 0, (n-f.HeaderLen())/8
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.Len(mid) <= n {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// Encode returns the full bit sequence for payload.
// The caller guarantees len(payload) fits in 32 bits.
func (f Frame) Encode(payload []byte) []bool {
	header := make([]byte, 0, len(f.signature)+4)
	header = append(header, f.signature...)
	header = binary.BigEndian.AppendUint32(header, uint32(len(payload)))

	bits := toBits(header)
	return append(bits, f.scheme.encode(toBits(payload))...)
}

// ParseHeader checks the signature and returns the declared payload size in bytes.
func (f Frame) ParseHeader(bits []bool) (int, error) {
	if len(bits) < f.HeaderLen() {
		return 0, fmt.Errorf("%w: %d < %d bits", ErrShortHeader, len(bits), f.HeaderLen())
	}
	header := toBytes(bits[:f.HeaderLen()], len(f.signature)+4)
	if got := header[:len(f.signature)]; !bytes.Equal(got, f.signature) {
		return 0, fmt.Errorf("%w: got %x, want %x", ErrSignatureMismatch, got, f.signature)
	}
	return int(binary.BigEndian.Uint32(header[len(f.signature):])), nil
}

// DecodePayload restores size bytes from the bits following the header.
func (f Frame) DecodePayload(bits []bool, size int) ([]byte, error) {
	decoded, err := f.scheme.decode(bits, size*8)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return toBytes(decoded, size), nil
}

// toBits spreads b into bits, most significant bit first.
func toBits(b []byte) []bool {
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, v := range b {
		w.Write8(0, 8, v)
	}
	return unpack(w.Data(), w.Bits())
}

// toBytes packs the first size*8 bits back into bytes.
func toBytes(bits []bool, size int) []byte {
	words, _ := pack(bits)
	r := bitstream.NewBitReader(words, 0, 0)
	out := make([]byte, size)
	for i := range out {
		out[i] = r.Read8R(8, i)
	}
	return out
}

// pack stores bits in bitstream words and returns them with their bit count.
func pack(bits []bool) ([]uint64, int) {
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, v := range bits {
		w.WriteBool(v)
	}
	return w.Data(), w.Bits()
}

// unpack reads the first n bits of words.
func unpack(words []uint64, n int) []bool {
	r := bitstream.NewBitReader(words, 0, 0)
	bits := make([]bool, n)
	for i := range bits {
		bits[i], _ = r.ReadBitAt(i)
	}
	return bits
}
