package frame

import (
	"math/rand"

	"github.com/yyyoichi/golay"
)

// DefaultShuffleSeed seeds the interleaving applied to golay encoded payloads.
var DefaultShuffleSeed int64 = 1234567890

// Scheme turns payload bits into the bits that are actually embedded, and back.
type Scheme interface {
	// encode returns the embedded form of bits.
	encode(bits []bool) []bool
	// decode restores size payload bits from the embedded bits.
	decode(embedded []bool, size int) ([]bool, error)
	// encodedLen is the embedded bit length for size payload bits.
	encodedLen(size int) int
	Name() string
}

// Plain embeds payload bits as they are.
func Plain() Scheme { return plain{} }

// Golay protects the payload with the extended Golay(24,12) code.
// Codeword bits are interleaved across the whole payload region, so a damaged
// area of the image spreads its errors over many codewords.
func Golay(seed int64) Scheme { return interleavedGolay{seed: seed} }

var _ Scheme = plain{}

type plain struct{}

func (plain) encode(bits []bool) []bool { return bits }

func (plain) decode(embedded []bool, size int) ([]bool, error) {
	return embedded[:size], nil
}

func (plain) encodedLen(size int) int { return size }

func (plain) Name() string { return "lsb-rgb" }

var _ Scheme = interleavedGolay{}

type interleavedGolay struct {
	seed int64
}

func (g interleavedGolay) encode(bits []bool) []bool {
	if len(bits) == 0 {
		return nil
	}
	words, n := pack(bits)
	var codewords []uint64
	enc := golay.NewEncoder(&codewords)
	_ = enc.Encode(words, n)
	coded := unpack(codewords, enc.Bits())

	// embedded position i carries codeword bit order[i]
	order := g.order(len(coded))
	out := make([]bool, len(coded))
	for i, j := range order {
		out[i] = coded[j]
	}
	return out
}

func (g interleavedGolay) decode(embedded []bool, size int) ([]bool, error) {
	if size == 0 {
		return nil, nil
	}
	coded := make([]bool, len(embedded))
	for i, j := range g.order(len(embedded)) {
		coded[j] = embedded[i]
	}
	words, n := pack(coded)
	var decoded []uint64
	if err := golay.NewDecoder(words, n).Decode(&decoded); err != nil {
		return nil, err
	}
	return unpack(decoded, size), nil
}

func (g interleavedGolay) encodedLen(size int) int {
	if size == 0 {
		return 0
	}
	return golay.EncodedBits(size)
}

func (g interleavedGolay) Name() string { return "lsb-rgb+golay" }

// order is a seeded permutation of [0, n).
func (g interleavedGolay) order(n int) []int {
	return rand.New(rand.NewSource(g.seed)).Perm(n)
}
