package bitplane

import "sync"

// minSpan is the smallest number of bits handed to a single worker.
const minSpan = 4096

// Embed writes bits[i] into the least significant bit of ch[offset+i].
// Only the LSB of each touched channel changes.
func Embed(ch []uint8, offset int, bits []bool, workers int) {
	spans(len(bits), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if bits[i] {
				ch[offset+i] |= 1
			} else {
				ch[offset+i] &^= 1
			}
		}
	})
}

// Extract reads the least significant bits of ch[offset:offset+n].
func Extract(ch []uint8, offset, n int, workers int) []bool {
	bits := make([]bool, n)
	spans(n, workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			bits[i] = ch[offset+i]&1 == 1
		}
	})
	return bits
}

// spans splits [0, n) into disjoint ranges and runs fn on each of them.
func spans(n, workers int, fn func(lo, hi int)) {
	if workers <= 1 || n < minSpan*2 {
		fn(0, n)
		return
	}
	size := max((n+workers-1)/workers, minSpan)
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
