// Package lsb hides and recovers bytes in the least-significant bits of a
// carrier buffer.
//
// The carrier is addressed through a sequence of positions (byte offsets into
// the buffer) that the container format decides: bitmaps skip row padding,
// WAV files only touch the first byte of every sample. Bit k of payload byte
// n (k=0 being the most significant bit) always lands in the LSB of the
// (n*8+k)-th position, so Extract is the exact inverse of Embed for any
// position sequence.
package lsb

import (
	"fmt"
	"iter"

	"github.com/drgolem/lsbstego/pkg/types"
)

// Embed writes every bit of payload, MSB first, into the LSB of the carrier
// bytes yielded by positions. It stops as soon as the payload is consumed;
// carrier bytes past the last payload bit are not modified.
//
// Returns an error wrapping types.ErrCapacity if positions runs out before
// the whole payload is written. The carrier is modified up to that point.
func Embed(carrier []byte, positions iter.Seq[int], payload []byte) error {
	total := len(payload) * 8
	if total == 0 {
		return nil
	}

	bit := 0
	for pos := range positions {
		b := payload[bit/8]
		v := (b >> (7 - bit%8)) & 1
		carrier[pos] = (carrier[pos] &^ 1) | v

		bit++
		if bit == total {
			return nil
		}
	}

	return fmt.Errorf("%w: carrier ran out after %d of %d payload bits", types.ErrCapacity, bit, total)
}

// Extract fills dst with bits read, MSB first, from the LSB of the carrier
// bytes yielded by positions. The number of bytes recovered is len(dst).
//
// Returns an error wrapping types.ErrCapacity if positions runs out before
// dst is filled.
func Extract(carrier []byte, positions iter.Seq[int], dst []byte) error {
	total := len(dst) * 8
	if total == 0 {
		return nil
	}

	bit := 0
	var acc byte
	for pos := range positions {
		acc = acc<<1 | carrier[pos]&1

		bit++
		if bit%8 == 0 {
			dst[bit/8-1] = acc
			acc = 0
		}
		if bit == total {
			return nil
		}
	}

	return fmt.Errorf("%w: carrier ran out after %d of %d payload bits", types.ErrCapacity, bit, total)
}

// Count returns the number of positions in the sequence, i.e. the number of
// payload bits the carrier can hold.
func Count(positions iter.Seq[int]) int {
	n := 0
	for range positions {
		n++
	}
	return n
}

// Stride yields 0, step, 2*step, ... up to (but excluding) n.
func Stride(n, step int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if step <= 0 {
			return
		}
		for i := 0; i < n; i += step {
			if !yield(i) {
				return
			}
		}
	}
}

// Rows yields the first usable bytes of every row in a row-major grid of
// rows*rowLen bytes, skipping the trailing rowLen-usable bytes of each row.
func Rows(rows, rowLen, usable int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if usable > rowLen {
			usable = rowLen
		}
		for i := 0; i < rows; i++ {
			base := i * rowLen
			for j := 0; j < usable; j++ {
				if !yield(base + j) {
					return
				}
			}
		}
	}
}
