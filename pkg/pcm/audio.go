package pcm

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/drgolem/lsbstego/pkg/lsb"
	"github.com/drgolem/lsbstego/pkg/types"
)

// MinDepth is the smallest sample word length payloads can be hidden in.
const MinDepth = 16

// MaxStoreSize bounds the sample store allocation.
const MaxStoreSize = 1 << 31

// Audio is a parsed WAV file: its header, derived sample geometry and, once
// loaded, the raw sample bytes of the "data" sub-chunk.
//
// Only the first (least significant, little-endian) byte of every sample is
// a codec target; the other bytes of multi-byte samples are never touched.
type Audio struct {
	Header

	SampleSize   int   // bytes per sample (depth/8)
	TotalSamples int64 // (DataSize / BlockAlign) * Channels

	samples []byte
}

// New derives the sample geometry for h.
func New(h Header) *Audio {
	var total int64
	if h.Format.BlockAlign != 0 {
		total = int64(h.DataSize/uint32(h.Format.BlockAlign)) * int64(h.Format.Channels)
	}

	return &Audio{
		Header:       h,
		SampleSize:   int(h.Format.BitsPerSample) / 8,
		TotalSamples: total,
	}
}

// Alloc sizes the sample store from the declared data length.
func (a *Audio) Alloc() error {
	size := int64(a.DataSize)
	if size > MaxStoreSize {
		return fmt.Errorf("%w: sample store of %d bytes", types.ErrAllocation, size)
	}
	a.samples = make([]byte, size)
	return nil
}

// Load allocates the sample store and fills it from r, starting at the data
// offset.
func (a *Audio) Load(r io.ReadSeeker) (int, error) {
	if err := a.Alloc(); err != nil {
		return 0, err
	}

	if _, err := r.Seek(a.DataOffset, io.SeekStart); err != nil {
		return 0, types.IOError("seek sample data", err)
	}

	n, err := io.ReadFull(r, a.samples)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return n, fmt.Errorf("%w: sample data truncated: got %d bytes, need %d", types.ErrFormat, n, len(a.samples))
		}
		return n, types.IOError("read sample data", err)
	}
	return n, nil
}

// Samples returns the sample store. It is nil until Load or Alloc succeeds.
func (a *Audio) Samples() []byte {
	return a.samples
}

// Release drops the sample store.
func (a *Audio) Release() {
	a.samples = nil
}

// Positions yields the offset of the first byte of every sample.
func (a *Audio) Positions() iter.Seq[int] {
	return lsb.Stride(int(a.DataSize), a.SampleSize)
}

// UsableBytes returns the number of sample bytes that can each carry one
// payload bit.
func (a *Audio) UsableBytes() int64 {
	if a.SampleSize <= 0 {
		return 0
	}
	return (int64(a.DataSize) + int64(a.SampleSize) - 1) / int64(a.SampleSize)
}

// CheckEncoding fails for sample depths below 16 bits.
func (a *Audio) CheckEncoding() error {
	if a.Format.BitsPerSample < MinDepth {
		return fmt.Errorf("%w: %d-bit samples not supported, need at least %d",
			types.ErrUnsupportedEncoding, a.Format.BitsPerSample, MinDepth)
	}
	return nil
}

// Validate checks that the audio can hide payloadSize bytes: samples must be
// at least 16 bits wide and there must be at least types.MinCapacityRatio
// samples per payload byte.
func (a *Audio) Validate(payloadSize int) error {
	if err := a.CheckEncoding(); err != nil {
		return err
	}
	if payloadSize <= 0 {
		return fmt.Errorf("%w: payload is empty", types.ErrCapacity)
	}

	if ratio := a.TotalSamples / int64(payloadSize); ratio < types.MinCapacityRatio {
		return fmt.Errorf("%w: ratio of samples to payload bytes must be at least %d: %d / %d = %.2f",
			types.ErrCapacity, types.MinCapacityRatio, a.TotalSamples, payloadSize,
			float64(a.TotalSamples)/float64(payloadSize))
	}
	return nil
}

// MaxPayload returns the largest payload size that passes Validate.
func (a *Audio) MaxPayload() int64 {
	return a.TotalSamples / types.MinCapacityRatio
}
