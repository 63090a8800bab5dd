package bitmap

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/drgolem/lsbstego/pkg/lsb"
	"github.com/drgolem/lsbstego/pkg/types"
)

// SupportedDepth is the only color depth payloads can be hidden in.
const SupportedDepth = 24

// MaxStoreSize bounds the pixel store allocation.
const MaxStoreSize = 1 << 31

// Image is a parsed bitmap: its header, the geometry derived from it and,
// once loaded, the pixel array.
//
// The pixel store is a single buffer of Rows()*RowLen bytes, one row after
// another in file order. The last Pad bytes of every row are alignment
// filler and are never read or written by the codec.
type Image struct {
	Header

	PixelSize int   // bytes per pixel (depth/8)
	Pad       int   // pad bytes per row
	RowLen    int   // row length in bytes including padding
	Start     int64 // byte offset of the first pixel

	pixels []byte
}

// New derives the row geometry for h.
func New(h Header) *Image {
	width := int(h.Width)
	depth := int(h.Depth)
	pad := Padding(width, depth)

	return &Image{
		Header:    h,
		PixelSize: depth / 8,
		Pad:       pad,
		RowLen:    width*depth/8 + pad,
		Start:     int64(h.DataOffset),
	}
}

// StoreSize returns the number of bytes occupied by the pixel array.
func (img *Image) StoreSize() int64 {
	return int64(img.Rows()) * int64(img.RowLen)
}

// Alloc sizes the pixel store from the parsed geometry.
func (img *Image) Alloc() error {
	size := img.StoreSize()
	if size < 0 || size > MaxStoreSize {
		return fmt.Errorf("%w: pixel store of %d bytes (%dx%d rows of %d bytes)",
			types.ErrAllocation, size, img.Width, img.Rows(), img.RowLen)
	}
	img.pixels = make([]byte, size)
	return nil
}

// Load allocates the pixel store and fills it from r, starting at the pixel
// array offset.
func (img *Image) Load(r io.ReadSeeker) (int, error) {
	if err := img.Alloc(); err != nil {
		return 0, err
	}

	if _, err := r.Seek(img.Start, io.SeekStart); err != nil {
		return 0, types.IOError("seek pixel array", err)
	}

	n, err := io.ReadFull(r, img.pixels)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return n, fmt.Errorf("%w: pixel array truncated: got %d bytes, need %d", types.ErrFormat, n, len(img.pixels))
		}
		return n, types.IOError("read pixel array", err)
	}
	return n, nil
}

// Pixels returns the pixel store. It is nil until Load or Alloc succeeds.
func (img *Image) Pixels() []byte {
	return img.pixels
}

// Release drops the pixel store.
func (img *Image) Release() {
	img.pixels = nil
}

// Positions yields the offsets of every payload-bearing byte in the pixel
// store: row-major, skipping the padding at the end of each row.
func (img *Image) Positions() iter.Seq[int] {
	return lsb.Rows(img.Rows(), img.RowLen, img.RowLen-img.Pad)
}

// UsableBytes returns the number of bytes that can each carry one payload bit.
func (img *Image) UsableBytes() int64 {
	return int64(img.Rows()) * int64(img.RowLen-img.Pad)
}

// CheckEncoding fails unless the image has a 24-bit color depth.
func (img *Image) CheckEncoding() error {
	if img.Depth != SupportedDepth {
		return fmt.Errorf("%w: bitmap color depth is %d bits, must be %d",
			types.ErrUnsupportedEncoding, img.Depth, SupportedDepth)
	}
	return nil
}

// Validate checks that the image can hide payloadSize bytes: the depth must
// be 24 bits and there must be at least types.MinCapacityRatio usable pixel
// bytes per payload byte.
//
// Capacity counts colour bytes (three per pixel), not pixels, so a bitmap
// accepts three times the payload a per-pixel ratio would allow.
func (img *Image) Validate(payloadSize int) error {
	if err := img.CheckEncoding(); err != nil {
		return err
	}
	if payloadSize <= 0 {
		return fmt.Errorf("%w: payload is empty", types.ErrCapacity)
	}

	usable := img.UsableBytes()
	if ratio := usable / int64(payloadSize); ratio < types.MinCapacityRatio {
		return fmt.Errorf("%w: ratio of pixel bytes to payload bytes must be at least %d: %d / %d = %.2f",
			types.ErrCapacity, types.MinCapacityRatio, usable, payloadSize, float64(usable)/float64(payloadSize))
	}
	return nil
}

// MaxPayload returns the largest payload size that passes Validate.
func (img *Image) MaxPayload() int64 {
	return img.UsableBytes() / types.MinCapacityRatio
}
