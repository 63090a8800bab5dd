// Package bitmap reads the geometry of uncompressed Windows BMP files and
// holds their pixel array as a flat, row-strided byte store.
package bitmap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/drgolem/lsbstego/pkg/types"
)

// Byte offsets of the header fields used here.
// See https://en.wikipedia.org/wiki/BMP_file_format
const (
	offMagic       = 0x00
	offFileSize    = 0x02
	offPixelOffset = 0x0A
	offWidth       = 0x12
	offHeight      = 0x16
	offDepth       = 0x1C

	// headerLen covers every field up to and including the color depth
	headerLen = offDepth + 2
)

// Header holds the fields read from a bitmap's file and info headers.
//
// Binary layout (little-endian):
//   - 0x00 magic "BM" (2 bytes)
//   - 0x02 file size (4 bytes)
//   - 0x0A pixel array offset (4 bytes)
//   - 0x12 width in pixels (4 bytes)
//   - 0x16 height in pixels (4 bytes, negative for top-down images)
//   - 0x1C color depth in bits (2 bytes)
type Header struct {
	FileSize   uint32
	DataOffset uint32
	Width      int32
	Height     int32
	Depth      uint16
}

// Rows returns the number of pixel rows, regardless of storage direction.
func (h Header) Rows() int {
	if h.Height < 0 {
		return -int(h.Height)
	}
	return int(h.Height)
}

// ParseHeader reads the bitmap header from the start of r.
//
// Returns an error wrapping types.ErrFormat if the magic bytes are not "BM",
// the header is truncated or the width is negative.
func ParseHeader(r io.ReadSeeker) (Header, error) {
	if _, err := r.Seek(offMagic, io.SeekStart); err != nil {
		return Header{}, types.IOError("seek bitmap header", err)
	}

	var b [headerLen]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, fmt.Errorf("%w: bitmap header truncated", types.ErrFormat)
		}
		return Header{}, types.IOError("read bitmap header", err)
	}

	if string(b[offMagic:offMagic+2]) != "BM" {
		return Header{}, fmt.Errorf("%w: unrecognized bitmap magic %q", types.ErrFormat, b[offMagic:offMagic+2])
	}

	h := Header{
		FileSize:   binary.LittleEndian.Uint32(b[offFileSize:]),
		DataOffset: binary.LittleEndian.Uint32(b[offPixelOffset:]),
		Width:      int32(binary.LittleEndian.Uint32(b[offWidth:])),
		Height:     int32(binary.LittleEndian.Uint32(b[offHeight:])),
		Depth:      binary.LittleEndian.Uint16(b[offDepth:]),
	}

	if h.Width < 0 {
		return Header{}, fmt.Errorf("%w: negative bitmap width %d", types.ErrFormat, h.Width)
	}
	if h.DataOffset < headerLen {
		return Header{}, fmt.Errorf("%w: pixel array offset %d overlaps header", types.ErrFormat, h.DataOffset)
	}

	return h, nil
}
