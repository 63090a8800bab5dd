// Package pcm reads the layout of RIFF/WAVE files carrying PCM audio and
// holds their sample data as a flat byte store.
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/drgolem/lsbstego/pkg/types"
)

// AudioFormatPCM is the WAVE format tag for uncompressed PCM.
const AudioFormatPCM = 1

// Format mirrors the fields of the "fmt " sub-chunk, in file order.
type Format struct {
	AudioFormat   uint16 // 1 for PCM
	Channels      uint16 // 1 = mono, 2 = stereo
	SampleRate    uint32 // Hz
	ByteRate      uint32 // SampleRate * BlockAlign
	BlockAlign    uint16 // frame size in bytes
	BitsPerSample uint16 // word length in bits
}

// Header holds everything read from a WAV file before its sample data.
type Header struct {
	ChunkSize  uint32 // RIFF chunk size (file size - 8)
	Format     Format
	DataSize   uint32 // size of the "data" sub-chunk in bytes
	DataOffset int64  // byte offset of the first sample
}

// FileSize returns the file size declared by the RIFF header.
func (h Header) FileSize() int64 {
	return int64(h.ChunkSize) + 8
}

// ParseHeader reads the WAV header from the start of r.
//
// "RIFF" must be at offset 0. The "WAVE", "fmt " and "data" tags are located
// with FindTag. On success r is positioned at the first sample byte.
//
// Returns an error wrapping types.ErrFormat if a tag is missing, the header is
// truncated, the audio format is not PCM or the block alignment is zero.
func ParseHeader(r io.ReadSeeker) (Header, error) {
	var h Header

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return h, types.IOError("seek wav header", err)
	}

	var riff [8]byte
	if err := readFull(r, riff[:], "RIFF header"); err != nil {
		return h, err
	}
	if string(riff[:4]) != "RIFF" {
		return h, fmt.Errorf("%w: missing RIFF tag, got %q", types.ErrFormat, riff[:4])
	}
	h.ChunkSize = binary.LittleEndian.Uint32(riff[4:])

	if _, err := FindTag(r, "WAVE"); err != nil {
		return h, err
	}
	if _, err := FindTag(r, "fmt "); err != nil {
		return h, err
	}

	// sub-chunk size, assumed to be followed directly by the PCM fields
	if _, err := r.Seek(4, io.SeekCurrent); err != nil {
		return h, types.IOError("skip fmt size", err)
	}

	var fmtBuf [16]byte
	if err := readFull(r, fmtBuf[:], "fmt sub-chunk"); err != nil {
		return h, err
	}
	h.Format = Format{
		AudioFormat:   binary.LittleEndian.Uint16(fmtBuf[0:2]),
		Channels:      binary.LittleEndian.Uint16(fmtBuf[2:4]),
		SampleRate:    binary.LittleEndian.Uint32(fmtBuf[4:8]),
		ByteRate:      binary.LittleEndian.Uint32(fmtBuf[8:12]),
		BlockAlign:    binary.LittleEndian.Uint16(fmtBuf[12:14]),
		BitsPerSample: binary.LittleEndian.Uint16(fmtBuf[14:16]),
	}

	if h.Format.AudioFormat != AudioFormatPCM {
		return h, fmt.Errorf("%w: not a PCM file (audio format %d)", types.ErrFormat, h.Format.AudioFormat)
	}
	if h.Format.BlockAlign == 0 {
		return h, fmt.Errorf("%w: block alignment is zero", types.ErrFormat)
	}

	if _, err := FindTag(r, "data"); err != nil {
		return h, err
	}

	var size [4]byte
	if err := readFull(r, size[:], "data size"); err != nil {
		return h, err
	}
	h.DataSize = binary.LittleEndian.Uint32(size[:])

	off, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return h, types.IOError("locate sample data", err)
	}
	h.DataOffset = off

	return h, nil
}

func readFull(r io.Reader, b []byte, what string) error {
	if _, err := io.ReadFull(r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %s truncated", types.ErrFormat, what)
		}
		return types.IOError("read "+what, err)
	}
	return nil
}
