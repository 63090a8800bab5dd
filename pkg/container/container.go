// Package container models a carrier file as a closed union of the supported
// formats and drives the format-specific parsing, validation, embedding and
// re-serialization.
package container

import (
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/drgolem/lsbstego/pkg/bitmap"
	"github.com/drgolem/lsbstego/pkg/lsb"
	"github.com/drgolem/lsbstego/pkg/payload"
	"github.com/drgolem/lsbstego/pkg/pcm"
	"github.com/drgolem/lsbstego/pkg/types"
)

// Container is a carrier file. Exactly one of Bitmap and Wav is set,
// selected by Type.
//
// The source is kept open for the lifetime of the container: header bytes
// and any trailing bytes are copied from it verbatim when the modified
// container is written out.
type Container struct {
	Name     string
	FileSize int64 // size declared by the file's own header
	Type     types.ContainerType

	Bitmap *bitmap.Image
	Wav    *pcm.Audio

	src    io.ReadSeeker
	srcLen int64
}

// Open detects the format of src and parses its header.
// src must be positioned anywhere; it is rewound before use.
func Open(src io.ReadSeeker, name string) (*Container, error) {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, types.IOError("seek "+name, err)
	}

	typ, err := Detect(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	srcLen, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, types.IOError("size "+name, err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, types.IOError("seek "+name, err)
	}

	c := &Container{
		Name:   name,
		Type:   typ,
		src:    src,
		srcLen: srcLen,
	}

	switch typ {
	case types.Bitmap:
		h, err := bitmap.ParseHeader(src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		c.Bitmap = bitmap.New(h)
		c.FileSize = int64(h.FileSize)
	case types.Wav:
		h, err := pcm.ParseHeader(src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		c.Wav = pcm.New(h)
		c.FileSize = h.FileSize()
	}

	slog.Debug("Container header parsed", "file", name, "type", typ, "data_offset", c.DataOffset(), "data_size", c.DataSize())

	return c, nil
}

// DataOffset returns the byte offset of the payload-bearing region.
func (c *Container) DataOffset() int64 {
	switch c.Type {
	case types.Bitmap:
		return c.Bitmap.Start
	case types.Wav:
		return c.Wav.DataOffset
	}
	return 0
}

// DataSize returns the length in bytes of the payload-bearing region.
func (c *Container) DataSize() int64 {
	switch c.Type {
	case types.Bitmap:
		return c.Bitmap.StoreSize()
	case types.Wav:
		return int64(c.Wav.DataSize)
	}
	return 0
}

// UsableBytes returns the number of carrier bytes that can hold one payload
// bit each.
func (c *Container) UsableBytes() int64 {
	switch c.Type {
	case types.Bitmap:
		return c.Bitmap.UsableBytes()
	case types.Wav:
		return c.Wav.UsableBytes()
	}
	return 0
}

// MaxPayload returns the largest payload, in bytes, that passes Validate.
func (c *Container) MaxPayload() int64 {
	switch c.Type {
	case types.Bitmap:
		return c.Bitmap.MaxPayload()
	case types.Wav:
		return c.Wav.MaxPayload()
	}
	return 0
}

// Validate checks that the container can hide a payload of payloadSize bytes.
func (c *Container) Validate(payloadSize int) error {
	var err error
	switch c.Type {
	case types.Bitmap:
		err = c.Bitmap.Validate(payloadSize)
	case types.Wav:
		err = c.Wav.Validate(payloadSize)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", c.Name, err)
	}
	return nil
}

// CheckRecoverable checks that size bytes can be read back from the
// container: the encoding must be one a payload could have been hidden in and
// the carrier must have at least size*8 usable bytes.
//
// Unlike Validate it does not enforce the capacity ratio, which is only
// logged as a warning when it is not met.
func (c *Container) CheckRecoverable(size int) error {
	var err error
	switch c.Type {
	case types.Bitmap:
		err = c.Bitmap.CheckEncoding()
	case types.Wav:
		err = c.Wav.CheckEncoding()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", c.Name, err)
	}

	if size <= 0 {
		return fmt.Errorf("%w: payload size must be positive, got %d", types.ErrCapacity, size)
	}

	usable := c.UsableBytes()
	if int64(size)*8 > usable {
		return fmt.Errorf("%w: %s holds at most %d bytes, %d requested",
			types.ErrCapacity, c.Name, usable/8, size)
	}
	if usable/int64(size) < types.MinCapacityRatio {
		slog.Warn("Requested size exceeds what hide mode would have accepted",
			"file", c.Name, "size", size, "max_payload", c.MaxPayload())
	}
	return nil
}

// Load allocates the format's store and reads the payload-bearing region
// into it.
func (c *Container) Load() (int, error) {
	if end := c.DataOffset() + c.DataSize(); end > c.srcLen {
		return 0, fmt.Errorf("%w: %s: data region ends at %d, file is %d bytes",
			types.ErrFormat, c.Name, end, c.srcLen)
	}

	var (
		n   int
		err error
	)
	switch c.Type {
	case types.Bitmap:
		n, err = c.Bitmap.Load(c.src)
	case types.Wav:
		n, err = c.Wav.Load(c.src)
	}
	if err != nil {
		return n, fmt.Errorf("%s: %w", c.Name, err)
	}

	slog.Debug("Container data loaded", "file", c.Name, "bytes", n)
	return n, nil
}

// store returns the loaded store and its scan order.
func (c *Container) store() ([]byte, iter.Seq[int], error) {
	var (
		buf []byte
		pos iter.Seq[int]
	)
	switch c.Type {
	case types.Bitmap:
		buf, pos = c.Bitmap.Pixels(), c.Bitmap.Positions()
	case types.Wav:
		buf, pos = c.Wav.Samples(), c.Wav.Positions()
	}
	if buf == nil && c.DataSize() > 0 {
		return nil, nil, fmt.Errorf("%s: container data not loaded", c.Name)
	}
	return buf, pos, nil
}

// Embed hides p in the loaded store.
func (c *Container) Embed(p *payload.Payload) error {
	buf, pos, err := c.store()
	if err != nil {
		return err
	}

	slog.Info("Mixing payload bits into container", "payload", p.Name, "container", c.Name, "bytes", p.Size())
	if err := lsb.Embed(buf, pos, p.Bytes); err != nil {
		return fmt.Errorf("%s: %w", c.Name, err)
	}
	return nil
}

// Extract fills p from the loaded store; len(p.Bytes) bytes are recovered.
func (c *Container) Extract(p *payload.Payload) error {
	buf, pos, err := c.store()
	if err != nil {
		return err
	}

	if err := lsb.Extract(buf, pos, p.Bytes); err != nil {
		return fmt.Errorf("%s: %w", c.Name, err)
	}
	return nil
}

// WriteTo writes the container to w: the header copied verbatim from the
// source, the (possibly modified) store, then any bytes following the data
// region, also copied verbatim.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	buf, _, err := c.store()
	if err != nil {
		return 0, err
	}

	var total int64

	if _, err := c.src.Seek(0, io.SeekStart); err != nil {
		return total, types.IOError("seek "+c.Name, err)
	}
	n, err := io.CopyN(w, c.src, c.DataOffset())
	total += n
	if err != nil {
		return total, types.IOError("copy header of "+c.Name, err)
	}

	m, err := w.Write(buf)
	total += int64(m)
	if err != nil {
		return total, types.IOError("write data of "+c.Name, err)
	}

	end := c.DataOffset() + c.DataSize()
	if c.srcLen > end {
		if _, err := c.src.Seek(end, io.SeekStart); err != nil {
			return total, types.IOError("seek "+c.Name, err)
		}
		n, err := io.CopyN(w, c.src, c.srcLen-end)
		total += n
		if err != nil {
			return total, types.IOError("copy trailer of "+c.Name, err)
		}
	}

	return total, nil
}

// Release drops the format's store. The source is left open.
func (c *Container) Release() {
	switch c.Type {
	case types.Bitmap:
		c.Bitmap.Release()
	case types.Wav:
		c.Wav.Release()
	}
}
