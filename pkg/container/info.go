package container

import (
	"log/slog"

	"github.com/drgolem/lsbstego/pkg/types"
)

// Info summarizes a container's header and capacity.
type Info struct {
	Name       string
	Type       types.ContainerType
	FileSize   int64
	DataOffset int64
	DataSize   int64

	// Bitmap fields
	Width  int
	Height int
	Depth  int
	Pad    int
	RowLen int

	// WAV fields
	Channels      int
	SampleRate    int
	BitsPerSample int
	BlockAlign    int
	TotalSamples  int64

	UsableBytes int64 // carrier bytes able to hold one payload bit
	MaxPayload  int64 // largest payload that passes validation
}

// Info returns a summary of the container.
func (c *Container) Info() Info {
	info := Info{
		Name:        c.Name,
		Type:        c.Type,
		FileSize:    c.FileSize,
		DataOffset:  c.DataOffset(),
		DataSize:    c.DataSize(),
		UsableBytes: c.UsableBytes(),
		MaxPayload:  c.MaxPayload(),
	}

	switch c.Type {
	case types.Bitmap:
		b := c.Bitmap
		info.Width = int(b.Width)
		info.Height = b.Rows()
		info.Depth = int(b.Depth)
		info.Pad = b.Pad
		info.RowLen = b.RowLen
	case types.Wav:
		f := c.Wav.Format
		info.Channels = int(f.Channels)
		info.SampleRate = int(f.SampleRate)
		info.BitsPerSample = int(f.BitsPerSample)
		info.BlockAlign = int(f.BlockAlign)
		info.TotalSamples = c.Wav.TotalSamples
	}

	return info
}

// LogValue implements slog.LogValuer.
func (i Info) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("file", i.Name),
		slog.String("type", i.Type.String()),
		slog.Int64("file_size", i.FileSize),
		slog.Int64("data_offset", i.DataOffset),
	}

	switch i.Type {
	case types.Bitmap:
		attrs = append(attrs,
			slog.Int("width", i.Width),
			slog.Int("height", i.Height),
			slog.Int("depth", i.Depth),
			slog.Int("pad", i.Pad),
			slog.Int("row_len", i.RowLen))
	case types.Wav:
		attrs = append(attrs,
			slog.Int("channels", i.Channels),
			slog.Int("sample_rate", i.SampleRate),
			slog.Int("bits_per_sample", i.BitsPerSample),
			slog.Int64("total_samples", i.TotalSamples))
	}

	attrs = append(attrs, slog.Int64("max_payload", i.MaxPayload))
	return slog.GroupValue(attrs...)
}
