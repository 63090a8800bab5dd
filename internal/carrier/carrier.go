// Package carrier synthesizes noise containers for trying out the tool
// without sample media.
package carrier

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math/rand/v2"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"golang.org/x/image/bmp"
)

// BitmapOptions describes a generated 24-bit bitmap.
type BitmapOptions struct {
	Width  int
	Height int
	Seed   uint64
}

// WavOptions describes a generated PCM WAV file.
type WavOptions struct {
	Frames        int // samples per channel
	Channels      int
	SampleRate    int
	BitsPerSample int // 16, 24 or 32
	Seed          uint64
}

// WriteBitmap encodes an opaque noise image, which golang.org/x/image/bmp
// stores as a 24-bit bitmap.
func WriteBitmap(w io.Writer, opts BitmapOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("invalid bitmap size %dx%d", opts.Width, opts.Height)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, uint64(opts.Width)<<32|uint64(opts.Height)))
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	for y := 0; y < opts.Height; y++ {
		for x := 0; x < opts.Width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: byte(rng.IntN(256)),
				G: byte(rng.IntN(256)),
				B: byte(rng.IntN(256)),
				A: 0xFF,
			})
		}
	}

	if err := bmp.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode bitmap: %w", err)
	}
	return nil
}

// WriteWav encodes low-amplitude white noise as PCM using go-audio/wav.
// The encoder seeks back to patch chunk sizes, hence io.WriteSeeker.
func WriteWav(w io.WriteSeeker, opts WavOptions) error {
	switch opts.BitsPerSample {
	case 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bits per sample: %d (supported: 16, 24, 32)", opts.BitsPerSample)
	}
	if opts.Frames <= 0 || opts.Channels <= 0 || opts.SampleRate <= 0 {
		return fmt.Errorf("invalid wav parameters: frames=%d channels=%d rate=%d",
			opts.Frames, opts.Channels, opts.SampleRate)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, uint64(opts.Frames)))
	amplitude := 1 << (opts.BitsPerSample - 4)

	data := make([]int, opts.Frames*opts.Channels)
	for i := range data {
		data[i] = rng.IntN(2*amplitude) - amplitude
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: opts.Channels,
			SampleRate:  opts.SampleRate,
		},
		Data:           data,
		SourceBitDepth: opts.BitsPerSample,
	}

	const wavFormatPCM = 1
	enc := wav.NewEncoder(w, opts.SampleRate, opts.BitsPerSample, opts.Channels, wavFormatPCM)
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return nil
}
