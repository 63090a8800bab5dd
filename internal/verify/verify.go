// Package verify re-reads a written container with an independent decoder
// and checks that its format survived embedding.
package verify

import (
	"fmt"
	"os"

	"github.com/youpy/go-wav"
	"golang.org/x/image/bmp"

	"github.com/drgolem/lsbstego/pkg/container"
	"github.com/drgolem/lsbstego/pkg/types"
)

// File opens fileName and checks it against the source container's summary.
func File(fileName string, want container.Info) error {
	file, err := os.Open(fileName)
	if err != nil {
		return types.IOError("open "+fileName, err)
	}
	defer file.Close()

	switch want.Type {
	case types.Bitmap:
		return Bitmap(file, want)
	case types.Wav:
		return Wav(file, want)
	default:
		return fmt.Errorf("%w: cannot verify %s container", types.ErrFormat, want.Type)
	}
}

// Bitmap decodes the image header with golang.org/x/image/bmp and compares
// its dimensions.
func Bitmap(file *os.File, want container.Info) error {
	cfg, err := bmp.DecodeConfig(file)
	if err != nil {
		return fmt.Errorf("%w: output does not decode as BMP: %w", types.ErrFormat, err)
	}

	if cfg.Width != want.Width || cfg.Height != want.Height {
		return fmt.Errorf("%w: output is %dx%d, source was %dx%d",
			types.ErrFormat, cfg.Width, cfg.Height, want.Width, want.Height)
	}
	return nil
}

// Wav reads the format chunk with github.com/youpy/go-wav and compares the
// PCM parameters.
func Wav(file *os.File, want container.Info) error {
	reader := wav.NewReader(file)
	format, err := reader.Format()
	if err != nil {
		return fmt.Errorf("%w: output does not decode as WAV: %w", types.ErrFormat, err)
	}

	if format.AudioFormat != wav.AudioFormatPCM {
		return fmt.Errorf("%w: output WAV format %d is not PCM", types.ErrFormat, format.AudioFormat)
	}

	if int(format.NumChannels) != want.Channels ||
		int(format.SampleRate) != want.SampleRate ||
		int(format.BitsPerSample) != want.BitsPerSample {
		return fmt.Errorf("%w: output is %dHz:%dbit:%dch, source was %dHz:%dbit:%dch",
			types.ErrFormat,
			format.SampleRate, format.BitsPerSample, format.NumChannels,
			want.SampleRate, want.BitsPerSample, want.Channels)
	}
	return nil
}
