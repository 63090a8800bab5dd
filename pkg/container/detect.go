package container

import (
	"errors"
	"fmt"
	"io"

	"github.com/drgolem/lsbstego/pkg/types"
)

// sniffLen is the number of leading bytes needed to tell formats apart
// ("RIFF" + size + "WAVE").
const sniffLen = 12

// Detect classifies a container by its magic bytes.
// Supports bitmaps ("BM") and WAV files ("RIFF" ... "WAVE").
//
// Detect consumes up to 12 bytes from r; callers that go on to parse the
// header must rewind r first.
func Detect(r io.Reader) (types.ContainerType, error) {
	var b [sniffLen]byte
	n, err := io.ReadFull(r, b[:])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return types.Unknown, types.IOError("read magic bytes", err)
	}

	switch {
	case n >= 2 && string(b[0:2]) == "BM":
		return types.Bitmap, nil
	case n == sniffLen && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WAVE":
		return types.Wav, nil
	default:
		return types.Unknown, fmt.Errorf("%w: unrecognized container (supported: 24-bit BMP, PCM WAV)", types.ErrFormat)
	}
}
