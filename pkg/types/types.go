package types

import "fmt"

// ContainerType identifies the carrier format detected from magic bytes.
type ContainerType int

const (
	// Unknown is returned alongside an error when detection fails
	Unknown ContainerType = iota
	// Bitmap is an uncompressed Windows BMP image
	Bitmap
	// Wav is a RIFF/WAVE file carrying PCM samples
	Wav
)

func (t ContainerType) String() string {
	switch t {
	case Bitmap:
		return "bitmap"
	case Wav:
		return "wav"
	default:
		return "unknown"
	}
}

// Mode selects whether a run hides a payload or recovers one.
// It is passed explicitly to every operation that needs it.
type Mode int

const (
	// Hide embeds a payload file into a container
	Hide Mode = iota + 1
	// Recover extracts a payload of known size from a container
	Recover
)

func (m Mode) String() string {
	switch m {
	case Hide:
		return "hide"
	case Recover:
		return "recover"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MinCapacityRatio is the minimum number of usable carrier units required
// per payload byte.
const MinCapacityRatio = 8
