package container

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/youpy/go-wav"
	"golang.org/x/image/bmp"

	"github.com/drgolem/lsbstego/pkg/payload"
	"github.com/drgolem/lsbstego/pkg/types"
)

func noiseBMP(t *testing.T, width, height int) []byte {
	t.Helper()

	rng := rand.New(rand.NewPCG(uint64(width), uint64(height)))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{byte(rng.IntN(256)), byte(rng.IntN(256)), byte(rng.IntN(256)), 0xFF})
		}
	}

	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		t.Fatalf("bmp.Encode failed: %v", err)
	}
	return buf.Bytes()
}

func noiseWAV(t *testing.T, samples uint32, channels, bits uint16) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := wav.NewWriter(&buf, samples, channels, 44100, bits)

	data := make([]byte, int(samples)*int(channels)*int(bits/8))
	rng := rand.New(rand.NewPCG(uint64(samples), uint64(bits)))
	for i := range data {
		data[i] = byte(rng.IntN(256))
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("wav write failed: %v", err)
	}
	return buf.Bytes()
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    types.ContainerType
		wantErr bool
	}{
		{"bitmap", []byte("BM\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"), types.Bitmap, false},
		{"short bitmap", []byte("BM"), types.Bitmap, false},
		{"wav", []byte("RIFF\x24\x00\x00\x00WAVE"), types.Wav, false},
		{"riff not wave", []byte("RIFF\x24\x00\x00\x00AVI "), types.Unknown, true},
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0d"), types.Unknown, true},
		{"empty", nil, types.Unknown, true},
		{"short riff", []byte("RIFF"), types.Unknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(bytes.NewReader(tt.data))
			if tt.wantErr {
				if !errors.Is(err, types.ErrFormat) {
					t.Errorf("expected ErrFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect: got %s, want %s", got, tt.want)
			}
		})
	}
}

func hide(t *testing.T, carrier []byte, secret []byte) []byte {
	t.Helper()

	c, err := Open(bytes.NewReader(carrier), "carrier")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Release()

	if err := c.Validate(len(secret)); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if _, err := c.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := c.Embed(&payload.Payload{Name: "secret", Bytes: secret}); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	var out bytes.Buffer
	n, err := c.WriteTo(&out)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if n != int64(out.Len()) {
		t.Errorf("WriteTo reported %d bytes, wrote %d", n, out.Len())
	}
	return out.Bytes()
}

func reveal(t *testing.T, carrier []byte, size int) []byte {
	t.Helper()

	c, err := Open(bytes.NewReader(carrier), "stego")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Release()

	if err := c.CheckRecoverable(size); err != nil {
		t.Fatalf("CheckRecoverable failed: %v", err)
	}
	if _, err := c.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	p, err := payload.New("recovered", size)
	if err != nil {
		t.Fatalf("payload.New failed: %v", err)
	}
	if err := c.Extract(p); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	return p.Bytes
}

func TestBitmapRoundTrip(t *testing.T) {
	// width 33 leaves one pad byte per row
	carrier := noiseBMP(t, 33, 40)
	secret := []byte(strings.Repeat("the quick brown fox ", 24))[:480]

	out := hide(t, carrier, secret)

	if len(out) != len(carrier) {
		t.Fatalf("output size: got %d, want %d", len(out), len(carrier))
	}
	if !bytes.Equal(out[:54], carrier[:54]) {
		t.Error("header bytes changed")
	}

	const rowLen = 100
	for row := 0; row < 40; row++ {
		pad := 54 + row*rowLen + 99
		if out[pad] != carrier[pad] {
			t.Fatalf("pad byte of row %d changed", row)
		}
	}

	for i := 54; i < len(out); i++ {
		if out[i]&^1 != carrier[i]&^1 {
			t.Fatalf("byte %d changed above the LSB", i)
		}
	}

	if got := reveal(t, out, len(secret)); !bytes.Equal(got, secret) {
		t.Error("recovered payload mismatch")
	}

	if _, err := bmp.Decode(bytes.NewReader(out)); err != nil {
		t.Errorf("output no longer decodes as BMP: %v", err)
	}
}

func TestWavRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		channels uint16
		bits     uint16
	}{
		{"mono 16-bit", 1, 16},
		{"stereo 16-bit", 2, 16},
		{"stereo 24-bit", 2, 24},
		{"mono 32-bit", 1, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carrier := noiseWAV(t, 2000, tt.channels, tt.bits)
			secret := bytes.Repeat([]byte{0xDE, 0xAD, 0xBE, 0xEF}, 50)

			out := hide(t, carrier, secret)

			if !bytes.Equal(out[:44], carrier[:44]) {
				t.Error("header bytes changed")
			}

			step := int(tt.bits / 8)
			for i := 44; i < len(out); i++ {
				if (i-44)%step != 0 && out[i] != carrier[i] {
					t.Fatalf("non-target byte %d changed", i)
				}
			}

			if got := reveal(t, out, len(secret)); !bytes.Equal(got, secret) {
				t.Error("recovered payload mismatch")
			}

			r := wav.NewReader(bytes.NewReader(out))
			f, err := r.Format()
			if err != nil {
				t.Fatalf("output no longer parses as WAV: %v", err)
			}
			if f.NumChannels != tt.channels || f.BitsPerSample != tt.bits {
				t.Errorf("format changed: %+v", f)
			}
		})
	}
}

func TestWavTrailerPreserved(t *testing.T) {
	carrier := noiseWAV(t, 1000, 1, 16)
	trailer := []byte("LIST\x0c\x00\x00\x00INFOISFT\x00\x00\x00\x00")
	carrier = append(carrier, trailer...)

	out := hide(t, carrier, []byte("hello"))

	if len(out) != len(carrier) {
		t.Fatalf("output size: got %d, want %d", len(out), len(carrier))
	}
	if !bytes.HasSuffix(out, trailer) {
		t.Error("trailing chunk not preserved")
	}
}

func TestValidateCapacity(t *testing.T) {
	carrier := noiseBMP(t, 100, 100)

	c, err := Open(bytes.NewReader(carrier), "carrier")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := c.Validate(3750); err != nil {
		t.Errorf("Validate(3750): unexpected error %v", err)
	}
	if err := c.Validate(3751); !errors.Is(err, types.ErrCapacity) {
		t.Errorf("Validate(3751): expected ErrCapacity, got %v", err)
	}
}

func TestCheckRecoverable(t *testing.T) {
	carrier := noiseWAV(t, 800, 1, 16)

	c, err := Open(bytes.NewReader(carrier), "carrier")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// 800 usable bytes: 100 recoverable bytes, but only 100/8 hideable ones
	if err := c.CheckRecoverable(100); err != nil {
		t.Errorf("CheckRecoverable(100): unexpected error %v", err)
	}
	if err := c.CheckRecoverable(101); !errors.Is(err, types.ErrCapacity) {
		t.Errorf("CheckRecoverable(101): expected ErrCapacity, got %v", err)
	}
	if err := c.CheckRecoverable(0); !errors.Is(err, types.ErrCapacity) {
		t.Errorf("CheckRecoverable(0): expected ErrCapacity, got %v", err)
	}
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open(bytes.NewReader([]byte("GIF89a....")), "image.gif")
	if !errors.Is(err, types.ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
	if types.ExitCode(err) != types.ExitFormat {
		t.Errorf("ExitCode: got %d, want %d", types.ExitCode(err), types.ExitFormat)
	}
}

func TestLoadTruncatedRegion(t *testing.T) {
	carrier := noiseWAV(t, 1000, 2, 16)

	c, err := Open(bytes.NewReader(carrier[:len(carrier)-100]), "short.wav")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := c.Load(); !errors.Is(err, types.ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
}

func TestEmbedBeforeLoad(t *testing.T) {
	c, err := Open(bytes.NewReader(noiseBMP(t, 8, 8)), "carrier")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := c.Embed(&payload.Payload{Name: "p", Bytes: []byte{1}}); err == nil {
		t.Error("expected error embedding into an unloaded container")
	}
}

func TestInfo(t *testing.T) {
	c, err := Open(bytes.NewReader(noiseWAV(t, 400, 2, 16)), "a.wav")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	info := c.Info()
	if info.Type != types.Wav {
		t.Errorf("Type: got %s, want wav", info.Type)
	}
	if info.Channels != 2 || info.BitsPerSample != 16 || info.SampleRate != 44100 {
		t.Errorf("format fields: %+v", info)
	}
	if info.TotalSamples != 800 {
		t.Errorf("TotalSamples: got %d, want 800", info.TotalSamples)
	}
	if info.MaxPayload != 100 {
		t.Errorf("MaxPayload: got %d, want 100", info.MaxPayload)
	}
	if info.DataOffset != 44 || info.DataSize != 1600 {
		t.Errorf("data region: offset %d size %d", info.DataOffset, info.DataSize)
	}
}
