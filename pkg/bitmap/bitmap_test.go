package bitmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"slices"
	"testing"

	"github.com/drgolem/lsbstego/pkg/lsb"
	"github.com/drgolem/lsbstego/pkg/types"
)

// buildBMP returns a BITMAPINFOHEADER bitmap whose pixel bytes are
// fill(row, col) and whose pad bytes are 0xEE.
func buildBMP(width, height int32, depth uint16, fill func(row, col int) byte) []byte {
	const offset = 54
	rows := int(height)
	if rows < 0 {
		rows = -rows
	}
	natural := int(width) * int(depth) / 8
	rowLen := natural + Padding(int(width), int(depth))
	size := offset + rows*rowLen

	b := make([]byte, size)
	copy(b, "BM")
	binary.LittleEndian.PutUint32(b[0x02:], uint32(size))
	binary.LittleEndian.PutUint32(b[0x0A:], offset)
	binary.LittleEndian.PutUint32(b[0x0E:], 40)
	binary.LittleEndian.PutUint32(b[0x12:], uint32(width))
	binary.LittleEndian.PutUint32(b[0x16:], uint32(height))
	binary.LittleEndian.PutUint16(b[0x1A:], 1)
	binary.LittleEndian.PutUint16(b[0x1C:], depth)

	for r := 0; r < rows; r++ {
		for c := 0; c < rowLen; c++ {
			v := byte(0xEE)
			if c < natural {
				v = fill(r, c)
			}
			b[offset+r*rowLen+c] = v
		}
	}
	return b
}

func TestPadding(t *testing.T) {
	tests := []struct {
		width, depth int
		want         int
	}{
		{100, 24, 0},
		{1, 24, 1},
		{2, 24, 2},
		{3, 24, 3},
		{4, 24, 0},
		{5, 24, 1},
		{33, 24, 1},
		{1, 8, 3},
		{3, 16, 2},
		{7, 32, 0},
		{640, 24, 0},
	}

	for _, tt := range tests {
		if got := Padding(tt.width, tt.depth); got != tt.want {
			t.Errorf("Padding(%d, %d): got %d, want %d", tt.width, tt.depth, got, tt.want)
		}
	}
}

func TestPaddingLaw(t *testing.T) {
	for _, depth := range []int{8, 16, 24, 32} {
		for width := 1; width <= 1024; width++ {
			pad := Padding(width, depth)
			if pad < 0 || pad > 3 {
				t.Fatalf("Padding(%d, %d) = %d, out of [0,3]", width, depth, pad)
			}
			if (width*depth/8+pad)%4 != 0 {
				t.Fatalf("Padding(%d, %d) = %d does not align row to 4 bytes", width, depth, pad)
			}
		}
	}
}

func TestParseHeader(t *testing.T) {
	data := buildBMP(33, 7, 24, func(r, c int) byte { return byte(r + c) })

	h, err := ParseHeader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}

	if h.FileSize != uint32(len(data)) {
		t.Errorf("FileSize: got %d, want %d", h.FileSize, len(data))
	}
	if h.DataOffset != 54 {
		t.Errorf("DataOffset: got %d, want 54", h.DataOffset)
	}
	if h.Width != 33 || h.Height != 7 {
		t.Errorf("geometry: got %dx%d, want 33x7", h.Width, h.Height)
	}
	if h.Depth != 24 {
		t.Errorf("Depth: got %d, want 24", h.Depth)
	}
}

func TestParseHeaderErrors(t *testing.T) {
	valid := buildBMP(4, 4, 24, func(r, c int) byte { return 0 })

	badMagic := slices.Clone(valid)
	copy(badMagic, "MB")

	negWidth := slices.Clone(valid)
	binary.LittleEndian.PutUint32(negWidth[0x12:], uint32(0xFFFFFFF0))

	tests := []struct {
		name string
		data []byte
	}{
		{"bad magic", badMagic},
		{"truncated", valid[:20]},
		{"empty", nil},
		{"negative width", negWidth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(bytes.NewReader(tt.data))
			if !errors.Is(err, types.ErrFormat) {
				t.Errorf("expected ErrFormat, got %v", err)
			}
		})
	}
}

func TestTopDownHeight(t *testing.T) {
	data := buildBMP(10, -6, 24, func(r, c int) byte { return 1 })

	h, err := ParseHeader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	if h.Rows() != 6 {
		t.Errorf("Rows: got %d, want 6", h.Rows())
	}

	img := New(h)
	if _, err := img.Load(bytes.NewReader(data)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(img.Pixels()) != 6*32 {
		t.Errorf("store size: got %d, want %d", len(img.Pixels()), 6*32)
	}
}

func TestDerivedGeometry(t *testing.T) {
	img := New(Header{DataOffset: 54, Width: 33, Height: 7, Depth: 24})

	if img.PixelSize != 3 {
		t.Errorf("PixelSize: got %d, want 3", img.PixelSize)
	}
	if img.Pad != 1 {
		t.Errorf("Pad: got %d, want 1", img.Pad)
	}
	if img.RowLen != 100 {
		t.Errorf("RowLen: got %d, want 100", img.RowLen)
	}
	if img.Start != 54 {
		t.Errorf("Start: got %d, want 54", img.Start)
	}
	if img.StoreSize() != 700 {
		t.Errorf("StoreSize: got %d, want 700", img.StoreSize())
	}
	if img.UsableBytes() != 693 {
		t.Errorf("UsableBytes: got %d, want 693", img.UsableBytes())
	}
}

func TestValidate(t *testing.T) {
	// 100x100x24: 30000 usable bytes, no padding
	img := New(Header{DataOffset: 54, Width: 100, Height: 100, Depth: 24})
	if img.Pad != 0 {
		t.Fatalf("Pad: got %d, want 0", img.Pad)
	}
	if img.UsableBytes() != 30000 {
		t.Fatalf("UsableBytes: got %d, want 30000", img.UsableBytes())
	}

	tests := []struct {
		payload int
		wantErr error
	}{
		{1, nil},
		{3750, nil},
		{3751, types.ErrCapacity},
		{30000, types.ErrCapacity},
		{0, types.ErrCapacity},
	}

	for _, tt := range tests {
		err := img.Validate(tt.payload)
		if tt.wantErr == nil && err != nil {
			t.Errorf("Validate(%d): unexpected error %v", tt.payload, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("Validate(%d): got %v, want %v", tt.payload, err, tt.wantErr)
		}
	}

	if img.MaxPayload() != 3750 {
		t.Errorf("MaxPayload: got %d, want 3750", img.MaxPayload())
	}
}

func TestValidateDepth(t *testing.T) {
	for _, depth := range []uint16{1, 8, 16, 32} {
		img := New(Header{DataOffset: 54, Width: 100, Height: 100, Depth: depth})
		if err := img.Validate(1); !errors.Is(err, types.ErrUnsupportedEncoding) {
			t.Errorf("depth %d: expected ErrUnsupportedEncoding, got %v", depth, err)
		}
	}
}

func TestLoadTruncated(t *testing.T) {
	data := buildBMP(8, 8, 24, func(r, c int) byte { return 0 })

	h, err := ParseHeader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}

	img := New(h)
	_, err = img.Load(bytes.NewReader(data[:len(data)-10]))
	if !errors.Is(err, types.ErrFormat) {
		t.Errorf("expected ErrFormat for truncated pixels, got %v", err)
	}
}

func TestAllocTooLarge(t *testing.T) {
	img := New(Header{DataOffset: 54, Width: 1 << 30, Height: 1 << 30, Depth: 24})
	if err := img.Alloc(); !errors.Is(err, types.ErrAllocation) {
		t.Errorf("expected ErrAllocation, got %v", err)
	}
}

func TestEmbedPreservesPadding(t *testing.T) {
	data := buildBMP(33, 20, 24, func(r, c int) byte { return byte(r*7 + c) })

	h, err := ParseHeader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	img := New(h)
	if _, err := img.Load(bytes.NewReader(data)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	payload := bytes.Repeat([]byte{0xFF, 0x00, 0x5A}, int(img.MaxPayload()/3))
	if err := img.Validate(len(payload)); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if err := lsb.Embed(img.Pixels(), img.Positions(), payload); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	pixels := img.Pixels()
	for r := 0; r < img.Rows(); r++ {
		for c := img.RowLen - img.Pad; c < img.RowLen; c++ {
			if v := pixels[r*img.RowLen+c]; v != 0xEE {
				t.Fatalf("pad byte row %d col %d modified: %#x", r, c, v)
			}
		}
	}

	got := make([]byte, len(payload))
	if err := lsb.Extract(pixels, img.Positions(), got); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("payload mismatch after round trip")
	}
}

func TestRelease(t *testing.T) {
	img := New(Header{DataOffset: 54, Width: 4, Height: 4, Depth: 24})
	if err := img.Alloc(); err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	img.Release()
	if img.Pixels() != nil {
		t.Error("Pixels should be nil after Release")
	}
}
