// Package payload holds the bytes being hidden in, or recovered from, a
// container.
package payload

import (
	"bytes"
	"fmt"
	"io"

	"github.com/drgolem/lsbstego/pkg/types"
)

// MaxSize bounds the payload buffer allocation.
const MaxSize = 1 << 30

// Payload is a named, owned byte buffer.
type Payload struct {
	Name  string
	Bytes []byte
}

// Size returns the payload length in bytes.
func (p *Payload) Size() int {
	return len(p.Bytes)
}

// Read loads the whole of r as a payload called name.
func Read(r io.Reader, name string) (*Payload, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(r, MaxSize+1)); err != nil {
		return nil, types.IOError("read payload "+name, err)
	}
	if buf.Len() > MaxSize {
		return nil, fmt.Errorf("%w: payload %s exceeds %d bytes", types.ErrAllocation, name, MaxSize)
	}

	return &Payload{Name: name, Bytes: buf.Bytes()}, nil
}

// New allocates a zeroed payload of size bytes, to be filled by extraction.
func New(name string, size int) (*Payload, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: payload size must be positive, got %d", types.ErrCapacity, size)
	}
	if size > MaxSize {
		return nil, fmt.Errorf("%w: payload size %d exceeds %d bytes", types.ErrAllocation, size, MaxSize)
	}

	return &Payload{Name: name, Bytes: make([]byte, size)}, nil
}

// WriteTo writes the payload bytes to w.
func (p *Payload) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.Bytes)
	if err != nil {
		return int64(n), types.IOError("write payload "+p.Name, err)
	}
	return int64(n), nil
}

// Release drops the payload buffer.
func (p *Payload) Release() {
	p.Bytes = nil
}
