package pcm

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/drgolem/lsbstego/pkg/types"
)

// FindTag scans r for the 4-byte tag, starting at the current position.
// Candidates are compared one byte apart: on a mismatch the scan moves one
// byte past the start of the previous candidate, so tags are found at any
// alignment. On success r is positioned just after the tag and its offset is
// returned.
//
// The scan does not use chunk sizes to skip over chunk bodies, so a tag
// sequence occurring inside an unrelated chunk's data is matched as well.
// Each call scans forward from the current position and never rescans from
// the start of the file, so tags are matched in file order.
//
// Returns an error wrapping types.ErrFormat if the tag is not found before
// end of file.
func FindTag(r io.ReadSeeker, tag string) (int64, error) {
	if len(tag) != 4 {
		return 0, fmt.Errorf("invalid RIFF tag %q: must be 4 bytes", tag)
	}

	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, types.IOError("seek", err)
	}

	br := bufio.NewReader(r)
	var window [4]byte
	filled := 0
	pos := start

	for {
		c, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, fmt.Errorf("%w: could not find %q tag", types.ErrFormat, tag)
			}
			return 0, types.IOError(fmt.Sprintf("scan for %q", tag), err)
		}
		pos++

		if filled < 4 {
			window[filled] = c
			filled++
		} else {
			copy(window[:], window[1:])
			window[3] = c
		}

		if filled == 4 && string(window[:]) == tag {
			// bufio may have read ahead; put r right after the tag
			if _, err := r.Seek(pos, io.SeekStart); err != nil {
				return 0, types.IOError("seek", err)
			}
			return pos - 4, nil
		}
	}
}
