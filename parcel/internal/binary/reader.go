package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShort is returned when a read runs past the end of the data.
var ErrShort = errors.New("read past end of data")

// Reader reads fixed-width little-endian words with position tracking.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// ReadBytes reads exactly n bytes. The result aliases the underlying data.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, r.wrapError(fmt.Errorf("%w: need %d bytes, have %d", ErrShort, n, r.Remaining()))
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadPadded reads n bytes and skips the padding up to the next word boundary.
func (r *Reader) ReadPadded(n int) ([]byte, error) {
	b, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	if _, err := r.ReadBytes(Pad(n)); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadU32LE reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32LE() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadU64LE reads a little-endian uint64 (fixed 8 bytes).
func (r *Reader) ReadU64LE() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

func (r *Reader) wrapError(err error) error {
	return fmt.Errorf("at offset %d: %w", r.pos, err)
}

// Pad returns the number of zero bytes that follow n bytes of payload.
func Pad(n int) int {
	return (4 - n%4) % 4
}
