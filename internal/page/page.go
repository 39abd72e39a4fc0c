// Package page implements the fixed-size column page: a 4096-byte buffer
// holding up to 512 sequential little-endian int64 values plus an
// in-memory write cursor.
package page

import (
	"encoding/binary"
	"errors"
)

const (
	// Size is the fixed on-disk and in-memory size of a page, in bytes.
	Size = 4096
	// IntSize is the width of a stored value, in bytes.
	IntSize = 8
	// MaxRecords is the number of int64 slots a page holds.
	MaxRecords = Size / IntSize
)

// ErrFull is returned by Write when the page has no remaining capacity.
var ErrFull = errors.New("page: full")

// ErrOutOfBounds is returned by Read when the index exceeds num_records.
var ErrOutOfBounds = errors.New("page: index out of bounds")

// ErrBadSize is returned by FromBytes when the input isn't exactly Size bytes.
var ErrBadSize = errors.New("page: invalid byte slice size")

// Page is a fixed 4096-byte buffer of int64 slots with a write cursor.
// The cursor (NumRecords) is not itself persisted in the page bytes; it is
// reconstructed by the table layer from its own metadata (see internal/table).
type Page struct {
	data       [Size]byte
	numRecords int
}

// New returns an empty page.
func New() *Page {
	return &Page{}
}

// NumRecords reports how many slots have been written.
func (p *Page) NumRecords() int { return p.numRecords }

// SetNumRecords forcibly realigns the write cursor. Used by the table layer
// when it re-opens a partially filled page (see Table.appendToColumn) or
// when allocating a fresh page, per spec §4.1 and §4.5.
func (p *Page) SetNumRecords(n int) {
	if n < 0 {
		n = 0
	}
	if n > MaxRecords {
		n = MaxRecords
	}
	p.numRecords = n
}

// HasCapacity reports whether another value can be written.
func (p *Page) HasCapacity() bool {
	return p.numRecords < MaxRecords
}

// Write appends v at the next slot, failing with ErrFull if the page has no
// capacity.
func (p *Page) Write(v int64) error {
	if !p.HasCapacity() {
		return ErrFull
	}
	offset := p.numRecords * IntSize
	binary.LittleEndian.PutUint64(p.data[offset:offset+IntSize], uint64(v))
	p.numRecords++
	return nil
}

// Read returns the value at slot i, failing with ErrOutOfBounds if
// i >= NumRecords().
func (p *Page) Read(i int) (int64, error) {
	if i < 0 || i >= p.numRecords {
		return 0, ErrOutOfBounds
	}
	offset := i * IntSize
	return int64(binary.LittleEndian.Uint64(p.data[offset : offset+IntSize])), nil
}

// ToBytes returns the page's raw 4096-byte representation.
func (p *Page) ToBytes() []byte {
	out := make([]byte, Size)
	copy(out, p.data[:])
	return out
}

// FromBytes reconstructs a page from exactly Size bytes. Per spec §4.1 and
// §9, the cursor cannot be recovered from the bytes alone (zero is a valid
// stored value), so NumRecords is conservatively set to MaxRecords; callers
// that know the true slot count (the table, from its persisted metadata)
// must call SetNumRecords afterward before appending.
func FromBytes(b []byte) (*Page, error) {
	if len(b) != Size {
		return nil, ErrBadSize
	}
	p := &Page{numRecords: MaxRecords}
	copy(p.data[:], b)
	return p, nil
}
