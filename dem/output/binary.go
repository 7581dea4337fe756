package output

import (
	"encoding/binary"
	"fmt"
	"io"
)

// binaryMagic identifies a columnar snapshot file; binaryVersion lets a
// future reader detect a column-layout change.
const (
	binaryMagic   uint32 = 0x44454d31 // "DEM1"
	binaryVersion uint32 = 1
)

// WriteBinaryColumnar writes the mandatory x, y, z, r columns of s in a
// simple length-prefixed little-endian format: a fixed header followed by
// four float64 columns back to back. Suppressed rows are dropped the same
// way WriteCSV drops them, so both formats agree on row count for a given
// snapshot.
func WriteBinaryColumnar(w io.Writer, s Snapshot) error {
	n := 0
	for i := range s.X {
		if s.Suppressed == nil || !s.Suppressed[i] {
			n++
		}
	}

	if err := binary.Write(w, binary.LittleEndian, binaryMagic); err != nil {
		return fmt.Errorf("writing binary header magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, binaryVersion); err != nil {
		return fmt.Errorf("writing binary header version: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(n)); err != nil {
		return fmt.Errorf("writing binary row count: %w", err)
	}

	for _, col := range [][]float64{s.X, s.Y, s.Z, s.R} {
		for i, v := range col {
			if s.Suppressed != nil && s.Suppressed[i] {
				continue
			}
			if err := binary.Write(w, binary.LittleEndian, v); err != nil {
				return fmt.Errorf("writing binary column value: %w", err)
			}
		}
	}
	return nil
}

// ReadBinaryColumnar reads back a snapshot written by WriteBinaryColumnar,
// populating only X, Y, Z, R (the suppression mask is not round-tripped —
// suppressed rows were already dropped at write time).
func ReadBinaryColumnar(r io.Reader) (Snapshot, error) {
	var magic, version uint32
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return Snapshot{}, fmt.Errorf("reading binary header magic: %w", err)
	}
	if magic != binaryMagic {
		return Snapshot{}, fmt.Errorf("bad binary magic %x", magic)
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return Snapshot{}, fmt.Errorf("reading binary header version: %w", err)
	}
	if version != binaryVersion {
		return Snapshot{}, fmt.Errorf("unsupported binary version %d", version)
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return Snapshot{}, fmt.Errorf("reading binary row count: %w", err)
	}

	cols := make([][]float64, 4)
	for c := range cols {
		col := make([]float64, n)
		for i := range col {
			if err := binary.Read(r, binary.LittleEndian, &col[i]); err != nil {
				return Snapshot{}, fmt.Errorf("reading binary column %d value %d: %w", c, i, err)
			}
		}
		cols[c] = col
	}
	return Snapshot{X: cols[0], Y: cols[1], Z: cols[2], R: cols[3]}, nil
}
