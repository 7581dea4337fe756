package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryColumnar_RoundTrips(t *testing.T) {
	// GIVEN a snapshot of three owners
	s := Snapshot{
		X: []float64{1, 2, 3},
		Y: []float64{4, 5, 6},
		Z: []float64{7, 8, 9},
		R: []float64{0.1, 0.2, 0.3},
	}
	var buf bytes.Buffer

	// WHEN written and read back
	require.NoError(t, WriteBinaryColumnar(&buf, s))
	got, err := ReadBinaryColumnar(&buf)

	// THEN every column matches exactly
	require.NoError(t, err)
	assert.Equal(t, s.X, got.X)
	assert.Equal(t, s.Y, got.Y)
	assert.Equal(t, s.Z, got.Z)
	assert.Equal(t, s.R, got.R)
}

func TestBinaryColumnar_SkipsSuppressedRows(t *testing.T) {
	// GIVEN a snapshot with the middle owner suppressed
	s := Snapshot{
		X: []float64{1, 2, 3}, Y: []float64{0, 0, 0}, Z: []float64{0, 0, 0}, R: []float64{1, 1, 1},
		Suppressed: []bool{false, true, false},
	}
	var buf bytes.Buffer

	// WHEN written and read back
	require.NoError(t, WriteBinaryColumnar(&buf, s))
	got, err := ReadBinaryColumnar(&buf)

	// THEN only the two non-suppressed rows survive
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, got.X)
}

func TestReadBinaryColumnar_RejectsBadMagic(t *testing.T) {
	// GIVEN a buffer that doesn't start with the expected magic
	buf := bytes.NewBufferString("not a dem file")

	// WHEN read
	_, err := ReadBinaryColumnar(buf)

	// THEN it errors rather than misinterpreting the bytes
	assert.Error(t, err)
}
