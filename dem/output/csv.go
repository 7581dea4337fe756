// Package output implements the on-disk snapshot formats a façade can drain
// owner state into: a CSV format for human/Paraview consumption and a
// binary columnar format for fast re-ingestion. Neither format depends on
// the worker coordination types; both take plain column slices so they can
// be tested and used without running a simulation.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/sbel-gpu/dem-engine/dem"
)

// Columns selects which optional per-owner columns a CSV snapshot includes,
// beyond the mandatory x,y,z,r.
type Columns = dem.OutputFlags

// Snapshot is the plain-data column view an output writer consumes. It
// carries everything a writer might need; a given writer only reads the
// columns its Columns selection asks for.
type Snapshot struct {
	X, Y, Z, R []float64
	AbsV       []float64
	VX, VY, VZ []float64
	WX, WY, WZ []float64
	AX, AY, AZ []float64
	AlphaX, AlphaY, AlphaZ []float64
	Family                 []uint32
	MaterialID              []uint32

	// Suppressed, if non-nil, marks which rows (by index) should be
	// skipped entirely — owners in a suppressed family.
	Suppressed []bool
}

// WriteCSV writes s to w in the column order absv, v_x,y,z, w_x,y,z,
// a_x,y,z, alpha_x,y,z, family, material, gated by which flags are set,
// always preceded by the mandatory x,y,z,r header.
func WriteCSV(w io.Writer, s Snapshot, flags Columns) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"#x", "#y", "#z", "r"}
	if flags.Has(dem.OutputAbsV) {
		header = append(header, "absv")
	}
	if flags.Has(dem.OutputVel) {
		header = append(header, "v_x", "v_y", "v_z")
	}
	if flags.Has(dem.OutputAngVel) {
		header = append(header, "w_x", "w_y", "w_z")
	}
	if flags.Has(dem.OutputAcc) {
		header = append(header, "a_x", "a_y", "a_z")
	}
	if flags.Has(dem.OutputAngAcc) {
		header = append(header, "alpha_x", "alpha_y", "alpha_z")
	}
	if flags.Has(dem.OutputFamily) {
		header = append(header, "family")
	}
	if flags.Has(dem.OutputMaterial) {
		header = append(header, "material")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for i := range s.X {
		if s.Suppressed != nil && s.Suppressed[i] {
			continue
		}
		row := []string{f(s.X[i]), f(s.Y[i]), f(s.Z[i]), f(s.R[i])}
		if flags.Has(dem.OutputAbsV) {
			row = append(row, f(s.AbsV[i]))
		}
		if flags.Has(dem.OutputVel) {
			row = append(row, f(s.VX[i]), f(s.VY[i]), f(s.VZ[i]))
		}
		if flags.Has(dem.OutputAngVel) {
			row = append(row, f(s.WX[i]), f(s.WY[i]), f(s.WZ[i]))
		}
		if flags.Has(dem.OutputAcc) {
			row = append(row, f(s.AX[i]), f(s.AY[i]), f(s.AZ[i]))
		}
		if flags.Has(dem.OutputAngAcc) {
			row = append(row, f(s.AlphaX[i]), f(s.AlphaY[i]), f(s.AlphaZ[i]))
		}
		if flags.Has(dem.OutputFamily) {
			row = append(row, strconv.FormatUint(uint64(s.Family[i]), 10))
		}
		if flags.Has(dem.OutputMaterial) {
			row = append(row, strconv.FormatUint(uint64(s.MaterialID[i]), 10))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i, err)
		}
	}
	return nil
}

func f(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
