// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package datagen

import (
	"fmt"
	"io"
	"math"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
)

// LogPrec is the precision of values written to csv files
const LogPrec = 12

// Table returns the dataset as a table with one row per point, and
// columns sample, x, y.
func (ds *Dataset) Table() *etable.Table {
	dt := &etable.Table{}
	dt.SetMetaData("name", "Zenke2A")
	dt.SetMetaData("desc", "two-cluster sequential data")
	dt.SetMetaData("precision", fmt.Sprintf("%d", LogPrec))
	n, _ := ds.Vals.Dims()
	sch := etable.Schema{
		{Name: "sample", Type: etensor.INT64, CellShape: nil, DimNames: nil},
		{Name: "x", Type: etensor.FLOAT64, CellShape: nil, DimNames: nil},
		{Name: "y", Type: etensor.FLOAT64, CellShape: nil, DimNames: nil},
	}
	dt.SetFromSchema(sch, n)
	for row := 0; row < n; row++ {
		dt.SetCellFloat("sample", row, float64(row/ds.NTimesteps))
		dt.SetCellFloat("x", row, ds.Vals.At(row, 0))
		dt.SetCellFloat("y", row, ds.Vals.At(row, 1))
	}
	return dt
}

// WriteCSV writes the dataset in comma-separated form with a header row
func (ds *Dataset) WriteCSV(w io.Writer) {
	dt := ds.Table()
	dt.WriteCSVHeaders(w, etable.Comma)
	for row := 0; row < dt.Rows; row++ {
		dt.WriteCSVRow(w, row, etable.Comma)
	}
}

// ReadCSV reads a dataset written by WriteCSV.  All samples must have the
// same number of points, in order.
func ReadCSV(r io.Reader) (*Dataset, error) {
	dt := &etable.Table{}
	if err := dt.ReadCSV(r, etable.Comma); err != nil {
		return nil, err
	}
	n := dt.Rows
	if n == 0 {
		return nil, fmt.Errorf("datagen.ReadCSV: no rows: %w", ErrBatch)
	}
	ns := 0
	for row := 0; row < n; row++ {
		s := dt.CellFloat("sample", row)
		if math.IsNaN(s) {
			return nil, fmt.Errorf("datagen.ReadCSV: missing sample column: %w", ErrBatch)
		}
		if int(s)+1 > ns {
			ns = int(s) + 1
		}
	}
	if n%ns != 0 {
		return nil, fmt.Errorf("datagen.ReadCSV: %d rows for %d samples: %w", n, ns, ErrBatch)
	}
	ds := NewDataset(ns, n/ns)
	for row := 0; row < n; row++ {
		ds.Vals.Set(row, 0, dt.CellFloat("x", row))
		ds.Vals.Set(row, 1, dt.CellFloat("y", row))
	}
	return ds, nil
}
