// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpl

import (
	"fmt"

	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
	"gonum.org/v1/gonum/mat"
)

// UnitVars are the names of the per-unit variables available in UnitVals
var UnitVars = []string{"Spike", "Mem", "Thr", "Adapt", "Trace", "SpikeAvg", "SpikeVar"}

// unitVar returns the state matrix of given variable name
func (ly *Layer) unitVar(varNm string) (*mat.Dense, error) {
	switch varNm {
	case "Spike":
		return ly.Spike, nil
	case "Mem":
		return ly.Mem, nil
	case "Thr":
		return ly.Thr, nil
	case "Adapt":
		return ly.Adapt, nil
	case "Trace":
		return ly.Trace, nil
	case "SpikeAvg":
		return ly.SpikeAvg.Value(), nil
	case "SpikeVar":
		return ly.SpikeVar.Value(), nil
	}
	return nil, fmt.Errorf("lpl: unit variable named %q not found", varNm)
}

// UnitVals returns the values of given variable for each batch row and
// unit, as a Batch x Unit tensor.
func (ly *Layer) UnitVals(varNm string) (*etensor.Float64, error) {
	tsr := etensor.NewFloat64([]int{ly.BatchSize, ly.Size}, nil, []string{"Batch", "Unit"})
	if err := ly.UnitValsTensor(tsr, varNm); err != nil {
		return nil, err
	}
	return tsr, nil
}

// UnitValsTensor sets tsr to the values of given variable for each batch
// row and unit, reshaping it to Batch x Unit.
func (ly *Layer) UnitValsTensor(tsr etensor.Tensor, varNm string) error {
	if tsr == nil {
		return fmt.Errorf("lpl.UnitValsTensor: Tensor is nil")
	}
	vm, err := ly.unitVar(varNm)
	if err != nil {
		return err
	}
	tsr.SetShape([]int{ly.BatchSize, ly.Size}, nil, []string{"Batch", "Unit"})
	for b := 0; b < ly.BatchSize; b++ {
		for i, v := range vm.RawRowView(b) {
			tsr.SetFloat1D(b*ly.Size+i, v)
		}
	}
	return nil
}

// WtsTensor sets tsr to the forward weights, reshaping it to Recv x Send.
func (ly *Layer) WtsTensor(tsr etensor.Tensor) error {
	if tsr == nil {
		return fmt.Errorf("lpl.WtsTensor: Tensor is nil")
	}
	tsr.SetShape([]int{ly.Size, ly.PrevSize}, nil, []string{"Recv", "Send"})
	for ri := 0; ri < ly.Size; ri++ {
		for si := 0; si < ly.PrevSize; si++ {
			tsr.SetFloat1D(ri*ly.PrevSize+si, ly.Wts.At(ri, si))
		}
	}
	return nil
}

// LayerStats are summary statistics of a layer
type LayerStats struct {
	SpikeAvg minmax.AvgMax32 `desc:"average and max of the spike moving averages, over batch rows and units"`
	Wt       minmax.AvgMax32 `desc:"average and max of the weights of the connections present"`
}

// Stats computes the current summary statistics
func (ly *Layer) Stats() LayerStats {
	var st LayerStats
	st.SpikeAvg.Init()
	for i, v := range ly.SpikeAvg.Value().RawMatrix().Data {
		st.SpikeAvg.UpdateVal(float32(v), i)
	}
	st.SpikeAvg.CalcAvg()
	st.Wt.Init()
	for ri := 0; ri < ly.Size; ri++ {
		for si := 0; si < ly.PrevSize; si++ {
			if ly.SparseMask.IsOn(ri, si) {
				st.Wt.UpdateVal(float32(ly.Wts.At(ri, si)), ri*ly.PrevSize+si)
			}
		}
	}
	st.Wt.CalcAvg()
	return st
}
