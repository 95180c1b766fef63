// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpl

import (
	"fmt"

	"github.com/emer/lpl/filter"
	"gonum.org/v1/gonum/mat"
)

// TrainSynapses applies one timestep of the LPL rule to the forward weights,
// given spk, the spikes this layer produced in the current timestep, and ref,
// the external input of the current timestep, which is required for the
// first layer and ignored by the others.
//
// For receiving unit j and sending unit i, and each batch row:
//
//	dw = lr^2 * alpha(eps(trace_j * f'(u_i))) * alpha(second_i) + lr * Delta * trace_j
//	second_i = -(s_i - s_i') + Lambda / (var_i + Xi) * (s_i - avg_i)
//
// where u, s, s', avg and var are the latest membrane, the latest and
// previous spikes, and the moving average and variance of the spikes of
// the sending units.  The external input has no membrane: DataMem is used.
// dw is averaged over the batch.  Only rows of excitatory receiving units
// learn, and the connectivity constraints are re-applied afterward.
// Only this layer and the previous layer are read.
func (ly *Layer) TrainSynapses(spk, ref *mat.Dense) error {
	if err := filter.CheckDims("spikes", spk, ly.BatchSize, ly.Size); err != nil {
		return fmt.Errorf("lpl: %s: %w", ly.Name(), err)
	}
	var sNow, sPrev, avg, vr, u *mat.Dense
	if pl := ly.PrevLayer(); pl != nil {
		sNow, sPrev = pl.SpikeAvg.Latest(), pl.SpikeAvg.Prev()
		avg, vr = pl.SpikeAvg.Value(), pl.SpikeVar.Value()
		u = pl.MemRec.Latest()
	} else {
		if ref == nil {
			return fmt.Errorf("lpl: %s: reference input: %w", ly.Name(), ErrNoInput)
		}
		if err := filter.CheckDims("reference input", ref, ly.BatchSize, ly.PrevSize); err != nil {
			return fmt.Errorf("lpl: %s: %w", ly.Name(), err)
		}
		var err error
		if avg, err = ly.InAvg.Apply(ref); err != nil {
			return err
		}
		if vr, err = ly.InVar.Apply(ref, avg); err != nil {
			return err
		}
		sNow, sPrev = ly.InAvg.Latest(), ly.InAvg.Prev()
		u = ly.dataMem
	}

	np := ly.PrevSize
	ly.forBatch(func(b int) {
		tr := ly.Trace.RawRowView(b)
		for j, sp := range spk.RawRowView(b) {
			tr[j] = ly.traceDecay*tr[j] + sp
		}
	})
	ly.Sig.PrimeDense(ly.fprime, u)
	ly.forBatch(func(b int) {
		tr := ly.Trace.RawRowView(b)
		fp := ly.fprime.RawRowView(b)
		row := ly.first.RawRowView(b)
		for j, tv := range tr {
			rw := row[j*np : (j+1)*np]
			for i, fv := range fp {
				rw[i] = tv * fv
			}
		}
		sn, sp, av, vv := sNow.RawRowView(b), sPrev.RawRowView(b), avg.RawRowView(b), vr.RawRowView(b)
		sec := ly.second.RawRowView(b)
		for i := range sec {
			sec[i] = -(sn[i] - sp[i]) + ly.Lambda/(vv[i]+ly.Xi)*(sn[i]-av[i])
		}
	})

	eps, err := ly.EpsFirst.Apply(ly.first)
	if err != nil {
		return err
	}
	first, err := ly.AlphaFirst.Apply(eps)
	if err != nil {
		return err
	}
	second, err := ly.AlphaSecond.Apply(ly.second)
	if err != nil {
		return err
	}

	lr2 := ly.LearningRate * ly.LearningRate
	dec := ly.LearningRate * ly.Delta
	ly.forBatch(func(b int) {
		tr := ly.Trace.RawRowView(b)
		sec := second.RawRowView(b)
		row := first.RawRowView(b)
		for j, tv := range tr {
			rw := row[j*np : (j+1)*np]
			for i := range rw {
				rw[i] = lr2*rw[i]*sec[i] + dec*tv
			}
		}
	})

	// batch reduction in fixed order
	dw := ly.dw.RawMatrix().Data
	for k := range dw {
		dw[k] = 0
	}
	for b := 0; b < ly.BatchSize; b++ {
		for k, v := range first.RawRowView(b) {
			dw[k] += v
		}
	}
	nb := float64(ly.BatchSize)
	wr := ly.Wts.RawMatrix()
	for j, exc := range ly.ExcMask {
		if !exc {
			continue
		}
		wrow := wr.Data[j*wr.Stride : j*wr.Stride+np]
		drow := dw[j*np : (j+1)*np]
		for i := range wrow {
			wrow[i] += drow[i] / nb
		}
	}
	ly.constrainWts()
	return nil
}
