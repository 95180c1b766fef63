// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpl

import (
	"fmt"
	"math"

	"github.com/emer/lpl/conn"
	"github.com/emer/lpl/filter"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MaxRetainedMems is the number of most recent membrane values a layer keeps
const MaxRetainedMems = 2

// Layer is one layer of LIF units with its forward weights from the
// previous layer (or the external input), and all the running state the
// LPL rule needs.  All per-unit state is BatchSize x Size.
type Layer struct {
	LayerSettings
	Index int      `desc:"index of this layer in the network"`
	Net   *Network `view:"-" json:"-" desc:"network that owns this layer -- neighbors are reached by index"`

	Wts        *mat.Dense `desc:"forward weights, Size x PrevSize, receiver-major"`
	ExcMask    []bool     `desc:"excitatory (true) / inhibitory (false) label of each unit, fixed at build"`
	SendExc    []bool     `desc:"labels of the sending units: all excitatory for external input"`
	SparseMask *conn.Mask `desc:"forward connections present -- absent weights are held at 0"`

	Mem   *mat.Dense `desc:"membrane potential"`
	Thr   *mat.Dense `desc:"adaptive firing threshold"`
	Adapt *mat.Dense `desc:"threshold adaptation"`
	Spike *mat.Dense `desc:"spikes (0 or 1) of the last timestep"`
	Trace *mat.Dense `desc:"postsynaptic spike trace with time constant TauStdp"`

	MemRec   *filter.History               `desc:"most recent membrane values"`
	SpikeAvg *filter.SpikeMovingAverage    `desc:"moving average of the spikes, with the last two raw spike values"`
	SpikeVar *filter.VarianceMovingAverage `desc:"moving variance of the spikes"`
	InAvg    *filter.SpikeMovingAverage    `desc:"first layer only: moving average of the external input"`
	InVar    *filter.VarianceMovingAverage `desc:"first layer only: moving variance of the external input"`

	AlphaFirst  *filter.TemporalFilter `desc:"alpha filter on the eligibility term, Batch x (Size * PrevSize)"`
	EpsFirst    *filter.TemporalFilter `desc:"epsilon filter on the eligibility term, Batch x (Size * PrevSize)"`
	AlphaSecond *filter.TemporalFilter `desc:"alpha filter on the presynaptic term, Batch x PrevSize"`

	traceDecay float64
	dataMem    *mat.Dense
	pre        *mat.Dense
	cur        *mat.Dense
	fprime     *mat.Dense
	first      *mat.Dense
	second     *mat.Dense
	dw         *mat.Dense
}

// newLayer returns an unbuilt layer for the given settings
func newLayer(ls *LayerSettings, net *Network) *Layer {
	ly := &Layer{LayerSettings: *ls, Index: ls.LayerID, Net: net}
	return ly
}

// Name returns the name of the layer, used in weights files and logs
func (ly *Layer) Name() string {
	return fmt.Sprintf("Layer%d", ly.Index)
}

// PrevLayer returns the layer sending to this one, nil for the first layer
func (ly *Layer) PrevLayer() *Layer {
	if ly.Net == nil || ly.Index == 0 {
		return nil
	}
	return ly.Net.Layers[ly.Index-1]
}

// NextLayer returns the layer this one sends to, nil for the last layer
func (ly *Layer) NextLayer() *Layer {
	if ly.Net == nil || ly.Index >= len(ly.Net.Layers)-1 {
		return nil
	}
	return ly.Net.Layers[ly.Index+1]
}

// build draws the sparsity mask and initial weights from rng, given the
// labels of the sending units, and allocates all state.  ExcMask must
// already be set.
func (ly *Layer) build(rng *rand.Rand, sendExc []bool) {
	nb, nn, np := ly.BatchSize, ly.Size, ly.PrevSize
	ly.SendExc = sendExc
	ly.SparseMask = ly.Conn.SparsityMask(rng, sendExc, ly.ExcMask)
	ly.Wts = mat.NewDense(nn, np, nil)
	ly.initWts(rng)

	ly.Mem = mat.NewDense(nb, nn, nil)
	ly.Thr = mat.NewDense(nb, nn, nil)
	ly.Adapt = mat.NewDense(nb, nn, nil)
	ly.Spike = mat.NewDense(nb, nn, nil)
	ly.Trace = mat.NewDense(nb, nn, nil)
	ly.MemRec = filter.NewHistory(MaxRetainedMems)
	ly.SpikeAvg = filter.NewSpikeMovingAverage(ly.Steps(ly.TauMean), nb, nn)
	ly.SpikeVar = filter.NewVarianceMovingAverage(ly.Steps(ly.TauVar), nb, nn)
	if ly.Index == 0 {
		ly.InAvg = filter.NewSpikeMovingAverage(ly.Steps(ly.TauMean), nb, np)
		ly.InVar = filter.NewVarianceMovingAverage(ly.Steps(ly.TauVar), nb, np)
		ly.dataMem = mat.NewDense(nb, np, nil)
		dm := ly.dataMem.RawMatrix().Data
		for i := range dm {
			dm[i] = ly.DataMem
		}
	}
	ly.AlphaFirst = filter.NewTemporalFilter(ly.Steps(ly.TauRiseAlpha), ly.Steps(ly.TauFallAlpha))
	ly.EpsFirst = filter.NewTemporalFilter(ly.Steps(ly.TauRiseEpsilon), ly.Steps(ly.TauFallEpsilon))
	ly.AlphaSecond = filter.NewTemporalFilter(ly.Steps(ly.TauRiseAlpha), ly.Steps(ly.TauFallAlpha))
	ly.traceDecay = math.Exp(-ly.Dt / ly.TauStdp)

	ly.pre = mat.NewDense(nb, np, nil)
	ly.cur = mat.NewDense(nb, nn, nil)
	ly.fprime = mat.NewDense(nb, np, nil)
	ly.first = mat.NewDense(nb, nn*np, nil)
	ly.second = mat.NewDense(nb, np, nil)
	ly.dw = mat.NewDense(nn, np, nil)
	ly.ResetState()
}

// initWts draws weights uniformly in +/- 1/sqrt(PrevSize), then applies
// the connectivity constraints.  Under DaleLaw the magnitude is kept and
// the sign is that of the sending unit.
func (ly *Layer) initWts(rng *rand.Rand) {
	lim := 1 / math.Sqrt(float64(ly.PrevSize))
	ud := distuv.Uniform{Min: -lim, Max: lim, Src: rng}
	raw := ly.Wts.RawMatrix()
	for ri := 0; ri < raw.Rows; ri++ {
		row := raw.Data[ri*raw.Stride : ri*raw.Stride+raw.Cols]
		for si := range row {
			wt := ud.Rand()
			if ly.DaleLaw {
				wt = math.Abs(wt)
				if !ly.SendExc[si] {
					wt = -wt
				}
			}
			row[si] = wt
		}
	}
	ly.constrainWts()
}

// constrainWts zeros absent connections and, under DaleLaw, clamps each
// weight to the sign of its sending unit.
func (ly *Layer) constrainWts() {
	ly.SparseMask.Apply(ly.Wts)
	if !ly.DaleLaw {
		return
	}
	raw := ly.Wts.RawMatrix()
	for ri := 0; ri < raw.Rows; ri++ {
		row := raw.Data[ri*raw.Stride : ri*raw.Stride+raw.Cols]
		for si, wt := range row {
			if ly.SendExc[si] {
				if wt < 0 {
					row[si] = 0
				}
			} else if wt > 0 {
				row[si] = 0
			}
		}
	}
}

// ResetState returns all running state to rest, keeping the weights and
// connectivity.
func (ly *Layer) ResetState() {
	for b := 0; b < ly.BatchSize; b++ {
		ly.LIF.InitState(ly.Mem.RawRowView(b), ly.Thr.RawRowView(b), ly.Adapt.RawRowView(b), ly.Spike.RawRowView(b))
	}
	ly.Trace.Zero()
	ly.MemRec.Fill(ly.BatchSize, ly.Size)
	ly.SpikeAvg.Reset()
	ly.SpikeVar.Reset()
	if ly.InAvg != nil {
		ly.InAvg.Reset()
		ly.InVar.Reset()
	}
	ly.AlphaFirst.Reset()
	ly.EpsFirst.Reset()
	ly.AlphaSecond.Reset()
}

// Forward integrates one timestep of the layer and returns copies of the
// new spikes and membrane potentials.  The first layer takes the external
// input, BatchSize x PrevSize, and the others must be given nil: they read
// the latest spikes of the previous layer, which must already have been
// run this timestep.  Forward never changes the weights.
func (ly *Layer) Forward(input *mat.Dense) (spk, mem *mat.Dense, err error) {
	if err := ly.forward(input); err != nil {
		return nil, nil, err
	}
	return mat.DenseCopyOf(ly.Spike), mat.DenseCopyOf(ly.Mem), nil
}

func (ly *Layer) forward(input *mat.Dense) error {
	if err := ly.loadPresyn(input); err != nil {
		return err
	}
	ly.cur.Mul(ly.pre, ly.Wts.T())
	ly.forBatch(func(b int) {
		ly.LIF.Step(ly.cur.RawRowView(b), ly.Mem.RawRowView(b), ly.Thr.RawRowView(b), ly.Adapt.RawRowView(b), ly.Spike.RawRowView(b))
	})
	if err := ly.MemRec.Push(ly.Mem); err != nil {
		return err
	}
	avg, err := ly.SpikeAvg.Apply(ly.Spike)
	if err != nil {
		return err
	}
	_, err = ly.SpikeVar.Apply(ly.Spike, avg)
	return err
}

// loadPresyn copies the presynaptic activity of this timestep into pre
func (ly *Layer) loadPresyn(input *mat.Dense) error {
	if ly.Index > 0 {
		if input != nil {
			return fmt.Errorf("lpl: %s: %w", ly.Name(), ErrUnexpectedInput)
		}
		ly.pre.Copy(ly.PrevLayer().Spike)
		return nil
	}
	if input == nil {
		return fmt.Errorf("lpl: %s: %w", ly.Name(), ErrNoInput)
	}
	if err := filter.CheckDims("input", input, ly.BatchSize, ly.PrevSize); err != nil {
		return fmt.Errorf("lpl: %s: %w", ly.Name(), err)
	}
	ly.pre.Copy(input)
	return nil
}

// Spikes returns a copy of the spikes of the last timestep
func (ly *Layer) Spikes() *mat.Dense { return mat.DenseCopyOf(ly.Spike) }

// Membrane returns a copy of the current membrane potentials
func (ly *Layer) Membrane() *mat.Dense { return mat.DenseCopyOf(ly.Mem) }

// Weights returns a copy of the forward weights
func (ly *Layer) Weights() *mat.Dense { return mat.DenseCopyOf(ly.Wts) }

// ExcitatoryMask returns a copy of the excitatory labels of the units
func (ly *Layer) ExcitatoryMask() []bool {
	em := make([]bool, len(ly.ExcMask))
	copy(em, ly.ExcMask)
	return em
}
