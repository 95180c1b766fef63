// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpl

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/timer"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// BatchSource supplies the batches processed by ProcessOnline.  Each batch
// is a sequence of timesteps, each BatchSize x DataSize.
type BatchSource interface {
	// NumBatches returns the number of batches in one epoch
	NumBatches() int

	// Batch returns the sequence of inputs of batch i, in time order
	Batch(i int) ([]*mat.Dense, error)
}

// Network is an ordered sequence of layers, each receiving from the one
// before it, the first from the external input.
type Network struct {
	Nm       string                 `desc:"overall name of network -- helps discriminate if there are multiple"`
	Settings Settings               `desc:"settings the network was built from"`
	Layers   []*Layer               `desc:"layers, in processing order"`
	Time     *Time                  `desc:"timing state and counters"`
	MetaData map[string]string      `desc:"misc metadata, saved with the weights"`
	Logger   *slog.Logger           `view:"-" json:"-" desc:"logger for progress and stats"`
	FunTimes map[string]*timer.Time `view:"-" json:"-" desc:"timers for each major function (step of processing)"`
	StepFunc func(nt *Network)      `view:"-" json:"-" desc:"if set, called at the end of every ProcessTimestep, after the time counters advance"`
}

// NewNetwork validates the settings and builds a network from them.
// The excitatory labels of all layers are drawn first, then the
// connectivity and initial weights of each layer in order, all from one
// generator seeded with Settings.Seed.
func NewNetwork(s Settings) (*Network, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.LayerSizes = append([]int(nil), s.LayerSizes...)
	nt := &Network{Nm: "LPL", Settings: s, Logger: slog.Default()}
	nt.Time = NewTime()
	nt.Time.Dt = s.Dt
	nt.MetaData = make(map[string]string)
	nt.FunTimes = make(map[string]*timer.Time)

	nl := len(s.LayerSizes)
	nt.Layers = make([]*Layer, nl)
	for li := range nt.Layers {
		nt.Layers[li] = newLayer(s.LayerSettings(li), nt)
	}
	rng := rand.New(rand.NewSource(s.Seed))
	for _, ly := range nt.Layers {
		ly.ExcMask = ly.Conn.ExcitatoryMask(rng, ly.Size)
	}
	inExc := make([]bool, s.DataSize)
	for i := range inExc {
		inExc[i] = true
	}
	for _, ly := range nt.Layers {
		sendExc := inExc
		if pl := ly.PrevLayer(); pl != nil {
			sendExc = pl.ExcMask
		}
		ly.build(rng, sendExc)
	}
	nt.MetaData["Seed"] = fmt.Sprintf("%d", s.Seed)
	return nt, nil
}

// Name returns the name of the network
func (nt *Network) Name() string { return nt.Nm }

// LayerByName returns a layer by name, nil if not found
func (nt *Network) LayerByName(name string) *Layer {
	for _, ly := range nt.Layers {
		if ly.Name() == name {
			return ly
		}
	}
	return nil
}

// ProcessTimestep runs one timestep: Forward on every layer in order, the
// first on input (BatchSize x DataSize), then TrainSynapses on every layer
// in order with the spikes of this timestep.
func (nt *Network) ProcessTimestep(input *mat.Dense) error {
	nt.FunTimerStart("Forward")
	for _, ly := range nt.Layers {
		in := input
		if ly.Index > 0 {
			in = nil
		}
		if err := ly.forward(in); err != nil {
			nt.FunTimerStop("Forward")
			return err
		}
	}
	nt.FunTimerStop("Forward")
	nt.FunTimerStart("TrainSynapses")
	defer nt.FunTimerStop("TrainSynapses")
	for _, ly := range nt.Layers {
		if err := ly.TrainSynapses(ly.Spike, input); err != nil {
			return err
		}
	}
	nt.Time.StepInc()
	if nt.StepFunc != nil {
		nt.StepFunc(nt)
	}
	return nil
}

// ProcessSequence runs ProcessTimestep on each input of seq, in order.
func (nt *Network) ProcessSequence(seq []*mat.Dense) error {
	for ti, in := range seq {
		if err := nt.ProcessTimestep(in); err != nil {
			return fmt.Errorf("lpl: timestep %d: %w", ti, err)
		}
	}
	return nil
}

// ProcessOnline trains the network on all the batches of src, for
// Settings.Epochs epochs.  State carries over from one batch to the next
// unless Settings.ResetPerBatch is set.  Inputs are used as given: wrap
// src in a SpikeSource to binarize them.
func (nt *Network) ProcessOnline(src BatchSource) error {
	nb := src.NumBatches()
	for ep := 0; ep < nt.Settings.Epochs; ep++ {
		nt.Time.EpochStart(ep)
		for bi := 0; bi < nb; bi++ {
			seq, err := src.Batch(bi)
			if err != nil {
				return fmt.Errorf("lpl: epoch %d batch %d: %w", ep, bi, err)
			}
			if nt.Settings.ResetPerBatch {
				nt.ResetState()
			}
			nt.Time.BatchStart(bi)
			nt.Logger.Info("processing batch", "epoch", ep, "batch", bi, "timesteps", len(seq))
			if err := nt.ProcessSequence(seq); err != nil {
				return fmt.Errorf("lpl: epoch %d batch %d: %w", ep, bi, err)
			}
			nt.logStats()
		}
	}
	return nil
}

func (nt *Network) logStats() {
	if !nt.Logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for _, ly := range nt.Layers {
		st := ly.Stats()
		nt.Logger.Debug("layer stats", "layer", ly.Name(),
			"spike_avg", st.SpikeAvg.Avg, "spike_max", st.SpikeAvg.Max,
			"wt_avg", st.Wt.Avg, "wt_max", st.Wt.Max)
	}
}

// ResetState returns the running state of all layers to rest, keeping
// weights and connectivity.
func (nt *Network) ResetState() {
	for _, ly := range nt.Layers {
		ly.ResetState()
	}
}

// Reset returns all running state and the time counters to their initial
// values.
func (nt *Network) Reset() {
	nt.ResetState()
	nt.Time.Reset()
}

// LayerActivations returns copies of the latest spikes of each layer
func (nt *Network) LayerActivations() []*mat.Dense {
	acts := make([]*mat.Dense, len(nt.Layers))
	for li, ly := range nt.Layers {
		acts[li] = ly.Spikes()
	}
	return acts
}

// SizeReport returns a string reporting the size of each layer and
// synapse-level state, and the network overall.
func (nt *Network) SizeReport() string {
	var b strings.Builder
	neur := 0
	neurMem := 0
	syn := 0
	synMem := 0
	for _, ly := range nt.Layers {
		nn := ly.Size
		nmem := ly.unitBytes()
		neur += nn
		neurMem += nmem
		ns := ly.SparseMask.N()
		pmem := ly.synBytes()
		syn += ns
		synMem += pmem
		fmt.Fprintf(&b, "%14s:\t Neurons: %d\t NeurMem: %v \t Syns: %d\t SynMem: %v\n", ly.Name(), nn, (datasize.ByteSize)(nmem).HumanReadable(), ns, (datasize.ByteSize)(pmem).HumanReadable())
	}
	fmt.Fprintf(&b, "\n\n%14s:\t Neurons: %d\t NeurMem: %v \t Syns: %d \t SynMem: %v\n", nt.Nm, neur, (datasize.ByteSize)(neurMem).HumanReadable(), syn, (datasize.ByteSize)(synMem).HumanReadable())
	return b.String()
}

// unitBytes is the memory used by per-unit state
func (ly *Layer) unitBytes() int {
	nmat := 5 + MaxRetainedMems + 1 + 2 + 2 // state, mem history, avg, avg history, var
	nu := ly.BatchSize * ly.Size
	np := 0
	if ly.InAvg != nil {
		np = 6 * ly.BatchSize * ly.PrevSize
	}
	return 8 * (nmat*nu + np)
}

// synBytes is the memory used by per-synapse state
func (ly *Layer) synBytes() int {
	nw := ly.Size * ly.PrevSize
	// weights and dw, plus the rise and fall stages of the two eligibility
	// filters and their working copy, for every batch row
	return 8*(2*nw+5*ly.BatchSize*nw) + nw
}

// FunTimerStart starts function timer for given function name -- ensures creation of timer
func (nt *Network) FunTimerStart(fun string) {
	ft, ok := nt.FunTimes[fun]
	if !ok {
		ft = &timer.Time{}
		nt.FunTimes[fun] = ft
	}
	ft.Start()
}

// FunTimerStop stops function timer -- timer must already exist
func (nt *Network) FunTimerStop(fun string) {
	if ft, ok := nt.FunTimes[fun]; ok {
		ft.Stop()
	}
}

// TimerReport reports the amount of time spent in each function
func (nt *Network) TimerReport() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TimerReport: %v, NThreads: %v\n", nt.Nm, nt.Settings.NThreads)
	fmt.Fprintf(&b, "\tFunction Name\tTotal Secs\tPct\n")
	fnms := make([]string, 0, len(nt.FunTimes))
	for k := range nt.FunTimes {
		fnms = append(fnms, k)
	}
	sort.Strings(fnms)
	pcts := make([]float64, len(fnms))
	tot := 0.0
	for i, fn := range fnms {
		pcts[i] = nt.FunTimes[fn].TotalSecs()
		tot += pcts[i]
	}
	for i, fn := range fnms {
		pct := 0.0
		if tot > 0 {
			pct = 100 * (pcts[i] / tot)
		}
		fmt.Fprintf(&b, "\t%v \t%6.4g\t%6.4g\n", fn, pcts[i], pct)
	}
	fmt.Fprintf(&b, "\tTotal   \t%6.4g\n", tot)
	return b.String()
}
