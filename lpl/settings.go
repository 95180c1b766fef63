// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpl

import (
	"fmt"

	"github.com/emer/lpl/conn"
	"github.com/emer/lpl/fsig"
	"github.com/emer/lpl/lif"
)

// Settings are the network-level parameters, from which the settings of
// each layer are derived.  Time constants are in units of Dt.
type Settings struct {
	LayerSizes   []int   `yaml:"layer_sizes" desc:"number of units in each layer, in order"`
	DataSize     int     `yaml:"data_size" def:"2" min:"1" desc:"number of input dimensions presented to the first layer"`
	BatchSize    int     `yaml:"batch_size" def:"5" min:"1" desc:"number of independent sequences processed in parallel"`
	LearningRate float64 `yaml:"learning_rate" def:"0.01" min:"0" desc:"learning rate -- the eligibility term is scaled by its square, the decay term linearly"`
	Epochs       int     `yaml:"epochs" def:"1" min:"1" desc:"number of passes over the batches in ProcessOnline"`
	Dt           float64 `yaml:"dt" def:"1" min:"0" desc:"simulation timestep"`

	PctInhib         float64 `yaml:"percentage_inhibitory" def:"0" min:"0" max:"100" desc:"percentage of units in each layer that are inhibitory"`
	ExcToInhibC      float64 `yaml:"exc_to_inhib_conn_c" def:"0.5" min:"0" max:"1" desc:"peak probability of an excitatory to inhibitory connection"`
	ExcToInhibSigma2 float64 `yaml:"exc_to_inhib_conn_sigma_squared" def:"10" min:"0" desc:"squared spread of the excitatory to inhibitory connection probability"`
	Sparsity         float64 `yaml:"layer_sparsity" def:"0" min:"0" max:"1" desc:"fraction of forward connections that are absent"`
	DaleLaw          bool    `yaml:"dale_law" def:"true" desc:"constrain the sign of each weight to the excitatory / inhibitory label of its sending unit"`

	DecayBeta float64        `yaml:"decay_beta" def:"0.9" min:"0" max:"1" desc:"membrane decay factor per timestep"`
	ThrScale  float64        `yaml:"threshold_scale" def:"1" min:"0" desc:"baseline firing threshold"`
	ThrDecay  float64        `yaml:"threshold_decay" def:"0" min:"0" max:"1" desc:"decay factor of threshold adaptation"`
	Reset     lif.ResetModes `yaml:"reset_mechanism" desc:"how the membrane is reset after a spike"`

	TauMean        float64 `yaml:"tau_mean" def:"600" min:"0" desc:"time constant of the spike moving averages"`
	TauVar         float64 `yaml:"tau_var" def:"600" min:"0" desc:"time constant of the spike variance estimates"`
	TauStdp        float64 `yaml:"tau_stdp" def:"0.1" min:"0" desc:"time constant of the postsynaptic spike trace"`
	TauRiseAlpha   float64 `yaml:"tau_rise_alpha" def:"2" min:"0" desc:"rise time constant of the alpha filters"`
	TauFallAlpha   float64 `yaml:"tau_fall_alpha" def:"10" min:"0" desc:"fall time constant of the alpha filters"`
	TauRiseEpsilon float64 `yaml:"tau_rise_epsilon" def:"5" min:"0" desc:"rise time constant of the epsilon filter"`
	TauFallEpsilon float64 `yaml:"tau_fall_epsilon" def:"20" min:"0" desc:"fall time constant of the epsilon filter"`

	Xi        float64 `yaml:"xi" def:"0.001" min:"0" desc:"additive constant on the variance in the Hebbian term, must be positive"`
	Lambda    float64 `yaml:"lambda_hebbian" def:"1" desc:"gain of the Hebbian term"`
	Delta     float64 `yaml:"delta" def:"1e-5" desc:"gain of the decay term"`
	ThetaRest float64 `yaml:"theta_rest" def:"0" desc:"resting membrane potential of the surrogate nonlinearity"`
	SigBeta   float64 `yaml:"beta" def:"1" min:"0" desc:"slope of the surrogate nonlinearity"`
	DataMem   float64 `yaml:"data_mem_assumption" def:"0.5" desc:"membrane potential assumed for the external input units"`

	Seed              uint64 `yaml:"seed" def:"1234" desc:"seed for connectivity and initial weights"`
	NThreads          int    `yaml:"threads" def:"0" min:"0" desc:"number of goroutines over which batch rows are split -- 0 or 1 = no threading"`
	ResetPerBatch     bool   `yaml:"reset_per_batch" def:"false" desc:"reset all network state before each batch in ProcessOnline -- otherwise state persists across batches"`
	EncodeSpikeTrains bool   `yaml:"encode_spike_trains" def:"false" desc:"binarize inputs at 0.5 before they reach the network -- drivers wrap their batch source in a SpikeSource"`
}

func (ns *Settings) Defaults() {
	ns.LayerSizes = []int{1}
	ns.DataSize = 2
	ns.BatchSize = 5
	ns.LearningRate = 0.01
	ns.Epochs = 1
	ns.Dt = 1
	ns.PctInhib = 0
	ns.ExcToInhibC = 0.5
	ns.ExcToInhibSigma2 = 10
	ns.Sparsity = 0
	ns.DaleLaw = true
	ns.DecayBeta = 0.9
	ns.ThrScale = 1
	ns.ThrDecay = 0
	ns.Reset = lif.ResetSubtract
	ns.TauMean = 600
	ns.TauVar = 600
	ns.TauStdp = 0.1
	ns.TauRiseAlpha = 2
	ns.TauFallAlpha = 10
	ns.TauRiseEpsilon = 5
	ns.TauFallEpsilon = 20
	ns.Xi = 1e-3
	ns.Lambda = 1
	ns.Delta = 1e-5
	ns.ThetaRest = 0
	ns.SigBeta = 1
	ns.DataMem = 0.5
	ns.Seed = 1234
	ns.NThreads = 0
	ns.ResetPerBatch = false
	ns.EncodeSpikeTrains = false
}

func cfgErr(format string, args ...any) error {
	return fmt.Errorf("lpl: "+format+": %w", append(args, ErrConfiguration)...)
}

// Validate returns an error wrapping ErrConfiguration for the first
// setting that violates its constraints.
func (ns *Settings) Validate() error {
	if len(ns.LayerSizes) == 0 {
		return cfgErr("at least one layer is required")
	}
	for i, sz := range ns.LayerSizes {
		if sz <= 0 {
			return cfgErr("layer %d size %d must be positive", i, sz)
		}
	}
	if ns.Epochs < 0 {
		return cfgErr("epochs %d must not be negative", ns.Epochs)
	}
	if ns.NThreads < 0 {
		return cfgErr("threads %d must not be negative", ns.NThreads)
	}
	for i := range ns.LayerSizes {
		ls := ns.LayerSettings(i)
		if err := ls.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// LayerSettings returns the settings of layer li, which must be a valid
// index into LayerSizes.
func (ns *Settings) LayerSettings(li int) *LayerSettings {
	ls := &LayerSettings{
		LayerID:      li,
		Size:         ns.LayerSizes[li],
		BatchSize:    ns.BatchSize,
		DataSize:     ns.DataSize,
		LearningRate: ns.LearningRate,
		Dt:           ns.Dt,
		DaleLaw:      ns.DaleLaw,

		TauMean:        ns.TauMean,
		TauVar:         ns.TauVar,
		TauStdp:        ns.TauStdp,
		TauRiseAlpha:   ns.TauRiseAlpha,
		TauFallAlpha:   ns.TauFallAlpha,
		TauRiseEpsilon: ns.TauRiseEpsilon,
		TauFallEpsilon: ns.TauFallEpsilon,

		Xi:       ns.Xi,
		Lambda:   ns.Lambda,
		Delta:    ns.Delta,
		DataMem:  ns.DataMem,
		NThreads: ns.NThreads,
	}
	if li == 0 {
		ls.PrevSize = ns.DataSize
	} else {
		ls.PrevSize = ns.LayerSizes[li-1]
	}
	if li < len(ns.LayerSizes)-1 {
		ls.NextSize = ns.LayerSizes[li+1]
	}
	ls.Conn = conn.Params{Sparsity: ns.Sparsity, PctInhib: ns.PctInhib, ExcToInhibC: ns.ExcToInhibC, ExcToInhibSigma2: ns.ExcToInhibSigma2}
	ls.LIF = lif.Params{DecayBeta: ns.DecayBeta, ThrScale: ns.ThrScale, ThrDecay: ns.ThrDecay, Reset: ns.Reset}
	ls.Sig = fsig.Params{Theta: ns.ThetaRest, Beta: ns.SigBeta}
	return ls
}

// LayerSettings are the fixed parameters of one layer
type LayerSettings struct {
	LayerID      int     `desc:"index of the layer in the network"`
	PrevSize     int     `desc:"number of sending units: DataSize for the first layer"`
	Size         int     `desc:"number of units"`
	NextSize     int     `desc:"number of units in the next layer, 0 for the last layer"`
	BatchSize    int     `desc:"number of independent sequences processed in parallel"`
	DataSize     int     `desc:"number of input dimensions of the network"`
	LearningRate float64 `desc:"learning rate"`
	Dt           float64 `desc:"simulation timestep"`
	DaleLaw      bool    `desc:"constrain weight signs to the sending unit label"`

	Conn conn.Params `view:"inline" desc:"connectivity parameters"`
	LIF  lif.Params  `view:"inline" desc:"neuron parameters"`
	Sig  fsig.Params `view:"inline" desc:"surrogate nonlinearity of the presynaptic membrane"`

	TauMean        float64 `desc:"time constant of the spike moving average"`
	TauVar         float64 `desc:"time constant of the spike variance"`
	TauStdp        float64 `desc:"time constant of the postsynaptic spike trace"`
	TauRiseAlpha   float64 `desc:"rise time constant of the alpha filters"`
	TauFallAlpha   float64 `desc:"fall time constant of the alpha filters"`
	TauRiseEpsilon float64 `desc:"rise time constant of the epsilon filter"`
	TauFallEpsilon float64 `desc:"fall time constant of the epsilon filter"`

	Xi       float64 `desc:"additive constant on the variance in the Hebbian term"`
	Lambda   float64 `desc:"gain of the Hebbian term"`
	Delta    float64 `desc:"gain of the decay term"`
	DataMem  float64 `desc:"membrane potential assumed for the external input units"`
	NThreads int     `desc:"number of goroutines over which batch rows are split"`
}

// Validate returns an error wrapping ErrConfiguration for the first
// setting that violates its constraints.
func (ls *LayerSettings) Validate() error {
	switch {
	case ls.PrevSize <= 0:
		return cfgErr("layer %d: previous size %d must be positive", ls.LayerID, ls.PrevSize)
	case ls.Size <= 0:
		return cfgErr("layer %d: size %d must be positive", ls.LayerID, ls.Size)
	case ls.NextSize < 0:
		return cfgErr("layer %d: next size %d must not be negative", ls.LayerID, ls.NextSize)
	case ls.BatchSize <= 0:
		return cfgErr("layer %d: batch size %d must be positive", ls.LayerID, ls.BatchSize)
	case ls.DataSize <= 0:
		return cfgErr("layer %d: data size %d must be positive", ls.LayerID, ls.DataSize)
	case !(ls.LearningRate > 0):
		return cfgErr("layer %d: learning rate %g must be positive", ls.LayerID, ls.LearningRate)
	case !(ls.Dt > 0):
		return cfgErr("layer %d: dt %g must be positive", ls.LayerID, ls.Dt)
	case !(ls.Xi > 0):
		return cfgErr("layer %d: xi %g must be positive", ls.LayerID, ls.Xi)
	case ls.Conn.PctInhib < 0 || ls.Conn.PctInhib > 100:
		return cfgErr("layer %d: percentage inhibitory %g must be in [0, 100]", ls.LayerID, ls.Conn.PctInhib)
	case ls.Conn.Sparsity < 0 || ls.Conn.Sparsity >= 1:
		return cfgErr("layer %d: sparsity %g must be in [0, 1)", ls.LayerID, ls.Conn.Sparsity)
	case ls.Conn.ExcToInhibC < 0 || ls.Conn.ExcToInhibC > 1:
		return cfgErr("layer %d: excitatory to inhibitory c %g must be in [0, 1]", ls.LayerID, ls.Conn.ExcToInhibC)
	case !(ls.Conn.ExcToInhibSigma2 > 0):
		return cfgErr("layer %d: excitatory to inhibitory sigma squared %g must be positive", ls.LayerID, ls.Conn.ExcToInhibSigma2)
	case ls.LIF.DecayBeta < 0 || ls.LIF.DecayBeta > 1:
		return cfgErr("layer %d: decay beta %g must be in [0, 1]", ls.LayerID, ls.LIF.DecayBeta)
	case !(ls.LIF.ThrScale > 0):
		return cfgErr("layer %d: threshold scale %g must be positive", ls.LayerID, ls.LIF.ThrScale)
	case ls.LIF.ThrDecay < 0 || ls.LIF.ThrDecay > 1:
		return cfgErr("layer %d: threshold decay %g must be in [0, 1]", ls.LayerID, ls.LIF.ThrDecay)
	case ls.LIF.Reset < 0 || ls.LIF.Reset >= lif.ResetModesN:
		return cfgErr("layer %d: unknown reset mode %d", ls.LayerID, ls.LIF.Reset)
	case ls.NThreads < 0:
		return cfgErr("layer %d: threads %d must not be negative", ls.LayerID, ls.NThreads)
	}
	taus := []struct {
		nm  string
		tau float64
	}{
		{"tau_mean", ls.TauMean}, {"tau_var", ls.TauVar}, {"tau_stdp", ls.TauStdp},
		{"tau_rise_alpha", ls.TauRiseAlpha}, {"tau_fall_alpha", ls.TauFallAlpha},
		{"tau_rise_epsilon", ls.TauRiseEpsilon}, {"tau_fall_epsilon", ls.TauFallEpsilon},
	}
	for _, tc := range taus {
		if !(tc.tau > 0) {
			return cfgErr("layer %d: %s %g must be positive", ls.LayerID, tc.nm, tc.tau)
		}
	}
	return nil
}

// Steps converts a time constant in units of Dt into timesteps
func (ls *LayerSettings) Steps(tau float64) float64 {
	return tau / ls.Dt
}
