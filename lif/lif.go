// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package lif implements the discrete-time leaky integrate-and-fire neuron
with an adaptive firing threshold.  Each timestep the membrane is first reset
according to the previous spike, then leaks and integrates the input current:

	mem = DecayBeta * mem + cur - spk * thr     (ResetSubtract)
	mem = (1 - spk) * DecayBeta * mem + cur     (ResetZero)

The threshold adapts with each spike and relaxes back to ThrScale:

	adapt = ThrDecay * (adapt + spk)
	thr   = ThrScale * (1 + adapt)

and a spike is emitted where mem > thr.
*/
package lif

import (
	"github.com/goki/ki/kit"
)

// ResetModes are ways of resetting the membrane after a spike
type ResetModes int32

//go:generate stringer -type=ResetModes

var KiT_ResetModes = kit.Enums.AddEnum(ResetModesN, kit.NotBitFlag, nil)

func (ev ResetModes) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ResetModes) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// MarshalText is used for yaml and other text encodings
func (ev ResetModes) MarshalText() ([]byte, error) { return []byte(ev.String()), nil }

// UnmarshalText is used for yaml and other text encodings
func (ev *ResetModes) UnmarshalText(b []byte) error { return ev.FromString(string(b)) }

const (
	// ResetSubtract subtracts the threshold from the membrane after a spike,
	// retaining any overshoot.
	ResetSubtract ResetModes = iota

	// ResetZero sets the membrane to zero after a spike.
	ResetZero

	ResetModesN
)

// Params are the LIF neuron parameters
type Params struct {
	DecayBeta float64    `def:"0.9" min:"0" max:"1" desc:"membrane decay (leak) factor per timestep -- 1 = perfect integrator, 0 = no memory"`
	ThrScale  float64    `def:"1" min:"0" desc:"baseline firing threshold, which adaptation scales up"`
	ThrDecay  float64    `def:"0" min:"0" max:"1" desc:"decay factor of threshold adaptation per timestep -- 0 = no adaptation"`
	Reset     ResetModes `desc:"how the membrane is reset after a spike"`
}

func (lp *Params) Defaults() {
	lp.DecayBeta = 0.9
	lp.ThrScale = 1
	lp.ThrDecay = 0
	lp.Reset = ResetSubtract
}

// InitState initializes one row of neuron state to rest: zero membrane,
// adaptation and spikes, and the baseline threshold.
func (lp *Params) InitState(mem, thr, adapt, spk []float64) {
	for i := range mem {
		mem[i] = 0
		thr[i] = lp.ThrScale
		adapt[i] = 0
		spk[i] = 0
	}
}

// Step advances one row of neurons one timestep given input current cur.
// The spike values from the previous step, held in spk, drive the reset
// and the threshold adaptation, and are replaced by the new spikes (0 or 1).
// All slices must have the same length.
func (lp *Params) Step(cur, mem, thr, adapt, spk []float64) {
	for i, c := range cur {
		prev := spk[i]
		switch lp.Reset {
		case ResetZero:
			mem[i] = (1-prev)*lp.DecayBeta*mem[i] + c
		default:
			mem[i] = lp.DecayBeta*mem[i] + c - prev*thr[i]
		}
		adapt[i] = lp.ThrDecay * (adapt[i] + prev)
		thr[i] = lp.ThrScale * (1 + adapt[i])
		if mem[i] > thr[i] {
			spk[i] = 1
		} else {
			spk[i] = 0
		}
	}
}
