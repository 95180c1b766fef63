// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// TemporalFilter is a causal double-exponential smoother made of two
// cascaded first-order low-pass stages.  With TauRise < TauFall the impulse
// response has the alpha-function shape used for synaptic traces: a fast
// rise followed by a slow decay, with unit DC gain.
type TemporalFilter struct {
	TauRise float64 `def:"2" min:"0" desc:"time constant of the first (rise) stage, in timesteps"`
	TauFall float64 `def:"10" min:"0" desc:"time constant of the second (fall) stage, in timesteps"`

	RiseDt float64 `view:"-" json:"-" desc:"rate constant 1 - exp(-1/TauRise)"`
	FallDt float64 `view:"-" json:"-" desc:"rate constant 1 - exp(-1/TauFall)"`

	rise *mat.Dense
	fall *mat.Dense
}

// NewTemporalFilter returns a filter with given rise and fall time constants.
func NewTemporalFilter(tauRise, tauFall float64) *TemporalFilter {
	tf := &TemporalFilter{TauRise: tauRise, TauFall: tauFall}
	tf.Update()
	return tf
}

// Update recomputes the rate constants, and must be called after
// changing the time constants.
func (tf *TemporalFilter) Update() {
	tf.RiseDt = ExpRate(tf.TauRise)
	tf.FallDt = ExpRate(tf.TauFall)
}

// Apply integrates x into both stages and returns a copy of the
// second stage.  The state shape is taken from the first call.
func (tf *TemporalFilter) Apply(x *mat.Dense) (*mat.Dense, error) {
	r, c := x.Dims()
	if tf.rise == nil {
		tf.rise = mat.NewDense(r, c, nil)
		tf.fall = mat.NewDense(r, c, nil)
	} else {
		sr, sc := tf.rise.Dims()
		if err := CheckDims("temporal filter input", x, sr, sc); err != nil {
			return nil, fmt.Errorf("filter.TemporalFilter: %w", err)
		}
	}
	integ(tf.rise, x, tf.RiseDt)
	integ(tf.fall, tf.rise, tf.FallDt)
	return mat.DenseCopyOf(tf.fall), nil
}

// Value returns the current output state, nil before the first Apply.
// It must not be modified.
func (tf *TemporalFilter) Value() *mat.Dense {
	return tf.fall
}

// Reset clears the state, including the inferred shape.
func (tf *TemporalFilter) Reset() {
	tf.rise = nil
	tf.fall = nil
}

// Zero sets the state to zero, keeping its shape.
func (tf *TemporalFilter) Zero() {
	if tf.rise != nil {
		tf.rise.Zero()
		tf.fall.Zero()
	}
}
