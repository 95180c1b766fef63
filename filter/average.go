// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MovingAverage is an exponential moving average of a per-unit signal:
// avg <- avg + (x - avg) * Rate, with Rate = 1 / Tau.
type MovingAverage struct {
	Tau  float64 `def:"600" min:"0" desc:"time constant of the average, in timesteps"`
	Rate float64 `view:"-" json:"-" desc:"update rate 1 / Tau, at most 1"`

	avg *mat.Dense
}

// NewMovingAverage returns a zero-state average of shape r x c.
func NewMovingAverage(tau float64, r, c int) *MovingAverage {
	ma := &MovingAverage{Tau: tau}
	ma.Rate = RateFromTau(tau)
	ma.avg = mat.NewDense(r, c, nil)
	return ma
}

// Apply integrates x and returns the updated average, which must not be
// modified by the caller.
func (ma *MovingAverage) Apply(x *mat.Dense) (*mat.Dense, error) {
	r, c := ma.avg.Dims()
	if err := CheckDims("moving average input", x, r, c); err != nil {
		return nil, fmt.Errorf("filter.MovingAverage: %w", err)
	}
	integ(ma.avg, x, ma.Rate)
	return ma.avg, nil
}

// Value returns the tracked average.  It must not be modified.
func (ma *MovingAverage) Value() *mat.Dense { return ma.avg }

// Reset sets the average back to zero.
func (ma *MovingAverage) Reset() { ma.avg.Zero() }

// VarianceMovingAverage is an exponential moving estimate of the variance
// of a signal around a given moving average:
// vr <- vr + ((x - avg)^2 - vr) * Rate.
// No epsilon is added here: callers guard the denominator where it is used.
type VarianceMovingAverage struct {
	Tau  float64 `def:"600" min:"0" desc:"time constant of the variance estimate, in timesteps"`
	Rate float64 `view:"-" json:"-" desc:"update rate 1 / Tau, at most 1"`

	vr  *mat.Dense
	dev *mat.Dense
}

// NewVarianceMovingAverage returns a zero-state variance of shape r x c.
func NewVarianceMovingAverage(tau float64, r, c int) *VarianceMovingAverage {
	va := &VarianceMovingAverage{Tau: tau}
	va.Rate = RateFromTau(tau)
	va.vr = mat.NewDense(r, c, nil)
	va.dev = mat.NewDense(r, c, nil)
	return va
}

// Apply integrates the squared deviation of x from avg and returns the
// updated variance, which must not be modified by the caller.
func (va *VarianceMovingAverage) Apply(x, avg *mat.Dense) (*mat.Dense, error) {
	r, c := va.vr.Dims()
	if err := CheckDims("variance input", x, r, c); err != nil {
		return nil, fmt.Errorf("filter.VarianceMovingAverage: %w", err)
	}
	if err := CheckDims("variance mean", avg, r, c); err != nil {
		return nil, fmt.Errorf("filter.VarianceMovingAverage: %w", err)
	}
	va.dev.Sub(x, avg)
	va.dev.MulElem(va.dev, va.dev)
	integ(va.vr, va.dev, va.Rate)
	return va.vr, nil
}

// Value returns the tracked variance.  It must not be modified.
func (va *VarianceMovingAverage) Value() *mat.Dense { return va.vr }

// Reset sets the variance back to zero.
func (va *VarianceMovingAverage) Reset() { va.vr.Zero() }

// SpikeMovingAverage tracks the moving average of a spike signal and also
// retains the two most recent raw spike values, which the learning rule
// uses for finite differences.  The history starts out as two zero values.
type SpikeMovingAverage struct {
	MovingAverage

	// last two raw spike values
	Rec *History
}

// NewSpikeMovingAverage returns a zero-state spike average of shape r x c.
func NewSpikeMovingAverage(tau float64, r, c int) *SpikeMovingAverage {
	sa := &SpikeMovingAverage{MovingAverage: *NewMovingAverage(tau, r, c)}
	sa.Rec = NewHistory(2)
	sa.Rec.Fill(r, c)
	return sa
}

// Apply records spk and integrates it into the average.
func (sa *SpikeMovingAverage) Apply(spk *mat.Dense) (*mat.Dense, error) {
	avg, err := sa.MovingAverage.Apply(spk)
	if err != nil {
		return nil, err
	}
	if err := sa.Rec.Push(spk); err != nil {
		return nil, err
	}
	return avg, nil
}

// Latest returns the most recent raw spike value.
func (sa *SpikeMovingAverage) Latest() *mat.Dense { return sa.Rec.Latest() }

// Prev returns the raw spike value one step before Latest.
func (sa *SpikeMovingAverage) Prev() *mat.Dense { return sa.Rec.Prev() }

// Reset zeros the average and the retained spikes.
func (sa *SpikeMovingAverage) Reset() {
	sa.MovingAverage.Reset()
	r, c := sa.avg.Dims()
	sa.Rec.Fill(r, c)
}
