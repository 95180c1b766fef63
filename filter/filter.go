// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package filter provides the causal temporal filters and running statistics
used by the LPL learning rule: a double-exponential (rise / fall) smoother,
exponential moving averages and variances, and a bounded history of the
most recent values of a signal.

All state is held in gonum dense matrices, typically shaped (batch, units),
and every filter must be applied exactly once per simulation timestep.
Time constants are expressed in timesteps.
*/
package filter

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrShapeMismatch is returned when a value does not have the shape of the
// state it is being combined with.
var ErrShapeMismatch = errors.New("shape mismatch")

// CheckDims returns an error wrapping ErrShapeMismatch if m is not r x c.
func CheckDims(what string, m mat.Matrix, r, c int) error {
	mr, mc := m.Dims()
	if mr != r || mc != c {
		return fmt.Errorf("%s is %dx%d, expected %dx%d: %w", what, mr, mc, r, c, ErrShapeMismatch)
	}
	return nil
}

// RateFromTau returns the per-timestep update rate 1/tau, clamped to 1
// for time constants shorter than one timestep.
func RateFromTau(tau float64) float64 {
	if tau <= 1 {
		return 1
	}
	return 1 / tau
}

// ExpRate returns the exact exponential integration rate 1 - exp(-1/tau).
func ExpRate(tau float64) float64 {
	return 1 - math.Exp(-1/tau)
}

// integ updates st <- st + rate * (x - st) in place, row by row so that
// strided views are handled.
func integ(st *mat.Dense, x mat.RawMatrixer, rate float64) {
	sr := st.RawMatrix()
	xr := x.RawMatrix()
	for i := 0; i < sr.Rows; i++ {
		srow := sr.Data[i*sr.Stride : i*sr.Stride+sr.Cols]
		xrow := xr.Data[i*xr.Stride : i*xr.Stride+xr.Cols]
		for j, xv := range xrow {
			srow[j] += rate * (xv - srow[j])
		}
	}
}
