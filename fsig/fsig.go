// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package fsig provides the fast-sigmoid surrogate nonlinearity used by the
LPL rule to weight postsynaptic eligibility by the presynaptic membrane
potential:

	F(u) = Beta (u - Theta) / (1 + Beta |u - Theta|)

and its derivative

	F'(u) = Beta / (1 + Beta |u - Theta|)^2

F saturates at +/- 1 far from the resting potential Theta, and F' peaks at
Beta at u = Theta, decaying quadratically on either side.
*/
package fsig

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Params are the fast-sigmoid parameters.
type Params struct {
	Theta float64 `def:"0" desc:"resting membrane potential around which the function is centered"`
	Beta  float64 `def:"1" min:"0" desc:"slope (gain) of the function at Theta"`
}

func (fp *Params) Defaults() {
	fp.Theta = 0
	fp.Beta = 1
}

// F computes the fast-sigmoid value at u
func (fp *Params) F(u float64) float64 {
	x := fp.Beta * (u - fp.Theta)
	return x / (1 + math.Abs(x))
}

// Prime computes the derivative of F at u
func (fp *Params) Prime(u float64) float64 {
	d := 1 + fp.Beta*math.Abs(u-fp.Theta)
	return fp.Beta / (d * d)
}

// PrimeDense sets dst to the elementwise derivative of F over u.
// dst must have the dims of u.
func (fp *Params) PrimeDense(dst *mat.Dense, u mat.Matrix) {
	dst.Apply(func(_, _ int, v float64) float64 {
		return fp.Prime(v)
	}, u)
}
