// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package conn builds the fixed connectivity of a layer: the excitatory /
inhibitory identity of its units, and the sparsity mask over its forward
weights.  Masks are drawn once from a seeded generator and never change.

Excitatory to inhibitory connections can be biased toward nearby units:
the receiving index is projected into sending index space and the
connection probability falls off as a gaussian of the distance.
*/
package conn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Params are the connectivity parameters of one layer
type Params struct {
	Sparsity         float64 `def:"0" min:"0" max:"1" desc:"fraction of forward connections that are absent -- each connection is kept with probability 1 - Sparsity"`
	PctInhib         float64 `def:"0" min:"0" max:"100" desc:"percentage of units that are inhibitory"`
	ExcToInhibC      float64 `def:"0.5" min:"0" max:"1" desc:"peak probability of an excitatory to inhibitory connection -- 0 uses the plain Sparsity probability for these pairs"`
	ExcToInhibSigma2 float64 `def:"10" min:"0" desc:"squared spread (in sending units) of the excitatory to inhibitory connection probability"`
}

func (cp *Params) Defaults() {
	cp.Sparsity = 0
	cp.PctInhib = 0
	cp.ExcToInhibC = 0.5
	cp.ExcToInhibSigma2 = 10
}

// NInhib returns the number of inhibitory units in a layer of n units,
// rounding half away from zero.
func (cp *Params) NInhib(n int) int {
	return int(math.Round(cp.PctInhib / 100 * float64(n)))
}

// ExcitatoryMask labels n units as excitatory (true) or inhibitory (false).
// Exactly NInhib(n) units, chosen without replacement, are inhibitory.
func (cp *Params) ExcitatoryMask(rng *rand.Rand, n int) []bool {
	exc := make([]bool, n)
	for i := range exc {
		exc[i] = true
	}
	perm := rng.Perm(n)
	for _, i := range perm[:cp.NInhib(n)] {
		exc[i] = false
	}
	return exc
}

// Prob returns the probability of a connection from sending unit si to
// receiving unit ri, for layers of nSend and nRecv units.
func (cp *Params) Prob(si, ri, nSend, nRecv int, sendExc, recvExc bool) float64 {
	if sendExc && !recvExc && cp.ExcToInhibC > 0 {
		ctr := (float64(ri)+0.5)*float64(nSend)/float64(nRecv) - 0.5
		d := float64(si) - ctr
		return cp.ExcToInhibC * math.Exp(-d*d/cp.ExcToInhibSigma2)
	}
	return 1 - cp.Sparsity
}

// SparsityMask draws the connectivity from senders labeled by sendExc to
// receivers labeled by recvExc, one independent draw per pair, in
// receiver-major order.
func (cp *Params) SparsityMask(rng *rand.Rand, sendExc, recvExc []bool) *Mask {
	nSend := len(sendExc)
	nRecv := len(recvExc)
	mk := NewMask(nRecv, nSend)
	for ri := 0; ri < nRecv; ri++ {
		for si := 0; si < nSend; si++ {
			p := cp.Prob(si, ri, nSend, nRecv, sendExc[si], recvExc[ri])
			bd := distuv.Bernoulli{P: p, Src: rng}
			mk.Set(ri, si, bd.Rand() == 1)
		}
	}
	return mk
}
