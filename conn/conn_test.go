// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func allExc(n int) []bool {
	exc := make([]bool, n)
	for i := range exc {
		exc[i] = true
	}
	return exc
}

func TestNInhib(t *testing.T) {
	tests := []struct {
		pct  float64
		n    int
		corN int
	}{
		{0, 10, 0},
		{20, 10, 2},
		{25, 10, 3}, // 2.5 rounds away from zero
		{33, 3, 1},
		{50, 1, 1},
		{49, 1, 0},
		{100, 7, 7},
	}
	for _, tt := range tests {
		cp := Params{}
		cp.Defaults()
		cp.PctInhib = tt.pct
		if n := cp.NInhib(tt.n); n != tt.corN {
			t.Errorf("NInhib pct: %v n: %v = %v, cor %v", tt.pct, tt.n, n, tt.corN)
		}
	}
}

func TestExcitatoryMaskCount(t *testing.T) {
	cp := Params{}
	cp.Defaults()
	for _, pct := range []float64{0, 10, 20, 25, 50, 80, 100} {
		cp.PctInhib = pct
		for _, n := range []int{1, 4, 10, 37} {
			rng := rand.New(rand.NewSource(uint64(n)))
			exc := cp.ExcitatoryMask(rng, n)
			ni := 0
			for _, e := range exc {
				if !e {
					ni++
				}
			}
			if ni != cp.NInhib(n) {
				t.Errorf("pct: %v n: %v inhibitory %d, expected %d", pct, n, ni, cp.NInhib(n))
			}
		}
	}
}

func TestMaskDeterminism(t *testing.T) {
	cp := Params{}
	cp.Defaults()
	cp.PctInhib = 20
	cp.Sparsity = 0.4
	build := func() ([]bool, *Mask) {
		rng := rand.New(rand.NewSource(42))
		exc := cp.ExcitatoryMask(rng, 20)
		return exc, cp.SparsityMask(rng, allExc(30), exc)
	}
	e1, m1 := build()
	e2, m2 := build()
	for i := range e1 {
		if e1[i] != e2[i] {
			t.Fatalf("excitatory masks differ at %d", i)
		}
	}
	for i := range m1.On {
		if m1.On[i] != m2.On[i] {
			t.Fatalf("sparsity masks differ at %d", i)
		}
	}
}

func TestSparsityMaskDensity(t *testing.T) {
	cp := Params{}
	cp.Defaults()
	cp.Sparsity = 0.3
	rng := rand.New(rand.NewSource(1))
	mk := cp.SparsityMask(rng, allExc(100), allExc(100))
	n := mk.N()
	if n < 6700 || n > 7300 {
		t.Errorf("expected about 7000 connections, got %d", n)
	}

	cp.Sparsity = 0
	mk = cp.SparsityMask(rng, allExc(10), allExc(10))
	if mk.N() != 100 {
		t.Errorf("zero sparsity should be fully connected, got %d", mk.N())
	}
}

func TestExcToInhibKernel(t *testing.T) {
	cp := Params{}
	cp.Defaults()
	cp.ExcToInhibC = 1
	cp.ExcToInhibSigma2 = 1
	n := 40
	recvExc := make([]bool, n) // all inhibitory
	rng := rand.New(rand.NewSource(3))
	mk := cp.SparsityMask(rng, allExc(n), recvExc)
	for ri := 0; ri < n; ri++ {
		if !mk.IsOn(ri, ri) {
			t.Errorf("center connection %d should always be present", ri)
		}
		for si := 0; si < n; si++ {
			d := si - ri
			if (d > 10 || d < -10) && mk.IsOn(ri, si) {
				t.Errorf("distant connection %d -> %d should be absent", si, ri)
			}
		}
	}
	if p := cp.Prob(5, 5, n, n, true, true); p != 1 {
		t.Errorf("excitatory to excitatory should use 1 - Sparsity, got %v", p)
	}
}

func TestMaskApply(t *testing.T) {
	mk := NewMask(2, 3)
	mk.Set(0, 1, true)
	mk.Set(1, 0, true)
	mk.Set(1, 2, true)
	w := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	mk.Apply(w)
	cor := mat.NewDense(2, 3, []float64{0, 2, 0, 4, 0, 6})
	if !mat.Equal(w, cor) {
		t.Errorf("Apply:\n%v", mat.Formatted(w))
	}
	if mk.N() != 3 {
		t.Errorf("N: %d", mk.N())
	}
	cl := mk.Clone()
	cl.Set(0, 0, true)
	if mk.IsOn(0, 0) {
		t.Errorf("Clone should not share storage")
	}
}
