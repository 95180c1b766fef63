// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpl

import (
	"math"
	"testing"

	"github.com/emer/lpl/filter"
	"gonum.org/v1/gonum/mat"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = 1.0e-12

// learnSettings is a single layer of two units, one of them inhibitory,
// fully connected to two inputs, with time constants short enough that a
// few steps move every filter.
func learnSettings() Settings {
	var ns Settings
	ns.Defaults()
	ns.LayerSizes = []int{2}
	ns.DataSize = 2
	ns.BatchSize = 2
	ns.PctInhib = 50
	ns.ExcToInhibC = 0
	ns.DaleLaw = false
	ns.LearningRate = 0.5
	ns.TauMean = 4
	ns.TauVar = 5
	ns.TauStdp = 2
	ns.Xi = 0.1
	ns.Lambda = 0.5
	ns.Delta = 0.01
	ns.SigBeta = 2
	ns.ThetaRest = 0.1
	ns.DataMem = 0.5
	return ns
}

// scalarLPL recomputes the first-layer weight update one synapse at a time,
// keeping its own copy of every filter state.
type scalarLPL struct {
	ns     Settings
	ra, rv float64
	er, ef float64
	ar, af float64
	decay  float64
	fp     float64

	tr                 [][]float64 // [b][j]
	avg, vr, now, prev [][]float64 // [b][i]
	e1, e2, a1, a2     [][][]float64
	s1, s2             [][]float64
}

func newScalarLPL(ns Settings) *scalarLPL {
	nb, nn, np := ns.BatchSize, ns.LayerSizes[0], ns.DataSize
	d := 1 + ns.SigBeta*math.Abs(ns.DataMem-ns.ThetaRest)
	sl := &scalarLPL{ns: ns,
		ra:    filter.RateFromTau(ns.TauMean / ns.Dt),
		rv:    filter.RateFromTau(ns.TauVar / ns.Dt),
		er:    filter.ExpRate(ns.TauRiseEpsilon / ns.Dt),
		ef:    filter.ExpRate(ns.TauFallEpsilon / ns.Dt),
		ar:    filter.ExpRate(ns.TauRiseAlpha / ns.Dt),
		af:    filter.ExpRate(ns.TauFallAlpha / ns.Dt),
		decay: math.Exp(-ns.Dt / ns.TauStdp),
		fp:    ns.SigBeta / (d * d),
	}
	grid := func(r, c int) [][]float64 {
		g := make([][]float64, r)
		for i := range g {
			g[i] = make([]float64, c)
		}
		return g
	}
	cube := func() [][][]float64 {
		c := make([][][]float64, nb)
		for b := range c {
			c[b] = grid(nn, np)
		}
		return c
	}
	sl.tr = grid(nb, nn)
	sl.avg, sl.vr, sl.now, sl.prev = grid(nb, np), grid(nb, np), grid(nb, np), grid(nb, np)
	sl.s1, sl.s2 = grid(nb, np), grid(nb, np)
	sl.e1, sl.e2, sl.a1, sl.a2 = cube(), cube(), cube(), cube()
	return sl
}

// step applies one timestep to wts, updating only the rows labeled
// excitatory in exc.
func (sl *scalarLPL) step(wts [][]float64, exc []bool, spk, ref [][]float64) {
	ns := sl.ns
	nb, nn, np := ns.BatchSize, ns.LayerSizes[0], ns.DataSize
	lr := ns.LearningRate
	sec := make([][]float64, nb)
	for b := 0; b < nb; b++ {
		sec[b] = make([]float64, np)
		for j := 0; j < nn; j++ {
			sl.tr[b][j] = sl.decay*sl.tr[b][j] + spk[b][j]
		}
		for i := 0; i < np; i++ {
			x := ref[b][i]
			sl.avg[b][i] += sl.ra * (x - sl.avg[b][i])
			dv := x - sl.avg[b][i]
			sl.vr[b][i] += sl.rv * (dv*dv - sl.vr[b][i])
			sl.prev[b][i], sl.now[b][i] = sl.now[b][i], x
			s := -(sl.now[b][i] - sl.prev[b][i]) + ns.Lambda/(sl.vr[b][i]+ns.Xi)*(sl.now[b][i]-sl.avg[b][i])
			sl.s1[b][i] += sl.ar * (s - sl.s1[b][i])
			sl.s2[b][i] += sl.af * (sl.s1[b][i] - sl.s2[b][i])
			sec[b][i] = sl.s2[b][i]
		}
	}
	for j := 0; j < nn; j++ {
		for i := 0; i < np; i++ {
			sum := 0.0
			for b := 0; b < nb; b++ {
				f := sl.tr[b][j] * sl.fp
				sl.e1[b][j][i] += sl.er * (f - sl.e1[b][j][i])
				sl.e2[b][j][i] += sl.ef * (sl.e1[b][j][i] - sl.e2[b][j][i])
				sl.a1[b][j][i] += sl.ar * (sl.e2[b][j][i] - sl.a1[b][j][i])
				sl.a2[b][j][i] += sl.af * (sl.a1[b][j][i] - sl.a2[b][j][i])
				sum += lr*lr*sl.a2[b][j][i]*sec[b][i] + lr*ns.Delta*sl.tr[b][j]
			}
			if exc[j] {
				wts[j][i] += sum / float64(nb)
			}
		}
	}
}

func newLearnNet(t *testing.T, ns Settings, wts [][]float64) *Network {
	t.Helper()
	nt := newTestNet(t, ns)
	ly := nt.Layers[0]
	for j, row := range wts {
		for i, w := range row {
			ly.Wts.Set(j, i, w)
		}
	}
	return nt
}

func TestTrainSynapsesValues(t *testing.T) {
	w0 := [][]float64{{0.3, -0.2}, {0.4, 0.1}}
	tests := []struct {
		name string
		spk  [][][]float64 // [step][b][j]
		ref  [][][]float64 // [step][b][i]
	}{
		{"one step",
			[][][]float64{{{1, 0}, {0, 1}}},
			[][][]float64{{{0.2, 0.9}, {0.7, 0.1}}}},
		{"two steps",
			[][][]float64{{{1, 1}, {0, 1}}, {{0, 1}, {1, 0}}},
			[][][]float64{{{0.2, 0.9}, {0.7, 0.1}}, {{0.6, 0.3}, {0.5, 0.8}}}},
		{"silent then firing",
			[][][]float64{{{0, 0}, {0, 0}}, {{1, 1}, {1, 1}}, {{1, 0}, {0, 1}}},
			[][][]float64{{{1, 0}, {0, 1}}, {{0.5, 0.5}, {0.25, 0.75}}, {{0, 1}, {1, 0}}}},
	}
	for _, tt := range tests {
		ns := learnSettings()
		nt := newLearnNet(t, ns, w0)
		ly := nt.Layers[0]
		exc := ly.ExcitatoryMask()
		if exc[0] == exc[1] {
			t.Fatalf("%s: expected one excitatory and one inhibitory unit, got %v", tt.name, exc)
		}
		cor := [][]float64{append([]float64(nil), w0[0]...), append([]float64(nil), w0[1]...)}
		sl := newScalarLPL(ns)
		for si := range tt.spk {
			spk := mat.NewDense(2, 2, nil)
			ref := mat.NewDense(2, 2, nil)
			for b := 0; b < 2; b++ {
				spk.SetRow(b, tt.spk[si][b])
				ref.SetRow(b, tt.ref[si][b])
			}
			if err := ly.TrainSynapses(spk, ref); err != nil {
				t.Fatal(err)
			}
			sl.step(cor, exc, tt.spk[si], tt.ref[si])
		}
		for j := 0; j < 2; j++ {
			for i := 0; i < 2; i++ {
				w := ly.Wts.At(j, i)
				if dif := math.Abs(w - cor[j][i]); dif > difTol {
					t.Errorf("%s: weight %d,%d: got %v, expected %v", tt.name, j, i, w, cor[j][i])
				}
				if !exc[j] && w != w0[j][i] {
					t.Errorf("%s: weight %d,%d of the inhibitory unit changed: %v", tt.name, j, i, w)
				}
			}
		}
	}
}

// TestTrainSynapsesFirstStep checks the first update against the closed
// form: from zero state every filter stage scales its input by its rate.
func TestTrainSynapsesFirstStep(t *testing.T) {
	ns := learnSettings()
	w0 := [][]float64{{0.3, -0.2}, {0.4, 0.1}}
	nt := newLearnNet(t, ns, w0)
	ly := nt.Layers[0]
	exc := ly.ExcitatoryMask()
	ej := 0
	if !exc[0] {
		ej = 1
	}
	spk := mat.NewDense(2, 2, nil)
	spk.Set(0, ej, 1)
	ref := mat.NewDense(2, 2, []float64{0.2, 0.9, 0.7, 0.1})
	if err := ly.TrainSynapses(spk, ref); err != nil {
		t.Fatal(err)
	}

	lr := ns.LearningRate
	ra, rv := 1/ns.TauMean, 1/ns.TauVar
	eps := filter.ExpRate(ns.TauRiseEpsilon) * filter.ExpRate(ns.TauFallEpsilon)
	alpha := filter.ExpRate(ns.TauRiseAlpha) * filter.ExpRate(ns.TauFallAlpha)
	fp := ns.SigBeta / math.Pow(1+ns.SigBeta*(ns.DataMem-ns.ThetaRest), 2)
	for i := 0; i < 2; i++ {
		sum := 0.0
		for b := 0; b < 2; b++ {
			x := ref.At(b, i)
			avg := ra * x
			vr := rv * (x - avg) * (x - avg)
			sec := alpha * (-x + ns.Lambda/(vr+ns.Xi)*(x-avg))
			tr := spk.At(b, ej)
			sum += lr*lr*alpha*eps*tr*fp*sec + lr*ns.Delta*tr
		}
		cor := w0[ej][i] + sum/2
		if w := ly.Wts.At(ej, i); math.Abs(w-cor) > difTol {
			t.Errorf("weight %d,%d: got %v, expected %v", ej, i, w, cor)
		}
		if w := ly.Wts.At(1-ej, i); w != w0[1-ej][i] {
			t.Errorf("inhibitory weight %d,%d changed to %v", 1-ej, i, w)
		}
	}
}
