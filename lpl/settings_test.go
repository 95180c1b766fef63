// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpl

import (
	"errors"
	"testing"

	"github.com/emer/lpl/lif"
)

func TestSettingsDefaults(t *testing.T) {
	var ns Settings
	ns.Defaults()
	if err := ns.Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name string
		set  func(ns *Settings)
	}{
		{"no layers", func(ns *Settings) { ns.LayerSizes = nil }},
		{"zero layer size", func(ns *Settings) { ns.LayerSizes = []int{3, 0} }},
		{"zero data size", func(ns *Settings) { ns.DataSize = 0 }},
		{"zero batch size", func(ns *Settings) { ns.BatchSize = 0 }},
		{"negative pct inhib", func(ns *Settings) { ns.PctInhib = -1 }},
		{"pct inhib over 100", func(ns *Settings) { ns.PctInhib = 100.5 }},
		{"zero learning rate", func(ns *Settings) { ns.LearningRate = 0 }},
		{"negative learning rate", func(ns *Settings) { ns.LearningRate = -0.01 }},
		{"zero dt", func(ns *Settings) { ns.Dt = 0 }},
		{"zero xi", func(ns *Settings) { ns.Xi = 0 }},
		{"zero tau mean", func(ns *Settings) { ns.TauMean = 0 }},
		{"negative tau var", func(ns *Settings) { ns.TauVar = -5 }},
		{"zero tau stdp", func(ns *Settings) { ns.TauStdp = 0 }},
		{"zero tau rise alpha", func(ns *Settings) { ns.TauRiseAlpha = 0 }},
		{"zero tau fall alpha", func(ns *Settings) { ns.TauFallAlpha = 0 }},
		{"zero tau rise epsilon", func(ns *Settings) { ns.TauRiseEpsilon = 0 }},
		{"zero tau fall epsilon", func(ns *Settings) { ns.TauFallEpsilon = 0 }},
		{"full sparsity", func(ns *Settings) { ns.Sparsity = 1 }},
		{"negative sparsity", func(ns *Settings) { ns.Sparsity = -0.1 }},
		{"decay beta over 1", func(ns *Settings) { ns.DecayBeta = 1.5 }},
		{"zero threshold scale", func(ns *Settings) { ns.ThrScale = 0 }},
		{"threshold decay over 1", func(ns *Settings) { ns.ThrDecay = 2 }},
		{"exc to inhib c over 1", func(ns *Settings) { ns.ExcToInhibC = 1.1 }},
		{"zero sigma squared", func(ns *Settings) { ns.ExcToInhibSigma2 = 0 }},
		{"bad reset mode", func(ns *Settings) { ns.Reset = lif.ResetModesN }},
		{"negative threads", func(ns *Settings) { ns.NThreads = -1 }},
	}
	for _, tt := range tests {
		var ns Settings
		ns.Defaults()
		tt.set(&ns)
		err := ns.Validate()
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("%s: expected ErrConfiguration, got %v", tt.name, err)
		}
		if _, err := NewNetwork(ns); !errors.Is(err, ErrConfiguration) {
			t.Errorf("%s: NewNetwork should reject, got %v", tt.name, err)
		}
	}
}

func TestLayerSettings(t *testing.T) {
	var ns Settings
	ns.Defaults()
	ns.LayerSizes = []int{4, 3, 2}
	ns.DataSize = 5
	cor := []struct{ prev, size, next int }{{5, 4, 3}, {4, 3, 2}, {3, 2, 0}}
	for li, c := range cor {
		ls := ns.LayerSettings(li)
		if ls.LayerID != li || ls.PrevSize != c.prev || ls.Size != c.size || ls.NextSize != c.next {
			t.Errorf("layer %d: id %d prev %d size %d next %d", li, ls.LayerID, ls.PrevSize, ls.Size, ls.NextSize)
		}
		if ls.LIF.DecayBeta != ns.DecayBeta || ls.Conn.PctInhib != ns.PctInhib || ls.Sig.Beta != ns.SigBeta {
			t.Errorf("layer %d: parameters not carried over", li)
		}
	}
}
