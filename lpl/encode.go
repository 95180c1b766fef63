// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpl

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SpikeThr is the value above which EncodeSpikes emits a spike
const SpikeThr = 0.5

// EncodeSpikes returns a binary spike matrix with 1 where x > SpikeThr
func EncodeSpikes(x mat.Matrix) *mat.Dense {
	r, c := x.Dims()
	spk := mat.NewDense(r, c, nil)
	spk.Apply(func(i, j int, v float64) float64 {
		if v > SpikeThr {
			return 1
		}
		return 0
	}, x)
	return spk
}

// SpikeSource is a BatchSource that passes every input of Src through
// EncodeSpikes.  Src is not modified.
type SpikeSource struct {
	Src BatchSource
}

// NumBatches returns the number of batches of Src
func (ss *SpikeSource) NumBatches() int { return ss.Src.NumBatches() }

// Batch returns the encoded inputs of batch i of Src
func (ss *SpikeSource) Batch(i int) ([]*mat.Dense, error) {
	seq, err := ss.Src.Batch(i)
	if err != nil {
		return nil, fmt.Errorf("lpl: spike encoding: %w", err)
	}
	enc := make([]*mat.Dense, len(seq))
	for ti, in := range seq {
		enc[ti] = EncodeSpikes(in)
	}
	return enc, nil
}
