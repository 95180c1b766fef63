// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// History retains the most recent values of a matrix signal, up to a fixed
// capacity.  Pushing onto a full History evicts the oldest value.
// Values are copied on Push, and buffers of evicted values are reused.
type History struct {
	recs  []*mat.Dense
	start int
	n     int
}

// NewHistory returns an empty History holding at most capacity values.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{recs: make([]*mat.Dense, capacity)}
}

// Cap returns the maximum number of retained values.
func (hs *History) Cap() int { return len(hs.recs) }

// Len returns the number of values currently retained.
func (hs *History) Len() int { return hs.n }

// Push appends a copy of x, evicting the oldest value when full.
// x must have the same shape as values already held.
func (hs *History) Push(x mat.Matrix) error {
	r, c := x.Dims()
	if lt := hs.Latest(); lt != nil {
		lr, lc := lt.Dims()
		if err := CheckDims("history value", x, lr, lc); err != nil {
			return fmt.Errorf("filter.History: %w", err)
		}
	}
	var idx int
	if hs.n < len(hs.recs) {
		idx = (hs.start + hs.n) % len(hs.recs)
		hs.n++
	} else {
		idx = hs.start
		hs.start = (hs.start + 1) % len(hs.recs)
	}
	if hs.recs[idx] == nil {
		hs.recs[idx] = mat.NewDense(r, c, nil)
	}
	hs.recs[idx].Copy(x)
	return nil
}

// At returns the value i steps back from the most recent (0 = latest),
// or nil if fewer values are retained.  It must not be modified.
func (hs *History) At(i int) *mat.Dense {
	if i < 0 || i >= hs.n {
		return nil
	}
	return hs.recs[(hs.start+hs.n-1-i)%len(hs.recs)]
}

// Latest returns the most recent value, nil if empty.
func (hs *History) Latest() *mat.Dense { return hs.At(0) }

// Prev returns the value before the most recent one, nil if not retained.
func (hs *History) Prev() *mat.Dense { return hs.At(1) }

// Fill replaces the contents with Cap() zero values of given shape.
func (hs *History) Fill(r, c int) {
	hs.Reset()
	for i := range hs.recs {
		hs.recs[i] = mat.NewDense(r, c, nil)
	}
	hs.n = len(hs.recs)
}

// Reset drops all values.
func (hs *History) Reset() {
	for i := range hs.recs {
		hs.recs[i] = nil
	}
	hs.start = 0
	hs.n = 0
}
