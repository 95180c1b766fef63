// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"gonum.org/v1/gonum/mat"
)

// Mask is a boolean receiver x sender connectivity pattern, laid out
// receiver-major like the weights it masks.
type Mask struct {
	NRecv int    `desc:"number of receiving units (rows)"`
	NSend int    `desc:"number of sending units (columns)"`
	On    []bool `desc:"connection present, NRecv * NSend values, receiver-major"`
}

// NewMask returns a mask with no connections.
func NewMask(nRecv, nSend int) *Mask {
	return &Mask{NRecv: nRecv, NSend: nSend, On: make([]bool, nRecv*nSend)}
}

// IsOn returns whether sending unit si connects to receiving unit ri
func (mk *Mask) IsOn(ri, si int) bool {
	return mk.On[ri*mk.NSend+si]
}

// Set sets the connection from si to ri
func (mk *Mask) Set(ri, si int, on bool) {
	mk.On[ri*mk.NSend+si] = on
}

// N returns the number of connections present
func (mk *Mask) N() int {
	n := 0
	for _, on := range mk.On {
		if on {
			n++
		}
	}
	return n
}

// Apply zeros every entry of w, which must be NRecv x NSend, where the
// connection is absent.
func (mk *Mask) Apply(w *mat.Dense) {
	raw := w.RawMatrix()
	for ri := 0; ri < mk.NRecv; ri++ {
		row := raw.Data[ri*raw.Stride : ri*raw.Stride+mk.NSend]
		on := mk.On[ri*mk.NSend : (ri+1)*mk.NSend]
		for si := range row {
			if !on[si] {
				row[si] = 0
			}
		}
	}
}

// Clone returns a deep copy
func (mk *Mask) Clone() *Mask {
	cp := &Mask{NRecv: mk.NRecv, NSend: mk.NSend}
	cp.On = make([]bool, len(mk.On))
	copy(cp.On, mk.On)
	return cp
}
