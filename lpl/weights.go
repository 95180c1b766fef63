// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpl

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/emer/emergent/weights"
	"github.com/goki/ki/indent"
)

// InputName is the name of the external input in weights files
const InputName = "Input"

// SendName returns the name of the layer or input sending to ly
func (ly *Layer) SendName() string {
	if pl := ly.PrevLayer(); pl != nil {
		return pl.Name()
	}
	return InputName
}

// WriteWtsJSON writes the weights of the network from the receiver-side
// perspective in a JSON text format.  Only connections present in the
// sparsity masks are written.  Weights are written at float32 precision,
// the precision of weights.Prjn, so a read back restores float32(w).
func (nt *Network) WriteWtsJSON(w io.Writer) error {
	depth := 0
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Network\": %q,\n", nt.Nm)))
	if len(nt.MetaData) > 0 {
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("\"MetaData\": {\n"))
		depth++
		mks := make([]string, 0, len(nt.MetaData))
		for mk := range nt.MetaData {
			mks = append(mks, mk)
		}
		sort.Strings(mks)
		for i, mk := range mks {
			w.Write(indent.TabBytes(depth))
			w.Write([]byte(fmt.Sprintf("%q: %q", mk, nt.MetaData[mk])))
			if i < len(mks)-1 {
				w.Write([]byte(",\n"))
			} else {
				w.Write([]byte("\n"))
			}
		}
		depth--
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("},\n"))
	}
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("\"Layers\": [\n"))
	depth++
	nl := len(nt.Layers)
	for li, ly := range nt.Layers {
		ly.WriteWtsJSON(w, depth)
		if li == nl-1 {
			w.Write([]byte("\n"))
		} else {
			w.Write([]byte(",\n"))
		}
	}
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("]\n"))
	depth--
	w.Write(indent.TabBytes(depth))
	_, err := w.Write([]byte("}\n"))
	return err
}

// WriteWtsJSON writes the weights of this layer, leaving the closing
// brace unterminated for the network to add , or \n.
func (ly *Layer) WriteWtsJSON(w io.Writer, depth int) {
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Layer\": %q,\n", ly.Name())))
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("\"Prjns\": [\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"From\": %q,\n", ly.SendName())))
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("\"MetaData\": {\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"NInhib\": \"%d\"\n", ly.Conn.NInhib(ly.Size))))
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("},\n"))
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("\"Rs\": [\n"))
	depth++
	nr := ly.Size
	for ri := 0; ri < nr; ri++ {
		sis := make([]int, 0, ly.PrevSize)
		for si := 0; si < ly.PrevSize; si++ {
			if ly.SparseMask.IsOn(ri, si) {
				sis = append(sis, si)
			}
		}
		nc := len(sis)
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("{\n"))
		depth++
		w.Write(indent.TabBytes(depth))
		w.Write([]byte(fmt.Sprintf("\"Ri\": %v,\n", ri)))
		w.Write(indent.TabBytes(depth))
		w.Write([]byte(fmt.Sprintf("\"N\": %v,\n", nc)))
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("\"Si\": [ "))
		for ci, si := range sis {
			w.Write([]byte(fmt.Sprintf("%v", si)))
			if ci == nc-1 {
				w.Write([]byte(" "))
			} else {
				w.Write([]byte(", "))
			}
		}
		w.Write([]byte("],\n"))
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("\"Wt\": [ "))
		for ci, si := range sis {
			w.Write([]byte(strconv.FormatFloat(ly.Wts.At(ri, si), 'g', -1, 32)))
			if ci == nc-1 {
				w.Write([]byte(" "))
			} else {
				w.Write([]byte(", "))
			}
		}
		w.Write([]byte("]\n"))
		depth--
		w.Write(indent.TabBytes(depth))
		if ri == nr-1 {
			w.Write([]byte("}\n"))
		} else {
			w.Write([]byte("},\n"))
		}
	}
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("]\n"))
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("}\n"))
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("]\n"))
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("}")) // note: leave unterminated as outer loop needs to add , or just \n depending
}

// ReadWtsJSON reads network weights from the receiver-side perspective
// in a JSON text format.  Reads entire file into a temporary weights.Network
// structure that is then passed to Layers using SetWts method.
func (nt *Network) ReadWtsJSON(r io.Reader) error {
	nw, err := weights.NetReadJSON(r)
	if err != nil {
		return err
	}
	return nt.SetWts(nw)
}

// SetWts sets the weights for this network from weights.Network decoded values
func (nt *Network) SetWts(nw *weights.Network) error {
	var err error
	if nw.Network != "" {
		nt.Nm = nw.Network
	}
	for mk, mv := range nw.MetaData {
		nt.MetaData[mk] = mv
	}
	for li := range nw.Layers {
		lw := &nw.Layers[li]
		ly := nt.LayerByName(lw.Layer)
		if ly == nil {
			err = fmt.Errorf("lpl: SetWts: layer %q not found: %w", lw.Layer, ErrShapeMismatch)
			continue
		}
		if er := ly.SetWts(lw); er != nil {
			err = er
		}
	}
	return err
}

// SetWts sets the weights of this layer from weights.Layer decoded values.
// Values for connections absent from the sparsity mask are an error, and
// the connectivity constraints are re-applied after setting.
func (ly *Layer) SetWts(lw *weights.Layer) error {
	var err error
	for pi := range lw.Prjns {
		pw := &lw.Prjns[pi]
		if pw.From != ly.SendName() {
			err = fmt.Errorf("lpl: %s: no projection from %q: %w", ly.Name(), pw.From, ErrShapeMismatch)
			continue
		}
		for i := range pw.Rs {
			pr := &pw.Rs[i]
			if pr.Ri < 0 || pr.Ri >= ly.Size {
				err = fmt.Errorf("lpl: %s: receiving unit %d out of range: %w", ly.Name(), pr.Ri, ErrShapeMismatch)
				continue
			}
			for ci, si := range pr.Si {
				if si < 0 || si >= ly.PrevSize || !ly.SparseMask.IsOn(pr.Ri, si) || ci >= len(pr.Wt) {
					err = fmt.Errorf("lpl: %s: no connection %d -> %d: %w", ly.Name(), si, pr.Ri, ErrShapeMismatch)
					continue
				}
				ly.Wts.Set(pr.Ri, si, float64(pr.Wt[ci]))
			}
		}
	}
	ly.constrainWts()
	return err
}
