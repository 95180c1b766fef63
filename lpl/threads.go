// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpl

import "sync"

// forBatch calls fun on every batch row, using threaded (go routine worker)
// computation if NThreads > 1, and otherwise iterating in the current thread.
// Each call must only write to state of its own row.
func (ly *Layer) forBatch(fun func(b int)) {
	nb := ly.BatchSize
	nt := ly.NThreads
	if nt > nb {
		nt = nb
	}
	if nt <= 1 {
		for b := 0; b < nb; b++ {
			fun(b)
		}
		return
	}
	var wg sync.WaitGroup
	per := (nb + nt - 1) / nt
	for st := 0; st < nb; st += per {
		ed := st + per
		if ed > nb {
			ed = nb
		}
		wg.Add(1)
		go func(st, ed int) {
			defer wg.Done()
			for b := st; b < ed; b++ {
				fun(b)
			}
		}(st, ed)
	}
	wg.Wait()
}
