// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpl

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// UseBLAS sets the BLAS implementation used for all matrix products,
// process-wide.  The default is the pure Go gonum implementation.
// It must not be called while a network is processing.
func UseBLAS(impl blas.Float64) {
	blas64.Use(impl)
}

// BLAS returns the BLAS implementation currently in use
func BLAS() blas.Float64 {
	return blas64.Implementation()
}
