// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpl

import (
	"errors"

	"github.com/emer/lpl/filter"
)

var (
	// ErrConfiguration is returned for settings that violate their constraints.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrShapeMismatch is returned when an input or state matrix does not have
	// the dims implied by the settings.
	ErrShapeMismatch = filter.ErrShapeMismatch

	// ErrNoInput is returned when the first layer is run without external input.
	ErrNoInput = errors.New("no input")

	// ErrUnexpectedInput is returned when external input is given to a layer
	// other than the first, which reads the spikes of the previous layer.
	ErrUnexpectedInput = errors.New("unexpected external input")
)
