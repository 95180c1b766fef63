// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpl

// lpl.Time contains the timing state and counters for running a network
type Time struct {

	// accumulated amount of simulated time the network has been running,
	// in units of Dt.
	Time float64

	// timestep counter within the current batch sequence
	Step int

	// total timestep count, incrementing continuously from whenever
	// it was last reset.
	StepTot int

	// index of the current batch within the epoch
	Batch int

	// current epoch
	Epoch int

	// amount of time to increment per timestep.
	Dt float64 `def:"1"`
}

// NewTime returns a new Time struct with default parameters
func NewTime() *Time {
	tm := &Time{}
	tm.Defaults()
	return tm
}

// Defaults sets default values
func (tm *Time) Defaults() {
	tm.Dt = 1
}

// Reset resets the counters all back to zero
func (tm *Time) Reset() {
	tm.Time = 0
	tm.Step = 0
	tm.StepTot = 0
	tm.Batch = 0
	tm.Epoch = 0
	if tm.Dt == 0 {
		tm.Defaults()
	}
}

// BatchStart starts a new batch sequence
func (tm *Time) BatchStart(batch int) {
	tm.Batch = batch
	tm.Step = 0
}

// EpochStart starts a new epoch
func (tm *Time) EpochStart(epoch int) {
	tm.Epoch = epoch
	tm.Batch = 0
	tm.Step = 0
}

// StepInc increments at the timestep level
func (tm *Time) StepInc() {
	tm.Step++
	tm.StepTot++
	tm.Time += tm.Dt
}
