// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package lpl provides the core of a spiking network trained with latent
predictive learning: an ordered sequence of layers of leaky integrate-and-fire
units, each receiving forward weights from the previous layer (the first
from the external input).

Each timestep, Network.ProcessTimestep runs Layer.Forward on every layer in
order, and then Layer.TrainSynapses on every layer in order.  The weight
update is local: a layer reads only its own state and the spikes, membrane
potentials and spike statistics of the layer immediately before it.

State is held in gonum dense matrices shaped (batch, units), and the batch
rows evolve independently.  With Settings.NThreads > 1 the per-row work is
split over goroutines, and results are identical for any number of threads.

Connectivity and initial weights are drawn from one generator seeded with
Settings.Seed, so networks built from the same settings are identical.
*/
package lpl
