// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package lpl is the overall repository for spiking networks trained with
latent predictive learning (LPL), a local three-term plasticity rule,
implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is organized
into the following sub-repositories:

* lpl: the core network: layers of leaky integrate-and-fire units, the
per-timestep update engine and the local weight update.

* filter: causal temporal filters, moving averages and variances, and the
bounded history of recent values that the learning rule reads.

* lif: the leaky integrate-and-fire neuron with adaptive threshold.

* fsig: the fast-sigmoid surrogate nonlinearity and its derivative.

* conn: excitatory / inhibitory labels and sparse, distance-biased
connectivity masks.

* datagen: the two-cluster sequential dataset used to check that a single
unit learns to track the slowly changing input dimension.

* examples: these actually compile into runnable programs.  examples/zenke2a
trains a network on the two-cluster data and reports the learned weights.
*/
package lpl
