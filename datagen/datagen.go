// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package datagen generates the two-cluster sequential dataset used to check
that a single LPL unit learns to track the slowly changing input dimension
and to ignore the noisy one.

Each sample is a sequence of 2-D points.  The x coordinate is drawn around
the center of the current cluster, and the cluster switches rarely; the y
coordinate is uniform noise.  Both columns are min-max normalized over the
whole dataset.
*/
package datagen

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DataSize is the number of input dimensions: x and y
const DataSize = 2

// ErrBatch is returned for an invalid batch request
var ErrBatch = errors.New("invalid batch")

// Zenke2A are the parameters of the two-cluster sequential data
type Zenke2A struct {
	NSamples   int     `yaml:"n_samples" def:"5" min:"1" desc:"number of independent sequences"`
	NTimesteps int     `yaml:"n_timesteps" def:"100" min:"1" desc:"number of points in each sequence"`
	NClusters  int     `yaml:"n_clusters" def:"2" min:"1" desc:"number of clusters along x"`
	PSwitch    float64 `yaml:"p_switch" def:"0.02" min:"0" max:"1" desc:"probability of switching to the next cluster at each point"`
	ClusterSep float64 `yaml:"cluster_sep" def:"2" desc:"distance between cluster centers along x"`
	Spread     float64 `yaml:"spread" def:"0.1" min:"0" desc:"standard deviation of x around the cluster center"`
}

func (zp *Zenke2A) Defaults() {
	zp.NSamples = 5
	zp.NTimesteps = 100
	zp.NClusters = 2
	zp.PSwitch = 0.02
	zp.ClusterSep = 2
	zp.Spread = 0.1
}

// Generate draws a dataset from src.  Samples are generated in order, each
// starting in a random cluster.
func (zp *Zenke2A) Generate(src rand.Source) *Dataset {
	rng := rand.New(src)
	ds := NewDataset(zp.NSamples, zp.NTimesteps)
	nd := distuv.Normal{Mu: 0, Sigma: zp.Spread, Src: rng}
	for s := 0; s < zp.NSamples; s++ {
		cl := rng.Intn(zp.NClusters)
		for t := 0; t < zp.NTimesteps; t++ {
			if rng.Float64() < zp.PSwitch {
				cl = (cl + 1) % zp.NClusters
			}
			ri := s*zp.NTimesteps + t
			ds.Clusters[ri] = cl
			ds.Vals.Set(ri, 0, float64(cl)*zp.ClusterSep+nd.Rand())
			ds.Vals.Set(ri, 1, rng.Float64())
		}
	}
	ds.Normalize()
	return ds
}

// Dataset holds NSamples sequences of NTimesteps points.  It supplies
// batches of BatchSize sequences, timestep by timestep.
type Dataset struct {
	NSamples   int        `desc:"number of sequences"`
	NTimesteps int        `desc:"number of points in each sequence"`
	BatchSize  int        `desc:"number of sequences in each batch"`
	Vals       *mat.Dense `desc:"points, (NSamples * NTimesteps) x DataSize, sample-major"`
	Clusters   []int      `desc:"cluster of each point, -1 if unknown"`
}

// NewDataset returns a zero dataset with a batch size of 1
func NewDataset(nSamples, nTimesteps int) *Dataset {
	n := nSamples * nTimesteps
	ds := &Dataset{NSamples: nSamples, NTimesteps: nTimesteps, BatchSize: 1}
	ds.Vals = mat.NewDense(n, DataSize, nil)
	ds.Clusters = make([]int, n)
	for i := range ds.Clusters {
		ds.Clusters[i] = -1
	}
	return ds
}

// Normalize rescales each column to [0, 1].  Constant columns become 0.
func (ds *Dataset) Normalize() {
	n, nc := ds.Vals.Dims()
	col := make([]float64, n)
	for c := 0; c < nc; c++ {
		mat.Col(col, c, ds.Vals)
		mn, mx := floats.Min(col), floats.Max(col)
		floats.AddConst(-mn, col)
		if mx > mn {
			floats.Scale(1/(mx-mn), col)
		}
		ds.Vals.SetCol(c, col)
	}
}

// Point returns the point of sample s at timestep t
func (ds *Dataset) Point(s, t int) []float64 {
	return ds.Vals.RawRowView(s*ds.NTimesteps + t)
}

// NumBatches returns the number of full batches.  Samples left over
// after the last full batch are not used.
func (ds *Dataset) NumBatches() int {
	if ds.BatchSize <= 0 {
		return 0
	}
	return ds.NSamples / ds.BatchSize
}

// Batch returns batch i as a sequence of NTimesteps inputs, each
// BatchSize x DataSize, row b holding sample i * BatchSize + b.
func (ds *Dataset) Batch(i int) ([]*mat.Dense, error) {
	if i < 0 || i >= ds.NumBatches() {
		return nil, fmt.Errorf("datagen: batch %d of %d: %w", i, ds.NumBatches(), ErrBatch)
	}
	seq := make([]*mat.Dense, ds.NTimesteps)
	for t := range seq {
		in := mat.NewDense(ds.BatchSize, DataSize, nil)
		for b := 0; b < ds.BatchSize; b++ {
			in.SetRow(b, ds.Point(i*ds.BatchSize+b, t))
		}
		seq[t] = in
	}
	return seq, nil
}
