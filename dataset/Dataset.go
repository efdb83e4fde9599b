// Package dataset provides containers for supervised learning data
package dataset

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Dataset holds a matrix of features together with one label per row.
// Rows are examples and columns are features.
type Dataset struct {
	features *mat.Dense
	labels   []float64
}

// New creates and returns a new Dataset. The number of rows of the
// features matrix must equal the number of labels.
func New(features *mat.Dense, labels []float64) (*Dataset, error) {
	rows, _ := features.Dims()
	if rows != len(labels) {
		return nil, fmt.Errorf("new: number of feature rows must match "+
			"number of labels\n\trows(%v)\n\tlabels(%v)", rows, len(labels))
	}
	return &Dataset{features: features, labels: labels}, nil
}

// Len returns the number of examples in the Dataset
func (d *Dataset) Len() int {
	rows, _ := d.features.Dims()
	return rows
}

// Features returns the number of features of each example
func (d *Dataset) Features() int {
	_, cols := d.features.Dims()
	return cols
}

// FeatureMatrix returns the underlying features matrix
func (d *Dataset) FeatureMatrix() *mat.Dense {
	return d.features
}

// Labels returns the labels of the Dataset
func (d *Dataset) Labels() []float64 {
	return d.labels
}

// RawFeatures returns the features of the rows with the argument
// indices, flattened in row major order
func (d *Dataset) RawFeatures(indices []int) []float64 {
	cols := d.Features()
	raw := make([]float64, 0, len(indices)*cols)
	for _, row := range indices {
		raw = append(raw, d.features.RawRowView(row)...)
	}
	return raw
}

// RawLabels returns the labels of the rows with the argument indices
func (d *Dataset) RawLabels(indices []int) []float64 {
	labels := make([]float64, len(indices))
	for i, row := range indices {
		labels[i] = d.labels[row]
	}
	return labels
}

// Normalize normalizes each feature column to zero mean and unit
// variance. Columns with zero variance are left centred only.
func (d *Dataset) Normalize() {
	rows, cols := d.features.Dims()
	column := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(column, j, d.features)
		mean, stddev := stat.MeanStdDev(column, nil)
		for i := 0; i < rows; i++ {
			value := d.features.At(i, j) - mean
			if stddev > 0 {
				value /= stddev
			}
			d.features.Set(i, j, value)
		}
	}
}

// Batches returns the row indices of the Dataset grouped into batches
// of the argument size, in random order. Examples that do not fill a
// final batch are dropped.
func (d *Dataset) Batches(size int, rng *rand.Rand) [][]int {
	indices := rng.Perm(d.Len())

	numBatches := d.Len() / size
	batches := make([][]int, 0, numBatches)
	for i := 0; i < numBatches; i++ {
		batches = append(batches, indices[i*size:(i+1)*size])
	}
	return batches
}

// Split partitions the Dataset into two datasets, the first holding
// approximately frac of the examples. Examples are assigned at random.
func (d *Dataset) Split(frac float64, rng *rand.Rand) (*Dataset, *Dataset,
	error) {
	if frac <= 0 || frac >= 1 {
		return nil, nil, fmt.Errorf("split: frac must be in (0, 1) but "+
			"got %v", frac)
	}

	indices := rng.Perm(d.Len())
	cut := int(frac * float64(d.Len()))
	return d.subset(indices[:cut]), d.subset(indices[cut:]), nil
}

// subset returns a new Dataset of the rows with the argument indices
func (d *Dataset) subset(indices []int) *Dataset {
	cols := d.Features()
	features := mat.NewDense(len(indices), cols, d.RawFeatures(indices))
	return &Dataset{features: features, labels: d.RawLabels(indices)}
}
