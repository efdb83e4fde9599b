// Package regression implements linear regression trained by
// minimizing the mean squared error with stochastic gradient descent.
package regression

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/dataset"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/network"
)

// Regression implements a linear regression model. The model predicts
// f(x) = w^T x + b for each example and is trained by minimizing the
// mean squared error
//
//	(f(x) - y)^2
//
// over shuffled mini-batches. Features should be normalized before
// training, for example with dataset.Normalize.
type Regression struct {
	model  network.NeuralNet
	vm     G.VM
	solver G.Solver

	targets *G.Node
	costVal G.Value

	config Config
	rng    *rand.Rand
}

// New creates and returns a new linear regression model for examples
// with the argument number of features
func New(features int, config Config, seed int64) (*Regression, error) {
	if features < 1 {
		return nil, fmt.Errorf("regression: features must be positive, "+
			"got %v", features)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("regression: invalid configuration: %v", err)
	}

	g := G.NewGraph()
	model, err := network.NewSingleHeadMLP(features, config.BatchSize, g,
		nil, nil, config.InitWFn.InitWFn(), nil)
	if err != nil {
		return nil, fmt.Errorf("regression: could not create linear "+
			"model: %v", err)
	}

	r := &Regression{
		model:  model,
		solver: config.Solver,
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}
	if err := r.compile(); err != nil {
		return nil, fmt.Errorf("regression: %v", err)
	}
	return r, nil
}

// compile adds the squared error loss to the model's graph and creates
// the VM used for training
func (r *Regression) compile() error {
	g := r.model.Graph()
	batchSize := r.model.BatchSize()

	r.targets = G.NewVector(g, tensor.Float64, G.WithShape(batchSize),
		G.WithName("targets"))

	predictions := G.Must(G.Ravel(r.model.Prediction()[0]))
	errors := G.Must(G.Sub(predictions, r.targets))
	cost := G.Must(G.Mean(G.Must(G.Square(errors))))
	G.Read(cost, &r.costVal)

	if _, err := G.Grad(cost, r.model.Learnables()...); err != nil {
		return fmt.Errorf("could not compute gradient: %v", err)
	}

	r.vm = G.NewTapeMachine(g, G.BindDualValues(r.model.Learnables()...))
	return nil
}

// Fit trains the model on the argument dataset. The mean squared error
// of each epoch is returned.
func (r *Regression) Fit(data *dataset.Dataset) ([]float64, error) {
	if data.Features() != r.model.Features() {
		return nil, fmt.Errorf("fit: model takes %v features but dataset "+
			"has %v", r.model.Features(), data.Features())
	}
	if data.Len() < r.config.BatchSize {
		return nil, fmt.Errorf("fit: dataset has %v examples but batches "+
			"need %v", data.Len(), r.config.BatchSize)
	}

	losses := make([]float64, r.config.Epochs)
	for epoch := 0; epoch < r.config.Epochs; epoch++ {
		batches := data.Batches(r.config.BatchSize, r.rng)
		total := 0.0
		for _, batch := range batches {
			loss, err := r.step(data, batch)
			if err != nil {
				return nil, fmt.Errorf("fit: %v", err)
			}
			total += loss
		}
		losses[epoch] = total / float64(len(batches))
	}
	return losses, nil
}

// step performs a single gradient step on the rows of data with the
// argument indices, returning the batch loss
func (r *Regression) step(data *dataset.Dataset, batch []int) (float64,
	error) {
	if err := r.model.SetInput(data.RawFeatures(batch)); err != nil {
		return 0, fmt.Errorf("could not set features: %v", err)
	}

	targets := tensor.New(
		tensor.WithBacking(data.RawLabels(batch)),
		tensor.WithShape(len(batch)),
	)
	if err := G.Let(r.targets, targets); err != nil {
		return 0, fmt.Errorf("could not set targets: %v", err)
	}

	if err := r.vm.RunAll(); err != nil {
		return 0, fmt.Errorf("could not run forward pass: %v", err)
	}
	loss := r.costVal.Data().(float64)

	if err := r.solver.Step(r.model.Model()); err != nil {
		return 0, fmt.Errorf("could not perform gradient step: %v", err)
	}
	r.vm.Reset()

	return loss, nil
}

// Predict returns the value predicted for each row of features
func (r *Regression) Predict(features *mat.Dense) ([]float64, error) {
	rows, cols := features.Dims()
	if cols != r.model.Features() {
		return nil, fmt.Errorf("predict: model takes %v features but "+
			"input has %v", r.model.Features(), cols)
	}

	model, err := r.model.CloneWithBatch(rows)
	if err != nil {
		return nil, fmt.Errorf("predict: could not clone model: %v", err)
	}

	input := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		input = append(input, features.RawRowView(i)...)
	}
	if err := model.SetInput(input); err != nil {
		return nil, fmt.Errorf("predict: could not set features: %v", err)
	}

	vm := G.NewTapeMachine(model.Graph())
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		return nil, fmt.Errorf("predict: could not run forward pass: %v",
			err)
	}

	predictions := model.Output()[0].Data().([]float64)
	return append([]float64(nil), predictions...), nil
}

// MSE returns the mean squared error of the model on the dataset
func (r *Regression) MSE(data *dataset.Dataset) (float64, error) {
	predictions, err := r.Predict(data.FeatureMatrix())
	if err != nil {
		return 0, fmt.Errorf("mse: %v", err)
	}

	total := 0.0
	for i, target := range data.Labels() {
		diff := predictions[i] - target
		total += diff * diff
	}
	return total / float64(data.Len()), nil
}

// Network returns the linear model
func (r *Regression) Network() network.NeuralNet {
	return r.model
}

// Close cleans the resources of the model
func (r *Regression) Close() error {
	return r.vm.Close()
}

// GobEncode implements the gob.GobEncoder interface
func (r *Regression) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(&r.model); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode model: %v", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The weights of
// the encoded model are copied into the receiver, which must have been
// created with New.
func (r *Regression) GobDecode(in []byte) error {
	if r.model == nil {
		return fmt.Errorf("gobdecode: cannot decode into a model not " +
			"created with New")
	}

	dec := gob.NewDecoder(bytes.NewReader(in))

	var model network.NeuralNet
	if err := dec.Decode(&model); err != nil {
		return fmt.Errorf("gobdecode: could not decode model: %v", err)
	}
	if err := r.model.Set(model); err != nil {
		return fmt.Errorf("gobdecode: could not copy model weights: %v", err)
	}
	return nil
}
