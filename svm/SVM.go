// Package svm implements a linear support vector machine trained by
// minimizing the hinge loss with stochastic gradient descent.
package svm

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

// SVM implements a linear maximum margin classifier. The classifier
// predicts a margin f(x) = w^T x + b for each example and is trained
// on labels in {-1, +1} by minimizing the mean hinge loss
//
//	max(0, 1 - y * f(x))
//
// over shuffled mini-batches, optionally with an L2 penalty on the
// weights.
type SVM struct {
	model  network.NeuralNet
	vm     G.VM
	solver G.Solver

	labels  *G.Node
	costVal G.Value

	config Config
	rng    *rand.Rand
}

// New creates and returns a new linear SVM for examples with the
// argument number of features
func New(features int, config Config, seed int64) (*SVM, error) {
	if features < 1 {
		return nil, fmt.Errorf("svm: features must be positive, got %v",
			features)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("svm: invalid configuration: %v", err)
	}

	g := G.NewGraph()
	model, err := network.NewSingleHeadMLP(features, config.BatchSize, g,
		nil, nil, config.InitWFn.InitWFn(), nil)
	if err != nil {
		return nil, fmt.Errorf("svm: could not create linear model: %v", err)
	}

	s := &SVM{
		model:  model,
		solver: config.Solver,
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}
	if err := s.compile(); err != nil {
		return nil, fmt.Errorf("svm: %v", err)
	}
	return s, nil
}

// compile adds the hinge loss to the model's graph and creates the VM
// used for training
func (s *SVM) compile() error {
	g := s.model.Graph()
	batchSize := s.model.BatchSize()

	s.labels = G.NewVector(g, tensor.Float64, G.WithShape(batchSize),
		G.WithName("labels"))

	margins := G.Must(G.Ravel(s.model.Prediction()[0]))
	one := G.NewConstant(1.0)

	hinge := G.Must(G.HadamardProd(s.labels, margins))
	hinge = G.Must(G.Sub(one, hinge))
	hinge = G.Must(G.Rectify(hinge))
	cost := G.Must(G.Mean(hinge))

	if s.config.Regularization > 0 {
		// The weight matrix is the first learnable of the linear
		// model. The bias is not penalized.
		weights := s.model.Learnables()[0]
		penalty := G.Must(G.Sum(G.Must(G.Square(weights))))
		lambda := G.NewConstant(s.config.Regularization,
			G.WithName("regularization"))
		cost = G.Must(G.Add(cost, G.Must(G.Mul(lambda, penalty))))
	}
	G.Read(cost, &s.costVal)

	if _, err := G.Grad(cost, s.model.Learnables()...); err != nil {
		return fmt.Errorf("could not compute gradient: %v", err)
	}

	s.vm = G.NewTapeMachine(g, G.BindDualValues(s.model.Learnables()...))
	return nil
}

// Fit trains the SVM on the argument dataset, whose labels must be in
// {-1, +1}. The mean hinge loss of each epoch is returned.
func (s *SVM) Fit(data *dataset.Dataset) ([]float64, error) {
	if data.Features() != s.model.Features() {
		return nil, fmt.Errorf("fit: model takes %v features but dataset "+
			"has %v", s.model.Features(), data.Features())
	}
	if data.Len() < s.config.BatchSize {
		return nil, fmt.Errorf("fit: dataset has %v examples but batches "+
			"need %v", data.Len(), s.config.BatchSize)
	}

	losses := make([]float64, s.config.Epochs)
	for epoch := 0; epoch < s.config.Epochs; epoch++ {
		batches := data.Batches(s.config.BatchSize, s.rng)
		total := 0.0
		for _, batch := range batches {
			loss, err := s.step(data, batch)
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
func (s *SVM) step(data *dataset.Dataset, batch []int) (float64, error) {
	if err := s.model.SetInput(data.RawFeatures(batch)); err != nil {
		return 0, fmt.Errorf("could not set features: %v", err)
	}

	labels := tensor.New(
		tensor.WithBacking(data.RawLabels(batch)),
		tensor.WithShape(len(batch)),
	)
	if err := G.Let(s.labels, labels); err != nil {
		return 0, fmt.Errorf("could not set labels: %v", err)
	}

	if err := s.vm.RunAll(); err != nil {
		return 0, fmt.Errorf("could not run forward pass: %v", err)
	}
	loss := s.costVal.Data().(float64)

	if err := s.solver.Step(s.model.Model()); err != nil {
		return 0, fmt.Errorf("could not perform gradient step: %v", err)
	}
	s.vm.Reset()

	return loss, nil
}

// Predict returns the margin f(x) predicted for each row of features
func (s *SVM) Predict(features *mat.Dense) ([]float64, error) {
	rows, cols := features.Dims()
	if cols != s.model.Features() {
		return nil, fmt.Errorf("predict: model takes %v features but "+
			"input has %v", s.model.Features(), cols)
	}

	model, err := s.model.CloneWithBatch(rows)
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

	margins := model.Output()[0].Data().([]float64)
	return append([]float64(nil), margins...), nil
}

// Classify returns the class in {-1, +1} predicted for each row of
// features. Examples on the decision boundary are classified as +1.
func (s *SVM) Classify(features *mat.Dense) ([]float64, error) {
	margins, err := s.Predict(features)
	if err != nil {
		return nil, err
	}

	for i, margin := range margins {
		if margin < 0 {
			margins[i] = -1.0
		} else {
			margins[i] = 1.0
		}
	}
	return margins, nil
}

// Accuracy returns the fraction of examples in the dataset that the
// SVM classifies correctly
func (s *SVM) Accuracy(data *dataset.Dataset) (float64, error) {
	predicted, err := s.Classify(data.FeatureMatrix())
	if err != nil {
		return 0, fmt.Errorf("accuracy: %v", err)
	}

	correct := 0
	for i, label := range data.Labels() {
		if predicted[i] == label {
			correct++
		}
	}
	return float64(correct) / float64(data.Len()), nil
}

// Network returns the linear model of the SVM
func (s *SVM) Network() network.NeuralNet {
	return s.model
}

// Close cleans the resources of the SVM
func (s *SVM) Close() error {
	return s.vm.Close()
}

// GobEncode implements the gob.GobEncoder interface
func (s *SVM) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(&s.model); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode model: %v", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The weights of
// the encoded model are copied into the receiver, which must have been
// created with New.
func (s *SVM) GobDecode(in []byte) error {
	if s.model == nil {
		return fmt.Errorf("gobdecode: cannot decode into an SVM not " +
			"created with New")
	}

	dec := gob.NewDecoder(bytes.NewReader(in))

	var model network.NeuralNet
	if err := dec.Decode(&model); err != nil {
		return fmt.Errorf("gobdecode: could not decode model: %v", err)
	}
	if err := s.model.Set(model); err != nil {
		return fmt.Errorf("gobdecode: could not copy model weights: %v", err)
	}
	return nil
}
