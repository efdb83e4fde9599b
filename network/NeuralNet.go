// Package network provides feedforward neural networks built on
// Gorgonia computational graphs. Networks constructed by this package
// are used both as value function approximators and as linear models
// when given no hidden layers.
package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet implements a neural network on a Gorgonia computational
// graph. Before running the graph's VM, input should be set with
// SetInput. After the VM runs, Output returns the predictions of the
// network.
type NeuralNet interface {
	// Graph returns the computational graph the network is built on
	Graph() *G.ExprGraph

	// Clone clones the network to a new computational graph
	Clone() (NeuralNet, error)

	// CloneWithBatch clones the network to a new computational graph
	// with a new input batch size
	CloneWithBatch(int) (NeuralNet, error)

	// BatchSize returns the number of rows in the network's input
	BatchSize() int

	// Features returns the number of features in a single input row
	Features() int

	// Outputs returns the number of values each output layer predicts
	Outputs() int

	// OutputLayers returns the number of output layers of the network
	OutputLayers() int

	// SetInput sets the value of the network's input node. The input
	// is a flattened row-major matrix of BatchSize() rows and
	// Features() columns.
	SetInput([]float64) error

	// Set sets the weights of the network to those of another network
	Set(NeuralNet) error

	// Polyak sets the weights of the network to a Polyak average
	// between its current weights and those of another network
	Polyak(NeuralNet, float64) error

	// Learnables returns the nodes of learnable weights
	Learnables() G.Nodes

	// Model returns the learnable weights with their gradients
	Model() []G.ValueGrad

	// Output returns the values predicted by each output layer on the
	// last run of the graph's VM
	Output() []G.Value

	// Prediction returns the nodes of the computational graph that
	// hold the network's predictions
	Prediction() []*G.Node
}

// Layer is a single layer of a NeuralNet
type Layer interface {
	fwd(*G.Node) (*G.Node, error)
	CloneTo(g *G.ExprGraph) Layer

	Weights() *G.Node
	Bias() *G.Node
	Activation() *Activation
}
