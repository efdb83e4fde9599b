package svm

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/dataset"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/initwfn"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/solver"
)

// newTestConfig returns a configuration for training small test
// problems
func newTestConfig(t *testing.T, epochs int) Config {
	t.Helper()

	init, err := initwfn.NewZeroes()
	if err != nil {
		t.Fatal(err)
	}
	sol, err := solver.NewVanilla(0.1, 1, -1.0)
	if err != nil {
		t.Fatal(err)
	}

	return Config{
		InitWFn:   init,
		Solver:    sol,
		Epochs:    epochs,
		BatchSize: 4,
	}
}

// separableData returns a linearly separable binary dataset. Examples
// with a positive first feature are labelled +1.
func separableData(t *testing.T) *dataset.Dataset {
	t.Helper()

	features := []float64{
		2.0, 0.5,
		1.5, -1.0,
		3.0, 2.0,
		0.5, 1.5,
		2.5, -0.5,
		1.0, 0.0,
		-2.0, 0.5,
		-1.5, -1.0,
		-3.0, 2.0,
		-0.5, 1.5,
		-2.5, -0.5,
		-1.0, 0.0,
	}
	labels := []float64{1, 1, 1, 1, 1, 1, -1, -1, -1, -1, -1, -1}

	data, err := dataset.New(mat.NewDense(12, 2, features), labels)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// TestFitSeparable ensures training separates a linearly separable
// dataset and that the training loss decreases.
func TestFitSeparable(t *testing.T) {
	data := separableData(t)

	machine, err := New(data.Features(), newTestConfig(t, 100), 42)
	if err != nil {
		t.Fatal(err)
	}
	defer machine.Close()

	losses, err := machine.Fit(data)
	if err != nil {
		t.Fatal(err)
	}

	if losses[len(losses)-1] >= losses[0] {
		t.Errorf("expected the loss to decrease, got first %v last %v",
			losses[0], losses[len(losses)-1])
	}

	accuracy, err := machine.Accuracy(data)
	if err != nil {
		t.Fatal(err)
	}
	if accuracy != 1.0 {
		t.Errorf("expected the separable dataset to be fully separated, "+
			"got accuracy %v", accuracy)
	}
}

// TestClassifySigns ensures Classify returns only the labels -1
// and +1.
func TestClassifySigns(t *testing.T) {
	data := separableData(t)

	machine, err := New(data.Features(), newTestConfig(t, 5), 42)
	if err != nil {
		t.Fatal(err)
	}
	defer machine.Close()

	if _, err := machine.Fit(data); err != nil {
		t.Fatal(err)
	}

	classes, err := machine.Classify(data.FeatureMatrix())
	if err != nil {
		t.Fatal(err)
	}
	for i, class := range classes {
		if class != 1.0 && class != -1.0 {
			t.Errorf("expected class %v to be -1 or +1, got %v", i, class)
		}
	}
}

// TestGobRoundTrip ensures that a decoded SVM predicts the same
// margins as the encoded one.
func TestGobRoundTrip(t *testing.T) {
	data := separableData(t)
	config := newTestConfig(t, 20)

	trained, err := New(data.Features(), config, 42)
	if err != nil {
		t.Fatal(err)
	}
	defer trained.Close()
	if _, err := trained.Fit(data); err != nil {
		t.Fatal(err)
	}

	encoded, err := trained.GobEncode()
	if err != nil {
		t.Fatal(err)
	}

	restored, err := New(data.Features(), config, 13)
	if err != nil {
		t.Fatal(err)
	}
	defer restored.Close()
	if err := restored.GobDecode(encoded); err != nil {
		t.Fatal(err)
	}

	expected, err := trained.Predict(data.FeatureMatrix())
	if err != nil {
		t.Fatal(err)
	}
	got, err := restored.Predict(data.FeatureMatrix())
	if err != nil {
		t.Fatal(err)
	}

	for i := range expected {
		if math.Abs(expected[i]-got[i]) > 1e-10 {
			t.Errorf("expected margin %v to be %v, got %v", i, expected[i],
				got[i])
		}
	}
}

// TestRegularizationShrinksWeights ensures the L2 penalty results in
// smaller weights than unregularized training.
func TestRegularizationShrinksWeights(t *testing.T) {
	data := separableData(t)

	plain, err := New(data.Features(), newTestConfig(t, 100), 42)
	if err != nil {
		t.Fatal(err)
	}
	defer plain.Close()
	if _, err := plain.Fit(data); err != nil {
		t.Fatal(err)
	}

	config := newTestConfig(t, 100)
	config.Regularization = 0.5
	penalized, err := New(data.Features(), config, 42)
	if err != nil {
		t.Fatal(err)
	}
	defer penalized.Close()
	if _, err := penalized.Fit(data); err != nil {
		t.Fatal(err)
	}

	if norm(t, penalized) >= norm(t, plain) {
		t.Errorf("expected the L2 penalty to shrink the weights, got "+
			"norm %v without and %v with the penalty", norm(t, plain),
			norm(t, penalized))
	}
}

// norm returns the squared norm of a machine's weights
func norm(t *testing.T, machine *SVM) float64 {
	t.Helper()

	weights := machine.Network().Learnables()[0].Value().Data().([]float64)
	total := 0.0
	for _, weight := range weights {
		total += weight * weight
	}
	return total
}

// TestPredictDimensionMismatch ensures mismatched feature counts are
// rejected.
func TestPredictDimensionMismatch(t *testing.T) {
	data := separableData(t)

	machine, err := New(data.Features(), newTestConfig(t, 1), 42)
	if err != nil {
		t.Fatal(err)
	}
	defer machine.Close()

	wide := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	if _, err := machine.Predict(wide); err == nil {
		t.Error("expected an error for mismatched feature counts")
	}
}

// TestConfigValidation ensures invalid configurations are rejected.
func TestConfigValidation(t *testing.T) {
	config := newTestConfig(t, 10)
	config.Epochs = 0
	if _, err := New(2, config, 42); err == nil {
		t.Error("expected an error for non-positive epochs")
	}

	config = newTestConfig(t, 10)
	config.BatchSize = 0
	if _, err := New(2, config, 42); err == nil {
		t.Error("expected an error for a non-positive batch size")
	}

	config = newTestConfig(t, 10)
	config.Regularization = -1.0
	if _, err := New(2, config, 42); err == nil {
		t.Error("expected an error for a negative regularization")
	}

	config = newTestConfig(t, 10)
	config.Solver = nil
	if _, err := New(2, config, 42); err == nil {
		t.Error("expected an error for a missing solver")
	}
}
