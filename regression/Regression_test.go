package regression

import (
	"math"
	"math/rand"
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
	sol, err := solver.NewVanilla(0.05, 1, -1.0)
	if err != nil {
		t.Fatal(err)
	}

	return Config{
		InitWFn:   init,
		Solver:    sol,
		Epochs:    epochs,
		BatchSize: 8,
	}
}

// linearData returns a dataset whose targets are an exact linear
// function of the features, y = 2 x1 - 3 x2 + 1
func linearData(t *testing.T, examples int) *dataset.Dataset {
	t.Helper()

	rng := rand.New(rand.NewSource(7))
	features := make([]float64, 0, 2*examples)
	targets := make([]float64, examples)
	for i := 0; i < examples; i++ {
		x1 := rng.NormFloat64()
		x2 := rng.NormFloat64()
		features = append(features, x1, x2)
		targets[i] = 2*x1 - 3*x2 + 1
	}

	data, err := dataset.New(mat.NewDense(examples, 2, features), targets)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// TestFitLinear ensures training recovers an exact linear relation.
func TestFitLinear(t *testing.T) {
	data := linearData(t, 64)

	model, err := New(data.Features(), newTestConfig(t, 200), 42)
	if err != nil {
		t.Fatal(err)
	}
	defer model.Close()

	losses, err := model.Fit(data)
	if err != nil {
		t.Fatal(err)
	}
	if losses[len(losses)-1] >= losses[0] {
		t.Errorf("expected the loss to decrease, got first %v last %v",
			losses[0], losses[len(losses)-1])
	}

	mse, err := model.MSE(data)
	if err != nil {
		t.Fatal(err)
	}
	if mse > 0.01 {
		t.Errorf("expected a near-zero error on noiseless data, got "+
			"MSE %v", mse)
	}
}

// TestFitRecoversCoefficients ensures the learned weights approach
// the generating coefficients on noiseless data.
func TestFitRecoversCoefficients(t *testing.T) {
	data := linearData(t, 64)

	model, err := New(data.Features(), newTestConfig(t, 500), 42)
	if err != nil {
		t.Fatal(err)
	}
	defer model.Close()
	if _, err := model.Fit(data); err != nil {
		t.Fatal(err)
	}

	weights := model.Network().Learnables()[0].Value().Data().([]float64)
	bias := model.Network().Learnables()[1].Value().Data().([]float64)

	expected := []float64{2.0, -3.0}
	for i, weight := range weights {
		if math.Abs(weight-expected[i]) > 0.05 {
			t.Errorf("expected weight %v to be near %v, got %v", i,
				expected[i], weight)
		}
	}
	if math.Abs(bias[0]-1.0) > 0.05 {
		t.Errorf("expected bias near 1.0, got %v", bias[0])
	}
}

// TestGobRoundTrip ensures that a decoded model predicts the same
// values as the encoded one.
func TestGobRoundTrip(t *testing.T) {
	data := linearData(t, 32)
	config := newTestConfig(t, 50)

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
			t.Errorf("expected prediction %v to be %v, got %v", i,
				expected[i], got[i])
		}
	}
}

// TestFitSmallDataset ensures datasets smaller than a batch are
// rejected.
func TestFitSmallDataset(t *testing.T) {
	data := linearData(t, 4)

	model, err := New(data.Features(), newTestConfig(t, 1), 42)
	if err != nil {
		t.Fatal(err)
	}
	defer model.Close()

	if _, err := model.Fit(data); err == nil {
		t.Error("expected an error for a dataset smaller than one batch")
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
	config.InitWFn = nil
	if _, err := New(2, config, 42); err == nil {
		t.Error("expected an error for a missing initializer")
	}
}
