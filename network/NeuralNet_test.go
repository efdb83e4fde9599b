package network

import (
	"math"
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func newTestNet(t *testing.T, features, batch, outputs int,
	init G.InitWFn) NeuralNet {
	t.Helper()

	g := G.NewGraph()
	net, err := NewMultiHeadMLP(features, batch, outputs, g, []int{5},
		[]bool{true}, init, []*Activation{ReLU()})
	if err != nil {
		t.Fatalf("could not construct network: %v", err)
	}
	return net
}

func forward(t *testing.T, net NeuralNet, input []float64) []float64 {
	t.Helper()

	if err := net.SetInput(input); err != nil {
		t.Fatalf("could not set input: %v", err)
	}
	vm := G.NewTapeMachine(net.Graph())
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatalf("could not run forward pass: %v", err)
	}
	defer vm.Reset()

	return net.Output()[0].Data().([]float64)
}

func TestMultiHeadMLPShapes(t *testing.T) {
	features, batch, outputs := 4, 3, 2
	net := newTestNet(t, features, batch, outputs, G.GlorotU(1.0))

	if net.Features() != features {
		t.Errorf("expected %v features, got %v", features, net.Features())
	}
	if net.BatchSize() != batch {
		t.Errorf("expected batch size %v, got %v", batch, net.BatchSize())
	}
	if net.Outputs() != outputs {
		t.Errorf("expected %v outputs, got %v", outputs, net.Outputs())
	}
	if net.OutputLayers() != 1 {
		t.Errorf("expected 1 output layer, got %v", net.OutputLayers())
	}

	out := forward(t, net, make([]float64, features*batch))
	if len(out) != batch*outputs {
		t.Errorf("expected %v predictions, got %v", batch*outputs, len(out))
	}
}

func TestCloneWithBatchPredictsSameValues(t *testing.T) {
	net := newTestNet(t, 3, 1, 2, G.GlorotN(1.0))

	cloned, err := net.CloneWithBatch(4)
	if err != nil {
		t.Fatalf("could not clone network: %v", err)
	}
	if cloned.BatchSize() != 4 {
		t.Errorf("expected batch size 4, got %v", cloned.BatchSize())
	}

	input := []float64{0.1, -0.5, 2.0}
	want := forward(t, net, input)

	batchInput := make([]float64, 0, 12)
	for i := 0; i < 4; i++ {
		batchInput = append(batchInput, input...)
	}
	got := forward(t, cloned, batchInput)

	for i := 0; i < 4; i++ {
		for j := range want {
			if math.Abs(got[i*len(want)+j]-want[j]) > 1e-12 {
				t.Errorf("clone prediction %v differs: want %v, got %v",
					i, want, got[i*len(want):(i+1)*len(want)])
			}
		}
	}
}

func TestSetCopiesWeights(t *testing.T) {
	source := newTestNet(t, 3, 1, 2, G.Ones())
	target := newTestNet(t, 3, 1, 2, G.Zeroes())

	if err := target.Set(source); err != nil {
		t.Fatalf("could not set weights: %v", err)
	}

	assertSameWeights(t, source, target)
}

func TestPolyakWithTauOneIsHardCopy(t *testing.T) {
	source := newTestNet(t, 3, 1, 2, G.Ones())
	target := newTestNet(t, 3, 1, 2, G.GlorotU(1.0))

	if err := target.Polyak(source, 1.0); err != nil {
		t.Fatalf("could not average weights: %v", err)
	}

	assertSameWeights(t, source, target)
}

func TestPolyakInterpolatesWeights(t *testing.T) {
	// With all-ones source, all-zeroes target, and tau = 0.25, every
	// weight of the target should become 0.25
	source := newTestNet(t, 3, 1, 2, G.Ones())
	target := newTestNet(t, 3, 1, 2, G.Zeroes())
	tau := 0.25

	if err := target.Polyak(source, tau); err != nil {
		t.Fatalf("could not average weights: %v", err)
	}

	for i, node := range target.Learnables() {
		sourceData := source.Learnables()[i].Value().(*tensor.Dense).
			Data().([]float64)
		data := node.Value().(*tensor.Dense).Data().([]float64)
		for j := range data {
			want := tau * sourceData[j]
			if math.Abs(data[j]-want) > 1e-12 {
				t.Errorf("weight %v of %v: want %v, got %v", j, node.Name(),
					want, data[j])
			}
		}
	}
}

func TestGobRoundTripPreservesPredictions(t *testing.T) {
	net := newTestNet(t, 3, 1, 2, G.GlorotU(1.0))
	input := []float64{1.0, -0.25, 0.75}
	want := forward(t, net, input)

	encoded, err := net.(*multiHeadMLP).GobEncode()
	if err != nil {
		t.Fatalf("could not encode network: %v", err)
	}

	decoded := &multiHeadMLP{}
	if err := decoded.GobDecode(encoded); err != nil {
		t.Fatalf("could not decode network: %v", err)
	}

	got := forward(t, decoded, input)
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("prediction %v: want %v, got %v", i, want[i], got[i])
		}
	}
}

func TestNewMultiHeadMLPValidatesArguments(t *testing.T) {
	g := G.NewGraph()
	_, err := NewMultiHeadMLP(3, 1, 2, g, []int{5, 5}, []bool{true},
		G.GlorotU(1.0), []*Activation{ReLU(), ReLU()})
	if err == nil {
		t.Error("expected error for mismatched biases")
	}

	g = G.NewGraph()
	_, err = NewMultiHeadMLP(3, 1, 2, g, []int{5}, []bool{true},
		G.GlorotU(1.0), []*Activation{ReLU(), ReLU()})
	if err == nil {
		t.Error("expected error for mismatched activations")
	}
}

func assertSameWeights(t *testing.T, source, target NeuralNet) {
	t.Helper()

	sourceNodes := source.Learnables()
	for i, node := range target.Learnables() {
		sourceData := sourceNodes[i].Value().(*tensor.Dense).Data().([]float64)
		data := node.Value().(*tensor.Dense).Data().([]float64)
		for j := range data {
			if data[j] != sourceData[j] {
				t.Errorf("weight %v of %v: want %v, got %v", j, node.Name(),
					sourceData[j], data[j])
			}
		}
	}
}
