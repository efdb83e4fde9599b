package environment

import (
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/timestep"
)

func TestUniformStarterSamplesWithinBounds(t *testing.T) {
	bounds := []r1.Interval{{Min: -0.05, Max: 0.05}, {Min: 1.0, Max: 2.0}}
	starter := NewUniformStarter(bounds, 192382)

	for i := 0; i < 100; i++ {
		start := starter.Start()
		if start.Len() != 2 {
			t.Fatalf("expected 2 features, got %v", start.Len())
		}
		for j, interval := range bounds {
			if v := start.AtVec(j); v < interval.Min || v > interval.Max {
				t.Errorf("feature %v = %v outside [%v, %v]", j, v,
					interval.Min, interval.Max)
			}
		}
	}
}

func TestStepLimitEndsEpisode(t *testing.T) {
	ender := NewStepLimit(10)
	obs := mat.NewVecDense(1, []float64{0.0})

	early := timestep.New(timestep.Mid, 0, 1, obs, 9)
	if ender.End(&early) {
		t.Error("episode should not end before the step limit")
	}
	if early.Last() {
		t.Error("step type should be unchanged before the limit")
	}

	atLimit := timestep.New(timestep.Mid, 0, 1, obs, 10)
	if !ender.End(&atLimit) {
		t.Error("episode should end at the step limit")
	}
	if !atLimit.Last() {
		t.Error("step type should be Last at the limit")
	}
}

func TestIntervalLimitEndsEpisode(t *testing.T) {
	ender := NewIntervalLimit([]r1.Interval{{Min: -1.0, Max: 1.0}}, []int{1})

	inside := timestep.New(timestep.Mid, 0, 1,
		mat.NewVecDense(2, []float64{5.0, 0.5}), 1)
	if ender.End(&inside) {
		t.Error("episode should not end while the feature is in bounds")
	}

	outside := timestep.New(timestep.Mid, 0, 1,
		mat.NewVecDense(2, []float64{0.0, 1.5}), 2)
	if !ender.End(&outside) {
		t.Error("episode should end when the feature leaves its interval")
	}
	if !outside.Last() {
		t.Error("step type should be Last when out of bounds")
	}
}
