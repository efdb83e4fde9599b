package cartpole

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/environment"
)

func newBalanceEnv(t *testing.T, episodeSteps int) *Cartpole {
	t.Helper()

	bounds := r1.Interval{Min: -0.05, Max: 0.05}
	s := env.NewUniformStarter([]r1.Interval{bounds, bounds, bounds,
		bounds}, 192382)
	task := NewBalance(s, episodeSteps, FailAngle)
	c, firstStep := New(task, 0.99)

	if !firstStep.First() {
		t.Fatal("environment should start with a First timestep")
	}
	return c
}

func TestCartpoleStep(t *testing.T) {
	c := newBalanceEnv(t, 500)

	step, done := c.Step(mat.NewVecDense(1, []float64{2.0}))
	if done {
		t.Error("episode should not end on the first step")
	}
	if step.Number != 1 {
		t.Errorf("expected step number 1, got %v", step.Number)
	}
	if step.Reward != 1.0 {
		t.Errorf("expected balance reward 1.0, got %v", step.Reward)
	}

	// Accelerating right should increase the cart's speed
	if step.Observation.AtVec(1) <= 0.05 {
		t.Errorf("expected positive speed after accelerating right, got %v",
			step.Observation.AtVec(1))
	}
}

func TestCartpoleIllegalActionPanics(t *testing.T) {
	c := newBalanceEnv(t, 500)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on illegal action")
		}
	}()
	c.Step(mat.NewVecDense(1, []float64{3.0}))
}

func TestCartpoleEpisodeEndsAtStepLimit(t *testing.T) {
	limit := 10
	c := newBalanceEnv(t, limit)

	var done bool
	steps := 0
	for !done {
		// Do nothing so that neither the angle limit nor position
		// bound is hit before the step limit
		_, done = c.Step(mat.NewVecDense(1, []float64{1.0}))
		steps++
		if steps > limit {
			t.Fatalf("episode ran past the step limit of %v", limit)
		}
	}
}

func TestCartpoleResetStartsNewEpisode(t *testing.T) {
	c := newBalanceEnv(t, 500)

	c.Step(mat.NewVecDense(1, []float64{0.0}))
	start := c.Reset()

	if !start.First() {
		t.Error("reset should return a First timestep")
	}
	if start.Number != 0 {
		t.Errorf("reset timestep number should be 0, got %v", start.Number)
	}
	if math.Abs(start.Observation.AtVec(0)) > 0.05 {
		t.Errorf("start state outside starter bounds: %v",
			start.Observation.AtVec(0))
	}
}

func TestCartpoleSpecs(t *testing.T) {
	c := newBalanceEnv(t, 500)

	actionSpec := c.ActionSpec()
	if actionSpec.Cardinality != env.Discrete {
		t.Error("cartpole actions should be discrete")
	}
	if actionSpec.UpperBound.AtVec(0) != float64(MaxDiscreteAction) {
		t.Errorf("expected action upper bound %v, got %v", MaxDiscreteAction,
			actionSpec.UpperBound.AtVec(0))
	}

	obsSpec := c.ObservationSpec()
	if obsSpec.Shape.Len() != 4 {
		t.Errorf("expected 4 state features, got %v", obsSpec.Shape.Len())
	}

	discountSpec := c.DiscountSpec()
	if discountSpec.LowerBound.AtVec(0) != 0.99 {
		t.Errorf("expected discount 0.99, got %v",
			discountSpec.LowerBound.AtVec(0))
	}
}
