package timestep

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestStepTypePredicates(t *testing.T) {
	obs := mat.NewVecDense(2, []float64{0.1, -0.2})

	first := New(First, 0.0, 1.0, obs, 0)
	if !first.First() || first.Mid() || first.Last() {
		t.Errorf("first step misclassified: %v", first)
	}

	mid := New(Mid, -1.0, 1.0, obs, 1)
	if mid.First() || !mid.Mid() || mid.Last() {
		t.Errorf("mid step misclassified: %v", mid)
	}

	last := New(Last, -1.0, 1.0, obs, 2)
	if last.First() || last.Mid() || !last.Last() {
		t.Errorf("last step misclassified: %v", last)
	}
}

func TestNewTransitionKeepsDiscountOnMidStep(t *testing.T) {
	state := mat.NewVecDense(2, []float64{0.0, 0.0})
	nextState := mat.NewVecDense(2, []float64{0.5, -0.5})
	action := mat.NewVecDense(1, []float64{1.0})

	step := New(First, 0.0, 0.99, state, 0)
	nextStep := New(Mid, -1.0, 0.99, nextState, 1)

	transition := NewTransition(step, action, nextStep)
	if transition.Discount != 0.99 {
		t.Errorf("expected discount 0.99, got %v", transition.Discount)
	}
	if transition.Reward != -1.0 {
		t.Errorf("expected reward -1.0, got %v", transition.Reward)
	}
}

func TestNewTransitionZeroesDiscountOnLastStep(t *testing.T) {
	state := mat.NewVecDense(2, []float64{0.0, 0.0})
	nextState := mat.NewVecDense(2, []float64{0.5, -0.5})
	action := mat.NewVecDense(1, []float64{0.0})

	step := New(Mid, -1.0, 0.99, state, 5)
	nextStep := New(Last, 10.0, 0.99, nextState, 6)

	transition := NewTransition(step, action, nextStep)
	if transition.Discount != 0.0 {
		t.Errorf("terminal transition should have discount 0, got %v",
			transition.Discount)
	}
	if transition.Reward != 10.0 {
		t.Errorf("expected reward 10.0, got %v", transition.Reward)
	}
}
