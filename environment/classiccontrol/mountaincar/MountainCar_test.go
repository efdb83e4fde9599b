package mountaincar

import (
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/environment"
)

func newGoalEnv(t *testing.T, episodeSteps int) *MountainCar {
	t.Helper()

	bounds := r1.Interval{Min: -0.6, Max: -0.4}
	s := env.NewUniformStarter([]r1.Interval{bounds, {Min: 0, Max: 0}},
		192382)
	task := NewGoal(s, episodeSteps, GoalPosition)
	m, firstStep := New(task, 1.0)

	if !firstStep.First() {
		t.Fatal("environment should start with a First timestep")
	}
	return m
}

func TestMountainCarStepRewardIsCostToGoal(t *testing.T) {
	m := newGoalEnv(t, 1000)

	step, done := m.Step(mat.NewVecDense(1, []float64{2.0}))
	if done {
		t.Error("episode should not end on the first step")
	}
	if step.Reward != -1.0 {
		t.Errorf("expected reward -1.0 away from goal, got %v", step.Reward)
	}
}

func TestMountainCarSpeedIsBounded(t *testing.T) {
	m := newGoalEnv(t, 10000)

	for i := 0; i < 200; i++ {
		step, done := m.Step(mat.NewVecDense(1, []float64{2.0}))
		if speed := step.Observation.AtVec(1); speed > MaxSpeed ||
			speed < -MaxSpeed {
			t.Fatalf("speed %v outside [%v, %v]", speed, -MaxSpeed, MaxSpeed)
		}
		if done {
			break
		}
	}
}

func TestMountainCarEpisodeEndsAtStepLimit(t *testing.T) {
	limit := 25
	m := newGoalEnv(t, limit)

	var done bool
	steps := 0
	for !done {
		// Coasting cannot reach the goal, so only the step limit can
		// end the episode
		_, done = m.Step(mat.NewVecDense(1, []float64{1.0}))
		steps++
		if steps > limit {
			t.Fatalf("episode ran past the step limit of %v", limit)
		}
	}
}

func TestGoalAtGoal(t *testing.T) {
	g := NewGoal(nil, 100, GoalPosition)

	atGoal := mat.NewDense(1, 2, []float64{GoalPosition + 0.01, 0.0})
	if !g.AtGoal(atGoal) {
		t.Error("state past the goal position should be a goal state")
	}

	notAtGoal := mat.NewDense(1, 2, []float64{-0.5, 0.0})
	if g.AtGoal(notAtGoal) {
		t.Error("state before the goal position should not be a goal state")
	}
}
