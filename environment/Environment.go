// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when an episode ends. If an episode ends, the Ender
// modifies the final timestep's StepType field to timestep.Last.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Task implements the reward scheme for taking actions in some
// environment. A Task determines the starting states of an
// environment, the rewards for transitions, and when an episode ends.
type Task interface {
	Starter
	Ender
	GetReward(state, action, nextState mat.Vector) float64
	AtGoal(state mat.Matrix) bool
	Min() float64 // Minimum attainable reward on any timestep
	Max() float64 // Maximum attainable reward on any timestep
	RewardSpec() Spec
}

// Environment implements a simulated environment, which includes a
// Task to complete. Environments are stepped with actions represented
// as vectors, and hand back the resulting timestep together with a
// flag indicating whether the episode finished on that step.
type Environment interface {
	Task
	Reset() timestep.TimeStep
	Step(action mat.Vector) (timestep.TimeStep, bool)
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
