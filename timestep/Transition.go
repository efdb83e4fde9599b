package timestep

import "gonum.org/v1/gonum/mat"

// Transition is an immutable record of one environmental step: the
// state the agent was in, the action it took, the reward it received,
// and the state it ended up in. Once pushed to a replay buffer, the
// buffer owns the record; no other component retains a reference.
//
// A terminal next state is encoded by a Discount of 0, so that any
// bootstrapped value of the next state is annihilated in the update
// target.
type Transition struct {
	State     mat.Vector
	Action    mat.Vector
	Reward    float64
	Discount  float64
	NextState mat.Vector
}

// NewTransition packages an environmental transition from the timestep
// the action was taken on to the timestep the action led to. The
// reward and discount are taken from the resulting step. If the
// resulting step ends the episode, the transition's discount is set to
// 0 so that update targets reduce to the immediate reward.
func NewTransition(step TimeStep, action mat.Vector,
	nextStep TimeStep) Transition {
	discount := nextStep.Discount
	if nextStep.Last() {
		discount = 0.0
	}

	return Transition{
		State:     step.Observation,
		Action:    action,
		Reward:    nextStep.Reward,
		Discount:  discount,
		NextState: nextStep.Observation,
	}
}
