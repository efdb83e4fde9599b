package deepq

import "math"

// Schedule determines the exploration rate of a DeepQ agent at each
// environmental step.
type Schedule interface {
	// Next returns the exploration rate for the current step and
	// advances the schedule by one step
	Next() float64

	// Value returns the exploration rate for the current step without
	// advancing the schedule
	Value() float64
}

// ConstantSchedule is a Schedule with a fixed exploration rate.
type ConstantSchedule struct {
	Epsilon float64
}

// NewConstantSchedule returns a Schedule that always produces epsilon
func NewConstantSchedule(epsilon float64) *ConstantSchedule {
	return &ConstantSchedule{Epsilon: epsilon}
}

func (c *ConstantSchedule) Next() float64 {
	return c.Epsilon
}

func (c *ConstantSchedule) Value() float64 {
	return c.Epsilon
}

// ExpDecaySchedule anneals the exploration rate from Start to End on
// an exponential timescale of Decay steps:
//
//	ε(t) = End + (Start - End) * exp(-t / Decay)
//
// The step counter advances on every call to Next, whether or not the
// resulting action turns out to be exploratory.
type ExpDecaySchedule struct {
	Start float64
	End   float64
	Decay float64

	step int
}

// NewExpDecaySchedule returns a Schedule that anneals the exploration
// rate from start to end with timescale decay.
func NewExpDecaySchedule(start, end, decay float64) *ExpDecaySchedule {
	return &ExpDecaySchedule{Start: start, End: end, Decay: decay}
}

func (e *ExpDecaySchedule) Next() float64 {
	value := e.Value()
	e.step++
	return value
}

func (e *ExpDecaySchedule) Value() float64 {
	return e.End + (e.Start-e.End)*math.Exp(-float64(e.step)/e.Decay)
}
