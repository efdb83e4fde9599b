package deepq

import (
	"fmt"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/agent"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/environment"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/initwfn"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/network"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/solver"
)

// Config implements a configuration for a DeepQ agent. Configs are
// JSON serializable so that experiments can be described in
// configuration files.
type Config struct {
	PolicyLayers []int
	Biases       []bool
	Activations  []*network.Activation
	InitWFn      *initwfn.InitWFn
	Solver       *solver.Solver

	Epsilon      float64 // Initial exploration rate
	EpsilonEnd   float64 // Final exploration rate
	EpsilonDecay float64 // Decay timescale in steps, <= 0 for constant ε

	LossDelta float64 // Huber loss threshold, <= 0 for squared error

	Tau                  float64 // Polyak averaging constant
	TargetUpdateInterval int     // Steps between target network updates

	MinimumCapacity int // Fewest stored transitions before updates begin
	MaximumCapacity int
	Batch           int
}

// BatchSize returns the batch size of the agent constructed using this
// Config
func (c Config) BatchSize() int {
	return c.Batch
}

// ValidAgent returns whether the argument agent is valid for this
// Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*DeepQ)
	return ok
}

// CreateAgent creates the DeepQ agent that this Config describes
func (c Config) CreateAgent(env environment.Environment,
	seed int64) (agent.Agent, error) {
	return New(env, c, seed)
}

// Validate returns an error describing whether or not the Config is
// valid
func (c Config) Validate() error {
	if len(c.PolicyLayers) != len(c.Biases) {
		return fmt.Errorf("policy layers and biases must have equal "+
			"length\n\tlayers(%v)\n\tbiases(%v)", len(c.PolicyLayers),
			len(c.Biases))
	}
	if len(c.PolicyLayers) != len(c.Activations) {
		return fmt.Errorf("policy layers and activations must have equal "+
			"length\n\tlayers(%v)\n\tactivations(%v)", len(c.PolicyLayers),
			len(c.Activations))
	}
	if c.InitWFn == nil {
		return fmt.Errorf("no weight initializer given")
	}
	if c.Solver == nil {
		return fmt.Errorf("no solver given")
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon must be in [0, 1] but got %v", c.Epsilon)
	}
	if c.EpsilonDecay > 0 && (c.EpsilonEnd < 0 || c.EpsilonEnd > c.Epsilon) {
		return fmt.Errorf("final epsilon must be in [0, ε₀ = %v] but got %v",
			c.Epsilon, c.EpsilonEnd)
	}
	if c.Tau <= 0 || c.Tau > 1 {
		return fmt.Errorf("tau must be in (0, 1] but got %v", c.Tau)
	}
	if c.TargetUpdateInterval < 1 {
		return fmt.Errorf("target networks must be updated at positive "+
			"intervals, got %v", c.TargetUpdateInterval)
	}
	if c.Batch < 1 {
		return fmt.Errorf("batch size must be positive, got %v", c.Batch)
	}
	if c.MinimumCapacity < c.Batch {
		return fmt.Errorf("minimum replay capacity %v cannot be below the "+
			"batch size %v", c.MinimumCapacity, c.Batch)
	}
	if c.MaximumCapacity < c.MinimumCapacity {
		return fmt.Errorf("maximum replay capacity %v cannot be below the "+
			"minimum capacity %v", c.MaximumCapacity, c.MinimumCapacity)
	}
	return nil
}

// epsilonSchedule returns the exploration schedule the Config
// describes
func (c Config) epsilonSchedule() Schedule {
	if c.EpsilonDecay <= 0 {
		return NewConstantSchedule(c.Epsilon)
	}
	return NewExpDecaySchedule(c.Epsilon, c.EpsilonEnd, c.EpsilonDecay)
}
