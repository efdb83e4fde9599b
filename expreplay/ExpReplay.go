// Package expreplay implements experience replay buffers
package expreplay

import (
	"fmt"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/timestep"
)

// ExperienceReplayer implements an experience replay buffer: a
// fixed-capacity FIFO container of environmental transitions.
// Inserting into a full buffer evicts exactly the oldest transition.
// Sampling draws a batch of distinct transitions uniformly at random
// and is non-destructive; repeated calls are independent.
type ExperienceReplayer interface {
	// Add adds a transition to the buffer, evicting the oldest
	// transition if the buffer is at capacity
	Add(t timestep.Transition) error

	// Sample samples a batch of experience from the buffer and
	// returns the batch as flat []float64 of states, actions, rewards,
	// discounts, and next states
	Sample() ([]float64, []float64, []float64, []float64, []float64, error)

	// Capacity returns the current number of samples in the buffer
	Capacity() int

	// MaxCapacity returns the maximum allowable samples in the buffer
	MaxCapacity() int

	// MinCapacity returns the number of samples required to be in the
	// buffer before the buffer can be sampled
	MinCapacity() int

	// BatchSize returns the number of samples returned by Sample()
	BatchSize() int
}

// Config describes a configuration of an ExperienceReplayer. It is
// JSON-serializable so that it can be embedded in agent configuration
// files.
type Config struct {
	SampleSize        int
	MaxReplayCapacity int
	MinReplayCapacity int
}

// Create creates and returns the ExperienceReplayer described by the
// Config. The featureSize and actionSize parameters define the size of
// the feature and action vectors stored in the buffer.
func (c Config) Create(featureSize, actionSize int,
	seed int64) (ExperienceReplayer, error) {
	sampler := NewUniformSelector(c.SampleSize, seed)
	return New(sampler, c.MinReplayCapacity, c.MaxReplayCapacity,
		featureSize, actionSize)
}

// New creates and returns a new ExperienceReplayer. The sampler
// parameter is a Selector which determines how data is sampled from
// the replay buffer. Eviction is always FIFO: the buffer is a ring,
// and the oldest transition is overwritten once the buffer is full.
//
// Pixel observations should be flattened before adding to the buffer.
func New(sampler Selector, minCapacity, maxCapacity, featureSize,
	actionSize int) (ExperienceReplayer, error) {
	if minCapacity <= 0 {
		return nil, fmt.Errorf("new: minCapacity must be > 0")
	}
	if maxCapacity < 1 {
		return nil, fmt.Errorf("new: maxCapacity must be >= 1")
	}
	if maxCapacity < sampler.BatchSize() {
		return nil, fmt.Errorf("new: cannot have batch size (%v) > max "+
			"buffer capacity (%v)", sampler.BatchSize(), maxCapacity)
	}
	if minCapacity < sampler.BatchSize() {
		return nil, fmt.Errorf("new: cannot have batch size (%v) > min "+
			"buffer capacity (%v)", sampler.BatchSize(), minCapacity)
	}

	return newFifoCache(sampler, minCapacity, maxCapacity, featureSize,
		actionSize), nil
}
