package expreplay

import "math/rand"

// Selector implements functionality for choosing which stored
// transitions are drawn from an experience replay buffer when it is
// sampled
type Selector interface {
	// choose selects the indices at which data should be sampled from
	// the experience replay buffer
	choose(c *fifoCache) []int

	// BatchSize returns the number of elements that will be selected
	BatchSize() int
}

// uniformSelector is a Selector which selects data from an experience
// replay buffer uniformly randomly without replacement, so that a
// single batch never contains the same stored transition twice
type uniformSelector struct {
	samples int
	rng     *rand.Rand
}

// NewUniformSelector returns a new Selector which selects data
// uniformly randomly, without replacement, from an experience replay
// buffer
func NewUniformSelector(samples int, seed int64) Selector {
	source := rand.NewSource(seed)
	rng := rand.New(source)

	return &uniformSelector{samples: samples, rng: rng}
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (u *uniformSelector) BatchSize() int {
	return u.samples
}

// choose selects the distinct indices at which to draw data from the
// buffer
func (u *uniformSelector) choose(c *fifoCache) []int {
	return u.rng.Perm(c.Capacity())[:u.BatchSize()]
}
