package expreplay

import (
	"fmt"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/timestep"
)

// fifoCache implements a concrete ExperienceReplayer backed by flat
// float64 caches treated as a ring. New transitions overwrite the
// oldest stored transition once the buffer is full, so eviction is
// always pure FIFO based on insertion order.
type fifoCache struct {
	stateCache     []float64
	actionCache    []float64
	rewardCache    []float64
	discountCache  []float64
	nextStateCache []float64

	currentInUsePos int
	isFull          bool

	sampler Selector

	minCapacity int
	maxCapacity int
	featureSize int
	actionSize  int
}

// newFifoCache returns a new fifoCache. The sampler parameter
// determines how data is sampled from the replay buffer. The
// featureSize and actionSize parameters define the size of the feature
// and action vectors. The minCapacity parameter determines the minimum
// number of samples that should be in the buffer before sampling is
// allowed, and maxCapacity the maximum number of samples allowed in
// the buffer at any given time.
func newFifoCache(sampler Selector, minCapacity, maxCapacity, featureSize,
	actionSize int) *fifoCache {
	return &fifoCache{
		stateCache:     make([]float64, maxCapacity*featureSize),
		actionCache:    make([]float64, maxCapacity*actionSize),
		rewardCache:    make([]float64, maxCapacity),
		discountCache:  make([]float64, maxCapacity),
		nextStateCache: make([]float64, maxCapacity*featureSize),

		currentInUsePos: 0,
		isFull:          false,

		sampler: sampler,

		minCapacity: minCapacity,
		maxCapacity: maxCapacity,
		featureSize: featureSize,
		actionSize:  actionSize,
	}
}

// String returns the string representation of the fifoCache
func (c *fifoCache) String() string {
	baseStr := "Capacity: %v/%v \nStates: %v \nActions: %v \nRewards: %v" +
		" \nDiscounts: %v \nNext States: %v"
	return fmt.Sprintf(baseStr, c.Capacity(), c.MaxCapacity(), c.stateCache,
		c.actionCache, c.rewardCache, c.discountCache, c.nextStateCache)
}

// BatchSize returns the number of samples returned by Sample()
func (c *fifoCache) BatchSize() int {
	return c.sampler.BatchSize()
}

// insertOrder returns the first n physical indices in chronological
// insertion order, oldest first
func (c *fifoCache) insertOrder(n int) []int {
	if !c.isFull {
		if n > c.currentInUsePos {
			n = c.currentInUsePos
		}
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		return order
	}

	if n > c.maxCapacity {
		n = c.maxCapacity
	}
	order := make([]int, n)
	for i := range order {
		// Once full, the oldest transition sits at the write position
		order[i] = (c.currentInUsePos + i) % c.maxCapacity
	}
	return order
}

// Sample samples and returns a batch of transitions from the replay
// buffer. The returned values are the states, actions, rewards,
// discounts, and next states.
func (c *fifoCache) Sample() ([]float64, []float64, []float64, []float64,
	[]float64, error) {
	if c.Capacity() == 0 {
		err := &ExpReplayError{
			Op:  "sample",
			Err: errEmptyCache,
		}
		return nil, nil, nil, nil, nil, err
	}
	if c.Capacity() < c.MinCapacity() {
		err := &ExpReplayError{
			Op:  "sample",
			Err: errInsufficientSamples,
		}
		return nil, nil, nil, nil, nil, err
	}

	indices := c.sampler.choose(c)

	stateBatch := make([]float64, c.BatchSize()*c.featureSize)
	nextStateBatch := make([]float64, c.BatchSize()*c.featureSize)
	for i, index := range indices {
		batchStartInd := i * c.featureSize
		expStartInd := index * c.featureSize
		copy(stateBatch[batchStartInd:batchStartInd+c.featureSize],
			c.stateCache[expStartInd:expStartInd+c.featureSize],
		)
		copy(nextStateBatch[batchStartInd:batchStartInd+c.featureSize],
			c.nextStateCache[expStartInd:expStartInd+c.featureSize],
		)
	}

	actionBatch := make([]float64, c.BatchSize()*c.actionSize)
	for i, index := range indices {
		batchStartInd := i * c.actionSize
		expStartInd := index * c.actionSize
		copy(actionBatch[batchStartInd:batchStartInd+c.actionSize],
			c.actionCache[expStartInd:expStartInd+c.actionSize],
		)
	}

	rewardBatch := make([]float64, c.BatchSize())
	discountBatch := make([]float64, c.BatchSize())
	for i, index := range indices {
		rewardBatch[i] = c.rewardCache[index]
		discountBatch[i] = c.discountCache[index]
	}

	return stateBatch, actionBatch, rewardBatch, discountBatch,
		nextStateBatch, nil
}

// Capacity returns the current number of elements in the fifoCache
// that are available for sampling
func (c *fifoCache) Capacity() int {
	if c.isFull {
		return c.maxCapacity
	}
	return c.currentInUsePos
}

// MaxCapacity returns the maximum number of elements that are allowed
// in the fifoCache
func (c *fifoCache) MaxCapacity() int {
	return c.maxCapacity
}

// MinCapacity returns the minimum number of elements required in the
// fifoCache before sampling is allowed
func (c *fifoCache) MinCapacity() int {
	return c.minCapacity
}

// Add adds a transition to the fifoCache, overwriting the oldest
// stored transition if the cache is full. Add never fails on a full
// cache.
func (c *fifoCache) Add(t timestep.Transition) error {
	if t.State.Len() != c.featureSize || t.NextState.Len() != c.featureSize {
		return fmt.Errorf("add: invalid feature size \n\twant(%v)\n\thave(%v)",
			c.featureSize, t.State.Len())
	}
	if t.Action.Len() != c.actionSize {
		return fmt.Errorf("add: invalid action size \n\twant(%v)\n\thave(%v)",
			c.actionSize, t.Action.Len())
	}

	index := c.currentInUsePos

	// Copy states
	stateInd := index * c.featureSize
	for i := 0; i < c.featureSize; i++ {
		c.stateCache[stateInd+i] = t.State.AtVec(i)
		c.nextStateCache[stateInd+i] = t.NextState.AtVec(i)
	}

	// Copy action
	actionInd := index * c.actionSize
	for i := 0; i < c.actionSize; i++ {
		c.actionCache[actionInd+i] = t.Action.AtVec(i)
	}

	c.rewardCache[index] = t.Reward
	c.discountCache[index] = t.Discount

	if !c.isFull && index+1 == c.maxCapacity {
		c.isFull = true
	}
	c.currentInUsePos = (c.currentInUsePos + 1) % c.maxCapacity

	return nil
}
