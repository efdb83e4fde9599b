package checkpointer

import (
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/utils/floatutils"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/utils/intutils"

	ts "github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/timestep"
)

// best saves its tracked object whenever the agent's recent
// performance reaches a new high. Performance is measured as the mean
// return over a trailing window of recent episodes, so a single lucky
// episode does not trigger a save.
type best struct {
	object   Serializable
	filename string
	window   int

	currentReturn  float64
	episodeReturns []float64
	bestMean       float64
	saved          bool
}

// NewBest returns a checkpointer that saves object to filename
// whenever the mean return over the last window finished episodes
// exceeds the previous best mean. Until window episodes have finished,
// the mean is taken over all finished episodes.
func NewBest(window int, object Serializable, filename string) Checkpointer {
	return &best{
		object:   object,
		filename: filename,
		window:   window,
	}
}

// Checkpoint accumulates the reward on each timestep. At episode ends
// it recomputes the trailing mean return and saves the tracked object
// on improvement.
func (b *best) Checkpoint(t ts.TimeStep) error {
	b.currentReturn += t.Reward
	if !t.Last() {
		return nil
	}

	b.episodeReturns = append(b.episodeReturns, b.currentReturn)
	b.currentReturn = 0.0

	n := intutils.Min(len(b.episodeReturns), b.window)
	mean := floatutils.Mean(b.episodeReturns[len(b.episodeReturns)-n:]...)

	if b.saved && mean <= b.bestMean {
		return nil
	}
	b.bestMean = mean
	b.saved = true
	return Save(b.filename, b.object)
}
