package tracker

import (
	ts "github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment.
//
// Note: an episode must finish for this Tracker to save its data. If
// the last episode in an experiment does not finish, that episode's
// length is not saved.
type EpisodeLength struct {
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength Tracker which saves its
// data at the specified location filename
func NewEpisodeLength(filename string) Tracker {
	return &EpisodeLength{filename: filename}
}

// Track caches the episode length whenever the timestep passed to it
// is the last timestep in an episode.
func (e *EpisodeLength) Track(t ts.TimeStep) {
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, float64(t.Number))
	}
}

// Save saves the data tracked by the EpisodeLength Tracker to disk.
func (e *EpisodeLength) Save() error {
	return saveData(e.filename, e.episodeLengths)
}
