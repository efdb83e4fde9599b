package experiment

import (
	"fmt"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/agent"
	env "github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/environment"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/experiment/checkpointer"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/experiment/tracker"
	ts "github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/timestep"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/utils/progressbar"
)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
type Online struct {
	env.Environment
	agent.Agent
	maxSteps     uint
	currentSteps uint

	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer

	progress *progressbar.ProgressBar
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The steps parameter determines how
// many timesteps the experiment is run for. The t parameter determines
// which data generated during the experiment is saved, and the c
// parameter determines how the agent is checkpointed during training.
func NewOnline(e env.Environment, a agent.Agent, steps uint,
	t []tracker.Tracker, c []checkpointer.Checkpointer) *Online {
	return &Online{
		Environment:   e,
		Agent:         a,
		maxSteps:      steps,
		trackers:      t,
		checkpointers: c,
		progress:      progressbar.New(50, int(steps)),
	}
}

// Register registers a tracker.Tracker with the experiment so that
// data generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RunEpisode runs a single episode of the experiment, returning
// whether the maximum timestep limit was reached
func (o *Online) RunEpisode() (bool, error) {
	step := o.Environment.Reset()
	if err := o.Agent.ObserveFirst(step); err != nil {
		return false, fmt.Errorf("runepisode: %v", err)
	}
	o.track(step)

	for !step.Last() && o.currentSteps < o.maxSteps {
		o.currentSteps++
		o.progress.Increment()
		o.progress.Display()

		// Select an action and step in the environment
		action := o.Agent.SelectAction(step)
		step, _ = o.Environment.Step(action)

		o.track(step)
		if err := o.checkpoint(step); err != nil {
			return false, fmt.Errorf("runepisode: %v", err)
		}

		// Observe the timestep and update the agent
		if err := o.Agent.Observe(action, step); err != nil {
			return false, fmt.Errorf("runepisode: %v", err)
		}
		if err := o.Agent.Step(); err != nil {
			return false, fmt.Errorf("runepisode: %v", err)
		}
	}
	o.Agent.EndEpisode()

	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all timesteps
func (o *Online) Run() error {
	for {
		ended, err := o.RunEpisode()
		if err != nil {
			return err
		}
		if ended {
			break
		}
	}

	if closer, ok := o.Agent.(agent.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return err
		}
	}
	return nil
}

// track caches the current timestep's data in each Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tr := range o.trackers {
		tr.Track(t)
	}
}

// checkpoint saves the agent's state with each Checkpointer
func (o *Online) checkpoint(t ts.TimeStep) error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return err
		}
	}
	return nil
}
