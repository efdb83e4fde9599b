// Package checkpointer implements functionality for saving agents to
// disk during an experiment
package checkpointer

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/timestep"
)

// Serializable is an object that can be saved/serialized
type Serializable interface {
	gob.GobEncoder
	gob.GobDecoder
}

// Checkpointer checkpoints/saves serializable objects based on
// timestep.TimeSteps
type Checkpointer interface {
	Checkpoint(ts.TimeStep) error
}

// Save gob encodes a Serializable to the file at filename
func Save(filename string, object Serializable) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("checkpoint: could not create file: %v", err)
	}
	defer file.Close()

	enc := gob.NewEncoder(file)
	if err := enc.Encode(object); err != nil {
		return fmt.Errorf("checkpoint: could not encode object: %v", err)
	}
	return nil
}

// Load decodes the file at filename into a Serializable previously
// saved by a Checkpointer
func Load(filename string, into Serializable) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("load: could not open file: %v", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("load: could not decode object: %v", err)
	}
	return nil
}
