package checkpointer

import (
	ts "github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/timestep"
)

// nStep implements checkpointing every N steps
type nStep struct {
	interval int
	object   Serializable // Object to save

	// filename returns the name of the file to save the object in.
	//
	// If each serialized object should be saved in a separate file
	// with an incremented number as a suffix (e.g. file1.bin,
	// file2.bin, ..., fileK.bin), use FilenameEnumerator to generate
	// the naming function. If the filename does not matter, use
	// FileTimer instead:
	//
	//	n := NewNStep(10, object, FileTimer("filename", ".bin"))
	filename func() string
}

// NewNStep returns a checkpointer that saves object every n steps.
func NewNStep(n int, object Serializable,
	filename func() string) Checkpointer {
	return &nStep{
		interval: n,
		object:   object,
		filename: filename,
	}
}

// Checkpoint saves the tracked object if the timestep number is a
// multiple of the checkpoint interval
func (n *nStep) Checkpoint(t ts.TimeStep) error {
	if t.Number%n.interval != 0 {
		return nil
	}
	return Save(n.filename(), n.object)
}
