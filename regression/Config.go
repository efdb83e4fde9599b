package regression

import (
	"fmt"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/initwfn"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/solver"
)

// Config implements a configuration for a linear regression model
type Config struct {
	InitWFn *initwfn.InitWFn
	Solver  *solver.Solver

	Epochs    int
	BatchSize int
}

// Validate checks the configuration for errors, returning the first
// error found
func (c Config) Validate() error {
	if c.InitWFn == nil {
		return fmt.Errorf("no weight initialization scheme set")
	}
	if c.Solver == nil {
		return fmt.Errorf("no solver set")
	}
	if c.Epochs < 1 {
		return fmt.Errorf("epochs must be positive, got %v", c.Epochs)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive, got %v", c.BatchSize)
	}
	return nil
}
