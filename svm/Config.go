package svm

import (
	"fmt"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/initwfn"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/solver"
)

// Config implements a configuration for a linear support vector
// machine
type Config struct {
	InitWFn *initwfn.InitWFn
	Solver  *solver.Solver

	Epochs    int
	BatchSize int

	// Regularization is the coefficient of the L2 penalty on the
	// weights. A value of 0 disables the penalty.
	Regularization float64
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
	if c.Regularization < 0 {
		return fmt.Errorf("regularization must be non-negative, got %v",
			c.Regularization)
	}
	return nil
}
