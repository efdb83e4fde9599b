package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/dataset/housing"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/experiment/checkpointer"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/initwfn"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/regression"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/solver"
)

func newRegressionCommand() *cobra.Command {
	var (
		data     string
		epochs   int
		batch    int
		stepSize float64
		split    float64
		seed     int64
		out      string
	)

	cmd := &cobra.Command{
		Use:   "regression",
		Short: "Fit a linear regression to a housing table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegression(data, epochs, batch, stepSize, split, seed,
				out)
		},
	}

	cmd.Flags().StringVar(&data, "data", "",
		"housing table with the target value in the last column")
	cmd.Flags().IntVar(&epochs, "epochs", 200, "number of training epochs")
	cmd.Flags().IntVar(&batch, "batch", 32, "mini-batch size")
	cmd.Flags().Float64Var(&stepSize, "step-size", 0.01,
		"gradient descent step size")
	cmd.Flags().Float64Var(&split, "split", 0.8,
		"fraction of examples used for training")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().StringVar(&out, "out", "results",
		"directory to write results into")
	cmd.MarkFlagRequired("data")

	return cmd
}

func runRegression(dataFile string, epochs, batch int, stepSize,
	split float64, seed int64, out string) error {
	data, err := housing.Load(dataFile)
	if err != nil {
		return err
	}
	data.Normalize()

	rng := rand.New(rand.NewSource(seed))
	train, test, err := data.Split(split, rng)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %v examples with %v features: %v training and %v "+
		"test\n", data.Len(), data.Features(), train.Len(), test.Len())

	init, err := initwfn.NewZeroes()
	if err != nil {
		return err
	}
	sol, err := solver.NewVanilla(stepSize, 1, -1.0)
	if err != nil {
		return err
	}
	config := regression.Config{
		InitWFn:   init,
		Solver:    sol,
		Epochs:    epochs,
		BatchSize: batch,
	}

	model, err := regression.New(train.Features(), config, seed)
	if err != nil {
		return err
	}
	defer model.Close()

	losses, err := model.Fit(train)
	if err != nil {
		return err
	}
	fmt.Printf("Training MSE after epoch 1: %v\nTraining MSE after epoch "+
		"%v: %v\n", losses[0], len(losses), losses[len(losses)-1])

	trainMSE, err := model.MSE(train)
	if err != nil {
		return err
	}
	testMSE, err := model.MSE(test)
	if err != nil {
		return err
	}
	fmt.Printf("Final training MSE: %v\nFinal test MSE: %v\n", trainMSE,
		testMSE)

	dir := filepath.Join(out, "regression-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create results directory: %v", err)
	}
	modelFile := filepath.Join(dir, "regression.bin")
	if err := checkpointer.Save(modelFile, model); err != nil {
		return err
	}
	fmt.Printf("Saved the model to %v\n", modelFile)
	return nil
}
