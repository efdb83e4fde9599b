package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/dataset"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/dataset/idx"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/experiment/checkpointer"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/initwfn"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/solver"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/svm"
)

func newSVMCommand() *cobra.Command {
	var (
		images   string
		labels   string
		positive int
		negative int
		epochs   int
		batch    int
		stepSize float64
		reg      float64
		split    float64
		seed     int64
		out      string
	)

	cmd := &cobra.Command{
		Use:   "svm",
		Short: "Train a linear SVM to separate two MNIST digits",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := svmRun{
				images:   images,
				labels:   labels,
				positive: positive,
				negative: negative,
				epochs:   epochs,
				batch:    batch,
				stepSize: stepSize,
				reg:      reg,
				split:    split,
				seed:     seed,
				out:      out,
			}
			return config.run()
		},
	}

	cmd.Flags().StringVar(&images, "images", "",
		"IDX file of images, optionally gzip compressed")
	cmd.Flags().StringVar(&labels, "labels", "",
		"IDX file of labels, optionally gzip compressed")
	cmd.Flags().IntVar(&positive, "positive", 1,
		"digit of the positive class")
	cmd.Flags().IntVar(&negative, "negative", 0,
		"digit of the negative class")
	cmd.Flags().IntVar(&epochs, "epochs", 10, "number of training epochs")
	cmd.Flags().IntVar(&batch, "batch", 32, "mini-batch size")
	cmd.Flags().Float64Var(&stepSize, "step-size", 0.01,
		"gradient descent step size")
	cmd.Flags().Float64Var(&reg, "reg", 0.0,
		"L2 regularization coefficient")
	cmd.Flags().Float64Var(&split, "split", 0.8,
		"fraction of examples used for training")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().StringVar(&out, "out", "results",
		"directory to write results into")
	cmd.MarkFlagRequired("images")
	cmd.MarkFlagRequired("labels")

	return cmd
}

// svmRun holds the flags of a single svm command invocation
type svmRun struct {
	images   string
	labels   string
	positive int
	negative int
	epochs   int
	batch    int
	stepSize float64
	reg      float64
	split    float64
	seed     int64
	out      string
}

func (s svmRun) run() error {
	data, err := idx.LoadBinary(s.images, s.labels, s.positive, s.negative)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(s.seed))
	train, test, err := data.Split(s.split, rng)
	if err != nil {
		return err
	}
	fmt.Printf("Separating digits %v and %v: %v training and %v test "+
		"examples\n", s.positive, s.negative, train.Len(), test.Len())

	init, err := initwfn.NewZeroes()
	if err != nil {
		return err
	}
	sol, err := solver.NewVanilla(s.stepSize, 1, -1.0)
	if err != nil {
		return err
	}
	config := svm.Config{
		InitWFn:        init,
		Solver:         sol,
		Epochs:         s.epochs,
		BatchSize:      s.batch,
		Regularization: s.reg,
	}

	machine, err := svm.New(train.Features(), config, s.seed)
	if err != nil {
		return err
	}
	defer machine.Close()

	losses, err := machine.Fit(train)
	if err != nil {
		return err
	}
	for epoch, loss := range losses {
		fmt.Printf("Epoch %v hinge loss: %v\n", epoch+1, loss)
	}

	if err := report("Training", machine, train); err != nil {
		return err
	}
	if err := report("Test", machine, test); err != nil {
		return err
	}

	dir := filepath.Join(s.out, "svm-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create results directory: %v", err)
	}
	modelFile := filepath.Join(dir, "svm.bin")
	if err := checkpointer.Save(modelFile, machine); err != nil {
		return err
	}
	fmt.Printf("Saved the model to %v\n", modelFile)
	return nil
}

// report prints the accuracy of the machine on a dataset
func report(name string, machine *svm.SVM, data *dataset.Dataset) error {
	accuracy, err := machine.Accuracy(data)
	if err != nil {
		return err
	}
	fmt.Printf("%v accuracy: %.4f\n", name, accuracy)
	return nil
}
