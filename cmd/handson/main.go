// Handson runs the hands-on machine learning lessons from the command
// line. Each lesson trains a model end to end and saves its results:
//
//	handson deepq		deep Q-learning on a classic control task
//	handson svm		a linear SVM on a pair of MNIST digits
//	handson regression	linear regression on a housing table
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "handson",
		Short: "Hands-on lessons in reinforcement learning, classification, and regression",
	}

	rootCmd.AddCommand(newDeepQCommand())
	rootCmd.AddCommand(newSVMCommand())
	rootCmd.AddCommand(newRegressionCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
