package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/agent/deepq"
	env "github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/environment"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/environment/classiccontrol/cartpole"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/environment/classiccontrol/mountaincar"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/experiment"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/experiment/checkpointer"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/experiment/tracker"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/initwfn"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/network"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/render"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/solver"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/utils/floatutils"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/utils/intutils"
)

// Environments the deepq command can train on
const (
	cartpoleEnv    = "cartpole"
	mountainCarEnv = "mountaincar"
)

func newDeepQCommand() *cobra.Command {
	var (
		envName  string
		steps    uint
		seed     int64
		out      string
		doRender bool
	)

	cmd := &cobra.Command{
		Use:   "deepq",
		Short: "Train a deep Q-learning agent on a classic control task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeepQ(envName, steps, seed, out, doRender)
		},
	}

	cmd.Flags().StringVar(&envName, "env", cartpoleEnv,
		"environment to train on (cartpole or mountaincar)")
	cmd.Flags().UintVar(&steps, "steps", 100_000,
		"number of environmental steps to train for")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().StringVar(&out, "out", "results",
		"directory to write results into")
	cmd.Flags().BoolVar(&doRender, "render", false,
		"render an evaluation episode of the best agent after training")

	return cmd
}

func runDeepQ(envName string, steps uint, seed int64, out string,
	doRender bool) error {
	e, err := newEnvironment(envName, seed)
	if err != nil {
		return err
	}
	if doRender && envName != cartpoleEnv {
		return fmt.Errorf("rendering is only supported for %v", cartpoleEnv)
	}

	config, err := newDeepQConfig()
	if err != nil {
		return err
	}
	agent, err := deepq.New(e, config, seed)
	if err != nil {
		return err
	}

	dir := filepath.Join(out, fmt.Sprintf("deepq-%v-%v", envName,
		uuid.NewString()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create results directory: %v", err)
	}
	fmt.Printf("Training deepq on %v for %v steps\nResults: %v\n", envName,
		steps, dir)

	returnsFile := filepath.Join(dir, "returns.bin")
	bestFile := filepath.Join(dir, "best.bin")
	trackers := []tracker.Tracker{
		tracker.NewReturn(returnsFile),
		tracker.NewEpisodeLength(filepath.Join(dir, "episodes.bin")),
	}
	checkpointers := []checkpointer.Checkpointer{
		checkpointer.NewBest(50, agent, bestFile),
	}

	exp := experiment.NewOnline(e, agent, steps, trackers, checkpointers)
	if err := exp.Run(); err != nil {
		return err
	}
	if err := exp.Save(); err != nil {
		return err
	}

	returns, err := tracker.LoadData(returnsFile)
	if err != nil {
		return err
	}
	n := intutils.Min(len(returns), 50)
	fmt.Printf("\nEpisodes finished: %v\nMean return of last %v episodes:"+
		" %v\n", len(returns), n, floatutils.Mean(returns[len(returns)-n:]...))

	if doRender {
		return renderEvaluation(envName, seed, dir, bestFile)
	}
	return nil
}

// renderEvaluation runs one evaluation episode of the best saved agent
// and writes its frames into the results directory
func renderEvaluation(envName string, seed int64, dir,
	bestFile string) error {
	e, err := newEnvironment(envName, seed+1)
	if err != nil {
		return err
	}
	config, err := newDeepQConfig()
	if err != nil {
		return err
	}
	agent, err := deepq.New(e, config, seed+1)
	if err != nil {
		return err
	}
	defer agent.Close()

	if err := checkpointer.Load(bestFile, agent); err != nil {
		return err
	}
	agent.Eval()

	framesDir := filepath.Join(dir, "frames")
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return fmt.Errorf("could not create frames directory: %v", err)
	}
	frames := render.NewCartpole(framesDir)

	step := e.Reset()
	if err := agent.ObserveFirst(step); err != nil {
		return err
	}
	frames.Track(step)
	for !step.Last() {
		action := agent.SelectAction(step)
		step, _ = e.Step(action)
		frames.Track(step)
		if err := agent.Observe(action, step); err != nil {
			return err
		}
	}
	agent.EndEpisode()

	fmt.Printf("Rendered an evaluation episode to %v\n", framesDir)
	return frames.Save()
}

// newEnvironment constructs the named classic control environment
func newEnvironment(name string, seed int64) (env.Environment, error) {
	switch name {
	case cartpoleEnv:
		bounds := r1.Interval{Min: -0.05, Max: 0.05}
		starter := env.NewUniformStarter([]r1.Interval{bounds, bounds,
			bounds, bounds}, uint64(seed))
		task := cartpole.NewBalance(starter, 500, cartpole.FailAngle)
		environment, _ := cartpole.New(task, 0.99)
		return environment, nil

	case mountainCarEnv:
		position := r1.Interval{Min: -0.6, Max: -0.4}
		velocity := r1.Interval{Min: 0.0, Max: 0.0}
		starter := env.NewUniformStarter([]r1.Interval{position, velocity},
			uint64(seed))
		task := mountaincar.NewGoal(starter, 1000, mountaincar.GoalPosition)
		environment, _ := mountaincar.New(task, 0.99)
		return environment, nil
	}
	return nil, fmt.Errorf("unknown environment %q, expected %v or %v",
		name, cartpoleEnv, mountainCarEnv)
}

// newDeepQConfig returns the agent configuration used by the lesson
func newDeepQConfig() (deepq.Config, error) {
	init, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		return deepq.Config{}, err
	}
	sol, err := solver.NewAdam(1e-3, 1e-8, 0.9, 0.999, 32, 1.0)
	if err != nil {
		return deepq.Config{}, err
	}

	return deepq.Config{
		PolicyLayers: []int{64, 64},
		Biases:       []bool{true, true},
		Activations:  []*network.Activation{network.ReLU(), network.ReLU()},
		InitWFn:      init,
		Solver:       sol,

		Epsilon:      1.0,
		EpsilonEnd:   0.05,
		EpsilonDecay: 10_000,

		LossDelta: 1.0,

		Tau:                  0.05,
		TargetUpdateInterval: 1,

		MinimumCapacity: 1_000,
		MaximumCapacity: 50_000,
		Batch:           32,
	}, nil
}
