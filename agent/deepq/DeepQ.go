// Package deepq implements the deep Q-learning algorithm with
// experience replay and target networks.
package deepq

import (
	"encoding/gob"
	"fmt"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/agent"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/agent/policy"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/environment"
	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/expreplay"
	ts "github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/timestep"
)

// DeepQ implements the deep Q-learning algorithm. Transitions are
// stored in an experience replay buffer and updates use a Huber loss
// on the TD error together with a separate target network:
//
//	Q(s, a) <- Q(s, a) + α * (r + γ max[Q'(s', a')] - Q(s, a)) ∇Q(s, a)
//
// where Q' is the target network, updated towards the learned weights
// by Polyak averaging every TargetUpdateInterval gradient steps.
type DeepQ struct {
	// Action selection policies
	behaviourPolicy   agent.EGreedyNNPolicy // Behaviour egreedy policy
	behaviourPolicyVM G.VM
	targetPolicy      agent.EGreedyNNPolicy // Target greedy policy
	targetPolicyVM    G.VM

	// Network whose weights are learned, taking batches of inputs
	trainNet   agent.EGreedyNNPolicy
	trainNetVM G.VM
	solver     G.Solver

	// Network that provides the update target for a batch of inputs.
	// Note that this is a target network, providing the update target.
	// It is not the network for the target policy.
	targetNet   agent.EGreedyNNPolicy
	targetNetVM G.VM

	// Target network update schedule
	tau                  float64 // Polyak averaging constant
	targetUpdateInterval int     // Gradient steps between target updates
	gradientSteps        int

	epsilon Schedule

	selectedActions *G.Node // Actions taken at the previous states
	numActions      int

	replay expreplay.ExperienceReplayer

	// nextStateActionValues is the input node in the graph of trainNet
	// that is given the action values of the next state, computed by
	// targetNet
	nextStateActionValues *G.Node
	rewards               *G.Node
	discounts             *G.Node

	// Previous state and action to add to the replay buffer
	prevStep   ts.TimeStep
	prevAction int
	nextStep   ts.TimeStep

	batchSize int
	eval      bool
}

// New creates and returns a new DeepQ agent
func New(env environment.Environment, config Config,
	seed int64) (*DeepQ, error) {
	// Deep Q-learning requires discrete, 1-dimensional actions
	// enumerated from 0
	if env.ActionSpec().Cardinality != environment.Discrete {
		return &DeepQ{}, fmt.Errorf("deepq: cannot use non-discrete actions")
	}
	if env.ActionSpec().LowerBound.Len() > 1 {
		return &DeepQ{}, fmt.Errorf("deepq: actions must be 1-dimensional")
	}
	if env.ActionSpec().LowerBound.AtVec(0) != 0.0 {
		return &DeepQ{}, fmt.Errorf("deepq: actions must be enumerated " +
			"starting from 0")
	}

	if err := config.Validate(); err != nil {
		return &DeepQ{}, fmt.Errorf("deepq: invalid configuration: %v", err)
	}

	batchSize := config.BatchSize()
	numActions := int(env.ActionSpec().UpperBound.AtVec(0)) + 1
	epsilon := config.epsilonSchedule()
	init := config.InitWFn.InitWFn()

	// Behaviour network for selecting single actions
	g := G.NewGraph()
	behaviourPolicy, err := policy.NewMultiHeadEGreedyMLP(
		epsilon.Value(),
		env,
		1,
		g,
		config.PolicyLayers,
		config.Biases,
		init,
		config.Activations,
		seed,
	)
	if err != nil {
		return &DeepQ{}, err
	}
	behaviourPolicyVM := G.NewTapeMachine(g)

	// Target policy for greedy action selection in evaluation mode
	targetPolicyClone, err := behaviourPolicy.ClonePolicy()
	if err != nil {
		return &DeepQ{}, fmt.Errorf("deepq: could not create target "+
			"policy: %v", err)
	}
	targetPolicy := targetPolicyClone.(agent.EGreedyNNPolicy)
	targetPolicy.SetEpsilon(0.0)
	targetPolicyVM := G.NewTapeMachine(targetPolicy.Graph())

	// Target network which provides the update target
	targetNetClone, err := behaviourPolicy.ClonePolicyWithBatch(batchSize)
	if err != nil {
		return &DeepQ{}, fmt.Errorf("deepq: could not create target "+
			"network: %v", err)
	}
	targetNet := targetNetClone.(agent.EGreedyNNPolicy)
	targetNet.SetEpsilon(0.0)
	targetNetVM := G.NewTapeMachine(targetNet.Graph())

	// Training network which learns the weights
	trainNetClone, err := behaviourPolicy.ClonePolicyWithBatch(batchSize)
	if err != nil {
		return &DeepQ{}, fmt.Errorf("deepq: could not create learning "+
			"network: %v", err)
	}
	trainNet := trainNetClone.(agent.EGreedyNNPolicy)
	gTrain := trainNet.Graph()

	// Nodes to compute the update target: r + γ * max[Q'(s', a')]
	nextStateActionValues := G.NewMatrix(gTrain, tensor.Float64,
		G.WithShape(batchSize, numActions), G.WithName("targetActionVals"))
	rewards := G.NewVector(gTrain, tensor.Float64, G.WithShape(batchSize),
		G.WithName("reward"))
	discounts := G.NewVector(gTrain, tensor.Float64, G.WithShape(batchSize),
		G.WithName("discount"))

	updateTarget := G.Must(G.Max(nextStateActionValues, 1))
	updateTarget = G.Must(G.HadamardProd(updateTarget, discounts))
	updateTarget = G.Must(G.Add(updateTarget, rewards))

	// Action selected in the previous state, as one-hot vectors. These
	// are needed to compute the loss using the correct action value
	// since the network outputs one value per environmental action.
	selectedActions := G.NewMatrix(
		gTrain,
		tensor.Float64,
		G.WithName("actionSelected"),
		G.WithShape(batchSize, numActions),
	)
	selectedActionsValue := G.Must(G.HadamardProd(trainNet.Prediction()[0],
		selectedActions))
	selectedActionsValue = G.Must(G.Sum(selectedActionsValue, 1))

	tdErrors := G.Must(G.Sub(updateTarget, selectedActionsValue))
	losses, err := lossOf(tdErrors, config.LossDelta)
	if err != nil {
		return &DeepQ{}, fmt.Errorf("deepq: could not construct loss: %v",
			err)
	}
	cost := G.Must(G.Mean(losses))

	if _, err := G.Grad(cost, trainNet.Learnables()...); err != nil {
		return &DeepQ{}, fmt.Errorf("deepq: could not compute gradient: %v",
			err)
	}

	trainNetVM := G.NewTapeMachine(
		gTrain,
		G.BindDualValues(trainNet.Learnables()...),
	)

	// Experience replay buffer. Actions are stored as one-hot vectors.
	numFeatures := env.ObservationSpec().Shape.Len()
	replay, err := expreplay.Config{
		SampleSize:        batchSize,
		MinReplayCapacity: config.MinimumCapacity,
		MaxReplayCapacity: config.MaximumCapacity,
	}.Create(numFeatures, numActions, seed)
	if err != nil {
		return &DeepQ{}, fmt.Errorf("deepq: could not create experience "+
			"replay buffer: %v", err)
	}

	return &DeepQ{
		behaviourPolicy:       behaviourPolicy,
		behaviourPolicyVM:     behaviourPolicyVM,
		targetPolicy:          targetPolicy,
		targetPolicyVM:        targetPolicyVM,
		trainNet:              trainNet,
		trainNetVM:            trainNetVM,
		solver:                config.Solver,
		targetNet:             targetNet,
		targetNetVM:           targetNetVM,
		tau:                   config.Tau,
		targetUpdateInterval:  config.TargetUpdateInterval,
		epsilon:               epsilon,
		selectedActions:       selectedActions,
		numActions:            numActions,
		replay:                replay,
		nextStateActionValues: nextStateActionValues,
		rewards:               rewards,
		discounts:             discounts,
		batchSize:             batchSize,
	}, nil
}

// lossOf returns the per-sample loss node for a vector of TD errors.
// With a positive delta the loss is the Huber loss, quadratic for
// errors below delta and linear above it. Otherwise the loss is the
// squared error.
func lossOf(tdErrors *G.Node, delta float64) (*G.Node, error) {
	if delta <= 0 {
		return G.Square(tdErrors)
	}

	deltaConst := G.NewConstant(delta, G.WithName("lossDelta"))
	half := G.NewConstant(0.5)

	absErrors, err := G.Abs(tdErrors)
	if err != nil {
		return nil, err
	}

	quadratic := G.Must(G.Mul(half, G.Must(G.Square(tdErrors))))
	linear := G.Must(G.Mul(
		deltaConst,
		G.Must(G.Sub(absErrors, G.Must(G.Mul(half, deltaConst)))),
	))

	// Elementwise mask selecting the quadratic branch
	mask, err := G.Lt(absErrors, deltaConst, true)
	if err != nil {
		return nil, err
	}

	return G.Add(
		G.Must(G.HadamardProd(mask, G.Must(G.Sub(quadratic, linear)))),
		linear,
	)
}

// ObserveFirst observes and records the first episodic timestep
func (d *DeepQ) ObserveFirst(t ts.TimeStep) error {
	if !t.First() {
		return fmt.Errorf("observefirst: timestep %v is not the first of "+
			"its episode", t.Number)
	}
	d.prevStep = ts.TimeStep{}
	d.nextStep = t
	return nil
}

// Observe observes and records any timestep other than the first
// timestep
func (d *DeepQ) Observe(action mat.Vector, nextStep ts.TimeStep) error {
	if action.Len() != 1 {
		return fmt.Errorf("observe: value-based methods cannot use "+
			"multi-dimensional actions (action dim = %d)", action.Len())
	}

	// Add a transition to the replay buffer
	if !d.nextStep.First() {
		prevAction := mat.NewVecDense(d.numActions, nil)
		prevAction.SetVec(d.prevAction, 1.0)

		transition := ts.NewTransition(d.prevStep, prevAction, d.nextStep)
		if err := d.replay.Add(transition); err != nil {
			return fmt.Errorf("observe: could not store transition: %v", err)
		}
	}

	d.prevStep = d.nextStep
	d.nextStep = nextStep
	d.prevAction = int(action.AtVec(0))
	return nil
}

// Step updates the weights of the agent's policies. The update is
// silently skipped while the replay buffer holds fewer transitions
// than needed.
func (d *DeepQ) Step() error {
	S, A, R, discount, NextS, err := d.replay.Sample()
	if expreplay.IsEmptyBuffer(err) || expreplay.IsInsufficientSamples(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("step: could not sample from replay buffer: %v",
			err)
	}

	// Previous action one-hot vectors
	prevActions := tensor.New(
		tensor.WithShape(d.batchSize, d.numActions),
		tensor.WithBacking(A),
	)
	if err := G.Let(d.selectedActions, prevActions); err != nil {
		return fmt.Errorf("step: could not set selected actions: %v", err)
	}

	// Predict the action values in state S
	if err := d.trainNet.SetInput(S); err != nil {
		return fmt.Errorf("step: could not set trainNet input: %v", err)
	}

	// Predict the action values in the next state NextS
	if err := d.targetNet.SetInput(NextS); err != nil {
		return fmt.Errorf("step: could not set target net input: %v", err)
	}
	if err := d.targetNetVM.RunAll(); err != nil {
		return fmt.Errorf("step: could not run target network: %v", err)
	}

	err = G.Let(d.nextStateActionValues, d.targetNet.Output()[0])
	if err != nil {
		return fmt.Errorf("step: could not set next state-action values: %v",
			err)
	}

	rewardTensor := tensor.New(tensor.WithBacking(R),
		tensor.WithShape(d.batchSize))
	if err := G.Let(d.rewards, rewardTensor); err != nil {
		return fmt.Errorf("step: could not set rewards: %v", err)
	}

	discountTensor := tensor.New(tensor.WithBacking(discount),
		tensor.WithShape(d.batchSize))
	if err := G.Let(d.discounts, discountTensor); err != nil {
		return fmt.Errorf("step: could not set discounts: %v", err)
	}

	d.targetNetVM.Reset()

	// Run the learning step
	if err := d.trainNetVM.RunAll(); err != nil {
		return fmt.Errorf("step: could not run training network: %v", err)
	}
	if err := d.solver.Step(d.trainNet.Model()); err != nil {
		return fmt.Errorf("step: could not update weights: %v", err)
	}
	d.trainNetVM.Reset()
	d.gradientSteps++

	// Move the target network towards the learned weights
	if d.gradientSteps%d.targetUpdateInterval == 0 {
		if d.tau == 1.0 {
			err = d.targetNet.Set(d.trainNet)
		} else {
			err = d.targetNet.Polyak(d.trainNet, d.tau)
		}
		if err != nil {
			return fmt.Errorf("step: could not update target network: %v",
				err)
		}
	}

	if err := d.targetPolicy.Set(d.trainNet); err != nil {
		return fmt.Errorf("step: could not update target policy: %v", err)
	}
	if err := d.behaviourPolicy.Set(d.trainNet); err != nil {
		return fmt.Errorf("step: could not update behaviour policy: %v", err)
	}
	return nil
}

// SelectAction runs the necessary VMs and returns an action selected
// by the behaviour policy, or by the greedy target policy in
// evaluation mode. In training mode the exploration rate follows the
// agent's schedule, advancing one step per call.
func (d *DeepQ) SelectAction(t ts.TimeStep) *mat.VecDense {
	var p agent.EGreedyNNPolicy
	var vm G.VM

	if d.eval {
		p = d.targetPolicy
		vm = d.targetPolicyVM
	} else {
		p = d.behaviourPolicy
		vm = d.behaviourPolicyVM
		p.SetEpsilon(d.epsilon.Next())
	}

	obs := t.Observation.(*mat.VecDense).RawVector().Data
	if err := p.SetInput(obs); err != nil {
		panic(fmt.Sprintf("selectaction: %v", err))
	}

	if err := vm.RunAll(); err != nil {
		panic(fmt.Sprintf("selectaction: could not run policy: %v", err))
	}
	action, _ := p.SelectAction()
	vm.Reset()

	return action
}

// TdError calculates the TD error generated by the learner on some
// transition.
func (d *DeepQ) TdError(t ts.Transition) float64 {
	state := t.State.(*mat.VecDense)
	d.behaviourPolicy.SetInput(state.RawVector().Data)
	d.behaviourPolicyVM.RunAll()
	_, actionValue := d.behaviourPolicy.SelectAction()
	d.behaviourPolicyVM.Reset()

	nextState := t.NextState.(*mat.VecDense)
	d.targetPolicy.SetInput(nextState.RawVector().Data)
	d.targetPolicyVM.RunAll()
	_, nextActionValue := d.targetPolicy.SelectAction()
	d.targetPolicyVM.Reset()

	return t.Reward + t.Discount*nextActionValue - actionValue
}

// Epsilon returns the agent's current exploration rate
func (d *DeepQ) Epsilon() float64 {
	return d.epsilon.Value()
}

// Eval sets the agent into evaluation mode
func (d *DeepQ) Eval() {
	d.eval = true
}

// Train sets the agent into training mode
func (d *DeepQ) Train() {
	d.eval = false
}

// IsEval returns whether the agent is in evaluation mode
func (d *DeepQ) IsEval() bool {
	return d.eval
}

// EndEpisode performs cleanup at the end of an episode
func (d *DeepQ) EndEpisode() {}

// Close closes the VMs used by the agent
func (d *DeepQ) Close() error {
	if err := d.behaviourPolicyVM.Close(); err != nil {
		return err
	}
	if err := d.targetPolicyVM.Close(); err != nil {
		return err
	}
	if err := d.targetNetVM.Close(); err != nil {
		return err
	}
	return d.trainNetVM.Close()
}

// GobEncode implements the gob.GobEncoder interface. The weights of
// the greedy target policy are encoded, which is the policy followed
// in evaluation mode.
func (d *DeepQ) GobEncode() ([]byte, error) {
	encoder, ok := d.targetPolicy.(gob.GobEncoder)
	if !ok {
		return nil, fmt.Errorf("gobencode: target policy of type %T is "+
			"not encodable", d.targetPolicy)
	}
	return encoder.GobEncode()
}

// GobDecode implements the gob.GobDecoder interface. The decoded
// weights are copied into all of the agent's networks.
func (d *DeepQ) GobDecode(in []byte) error {
	scratch, err := d.targetPolicy.ClonePolicy()
	if err != nil {
		return fmt.Errorf("gobdecode: could not clone target policy: %v",
			err)
	}
	decoder, ok := scratch.(gob.GobDecoder)
	if !ok {
		return fmt.Errorf("gobdecode: target policy of type %T is not "+
			"decodable", scratch)
	}
	if err := decoder.GobDecode(in); err != nil {
		return fmt.Errorf("gobdecode: could not decode policy: %v", err)
	}

	networks := []agent.EGreedyNNPolicy{d.behaviourPolicy, d.targetPolicy,
		d.trainNet, d.targetNet}
	for _, net := range networks {
		if err := net.Set(scratch.Network()); err != nil {
			return fmt.Errorf("gobdecode: could not copy weights: %v", err)
		}
	}
	return nil
}
