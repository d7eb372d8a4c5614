package fasttree

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/houseprice/pkg/log"
)

// Evaluation names reported to callbacks after every iteration.
const (
	EvalTrainingLoss = "training_loss"
	EvalTrainingRMSE = "training_rmse"
)

// CallbackEnv contains the environment for callbacks
type CallbackEnv struct {
	Iteration     int
	NumIterations int
	EvalResults   map[string]float64
	StopTraining  bool
}

// Callback is a function called after each boosting iteration
type Callback func(env *CallbackEnv) error

// LogEvaluation logs evaluation results every period iterations at debug level.
func LogEvaluation(period int) Callback {
	if period <= 0 {
		period = 1
	}
	logger := log.GetLoggerWithName("fasttree.trainer")
	return func(env *CallbackEnv) error {
		last := env.Iteration == env.NumIterations-1
		if env.Iteration%period != 0 && !last {
			return nil
		}
		fields := []any{log.IterationKey, env.Iteration}
		names := make([]string, 0, len(env.EvalResults))
		for name := range env.EvalResults {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fields = append(fields, name, env.EvalResults[name])
		}
		logger.Debug("Training progress", fields...)
		return nil
	}
}

// RecordEvaluation records evaluation history
func RecordEvaluation(history *map[string][]float64) Callback {
	return func(env *CallbackEnv) error {
		if *history == nil {
			*history = make(map[string][]float64)
		}
		for name, value := range env.EvalResults {
			(*history)[name] = append((*history)[name], value)
		}
		return nil
	}
}

// EarlyStopping stops training when metric has not improved by more than
// minDelta for rounds consecutive iterations.
func EarlyStopping(rounds int, metric string, minDelta float64) Callback {
	best := math.Inf(1)
	stale := 0
	return func(env *CallbackEnv) error {
		value, ok := env.EvalResults[metric]
		if !ok {
			return nil
		}
		if value < best-minDelta {
			best = value
			stale = 0
			return nil
		}
		stale++
		if stale >= rounds {
			env.StopTraining = true
		}
		return nil
	}
}

// CallbackList manages multiple callbacks
type CallbackList struct {
	callbacks []Callback
	stop      bool
}

// NewCallbackList creates a new callback list
func NewCallbackList(callbacks ...Callback) *CallbackList {
	return &CallbackList{callbacks: callbacks}
}

// AfterIteration runs every callback in order. The first error aborts.
func (cl *CallbackList) AfterIteration(iteration, numIterations int, evalResults map[string]float64) error {
	env := &CallbackEnv{
		Iteration:     iteration,
		NumIterations: numIterations,
		EvalResults:   evalResults,
	}
	for _, cb := range cl.callbacks {
		if err := cb(env); err != nil {
			return err
		}
	}
	cl.stop = env.StopTraining
	return nil
}

// ShouldStop reports whether a callback requested the end of training.
func (cl *CallbackList) ShouldStop() bool {
	return cl.stop
}
