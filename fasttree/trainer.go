package fasttree

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

// Trainer implements gradient boosting over regression trees
type Trainer struct {
	params    TrainingParams
	objective Objective
	callbacks *CallbackList
	logger    log.Logger

	// Data
	X    *mat.Dense
	y    []float64
	rows int
	cols int

	// orderedIdx[j] lists row indices sorted by feature j
	orderedIdx [][]int

	// scores caches the current ensemble prediction for every row
	scores    []float64
	gradients []float64
	hessians  []float64

	// nodeOf maps a row to the tree node it currently sits in, -1 when out of bag
	nodeOf  []int
	members []int

	rng *rand.Rand
}

// SplitInfo contains information about a potential split
type SplitInfo struct {
	Feature    int
	Threshold  float64
	Gain       float64
	LeftCount  int
	RightCount int
	LeftGrad   float64
	RightGrad  float64
	LeftHess   float64
	RightHess  float64
}

func (s SplitInfo) valid() bool {
	return s.Feature >= 0
}

type leafCandidate struct {
	node  int
	depth int
	split SplitInfo
}

// NewTrainer creates a trainer. Zero-valued parameters take DefaultParams values.
func NewTrainer(params TrainingParams) *Trainer {
	return &Trainer{
		params:    params.ApplyDefaults(),
		callbacks: NewCallbackList(),
		logger:    log.GetLoggerWithName("fasttree.trainer"),
	}
}

// WithCallbacks sets the callbacks for training
func (t *Trainer) WithCallbacks(callbacks ...Callback) *Trainer {
	t.callbacks = NewCallbackList(callbacks...)
	return t
}

// Params returns the effective parameters.
func (t *Trainer) Params() TrainingParams {
	return t.params
}

// Fit trains an ensemble on X (rows × features) and targets y.
//
// Errors are TrainingError values: invalid parameters, empty or non-finite
// input, a non-finite loss or leaf value, or a cancelled context.
func (t *Trainer) Fit(ctx context.Context, X mat.Matrix, y []float64) (ensemble *Ensemble, err error) {
	defer errors.Recover(&err, "Trainer.Fit")

	if err := t.params.Validate(); err != nil {
		return nil, errors.NewTrainingError("Trainer.Fit", "invalid parameters", err)
	}
	objective, err := NewObjective(t.params)
	if err != nil {
		return nil, errors.NewTrainingError("Trainer.Fit", "invalid parameters", err)
	}
	t.objective = objective

	if err := t.initialize(X, y); err != nil {
		return nil, err
	}

	start := time.Now()
	t.logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, t.rows,
		log.FeaturesKey, t.cols,
		log.LearningRateKey, t.params.LearningRate,
		"num_trees", t.params.NumIterations,
		"num_leaves", t.params.NumLeaves,
		"objective", t.objective.Name(),
	)

	initScore := t.objective.InitScore(t.y)
	if err := errors.CheckScalar("init_score", initScore, 0); err != nil {
		return nil, errors.NewTrainingError("Trainer.Fit", "did not converge", err)
	}
	for i := range t.scores {
		t.scores[i] = initScore
	}

	trees := make([]Tree, 0, t.params.NumIterations)
	var loss float64
	for iter := 0; iter < t.params.NumIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewTrainingError("Trainer.Fit", "cancelled", err)
		}

		t.calculateGradients()

		tree, err := t.buildTree(iter, t.sampleRows())
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
		t.updateScores(&tree)

		var rmse float64
		loss, rmse = t.calculateLoss()
		if err := errors.CheckScalar(EvalTrainingLoss, loss, iter); err != nil {
			return nil, errors.NewTrainingError("Trainer.Fit", "did not converge", err)
		}

		evalResults := map[string]float64{
			EvalTrainingLoss: loss,
			EvalTrainingRMSE: rmse,
		}
		if err := t.callbacks.AfterIteration(iter, t.params.NumIterations, evalResults); err != nil {
			return nil, errors.NewTrainingError("Trainer.Fit", "callback failed", err)
		}
		if t.callbacks.ShouldStop() {
			t.logger.Info("Training stopped by callback", log.IterationKey, iter)
			break
		}
	}

	ensemble = &Ensemble{
		InitScore:   initScore,
		Trees:       trees,
		NumFeatures: t.cols,
		Params:      t.params,
	}
	ensemble.SetFitted()

	t.logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		"trees", len(trees),
		log.LossKey, loss,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	t.release()
	return ensemble, nil
}

// initialize validates the input and prepares the training data structures
func (t *Trainer) initialize(X mat.Matrix, y []float64) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewTrainingError("Trainer.Fit", "no training rows", errors.ErrEmptyData)
	}
	if len(y) != rows {
		return errors.NewTrainingError("Trainer.Fit", "label count does not match rows",
			errors.NewDimensionError("Trainer.Fit", rows, len(y), 0))
	}

	t.X = mat.DenseCopyOf(X)
	t.y = append([]float64(nil), y...)
	t.rows, t.cols = rows, cols

	if err := errors.CheckNumericalStability("features", t.X.RawMatrix().Data, 0); err != nil {
		return errors.NewTrainingError("Trainer.Fit", "non-finite feature value", err)
	}
	if err := errors.CheckNumericalStability("labels", t.y, 0); err != nil {
		return errors.NewTrainingError("Trainer.Fit", "non-finite label", err)
	}

	t.scores = make([]float64, rows)
	t.gradients = make([]float64, rows)
	t.hessians = make([]float64, rows)
	t.nodeOf = make([]int, rows)
	t.members = make([]int, 0, rows)
	t.rng = rand.New(rand.NewSource(t.params.Seed))

	// Create sorted indices for each feature
	t.orderedIdx = make([][]int, cols)
	for j := 0; j < cols; j++ {
		indices := make([]int, rows)
		for i := range indices {
			indices[i] = i
		}
		feature := j
		sort.SliceStable(indices, func(a, b int) bool {
			return t.X.At(indices[a], feature) < t.X.At(indices[b], feature)
		})
		t.orderedIdx[j] = indices
	}
	return nil
}

// release drops references to the training data.
func (t *Trainer) release() {
	t.X, t.y = nil, nil
	t.orderedIdx = nil
	t.scores, t.gradients, t.hessians = nil, nil, nil
	t.nodeOf, t.members = nil, nil
}

// sampleRows returns the sorted row indices used for the next tree.
func (t *Trainer) sampleRows() []int {
	if t.params.SubsampleFraction >= 1 {
		bag := make([]int, t.rows)
		for i := range bag {
			bag[i] = i
		}
		return bag
	}
	k := int(t.params.SubsampleFraction * float64(t.rows))
	if k < 1 {
		k = 1
	}
	bag := t.rng.Perm(t.rows)[:k]
	sort.Ints(bag)
	return bag
}

// calculateGradients computes gradients and hessians from the cached scores
func (t *Trainer) calculateGradients() {
	for i := 0; i < t.rows; i++ {
		t.gradients[i], t.hessians[i] = t.objective.Gradient(t.scores[i], t.y[i])
	}
}

// buildTree grows one tree leaf-wise on the rows in bag.
func (t *Trainer) buildTree(iter int, bag []int) (Tree, error) {
	for i := range t.nodeOf {
		t.nodeOf[i] = -1
	}
	var sumGrad, sumHess float64
	for _, r := range bag {
		t.nodeOf[r] = 0
		sumGrad += t.gradients[r]
		sumHess += t.hessians[r]
	}

	tree := Tree{
		ShrinkageRate: t.params.LearningRate,
		Nodes:         []Node{newLeaf(t.leafValue(sumGrad, sumHess), len(bag))},
	}

	candidates := []leafCandidate{t.candidate(0, 0, len(bag), sumGrad, sumHess)}
	for leaves := 1; leaves < t.params.NumLeaves; leaves++ {
		best := -1
		for i := range candidates {
			if !candidates[i].split.valid() {
				continue
			}
			if best < 0 || candidates[i].split.Gain > candidates[best].split.Gain {
				best = i
			}
		}
		if best < 0 {
			break
		}
		c := candidates[best]
		candidates = append(candidates[:best], candidates[best+1:]...)

		s := c.split
		left, right := len(tree.Nodes), len(tree.Nodes)+1
		tree.Nodes = append(tree.Nodes,
			newLeaf(t.leafValue(s.LeftGrad, s.LeftHess), s.LeftCount),
			newLeaf(t.leafValue(s.RightGrad, s.RightHess), s.RightCount),
		)
		node := &tree.Nodes[c.node]
		node.LeftChild = left
		node.RightChild = right
		node.SplitFeature = s.Feature
		node.Threshold = s.Threshold
		node.Gain = s.Gain

		for _, r := range bag {
			if t.nodeOf[r] != c.node {
				continue
			}
			if t.X.At(r, s.Feature) <= s.Threshold {
				t.nodeOf[r] = left
			} else {
				t.nodeOf[r] = right
			}
		}

		candidates = append(candidates,
			t.candidate(left, c.depth+1, s.LeftCount, s.LeftGrad, s.LeftHess),
			t.candidate(right, c.depth+1, s.RightCount, s.RightGrad, s.RightHess),
		)
	}

	for i := range tree.Nodes {
		if !tree.Nodes[i].IsLeaf() {
			continue
		}
		if err := errors.CheckScalar("leaf_value", tree.Nodes[i].LeafValue, iter); err != nil {
			return Tree{}, errors.NewTrainingError("Trainer.Fit", "did not converge", err)
		}
	}
	return tree, nil
}

// candidate evaluates the best split of a leaf, or marks it unsplittable.
func (t *Trainer) candidate(node, depth, count int, sumGrad, sumHess float64) leafCandidate {
	c := leafCandidate{node: node, depth: depth, split: SplitInfo{Feature: -1}}
	if t.params.MaxDepth > 0 && depth >= t.params.MaxDepth {
		return c
	}
	if count < 2*t.params.MinDataInLeaf {
		return c
	}
	c.split = t.findBestSplit(node, sumGrad, sumHess)
	return c
}

// findBestSplit finds the best split over all features for the rows in node
func (t *Trainer) findBestSplit(node int, totalGrad, totalHess float64) SplitInfo {
	best := SplitInfo{Feature: -1, Gain: t.params.MinGainToSplit}

	for j := 0; j < t.cols; j++ {
		members := t.members[:0]
		for _, r := range t.orderedIdx[j] {
			if t.nodeOf[r] == node {
				members = append(members, r)
			}
		}
		t.members = members

		var leftGrad, leftHess float64
		n := len(members)
		for i := 0; i < n-1; i++ {
			r := members[i]
			leftGrad += t.gradients[r]
			leftHess += t.hessians[r]
			leftCount := i + 1
			rightCount := n - leftCount

			if leftCount < t.params.MinDataInLeaf {
				continue
			}
			if rightCount < t.params.MinDataInLeaf {
				break
			}

			value, next := t.X.At(r, j), t.X.At(members[i+1], j)
			// Skip if same value
			if value == next {
				continue
			}

			rightGrad := totalGrad - leftGrad
			rightHess := totalHess - leftHess
			gain := t.calculateSplitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess)
			if gain > best.Gain {
				best = SplitInfo{
					Feature:    j,
					Threshold:  (value + next) / 2,
					Gain:       gain,
					LeftCount:  leftCount,
					RightCount: rightCount,
					LeftGrad:   leftGrad,
					RightGrad:  rightGrad,
					LeftHess:   leftHess,
					RightHess:  rightHess,
				}
			}
		}
	}
	return best
}

// calculateSplitGain calculates the gain from a split
func (t *Trainer) calculateSplitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess float64) float64 {
	lambda := t.params.Lambda

	leftScore := (leftGrad * leftGrad) / (leftHess + lambda)
	rightScore := (rightGrad * rightGrad) / (rightHess + lambda)
	totalScore := (totalGrad * totalGrad) / (totalHess + lambda)

	return 0.5 * (leftScore + rightScore - totalScore)
}

// leafValue is the Newton step -G/(H+λ)
func (t *Trainer) leafValue(sumGrad, sumHess float64) float64 {
	denom := sumHess + t.params.Lambda
	if math.Abs(denom) < 1e-10 {
		denom = 1e-10
	}
	return -sumGrad / denom
}

// updateScores adds the new tree's output to every row's cached score.
func (t *Trainer) updateScores(tree *Tree) {
	for i := 0; i < t.rows; i++ {
		t.scores[i] += tree.Predict(t.X.RawRowView(i))
	}
}

// calculateLoss returns the mean objective loss and the RMSE over all rows.
func (t *Trainer) calculateLoss() (loss, rmse float64) {
	var sq float64
	for i := 0; i < t.rows; i++ {
		loss += t.objective.Loss(t.scores[i], t.y[i])
		d := t.scores[i] - t.y[i]
		sq += d * d
	}
	n := float64(t.rows)
	return loss / n, math.Sqrt(sq / n)
}
