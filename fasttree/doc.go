// Package fasttree implements gradient boosted regression trees.
//
// Trees are grown leaf-wise: at every step the leaf whose best split has the
// largest gain is split, until NumLeaves is reached or no split satisfies the
// MinDataInLeaf and MinGainToSplit constraints. Splits are found by exact
// greedy search over pre-sorted feature values.
//
// Training is deterministic for a fixed input and Seed. Row subsampling is
// the only randomised step and is off unless SubsampleFraction < 1.
//
// Example:
//
//	params := fasttree.DefaultParams()
//	trainer := fasttree.NewTrainer(params).WithCallbacks(fasttree.LogEvaluation(10))
//	ensemble, err := trainer.Fit(ctx, X, y)
//	price, err := ensemble.Predict([]float64{2003, 2008, 1710, 0.36})
package fasttree
