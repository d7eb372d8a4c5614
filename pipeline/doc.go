// Package pipeline turns a declarative Spec into a fitted Model.
//
// A Spec lists transform steps (minmax, standardize, onehot, concat) applied in
// order to a Frame of named columns, followed by a FastTree estimator trained on
// the Features column. Step parameters are fitted from the training records only
// and frozen afterwards, so evaluation and prediction never refit.
//
// Models are saved as zip archives holding spec.yaml, transforms.json,
// ensemble.json and meta.json.
package pipeline
