// Package houseprice trains a regression model that predicts house sale
// prices from a handful of tabular features.
//
// The program loads a CSV training set, fits a declarative chain of feature
// transforms followed by a gradient-boosted tree regressor, saves and reloads
// the model, evaluates it on a held-out CSV test set and prints predictions.
//
// # Packages
//
//   - dataset: CSV loading into typed records and prediction CSV output
//   - pipeline: transform specs, fitted model archives and the training engine
//   - fasttree: gradient boosted regression trees
//   - preprocessing: Min-Max, standard and one-hot encoders over gonum matrices
//   - metrics: RMSE, MSE, MAE and R²
//   - workflow: the load, train, persist, evaluate and predict stages
//   - report: console output and predicted-vs-actual plots
//
// # Quick Start
//
//	houseprice run --train data/train.csv --test data/test.csv
//
// or from Go:
//
//	engine := pipeline.NewEngine(pipeline.DefaultSpec())
//	m, err := engine.Fit(ctx, records)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	price, err := engine.Predict(ctx, m, dataset.Record{
//	    LotArea: 8450, YearRemodAdd: 2003, YrSold: 2008, GrLivArea: 1710,
//	})
//
// # Configuration
//
// The command reads defaults, an optional config file (--config), HOUSEPRICE_*
// environment variables and flags, in increasing priority. See configs/.
package houseprice
