// Command houseprice trains a house sale price regressor, evaluates it on a
// held-out set and prints predictions.
//
//	houseprice run --train data/train.csv --test data/test.csv
//	houseprice train --model HousePriceModel.zip
//	houseprice evaluate --model HousePriceModel.zip --test data/test.csv
//	houseprice predict --lot-area 8450 --year-remod-add 2003 --yr-sold 2008 --gr-liv-area 1710
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "houseprice:", err)
		stop()
		os.Exit(1)
	}
}
