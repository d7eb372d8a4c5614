package errors

import (
	"fmt"
	"io/fs"
	"os"
	"strings"
	"testing"
)

func TestModelErrorCarriesStack(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"corrupt archive": {
			err:  NewModelError("LoadModel", "corrupt archive", fmt.Errorf("zip: not a valid zip file")),
			want: "houseprice: LoadModel: corrupt archive: zip: not a valid zip file",
		},
		"missing entry": {
			err:  NewModelError("LoadModel", "missing ensemble.json", nil),
			want: "houseprice: LoadModel: missing ensemble.json",
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if c.err.Error() != c.want {
				t.Errorf("Error() = %q, want %q", c.err.Error(), c.want)
			}
			if !strings.Contains(fmt.Sprintf("%+v", c.err), "errors_test.go") {
				t.Error("verbose format should print the construction site")
			}
			var me *ModelError
			if !As(c.err, &me) || me.Op != "LoadModel" {
				t.Errorf("expected *ModelError with Op LoadModel, got %#v", me)
			}
		})
	}
}

func TestDefaultedValueWarning(t *testing.T) {
	w := NewDefaultedValueWarning("test.csv", []string{"SalePrice", "MSSubClass"}, 3)
	want := "3 optional values in test.csv could not be parsed and were set to 0 (columns: SalePrice, MSSubClass)"
	if w.Error() != want {
		t.Errorf("Error() = %q, want %q", w.Error(), want)
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 4, 3, 1)

	want := "houseprice: Predict: dimension mismatch on axis 1 (features). Expected 4, got 3"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("Ensemble", "Predict")

	want := "houseprice: Ensemble: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestIOErrorWrapsNotExist(t *testing.T) {
	_, openErr := os.Open("/definitely/not/here.csv")
	err := NewIOError("open", "/definitely/not/here.csv", openErr)

	if !IsIOError(err) {
		t.Fatal("IsIOError should be true")
	}
	// ファイル不存在はfs.ErrNotExistまで辿れること
	if !Is(err, fs.ErrNotExist) {
		t.Error("Expected Is(err, fs.ErrNotExist) to be true")
	}
	if !strings.Contains(err.Error(), "/definitely/not/here.csv") {
		t.Errorf("Error message should contain the path: %s", err.Error())
	}
}

func TestParseErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "missing column",
			err:  NewMissingColumnError("train.csv", "GrLivArea"),
			want: `houseprice: parse train.csv: required column "GrLivArea" is missing`,
		},
		{
			name: "invalid number",
			err:  NewParseError("train.csv", 3, "17", "LotArea", "abc", nil),
			want: `houseprice: parse train.csv: row 3 (id="17"): column "LotArea": invalid number "abc"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.want {
				t.Errorf("Error() = %v, want %v", tt.err.Error(), tt.want)
			}
			if !IsParseError(tt.err) {
				t.Error("IsParseError should be true")
			}
			if IsIOError(tt.err) || IsTrainingError(tt.err) || IsPredictionError(tt.err) {
				t.Error("ParseError must not match other kinds")
			}
		})
	}
}

func TestTrainingAndPredictionErrorKinds(t *testing.T) {
	cause := NewNumericalInstabilityError("leaf_value", []float64{1, 2, 3, 4, 5, 6}, 7)
	trainErr := NewTrainingError("Engine.Fit", "estimator did not converge", cause)

	if !IsTrainingError(trainErr) {
		t.Error("IsTrainingError should be true")
	}
	var instability *NumericalInstabilityError
	if !As(trainErr, &instability) {
		t.Fatal("TrainingError should unwrap to NumericalInstabilityError")
	}
	if instability.Iteration != 7 {
		t.Errorf("Iteration = %d, want 7", instability.Iteration)
	}
	if !strings.Contains(trainErr.Error(), "...") {
		t.Errorf("long value lists should be truncated: %s", trainErr.Error())
	}

	predErr := NewPredictionError("1461", "feature GrLivArea is not finite", nil)
	if !IsPredictionError(predErr) {
		t.Error("IsPredictionError should be true")
	}
	want := `houseprice: predict id="1461": feature GrLivArea is not finite`
	if predErr.Error() != want {
		t.Errorf("Error() = %v, want %v", predErr.Error(), want)
	}
}

func TestWarnUsesConfiguredHandler(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewUndefinedMetricWarning("r2", "constant targets", 0))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	if !strings.Contains(got[0].Error(), "r2 is undefined (constant targets)") {
		t.Errorf("unexpected warning text: %v", got[0])
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d, got %d", "Fit", 10, 0)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}

	expectedMsg := "in Fit: expected 10, got 0"
	if !strings.Contains(wrapped.Error(), expectedMsg) {
		t.Errorf("Expected wrapped error to contain %q", expectedMsg)
	}
}

func TestErrorChaining(t *testing.T) {
	err1 := fmt.Errorf("base error")
	err2 := Wrap(err1, "wrapped once")
	err3 := NewModelError("Operation", "failed", err2)

	if !strings.Contains(err3.Error(), "base error") {
		t.Error("Expected error chain to contain base error")
	}

	// スタックトレースの確認（詳細表示）
	formatted := fmt.Sprintf("%+v", err3)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected detailed error to contain stack trace")
	}
}
