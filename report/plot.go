package report

import (
	"image/color"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// WriteScatter は実測値と予測値の散布図を path に保存する
//
// 対角線 y = x を重ねて描くので、線に近いほど予測が正確である。
// 形式は拡張子（.png, .svg, .pdf など）で決まる。
func WriteScatter(path string, actual, predicted []float64) error {
	if len(actual) == 0 {
		return errors.NewValueError("WriteScatter", "no points to plot")
	}
	if len(actual) != len(predicted) {
		return errors.NewDimensionError("WriteScatter", len(actual), len(predicted), 0)
	}

	p := plot.New()
	p.Title.Text = "Predicted vs actual SalePrice"
	p.X.Label.Text = "Actual"
	p.Y.Label.Text = "Predicted"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(actual))
	for i := range actual {
		pts[i].X = actual[i]
		pts[i].Y = predicted[i]
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.NewValueError("WriteScatter", err.Error())
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(2)
	s.Color = color.RGBA{R: 50, G: 50, B: 255, A: 255}
	p.Add(s)

	lo := floats.Min(actual)
	if m := floats.Min(predicted); m < lo {
		lo = m
	}
	hi := floats.Max(actual)
	if m := floats.Max(predicted); m > hi {
		hi = m
	}
	diagonal, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return errors.NewValueError("WriteScatter", err.Error())
	}
	diagonal.Color = color.RGBA{R: 255, A: 255}
	diagonal.LineStyle.Width = vg.Points(1)
	p.Add(diagonal)

	if err := p.Save(5*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.NewIOError("write plot", path, err)
	}
	return nil
}
