package main

import (
	"fmt"
	"image/color"

	"github.com/lucasmaystre/gpinterp/batch"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	plotOut    string
	plotLo     float64
	plotHi     float64
	plotPoints int
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot the posterior mean and a two standard deviation band",
	Long: `Plot the posterior of one-dimensional data. The band spans the posterior
mean plus or minus two standard deviations; the sample means are drawn on
top. The range defaults to the span of the abscissae.`,
	RunE: runPlot,
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVarP(&plotOut, "out", "o", "posterior.png", "Output image (.png, .svg, .pdf)")
	plotCmd.Flags().Float64Var(&plotLo, "lo", 0, "Lower end of the plotted range")
	plotCmd.Flags().Float64Var(&plotHi, "hi", 0, "Upper end of the plotted range")
	plotCmd.Flags().IntVar(&plotPoints, "points", 200, "Number of evaluation points")
}

func runPlot(cmd *cobra.Command, args []string) error {
	m, err := loadModel()
	if err != nil {
		return err
	}
	if _, n := m.Engine.Dims(); n != 1 {
		return fmt.Errorf("plot needs one-dimensional data, got %d dimensions", n)
	}
	x := m.Engine.DataAbscissa()
	lo, hi := plotLo, plotHi
	if lo >= hi {
		lo, hi = columnRange(x.RawMatrix().Data)
	}
	preds, err := batch.Predict(m.Engine, batch.Grid(lo, hi, plotPoints), workers)
	if err != nil {
		return err
	}

	band := make(plotter.XYs, 0, 2*len(preds))
	line := make(plotter.XYs, len(preds))
	for i, p := range preds {
		line[i] = plotter.XY{X: p.Query[0], Y: p.Mean}
		band = append(band, plotter.XY{X: p.Query[0], Y: p.Mean + 2*p.Std()})
	}
	for i := len(preds) - 1; i >= 0; i-- {
		p := preds[i]
		band = append(band, plotter.XY{X: p.Query[0], Y: p.Mean - 2*p.Std()})
	}
	ys := m.Engine.DataMean()
	data := make(plotter.XYs, ys.Len())
	for i := range data {
		data[i] = plotter.XY{X: x.At(i, 0), Y: ys.AtVec(i)}
	}

	pl := plot.New()
	pl.Title.Text = "Posterior"
	pl.X.Label.Text = "x"
	pl.Y.Label.Text = "f(x)"

	poly, err := plotter.NewPolygon(band)
	if err != nil {
		return err
	}
	poly.Color = color.RGBA{R: 100, G: 149, B: 237, A: 96}
	poly.LineStyle.Width = 0
	mean, err := plotter.NewLine(line)
	if err != nil {
		return err
	}
	mean.LineStyle.Color = color.RGBA{B: 139, A: 255}
	mean.LineStyle.Width = vg.Points(1.5)
	samples, err := plotter.NewScatter(data)
	if err != nil {
		return err
	}
	samples.GlyphStyle.Color = color.RGBA{R: 178, G: 34, B: 34, A: 255}

	pl.Add(poly, mean, samples)
	pl.Legend.Add("mean ± 2 sd", poly)
	pl.Legend.Add("samples", samples)
	if err := pl.Save(6*vg.Inch, 4*vg.Inch, plotOut); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", plotOut)
	return nil
}

func columnRange(xs []float64) (lo, hi float64) {
	lo, hi = floats.Min(xs), floats.Max(xs)
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	return lo, hi
}
