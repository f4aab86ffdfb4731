package main

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var skwColumns = []string{"free", "bound", "total"}

// PlotSkw draws the dynamic structure factor columns of data against
// the energy shift in column 0 and saves the figure to filename. The
// format follows the file extension.
func PlotSkw(filename string, data *mat.Dense) error {
	r, c := data.Dims()
	if c < 1+len(skwColumns) {
		return fmt.Errorf("%w: %d columns, wanted at least %d",
			ErrRunData, c, 1+len(skwColumns))
	}
	p := plot.New()
	p.Title.Text = "Dynamic structure factor"
	p.X.Label.Text = "energy shift [eV]"
	p.Y.Label.Text = "S(k, ω) [1/eV]"
	p.Add(plotter.NewGrid())
	for j, name := range skwColumns {
		pts := make(plotter.XYs, r)
		for i := range pts {
			pts[i].X = data.At(i, 0)
			pts[i].Y = data.At(i, j+1)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(j)
		line.Dashes = plotutil.Dashes(j)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	p.Legend.Top = true
	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}
