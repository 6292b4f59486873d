package cmd

import (
	"image/color"
	"time"

	"github.com/notargets/avs/chart2d"
	utils2 "github.com/notargets/avs/utils"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/netsolver/InputParameters"
	"github.com/notargets/netsolver/utils"
)

// RowLines converts every grid row into line segments of u against the
// column coordinate, cycling through a few colors by row
func RowLines(G *utils.GridBuffer, ip *InputParameters.SolverParameters) (lines map[color.RGBA][]float32) {
	var (
		palette = []color.RGBA{utils2.RED, utils2.GREEN, utils2.BLUE, utils2.WHITE}
	)
	lines = make(map[color.RGBA][]float32)
	for r := 0; r < G.Height(); r++ {
		var (
			row = G.RowView(r, 0, G.Width())
			col = palette[r%len(palette)]
		)
		for c := 0; c+1 < len(row); c++ {
			lines[col] = append(lines[col],
				float32(float64(c)*ip.XStep), float32(row[c]),
				float32(float64(c+1)*ip.XStep), float32(row[c+1]),
			)
		}
	}
	return
}

// PlotRows opens a chart of the solution and does not return
func PlotRows(G *utils.GridBuffer, ip *InputParameters.SolverParameters) {
	var (
		data       = G.M.RawMatrix().Data
		xMin, xMax = float32(0), float32(float64(G.Width()-1) * ip.XStep)
		yMin, yMax = float32(floats.Min(data)), float32(floats.Max(data))
	)
	if xMax == xMin {
		xMax = xMin + 1
	}
	if yMax == yMin {
		yMin, yMax = yMin-1, yMax+1
	}
	ch := chart2d.NewChart2D(xMin, xMax, yMin, yMax,
		1024, 1024, utils2.WHITE, utils2.BLACK)
	for col, line := range RowLines(G, ip) {
		ch.AddLine(line, col)
	}
	for {
		time.Sleep(time.Second)
	}
}
