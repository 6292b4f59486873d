package utils

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// GridBuffer is a dense row-major grid of values owned by exactly one worker.
//
// Reads outside of [0,height)x[0,width) return zero. The scheme relies on this
// as its boundary approximation: the row before row zero and the columns beyond
// the last column are treated as zero-valued rather than special cased.
type GridBuffer struct {
	M             *mat.Dense
	height, width int
}

func NewGridBuffer(nrows, ncols int) (G *GridBuffer) {
	if nrows <= 0 || ncols <= 0 {
		err := fmt.Errorf("invalid grid allocation: nrows, ncols = %v, %v", nrows, ncols)
		panic(err)
	}
	G = &GridBuffer{
		M:      mat.NewDense(nrows, ncols, make([]float64, nrows*ncols)),
		height: nrows,
		width:  ncols,
	}
	return
}

func (G *GridBuffer) Height() int { return G.height }
func (G *GridBuffer) Width() int  { return G.width }

// At returns zero for any index outside of the buffer
func (G *GridBuffer) At(row, col int) float64 {
	if row < 0 || col < 0 || row >= G.height || col >= G.width {
		return 0
	}
	return G.M.At(row, col)
}

func (G *GridBuffer) Set(row, col int, val float64) {
	if row < 0 || col < 0 || row >= G.height || col >= G.width {
		err := fmt.Errorf("index out of bounds: row, col = %d, %d, max_bounds = %d, %d",
			row, col, G.height-1, G.width-1)
		panic(err)
	}
	G.M.Set(row, col, val)
}

// RowView returns the storage of columns [colMin, colMax) of a row, writes to
// the returned slice land in the buffer.
func (G *GridBuffer) RowView(row, colMin, colMax int) []float64 {
	if row < 0 || row >= G.height || colMin < 0 || colMax > G.width || colMin > colMax {
		err := fmt.Errorf("row view out of bounds: row = %d, cols = [%d,%d), max_bounds = %d, %d",
			row, colMin, colMax, G.height-1, G.width)
		panic(err)
	}
	return G.M.RawRowView(row)[colMin:colMax]
}

// WriteCSV writes one line per row, values separated by commas
func (G *GridBuffer) WriteCSV(w io.Writer) (err error) {
	var (
		bw  = bufio.NewWriter(w)
		buf []byte
	)
	for r := 0; r < G.height; r++ {
		buf = buf[:0]
		for c, val := range G.M.RawRowView(r) {
			if c != 0 {
				buf = append(buf, ',')
			}
			buf = strconv.AppendFloat(buf, val, 'g', -1, 64)
		}
		buf = append(buf, '\n')
		if _, err = bw.Write(buf); err != nil {
			return
		}
	}
	return bw.Flush()
}
