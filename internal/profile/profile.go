// Package profile samples straight-line intensity profiles from 2D slices.
package profile

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Point is a position in data space: X is the column, Y the row.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Profile is a sequence of intensities sampled along the segment Start→End.
type Profile struct {
	Start    Point     `json:"start"`
	End      Point     `json:"end"`
	Distance []float64 `json:"distance"`
	Values   []float64 `json:"values"`
}

// Summary holds descriptive statistics of a profile's values.
type Summary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// SampleCount is the number of samples taken between a and b: one per unit
// of length, rounded half to even, plus the end point.
func SampleCount(a, b Point) int {
	return int(math.RoundToEven(a.Dist(b))) + 1
}

// Sample interpolates grid bilinearly at SampleCount(a, b) evenly spaced
// positions from a to b. Positions outside the grid sample as 0.
func Sample(grid mat.Matrix, a, b Point) Profile {
	n := SampleCount(a, b)
	xs := span(n, a.X, b.X)
	ys := span(n, a.Y, b.Y)

	p := Profile{
		Start:    a,
		End:      b,
		Distance: span(n, 0, a.Dist(b)),
		Values:   make([]float64, n),
	}
	for i := range p.Values {
		p.Values[i] = bilinear(grid, ys[i], xs[i])
	}
	return p
}

// Len returns the number of samples.
func (p Profile) Len() int { return len(p.Values) }

// Summary computes min, max, mean and sample standard deviation.
func (p Profile) Summary() Summary {
	if len(p.Values) == 0 {
		return Summary{}
	}
	s := Summary{
		Min: floats.Min(p.Values),
		Max: floats.Max(p.Values),
	}
	if len(p.Values) < 2 {
		s.Mean = p.Values[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(p.Values, nil)
	return s
}

func span(n int, lo, hi float64) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

func bilinear(grid mat.Matrix, row, col float64) float64 {
	rows, cols := grid.Dims()
	if row < 0 || col < 0 || row > float64(rows-1) || col > float64(cols-1) {
		return 0
	}

	r0, c0 := int(math.Floor(row)), int(math.Floor(col))
	r1, c1 := min(r0+1, rows-1), min(c0+1, cols-1)
	fr, fc := row-float64(r0), col-float64(c0)

	top := grid.At(r0, c0)*(1-fc) + grid.At(r0, c1)*fc
	bottom := grid.At(r1, c0)*(1-fc) + grid.At(r1, c1)*fc
	return top*(1-fr) + bottom*fr
}
