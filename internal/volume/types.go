package volume

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrUnsupportedSource is returned when Resolve receives a value it cannot
	// interpret as a path, array, list of arrays or name-to-array mapping.
	ErrUnsupportedSource = errors.New("unsupported volume source")
	// ErrEmptyVolume is returned when the navigable slice range would be empty
	// or a slice would have no pixels.
	ErrEmptyVolume = errors.New("volume has no navigable slices")
	// ErrShapeMismatch is returned when an array's data does not fill its shape.
	ErrShapeMismatch = errors.New("data length does not match shape")
)

// DimensionError reports an input whose rank cannot be read as a volume or a
// batch of volumes.
type DimensionError struct {
	Got int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("expected rank in [3, 4] but got %d", e.Got)
}

// Array is an n-dimensional row-major grid of samples.
type Array struct {
	Shape []int
	Data  []float64
}

// NewArray wraps data with the given shape after checking that they agree.
func NewArray(data []float64, shape ...int) (Array, error) {
	n := 1
	for _, s := range shape {
		if s < 0 {
			return Array{}, fmt.Errorf("%w: negative extent in %v", ErrShapeMismatch, shape)
		}
		n *= s
	}
	if n != len(data) {
		return Array{}, fmt.Errorf("%w: shape %v needs %d values, got %d", ErrShapeMismatch, shape, n, len(data))
	}
	return Array{Shape: append([]int(nil), shape...), Data: data}, nil
}

// Rank returns the number of axes.
func (a Array) Rank() int { return len(a.Shape) }

// Volume is a (depth, height, width) grid; depth is the slice axis.
type Volume struct {
	Depth  int
	Height int
	Width  int
	Data   []float64
}

// NewVolume wraps row-major data as a volume.
func NewVolume(depth, height, width int, data []float64) (Volume, error) {
	if _, err := NewArray(data, depth, height, width); err != nil {
		return Volume{}, err
	}
	return Volume{Depth: depth, Height: height, Width: width, Data: data}, nil
}

func fromArray(a Array) (Volume, error) {
	if a.Rank() != 3 {
		return Volume{}, &DimensionError{Got: a.Rank()}
	}
	return NewVolume(a.Shape[0], a.Shape[1], a.Shape[2], a.Data)
}

// At returns the sample at slice z, row y, column x.
func (v Volume) At(z, y, x int) float64 {
	return v.Data[(z*v.Height+y)*v.Width+x]
}

// Slice returns slice z as a height×width matrix sharing the volume's storage.
// The caller must not modify it.
func (v Volume) Slice(z int) *mat.Dense {
	size := v.Height * v.Width
	return mat.NewDense(v.Height, v.Width, v.Data[z*size:(z+1)*size])
}

// Permute reorders axes so that the slice axis matches view. Transverse is
// the identity, coronal swaps the leading two axes and sagittal moves the
// trailing axis to the front.
func (v Volume) Permute(view View) Volume {
	switch view {
	case Coronal:
		out := Volume{Depth: v.Height, Height: v.Depth, Width: v.Width, Data: make([]float64, len(v.Data))}
		for z := 0; z < v.Depth; z++ {
			for y := 0; y < v.Height; y++ {
				copy(out.Data[(y*out.Height+z)*out.Width:(y*out.Height+z+1)*out.Width],
					v.Data[(z*v.Height+y)*v.Width:(z*v.Height+y+1)*v.Width])
			}
		}
		return out
	case Sagittal:
		out := Volume{Depth: v.Width, Height: v.Depth, Width: v.Height, Data: make([]float64, len(v.Data))}
		for z := 0; z < v.Depth; z++ {
			for y := 0; y < v.Height; y++ {
				for x := 0; x < v.Width; x++ {
					out.Data[(x*out.Height+z)*out.Width+y] = v.At(z, y, x)
				}
			}
		}
		return out
	default:
		return v
	}
}

// Set is an ordered collection of volumes navigated together.
type Set struct {
	Volumes []Volume
	// Titles holds one entry per volume; empty means "no title supplied".
	Titles []string
}

// Len returns the number of volumes.
func (s Set) Len() int { return len(s.Volumes) }

// Bound returns the number of navigable slices: the smallest depth in the set.
func (s Set) Bound() int {
	if len(s.Volumes) == 0 {
		return 0
	}
	bound := s.Volumes[0].Depth
	for _, v := range s.Volumes[1:] {
		bound = min(bound, v.Depth)
	}
	return bound
}
