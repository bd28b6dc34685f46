package volume

import (
	"errors"
	"fmt"
	"sort"
)

// Entry is one named array of a Mapping.
type Entry struct {
	Name  string
	Array Array
}

// Mapping is an ordered name-to-array mapping. Names become default titles.
type Mapping []Entry

// Loader resolves a path to an array. FileLoader is the default implementation.
type Loader interface {
	Load(path string) (Array, error)
}

// Resolve turns a source into a navigable Set.
//
// Accepted sources are a path (string, read through loader), an Array or
// *Array of rank 3 or 4, []Array (rank-3 volumes or a stack of rank-2
// slices), Volume, []Volume, Mapping and
// map[string]Array (keys taken in sorted order). Non-empty titles override the
// mapping's names. The view permutation is applied once, here.
func Resolve(source any, titles []string, view View, loader Loader) (Set, error) {
	if path, ok := source.(string); ok {
		if loader == nil {
			return Set{}, fmt.Errorf("%w: no loader for path %q", ErrUnsupportedSource, path)
		}
		arr, err := loader.Load(path)
		if err != nil {
			return Set{}, fmt.Errorf("failed to load %s: %w", path, err)
		}
		source = arr
	}

	var (
		vols  []Volume
		names []string
		err   error
	)

	switch src := source.(type) {
	case Array:
		vols, err = splitArray(src)
	case *Array:
		if src == nil {
			return Set{}, fmt.Errorf("%w: nil array", ErrUnsupportedSource)
		}
		vols, err = splitArray(*src)
	case []Array:
		vols, err = fromArrays(src)
	case Volume:
		vols = []Volume{src}
	case []Volume:
		vols = append([]Volume(nil), src...)
	case Mapping:
		vols, names, err = fromMapping(src)
	case map[string]Array:
		vols, names, err = fromMapping(sortedMapping(src))
	default:
		return Set{}, fmt.Errorf("%w: %T", ErrUnsupportedSource, source)
	}
	if err != nil {
		return Set{}, err
	}

	set := Set{Volumes: make([]Volume, len(vols)), Titles: make([]string, len(vols))}
	for i, v := range vols {
		set.Volumes[i] = v.Permute(view)
	}

	if len(titles) == 0 {
		titles = names
	}
	copy(set.Titles, titles)

	if err := validate(set); err != nil {
		return Set{}, err
	}
	return set, nil
}

// splitArray promotes a rank-3 array to a single volume and splits a rank-4
// array along its leading batch axis.
func splitArray(a Array) ([]Volume, error) {
	switch a.Rank() {
	case 3:
		v, err := fromArray(a)
		if err != nil {
			return nil, err
		}
		return []Volume{v}, nil
	case 4:
		batch, depth, height, width := a.Shape[0], a.Shape[1], a.Shape[2], a.Shape[3]
		size := depth * height * width
		if batch*size != len(a.Data) {
			return nil, fmt.Errorf("%w: shape %v, got %d values", ErrShapeMismatch, a.Shape, len(a.Data))
		}
		vols := make([]Volume, batch)
		for i := range vols {
			vols[i] = Volume{Depth: depth, Height: height, Width: width, Data: a.Data[i*size : (i+1)*size]}
		}
		return vols, nil
	default:
		return nil, &DimensionError{Got: a.Rank()}
	}
}

// fromArrays reads a list of rank-3 arrays as one volume each. A list of
// rank-2 arrays is a stack of slices and becomes a single volume.
func fromArrays(arrays []Array) ([]Volume, error) {
	if len(arrays) > 0 && arrays[0].Rank() == 2 {
		v, err := stackSlices(arrays)
		if err != nil {
			return nil, err
		}
		return []Volume{v}, nil
	}
	return eachVolume(arrays)
}

func eachVolume(arrays []Array) ([]Volume, error) {
	vols := make([]Volume, 0, len(arrays))
	for i, a := range arrays {
		switch a.Rank() {
		case 3:
		case 2:
			return nil, fmt.Errorf("%w: element %d has shape %v among rank-3 arrays", ErrShapeMismatch, i, a.Shape)
		default:
			// a list adds one axis to each element's rank
			return nil, &DimensionError{Got: a.Rank() + 1}
		}
		v, err := fromArray(a)
		if err != nil {
			return nil, err
		}
		vols = append(vols, v)
	}
	return vols, nil
}

func stackSlices(slices []Array) (Volume, error) {
	height, width := slices[0].Shape[0], slices[0].Shape[1]
	size := height * width
	data := make([]float64, 0, len(slices)*size)
	for i, a := range slices {
		if a.Rank() != 2 || a.Shape[0] != height || a.Shape[1] != width {
			return Volume{}, fmt.Errorf("%w: slice %d has shape %v, want [%d %d]", ErrShapeMismatch, i, a.Shape, height, width)
		}
		if len(a.Data) != size {
			return Volume{}, fmt.Errorf("%w: slice %d has %d values, want %d", ErrShapeMismatch, i, len(a.Data), size)
		}
		data = append(data, a.Data...)
	}
	return NewVolume(len(slices), height, width, data)
}

func fromMapping(m Mapping) ([]Volume, []string, error) {
	arrays := make([]Array, len(m))
	names := make([]string, len(m))
	for i, e := range m {
		arrays[i] = e.Array
		names[i] = e.Name
	}
	vols, err := eachVolume(arrays)
	if err != nil {
		return nil, nil, err
	}
	return vols, names, nil
}

func sortedMapping(m map[string]Array) Mapping {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Mapping, len(keys))
	for i, k := range keys {
		out[i] = Entry{Name: k, Array: m[k]}
	}
	return out
}

func validate(set Set) error {
	if set.Len() == 0 {
		return fmt.Errorf("%w: empty volume set", ErrEmptyVolume)
	}
	var errs []error
	for i, v := range set.Volumes {
		if v.Depth == 0 || v.Height == 0 || v.Width == 0 {
			errs = append(errs, fmt.Errorf("%w: volume %d has shape (%d, %d, %d)", ErrEmptyVolume, i, v.Depth, v.Height, v.Width))
		}
	}
	return errors.Join(errs...)
}
