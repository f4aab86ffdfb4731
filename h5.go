package main

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/hdf5"
)

var (
	ErrMissingDataset = errors.New("dataset not found")
	ErrDatasetType    = errors.New("unsupported dataset type")
)

// h5Loc is anything datasets and groups can be opened from, a *File
// or a *Group
type h5Loc interface {
	OpenDataset(name string) (*hdf5.Dataset, error)
	CreateDataset(name string, dtype *hdf5.Datatype,
		dspace *hdf5.Dataspace) (*hdf5.Dataset, error)
	LinkExists(name string) bool
}

// readNumbers reads every element of the numeric dataset name,
// converting integer storage to float64, and returns the data with
// its dimensions
func readNumbers(loc h5Loc, name string) ([]float64, []uint, error) {
	if !loc.LinkExists(name) {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingDataset, name)
	}
	dset, err := loc.OpenDataset(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v",
			ErrMissingDataset, name, err)
	}
	defer dset.Close()
	space := dset.Space()
	defer space.Close()
	// SimpleExtentDims indexes its result, so rank 0 is handled here
	var dims []uint
	if space.SimpleExtentNDims() > 0 {
		dims, _, err = space.SimpleExtentDims()
		if err != nil {
			return nil, nil, err
		}
	}
	n := space.SimpleExtentNPoints()
	if n < 1 {
		return nil, nil, fmt.Errorf("%w: %s is empty", ErrDatasetType, name)
	}
	dtype, err := dset.Datatype()
	if err != nil {
		return nil, nil, err
	}
	defer dtype.Close()
	ret := make([]float64, n)
	switch {
	case dtype.Class() == hdf5.T_FLOAT && dtype.Size() == 8:
		err = dset.Read(&ret)
	case dtype.Class() == hdf5.T_FLOAT && dtype.Size() == 4:
		buf := make([]float32, n)
		err = dset.Read(&buf)
		for i, v := range buf {
			ret[i] = float64(v)
		}
	case dtype.Class() == hdf5.T_INTEGER && dtype.Size() == 8:
		buf := make([]int64, n)
		err = dset.Read(&buf)
		for i, v := range buf {
			ret[i] = float64(v)
		}
	case dtype.Class() == hdf5.T_INTEGER && dtype.Size() == 4:
		buf := make([]int32, n)
		err = dset.Read(&buf)
		for i, v := range buf {
			ret[i] = float64(v)
		}
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrDatasetType, name)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return ret, dims, nil
}

// readScalar reads the single value stored in name
func readScalar(loc h5Loc, name string) (float64, error) {
	data, _, err := readNumbers(loc, name)
	if err != nil {
		return 0, err
	}
	if len(data) != 1 {
		return 0, fmt.Errorf("%w: %s has %d elements, wanted 1",
			ErrDatasetType, name, len(data))
	}
	return data[0], nil
}

// mkGroups creates every group along path that does not exist yet
func mkGroups(f *hdf5.File, path string) error {
	var cur string
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		cur += "/" + part
		if f.LinkExists(cur) {
			continue
		}
		g, err := f.CreateGroup(cur)
		if err != nil {
			return fmt.Errorf("creating group %s: %w", cur, err)
		}
		g.Close()
	}
	return nil
}

// writeUnit attaches a string "unit" attribute to dset
func writeUnit(dset *hdf5.Dataset, unit string) error {
	scalar, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		return err
	}
	defer scalar.Close()
	attr, err := dset.CreateAttribute("unit", hdf5.T_GO_STRING, scalar)
	if err != nil {
		return err
	}
	defer attr.Close()
	return attr.Write(&unit, hdf5.T_GO_STRING)
}

// writeVector writes data as a one-dimensional dataset at name,
// attaching unit if it is not empty
func writeVector(loc h5Loc, name string, data []float64, unit string) error {
	space, err := hdf5.CreateSimpleDataspace([]uint{uint(len(data))}, nil)
	if err != nil {
		return err
	}
	defer space.Close()
	dset, err := loc.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer dset.Close()
	if err := dset.Write(&data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if unit != "" {
		return writeUnit(dset, unit)
	}
	return nil
}

// writeScalar writes v as a scalar dataset at name, attaching unit if
// it is not empty
func writeScalar(loc h5Loc, name string, v float64, unit string) error {
	space, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		return err
	}
	defer space.Close()
	dset, err := loc.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer dset.Close()
	if err := dset.Write(&v); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if unit != "" {
		return writeUnit(dset, unit)
	}
	return nil
}

// writeAttrs stores each key-value pair in attrs as a string
// attribute of the group at path
func writeAttrs(f *hdf5.File, path string, attrs map[string]string) error {
	g, err := f.OpenGroup(path)
	if err != nil {
		return fmt.Errorf("opening group %s: %w", path, err)
	}
	defer g.Close()
	scalar, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		return err
	}
	defer scalar.Close()
	for _, k := range sortedKeys(attrs) {
		v := attrs[k]
		attr, err := g.CreateAttribute(k, hdf5.T_GO_STRING, scalar)
		if err != nil {
			return fmt.Errorf("creating attribute %s/%s: %w", path, k, err)
		}
		err = attr.Write(&v, hdf5.T_GO_STRING)
		attr.Close()
		if err != nil {
			return fmt.Errorf("writing attribute %s/%s: %w", path, k, err)
		}
	}
	return nil
}
