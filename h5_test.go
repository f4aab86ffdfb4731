package main

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"gonum.org/v1/hdf5"
)

// readAttr returns the string attribute name of the group at path
func readAttr(t *testing.T, f *hdf5.File, path, name string) string {
	t.Helper()
	g, err := f.OpenGroup(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer g.Close()
	attr, err := g.OpenAttribute(name)
	if err != nil {
		t.Fatalf("opening attribute %s of %s: %v", name, path, err)
	}
	return readString(t, attr)
}

// readUnit returns the unit attribute of the dataset at path
func readUnit(t *testing.T, f *hdf5.File, path string) string {
	t.Helper()
	dset, err := f.OpenDataset(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer dset.Close()
	attr, err := dset.OpenAttribute("unit")
	if err != nil {
		t.Fatalf("opening unit of %s: %v", path, err)
	}
	return readString(t, attr)
}

func readString(t *testing.T, attr *hdf5.Attribute) string {
	t.Helper()
	defer attr.Close()
	var s string
	if err := attr.Read(&s, hdf5.T_GO_STRING); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestReadScalarDatasets(t *testing.T) {
	name := filepath.Join(t.TempDir(), "scalars.h5")
	f, err := hdf5.CreateFile(name, hdf5.F_ACC_TRUNC)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	writeInt(t, f, "count", 33)
	if err := writeScalar(f, "energy", 8000.5, "eV"); err != nil {
		t.Fatal(err)
	}
	if err := writeVector(f, "vec", []float64{1, 2, 3}, ""); err != nil {
		t.Fatal(err)
	}

	got, dims, err := readNumbers(f, "energy")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []float64{8000.5}) || len(dims) != 0 {
		t.Errorf("got %v with dims %v, wanted [8000.5] with none\n",
			got, dims)
	}
	if v, err := readScalar(f, "count"); err != nil || v != 33 {
		t.Errorf("got %v, %v, wanted %v\n", v, err, 33)
	}
	if unit := readUnit(t, f, "energy"); unit != "eV" {
		t.Errorf("got %v, wanted %v\n", unit, "eV")
	}

	got, dims, err = readNumbers(f, "vec")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []float64{1, 2, 3}) ||
		!reflect.DeepEqual(dims, []uint{3}) {
		t.Errorf("got %v with dims %v, wanted [1 2 3] with [3]\n",
			got, dims)
	}
	if _, err := readScalar(f, "vec"); !errors.Is(err, ErrDatasetType) {
		t.Errorf("got %v, wanted %v\n", err, ErrDatasetType)
	}
	if _, err := readScalar(f, "nope"); !errors.Is(err, ErrMissingDataset) {
		t.Errorf("got %v, wanted %v\n", err, ErrMissingDataset)
	}
}
