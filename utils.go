package main

import (
	"fmt"
	"math"
	"os"
	"path"
	"sort"
	"strconv"
	"syscall"
)

const (
	// CODATA 2018, https://physics.nist.gov/cuu/Constants
	hbar     = 1.054_571_817e-34 // J s
	planck   = 6.626_070_15e-34  // J s
	qe       = 1.602_176_634e-19 // C
	clight   = 299_792_458.0     // m/s
	avogadro = 6.022_140_76e23   // 1/mol
	EPS      = 1e-14
)

// toFloat converts a list of strings to a float64 using
// strconv.ParseFloat
func toFloat(strs []string) ([]float64, error) {
	ret := make([]float64, len(strs))
	var err error
	for i, s := range strs {
		ret[i], err = strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// relEqual reports whether a and b agree to the relative tolerance
// tol
func relEqual(a, b, tol float64) bool {
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return true
	}
	return math.Abs(a-b)/scale <= tol
}

// TrimExt removes the extension from filename
func TrimExt(filename string) string {
	return filename[:len(filename)-len(path.Ext(filename))]
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && !info.IsDir()
}

// wavelength returns the photon wavelength in m for a photon energy
// in eV
func wavelength(energy float64) float64 {
	return planck * clight / (energy * qe)
}

// DupOutErr uses syscall.Dup2 to direct the stdout and stderr streams
// to files
func DupOutErr(infile string) error {
	// https://github.com/golang/go/issues/325
	base := TrimExt(infile)
	outfile, err := os.Create(base + ".out")
	if err != nil {
		return fmt.Errorf("redirecting stdout: %w", err)
	}
	errfile, err := os.Create(base + ".log")
	if err != nil {
		outfile.Close()
		return fmt.Errorf("redirecting stderr: %w", err)
	}
	if err := syscall.Dup2(int(outfile.Fd()), 1); err != nil {
		return fmt.Errorf("redirecting stdout: %w", err)
	}
	if err := syscall.Dup2(int(errfile.Fd()), 2); err != nil {
		return fmt.Errorf("redirecting stderr: %w", err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
