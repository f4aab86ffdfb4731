package main

import (
	"errors"
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/hdf5"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrBadMesh      = errors.New("inconsistent wavefront mesh")
)

// Mesh is the sampling grid of a wavefront. x and y are in m, the
// slices are times in s.
type Mesh struct {
	Nx, Ny, NSlices    int
	XMin, XMax         float64
	YMin, YMax         float64
	SliceMin, SliceMax float64
}

func (m Mesh) Dx() float64 { return (m.XMax - m.XMin) / float64(m.Nx-1) }
func (m Mesh) Dy() float64 { return (m.YMax - m.YMin) / float64(m.Ny-1) }
func (m Mesh) Dt() float64 {
	return (m.SliceMax - m.SliceMin) / float64(m.NSlices-1)
}

// Times returns the slice positions
func (m Mesh) Times() []float64 {
	ret := make([]float64, m.NSlices)
	dt := m.Dt()
	for i := range ret {
		ret[i] = m.SliceMin + float64(i)*dt
	}
	return ret
}

func (m Mesh) check() error {
	if m.Nx < 2 || m.Ny < 2 || m.NSlices < 2 {
		return fmt.Errorf("%w: need at least two points per axis, "+
			"got nx=%d ny=%d nSlices=%d", ErrBadMesh,
			m.Nx, m.Ny, m.NSlices)
	}
	if m.XMax <= m.XMin || m.YMax <= m.YMin || m.SliceMax <= m.SliceMin {
		return fmt.Errorf("%w: empty range", ErrBadMesh)
	}
	return nil
}

// Wavefront is a time-domain, real-space electric field as written
// by a wave propagation code. The fields are stored with shape (ny,
// nx, nSlices, 2) holding the real and imaginary parts, in
// sqrt(W/mm²).
type Wavefront struct {
	Mesh         Mesh
	PhotonEnergy float64 // eV
	ehor, ever   []float64
}

var meshFields = []struct {
	name string
	dst  func(*Mesh, float64)
}{
	{"nx", func(m *Mesh, v float64) { m.Nx = int(v) }},
	{"ny", func(m *Mesh, v float64) { m.Ny = int(v) }},
	{"nSlices", func(m *Mesh, v float64) { m.NSlices = int(v) }},
	{"xMin", func(m *Mesh, v float64) { m.XMin = v }},
	{"xMax", func(m *Mesh, v float64) { m.XMax = v }},
	{"yMin", func(m *Mesh, v float64) { m.YMin = v }},
	{"yMax", func(m *Mesh, v float64) { m.YMax = v }},
	{"sliceMin", func(m *Mesh, v float64) { m.SliceMin = v }},
	{"sliceMax", func(m *Mesh, v float64) { m.SliceMax = v }},
}

// LoadWavefront reads the wavefront stored in the HDF5 file filename
func LoadWavefront(filename string) (*Wavefront, error) {
	if !fileExists(filename) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filename)
	}
	f, err := hdf5.OpenFile(filename, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}
	defer f.Close()
	var w Wavefront
	for _, field := range meshFields {
		v, err := readScalar(f, "params/Mesh/"+field.name)
		if err != nil {
			return nil, err
		}
		field.dst(&w.Mesh, v)
	}
	if err := w.Mesh.check(); err != nil {
		return nil, err
	}
	w.PhotonEnergy, err = readScalar(f, "params/photonEnergy")
	if err != nil {
		return nil, err
	}
	w.ehor, err = w.readField(f, "data/arrEhor")
	if err != nil {
		return nil, err
	}
	if f.LinkExists("data/arrEver") {
		w.ever, err = w.readField(f, "data/arrEver")
		if err != nil {
			return nil, err
		}
	}
	return &w, nil
}

func (w *Wavefront) readField(f *hdf5.File, name string) ([]float64, error) {
	data, dims, err := readNumbers(f, name)
	if err != nil {
		return nil, err
	}
	m := w.Mesh
	want := []uint{uint(m.Ny), uint(m.Nx), uint(m.NSlices), 2}
	if len(dims) != len(want) {
		return nil, fmt.Errorf("%w: %s has rank %d, wanted 4",
			ErrBadMesh, name, len(dims))
	}
	for i := range want {
		if dims[i] != want[i] {
			return nil, fmt.Errorf("%w: %s has shape %v, wanted %v",
				ErrBadMesh, name, dims, want)
		}
	}
	return data, nil
}

// pixel returns the time series of both polarizations at (iy, ix)
func (w *Wavefront) pixel(iy, ix int) (eh, ev []complex128) {
	nt := w.Mesh.NSlices
	base := (iy*w.Mesh.Nx + ix) * nt * 2
	eh = make([]complex128, nt)
	ev = make([]complex128, nt)
	for it := 0; it < nt; it++ {
		i := base + 2*it
		eh[it] = complex(w.ehor[i], w.ehor[i+1])
		if w.ever != nil {
			ev[it] = complex(w.ever[i], w.ever[i+1])
		}
	}
	return
}

// intensity returns |Ehor|² + |Ever|² at (iy, ix, it)
func (w *Wavefront) intensity(iy, ix, it int) float64 {
	i := ((iy*w.Mesh.Nx+ix)*w.Mesh.NSlices + it) * 2
	ret := w.ehor[i]*w.ehor[i] + w.ehor[i+1]*w.ehor[i+1]
	if w.ever != nil {
		ret += w.ever[i]*w.ever[i] + w.ever[i+1]*w.ever[i+1]
	}
	return ret
}

// Projection returns the intensity summed over slices as a ny×nx
// matrix
func (w *Wavefront) Projection() *mat.Dense {
	m := w.Mesh
	ret := mat.NewDense(m.Ny, m.Nx, nil)
	for iy := 0; iy < m.Ny; iy++ {
		for ix := 0; ix < m.Nx; ix++ {
			var sum float64
			for it := 0; it < m.NSlices; it++ {
				sum += w.intensity(iy, ix, it)
			}
			ret.Set(iy, ix, sum)
		}
	}
	return ret
}

// TemporalProfile returns the intensity integrated over the
// transverse plane for every slice
func (w *Wavefront) TemporalProfile() []float64 {
	m := w.Mesh
	ret := make([]float64, m.NSlices)
	area := m.Dx() * m.Dy()
	for iy := 0; iy < m.Ny; iy++ {
		for ix := 0; ix < m.Nx; ix++ {
			for it := 0; it < m.NSlices; it++ {
				ret[it] += w.intensity(iy, ix, it) * area
			}
		}
	}
	return ret
}

// PulseEnergy returns the pulse energy in J
func (w *Wavefront) PulseEnergy() float64 {
	var sum float64
	for _, v := range w.TemporalProfile() {
		sum += v
	}
	// intensity is in W/mm²
	return sum * 1e6 * w.Mesh.Dt()
}

// Spectrum returns the spectral intensity summed over the transverse
// plane against photon energy in eV, ascending. Energies above the
// central photon energy belong to positive frequency offsets.
func (w *Wavefront) Spectrum() (energies, spectrum []float64) {
	m := w.Mesh
	nt := m.NSlices
	fft := fourier.NewCmplxFFT(nt)
	coeff := make([]complex128, nt)
	raw := make([]float64, nt)
	for iy := 0; iy < m.Ny; iy++ {
		for ix := 0; ix < m.Nx; ix++ {
			eh, ev := w.pixel(iy, ix)
			for _, e := range [][]complex128{eh, ev} {
				fft.Coefficients(coeff, e)
				for k, c := range coeff {
					a := cmplx.Abs(c)
					raw[k] += a * a
				}
			}
		}
	}
	energies = make([]float64, nt)
	spectrum = make([]float64, nt)
	dnu := 1 / (float64(nt) * m.Dt())
	for k, v := range raw {
		spectrum[shiftIdx(k, nt)] = v
	}
	for i := range energies {
		nu := float64(i-nt/2) * dnu
		energies[i] = w.PhotonEnergy + planck*nu/qe
	}
	return
}

// shiftIdx returns the position of FFT coefficient k after moving the
// zero frequency to index n/2
func shiftIdx(k, n int) int {
	return (k + n/2) % n
}

// FWHM returns the full widths at half maximum in x and y of the
// slice-integrated intensity, measured along the centre row and
// column
func (w *Wavefront) FWHM() (fx, fy float64) {
	proj := w.Projection()
	m := w.Mesh
	fx = float64(countAboveHalf(mat.Row(nil, m.Ny/2, proj))) * m.Dx()
	fy = float64(countAboveHalf(mat.Col(nil, m.Nx/2, proj))) * m.Dy()
	return
}

// Angular returns the slice-integrated intensity in reciprocal space
// as a ny×nx matrix with the zero spatial frequency at (ny/2, nx/2)
func (w *Wavefront) Angular() *mat.Dense {
	m := w.Mesh
	rowFFT := fourier.NewCmplxFFT(m.Nx)
	colFFT := fourier.NewCmplxFFT(m.Ny)
	plane := make([]complex128, m.Ny*m.Nx)
	row := make([]complex128, m.Nx)
	col := make([]complex128, m.Ny)
	ret := mat.NewDense(m.Ny, m.Nx, nil)
	pols := [][]float64{w.ehor}
	if w.ever != nil {
		pols = append(pols, w.ever)
	}
	for _, pol := range pols {
		for it := 0; it < m.NSlices; it++ {
			for iy := 0; iy < m.Ny; iy++ {
				for ix := 0; ix < m.Nx; ix++ {
					i := ((iy*m.Nx+ix)*m.NSlices + it) * 2
					row[ix] = complex(pol[i], pol[i+1])
				}
				rowFFT.Coefficients(plane[iy*m.Nx:(iy+1)*m.Nx], row)
			}
			for ix := 0; ix < m.Nx; ix++ {
				for iy := 0; iy < m.Ny; iy++ {
					col[iy] = plane[iy*m.Nx+ix]
				}
				colFFT.Coefficients(col, col)
				sx := shiftIdx(ix, m.Nx)
				for iy, c := range col {
					a := cmplx.Abs(c)
					sy := shiftIdx(iy, m.Ny)
					ret.Set(sy, sx, ret.At(sy, sx)+a*a)
				}
			}
		}
	}
	return ret
}

// AngularFWHM returns the full angular widths at half maximum in x
// and y in rad
func (w *Wavefront) AngularFWHM() (tx, ty float64) {
	ang := w.Angular()
	m := w.Mesh
	lambda := wavelength(w.PhotonEnergy)
	dqx := 1 / (float64(m.Nx) * m.Dx())
	dqy := 1 / (float64(m.Ny) * m.Dy())
	tx = float64(countAboveHalf(mat.Row(nil, m.Ny/2, ang))) * dqx * lambda
	ty = float64(countAboveHalf(mat.Col(nil, m.Nx/2, ang))) * dqy * lambda
	return
}
