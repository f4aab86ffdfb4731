package main

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"gonum.org/v1/hdf5"
)

// gaussPulse describes a separable Gaussian test pulse. The sigmas are
// the rms widths of the intensity.
type gaussPulse struct {
	nx, ny, nt   int
	xmax, ymax   float64
	tmax         float64
	sx, sy, st   float64
	amp          float64
	photonEnergy float64
	withVertical bool
}

var testPulse = gaussPulse{
	nx: 33, ny: 33, nt: 128,
	xmax: 16e-6, ymax: 16e-6, tmax: 16e-15,
	sx: 3e-6, sy: 5e-6, st: 2e-15,
	amp:          10,
	photonEnergy: 8000,
}

func (g gaussPulse) mesh() Mesh {
	return Mesh{
		Nx: g.nx, Ny: g.ny, NSlices: g.nt,
		XMin: -g.xmax, XMax: g.xmax,
		YMin: -g.ymax, YMax: g.ymax,
		SliceMin: -g.tmax, SliceMax: g.tmax,
	}
}

// field returns the real amplitude at grid point (iy, ix, it)
func (g gaussPulse) field(iy, ix, it int) float64 {
	m := g.mesh()
	x := m.XMin + float64(ix)*m.Dx()
	y := m.YMin + float64(iy)*m.Dy()
	t := m.SliceMin + float64(it)*m.Dt()
	return g.amp * math.Exp(-x*x/(4*g.sx*g.sx)) *
		math.Exp(-y*y/(4*g.sy*g.sy)) *
		math.Exp(-t*t/(4*g.st*g.st))
}

func writeInt(t *testing.T, f *hdf5.File, name string, v int64) {
	t.Helper()
	space, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		t.Fatal(err)
	}
	defer space.Close()
	dset, err := f.CreateDataset(name, hdf5.T_NATIVE_INT64, space)
	if err != nil {
		t.Fatal(err)
	}
	defer dset.Close()
	if err := dset.Write(&v); err != nil {
		t.Fatal(err)
	}
}

func writeField(t *testing.T, f *hdf5.File, name string, g gaussPulse,
	scale float64) {
	t.Helper()
	data := make([]float64, g.ny*g.nx*g.nt*2)
	for iy := 0; iy < g.ny; iy++ {
		for ix := 0; ix < g.nx; ix++ {
			for it := 0; it < g.nt; it++ {
				i := ((iy*g.nx+ix)*g.nt + it) * 2
				data[i] = scale * g.field(iy, ix, it)
			}
		}
	}
	space, err := hdf5.CreateSimpleDataspace(
		[]uint{uint(g.ny), uint(g.nx), uint(g.nt), 2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer space.Close()
	dset, err := f.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		t.Fatal(err)
	}
	defer dset.Close()
	if err := dset.Write(&data); err != nil {
		t.Fatal(err)
	}
}

// writeWavefront stores g in a new HDF5 file in a temporary directory
// and returns its name
func writeWavefront(t *testing.T, g gaussPulse) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "prop_out.h5")
	f, err := hdf5.CreateFile(name, hdf5.F_ACC_TRUNC)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	for _, grp := range []string{"data", "params/Mesh", "misc"} {
		if err := mkGroups(f, grp); err != nil {
			t.Fatal(err)
		}
	}
	m := g.mesh()
	writeInt(t, f, "params/Mesh/nx", int64(m.Nx))
	writeInt(t, f, "params/Mesh/ny", int64(m.Ny))
	writeInt(t, f, "params/Mesh/nSlices", int64(m.NSlices))
	for key, v := range map[string]float64{
		"params/Mesh/xMin":     m.XMin,
		"params/Mesh/xMax":     m.XMax,
		"params/Mesh/yMin":     m.YMin,
		"params/Mesh/yMax":     m.YMax,
		"params/Mesh/sliceMin": m.SliceMin,
		"params/Mesh/sliceMax": m.SliceMax,
		"params/photonEnergy":  g.photonEnergy,
	} {
		if err := writeScalar(f, key, v, ""); err != nil {
			t.Fatal(err)
		}
	}
	if g.withVertical {
		// split the intensity evenly between the polarizations
		writeField(t, f, "data/arrEhor", g, math.Sqrt(0.5))
		writeField(t, f, "data/arrEver", g, math.Sqrt(0.5))
	} else {
		writeField(t, f, "data/arrEhor", g, 1)
	}
	return name
}

func TestLoadWavefront(t *testing.T) {
	wf, err := LoadWavefront(writeWavefront(t, testPulse))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := wf.Mesh, testPulse.mesh(); got != want {
		t.Errorf("got %+v, wanted %+v\n", got, want)
	}
	if wf.PhotonEnergy != testPulse.photonEnergy {
		t.Errorf("got %v, wanted %v\n", wf.PhotonEnergy,
			testPulse.photonEnergy)
	}
	if wf.ever != nil {
		t.Errorf("got a vertical field, wanted none\n")
	}
	i := wf.intensity(16, 16, 64)
	f := testPulse.field(16, 16, 64)
	if !relEqual(i, f*f, 1e-14) {
		t.Errorf("intensity: got %v, wanted %v\n", i, f*f)
	}
}

func TestLoadWavefrontErrors(t *testing.T) {
	_, err := LoadWavefront(filepath.Join(t.TempDir(), "missing.h5"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("got %v, wanted %v\n", err, ErrFileNotFound)
	}
	bad := testPulse
	bad.nt = 1
	bad.tmax = 0
	_, err = LoadWavefront(writeWavefront(t, bad))
	if !errors.Is(err, ErrBadMesh) {
		t.Errorf("got %v, wanted %v\n", err, ErrBadMesh)
	}
}

func TestWavefrontFWHM(t *testing.T) {
	wf, err := LoadWavefront(writeWavefront(t, testPulse))
	if err != nil {
		t.Fatal(err)
	}
	fx, fy := wf.FWHM()
	// 7 and 11 samples on a 1 µm grid lie above half maximum
	if want := 7 * wf.Mesh.Dx(); !relEqual(fx, want, 1e-12) {
		t.Errorf("fx: got %v, wanted %v\n", fx, want)
	}
	if want := 11 * wf.Mesh.Dy(); !relEqual(fy, want, 1e-12) {
		t.Errorf("fy: got %v, wanted %v\n", fy, want)
	}
}

func TestWavefrontAngularFWHM(t *testing.T) {
	wf, err := LoadWavefront(writeWavefront(t, testPulse))
	if err != nil {
		t.Fatal(err)
	}
	tx, ty := wf.AngularFWHM()
	lambda := wavelength(testPulse.photonEnergy)
	dq := 1 / (float64(testPulse.nx) * wf.Mesh.Dx())
	if want := 3 * dq * lambda; !relEqual(tx, want, 1e-12) {
		t.Errorf("tx: got %v, wanted %v\n", tx, want)
	}
	if want := dq * lambda; !relEqual(ty, want, 1e-12) {
		t.Errorf("ty: got %v, wanted %v\n", ty, want)
	}
}

func TestWavefrontPulseEnergy(t *testing.T) {
	wf, err := LoadWavefront(writeWavefront(t, testPulse))
	if err != nil {
		t.Fatal(err)
	}
	m := testPulse.mesh()
	var sum float64
	for iy := 0; iy < m.Ny; iy++ {
		for ix := 0; ix < m.Nx; ix++ {
			for it := 0; it < m.NSlices; it++ {
				f := testPulse.field(iy, ix, it)
				sum += f * f
			}
		}
	}
	want := sum * m.Dx() * m.Dy() * 1e6 * m.Dt()
	if got := wf.PulseEnergy(); !relEqual(got, want, 1e-12) {
		t.Errorf("got %v, wanted %v\n", got, want)
	}
}

func TestWavefrontSpectrum(t *testing.T) {
	wf, err := LoadWavefront(writeWavefront(t, testPulse))
	if err != nil {
		t.Fatal(err)
	}
	energies, spectrum := wf.Spectrum()
	if len(energies) != testPulse.nt || len(spectrum) != testPulse.nt {
		t.Fatalf("got %d energies and %d values, wanted %d\n",
			len(energies), len(spectrum), testPulse.nt)
	}
	for i := 1; i < len(energies); i++ {
		if energies[i] <= energies[i-1] {
			t.Fatalf("energies not ascending at %d\n", i)
		}
	}
	// zero frequency carries the maximum of a real pulse
	peak := testPulse.nt / 2
	if energies[peak] != testPulse.photonEnergy {
		t.Errorf("got %v, wanted %v\n", energies[peak],
			testPulse.photonEnergy)
	}
	for i, v := range spectrum {
		if v > spectrum[peak] {
			t.Errorf("spectrum[%d] = %v exceeds the peak %v\n",
				i, v, spectrum[peak])
		}
	}
}

func TestPropToBeamParameters(t *testing.T) {
	for _, vertical := range []bool{false, true} {
		g := testPulse
		g.withVertical = vertical
		b, err := PropToBeamParameters(writeWavefront(t, g))
		if err != nil {
			t.Fatal(err)
		}
		if !relEqual(b.PhotonEnergy(), g.photonEnergy, 1e-9) {
			t.Errorf("photon energy: got %v, wanted %v\n",
				b.PhotonEnergy(), g.photonEnergy)
		}
		wantBW := hbar / g.st / qe / g.photonEnergy
		if !relEqual(b.RelativeBandwidth(), wantBW, 1e-6) {
			t.Errorf("bandwidth: got %v, wanted %v\n",
				b.RelativeBandwidth(), wantBW)
		}
		m := g.mesh()
		if want := 11 * m.Dy(); !relEqual(b.Diameter(), want, 1e-12) {
			t.Errorf("diameter: got %v, wanted %v\n", b.Diameter(), want)
		}
		dq := 1 / (float64(g.nx) * m.Dx())
		wantDiv := 3 * dq * wavelength(g.photonEnergy) / 2
		if !relEqual(b.Divergence(), wantDiv, 1e-12) {
			t.Errorf("divergence: got %v, wanted %v\n",
				b.Divergence(), wantDiv)
		}
		if b.SpectrumType() != SASE {
			t.Errorf("spectrum: got %v, wanted %v\n",
				b.SpectrumType(), SASE)
		}
		if b.PulseEnergy() <= 0 {
			t.Errorf("pulse energy: got %v, wanted > 0\n", b.PulseEnergy())
		}
	}
}
