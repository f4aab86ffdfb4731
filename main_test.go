package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunBeam(t *testing.T) {
	var buf bytes.Buffer
	if err := runBeam(&buf, writeWavefront(t, testPulse)); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	for _, want := range []string{
		"photon_energy=8000.0000 eV\n",
		"photon_energy_spectrum_type=SASE\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("got\n%s, wanted it to contain %q\n", got, want)
		}
	}
	if n := strings.Count(got, "\n"); n != 6 {
		t.Errorf("got %d report lines, wanted 6\n", n)
	}
}

func TestRunXRTS(t *testing.T) {
	fakeXRTS(t, "")
	conf, err := LoadConfig("testfiles/xrts.toml")
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	conf.Prop = writeWavefront(t, testPulse)
	conf.Output = filepath.Join(dir, "be.h5")
	conf.Plot = filepath.Join(dir, "skw.png")
	conf.Params.WorkDir = filepath.Join(dir, "be_run")
	if err := runXRTS(conf); err != nil {
		t.Fatal(err)
	}
	wantFWHM := hbar / testPulse.st / qe
	if !relEqual(conf.Params.SourceSpectrumFWHM, wantFWHM, 1e-6) {
		t.Errorf("got %v, wanted %v\n",
			conf.Params.SourceSpectrumFWHM, wantFWHM)
	}
	for _, name := range []string{
		conf.Output,
		conf.Plot,
		filepath.Join(conf.Params.WorkDir, DECK_NAME),
		filepath.Join(conf.Params.WorkDir, RUN_LOG_NAME+".zst"),
	} {
		if !fileExists(name) {
			t.Errorf("%s not written", name)
		}
	}
}
