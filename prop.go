package main

import (
	"fmt"
	"log"
	"math"
)

// PropToBeamParameters derives the beam parameters from the
// propagation output in filename
func PropToBeamParameters(filename string) (*BeamParameters, error) {
	wf, err := LoadWavefront(filename)
	if err != nil {
		return nil, err
	}
	return wavefrontToBeam(wf)
}

func wavefrontToBeam(wf *Wavefront) (*BeamParameters, error) {
	// temporal moments give the spike width
	_, tau, err := RMSWidth(wf.Mesh.Times(), wf.TemporalProfile())
	if err != nil {
		return nil, fmt.Errorf("temporal profile: %w", err)
	}
	spikeWidth := math.Inf(1)
	if tau > 0 {
		spikeWidth = hbar / tau / qe
	}

	energies, spectrum := wf.Spectrum()
	photonEnergy, specWidth, err := RMSWidth(energies, spectrum)
	if err != nil {
		return nil, fmt.Errorf("spectrum: %w", err)
	}

	fx, fy := wf.FWHM()
	tx, ty := wf.AngularFWHM()

	b, err := NewBeamParameters(photonEnergy, math.Max(fx, fy),
		wf.PulseEnergy())
	if err != nil {
		return nil, err
	}
	if err := b.SetRelativeBandwidth(spikeWidth / photonEnergy); err != nil {
		return nil, err
	}
	if err := b.SetDivergence(math.Max(tx, ty) / 2); err != nil {
		return nil, err
	}
	if err := b.SetSpectrumType(SASE); err != nil {
		return nil, err
	}
	log.Printf("pulse duration (rms) = %.4e s, spike width = %.4e eV, "+
		"spectral width (rms) = %.4e eV\n", tau, spikeWidth, specWidth)
	return b, nil
}
