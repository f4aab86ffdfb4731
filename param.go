package main

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Spectrum types understood by the beam parameters
const (
	SASE      = "SASE"
	TopHat    = "tophat"
	TwoColour = "twocolour"
)

const (
	defaultBandwidth  = 0.01
	defaultDivergence = 0.0
)

var (
	ErrPhotonEnergy = errors.New("photon energy must be positive")
	ErrBandwidth    = errors.New("relative bandwidth must be positive")
	ErrDiameter     = errors.New("beam diameter must be positive")
	ErrPulseEnergy  = errors.New("pulse energy must not be negative")
	ErrDivergence   = errors.New("divergence must be in [0, 2π]")
	ErrSpectrumType = errors.New("unknown spectrum type")
)

// BeamParameters describes a photon beam. The fields are only
// reachable through the setters so a BeamParameters is always valid.
type BeamParameters struct {
	photonEnergy      float64
	relativeBandwidth float64
	diameter          float64
	pulseEnergy       float64
	divergence        float64
	spectrumType      string
}

// NewBeamParameters returns a BeamParameters with the required fields
// set and the defaults applied to the rest
func NewBeamParameters(photonEnergy, diameter, pulseEnergy float64) (
	*BeamParameters, error) {
	b := &BeamParameters{
		relativeBandwidth: defaultBandwidth,
		divergence:        defaultDivergence,
		spectrumType:      SASE,
	}
	if err := b.SetPhotonEnergy(photonEnergy); err != nil {
		return nil, err
	}
	if err := b.SetDiameter(diameter); err != nil {
		return nil, err
	}
	if err := b.SetPulseEnergy(pulseEnergy); err != nil {
		return nil, err
	}
	return b, nil
}

// finite reports whether v is neither NaN nor infinite
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// PhotonEnergy is the mean photon energy in eV
func (b *BeamParameters) PhotonEnergy() float64 { return b.photonEnergy }

func (b *BeamParameters) SetPhotonEnergy(v float64) error {
	if !finite(v) || v <= 0 {
		return fmt.Errorf("%w: %g", ErrPhotonEnergy, v)
	}
	b.photonEnergy = v
	return nil
}

// RelativeBandwidth is ΔE/E
func (b *BeamParameters) RelativeBandwidth() float64 {
	return b.relativeBandwidth
}

func (b *BeamParameters) SetRelativeBandwidth(v float64) error {
	if !finite(v) || v <= 0 {
		return fmt.Errorf("%w: %g", ErrBandwidth, v)
	}
	b.relativeBandwidth = v
	return nil
}

// Diameter is the beam FWHM diameter in m
func (b *BeamParameters) Diameter() float64 { return b.diameter }

func (b *BeamParameters) SetDiameter(v float64) error {
	if !finite(v) || v <= 0 {
		return fmt.Errorf("%w: %g", ErrDiameter, v)
	}
	b.diameter = v
	return nil
}

// PulseEnergy is the total pulse energy in J
func (b *BeamParameters) PulseEnergy() float64 { return b.pulseEnergy }

func (b *BeamParameters) SetPulseEnergy(v float64) error {
	if !finite(v) || v < 0 {
		return fmt.Errorf("%w: %g", ErrPulseEnergy, v)
	}
	b.pulseEnergy = v
	return nil
}

// Divergence is the beam divergence half angle in rad
func (b *BeamParameters) Divergence() float64 { return b.divergence }

func (b *BeamParameters) SetDivergence(v float64) error {
	if !finite(v) || v < 0 || v > 2*math.Pi {
		return fmt.Errorf("%w: %g", ErrDivergence, v)
	}
	b.divergence = v
	return nil
}

func (b *BeamParameters) SpectrumType() string { return b.spectrumType }

func (b *BeamParameters) SetSpectrumType(s string) error {
	switch s {
	case SASE, TopHat, TwoColour:
		b.spectrumType = s
		return nil
	}
	return fmt.Errorf("%w: %q", ErrSpectrumType, s)
}

// BandwidthEV is the absolute bandwidth in eV
func (b *BeamParameters) BandwidthEV() float64 {
	return b.relativeBandwidth * b.photonEnergy
}

func (b *BeamParameters) String() string {
	var s strings.Builder
	fmt.Fprintf(&s, "photon_energy=%5.4f eV\n", b.photonEnergy)
	fmt.Fprintf(&s, "photon_energy_relative_bandwidth=%g\n",
		b.relativeBandwidth)
	fmt.Fprintf(&s, "pulse_energy=%4.3e J\n", b.pulseEnergy)
	fmt.Fprintf(&s, "divergence=%4.3e rad\n", b.divergence)
	fmt.Fprintf(&s, "beam_diameter_fwhm=%4.3e m\n", b.diameter)
	fmt.Fprintf(&s, "photon_energy_spectrum_type=%s\n", b.spectrumType)
	return s.String()
}
