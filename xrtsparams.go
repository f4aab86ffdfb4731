package main

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"text/template"

	"gonum.org/v1/gonum/stat"
)

//go:embed xrts.tmpl
var Templates embed.FS

var XRTS_TEMPLATE *template.Template

func init() {
	var err error
	XRTS_TEMPLATE, err = template.ParseFS(Templates, "xrts.tmpl")
	if err != nil {
		panic(err)
	}
}

const (
	DECK_NAME     = "input.dat"
	SPECTRUM_NAME = "spectrum.txt"
	// relative tolerance when all three of n_e, Z and ρ are given
	DENSITY_TOL  = 1e-2
	MAX_ELEMENTS = 3
)

// Source spectrum kinds
const (
	GaussSpectrum = "GAUSS"
	PropSpectrum  = "PROP"
)

var (
	validSii = set("DH", "OCP", "SOCP", "SRR")
	validSee = set("RPA", "BMA", "BMA+sLFC", "BMA+dLFC", "LFC", "Landen")
	validSbf = set("IA", "IBA", "HR", "HR_Corr", "FIA", "FIA_Corr")
	validIPL = set("SP", "EK", "DH")
	validMix = set("LM", "none")
)

var (
	ErrParameter           = errors.New("invalid XRTS parameter")
	ErrUnknownElement      = errors.New("unknown element")
	ErrUnderdetermined     = errors.New("need two of electron density, ion charge and mass density")
	ErrInconsistentDensity = errors.New("electron density, ion charge and mass density disagree")
	ErrNoSpectrum          = errors.New("PROP source spectrum requested but none loaded")
)

func set(vals ...string) map[string]struct{} {
	ret := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		ret[v] = struct{}{}
	}
	return ret
}

// Element is one species of the target
type Element struct {
	Symbol        string
	Stoichiometry int
	Charge        float64
}

// Z returns the atomic number of e, or 0 for an unknown symbol
func (e Element) Z() int { return elements[e.Symbol].Z }

// Mass returns the atomic weight of e in g/mol
func (e Element) Mass() float64 { return elements[e.Symbol].Mass }

type EnergyRange struct {
	Min, Max, Step float64
}

// Models selects the approximations used by xrts for the ion-ion
// (Sii), free electron (See) and bound-free (Sbf) structure factors,
// the ionization potential lowering (IPL) and mixing (Mix)
type Models struct {
	Sii, See, Sbf, IPL, Mix string
}

// XRTSParameters holds everything written to the xrts input deck.
// Energies and temperatures are in eV, densities in cm⁻³ and g/cm³.
type XRTSParameters struct {
	Elements            []Element
	PhotonEnergy        float64
	ScatteringAngle     float64 // deg
	ElectronTemperature float64
	ElectronDensity     float64
	IonTemperature      float64
	IonCharge           float64
	MassDensity         float64
	DebyeTemperature    float64 // K
	BandGap             float64
	Models              Models
	LFC                 float64
	SourceSpectrum      string
	SourceSpectrumFWHM  float64
	EnergyRange         EnergyRange
	// WorkDir receives the input deck and the xrts output. A
	// temporary directory is created if it is empty.
	WorkDir string

	spectrum [][2]float64
}

// DefaultXRTSParameters returns parameters with the default models
// and source spectrum set
func DefaultXRTSParameters() *XRTSParameters {
	return &XRTSParameters{
		Models: Models{
			Sii: "SOCP",
			See: "RPA",
			Sbf: "IA",
			IPL: "SP",
			Mix: "LM",
		},
		SourceSpectrum: GaussSpectrum,
	}
}

// MolarMass returns the stoichiometry-weighted mean atomic weight
func (p *XRTSParameters) MolarMass() float64 {
	return p.stoichiometricMean(Element.Mass)
}

// stoichiometricMean averages f over the elements weighted by their
// stoichiometry
func (p *XRTSParameters) stoichiometricMean(f func(Element) float64) float64 {
	vals := make([]float64, len(p.Elements))
	weights := make([]float64, len(p.Elements))
	for i, e := range p.Elements {
		vals[i] = f(e)
		weights[i] = float64(e.Stoichiometry)
	}
	return stat.Mean(vals, weights)
}

// ScatteringWavenumber returns the scattering wave number in 1/Å for
// the photon energy and scattering angle
func (p *XRTSParameters) ScatteringWavenumber() float64 {
	theta := p.ScatteringAngle * math.Pi / 180
	lambda := wavelength(p.PhotonEnergy) * 1e10
	return 4 * math.Pi * math.Sin(theta/2) / lambda
}

// SetSpectrum stores the source spectrum written for a PROP source
func (p *XRTSParameters) SetSpectrum(energies, intensities []float64) {
	p.spectrum = make([][2]float64, len(energies))
	for i := range energies {
		p.spectrum[i] = [2]float64{energies[i], intensities[i]}
	}
}

func paramErr(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrParameter, fmt.Sprintf(format, a...))
}

func checkModel(kind, name string, valid map[string]struct{}) error {
	if _, ok := valid[name]; !ok {
		return paramErr("unknown %s model %q", kind, name)
	}
	return nil
}

// Check validates p and fills in the derived density quantity
func (p *XRTSParameters) Check() error {
	switch {
	case len(p.Elements) == 0:
		return paramErr("no elements given")
	case len(p.Elements) > MAX_ELEMENTS:
		return paramErr("%d elements given, at most %d supported",
			len(p.Elements), MAX_ELEMENTS)
	}
	for _, e := range p.Elements {
		if _, ok := elements[e.Symbol]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownElement, e.Symbol)
		}
		if e.Stoichiometry < 1 {
			return paramErr("stoichiometry of %s must be positive",
				e.Symbol)
		}
		if e.Charge < 0 || e.Charge > float64(e.Z()) {
			return paramErr("charge of %s must be in [0, %d]",
				e.Symbol, e.Z())
		}
	}
	switch {
	case !finite(p.PhotonEnergy) || p.PhotonEnergy <= 0:
		return paramErr("photon energy must be positive")
	case p.ScatteringAngle <= 0 || p.ScatteringAngle >= 180:
		return paramErr("scattering angle must be in (0, 180) deg")
	case p.ElectronTemperature <= 0:
		return paramErr("electron temperature must be positive")
	case p.IonTemperature < 0:
		return paramErr("ion temperature must not be negative")
	case p.DebyeTemperature < 0:
		return paramErr("Debye temperature must not be negative")
	case p.BandGap < 0:
		return paramErr("band gap must not be negative")
	case p.ElectronDensity < 0 || p.IonCharge < 0 || p.MassDensity < 0:
		return paramErr("densities and ion charge must not be negative")
	case p.EnergyRange.Min >= p.EnergyRange.Max:
		return paramErr("energy range min must be below max")
	case p.EnergyRange.Step <= 0:
		return paramErr("energy range step must be positive")
	}
	for _, m := range []struct {
		kind, name string
		valid      map[string]struct{}
	}{
		{"Sii", p.Models.Sii, validSii},
		{"See", p.Models.See, validSee},
		{"Sbf", p.Models.Sbf, validSbf},
		{"IPL", p.Models.IPL, validIPL},
		{"Mix", p.Models.Mix, validMix},
	} {
		if err := checkModel(m.kind, m.name, m.valid); err != nil {
			return err
		}
	}
	switch p.SourceSpectrum {
	case GaussSpectrum:
		if p.SourceSpectrumFWHM <= 0 {
			return paramErr("GAUSS source spectrum needs a positive FWHM")
		}
	case PropSpectrum:
	default:
		return paramErr("unknown source spectrum %q", p.SourceSpectrum)
	}
	if p.IonTemperature == 0 {
		p.IonTemperature = p.ElectronTemperature
	}
	// the element charges only stand in for Z when the closure needs it
	if p.IonCharge == 0 && p.givenDensities() < 2 {
		p.IonCharge = p.meanElementCharge()
	}
	return p.closeDensities()
}

func (p *XRTSParameters) meanElementCharge() float64 {
	return p.stoichiometricMean(func(e Element) float64 { return e.Charge })
}

// givenDensities counts the nonzero members of n_e, Z and ρ
func (p *XRTSParameters) givenDensities() (given int) {
	for _, v := range []float64{p.ElectronDensity, p.IonCharge,
		p.MassDensity} {
		if v > 0 {
			given++
		}
	}
	return
}

// closeDensities derives the missing quantity of n_e = Z ρ N_A / M
func (p *XRTSParameters) closeDensities() error {
	if p.givenDensities() < 2 {
		return ErrUnderdetermined
	}
	m := p.MolarMass()
	switch {
	case p.ElectronDensity == 0:
		p.ElectronDensity = p.IonCharge * p.MassDensity * avogadro / m
	case p.IonCharge == 0:
		p.IonCharge = p.ElectronDensity * m / (p.MassDensity * avogadro)
	case p.MassDensity == 0:
		p.MassDensity = p.ElectronDensity * m / (p.IonCharge * avogadro)
	default:
		ne := p.IonCharge * p.MassDensity * avogadro / m
		if !relEqual(ne, p.ElectronDensity, DENSITY_TOL) {
			return fmt.Errorf("%w: n_e = %.4e, Z ρ N_A / M = %.4e",
				ErrInconsistentDensity, p.ElectronDensity, ne)
		}
	}
	return nil
}

// WriteDeck checks p and writes the xrts input deck to w
func (p *XRTSParameters) WriteDeck(w io.Writer) error {
	if err := p.Check(); err != nil {
		return err
	}
	nw := bufio.NewWriter(w)
	if err := XRTS_TEMPLATE.Execute(nw, p); err != nil {
		return err
	}
	return nw.Flush()
}

// WriteSpectrum writes the loaded source spectrum as two columns
func (p *XRTSParameters) WriteSpectrum(w io.Writer) error {
	if len(p.spectrum) == 0 {
		return ErrNoSpectrum
	}
	nw := bufio.NewWriter(w)
	for _, row := range p.spectrum {
		fmt.Fprintf(nw, "%20.12e%20.12e\n", row[0], row[1])
	}
	return nw.Flush()
}

// Serialize writes the input deck, and the source spectrum for a PROP
// source, to the working directory and returns the deck's path
func (p *XRTSParameters) Serialize() (string, error) {
	if p.WorkDir == "" {
		dir, err := os.MkdirTemp("", "xrts")
		if err != nil {
			return "", err
		}
		p.WorkDir = dir
	} else if err := os.MkdirAll(p.WorkDir, 0755); err != nil {
		return "", err
	}
	deck := filepath.Join(p.WorkDir, DECK_NAME)
	if err := writeFile(deck, p.WriteDeck); err != nil {
		return "", err
	}
	if p.SourceSpectrum == PropSpectrum {
		err := writeFile(filepath.Join(p.WorkDir, SPECTRUM_NAME),
			p.WriteSpectrum)
		if err != nil {
			return "", err
		}
	}
	return deck, nil
}

// writeFile creates filename and fills it with write
func writeFile(filename string, write func(io.Writer) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
