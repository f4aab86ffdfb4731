package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/mat"
)

var ErrRunData = errors.New("malformed xrts output table")

type RawBeam struct {
	PhotonEnergy       float64 `toml:"photon_energy"`
	ScatteringAngle    float64 `toml:"scattering_angle"`
	SourceSpectrum     string  `toml:"source_spectrum"`
	SourceSpectrumFWHM float64 `toml:"source_spectrum_fwhm"`
}

type RawPlasma struct {
	ElectronTemperature float64 `toml:"electron_temperature"`
	ElectronDensity     float64 `toml:"electron_density"`
	IonTemperature      float64 `toml:"ion_temperature"`
	IonCharge           float64 `toml:"ion_charge"`
	MassDensity         float64 `toml:"mass_density"`
	DebyeTemperature    float64 `toml:"debye_temperature"`
	BandGap             float64 `toml:"band_gap"`
}

type RawElement struct {
	Symbol        string
	Stoichiometry int
	Charge        float64
}

type RawConf struct {
	Prop        string
	Input       string
	Output      string
	WorkDir     string
	Compress    bool
	Plot        string
	Beam        RawBeam
	Plasma      RawPlasma
	Elements    []RawElement
	Models      Models
	LFC         float64
	EnergyRange EnergyRange `toml:"energy_range"`
}

func (rc RawConf) ToConfig() (conf Config) {
	conf.Prop = rc.Prop
	conf.Input = rc.Input
	conf.Output = rc.Output
	conf.Compress = rc.Compress
	conf.Plot = rc.Plot
	p := DefaultXRTSParameters()
	for _, e := range rc.Elements {
		p.Elements = append(p.Elements, Element{
			Symbol:        e.Symbol,
			Stoichiometry: e.Stoichiometry,
			Charge:        e.Charge,
		})
	}
	p.PhotonEnergy = rc.Beam.PhotonEnergy
	p.ScatteringAngle = rc.Beam.ScatteringAngle
	if rc.Beam.SourceSpectrum != "" {
		p.SourceSpectrum = strings.ToUpper(rc.Beam.SourceSpectrum)
	}
	p.SourceSpectrumFWHM = rc.Beam.SourceSpectrumFWHM
	p.ElectronTemperature = rc.Plasma.ElectronTemperature
	p.ElectronDensity = rc.Plasma.ElectronDensity
	p.IonTemperature = rc.Plasma.IonTemperature
	p.IonCharge = rc.Plasma.IonCharge
	p.MassDensity = rc.Plasma.MassDensity
	p.DebyeTemperature = rc.Plasma.DebyeTemperature
	p.BandGap = rc.Plasma.BandGap
	for _, m := range []struct {
		dst *string
		src string
	}{
		{&p.Models.Sii, rc.Models.Sii},
		{&p.Models.See, rc.Models.See},
		{&p.Models.Sbf, rc.Models.Sbf},
		{&p.Models.IPL, rc.Models.IPL},
		{&p.Models.Mix, rc.Models.Mix},
	} {
		if m.src != "" {
			*m.dst = m.src
		}
	}
	p.LFC = rc.LFC
	p.EnergyRange = rc.EnergyRange
	p.WorkDir = rc.WorkDir
	conf.Params = p
	return
}

// Config is a complete XRTS run
type Config struct {
	// Prop is an optional propagation output to take the beam from
	Prop     string
	Input    string
	Output   string
	Compress bool
	Plot     string
	Params   *XRTSParameters
}

// LoadConfig reads the TOML run file filename
func LoadConfig(filename string) (Config, error) {
	cont, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, err
	}
	// Defaults
	rc := RawConf{
		Input:   DEFAULT_INPUT,
		Output:  DEFAULT_OUTPUT,
		WorkDir: "xrts_run",
		EnergyRange: EnergyRange{
			Min:  -100,
			Max:  100,
			Step: 0.5,
		},
	}
	if _, err := toml.Decode(string(cont), &rc); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", filename, err)
	}
	return rc.ToConfig(), nil
}

// LoadRunData loads the whitespace separated xrts output table in
// filename. Blank lines and lines starting with # are skipped.
func LoadRunData(filename string) (*mat.Dense, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filename)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	var (
		line string
		data []float64
		cols int
		rows int
	)
	for i := 1; scanner.Scan(); i++ {
		line = strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if cols == 0 {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, fmt.Errorf("%w: %s:%d has %d columns, wanted %d",
				ErrRunData, filename, i, len(fields), cols)
		}
		row, err := toFloat(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %v",
				ErrRunData, filename, i, err)
		}
		data = append(data, row...)
		rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrRunData, filename)
	}
	return mat.NewDense(rows, cols, data), nil
}
