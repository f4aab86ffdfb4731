package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/hdf5"
)

const (
	DEFAULT_INPUT  = "prop"
	DEFAULT_OUTPUT = "xrts.h5"
	RUN_OUT_NAME   = "xrts_out.txt"
	RUN_LOG_NAME   = "xrts.log"
)

// XRTS_CMD is the command line of the xrts backengine. It runs
// without arguments in the working directory holding the input deck.
var XRTS_CMD = []string{"xrts"}

var (
	ErrNoParameters = errors.New("XRTS calculator needs parameters")
	ErrBackengine   = errors.New("xrts backengine failed")
	ErrNoData       = errors.New("no data generated")
	ErrNotRun       = errors.New("backengine has not run")
)

// XRTSCalculator drives a plasma x-ray Thomson scattering calculation
// with the external xrts program
type XRTSCalculator struct {
	Params     *XRTSParameters
	InputPath  string
	OutputPath string
	// Compress additionally stores the run log zstd compressed
	Compress bool

	initialized bool
	runLog      string
	runData     *mat.Dense
	staticData  map[string]float64
	inputData   map[string][]float64
}

// NewXRTSCalculator returns a calculator for params reading from
// input and writing to output. Empty paths select the defaults.
func NewXRTSCalculator(params *XRTSParameters, input, output string) (
	*XRTSCalculator, error) {
	if params == nil {
		return nil, ErrNoParameters
	}
	if input == "" {
		input = DEFAULT_INPUT
	}
	if output == "" {
		output = DEFAULT_OUTPUT
	}
	in, err := filepath.Abs(input)
	if err != nil {
		return nil, err
	}
	out, err := filepath.Abs(output)
	if err != nil {
		return nil, err
	}
	return &XRTSCalculator{
		Params:     params,
		InputPath:  in,
		OutputPath: out,
		inputData:  make(map[string][]float64),
	}, nil
}

const snp = "/data/snp_<7 digit index>/"

// ExpectedData returns the datasets the calculator reads from a
// diffraction input
func (c *XRTSCalculator) ExpectedData() []string {
	ret := make([]string, 0, 17)
	for _, v := range []string{"ff", "halfQ", "Nph", "r", "T", "Z", "xyz",
		"Sq_halfQ", "Sq_bound", "Sq_free"} {
		ret = append(ret, snp+v)
	}
	return append(ret,
		"/history/parent/detail",
		"/history/parent/parent",
		"/info/package_version",
		"/info/contact",
		"/info/data_description",
		"/info/method_description",
		"/version",
	)
}

// ProvidedData returns the datasets written by SaveH5
func (c *XRTSCalculator) ProvidedData() []string {
	ret := []string{
		"/data",
		"/data/dynamic",
		"/data/dynamic/energy_shifts",
		"/data/dynamic/Skw_free",
		"/data/dynamic/Skw_bound",
		"/data/dynamic/Skw_total",
		"/data/dynamic/collision_frequency",
		"/data/static",
	}
	for _, l := range staticLabels {
		ret = append(ret, "/data/static/"+l.Key)
	}
	return append(ret,
		"/history/parent/detail",
		"/history/parent/parent",
		"/info/package_version",
		"/info/contact",
		"/info/data_description",
		"/info/method_description",
		"/info/units/energy",
		"/info/units/structure_factor",
		"/params/beam/photonEnergy",
		"/params/beam/spectrum",
		"/params/info",
		"/params/k",
		"/version",
	)
}

// Initialized reports whether the input deck has been written
func (c *XRTSCalculator) Initialized() bool { return c.initialized }

// RunLog returns the standard output of the last backengine run
func (c *XRTSCalculator) RunLog() string { return c.runLog }

// RunData returns the table written by the last backengine run
func (c *XRTSCalculator) RunData() *mat.Dense { return c.runData }

// StaticData returns the quantities parsed from the run log by SaveH5
func (c *XRTSCalculator) StaticData() map[string]float64 {
	return c.staticData
}

// ReadH5 loads the source spectrum misc/spectrum0 from the input file
// into the parameters
func (c *XRTSCalculator) ReadH5() error {
	if !fileExists(c.InputPath) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, c.InputPath)
	}
	f, err := hdf5.OpenFile(c.InputPath, hdf5.F_ACC_RDONLY)
	if err != nil {
		return fmt.Errorf("opening %s: %w", c.InputPath, err)
	}
	defer f.Close()
	data, dims, err := readNumbers(f, "misc/spectrum0")
	if err != nil {
		return err
	}
	if len(dims) != 2 || dims[1] != 2 {
		return fmt.Errorf("%w: misc/spectrum0 has shape %v, wanted (n, 2)",
			ErrDatasetType, dims)
	}
	n := int(dims[0])
	energies := make([]float64, n)
	intensities := make([]float64, n)
	for i := 0; i < n; i++ {
		energies[i] = data[2*i]
		intensities[i] = data[2*i+1]
	}
	c.inputData["source_spectrum"] = data
	c.Params.SetSpectrum(energies, intensities)
	return nil
}

// Backengine writes the input deck, runs xrts and loads its output
func (c *XRTSCalculator) Backengine() error {
	c.runLog, c.runData, c.staticData = "", nil, nil
	if c.Params.SourceSpectrum == PropSpectrum &&
		c.inputData["source_spectrum"] == nil {
		if err := c.ReadH5(); err != nil {
			return err
		}
	}
	deck, err := c.Params.Serialize()
	if err != nil {
		return err
	}
	c.initialized = true
	dir := c.Params.WorkDir

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(XRTS_CMD[0], XRTS_CMD[1:]...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	log.Printf("running %q in %s\n", cmd.String(), dir)
	err = cmd.Run()
	if err != nil {
		return fmt.Errorf("%w in %s: %v\n%s", ErrBackengine, dir, err,
			stderr.String())
	}
	if stderr.Len() > 0 {
		return fmt.Errorf("%w in %s, error output follows:\n%s",
			ErrBackengine, dir, stderr.String())
	}
	out := filepath.Join(dir, RUN_OUT_NAME)
	if !fileExists(out) {
		return fmt.Errorf("%w: check input deck %s", ErrNoData, deck)
	}
	data, err := LoadRunData(out)
	if err != nil {
		return err
	}
	r, cols := data.Dims()
	if cols < 4 {
		return fmt.Errorf("%w: %s has %d columns, wanted at least 4",
			ErrRunData, out, cols)
	}
	if err := c.writeLog(stdout.String()); err != nil {
		return err
	}
	c.runLog, c.runData = stdout.String(), data
	log.Printf("xrts finished with %d energy shifts\n", r)
	return nil
}

// writeLog stores runLog in the working directory
func (c *XRTSCalculator) writeLog(runLog string) error {
	name := filepath.Join(c.Params.WorkDir, RUN_LOG_NAME)
	if err := os.WriteFile(name, []byte(runLog), 0644); err != nil {
		return err
	}
	if !c.Compress {
		return nil
	}
	return writeFile(name+".zst", func(w io.Writer) error {
		enc, err := zstd.NewWriter(w,
			zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return err
		}
		if _, err := io.Copy(enc, strings.NewReader(runLog)); err != nil {
			enc.Close()
			return err
		}
		return enc.Close()
	})
}

// ReadCompressedLog returns the contents of a zstd compressed run log
func ReadCompressedLog(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return "", err
	}
	defer dec.Close()
	byts, err := io.ReadAll(dec)
	if err != nil {
		return "", err
	}
	return string(byts), nil
}

// Descriptive metadata stored in /info
var xrtsInfo = map[string]string{
	"package_version":    "0.1",
	"contact":            "simex developers",
	"data_description":   "Dynamic and static structure factors of a plasma computed with xrts",
	"method_description": "Chihara decomposition of the x-ray Thomson scattering spectrum",
}

const XRTS_FORMAT_VERSION = 0.1

// SaveH5 writes the results of the last backengine run to the output
// path
func (c *XRTSCalculator) SaveH5() error {
	if c.runData == nil || c.runLog == "" {
		return ErrNotRun
	}
	static, err := ParseStaticData(c.runLog)
	if err != nil {
		return err
	}
	c.staticData = static

	tmp := c.OutputPath + ".tmp"
	f, err := hdf5.CreateFile(tmp, hdf5.F_ACC_TRUNC)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}
	err = c.writeH5(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, c.OutputPath); err != nil {
		os.Remove(tmp)
		return err
	}
	log.Printf("wrote %s\n", c.OutputPath)
	return nil
}

// writeH5 fills f with the run data and the metadata groups
func (c *XRTSCalculator) writeH5(f *hdf5.File) error {
	for _, g := range []string{"/data/dynamic", "/data/static",
		"/history/parent", "/info/units", "/params/beam"} {
		if err := mkGroups(f, g); err != nil {
			return err
		}
	}

	rows, cols := c.runData.Dims()
	dynamic := []struct {
		name string
		unit string
	}{
		{"energy_shifts", "eV"},
		{"Skw_free", "eV**-1"},
		{"Skw_bound", "eV**-1"},
		{"Skw_total", "eV**-1"},
		{"collision_frequency", ""},
	}
	for j, d := range dynamic {
		if j >= cols {
			break
		}
		col := mat.Col(make([]float64, rows), j, c.runData)
		err := writeVector(f, "/data/dynamic/"+d.name, col, d.unit)
		if err != nil {
			return err
		}
	}

	for _, l := range staticLabels {
		var unit string
		if l.Key == "ipl" {
			unit = "eV"
		}
		err := writeScalar(f, "/data/static/"+l.Key, c.staticData[l.Key],
			unit)
		if err != nil {
			return err
		}
	}

	err := writeAttrs(f, "/history/parent", map[string]string{
		"detail": "Source spectrum " + c.Params.SourceSpectrum +
			" read from " + c.InputPath,
		"parent": c.InputPath,
	})
	if err != nil {
		return err
	}
	if err := writeAttrs(f, "/info", xrtsInfo); err != nil {
		return err
	}
	err = writeAttrs(f, "/info/units", map[string]string{
		"energy":           "eV",
		"structure_factor": "eV**-1",
	})
	if err != nil {
		return err
	}

	err = writeScalar(f, "/params/beam/photonEnergy",
		c.Params.PhotonEnergy, "eV")
	if err != nil {
		return err
	}
	err = writeAttrs(f, "/params/beam", map[string]string{
		"spectrum": c.Params.SourceSpectrum,
	})
	if err != nil {
		return err
	}
	var deck strings.Builder
	if err := XRTS_TEMPLATE.Execute(&deck, c.Params); err != nil {
		return err
	}
	err = writeAttrs(f, "/params", map[string]string{"info": deck.String()})
	if err != nil {
		return err
	}
	err = writeScalar(f, "/params/k", c.Params.ScatteringWavenumber(),
		"1/Angstrom")
	if err != nil {
		return err
	}
	return writeScalar(f, "/version", XRTS_FORMAT_VERSION, "")
}
