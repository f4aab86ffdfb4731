package main

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrDatumNotFound = errors.New("quantity not found in xrts log")

// staticLabels maps the output keys of the static data to the labels
// xrts prints in front of them
var staticLabels = []struct {
	Key   string
	Label string
}{
	{"fk", "f(k)"},
	{"qk", "q(k)"},
	{"Sk_ion", "S_ii(k)"},
	{"Sk_free", "S_ee^0(k)"},
	{"Sk_core", "Core_inelastic(k)"},
	{"Wk", "Elastic(k)"},
	{"Sk_total", "S_total(k)"},
	{"ipl", "IP depression [eV]"},
	{"lfc", "G(k)"},
	{"debye_waller", "Debye-Waller"},
}

const number = `([-+]?(?:\d+\.?\d*|\.\d+)(?:[eEdD][-+]?\d+)?)`

var staticPatterns = func() map[string]*regexp.Regexp {
	ret := make(map[string]*regexp.Regexp, len(staticLabels))
	for _, l := range staticLabels {
		ret[l.Key] = datumPattern(l.Label)
	}
	return ret
}()

// datumPattern returns a regular expression matching "label = value"
// and capturing the value
func datumPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(label) +
		`\s*=\s*` + number)
}

// extractDatum returns the first value assigned to the quantity
// matched by re in text
func extractDatum(re *regexp.Regexp, text string) (float64, bool, error) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false, nil
	}
	// Fortran double precision exponents
	v, err := strconv.ParseFloat(
		strings.NewReplacer("d", "e", "D", "e").Replace(m[1]), 64)
	if err != nil {
		return 0, true, fmt.Errorf("parsing %q: %w", m[0], err)
	}
	return v, true, nil
}

// ExtractDatum returns the value printed as "label = value" in text
func ExtractDatum(label, text string) (float64, error) {
	v, ok, err := extractDatum(datumPattern(label), text)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrDatumNotFound, label)
	}
	return v, nil
}

// ParseStaticData extracts the static structure quantities (form
// factors, structure factors, ionization potential lowering) from an
// xrts run log
func ParseStaticData(log string) (map[string]float64, error) {
	ret := make(map[string]float64, len(staticLabels))
	for _, l := range staticLabels {
		v, ok, err := extractDatum(staticPatterns[l.Key], log)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrDatumNotFound, l.Label)
		}
		ret[l.Key] = v
	}
	return ret, nil
}
