package extraction

import (
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/medscan/medscan/internal/domain/reference"
)

// Unit normalization is table-driven. Each parameter maps recognized raw
// units to a multiplicative factor into the canonical unit. Identity
// spellings (different notations for the canonical unit itself) use factor 1.
// Molar-to-mass factors are parameter specific: glucose mmol/L x 18.0,
// cholesterol family mmol/L x 38.67, triglycerides mmol/L x 88.57.

var unitFactors = map[string]map[string]float64{
	"hemoglobin": {
		"g/l":    0.1,
		"mmol/l": 1.6113,
	},
	"mchc": {
		"g/l": 0.1,
	},
	"glucose_fasting": {
		"mmol/l": 18.0,
		"g/l":    100.0,
		"mg/l":   0.1,
	},
	"cholesterol_total": {"mmol/l": 38.67},
	"ldl":               {"mmol/l": 38.67},
	"hdl":               {"mmol/l": 38.67},
	"triglycerides":     {"mmol/l": 88.57},
	"creatinine": {
		"umol/l": 1.0 / 88.4,
	},
	"bun": {
		"mmol/l": 2.8011,
	},
	"troponin_i": {
		"ng/l": 0.001,
		"ug/l": 1.0,
	},
	"wbc": {
		"10^9/l": 1.0,
		"k/ul":   1.0,
		"/ul":    0.001,
	},
	"platelets": {
		"10^9/l": 1.0,
		"k/ul":   1.0,
		"/ul":    0.001,
	},
	"rbc": {
		"10^12/l": 1.0,
		"m/ul":    1.0,
		"/ul":     1e-6,
	},
}

// NormalizeUnits converts every extracted triple into its parameter's
// canonical unit. Unknown units pass through unchanged with a logged
// discrepancy rather than failing the pipeline.
func NormalizeUnits(params []ExtractedParameter, reg *reference.Registry, log zerolog.Logger) []ExtractedParameter {
	out := make([]ExtractedParameter, 0, len(params))
	for _, p := range params {
		def, err := reg.Get(p.ParameterID)
		if err != nil {
			log.Warn().Str("parameter", p.ParameterID).Msg("extracted parameter has no definition, dropping")
			continue
		}
		out = append(out, normalizeOne(p, def, log))
	}
	return out
}

func normalizeOne(p ExtractedParameter, def *reference.ParameterDefinition, log zerolog.Logger) ExtractedParameter {
	raw := cleanUnit(p.RawUnit)
	canonical := cleanUnit(def.CanonicalUnit)

	p.Unit = def.CanonicalUnit

	switch {
	case raw == canonical:
		p.Value = p.RawValue
		p.Converted = true

	case raw == "":
		// No unit token recognized: assume the parameter default, except
		// percentage-like values reported as a fraction.
		v := p.RawValue
		if canonical == "%" && v <= 1.0 {
			v *= 100.0
		}
		p.Value = v
		p.Converted = true

	default:
		if factor, ok := unitFactors[p.ParameterID][raw]; ok {
			p.Value = p.RawValue * factor
			p.Converted = true
		} else {
			log.Warn().
				Str("parameter", p.ParameterID).
				Str("raw_unit", p.RawUnit).
				Str("canonical_unit", def.CanonicalUnit).
				Msg("no conversion for unit, passing value through")
			p.Value = p.RawValue
			p.Unit = p.RawUnit
			p.Converted = false
		}
	}

	if p.Converted {
		p.Value = roundTo(p.Value, def.Precision)
	}
	return p
}

// cleanUnit collapses unit spelling variants: case, micro sign, leading
// multiplication sign, surrounding space and trailing periods.
func cleanUnit(u string) string {
	u = strings.TrimSpace(strings.ToLower(u))
	u = strings.ReplaceAll(u, "µ", "u")
	u = strings.TrimPrefix(u, "x")
	u = strings.TrimSuffix(u, ".")
	return u
}

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow10(decimals)
	return math.Round(v*pow) / pow
}
