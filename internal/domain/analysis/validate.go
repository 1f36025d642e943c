package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/medscan/medscan/internal/domain/reference"
)

// Risk scoring thresholds on |deviation| percent. The moderate threshold is
// lower for parameters where small excursions already matter clinically.
const (
	deviationHighThreshold    = 50.0
	moderateThresholdDefault  = 30.0
	moderateThresholdHighRisk = 20.0
)

// Validate classifies one value against its parameter definition. It is a
// pure function: no state, identical output for identical input, safe to
// call concurrently. Out-of-range medical values are the expected work here
// and never produce an error; errors are reserved for malformed input.
func Validate(value float64, def *reference.ParameterDefinition, pc reference.PatientContext) (MedicalResult, error) {
	if def == nil {
		return MedicalResult{}, fmt.Errorf("nil parameter definition")
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MedicalResult{}, fmt.Errorf("parameter %s: value is not a finite number", def.ID)
	}

	res := MedicalResult{
		ParameterID: def.ID,
		DisplayName: def.DisplayName,
		Value:       value,
		Unit:        def.CanonicalUnit,
	}

	// 1. Plausibility: flagged, never rejected.
	if pl := def.Plausible; pl != nil && (value < pl.Min || value > pl.Max) {
		res.Flags = append(res.Flags, FlagImplausible)
	}

	rng, err := def.ResolveRange(pc)
	if err != nil {
		if errors.Is(err, reference.ErrNoReferenceRange) {
			res.Status = StatusNotEvaluated
			res.RiskLevel = RiskLow
			res.Flags = append(res.Flags, FlagNotEvaluated)
			return res, nil
		}
		return MedicalResult{}, err
	}
	res.ReferenceRange = &rng

	// 2. Status: critical thresholds take precedence over the range.
	res.Status = classify(value, rng, def.Critical)

	// 3. Deviation: signed distance from the breached standard boundary,
	// not the critical threshold.
	res.DeviationPercent = deviation(value, rng, res.Status)

	// 4. Risk ladder.
	res.RiskLevel = riskLevel(res.Status, res.DeviationPercent, def.HighRisk)

	// 5. Critical annotations.
	if res.Status.Critical() {
		res.Flags = append(res.Flags, FlagCritical, FlagUrgent)
	}

	return res, nil
}

func classify(value float64, rng reference.ReferenceRange, ct *reference.CriticalThreshold) Status {
	if ct != nil {
		if ct.Low != nil && value < *ct.Low {
			return StatusCriticalLow
		}
		if ct.High != nil && value > *ct.High {
			return StatusCriticalHigh
		}
	}
	switch {
	case value < rng.Min:
		return StatusLow
	case value > rng.Max:
		return StatusHigh
	default:
		return StatusNormal
	}
}

func deviation(value float64, rng reference.ReferenceRange, status Status) float64 {
	var boundary float64
	switch {
	case status == StatusNormal || status == StatusNotEvaluated:
		return 0
	case status.BelowRange():
		boundary = rng.Min
	default:
		boundary = rng.Max
	}
	if boundary == 0 {
		// A zero boundary admits no finite percentage; only reachable for
		// negative input on a zero-floored range.
		return 0
	}
	d := (value - boundary) / boundary * 100.0
	return math.Round(d*10) / 10
}

func riskLevel(status Status, deviationPct float64, highRisk bool) RiskLevel {
	if status.Critical() {
		return RiskCritical
	}
	moderate := moderateThresholdDefault
	if highRisk {
		moderate = moderateThresholdHighRisk
	}
	abs := math.Abs(deviationPct)
	switch {
	case abs > deviationHighThreshold:
		return RiskHigh
	case abs > moderate:
		return RiskModerate
	default:
		return RiskLow
	}
}
