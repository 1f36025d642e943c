package reference

import (
	"errors"
	"fmt"
)

// Sex is the biological sex used for reference-range resolution.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Valid reports whether s is a recognized sex value.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// Panel identifies a test panel grouping related parameters.
type Panel string

const (
	PanelCBC       Panel = "cbc"
	PanelMetabolic Panel = "metabolic"
	PanelLipid     Panel = "lipid"
	PanelCardiac   Panel = "cardiac"
)

var (
	// ErrUnknownParameter is returned when a parameter id has no definition.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrNoReferenceRange is returned when no range rule matches the
	// patient context. Callers classify such values as NOT_EVALUATED
	// rather than comparing against a zero-width range.
	ErrNoReferenceRange = errors.New("no reference range defined")
)

// ReferenceRange is the clinical normal interval in the canonical unit.
type ReferenceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the range, boundaries included.
func (r ReferenceRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// CriticalThreshold holds optional bounds whose breach overrides standard
// range classification. A nil side means no critical bound in that direction.
type CriticalThreshold struct {
	Low  *float64 `json:"critical_low,omitempty"`
	High *float64 `json:"critical_high,omitempty"`
}

// PlausibilityLimit bounds biologically possible values. Values outside are
// flagged as implausible but still classified.
type PlausibilityLimit struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PatientContext carries the per-request demographics used to resolve ranges.
type PatientContext struct {
	Age int `json:"age"`
	Sex Sex `json:"sex"`
}

// Validate checks the context before it is used for range resolution.
func (pc PatientContext) Validate() error {
	if pc.Age < 0 || pc.Age > 130 {
		return fmt.Errorf("age %d out of bounds", pc.Age)
	}
	if !pc.Sex.Valid() {
		return fmt.Errorf("sex %q is not recognized", pc.Sex)
	}
	return nil
}

// RangeRule binds a reference range to a demographic bucket. Sex empty means
// either sex; MaxAge 0 means unbounded above.
type RangeRule struct {
	Sex    Sex
	MinAge int
	MaxAge int
	Range  ReferenceRange
}

func (rr RangeRule) matches(pc PatientContext) bool {
	if rr.Sex != "" && rr.Sex != pc.Sex {
		return false
	}
	if pc.Age < rr.MinAge {
		return false
	}
	if rr.MaxAge != 0 && pc.Age > rr.MaxAge {
		return false
	}
	return true
}

// ParameterDefinition is the immutable per-parameter record: canonical unit,
// range rules, optional critical thresholds and plausibility limits.
type ParameterDefinition struct {
	ID            string
	DisplayName   string
	CanonicalUnit string
	Panel         Panel
	// Precision is the number of decimals values are rounded to after
	// unit normalization.
	Precision int
	// HighRisk lowers the moderate-deviation threshold during risk scoring.
	HighRisk bool
	// Ranges are evaluated in order; the first matching rule wins.
	Ranges    []RangeRule
	Critical  *CriticalThreshold
	Plausible *PlausibilityLimit
}

// ResolveRange returns the reference range for the given patient context.
func (d *ParameterDefinition) ResolveRange(pc PatientContext) (ReferenceRange, error) {
	for _, rule := range d.Ranges {
		if rule.matches(pc) {
			return rule.Range, nil
		}
	}
	return ReferenceRange{}, fmt.Errorf("%w for %s (age=%d sex=%s)", ErrNoReferenceRange, d.ID, pc.Age, pc.Sex)
}
