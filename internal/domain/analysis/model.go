package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/medscan/medscan/internal/domain/reference"
)

// Status is the classification of one value against its reference range.
type Status string

const (
	StatusNormal       Status = "NORMAL"
	StatusLow          Status = "LOW"
	StatusHigh         Status = "HIGH"
	StatusCriticalLow  Status = "CRITICAL_LOW"
	StatusCriticalHigh Status = "CRITICAL_HIGH"
	// StatusNotEvaluated marks values whose parameter has no reference
	// range for the patient context. Never silently classified against a
	// zero-width range.
	StatusNotEvaluated Status = "NOT_EVALUATED"
)

// Critical reports whether the status is one of the critical ones.
func (s Status) Critical() bool {
	return s == StatusCriticalLow || s == StatusCriticalHigh
}

// BelowRange reports whether the value sat below its reference range.
func (s Status) BelowRange() bool {
	return s == StatusLow || s == StatusCriticalLow
}

// AboveRange reports whether the value sat above its reference range.
func (s Status) AboveRange() bool {
	return s == StatusHigh || s == StatusCriticalHigh
}

// RiskLevel orders clinical urgency: low < moderate < high < critical.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskRank = map[RiskLevel]int{
	RiskLow:      0,
	RiskModerate: 1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// Rank returns the severity position of the risk level.
func (r RiskLevel) Rank() int { return riskRank[r] }

// Flag is an additive annotation on a result. Flags never influence status,
// deviation or risk; they only carry side information.
type Flag string

const (
	FlagCritical     Flag = "CRITICAL"
	FlagUrgent       Flag = "URGENT"
	FlagImplausible  Flag = "IMPLAUSIBLE"
	FlagNotEvaluated Flag = "NOT_EVALUATED"
)

// RelationshipFlag is a cross-parameter pattern detected over a completed
// result set.
type RelationshipFlag string

const (
	PatternAnemia       RelationshipFlag = "ANEMIA_PATTERN"
	PatternInfection    RelationshipFlag = "INFECTION_PATTERN"
	PatternBleedingRisk RelationshipFlag = "BLEEDING_RISK_PATTERN"
	PatternPolycythemia RelationshipFlag = "POLYCYTHEMIA_PATTERN"
)

// MedicalResult is the immutable classification of one parameter value.
// Created once per analysis call and never mutated afterwards.
type MedicalResult struct {
	ParameterID      string                    `json:"parameter_id"`
	DisplayName      string                    `json:"display_name"`
	Value            float64                   `json:"value"`
	Unit             string                    `json:"unit"`
	ReferenceRange   *reference.ReferenceRange `json:"reference_range,omitempty"`
	Status           Status                    `json:"status"`
	DeviationPercent float64                   `json:"deviation_percent"`
	RiskLevel        RiskLevel                 `json:"risk_level"`
	Flags            []Flag                    `json:"flags,omitempty"`
}

// HasFlag reports whether the result carries the given flag.
func (r MedicalResult) HasFlag(f Flag) bool {
	for _, have := range r.Flags {
		if have == f {
			return true
		}
	}
	return false
}

// Analysis is the panel-level record handed to collaborators: every
// classified result, the detected patterns, and extraction metadata.
type Analysis struct {
	ID       uuid.UUID                `json:"id"`
	TestType reference.Panel          `json:"test_type"`
	Patient  reference.PatientContext `json:"patient"`
	Results  []MedicalResult          `json:"results"`
	Patterns []RelationshipFlag       `json:"patterns,omitempty"`
	// OCRConfidence is set only on the document path.
	OCRConfidence *float64  `json:"ocr_confidence,omitempty"`
	Warnings      []string  `json:"warnings,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
