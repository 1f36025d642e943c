package analysis

import (
	"reflect"
	"testing"
)

func result(id string, status Status) MedicalResult {
	return MedicalResult{ParameterID: id, Status: status}
}

func TestDetectPatterns(t *testing.T) {
	tests := []struct {
		name    string
		results []MedicalResult
		want    []RelationshipFlag
	}{
		{
			name: "anemia needs low hemoglobin and an mcv result",
			results: []MedicalResult{
				result("hemoglobin", StatusLow),
				result("mcv", StatusNormal),
			},
			want: []RelationshipFlag{PatternAnemia},
		},
		{
			name: "critically low hemoglobin also fires anemia",
			results: []MedicalResult{
				result("hemoglobin", StatusCriticalLow),
				result("mcv", StatusHigh),
			},
			want: []RelationshipFlag{PatternAnemia},
		},
		{
			name: "low hemoglobin without mcv is no pattern",
			results: []MedicalResult{
				result("hemoglobin", StatusLow),
			},
			want: nil,
		},
		{
			name: "infection needs both wbc and neutrophils high",
			results: []MedicalResult{
				result("wbc", StatusHigh),
				result("neutrophils", StatusHigh),
			},
			want: []RelationshipFlag{PatternInfection},
		},
		{
			name: "high wbc alone is no infection pattern",
			results: []MedicalResult{
				result("wbc", StatusHigh),
				result("neutrophils", StatusNormal),
			},
			want: nil,
		},
		{
			name: "low platelets fire bleeding risk on their own",
			results: []MedicalResult{
				result("platelets", StatusCriticalLow),
			},
			want: []RelationshipFlag{PatternBleedingRisk},
		},
		{
			name: "polycythemia needs all three high",
			results: []MedicalResult{
				result("hemoglobin", StatusHigh),
				result("rbc", StatusHigh),
				result("hematocrit", StatusHigh),
			},
			want: []RelationshipFlag{PatternPolycythemia},
		},
		{
			name: "two of three high is no polycythemia",
			results: []MedicalResult{
				result("hemoglobin", StatusHigh),
				result("rbc", StatusHigh),
				result("hematocrit", StatusNormal),
			},
			want: nil,
		},
		{
			name: "not evaluated results participate in no rule",
			results: []MedicalResult{
				result("hemoglobin", StatusLow),
				result("mcv", StatusNotEvaluated),
			},
			want: nil,
		},
		{
			name: "independent rules can fire together",
			results: []MedicalResult{
				result("hemoglobin", StatusLow),
				result("mcv", StatusLow),
				result("platelets", StatusLow),
				result("wbc", StatusHigh),
				result("neutrophils", StatusHigh),
			},
			want: []RelationshipFlag{PatternAnemia, PatternInfection, PatternBleedingRisk},
		},
		{
			name:    "empty result set yields no patterns",
			results: nil,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectPatterns(tt.results)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DetectPatterns() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectPatternsDoesNotMutateResults(t *testing.T) {
	results := []MedicalResult{
		result("platelets", StatusLow),
		result("hemoglobin", StatusNormal),
	}
	before := make([]MedicalResult, len(results))
	copy(before, results)

	DetectPatterns(results)

	if !reflect.DeepEqual(results, before) {
		t.Errorf("results mutated: %+v vs %+v", results, before)
	}
}
