package reference

import (
	"errors"
	"testing"
)

func TestBuildRegistry(t *testing.T) {
	r, err := BuildRegistry()
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}
	if len(r.IDs()) == 0 {
		t.Fatal("registry is empty")
	}
	for _, id := range r.IDs() {
		def, err := r.Get(id)
		if err != nil {
			t.Fatalf("Get(%s): %v", id, err)
		}
		if def.CanonicalUnit == "" {
			t.Errorf("%s: empty canonical unit", id)
		}
	}
}

func TestGetUnknownParameter(t *testing.T) {
	r, err := BuildRegistry()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Get("chakra_level"); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("expected ErrUnknownParameter, got %v", err)
	}
}

func TestValidateDefinitionRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		def  ParameterDefinition
	}{
		{"empty unit", ParameterDefinition{ID: "x", DisplayName: "X", Panel: PanelCBC,
			Ranges: []RangeRule{{Range: ReferenceRange{Min: 0, Max: 1}}}}},
		{"no ranges", ParameterDefinition{ID: "x", DisplayName: "X", CanonicalUnit: "u", Panel: PanelCBC}},
		{"inverted range", ParameterDefinition{ID: "x", DisplayName: "X", CanonicalUnit: "u", Panel: PanelCBC,
			Ranges: []RangeRule{{Range: ReferenceRange{Min: 5, Max: 1}}}}},
		{"empty critical", ParameterDefinition{ID: "x", DisplayName: "X", CanonicalUnit: "u", Panel: PanelCBC,
			Ranges:   []RangeRule{{Range: ReferenceRange{Min: 0, Max: 1}}},
			Critical: &CriticalThreshold{}}},
		{"crossed critical", ParameterDefinition{ID: "x", DisplayName: "X", CanonicalUnit: "u", Panel: PanelCBC,
			Ranges:   []RangeRule{{Range: ReferenceRange{Min: 0, Max: 1}}},
			Critical: &CriticalThreshold{Low: f64(5), High: f64(2)}}},
		{"inverted plausibility", ParameterDefinition{ID: "x", DisplayName: "X", CanonicalUnit: "u", Panel: PanelCBC,
			Ranges:    []RangeRule{{Range: ReferenceRange{Min: 0, Max: 1}}},
			Plausible: &PlausibilityLimit{Min: 10, Max: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := validateDefinition(&tc.def); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestResolveRangeBySexAndAge(t *testing.T) {
	r, err := BuildRegistry()
	if err != nil {
		t.Fatal(err)
	}
	hgb, _ := r.Get("hemoglobin")

	male, err := hgb.ResolveRange(PatientContext{Age: 40, Sex: SexMale})
	if err != nil {
		t.Fatal(err)
	}
	if male.Min != 13.5 || male.Max != 17.5 {
		t.Fatalf("male adult hemoglobin range = %+v", male)
	}

	female, err := hgb.ResolveRange(PatientContext{Age: 40, Sex: SexFemale})
	if err != nil {
		t.Fatal(err)
	}
	if female.Min != 12.0 || female.Max != 15.5 {
		t.Fatalf("female adult hemoglobin range = %+v", female)
	}

	child, err := hgb.ResolveRange(PatientContext{Age: 9, Sex: SexMale})
	if err != nil {
		t.Fatal(err)
	}
	if child.Min != 11.0 || child.Max != 16.0 {
		t.Fatalf("pediatric hemoglobin range = %+v", child)
	}
}

func TestResolveRangeNoMatch(t *testing.T) {
	def := ParameterDefinition{
		ID: "x", DisplayName: "X", CanonicalUnit: "u", Panel: PanelCBC,
		Ranges: []RangeRule{{Sex: SexMale, MinAge: 18, Range: ReferenceRange{Min: 1, Max: 2}}},
	}
	_, err := def.ResolveRange(PatientContext{Age: 30, Sex: SexFemale})
	if !errors.Is(err, ErrNoReferenceRange) {
		t.Fatalf("expected ErrNoReferenceRange, got %v", err)
	}
}

func TestPanelLookup(t *testing.T) {
	r, err := BuildRegistry()
	if err != nil {
		t.Fatal(err)
	}
	cbc := r.Panel(PanelCBC)
	if len(cbc) < 5 {
		t.Fatalf("cbc panel has %d parameters", len(cbc))
	}
	for _, def := range cbc {
		if def.Panel != PanelCBC {
			t.Errorf("%s leaked into cbc panel", def.ID)
		}
	}
}

func TestPatientContextValidate(t *testing.T) {
	if err := (PatientContext{Age: 35, Sex: SexFemale}).Validate(); err != nil {
		t.Fatalf("valid context rejected: %v", err)
	}
	if err := (PatientContext{Age: -1, Sex: SexMale}).Validate(); err == nil {
		t.Fatal("negative age accepted")
	}
	if err := (PatientContext{Age: 35, Sex: "other"}).Validate(); err == nil {
		t.Fatal("unknown sex accepted")
	}
}
