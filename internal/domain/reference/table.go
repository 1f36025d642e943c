package reference

func f64(v float64) *float64 { return &v }

// parameterTable is the static source of truth for every supported
// parameter. BuildRegistry validates it once at startup; nothing reads it
// directly afterwards.
//
// Ranges follow common adult laboratory conventions; sex-split rules come
// first so the any-sex fallbacks only apply when no split rule matches.
var parameterTable = []ParameterDefinition{
	// -- Complete blood count --
	{
		ID: "hemoglobin", DisplayName: "Hemoglobin", CanonicalUnit: "g/dL",
		Panel: PanelCBC, Precision: 1,
		Ranges: []RangeRule{
			{Sex: SexMale, MinAge: 18, Range: ReferenceRange{Min: 13.5, Max: 17.5}},
			{Sex: SexFemale, MinAge: 18, Range: ReferenceRange{Min: 12.0, Max: 15.5}},
			{MaxAge: 17, Range: ReferenceRange{Min: 11.0, Max: 16.0}},
		},
		Critical:  &CriticalThreshold{Low: f64(7.0), High: f64(20.0)},
		Plausible: &PlausibilityLimit{Min: 1.0, Max: 25.0},
	},
	{
		ID: "hematocrit", DisplayName: "Hematocrit", CanonicalUnit: "%",
		Panel: PanelCBC, Precision: 1,
		Ranges: []RangeRule{
			{Sex: SexMale, MinAge: 18, Range: ReferenceRange{Min: 38.8, Max: 50.0}},
			{Sex: SexFemale, MinAge: 18, Range: ReferenceRange{Min: 34.9, Max: 44.5}},
			{MaxAge: 17, Range: ReferenceRange{Min: 32.0, Max: 44.0}},
		},
		Plausible: &PlausibilityLimit{Min: 5.0, Max: 75.0},
	},
	{
		ID: "rbc", DisplayName: "Red Blood Cell Count", CanonicalUnit: "10^6/uL",
		Panel: PanelCBC, Precision: 2,
		Ranges: []RangeRule{
			{Sex: SexMale, MinAge: 18, Range: ReferenceRange{Min: 4.35, Max: 5.65}},
			{Sex: SexFemale, MinAge: 18, Range: ReferenceRange{Min: 3.92, Max: 5.13}},
			{MaxAge: 17, Range: ReferenceRange{Min: 4.0, Max: 5.5}},
		},
		Plausible: &PlausibilityLimit{Min: 0.5, Max: 9.0},
	},
	{
		ID: "wbc", DisplayName: "White Blood Cell Count", CanonicalUnit: "10^3/uL",
		Panel: PanelCBC, Precision: 1,
		Ranges: []RangeRule{
			{Range: ReferenceRange{Min: 4.0, Max: 11.0}},
		},
		Critical:  &CriticalThreshold{Low: f64(1.0), High: f64(50.0)},
		Plausible: &PlausibilityLimit{Min: 0.1, Max: 200.0},
	},
	{
		ID: "platelets", DisplayName: "Platelet Count", CanonicalUnit: "10^3/uL",
		Panel: PanelCBC, Precision: 0,
		Ranges: []RangeRule{
			{Range: ReferenceRange{Min: 150, Max: 450}},
		},
		Critical:  &CriticalThreshold{Low: f64(30), High: f64(1000)},
		Plausible: &PlausibilityLimit{Min: 1, Max: 2000},
	},
	{
		ID: "mcv", DisplayName: "Mean Corpuscular Volume", CanonicalUnit: "fL",
		Panel: PanelCBC, Precision: 1,
		Ranges: []RangeRule{
			{Range: ReferenceRange{Min: 80.0, Max: 100.0}},
		},
		Plausible: &PlausibilityLimit{Min: 40.0, Max: 150.0},
	},
	{
		ID: "mch", DisplayName: "Mean Corpuscular Hemoglobin", CanonicalUnit: "pg",
		Panel: PanelCBC, Precision: 1,
		Ranges: []RangeRule{
			{Range: ReferenceRange{Min: 27.0, Max: 33.0}},
		},
		Plausible: &PlausibilityLimit{Min: 10.0, Max: 50.0},
	},
	{
		ID: "mchc", DisplayName: "Mean Corpuscular Hemoglobin Concentration", CanonicalUnit: "g/dL",
		Panel: PanelCBC, Precision: 1,
		Ranges: []RangeRule{
			{Range: ReferenceRange{Min: 32.0, Max: 36.0}},
		},
		Plausible: &PlausibilityLimit{Min: 20.0, Max: 45.0},
	},
	{
		ID: "neutrophils", DisplayName: "Neutrophils", CanonicalUnit: "%",
		Panel: PanelCBC, Precision: 1,
		Ranges: []RangeRule{
			{Range: ReferenceRange{Min: 40.0, Max: 70.0}},
		},
		Plausible: &PlausibilityLimit{Min: 0.0, Max: 100.0},
	},
	{
		ID: "lymphocytes", DisplayName: "Lymphocytes", CanonicalUnit: "%",
		Panel: PanelCBC, Precision: 1,
		Ranges: []RangeRule{
			{Range: ReferenceRange{Min: 20.0, Max: 40.0}},
		},
		Plausible: &PlausibilityLimit{Min: 0.0, Max: 100.0},
	},

	// -- Metabolic --
	{
		ID: "glucose_fasting", DisplayName: "Fasting Glucose", CanonicalUnit: "mg/dL",
		Panel: PanelMetabolic, Precision: 0, HighRisk: true,
		Ranges: []RangeRule{
			{Range: ReferenceRange{Min: 70, Max: 100}},
		},
		Critical:  &CriticalThreshold{Low: f64(40), High: f64(500)},
		Plausible: &PlausibilityLimit{Min: 10, Max: 1500},
	},
	{
		ID: "hba1c", DisplayName: "HbA1c", CanonicalUnit: "%",
		Panel: PanelMetabolic, Precision: 1, HighRisk: true,
		Ranges: []RangeRule{
			{Range: ReferenceRange{Min: 4.0, Max: 5.6}},
		},
		Plausible: &PlausibilityLimit{Min: 2.0, Max: 20.0},
	},
	{
		ID: "creatinine", DisplayName: "Creatinine", CanonicalUnit: "mg/dL",
		Panel: PanelMetabolic, Precision: 2, HighRisk: true,
		Ranges: []RangeRule{
			{Sex: SexMale, MinAge: 18, Range: ReferenceRange{Min: 0.74, Max: 1.35}},
			{Sex: SexFemale, MinAge: 18, Range: ReferenceRange{Min: 0.59, Max: 1.04}},
			{MaxAge: 17, Range: ReferenceRange{Min: 0.3, Max: 1.0}},
		},
		Plausible: &PlausibilityLimit{Min: 0.1, Max: 30.0},
	},
	{
		ID: "bun", DisplayName: "Blood Urea Nitrogen", CanonicalUnit: "mg/dL",
		Panel: PanelMetabolic, Precision: 0, HighRisk: true,
		Ranges: []RangeRule{
			{Range: ReferenceRange{Min: 6, Max: 24}},
		},
		Plausible: &PlausibilityLimit{Min: 1, Max: 200},
	},
	{
		ID: "sodium", DisplayName: "Sodium", CanonicalUnit: "mEq/L",
		Panel: PanelMetabolic, Precision: 0,
		Ranges: []RangeRule{
			{Range: ReferenceRange{Min: 135, Max: 145}},
		},
		Critical:  &CriticalThreshold{Low: f64(120), High: f64(160)},
		Plausible: &PlausibilityLimit{Min: 100, Max: 180},
	},
	{
		ID: "potassium", DisplayName: "Potassium", CanonicalUnit: "mEq/L",
		Panel: PanelMetabolic, Precision: 1,
		Ranges: []RangeRule{
			{Range: ReferenceRange{Min: 3.5, Max: 5.2}},
		},
		Critical:  &CriticalThreshold{Low: f64(2.5), High: f64(6.5)},
		Plausible: &PlausibilityLimit{Min: 1.0, Max: 12.0},
	},

	// -- Lipid --
	{
		ID: "cholesterol_total", DisplayName: "Total Cholesterol", CanonicalUnit: "mg/dL",
		Panel: PanelLipid, Precision: 0,
		Ranges: []RangeRule{
			{Range: ReferenceRange{Min: 0, Max: 199}},
		},
		Plausible: &PlausibilityLimit{Min: 20, Max: 1000},
	},
	{
		ID: "ldl", DisplayName: "LDL Cholesterol", CanonicalUnit: "mg/dL",
		Panel: PanelLipid, Precision: 0, HighRisk: true,
		Ranges: []RangeRule{
			{Range: ReferenceRange{Min: 0, Max: 99}},
		},
		Plausible: &PlausibilityLimit{Min: 5, Max: 600},
	},
	{
		ID: "hdl", DisplayName: "HDL Cholesterol", CanonicalUnit: "mg/dL",
		Panel: PanelLipid, Precision: 0,
		Ranges: []RangeRule{
			{Sex: SexMale, Range: ReferenceRange{Min: 40, Max: 100}},
			{Sex: SexFemale, Range: ReferenceRange{Min: 50, Max: 100}},
		},
		Plausible: &PlausibilityLimit{Min: 5, Max: 200},
	},
	{
		ID: "triglycerides", DisplayName: "Triglycerides", CanonicalUnit: "mg/dL",
		Panel: PanelLipid, Precision: 0, HighRisk: true,
		Ranges: []RangeRule{
			{Range: ReferenceRange{Min: 0, Max: 149}},
		},
		Plausible: &PlausibilityLimit{Min: 10, Max: 5000},
	},

	// -- Cardiac --
	{
		ID: "troponin_i", DisplayName: "Troponin I", CanonicalUnit: "ng/mL",
		Panel: PanelCardiac, Precision: 3, HighRisk: true,
		Ranges: []RangeRule{
			{Range: ReferenceRange{Min: 0, Max: 0.04}},
		},
		Critical:  &CriticalThreshold{High: f64(0.4)},
		Plausible: &PlausibilityLimit{Min: 0, Max: 100},
	},
}
