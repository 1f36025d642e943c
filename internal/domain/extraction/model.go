package extraction

import "errors"

// ErrNoParameters is returned at the pipeline boundary when recognized text
// yielded no extractable parameters. Distinct from an OCR failure: the text
// was read, nothing in it matched.
var ErrNoParameters = errors.New("no parameters extracted")

// ExtractedParameter is one recognized (parameter, value, unit) triple.
// The extractor fills RawValue/RawUnit; unit normalization fills Value/Unit
// with the canonical representation.
type ExtractedParameter struct {
	ParameterID string  `json:"parameter_id"`
	RawValue    float64 `json:"raw_value"`
	RawUnit     string  `json:"raw_unit"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	// Converted is false when the raw unit was unknown and the value was
	// passed through unchanged.
	Converted bool `json:"converted"`
}
