package extraction

import (
	"regexp"
	"strings"
)

// The normalizer applies a bounded set of corrections for predictable OCR
// errors before pattern extraction. Word and unit fixes are whole-token
// dictionary lookups; character-level fixes only fire between digits.
// Nothing here performs free-form alternation over single characters, so
// unrelated prose passes through untouched.

// wordCorrections maps commonly garbled domain words to their intended form.
// Looked up per whitespace-delimited token, case-insensitively.
var wordCorrections = map[string]string{
	"hemogiobin":    "hemoglobin",
	"hernoglobin":   "hemoglobin",
	"hemoglohin":    "hemoglobin",
	"haernoglobin":  "haemoglobin",
	"giucose":       "glucose",
	"glucqse":       "glucose",
	"cholesteroi":   "cholesterol",
	"choiesterol":   "cholesterol",
	"plateiet":      "platelet",
	"platelel":      "platelet",
	"plateiets":     "platelets",
	"platelels":     "platelets",
	"creatlnine":    "creatinine",
	"creatinlne":    "creatinine",
	"triglycerldes": "triglycerides",
	"neutrophlls":   "neutrophils",
	"lymphocytas":   "lymphocytes",
	"hematocrlt":    "hematocrit",
	"potasslum":     "potassium",
	"sodlum":        "sodium",
}

// unitCorrections canonicalizes unit spellings the OCR pass tends to mangle.
var unitCorrections = map[string]string{
	"gm/dl":  "g/dL",
	"gm%":    "g/dL",
	"g%":     "g/dL",
	"gmldl":  "g/dL",
	"mgldl":  "mg/dL",
	"mg/di":  "mg/dL",
	"mgm/dl": "mg/dL",
	"mmoll":  "mmol/L",
	"mmol/1": "mmol/L",
	"mmoi/l": "mmol/L",
	"meq/1":  "mEq/L",
	"rneq/l": "mEq/L",
	"ng/mi":  "ng/mL",
	"cumm":   "/uL",
	"cmm":    "/uL",
}

// Digit-context character confusions. Only fire when both neighbours are
// digits so names and units are never touched.
var (
	decimalCommaRe = regexp.MustCompile(`(\d),(\d)`)
	ohDigitRe      = regexp.MustCompile(`(\d)[Oo](\d)`)
	elDigitRe      = regexp.MustCompile(`(\d)[lI](\d)`)

	strayBarRe = regexp.MustCompile(`\|+`)
)

// NormalizeText corrects predictable recognition errors and canonicalizes
// unit abbreviations ahead of pattern extraction.
func NormalizeText(text string) string {
	out := strayBarRe.ReplaceAllString(text, " ")

	out = decimalCommaRe.ReplaceAllString(out, "$1.$2")
	out = ohDigitRe.ReplaceAllString(out, "${1}0$2")
	out = elDigitRe.ReplaceAllString(out, "${1}1$2")

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = correctTokens(line)
	}
	return strings.Join(lines, "\n")
}

// correctTokens rewrites each whitespace-delimited token through the
// correction dictionaries, preserving trailing punctuation.
func correctTokens(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return line
	}
	for i, tok := range fields {
		core := strings.TrimRight(tok, ".,;:")
		suffix := tok[len(core):]
		key := strings.ToLower(core)
		if fixed, ok := wordCorrections[key]; ok {
			fields[i] = matchCase(core, fixed) + suffix
			continue
		}
		if fixed, ok := unitCorrections[key]; ok {
			fields[i] = fixed + suffix
		}
	}
	return strings.Join(fields, " ")
}

// matchCase upper-cases the replacement when the original token started with
// an upper-case letter, keeping report headings readable.
func matchCase(original, replacement string) string {
	if original == "" || replacement == "" {
		return replacement
	}
	if original[0] >= 'A' && original[0] <= 'Z' {
		return strings.ToUpper(replacement[:1]) + replacement[1:]
	}
	return replacement
}
