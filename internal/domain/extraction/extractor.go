package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/medscan/medscan/internal/domain/reference"
)

// unitToken is the closed set of unit spellings the extractor will pick up
// after a value. Anything else is left for the parameter default.
const unitToken = `(%|g/dl|g/l|mg/dl|mg/l|mmol/l|meq/l|ng/ml|ng/l|ug/l|umol/l|fl|pg|x?10\^3/ul|x?10\^6/ul|10\^9/l|10\^12/l|k/ul|m/ul|/ul|u/l)`

// paramGroup holds the ordered phrasings recognizing one parameter. The
// first pattern that matches a line wins for that parameter.
type paramGroup struct {
	ParameterID string
	Patterns    []*regexp.Regexp
}

func group(id string, synonyms ...string) paramGroup {
	pats := make([]*regexp.Regexp, 0, len(synonyms))
	for _, syn := range synonyms {
		// Name, up to 40 chars of non-numeric filler, value, optional unit.
		pats = append(pats, regexp.MustCompile(
			`(?i)`+syn+`[^0-9\n]{0,40}?(\d+(?:\.\d+)?)\s*`+unitToken+`?`))
	}
	return paramGroup{ParameterID: id, Patterns: pats}
}

// panelGroups lists the recognition groups per panel, in precedence order.
// More specific names come before generic ones so lines like "LDL
// Cholesterol" are never claimed by the total-cholesterol group.
var panelGroups = map[reference.Panel][]paramGroup{
	reference.PanelCBC: {
		group("hemoglobin", `\b(?:hemoglobin|haemoglobin|hgb|hb)\b`),
		group("hematocrit", `\b(?:hematocrit|haematocrit|hct|pcv|packed cell volume)\b`),
		group("rbc", `\b(?:rbc|red blood cells?|red cell count|erythrocytes?)\b`),
		group("wbc", `\b(?:wbc|white blood cells?|total leu[ck]ocyte count|tlc)\b`),
		group("platelets", `\b(?:platelets?|platelet count|plt)\b`),
		group("mchc", `\bmchc\b`),
		group("mcv", `\bmcv\b`),
		group("mch", `\bmch\b`),
		group("neutrophils", `\b(?:neutrophils?|polymorphs?|segs)\b`),
		group("lymphocytes", `\b(?:lymphocytes?|lymphs)\b`),
	},
	reference.PanelMetabolic: {
		group("hba1c", `\b(?:hba1c|hb a1c|glycated h[ae]moglobin|a1c)\b`),
		group("glucose_fasting", `\b(?:fasting (?:blood )?(?:glucose|sugar)|glucose[,( ]+fasting\)?|fbs|fpg|glucose)\b`),
		group("creatinine", `\b(?:serum )?creatinine\b`),
		group("bun", `\b(?:bun|blood urea nitrogen|urea nitrogen)\b`),
		group("sodium", `\b(?:sodium|na\+?)\b`),
		group("potassium", `\b(?:potassium|k\+)\b`),
	},
	reference.PanelLipid: {
		group("ldl", `\b(?:ldl(?:-c)?(?: cholesterol)?)\b`),
		group("hdl", `\b(?:hdl(?:-c)?(?: cholesterol)?)\b`),
		group("triglycerides", `\b(?:triglycerides?|tg)\b`),
		group("cholesterol_total", `\b(?:total cholesterol|cholesterol[,: ]+total|serum cholesterol|cholesterol)\b`),
	},
	reference.PanelCardiac: {
		group("troponin_i", `\b(?:troponin[- ]?i|ctni|trop i)\b`),
	},
}

// Extract scans normalized text line by line against the panel's pattern
// groups and returns one triple per recognized parameter. A line yields at
// most one parameter and a parameter claims at most one line. An empty
// result is not an error here; the pipeline boundary decides that.
func Extract(text string, panel reference.Panel) []ExtractedParameter {
	groups, ok := panelGroups[panel]
	if !ok {
		return nil
	}

	found := make(map[string]bool, len(groups))
	var out []ExtractedParameter

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, g := range groups {
			if found[g.ParameterID] {
				continue
			}
			value, unit, ok := g.match(line)
			if !ok {
				continue
			}
			found[g.ParameterID] = true
			out = append(out, ExtractedParameter{
				ParameterID: g.ParameterID,
				RawValue:    value,
				RawUnit:     unit,
			})
			break
		}
	}
	return out
}

func (g paramGroup) match(line string) (float64, string, bool) {
	for _, re := range g.Patterns {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return v, m[2], true
	}
	return 0, "", false
}

// Panels returns the panels the extractor has pattern groups for.
func Panels() []reference.Panel {
	return []reference.Panel{
		reference.PanelCBC,
		reference.PanelMetabolic,
		reference.PanelLipid,
		reference.PanelCardiac,
	}
}
