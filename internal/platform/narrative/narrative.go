// Package narrative turns a completed analysis into a human-readable
// summary. A configured LLM provider produces the bilingual narrative; when
// none is configured, or the provider call fails, a deterministic rule-based
// summary is assembled instead so the pipeline never depends on an external
// service being up.
package narrative

import (
	"fmt"
	"sort"
	"strings"
)

// ResultLine is the provider-independent view of one classified result.
type ResultLine struct {
	Parameter string
	Value     float64
	Unit      string
	Status    string
	Risk      string
}

// Request carries everything a summary needs. It is deliberately free of
// domain types so providers stay decoupled from the analysis packages.
type Request struct {
	TestType   string
	PatientAge int
	PatientSex string
	Results    []ResultLine
	Patterns   []string
}

// patternPhrases translates pattern flags into reader-facing phrases.
var patternPhrases = map[string]string{
	"ANEMIA_PATTERN":        "findings consistent with anemia",
	"INFECTION_PATTERN":     "findings suggestive of infection or inflammation",
	"BLEEDING_RISK_PATTERN": "low platelets indicating elevated bleeding risk",
	"POLYCYTHEMIA_PATTERN":  "findings consistent with polycythemia",
}

// RuleBasedSummary builds the deterministic fallback summary from status
// counts, abnormal results and pattern flags.
func RuleBasedSummary(req Request) string {
	counts := make(map[string]int)
	var abnormal, critical []string
	for _, r := range req.Results {
		counts[r.Status]++
		line := fmt.Sprintf("%s %s %s (%s)", r.Parameter, trimFloat(r.Value), r.Unit, strings.ToLower(r.Status))
		switch {
		case strings.Contains(r.Status, "CRITICAL"):
			critical = append(critical, line)
		case r.Status == "LOW" || r.Status == "HIGH":
			abnormal = append(abnormal, line)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s panel: %d of %d results within reference range.",
		strings.ToUpper(req.TestType), counts["NORMAL"], len(req.Results))

	if len(critical) > 0 {
		fmt.Fprintf(&b, " Critical values requiring urgent attention: %s.", strings.Join(critical, "; "))
	}
	if len(abnormal) > 0 {
		fmt.Fprintf(&b, " Outside reference range: %s.", strings.Join(abnormal, "; "))
	}
	if n := counts["NOT_EVALUATED"]; n > 0 {
		fmt.Fprintf(&b, " %d result(s) could not be evaluated against a reference range.", n)
	}

	if len(req.Patterns) > 0 {
		phrases := make([]string, 0, len(req.Patterns))
		for _, p := range req.Patterns {
			if phrase, ok := patternPhrases[p]; ok {
				phrases = append(phrases, phrase)
			} else {
				phrases = append(phrases, strings.ToLower(strings.ReplaceAll(p, "_", " ")))
			}
		}
		sort.Strings(phrases)
		fmt.Fprintf(&b, " Pattern flags: %s.", strings.Join(phrases, "; "))
	}

	b.WriteString(" This summary is informational and is not a diagnosis.")
	return b.String()
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
