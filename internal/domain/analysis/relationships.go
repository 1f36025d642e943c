package analysis

// DetectPatterns inspects a completed result set for one panel and emits
// cross-parameter pattern flags. Rules are conjunctions over statuses, never
// raw values; they are evaluated independently, so any subset may fire.
// NOT_EVALUATED results participate in no rule.
func DetectPatterns(results []MedicalResult) []RelationshipFlag {
	byID := make(map[string]MedicalResult, len(results))
	for _, r := range results {
		byID[r.ParameterID] = r
	}

	below := func(id string) bool { return byID[id].Status.BelowRange() }
	above := func(id string) bool { return byID[id].Status.AboveRange() }
	present := func(id string) bool {
		r, ok := byID[id]
		return ok && r.Status != StatusNotEvaluated
	}

	var flags []RelationshipFlag

	// Low hemoglobin with an MCV result present lets downstream narrative
	// distinguish microcytic from macrocytic anemia.
	if below("hemoglobin") && present("mcv") {
		flags = append(flags, PatternAnemia)
	}
	if above("wbc") && above("neutrophils") {
		flags = append(flags, PatternInfection)
	}
	if below("platelets") {
		flags = append(flags, PatternBleedingRisk)
	}
	if above("hemoglobin") && above("rbc") && above("hematocrit") {
		flags = append(flags, PatternPolycythemia)
	}

	return flags
}
