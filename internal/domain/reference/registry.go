package reference

import "fmt"

// Registry is the validated, immutable view over the parameter table.
// Build it once at startup and share it freely; it is never mutated.
type Registry struct {
	byID  map[string]*ParameterDefinition
	order []string
}

// BuildRegistry validates the static parameter table and indexes it.
// Malformed entries are rejected here so lookups never have to cope with
// bad records at runtime.
func BuildRegistry() (*Registry, error) {
	r := &Registry{byID: make(map[string]*ParameterDefinition, len(parameterTable))}
	for i := range parameterTable {
		def := &parameterTable[i]
		if err := validateDefinition(def); err != nil {
			return nil, fmt.Errorf("parameter table entry %q: %w", def.ID, err)
		}
		if _, dup := r.byID[def.ID]; dup {
			return nil, fmt.Errorf("parameter table entry %q: duplicate id", def.ID)
		}
		r.byID[def.ID] = def
		r.order = append(r.order, def.ID)
	}
	return r, nil
}

func validateDefinition(def *ParameterDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("empty id")
	}
	if def.DisplayName == "" {
		return fmt.Errorf("empty display name")
	}
	if def.CanonicalUnit == "" {
		return fmt.Errorf("empty canonical unit")
	}
	if def.Panel == "" {
		return fmt.Errorf("empty panel")
	}
	if def.Precision < 0 || def.Precision > 6 {
		return fmt.Errorf("precision %d out of bounds", def.Precision)
	}
	if len(def.Ranges) == 0 {
		return fmt.Errorf("no range rules")
	}
	for i, rule := range def.Ranges {
		if rule.Range.Min > rule.Range.Max {
			return fmt.Errorf("range rule %d inverted: min %v > max %v", i, rule.Range.Min, rule.Range.Max)
		}
		if rule.MaxAge != 0 && rule.MinAge > rule.MaxAge {
			return fmt.Errorf("range rule %d age bucket inverted", i)
		}
	}
	if ct := def.Critical; ct != nil {
		if ct.Low == nil && ct.High == nil {
			return fmt.Errorf("critical threshold with no bounds")
		}
		if ct.Low != nil && ct.High != nil && *ct.Low >= *ct.High {
			return fmt.Errorf("critical low %v >= critical high %v", *ct.Low, *ct.High)
		}
	}
	if pl := def.Plausible; pl != nil && pl.Min >= pl.Max {
		return fmt.Errorf("plausibility limit inverted")
	}
	return nil
}

// Get returns the definition for a parameter id.
func (r *Registry) Get(id string) (*ParameterDefinition, error) {
	def, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, id)
	}
	return def, nil
}

// Panel returns the definitions belonging to a panel, in table order.
func (r *Registry) Panel(p Panel) []*ParameterDefinition {
	var defs []*ParameterDefinition
	for _, id := range r.order {
		if def := r.byID[id]; def.Panel == p {
			defs = append(defs, def)
		}
	}
	return defs
}

// IDs returns every parameter id in table order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}
