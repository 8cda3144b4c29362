package advising

import "advisingdash/internal/stats"

// Filter narrows appointments by advisor and appointment type. An empty
// list selects every known value of that field.
type Filter struct {
	Advisors []string `json:"advisors" validate:"max=200,dive,max=200"`
	Types    []string `json:"types" validate:"max=200,dive,max=200"`
}

// FilterOptions lists the values a Filter can select from.
type FilterOptions struct {
	Advisors []string `json:"advisors"`
	Types    []string `json:"types"`
}

// Options returns the distinct non-blank advisors and types in order of
// first appearance.
func Options(appts []Appointment) FilterOptions {
	advisors := make([]string, len(appts))
	types := make([]string, len(appts))
	for i, a := range appts {
		advisors[i] = a.Advisor
		types[i] = a.Type
	}
	return FilterOptions{
		Advisors: stats.Unique(advisors),
		Types:    stats.Unique(types),
	}
}

// Effective resolves empty selections against opts.
func (f Filter) Effective(opts FilterOptions) Filter {
	out := f
	if len(out.Advisors) == 0 {
		out.Advisors = opts.Advisors
	}
	if len(out.Types) == 0 {
		out.Types = opts.Types
	}
	return out
}

// Apply keeps appointments whose advisor and type are both selected.
// Appointments with a blank advisor or type never match.
func (f Filter) Apply(appts []Appointment) []Appointment {
	eff := f.Effective(Options(appts))
	advisors := toSet(eff.Advisors)
	types := toSet(eff.Types)

	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		if _, ok := advisors[a.Advisor]; !ok {
			continue
		}
		if _, ok := types[a.Type]; !ok {
			continue
		}
		out = append(out, a)
	}
	return out
}

// IsZero reports whether f selects everything.
func (f Filter) IsZero() bool {
	return len(f.Advisors) == 0 && len(f.Types) == 0
}

func toSet(values []string) map[string]struct{} {
	s := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}
