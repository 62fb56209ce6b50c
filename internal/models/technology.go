package models

import "fmt"

// Policy says what happens to a local file after a successful upload.
type Policy string

const (
	PolicyDelete Policy = "delete"
	PolicyKeep   Policy = "keep"
)

// TechnologyEntry is a validated technology table row: an absolute directory
// plus glob pattern, a name for the destination layout, an optional retention
// window and the post-upload policy.
type TechnologyEntry struct {
	Pattern    string
	Name       string
	WindowDays *int // nil means use the run-wide default
	Policy     Policy
}

// ParseTechnology validates the raw [name, days, delete/keep] value attached
// to a pattern. The days field may be null.
func ParseTechnology(pattern string, value any) (TechnologyEntry, error) {
	fields, ok := value.([]any)
	if !ok || len(fields) != 3 {
		return TechnologyEntry{}, fmt.Errorf(
			`incorrect value for %s: it should be a list ["tech_name", days_to_keep, "delete/keep"]`, pattern)
	}

	name, ok := fields[0].(string)
	if !ok || name == "" {
		return TechnologyEntry{}, fmt.Errorf("incorrect technology name for %s", pattern)
	}

	var window *int
	switch v := fields[1].(type) {
	case nil:
	case int:
		days := v
		window = &days
	default:
		return TechnologyEntry{}, fmt.Errorf("incorrect retention window for %s: %v", pattern, fields[1])
	}

	policy, ok := fields[2].(string)
	if !ok || (Policy(policy) != PolicyDelete && Policy(policy) != PolicyKeep) {
		return TechnologyEntry{}, fmt.Errorf(
			`incorrect delete option for %s: it should be "delete" or "keep"`, pattern)
	}

	return TechnologyEntry{
		Pattern:    pattern,
		Name:       name,
		WindowDays: window,
		Policy:     Policy(policy),
	}, nil
}

// EffectiveWindow resolves the entry's retention window against the run-wide
// default.
func (e TechnologyEntry) EffectiveWindow(defaultDays int) int {
	if e.WindowDays != nil {
		return *e.WindowDays
	}
	return defaultDays
}
