// Package criteria models engine-neutral document match criteria used by
// cascading delete-by-query. The index store client translates a Criteria
// into its native boolean filter.
package criteria

// Kind selects how a clause matches its field.
type Kind int

const (
	// KindTerm matches the exact keyword value.
	KindTerm Kind = iota
	// KindWildcard matches a wildcard pattern (e.g. a fully-qualified-name prefix).
	KindWildcard
	// KindMatch runs full-text matching on the field.
	KindMatch
)

// Clause is a single field condition.
type Clause struct {
	field string
	value string
	kind  Kind
}

// Term creates an exact keyword clause.
func Term(field, value string) Clause {
	return Clause{field: field, value: value, kind: KindTerm}
}

// Wildcard creates a wildcard pattern clause.
func Wildcard(field, pattern string) Clause {
	return Clause{field: field, value: pattern, kind: KindWildcard}
}

// Match creates a full-text match clause.
func Match(field, value string) Clause {
	return Clause{field: field, value: value, kind: KindMatch}
}

// Field returns the document field the clause applies to.
func (c Clause) Field() string { return c.field }

// Value returns the clause operand.
func (c Clause) Value() string { return c.value }

// Kind returns the clause kind.
func (c Clause) Kind() Kind { return c.kind }

// Criteria combines clauses: every Must clause is required, and at least
// one Should clause (when any are present) must match.
type Criteria struct {
	must   []Clause
	should []Clause
}

// AllOf requires every clause to match.
func AllOf(clauses ...Clause) Criteria {
	return Criteria{must: clauses}
}

// AnyOf requires at least one clause to match.
func AnyOf(clauses ...Clause) Criteria {
	return Criteria{should: clauses}
}

// Must returns the required clauses.
func (c Criteria) Must() []Clause { return c.must }

// Should returns the alternative clauses.
func (c Criteria) Should() []Clause { return c.should }

// IsEmpty reports whether the criteria has no clauses.
func (c Criteria) IsEmpty() bool { return len(c.must) == 0 && len(c.should) == 0 }
