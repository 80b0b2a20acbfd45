// Package patch models engine-neutral partial document updates. A Script is
// an ordered list of Operations that the index store client translates into
// its native server-side merge primitive.
package patch

import "fmt"

// Kind selects how an operation mutates its target field.
type Kind int

const (
	// OpSet replaces the field value.
	OpSet Kind = iota
	// OpListUnion adds the given elements to a list field, skipping
	// elements already present. Reapplying is a no-op.
	OpListUnion
	// OpListDifference removes the given elements from a list field.
	// Reapplying is a no-op.
	OpListDifference
)

// Operation is a single field mutation.
type Operation struct {
	path  string
	kind  Kind
	value any
}

// Set replaces the value at path.
func Set(path string, value any) Operation {
	return Operation{path: path, kind: OpSet, value: value}
}

// ListUnion adds elements to the list at path.
func ListUnion(path string, elements []any) Operation {
	return Operation{path: path, kind: OpListUnion, value: elements}
}

// ListDifference removes elements from the list at path.
func ListDifference(path string, elements []any) Operation {
	return Operation{path: path, kind: OpListDifference, value: elements}
}

// Path returns the dotted field path the operation targets.
func (o Operation) Path() string { return o.path }

// Kind returns the operation kind.
func (o Operation) Kind() Kind { return o.kind }

// Value returns the operand.
func (o Operation) Value() any { return o.value }

// Script is an ordered, non-empty set of operations applied atomically to
// one document. All kinds are idempotent: applying the same script twice
// leaves the document in the same final state.
type Script struct {
	ops []Operation
}

// NewScript validates and creates a Script.
func NewScript(ops ...Operation) (Script, error) {
	if len(ops) == 0 {
		return Script{}, fmt.Errorf("script requires at least one operation")
	}
	for _, op := range ops {
		if op.path == "" {
			return Script{}, fmt.Errorf("operation with empty field path")
		}
	}
	return Script{ops: ops}, nil
}

// Operations returns the ordered operations.
func (s Script) Operations() []Operation { return s.ops }

// IsEmpty reports whether the script has no operations.
func (s Script) IsEmpty() bool { return len(s.ops) == 0 }
