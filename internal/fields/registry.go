package fields

import (
	"fmt"
	"regexp"

	"github.com/ironsheep/roster-ocr/internal/record"
)

// Validator turns a normalized candidate string into a typed value. It
// returns false when the value is outside the field's plausible domain.
type Validator func(s string) (record.Value, bool)

// Normalizer cleans a raw match before validation.
type Normalizer func(s string) string

// FieldPattern is the static description of one field: the ordered match
// rules tried against recognized text, plus its validator and normalizer.
//
// Fields with no Patterns are never recognized from text but are still
// validated when supplied by a harvesting pass (name, number).
type FieldPattern struct {
	Name      string
	Kind      record.Kind
	Patterns  []*regexp.Regexp
	Validate  Validator
	Normalize Normalizer
}

// Accept normalizes then validates s.
func (fp FieldPattern) Accept(s string) (record.Value, bool) {
	if fp.Normalize != nil {
		s = fp.Normalize(s)
	}
	if s == "" {
		return record.Value{}, false
	}
	v, ok := fp.Validate(s)
	if !ok || v.IsEmpty() {
		return record.Value{}, false
	}
	return v, true
}

// Registry is an ordered, read-only table of field patterns.
//
// A Registry is never mutated after construction and is safe for
// concurrent use.
type Registry struct {
	fields []FieldPattern
	index  map[string]int
}

// NewRegistry validates and indexes the given patterns. Declaration order is
// preserved. It fails on an empty table, duplicate names, or a field with
// no validator; these are startup configuration errors.
func NewRegistry(patterns ...FieldPattern) (*Registry, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("field registry is empty")
	}
	r := &Registry{
		fields: make([]FieldPattern, 0, len(patterns)),
		index:  make(map[string]int, len(patterns)),
	}
	for _, fp := range patterns {
		if fp.Name == "" {
			return nil, fmt.Errorf("field pattern with empty name")
		}
		if fp.Validate == nil {
			return nil, fmt.Errorf("field %q has no validator", fp.Name)
		}
		if _, dup := r.index[fp.Name]; dup {
			return nil, fmt.Errorf("field %q declared twice", fp.Name)
		}
		r.index[fp.Name] = len(r.fields)
		r.fields = append(r.fields, fp)
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on error, for package-level tables.
func MustRegistry(patterns ...FieldPattern) *Registry {
	r, err := NewRegistry(patterns...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the pattern declared for name.
func (r *Registry) Lookup(name string) (FieldPattern, bool) {
	i, ok := r.index[name]
	if !ok {
		return FieldPattern{}, false
	}
	return r.fields[i], true
}

// Fields returns the field patterns in declaration order.
func (r *Registry) Fields() []FieldPattern {
	out := make([]FieldPattern, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of declared fields.
func (r *Registry) Len() int {
	return len(r.fields)
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}
