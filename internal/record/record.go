package record

import (
	"sort"
)

// Canonical field names.
const (
	FieldName            = "name"
	FieldNumber          = "number"
	FieldRole            = "role"
	FieldStature         = "stature_cm"
	FieldMass            = "mass_kg"
	FieldAge             = "age"
	FieldBirthDate       = "birth_date"
	FieldAffiliation     = "affiliation"
	FieldAppearanceCount = "appearance_count"
	FieldJerseyNumber    = "jersey_number"
	FieldMatchCount      = "match_count"
	FieldPointsScored    = "points_scored"
	FieldVictoryCount    = "victory_count"
	FieldTournamentCount = "tournament_count"
	FieldTitleCount      = "title_count"
)

// Provenance records where a field value came from.
//
// Variant and Config are only set for values recognized from an image; Score
// is only meaningful when HasScore is true.
type Provenance struct {
	Source   string `json:"source"`
	Variant  string `json:"variant,omitempty"`
	Config   string `json:"config,omitempty"`
	Score    int    `json:"score,omitempty"`
	HasScore bool   `json:"-"`
}

// Field is a named, typed value plus its provenance.
type Field struct {
	Name       string     `json:"name"`
	Value      Value      `json:"value"`
	Provenance Provenance `json:"provenance"`
}

// Fields maps field name to Field. Only validated, non-empty values are
// stored; a missing key means the field is unknown.
type Fields map[string]Field

// Set stores value under name, ignoring empty values.
func (f Fields) Set(name string, value Value, prov Provenance) {
	if value.IsEmpty() {
		return
	}
	f[name] = Field{Name: name, Value: value, Provenance: prov}
}

// Has reports whether name carries a non-empty value.
func (f Fields) Has(name string) bool {
	field, ok := f[name]
	return ok && !field.Value.IsEmpty()
}

// Get returns the value stored under name.
func (f Fields) Get(name string) (Value, bool) {
	field, ok := f[name]
	if !ok || field.Value.IsEmpty() {
		return Value{}, false
	}
	return field.Value, true
}

// Names returns the populated field names in sorted order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for name, field := range f {
		if !field.Value.IsEmpty() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy; Field values are immutable so this is a
// full copy in practice.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Strings flattens the fields into name -> serialized value.
func (f Fields) Strings() map[string]string {
	out := make(map[string]string, len(f))
	for name, field := range f {
		if !field.Value.IsEmpty() {
			out[name] = field.Value.String()
		}
	}
	return out
}

// Candidate is one harvesting pass's view of one entity.
type Candidate struct {
	// Key is the identity key. When empty, fusion derives one.
	Key string `json:"identity_key"`

	Fields Fields `json:"fields"`
	Source string `json:"source"`

	// Score is the winning trial's quality score for image-derived
	// candidates. HasScore is false for harvested records.
	Score    int  `json:"quality_score,omitempty"`
	HasScore bool `json:"-"`
}

// State is the fusion lifecycle position of an entity.
type State int

const (
	StateAbsent State = iota
	StatePartial
	StateCompleteEnough
)

// String returns the state name used in logs and JSON.
func (s State) String() string {
	switch s {
	case StatePartial:
		return "partial"
	case StateCompleteEnough:
		return "complete-enough"
	default:
		return "absent"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Fused is the terminal, merged representation of one entity.
type Fused struct {
	Key          string   `json:"identity_key"`
	Fields       Fields   `json:"fields"`
	Sources      []string `json:"contributing_sources"`
	Completeness float64  `json:"completeness_score"`
	State        State    `json:"state"`

	// LowConfidence is set when the key had to be derived from a hash of
	// the field set because no name was recoverable.
	LowConfidence bool `json:"low_confidence,omitempty"`
}

// Clone returns a copy that shares no mutable state with f.
func (f *Fused) Clone() *Fused {
	out := *f
	out.Fields = f.Fields.Clone()
	out.Sources = append([]string(nil), f.Sources...)
	return &out
}
