package record

import (
	"strconv"
	"time"
)

// Kind identifies which member of a Value is populated.
type Kind int

const (
	// KindText holds free or categorical text (names, roles, affiliations).
	KindText Kind = iota

	// KindInt holds a validated integer measurement or count.
	KindInt

	// KindDate holds a calendar date with no time component.
	KindDate
)

// DateLayout is the serialized form of KindDate values.
const DateLayout = "2006-01-02"

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Value is a typed, already-validated field value.
//
// Exactly one of Text, Int or Date is meaningful, selected by Kind. The zero
// Value is an empty text value.
type Value struct {
	Kind Kind
	Text string
	Int  int
	Date time.Time
}

// Text builds a KindText value.
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Int builds a KindInt value.
func Int(n int) Value {
	return Value{Kind: KindInt, Int: n}
}

// Date builds a KindDate value truncated to the day in UTC.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{Kind: KindDate, Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// String serializes the value. Integers use base 10 and dates use DateLayout.
// The serialized length is what fusion compares when deciding which of two
// values is more informative.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.Itoa(v.Int)
	case KindDate:
		if v.Date.IsZero() {
			return ""
		}
		return v.Date.Format(DateLayout)
	default:
		return v.Text
	}
}

// IsEmpty reports whether the value serializes to nothing.
func (v Value) IsEmpty() bool {
	return v.String() == ""
}

// MarshalText lets values appear as plain strings in JSON output.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}
