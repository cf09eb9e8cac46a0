package record

import "math"

// EntityFields is the checklist used to report completeness of a fused
// record. It is deliberately smaller than the recognition-time list.
var EntityFields = []string{
	FieldName,
	FieldNumber,
	FieldRole,
	FieldStature,
	FieldMass,
	FieldAge,
	FieldAffiliation,
}

// RecognitionFields is the checklist used to report completeness of a
// single recognition attempt.
var RecognitionFields = []string{
	FieldRole,
	FieldStature,
	FieldMass,
	FieldAffiliation,
	FieldBirthDate,
	FieldAppearanceCount,
	FieldJerseyNumber,
	FieldAge,
}

// Completeness returns 100 × populated / len(important), rounded to one
// decimal. An empty checklist scores 0.
func Completeness(fields Fields, important []string) float64 {
	if len(important) == 0 {
		return 0
	}
	filled := 0
	for _, name := range important {
		if fields.Has(name) {
			filled++
		}
	}
	pct := 100 * float64(filled) / float64(len(important))
	return math.Round(pct*10) / 10
}
