package fields

import "github.com/ironsheep/roster-ocr/internal/record"

// TrialWeights scores a recognition attempt by which fields it yielded.
var TrialWeights = map[string]int{
	record.FieldRole:            3,
	record.FieldStature:         2,
	record.FieldMass:            2,
	record.FieldAffiliation:     2,
	record.FieldBirthDate:       1,
	record.FieldAppearanceCount: 1,
	record.FieldJerseyNumber:    1,
	record.FieldAge:             1,
}

// LongTextThreshold is the raw text length above which an attempt earns
// the length bonus.
const LongTextThreshold = 1000

// QualityScore ranks one recognition attempt: the weight of every field it
// produced, plus one point when stature and mass are both present and
// plausible, plus one point for long raw output.
func QualityScore(f record.Fields, textLength int) int {
	score := 0
	for name, w := range TrialWeights {
		if f.Has(name) {
			score += w
		}
	}

	stature, okS := f.Get(record.FieldStature)
	mass, okM := f.Get(record.FieldMass)
	if okS && okM &&
		stature.Int >= MinStatureCM && stature.Int <= MaxStatureCM &&
		mass.Int >= MinMassKG && mass.Int <= MaxMassKG {
		score++
	}

	if textLength > LongTextThreshold {
		score++
	}
	return score
}
