// Package fields turns recognized text into typed, range-checked roster
// fields.
//
// A Registry is a declarative table of FieldPatterns. Each field lists its
// match rules in priority order together with a normalizer and a validator.
// Validators enforce domain plausibility, not just syntax: a stature must be
// 170–220 cm (fractional metres such as "1.95" are converted), a mass must be
// 60–130 kg, an appearance count must be 0–500. A match that fails
// validation is dropped and the search continues with the next match or
// pattern for that field; it is never stored as an empty value.
//
// Categorical values go through a synonym table so that recognition
// variants ("attacker", "spiker", "hitter") collapse onto one label
// ("Attaquant"). Unmapped but plausible values are title-cased.
//
// The same validators guard field maps supplied directly by harvesting
// passes (see Extractor.FromRaw).
package fields
