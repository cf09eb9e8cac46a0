// Package ocr runs recognition trials over image variants and selects the
// best result.
//
// The Engine invokes an external Recognizer once per (variant,
// configuration) pair. A Configuration is a named segmentation mode plus a
// language profile; the default menu is standard (single block), word,
// column, auto and line. Each non-empty result is passed through the field
// extractor and scored:
//
//   - role weighs 3; stature, mass and affiliation weigh 2; birth date,
//     appearances, jersey number and age weigh 1
//   - +1 when stature and mass are both present and plausible
//   - +1 when the raw output exceeds 1000 characters
//
// # Selection
//
// All attempts are collected before selection, in declaration order
// (variant-major), even when they run in parallel. SelectBest then picks the
// successful attempt with the strictly highest score; ties go to the
// earliest pair. Re-running selection on the same attempts always returns
// the same winner.
//
// # Failure Handling
//
// Recognizer errors, panics, blank output and timeouts degrade a single
// attempt to a zero-score Empty or Failed outcome. Each call carries its own
// deadline, and the whole grid for one image carries another; attempts that
// have not started when the image deadline passes are recorded as Failed.
//
// The Tesseract-backed Recognizer lives in the tesseract subpackage so that
// everything here builds and tests without cgo.
package ocr
