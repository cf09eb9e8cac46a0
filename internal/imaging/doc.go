// Package imaging prepares source images for text recognition.
//
// A RawImage is the immutable input handed over by a harvesting
// collaborator: encoded bytes, the URL or path they came from, and an
// identity hint parsed from that reference. The Generator turns one decoded
// image into a fixed, ordered menu of variants that give the recognizer
// several chances at the same scan.
//
// # Variant Menu
//
// Every variant is derived from the same normalized base: when the shorter
// side is below the working floor (1200 px by default) the image is
// upscaled with a Lanczos filter, aspect ratio preserved. Then, in order:
//
//   - original: the normalized base itself, always present
//   - contrast: contrast boosted
//   - sharp: sharpened twice
//   - grayscale: luminance only
//   - denoise-binarize: median denoise then adaptive Gaussian threshold
//   - binary: global threshold at 128
//
// # Failure Semantics
//
// A transform that panics or yields an empty image is skipped and logged.
// Generate fails only when the original itself cannot be produced, in
// which case the image is unrecoverable.
//
// # Thread Safety
//
// RawImage and Generator are safe for concurrent use. Variants are never
// mutated after creation.
package imaging
