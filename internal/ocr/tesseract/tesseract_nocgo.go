//go:build !cgo

// Package tesseract provides the Tesseract-backed text recognizer.
//
// This build has CGO disabled, so native Tesseract bindings are unavailable
// and every call fails. The trial engine records those failures as
// zero-score attempts.
package tesseract

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/roster-ocr/internal/ocr"
)

var errNoCgo = fmt.Errorf("tesseract requires a cgo-enabled build")

// Recognizer is a placeholder that always fails without cgo.
type Recognizer struct {
	tessdataPrefix string
}

// New creates a recognizer. tessdataPrefix is kept for reporting only.
func New(tessdataPrefix string) *Recognizer {
	return &Recognizer{tessdataPrefix: tessdataPrefix}
}

// Recognize always returns an error.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image, cfg ocr.Configuration) (string, error) {
	return "", errNoCgo
}

// Info contains information about the OCR subsystem.
type Info struct {
	Available      bool   `json:"available"`
	Version        string `json:"version,omitempty"`
	Error          string `json:"error,omitempty"`
	Backend        string `json:"backend"`
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`
}

// Probe reports that Tesseract is unavailable.
func (r *Recognizer) Probe() Info {
	return Info{
		Available:      false,
		Error:          errNoCgo.Error(),
		Backend:        "none (cgo disabled)",
		TessdataPrefix: r.tessdataPrefix,
	}
}
