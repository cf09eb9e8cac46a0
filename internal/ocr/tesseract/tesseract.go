//go:build cgo

// Package tesseract provides the Tesseract-backed text recognizer.
//
// On builds with CGO enabled, this uses the gosseract library with native
// Tesseract bindings. Language data is located through the configured
// tessdata prefix, or Tesseract's own TESSDATA_PREFIX lookup when empty.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/roster-ocr/internal/ocr"
)

// Recognizer runs Tesseract on in-memory images.
//
// Each call uses its own client, so a Recognizer is safe for concurrent use.
type Recognizer struct {
	tessdataPrefix string
}

// New creates a recognizer. tessdataPrefix may be empty.
func New(tessdataPrefix string) *Recognizer {
	return &Recognizer{tessdataPrefix: tessdataPrefix}
}

// Recognize returns the text Tesseract reads in img under cfg's page
// segmentation mode and language profile.
//
// The Tesseract call itself cannot be interrupted; ctx is checked before
// the image is handed over, and the trial engine enforces the deadline
// around the call.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image, cfg ocr.Configuration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if r.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(r.tessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if len(cfg.Languages) > 0 {
		if err := client.SetLanguage(cfg.Languages...); err != nil {
			return "", fmt.Errorf("failed to set language: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.Mode)); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract OCR failed: %w", err)
	}
	return text, nil
}

// Info contains information about the OCR subsystem.
type Info struct {
	Available      bool   `json:"available"`
	Version        string `json:"version,omitempty"`
	Error          string `json:"error,omitempty"`
	Backend        string `json:"backend"`
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`
}

// Probe reports whether Tesseract can be initialized.
func (r *Recognizer) Probe() (info Info) {
	info = Info{Backend: "gosseract", TessdataPrefix: r.tessdataPrefix}
	defer func() {
		if rec := recover(); rec != nil {
			info.Available = false
			info.Error = fmt.Sprintf("tesseract library unavailable: %v", rec)
		}
	}()

	client := gosseract.NewClient()
	defer client.Close()
	info.Version = client.Version()
	info.Available = info.Version != ""
	if !info.Available {
		info.Error = "tesseract returned no version"
	}
	return info
}
