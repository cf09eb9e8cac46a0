package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Region is a rectangle of interest in image coordinates. When Name is set
// the rectangle is derived from the image bounds instead of X1..Y2.
type Region struct {
	Name string `json:"name,omitempty"`
	X1   int    `json:"x1"` // Left edge X coordinate (inclusive)
	Y1   int    `json:"y1"` // Top edge Y coordinate (inclusive)
	X2   int    `json:"x2"` // Right edge X coordinate (exclusive)
	Y2   int    `json:"y2"` // Bottom edge Y coordinate (exclusive)
}

// RegionNames lists the named regions Rect understands.
var RegionNames = []string{
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

// Rect resolves r against bounds.
func (r Region) Rect(bounds image.Rectangle) (image.Rectangle, error) {
	if r.Name == "" {
		rect := image.Rect(r.X1, r.Y1, r.X2, r.Y2)
		if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
			return image.Rectangle{}, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
		}
		if !rect.In(bounds) {
			return image.Rectangle{}, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
				r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
		}
		return rect, nil
	}

	w, h := bounds.Dx(), bounds.Dy()
	midX, midY := w/2, h/2

	var x1, y1, x2, y2 int
	switch r.Name {
	case "top-left":
		x1, y1, x2, y2 = 0, 0, midX, midY
	case "top-right":
		x1, y1, x2, y2 = midX, 0, w, midY
	case "bottom-left":
		x1, y1, x2, y2 = 0, midY, midX, h
	case "bottom-right":
		x1, y1, x2, y2 = midX, midY, w, h
	case "top-half":
		x1, y1, x2, y2 = 0, 0, w, midY
	case "bottom-half":
		x1, y1, x2, y2 = 0, midY, w, h
	case "left-half":
		x1, y1, x2, y2 = 0, 0, midX, h
	case "right-half":
		x1, y1, x2, y2 = midX, 0, w, h
	case "center":
		// Center 50% of the image
		qW, qH := w/4, h/4
		x1, y1, x2, y2 = qW, qH, w-qW, h-qH
	default:
		return image.Rectangle{}, fmt.Errorf("unknown region: %s", r.Name)
	}
	rect := image.Rect(x1, y1, x2, y2).Add(bounds.Min)
	if rect.Empty() {
		return image.Rectangle{}, fmt.Errorf("region %s of a %dx%d image is empty", r.Name, w, h)
	}
	return rect, nil
}

// Crop returns the part of img inside r.
func Crop(img image.Image, r Region) (image.Image, error) {
	rect, err := r.Rect(img.Bounds())
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, rect), nil
}

// Preview is a PNG rendering of one variant, for inspecting what the
// recognizer was given.
type Preview struct {
	Variant     string `json:"variant"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePreview renders v as base64 PNG, downscaled so that its longer side
// is at most maxSide (no limit when maxSide <= 0).
func EncodePreview(v Variant, maxSide int) (*Preview, error) {
	img := v.Image
	if maxSide > 0 {
		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		if w > maxSide || h > maxSide {
			if w >= h {
				img = imaging.Resize(img, maxSide, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxSide, imaging.Lanczos)
			}
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &Preview{
		Variant:     v.Name,
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
