package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/roster-ocr/internal/record"
)

// RawImage is an immutable image buffer handed to the core by a harvesting
// collaborator, together with the reference it was fetched from.
//
// The byte buffer is copied on construction and never exposed for writing,
// so a RawImage can be shared freely between goroutines. Hint carries the
// identity (name, number) parsed from the source reference itself,
// independent of recognition; it is the zero value when the reference
// carries none. Region, when set, restricts decoding to that part of the
// image.
type RawImage struct {
	data   []byte
	Source string
	Hint   record.IdentityHint
	Region *Region
}

// NewRawImage wraps data as a RawImage.
//
// Parameters:
//   - data: Encoded image bytes (PNG, JPEG or GIF). The slice is copied.
//   - source: URL or path the bytes came from; used as the source tag.
//   - hint: Optional identity hint supplied by the collaborator. When nil or
//     empty, the hint is parsed from source (e.g. ".../12%20Kevin%20Tillie.png").
func NewRawImage(data []byte, source string, hint *record.IdentityHint) RawImage {
	buf := make([]byte, len(data))
	copy(buf, data)

	r := RawImage{data: buf, Source: source}
	if hint != nil && !hint.IsZero() {
		r.Hint = *hint
	} else if parsed, ok := record.ParseIdentityHint(source); ok {
		r.Hint = parsed
	}
	return r
}

// LoadRawImage reads an image file from disk. The path doubles as the
// source reference, so a hint is parsed from the file name.
func LoadRawImage(path string) (RawImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RawImage{}, fmt.Errorf("failed to read image: %w", err)
	}
	return NewRawImage(data, path, nil), nil
}

// Bytes returns a copy of the encoded image.
func (r RawImage) Bytes() []byte {
	out := make([]byte, len(r.data))
	copy(out, r.data)
	return out
}

// Len returns the size of the encoded image in bytes.
func (r RawImage) Len() int {
	return len(r.data)
}

// Decode decodes the buffer, applying any EXIF orientation, then crops to
// Region when one is set.
func (r RawImage) Decode() (image.Image, error) {
	if len(r.data) == 0 {
		return nil, fmt.Errorf("failed to decode image: empty buffer")
	}
	img, err := imaging.Decode(bytes.NewReader(r.data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if r.Region != nil {
		if img, err = Crop(img, *r.Region); err != nil {
			return nil, fmt.Errorf("failed to crop image: %w", err)
		}
	}
	return img, nil
}

// ImageInfo contains metadata about a raw image without decoding its pixels.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected encoding: "png", "jpeg" or "gif".
	// Detection is based on content, not on the source extension.
	Format string `json:"format"`

	// SizeBytes is the size of the encoded buffer.
	SizeBytes int `json:"size_bytes"`
}

// Info reads the image header.
func (r RawImage) Info() (*ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(r.data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	return &ImageInfo{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Format:    format,
		SizeBytes: len(r.data),
	}, nil
}
