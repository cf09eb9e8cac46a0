package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ironsheep/roster-ocr/internal/record"
)

// createQuadrantImage paints the four quadrants red, green, blue and white.
func createQuadrantImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.RGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.RGBA{255, 0, 0, 255}
			case y < height/2:
				c = color.RGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.RGBA{0, 0, 255, 255}
			default:
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func rgbAt(img image.Image, x, y int) [3]uint8 {
	r, g, b, _ := img.At(x, y).RGBA()
	return [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

func TestCrop(t *testing.T) {
	img := createQuadrantImage(100, 100)

	cropped, err := Crop(img, Region{X1: 0, Y1: 0, X2: 50, Y2: 40})
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if b := cropped.Bounds(); b.Dx() != 50 || b.Dy() != 40 {
		t.Errorf("dimensions: got %dx%d, want 50x40", b.Dx(), b.Dy())
	}
	if got := rgbAt(cropped, 25, 20); got != [3]uint8{255, 0, 0} {
		t.Errorf("cropped color = %v, want red", got)
	}
}

func TestCrop_InvalidRegion(t *testing.T) {
	img := createQuadrantImage(100, 100)

	tests := []struct {
		name   string
		region Region
	}{
		{"x1 after x2", Region{X1: 50, Y1: 0, X2: 10, Y2: 50}},
		{"zero height", Region{X1: 0, Y1: 10, X2: 50, Y2: 10}},
		{"past right edge", Region{X1: 50, Y1: 0, X2: 150, Y2: 50}},
		{"negative origin", Region{X1: -1, Y1: 0, X2: 50, Y2: 50}},
		{"unknown name", Region{Name: "middle"}},
		{"wrong case", Region{Name: "TOP-LEFT"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(img, tt.region); err == nil {
				t.Errorf("Crop(%+v) should fail", tt.region)
			}
		})
	}
}

func TestRegion_Named(t *testing.T) {
	img := createQuadrantImage(100, 100)

	tests := []struct {
		name         string
		wantW, wantH int
		wantColor    [3]uint8
	}{
		{"top-left", 50, 50, [3]uint8{255, 0, 0}},
		{"top-right", 50, 50, [3]uint8{0, 255, 0}},
		{"bottom-left", 50, 50, [3]uint8{0, 0, 255}},
		{"bottom-right", 50, 50, [3]uint8{255, 255, 255}},
		{"top-half", 100, 50, [3]uint8{0, 255, 0}},
		{"bottom-half", 100, 50, [3]uint8{255, 255, 255}},
		{"left-half", 50, 100, [3]uint8{0, 0, 255}},
		{"right-half", 50, 100, [3]uint8{255, 255, 255}},
		{"center", 50, 50, [3]uint8{255, 255, 255}},
	}
	if len(tests) != len(RegionNames) {
		t.Fatalf("test covers %d regions, RegionNames has %d", len(tests), len(RegionNames))
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cropped, err := Crop(img, Region{Name: tt.name})
			if err != nil {
				t.Fatalf("Crop(%s) failed: %v", tt.name, err)
			}
			b := cropped.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
			if got := rgbAt(cropped, b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2); got != tt.wantColor {
				t.Errorf("color at center = %v, want %v", got, tt.wantColor)
			}
		})
	}
}

func TestRegion_OddDimensions(t *testing.T) {
	rect, err := Region{Name: "top-left"}.Rect(image.Rect(0, 0, 101, 101))
	if err != nil {
		t.Fatalf("Rect failed: %v", err)
	}
	// 101/2 = 50 (integer division)
	if rect.Dx() != 50 || rect.Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", rect.Dx(), rect.Dy())
	}
}

func TestRawImage_DecodeWithRegion(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, createQuadrantImage(60, 40)); err != nil {
		t.Fatalf("encode: %v", err)
	}

	raw := NewRawImage(buf.Bytes(), "cv/card.png", &record.IdentityHint{Name: "Jean Patry"})
	raw.Region = &Region{Name: "bottom-half"}

	img, err := raw.Decode()
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 60 || b.Dy() != 20 {
		t.Errorf("dimensions: got %dx%d, want 60x20", b.Dx(), b.Dy())
	}

	raw.Region = &Region{X1: 0, Y1: 0, X2: 100, Y2: 10}
	if _, err := raw.Decode(); err == nil {
		t.Error("out-of-bounds region should fail decoding")
	}
}

func TestEncodePreview(t *testing.T) {
	v := Variant{Name: VariantGrayscale, Image: createQuadrantImage(200, 100)}

	p, err := EncodePreview(v, 50)
	if err != nil {
		t.Fatalf("EncodePreview failed: %v", err)
	}
	if p.Variant != VariantGrayscale || p.MimeType != "image/png" {
		t.Errorf("preview = %+v", p)
	}
	if p.Width != 50 || p.Height != 25 {
		t.Errorf("dimensions: got %dx%d, want 50x25", p.Width, p.Height)
	}

	data, err := base64.StdEncoding.DecodeString(p.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("decoded dimensions: got %dx%d", b.Dx(), b.Dy())
	}
}

func TestEncodePreview_NoLimit(t *testing.T) {
	v := Variant{Name: VariantOriginal, Image: createQuadrantImage(30, 20)}

	p, err := EncodePreview(v, 0)
	if err != nil {
		t.Fatalf("EncodePreview failed: %v", err)
	}
	if p.Width != 30 || p.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", p.Width, p.Height)
	}
}
