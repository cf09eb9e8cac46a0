package imaging

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// Variant names, in generation order.
const (
	VariantOriginal  = "original"
	VariantContrast  = "contrast"
	VariantSharp     = "sharp"
	VariantGrayscale = "grayscale"
	VariantBinarized = "denoise-binarize"
	VariantBinary    = "binary"
)

// DefaultMinDimension is the working-resolution floor for the shorter side.
const DefaultMinDimension = 1200

// maxWorkingSide caps the longer side after upscaling, so a very thin strip
// cannot be blown up into an enormous buffer.
const maxWorkingSide = 8000

// Variant is one deterministic transformation of a source image.
type Variant struct {
	Name  string
	Image image.Image
}

// Transform derives a variant from the normalized base image. Apply must be
// deterministic and must not modify its input.
type Transform struct {
	Name  string
	Apply func(image.Image) image.Image
}

// DefaultTransforms returns the built-in variant menu, applied after the
// base image has been brought up to working resolution.
func DefaultTransforms() []Transform {
	return []Transform{
		{VariantContrast, func(img image.Image) image.Image { return adjust.Contrast(img, 0.8) }},
		{VariantSharp, func(img image.Image) image.Image { return effect.Sharpen(effect.Sharpen(img)) }},
		{VariantGrayscale, func(img image.Image) image.Image { return imaging.Grayscale(img) }},
		{VariantBinarized, func(img image.Image) image.Image { return AdaptiveBinarize(effect.Median(img, 1), 11, 2) }},
		{VariantBinary, func(img image.Image) image.Image { return segment.Threshold(img, 128) }},
	}
}

// Generator produces the fixed, ordered variant list for an image.
//
// A Generator holds no per-image state and is safe for concurrent use.
type Generator struct {
	minDimension int
	transforms   []Transform
	logger       *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithTransforms replaces the default transform menu.
func WithTransforms(t ...Transform) GeneratorOption {
	return func(g *Generator) {
		g.transforms = t
	}
}

// WithLogger sets the logger skipped variants are reported to.
func WithLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGenerator creates a generator. A minDimension of zero or less uses
// DefaultMinDimension.
func NewGenerator(minDimension int, opts ...GeneratorOption) *Generator {
	if minDimension <= 0 {
		minDimension = DefaultMinDimension
	}
	g := &Generator{
		minDimension: minDimension,
		transforms:   DefaultTransforms(),
		logger:       slog.Default(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// MinDimension returns the working-resolution floor.
func (g *Generator) MinDimension() int {
	return g.minDimension
}

// Names returns the variant names Generate produces when nothing is skipped.
func (g *Generator) Names() []string {
	names := make([]string, 0, len(g.transforms)+1)
	names = append(names, VariantOriginal)
	for _, t := range g.transforms {
		names = append(names, t.Name)
	}
	return names
}

// Generate returns the variants of img, "original" first.
//
// The image is first upscaled (Lanczos, aspect ratio preserved) when its
// shorter side is below the working floor; every transform then runs on
// that normalized base. A transform that panics or returns an empty image
// is skipped and logged, never fatal.
//
// Returns:
//   - []Variant: At least the "original" variant when err is nil.
//   - error: Non-nil when even the original cannot be produced; the image is
//     then unrecoverable.
func (g *Generator) Generate(img image.Image) ([]Variant, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("image has no pixels")
	}

	base, err := safeApply(func(i image.Image) image.Image { return g.normalize(i) }, img)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize image: %w", err)
	}

	variants := make([]Variant, 0, len(g.transforms)+1)
	variants = append(variants, Variant{Name: VariantOriginal, Image: base})

	for _, t := range g.transforms {
		out, err := safeApply(t.Apply, base)
		if err != nil {
			g.logger.Warn("variant skipped", "variant", t.Name, "error", err)
			continue
		}
		variants = append(variants, Variant{Name: t.Name, Image: out})
	}
	return variants, nil
}

// normalize upscales img so that its shorter side reaches minDimension.
func (g *Generator) normalize(img image.Image) image.Image {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	short, long := w, h
	if h < w {
		short, long = h, w
	}
	if short >= g.minDimension {
		return img
	}

	scale := float64(g.minDimension) / float64(short)
	if float64(long)*scale > maxWorkingSide {
		scale = maxWorkingSide / float64(long)
	}
	if scale <= 1 {
		return img
	}
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	return imaging.Resize(img, nw, nh, imaging.Lanczos)
}

// safeApply runs fn, converting a panic or an empty result into an error.
func safeApply(fn func(image.Image) image.Image, img image.Image) (out image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("transform panicked: %v", r)
		}
	}()
	out = fn(img)
	if out == nil || out.Bounds().Empty() {
		return nil, fmt.Errorf("transform produced no pixels")
	}
	return out, nil
}
