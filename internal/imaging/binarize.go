package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// AdaptiveBinarize thresholds every pixel against the Gaussian-weighted mean
// of its neighbourhood, so uneven lighting and paper tint do not wash out
// text the way a single global threshold does.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - blockSize: Side of the neighbourhood window in pixels. Even values are
//     rounded up to the next odd size; values below 3 use 3.
//   - offset: Subtracted from the local mean (0-255 scale) before comparing.
//     Positive values keep faint background noise white.
//
// Returns a grayscale image in which text is black (0) and background is
// white (255).
//
// # Algorithm
//
//  1. Lightness plane: each pixel's CIE L* lightness, scaled to 0-255.
//     Fully transparent pixels count as white.
//  2. Local mean: separable Gaussian blur with sigma derived from blockSize
//     (sigma = 0.3*((blockSize-1)/2 - 1) + 0.8). Border pixels use clamped
//     (replicated) edge values.
//  3. Threshold: pixel is white when lightness > mean - offset.
func AdaptiveBinarize(img image.Image, blockSize int, offset float64) *image.Gray {
	if blockSize < 3 {
		blockSize = 3
	}
	if blockSize%2 == 0 {
		blockSize++
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	plane := lightnessPlane(img)
	mean := gaussianBlur(plane, width, height, gaussianKernel(blockSize))

	out := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(0)
			if plane[y][x] > mean[y][x]-offset {
				v = 255
			}
			out.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return out
}

// lightnessPlane returns the CIE L* of every pixel on a 0-255 scale.
func lightnessPlane(img image.Image) [][]float64 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	plane := make([][]float64, height)
	for y := 0; y < height; y++ {
		plane[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			c, ok := colorful.MakeColor(img.At(x+bounds.Min.X, y+bounds.Min.Y))
			if !ok {
				plane[y][x] = 255
				continue
			}
			l, _, _ := c.Lab()
			plane[y][x] = math.Min(math.Max(l, 0), 1) * 255
		}
	}
	return plane
}

// gaussianKernel returns a normalized 1-D Gaussian kernel of the given odd
// size.
func gaussianKernel(size int) []float64 {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	half := size / 2
	kernel := make([]float64, size)
	var sum float64
	for i := -half; i <= half; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+half] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// gaussianBlur applies kernel horizontally then vertically.
func gaussianBlur(plane [][]float64, width, height int, kernel []float64) [][]float64 {
	half := len(kernel) / 2

	horiz := make([][]float64, height)
	for y := 0; y < height; y++ {
		horiz[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var sum float64
			for k := -half; k <= half; k++ {
				sum += plane[y][clamp(x+k, 0, width-1)] * kernel[k+half]
			}
			horiz[y][x] = sum
		}
	}

	result := make([][]float64, height)
	for y := 0; y < height; y++ {
		result[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var sum float64
			for k := -half; k <= half; k++ {
				sum += horiz[clamp(y+k, 0, height-1)][x] * kernel[k+half]
			}
			result[y][x] = sum
		}
	}
	return result
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
