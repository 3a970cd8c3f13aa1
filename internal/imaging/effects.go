package imaging

import "math"

// Luminance weights (ITU-R BT.601), shared by grayscale and duotone.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// MaxPaletteSize is the palette size at which ReducePalette stops quantizing.
const MaxPaletteSize = 256

func luma(r, g, b uint8) float64 {
	return lumaR*float64(r) + lumaG*float64(g) + lumaB*float64(b)
}

// Grayscale maps a color to its BT.601 luminance on all three channels.
func Grayscale(r, g, b uint8) (uint8, uint8, uint8) {
	l := clampByte(math.Round(luma(r, g, b)))
	return l, l, l
}

// Duotone maps a color onto the gradient between c1 and c2, using the
// normalized luminance of the input as the mix factor. Black maps to c1 and
// white maps to c2.
func Duotone(r, g, b uint8, c1, c2 RGBColor) (uint8, uint8, uint8) {
	t := luma(r, g, b) / 255.0
	return lerp(c1.R, c2.R, t), lerp(c1.G, c2.G, t), lerp(c1.B, c2.B, t)
}

func lerp(a, b uint8, t float64) uint8 {
	return clampByte(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// Posterize snaps each channel to the center of one of levels equal-width
// buckets spanning 0-256.
//
// The bucket is found with floor and the center is then rounded, so the
// output for levels=4 is one of 32, 96, 160 or 224. Levels below 1 leave the
// color unchanged.
func Posterize(r, g, b uint8, levels int) (uint8, uint8, uint8) {
	if levels < 1 {
		return r, g, b
	}
	step := 256.0 / float64(levels)
	return posterizeChannel(r, step), posterizeChannel(g, step), posterizeChannel(b, step)
}

func posterizeChannel(c uint8, step float64) uint8 {
	bucket := math.Floor(float64(c)/step) * step
	return clampByte(math.Round(bucket + step/2))
}

// ReducePalette quantizes each channel onto a lattice whose spacing is chosen
// so that roughly paletteSize colors remain across the three channels.
//
// paletteSize is an approximate total color budget, not an exact count. Sizes
// of MaxPaletteSize or more leave the color unchanged. The mapping is
// idempotent: reducing an already reduced color with the same paletteSize
// returns it unchanged.
func ReducePalette(r, g, b uint8, paletteSize int) (uint8, uint8, uint8) {
	if paletteSize >= MaxPaletteSize || paletteSize < 1 {
		return r, g, b
	}
	step := PaletteStep(paletteSize)
	return snapChannel(r, step), snapChannel(g, step), snapChannel(b, step)
}

// PaletteStep returns the per-channel lattice spacing used by ReducePalette.
func PaletteStep(paletteSize int) float64 {
	return math.Ceil(256.0 / cbrt(float64(paletteSize)))
}

// cbrt is math.Cbrt snapped to the exact root for perfect cubes, so that
// sizes such as 8, 27 and 64 produce whole-number lattices.
func cbrt(v float64) float64 {
	r := math.Cbrt(v)
	if n := math.Round(r); n*n*n == v {
		return n
	}
	return r
}

func snapChannel(c uint8, step float64) uint8 {
	return clampByte(math.Round(float64(c)/step) * step)
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
