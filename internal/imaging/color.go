package imaging

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255, where:
//   - 0 represents no intensity (black for all components)
//   - 255 represents full intensity (white for all components)
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
//
// HSL is often more intuitive for color manipulation than RGB:
//   - Hue represents the color type (red, green, blue, etc.)
//   - Saturation represents color intensity (gray to vivid)
//   - Lightness represents brightness (black to white)
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ParseHexColor parses a "#RRGGBB" or "#RGB" string into an RGBColor.
//
// The leading '#' is required. Parsing is case-insensitive. Alpha suffixes are
// rejected because duotone endpoints are opaque colors.
func ParseHexColor(hex string) (RGBColor, error) {
	if len(hex) == 0 {
		return RGBColor{}, fmt.Errorf("empty color string")
	}
	if len(hex) != 4 && len(hex) != 7 {
		return RGBColor{}, fmt.Errorf("invalid hex color length: %q", hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return RGBColor{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return RGBColor{R: r, G: g, B: b}, nil
}

// Hex returns the color as a lowercase "#rrggbb" string.
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBToHSL converts 8-bit RGB values to HSL color space.
//
// Returns HSLColor with:
//   - H: 0-360 (degrees on color wheel)
//   - S: 0-100 (percentage)
//   - L: 0-100 (percentage)
//
// Achromatic inputs (r == g == b) report a hue of 0.
func RGBToHSL(r, g, b uint8) HSLColor {
	h, s, l := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}.Hsl()
	if math.IsNaN(h) || s == 0 {
		h = 0
	}
	return HSLColor{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}

// HSLToRGB converts an HSLColor back to 8-bit RGB. Out-of-range components
// are clamped by the conversion, so the result is always a valid color.
func HSLToRGB(c HSLColor) RGBColor {
	r, g, b := colorful.Hsl(float64(c.H), float64(c.S)/100, float64(c.L)/100).Clamped().RGB255()
	return RGBColor{R: r, G: g, B: b}
}

// ColorInfo describes one color in the notations tool clients use.
type ColorInfo struct {
	RGB RGBColor `json:"rgb"`
	Hex string   `json:"hex"`
	HSL HSLColor `json:"hsl"`
}

// DescribeColor returns c in RGB, hex and HSL form.
func DescribeColor(c RGBColor) ColorInfo {
	return ColorInfo{
		RGB: c,
		Hex: c.Hex(),
		HSL: RGBToHSL(c.R, c.G, c.B),
	}
}
