package pixelate

import (
	"errors"
	"fmt"

	"github.com/ironsheep/pixelate-mcp/internal/imaging"
)

// Shape is the nominal block shape.
type Shape string

const (
	ShapeSquare    Shape = "square"
	ShapeCircle    Shape = "circle"
	ShapeHex       Shape = "hex"
	ShapeIsometric Shape = "isometric"
)

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	switch s {
	case ShapeSquare, ShapeCircle, ShapeHex, ShapeIsometric:
		return true
	}
	return false
}

// Implemented reports whether the engine renders s as itself. Shapes that are
// accepted but not implemented are rendered as squares.
func (s Shape) Implemented() bool {
	return s == ShapeSquare
}

// Sampling selects how a block is reduced to one representative color.
type Sampling string

const (
	// SamplingAveraged averages every in-bounds pixel of the block.
	SamplingAveraged Sampling = "averaged"
	// SamplingNearest takes the block's top-left pixel verbatim.
	SamplingNearest Sampling = "nearest"
)

// ColorEffect is applied to each block's sampled color.
type ColorEffect string

const (
	EffectNormal    ColorEffect = "normal"
	EffectGrayscale ColorEffect = "grayscale"
	EffectDuotone   ColorEffect = "duotone"
	EffectPosterize ColorEffect = "posterize"
)

// Limits enforced by Validate.
const (
	MinPaletteSize     = 2
	MaxPaletteSize     = imaging.MaxPaletteSize
	MinPosterizeLevels = 2
	MaxPosterizeLevels = 8
)

var (
	// ErrInvalidSettings is wrapped by every Validate failure.
	ErrInvalidSettings = errors.New("invalid pixel settings")
	// ErrProcess is returned when the pixel buffer cannot be used.
	ErrProcess = errors.New("processing failure")
)

// Settings is one configuration of the pipeline. It is a plain value: the
// engine never mutates it and infers nothing that is not set explicitly.
type Settings struct {
	// PixelSize is the edge length of a square sampling block in source pixels.
	PixelSize int `json:"pixel_size"`

	Shape       Shape       `json:"shape"`
	Sampling    Sampling    `json:"sampling"`
	ColorEffect ColorEffect `json:"color_effect"`

	// PaletteSize is the approximate color budget applied after the effect.
	// 256 disables palette reduction.
	PaletteSize int `json:"palette_size"`

	ShowGrid bool `json:"show_grid"`

	// DuotoneColor1 and DuotoneColor2 are "#RRGGBB" gradient endpoints for
	// dark and light input. Required when ColorEffect is duotone.
	DuotoneColor1 string `json:"duotone_color1,omitempty"`
	DuotoneColor2 string `json:"duotone_color2,omitempty"`

	// PosterizeLevels is required when ColorEffect is posterize.
	PosterizeLevels int `json:"posterize_levels,omitempty"`
}

// DefaultSettings returns the settings a fresh session starts with.
func DefaultSettings() Settings {
	return Settings{
		PixelSize:   8,
		Shape:       ShapeSquare,
		Sampling:    SamplingAveraged,
		ColorEffect: EffectNormal,
		PaletteSize: MaxPaletteSize,
	}
}

// Validate checks every field against its allowed range.
func (s Settings) Validate() error {
	if s.PixelSize < 1 {
		return fmt.Errorf("%w: pixel_size must be >= 1, got %d", ErrInvalidSettings, s.PixelSize)
	}
	if !s.Shape.Valid() {
		return fmt.Errorf("%w: unknown shape %q", ErrInvalidSettings, s.Shape)
	}
	switch s.Sampling {
	case SamplingAveraged, SamplingNearest:
	default:
		return fmt.Errorf("%w: unknown sampling %q", ErrInvalidSettings, s.Sampling)
	}
	if s.PaletteSize < MinPaletteSize || s.PaletteSize > MaxPaletteSize {
		return fmt.Errorf("%w: palette_size must be between %d and %d, got %d",
			ErrInvalidSettings, MinPaletteSize, MaxPaletteSize, s.PaletteSize)
	}
	_, err := s.colorTransform()
	return err
}

// colorFunc transforms one block color.
type colorFunc func(r, g, b uint8) (uint8, uint8, uint8)

// colorTransform resolves the color effect into a function, parsing the
// duotone endpoints once per call instead of once per block.
func (s Settings) colorTransform() (colorFunc, error) {
	switch s.ColorEffect {
	case EffectNormal:
		return func(r, g, b uint8) (uint8, uint8, uint8) { return r, g, b }, nil
	case EffectGrayscale:
		return imaging.Grayscale, nil
	case EffectDuotone:
		c1, err := imaging.ParseHexColor(s.DuotoneColor1)
		if err != nil {
			return nil, fmt.Errorf("%w: duotone_color1: %v", ErrInvalidSettings, err)
		}
		c2, err := imaging.ParseHexColor(s.DuotoneColor2)
		if err != nil {
			return nil, fmt.Errorf("%w: duotone_color2: %v", ErrInvalidSettings, err)
		}
		return func(r, g, b uint8) (uint8, uint8, uint8) {
			return imaging.Duotone(r, g, b, c1, c2)
		}, nil
	case EffectPosterize:
		levels := s.PosterizeLevels
		if levels < MinPosterizeLevels || levels > MaxPosterizeLevels {
			return nil, fmt.Errorf("%w: posterize_levels must be between %d and %d, got %d",
				ErrInvalidSettings, MinPosterizeLevels, MaxPosterizeLevels, levels)
		}
		return func(r, g, b uint8) (uint8, uint8, uint8) {
			return imaging.Posterize(r, g, b, levels)
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown color_effect %q", ErrInvalidSettings, s.ColorEffect)
	}
}
