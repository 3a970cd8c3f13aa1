package pixelate

import (
	"fmt"
	"image"

	"github.com/ironsheep/pixelate-mcp/internal/imaging"
)

// Pixelate returns a pixelated copy of src. src is never modified, so a
// pristine buffer can be transformed repeatedly with different settings.
func Pixelate(src *image.NRGBA, s Settings) (*image.NRGBA, error) {
	if err := checkBuffer(src); err != nil {
		return nil, err
	}
	dst := &image.NRGBA{
		Pix:    append([]uint8(nil), src.Pix...),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	if err := PixelateInPlace(dst, s); err != nil {
		return nil, err
	}
	return dst, nil
}

// PixelateInPlace pixelates img, overwriting its pixels.
//
// Blocks are visited in row-major order in steps of s.PixelSize. Each block is
// sampled, passed through the color effect (alpha is left alone) and then
// through palette reduction, which always runs regardless of the effect. The
// resulting color fills the block's in-bounds part. The grid, if enabled, is
// drawn last and cannot be undone on the same buffer.
func PixelateInPlace(img *image.NRGBA, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := checkBuffer(img); err != nil {
		return err
	}
	effect, err := s.colorTransform()
	if err != nil {
		return err
	}

	b := img.Bounds()
	size := blockSize(s.PixelSize, b)

	switch s.Shape {
	case ShapeSquare:
	case ShapeCircle, ShapeHex, ShapeIsometric:
		// Not rendered yet; these shapes are drawn as squares.
	}

	for y := b.Min.Y; y < b.Max.Y; y += size {
		for x := b.Min.X; x < b.Max.X; x += size {
			block := image.Rect(x, y, x+size, y+size).Intersect(b)

			c := SampleBlock(img, block, s.Sampling)
			c.R, c.G, c.B = effect(c.R, c.G, c.B)
			c.R, c.G, c.B = imaging.ReducePalette(c.R, c.G, c.B, s.PaletteSize)

			fillBlock(img, block, c)
		}
	}

	if s.ShowGrid {
		DrawGrid(img, size)
	}
	return nil
}

// blockSize caps the block edge at the larger image dimension, which renders
// identically and keeps x+size from overflowing.
func blockSize(pixelSize int, b image.Rectangle) int {
	limit := max(b.Dx(), b.Dy())
	if pixelSize > limit {
		return limit
	}
	return pixelSize
}

func checkBuffer(img *image.NRGBA) error {
	if img == nil {
		return fmt.Errorf("%w: nil pixel buffer", ErrProcess)
	}
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("%w: empty pixel buffer", ErrProcess)
	}
	if need := img.PixOffset(b.Max.X-1, b.Max.Y-1) + 4; len(img.Pix) < need {
		return fmt.Errorf("%w: pixel buffer holds %d bytes, need %d", ErrProcess, len(img.Pix), need)
	}
	return nil
}
