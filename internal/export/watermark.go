package export

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/pixelate-mcp/internal/pixelate"
)

// WatermarkText is stamped into every exported image.
const WatermarkText = "Made with pixelate"

// WatermarkColor is black at roughly 15% opacity.
var WatermarkColor = color.NRGBA{0, 0, 0, 38}

// Watermark draws translucent text into the bottom-right corner of an image.
type Watermark struct {
	Text  string
	Color color.NRGBA
	font  *opentype.Font
}

// NewWatermark returns a watermark that renders text in Go Regular.
func NewWatermark(text string) (*Watermark, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse watermark font: %w", err)
	}
	return &Watermark{Text: text, Color: WatermarkColor, font: f}, nil
}

// Layout returns the font size and edge padding used for an image of the
// given width: size = max(12, width/50), padding = max(8, size/2).
func Layout(width int) (fontSize, padding int) {
	fontSize = max(12, width/50)
	padding = max(8, fontSize/2)
	return fontSize, padding
}

// Stamp draws the watermark directly into img, right and bottom aligned with
// Layout's padding. Text that does not fit is clipped at the left edge.
func (w *Watermark) Stamp(img *image.NRGBA) error {
	b := img.Bounds()
	fontSize, padding := Layout(b.Dx())

	face, err := opentype.NewFace(w.font, &opentype.FaceOptions{
		Size:    float64(fontSize),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create watermark face: %v", pixelate.ErrProcess, err)
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(w.Color),
		Face: face,
	}
	advance := d.MeasureString(w.Text)
	descent := face.Metrics().Descent

	// The bottom of the text's descent sits padding pixels above the edge.
	d.Dot = fixed.Point26_6{
		X: fixed.I(b.Max.X-padding) - advance,
		Y: fixed.I(b.Max.Y-padding) - descent,
	}
	d.DrawString(w.Text)
	return nil
}
