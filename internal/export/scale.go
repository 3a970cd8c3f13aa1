package export

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/pixelate-mcp/internal/pixelate"
)

// ErrInvalidScale is returned for scales below 1.
var ErrInvalidScale = errors.New("invalid export scale")

// MaxOutputBytes bounds the pixel memory of one upscaled export (1GiB, about
// 16384x16384). Larger outputs fail with pixelate.ErrProcess.
const MaxOutputBytes int64 = 1 << 30

// Upscale enlarges img by an integer factor using nearest-neighbour
// replication: output pixel (x, y) is native pixel (x/scale, y/scale). Hard
// block edges are preserved. A scale of 1 returns img itself.
func Upscale(img *image.NRGBA, scale int) (*image.NRGBA, error) {
	if scale < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScale, scale)
	}
	if scale == 1 {
		return img, nil
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if need := outputBytes(w, h, scale); need < 0 || need > MaxOutputBytes {
		return nil, fmt.Errorf("%w: %dx%d at %dx exceeds the %d byte export limit",
			pixelate.ErrProcess, w, h, scale, MaxOutputBytes)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w*scale, h*scale))
	rowBytes := w * scale * 4
	for y := 0; y < h; y++ {
		// Build the first output row for this source row, then copy it down.
		si := img.PixOffset(b.Min.X, b.Min.Y+y)
		di := dst.PixOffset(0, y*scale)
		row := dst.Pix[di : di+rowBytes]
		for x := 0; x < w; x++ {
			px := img.Pix[si+x*4 : si+x*4+4]
			for k := 0; k < scale; k++ {
				copy(row[(x*scale+k)*4:], px)
			}
		}
		for k := 1; k < scale; k++ {
			copy(dst.Pix[di+k*dst.Stride:di+k*dst.Stride+rowBytes], row)
		}
	}
	return dst, nil
}

// outputBytes returns the NRGBA size of a w x h image at scale, or -1 when
// the product does not fit in an int64.
func outputBytes(w, h, scale int) int64 {
	const limit = 1<<63 - 1
	s := int64(scale)
	n := int64(4)
	for _, f := range []int64{int64(w), s, int64(h), s} {
		if f != 0 && n > limit/f {
			return -1
		}
		n *= f
	}
	return n
}
