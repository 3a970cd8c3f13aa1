package pixelate

import (
	"image"
	"image/color"
)

// SampleBlock reduces the pixels of block to one representative color.
//
// The block is clipped to the image bounds first, so edge blocks smaller than
// the configured pixel size are sampled from their in-bounds part only. An
// empty block yields the zero color.
//
// With SamplingNearest the clipped block's top-left pixel is returned as is.
// Otherwise all four channels are averaged and each mean is rounded half up.
// Sums are kept in uint64, so there is no practical limit on block size.
func SampleBlock(img *image.NRGBA, block image.Rectangle, mode Sampling) color.NRGBA {
	block = block.Intersect(img.Bounds())
	if block.Empty() {
		return color.NRGBA{}
	}

	if mode == SamplingNearest {
		return img.NRGBAAt(block.Min.X, block.Min.Y)
	}

	var sr, sg, sb, sa uint64
	for y := block.Min.Y; y < block.Max.Y; y++ {
		i := img.PixOffset(block.Min.X, y)
		for x := block.Min.X; x < block.Max.X; x++ {
			sr += uint64(img.Pix[i+0])
			sg += uint64(img.Pix[i+1])
			sb += uint64(img.Pix[i+2])
			sa += uint64(img.Pix[i+3])
			i += 4
		}
	}

	n := uint64(block.Dx()) * uint64(block.Dy())
	return color.NRGBA{
		R: roundedMean(sr, n),
		G: roundedMean(sg, n),
		B: roundedMean(sb, n),
		A: roundedMean(sa, n),
	}
}

// roundedMean returns sum/n rounded half up, in integer arithmetic.
func roundedMean(sum, n uint64) uint8 {
	return uint8((2*sum + n) / (2 * n))
}

// fillBlock writes c to every pixel of block. block must lie within img.
func fillBlock(img *image.NRGBA, block image.Rectangle, c color.NRGBA) {
	for y := block.Min.Y; y < block.Max.Y; y++ {
		i := img.PixOffset(block.Min.X, y)
		for x := block.Min.X; x < block.Max.X; x++ {
			img.Pix[i+0] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = c.A
			i += 4
		}
	}
}
