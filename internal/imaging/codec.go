package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"sync"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// MaxSourceBytes is the largest encoded input accepted by the codec (10MB).
const MaxSourceBytes = 10 << 20

var (
	// ErrDecode is returned when source bytes cannot be interpreted as an image.
	ErrDecode = errors.New("decode failure")
	// ErrEncode is returned when a result buffer cannot be serialized.
	ErrEncode = errors.New("encode failure")
	// ErrTooLarge is returned when the encoded source exceeds MaxSourceBytes.
	ErrTooLarge = errors.New("image exceeds 10MB limit")
)

// Codec is the decode/encode capability pair the pipeline depends on.
//
// Decode always returns a freshly allocated *image.NRGBA whose bounds start at
// the origin; the caller owns it. Encode produces a lossless representation.
type Codec interface {
	Decode(data []byte) (*image.NRGBA, error)
	Encode(img image.Image) ([]byte, error)
}

// PNGCodec decodes any registered input format (PNG, JPEG, GIF, BMP, TIFF,
// WebP) and encodes PNG.
type PNGCodec struct {
	encode imgio.Encoder
}

// NewPNGCodec returns a codec that encodes with default PNG compression and a
// pooled encoder buffer.
func NewPNGCodec() *PNGCodec {
	enc := png.Encoder{
		CompressionLevel: png.DefaultCompression,
		BufferPool:       pngPool,
	}
	return &PNGCodec{encode: enc.Encode}
}

// NewCodecWithEncoder returns a codec using a caller-supplied encoder, e.g.
// imgio.PNGEncoder().
func NewCodecWithEncoder(enc imgio.Encoder) *PNGCodec {
	return &PNGCodec{encode: enc}
}

// Decode decodes data into an NRGBA buffer, applying EXIF orientation when
// present.
func (c *PNGCodec) Decode(data []byte) (*image.NRGBA, error) {
	if len(data) > MaxSourceBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %v", ErrDecode, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrDecode)
	}
	return imaging.Clone(img), nil
}

// DecodeReader reads at most MaxSourceBytes+1 bytes from r and decodes them.
func (c *PNGCodec) DecodeReader(r io.Reader) (*image.NRGBA, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read image: %v", ErrDecode, err)
	}
	return c.Decode(data)
}

// Encode serializes img as PNG.
func (c *PNGCodec) Encode(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrEncode)
	}
	var buf bytes.Buffer
	if err := c.encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: failed to encode image: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
