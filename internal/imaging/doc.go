// Package imaging provides the color transform library and the image codec
// used by the pixelation pipeline.
//
// # Color Transforms
//
// The per-color functions (Grayscale, Duotone, Posterize, ReducePalette) are
// pure and deterministic: the same inputs always produce the same outputs and
// no state is kept between calls. Preview and export rely on this to produce
// identical colors, and ReducePalette relies on it to be idempotent.
//
// # Codec
//
// The pipeline never decodes or encodes directly. It depends on the Codec
// capability pair, Decode(bytes) -> *image.NRGBA and Encode(image) -> bytes.
// PNGCodec is the default implementation: it accepts PNG, JPEG, GIF, BMP,
// TIFF and WebP input up to MaxSourceBytes and always encodes PNG.
//
// # Pixel Buffers
//
// Decoded images are *image.NRGBA with bounds starting at (0,0): row-major,
// four non-premultiplied 8-bit samples per pixel.
//
// # Thread Safety
//
// SourceCache is safe for concurrent use and hands out shared buffers that
// must be treated as read-only. Clone a cached buffer before mutating it.
//
// # Error Handling
//
// Failures wrap one of the sentinel errors so callers can classify them with
// errors.Is:
//   - ErrDecode: source bytes are not a decodable image
//   - ErrEncode: a result buffer could not be serialized
//   - ErrTooLarge: the source exceeds MaxSourceBytes
package imaging
