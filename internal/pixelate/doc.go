// Package pixelate implements the block sampler and the pixelation engine.
//
// The engine maps (pixel buffer, Settings) to a pixel buffer of the same size
// in which every pixel belongs to exactly one block, and every pixel of a
// block carries the same color. Block membership is floor(coord / PixelSize)
// along each axis, measured from the image origin.
//
// Pixelate is a pure function of its inputs and never modifies the source
// buffer. PixelateInPlace is available when the caller owns a scratch buffer.
// Neither yields or can be aborted part way; callers that need cancellation
// discard stale results instead (see package preview).
//
// Only square blocks are rendered. Circle, hex and isometric shapes pass
// validation and are drawn as squares; Shape.Implemented reports which.
package pixelate
