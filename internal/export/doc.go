// Package export implements the export stage: the pixelation engine is rerun
// at native resolution, the result is upscaled by an integer factor with
// nearest-neighbour replication, a translucent watermark is stamped last, and
// the image is encoded losslessly.
//
// Batch exports repeat the whole sequence per scale from the original source
// bytes and isolate failures per scale.
package export
