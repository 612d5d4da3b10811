// Package detection decides whether an image is likely to contain text
// before it is sent to OCR.
//
// # Algorithm Overview
//
// DetectTextRegions follows a short pipeline:
//
//  1. Downscale: images larger than MaxAnalysisSize on either side are
//     fitted into that box; the returned bounds are mapped back to the
//     original coordinates
//  2. Edge Detection: a Sobel gradient map (bild) is thresholded into a
//     boolean edge mask
//  3. Sliding Windows: windows sized for small to large text are scanned; a
//     window is a candidate when its edge density is in the text band
//     (5%-40%) and its edge runs are mostly horizontal
//  4. Merging: overlapping candidates are merged and sorted by confidence
//
// HasText is the boolean gate used by the ingestion pipeline: photographs
// with no text-like structure can skip recognition entirely and are stored
// with an empty transcript.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
package detection
