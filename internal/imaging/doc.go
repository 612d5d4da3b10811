// Package imaging handles image payloads for the ingestion pipeline and the
// content-serving surfaces.
//
// # Payloads
//
// DecodePayload validates and decodes raw upload bytes. Supported formats are
// PNG, JPEG, GIF, BMP, TIFF and WebP. JPEG EXIF orientation is applied on
// decode so OCR sees the image upright. A payload that cannot be decoded
// yields an error wrapping ErrUndecodable.
//
// # Data URIs
//
// Stored records carry their payload as a self-contained data URI
// ("data:image/png;base64,..."). DataURI builds one from the original bytes,
// unchanged; ParseDataURI reverses it. No resizing or re-encoding is applied
// to stored content.
//
// # OCR Preprocessing
//
// Preprocess produces a grayscale, contrast-stretched copy of an image for
// recognition only. Images whose background is dark (light text on a dark
// surface) are inverted first, since Tesseract expects dark text on a light
// background. Background lightness is measured in HSL over the image border.
//
// # Thumbnails
//
// Thumbnail renders a bounded PNG preview of a payload for the HTTP API.
// Stored content is never resized.
//
// # Thread Safety
//
// ContentCache is safe for concurrent use. All other functions are stateless.
package imaging
