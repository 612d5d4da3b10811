// Package ocr provides Optical Character Recognition (OCR) functionality using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2) behind two small
// interfaces so the ingestion pipeline can treat an engine as a scoped resource:
//
//   - Acquirer: starts an engine (expensive: loads language data)
//   - Engine: recognizes text from encoded image bytes, then must be Closed
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr
//   - macOS: brew install tesseract
//   - Windows: Download from https://github.com/UB-Mannheim/tesseract/wiki
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// A custom tessdata directory can be supplied with TesseractConfig.TessdataPrefix.
//
// # Supported Languages
//
// The default language is English ("eng"). Other languages can be specified
// using their Tesseract language codes:
//   - "eng" - English
//   - "deu" - German
//   - "fra" - French
//   - "spa" - Spanish
//   - "chi_sim" - Chinese (Simplified)
//   - See Tesseract documentation for full list
//
// # Engine Lifetime
//
// Acquire performs a warm-up recognition on a blank image so that missing
// language data or a broken installation is reported at acquisition time
// rather than on the first real file. The warmed client is then reused for
// every Recognize call until Close.
//
// An Engine is not safe for concurrent use. Acquire one engine per goroutine.
//
// # Text Normalization
//
// Normalize converts a raw transcript into the single-line, lower-case form
// stored on every record. Word boxes and confidence scores are not kept.
package ocr
