// Package domain holds the records shared by ingestion, search and storage.
package domain

// ProcessedImage is one OCR'd image in a working collection.
//
// Records are created only by the ingestion pipeline and are never mutated
// afterwards. Text is always the normalized (single-line, lower-case)
// transcript. Content is a self-contained data URI so a record survives a
// persistence round-trip without the original file.
type ProcessedImage struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Text    string `json:"text" yaml:"text"`
	Content string `json:"content,omitempty" yaml:"-"`
}

// WithoutContent returns a copy with the payload stripped, for listings.
func (p ProcessedImage) WithoutContent() ProcessedImage {
	p.Content = ""
	return p
}

// RawFile is an uploaded file before ingestion.
type RawFile struct {
	Name string
	Data []byte
}

// StripContent applies WithoutContent to every record, preserving order.
func StripContent(images []ProcessedImage) []ProcessedImage {
	out := make([]ProcessedImage, len(images))
	for i, img := range images {
		out[i] = img.WithoutContent()
	}
	return out
}
