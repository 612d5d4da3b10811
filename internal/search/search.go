// Package search filters a working collection by substring match against
// normalized OCR text.
//
// Matching is plain containment of the lower-cased query in each record's
// Text. There is no tokenization, ranking or fuzzy distance, and results keep
// the collection's order. Search never modifies its input, so callers sharing
// a collection across goroutines only need to hand it a stable snapshot.
package search

import (
	"strings"

	"github.com/ironsheep/image-text-search/internal/domain"
)

// Search returns the records whose Text contains query, compared in lower
// case. An empty or whitespace-only query matches nothing. The query is not
// trimmed otherwise, so surrounding spaces and punctuation match literally.
func Search(query string, collection []domain.ProcessedImage) []domain.ProcessedImage {
	results := []domain.ProcessedImage{}
	if strings.TrimSpace(query) == "" {
		return results
	}

	needle := strings.ToLower(query)
	for _, img := range collection {
		if Matches(img, needle) {
			results = append(results, img)
		}
	}
	return results
}

// Matches reports whether img's text contains the already lower-cased needle.
func Matches(img domain.ProcessedImage, needle string) bool {
	return strings.Contains(img.Text, needle)
}
