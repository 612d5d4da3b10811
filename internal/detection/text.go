package detection

import (
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// MaxAnalysisSize bounds the longest side analysed; larger images are downscaled.
const MaxAnalysisSize = 800

// edgeThreshold is the Sobel magnitude above which a pixel counts as an edge.
const edgeThreshold = 64

// DefaultMinConfidence is the confidence HasText requires of a region.
const DefaultMinConfidence = 0.3

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion represents a detected text region
type TextRegion struct {
	Bounds     Bounds  `json:"bounds"`
	Confidence float64 `json:"confidence"`
	Area       int     `json:"area"`
}

// TextRegionsResult contains detected text regions
type TextRegionsResult struct {
	Regions []TextRegion `json:"regions"`
	Count   int          `json:"count"`
}

// HasText reports whether img has at least one text-like region at
// DefaultMinConfidence.
func HasText(img image.Image) bool {
	return DetectTextRegions(img, DefaultMinConfidence).Count > 0
}

// DetectTextRegions finds regions likely to contain text.
// This is a heuristic-based approach that looks for areas with high edge density
// and appropriate aspect ratios typical of text
func DetectTextRegions(img image.Image, minConfidence float64) *TextRegionsResult {
	src := img.Bounds()
	if src.Empty() {
		return &TextRegionsResult{Regions: []TextRegion{}}
	}

	scale := 1.0
	if src.Dx() > MaxAnalysisSize || src.Dy() > MaxAnalysisSize {
		img = imaging.Fit(img, MaxAnalysisSize, MaxAnalysisSize, imaging.Box)
		scale = float64(src.Dx()) / float64(img.Bounds().Dx())
	}

	edges := detectEdges(img)
	height := len(edges)
	width := len(edges[0])
	counts := integral(edges)

	windowSizes := []struct{ w, h int }{
		{100, 30}, // Small text
		{150, 40}, // Medium text
		{200, 50}, // Large text
		{80, 25},  // Very small text
	}

	candidates := make([]TextRegion, 0)

	for _, ws := range windowSizes {
		stepX := ws.w / 2
		stepY := ws.h / 2

		for y := 0; y <= height-ws.h; y += stepY {
			for x := 0; x <= width-ws.w; x += stepX {
				edgeCount := windowSum(counts, x, y, ws.w, ws.h)
				area := ws.w * ws.h
				density := float64(edgeCount) / float64(area)

				// Text typically has medium edge density (not too sparse, not too dense)
				if density < 0.05 || density > 0.4 {
					continue
				}

				horizontalScore := calculateHorizontalScore(edges, x, y, ws.w, ws.h)
				confidence := horizontalScore * (1.0 - math.Abs(density-0.2)/0.2)
				if confidence < minConfidence {
					continue
				}

				b := scaleBounds(Bounds{X1: x, Y1: y, X2: x + ws.w, Y2: y + ws.h}, scale, src.Min)
				candidates = append(candidates, TextRegion{
					Bounds:     b,
					Confidence: math.Round(confidence*1000) / 1000,
					Area:       (b.X2 - b.X1) * (b.Y2 - b.Y1),
				})
			}
		}
	}

	merged := mergeOverlappingRegions(candidates)

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})

	return &TextRegionsResult{
		Regions: merged,
		Count:   len(merged),
	}
}

// detectEdges thresholds a Sobel gradient map into an edge mask indexed [y][x].
// The Sobel output is gray stored as RGBA, so the red channel is the magnitude.
func detectEdges(img image.Image) [][]bool {
	sobel := effect.Sobel(img)
	b := sobel.Bounds()
	edges := make([][]bool, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		edges[y] = make([]bool, b.Dx())
		for x := 0; x < b.Dx(); x++ {
			edges[y][x] = sobel.RGBAAt(b.Min.X+x, b.Min.Y+y).R > edgeThreshold
		}
	}
	return edges
}

// integral builds a summed-area table of edges with a zero first row and column.
func integral(edges [][]bool) [][]int {
	h := len(edges)
	w := len(edges[0])
	sum := make([][]int, h+1)
	sum[0] = make([]int, w+1)
	for y := 0; y < h; y++ {
		sum[y+1] = make([]int, w+1)
		for x := 0; x < w; x++ {
			v := 0
			if edges[y][x] {
				v = 1
			}
			sum[y+1][x+1] = v + sum[y][x+1] + sum[y+1][x] - sum[y][x]
		}
	}
	return sum
}

func windowSum(sum [][]int, x, y, w, h int) int {
	return sum[y+h][x+w] - sum[y][x+w] - sum[y+h][x] + sum[y][x]
}

func scaleBounds(b Bounds, scale float64, origin image.Point) Bounds {
	return Bounds{
		X1: int(float64(b.X1)*scale) + origin.X,
		Y1: int(float64(b.Y1)*scale) + origin.Y,
		X2: int(float64(b.X2)*scale) + origin.X,
		Y2: int(float64(b.Y2)*scale) + origin.Y,
	}
}

// calculateHorizontalScore calculates how "horizontal" the edge distribution is
func calculateHorizontalScore(edges [][]bool, x, y, w, h int) float64 {
	horizontalRuns := 0
	verticalRuns := 0

	// Count horizontal edge runs
	for row := y; row < y+h; row++ {
		inRun := false
		for col := x; col < x+w; col++ {
			if edges[row][col] {
				if !inRun {
					horizontalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	// Count vertical edge runs
	for col := x; col < x+w; col++ {
		inRun := false
		for row := y; row < y+h; row++ {
			if edges[row][col] {
				if !inRun {
					verticalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	if horizontalRuns+verticalRuns == 0 {
		return 0
	}
	return float64(horizontalRuns) / float64(horizontalRuns+verticalRuns)
}

// mergeOverlappingRegions combines overlapping text regions
func mergeOverlappingRegions(regions []TextRegion) []TextRegion {
	merged := make([]TextRegion, 0, len(regions))

	for _, r := range regions {
		foundMerge := false
		for i := range merged {
			if regionsOverlap(r.Bounds, merged[i].Bounds) {
				merged[i].Bounds = mergeBounds(r.Bounds, merged[i].Bounds)
				merged[i].Confidence = math.Max(r.Confidence, merged[i].Confidence)
				merged[i].Area = (merged[i].Bounds.X2 - merged[i].Bounds.X1) *
					(merged[i].Bounds.Y2 - merged[i].Bounds.Y1)
				foundMerge = true
				break
			}
		}
		if !foundMerge {
			merged = append(merged, r)
		}
	}

	return merged
}

// regionsOverlap checks if two bounds overlap
func regionsOverlap(a, b Bounds) bool {
	return a.X1 < b.X2 && a.X2 > b.X1 && a.Y1 < b.Y2 && a.Y2 > b.Y1
}

// mergeBounds combines two bounds into their union
func mergeBounds(a, b Bounds) Bounds {
	return Bounds{
		X1: min(a.X1, b.X1),
		Y1: min(a.Y1, b.Y1),
		X2: max(a.X2, b.X2),
		Y2: max(a.Y2, b.Y2),
	}
}
