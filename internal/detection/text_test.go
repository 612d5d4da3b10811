package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/image-text-search/internal/testutil"
)

// createTextPatternImage creates an image with text-like edge patterns
func createTextPatternImage(width, height int) *image.RGBA {
	img := testutil.Solid(width, height, color.White)

	// Create text-like patterns (horizontal lines with gaps)
	for y := 20; y < 80; y += 10 {
		for x := 20; x < width-20; x++ {
			// Simulate letter shapes (vertical strokes)
			if x%15 < 5 {
				img.Set(x, y, color.Black)
				img.Set(x, y+1, color.Black)
				img.Set(x, y+5, color.Black)
			}
		}
	}

	return img
}

func TestDetectTextRegions(t *testing.T) {
	img := createTextPatternImage(200, 150)

	result := DetectTextRegions(img, 0.3)
	if result.Count != len(result.Regions) {
		t.Errorf("Count (%d) doesn't match len(Regions) (%d)", result.Count, len(result.Regions))
	}
	t.Logf("Detected %d text regions", result.Count)
}

func TestDetectTextRegions_MinConfidence(t *testing.T) {
	img := createTextPatternImage(200, 150)

	result1 := DetectTextRegions(img, 0.1)
	result2 := DetectTextRegions(img, 0.8)

	// Higher threshold should give fewer or equal results
	if result2.Count > result1.Count {
		t.Errorf("Higher minConfidence should give fewer results: low=%d, high=%d",
			result1.Count, result2.Count)
	}
}

func TestDetectTextRegions_EmptyImage(t *testing.T) {
	img := testutil.Solid(200, 150, color.White)

	result := DetectTextRegions(img, 0.3)

	// Empty image should have no text regions (no edges)
	if result.Count != 0 {
		t.Errorf("Expected 0 text regions in empty image, got %d", result.Count)
	}
}

func TestDetectTextRegions_ZeroSizedImage(t *testing.T) {
	result := DetectTextRegions(image.NewRGBA(image.Rect(0, 0, 0, 0)), 0.3)
	if result.Count != 0 || result.Regions == nil {
		t.Errorf("zero-sized image: got %+v, want empty non-nil regions", result)
	}
}

func TestDetectTextRegions_SmallImage(t *testing.T) {
	// Very small image (smaller than window sizes)
	img := testutil.Solid(50, 20, color.White)

	result := DetectTextRegions(img, 0.3)
	if result.Count != 0 {
		t.Errorf("Expected 0 regions for image smaller than every window, got %d", result.Count)
	}
}

func TestDetectTextRegions_LargeImageDownscaled(t *testing.T) {
	img := testutil.Solid(2400, 1200, color.White)
	for y := 600; y < 660; y += 12 {
		for x := 200; x < 2200; x++ {
			if x%30 < 10 {
				img.Set(x, y, color.Black)
				img.Set(x, y+1, color.Black)
				img.Set(x, y+2, color.Black)
			}
		}
	}

	result := DetectTextRegions(img, 0.1)
	for _, r := range result.Regions {
		if r.Bounds.X2 > 2400 || r.Bounds.Y2 > 1200 {
			t.Errorf("region %+v lies outside the original image", r.Bounds)
		}
	}
}

func TestDetectTextRegions_SortedByConfidence(t *testing.T) {
	img := createTextPatternImage(300, 200)

	result := DetectTextRegions(img, 0.2)

	for i := 1; i < result.Count; i++ {
		if result.Regions[i-1].Confidence < result.Regions[i].Confidence {
			t.Error("Text regions should be sorted by confidence (highest first)")
			break
		}
	}
}

func TestTextRegion_Area(t *testing.T) {
	img := createTextPatternImage(200, 150)

	result := DetectTextRegions(img, 0.2)

	for _, region := range result.Regions {
		expectedArea := (region.Bounds.X2 - region.Bounds.X1) * (region.Bounds.Y2 - region.Bounds.Y1)
		if region.Area != expectedArea {
			t.Errorf("Area mismatch: stored %d, calculated %d", region.Area, expectedArea)
		}
	}
}

func TestHasText_Blank(t *testing.T) {
	if HasText(testutil.Solid(400, 200, color.White)) {
		t.Error("HasText should be false for a blank image")
	}
}

func TestHasText_RenderedText(t *testing.T) {
	img := testutil.TextImage([]string{"THE QUICK BROWN FOX", "JUMPS OVER THE LAZY DOG"}, 3)
	t.Logf("HasText on rendered text: %v", HasText(img))
}

func TestDetectEdges_Boundary(t *testing.T) {
	img := testutil.Solid(40, 40, color.White)
	for y := 0; y < 40; y++ {
		for x := 20; x < 40; x++ {
			img.Set(x, y, color.Black)
		}
	}

	edges := detectEdges(img)
	if len(edges) != 40 || len(edges[0]) != 40 {
		t.Fatalf("edge mask is %dx%d, want 40x40", len(edges[0]), len(edges))
	}
	if !edges[20][19] && !edges[20][20] {
		t.Error("expected an edge at the black/white boundary")
	}
	if edges[20][5] || edges[20][35] {
		t.Error("flat areas should not be edges")
	}
}

func TestDetectEdges_Blank(t *testing.T) {
	for y, row := range detectEdges(testutil.Solid(30, 20, color.White)) {
		for x, e := range row {
			if e {
				t.Fatalf("unexpected edge at (%d,%d) in a blank image", x, y)
			}
		}
	}
}

func TestIntegral(t *testing.T) {
	edges := [][]bool{
		{true, false, true},
		{false, true, false},
	}
	sum := integral(edges)

	if got := windowSum(sum, 0, 0, 3, 2); got != 3 {
		t.Errorf("full window sum = %d, want 3", got)
	}
	if got := windowSum(sum, 1, 0, 2, 2); got != 2 {
		t.Errorf("right window sum = %d, want 2", got)
	}
	if got := windowSum(sum, 0, 1, 1, 1); got != 0 {
		t.Errorf("single cell sum = %d, want 0", got)
	}
}

func TestCalculateHorizontalScore(t *testing.T) {
	edges := make([][]bool, 50)
	for y := 0; y < 50; y++ {
		edges[y] = make([]bool, 50)
	}

	for y := 10; y < 40; y += 5 {
		for x := 5; x < 45; x++ {
			edges[y][x] = true
		}
	}

	score := calculateHorizontalScore(edges, 0, 0, 50, 50)
	if score < 0 || score > 1 {
		t.Errorf("Score should be between 0 and 1, got %.2f", score)
	}
}

func TestCalculateHorizontalScore_Empty(t *testing.T) {
	edges := make([][]bool, 50)
	for y := 0; y < 50; y++ {
		edges[y] = make([]bool, 50)
	}

	score := calculateHorizontalScore(edges, 0, 0, 50, 50)

	if score != 0 {
		t.Errorf("Empty edges should have score 0, got %.2f", score)
	}
}

func TestMergeOverlappingRegions(t *testing.T) {
	regions := []TextRegion{
		{Bounds: Bounds{X1: 10, Y1: 10, X2: 50, Y2: 30}, Confidence: 0.8, Area: 800},
		{Bounds: Bounds{X1: 30, Y1: 10, X2: 70, Y2: 30}, Confidence: 0.7, Area: 800}, // overlaps
		{Bounds: Bounds{X1: 100, Y1: 100, X2: 150, Y2: 130}, Confidence: 0.6, Area: 1500},
	}

	merged := mergeOverlappingRegions(regions)

	// Should merge first two, keep third separate
	if len(merged) != 2 {
		t.Fatalf("Expected 2 merged regions, got %d", len(merged))
	}
	if merged[0].Bounds != (Bounds{X1: 10, Y1: 10, X2: 70, Y2: 30}) {
		t.Errorf("unexpected merged bounds %+v", merged[0].Bounds)
	}
	if merged[0].Confidence != 0.8 {
		t.Errorf("merged confidence = %.2f, want 0.8", merged[0].Confidence)
	}
}

func TestMergeOverlappingRegions_Empty(t *testing.T) {
	merged := mergeOverlappingRegions([]TextRegion{})

	if len(merged) != 0 {
		t.Errorf("Expected 0 regions, got %d", len(merged))
	}
}

func TestRegionsOverlap(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Bounds
		expected bool
	}{
		{
			"overlapping",
			Bounds{X1: 0, Y1: 0, X2: 50, Y2: 50},
			Bounds{X1: 25, Y1: 25, X2: 75, Y2: 75},
			true,
		},
		{
			"non-overlapping horizontal",
			Bounds{X1: 0, Y1: 0, X2: 50, Y2: 50},
			Bounds{X1: 60, Y1: 0, X2: 100, Y2: 50},
			false,
		},
		{
			"touching edges (not overlapping)",
			Bounds{X1: 0, Y1: 0, X2: 50, Y2: 50},
			Bounds{X1: 50, Y1: 0, X2: 100, Y2: 50},
			false,
		},
		{
			"contained",
			Bounds{X1: 0, Y1: 0, X2: 100, Y2: 100},
			Bounds{X1: 25, Y1: 25, X2: 75, Y2: 75},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := regionsOverlap(tt.a, tt.b)
			if result != tt.expected {
				t.Errorf("regionsOverlap: got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestScaleBounds(t *testing.T) {
	got := scaleBounds(Bounds{X1: 10, Y1: 20, X2: 30, Y2: 40}, 2, image.Point{X: 5, Y: 5})
	want := Bounds{X1: 25, Y1: 45, X2: 65, Y2: 85}
	if got != want {
		t.Errorf("scaleBounds = %+v, want %+v", got, want)
	}
}
