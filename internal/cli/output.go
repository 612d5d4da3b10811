package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-text-search/internal/domain"
)

var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	idColor      = color.New(color.FgCyan)
	matchColor   = color.New(color.FgYellow, color.Bold)
)

func success(w io.Writer, format string, args ...interface{}) {
	successColor.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

func warning(w io.Writer, format string, args ...interface{}) {
	warnColor.Fprintf(w, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// previewLen bounds the text shown per image in tables.
const previewLen = 60

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewLen {
		return text
	}
	return string(r[:previewLen-1]) + "…"
}

// highlight colors every occurrence of needle in text. needle must already be
// lower-case; text is the stored lower-case transcript.
func highlight(text, needle string) string {
	if needle == "" || color.NoColor {
		return text
	}
	var b strings.Builder
	for {
		i := strings.Index(text, needle)
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:i])
		b.WriteString(matchColor.Sprint(text[i : i+len(needle)]))
		text = text[i+len(needle):]
	}
}

func writeTable(w io.Writer, images []domain.ProcessedImage) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTEXT")
	for _, img := range images {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", img.ID, img.Name, preview(img.Text))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// writeImages renders images in format (table, json or yaml). Content is
// never printed.
func writeImages(w io.Writer, format string, images []domain.ProcessedImage) error {
	images = domain.StripContent(images)
	switch format {
	case "", "table":
		return writeTable(w, images)
	case "json":
		return writeJSON(w, images)
	case "yaml":
		return writeYAML(w, images)
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}
