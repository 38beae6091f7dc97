package pdftext

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/mindforge/mindmap-api/logger"
)

// ExtractionError reports that no strategy produced text, naming everything
// that was attempted.
type ExtractionError struct {
	Strategies []string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("could not extract text from PDF (tried: %s)", strings.Join(e.Strategies, ", "))
}

type strategy struct {
	name    string
	extract func(path string) (string, error)
}

// Extractor pulls raw text out of a PDF. Strategies are an ordered list fixed
// at construction: a layout-aware row reader first (better for multi-column
// documents), then a plain page-by-page reader.
type Extractor struct {
	strategies []strategy
	log        *logger.Logger
}

func NewExtractor(log *logger.Logger) *Extractor {
	return &Extractor{
		strategies: []strategy{
			{name: "layout", extract: extractByRows},
			{name: "plaintext", extract: extractPlainText},
		},
		log: log.With("service", "pdftext"),
	}
}

// Extract returns the first non-empty trimmed text any strategy yields. When
// every strategy fails or comes back empty it returns an *ExtractionError.
func (e *Extractor) Extract(path string) (string, error) {
	tried := make([]string, 0, len(e.strategies))
	for _, s := range e.strategies {
		tried = append(tried, s.name)
		text, err := s.extract(path)
		if err != nil {
			e.log.Warn("extraction strategy failed", "strategy", s.name, "path", path, "error", err)
			continue
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return trimmed, nil
		}
	}
	return "", &ExtractionError{Strategies: tried}
}

// extractByRows walks each page's text rows in reading order, which keeps
// multi-column layouts coherent.
func extractByRows(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		for _, row := range rows {
			for _, text := range row.Content {
				sb.WriteString(text.S)
				sb.WriteByte(' ')
			}
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func extractPlainText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
