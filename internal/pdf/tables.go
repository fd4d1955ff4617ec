package pdf

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Table is a detected tabular region: rows of cell strings.
type Table struct {
	Page int
	Rows [][]string
}

// TableDetector finds tabular regions across all pages of a PDF, in page order.
type TableDetector interface {
	DetectTables(ctx context.Context, path string) ([]Table, error)
}

// DetectTables runs `pdftotext -layout` and treats runs of aligned,
// multi-column lines as tables.
func (t *Tools) DetectTables(ctx context.Context, path string) ([]Table, error) {
	out, errb, err := t.runner.Run(ctx, t.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}
	return ParseLayoutTables(string(out)), nil
}

// columnGap separates cells in layout text.
var columnGap = regexp.MustCompile(`\s{2,}|\t+`)

// minTableRows is the number of consecutive multi-cell lines that make a table.
const minTableRows = 2

// ParseLayoutTables splits layout-preserved text into pages on form feeds
// and returns every block of at least two consecutive lines with two or more
// cells.
func ParseLayoutTables(text string) []Table {
	var tables []Table
	for i, page := range strings.Split(text, "\f") {
		var rows [][]string
		flush := func() {
			if len(rows) >= minTableRows {
				tables = append(tables, Table{Page: i + 1, Rows: rows})
			}
			rows = nil
		}
		for _, line := range strings.Split(page, "\n") {
			cells := splitCells(line)
			if len(cells) < 2 {
				flush()
				continue
			}
			rows = append(rows, cells)
		}
		flush()
	}
	return tables
}

func splitCells(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	var cells []string
	for _, c := range columnGap.Split(line, -1) {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}
