package output

import (
	"crossroads-gps/internal/domain"
	"fmt"
	"io"
	"strings"
)

const (
	tableHeading = " Elem #                              Cross Roads                              GPS (Longitude, Latitude)  Nodes Found\n"
	notFound     = " ----    Not Found   ---- "
)

// TableWriter renders intersections as a fixed-width text table.
// Element numbers keep counting across batches.
type TableWriter struct {
	w    io.Writer
	elem int
}

func NewTableWriter(w io.Writer) *TableWriter {
	return &TableWriter{w: w}
}

func (t *TableWriter) WriteHeader() error {
	if _, err := fmt.Fprint(t.w, tableHeading, strings.Repeat("=", 116), "\n\n"); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}
	return nil
}

// Write appends one row; unresolved or empty results print as Not Found.
func (t *TableWriter) Write(x *domain.Intersection) error {
	t.elem++

	gps := notFound
	if p, ok := x.Primary(); ok {
		gps = fmt.Sprintf("(%10.7f, %10.7f)", p.Lon, p.Lat)
	}

	if _, err := fmt.Fprintf(t.w, "%6d  %-50s %26s %6d\n", t.elem, x.String(), gps, x.NodesFound()); err != nil {
		return fmt.Errorf("write table row %d: %w", t.elem, err)
	}
	return nil
}
