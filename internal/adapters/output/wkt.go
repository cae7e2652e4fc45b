package output

import (
	"crossroads-gps/internal/domain"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// WKTWriter writes found intersections as CSV rows with a WKT geometry
// column, loadable as a delimited-text layer in GIS tools.
type WKTWriter struct {
	cw          *csv.Writer
	allNodes    bool
	wroteHeader bool
}

// NewWKTWriter returns a writer emitting the primary node as a POINT, or
// every node as a MULTIPOINT when allNodes is set.
func NewWKTWriter(w io.Writer, allNodes bool) *WKTWriter {
	return &WKTWriter{cw: csv.NewWriter(w), allNodes: allNodes}
}

// Write appends one row. Intersections without nodes have no geometry and are skipped.
func (ww *WKTWriter) Write(x *domain.Intersection) error {
	if !ww.wroteHeader {
		if err := ww.cw.Write([]string{"WKT", "first_road", "second_road", "nodes_found"}); err != nil {
			return fmt.Errorf("write wkt header: %w", err)
		}
		ww.wroteHeader = true
	}

	p, ok := x.Primary()
	if !ok {
		return nil
	}

	var g orb.Geometry = p.Orb()
	if ww.allNodes && x.NodesFound() > 1 {
		mp := make(orb.MultiPoint, 0, x.NodesFound())
		for _, pt := range x.Points() {
			mp = append(mp, pt.Orb())
		}
		g = mp
	}

	row := []string{wkt.MarshalString(g), x.FirstRoad, x.SecondRoad, strconv.Itoa(x.NodesFound())}
	if err := ww.cw.Write(row); err != nil {
		return fmt.Errorf("write wkt row %s: %w", x, err)
	}
	return nil
}

func (ww *WKTWriter) Flush() error {
	ww.cw.Flush()
	if err := ww.cw.Error(); err != nil {
		return fmt.Errorf("flush wkt: %w", err)
	}
	return nil
}
