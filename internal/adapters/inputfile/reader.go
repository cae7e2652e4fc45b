package inputfile

import (
	"bufio"
	"crossroads-gps/internal/domain"
	"crossroads-gps/internal/platform/dlist"
	"crossroads-gps/internal/services"
	"fmt"
	"io"
	"os"
	"strings"
)

// Characters a road name may not contain.
const disallowedNameChars = "~!@#$%^&*()_+./\\|\":`<>[{]}"

// Batch is one parsed input file: a bounding box shared by every
// intersection that follows it.
type Batch struct {
	Path          string
	Box           domain.BoundingBox
	Intersections *dlist.List[*domain.Intersection]
}

// Load opens and parses the input file at path.
func Load(path string, fence domain.Geofence) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}
	defer f.Close()

	b, err := Parse(f, fence)
	if err != nil {
		return nil, fmt.Errorf("load input %q: %w", path, err)
	}
	b.Path = path

	return b, nil
}

// Parse reads an input file:
//
//	# comment
//	swLat, swLon, neLat, neLon
//	first road, second road
//	...
//
// Lines starting with '#' or ';' and blank lines are skipped.
func Parse(r io.Reader, fence domain.Geofence) (*Batch, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	defer lines.Destroy()

	if lines.Len() == 0 {
		return nil, fmt.Errorf("no bounding box line: %w", domain.ErrParse)
	}

	first, _ := lines.Remove(lines.Head())
	box, err := services.ParseBoundingBox(first, fence)
	if err != nil {
		return nil, fmt.Errorf("bounding box: %w", err)
	}

	b := &Batch{
		Box:           box,
		Intersections: dlist.New[*domain.Intersection](nil, nil),
	}

	for l := range lines.All() {
		x, err := ParseRoadPair(l)
		if err != nil {
			return nil, err
		}
		b.Intersections.PushBack(x)
	}

	if b.Intersections.Len() == 0 {
		return nil, fmt.Errorf("no cross roads after bounding box: %w", domain.ErrParse)
	}

	return b, nil
}

// ReadLines returns the non-blank, non-comment lines of r with leading
// whitespace removed and their original line numbers.
func ReadLines(r io.Reader) (*dlist.List[domain.TextLine], error) {
	lines := dlist.New[domain.TextLine](nil, nil)

	sc := bufio.NewScanner(r)
	num := 0
	for sc.Scan() {
		num++

		text := strings.TrimRight(strings.TrimLeft(sc.Text(), " \t"), "\r")
		if text == "" || text[0] == '#' || text[0] == ';' {
			continue
		}

		lines.PushBack(domain.TextLine{Num: num, Text: text})
	}
	if err := sc.Err(); err != nil {
		lines.Destroy()
		return nil, fmt.Errorf("read lines: %w", err)
	}

	return lines, nil
}

// ParseRoadPair parses "first road, second road".
func ParseRoadPair(line domain.TextLine) (*domain.Intersection, error) {
	a, b, ok := strings.Cut(line.Text, ",")
	if !ok {
		return nil, &domain.ParseError{Line: line.Num, Token: line.Text, Err: fmt.Errorf("missing comma: %w", domain.ErrParse)}
	}
	if strings.Contains(b, ",") {
		return nil, &domain.ParseError{Line: line.Num, Token: line.Text, Err: fmt.Errorf("more than two road names: %w", domain.ErrParse)}
	}

	a, b = services.TrimName(a), services.TrimName(b)
	for _, name := range []string{a, b} {
		if name == "" {
			return nil, &domain.ParseError{Line: line.Num, Token: line.Text, Err: fmt.Errorf("missing road name: %w", domain.ErrParse)}
		}
		if strings.ContainsAny(name, disallowedNameChars) {
			return nil, &domain.ParseError{Line: line.Num, Token: name, Err: domain.ErrDisallowedChar}
		}
	}

	return domain.NewIntersection(a, b), nil
}
