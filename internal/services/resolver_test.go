package services

import (
	"bytes"
	"context"
	"crossroads-gps/internal/adapters/overpass"
	"crossroads-gps/internal/domain"
	"crossroads-gps/internal/platform/dlist"
	"crossroads-gps/internal/platform/obs"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

const camelback24th = "@lat\t@lon\t@count\n33.5090000\t-112.0300000\t\n\t\t1\n"

func TestResolverResolve(t *testing.T) {
	fetcher := overpass.NewMockFetcher([]overpass.MockResponse{
		{Match: "'East Camelback Road'", Body: camelback24th},
	})
	r := NewResolver(fetcher)

	x := domain.NewIntersection("East Camelback Road", "North 24Th Street")
	var raw bytes.Buffer

	err := r.Resolve(context.Background(), phoenixBox, x, &raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, ok := x.Primary()
	if !ok {
		t.Fatalf("expected a primary point")
	}
	if p.Lat != 33.509 || p.Lon != -112.03 {
		t.Fatalf("primary = %+v", p)
	}

	if len(fetcher.Queries) != 1 || !strings.Contains(fetcher.Queries[0], "'North 24Th Street'") {
		t.Fatalf("queries = %v", fetcher.Queries)
	}

	wantRaw := "Data for cross roads: [ East Camelback Road && North 24Th Street ]\n\n" + camelback24th + rawDataSeparator
	if raw.String() != wantRaw {
		t.Fatalf("raw = %q, want %q", raw.String(), wantRaw)
	}
}

func TestResolverResolveInvalidResponse(t *testing.T) {
	fetcher := overpass.NewMockFetcher([]overpass.MockResponse{
		{Match: "", Body: "<html>error</html>"},
	})
	r := NewResolver(fetcher)
	x := domain.NewIntersection("A", "B")

	err := r.Resolve(context.Background(), phoenixBox, x, nil)
	if !errors.Is(err, domain.ErrInvalidResponse) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
	if x.Resolved() {
		t.Fatalf("failed intersection marked resolved")
	}
}

func TestResolverResolveNilIntersectionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()

	r := NewResolver(overpass.NewMockFetcher(nil))
	_ = r.Resolve(context.Background(), phoenixBox, nil, nil)
}

func TestResolverResolveBatch(t *testing.T) {
	fetcher := overpass.NewMockFetcher([]overpass.MockResponse{
		{Match: "'Ash'", Body: camelback24th},
		{Match: "'Butler'", Body: "@lat\t@lon\t@count\n0\n"},
		{Match: "'Central'", Err: errors.New("connection refused")},
	})
	m, err := obs.NewMetrics()
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	r := NewResolver(fetcher, WithMetrics(m))

	in := dlist.New[*domain.Intersection](nil, nil)
	in.PushBack(domain.NewIntersection("Ash", "1st Street"))
	in.PushBack(domain.NewIntersection("Central", "2nd Street"))
	in.PushBack(domain.NewIntersection("Butler", "3rd Street"))

	res, err := r.ResolveBatch(context.Background(), phoenixBox, in, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// a failed item does not abort the batch and order is preserved
	if in.Len() != 0 {
		t.Fatalf("input list len = %d, want 0", in.Len())
	}
	var roads []string
	for x := range res.Results.All() {
		roads = append(roads, x.FirstRoad)
	}
	if !slices.Equal(roads, []string{"Ash", "Central", "Butler"}) {
		t.Fatalf("results = %v", roads)
	}
	if res.Failed != 1 {
		t.Fatalf("failed = %d, want 1", res.Failed)
	}

	if got := testutil.ToFloat64(m.Intersections.WithLabelValues(obs.OutcomeFound)); got != 1 {
		t.Errorf("found = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Intersections.WithLabelValues(obs.OutcomeNotFound)); got != 1 {
		t.Errorf("not_found = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Queries.WithLabelValues(KindIntersection, "error")); got != 1 {
		t.Errorf("query errors = %v, want 1", got)
	}
}

func TestResolverResolveBatchInvalidBox(t *testing.T) {
	fetcher := overpass.NewMockFetcher(nil)
	r := NewResolver(fetcher)

	in := dlist.New[*domain.Intersection](nil, nil)
	in.PushBack(domain.NewIntersection("A", "B"))

	_, err := r.ResolveBatch(context.Background(), domain.BoundingBox{}, in, nil)
	if !errors.Is(err, domain.ErrInvalidBoundingBox) {
		t.Fatalf("err = %v, want ErrInvalidBoundingBox", err)
	}
	if len(fetcher.Queries) != 0 {
		t.Fatalf("queries sent with invalid box: %v", fetcher.Queries)
	}
	if in.Len() != 1 {
		t.Fatalf("input consumed on invalid box")
	}
}

func TestResolverResolveBatchCancelled(t *testing.T) {
	r := NewResolver(overpass.NewMockFetcher(nil))

	in := dlist.New[*domain.Intersection](nil, nil)
	in.PushBack(domain.NewIntersection("A", "B"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ResolveBatch(ctx, phoenixBox, in, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if in.Len() != 1 {
		t.Fatalf("unprocessed intersection removed from input")
	}
}

func TestResolverStreetNames(t *testing.T) {
	fetcher := overpass.NewMockFetcher([]overpass.MockResponse{
		{Match: "[highway]", Body: "North 24Th Street\nEast Camelback Road\n\nNorth 24Th Street\n East Highland Avenue\n"},
	})
	r := NewResolver(fetcher)

	names, err := r.StreetNames(context.Background(), phoenixBox)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"East Camelback Road", "East Highland Avenue", "North 24Th Street"}
	if got := names.Values(); !slices.Equal(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
}
