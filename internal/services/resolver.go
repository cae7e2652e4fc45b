package services

import (
	"context"
	"crossroads-gps/internal/domain"
	"crossroads-gps/internal/platform/dlist"
	"crossroads-gps/internal/platform/obs"
	"crossroads-gps/internal/ports"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Query kinds used as metric labels.
const (
	KindIntersection = "intersection"
	KindStreetNames  = "names"
)

// Resolver runs the build, fetch, validate, parse pipeline one query at a time.
type Resolver struct {
	fetcher ports.QueryFetcher
	fence   domain.Geofence
	policy  BlankNamePolicy
	metrics *obs.Metrics
}

type ResolverOption func(*Resolver)

func WithGeofence(f domain.Geofence) ResolverOption {
	return func(r *Resolver) { r.fence = f }
}

func WithBlankNamePolicy(p BlankNamePolicy) ResolverOption {
	return func(r *Resolver) { r.policy = p }
}

func WithMetrics(m *obs.Metrics) ResolverOption {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver panics on a nil fetcher.
func NewResolver(fetcher ports.QueryFetcher, opts ...ResolverOption) *Resolver {
	if fetcher == nil {
		panic("services: NewResolver with nil fetcher")
	}

	r := &Resolver{
		fetcher: fetcher,
		fence:   domain.DefaultGeofence(),
		policy:  RejectBlankNames,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fills x with the nodes where its two roads meet inside box.
// When raw is non-nil every response body is copied to it before validation.
// x is left untouched on error.
func (r *Resolver) Resolve(
	ctx context.Context,
	box domain.BoundingBox,
	x *domain.Intersection,
	raw io.Writer,
) (err error) {
	if x == nil {
		panic("services: Resolve with nil intersection")
	}
	defer obs.Time(ctx, "resolver.Resolve")(&err)

	ctx, span := obs.Tracer().Start(ctx, "Resolve", trace.WithAttributes(
		attribute.String("road.first", x.FirstRoad),
		attribute.String("road.second", x.SecondRoad),
	))
	defer endSpan(span, &err)

	q, err := BuildIntersectionQuery(box, x.FirstRoad, x.SecondRoad, r.policy)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", x, err)
	}

	body, err := r.fetch(ctx, KindIntersection, q)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", x, err)
	}

	if raw != nil {
		if err := WriteRawData(raw, x, body); err != nil {
			slog.WarnContext(ctx, "raw data write failed", "run_id", obs.RunID(ctx), "err", err)
		}
	}

	if err := ValidateResponse(body, IntersectionHeader); err != nil {
		return fmt.Errorf("resolve %s: %w", x, err)
	}

	points, err := ParseIntersectionResult(body, r.fence)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", x, err)
	}

	if err := x.SetResult(points); err != nil {
		return fmt.Errorf("resolve %s: %w", x, err)
	}

	span.SetAttributes(attribute.Int("nodes.found", len(points)))
	return nil
}

// Outcome of one batch run.
type BatchResult struct {
	// Every processed intersection in input order, resolved or not.
	Results *dlist.List[*domain.Intersection]
	Failed  int
}

// ResolveBatch moves each intersection from in to the result list, resolving
// it on the way. A failed intersection is logged and kept unresolved; only an
// invalid box or a cancelled context stops the batch. On cancellation the
// unprocessed intersections stay in in.
func (r *Resolver) ResolveBatch(
	ctx context.Context,
	box domain.BoundingBox,
	in *dlist.List[*domain.Intersection],
	raw io.Writer,
) (_ BatchResult, err error) {
	defer obs.Time(ctx, "resolver.ResolveBatch")(&err)

	res := BatchResult{Results: dlist.New[*domain.Intersection](nil, nil)}

	if !box.IsValid() {
		return res, fmt.Errorf("resolve batch: bbox %s: %w", box, domain.ErrInvalidBoundingBox)
	}

	ctx, span := obs.Tracer().Start(ctx, "ResolveBatch", trace.WithAttributes(
		attribute.String("bbox", box.String()),
		attribute.Int("intersections", in.Len()),
	))
	defer endSpan(span, &err)

	for in.Head() != nil {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("resolve batch: %w", err)
		}

		x, err := in.Remove(in.Head())
		if err != nil {
			return res, fmt.Errorf("resolve batch: %w", err)
		}

		rerr := r.Resolve(ctx, box, x, raw)
		r.metrics.ObserveIntersection(x.NodesFound(), rerr)
		if rerr != nil {
			res.Failed++
			slog.ErrorContext(ctx, "intersection failed", "run_id", obs.RunID(ctx), "roads", x.String(), "err", rerr)
		}

		res.Results.PushBack(x)
	}

	span.SetAttributes(attribute.Int("failed", res.Failed))
	return res, nil
}

// StreetNames lists the distinct names of every highway in box, sorted.
func (r *Resolver) StreetNames(ctx context.Context, box domain.BoundingBox) (_ *dlist.List[string], err error) {
	defer obs.Time(ctx, "resolver.StreetNames")(&err)

	ctx, span := obs.Tracer().Start(ctx, "StreetNames")
	defer endSpan(span, &err)

	q, err := BuildStreetNamesQuery(box)
	if err != nil {
		return nil, fmt.Errorf("street names: %w", err)
	}

	body, err := r.fetch(ctx, KindStreetNames, q)
	if err != nil {
		return nil, fmt.Errorf("street names: %w", err)
	}

	lines := SplitLines(body)
	defer lines.Destroy()

	names := dlist.NewStringCatalog()
	for l := range lines.All() {
		names.InsertOrdered(TrimName(l.Text))
	}

	span.SetAttributes(attribute.Int("names", names.Len()))
	return names, nil
}

func (r *Resolver) fetch(ctx context.Context, kind string, q string) (string, error) {
	start := time.Now()
	body, err := r.fetcher.Fetch(ctx, q)
	r.metrics.ObserveQuery(kind, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("fetch %s query: %w", kind, err)
	}
	return body, nil
}

func endSpan(span trace.Span, errp *error) {
	if errp != nil && *errp != nil {
		span.RecordError(*errp)
		span.SetStatus(codes.Error, (*errp).Error())
	}
	span.End()
}
