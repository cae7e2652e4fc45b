package obs

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey string

const RunIDKey ctxKey = "run_id"

// Attach the batch run id used to correlate log lines.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}

func RunID(ctx context.Context) string {
	id, _ := ctx.Value(RunIDKey).(string)
	return id
}

// Time logs the duration of op when the returned func is deferred:
//
//	defer obs.Time(ctx, "overpass.Fetch")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	runID := RunID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			slog.WarnContext(ctx, "op failed", "run_id", runID, "op", name, "dur_ms", dur.Milliseconds(), "err", *errp)
			return
		}
		slog.DebugContext(ctx, "op done", "run_id", runID, "op", name, "dur_ms", dur.Milliseconds())
	}
}
