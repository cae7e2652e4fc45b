package main

import (
	"crossroads-gps/internal/adapters/inputfile"
	"crossroads-gps/internal/adapters/output"
	"crossroads-gps/internal/platform/obs"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type batchOptions struct {
	output   string
	force    bool
	wkt      string
	allNodes bool
	rawData  string
}

// runBatch resolves every input file and writes one combined table.
// A file that cannot be read or parsed is skipped; the run fails only
// when no file could be processed.
func (a *app) runBatch(cmd *cobra.Command, files []string, opts batchOptions) (err error) {
	ctx := obs.WithRunID(cmd.Context(), uuid.NewString())
	defer obs.Time(ctx, "xrds2gps.run")(&err)

	metrics, err := obs.NewMetrics()
	if err != nil {
		return err
	}
	defer func() {
		if werr := metrics.WriteTextfile(a.cfg.Metrics.Textfile); werr != nil {
			slog.Error("metrics not written", "err", werr)
		}
	}()

	resolver, err := a.newResolver(cmd, metrics)
	if err != nil {
		return err
	}

	out, closeOut, err := a.openOutput(cmd, opts.output, opts.force)
	if err != nil {
		return err
	}
	defer closeInto(closeOut, &err)

	table := output.NewTableWriter(out)
	if err := table.WriteHeader(); err != nil {
		return err
	}

	var wkt *output.WKTWriter
	if opts.wkt != "" {
		w, closeWKT, oerr := a.openOutput(cmd, opts.wkt, opts.force)
		if oerr != nil {
			return oerr
		}
		defer closeInto(closeWKT, &err)

		wkt = output.NewWKTWriter(w, opts.allNodes)
		defer func() {
			if ferr := wkt.Flush(); ferr != nil && err == nil {
				err = ferr
			}
		}()
	}

	var raw io.Writer
	if opts.rawData != "" {
		w, closeRaw, oerr := a.openOutput(cmd, opts.rawData, opts.force)
		if oerr != nil {
			return oerr
		}
		defer closeInto(closeRaw, &err)

		if _, werr := fmt.Fprint(w, "This is the raw data received from the Overpass server.\n\n"); werr != nil {
			return fmt.Errorf("write raw data: %w", werr)
		}
		raw = w
	}

	processed := 0
	for _, path := range files {
		batch, err := inputfile.Load(path, a.cfg.Geofence)
		if err != nil {
			slog.ErrorContext(ctx, "skipping input file", "run_id", obs.RunID(ctx), "file", path, "err", err)
			continue
		}

		res, err := resolver.ResolveBatch(ctx, batch.Box, batch.Intersections, raw)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			slog.ErrorContext(ctx, "skipping input file", "run_id", obs.RunID(ctx), "file", path, "err", err)
			continue
		}

		for x := range res.Results.All() {
			if err := table.Write(x); err != nil {
				return err
			}
			if wkt != nil {
				if err := wkt.Write(x); err != nil {
					return err
				}
			}
		}

		slog.InfoContext(ctx, "input file done",
			"run_id", obs.RunID(ctx),
			"file", path,
			"intersections", res.Results.Len(),
			"failed", res.Failed,
		)
		res.Results.Destroy()
		processed++
	}

	if processed == 0 {
		return errors.New("no input file could be processed")
	}
	return nil
}

// closeInto closes and reports the close error unless err is already set.
func closeInto(closeFn func() error, err *error) {
	if cerr := closeFn(); cerr != nil && *err == nil {
		*err = fmt.Errorf("close output: %w", cerr)
	}
}
