package main

import (
	"context"
	"crossroads-gps/internal/adapters/output"
	"crossroads-gps/internal/adapters/overpass"
	"crossroads-gps/internal/config"
	"crossroads-gps/internal/platform/logging"
	"crossroads-gps/internal/platform/obs"
	"crossroads-gps/internal/services"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const longHelp = `xrds2gps finds the GPS coordinates of street intersections (cross roads)
by querying an Overpass API server, and prints a table with the street names
and the longitude, latitude of each intersection.

Input file format:

  # lines starting with '#' or ';' are comments
  ; bounding box: swLatitude, swLongitude, neLatitude, neLongitude
  33.53100, -112.07400, 33.56050, -112.0567345
  East Camelback Road, North 24Th Street
  North 20Th Street, East Highland Avenue

Several input files may be given; their results are combined in one table.
Output file names without a directory are created in the output directory
(output.dir, default ~/xrds2gps).

Settings may also come from ./xrds2gps.yaml, a .env file, or XRDS_*
environment variables (XRDS_OVERPASS_URL, XRDS_LOG_LEVEL, ...).`

// app carries state shared by the root command and its subcommands.
type app struct {
	v   *viper.Viper
	cfg *config.Config

	configFile string
	shutdown   func()
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}
	var opts batchOptions

	cmd := &cobra.Command{
		Use:               "xrds2gps [flags] inputfile [files ...]",
		Short:             "Find GPS coordinates of street intersections with the Overpass API",
		Long:              longHelp,
		Args:              cobra.MinimumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.teardown()
			return a.runBatch(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "write the result table to `filename` instead of stdout")
	f.BoolVarP(&opts.force, "force", "f", false, "overwrite existing output files")
	f.StringVarP(&opts.wkt, "WKT", "W", "", "write Well Known Text CSV to `filename`")
	f.BoolVar(&opts.allNodes, "all-nodes", false, "with --WKT, write every node found as a MULTIPOINT")
	f.StringVarP(&opts.rawData, "raw-data", "r", "", "copy every server response to `filename`")

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config `file` (default ./xrds2gps.yaml)")
	pf.String("url", "", "Overpass interpreter URL")
	pf.String("method", "", "HTTP method for queries: GET or POST")
	pf.Bool("probe", true, "check the server is reachable before querying")
	pf.Bool("allow-blank-names", false, "send road names that are blank after trimming")
	pf.String("output-dir", "", "directory for bare output file names")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("log-format", "", "text or json")
	pf.String("metrics-textfile", "", "write Prometheus metrics to `file` when done")
	pf.Bool("trace", false, "export OpenTelemetry spans")
	pf.String("trace-file", "", "span output `file` (default stderr)")

	for key, flag := range map[string]string{
		"overpass.url":            "url",
		"overpass.method":         "method",
		"overpass.probe":          "probe",
		"query.allow_blank_names": "allow-blank-names",
		"output.dir":              "output-dir",
		"log.level":               "log-level",
		"log.format":              "log-format",
		"metrics.textfile":        "metrics-textfile",
		"tracing.enabled":         "trace",
		"tracing.file":            "trace-file",
	} {
		// only fails for a nil flag
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	cmd.AddCommand(newNamesCmd(a))
	return cmd
}

// setup loads configuration and starts logging and tracing.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())

	var traceOut io.Writer = cmd.ErrOrStderr()
	traceClose := func() {}
	if cfg.Tracing.Enabled && cfg.Tracing.File != "" {
		f, err := os.Create(cfg.Tracing.File)
		if err != nil {
			return fmt.Errorf("create trace file: %w", err)
		}
		traceOut = f
		traceClose = func() { f.Close() }
	}

	shutdown, err := obs.InitTracing(cmd.Context(), obs.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "xrds2gps",
		SampleRatio: cfg.Tracing.SampleRatio,
		Writer:      traceOut,
	})
	if err != nil {
		traceClose()
		return err
	}

	a.shutdown = func() {
		// the command context may already be cancelled
		obs.ShutdownWithTimeout(context.Background(), shutdown)
		traceClose()
	}
	return nil
}

// teardown flushes spans; subcommands defer it from RunE.
func (a *app) teardown() {
	if a.shutdown != nil {
		a.shutdown()
		a.shutdown = nil
	}
}

// newResolver builds the Overpass client and resolver from configuration,
// probing the server first when enabled.
func (a *app) newResolver(cmd *cobra.Command, metrics *obs.Metrics) (*services.Resolver, error) {
	cfg := a.cfg

	client, err := overpass.NewClient(overpass.Options{
		URL:        cfg.Overpass.URL,
		Method:     cfg.Overpass.Method,
		Tries:      cfg.Overpass.Tries,
		Timeout:    cfg.Overpass.Timeout,
		RatePerSec: cfg.Overpass.RatePerSec,
		UserAgent:  cfg.Overpass.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Overpass.Probe {
		if err := overpass.Probe(cmd.Context(), client.URL(), cfg.Overpass.ProbeTimeout); err != nil {
			return nil, fmt.Errorf("server not reachable: %w", err)
		}
		slog.Info("reached server", "url", client.URL())
	}

	policy := services.RejectBlankNames
	if cfg.Query.AllowBlankNames {
		policy = services.AllowBlankNames
	}

	return services.NewResolver(client,
		services.WithGeofence(cfg.Geofence),
		services.WithBlankNamePolicy(policy),
		services.WithMetrics(metrics),
	), nil
}

// openOutput returns stdout when name is empty.
func (a *app) openOutput(cmd *cobra.Command, name string, force bool) (io.Writer, func() error, error) {
	if name == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	f, err := output.Create(output.ResolvePath(name, a.cfg.Output.Dir), force)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
