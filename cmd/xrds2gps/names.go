package main

import (
	"crossroads-gps/internal/domain"
	"crossroads-gps/internal/platform/obs"
	"crossroads-gps/internal/services"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newNamesCmd(a *app) *cobra.Command {
	var (
		bbox  string
		out   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "names --bbox \"swLat, swLon, neLat, neLon\"",
		Short: "List the distinct street names inside a bounding box, sorted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			defer a.teardown()

			ctx := obs.WithRunID(cmd.Context(), uuid.NewString())
			defer obs.Time(ctx, "xrds2gps.names")(&err)

			if bbox == "" {
				return errors.New("--bbox is required")
			}
			box, err := services.ParseBoundingBox(domain.TextLine{Text: bbox}, a.cfg.Geofence)
			if err != nil {
				return fmt.Errorf("--bbox: %w", err)
			}

			metrics, err := obs.NewMetrics()
			if err != nil {
				return err
			}
			resolver, err := a.newResolver(cmd, metrics)
			if err != nil {
				return err
			}

			names, err := resolver.StreetNames(ctx, box)
			if err != nil {
				return err
			}
			defer names.Destroy()

			w, closeOut, err := a.openOutput(cmd, out, force)
			if err != nil {
				return err
			}
			defer closeInto(closeOut, &err)

			for name := range names.All() {
				if _, err := fmt.Fprintln(w, name); err != nil {
					return fmt.Errorf("write names: %w", err)
				}
			}

			if err := metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bbox, "bbox", "", "bounding box: swLat, swLon, neLat, neLon")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write names to `filename` instead of stdout")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing output file")

	return cmd
}
