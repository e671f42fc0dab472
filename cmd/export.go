package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tripcraft/tripcraft/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <trip-id>",
	Short: "Export a planned trip as an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		trip, err := st.GetTrip(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "load trip")
		}

		out := exportOut
		if out == "" {
			out = "trip-" + truncateID(trip.ID) + ".xlsx"
		}
		if err := export.WriteFile(trip, out); err != nil {
			return err
		}

		zap.L().Info("trip exported",
			zap.String("trip_id", trip.ID),
			zap.String("path", out),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default trip-<id>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
