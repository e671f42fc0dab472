package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/tripcraft/tripcraft/internal/model"
	"github.com/tripcraft/tripcraft/internal/store"
)

var tripsCmd = &cobra.Command{
	Use:   "trips",
	Short: "Inspect planned trips",
	Long:  "Commands for listing, viewing, and summarizing planning runs.",
}

// -- trips list --

var tripsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List planned trips",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		destination, _ := cmd.Flags().GetString("destination")
		limit, _ := cmd.Flags().GetInt("limit")

		trips, err := st.ListTrips(ctx, store.TripFilter{
			Status:      model.TripStatus(status),
			Destination: destination,
			Limit:       limit,
		})
		if err != nil {
			return eris.Wrap(err, "trips list")
		}

		if len(trips) == 0 {
			fmt.Fprintln(os.Stderr, "No trips found.")
			return nil
		}

		formatTripsList(os.Stdout, trips)
		return nil
	},
}

// -- trips show --

var tripsShowCmd = &cobra.Command{
	Use:   "show <trip-id>",
	Short: "Show full details of a trip",
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
			return eris.Wrap(err, "trips show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(trip)
	},
}

func init() {
	tripsListCmd.Flags().String("status", "", "filter by trip status (created, running, verified, failed)")
	tripsListCmd.Flags().String("destination", "", "filter by destination city")
	tripsListCmd.Flags().Int("limit", 50, "max number of trips to display")

	tripsCmd.AddCommand(tripsListCmd)
	tripsCmd.AddCommand(tripsShowCmd)
	rootCmd.AddCommand(tripsCmd)
}

// formatTripsList writes a tabular list of trips to w.
func formatTripsList(out io.Writer, trips []model.Trip) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDESTINATION\tDATES\tSTATUS\tSCORE\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t-----------\t-----\t------\t-----\t-------")

	for _, tr := range trips {
		score := ""
		if tr.Verification != nil {
			score = fmt.Sprintf("%.0f", tr.Verification.Score)
		}
		dates := tr.Request.StartDate.String() + " to " + tr.Request.EndDate.String()

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(tr.ID),
			tr.Request.Destination,
			dates,
			tr.Status,
			score,
			tr.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
