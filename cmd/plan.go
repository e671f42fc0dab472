package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tripcraft/tripcraft/internal/model"
)

// requestFlags collects the trip request flags shared by plan and agent.
type requestFlags struct {
	destination   string
	origin        string
	start         string
	end           string
	budget        float64
	travelers     int
	pace          string
	accommodation string
	interests     []string
	dietary       []string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.destination, "destination", "", "destination city (required)")
	cmd.Flags().StringVar(&f.origin, "origin", "", "origin city for flights")
	cmd.Flags().StringVar(&f.start, "start", "", "start date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&f.end, "end", "", "end date YYYY-MM-DD (required)")
	cmd.Flags().Float64Var(&f.budget, "budget", 0, "total budget (required)")
	cmd.Flags().IntVar(&f.travelers, "travelers", 1, "number of travelers")
	cmd.Flags().StringVar(&f.pace, "pace", string(model.PaceModerate), "itinerary pace: relaxed, moderate, packed")
	cmd.Flags().StringVar(&f.accommodation, "accommodation", string(model.AccommodationMidRange), "accommodation tier: budget, mid-range, luxury")
	cmd.Flags().StringSliceVar(&f.interests, "interests", nil, "traveler interests")
	cmd.Flags().StringSliceVar(&f.dietary, "dietary", nil, "dietary restrictions")
	_ = cmd.MarkFlagRequired("destination")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("budget")
}

func (f *requestFlags) request() (model.TripRequest, error) {
	start, err := model.ParseDate(f.start)
	if err != nil {
		return model.TripRequest{}, eris.Wrap(err, "invalid --start")
	}
	end, err := model.ParseDate(f.end)
	if err != nil {
		return model.TripRequest{}, eris.Wrap(err, "invalid --end")
	}
	return model.TripRequest{
		Destination: f.destination,
		Origin:      f.origin,
		StartDate:   start,
		EndDate:     end,
		Budget:      f.budget,
		Travelers:   f.travelers,
		Preferences: model.Preferences{
			Accommodation:       model.AccommodationTier(f.accommodation),
			Interests:           f.interests,
			DietaryRestrictions: f.dietary,
			Pace:                model.Pace(f.pace),
		},
	}, nil
}

var planFlags requestFlags

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a full trip and wait for the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		req, err := planFlags.request()
		if err != nil {
			return err
		}
		if err := req.Validate(time.Now()); err != nil {
			return err
		}

		env, err := initPlanner(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		trip, err := env.Store.CreateTrip(ctx, req)
		if err != nil {
			return eris.Wrap(err, "create trip")
		}

		if err := env.Planner.Execute(ctx, trip.ID, req); err != nil {
			return err
		}

		final, err := env.Store.GetTrip(ctx, trip.ID)
		if err != nil {
			return eris.Wrap(err, "load trip")
		}

		if final.Verification != nil {
			zap.L().Info("trip planned",
				zap.String("trip_id", final.ID),
				zap.Float64("score", final.Verification.Score),
				zap.Bool("passed", final.Verification.Passed),
			)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(final)
	},
}

func init() {
	planFlags.register(planCmd)
	rootCmd.AddCommand(planCmd)
}
