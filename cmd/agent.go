package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/tripcraft/tripcraft/internal/model"
)

var agentFlags requestFlags

var agentCmd = &cobra.Command{
	Use:   "agent <category>",
	Short: "Run a single category agent in isolation",
	Long:  "Runs one agent (destination, lodging, dining, transport, budget, itinerary) against an empty trip context. Useful for debugging a category without a full planning pass.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		req, err := agentFlags.request()
		if err != nil {
			return err
		}

		env, err := initPlanner(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Planner.RunSingleAgent(ctx, model.Category(args[0]), req)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	agentFlags.register(agentCmd)
	rootCmd.AddCommand(agentCmd)
}
