package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the static seed catalog",
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog contents summary",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cat.Stats())
	},
}

var catalogCitiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "List seeded cities",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		for _, city := range cat.Cities() {
			fmt.Println(city)
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogStatsCmd)
	catalogCmd.AddCommand(catalogCitiesCmd)
	rootCmd.AddCommand(catalogCmd)
}
