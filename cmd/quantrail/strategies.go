package main

import (
	"fmt"

	"github.com/quantrail/quantrail/internal/app"
	"github.com/quantrail/quantrail/internal/logger"
	"github.com/spf13/cobra"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List registered strategies and their configuration",
	RunE:  runStrategies,
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

func runStrategies(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}

	weights := cfg.Weights()
	fmt.Printf("%-22s %-8s %6s %6s  %s\n", "NAME", "ACTIVE", "WEIGHT", "BARS", "DESCRIPTION")
	for _, s := range a.Strategies() {
		active := "no"
		if s.Active() {
			active = "yes"
		}
		fmt.Printf("%-22s %-8s %6.2f %6d  %s\n",
			s.Name(), active, weights[s.Name()], s.RequiredBars(), s.Description())
	}
	return nil
}
