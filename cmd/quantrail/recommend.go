package main

import (
	"fmt"
	"strings"

	"github.com/quantrail/quantrail/internal/app"
	"github.com/quantrail/quantrail/internal/core"
	"github.com/quantrail/quantrail/internal/logger"
	"github.com/spf13/cobra"
)

var recommendAssetType string

var recommendCmd = &cobra.Command{
	Use:   "recommend TICKER [TICKER...]",
	Short: "Generate ranked recommendations for the given tickers",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRecommend,
}

func init() {
	recommendCmd.Flags().StringVar(&recommendAssetType, "asset-type", "stocks", "asset type: stocks, crypto or forex")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
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

	recs, err := a.GetRecommendations(cmd.Context(), args, core.AssetType(recommendAssetType))
	if err != nil {
		return err
	}

	fmt.Printf("%-8s %-6s %8s %6s %10s %8s\n",
		"TICKER", "ACTION", "SCORE", "CONF", "PRICE", "CHANGE")
	for _, rec := range recs {
		if rec.InsufficientData {
			fmt.Printf("%-8s %-6s %8s\n", rec.Ticker, rec.Recommendation, "no data")
			continue
		}
		fmt.Printf("%-8s %-6s %8.3f %5.0f%% %10.2f %7.2f%%\n",
			rec.Ticker, rec.Recommendation, rec.Score, rec.Confidence,
			rec.CurrentPrice, rec.PriceChangePct)
		if rec.Guidance != nil {
			fmt.Printf("         stop %.2f  target %.2f  size %.2f\n",
				rec.Guidance.StopLoss, rec.Guidance.TakeProfit, rec.Guidance.RecommendedSize)
		}
	}

	if len(recs) > 0 {
		var parts []string
		for name, v := range recs[0].ContributingSignals {
			parts = append(parts, fmt.Sprintf("%s=%.2f", name, v))
		}
		log.Debug("contributing signals for top ticker: " + strings.Join(parts, " "))
	}
	return nil
}
