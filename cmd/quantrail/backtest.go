package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/quantrail/quantrail/internal/app"
	"github.com/quantrail/quantrail/internal/backtest"
	"github.com/quantrail/quantrail/internal/logger"
	"github.com/spf13/cobra"
)

var (
	backtestFrom       string
	backtestTo         string
	backtestStrategies []string
	backtestTopN       int
	backtestRebalance  int
	backtestWeighting  string
)

var backtestCmd = &cobra.Command{
	Use:   "backtest TICKER [TICKER...]",
	Short: "Replay the recommendation process over historical data",
	Long:  "Run the recommender against historical bars with periodic rebalancing and show performance statistics",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "Start date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "End date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringSliceVar(&backtestStrategies, "strategies", nil, "Strategies to use (default: all enabled)")
	backtestCmd.Flags().IntVar(&backtestTopN, "top-n", 0, "Number of instruments to hold")
	backtestCmd.Flags().IntVar(&backtestRebalance, "rebalance", 0, "Rebalance period in trading days")
	backtestCmd.Flags().StringVar(&backtestWeighting, "weighting", "", "Position weighting: equal or score")

	backtestCmd.MarkFlagRequired("from")
	backtestCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	fromDate, err := time.Parse("2006-01-02", backtestFrom)
	if err != nil {
		return fmt.Errorf("invalid from date format (expected YYYY-MM-DD): %w", err)
	}
	toDate, err := time.Parse("2006-01-02", backtestTo)
	if err != nil {
		return fmt.Errorf("invalid to date format (expected YYYY-MM-DD): %w", err)
	}
	if toDate.Before(fromDate) {
		return fmt.Errorf("end date must be after start date")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}

	result, err := a.RunBacktest(cmd.Context(), backtest.Config{
		Tickers:         args,
		Strategies:      backtestStrategies,
		Start:           fromDate,
		End:             toDate,
		TopN:            backtestTopN,
		RebalancePeriod: backtestRebalance,
		Weighting:       backtest.Weighting(backtestWeighting),
	})
	if err != nil {
		return err
	}

	fmt.Println("=== QUANTRAIL Backtest ===")
	fmt.Printf("Run:      %s\n", result.RunID)
	fmt.Printf("Tickers:  %s\n", strings.Join(args, ", "))
	fmt.Printf("Period:   %s to %s\n", fromDate.Format("2006-01-02"), toDate.Format("2006-01-02"))
	fmt.Printf("Trades:   %d\n", len(result.Trades))
	fmt.Println()
	fmt.Printf("Total return:      %8.2f%%\n", result.Stats.TotalReturn*100)
	fmt.Printf("Annualized return: %8.2f%%\n", result.Stats.AnnualizedReturn*100)
	fmt.Printf("Sharpe ratio:      %8.2f\n", result.Stats.SharpeRatio)
	fmt.Printf("Max drawdown:      %8.2f%%\n", result.Stats.MaxDrawdown*100)
	fmt.Printf("Volatility:        %8.2f%%\n", result.Stats.Volatility*100)
	fmt.Printf("Win rate:          %8.2f%%\n", result.Stats.WinRate*100)

	return nil
}
