package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "niftymoney",
	Short: "A paper-trading simulator for Indian equities and indices",
	Long: `NiftyMoney is a paper-trading simulator written in Go.

It provides:
  - A synthetic NSE price feed with a bounded random walk
  - Netting margin accounting with intraday and delivery products
  - Target/stoploss triggers and resting limit orders
  - Trade journaling to SQLite or CSV with performance analytics
  - A websocket stream and JSON API for live dashboards
  - Optional AI market commentary via Gemini`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
