package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sanjaymgicganja8597-maker/Nifty-money/analytics"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/journal"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/ledger"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/pkg/money"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Analyze recorded trades from a SQLite journal",
	Long: `Compute performance analytics over the fills recorded by a previous run:
win rate, profit factor, risk/reward, calendar P&L buckets and a per-symbol
breakdown.

Examples:
  niftymoney stats
  niftymoney stats --db niftymoney.db --period WEEKLY`,
	RunE: runStats,
}

var (
	statsDBPath string
	statsPeriod string
)

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVarP(&statsDBPath, "db", "d", "./niftymoney.db", "path to SQLite journal DB")
	statsCmd.Flags().StringVarP(&statsPeriod, "period", "p", "DAILY", "P&L bucketing: DAILY, WEEKLY or MONTHLY")
}

func runStats(cmd *cobra.Command, args []string) error {
	period := analytics.Period(strings.ToUpper(statsPeriod))
	switch period {
	case analytics.Daily, analytics.Weekly, analytics.Monthly:
	default:
		return fmt.Errorf("unknown period %q", statsPeriod)
	}

	j, err := journal.NewSQLite(statsDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	fills, err := j.ListFills()
	if err != nil {
		return fmt.Errorf("query fills: %w", err)
	}

	orders := make([]ledger.Order, 0, len(fills))
	for _, f := range fills {
		orders = append(orders, ledger.Order{
			ID:          f.OrderID,
			Symbol:      f.Symbol,
			Side:        ledger.Side(f.Side),
			Product:     ledger.Product(f.Product),
			Kind:        ledger.ExecKind(f.Kind),
			Quantity:    f.Quantity,
			Price:       f.Price,
			Status:      ledger.Status(f.Status),
			Time:        f.Time,
			RealizedPnL: f.RealizedPnL,
		})
	}

	report := analytics.Analyze(orders, period)
	printReport(report)
	return nil
}

func printReport(r analytics.Report) {
	fmt.Printf("Trades:        %d (%d wins, %d losses)\n", r.TotalTrades, r.WinningTrades, r.LosingTrades)
	fmt.Printf("Win Rate:      %.1f%%\n", r.WinRate)
	fmt.Printf("Profit Factor: %.2f\n", r.ProfitFactor)
	fmt.Printf("Risk/Reward:   %.2f\n", r.RiskReward)
	fmt.Printf("Total Returns: %s\n", money.INR(r.TotalReturns))
	fmt.Printf("Gross Profit:  %s   Gross Loss: %s\n", money.INR(r.GrossProfit), money.INR(r.GrossLoss))
	fmt.Printf("Avg Win:       %s   Avg Loss:   %s\n", money.INR(r.AvgWin), money.INR(r.AvgLoss))
	fmt.Printf("Best Trade:    %s   Worst:      %s\n", money.INR(r.MaxProfit), money.INR(r.MaxLoss))

	if len(r.Buckets) > 0 {
		fmt.Println("\nP&L by period:")
		for _, b := range r.Buckets {
			fmt.Printf("  %-10s %s\n", b.Label, money.INR(b.PnL))
		}
	}
	if len(r.Symbols) > 0 {
		fmt.Println("\nBy symbol:")
		for _, s := range r.Symbols {
			fmt.Printf("  %-12s %4d trades  %3d wins  %s\n", s.Symbol, s.Trades, s.Wins, money.INR(s.PnL))
		}
	}
}
