// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"arbidash/business/arbitrage/domain"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new ConsoleReporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{
		out: os.Stdout,
	}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Arbitrage Dashboard Started")
	fmt.Fprintln(r.out, "===========================")
	return nil
}

// ReportOpportunity outputs a detected opportunity to the console.
func (r *ConsoleReporter) ReportOpportunity(opp *domain.Opportunity) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintln(r.out, "ARBITRAGE OPPORTUNITY DETECTED")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "Timestamp:      %s\n", opp.DetectedAt.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Symbol:         %s\n", opp.Symbol)
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "PRICES")
	fmt.Fprintf(r.out, "  Buy  (%s):  $%s\n", opp.BuyBroker.String(), opp.BuyPrice.StringFixed(4))
	fmt.Fprintf(r.out, "  Sell (%s):  $%s\n", opp.SellBroker.String(), opp.SellPrice.StringFixed(4))
	fmt.Fprintf(r.out, "  Spread:         %s%%\n", opp.SpreadPercent.StringFixed(4))
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "PROFIT")
	fmt.Fprintf(r.out, "  Net (per unit): $%s\n", opp.NetProfit.StringFixed(6))
	fmt.Fprintln(r.out, "================================================================================")
}

// ReportTransaction outputs a simulated execution to the console.
func (r *ConsoleReporter) ReportTransaction(tx *domain.Transaction) {
	fmt.Fprintf(r.out, "[%s] EXECUTED %s: buy %s @ $%s, sell %s @ $%s, profit $%s\n",
		tx.ExecutedAt.Format("15:04:05"),
		tx.Symbol,
		tx.BuyBroker.String(),
		tx.BuyPrice.StringFixed(4),
		tx.SellBroker.String(),
		tx.SellPrice.StringFixed(4),
		tx.NetProfit.StringFixed(6),
	)
}

// ReportBrokerError outputs a broker fetch failure to the console.
func (r *ConsoleReporter) ReportBrokerError(broker string, err error) {
	fmt.Fprintf(r.out, "[%s] BROKER ERROR %s: %v\n",
		time.Now().Format("15:04:05"), broker, err)
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Arbitrage Dashboard Stopped")
	return nil
}
