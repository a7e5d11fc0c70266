package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Params holds the tunable detection and simulation parameters. The
// dashboard edits them at runtime; the detector reads them every cycle.
type Params struct {
	// FeePercent is the per-leg trading fee applied to both the buy
	// and the sell side, e.g. 0.15 means 0.15%.
	FeePercent decimal.Decimal

	// CapitalInvested is the nominal capital shown in the dashboard.
	// Profit is computed per unit, so it does not enter the math.
	CapitalInvested decimal.Decimal

	// Cooldown is the minimum time between two simulated executions.
	Cooldown time.Duration

	// MinSpreadPercent is the detection threshold, inclusive.
	MinSpreadPercent decimal.Decimal
}

// DefaultParams returns the out-of-the-box parameter set.
func DefaultParams() Params {
	return Params{
		FeePercent:       decimal.RequireFromString("0.15"),
		CapitalInvested:  decimal.NewFromInt(100),
		Cooldown:         30 * time.Second,
		MinSpreadPercent: decimal.RequireFromString("0.4"),
	}
}

// Validate checks the parameters for nonsensical values.
func (p Params) Validate() error {
	if p.FeePercent.IsNegative() {
		return fmt.Errorf("fee percent must not be negative")
	}
	if p.CapitalInvested.IsNegative() {
		return fmt.Errorf("capital invested must not be negative")
	}
	if p.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative")
	}
	return nil
}
