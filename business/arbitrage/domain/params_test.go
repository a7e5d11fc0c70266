package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	if !p.FeePercent.Equal(decimal.RequireFromString("0.15")) {
		t.Errorf("FeePercent = %s, want 0.15", p.FeePercent)
	}
	if !p.CapitalInvested.Equal(decimal.NewFromInt(100)) {
		t.Errorf("CapitalInvested = %s, want 100", p.CapitalInvested)
	}
	if p.Cooldown != 30*time.Second {
		t.Errorf("Cooldown = %s, want 30s", p.Cooldown)
	}
	if !p.MinSpreadPercent.Equal(decimal.RequireFromString("0.4")) {
		t.Errorf("MinSpreadPercent = %s, want 0.4", p.MinSpreadPercent)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr bool
	}{
		{
			name:   "defaults_valid",
			mutate: func(p *Params) {},
		},
		{
			name:   "zero_fee_valid",
			mutate: func(p *Params) { p.FeePercent = decimal.Zero },
		},
		{
			name:    "negative_fee",
			mutate:  func(p *Params) { p.FeePercent = decimal.RequireFromString("-0.1") },
			wantErr: true,
		},
		{
			name:    "negative_capital",
			mutate:  func(p *Params) { p.CapitalInvested = decimal.NewFromInt(-1) },
			wantErr: true,
		},
		{
			name:    "negative_cooldown",
			mutate:  func(p *Params) { p.Cooldown = -time.Second },
			wantErr: true,
		},
		{
			name:   "zero_cooldown_valid",
			mutate: func(p *Params) { p.Cooldown = 0 },
		},
		{
			name:   "negative_min_spread_valid",
			mutate: func(p *Params) { p.MinSpreadPercent = decimal.RequireFromString("-1") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)

			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
