// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"arbidash/business/arbitrage/domain"
	pricingDomain "arbidash/business/pricing/domain"
)

// Store is the in-memory state shared between the poller and the
// dashboard: accumulated price history, the simulated transaction
// ledger, and the runtime-editable parameters. All methods are safe
// for concurrent use.
type Store struct {
	mu           sync.RWMutex
	prices       []pricingDomain.PriceRecord
	transactions []domain.Transaction
	params       domain.Params
	lastExecuted time.Time
	maxHistory   int // 0 = unbounded
	now          func() time.Time
}

// NewStore creates a Store with the given parameters. maxHistory caps
// the retained price records; zero keeps everything.
func NewStore(params domain.Params, maxHistory int) *Store {
	return &Store{
		params:     params,
		maxHistory: maxHistory,
		now:        time.Now,
	}
}

// AppendPrices adds a batch of price records to the history, trimming
// the oldest records past the history cap.
func (s *Store) AppendPrices(records []pricingDomain.PriceRecord) {
	if len(records) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prices = append(s.prices, records...)
	if s.maxHistory > 0 && len(s.prices) > s.maxHistory {
		excess := len(s.prices) - s.maxHistory
		s.prices = append(s.prices[:0:0], s.prices[excess:]...)
	}
}

// PriceSnapshot returns a copy of the accumulated price history.
func (s *Store) PriceSnapshot() []pricingDomain.PriceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]pricingDomain.PriceRecord, len(s.prices))
	copy(snapshot, s.prices)
	return snapshot
}

// PriceCount returns the number of retained price records.
func (s *Store) PriceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.prices)
}

// Transactions returns a copy of the simulated execution ledger.
func (s *Store) Transactions() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ledger := make([]domain.Transaction, len(s.transactions))
	copy(ledger, s.transactions)
	return ledger
}

// TotalGain sums the fee-adjusted profit across the ledger.
func (s *Store) TotalGain() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, tx := range s.transactions {
		total = total.Add(tx.NetProfit)
	}
	return total
}

// Params returns the current parameter set.
func (s *Store) Params() domain.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// SetParams replaces the parameter set. Invalid parameters are rejected.
func (s *Store) SetParams(p domain.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p
	return nil
}

// Execute records a simulated execution for the opportunity if the
// cooldown window has elapsed. The cooldown check and the ledger
// append happen under one lock, so concurrent callers cannot both
// slip through the same window. Returns the recorded transaction and
// whether it was accepted.
func (s *Store) Execute(opp domain.Opportunity) (domain.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nowTime := s.now()
	if !s.lastExecuted.IsZero() && nowTime.Sub(s.lastExecuted) < s.params.Cooldown {
		return domain.Transaction{}, false
	}

	tx := domain.Transaction{
		Opportunity: opp,
		ExecutedAt:  nowTime,
	}
	s.transactions = append(s.transactions, tx)
	s.lastExecuted = nowTime
	return tx, true
}

// LastExecuted returns the time of the most recent simulated execution.
func (s *Store) LastExecuted() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastExecuted
}
