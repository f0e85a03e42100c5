// Package custody adapts external currency custody to the engine's ledger
// interface. Premiums flow from holders into a pool account; payouts flow
// back out. Every transfer is balance-checked, never assumed.
package custody

import (
	"context"
	"fmt"
	"sync"

	"travelsure/internal/services"
)

// PoolAccount is the account holding collected premiums and funding payouts.
const PoolAccount = "travelsure:pool"

// MemoryLedger is an in-process custody ledger for tests and storage-less
// runs.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]int64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]int64)}
}

// Deposit credits a holder directly, bypassing the pool. Test and demo
// seeding only.
func (l *MemoryLedger) Deposit(holder string, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[holder] += amount
}

// FundPool capitalizes the pool directly. Without it a fresh deployment
// could not clear its first payout until collected premiums covered one.
func (l *MemoryLedger) FundPool(_ context.Context, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[PoolAccount] += amount
	return nil
}

func (l *MemoryLedger) TransferIn(_ context.Context, from string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", services.ErrInsufficientFunds, from, l.balances[from], amount)
	}
	l.balances[from] -= amount
	l.balances[PoolAccount] += amount
	return nil
}

func (l *MemoryLedger) TransferOut(_ context.Context, to string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[PoolAccount] < amount {
		return fmt.Errorf("%w: pool has %d, needs %d", services.ErrInsufficientFunds, l.balances[PoolAccount], amount)
	}
	l.balances[PoolAccount] -= amount
	l.balances[to] += amount
	return nil
}

func (l *MemoryLedger) BalanceOf(_ context.Context, holder string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[holder], nil
}
