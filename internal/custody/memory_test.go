package custody

import (
	"context"
	"testing"

	"travelsure/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedger_TransferIn(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()
	ledger.Deposit("alice", 500)

	require.NoError(t, ledger.TransferIn(ctx, "alice", 300))

	balance, err := ledger.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(200), balance)

	pool, err := ledger.BalanceOf(ctx, PoolAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(300), pool)

	// Over the remaining balance: rejected with nothing moved.
	err = ledger.TransferIn(ctx, "alice", 201)
	assert.ErrorIs(t, err, services.ErrInsufficientFunds)

	balance, _ = ledger.BalanceOf(ctx, "alice")
	assert.Equal(t, int64(200), balance)
}

func TestMemoryLedger_TransferOut(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()
	ledger.Deposit(PoolAccount, 1000)

	require.NoError(t, ledger.TransferOut(ctx, "bob", 400))

	balance, err := ledger.BalanceOf(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(400), balance)

	err = ledger.TransferOut(ctx, "bob", 601)
	assert.ErrorIs(t, err, services.ErrInsufficientFunds)

	pool, _ := ledger.BalanceOf(ctx, PoolAccount)
	assert.Equal(t, int64(600), pool)
}

func TestMemoryLedger_FundPool(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	// Without capital the pool cannot pay anything out.
	err := ledger.TransferOut(ctx, "bob", 100)
	assert.ErrorIs(t, err, services.ErrInsufficientFunds)

	require.NoError(t, ledger.FundPool(ctx, 1_000))
	require.NoError(t, ledger.TransferOut(ctx, "bob", 100))

	pool, err := ledger.BalanceOf(ctx, PoolAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(900), pool)
}

func TestMemoryLedger_UnknownHolderIsZero(t *testing.T) {
	ledger := NewMemoryLedger()

	balance, err := ledger.BalanceOf(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, balance)
}
