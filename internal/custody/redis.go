package custody

import (
	"context"
	"fmt"

	"travelsure/internal/services"

	"github.com/redis/go-redis/v9"
)

// transferScript moves amount from one balance to another only if the source
// covers it. Doing the check and both moves in one Lua script keeps the
// transfer atomic against concurrent clients of the same Redis.
var transferScript = redis.NewScript(`
local from = KEYS[1]
local to = KEYS[2]
local amount = tonumber(ARGV[1])
local balance = tonumber(redis.call('GET', from) or '0')
if balance < amount then
	return -1
end
redis.call('DECRBY', from, amount)
redis.call('INCRBY', to, amount)
return 1
`)

// RedisLedger is a Redis-backed custody ledger. Balances live under one key
// per holder in the currency's smallest unit.
type RedisLedger struct {
	client    *redis.Client
	namespace string
}

func NewRedisLedger(client *redis.Client, namespace string) *RedisLedger {
	return &RedisLedger{client: client, namespace: namespace}
}

func (l *RedisLedger) balanceKey(holder string) string {
	return fmt.Sprintf("%s:balance:%s", l.namespace, holder)
}

func (l *RedisLedger) transfer(ctx context.Context, from, to string, amount int64) error {
	result, err := transferScript.Run(ctx, l.client, []string{l.balanceKey(from), l.balanceKey(to)}, amount).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", services.ErrTransferFailed, err)
	}
	if result < 0 {
		return fmt.Errorf("%w: %s cannot cover %d", services.ErrInsufficientFunds, from, amount)
	}
	return nil
}

func (l *RedisLedger) TransferIn(ctx context.Context, from string, amount int64) error {
	return l.transfer(ctx, from, PoolAccount, amount)
}

func (l *RedisLedger) TransferOut(ctx context.Context, to string, amount int64) error {
	return l.transfer(ctx, PoolAccount, to, amount)
}

// FundPool credits the pool account directly, the capitalization path for a
// fresh deployment whose premiums do not yet cover a payout.
func (l *RedisLedger) FundPool(ctx context.Context, amount int64) error {
	if err := l.client.IncrBy(ctx, l.balanceKey(PoolAccount), amount).Err(); err != nil {
		return fmt.Errorf("failed to fund pool: %w", err)
	}
	return nil
}

func (l *RedisLedger) BalanceOf(ctx context.Context, holder string) (int64, error) {
	balance, err := l.client.Get(ctx, l.balanceKey(holder)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read balance of %s: %w", holder, err)
	}
	return balance, nil
}
