package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"

	"bitbucket.org/flact/governance_backend/config"
)

// AcquireCompanyVotingLock serializes workplace voting-value mutations per
// company across instances. The 100% sum check is read-then-validate, so
// without this two concurrent updates could both pass the check.
func AcquireCompanyVotingLock(ctx context.Context, companyId int) (*redislock.Lock, error) {
	locker := config.GetRedisLock()
	key := fmt.Sprintf("company-voting:%d", companyId)

	lock, err := locker.Obtain(ctx, key, 30*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(200*time.Millisecond), 25),
	})
	if err != nil {
		return nil, fmt.Errorf("could not acquire voting lock for company_id=%d: %w", companyId, err)
	}
	return lock, nil
}

func ReleaseCompanyVotingLock(ctx context.Context, lock *redislock.Lock) {
	if lock == nil {
		return
	}
	_ = lock.Release(ctx)
}
