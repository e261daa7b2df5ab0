package reset

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/config"
)

type allowanceStore interface {
	ResetDailyAllowances(ctx context.Context, tier string, swipes, superLikes int) (int64, error)
	ClearExpiredBoosts(ctx context.Context, now time.Time) (int64, error)
}

// Job replenishes per-tier daily swipe allowances and retires expired
// boosts. It is meant to run once per quota period, at UTC midnight.
type Job struct {
	store      allowanceStore
	allowances map[string]config.TierAllowance
	now        func() time.Time
	logger     *zap.Logger
}

func New(store allowanceStore, allowances map[string]config.TierAllowance, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		store:      store,
		allowances: allowances,
		now:        time.Now,
		logger:     logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.store == nil || len(j.allowances) == 0 {
		return nil
	}

	tiers := make([]string, 0, len(j.allowances))
	for tier := range j.allowances {
		tiers = append(tiers, tier)
	}
	sort.Strings(tiers)

	var total int64
	for _, tier := range tiers {
		allowance := j.allowances[tier]
		rows, err := j.store.ResetDailyAllowances(ctx, tier, allowance.DailySwipes, allowance.DailySuperLikes)
		if err != nil {
			return fmt.Errorf("reset daily allowances for tier %s: %w", tier, err)
		}
		total += rows
	}

	cleared, err := j.store.ClearExpiredBoosts(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("clear expired boosts: %w", err)
	}

	j.logger.Info("daily allowance reset completed",
		zap.Int64("profiles_reset", total),
		zap.Int64("boosts_cleared", cleared),
	)
	return nil
}
