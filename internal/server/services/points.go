package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/common"
	"github.com/dmitrijs2005/pointpool/internal/dbx"
	"github.com/dmitrijs2005/pointpool/internal/logging"
	"github.com/dmitrijs2005/pointpool/internal/server/config"
	"github.com/dmitrijs2005/pointpool/internal/server/models"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/repomanager"
)

// PointsService moves points between the shared pool, user ledgers and
// champions. Every mutation is one transaction; none of them retry.
type PointsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cooldown    time.Duration
	capacity    int64
	refillDelay time.Duration
	logger      logging.Logger
	nowFunc     func() time.Time
}

func NewPointsService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *PointsService {
	return &PointsService{
		db:          db,
		repomanager: m,
		cooldown:    cfg.CollectCooldown,
		capacity:    cfg.PoolCapacity,
		refillDelay: cfg.PoolRefillDelay,
		logger:      logger.With("module", "points"),
		nowFunc:     time.Now,
	}
}

// Collect grants the user one point from the shared pool and returns the
// user's new balance.
//
// The cooldown check, the pool decrement, the refill of a drained pool and
// the credit run in one serializable transaction. Losing a race on the pool
// row surfaces as common.ErrConflict, unless the winner was a collect by
// the same user: then the committed cooldown applies and the result is a
// *common.TooSoonError.
func (s *PointsService) Collect(ctx context.Context, userID int64) (int64, error) {
	now := s.nowFunc()
	var balance int64

	err := dbx.WithTx(ctx, s.db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		ledger := s.repomanager.Ledger(tx)
		pool := s.repomanager.Pool(tx)

		next, err := ledger.GetCooldown(ctx, userID)
		if err != nil {
			return err
		}
		if now.Before(next) {
			return &common.TooSoonError{NextEligible: next}
		}

		left, err := pool.Take(ctx, now)
		if err != nil {
			return err
		}
		if left <= 0 {
			if err := pool.Refill(ctx, s.capacity, now.Add(s.refillDelay)); err != nil {
				return err
			}
			s.logger.Info(ctx, "pool drained, refill scheduled",
				"capacity", s.capacity, "open_at", now.Add(s.refillDelay))
		}

		balance, err = ledger.Credit(ctx, userID, 1, now.Add(s.cooldown))
		return err
	})
	if errors.Is(err, common.ErrConflict) {
		err = s.cooldownAfterConflict(ctx, userID, now, err)
	}
	if err != nil {
		return 0, s.wrap(ctx, "collect", userID, err)
	}

	s.logger.Debug(ctx, "points collected", "user_id", userID, "balance", balance)
	return balance, nil
}

// cooldownAfterConflict reads the committed cooldown outside the failed
// transaction. Nothing is retried.
func (s *PointsService) cooldownAfterConflict(ctx context.Context, userID int64, now time.Time, conflict error) error {
	b, err := s.repomanager.Ledger(s.db).Balance(ctx, userID)
	if err != nil {
		return conflict
	}
	if now.Before(b.CanGetPointsTime) {
		return &common.TooSoonError{NextEligible: b.CanGetPointsTime}
	}
	return conflict
}

// Assign moves one point from the user to the champion and returns the
// champion's new total.
func (s *PointsService) Assign(ctx context.Context, userID, championID int64) (int64, error) {
	return s.Transfer(ctx, userID, championID, 1)
}

// Transfer debits delta from the user and credits it to the champion in one
// transaction. An unknown champion rolls the debit back.
func (s *PointsService) Transfer(ctx context.Context, userID, championID, delta int64) (int64, error) {
	if delta <= 0 {
		return 0, common.ErrInvalidAmount
	}

	var total int64
	err := dbx.WithTx(ctx, s.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Ledger(tx).Debit(ctx, userID, delta); err != nil {
			return err
		}
		var err error
		total, err = s.repomanager.Champions(tx).Credit(ctx, championID, delta)
		return err
	})
	if err != nil {
		return 0, s.wrap(ctx, "assign", userID, err)
	}

	s.logger.Debug(ctx, "points assigned",
		"user_id", userID, "champion_id", championID, "delta", delta, "champion_points", total)
	return total, nil
}

// EnsurePool creates the pool row at the configured capacity, open now,
// unless it already exists.
func (s *PointsService) EnsurePool(ctx context.Context) error {
	if err := s.repomanager.Pool(s.db).Ensure(ctx, s.capacity, s.nowFunc()); err != nil {
		return fmt.Errorf("ensure pool: %w", err)
	}
	return nil
}

// Balance returns the user's points and next collect time.
func (s *PointsService) Balance(ctx context.Context, userID int64) (*models.Balance, error) {
	b, err := s.repomanager.Ledger(s.db).Balance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}
	return b, nil
}

// PoolStatus returns the current pool row.
func (s *PointsService) PoolStatus(ctx context.Context) (*models.Pool, error) {
	p, err := s.repomanager.Pool(s.db).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("pool status: %w", err)
	}
	return p, nil
}

// Now is the clock used for collects, exposed so transports can report
// whether the pool is open.
func (s *PointsService) Now() time.Time {
	return s.nowFunc()
}

func (s *PointsService) wrap(ctx context.Context, op string, userID int64, err error) error {
	switch common.KindOf(err) {
	case common.KindResource:
		s.logger.Debug(ctx, op+" rejected", "user_id", userID, "reason", err)
	case common.KindConsistency:
		s.logger.Info(ctx, op+" conflict", "user_id", userID)
	default:
		if !errors.Is(err, context.Canceled) {
			s.logger.Error(ctx, op+" failed", "user_id", userID, "error", err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
