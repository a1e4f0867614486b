package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/core"
	"expensetracker/internal/stats"
	"expensetracker/internal/store"
)

const (
	topDaysLimit       = 3
	changeMonthsLimit  = 2
	predictMonthsLimit = 3
)

// StatsStore is everything the statistics service needs from a backend.
type StatsStore interface {
	store.AggregateReader
	UserExists(ctx context.Context, id int64) (bool, error)
}

// Statistics is the response envelope. TopSpendingDays is always a
// non-nil slice, MonthlyChange carries its own "not available" sentinel
// and NextMonthPrediction defaults to zero with no history.
type Statistics struct {
	TopSpendingDays     []stats.DayTotal `json:"topSpendingDays"`
	MonthlyChange       stats.Change     `json:"monthlyChange"`
	NextMonthPrediction core.Money       `json:"nextMonthPrediction"`
}

// StatisticsService computes the statistics envelope for one user. The
// aggregates are recomputed from the live store on every call; nothing is
// cached, so a freshly created expense shows up on the next request.
type StatisticsService struct {
	store StatsStore
}

func NewStatisticsService(st StatsStore) *StatisticsService {
	return &StatisticsService{store: st}
}

// UserStatistics fans the three aggregation reads out concurrently and
// joins them into the envelope. They are independent reads, but a failure
// of any one fails the whole request rather than returning partial data.
func (s *StatisticsService) UserStatistics(ctx context.Context, userID int64) (Statistics, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return Statistics{}, err
	}

	var (
		topDays   []stats.DayTotal
		change    stats.Change
		predicted core.Money
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		topDays, err = s.store.TopDays(gctx, userID, topDaysLimit)
		return err
	})
	g.Go(func() error {
		monthly, err := s.store.MonthlyTotals(gctx, userID, changeMonthsLimit)
		if err != nil {
			return err
		}
		change = stats.ChangeFromMonthly(monthly)
		return nil
	})
	g.Go(func() error {
		monthly, err := s.store.MonthlyTotals(gctx, userID, predictMonthsLimit)
		if err != nil {
			return err
		}
		predicted = stats.PredictFromMonthly(monthly)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Statistics{}, fmt.Errorf("compute statistics for user %d: %w", userID, err)
	}

	if topDays == nil {
		topDays = []stats.DayTotal{}
	}

	return Statistics{
		TopSpendingDays:     topDays,
		MonthlyChange:       change,
		NextMonthPrediction: predicted,
	}, nil
}

// TopSpendingDays serves the standalone top-days operation.
func (s *StatisticsService) TopSpendingDays(ctx context.Context, userID int64) ([]stats.DayTotal, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}
	topDays, err := s.store.TopDays(ctx, userID, topDaysLimit)
	if err != nil {
		return nil, fmt.Errorf("top spending days for user %d: %w", userID, err)
	}
	if topDays == nil {
		topDays = []stats.DayTotal{}
	}
	return topDays, nil
}

// MonthlyChange serves the standalone month-over-month operation.
func (s *StatisticsService) MonthlyChange(ctx context.Context, userID int64) (stats.Change, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return stats.Change{}, err
	}
	monthly, err := s.store.MonthlyTotals(ctx, userID, changeMonthsLimit)
	if err != nil {
		return stats.Change{}, fmt.Errorf("monthly change for user %d: %w", userID, err)
	}
	return stats.ChangeFromMonthly(monthly), nil
}

// PredictNextMonth serves the standalone prediction operation.
func (s *StatisticsService) PredictNextMonth(ctx context.Context, userID int64) (core.Money, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return core.Money{}, err
	}
	monthly, err := s.store.MonthlyTotals(ctx, userID, predictMonthsLimit)
	if err != nil {
		return core.Money{}, fmt.Errorf("predict next month for user %d: %w", userID, err)
	}
	return stats.PredictFromMonthly(monthly), nil
}

func (s *StatisticsService) checkUser(ctx context.Context, userID int64) error {
	ok, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user %d: %w", userID, err)
	}
	if !ok {
		return fmt.Errorf("user %d: %w", userID, store.ErrNotFound)
	}
	return nil
}
