package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"debttrack/internal/analytics"
	"debttrack/internal/charts"
	"debttrack/internal/core"
	"debttrack/internal/interest"
	"debttrack/internal/ledger"
	"debttrack/internal/projection"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrUnknownChart = errors.New("unknown chart kind")
)

// ChartKind names a per-account chart.
type ChartKind string

const (
	ChartBalanceReduction     ChartKind = "balance-reduction"
	ChartInterest             ChartKind = "interest"
	ChartPaymentDistribution  ChartKind = "payment-distribution"
	ChartProjectionComparison ChartKind = "projection-comparison"
)

// maxConcurrentLoads bounds parallel ledger reads for one portfolio.
const maxConcurrentLoads = 4

type AnalyticsConfig struct {
	LookbackMonths int
	HistoryMonths  int
	Now            func() time.Time
}

// AnalyticsService loads ledgers, checks ownership and hands them to the
// analytics, projection and chart packages.
type AnalyticsService struct {
	reader ledger.Reader
	cfg    AnalyticsConfig
}

func NewAnalyticsService(reader ledger.Reader, cfg AnalyticsConfig) *AnalyticsService {
	if cfg.LookbackMonths <= 0 {
		cfg.LookbackMonths = projection.DefaultLookbackMonths
	}
	if cfg.HistoryMonths <= 0 {
		cfg.HistoryMonths = interest.DefaultMonths
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AnalyticsService{reader: reader, cfg: cfg}
}

func (s *AnalyticsService) now() time.Time {
	return s.cfg.Now().UTC()
}

// authorize returns the account if it exists and belongs to userID.
func authorize(ctx context.Context, r ledger.AccountReader, userID, accountID int64) (core.Account, error) {
	acct, err := r.GetAccount(ctx, accountID)
	if err != nil {
		return core.Account{}, fmt.Errorf("get account %d: %w", accountID, err)
	}
	if acct.UserID != userID {
		slog.WarnContext(ctx, "Account access denied", "account_id", accountID, "user_id", userID)
		return core.Account{}, ErrForbidden
	}
	return acct, nil
}

// Ledger loads one owned account's full ledger.
func (s *AnalyticsService) Ledger(ctx context.Context, userID, accountID int64) (core.AccountLedger, error) {
	acct, err := authorize(ctx, s.reader, userID, accountID)
	if err != nil {
		return core.AccountLedger{}, err
	}
	return ledger.LoadFor(ctx, s.reader, acct)
}

func (s *AnalyticsService) AccountAnalytics(ctx context.Context, userID, accountID int64) (analytics.AccountAnalytics, error) {
	l, err := s.Ledger(ctx, userID, accountID)
	if err != nil {
		return analytics.AccountAnalytics{}, err
	}
	a := analytics.ForAccount(l, s.now(), s.cfg.LookbackMonths)
	if !a.ProjectedPayoff.Available() {
		slog.DebugContext(ctx, "Payoff projection unavailable", "account_id", accountID, "reason", a.ProjectedPayoff.Reason)
	}
	return a, nil
}

// Scenarios runs the payoff comparison. A non-positive lookback uses the
// configured default.
func (s *AnalyticsService) Scenarios(ctx context.Context, userID, accountID int64, lookbackMonths int) ([]projection.Scenario, error) {
	l, err := s.Ledger(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	if lookbackMonths <= 0 {
		lookbackMonths = s.cfg.LookbackMonths
	}
	return projection.BuildScenarios(l.Account, l.Transactions, s.now(), lookbackMonths), nil
}

func (s *AnalyticsService) InterestHistory(ctx context.Context, userID, accountID int64, months int) (interest.History, error) {
	l, err := s.Ledger(ctx, userID, accountID)
	if err != nil {
		return interest.History{}, err
	}
	if months <= 0 {
		months = s.cfg.HistoryMonths
	}
	return interest.Reconstruct(l, s.now(), months), nil
}

func (s *AnalyticsService) AccountChart(ctx context.Context, userID, accountID int64, kind ChartKind) (charts.ChartSeries, error) {
	switch kind {
	case ChartBalanceReduction, ChartInterest, ChartPaymentDistribution, ChartProjectionComparison:
	default:
		return charts.ChartSeries{}, fmt.Errorf("%w: %q", ErrUnknownChart, kind)
	}

	l, err := s.Ledger(ctx, userID, accountID)
	if err != nil {
		return charts.ChartSeries{}, err
	}
	now := s.now()
	switch kind {
	case ChartBalanceReduction:
		return charts.BalanceReduction(l.Snapshots), nil
	case ChartInterest:
		return charts.InterestAccumulation(interest.Reconstruct(l, now, s.cfg.HistoryMonths)), nil
	case ChartPaymentDistribution:
		return charts.PaymentDistribution(l.Transactions), nil
	default:
		scenarios := projection.BuildScenarios(l.Account, l.Transactions, now, s.cfg.LookbackMonths)
		return charts.ProjectionComparison(l.Account.Balance, l.Account.InterestRate, scenarios), nil
	}
}

// portfolio loads every account of userID concurrently, preserving the
// account order.
func (s *AnalyticsService) portfolio(ctx context.Context, userID int64) ([]core.AccountLedger, error) {
	accounts, err := s.reader.ListAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	ledgers := make([]core.AccountLedger, len(accounts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, acct := range accounts {
		i, acct := i, acct
		g.Go(func() error {
			l, err := ledger.LoadFor(gctx, s.reader, acct)
			if err != nil {
				return err
			}
			ledgers[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load portfolio for user %d: %w", userID, err)
	}
	return ledgers, nil
}

func (s *AnalyticsService) Portfolio(ctx context.Context, userID int64) (analytics.OverallAnalytics, error) {
	ledgers, err := s.portfolio(ctx, userID)
	if err != nil {
		return analytics.OverallAnalytics{}, err
	}
	return analytics.ForPortfolio(ledgers, s.now(), s.cfg.LookbackMonths), nil
}

func (s *AnalyticsService) PortfolioTrends(ctx context.Context, userID int64) (analytics.TrendAnalysis, error) {
	ledgers, err := s.portfolio(ctx, userID)
	if err != nil {
		return analytics.TrendAnalysis{}, err
	}
	return analytics.Trends(ledgers), nil
}

func (s *AnalyticsService) PortfolioBalances(ctx context.Context, userID int64) (charts.ChartSeries, error) {
	ledgers, err := s.portfolio(ctx, userID)
	if err != nil {
		return charts.ChartSeries{}, err
	}
	return charts.MultiAccountBalance(ledgers), nil
}
