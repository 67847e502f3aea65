package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	claritycash "github.com/clarity-cash/claritycash"
	"github.com/clarity-cash/claritycash/aggregator"
	"github.com/clarity-cash/claritycash/domain"
	apperr "github.com/clarity-cash/claritycash/errors"
)

// defaultLookback bounds the transaction window fetched per request.
const defaultLookback = 365 * 24 * time.Hour

// SpendingService serves the read models over linked accounts:
// transactions with their spending quality scores, the paycheck spending
// summary, and monthly mean scores. Scores come from the external scoring
// engine via domain.ScoreProvider; this service only consumes them.
type SpendingService struct {
	aggregator  aggregator.Client
	credentials domain.CredentialRepository
	scores      domain.ScoreProvider

	// paycheckFloor is the minimum inflow treated as a paycheck.
	paycheckFloor decimal.Decimal
	lookback      time.Duration
	now           func() time.Time
}

// NewSpendingService wires the read side.
func NewSpendingService(
	client aggregator.Client,
	credentials domain.CredentialRepository,
	scores domain.ScoreProvider,
	paycheckFloor decimal.Decimal,
) *SpendingService {
	return &SpendingService{
		aggregator:    client,
		credentials:   credentials,
		scores:        scores,
		paycheckFloor: paycheckFloor,
		lookback:      defaultLookback,
		now:           time.Now,
	}
}

// requireUser enforces that ctx carries a verified identity and, when uid
// is non-empty, that it matches. No data is touched otherwise.
func (s *SpendingService) requireUser(ctx context.Context, uid string) (*domain.UserIdentity, error) {
	identity, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return nil, apperr.NewUnauthenticated("sign in to read spending data")
	}
	if uid != "" && uid != identity.UID {
		return nil, apperr.NewUnauthenticated("requested uid does not match the authenticated user")
	}
	return identity, nil
}

// Transactions returns the scored transactions across every linked item
// for the user, newest first.
func (s *SpendingService) Transactions(ctx context.Context, uid string) ([]domain.ScoredTransaction, error) {
	identity, err := s.requireUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	creds, err := s.credentials.ListByUser(ctx, identity.UID)
	if err != nil {
		if errors.Is(err, claritycash.ErrCredentialNotFound) {
			return nil, apperr.NewNotFound("no linked bank account for user")
		}
		return nil, apperr.NewStorageFailure("failed to load credentials").WithCause(err)
	}
	if len(creds) == 0 {
		return nil, apperr.NewNotFound("no linked bank account for user")
	}

	end := s.now()
	start := end.Add(-s.lookback)

	var scored []domain.ScoredTransaction
	for _, cred := range creds {
		txns, err := s.aggregator.GetTransactions(ctx, cred.AccessToken, start, end)
		if err != nil {
			return nil, err
		}
		for i := range txns {
			scored = append(scored, domain.ScoredTransaction{
				Transaction: txns[i],
				Score:       s.scores.Score(&txns[i]),
			})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Date.After(scored[j].Date)
	})
	return scored, nil
}

// PaycheckSpending summarizes outflows since the most recent paycheck. A
// paycheck is the newest inflow whose magnitude clears the configured
// floor; without one the summary covers the whole window.
func (s *SpendingService) PaycheckSpending(ctx context.Context, uid string) (*domain.PaycheckSummary, error) {
	scored, err := s.Transactions(ctx, uid)
	if err != nil {
		return nil, err
	}

	summary := &domain.PaycheckSummary{
		SpentSincePaycheck: decimal.Zero,
	}

	for i := range scored {
		tx := &scored[i].Transaction
		if tx.Inflow() && tx.Amount.Neg().GreaterThanOrEqual(s.paycheckFloor) {
			summary.LastPaycheckAmount = tx.Amount.Neg()
			summary.LastPaycheckDate = tx.Date
			break // scored is newest-first, so the first hit is the latest paycheck
		}
	}

	for i := range scored {
		tx := &scored[i].Transaction
		if !summary.LastPaycheckDate.IsZero() && tx.Date.Before(summary.LastPaycheckDate) {
			continue
		}
		summary.Transactions = append(summary.Transactions, scored[i])
		if tx.Outflow() && !tx.Pending {
			summary.SpentSincePaycheck = summary.SpentSincePaycheck.Add(tx.Amount)
		}
	}

	return summary, nil
}

// MeanMonthlyScores averages the spending quality score per calendar
// month, oldest month first.
func (s *SpendingService) MeanMonthlyScores(ctx context.Context, uid string) ([]domain.MonthlyScore, error) {
	scored, err := s.Transactions(ctx, uid)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[string]*bucket)
	for i := range scored {
		month := scored[i].Date.Format("2006-01")
		b, ok := buckets[month]
		if !ok {
			b = &bucket{}
			buckets[month] = b
		}
		b.sum += scored[i].Score
		b.count++
	}

	months := make([]domain.MonthlyScore, 0, len(buckets))
	for month, b := range buckets {
		months = append(months, domain.MonthlyScore{
			Month:     month,
			MeanScore: b.sum / float64(b.count),
			Count:     b.count,
		})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return months, nil
}

// Accounts lists the bank accounts under every linked item. The access
// token is always resolved server-side from the stored credential.
func (s *SpendingService) Accounts(ctx context.Context, uid string) ([]aggregator.Account, error) {
	identity, err := s.requireUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	creds, err := s.credentials.ListByUser(ctx, identity.UID)
	if err != nil {
		return nil, apperr.NewStorageFailure("failed to load credentials").WithCause(err)
	}
	if len(creds) == 0 {
		return nil, apperr.NewNotFound("no linked bank account for user")
	}

	var accounts []aggregator.Account
	for _, cred := range creds {
		batch, err := s.aggregator.GetAccounts(ctx, cred.AccessToken)
		if err != nil {
			return nil, err
		}
		for i := range batch {
			batch[i].ItemID = cred.ItemID
		}
		accounts = append(accounts, batch...)
	}
	return accounts, nil
}
