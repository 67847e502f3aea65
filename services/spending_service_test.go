package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clarity-cash/claritycash/aggregator"
	"github.com/clarity-cash/claritycash/domain"
	"github.com/clarity-cash/claritycash/errors"
	"github.com/clarity-cash/claritycash/scoring"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func txn(id string, date time.Time, amount string, pending bool) domain.Transaction {
	return domain.Transaction{
		TransactionID: id,
		Date:          date,
		Merchant:      "merchant-" + id,
		Amount:        decimal.RequireFromString(amount),
		Pending:       pending,
	}
}

func newSpendingFixture(floor string) (*SpendingService, *MockAggregator, *MockCredentialRepository) {
	agg := new(MockAggregator)
	repo := new(MockCredentialRepository)
	svc := NewSpendingService(agg, repo, scoring.FixedProvider{Value: 50}, decimal.RequireFromString(floor))
	return svc, agg, repo
}

func TestSpendingService_Transactions_NewestFirstAcrossItems(t *testing.T) {
	svc, agg, repo := newSpendingFixture("500")

	repo.On("ListByUser", mock.Anything, "user-1").Return([]*domain.AccessCredential{
		{UserID: "user-1", ItemID: "item-1", AccessToken: "at-1"},
		{UserID: "user-1", ItemID: "item-2", AccessToken: "at-2"},
	}, nil)
	agg.On("GetTransactions", mock.Anything, "at-1", mock.Anything, mock.Anything).
		Return([]domain.Transaction{txn("a", day(2026, 8, 1), "20.00", false)}, nil)
	agg.On("GetTransactions", mock.Anything, "at-2", mock.Anything, mock.Anything).
		Return([]domain.Transaction{txn("b", day(2026, 8, 10), "35.00", false)}, nil)

	scored, err := svc.Transactions(authedContext("user-1"), "user-1")
	require.NoError(t, err)
	require.Len(t, scored, 2)
	assert.Equal(t, "b", scored[0].TransactionID)
	assert.Equal(t, "a", scored[1].TransactionID)
	assert.Equal(t, float64(50), scored[0].Score)
}

func TestSpendingService_Transactions_NoLinkedAccount(t *testing.T) {
	svc, _, repo := newSpendingFixture("500")
	repo.On("ListByUser", mock.Anything, "user-1").Return([]*domain.AccessCredential{}, nil)

	scored, err := svc.Transactions(authedContext("user-1"), "")
	require.Error(t, err)
	assert.Nil(t, scored)
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))
}

func TestSpendingService_Transactions_CrossUserRejected(t *testing.T) {
	svc, agg, repo := newSpendingFixture("500")

	scored, err := svc.Transactions(authedContext("user-1"), "victim-uid")
	require.Error(t, err)
	assert.Nil(t, scored)
	assert.Equal(t, errors.KindUnauthenticated, errors.KindOf(err))
	repo.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
	agg.AssertNotCalled(t, "GetTransactions", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSpendingService_Transactions_Unauthenticated(t *testing.T) {
	svc, _, repo := newSpendingFixture("500")

	_, err := svc.Transactions(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, errors.KindUnauthenticated, errors.KindOf(err))
	repo.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}

func TestSpendingService_PaycheckSpending(t *testing.T) {
	svc, agg, repo := newSpendingFixture("500")

	repo.On("ListByUser", mock.Anything, "user-1").Return([]*domain.AccessCredential{
		{UserID: "user-1", ItemID: "item-1", AccessToken: "at-1"},
	}, nil)
	// Aggregator sign convention: negative amounts are inflows.
	agg.On("GetTransactions", mock.Anything, "at-1", mock.Anything, mock.Anything).
		Return([]domain.Transaction{
			txn("old-spend", day(2026, 7, 1), "99.99", false),
			txn("small-refund", day(2026, 7, 20), "-40.00", false),
			txn("paycheck", day(2026, 7, 15), "-2500.00", false),
			txn("groceries", day(2026, 7, 16), "82.50", false),
			txn("rent", day(2026, 8, 1), "1200.00", false),
			txn("pending-coffee", day(2026, 8, 2), "4.75", true),
		}, nil)

	summary, err := svc.PaycheckSpending(authedContext("user-1"), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "2500.00", summary.LastPaycheckAmount.StringFixed(2))
	assert.Equal(t, day(2026, 7, 15), summary.LastPaycheckDate)
	// Pending outflows and anything before the paycheck are excluded.
	assert.Equal(t, "1282.50", summary.SpentSincePaycheck.StringFixed(2))
}

func TestSpendingService_PaycheckSpending_NoPaycheckFound(t *testing.T) {
	svc, agg, repo := newSpendingFixture("500")

	repo.On("ListByUser", mock.Anything, "user-1").Return([]*domain.AccessCredential{
		{UserID: "user-1", ItemID: "item-1", AccessToken: "at-1"},
	}, nil)
	// A refund below the floor is not a paycheck.
	agg.On("GetTransactions", mock.Anything, "at-1", mock.Anything, mock.Anything).
		Return([]domain.Transaction{
			txn("refund", day(2026, 8, 1), "-40.00", false),
			txn("groceries", day(2026, 8, 2), "60.00", false),
		}, nil)

	summary, err := svc.PaycheckSpending(authedContext("user-1"), "")
	require.NoError(t, err)
	assert.True(t, summary.LastPaycheckDate.IsZero())
	// Without a paycheck the whole window counts.
	assert.Equal(t, "60.00", summary.SpentSincePaycheck.StringFixed(2))
}

func TestSpendingService_MeanMonthlyScores(t *testing.T) {
	agg := new(MockAggregator)
	repo := new(MockCredentialRepository)
	scores := scoreByMerchant{
		"merchant-july-a": 40,
		"merchant-july-b": 60,
		"merchant-august": 90,
	}
	svc := NewSpendingService(agg, repo, scores, decimal.RequireFromString("500"))

	repo.On("ListByUser", mock.Anything, "user-1").Return([]*domain.AccessCredential{
		{UserID: "user-1", ItemID: "item-1", AccessToken: "at-1"},
	}, nil)
	agg.On("GetTransactions", mock.Anything, "at-1", mock.Anything, mock.Anything).
		Return([]domain.Transaction{
			{TransactionID: "1", Date: day(2026, 7, 3), Merchant: "merchant-july-a", Amount: decimal.RequireFromString("10")},
			{TransactionID: "2", Date: day(2026, 7, 20), Merchant: "merchant-july-b", Amount: decimal.RequireFromString("20")},
			{TransactionID: "3", Date: day(2026, 8, 5), Merchant: "merchant-august", Amount: decimal.RequireFromString("30")},
		}, nil)

	months, err := svc.MeanMonthlyScores(authedContext("user-1"), "user-1")
	require.NoError(t, err)
	require.Len(t, months, 2)

	assert.Equal(t, "2026-07", months[0].Month)
	assert.Equal(t, float64(50), months[0].MeanScore)
	assert.Equal(t, 2, months[0].Count)
	assert.Equal(t, "2026-08", months[1].Month)
	assert.Equal(t, float64(90), months[1].MeanScore)
	assert.Equal(t, 1, months[1].Count)
}

func TestSpendingService_Accounts_TaggedWithItem(t *testing.T) {
	svc, agg, repo := newSpendingFixture("500")

	repo.On("ListByUser", mock.Anything, "user-1").Return([]*domain.AccessCredential{
		{UserID: "user-1", ItemID: "item-1", AccessToken: "at-1"},
		{UserID: "user-1", ItemID: "item-2", AccessToken: "at-2"},
	}, nil)
	agg.On("GetAccounts", mock.Anything, "at-1").
		Return([]aggregator.Account{{AccountID: "acc-1", Name: "Checking"}}, nil)
	agg.On("GetAccounts", mock.Anything, "at-2").
		Return([]aggregator.Account{{AccountID: "acc-2", Name: "Savings"}}, nil)

	accounts, err := svc.Accounts(authedContext("user-1"), "")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "item-1", accounts[0].ItemID)
	assert.Equal(t, "item-2", accounts[1].ItemID)
}

// scoreByMerchant scores transactions by merchant name for tests.
type scoreByMerchant map[string]float64

func (s scoreByMerchant) Score(tx *domain.Transaction) float64 {
	return s[tx.Merchant]
}
