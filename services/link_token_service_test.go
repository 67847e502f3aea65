package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clarity-cash/claritycash/domain"
	"github.com/clarity-cash/claritycash/errors"
)

func TestLinkTokenService_Create_Success(t *testing.T) {
	agg := new(MockAggregator)
	store := new(MockTokenStore)
	svc := NewLinkTokenService(agg, store)

	grant := &domain.LinkTokenGrant{
		AttemptID:  "attempt-1",
		UserID:     "user-1",
		LinkToken:  "link-sandbox-abc",
		Expiration: time.Now().Add(30 * time.Minute),
	}
	agg.On("CreateLinkToken", mock.Anything, "user-1").Return(grant, nil)
	store.On("Put", mock.Anything, grant).Return(nil)

	got, err := svc.Create(authedContext("user-1"), "")
	require.NoError(t, err)
	assert.Equal(t, grant, got)
	agg.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestLinkTokenService_Create_FreshTokenPerCall(t *testing.T) {
	agg := new(MockAggregator)
	svc := NewLinkTokenService(agg, nil)

	first := &domain.LinkTokenGrant{AttemptID: "a1", LinkToken: "token-1"}
	second := &domain.LinkTokenGrant{AttemptID: "a2", LinkToken: "token-2"}
	agg.On("CreateLinkToken", mock.Anything, "user-1").Return(first, nil).Once()
	agg.On("CreateLinkToken", mock.Anything, "user-1").Return(second, nil).Once()

	got1, err := svc.Create(authedContext("user-1"), "")
	require.NoError(t, err)
	got2, err := svc.Create(authedContext("user-1"), "")
	require.NoError(t, err)

	assert.NotEqual(t, got1.LinkToken, got2.LinkToken)
	agg.AssertNumberOfCalls(t, "CreateLinkToken", 2)
}

func TestLinkTokenService_Create_Unauthenticated(t *testing.T) {
	agg := new(MockAggregator)
	svc := NewLinkTokenService(agg, nil)

	got, err := svc.Create(context.Background(), "")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, errors.KindUnauthenticated, errors.KindOf(err))
	// No aggregator call is made without a verified identity.
	agg.AssertNotCalled(t, "CreateLinkToken", mock.Anything, mock.Anything)
}

func TestLinkTokenService_Create_UIDMismatch(t *testing.T) {
	agg := new(MockAggregator)
	svc := NewLinkTokenService(agg, nil)

	got, err := svc.Create(authedContext("user-1"), "someone-else")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, errors.KindUnauthenticated, errors.KindOf(err))
	agg.AssertNotCalled(t, "CreateLinkToken", mock.Anything, mock.Anything)
}

func TestLinkTokenService_Create_MatchingUIDAllowed(t *testing.T) {
	agg := new(MockAggregator)
	svc := NewLinkTokenService(agg, nil)

	grant := &domain.LinkTokenGrant{AttemptID: "a1", UserID: "user-1"}
	agg.On("CreateLinkToken", mock.Anything, "user-1").Return(grant, nil)

	got, err := svc.Create(authedContext("user-1"), "user-1")
	require.NoError(t, err)
	assert.Equal(t, grant, got)
}

func TestLinkTokenService_Create_StorePutFailureIsNotFatal(t *testing.T) {
	agg := new(MockAggregator)
	store := new(MockTokenStore)
	svc := NewLinkTokenService(agg, store)

	grant := &domain.LinkTokenGrant{AttemptID: "a1", UserID: "user-1"}
	agg.On("CreateLinkToken", mock.Anything, "user-1").Return(grant, nil)
	store.On("Put", mock.Anything, grant).Return(assert.AnError)

	got, err := svc.Create(authedContext("user-1"), "")
	require.NoError(t, err)
	assert.Equal(t, grant, got)
}
