package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{NewUnauthenticated("x"), http.StatusUnauthorized},
		{NewInvalidArgument("x"), http.StatusBadRequest},
		{NewInvalidToken("x", "INVALID_PUBLIC_TOKEN"), http.StatusBadRequest},
		{NewNotFound("x"), http.StatusNotFound},
		{NewUpstreamRejected("x", "SOME_CODE"), http.StatusBadGateway},
		{NewUpstreamUnavailable("x"), http.StatusServiceUnavailable},
		{NewStorageFailure("x"), http.StatusInternalServerError},
		{NewInternal("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.HTTPStatus(), "kind %s", tt.err.Kind)
	}
}

func TestError_UnwrapChain(t *testing.T) {
	cause := stderrors.New("mongo: connection reset")
	err := NewStorageFailure("failed to persist").WithCause(cause)

	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("handler: %w", err)
	var linkErr *Error
	require.True(t, stderrors.As(wrapped, &linkErr))
	assert.Equal(t, KindStorageFailure, linkErr.Kind)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInvalidToken, KindOf(NewInvalidToken("x", "")))
	assert.Equal(t, KindInternal, KindOf(stderrors.New("anything else")))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrap: %w", NewNotFound("x"))))
}

func TestError_Message(t *testing.T) {
	err := NewUpstreamRejected("aggregator rejected the request", "ITEM_LOGIN_REQUIRED")
	assert.Equal(t, "upstream_rejected: aggregator rejected the request (ITEM_LOGIN_REQUIRED)", err.Error())
}

func TestError_JSONOmitsCause(t *testing.T) {
	err := NewStorageFailure("failed to persist").WithCause(stderrors.New("secret detail"))

	data, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)
	assert.JSONEq(t, `{"error":"storage_failure","message":"failed to persist"}`, string(data))
}
