package sink

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/ddbsink/internal/testutil"
)

func failed() outcome {
	return outcome{kind: outcomeFailed, err: errors.New("rejected")}
}

func TestRetryState_BudgetExhaustion(t *testing.T) {
	log := testutil.NewTestLogger()
	s := newRetryState(2, 250*time.Millisecond)
	in := records("a", "a", "a")

	for i := 0; i < 2; i++ {
		res, err := s.resolve(log, failed(), in)
		require.NoError(t, err)
		assert.Equal(t, StatusRetriable, res.Status, "attempt %d", i)
		assert.Equal(t, 250*time.Millisecond, res.Backoff)
	}
	assert.Equal(t, 0, s.remaining)

	res, err := s.resolve(log, failed(), in)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, res.Status)
	assert.Equal(t, 3, res.Dropped)

	// exhaustion does not restore the budget
	res, err = s.resolve(log, failed(), in)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, res.Status)

	res, err = s.resolve(log, outcome{kind: outcomeSuccess, written: 3}, in)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, res.Status)
	assert.Equal(t, 3, res.Written)
	assert.Equal(t, 2, s.remaining)

	res, err = s.resolve(log, failed(), in)
	require.NoError(t, err)
	assert.Equal(t, StatusRetriable, res.Status)
}

func TestRetryState_ThrottlingIgnoresBudget(t *testing.T) {
	log := testutil.NewTestLogger()
	s := newRetryState(0, time.Second)

	for i := 0; i < 3; i++ {
		res, err := s.resolve(log, outcome{kind: outcomeThrottled}, records("a"))
		require.NoError(t, err)
		assert.Equal(t, StatusRetriable, res.Status)
		assert.Equal(t, time.Second, res.Backoff)
	}
	assert.Equal(t, 0, s.remaining)

	s = newRetryState(3, time.Second)
	_, err := s.resolve(log, outcome{kind: outcomeThrottled}, records("a"))
	require.NoError(t, err)
	assert.Equal(t, 3, s.remaining)
}

func TestRetryState_PartialFailureConsumesBudget(t *testing.T) {
	s := newRetryState(1, 0)

	res, err := s.resolve(testutil.NewTestLogger(), outcome{kind: outcomePartialFailure, err: &UnprocessedItemsError{}}, records("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, StatusRetriable, res.Status)
	assert.Equal(t, 0, s.remaining)
}

func TestRetryState_DroppedExcludesWrittenAndSkipped(t *testing.T) {
	s := newRetryState(0, 0)

	o := failed()
	o.written = 2
	o.skipped = 1
	res, err := s.resolve(testutil.NewTestLogger(), o, records("a", "a", "a", "a", "a"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Dropped)
}

func TestRetryState_FatalDoesNotTouchBudget(t *testing.T) {
	s := newRetryState(2, 0)
	s.remaining = 1
	cause := &ConfigurationError{Source: "record value"}

	res, err := s.resolve(testutil.NewTestLogger(), outcome{kind: outcomeFatal, err: cause, written: 2, skipped: 1}, records("a", "b", "c", "d"))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, s.remaining)
	assert.Equal(t, 2, res.Written)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Dropped)
}

func TestIsThrottlingError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"provisioned throughput", &types.ProvisionedThroughputExceededException{Message: aws.String("slow down")}, true},
		{"limit exceeded", &types.LimitExceededException{}, true},
		{"request limit", &types.RequestLimitExceeded{}, true},
		{"wrapped", &WriteError{Table: "t", Err: fmt.Errorf("op: %w", &types.ProvisionedThroughputExceededException{})}, true},
		{"generic throttling code", &smithy.GenericAPIError{Code: "ThrottlingException"}, true},
		{"resource not found", &types.ResourceNotFoundException{}, false},
		{"validation", &smithy.GenericAPIError{Code: "ValidationException"}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isThrottlingError(tt.err))
		})
	}
}

func TestUnprocessedItemsError(t *testing.T) {
	err := &UnprocessedItemsError{Unprocessed: map[string][]types.WriteRequest{
		"a": {{}, {}},
		"b": {{}},
	}}

	assert.ErrorIs(t, err, ErrUnprocessedItems)
	assert.Contains(t, err.Error(), "3 unprocessed items across 2 tables")
}
