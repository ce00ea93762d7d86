package errors

import (
	"database/sql/driver"
	stderrors "errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sqlStateError struct{ state string }

func (e *sqlStateError) Error() string    { return "pq: " + e.state }
func (e *sqlStateError) SQLState() string { return e.state }

// ==========================
// Database error classification
// ==========================

func TestNewDatabaseError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "bad conn", err: driver.ErrBadConn, want: ErrCodeDatabaseConnectionFailed},
		{name: "wrapped bad conn", err: fmt.Errorf("query: %w", driver.ErrBadConn), want: ErrCodeDatabaseConnectionFailed},
		{name: "dial refused", err: &net.OpError{Op: "dial", Net: "tcp", Err: stderrors.New("connection refused")}, want: ErrCodeDatabaseConnectionFailed},
		{name: "connection exception state", err: &sqlStateError{state: "08006"}, want: ErrCodeDatabaseConnectionFailed},
		{name: "syntax error state", err: &sqlStateError{state: "42601"}, want: ErrCodeQueryExecutionFailed},
		{name: "plain error", err: stderrors.New("boom"), want: ErrCodeQueryExecutionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewDatabaseError("list site templates", tt.err)
			assert.Equal(t, tt.want, got.Code)
			assert.True(t, got.Retryable)
			assert.Contains(t, got.Details, "list site templates")
		})
	}
}

// ==========================
// Helpers
// ==========================

func TestHasCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("provision: %w", NewDuplicateSiteTemplateError("site-1", "invite"))

	assert.True(t, HasCode(err, ErrCodeDuplicateSiteTemplate))
	assert.False(t, HasCode(err, ErrCodeValidationFailed))
	assert.True(t, stderrors.Is(err, &StandardError{Code: ErrCodeDuplicateSiteTemplate}))
	assert.False(t, IsRetryable(err))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewGlobalTemplateNotFoundError("g")))
	assert.True(t, IsNotFound(NewSiteTemplateNotFoundError("s")))
	assert.True(t, IsNotFound(NewRuleNotFoundError("r")))
	assert.False(t, IsNotFound(NewValidationFailedError("x")))
	assert.False(t, IsNotFound(stderrors.New("record not found")))
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantRetries int
	}{
		{name: "retryable query", err: NewQueryExecutionFailedError("get", stderrors.New("x")), wantRetries: 3},
		{name: "event publish", err: NewEventPublishFailedError(stderrors.New("x")), wantRetries: 2},
		{name: "not found", err: NewRuleNotFoundError("r"), wantRetries: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, string(tt.err.Code), bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, string(tt.err.Code), vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestNormalize(t *testing.T) {
	std := Normalize(stderrors.New("unexpected"))
	assert.Equal(t, ErrCodeInternal, std.Code)
	assert.False(t, std.Retryable)

	orig := NewDeliveryFailedError("sms", stderrors.New("throttled"))
	require.Same(t, orig, Normalize(fmt.Errorf("send: %w", orig)))
	assert.Equal(t, "sms", orig.Metadata["channel"])
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "TEMPLATE", GetErrorCategory(ErrCodeSiteTemplateNotFound))
	assert.Equal(t, "AUTOMATION", GetErrorCategory(ErrCodeRuleNotFound))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeDatabaseConnectionFailed))
	assert.Equal(t, "DELIVERY", GetErrorCategory(ErrCodeChannelNotConfigured))
	assert.Equal(t, "WORKFLOW", GetErrorCategory(ErrCodeEngineUnavailable))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
