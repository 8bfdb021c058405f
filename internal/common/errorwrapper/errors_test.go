package errorwrapper

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name            string
		originalError   error
		message         string
		expectedMessage string
	}{
		{
			name:            "wrap simple error",
			originalError:   errors.New("original error"),
			message:         "wrapper message",
			expectedMessage: "wrapper message: original error",
		},
		{
			name:            "wrap nil error",
			originalError:   nil,
			message:         "wrapper message",
			expectedMessage: "wrapper message: <nil>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrappedError := WrapError(tt.originalError, tt.message)
			assert.Error(t, wrappedError)
			assert.Equal(t, tt.expectedMessage, wrappedError.Error())
		})
	}
}

func TestClassificationPredicates(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransient bool
		wantNotFound  bool
		wantPersist   bool
	}{
		{
			name:          "rate limited",
			err:           NewRemoteTransientError("edit", 429, 2*time.Second, nil),
			wantTransient: true,
		},
		{
			name:          "wrapped transient",
			err:           fmt.Errorf("edit failed: %w", NewRemoteTransientError("edit", 502, 0, errors.New("bad gateway"))),
			wantTransient: true,
		},
		{
			name:         "deleted message",
			err:          fmt.Errorf("edit failed: %w", NewRemoteMessageNotFound("123", "456")),
			wantNotFound: true,
		},
		{
			name: "permanent remote rejection",
			err:  NewRemoteError("send", 403, 50013, "Missing Permissions"),
		},
		{
			name:        "store failure",
			err:         NewPersistenceError("put", "chan|https://a|A", errors.New("disk full")),
			wantPersist: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantTransient, IsTransient(tt.err))
			assert.Equal(t, tt.wantNotFound, IsRemoteNotFound(tt.err))
			assert.Equal(t, tt.wantPersist, IsPersistence(tt.err))
		})
	}
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("sites.json", []string{"site 0: name is required", "site 1: duplicate identity"}, nil)

	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	assert.Contains(t, err.Error(), "sites.json")
	assert.Contains(t, err.Error(), "site 0: name is required")
	assert.Contains(t, err.Error(), "site 1: duplicate identity")
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportError("http://localhost:1", "request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "transport error for URL 'http://localhost:1': request failed", err.Error())
}
