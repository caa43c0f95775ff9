package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUnreachable_TransportErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection refused", errors.New(`dial tcp 127.0.0.1:8000: connect: connection refused`), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"io timeout", errors.New("dial tcp 10.0.0.1:443: i/o timeout"), true},
		{"dns failure", errors.New("lookup erp.invalid: no such host"), true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("ping: %w", context.DeadlineExceeded), true},
		{"engine rejection", &APIError{StatusCode: 403, Method: "GET", URL: "http://x"}, false},
		{"plain failure", errors.New("invalid document schema"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUnreachable(tt.err))
		})
	}
}

func TestStatusClassifiers(t *testing.T) {
	wrap := func(code int) error {
		return fmt.Errorf("create Company: %w", &APIError{StatusCode: code, Method: "POST", URL: "http://x"})
	}

	assert.True(t, IsNotFound(wrap(404)))
	assert.False(t, IsNotFound(wrap(409)))

	assert.True(t, IsConflict(wrap(409)))
	assert.False(t, IsConflict(wrap(404)))

	assert.True(t, IsAuthError(wrap(401)))
	assert.True(t, IsAuthError(wrap(403)))
	assert.False(t, IsAuthError(wrap(500)))

	assert.True(t, IsServerError(wrap(502)))
	assert.False(t, IsServerError(wrap(404)))
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{StatusCode: 417, Method: "POST", URL: "http://erp/api/resource/Company", Body: `{"exc_type":"ValidationError"}`}
	assert.Contains(t, err.Error(), "status 417")
	assert.Contains(t, err.Error(), "POST")
}
