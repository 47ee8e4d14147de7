package apierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"not found", NotFound("service not found"), KindNotFound},
		{"already exists", AlreadyExists("duplicate"), KindAlreadyExists},
		{"validation", Validation("bad input"), KindValidation},
		{"server", Server("boom"), KindServer},
		{"invalid response", InvalidResponse("truncated body"), KindInvalidResponse},
		{"network", Network(errors.New("connection refused")), KindNetwork},
		{"unclassified", errors.New("plain"), KindUnknown},
		{"nil", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
		})
	}
}

func TestKindOfUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("loading services: %w", NotFound("service not found"))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
}

func TestErrorMessage(t *testing.T) {
	err := Validation("name must not be blank")
	assert.Equal(t, "name must not be blank", err.Error())

	cause := errors.New("dial tcp: connection refused")
	netErr := Network(cause)
	assert.Contains(t, netErr.Error(), "network error")
	assert.Contains(t, netErr.Error(), "connection refused")
	require.ErrorIs(t, netErr, cause)
}

func TestIsKindPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("x")))
	assert.False(t, IsNotFound(Server("x")))
	assert.True(t, IsAlreadyExists(AlreadyExists("x")))
	assert.True(t, IsValidation(Validation("x")))
	assert.False(t, IsValidation(nil))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "network", KindNetwork.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
