package errors

import (
	goerrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{ValidationError("bad input"), http.StatusBadRequest},
		{NotFoundError("gone"), http.StatusNotFound},
		{ConflictError("already voted"), http.StatusConflict},
		{RateLimitedError("slow down"), http.StatusTooManyRequests},
		{InternalError("boom", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.HTTPStatus())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := goerrors.New("db down")
	err := InternalError("persistence failure", cause)

	assert.True(t, goerrors.Is(err, cause))
	assert.Contains(t, err.Error(), "db down")
}

func TestAsStructuredError_PassesThrough(t *testing.T) {
	orig := ConflictError("duplicate content")
	wrapped := fmt.Errorf("handler: %w", orig)

	got := AsStructuredError(wrapped)
	assert.Equal(t, orig, got)
}

func TestAsStructuredError_WrapsPlainError(t *testing.T) {
	got := AsStructuredError(goerrors.New("boom"))
	assert.Equal(t, TypeInternal, got.Type)
	assert.Equal(t, "internal server error", got.Message)
}

func TestAsStructuredError_Nil(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))
}

func TestWithField(t *testing.T) {
	err := ValidationError("invalid score").WithField("score", 7)
	assert.Equal(t, 7, err.Context["score"])

	resp := err.ToResponse()
	assert.Equal(t, "invalid score", resp.Error)
	assert.Equal(t, TypeValidation, resp.Type)
	assert.Equal(t, 7, resp.Context["score"])
}
