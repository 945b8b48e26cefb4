package errno

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	cause := errors.New("nonce too low")
	err := fmt.Errorf("submit: %w", ErrNodeRejected.Wrap(cause))

	assert.True(t, errors.Is(err, ErrNodeRejected))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrNodeUnavailable))

	code, msg := Decode(err)
	assert.Equal(t, ErrNodeRejected.Code, code)
	assert.Contains(t, msg, "nonce too low")
	assert.Equal(t, http.StatusUnprocessableEntity, StatusOf(err))
}

func TestWithMessageDoesNotMutate(t *testing.T) {
	custom := ErrInvalidInput.WithMessage("title is required")

	assert.Equal(t, "title is required", custom.Error())
	assert.Equal(t, "Invalid input", ErrInvalidInput.Message)
	assert.True(t, errors.Is(custom, ErrInvalidInput))
}

func TestDecodePlainError(t *testing.T) {
	code, msg := Decode(errors.New("boom"))
	assert.Equal(t, InternalServerError.Code, code)
	assert.Equal(t, "boom", msg)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))

	code, _ = Decode(nil)
	assert.Equal(t, OK.Code, code)
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{ErrInvalidInput, "invalid_input"},
		{ErrKeyMismatch.Wrap(errors.New("x")), "key_mismatch"},
		{fmt.Errorf("read 3: %w", ErrNodeUnavailable), "node_unavailable"},
		{ErrNodeRejected, "node_rejected"},
		{ErrNotFound, "not_found"},
		{ErrNotFound.Wrap(ErrNodeRejected.Wrap(errors.New("execution reverted"))), "not_found"},
		{fmt.Errorf("proposal 5: %w", ErrNotFound.Wrap(ErrNodeRejected)), "not_found"},
		{InternalServerError, "internal"},
		{ErrDecode, "decode_error"},
		{ErrSenderBusy, "sender_busy"},
		{errors.New("other"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.err))
	}
}
