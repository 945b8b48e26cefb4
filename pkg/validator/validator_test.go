package validator

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Key     string `json:"private_key" binding:"required,privkey"`
	Voter   string `json:"voter" binding:"omitempty,eth_addr"`
	Counter *int64 `json:"proposal_id" binding:"required,min=0"`
}

func TestPrivKeyTag(t *testing.T) {
	Init()
	zero := int64(0)

	ok := sample{Key: "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", Counter: &zero}
	assert.NoError(t, binding.Validator.ValidateStruct(&ok))

	bare := ok
	bare.Key = bare.Key[2:]
	assert.NoError(t, binding.Validator.ValidateStruct(&bare))

	short := ok
	short.Key = "0x1234"
	err := binding.Validator.ValidateStruct(&short)
	assert.Error(t, err)
	assert.Equal(t, "private_key must be a 32-byte hex private key", GetErrorMsg(err))
	assert.NotContains(t, GetErrorMsg(err), "1234")
}

func TestErrorMessages(t *testing.T) {
	Init()
	neg := int64(-1)

	err := binding.Validator.ValidateStruct(&sample{Voter: "0x12", Counter: &neg})
	msg := GetErrorMsg(err)
	assert.Contains(t, msg, "private_key is required")
	assert.Contains(t, msg, "voter must be a 0x-prefixed 20-byte hex address")
	assert.Contains(t, msg, "proposal_id must be at least 0")

	err = binding.Validator.ValidateStruct(&sample{Key: "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"})
	assert.Equal(t, "proposal_id is required", GetErrorMsg(err))

	assert.Equal(t, "invalid request body", GetErrorMsg(errors.New("unexpected EOF")))
}
