package contract

import (
	"math/big"

	"github.com/Mahd-Mehn/dao-voting/pkg/errno"
)

// Proposal is the (title, description, voteCount, executed) tuple returned
// by getProposal and proposals(uint256).
type Proposal struct {
	Title       string
	Description string
	VoteCount   *big.Int
	Executed    bool
}

// DecodeProposal converts unpacked getProposal outputs.
func DecodeProposal(values []interface{}) (*Proposal, error) {
	if len(values) != 4 {
		return nil, errno.ErrDecode.Wrapf("proposal: expected 4 fields, got %d", len(values))
	}
	title, ok1 := values[0].(string)
	description, ok2 := values[1].(string)
	votes, ok3 := values[2].(*big.Int)
	executed, ok4 := values[3].(bool)
	if !ok1 || !ok2 || !ok3 || !ok4 || votes == nil {
		return nil, errno.ErrDecode.Wrapf("proposal: unexpected field types %T %T %T %T", values[0], values[1], values[2], values[3])
	}
	return &Proposal{
		Title:       title,
		Description: description,
		VoteCount:   votes,
		Executed:    executed,
	}, nil
}

// DecodeUint64 converts a single uint256 output that must fit in 64 bits.
func DecodeUint64(values []interface{}) (uint64, error) {
	if len(values) != 1 {
		return 0, errno.ErrDecode.Wrapf("expected 1 value, got %d", len(values))
	}
	n, ok := values[0].(*big.Int)
	if !ok || n == nil {
		return 0, errno.ErrDecode.Wrapf("expected uint256, got %T", values[0])
	}
	if !n.IsUint64() {
		return 0, errno.ErrDecode.Wrapf("value %s does not fit in uint64", n)
	}
	return n.Uint64(), nil
}

// DecodeBool converts a single bool output.
func DecodeBool(values []interface{}) (bool, error) {
	if len(values) != 1 {
		return false, errno.ErrDecode.Wrapf("expected 1 value, got %d", len(values))
	}
	b, ok := values[0].(bool)
	if !ok {
		return false, errno.ErrDecode.Wrapf("expected bool, got %T", values[0])
	}
	return b, nil
}
