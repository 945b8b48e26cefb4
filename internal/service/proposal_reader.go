package service

import (
	"context"
	"fmt"

	"github.com/Mahd-Mehn/dao-voting/internal/chain"
	"github.com/Mahd-Mehn/dao-voting/internal/model"
	"github.com/Mahd-Mehn/dao-voting/pkg/contract"
	"github.com/Mahd-Mehn/dao-voting/pkg/errno"
	"github.com/Mahd-Mehn/dao-voting/pkg/monitor"

	"github.com/ethereum/go-ethereum/common"
)

// maxPrealloc bounds the slice capacity taken from a node-reported count.
const maxPrealloc = 1024

// ProposalReader reads proposals straight from the contract. Nothing is
// cached; every call is a fresh round trip.
type ProposalReader struct {
	client chain.Client
}

var _ ProposalQuerier = (*ProposalReader)(nil)

func NewProposalReader(client chain.Client) *ProposalReader {
	return &ProposalReader{client: client}
}

// Count 提案总数
func (r *ProposalReader) Count(ctx context.Context) (uint64, error) {
	values, err := r.client.Call(ctx, contract.ProposalCount())
	if err != nil {
		return 0, err
	}
	return contract.DecodeUint64(values)
}

// GetOne reads proposal index. A revert from the contract means the index
// does not exist.
func (r *ProposalReader) GetOne(ctx context.Context, index uint64) (*model.ProposalRecord, error) {
	rec, err := r.read(ctx, index)
	if err != nil {
		if chain.IsRevert(err) {
			return nil, errno.ErrNotFound.Wrapf("proposal %d: %w", index, err)
		}
		return nil, err
	}
	return rec, nil
}

// ListAll reads the count, then every index in ascending order. Any failed
// read aborts the whole listing; no partial result is returned.
func (r *ProposalReader) ListAll(ctx context.Context) ([]model.ProposalRecord, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("read proposal count: %w", err)
	}

	records := make([]model.ProposalRecord, 0, min(count, maxPrealloc))
	for i := uint64(0); i < count; i++ {
		rec, err := r.read(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("read proposal %d of %d: %w", i, count, err)
		}
		records = append(records, *rec)
	}
	monitor.ProposalsRead(len(records))
	return records, nil
}

// HasVoted reports whether voter has voted on proposal index.
func (r *ProposalReader) HasVoted(ctx context.Context, voter common.Address, index uint64) (bool, error) {
	values, err := r.client.Call(ctx, contract.HasVoted(voter, index))
	if err != nil {
		if chain.IsRevert(err) {
			return false, errno.ErrNotFound.Wrapf("proposal %d: %w", index, err)
		}
		return false, err
	}
	return contract.DecodeBool(values)
}

func (r *ProposalReader) read(ctx context.Context, index uint64) (*model.ProposalRecord, error) {
	values, err := r.client.Call(ctx, contract.GetProposal(index))
	if err != nil {
		return nil, err
	}
	p, err := contract.DecodeProposal(values)
	if err != nil {
		return nil, err
	}
	if !p.VoteCount.IsUint64() {
		return nil, errno.ErrDecode.Wrapf("proposal %d: vote count %s out of range", index, p.VoteCount)
	}
	return &model.ProposalRecord{
		Index:       index,
		Title:       p.Title,
		Description: p.Description,
		VoteCount:   p.VoteCount.Uint64(),
		Executed:    p.Executed,
	}, nil
}
