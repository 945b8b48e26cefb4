package service

import (
	"context"
	"strings"

	"github.com/Mahd-Mehn/dao-voting/pkg/contract"
	"github.com/Mahd-Mehn/dao-voting/pkg/errno"
	"github.com/Mahd-Mehn/dao-voting/pkg/secret"
)

// VotingService exposes the contract's mutating entry points on top of
// the submission pipeline.
type VotingService struct {
	submitter *Submitter
}

var _ ProposalWriter = (*VotingService)(nil)

func NewVotingService(submitter *Submitter) *VotingService {
	return &VotingService{submitter: submitter}
}

// CreateProposal 创建提案
func (s *VotingService) CreateProposal(ctx context.Context, title, description string, key *secret.PrivateKey) (string, error) {
	defer key.Destroy()
	if strings.TrimSpace(title) == "" {
		return "", errno.ErrInvalidInput.WithMessage("title is required")
	}
	if strings.TrimSpace(description) == "" {
		return "", errno.ErrInvalidInput.WithMessage("description is required")
	}
	return s.submitter.SubmitCall(ctx, contract.CreateProposal(title, description), key)
}

// Vote 投票. The contract decides whether the index exists.
func (s *VotingService) Vote(ctx context.Context, proposalID uint64, key *secret.PrivateKey) (string, error) {
	return s.submitter.SubmitCall(ctx, contract.Vote(proposalID), key)
}

func (s *VotingService) DeleteProposal(ctx context.Context, proposalID uint64, key *secret.PrivateKey) (string, error) {
	return s.submitter.SubmitCall(ctx, contract.DeleteProposal(proposalID), key)
}

func (s *VotingService) ExecuteProposal(ctx context.Context, proposalID uint64, key *secret.PrivateKey) (string, error) {
	return s.submitter.SubmitCall(ctx, contract.ExecuteProposal(proposalID), key)
}
