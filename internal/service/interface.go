package service

import (
	"context"

	"github.com/Mahd-Mehn/dao-voting/internal/model"
	"github.com/Mahd-Mehn/dao-voting/pkg/secret"

	"github.com/ethereum/go-ethereum/common"
)

// ProposalWriter 提案写操作. Each call signs and submits one transaction
// and returns its hash; key is destroyed before returning.
type ProposalWriter interface {
	CreateProposal(ctx context.Context, title, description string, key *secret.PrivateKey) (string, error)
	Vote(ctx context.Context, proposalID uint64, key *secret.PrivateKey) (string, error)
	DeleteProposal(ctx context.Context, proposalID uint64, key *secret.PrivateKey) (string, error)
	ExecuteProposal(ctx context.Context, proposalID uint64, key *secret.PrivateKey) (string, error)
}

// ProposalQuerier 提案读操作
type ProposalQuerier interface {
	ListAll(ctx context.Context) ([]model.ProposalRecord, error)
	GetOne(ctx context.Context, index uint64) (*model.ProposalRecord, error)
	Count(ctx context.Context) (uint64, error)
	HasVoted(ctx context.Context, voter common.Address, index uint64) (bool, error)
}
