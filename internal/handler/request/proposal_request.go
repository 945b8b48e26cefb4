package request

// CreateProposalRequest 创建提案
type CreateProposalRequest struct {
	Title       string `json:"title" binding:"required" example:"Budget 2025"`
	Description string `json:"description" binding:"required" example:"Approve annual budget"`
	PrivateKey  string `json:"private_key" binding:"required,privkey"`
}

// VoteRequest 投票. ProposalID is a pointer so that 0 passes "required".
type VoteRequest struct {
	ProposalID *int64 `json:"proposal_id" binding:"required,min=0" example:"0"`
	PrivateKey string `json:"private_key" binding:"required,privkey"`
}

// SignerRequest carries only the signing key; the proposal comes from the path.
type SignerRequest struct {
	PrivateKey string `json:"private_key" binding:"required,privkey"`
}
