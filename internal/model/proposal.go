package model

// ProposalRecord is a snapshot of one on-chain proposal as of the block the
// node answered from.
type ProposalRecord struct {
	Index       uint64 `json:"index"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VoteCount   uint64 `json:"vote_count"`
	Executed    bool   `json:"executed"`
}
