package handler

import (
	"context"
	"strconv"

	"github.com/Mahd-Mehn/dao-voting/internal/handler/request"
	"github.com/Mahd-Mehn/dao-voting/internal/handler/response"
	"github.com/Mahd-Mehn/dao-voting/internal/service"
	"github.com/Mahd-Mehn/dao-voting/pkg/errno"
	"github.com/Mahd-Mehn/dao-voting/pkg/secret"
	"github.com/Mahd-Mehn/dao-voting/pkg/validator"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// ProposalHandler serves the VotingDAO request surface.
type ProposalHandler struct {
	writer service.ProposalWriter
	reader service.ProposalQuerier
}

func NewProposalHandler(writer service.ProposalWriter, reader service.ProposalQuerier) *ProposalHandler {
	return &ProposalHandler{writer: writer, reader: reader}
}

// CreateProposal 创建提案
// @Summary Create proposal
// @Description Sign and submit createProposal(title, description) with the caller's key. Returns once the node accepts the transaction; it may still fail on chain.
// @Tags Proposals
// @Accept json
// @Produce json
// @Param request body request.CreateProposalRequest true "proposal and signing key"
// @Success 200 {object} response.Response{data=response.TxResponse}
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/v1/proposals [post]
func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	var req request.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	key, err := parseKey(&req.PrivateKey)
	if err != nil {
		response.Error(c, err)
		return
	}

	txHash, err := h.writer.CreateProposal(c.Request.Context(), req.Title, req.Description, key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, response.TxResponse{TransactionHash: txHash})
}

// Vote 投票
// @Summary Vote on proposal
// @Description Sign and submit vote(proposal_id) with the caller's key.
// @Tags Proposals
// @Accept json
// @Produce json
// @Param request body request.VoteRequest true "proposal index and signing key"
// @Success 200 {object} response.Response{data=response.TxResponse}
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/v1/vote [post]
func (h *ProposalHandler) Vote(c *gin.Context) {
	var req request.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	key, err := parseKey(&req.PrivateKey)
	if err != nil {
		response.Error(c, err)
		return
	}

	txHash, err := h.writer.Vote(c.Request.Context(), uint64(*req.ProposalID), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, response.TxResponse{TransactionHash: txHash})
}

// ExecuteProposal 执行提案
// @Summary Execute proposal
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path int true "proposal index"
// @Param request body request.SignerRequest true "signing key"
// @Success 200 {object} response.Response{data=response.TxResponse}
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/v1/proposals/{id}/execute [post]
func (h *ProposalHandler) ExecuteProposal(c *gin.Context) {
	h.signedByPath(c, h.writer.ExecuteProposal)
}

// DeleteProposal 删除提案
// @Summary Delete proposal
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path int true "proposal index"
// @Param request body request.SignerRequest true "signing key"
// @Success 200 {object} response.Response{data=response.TxResponse}
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/v1/proposals/{id}/delete [post]
func (h *ProposalHandler) DeleteProposal(c *gin.Context) {
	h.signedByPath(c, h.writer.DeleteProposal)
}

func (h *ProposalHandler) signedByPath(c *gin.Context, submit func(ctx context.Context, id uint64, key *secret.PrivateKey) (string, error)) {
	id, err := pathIndex(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req request.SignerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	key, err := parseKey(&req.PrivateKey)
	if err != nil {
		response.Error(c, err)
		return
	}

	txHash, err := submit(c.Request.Context(), id, key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, response.TxResponse{TransactionHash: txHash})
}

// ListProposals 提案列表
// @Summary List proposals
// @Description Read proposalCount() and then every proposal in index order. Any failed read fails the whole request.
// @Tags Proposals
// @Produce json
// @Success 200 {object} response.Response{data=response.ProposalListResponse}
// @Failure 502 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/v1/proposals [get]
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	records, err := h.reader.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, response.ProposalListResponse{Proposals: records})
}

// GetProposal 提案详情
// @Summary Get proposal
// @Tags Proposals
// @Produce json
// @Param id path int true "proposal index"
// @Success 200 {object} response.Response{data=model.ProposalRecord}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/v1/proposals/{id} [get]
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	id, err := pathIndex(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rec, err := h.reader.GetOne(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rec)
}

// CountProposals 提案总数
// @Summary Count proposals
// @Tags Proposals
// @Produce json
// @Success 200 {object} response.Response{data=response.CountResponse}
// @Failure 503 {object} response.Response
// @Router /api/v1/proposals/count [get]
func (h *ProposalHandler) CountProposals(c *gin.Context) {
	count, err := h.reader.Count(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, response.CountResponse{Count: count})
}

// HasVoted 是否已投票
// @Summary Has address voted
// @Tags Proposals
// @Produce json
// @Param id path int true "proposal index"
// @Param address path string true "voter address"
// @Success 200 {object} response.Response{data=response.HasVotedResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/proposals/{id}/voters/{address} [get]
func (h *ProposalHandler) HasVoted(c *gin.Context) {
	id, err := pathIndex(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	address := c.Param("address")
	if !common.IsHexAddress(address) {
		response.Error(c, errno.ErrInvalidInput.WithMessage("address must be a 0x-prefixed 20-byte hex address"))
		return
	}

	voted, err := h.reader.HasVoted(c.Request.Context(), common.HexToAddress(address), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, response.HasVotedResponse{HasVoted: voted})
}

func pathIndex(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errno.ErrInvalidInput.WithMessage("proposal id must be a non-negative integer")
	}
	return id, nil
}

// parseKey consumes the request's key string; the string is cleared so the
// request struct no longer references it.
func parseKey(raw *string) (*secret.PrivateKey, error) {
	key, err := secret.Parse(*raw)
	*raw = ""
	return key, err
}

func bindError(err error) error {
	if validator.IsValidationError(err) {
		return errno.ErrInvalidInput.WithMessage(validator.GetErrorMsg(err))
	}
	return errno.ErrBind.Wrap(err)
}
