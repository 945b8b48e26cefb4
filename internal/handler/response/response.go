package response

import (
	"github.com/Mahd-Mehn/dao-voting/internal/model"
	"github.com/Mahd-Mehn/dao-voting/pkg/errno"

	"github.com/gin-gonic/gin"
)

// Response defines the standard JSON structure
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"msg"`
	Data    interface{} `json:"data"`
}

// Success returns a success response with data
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = gin.H{} // Return empty object instead of null
	}
	c.JSON(errno.OK.Status(), Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Error returns an error response. The HTTP status follows the error kind.
func Error(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) // picked up by the metrics middleware
	}
	code, msg := errno.Decode(err)
	c.JSON(errno.StatusOf(err), Response{
		Code:    code,
		Message: msg,
		Data:    gin.H{},
	})
}

// TxResponse is returned by every write endpoint.
type TxResponse struct {
	TransactionHash string `json:"transaction_hash" example:"0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"`
}

type ProposalListResponse struct {
	Proposals []model.ProposalRecord `json:"proposals"`
}

type CountResponse struct {
	Count uint64 `json:"count"`
}

type HasVotedResponse struct {
	HasVoted bool `json:"has_voted"`
}
