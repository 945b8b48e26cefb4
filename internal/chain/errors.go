package chain

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/Mahd-Mehn/dao-voting/pkg/errno"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// JSON-RPC error code geth uses for reverted execution.
const revertErrorCode = 3

// RevertError is a contract revert reported by the node. Message is the
// node's text verbatim; Reason is the decoded Error(string) payload, if any.
type RevertError struct {
	Message string
	Reason  string
	Data    []byte
}

func (e *RevertError) Error() string {
	if e.Reason != "" && !strings.Contains(e.Message, e.Reason) {
		return e.Message + ": " + e.Reason
	}
	return e.Message
}

// IsRevert reports whether err carries a contract revert.
func IsRevert(err error) bool {
	var revert *RevertError
	return errors.As(err, &revert)
}

// classify maps a backend error onto the relay's error kinds. Errors that
// are already an *errno.Errno pass through.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var typed *errno.Errno
	if errors.As(err, &typed) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errno.ErrNodeUnavailable.Wrapf("%s: %w", op, err)
	}
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return errno.ErrNodeUnavailable.Wrapf("%s: %w", op, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return errno.ErrNodeUnavailable.Wrapf("%s: %w", op, err)
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		if revert := asRevert(rpcErr); revert != nil {
			return errno.ErrNodeRejected.Wrap(revert)
		}
		return errno.ErrNodeRejected.Wrap(err)
	}

	// anything else never produced a node answer we could interpret
	return errno.ErrNodeUnavailable.Wrapf("%s: %w", op, err)
}

func asRevert(rpcErr rpc.Error) *RevertError {
	if rpcErr.ErrorCode() != revertErrorCode && !strings.Contains(rpcErr.Error(), "execution reverted") {
		return nil
	}
	revert := &RevertError{Message: rpcErr.Error()}

	dataErr, ok := rpcErr.(rpc.DataError)
	if !ok {
		return revert
	}
	hexData, ok := dataErr.ErrorData().(string)
	if !ok {
		return revert
	}
	data, err := hexutil.Decode(hexData)
	if err != nil {
		return revert
	}
	revert.Data = data
	if reason, err := abi.UnpackRevert(data); err == nil {
		revert.Reason = reason
	}
	return revert
}
