// Package chaintest provides an in-memory node that runs the VotingDAO
// contract, for tests that need realistic nonce, signature and revert
// behaviour without a devnet.
package chaintest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net"
	"sync"

	"github.com/Mahd-Mehn/dao-voting/pkg/contract"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const intrinsicGas = 21000

// RPCError mimics a JSON-RPC error object returned by a node.
type RPCError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *RPCError) Error() string          { return e.Message }
func (e *RPCError) ErrorCode() int         { return e.Code }
func (e *RPCError) ErrorData() interface{} { return e.Data }

type proposal struct {
	title       string
	description string
	votes       *big.Int
	executed    bool
}

// Receipt records the outcome of a mined transaction.
type Receipt struct {
	Status bool
	Reason string
}

// CallOverride replaces the node's answer for a read-only method.
type CallOverride func(args []interface{}) ([]byte, error)

// Node is an auto-mining single-account-state chain. Every accepted
// transaction is executed immediately; failed execution still consumes the
// nonce, as on a real chain.
type Node struct {
	mu sync.Mutex

	chainID  *big.Int
	signer   types.Signer
	contract *contract.Descriptor

	nonces    map[common.Address]uint64
	proposals []*proposal
	voted     map[uint64]map[common.Address]bool
	receipts  map[common.Hash]Receipt

	unavailable bool
	hang        bool
	overrides   map[string]CallOverride
	closed      bool
	sent        int
}

// NewNode starts an empty chain with chainID hosting desc's contract.
func NewNode(chainID int64, desc *contract.Descriptor) *Node {
	id := big.NewInt(chainID)
	return &Node{
		chainID:   id,
		signer:    types.LatestSignerForChainID(id),
		contract:  desc,
		nonces:    make(map[common.Address]uint64),
		voted:     make(map[uint64]map[common.Address]bool),
		receipts:  make(map[common.Hash]Receipt),
		overrides: make(map[string]CallOverride),
	}
}

// SetUnavailable makes every call fail with a connection error.
func (n *Node) SetUnavailable(v bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.unavailable = v
}

// SetHang makes every call block until its context is done.
func (n *Node) SetHang(v bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hang = v
}

// OverrideCall replaces the output of method for read calls.
func (n *Node) OverrideCall(method string, fn CallOverride) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.overrides[method] = fn
}

// AddProposal seeds a proposal without a transaction.
func (n *Node) AddProposal(title, description string) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.proposals = append(n.proposals, &proposal{title: title, description: description, votes: new(big.Int)})
	return uint64(len(n.proposals) - 1)
}

// SetVotes overwrites a proposal's vote count.
func (n *Node) SetVotes(index uint64, votes *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.proposals[index].votes = new(big.Int).Set(votes)
}

// Receipt returns the execution result of a mined transaction.
func (n *Node) Receipt(hash common.Hash) (Receipt, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	r, ok := n.receipts[hash]
	return r, ok
}

// AccountNonce returns the next nonce for addr.
func (n *Node) AccountNonce(addr common.Address) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.nonces[addr]
}

// Sent returns the number of transactions accepted so far.
func (n *Node) Sent() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent
}

// Closed reports whether Close was called.
func (n *Node) Closed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}

// enter applies the availability switches. Called without the lock held.
func (n *Node) enter(ctx context.Context) error {
	n.mu.Lock()
	unavailable, hang := n.unavailable, n.hang
	n.mu.Unlock()

	if unavailable {
		return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")}
	}
	if hang {
		<-ctx.Done()
		return ctx.Err()
	}
	return ctx.Err()
}

func (n *Node) ChainID(ctx context.Context) (*big.Int, error) {
	if err := n.enter(ctx); err != nil {
		return nil, err
	}
	return new(big.Int).Set(n.chainID), nil
}

func (n *Node) NonceAt(ctx context.Context, account common.Address, _ *big.Int) (uint64, error) {
	if err := n.enter(ctx); err != nil {
		return 0, err
	}
	return n.AccountNonce(account), nil
}

// PendingNonceAt equals NonceAt since every transaction is mined on receipt.
func (n *Node) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return n.NonceAt(ctx, account, nil)
}

func (n *Node) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := n.enter(ctx); err != nil {
		return err
	}

	from, err := types.Sender(n.signer, tx)
	if err != nil {
		return &RPCError{Code: -32000, Message: fmt.Sprintf("invalid sender: %v", err)}
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	expected := n.nonces[from]
	switch {
	case tx.Nonce() < expected:
		return &RPCError{Code: -32000, Message: fmt.Sprintf("nonce too low: address %s, tx: %d state: %d", from.Hex(), tx.Nonce(), expected)}
	case tx.Nonce() > expected:
		return &RPCError{Code: -32000, Message: fmt.Sprintf("nonce too high: address %s, tx: %d state: %d", from.Hex(), tx.Nonce(), expected)}
	}
	if tx.Gas() < intrinsicGas {
		return &RPCError{Code: -32000, Message: fmt.Sprintf("intrinsic gas too low: have %d, want %d", tx.Gas(), intrinsicGas)}
	}

	n.nonces[from] = expected + 1
	n.sent++

	receipt := Receipt{Status: true}
	if tx.To() != nil && *tx.To() == n.contract.Address {
		if reason := n.execute(from, tx.Data()); reason != "" {
			receipt = Receipt{Status: false, Reason: reason}
		}
	}
	n.receipts[tx.Hash()] = receipt
	return nil
}

func (n *Node) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if err := n.enter(ctx); err != nil {
		return nil, err
	}
	if msg.To == nil || *msg.To != n.contract.Address {
		// no code at the target
		return nil, nil
	}

	method, args, err := n.decode(msg.Data)
	if err != nil {
		return nil, revertError("")
	}

	n.mu.Lock()
	override, ok := n.overrides[method.Name]
	n.mu.Unlock()
	if ok {
		return override(args)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	values, reason := n.view(method.Name, args)
	if reason != "" {
		return nil, revertError(reason)
	}
	return method.Outputs.Pack(values...)
}

func (n *Node) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
}

func (n *Node) decode(data []byte) (*abi.Method, []interface{}, error) {
	if len(data) < 4 {
		return nil, nil, errors.New("missing selector")
	}
	method, err := n.contract.ABI.MethodById(data[:4])
	if err != nil {
		return nil, nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, err
	}
	return method, args, nil
}

// execute runs a mutating call with the lock held and returns the revert
// reason, or "" on success.
func (n *Node) execute(from common.Address, data []byte) string {
	method, args, err := n.decode(data)
	if err != nil {
		return "invalid call data"
	}

	switch method.Name {
	case contract.MethodCreateProposal:
		n.proposals = append(n.proposals, &proposal{
			title:       args[0].(string),
			description: args[1].(string),
			votes:       new(big.Int),
		})
		return ""
	case contract.MethodVote:
		p, id, reason := n.lookup(args[0])
		if reason != "" {
			return reason
		}
		if n.voted[id][from] {
			return "Already voted"
		}
		if n.voted[id] == nil {
			n.voted[id] = make(map[common.Address]bool)
		}
		n.voted[id][from] = true
		p.votes = new(big.Int).Add(p.votes, big.NewInt(1))
		return ""
	case contract.MethodExecuteProposal:
		p, _, reason := n.lookup(args[0])
		if reason != "" {
			return reason
		}
		if p.executed {
			return "Proposal already executed"
		}
		p.executed = true
		return ""
	case contract.MethodDeleteProposal:
		p, _, reason := n.lookup(args[0])
		if reason != "" {
			return reason
		}
		*p = proposal{votes: new(big.Int)}
		return ""
	default:
		return "function is read-only"
	}
}

// view evaluates a read-only call with the lock held.
func (n *Node) view(name string, args []interface{}) ([]interface{}, string) {
	switch name {
	case contract.MethodProposalCount:
		return []interface{}{big.NewInt(int64(len(n.proposals)))}, ""
	case contract.MethodGetProposal, contract.MethodProposals:
		p, _, reason := n.lookup(args[0])
		if reason != "" {
			return nil, reason
		}
		return []interface{}{p.title, p.description, new(big.Int).Set(p.votes), p.executed}, ""
	case contract.MethodHasVoted:
		voter := args[0].(common.Address)
		_, id, reason := n.lookup(args[1])
		if reason != "" {
			return nil, reason
		}
		return []interface{}{n.voted[id][voter]}, ""
	case contract.MethodGetAllProposals:
		type tuple struct {
			Title       string
			Description string
			VoteCount   *big.Int
			Executed    bool
		}
		all := make([]tuple, 0, len(n.proposals))
		for _, p := range n.proposals {
			all = append(all, tuple{p.title, p.description, new(big.Int).Set(p.votes), p.executed})
		}
		return []interface{}{all}, ""
	default:
		return nil, "function is not read-only"
	}
}

func (n *Node) lookup(arg interface{}) (*proposal, uint64, string) {
	id, ok := arg.(*big.Int)
	if !ok || !id.IsUint64() || id.Uint64() >= uint64(len(n.proposals)) {
		return nil, 0, "Invalid proposal ID"
	}
	return n.proposals[id.Uint64()], id.Uint64(), ""
}

// revertError builds the error geth returns for a reverted eth_call,
// including the ABI encoded Error(string) payload.
func revertError(reason string) error {
	msg := "execution reverted"
	if reason == "" {
		return &RPCError{Code: 3, Message: msg, Data: "0x"}
	}
	stringTy, _ := abi.NewType("string", "", nil)
	payload, _ := abi.Arguments{{Type: stringTy}}.Pack(reason)
	selector := crypto.Keccak256([]byte("Error(string)"))[:4]
	return &RPCError{
		Code:    3,
		Message: msg + ": " + reason,
		Data:    hexutil.Encode(append(selector, payload...)),
	}
}
