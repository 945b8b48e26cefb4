// Package contract describes the VotingDAO contract interface and turns
// declarative call specs into call data and back.
package contract

import (
	_ "embed"
	"fmt"
	"io"
	"math/big"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/Mahd-Mehn/dao-voting/pkg/errno"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

//go:embed voting_dao.abi.json
var votingDAOABI string

// VotingDAO entry points
const (
	MethodCreateProposal  = "createProposal"
	MethodDeleteProposal  = "deleteProposal"
	MethodExecuteProposal = "executeProposal"
	MethodVote            = "vote"
	MethodGetAllProposals = "getAllProposals"
	MethodGetProposal     = "getProposal"
	MethodHasVoted        = "hasVoted"
	MethodProposalCount   = "proposalCount"
	MethodProposals       = "proposals"
)

// CallSpec names a contract entry point and its ordered arguments.
// Argument Go types must match what the ABI packer expects for the
// declared Solidity types (*big.Int for uint256, common.Address, ...).
type CallSpec struct {
	Method string
	Args   []interface{}
}

func (s CallSpec) String() string {
	return fmt.Sprintf("%s%v", s.Method, s.Args)
}

func CreateProposal(title, description string) CallSpec {
	return CallSpec{Method: MethodCreateProposal, Args: []interface{}{title, description}}
}

func DeleteProposal(id uint64) CallSpec {
	return CallSpec{Method: MethodDeleteProposal, Args: []interface{}{new(big.Int).SetUint64(id)}}
}

func ExecuteProposal(id uint64) CallSpec {
	return CallSpec{Method: MethodExecuteProposal, Args: []interface{}{new(big.Int).SetUint64(id)}}
}

func Vote(id uint64) CallSpec {
	return CallSpec{Method: MethodVote, Args: []interface{}{new(big.Int).SetUint64(id)}}
}

func GetProposal(id uint64) CallSpec {
	return CallSpec{Method: MethodGetProposal, Args: []interface{}{new(big.Int).SetUint64(id)}}
}

func GetAllProposals() CallSpec {
	return CallSpec{Method: MethodGetAllProposals}
}

func ProposalCount() CallSpec {
	return CallSpec{Method: MethodProposalCount}
}

func HasVoted(voter common.Address, id uint64) CallSpec {
	return CallSpec{Method: MethodHasVoted, Args: []interface{}{voter, new(big.Int).SetUint64(id)}}
}

// Descriptor binds a contract address to its ABI.
type Descriptor struct {
	Address common.Address
	ABI     abi.ABI
}

// NewDescriptor parses the ABI JSON read from r.
func NewDescriptor(address string, r io.Reader) (*Descriptor, error) {
	if !common.IsHexAddress(address) {
		return nil, errno.ErrInvalidInput.Wrapf("contract address %q", address)
	}
	parsed, err := abi.JSON(r)
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}
	return &Descriptor{Address: common.HexToAddress(address), ABI: parsed}, nil
}

// VotingDAO returns a descriptor using the embedded VotingDAO ABI.
func VotingDAO(address string) (*Descriptor, error) {
	return NewDescriptor(address, strings.NewReader(votingDAOABI))
}

// Load reads the ABI from abiPath, falling back to the embedded one when
// the path is empty.
func Load(address, abiPath string) (*Descriptor, error) {
	if abiPath == "" {
		return VotingDAO(address)
	}
	f, err := os.Open(abiPath)
	if err != nil {
		return nil, fmt.Errorf("open abi file: %w", err)
	}
	defer f.Close()
	return NewDescriptor(address, f)
}

// Method looks up an entry point by name.
func (d *Descriptor) Method(name string) (abi.Method, error) {
	m, ok := d.ABI.Methods[name]
	if !ok {
		return abi.Method{}, errno.ErrInvalidInput.Wrapf("contract has no method %q", name)
	}
	return m, nil
}

// IsReadOnly reports whether the method is a view/pure function.
func (d *Descriptor) IsReadOnly(name string) bool {
	m, ok := d.ABI.Methods[name]
	return ok && m.IsConstant()
}

// Pack encodes spec into call data. Any mismatch between the spec and the
// ABI is an input error.
func (d *Descriptor) Pack(spec CallSpec) ([]byte, error) {
	m, err := d.Method(spec.Method)
	if err != nil {
		return nil, err
	}
	if len(spec.Args) != len(m.Inputs) {
		return nil, errno.ErrInvalidInput.Wrapf("%s expects %d arguments, got %d", spec.Method, len(m.Inputs), len(spec.Args))
	}
	data, err := d.ABI.Pack(spec.Method, spec.Args...)
	if err != nil {
		return nil, errno.ErrInvalidInput.Wrapf("encode %s: %v", spec.Method, err)
	}
	return data, nil
}

// Unpack decodes the return data of method.
func (d *Descriptor) Unpack(method string, data []byte) ([]interface{}, error) {
	m, err := d.Method(method)
	if err != nil {
		return nil, err
	}
	if len(m.Outputs) > 0 && len(data) == 0 {
		return nil, errno.ErrDecode.Wrapf("%s returned no data", method)
	}
	values, err := d.ABI.Unpack(method, data)
	if err != nil {
		return nil, errno.ErrDecode.Wrapf("decode %s: %v", method, err)
	}
	return values, nil
}

// ParseArgs converts textual arguments into the Go values the ABI packer
// expects for method's inputs.
func ParseArgs(method abi.Method, raw []string) ([]interface{}, error) {
	if len(raw) != len(method.Inputs) {
		return nil, errno.ErrInvalidInput.Wrapf("%s expects %d arguments, got %d", method.Name, len(method.Inputs), len(raw))
	}
	args := make([]interface{}, len(raw))
	for i, input := range method.Inputs {
		v, err := parseArg(input.Type, raw[i])
		if err != nil {
			return nil, errno.ErrInvalidInput.Wrapf("argument %d (%s %s): %v", i, input.Type.String(), input.Name, err)
		}
		args[i] = v
	}
	return args, nil
}

func parseArg(t abi.Type, s string) (interface{}, error) {
	switch t.T {
	case abi.UintTy, abi.IntTy:
		n, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return nil, fmt.Errorf("not an integer: %q", s)
		}
		if t.T == abi.UintTy && n.Sign() < 0 {
			return nil, fmt.Errorf("negative value for unsigned type")
		}
		if t.Size > 64 {
			return n, nil
		}
		// small integer types pack from their exact Go kind
		goType := t.GetType()
		if t.T == abi.UintTy {
			if !n.IsUint64() || n.BitLen() > t.Size {
				return nil, fmt.Errorf("value out of range")
			}
			return reflect.ValueOf(n.Uint64()).Convert(goType).Interface(), nil
		}
		if !n.IsInt64() || n.BitLen() >= t.Size {
			return nil, fmt.Errorf("value out of range")
		}
		return reflect.ValueOf(n.Int64()).Convert(goType).Interface(), nil
	case abi.BoolTy:
		return strconv.ParseBool(s)
	case abi.StringTy:
		return s, nil
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("not an address: %q", s)
		}
		return common.HexToAddress(s), nil
	case abi.BytesTy:
		return hexutil.Decode(s)
	default:
		return nil, fmt.Errorf("unsupported argument type %s", t.String())
	}
}
