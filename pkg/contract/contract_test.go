package contract

import (
	"errors"
	"math/big"
	"testing"

	"github.com/Mahd-Mehn/dao-voting/pkg/errno"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testContract = "0x29192C5d95BF89B8Db9e4390Bb175b811277b005"

func newDescriptor(t *testing.T) *Descriptor {
	d, err := VotingDAO(testContract)
	require.NoError(t, err)
	return d
}

func TestVotingDAOMethods(t *testing.T) {
	d := newDescriptor(t)

	for _, name := range []string{MethodCreateProposal, MethodDeleteProposal, MethodExecuteProposal, MethodVote} {
		assert.False(t, d.IsReadOnly(name), name)
	}
	for _, name := range []string{MethodGetAllProposals, MethodGetProposal, MethodHasVoted, MethodProposalCount, MethodProposals} {
		assert.True(t, d.IsReadOnly(name), name)
	}
	assert.Equal(t, common.HexToAddress(testContract), d.Address)
}

func TestPackSelector(t *testing.T) {
	d := newDescriptor(t)

	data, err := d.Pack(Vote(7))
	require.NoError(t, err)

	m, err := d.Method(MethodVote)
	require.NoError(t, err)
	assert.Equal(t, m.ID, data[:4])
	assert.Len(t, data, 4+32)
	assert.Equal(t, big.NewInt(7), new(big.Int).SetBytes(data[4:]))
}

func TestPackErrors(t *testing.T) {
	d := newDescriptor(t)

	tests := []struct {
		name string
		spec CallSpec
	}{
		{"unknown method", CallSpec{Method: "transfer"}},
		{"missing argument", CallSpec{Method: MethodCreateProposal, Args: []interface{}{"only title"}}},
		{"wrong type", CallSpec{Method: MethodVote, Args: []interface{}{"zero"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Pack(tt.spec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errno.ErrInvalidInput), err)
		})
	}
}

func TestUnpackProposal(t *testing.T) {
	d := newDescriptor(t)
	m, err := d.Method(MethodGetProposal)
	require.NoError(t, err)

	out, err := m.Outputs.Pack("Budget 2025", "Approve annual budget", big.NewInt(3), true)
	require.NoError(t, err)

	values, err := d.Unpack(MethodGetProposal, out)
	require.NoError(t, err)

	p, err := DecodeProposal(values)
	require.NoError(t, err)
	assert.Equal(t, "Budget 2025", p.Title)
	assert.Equal(t, "Approve annual budget", p.Description)
	assert.Equal(t, int64(3), p.VoteCount.Int64())
	assert.True(t, p.Executed)
}

func TestUnpackMalformed(t *testing.T) {
	d := newDescriptor(t)

	_, err := d.Unpack(MethodProposalCount, nil)
	assert.True(t, errors.Is(err, errno.ErrDecode), err)

	_, err = d.Unpack(MethodGetProposal, []byte{0x01, 0x02})
	assert.True(t, errors.Is(err, errno.ErrDecode), err)
}

func TestDecodeUint64(t *testing.T) {
	n, err := DecodeUint64([]interface{}{big.NewInt(42)})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n)

	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	_, err = DecodeUint64([]interface{}{huge})
	assert.True(t, errors.Is(err, errno.ErrDecode))

	_, err = DecodeUint64([]interface{}{"42"})
	assert.True(t, errors.Is(err, errno.ErrDecode))
}

func TestParseArgs(t *testing.T) {
	d := newDescriptor(t)

	m, err := d.Method(MethodHasVoted)
	require.NoError(t, err)

	args, err := ParseArgs(m, []string{"0x9858EfFD232B4033E47d90003D41EC34EcaEda94", "12"})
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x9858EfFD232B4033E47d90003D41EC34EcaEda94"), args[0])
	assert.Equal(t, big.NewInt(12), args[1])

	_, err = d.Pack(CallSpec{Method: MethodHasVoted, Args: args})
	require.NoError(t, err)

	_, err = ParseArgs(m, []string{"not-an-address", "12"})
	assert.True(t, errors.Is(err, errno.ErrInvalidInput))

	_, err = ParseArgs(m, []string{"0x9858EfFD232B4033E47d90003D41EC34EcaEda94", "-1"})
	assert.True(t, errors.Is(err, errno.ErrInvalidInput))

	_, err = ParseArgs(m, []string{"12"})
	assert.True(t, errors.Is(err, errno.ErrInvalidInput))
}
