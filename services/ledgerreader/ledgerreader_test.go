package ledgerreader

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"math/big"
	"testing"
)

var testAddress = common.HexToAddress("0xddAEfFb5eaD735E1Cc5Ce04b980958f82F2C373f")

func TestCandidateReads_DerivesOneDescriptorPerIndex(t *testing.T) {
	descriptors := CandidateReads(testAddress, 3)

	require.Len(t, descriptors, 3)
	for i, d := range descriptors {
		require.Equal(t, GetCandidate, d.FunctionName)
		require.Equal(t, testAddress, d.Address)
		require.Len(t, d.Arguments, 1)
		require.EqualValues(t, i, d.Arguments[0].Uint64(), "descriptor at position %d should request index %d", i, i)
	}
}

func TestCandidateReads_ZeroCountDerivesNothing(t *testing.T) {
	require.Empty(t, CandidateReads(testAddress, 0))
}

func TestReadDescriptor_KeyDistinguishesFunctionAndArguments(t *testing.T) {
	count := CandidateCountRead(testAddress)
	first := CandidateRead(testAddress, 0)
	second := CandidateRead(testAddress, 1)
	sameAsFirst := CandidateRead(common.HexToAddress("0xddaeffb5ead735e1cc5ce04b980958f82f2c373f"), 0)

	require.NotEqual(t, count.Key(), first.Key())
	require.NotEqual(t, first.Key(), second.Key())
	require.Equal(t, first.Key(), sameAsFirst.Key(), "address case should not matter")
}

func TestContract_PacksCandidateCallWithSelector(t *testing.T) {
	c := NewVotingContract()

	input, err := c.PackInput(CandidateRead(testAddress, 2))
	require.NoError(t, err)
	require.Len(t, input, 4+32, "expected selector and a single uint256 word")
	require.EqualValues(t, 2, input[len(input)-1])
}

func TestContract_PackInputRejectsUnknownFunction(t *testing.T) {
	c := NewVotingContract()

	_, err := c.PackInput(&ReadDescriptor{Address: testAddress, FunctionName: "vote"})
	require.Error(t, err)
}

func TestContract_UnpacksCandidateOutput(t *testing.T) {
	c := NewVotingContract()
	output, err := c.PackOutput(GetCandidate, "Alice", big.NewInt(10))
	require.NoError(t, err)

	values, err := c.UnpackOutput(GetCandidate, output)
	require.NoError(t, err)
	require.Len(t, values, 2)
	require.Equal(t, "Alice", values[0])
	require.EqualValues(t, 10, values[1].(*big.Int).Int64())
}

func TestContract_UnpackEmptyOutputIsDecodeError(t *testing.T) {
	c := NewVotingContract()

	_, err := c.UnpackOutput(GetCandidateCount, nil)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, DecodeErrorKind, kind)
}

func TestContract_UnpackTruncatedOutputIsDecodeError(t *testing.T) {
	c := NewVotingContract()
	output, err := c.PackOutput(GetCandidate, "Bob", big.NewInt(5))
	require.NoError(t, err)

	_, err = c.UnpackOutput(GetCandidate, output[:40])
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, DecodeErrorKind, kind)
}

func TestContract_DecodeKeepsPerItemFailures(t *testing.T) {
	c := NewVotingContract()
	good, err := c.PackOutput(GetCandidate, "Carol", big.NewInt(0))
	require.NoError(t, err)

	descriptors := CandidateReads(testAddress, 2)
	failure := TransportError(errors.New("execution reverted"), "call failed")
	outcomes := c.Decode(descriptors, [][]byte{good, nil}, []error{nil, failure})

	require.True(t, outcomes[0].IsSuccess())
	require.False(t, outcomes[1].IsSuccess())
	require.Equal(t, failure, outcomes[1].Err)
}

func TestKindOf_FindsKindThroughWrapping(t *testing.T) {
	err := errors.Wrap(RangeErrorf("too big"), "while reducing")

	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, RangeErrorKind, kind)
	require.Contains(t, err.Error(), "RangeError: too big")
}

func TestClassify_TreatsUnknownErrorsAsTransport(t *testing.T) {
	err := Classify(errors.New("connection refused"), "dial failed")

	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, TransportErrorKind, kind)
	require.Nil(t, Classify(nil, "nothing"))
}

func TestReadCache_OnlyServesEntriesOfTheSameCycle(t *testing.T) {
	cache := NewReadCache()
	read := CandidateCountRead(testAddress)

	cache.BeginCycle(1)
	cache.Put(1, read, Succeeded(big.NewInt(3)))

	_, found := cache.Get(1, read)
	require.True(t, found)

	_, found = cache.Get(2, read)
	require.False(t, found, "a newer cycle must not see entries of an older one")
}

func TestReadCache_NewCycleInvalidatesOlderEntries(t *testing.T) {
	cache := NewReadCache()
	read := CandidateCountRead(testAddress)

	cache.BeginCycle(1)
	cache.Put(1, read, Succeeded(big.NewInt(3)))
	cache.BeginCycle(2)

	require.Equal(t, 0, cache.Size())
}

func TestReadCache_IgnoresWritesFromSupersededCycle(t *testing.T) {
	cache := NewReadCache()
	read := CandidateCountRead(testAddress)

	cache.BeginCycle(1)
	cache.BeginCycle(2)
	cache.Put(1, read, Succeeded(big.NewInt(3)))

	require.Equal(t, 0, cache.Size())
	_, found := cache.Get(1, read)
	require.False(t, found)
}
