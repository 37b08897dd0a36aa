package ledgerreader

import (
	"fmt"
	"github.com/ethereum/go-ethereum/common"
	"math/big"
	"strings"
)

const (
	GetCandidateCount = "getCandidateCount"
	GetCandidate      = "getCandidate"
)

// ReadDescriptor is one read-only contract call: target address, function and its arguments.
type ReadDescriptor struct {
	Address      common.Address
	FunctionName string
	Arguments    []*big.Int
}

func CandidateCountRead(address common.Address) *ReadDescriptor {
	return &ReadDescriptor{
		Address:      address,
		FunctionName: GetCandidateCount,
	}
}

func CandidateRead(address common.Address, index uint64) *ReadDescriptor {
	return &ReadDescriptor{
		Address:      address,
		FunctionName: GetCandidate,
		Arguments:    []*big.Int{new(big.Int).SetUint64(index)},
	}
}

// CandidateReads derives one getCandidate descriptor per index in [0, count)
func CandidateReads(address common.Address, count uint64) []*ReadDescriptor {
	descriptors := make([]*ReadDescriptor, count)
	for i := uint64(0); i < count; i++ {
		descriptors[i] = CandidateRead(address, i)
	}
	return descriptors
}

func (d *ReadDescriptor) Args() []interface{} {
	args := make([]interface{}, len(d.Arguments))
	for i, arg := range d.Arguments {
		args[i] = arg
	}
	return args
}

// Key identifies the read for caching: (address, functionName, arguments)
func (d *ReadDescriptor) Key() string {
	args := make([]string, len(d.Arguments))
	for i, arg := range d.Arguments {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s/%s(%s)", strings.ToLower(d.Address.Hex()), d.FunctionName, strings.Join(args, ","))
}

func (d *ReadDescriptor) String() string {
	return d.Key()
}
