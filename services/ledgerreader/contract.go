package ledgerreader

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
	"strings"
)

const VotingContractABI = `[
	{
		"inputs": [{"internalType": "uint256", "name": "_candidateIndex", "type": "uint256"}],
		"name": "getCandidate",
		"outputs": [
			{"internalType": "string", "name": "name", "type": "string"},
			{"internalType": "uint256", "name": "voteCount", "type": "uint256"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "getCandidateCount",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

// Contract packs call inputs and unpacks call outputs for a parsed ABI.
type Contract struct {
	abi abi.ABI
}

func NewContract(jsonAbi string) (*Contract, error) {
	parsed, err := abi.JSON(strings.NewReader(jsonAbi))
	if err != nil {
		return nil, errors.Wrap(err, "failed parsing contract abi")
	}
	return &Contract{abi: parsed}, nil
}

func NewVotingContract() *Contract {
	c, err := NewContract(VotingContractABI)
	if err != nil {
		panic(err) // the embedded abi is static
	}
	return c
}

func (c *Contract) PackInput(d *ReadDescriptor) ([]byte, error) {
	if _, found := c.abi.Methods[d.FunctionName]; !found {
		return nil, errors.Errorf("method '%s' not found in contract abi", d.FunctionName)
	}
	input, err := c.abi.Pack(d.FunctionName, d.Args()...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed packing input for %s", d)
	}
	return input, nil
}

func (c *Contract) UnpackOutput(functionName string, output []byte) ([]interface{}, error) {
	method, found := c.abi.Methods[functionName]
	if !found {
		return nil, DecodeErrorf("method '%s' not found in contract abi", functionName)
	}
	if len(output) == 0 && len(method.Outputs) > 0 {
		return nil, DecodeErrorf("empty output returned for %s", functionName)
	}
	values, err := method.Outputs.UnpackValues(output)
	if err != nil {
		return nil, DecodeError(err, "failed unpacking output of "+functionName)
	}
	return values, nil
}

// PackOutput is the inverse of UnpackOutput, used by fakes that play the role of a node
func (c *Contract) PackOutput(functionName string, values ...interface{}) ([]byte, error) {
	method, found := c.abi.Methods[functionName]
	if !found {
		return nil, errors.Errorf("method '%s' not found in contract abi", functionName)
	}
	return method.Outputs.Pack(values...)
}

// Decode unpacks each raw output into an outcome; a raw output that already failed stays failed
func (c *Contract) Decode(descriptors []*ReadDescriptor, outputs [][]byte, errs []error) []*ReadOutcome {
	outcomes := make([]*ReadOutcome, len(descriptors))
	for i, d := range descriptors {
		if errs[i] != nil {
			outcomes[i] = Failed(errs[i])
			continue
		}
		values, err := c.UnpackOutput(d.FunctionName, outputs[i])
		if err != nil {
			outcomes[i] = Failed(err)
		} else {
			outcomes[i] = Succeeded(values...)
		}
	}
	return outcomes
}
