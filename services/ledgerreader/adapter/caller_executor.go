package adapter

import (
	"context"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/orbs-network/orbs-tally/services/ledgerreader"
)

// ContractCallerExecutor issues the reads of a batch one after the other, for endpoints without batch support
type ContractCallerExecutor struct {
	getContractCaller func(ctx context.Context) (bind.ContractCaller, error)
	contract          *ledgerreader.Contract
}

func NewContractCallerExecutor(getContractCaller func(ctx context.Context) (bind.ContractCaller, error), contract *ledgerreader.Contract) *ContractCallerExecutor {
	return &ContractCallerExecutor{
		getContractCaller: getContractCaller,
		contract:          contract,
	}
}

func (e *ContractCallerExecutor) ExecuteBatch(ctx context.Context, descriptors []*ledgerreader.ReadDescriptor) ([]*ledgerreader.ReadOutcome, error) {
	client, err := e.getContractCaller(ctx)
	if err != nil {
		return nil, ledgerreader.TransportError(err, "no contract caller")
	}

	outputs := make([][]byte, len(descriptors))
	errs := make([]error, len(descriptors))
	for i, d := range descriptors {
		input, err := e.contract.PackInput(d)
		if err != nil {
			errs[i] = ledgerreader.DecodeError(err, "failed packing call")
			continue
		}
		outputs[i], errs[i] = e.call(ctx, client, d, input)
	}

	return e.contract.Decode(descriptors, outputs, errs), nil
}

func (e *ContractCallerExecutor) call(ctx context.Context, client bind.ContractCaller, d *ledgerreader.ReadDescriptor, input []byte) ([]byte, error) {
	address := d.Address
	output, err := client.CallContract(ctx, ethereum.CallMsg{To: &address, Data: input}, nil)
	if err != nil {
		return nil, ledgerreader.TransportError(err, "call failed for "+d.String())
	}
	if len(output) == 0 {
		// Make sure we have a contract to operate on, and bail out otherwise.
		if code, err := client.CodeAt(ctx, address, nil); err != nil {
			return nil, ledgerreader.TransportError(err, "failed reading code at "+address.Hex())
		} else if len(code) == 0 {
			return nil, ledgerreader.TransportError(bind.ErrNoCode, "call failed for "+d.String())
		}
	}
	return output, nil
}
