// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package adapter

import (
	"context"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/orbs-network/orbs-tally/services/ledgerreader"
	"github.com/orbs-network/scribe/log"
)

// RpcBatchExecutor sends all reads of a batch as a single JSON-RPC batch of eth_call requests
type RpcBatchExecutor struct {
	caller   BatchCaller
	contract *ledgerreader.Contract
	logger   log.Logger
}

func NewRpcBatchExecutor(caller BatchCaller, contract *ledgerreader.Contract, logger log.Logger) *RpcBatchExecutor {
	return &RpcBatchExecutor{
		caller:   caller,
		contract: contract,
		logger:   logger.WithTags(log.String("executor", "rpc-batch")),
	}
}

func (e *RpcBatchExecutor) ExecuteBatch(ctx context.Context, descriptors []*ledgerreader.ReadDescriptor) ([]*ledgerreader.ReadOutcome, error) {
	if len(descriptors) == 0 {
		return []*ledgerreader.ReadOutcome{}, nil
	}

	elems := make([]rpc.BatchElem, len(descriptors))
	results := make([]hexutil.Bytes, len(descriptors))
	for i, d := range descriptors {
		input, err := e.contract.PackInput(d)
		if err != nil {
			return nil, ledgerreader.DecodeError(err, "failed building batch")
		}
		elems[i] = rpc.BatchElem{
			Method: "eth_call",
			Args: []interface{}{
				map[string]interface{}{
					"to":   d.Address,
					"data": hexutil.Bytes(input),
				},
				"latest",
			},
			Result: &results[i],
		}
	}

	if err := e.caller.BatchCallContext(ctx, elems); err != nil {
		return nil, ledgerreader.TransportError(err, "eth_call batch failed")
	}

	outputs := make([][]byte, len(descriptors))
	errs := make([]error, len(descriptors))
	for i, elem := range elems {
		if elem.Error != nil {
			e.logger.Info("eth_call failed", log.Stringable("read", descriptors[i]), log.Error(elem.Error))
			errs[i] = ledgerreader.TransportError(elem.Error, "eth_call failed for "+descriptors[i].String())
			continue
		}
		outputs[i] = results[i]
	}

	return e.contract.Decode(descriptors, outputs, errs), nil
}
