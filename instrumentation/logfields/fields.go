// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package logfields

import (
	"github.com/orbs-network/govnr"
	"github.com/orbs-network/scribe/log"
	"runtime/debug"
)

func Cycle(value uint64) *log.Field {
	return &log.Field{Key: "cycle", Uint: value, Type: log.UintType}
}

func CandidateCount(value uint64) *log.Field {
	return &log.Field{Key: "candidate-count", Uint: value, Type: log.UintType}
}

func ContractAddress(value string) *log.Field {
	return log.String("contract-address", value)
}

type Errorer interface {
	Error(message string, fields ...*log.Field)
}

type govnrErrorer struct {
	logger Errorer
}

func (h *govnrErrorer) Error(err error) {
	h.logger.Error("recovered panic", log.Error(err), log.String("stack-trace", string(debug.Stack())))
}

func GovnrErrorer(logger Errorer) govnr.Errorer {
	return &govnrErrorer{logger}
}
