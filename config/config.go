// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package config

import (
	"time"
)

type NodeConfig interface {
	// ethereum
	EthereumEndpoint() string
	EthereumBatchCalls() bool
	EthereumConnectionStatusInterval() time.Duration

	// tally
	TallyContractAddress() string
	TallyPollInterval() time.Duration
	TallyCountWatchInterval() time.Duration
	TallyCallTimeout() time.Duration
	TallyMaxCandidates() uint32
	TallyManualRefreshMinInterval() time.Duration

	// http
	HttpAddress() string
	HttpMaxConnections() uint32
	Profiling() bool

	// kafka
	KafkaBrokers() []string
	KafkaTopic() string

	// metrics
	MetricsReportInterval() time.Duration

	// logger
	LoggerFullLog() bool
	LoggerFileTruncationInterval() time.Duration
	LoggerHttpEndpoint() string
	LoggerBulkSize() uint32
}

type mutableNodeConfig interface {
	NodeConfig
	Set(key string, value NodeConfigValue) mutableNodeConfig
	SetDuration(key string, value time.Duration) mutableNodeConfig
	SetUint32(key string, value uint32) mutableNodeConfig
	SetString(key string, value string) mutableNodeConfig
	SetBool(key string, value bool) mutableNodeConfig
	Modify(newValues ...NodeConfigKeyValue)
}

type EthereumReaderConfig interface {
	EthereumEndpoint() string
	EthereumBatchCalls() bool
	EthereumConnectionStatusInterval() time.Duration
}

type HttpServerConfig interface {
	HttpAddress() string
	HttpMaxConnections() uint32
	Profiling() bool
}
