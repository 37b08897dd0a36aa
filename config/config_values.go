// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package config

import (
	"strings"
	"time"
)

type NodeConfigValue struct {
	Uint32Value   uint32
	DurationValue time.Duration
	StringValue   string
	BoolValue     bool
}

type NodeConfigKeyValue struct {
	Key   string
	Value NodeConfigValue
}

type config struct {
	kv map[string]NodeConfigValue
}

const (
	ETHEREUM_ENDPOINT                   = "ETHEREUM_ENDPOINT"
	ETHEREUM_BATCH_CALLS                = "ETHEREUM_BATCH_CALLS"
	ETHEREUM_CONNECTION_STATUS_INTERVAL = "ETHEREUM_CONNECTION_STATUS_INTERVAL"

	TALLY_CONTRACT_ADDRESS            = "TALLY_CONTRACT_ADDRESS"
	TALLY_POLL_INTERVAL               = "TALLY_POLL_INTERVAL"
	TALLY_COUNT_WATCH_INTERVAL        = "TALLY_COUNT_WATCH_INTERVAL"
	TALLY_CALL_TIMEOUT                = "TALLY_CALL_TIMEOUT"
	TALLY_MAX_CANDIDATES              = "TALLY_MAX_CANDIDATES"
	TALLY_MANUAL_REFRESH_MIN_INTERVAL = "TALLY_MANUAL_REFRESH_MIN_INTERVAL"

	HTTP_ADDRESS         = "HTTP_ADDRESS"
	HTTP_MAX_CONNECTIONS = "HTTP_MAX_CONNECTIONS"
	PROFILING            = "PROFILING"

	KAFKA_BROKERS = "KAFKA_BROKERS"
	KAFKA_TOPIC   = "KAFKA_TOPIC"

	METRICS_REPORT_INTERVAL = "METRICS_REPORT_INTERVAL"

	LOGGER_FULL_LOG                 = "LOGGER_FULL_LOG"
	LOGGER_FILE_TRUNCATION_INTERVAL = "LOGGER_FILE_TRUNCATION_INTERVAL"
	LOGGER_HTTP_ENDPOINT            = "LOGGER_HTTP_ENDPOINT"
	LOGGER_BULK_SIZE                = "LOGGER_BULK_SIZE"
)

func emptyConfig() mutableNodeConfig {
	return &config{
		kv: make(map[string]NodeConfigValue),
	}
}

func (c *config) Set(key string, value NodeConfigValue) mutableNodeConfig {
	c.kv[key] = value
	return c
}

func (c *config) SetDuration(key string, value time.Duration) mutableNodeConfig {
	c.kv[key] = NodeConfigValue{DurationValue: value}
	return c
}

func (c *config) SetUint32(key string, value uint32) mutableNodeConfig {
	c.kv[key] = NodeConfigValue{Uint32Value: value}
	return c
}

func (c *config) SetString(key string, value string) mutableNodeConfig {
	c.kv[key] = NodeConfigValue{StringValue: value}
	return c
}

func (c *config) SetBool(key string, value bool) mutableNodeConfig {
	c.kv[key] = NodeConfigValue{BoolValue: value}
	return c
}

func (c *config) Modify(newValues ...NodeConfigKeyValue) {
	for _, kv := range newValues {
		c.kv[kv.Key] = kv.Value
	}
}

func (c *config) EthereumEndpoint() string {
	return c.kv[ETHEREUM_ENDPOINT].StringValue
}

func (c *config) EthereumBatchCalls() bool {
	return c.kv[ETHEREUM_BATCH_CALLS].BoolValue
}

func (c *config) EthereumConnectionStatusInterval() time.Duration {
	return c.kv[ETHEREUM_CONNECTION_STATUS_INTERVAL].DurationValue
}

func (c *config) TallyContractAddress() string {
	return c.kv[TALLY_CONTRACT_ADDRESS].StringValue
}

func (c *config) TallyPollInterval() time.Duration {
	return c.kv[TALLY_POLL_INTERVAL].DurationValue
}

func (c *config) TallyCountWatchInterval() time.Duration {
	return c.kv[TALLY_COUNT_WATCH_INTERVAL].DurationValue
}

func (c *config) TallyCallTimeout() time.Duration {
	return c.kv[TALLY_CALL_TIMEOUT].DurationValue
}

func (c *config) TallyMaxCandidates() uint32 {
	return c.kv[TALLY_MAX_CANDIDATES].Uint32Value
}

func (c *config) TallyManualRefreshMinInterval() time.Duration {
	return c.kv[TALLY_MANUAL_REFRESH_MIN_INTERVAL].DurationValue
}

func (c *config) HttpAddress() string {
	return c.kv[HTTP_ADDRESS].StringValue
}

func (c *config) HttpMaxConnections() uint32 {
	return c.kv[HTTP_MAX_CONNECTIONS].Uint32Value
}

func (c *config) Profiling() bool {
	return c.kv[PROFILING].BoolValue
}

// comma separated list of host:port
func (c *config) KafkaBrokers() []string {
	value := c.kv[KAFKA_BROKERS].StringValue
	if value == "" {
		return nil
	}

	var brokers []string
	for _, broker := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(broker); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}

func (c *config) KafkaTopic() string {
	return c.kv[KAFKA_TOPIC].StringValue
}

func (c *config) MetricsReportInterval() time.Duration {
	return c.kv[METRICS_REPORT_INTERVAL].DurationValue
}

func (c *config) LoggerFullLog() bool {
	return c.kv[LOGGER_FULL_LOG].BoolValue
}

func (c *config) LoggerFileTruncationInterval() time.Duration {
	return c.kv[LOGGER_FILE_TRUNCATION_INTERVAL].DurationValue
}

func (c *config) LoggerHttpEndpoint() string {
	return c.kv[LOGGER_HTTP_ENDPOINT].StringValue
}

func (c *config) LoggerBulkSize() uint32 {
	return c.kv[LOGGER_BULK_SIZE].Uint32Value
}
