// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package config

import (
	"time"
)

const DEFAULT_TALLY_CONTRACT_ADDRESS = "0xddAEfFb5eaD735E1Cc5Ce04b980958f82F2C373f"

// all other configs are variations from the production one
func defaultProductionConfig() mutableNodeConfig {
	cfg := emptyConfig()

	cfg.SetString(ETHEREUM_ENDPOINT, "http://localhost:8545")
	cfg.SetBool(ETHEREUM_BATCH_CALLS, true)
	cfg.SetDuration(ETHEREUM_CONNECTION_STATUS_INTERVAL, 30*time.Second)

	cfg.SetString(TALLY_CONTRACT_ADDRESS, DEFAULT_TALLY_CONTRACT_ADDRESS)

	// roughly one ethereum block
	cfg.SetDuration(TALLY_COUNT_WATCH_INTERVAL, 15*time.Second)
	cfg.SetDuration(TALLY_POLL_INTERVAL, 1*time.Minute)

	// must stay below TALLY_COUNT_WATCH_INTERVAL so cycles do not pile up on a slow node
	cfg.SetDuration(TALLY_CALL_TIMEOUT, 10*time.Second)
	cfg.SetUint32(TALLY_MAX_CANDIDATES, 1000)
	cfg.SetDuration(TALLY_MANUAL_REFRESH_MIN_INTERVAL, 2*time.Second)

	cfg.SetString(HTTP_ADDRESS, ":8080")
	cfg.SetUint32(HTTP_MAX_CONNECTIONS, 256)
	cfg.SetBool(PROFILING, false)

	cfg.SetDuration(METRICS_REPORT_INTERVAL, 30*time.Second)

	cfg.SetBool(LOGGER_FULL_LOG, false)
	cfg.SetDuration(LOGGER_FILE_TRUNCATION_INTERVAL, 24*time.Hour)
	cfg.SetUint32(LOGGER_BULK_SIZE, 100)

	return cfg
}

func ForProduction(httpAddress string) mutableNodeConfig {
	cfg := defaultProductionConfig()
	if httpAddress != "" {
		cfg.SetString(HTTP_ADDRESS, httpAddress)
	}
	return cfg
}

// fast intervals, random port, no external endpoints
func ForTallyTests(ethereumEndpoint string) mutableNodeConfig {
	cfg := defaultProductionConfig()

	cfg.SetString(ETHEREUM_ENDPOINT, ethereumEndpoint)
	cfg.SetDuration(ETHEREUM_CONNECTION_STATUS_INTERVAL, 1*time.Second)
	cfg.SetDuration(TALLY_COUNT_WATCH_INTERVAL, 50*time.Millisecond)
	cfg.SetDuration(TALLY_POLL_INTERVAL, 200*time.Millisecond)
	cfg.SetDuration(TALLY_CALL_TIMEOUT, 40*time.Millisecond)
	cfg.SetUint32(TALLY_MAX_CANDIDATES, 100)
	cfg.SetDuration(TALLY_MANUAL_REFRESH_MIN_INTERVAL, 1*time.Hour)
	cfg.SetString(HTTP_ADDRESS, "127.0.0.1:0")
	cfg.SetDuration(METRICS_REPORT_INTERVAL, 1*time.Minute)
	cfg.SetBool(LOGGER_FULL_LOG, true)

	return cfg
}
