// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package adapter

import (
	"context"
	"github.com/orbs-network/orbs-tally/instrumentation/metric"
	"github.com/orbs-network/orbs-tally/synchronization"
	"github.com/orbs-network/scribe/log"
	"github.com/pkg/errors"
	"time"
)

type connectionStatusMetrics struct {
	syncStatus *metric.Text
	lastBlock  *metric.Gauge
}

const STATUS_FAILED = "failed"
const STATUS_SUCCESS = "success"
const STATUS_IN_PROGRESS = "in-progress"

func createConnectionStatusMetrics(registry metric.Registry) *connectionStatusMetrics {
	return &connectionStatusMetrics{
		syncStatus: registry.NewText("Ethereum.Node.Sync.Status", STATUS_FAILED),
		lastBlock:  registry.NewGauge("Ethereum.Node.LastBlock"),
	}
}

func (c *EthereumRpcConnection) ReportConnectionStatus(ctx context.Context, interval time.Duration) *synchronization.PeriodicalTrigger {
	metrics := createConnectionStatusMetrics(c.registry)

	trigger := synchronization.NewPeriodicalTrigger(ctx, "ethereum connection status reporter", interval, c.logger, func() {
		if err := c.updateConnectionStatus(ctx, metrics); err != nil {
			c.logger.Info("ethereum rpc connection status check failed", log.Error(err))
		}
	}, nil)
	c.Supervise(trigger)
	return trigger
}

func (c *EthereumRpcConnection) updateConnectionStatus(ctx context.Context, m *connectionStatusMetrics) error {
	if syncStatus, err := c.SyncProgress(ctx); err != nil {
		m.syncStatus.Update(STATUS_FAILED)
		return errors.Wrap(err, "failed reading sync progress")
	} else if syncStatus == nil {
		m.syncStatus.Update(STATUS_SUCCESS)
	} else {
		m.syncStatus.Update(STATUS_IN_PROGRESS)
	}

	header, err := c.HeaderByNumber(ctx, nil)
	if err != nil {
		m.lastBlock.Update(0)
		return errors.Wrap(err, "failed reading latest header")
	}
	m.lastBlock.Update(header.Number.Int64())
	return nil
}
