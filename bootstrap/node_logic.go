// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package bootstrap

import (
	"context"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/orbs-network/govnr"
	"github.com/orbs-network/orbs-tally/config"
	"github.com/orbs-network/orbs-tally/instrumentation/metric"
	"github.com/orbs-network/orbs-tally/instrumentation/trace"
	"github.com/orbs-network/orbs-tally/services/ledgerreader"
	ethereumAdapter "github.com/orbs-network/orbs-tally/services/ledgerreader/adapter"
	presentationAdapter "github.com/orbs-network/orbs-tally/services/presentation/adapter"
	"github.com/orbs-network/orbs-tally/services/tally"
	"github.com/orbs-network/scribe/log"
)

type NodeLogic interface {
	govnr.ShutdownWaiter
	Aggregator() *tally.Aggregator
	ManualTrigger() *tally.ManualTrigger
	Stream() *presentationAdapter.Hub
	Close()
}

type nodeLogic struct {
	govnr.TreeSupervisor
	logger        log.Logger
	aggregator    *tally.Aggregator
	manualTrigger *tally.ManualTrigger
	hub           *presentationAdapter.Hub
	publisher     *presentationAdapter.KafkaPublisher
	connection    *ethereumAdapter.EthereumRpcConnection
}

// NewBatchReadExecutor picks the executor for the configured endpoint; the connection is nil when no endpoint is set
func NewBatchReadExecutor(cfg config.EthereumReaderConfig, logger log.Logger, metricRegistry metric.Registry) (ledgerreader.BatchReadExecutor, *ethereumAdapter.EthereumRpcConnection) {
	if cfg.EthereumEndpoint() == "" {
		logger.Info("no ethereum endpoint configured, using nop executor")
		return ethereumAdapter.NopExecutor{}, nil
	}

	contract := ledgerreader.NewVotingContract()
	connection := ethereumAdapter.NewEthereumRpcConnection(cfg, logger, metricRegistry)
	if cfg.EthereumBatchCalls() {
		return ethereumAdapter.NewRpcBatchExecutor(connection, contract, logger), connection
	}

	return ethereumAdapter.NewContractCallerExecutor(func(ctx context.Context) (bind.ContractCaller, error) {
		return connection.EthClient(ctx)
	}, contract), connection
}

func NewNodeLogic(ctx context.Context, executor ledgerreader.BatchReadExecutor, connection *ethereumAdapter.EthereumRpcConnection, logger log.Logger, metricRegistry metric.Registry, nodeConfig config.NodeConfig) NodeLogic {
	aggregator := tally.NewAggregator(nodeConfig, executor, logger, metricRegistry)

	hub := presentationAdapter.NewHub(ctx, logger, metricRegistry)
	aggregator.RegisterResultHandler(hub)

	n := &nodeLogic{
		logger:        logger,
		aggregator:    aggregator,
		manualTrigger: tally.NewManualTrigger(ctx, nodeConfig.TallyManualRefreshMinInterval(), aggregator, logger),
		hub:           hub,
		connection:    connection,
	}
	n.Supervise(hub)

	if len(nodeConfig.KafkaBrokers()) > 0 && nodeConfig.KafkaTopic() != "" {
		n.publisher = presentationAdapter.NewKafkaPublisher(ctx, nodeConfig, aggregator.ContractAddress().Hex(), logger, metricRegistry)
		aggregator.RegisterResultHandler(n.publisher)
		n.Supervise(n.publisher)
	}

	metric.RegisterConfigIndicators(metricRegistry, nodeConfig)
	n.Supervise(metric.NewRuntimeReporter(ctx, metricRegistry, logger))
	n.Supervise(metric.NewSystemReporter(ctx, metricRegistry, logger, nodeConfig.MetricsReportInterval()))
	n.Supervise(metricRegistry.ReportEvery(ctx, nodeConfig.MetricsReportInterval(), logger))
	if connection != nil {
		n.Supervise(connection.ReportConnectionStatus(ctx, nodeConfig.EthereumConnectionStatusInterval()))
	}

	// initial mount
	aggregator.Refresh(trace.NewContext(ctx, "initial-refresh"))

	n.Supervise(tally.NewCountWatcher(ctx, nodeConfig.TallyCountWatchInterval(), aggregator, logger))
	n.Supervise(tally.NewPoller(ctx, nodeConfig.TallyPollInterval(), aggregator, logger))

	return n
}

func (n *nodeLogic) Aggregator() *tally.Aggregator {
	return n.aggregator
}

func (n *nodeLogic) ManualTrigger() *tally.ManualTrigger {
	return n.manualTrigger
}

func (n *nodeLogic) Stream() *presentationAdapter.Hub {
	return n.hub
}

func (n *nodeLogic) Close() {
	if n.publisher != nil {
		if err := n.publisher.Close(); err != nil {
			n.logger.Info("failed closing kafka publisher", log.Error(err))
		}
	}
	if n.connection != nil {
		n.connection.Close()
	}
}
