// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package bootstrap

import (
	"context"
	"github.com/orbs-network/govnr"
	"github.com/orbs-network/orbs-tally/bootstrap/httpserver"
	"github.com/orbs-network/orbs-tally/config"
	"github.com/orbs-network/orbs-tally/instrumentation"
	"github.com/orbs-network/orbs-tally/instrumentation/metric"
	"github.com/orbs-network/orbs-tally/services/ledgerreader"
	ethereumAdapter "github.com/orbs-network/orbs-tally/services/ledgerreader/adapter"
	"github.com/orbs-network/scribe/log"
)

type Node interface {
	govnr.ShutdownWaiter
	GracefulShutdown(shutdownContext context.Context)
	HttpServer() *httpserver.HttpServer
	Logic() NodeLogic
}

type node struct {
	govnr.TreeSupervisor
	logger     log.Logger
	httpServer *httpserver.HttpServer
	logic      NodeLogic
	ctxCancel  context.CancelFunc
}

func NewNode(nodeConfig config.NodeConfig, logger log.Logger) Node {
	metricRegistry := metric.NewRegistry()
	nodeLogger := logger.WithTags(instrumentation.TallyLogTag)
	executor, connection := NewBatchReadExecutor(nodeConfig, nodeLogger, metricRegistry)
	return newNode(nodeConfig, nodeLogger, executor, connection, metricRegistry)
}

func NewNodeWithExecutor(nodeConfig config.NodeConfig, logger log.Logger, executor ledgerreader.BatchReadExecutor) Node {
	return newNode(nodeConfig, logger.WithTags(instrumentation.TallyLogTag), executor, nil, metric.NewRegistry())
}

func newNode(nodeConfig config.NodeConfig, nodeLogger log.Logger, executor ledgerreader.BatchReadExecutor, connection *ethereumAdapter.EthereumRpcConnection, metricRegistry metric.Registry) Node {
	ctx, ctxCancel := context.WithCancel(context.Background())

	nodeLogic := NewNodeLogic(ctx, executor, connection, nodeLogger, metricRegistry, nodeConfig)
	httpServer := httpserver.NewHttpServer(nodeConfig, nodeLogger, nodeLogic.Aggregator(), nodeLogic.ManualTrigger(), nodeLogic.Stream(), metricRegistry)

	n := &node{
		logger:     nodeLogger,
		logic:      nodeLogic,
		httpServer: httpServer,
		ctxCancel:  ctxCancel,
	}
	n.Supervise(nodeLogic)
	n.Supervise(httpServer)
	return n
}

func (n *node) HttpServer() *httpserver.HttpServer {
	return n.httpServer
}

func (n *node) Logic() NodeLogic {
	return n.logic
}

func (n *node) GracefulShutdown(shutdownContext context.Context) {
	n.logger.Info("shutting down")
	n.ctxCancel()
	n.httpServer.GracefulShutdown(shutdownContext)
	n.logic.Close()
}
