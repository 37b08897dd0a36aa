package bootstrap

import (
	"context"
	"github.com/orbs-network/orbs-tally/config"
	"github.com/orbs-network/orbs-tally/instrumentation/metric"
	"github.com/orbs-network/orbs-tally/instrumentation/trace"
	"github.com/orbs-network/orbs-tally/services/ledgerreader"
	"github.com/orbs-network/orbs-tally/services/presentation"
	"github.com/orbs-network/orbs-tally/services/tally"
	"github.com/orbs-network/scribe/log"
	"io"
)

// RunOnce performs a single refresh, writes it as a table and returns the refresh error if any
func RunOnce(ctx context.Context, nodeConfig config.NodeConfig, logger log.Logger, w io.Writer) error {
	metricRegistry := metric.NewRegistry()
	executor, connection := NewBatchReadExecutor(nodeConfig, logger, metricRegistry)
	if connection != nil {
		defer connection.Close()
	}
	return runOnceWithExecutor(ctx, nodeConfig, executor, logger, metricRegistry, w)
}

func runOnceWithExecutor(ctx context.Context, nodeConfig config.NodeConfig, executor ledgerreader.BatchReadExecutor, logger log.Logger, metricRegistry metric.Registry, w io.Writer) error {
	aggregator := tally.NewAggregator(nodeConfig, executor, logger, metricRegistry)
	result := aggregator.Refresh(trace.NewContext(ctx, "once"))

	if err := presentation.WriteTable(w, presentation.ViewOf(result)); err != nil {
		return err
	}
	return result.Err
}
