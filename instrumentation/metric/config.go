package metric

import (
	"github.com/orbs-network/orbs-tally/config"
	"strconv"
)

// RegisterConfigIndicators exposes the settings that explain a node's refresh behaviour
func RegisterConfigIndicators(metricRegistry Registry, nodeConfig config.NodeConfig) {
	version := config.GetVersion()

	metricRegistry.NewText("Version.Semantic", version.Semantic)
	metricRegistry.NewText("Version.Commit", version.Commit)
	metricRegistry.NewText("Tally.ContractAddress", nodeConfig.TallyContractAddress())
	metricRegistry.NewText("Tally.PollInterval", nodeConfig.TallyPollInterval().String())
	metricRegistry.NewText("Tally.CountWatchInterval", nodeConfig.TallyCountWatchInterval().String())
	metricRegistry.NewText("Ethereum.BatchCalls", strconv.FormatBool(nodeConfig.EthereumBatchCalls()))
}
