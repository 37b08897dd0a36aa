package httpserver

import (
	"encoding/json"
	"github.com/orbs-network/orbs-tally/config"
	"github.com/orbs-network/orbs-tally/instrumentation/metric"
	"github.com/orbs-network/scribe/log"
	"net/http"
)

type StatusResponse struct {
	Uptime int64

	Tally struct {
		LastAppliedCycle int64
		CandidateCount   int64
		FailedRefreshes  int64
		LastError        string
	}

	Ethereum struct {
		SyncStatus string
		LastBlock  int64
	}

	Version config.Version
}

func (s *HttpServer) getStatus(w http.ResponseWriter, r *http.Request) {
	metrics := s.metricRegistry

	status := StatusResponse{
		Uptime:  metricGetGaugeValue(s.logger, metrics, "Runtime.Uptime.Seconds"),
		Version: config.GetVersion(),
	}
	status.Tally.LastAppliedCycle = metricGetGaugeValue(s.logger, metrics, "Tally.Cycle.LastApplied")
	status.Tally.CandidateCount = metricGetGaugeValue(s.logger, metrics, "Tally.Candidates.Count")
	status.Tally.FailedRefreshes = metricGetGaugeValue(s.logger, metrics, "Tally.Refresh.Failed.Count")
	status.Tally.LastError = metricGetString(s.logger, metrics, "Tally.Refresh.LastError")
	status.Ethereum.SyncStatus = metricGetString(s.logger, metrics, "Ethereum.Node.Sync.Status")
	status.Ethereum.LastBlock = metricGetGaugeValue(s.logger, metrics, "Ethereum.Node.LastBlock")

	data, _ := json.MarshalIndent(status, "", "  ")
	s.writeJson(w, http.StatusOK, data)
}

// metrics that were never registered read as zero values
func metricGetGaugeValue(logger log.Logger, metrics metric.Registry, name string) (value int64) {
	m, found := metrics.Get(name)
	if !found {
		return 0
	}

	rows := m.Export().LogRow()
	if len(rows) == 0 {
		logger.Info("metric has no value", log.String("metric", name))
		return 0
	}
	return rows[len(rows)-1].Int
}

func metricGetString(logger log.Logger, metrics metric.Registry, name string) (value string) {
	m, found := metrics.Get(name)
	if !found {
		return ""
	}

	rows := m.Export().LogRow()
	if len(rows) == 0 {
		logger.Info("metric has no value", log.String("metric", name))
		return ""
	}
	return rows[len(rows)-1].StringVal
}
