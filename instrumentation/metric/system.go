// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package metric

import (
	"context"
	"fmt"
	"github.com/c9s/goprocinfo/linux"
	"github.com/orbs-network/orbs-tally/synchronization"
	"github.com/orbs-network/scribe/log"
	"github.com/pkg/errors"
	"os"
	"time"
)

const procPageSize = 4096

type processMetrics struct {
	rssBytes   *Gauge
	cpuPercent *Gauge
}

// cpuSample is the process cpu time and total machine cpu time, both in clock ticks since boot
type cpuSample struct {
	process uint64
	total   uint64
}

// percentSince is the share of machine cpu time the process used between two samples
func (s cpuSample) percentSince(previous cpuSample) (int64, bool) {
	if s.total <= previous.total || s.process < previous.process {
		return 0, false
	}
	return int64(float64(s.process-previous.process) / float64(s.total-previous.total) * 100), true
}

// systemReporter samples the tally process through procfs; cpu usage is the difference between consecutive ticks
type systemReporter struct {
	*synchronization.PeriodicalTrigger
	procDir  string
	pid      int
	metrics  processMetrics
	logger   log.Logger
	previous *cpuSample
}

func NewSystemReporter(ctx context.Context, metricFactory Factory, parentLogger log.Logger, interval time.Duration) *systemReporter {
	r := newSystemReporter("/proc", os.Getpid(), metricFactory, parentLogger)
	r.PeriodicalTrigger = synchronization.NewPeriodicalTrigger(ctx, "process metrics reporter", interval, r.logger, r.report, nil)
	return r
}

func newSystemReporter(procDir string, pid int, metricFactory Factory, parentLogger log.Logger) *systemReporter {
	return &systemReporter{
		procDir: procDir,
		pid:     pid,
		metrics: processMetrics{
			rssBytes:   metricFactory.NewGauge("Process.Memory.RSS.Bytes"),
			cpuPercent: metricFactory.NewGauge("Process.CPU.Percent"),
		},
		logger: parentLogger.WithTags(log.String("reporter", "process")),
	}
}

func (r *systemReporter) report() {
	if _, err := os.Stat(r.procDir); os.IsNotExist(err) {
		return
	}

	if rss, err := r.readRss(); err != nil {
		r.logger.Info("failed reading process memory", log.Error(err))
	} else {
		r.metrics.rssBytes.Update(rss)
	}

	sample, err := r.readCpu()
	if err != nil {
		r.logger.Info("failed reading process cpu time", log.Error(err))
		return
	}
	if r.previous != nil {
		if percent, ok := sample.percentSince(*r.previous); ok {
			r.metrics.cpuPercent.Update(percent)
		}
	}
	r.previous = &sample
}

func (r *systemReporter) readRss() (int64, error) {
	statm, err := linux.ReadProcessStatm(fmt.Sprintf("%s/%d/statm", r.procDir, r.pid))
	if err != nil {
		return 0, errors.Wrap(err, "statm")
	}
	return int64(statm.Resident * procPageSize), nil
}

func (r *systemReporter) readCpu() (cpuSample, error) {
	process, err := linux.ReadProcess(uint64(r.pid), r.procDir)
	if err != nil {
		return cpuSample{}, errors.Wrap(err, "process stat")
	}
	stat, err := linux.ReadStat(r.procDir + "/stat")
	if err != nil {
		return cpuSample{}, errors.Wrap(err, "machine stat")
	}

	all := stat.CPUStatAll
	return cpuSample{
		process: process.Stat.Utime + process.Stat.Stime + uint64(process.Stat.Cutime+process.Stat.Cstime),
		total:   all.User + all.Nice + all.System + all.Idle,
	}, nil
}
