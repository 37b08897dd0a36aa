// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package metric

import (
	"context"
	"github.com/orbs-network/orbs-tally/synchronization"
	"github.com/orbs-network/scribe/log"
	"runtime"
	"time"
)

type runtimeMetrics struct {
	heapAlloc       *Gauge
	heapSys         *Gauge
	gcCpuPercentage *Gauge
	goroutines      *Gauge
	uptime          *Gauge
}

type runtimeReporter struct {
	*synchronization.PeriodicalTrigger
	metrics runtimeMetrics
	started time.Time
}

func NewRuntimeReporter(ctx context.Context, metricFactory Factory, logger log.Logger) *runtimeReporter {
	r := &runtimeReporter{
		metrics: runtimeMetrics{
			heapAlloc:       metricFactory.NewGauge("Runtime.HeapAlloc"),
			heapSys:         metricFactory.NewGauge("Runtime.HeapSys"),
			gcCpuPercentage: metricFactory.NewGauge("Runtime.GCCPUPercentage"),
			goroutines:      metricFactory.NewGauge("Runtime.NumGoroutine"),
			uptime:          metricFactory.NewGauge("Runtime.Uptime.Seconds"),
		},
		started: time.Now(),
	}

	r.reportRuntimeMetrics()
	r.PeriodicalTrigger = synchronization.NewPeriodicalTrigger(ctx, "runtime metrics reporter", 5*time.Second, logger, r.reportRuntimeMetrics, nil)

	return r
}

func (r *runtimeReporter) reportRuntimeMetrics() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	r.metrics.heapSys.Update(int64(mem.HeapSys))
	r.metrics.heapAlloc.Update(int64(mem.HeapAlloc))
	r.metrics.gcCpuPercentage.Update(int64(mem.GCCPUFraction * 100))
	r.metrics.goroutines.Update(int64(runtime.NumGoroutine()))
	r.metrics.uptime.Update(int64(time.Since(r.started).Seconds()))
}
