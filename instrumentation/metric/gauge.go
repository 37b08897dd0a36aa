// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package metric

import (
	"fmt"
	"github.com/orbs-network/scribe/log"
	"sync/atomic"
)

// Gauge is a single int64 value: counters (Inc) and last-seen values (Update) alike
type Gauge struct {
	namedMetric
	value int64
}

type gaugeExport struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

func (g *Gauge) Export() exportedMetric {
	return gaugeExport{Name: g.name, Value: g.Value()}
}

func (g *Gauge) String() string {
	return fmt.Sprintf("metric %s: %d", g.name, g.Value())
}

func (g *Gauge) Inc() {
	g.Add(1)
}

func (g *Gauge) Dec() {
	g.Add(-1)
}

func (g *Gauge) Add(delta int64) {
	atomic.AddInt64(&g.value, delta)
}

func (g *Gauge) Update(value int64) {
	atomic.StoreInt64(&g.value, value)
}

// UpdateUint64 is for cycle numbers and block heights, which stay far below the int64 range
func (g *Gauge) UpdateUint64(value uint64) {
	g.Update(int64(value))
}

func (g *Gauge) Value() int64 {
	return atomic.LoadInt64(&g.value)
}

func (e gaugeExport) LogRow() []*log.Field {
	return []*log.Field{
		log.String("metric", e.Name),
		log.String("metric-type", "gauge"),
		log.Int64("gauge", e.Value),
	}
}
