// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package metric

import (
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
)

func TestGauge_CountsUpAndDown(t *testing.T) {
	g := &Gauge{}
	g.Inc()
	g.Inc()
	g.Dec()
	g.Add(10)

	require.EqualValues(t, 11, g.Value())
}

func TestGauge_UpdateReplacesValue(t *testing.T) {
	g := &Gauge{}
	g.Add(5)
	g.Update(123)
	require.EqualValues(t, 123, g.Value())

	g.UpdateUint64(321)
	require.EqualValues(t, 321, g.Value())
}

func TestGauge_ConcurrentIncrementsAreNotLost(t *testing.T) {
	g := &Gauge{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				g.Inc()
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 2000, g.Value())
}

func TestGauge_ExportCarriesNameAndValue(t *testing.T) {
	g := NewRegistry().NewGauge("Tally.Cycle.LastApplied")
	g.UpdateUint64(7)

	export := g.Export().(gaugeExport)
	require.Equal(t, "Tally.Cycle.LastApplied", export.Name)
	require.EqualValues(t, 7, export.Value)
	require.Equal(t, "metric Tally.Cycle.LastApplied: 7", g.String())
}
