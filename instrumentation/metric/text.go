// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package metric

import (
	"fmt"
	"github.com/orbs-network/scribe/log"
	"sync"
)

// Text holds the latest string reported for a name, such as a sync status or the last refresh error
type Text struct {
	namedMetric
	mu    sync.RWMutex
	value string
}

type textExport struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func newText(name string, defaultValue ...string) *Text {
	t := &Text{namedMetric: namedMetric{name: name}}
	if len(defaultValue) > 0 {
		t.value = defaultValue[0]
	}
	return t
}

func (t *Text) Export() exportedMetric {
	return textExport{Name: t.name, Value: t.Value()}
}

func (t *Text) Update(value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.value = value
}

func (t *Text) Value() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value
}

func (t *Text) String() string {
	return fmt.Sprintf("metric %s: %q", t.name, t.Value())
}

func (e textExport) LogRow() []*log.Field {
	return []*log.Field{
		log.String("metric", e.Name),
		log.String("metric-type", "text"),
		log.String("text", e.Value),
	}
}
