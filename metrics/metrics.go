// Copyright Crosscut Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics is a trimmed adaptation of istio.io/pkg/monitoring's
// Metric facade (monitoring.go's Increment/Record/With/Register shape):
// values are recorded through go.opencensus.io/stats, aggregated by
// go.opencensus.io/stats/view exactly as istio-pkg's monitoring_opencensus.go
// does, and bridged to github.com/prometheus/client_golang for export over
// /metrics by a small view.Exporter (below) rather than istio-pkg's own
// cloud-facing transforming_exporter.go, which targets a metrics backend
// this single-process core has no reason to talk to (see DESIGN.md).
//
// istio-pkg's opencensus backend also references a Unit type, a
// recordHookMutex and an Int64-vs-Float64 metric option that live in
// sibling files this pack did not retrieve; this facade keeps the same
// public shape (Increment/Record/Name) without reconstructing that internal
// API, since nothing in this module calls it.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
)

// Metric collects numerical observations, exported as a counter or gauge.
type Metric interface {
	// Increment records a value of 1 for the current measure.
	Increment()
	// Record makes an observation of value for the given measure.
	Record(value float64)
	// Name returns the metric's registered name.
	Name() string
}

type metric struct {
	name    string
	measure *stats.Float64Measure
}

func (m *metric) Increment() { m.Record(1) }

func (m *metric) Record(value float64) {
	_ = stats.RecordWithTags(context.Background(), nil, m.measure.M(value))
}

func (m *metric) Name() string { return m.name }

// NewSum creates a Metric whose exported value is the cumulative total of
// every Record/Increment call, matching istio-pkg's NewSum: used for the
// compiler's edit count and the evaluator's step count, which only grow.
func NewSum(name, description string) Metric {
	return newMetric(name, description, view.Sum())
}

// NewGauge creates a Metric whose exported value is the last recorded
// value, matching istio-pkg's NewGauge: used for depths and levels that go
// up and down, such as the evaluator's eval-stack depth.
func NewGauge(name, description string) Metric {
	return newMetric(name, description, view.LastValue())
}

func newMetric(name, description string, aggregation *view.Aggregation) Metric {
	measure := stats.Float64(name, description, stats.UnitDimensionless)
	v := &view.View{
		Name:        name,
		Description: description,
		Measure:     measure,
		Aggregation: aggregation,
	}
	if err := view.Register(v); err != nil {
		panic(fmt.Sprintf("metrics: failed to register view %s: %v", name, err))
	}
	registerWithPrometheus(name, description, aggregation)
	return &metric{name: name, measure: measure}
}

// prometheusBridge is a view.Exporter that republishes every opencensus view
// this package registers as a prometheus.Gauge, so a single /metrics
// handler (promhttp.Handler, backed by the default registry) serves both
// the engine's own counters and anything client_golang's process/Go
// collectors add -- the same "one flat exposition format" istio-pkg's
// monitoring_opencensus.go produces for its callers, minus the cloud
// exporter plumbing this core doesn't need.
type prometheusBridge struct {
	mu     sync.Mutex
	gauges map[string]prometheus.Gauge
}

var bridge = &prometheusBridge{gauges: make(map[string]prometheus.Gauge)}

func init() {
	view.RegisterExporter(bridge)
}

func registerWithPrometheus(name, description string, _ *view.Aggregation) {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	if _, ok := bridge.gauges[name]; ok {
		return
	}
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: sanitize(name), Help: description})
	prometheus.MustRegister(g)
	bridge.gauges[name] = g
}

// ExportView implements view.Exporter: each row of the latest aggregation is
// folded into the matching prometheus.Gauge's current value. Every metric
// this package creates is unlabeled (a single time series), so there is at
// most one row per view.
func (b *prometheusBridge) ExportView(vd *view.Data) {
	b.mu.Lock()
	g, ok := b.gauges[vd.View.Name]
	b.mu.Unlock()
	if !ok || len(vd.Rows) == 0 {
		return
	}
	switch d := vd.Rows[0].Data.(type) {
	case *view.SumData:
		g.Set(d.Value)
	case *view.LastValueData:
		g.Set(d.Value)
	case *view.CountData:
		g.Set(float64(d.Value))
	}
}

func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == '.' || r == '-' {
			r = '_'
		}
		out = append(out, r)
	}
	return string(out)
}

// Handler returns the HTTP handler a host mounts at /metrics.
func Handler() http.Handler { return promhttp.Handler() }
