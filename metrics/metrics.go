/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package metrics holds Prometheus instruments for view resolution,
// anomalies and batch updates. Collectors are registered with the
// registerer passed to New, so tests can use a private registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"dirpx.dev/cvm/anomaly"
	"dirpx.dev/cvm/apis"
)

// Batch modes used as the "mode" label.
const (
	ModeIncremental = "incremental"
	ModeReload      = "reload"
)

// Metrics groups the collectors of one dispatcher.
type Metrics struct {
	Anomalies     *prometheus.CounterVec
	ResolvedViews *prometheus.CounterVec
	Batches       *prometheus.CounterVec
}

// New creates the collectors under namespace and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Anomalies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "anomalies_total",
				Help:      "Anomalies reported, by kind.",
			}, []string{"kind"}),
		ResolvedViews: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolved_views_total",
				Help:      "Views dequeued and configured, by view kind.",
			}, []string{"view_kind"}),
		Batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_updates_total",
				Help:      "Batch updates applied to the widget, by mode.",
			}, []string{"mode"}),
	}
	for _, c := range []prometheus.Collector{m.Anomalies, m.ResolvedViews, m.Batches} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Sink returns an anomaly sink that counts reports and passes them to next.
func (m *Metrics) Sink(next anomaly.Sink) anomaly.Sink {
	return anomaly.SinkFunc(func(a anomaly.Anomaly) {
		m.Anomalies.WithLabelValues(a.Kind.String()).Inc()
		if next != nil {
			next.Report(a)
		}
	})
}

// ViewResolved implements factory.ResolveObserver.
func (m *Metrics) ViewResolved(kind apis.ViewKind, _ *apis.Mapping) {
	m.ResolvedViews.WithLabelValues(kind.String()).Inc()
}

// BatchApplied implements updater.Observer.
func (m *Metrics) BatchApplied(_ apis.Change, reloaded bool) {
	mode := ModeIncremental
	if reloaded {
		mode = ModeReload
	}
	m.Batches.WithLabelValues(mode).Inc()
}
