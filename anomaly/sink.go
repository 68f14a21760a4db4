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

package anomaly

import (
	"sync"

	"go.uber.org/zap"
)

// Sink receives every anomaly the dispatch layer detects.
type Sink interface {
	Report(a Anomaly)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(a Anomaly)

// Report calls f(a).
func (f SinkFunc) Report(a Anomaly) { f(a) }

// Discard drops every report.
var Discard Sink = SinkFunc(func(Anomaly) {})

type logSink struct {
	log *zap.Logger
}

// NewLogSink writes one warn line per anomaly. A nil logger uses zap.L().
func NewLogSink(log *zap.Logger) Sink {
	if log == nil {
		log = zap.L()
	}
	return &logSink{log: log.Named("anomaly")}
}

func (s *logSink) Report(a Anomaly) {
	fields := []zap.Field{
		zap.Stringer("anomaly", a.Kind),
		zap.Stringer("view_kind", a.ViewKind),
	}
	if a.HasPos {
		fields = append(fields, zap.Stringer("position", a.Position))
	}
	if a.Model != "" {
		fields = append(fields, zap.String("model", a.Model))
	}
	if a.ViewType != "" {
		fields = append(fields, zap.String("view", a.ViewType))
	}
	if a.Signature != "" {
		fields = append(fields, zap.String("signature", string(a.Signature)))
	}
	if a.Expected != "" || a.Actual != "" {
		fields = append(fields, zap.String("expected", a.Expected), zap.String("actual", a.Actual))
	}
	if a.Resource != "" {
		fields = append(fields, zap.String("resource", a.Resource))
	}
	if a.Err != nil {
		fields = append(fields, zap.Error(a.Err))
	}
	s.log.Warn("collection view anomaly", fields...)
}

type fatalSink struct {
	next Sink
}

// NewFatalSink reports to next and then panics with the anomaly. It is the
// default in development builds. UnusedEventDetected is a soft warning and
// never panics.
func NewFatalSink(next Sink) Sink {
	if next == nil {
		next = Discard
	}
	return &fatalSink{next: next}
}

func (s *fatalSink) Report(a Anomaly) {
	s.next.Report(a)
	if a.Kind == UnusedEventDetected {
		return
	}
	panic(a)
}

// Multi fans a report out to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type multi []Sink

func (m multi) Report(a Anomaly) {
	for _, s := range m {
		s.Report(a)
	}
}

// Recorder keeps every report in memory. It is safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	list []Anomaly
}

// Report records a.
func (r *Recorder) Report(a Anomaly) {
	r.mu.Lock()
	r.list = append(r.list, a)
	r.mu.Unlock()
}

// All returns a copy of every recorded anomaly.
func (r *Recorder) All() []Anomaly {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Anomaly(nil), r.list...)
}

// Count returns how many anomalies of kind k were recorded.
func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.list {
		if a.Kind == k {
			n++
		}
	}
	return n
}

// Reset forgets every recorded anomaly.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.list = nil
	r.mu.Unlock()
}
