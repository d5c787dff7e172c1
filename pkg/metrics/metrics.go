/*
Copyright 2026 The Kubernetes Authors.

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

// Package metrics exports the extracted coverage for the node_exporter
// textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Recorder holds the gauges of one run in its own registry.
type Recorder struct {
	registry   *prometheus.Registry
	percentage *prometheus.GaugeVec
	threshold  *prometheus.GaugeVec
}

// NewRecorder returns a Recorder with an empty registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		percentage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "covbadge_coverage_percentage",
			Help: "Statement coverage percentage the last badge was rendered for.",
		}, []string{"source", "color"}),
		threshold: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "covbadge_threshold_percentage",
			Help: "Percentage under which the badge turns the given color.",
		}, []string{"color"}),
	}
	r.registry.MustRegister(r.percentage, r.threshold)
	return r
}

// Observe records the percentage of a run along with the scale it was judged by.
func (r *Recorder) Observe(source, color string, percentage, redBelow, yellowBelow float64) {
	r.percentage.WithLabelValues(source, color).Set(percentage)
	r.threshold.WithLabelValues("red").Set(redBelow)
	r.threshold.WithLabelValues("yellow").Set(yellowBelow)
}

// WriteFile atomically writes everything observed in the text exposition format.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return err
	}
	logrus.WithField("path", path).Info("Wrote coverage metrics")
	return nil
}
