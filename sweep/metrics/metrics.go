/*
 *     Copyright 2023 The Lstmsweep Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/reviewlab/lstmsweep/pkg/types"
	"github.com/reviewlab/lstmsweep/version"
)

// Variables declared for metrics.
var (
	CombinationCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.SweepMetricsName,
		Name:      "combination_total",
		Help:      "Counter of the number of the combination trained.",
	}, []string{"vertical"})

	CombinationFailureCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.SweepMetricsName,
		Name:      "combination_failure_total",
		Help:      "Counter of the number of failed of the combination trained.",
	}, []string{"vertical"})

	FoldCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.SweepMetricsName,
		Name:      "fold_total",
		Help:      "Counter of the number of the fold trained.",
	}, []string{"mode"})

	FoldFailureCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.SweepMetricsName,
		Name:      "fold_failure_total",
		Help:      "Counter of the number of failed of the fold trained.",
	}, []string{"mode"})

	FoldDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.SweepMetricsName,
		Name:      "fold_duration_seconds",
		Help:      "Histogram of the time each fold training took.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
	}, []string{"mode"})

	AverageScore = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.SweepMetricsName,
		Name:      "average_score",
		Help:      "Gauge of the averaged best-epoch score of the last combination.",
	}, []string{"family"})

	SummaryRowCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.SweepMetricsName,
		Name:      "summary_row_total",
		Help:      "Counter of the number of the summary row appended.",
	})

	VersionGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.SweepMetricsName,
		Name:      "version",
		Help:      "Version info of the service.",
	}, []string{"major", "minor", "git_version", "git_commit", "platform", "build_time", "go_version"})
)

// WriteTextfile writes every registered metric to path in the text
// exposition format, for the node exporter textfile collector.
func WriteTextfile(path string) error {
	VersionGauge.WithLabelValues(version.Major, version.Minor, version.GitVersion, version.GitCommit, version.Platform, version.BuildTime, version.GoVersion).Set(1)
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
