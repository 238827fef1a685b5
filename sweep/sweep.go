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

package sweep

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/docker/go-units"

	logger "github.com/reviewlab/lstmsweep/internal/dflog"
	"github.com/reviewlab/lstmsweep/sweep/config"
	"github.com/reviewlab/lstmsweep/sweep/dataset"
	"github.com/reviewlab/lstmsweep/sweep/delegate"
	"github.com/reviewlab/lstmsweep/sweep/experiment"
	"github.com/reviewlab/lstmsweep/sweep/grid"
	"github.com/reviewlab/lstmsweep/sweep/metrics"
	"github.com/reviewlab/lstmsweep/sweep/split"
	"github.com/reviewlab/lstmsweep/sweep/storage"
	"github.com/reviewlab/lstmsweep/sweep/summary"
)

type Sweep struct {
	// Sweep configuration.
	config *config.Config

	// Grid driver.
	driver *grid.Driver

	log logger.Logger
}

// Option is a functional option for configuring the sweep.
type Option func(s *sweepOptions)

type sweepOptions struct {
	delegate delegate.Delegate
	progress io.Writer
	at       time.Time
}

// WithDelegate replaces the configured delegate.
func WithDelegate(dg delegate.Delegate) Option {
	return func(o *sweepOptions) {
		o.delegate = dg
	}
}

// WithTime sets the run time of every run suffix.
func WithTime(at time.Time) Option {
	return func(o *sweepOptions) {
		o.at = at
	}
}

// New loads the dataset and wires every component of a sweep.
func New(cfg *config.Config, log logger.Logger, options ...Option) (*Sweep, error) {
	opts := &sweepOptions{at: time.Now()}
	if cfg.Output.Progress {
		opts.progress = os.Stderr
	}

	for _, opt := range options {
		opt(opts)
	}

	// Initialize dataset.
	info, err := os.Stat(cfg.Data.InputFile)
	if err != nil {
		return nil, err
	}

	frame, err := dataset.Load(cfg.Data.InputFile)
	if err != nil {
		return nil, err
	}
	log.Infof("load %d rows (%s) from %s", frame.Len(), units.HumanSize(float64(info.Size())), cfg.Data.InputFile)

	data, err := dataset.New(frame, cfg.Data, cfg.MultiTask.Labels, log)
	if err != nil {
		return nil, err
	}

	// Initialize delegate.
	if opts.delegate == nil {
		if opts.delegate, err = delegate.New(cfg.Delegate, log); err != nil {
			return nil, err
		}
	}

	// Initialize summary appender.
	appender, err := summary.New(cfg.Output.SummaryFormat, cfg.Output.SummaryDir, cfg.Data.Vertical)
	if err != nil {
		return nil, err
	}

	runner := experiment.NewRunner(
		cfg,
		data,
		split.New(cfg.CrossValidation),
		opts.delegate,
		storage.New(cfg.Output.ResultsDir, cfg.Data.Vertical, cfg.Data.PositiveName),
		log,
		experiment.WithAppender(appender),
		experiment.WithTime(opts.at),
	)

	var driverOptions []grid.Option
	if opts.progress != nil {
		driverOptions = append(driverOptions, grid.WithProgressBar(opts.progress))
	}

	return &Sweep{
		config: cfg,
		driver: grid.New(runner, log, driverOptions...),
		log:    log,
	}, nil
}

// Run trains the whole grid and writes the metrics textfile if configured.
func (s *Sweep) Run(ctx context.Context) (*grid.Report, error) {
	combinations := grid.Combinations(&s.config.LSTM)
	s.log.Infof("sweep %d combinations of vertical %s", len(combinations), s.config.Data.Vertical)

	report, err := s.driver.Run(ctx, combinations)
	if s.config.Output.MetricsFile != "" {
		if merr := metrics.WriteTextfile(s.config.Output.MetricsFile); merr != nil {
			s.log.Errorf("write metrics file %s failed: %s", s.config.Output.MetricsFile, merr.Error())
		}
	}

	return report, err
}
