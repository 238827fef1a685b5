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

package grid

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/schollz/progressbar/v3"

	logger "github.com/reviewlab/lstmsweep/internal/dflog"
	"github.com/reviewlab/lstmsweep/sweep/config"
	"github.com/reviewlab/lstmsweep/sweep/experiment"
)

// Combinations returns the cartesian product of the grid, iterating maxLen
// outermost and hiddenSize innermost.
func Combinations(cfg *config.LSTMConfig) []config.Params {
	var combinations []config.Params
	for _, maxLen := range cfg.MaxLen {
		for _, batchSize := range cfg.BatchSize {
			for _, dropout := range cfg.Dropout {
				for _, hiddenSize := range cfg.HiddenSize {
					combinations = append(combinations, cfg.Params(maxLen, batchSize, dropout, hiddenSize))
				}
			}
		}
	}

	return combinations
}

// Outcome is the result of one combination, exactly one of Result and Err is set.
type Outcome struct {
	// Index is 1-based.
	Index  int
	Params config.Params
	Result *experiment.Result
	Err    error
}

// Succeeded reports whether the combination succeeded.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Report keeps the outcomes of a sweep in grid order.
type Report struct {
	Total    int
	Outcomes []Outcome
}

// Succeeded returns the successful outcomes.
func (r *Report) Succeeded() []Outcome {
	return r.filter(true)
}

// Failed returns the failed outcomes.
func (r *Report) Failed() []Outcome {
	return r.filter(false)
}

func (r *Report) filter(succeeded bool) []Outcome {
	var outcomes []Outcome
	for _, outcome := range r.Outcomes {
		if outcome.Succeeded() == succeeded {
			outcomes = append(outcomes, outcome)
		}
	}

	return outcomes
}

// Err combines every failure, nil if none.
func (r *Report) Err() error {
	var errs *multierror.Error
	for _, outcome := range r.Failed() {
		errs = multierror.Append(errs, fmt.Errorf("combination %d: %w", outcome.Index, outcome.Err))
	}

	return errs.ErrorOrNil()
}

// Driver runs every combination of a grid in order.
type Driver struct {
	runner   experiment.Runner
	progress io.Writer
	log      logger.Logger
}

// Option is a functional option for configuring the driver.
type Option func(d *Driver)

// WithProgressBar renders a progress bar of finished combinations to w.
func WithProgressBar(w io.Writer) Option {
	return func(d *Driver) {
		d.progress = w
	}
}

// New returns a new Driver.
func New(runner experiment.Runner, log logger.Logger, options ...Option) *Driver {
	d := &Driver{
		runner: runner,
		log:    log,
	}

	for _, opt := range options {
		opt(d)
	}

	return d
}

// Run trains every combination, continuing past failures. A cancelled
// context stops the sweep between combinations and returns the partial report.
func (d *Driver) Run(ctx context.Context, combinations []config.Params) (*Report, error) {
	report := &Report{Total: len(combinations)}

	var bar *progressbar.ProgressBar
	if d.progress != nil {
		bar = progressbar.NewOptions(len(combinations),
			progressbar.OptionSetWriter(d.progress),
			progressbar.OptionSetDescription("training"),
			progressbar.OptionShowCount(),
		)
		defer bar.Finish()
	}

	for i, params := range combinations {
		if err := ctx.Err(); err != nil {
			d.log.Warnf("sweep stopped before model number %d/%d: %s", i+1, len(combinations), err.Error())
			return report, err
		}

		d.log.Infof("start model number: %d/%d", i+1, len(combinations))
		d.log.Infof("maxlen: %d, batch_size: %d, dropout: %v, lstm_hidden_layer: %d",
			params.MaxLen, params.BatchSize, params.Dropout, params.HiddenSize)

		outcome := Outcome{Index: i + 1, Params: params}
		outcome.Result, outcome.Err = d.run(ctx, params)
		if outcome.Err != nil {
			d.log.Errorf("exception found during maxlen: %d, batch_size: %d, dropout: %v, lstm_hidden_layer: %d: %s",
				params.MaxLen, params.BatchSize, params.Dropout, params.HiddenSize, outcome.Err.Error())
			d.log.Warnf("continue next configuration")
		}

		report.Outcomes = append(report.Outcomes, outcome)
		if bar != nil {
			bar.Add(1)
		}
	}

	d.log.Infof("sweep finished, %d succeeded, %d failed", len(report.Succeeded()), len(report.Failed()))
	return report, nil
}

// run turns a panic of the combination into its error.
func (d *Driver) run(ctx context.Context, params config.Params) (result *experiment.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	return d.runner.Run(ctx, params)
}
