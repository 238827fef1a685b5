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

package selection

import (
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"

	logger "github.com/reviewlab/lstmsweep/internal/dflog"
	"github.com/reviewlab/lstmsweep/pkg/curve"
	"github.com/reviewlab/lstmsweep/pkg/types"
	"github.com/reviewlab/lstmsweep/sweep/aggregate"
)

// ErrEpochNotFound is returned when a fold's best pointer names an epoch
// the fold never recorded.
var ErrEpochNotFound = errors.New("best epoch not recorded")

// FoldBest is the record of a fold at its best epoch.
type FoldBest struct {
	Fold  int
	Epoch int
	Value float64
	X     []float64
	Y     []float64
}

// Outcome is the averaged best-epoch result of one family.
type Outcome struct {
	Family  types.Family
	Mean    float64
	PerFold []FoldBest

	// Plot is the rendered overlay, empty if nothing was rendered.
	Plot string
}

// Empty reports whether no fold contributed, in which case Mean is meaningless.
func (o Outcome) Empty() bool {
	return len(o.PerFold) == 0
}

// Values returns the per-fold best scores in fold order.
func (o Outcome) Values() []float64 {
	values := make([]float64, 0, len(o.PerFold))
	for _, fold := range o.PerFold {
		values = append(values, fold.Value)
	}

	return values
}

//go:generate mockgen -destination mocks/plotter_mock.go -source selection.go -package mocks

// Plotter renders the overlay of every fold's best-epoch curve.
type Plotter interface {
	Render(dir string, outcome Outcome) (string, error)
}

// Select seals the family, takes each fold's pointed epoch and averages the
// scores. A nil plotter skips rendering.
func Select[T curve.Record](family *aggregate.Family[T], plotter Plotter, dir string, log logger.Logger) (Outcome, error) {
	family.Seal()

	outcome := Outcome{Family: family.Kind()}
	for _, fold := range family.Folds() {
		best, _ := family.Best(fold)
		epochs, _ := family.Epochs(fold)
		record, ok := epochs[best.Epoch]
		if !ok {
			return Outcome{}, fmt.Errorf("%w: %s fold %d epoch %d", ErrEpochNotFound, family.Kind().Name(), fold, best.Epoch)
		}

		x, y := record.Points()
		outcome.PerFold = append(outcome.PerFold, FoldBest{
			Fold:  fold,
			Epoch: best.Epoch,
			Value: record.Score(),
			X:     x,
			Y:     y,
		})
	}

	if outcome.Empty() {
		log.Warnf("%s has no folds to average", family.Kind().Name())
		return outcome, nil
	}

	mean, err := stats.Mean(stats.Float64Data(outcome.Values()))
	if err != nil {
		return Outcome{}, err
	}
	outcome.Mean = mean
	log.Infof("%s average %s: %.4f over %d folds", family.Kind().Name(), family.Kind().ScoreName(), mean, len(outcome.PerFold))

	if plotter == nil {
		return outcome, nil
	}

	path, err := plotter.Render(dir, outcome)
	if err != nil {
		return Outcome{}, fmt.Errorf("render %s plot: %w", family.Kind().Name(), err)
	}
	outcome.Plot = path

	return outcome, nil
}
