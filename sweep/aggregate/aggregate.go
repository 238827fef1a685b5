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

package aggregate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/reviewlab/lstmsweep/pkg/curve"
	"github.com/reviewlab/lstmsweep/pkg/types"
	"github.com/reviewlab/lstmsweep/sweep/delegate"
)

var (
	// ErrSealed is returned when a fold is added after selection began.
	ErrSealed = errors.New("aggregate is sealed")

	// ErrInvalidFold is returned for fold numbers below 1.
	ErrInvalidFold = errors.New("fold numbers start at 1")

	// ErrDuplicateFold is returned when a fold is added twice.
	ErrDuplicateFold = errors.New("fold already added")
)

// Family accumulates the per-epoch records and best epoch pointers of one
// metric family across the folds of one combination.
type Family[T curve.Record] struct {
	kind   types.Family
	epochs map[int]map[int]T
	best   map[int]curve.Best
	sealed bool
}

// NewFamily returns an empty family.
func NewFamily[T curve.Record](kind types.Family) *Family[T] {
	return &Family[T]{
		kind:   kind,
		epochs: map[int]map[int]T{},
		best:   map[int]curve.Best{},
	}
}

// Kind returns the metric family.
func (f *Family[T]) Kind() types.Family {
	return f.kind
}

func (f *Family[T]) check(fold int, epochs map[int]T) error {
	if f.sealed {
		return ErrSealed
	}

	if fold < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidFold, fold)
	}

	if _, ok := f.epochs[fold]; ok {
		return fmt.Errorf("%w: %s fold %d", ErrDuplicateFold, f.kind.Name(), fold)
	}

	if len(epochs) == 0 {
		return fmt.Errorf("%s fold %d: %w", f.kind.Name(), fold, curve.ErrNoEpochs)
	}

	for _, epoch := range curve.Epochs(epochs) {
		if err := epochs[epoch].Validate(); err != nil {
			return fmt.Errorf("%s fold %d epoch %d: %w", f.kind.Name(), fold, epoch, err)
		}
	}

	return nil
}

// Add records the epochs and best epoch pointer of a fold.
func (f *Family[T]) Add(fold int, epochs map[int]T, best curve.Best) error {
	if err := f.check(fold, epochs); err != nil {
		return err
	}

	f.epochs[fold] = epochs
	f.best[fold] = best
	return nil
}

// Seal rejects any further Add.
func (f *Family[T]) Seal() {
	f.sealed = true
}

// Len returns the number of folds.
func (f *Family[T]) Len() int {
	return len(f.epochs)
}

// Folds returns fold numbers in ascending order.
func (f *Family[T]) Folds() []int {
	folds := make([]int, 0, len(f.epochs))
	for fold := range f.epochs {
		folds = append(folds, fold)
	}

	sort.Ints(folds)
	return folds
}

// Epochs returns the per-epoch records of a fold.
func (f *Family[T]) Epochs(fold int) (map[int]T, bool) {
	epochs, ok := f.epochs[fold]
	return epochs, ok
}

// Best returns the best epoch pointer of a fold.
func (f *Family[T]) Best(fold int) (curve.Best, bool) {
	best, ok := f.best[fold]
	return best, ok
}

// Statistic returns fold to epoch to record.
func (f *Family[T]) Statistic() map[int]map[int]T {
	return f.epochs
}

// BestStatistic returns fold to best epoch pointer.
func (f *Family[T]) BestStatistic() map[int]curve.Best {
	return f.best
}

// Aggregate holds both metric families of one combination, never mixed.
type Aggregate struct {
	ROC *Family[curve.ROC]
	PR  *Family[curve.PR]
}

// New returns an empty aggregate.
func New() *Aggregate {
	return &Aggregate{
		ROC: NewFamily[curve.ROC](types.FamilyROC),
		PR:  NewFamily[curve.PR](types.FamilyPR),
	}
}

// Add records the delegate result of a fold into both families, or into neither.
func (a *Aggregate) Add(fold int, result *delegate.Result) error {
	if err := a.ROC.check(fold, result.ROC); err != nil {
		return err
	}

	if err := a.PR.check(fold, result.PR); err != nil {
		return err
	}

	a.ROC.epochs[fold] = result.ROC
	a.ROC.best[fold] = result.BestROC
	a.PR.epochs[fold] = result.PR
	a.PR.best[fold] = result.BestPR
	return nil
}

// Seal seals both families once every fold is in.
func (a *Aggregate) Seal() {
	a.ROC.Seal()
	a.PR.Seal()
}

// Len returns the number of folds.
func (a *Aggregate) Len() int {
	return a.ROC.Len()
}
