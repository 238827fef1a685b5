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

package curve

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrEmptyCurve is returned when a curve has no points.
	ErrEmptyCurve = errors.New("curve has no points")

	// ErrCurveLength is returned when the two axes of a curve are not co-indexed.
	ErrCurveLength = errors.New("curve axes differ in length")

	// ErrNoEpochs is returned when a best epoch is requested from no epochs.
	ErrNoEpochs = errors.New("no epochs")
)

// Record is the per-epoch metric of one metric family.
type Record interface {
	// Score returns the scalar summarizing the curve, AUC or AP.
	Score() float64

	// Points returns the x and y axes of the curve.
	Points() ([]float64, []float64)

	// Validate checks the curve axes are co-indexed.
	Validate() error
}

// ROC is the receiver operating characteristic of one epoch.
type ROC struct {
	FPR []float64 `msgpack:"fpr" json:"fpr" mapstructure:"fpr" yaml:"fpr"`
	TPR []float64 `msgpack:"tpr" json:"tpr" mapstructure:"tpr" yaml:"tpr"`
	AUC float64   `msgpack:"auc" json:"auc" mapstructure:"auc" yaml:"auc"`
}

// Score returns area under the curve.
func (r ROC) Score() float64 {
	return r.AUC
}

// Points returns false positive rates and true positive rates.
func (r ROC) Points() ([]float64, []float64) {
	return r.FPR, r.TPR
}

// Validate checks fpr and tpr are co-indexed.
func (r ROC) Validate() error {
	return validate(r.FPR, r.TPR)
}

// PR is the precision recall curve of one epoch.
type PR struct {
	Recall    []float64 `msgpack:"recall" json:"recall" mapstructure:"recall" yaml:"recall"`
	Precision []float64 `msgpack:"precision" json:"precision" mapstructure:"precision" yaml:"precision"`
	AP        float64   `msgpack:"ap" json:"ap" mapstructure:"ap" yaml:"ap"`
}

// Score returns average precision.
func (p PR) Score() float64 {
	return p.AP
}

// Points returns recalls and precisions.
func (p PR) Points() ([]float64, []float64) {
	return p.Recall, p.Precision
}

// Validate checks recall and precision are co-indexed.
func (p PR) Validate() error {
	return validate(p.Recall, p.Precision)
}

func validate(x, y []float64) error {
	if len(x) == 0 || len(y) == 0 {
		return ErrEmptyCurve
	}

	if len(x) != len(y) {
		return fmt.Errorf("%w: %d and %d", ErrCurveLength, len(x), len(y))
	}

	return nil
}

// Best points at the epoch holding the maximum score of one fold.
type Best struct {
	Value float64 `msgpack:"value" json:"value" mapstructure:"value" yaml:"value"`
	Epoch int     `msgpack:"epoch" json:"epoch" mapstructure:"epoch" yaml:"epoch"`
}

// BestOf returns the epoch with the maximum score, the earliest epoch wins ties.
func BestOf[T Record](epochs map[int]T) (Best, error) {
	if len(epochs) == 0 {
		return Best{}, ErrNoEpochs
	}

	best := Best{Epoch: -1}
	for _, epoch := range Epochs(epochs) {
		score := epochs[epoch].Score()
		if best.Epoch < 0 || score > best.Value {
			best = Best{Value: score, Epoch: epoch}
		}
	}

	return best, nil
}

// Epochs returns the epoch numbers of a mapping in ascending order.
func Epochs[T any](epochs map[int]T) []int {
	keys := make([]int, 0, len(epochs))
	for epoch := range epochs {
		keys = append(keys, epoch)
	}

	sort.Ints(keys)
	return keys
}
