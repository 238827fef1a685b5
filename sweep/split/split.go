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

package split

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/exp/slices"

	"github.com/reviewlab/lstmsweep/sweep/config"
)

var (
	// ErrNoSamples is returned when there is nothing to split.
	ErrNoSamples = errors.New("no samples to split")

	// ErrTooFewSamples is returned when there are fewer samples than folds.
	ErrTooFewSamples = errors.New("fewer samples than folds")

	// ErrEmptyTest is returned when a holdout split leaves no test samples.
	ErrEmptyTest = errors.New("holdout split has no test samples")
)

// Fold is one train test partition. Indices are positions into the dataset.
type Fold struct {
	// Number is 1-based.
	Number int

	Train []int
	Test  []int
}

// Splitter splits binary labels into stratified folds.
type Splitter interface {
	// Split returns the folds ordered by number.
	Split(labels []int) ([]Fold, error)

	// Mode returns the split mode.
	Mode() config.SplitMode
}

// New returns the splitter of the configured mode.
func New(cfg config.CrossValidationConfig) Splitter {
	if cfg.Mode == config.SplitModeHoldout {
		return &holdout{testSize: cfg.TestSize, seed: cfg.Seed}
	}

	return &kFold{numFold: cfg.NumFold, seed: cfg.Seed}
}

type kFold struct {
	numFold int
	seed    int64
}

// Mode returns cv.
func (k *kFold) Mode() config.SplitMode {
	return config.SplitModeCrossValidation
}

// Split deals every class, shuffled, round robin across folds so each index
// is tested exactly once and class proportions are kept in every fold.
func (k *kFold) Split(labels []int) ([]Fold, error) {
	if len(labels) == 0 {
		return nil, ErrNoSamples
	}

	if len(labels) < k.numFold {
		return nil, fmt.Errorf("%w: %d samples, %d folds", ErrTooFewSamples, len(labels), k.numFold)
	}

	rng := rand.New(rand.NewSource(k.seed))
	tests := make([][]int, k.numFold)
	next := 0
	for _, indices := range byClass(labels) {
		rng.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
		for _, index := range indices {
			tests[next] = append(tests[next], index)
			next = (next + 1) % k.numFold
		}
	}

	folds := make([]Fold, k.numFold)
	for i, test := range tests {
		slices.Sort(test)
		folds[i] = Fold{
			Number: i + 1,
			Train:  complement(len(labels), test),
			Test:   test,
		}
	}

	return folds, nil
}

type holdout struct {
	testSize float64
	seed     int64
}

// Mode returns holdout.
func (h *holdout) Mode() config.SplitMode {
	return config.SplitModeHoldout
}

// Split holds out round(n * testSize) samples of every class, keeping at
// least one sample of the class for training.
func (h *holdout) Split(labels []int) ([]Fold, error) {
	if len(labels) == 0 {
		return nil, ErrNoSamples
	}

	rng := rand.New(rand.NewSource(h.seed))
	var test []int
	for _, indices := range byClass(labels) {
		rng.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
		n := int(math.Round(float64(len(indices)) * h.testSize))
		if n >= len(indices) {
			n = len(indices) - 1
		}

		test = append(test, indices[:n]...)
	}

	if len(test) == 0 {
		return nil, ErrEmptyTest
	}

	slices.Sort(test)
	return []Fold{{
		Number: 1,
		Train:  complement(len(labels), test),
		Test:   test,
	}}, nil
}

// byClass groups indices by label, ordered by label.
func byClass(labels []int) [][]int {
	groups := map[int][]int{}
	for i, label := range labels {
		groups[label] = append(groups[label], i)
	}

	classes := make([]int, 0, len(groups))
	for class := range groups {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	result := make([][]int, len(classes))
	for i, class := range classes {
		result[i] = groups[class]
	}

	return result
}

// complement returns the sorted indices in [0, n) absent from indices.
func complement(n int, indices []int) []int {
	set := bitset.New(uint(n))
	for _, index := range indices {
		set.Set(uint(index))
	}

	set = set.Complement()
	result := make([]int, 0, set.Count())
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		result = append(result, int(i))
	}

	return result
}

// Targets selects the per task labels of a fold side.
func Targets(tasks [][]int, indices []int) [][]int {
	result := make([][]int, len(tasks))
	for t, labels := range tasks {
		result[t] = make([]int, len(indices))
		for i, index := range indices {
			result[t][i] = labels[index]
		}
	}

	return result
}
