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

package models

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlab/lstmsweep/sweep/config"
)

var (
	mockTexts = []string{
		"broken zipper terrible quality",
		"love this dress great fit",
		"terrible stitching broken seam",
		"great color love it",
		"broken strap terrible",
		"great quality love the fabric",
	}
	mockLabels = []int{1, 0, 1, 0, 1, 0}
)

func TestHashFeatures(t *testing.T) {
	assert := assert.New(t)
	rows := HashFeatures([]string{"Broken, broken!", "", "a b c d"}, 8, 2)
	assert.Len(rows, 3)
	assert.Len(rows[0], 8)

	// Both tokens hash to the same bucket and the row is unit length.
	var nonZero int
	for _, v := range rows[0] {
		if v != 0 {
			nonZero++
			assert.InDelta(1.0, v, 1e-9)
		}
	}
	assert.Equal(1, nonZero)
	assert.Equal(make([]float64, 8), rows[1])

	var norm float64
	for _, v := range rows[2] {
		norm += v * v
	}
	assert.InDelta(1.0, norm, 1e-9)
}

func TestNewOptimizer(t *testing.T) {
	tests := []struct {
		name   string
		kind   config.Optimizer
		expect func(t *testing.T, o Optimizer, err error)
	}{
		{
			name: "adam",
			kind: config.OptimizerAdam,
			expect: func(t *testing.T, o Optimizer, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				params := []float64{1}
				o.Step(params, []float64{1})
				assert.Less(params[0], 1.0)
			},
		},
		{
			name: "rmsprop",
			kind: config.OptimizerRMSProp,
			expect: func(t *testing.T, o Optimizer, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				params := []float64{1}
				o.Step(params, []float64{-1})
				assert.Greater(params[0], 1.0)
			},
		},
		{
			name: "unknown",
			kind: "sgd",
			expect: func(t *testing.T, o Optimizer, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "unknown optimizer sgd")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o, err := NewOptimizer(tc.kind, 0.1)
			tc.expect(t, o, err)
		})
	}
}

func TestLogisticRegression(t *testing.T) {
	require := require.New(t)
	inst, err := NewInstances(HashFeatures(mockTexts, 64, 10), mockLabels)
	require.NoError(err)

	optimizer, err := NewOptimizer(config.OptimizerAdam, 0.1)
	require.NoError(err)
	lr := NewLogisticRegression(optimizer)

	_, err = lr.PredictProba(inst)
	require.EqualError(err, "no fitted model")

	rng := rand.New(rand.NewSource(1))
	for epoch := 0; epoch < 50; epoch++ {
		require.NoError(lr.FitEpoch(inst, 2, 0, rng))
	}

	probabilities, err := lr.PredictProba(inst)
	require.NoError(err)
	require.Len(probabilities, len(mockLabels))

	assert := assert.New(t)
	for i, p := range probabilities {
		if mockLabels[i] == 1 {
			assert.Greater(p, 0.5, "row %d", i)
		} else {
			assert.Less(p, 0.5, "row %d", i)
		}
	}
}

func fitProbabilities(t *testing.T, seed int64, epochs int) ([]float64, *LogisticRegression) {
	require := require.New(t)
	inst, err := NewInstances(HashFeatures(mockTexts, 64, 10), mockLabels)
	require.NoError(err)

	optimizer, err := NewOptimizer(config.OptimizerRMSProp, 0.05)
	require.NoError(err)
	lr := NewLogisticRegression(optimizer)

	rng := rand.New(rand.NewSource(seed))
	for epoch := 0; epoch < epochs; epoch++ {
		require.NoError(lr.FitEpoch(inst, 2, 0.2, rng))
	}

	probabilities, err := lr.PredictProba(inst)
	require.NoError(err)
	return probabilities, lr
}

func TestLogisticRegressionDeterministic(t *testing.T) {
	assert := assert.New(t)
	first, lr := fitProbabilities(t, 1, 5)
	for run := 0; run < 5; run++ {
		again, _ := fitProbabilities(t, 1, 5)
		assert.Equal(first, again, "run %d", run)
	}

	// Coefficients follow the column order of the grid.
	assert.Len(lr.Attrs, 64)
	for j, a := range lr.Attrs {
		assert.Equal(fmt.Sprintf("f%d", j), a.GetName())
	}
	assert.Equal("label", lr.Cls.GetName())
}

func TestLogisticRegressionPredictOtherGrid(t *testing.T) {
	require := require.New(t)
	_, lr := fitProbabilities(t, 3, 20)

	// A grid built separately resolves to the same coefficients by name.
	other, err := NewInstances(HashFeatures(mockTexts[:2], 64, 10), mockLabels[:2])
	require.NoError(err)
	probabilities, err := lr.PredictProba(other)
	require.NoError(err)

	all, err := NewInstances(HashFeatures(mockTexts, 64, 10), mockLabels)
	require.NoError(err)
	expected, err := lr.PredictProba(all)
	require.NoError(err)
	assert.New(t).Equal(expected[:2], probabilities)

	narrow, err := NewInstances([][]float64{{1, 0}}, []int{1})
	require.NoError(err)
	_, err = lr.PredictProba(narrow)
	require.Error(err)
}

func TestNewInstances(t *testing.T) {
	assert := assert.New(t)
	_, err := NewInstances([][]float64{{1}}, []int{1, 0})
	assert.Error(err)

	_, err = NewInstances(nil, nil)
	assert.EqualError(err, "no rows")

	inst, err := NewInstances([][]float64{{1, 2}, {3, 4}}, []int{1, 0})
	assert.NoError(err)
	cols, rows := inst.Size()
	assert.Equal(3, cols)
	assert.Equal(2, rows)
}
