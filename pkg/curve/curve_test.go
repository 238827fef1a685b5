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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeROC(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		labels []int
		expect func(t *testing.T, roc ROC, err error)
	}{
		{
			name:   "partially ranked",
			scores: []float64{0.1, 0.4, 0.35, 0.8},
			labels: []int{0, 0, 1, 1},
			expect: func(t *testing.T, roc ROC, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.InDelta(0.75, roc.AUC, 1e-9)
				assert.NoError(roc.Validate())
				assert.Equal(0.0, roc.FPR[0])
				assert.Equal(1.0, roc.FPR[len(roc.FPR)-1])
				assert.Equal(1.0, roc.TPR[len(roc.TPR)-1])
			},
		},
		{
			name:   "perfectly ranked",
			scores: []float64{0.9, 0.8, 0.2, 0.1},
			labels: []int{1, 1, 0, 0},
			expect: func(t *testing.T, roc ROC, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.InDelta(1.0, roc.AUC, 1e-9)
			},
		},
		{
			name:   "inversely ranked",
			scores: []float64{0.1, 0.2, 0.8, 0.9},
			labels: []int{1, 1, 0, 0},
			expect: func(t *testing.T, roc ROC, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.InDelta(0.0, roc.AUC, 1e-9)
			},
		},
		{
			name:   "single class",
			scores: []float64{0.1, 0.2},
			labels: []int{1, 1},
			expect: func(t *testing.T, roc ROC, err error) {
				assert := assert.New(t)
				assert.ErrorIs(err, ErrSingleClass)
			},
		},
		{
			name:   "length mismatch",
			scores: []float64{0.1},
			labels: []int{1, 0},
			expect: func(t *testing.T, roc ROC, err error) {
				assert := assert.New(t)
				assert.True(errors.Is(err, ErrLength))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			roc, err := ComputeROC(tc.scores, tc.labels)
			tc.expect(t, roc, err)
		})
	}
}

func TestComputePR(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		labels []int
		expect func(t *testing.T, pr PR, err error)
	}{
		{
			name:   "partially ranked",
			scores: []float64{0.1, 0.4, 0.35, 0.8},
			labels: []int{0, 0, 1, 1},
			expect: func(t *testing.T, pr PR, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.InDelta(0.8333333, pr.AP, 1e-6)
				assert.Equal([]float64{0, 0.5, 0.5, 1, 1}, pr.Recall)
				assert.InDeltaSlice([]float64{1, 1, 0.5, 2.0 / 3.0, 0.5}, pr.Precision, 1e-9)
			},
		},
		{
			name:   "tied scores share a threshold",
			scores: []float64{0.5, 0.5, 0.5, 0.5},
			labels: []int{1, 0, 1, 0},
			expect: func(t *testing.T, pr PR, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal([]float64{0, 1}, pr.Recall)
				assert.Equal([]float64{1, 0.5}, pr.Precision)
				assert.InDelta(0.5, pr.AP, 1e-9)
			},
		},
		{
			name:   "single class",
			scores: []float64{0.1, 0.2},
			labels: []int{0, 0},
			expect: func(t *testing.T, pr PR, err error) {
				assert := assert.New(t)
				assert.ErrorIs(err, ErrSingleClass)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pr, err := ComputePR(tc.scores, tc.labels)
			tc.expect(t, pr, err)
		})
	}
}

func TestBestOf(t *testing.T) {
	tests := []struct {
		name   string
		epochs map[int]ROC
		expect func(t *testing.T, best Best, err error)
	}{
		{
			name: "maximum wins",
			epochs: map[int]ROC{
				1: {AUC: 0.7},
				2: {AUC: 0.9},
				3: {AUC: 0.8},
			},
			expect: func(t *testing.T, best Best, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(Best{Value: 0.9, Epoch: 2}, best)
			},
		},
		{
			name: "earliest epoch wins ties",
			epochs: map[int]ROC{
				5: {AUC: 0.9},
				3: {AUC: 0.9},
				1: {AUC: 0.2},
			},
			expect: func(t *testing.T, best Best, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(Best{Value: 0.9, Epoch: 3}, best)
			},
		},
		{
			name:   "no epochs",
			epochs: map[int]ROC{},
			expect: func(t *testing.T, best Best, err error) {
				assert := assert.New(t)
				assert.ErrorIs(err, ErrNoEpochs)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			best, err := BestOf(tc.epochs)
			tc.expect(t, best, err)
		})
	}
}

func TestRecord_Validate(t *testing.T) {
	assert := assert.New(t)
	assert.NoError(ROC{FPR: []float64{0, 1}, TPR: []float64{0, 1}}.Validate())
	assert.ErrorIs(ROC{FPR: []float64{0, 1}, TPR: []float64{0}}.Validate(), ErrCurveLength)
	assert.ErrorIs(PR{}.Validate(), ErrEmptyCurve)
	assert.Equal([]int{1, 2, 10}, Epochs(map[int]PR{10: {}, 2: {}, 1: {}}))
}
