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

package delegate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	logger "github.com/reviewlab/lstmsweep/internal/dflog"
	"github.com/reviewlab/lstmsweep/pkg/curve"
	"github.com/reviewlab/lstmsweep/sweep/config"
)

func mockRequest() *Request {
	return &Request{
		Fold:     2,
		Vertical: "Fashion",
		TrainText: []string{
			"broken zipper terrible quality",
			"love this dress great fit",
			"terrible stitching broken seam",
			"great color love it",
			"broken strap terrible",
			"great quality love the fabric",
		},
		TestText: []string{
			"terrible broken buckle",
			"love the great cut",
			"broken and terrible",
			"great love",
		},
		TrainReason:  []string{"quality", "fit", "quality", "color", "quality", "fabric"},
		TestReason:   []string{"quality", "fit", "quality", "fit"},
		TrainTargets: [][]int{{1, 0, 1, 0, 1, 0}},
		TestTargets:  [][]int{{1, 0, 1, 0}},
		Labels:       []string{"review_tag"},
		LossWeights:  []float64{1},
		Params: config.Params{
			MaxLen:     20,
			BatchSize:  2,
			Dropout:    0,
			HiddenSize: 64,
			NumEpoch:   5,
			Optimizer:  config.OptimizerAdam,
			Patience:   0,
		},
		Embedding: config.EmbeddingConfig{Type: config.EmbeddingTypeGlove},
	}
}

func TestDelegate_New(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.DelegateConfig
		expect func(t *testing.T, d Delegate, err error)
	}{
		{
			name: "external",
			cfg:  config.DelegateConfig{Kind: config.DelegateKindExternal, Command: "python3"},
			expect: func(t *testing.T, d Delegate, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal("external", reflect.TypeOf(d).Elem().Name())
			},
		},
		{
			name: "baseline",
			cfg:  config.DelegateConfig{Kind: config.DelegateKindBaseline, LearningRate: 0.1},
			expect: func(t *testing.T, d Delegate, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal("baseline", reflect.TypeOf(d).Elem().Name())
			},
		},
		{
			name: "unknown",
			cfg:  config.DelegateConfig{Kind: "keras"},
			expect: func(t *testing.T, d Delegate, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "unknown delegate kind keras")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := New(tc.cfg, logger.Nop())
			tc.expect(t, d, err)
		})
	}
}

func TestResult_Validate(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		expect func(t *testing.T, err error)
	}{
		{
			name: "valid",
			result: &Result{
				ROC:     map[int]curve.ROC{7: {AUC: 0.81}},
				BestROC: curve.Best{Value: 0.81, Epoch: 7},
				PR:      map[int]curve.PR{7: {AP: 0.6}},
				BestPR:  curve.Best{Value: 0.6, Epoch: 7},
			},
			expect: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:   "empty",
			result: &Result{},
			expect: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyResult)
			},
		},
		{
			name: "dangling pointer",
			result: &Result{
				ROC:     map[int]curve.ROC{7: {AUC: 0.81}},
				BestROC: curve.Best{Value: 0.81, Epoch: 8},
				PR:      map[int]curve.PR{7: {AP: 0.6}},
				BestPR:  curve.Best{Value: 0.6, Epoch: 7},
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.ErrorIs(err, ErrBestEpochNotFound)
				assert.EqualError(err, "best epoch not found: ROC epoch 8")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.expect(t, tc.result.Validate())
		})
	}
}

func TestBaseline_Train(t *testing.T) {
	tests := []struct {
		name   string
		mock   func(req *Request)
		expect func(t *testing.T, result *Result, err error)
	}{
		{
			name: "trains every epoch",
			mock: func(req *Request) {},
			expect: func(t *testing.T, result *Result, err error) {
				require := require.New(t)
				require.NoError(err)
				require.NoError(result.Validate())

				assert := assert.New(t)
				assert.Len(result.ROC, 5)
				assert.Len(result.PR, 5)
				assert.Equal(curve.Epochs(result.ROC), []int{1, 2, 3, 4, 5})
				assert.Equal(result.ROC[result.BestROC.Epoch].AUC, result.BestROC.Value)
				assert.Equal(result.PR[result.BestPR.Epoch].AP, result.BestPR.Value)
				assert.Greater(result.BestROC.Value, 0.5)
			},
		},
		{
			name: "early stops on patience",
			mock: func(req *Request) {
				req.Params.NumEpoch = 30
				req.Params.Patience = 1
			},
			expect: func(t *testing.T, result *Result, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Less(len(result.ROC), 30)
			},
		},
		{
			name: "single class test side",
			mock: func(req *Request) {
				req.TestTargets = [][]int{{1, 1, 1, 1}}
			},
			expect: func(t *testing.T, result *Result, err error) {
				assert := assert.New(t)
				assert.ErrorIs(err, curve.ErrSingleClass)
			},
		},
		{
			name: "unknown optimizer",
			mock: func(req *Request) {
				req.Params.Optimizer = "sgd"
			},
			expect: func(t *testing.T, result *Result, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "unknown optimizer sgd")
			},
		},
		{
			name: "no targets",
			mock: func(req *Request) {
				req.TrainTargets = nil
			},
			expect: func(t *testing.T, result *Result, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "request has no targets")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := mockRequest()
			tc.mock(req)
			result, err := NewBaseline(0.1, logger.Nop()).Train(context.Background(), req)
			tc.expect(t, result, err)
		})
	}
}

func TestBaseline_TrainCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBaseline(0.1, logger.Nop()).Train(ctx, mockRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExternal_TrainLogsOutput(t *testing.T) {
	script, err := filepath.Abs("./testdata/trainer.sh")
	require.NoError(t, err)

	core, logs := observer.New(zap.DebugLevel)
	d := NewExternal(config.DelegateConfig{
		Kind:    config.DelegateKindExternal,
		Command: "/bin/sh",
		Args:    []string{script, "ok"},
		WorkDir: t.TempDir(),
	}, zap.New(core).Sugar())

	_, err = d.Train(context.Background(), mockRequest())
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(1, logs.FilterMessage("fold 2 trainer: epoch 1 done").Len())
	assert.Equal(1, logs.FilterMessage("fold 2 trainer stderr: Epoch 1/2").Len())
	assert.Equal(1, logs.FilterMessage("fold 2 trainer stderr: val_auc: 0.81").Len())
}

func TestLineWriter(t *testing.T) {
	assert := assert.New(t)
	core, logs := observer.New(zap.DebugLevel)
	var tee bytes.Buffer
	w := &lineWriter{log: zap.New(core).Sugar(), prefix: "> ", tee: &tee}

	n, err := w.Write([]byte("first\r\nsec"))
	assert.NoError(err)
	assert.Equal(10, n)
	_, err = w.Write([]byte("ond\nlast"))
	assert.NoError(err)
	assert.Equal(2, logs.Len())

	w.Flush()
	w.Flush()
	var messages []string
	for _, entry := range logs.All() {
		messages = append(messages, entry.Message)
	}
	assert.Equal([]string{"> first", "> second", "> last"}, messages)
	assert.Equal("first\r\nsecond\nlast", tee.String())
}

func TestExternal_Train(t *testing.T) {
	script, err := filepath.Abs("./testdata/trainer.sh")
	require.NoError(t, err)

	tests := []struct {
		name    string
		mode    string
		timeout time.Duration
		expect  func(t *testing.T, result *Result, err error, workDir string)
	}{
		{
			name: "reads result",
			mode: "ok",
			expect: func(t *testing.T, result *Result, err error, workDir string) {
				require := require.New(t)
				require.NoError(err)

				assert := assert.New(t)
				assert.Equal(curve.Best{Value: 0.81, Epoch: 1}, result.BestROC)
				assert.Equal(curve.Best{Value: 0.7, Epoch: 1}, result.BestPR)
				assert.Equal(curve.ROC{FPR: []float64{0, 0.2, 1}, TPR: []float64{0, 0.9, 1}, AUC: 0.81}, result.ROC[1])
				assert.Equal([]float64{1, 0.6, 0.4}, result.PR[0].Precision)

				entries, err := os.ReadDir(workDir)
				require.NoError(err)
				assert.Empty(entries)
			},
		},
		{
			name: "picks missing best epochs with earliest epoch on ties",
			mode: "nobest",
			expect: func(t *testing.T, result *Result, err error, workDir string) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(curve.Best{Value: 0.7, Epoch: 3}, result.BestROC)
				assert.Equal(curve.Best{Value: 0.6, Epoch: 3}, result.BestPR)
			},
		},
		{
			name: "trainer fails",
			mode: "fail",
			expect: func(t *testing.T, result *Result, err error, workDir string) {
				assert := assert.New(t)
				assert.Error(err)
				assert.Contains(err.Error(), "out of memory")
				assert.Nil(result)
			},
		},
		{
			name:    "trainer times out",
			mode:    "sleep",
			timeout: 100 * time.Millisecond,
			expect: func(t *testing.T, result *Result, err error, workDir string) {
				assert := assert.New(t)
				assert.ErrorIs(err, context.DeadlineExceeded)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			workDir := t.TempDir()
			d := NewExternal(config.DelegateConfig{
				Kind:    config.DelegateKindExternal,
				Command: "/bin/sh",
				Args:    []string{script, tc.mode},
				WorkDir: workDir,
				Timeout: tc.timeout,
			}, logger.Nop())

			result, err := d.Train(context.Background(), mockRequest())
			tc.expect(t, result, err, workDir)
		})
	}
}
