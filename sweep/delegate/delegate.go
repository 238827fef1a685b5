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

//go:generate mockgen -destination mocks/delegate_mock.go -source delegate.go -package mocks

package delegate

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/reviewlab/lstmsweep/internal/dflog"
	"github.com/reviewlab/lstmsweep/pkg/curve"
	"github.com/reviewlab/lstmsweep/sweep/config"
)

var (
	// ErrEmptyResult is returned when a training reports no epochs.
	ErrEmptyResult = errors.New("training reported no epochs")

	// ErrBestEpochNotFound is returned when a best epoch pointer has no matching epoch.
	ErrBestEpochNotFound = errors.New("best epoch not found")
)

// Delegate trains and evaluates a classifier on one fold.
type Delegate interface {
	// Train fits the model on the train side of a fold and reports per-epoch
	// ROC and PR statistics measured on its test side.
	Train(context.Context, *Request) (*Result, error)
}

// Request is the input of one fold training.
type Request struct {
	// Fold is the 1-based fold number.
	Fold int

	// Vertical is the product vertical of the reviews.
	Vertical string

	TrainText   []string
	TestText    []string
	TrainReason []string
	TestReason  []string

	// TrainTargets and TestTargets hold one label slice per task.
	TrainTargets [][]int
	TestTargets  [][]int

	// Labels are the task names, the first one is the primary task.
	Labels      []string
	LossWeights []float64

	// Params is the hyper-parameter set of the combination.
	Params config.Params

	Attention bool
	Embedding config.EmbeddingConfig

	// TensorBoardDir is empty when tensorboard is disabled.
	TensorBoardDir string
}

// Result is the output of one fold training.
type Result struct {
	ROC     map[int]curve.ROC
	BestROC curve.Best
	PR      map[int]curve.PR
	BestPR  curve.Best
}

// Validate checks both families are non-empty and both pointers hit an epoch.
func (r *Result) Validate() error {
	if len(r.ROC) == 0 || len(r.PR) == 0 {
		return ErrEmptyResult
	}

	if _, ok := r.ROC[r.BestROC.Epoch]; !ok {
		return fmt.Errorf("%w: ROC epoch %d", ErrBestEpochNotFound, r.BestROC.Epoch)
	}

	if _, ok := r.PR[r.BestPR.Epoch]; !ok {
		return fmt.Errorf("%w: PR epoch %d", ErrBestEpochNotFound, r.BestPR.Epoch)
	}

	return nil
}

// New returns the configured delegate.
func New(cfg config.DelegateConfig, log logger.Logger) (Delegate, error) {
	switch cfg.Kind {
	case config.DelegateKindExternal:
		return NewExternal(cfg, log), nil
	case config.DelegateKindBaseline:
		return NewBaseline(cfg.LearningRate, log), nil
	}

	return nil, fmt.Errorf("unknown delegate kind %s", cfg.Kind)
}
