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
	"context"
	"errors"
	"fmt"
	"math/rand"

	logger "github.com/reviewlab/lstmsweep/internal/dflog"
	"github.com/reviewlab/lstmsweep/pkg/curve"
	"github.com/reviewlab/lstmsweep/sweep/delegate/models"
)

// baseline trains a hashed bag-of-words logistic regression in process.
// Hidden size sets the hashing width and only the primary task is trained.
type baseline struct {
	learningRate float64
	log          logger.Logger
}

// NewBaseline returns the in-process baseline delegate.
func NewBaseline(learningRate float64, log logger.Logger) Delegate {
	return &baseline{learningRate: learningRate, log: log}
}

// Train fits one epoch at a time and evaluates the test side after each,
// stopping once patience epochs pass without a better AUC.
func (b *baseline) Train(ctx context.Context, req *Request) (*Result, error) {
	if len(req.TrainTargets) == 0 || len(req.TestTargets) == 0 {
		return nil, errors.New("request has no targets")
	}

	if req.Attention || len(req.TrainTargets) > 1 {
		b.log.Warnf("baseline trains the primary task %v only, attention and extra tasks are ignored", req.Labels)
	}

	width := req.Params.HiddenSize
	train, err := models.NewInstances(models.HashFeatures(req.TrainText, width, req.Params.MaxLen), req.TrainTargets[0])
	if err != nil {
		return nil, fmt.Errorf("train instances: %w", err)
	}

	test, err := models.NewInstances(models.HashFeatures(req.TestText, width, req.Params.MaxLen), req.TestTargets[0])
	if err != nil {
		return nil, fmt.Errorf("test instances: %w", err)
	}

	optimizer, err := models.NewOptimizer(req.Params.Optimizer, b.learningRate)
	if err != nil {
		return nil, err
	}

	model := models.NewLogisticRegression(optimizer)
	rng := rand.New(rand.NewSource(int64(req.Fold)))
	result := &Result{
		ROC: map[int]curve.ROC{},
		PR:  map[int]curve.PR{},
	}

	var bestAUC float64
	var wait int
	for epoch := 1; epoch <= req.Params.NumEpoch; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := model.FitEpoch(train, req.Params.BatchSize, req.Params.Dropout, rng); err != nil {
			return nil, err
		}

		scores, err := model.PredictProba(test)
		if err != nil {
			return nil, err
		}

		roc, err := curve.ComputeROC(scores, req.TestTargets[0])
		if err != nil {
			return nil, fmt.Errorf("epoch %d: %w", epoch, err)
		}

		pr, err := curve.ComputePR(scores, req.TestTargets[0])
		if err != nil {
			return nil, fmt.Errorf("epoch %d: %w", epoch, err)
		}

		result.ROC[epoch] = roc
		result.PR[epoch] = pr
		b.log.Debugf("fold %d epoch %d: auc=%.4f, ap=%.4f", req.Fold, epoch, roc.AUC, pr.AP)

		if epoch == 1 || roc.AUC > bestAUC {
			bestAUC = roc.AUC
			wait = 0
			continue
		}

		wait++
		if req.Params.Patience > 0 && wait >= req.Params.Patience {
			b.log.Infof("fold %d early stopped at epoch %d", req.Fold, epoch)
			break
		}
	}

	if result.BestROC, err = curve.BestOf(result.ROC); err != nil {
		return nil, err
	}

	if result.BestPR, err = curve.BestOf(result.PR); err != nil {
		return nil, err
	}

	return result, nil
}
