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

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrLength is returned when scores and labels differ in length.
	ErrLength = errors.New("scores and labels differ in length")

	// ErrSingleClass is returned when labels hold only one class.
	ErrSingleClass = errors.New("labels require both positive and negative samples")
)

type scored struct {
	score    float64
	positive bool
}

func pair(scores []float64, labels []int) ([]scored, int, error) {
	if len(scores) != len(labels) {
		return nil, 0, fmt.Errorf("%w: %d and %d", ErrLength, len(scores), len(labels))
	}

	pairs := make([]scored, len(scores))
	positives := 0
	for i := range scores {
		pairs[i] = scored{score: scores[i], positive: labels[i] == 1}
		if pairs[i].positive {
			positives++
		}
	}

	if positives == 0 || positives == len(pairs) {
		return nil, 0, ErrSingleClass
	}

	return pairs, positives, nil
}

// ComputeROC computes the ROC curve and its area of binary labels given the predicted scores.
func ComputeROC(scores []float64, labels []int) (ROC, error) {
	pairs, _, err := pair(scores, labels)
	if err != nil {
		return ROC{}, err
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })
	y := make([]float64, len(pairs))
	classes := make([]bool, len(pairs))
	for i, p := range pairs {
		y[i] = p.score
		classes[i] = p.positive
	}

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return ROC{
		FPR: fpr,
		TPR: tpr,
		AUC: integrate.Trapezoidal(fpr, tpr),
	}, nil
}

// ComputePR computes the precision recall curve and the average precision
// of binary labels given the predicted scores. Points are ordered by
// increasing recall and start at recall 0 with precision 1.
func ComputePR(scores []float64, labels []int) (PR, error) {
	pairs, positives, err := pair(scores, labels)
	if err != nil {
		return PR{}, err
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })
	pr := PR{
		Recall:    []float64{0},
		Precision: []float64{1},
	}

	var tp, fp int
	var prevRecall float64
	for i, p := range pairs {
		if p.positive {
			tp++
		} else {
			fp++
		}

		// Tied scores share one threshold.
		if i+1 < len(pairs) && pairs[i+1].score == p.score {
			continue
		}

		recall := float64(tp) / float64(positives)
		precision := float64(tp) / float64(tp+fp)
		pr.AP += (recall - prevRecall) * precision
		prevRecall = recall

		pr.Recall = append(pr.Recall, recall)
		pr.Precision = append(pr.Precision, precision)
	}

	return pr, nil
}
