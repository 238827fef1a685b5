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
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/sjwhitworth/golearn/base"
)

// LogisticRegression is a binary classifier trained by mini-batch gradient descent.
// Coefficients[j] always weighs Attrs[j], the order is fixed by the first epoch.
type LogisticRegression struct {
	Fitted       bool
	Bias         float64
	Coefficients []float64
	Attrs        []*base.FloatAttribute
	Cls          *base.FloatAttribute

	optimizer Optimizer
}

// NewLogisticRegression return an instance of logistic regression model.
func NewLogisticRegression(optimizer Optimizer) *LogisticRegression {
	return &LogisticRegression{Fitted: false, optimizer: optimizer}
}

// NewInstances packs feature rows and binary labels into a golearn grid.
func NewInstances(features [][]float64, labels []int) (*base.DenseInstances, error) {
	if len(features) != len(labels) {
		return nil, fmt.Errorf("%d feature rows and %d labels", len(features), len(labels))
	}

	if len(features) == 0 {
		return nil, errors.New("no rows")
	}

	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(features[0]))
	for j := range specs {
		specs[j] = inst.AddAttribute(base.NewFloatAttribute(fmt.Sprintf("f%d", j)))
	}

	cls := base.NewFloatAttribute("label")
	clsSpec := inst.AddAttribute(cls)
	if err := inst.AddClassAttribute(cls); err != nil {
		return nil, err
	}

	if err := inst.Extend(len(features)); err != nil {
		return nil, err
	}

	for i, row := range features {
		for j, v := range row {
			inst.Set(specs[j], i, base.PackFloatToBytes(v))
		}
		inst.Set(clsSpec, i, base.PackFloatToBytes(float64(labels[i])))
	}

	return inst, nil
}

// FitEpoch runs one pass over the rows in shuffled mini-batches. Features are
// dropped out with the given rate and kept ones scaled by 1/(1-rate).
func (lr *LogisticRegression) FitEpoch(inst base.FixedDataGrid, batchSize int, dropout float64, rng *rand.Rand) error {
	if lr.optimizer == nil {
		return errors.New("no optimizer")
	}

	_, rows := inst.Size()
	if rows == 0 {
		return errors.New("no rows")
	}

	classAttrs := inst.AllClassAttributes()
	if len(classAttrs) != 1 {
		return errors.New("only 1 class variable is permitted")
	}

	if !lr.Fitted {
		if err := lr.init(inst, classAttrs[0]); err != nil {
			return err
		}
	}

	attrSpecs, err := lr.resolve(inst)
	if err != nil {
		return err
	}

	clsSpec, err := inst.GetAttribute(lr.Cls)
	if err != nil {
		return fmt.Errorf("resolve class attribute: %w", err)
	}

	if batchSize <= 0 {
		batchSize = rows
	}

	scale := 1 / (1 - dropout)
	params := make([]float64, len(attrSpecs)+1)
	grads := make([]float64, len(attrSpecs)+1)
	x := make([]float64, len(attrSpecs))
	order := rng.Perm(rows)
	for start := 0; start < rows; start += batchSize {
		end := start + batchSize
		if end > rows {
			end = rows
		}

		for j := range grads {
			grads[j] = 0
		}

		for _, i := range order[start:end] {
			for j := range x {
				x[j] = base.UnpackBytesToFloat(inst.Get(attrSpecs[j], i))
				if dropout > 0 {
					if rng.Float64() < dropout {
						x[j] = 0
					} else {
						x[j] *= scale
					}
				}
			}

			diff := sigmoid(lr.linear(x)) - base.UnpackBytesToFloat(inst.Get(clsSpec, i))
			grads[0] += diff
			for j, v := range x {
				grads[j+1] += diff * v
			}
		}

		n := float64(end - start)
		for j := range grads {
			grads[j] /= n
		}

		params[0] = lr.Bias
		copy(params[1:], lr.Coefficients)
		lr.optimizer.Step(params, grads)
		lr.Bias = params[0]
		copy(lr.Coefficients, params[1:])
	}

	lr.Fitted = true
	return nil
}

// PredictProba returns the positive class probability of every row.
func (lr *LogisticRegression) PredictProba(X base.FixedDataGrid) ([]float64, error) {
	if !lr.Fitted {
		return nil, errors.New("no fitted model")
	}

	attrSpecs, err := lr.resolve(X)
	if err != nil {
		return nil, err
	}

	_, rows := X.Size()
	probabilities := make([]float64, rows)
	x := make([]float64, len(attrSpecs))
	for i := 0; i < rows; i++ {
		for j, spec := range attrSpecs {
			x[j] = base.UnpackBytesToFloat(X.Get(spec, i))
		}

		probabilities[i] = sigmoid(lr.linear(x))
	}

	return probabilities, nil
}

// init takes the float feature attributes in grid order, which fixes the
// coefficient layout for the lifetime of the model.
func (lr *LogisticRegression) init(inst base.FixedDataGrid, cls base.Attribute) error {
	clsAttr, ok := cls.(*base.FloatAttribute)
	if !ok {
		return fmt.Errorf("class attribute %s is not a float attribute", cls.GetName())
	}

	lr.Attrs = lr.Attrs[:0]
	for _, a := range inst.AllAttributes() {
		if a.Equals(cls) {
			continue
		}

		if f, ok := a.(*base.FloatAttribute); ok {
			lr.Attrs = append(lr.Attrs, f)
		}
	}

	if len(lr.Attrs) == 0 {
		return errors.New("no float attributes")
	}

	lr.Coefficients = make([]float64, len(lr.Attrs))
	lr.Cls = clsAttr
	return nil
}

// resolve finds the model's attributes in the grid, in coefficient order.
func (lr *LogisticRegression) resolve(grid base.FixedDataGrid) ([]base.AttributeSpec, error) {
	specs := make([]base.AttributeSpec, len(lr.Attrs))
	for j, a := range lr.Attrs {
		spec, err := grid.GetAttribute(a)
		if err != nil {
			return nil, fmt.Errorf("resolve attribute %s: %w", a.GetName(), err)
		}
		specs[j] = spec
	}

	return specs, nil
}

func (lr *LogisticRegression) linear(x []float64) float64 {
	out := lr.Bias
	for j, v := range x {
		out += v * lr.Coefficients[j]
	}

	return out
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
