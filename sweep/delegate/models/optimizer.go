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
	"math"

	"github.com/reviewlab/lstmsweep/sweep/config"
)

// Optimizer updates parameters in place from their gradients.
type Optimizer interface {
	Step(params, grads []float64)
}

// NewOptimizer returns the named optimizer.
func NewOptimizer(name config.Optimizer, learningRate float64) (Optimizer, error) {
	switch name {
	case config.OptimizerAdam:
		return &adam{learningRate: learningRate, beta1: 0.9, beta2: 0.999, epsilon: 1e-7}, nil
	case config.OptimizerRMSProp:
		return &rmsProp{learningRate: learningRate, rho: 0.9, epsilon: 1e-7}, nil
	}

	return nil, fmt.Errorf("unknown optimizer %s", name)
}

type rmsProp struct {
	learningRate float64
	rho          float64
	epsilon      float64
	square       []float64
}

func (o *rmsProp) Step(params, grads []float64) {
	if o.square == nil {
		o.square = make([]float64, len(params))
	}

	for i, g := range grads {
		o.square[i] = o.rho*o.square[i] + (1-o.rho)*g*g
		params[i] -= o.learningRate * g / (math.Sqrt(o.square[i]) + o.epsilon)
	}
}

type adam struct {
	learningRate float64
	beta1        float64
	beta2        float64
	epsilon      float64
	t            int
	m            []float64
	v            []float64
}

func (o *adam) Step(params, grads []float64) {
	if o.m == nil {
		o.m = make([]float64, len(params))
		o.v = make([]float64, len(params))
	}

	o.t++
	c1 := 1 - math.Pow(o.beta1, float64(o.t))
	c2 := 1 - math.Pow(o.beta2, float64(o.t))
	for i, g := range grads {
		o.m[i] = o.beta1*o.m[i] + (1-o.beta1)*g
		o.v[i] = o.beta2*o.v[i] + (1-o.beta2)*g*g
		params[i] -= o.learningRate * (o.m[i] / c1) / (math.Sqrt(o.v[i]/c2) + o.epsilon)
	}
}
