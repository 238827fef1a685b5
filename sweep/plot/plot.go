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

package plot

import (
	"fmt"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart"

	"github.com/reviewlab/lstmsweep/pkg/math"
	"github.com/reviewlab/lstmsweep/pkg/types"
	"github.com/reviewlab/lstmsweep/sweep/selection"
)

const (
	// defaultWidth is the rendered image width.
	defaultWidth = 1024

	// defaultHeight is the rendered image height.
	defaultHeight = 768

	// scorePlaces is the number of decimals of scores in names and legends.
	scorePlaces = 3
)

type renderer struct {
	width  int
	height int
}

// Option is a functional option for the renderer.
type Option func(r *renderer)

// WithSize sets the image size.
func WithSize(width, height int) Option {
	return func(r *renderer) {
		r.width = width
		r.height = height
	}
}

// New returns a plotter rendering PNG overlays of every fold's best-epoch curve.
func New(options ...Option) selection.Plotter {
	r := &renderer{
		width:  defaultWidth,
		height: defaultHeight,
	}

	for _, opt := range options {
		opt(r)
	}

	return r
}

// FileName returns the overlay file name of a mean score.
func FileName(mean float64) string {
	return fmt.Sprintf("%s_epoch=best.png", math.FormatRound(mean, scorePlaces))
}

// Render writes <dir>/<auc_cv|ap_cv>/<mean>_epoch=best.png. A partially
// written file is removed.
func (r *renderer) Render(dir string, outcome selection.Outcome) (path string, err error) {
	if outcome.Empty() {
		return "", fmt.Errorf("%s outcome has no folds", outcome.Family.Name())
	}

	graph := r.chart(outcome)

	plotDir := filepath.Join(dir, outcome.Family.PlotDir())
	if err := os.MkdirAll(plotDir, 0755); err != nil {
		return "", err
	}

	path = filepath.Join(plotDir, FileName(outcome.Mean))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}

		if err != nil {
			os.Remove(path)
			path = ""
		}
	}()

	if err := graph.Render(chart.PNG, f); err != nil {
		return "", err
	}

	return path, nil
}

func (r *renderer) chart(outcome selection.Outcome) chart.Chart {
	var series []chart.Series
	if outcome.Family == types.FamilyROC {
		series = append(series, chart.ContinuousSeries{
			Name:    "Chance",
			XValues: []float64{0, 1},
			YValues: []float64{0, 1},
			Style: chart.Style{
				Show:            true,
				StrokeColor:     chart.ColorRed,
				StrokeDashArray: []float64{5.0, 5.0},
			},
		})
	}

	for i, fold := range outcome.PerFold {
		x, y := fold.X, fold.Y
		if outcome.Family == types.FamilyPR {
			x, y = steps(x, y)
		}

		series = append(series, chart.ContinuousSeries{
			Name:    legend(outcome.Family, fold),
			XValues: x,
			YValues: y,
			Style: chart.Style{
				Show:        true,
				StrokeColor: chart.GetAlternateColor(i),
			},
		})
	}

	xName, yName := "False Positive Rate", "True Positive Rate"
	if outcome.Family == types.FamilyPR {
		xName, yName = "Recall", "Precision"
	}

	graph := chart.Chart{
		Title:      fmt.Sprintf("%s - epoch number: best, %s", outcome.Family.Name(), math.FormatRound(outcome.Mean, scorePlaces)),
		TitleStyle: chart.StyleShow(),
		Width:      r.width,
		Height:     r.height,
		XAxis: chart.XAxis{
			Name:      xName,
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
			Range:     &chart.ContinuousRange{Min: 0, Max: 1},
		},
		YAxis: chart.YAxis{
			Name:      yName,
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
			Range:     &chart.ContinuousRange{Min: 0, Max: 1.05},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	return graph
}

func legend(family types.Family, fold selection.FoldBest) string {
	return fmt.Sprintf("Fold: %d, epoch: %d - (%s = %.3f)", fold.Fold, fold.Epoch, family.ScoreName(), fold.Value)
}

// steps turns a precision-recall curve into a post-step polyline.
func steps(x, y []float64) ([]float64, []float64) {
	if len(x) < 2 {
		return x, y
	}

	sx := make([]float64, 0, 2*len(x)-1)
	sy := make([]float64, 0, 2*len(y)-1)
	sx, sy = append(sx, x[0]), append(sy, y[0])
	for i := 1; i < len(x); i++ {
		sx, sy = append(sx, x[i]), append(sy, y[i-1])
		sx, sy = append(sx, x[i]), append(sy, y[i])
	}

	return sx, sy
}
