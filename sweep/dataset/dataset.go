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

package dataset

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	logger "github.com/reviewlab/lstmsweep/internal/dflog"
	"github.com/reviewlab/lstmsweep/pkg/math"
	"github.com/reviewlab/lstmsweep/sweep/config"
)

var (
	// ErrColumnNotFound is returned when a configured column is absent from the input.
	ErrColumnNotFound = errors.New("column not found")

	// ErrEmptyDataset is returned when the input holds no rows.
	ErrEmptyDataset = errors.New("dataset has no rows")

	// ErrNotBinary is returned when a task label is neither 0 nor 1.
	ErrNotBinary = errors.New("label is not 0 or 1")
)

// Frame is a loaded csv table addressed by position. The source file is never modified.
type Frame struct {
	rows []map[string]string
}

// Load reads a csv file with a header row.
func Load(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := gocsv.CSVToMaps(file)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	return &Frame{rows: rows}, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.rows)
}

// HasColumn reports whether the header holds name.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.rows[0][name]
	return ok
}

// Column returns the values of a column in row order.
func (f *Frame) Column(name string) ([]string, error) {
	if !f.HasColumn(name) {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}

	values := make([]string, len(f.rows))
	for i, row := range f.rows {
		values[i] = row[name]
	}

	return values, nil
}

// IntColumn returns a 0/1 label column. Values such as "1" and "1.0" are accepted,
// anything else fails with ErrNotBinary.
func (f *Frame) IntColumn(name string) ([]int, error) {
	values, err := f.Column(name)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(values))
	for i, v := range values {
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("column %s row %d: %w", name, i, err)
		}

		if n != 0 && n != 1 {
			return nil, fmt.Errorf("column %s row %d: %w", name, i, ErrNotBinary)
		}

		labels[i] = int(n)
	}

	return labels, nil
}

// Binarize maps values equal to positive to 1 and every other value to 0.
func Binarize(values []string, positive string) []int {
	labels := make([]int, len(values))
	for i, v := range values {
		if v == positive {
			labels[i] = 1
		}
	}

	return labels
}

// Balance is the share of one class.
type Balance struct {
	Class int
	Count int
	Ratio float64
}

// ClassBalance counts every class of labels, ordered by class.
func ClassBalance(labels []int) []Balance {
	counts := map[int]int{}
	for _, label := range labels {
		counts[label]++
	}

	balances := make([]Balance, 0, len(counts))
	for class, count := range counts {
		balances = append(balances, Balance{
			Class: class,
			Count: count,
			Ratio: math.Round(float64(count)/float64(len(labels)), 3),
		})
	}

	sort.Slice(balances, func(i, j int) bool { return balances[i].Class < balances[j].Class })
	return balances
}

// Dataset is the training input of one sweep.
type Dataset struct {
	// Text is the review text column.
	Text []string

	// Reason is the labeling reason column, empty strings when not configured.
	Reason []string

	// Target is the binarized target column.
	Target []int

	// Tasks are the label columns of every task, in configured label order.
	// The target column takes its binarized values.
	Tasks [][]int
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Text)
}

// New extracts the configured columns of a frame and binarizes the target.
func New(frame *Frame, cfg config.DataConfig, labels []string, log logger.Logger) (*Dataset, error) {
	text, err := frame.Column(cfg.TextColumn)
	if err != nil {
		return nil, err
	}

	raw, err := frame.Column(cfg.TargetColumn)
	if err != nil {
		return nil, err
	}

	reason := make([]string, frame.Len())
	if cfg.ReasonColumn != "" {
		if reason, err = frame.Column(cfg.ReasonColumn); err != nil {
			return nil, err
		}
	}

	target := Binarize(raw, cfg.PositiveValue)
	for _, b := range ClassBalance(target) {
		log.Infof("class %d: count=%d, ratio=%.3f", b.Class, b.Count, b.Ratio)
	}

	tasks := make([][]int, len(labels))
	for i, label := range labels {
		if label == cfg.TargetColumn {
			tasks[i] = target
			continue
		}

		if tasks[i], err = frame.IntColumn(label); err != nil {
			return nil, err
		}
	}

	return &Dataset{
		Text:   text,
		Reason: reason,
		Target: target,
		Tasks:  tasks,
	}, nil
}
