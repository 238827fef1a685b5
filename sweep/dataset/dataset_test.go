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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/reviewlab/lstmsweep/internal/dflog"
	"github.com/reviewlab/lstmsweep/sweep/config"
)

var mockDataConfig = config.DataConfig{
	InputFile:     "./testdata/reviews.csv",
	Vertical:      "Fashion",
	TextColumn:    "review_text",
	TargetColumn:  "review_tag",
	PositiveValue: "complaint",
	ReasonColumn:  "reason",
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		mock   func(t *testing.T) string
		expect func(t *testing.T, f *Frame, err error)
	}{
		{
			name: "load csv file",
			mock: func(t *testing.T) string {
				return "./testdata/reviews.csv"
			},
			expect: func(t *testing.T, f *Frame, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(5, f.Len())
				assert.True(f.HasColumn("review_tag"))
				assert.False(f.HasColumn("rating"))
			},
		},
		{
			name: "file does not exist",
			mock: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "foo.csv")
			},
			expect: func(t *testing.T, f *Frame, err error) {
				assert := assert.New(t)
				assert.Error(err)
				assert.Nil(f)
			},
		},
		{
			name: "header only",
			mock: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "empty.csv")
				require.NoError(t, os.WriteFile(path, []byte("review_text,review_tag\n"), 0600))
				return path
			},
			expect: func(t *testing.T, f *Frame, err error) {
				assert := assert.New(t)
				assert.ErrorIs(err, ErrEmptyDataset)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Load(tc.mock(t))
			tc.expect(t, f, err)
		})
	}
}

func TestBinarize(t *testing.T) {
	assert := assert.New(t)
	values := []string{"complaint", "praise", "complaint", "praise", "shipping"}
	labels := Binarize(values, "complaint")
	assert.Equal([]int{1, 0, 1, 0, 0}, labels)

	var ones int
	for _, label := range labels {
		ones += label
	}
	assert.Equal(2, ones)
	assert.Len(labels, len(values))
}

func TestFrame_IntColumn(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		expect func(t *testing.T, labels []int, err error)
	}{
		{
			name:   "integers and floats",
			values: []string{"1", "0", " 1.0 ", "0.0"},
			expect: func(t *testing.T, labels []int, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal([]int{1, 0, 1, 0}, labels)
			},
		},
		{
			name:   "fraction",
			values: []string{"1", "0.5"},
			expect: func(t *testing.T, labels []int, err error) {
				assert := assert.New(t)
				assert.ErrorIs(err, ErrNotBinary)
				assert.EqualError(err, "column helpful row 1: label is not 0 or 1")
			},
		},
		{
			name:   "out of range",
			values: []string{"2"},
			expect: func(t *testing.T, labels []int, err error) {
				assert := assert.New(t)
				assert.ErrorIs(err, ErrNotBinary)
			},
		},
		{
			name:   "negative",
			values: []string{"0", "-1"},
			expect: func(t *testing.T, labels []int, err error) {
				assert := assert.New(t)
				assert.ErrorIs(err, ErrNotBinary)
				assert.Nil(labels)
			},
		},
		{
			name:   "not a number",
			values: []string{"yes"},
			expect: func(t *testing.T, labels []int, err error) {
				assert := assert.New(t)
				assert.Error(err)
				assert.NotErrorIs(err, ErrNotBinary)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frame := &Frame{}
			for _, v := range tc.values {
				frame.rows = append(frame.rows, map[string]string{"helpful": v})
			}

			labels, err := frame.IntColumn("helpful")
			tc.expect(t, labels, err)
		})
	}
}

func TestClassBalance(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]Balance{
		{Class: 0, Count: 2, Ratio: 0.667},
		{Class: 1, Count: 1, Ratio: 0.333},
	}, ClassBalance([]int{0, 1, 0}))
}

func TestNew(t *testing.T) {
	frame, err := Load("./testdata/reviews.csv")
	require.NoError(t, err)

	tests := []struct {
		name   string
		cfg    config.DataConfig
		labels []string
		expect func(t *testing.T, d *Dataset, err error)
	}{
		{
			name:   "single task",
			cfg:    mockDataConfig,
			labels: []string{"review_tag"},
			expect: func(t *testing.T, d *Dataset, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(5, d.Len())
				assert.Equal([]int{1, 0, 1, 0, 0}, d.Target)
				assert.Equal([][]int{{1, 0, 1, 0, 0}}, d.Tasks)
				assert.Equal("size", d.Reason[0])
				assert.Equal("love the color", d.Text[1])
			},
		},
		{
			name:   "multi task",
			cfg:    mockDataConfig,
			labels: []string{"review_tag", "helpful"},
			expect: func(t *testing.T, d *Dataset, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal([][]int{{1, 0, 1, 0, 0}, {1, 0, 1, 0, 1}}, d.Tasks)
			},
		},
		{
			name: "no reason column",
			cfg: func() config.DataConfig {
				cfg := mockDataConfig
				cfg.ReasonColumn = ""
				return cfg
			}(),
			labels: []string{"review_tag"},
			expect: func(t *testing.T, d *Dataset, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal([]string{"", "", "", "", ""}, d.Reason)
			},
		},
		{
			name: "target column not found",
			cfg: func() config.DataConfig {
				cfg := mockDataConfig
				cfg.TargetColumn = "rating"
				return cfg
			}(),
			labels: []string{"rating"},
			expect: func(t *testing.T, d *Dataset, err error) {
				assert := assert.New(t)
				assert.ErrorIs(err, ErrColumnNotFound)
				assert.Nil(d)
			},
		},
		{
			name:   "label column is not numeric",
			cfg:    mockDataConfig,
			labels: []string{"review_tag", "reason"},
			expect: func(t *testing.T, d *Dataset, err error) {
				assert := assert.New(t)
				assert.Error(err)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := New(frame, tc.cfg, tc.labels, logger.Nop())
			tc.expect(t, d, err)
		})
	}
}
