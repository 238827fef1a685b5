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

package config

import (
	"time"

	logger "github.com/reviewlab/lstmsweep/internal/dflog"
)

// Optimizer is the gradient descent optimizer of the classifier.
type Optimizer string

const (
	// OptimizerAdam is the adam optimizer.
	OptimizerAdam Optimizer = "adam"

	// OptimizerRMSProp is the rmsprop optimizer.
	OptimizerRMSProp Optimizer = "rmsprop"
)

// SplitMode selects how the data is split into train and test sets.
type SplitMode string

const (
	// SplitModeCrossValidation is stratified k-fold cross validation.
	SplitModeCrossValidation SplitMode = "cv"

	// SplitModeHoldout is a single stratified train test split.
	SplitModeHoldout SplitMode = "holdout"
)

// EmbeddingType is the format of pre-trained word embeddings.
type EmbeddingType string

const (
	// EmbeddingTypeGlove is a glove text file.
	EmbeddingTypeGlove EmbeddingType = "glove"

	// EmbeddingTypeGensim is a gensim word2vec model.
	EmbeddingTypeGensim EmbeddingType = "gensim"
)

// SummaryFormat is the file format of the per-vertical summary spreadsheet.
type SummaryFormat string

const (
	// SummaryFormatXLSX is an excel workbook.
	SummaryFormatXLSX SummaryFormat = "xlsx"

	// SummaryFormatCSV is a csv file.
	SummaryFormatCSV SummaryFormat = "csv"
)

// DelegateKind selects the model trainer delegate.
type DelegateKind string

const (
	// DelegateKindExternal runs an external trainer process.
	DelegateKindExternal DelegateKind = "external"

	// DelegateKindBaseline trains the in-process baseline classifier.
	DelegateKindBaseline DelegateKind = "baseline"
)

var (
	// DefaultLSTMMaxLen is default swept sentence lengths.
	DefaultLSTMMaxLen = []int{200}

	// DefaultLSTMBatchSize is default swept batch sizes.
	DefaultLSTMBatchSize = []int{32}

	// DefaultLSTMDropout is default swept dropout rates.
	DefaultLSTMDropout = []float64{0.2}

	// DefaultLSTMHiddenSize is default swept hidden layer sizes.
	DefaultLSTMHiddenSize = []int{100}
)

const (
	// DefaultLSTMMaxFeatures is default vocabulary size.
	DefaultLSTMMaxFeatures = 20000

	// DefaultLSTMMaxNumWords is default number of words kept by the tokenizer.
	DefaultLSTMMaxNumWords = 20000

	// DefaultLSTMEmbeddingSize is default size of trained embeddings.
	DefaultLSTMEmbeddingSize = 300

	// DefaultLSTMNumEpoch is default maximum number of epochs.
	DefaultLSTMNumEpoch = 20

	// DefaultLSTMRecurrentDropout is default recurrent dropout rate.
	DefaultLSTMRecurrentDropout = 0.2

	// DefaultLSTMPatience is default number of epochs without improvement before stopping.
	DefaultLSTMPatience = 3

	// DefaultLSTMOptimizer is default optimizer.
	DefaultLSTMOptimizer = OptimizerRMSProp
)

const (
	// DefaultCrossValidationNumFold is default number of folds.
	DefaultCrossValidationNumFold = 5

	// DefaultCrossValidationTestSize is default holdout test fraction.
	DefaultCrossValidationTestSize = 0.2

	// DefaultCrossValidationSeed is default shuffle seed.
	DefaultCrossValidationSeed = 42
)

const (
	// DefaultEmbeddingType is default pre-trained embedding format.
	DefaultEmbeddingType = EmbeddingTypeGlove
)

const (
	// DefaultOutputResultsDir is default results directory.
	DefaultOutputResultsDir = "results"

	// SummaryDirName is the directory holding summary spreadsheets inside the results directory.
	SummaryDirName = "summarized_results"

	// DefaultOutputSummaryFormat is default summary format.
	DefaultOutputSummaryFormat = SummaryFormatXLSX

	// DefaultOutputPlotWidth is default width of curve plots in pixels.
	DefaultOutputPlotWidth = 1024

	// DefaultOutputPlotHeight is default height of curve plots in pixels.
	DefaultOutputPlotHeight = 768
)

const (
	// DefaultDelegateKind is default delegate.
	DefaultDelegateKind = DelegateKindBaseline

	// DefaultDelegateLearningRate is default learning rate of the baseline delegate.
	DefaultDelegateLearningRate = 0.01

	// DefaultDelegateTimeout is default timeout of one external training, zero means no timeout.
	DefaultDelegateTimeout = time.Duration(0)
)

const (
	// DefaultLogDir is default log directory.
	DefaultLogDir = "log"

	// DefaultLogMaxSize is default maximum size in megabytes of log files.
	DefaultLogMaxSize = logger.DefaultRotateMaxSize

	// DefaultLogMaxAge is default number of days to retain old log files.
	DefaultLogMaxAge = logger.DefaultRotateMaxAge

	// DefaultLogMaxBackups is default number of old log files to keep.
	DefaultLogMaxBackups = logger.DefaultRotateMaxBackups
)
