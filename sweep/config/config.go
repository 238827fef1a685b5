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
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/reviewlab/lstmsweep/pkg/slices"
)

type Config struct {
	// Console prints logs to stderr instead of the log file.
	Console bool `yaml:"console" mapstructure:"console"`

	// Verbose enables debug logs.
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`

	// Data configuration.
	Data DataConfig `yaml:"data" mapstructure:"data"`

	// LSTM configuration.
	LSTM LSTMConfig `yaml:"lstm" mapstructure:"lstm"`

	// MultiTask configuration.
	MultiTask MultiTaskConfig `yaml:"multiTask" mapstructure:"multiTask"`

	// Attention configuration.
	Attention AttentionConfig `yaml:"attention" mapstructure:"attention"`

	// CrossValidation configuration.
	CrossValidation CrossValidationConfig `yaml:"crossValidation" mapstructure:"crossValidation"`

	// Embedding configuration.
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`

	// Output configuration.
	Output OutputConfig `yaml:"output" mapstructure:"output"`

	// Delegate configuration.
	Delegate DelegateConfig `yaml:"delegate" mapstructure:"delegate"`

	// Log configuration.
	Log LogConfig `yaml:"log" mapstructure:"log"`
}

type DataConfig struct {
	// InputFile is the csv file of labeled reviews.
	InputFile string `yaml:"inputFile" mapstructure:"inputFile"`

	// Vertical is the product vertical the reviews belong to.
	Vertical string `yaml:"vertical" mapstructure:"vertical"`

	// TextColumn is the column of review text.
	TextColumn string `yaml:"textColumn" mapstructure:"textColumn"`

	// TargetColumn is the column binarized one-vs-rest.
	TargetColumn string `yaml:"targetColumn" mapstructure:"targetColumn"`

	// PositiveValue is the target value mapped to 1.
	PositiveValue string `yaml:"positiveValue" mapstructure:"positiveValue"`

	// PositiveName is the name of the positive group used in result paths.
	PositiveName string `yaml:"positiveName" mapstructure:"positiveName"`

	// ReasonColumn is the column of the labeling reason, passed through to the delegate.
	ReasonColumn string `yaml:"reasonColumn" mapstructure:"reasonColumn"`
}

type LSTMConfig struct {
	// MaxLen is the swept list of sentence lengths.
	MaxLen []int `yaml:"maxLen" mapstructure:"maxLen"`

	// BatchSize is the swept list of batch sizes.
	BatchSize []int `yaml:"batchSize" mapstructure:"batchSize"`

	// Dropout is the swept list of dropout rates.
	Dropout []float64 `yaml:"dropout" mapstructure:"dropout"`

	// HiddenSize is the swept list of LSTM hidden layer sizes.
	HiddenSize []int `yaml:"hiddenSize" mapstructure:"hiddenSize"`

	MaxFeatures      int       `yaml:"maxFeatures" mapstructure:"maxFeatures"`
	MaxNumWords      int       `yaml:"maxNumWords" mapstructure:"maxNumWords"`
	EmbeddingSize    int       `yaml:"embeddingSize" mapstructure:"embeddingSize"`
	NumEpoch         int       `yaml:"numEpoch" mapstructure:"numEpoch"`
	RecurrentDropout float64   `yaml:"recurrentDropout" mapstructure:"recurrentDropout"`
	Optimizer        Optimizer `yaml:"optimizer" mapstructure:"optimizer"`

	// Patience is the number of epochs without improvement before early stopping.
	Patience int `yaml:"patience" mapstructure:"patience"`

	// TensorBoard enables tensorboard callbacks of the external trainer.
	TensorBoard bool `yaml:"tensorBoard" mapstructure:"tensorBoard"`
}

type MultiTaskConfig struct {
	// Enable trains one head per label column.
	Enable bool `yaml:"enable" mapstructure:"enable"`

	// Labels are the label columns, one per task.
	Labels []string `yaml:"labels" mapstructure:"labels"`

	// LossWeights are the per task loss weights.
	LossWeights []float64 `yaml:"lossWeights" mapstructure:"lossWeights"`
}

type AttentionConfig struct {
	// Enable adds an attention layer on top of the LSTM.
	Enable bool `yaml:"enable" mapstructure:"enable"`
}

type CrossValidationConfig struct {
	// Mode is cv or holdout.
	Mode SplitMode `yaml:"mode" mapstructure:"mode"`

	// Enforce rejects any mode but cv.
	Enforce bool `yaml:"enforce" mapstructure:"enforce"`

	// NumFold is the number of folds in cv mode.
	NumFold int `yaml:"numFold" mapstructure:"numFold"`

	// TestSize is the test fraction in holdout mode.
	TestSize float64 `yaml:"testSize" mapstructure:"testSize"`

	// Seed seeds the per-class shuffle.
	Seed int64 `yaml:"seed" mapstructure:"seed"`
}

type EmbeddingConfig struct {
	// Pretrained loads word embeddings from Path.
	Pretrained bool `yaml:"pretrained" mapstructure:"pretrained"`

	// Type is glove or gensim.
	Type EmbeddingType `yaml:"type" mapstructure:"type"`

	// Path is the pre-trained embedding file.
	Path string `yaml:"path" mapstructure:"path"`

	// Dimension of the pre-trained vectors.
	Dimension int `yaml:"dimension" mapstructure:"dimension"`

	// Window the pre-trained vectors were trained with.
	Window int `yaml:"window" mapstructure:"window"`

	// Epochs the pre-trained vectors were trained for.
	Epochs int `yaml:"epochs" mapstructure:"epochs"`
}

type OutputConfig struct {
	// ResultsDir is the root of ROC and PR run directories.
	ResultsDir string `yaml:"resultsDir" mapstructure:"resultsDir"`

	// SummaryDir holds one summary spreadsheet per vertical.
	SummaryDir string `yaml:"summaryDir" mapstructure:"summaryDir"`

	// SummaryFormat is xlsx or csv.
	SummaryFormat SummaryFormat `yaml:"summaryFormat" mapstructure:"summaryFormat"`

	// TensorBoardDir is handed to the delegate when tensorboard is enabled.
	TensorBoardDir string `yaml:"tensorBoardDir" mapstructure:"tensorBoardDir"`

	// MetricsFile is the prometheus textfile written after the sweep, empty disables it.
	MetricsFile string `yaml:"metricsFile" mapstructure:"metricsFile"`

	// Progress shows a progress bar on stderr.
	Progress bool `yaml:"progress" mapstructure:"progress"`

	// PlotWidth and PlotHeight size the curve plots in pixels.
	PlotWidth  int `yaml:"plotWidth" mapstructure:"plotWidth"`
	PlotHeight int `yaml:"plotHeight" mapstructure:"plotHeight"`
}

type DelegateConfig struct {
	// Kind is external or baseline.
	Kind DelegateKind `yaml:"kind" mapstructure:"kind"`

	// Command is the external trainer executable.
	Command string `yaml:"command" mapstructure:"command"`

	// Args are passed to Command before the request and result flags.
	Args []string `yaml:"args" mapstructure:"args"`

	// WorkDir holds per-invocation exchange files, defaults to the system temp dir.
	WorkDir string `yaml:"workDir" mapstructure:"workDir"`

	// Timeout bounds one external training, zero means no timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// LearningRate of the baseline delegate.
	LearningRate float64 `yaml:"learningRate" mapstructure:"learningRate"`
}

type LogConfig struct {
	// Dir is the log directory.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// Maximum size in megabytes of log files before rotation (default: 1024)
	MaxSize int `yaml:"maxSize" mapstructure:"maxSize"`

	// Maximum number of days to retain old log files (default: 7)
	MaxAge int `yaml:"maxAge" mapstructure:"maxAge"`

	// Maximum number of old log files to keep (default: 20)
	MaxBackups int `yaml:"maxBackups" mapstructure:"maxBackups"`
}

// New default configuration.
func New() *Config {
	return &Config{
		LSTM: LSTMConfig{
			MaxLen:           DefaultLSTMMaxLen,
			BatchSize:        DefaultLSTMBatchSize,
			Dropout:          DefaultLSTMDropout,
			HiddenSize:       DefaultLSTMHiddenSize,
			MaxFeatures:      DefaultLSTMMaxFeatures,
			MaxNumWords:      DefaultLSTMMaxNumWords,
			EmbeddingSize:    DefaultLSTMEmbeddingSize,
			NumEpoch:         DefaultLSTMNumEpoch,
			RecurrentDropout: DefaultLSTMRecurrentDropout,
			Optimizer:        DefaultLSTMOptimizer,
			Patience:         DefaultLSTMPatience,
		},
		CrossValidation: CrossValidationConfig{
			Mode:     SplitModeCrossValidation,
			Enforce:  true,
			NumFold:  DefaultCrossValidationNumFold,
			TestSize: DefaultCrossValidationTestSize,
			Seed:     DefaultCrossValidationSeed,
		},
		Embedding: EmbeddingConfig{
			Type: DefaultEmbeddingType,
		},
		Output: OutputConfig{
			ResultsDir:    DefaultOutputResultsDir,
			SummaryFormat: DefaultOutputSummaryFormat,
			PlotWidth:     DefaultOutputPlotWidth,
			PlotHeight:    DefaultOutputPlotHeight,
		},
		Delegate: DelegateConfig{
			Kind:         DefaultDelegateKind,
			LearningRate: DefaultDelegateLearningRate,
			Timeout:      DefaultDelegateTimeout,
		},
		Log: LogConfig{
			Dir:        DefaultLogDir,
			MaxSize:    DefaultLogMaxSize,
			MaxAge:     DefaultLogMaxAge,
			MaxBackups: DefaultLogMaxBackups,
		},
	}
}

// Convert fills the parameters derived from others.
func (cfg *Config) Convert() error {
	if cfg.Data.PositiveName == "" {
		cfg.Data.PositiveName = cfg.Data.PositiveValue
	}

	// A single task trains the target column alone.
	if !cfg.MultiTask.Enable && len(cfg.MultiTask.Labels) == 0 {
		cfg.MultiTask.Labels = []string{cfg.Data.TargetColumn}
		cfg.MultiTask.LossWeights = []float64{1}
	}

	if cfg.Output.SummaryDir == "" {
		cfg.Output.SummaryDir = filepath.Join(cfg.Output.ResultsDir, SummaryDirName)
	}

	return nil
}

// Validate config parameters.
func (cfg *Config) Validate() error {
	if cfg.Data.InputFile == "" {
		return errors.New("data requires parameter inputFile")
	}

	if cfg.Data.Vertical == "" {
		return errors.New("data requires parameter vertical")
	}

	if cfg.Data.TextColumn == "" {
		return errors.New("data requires parameter textColumn")
	}

	if cfg.Data.TargetColumn == "" {
		return errors.New("data requires parameter targetColumn")
	}

	if cfg.Data.PositiveValue == "" {
		return errors.New("data requires parameter positiveValue")
	}

	if len(cfg.LSTM.MaxLen) == 0 || !positive(cfg.LSTM.MaxLen) {
		return errors.New("lstm requires parameter maxLen")
	}

	if len(cfg.LSTM.BatchSize) == 0 || !positive(cfg.LSTM.BatchSize) {
		return errors.New("lstm requires parameter batchSize")
	}

	if len(cfg.LSTM.Dropout) == 0 {
		return errors.New("lstm requires parameter dropout")
	}

	for _, dropout := range cfg.LSTM.Dropout {
		if !isRate(dropout) {
			return errors.New("lstm requires parameter dropout in [0, 1)")
		}
	}

	if len(cfg.LSTM.HiddenSize) == 0 || !positive(cfg.LSTM.HiddenSize) {
		return errors.New("lstm requires parameter hiddenSize")
	}

	if v, ok := slices.FindDuplicate(cfg.LSTM.MaxLen); ok {
		return fmt.Errorf("lstm has duplicate maxLen %d", v)
	}

	if v, ok := slices.FindDuplicate(cfg.LSTM.BatchSize); ok {
		return fmt.Errorf("lstm has duplicate batchSize %d", v)
	}

	if v, ok := slices.FindDuplicate(cfg.LSTM.Dropout); ok {
		return fmt.Errorf("lstm has duplicate dropout %v", v)
	}

	if v, ok := slices.FindDuplicate(cfg.LSTM.HiddenSize); ok {
		return fmt.Errorf("lstm has duplicate hiddenSize %d", v)
	}

	if cfg.LSTM.EmbeddingSize <= 0 {
		return errors.New("lstm requires parameter embeddingSize")
	}

	if cfg.LSTM.NumEpoch <= 0 {
		return errors.New("lstm requires parameter numEpoch")
	}

	if !isRate(cfg.LSTM.RecurrentDropout) {
		return errors.New("lstm requires parameter recurrentDropout in [0, 1)")
	}

	if cfg.LSTM.Patience < 0 {
		return errors.New("lstm requires parameter patience")
	}

	if !slices.Contains([]Optimizer{OptimizerAdam, OptimizerRMSProp}, cfg.LSTM.Optimizer) {
		return fmt.Errorf("lstm requires parameter optimizer in [%s %s]", OptimizerAdam, OptimizerRMSProp)
	}

	if cfg.MultiTask.Enable {
		if len(cfg.MultiTask.Labels) == 0 {
			return errors.New("multiTask requires parameter labels")
		}

		if label, ok := slices.FindDuplicate(cfg.MultiTask.Labels); ok {
			return fmt.Errorf("multiTask has duplicate label %s", label)
		}
	}

	if len(cfg.MultiTask.Labels) != len(cfg.MultiTask.LossWeights) {
		return errors.New("multiTask requires the same number of labels and lossWeights")
	}

	if cfg.Attention.Enable && cfg.MultiTask.Enable {
		return errors.New("attention is only supported for single task classification")
	}

	switch cfg.CrossValidation.Mode {
	case SplitModeCrossValidation:
		if cfg.CrossValidation.NumFold < 2 {
			return errors.New("crossValidation requires parameter numFold")
		}
	case SplitModeHoldout:
		if cfg.CrossValidation.Enforce {
			return errors.New("crossValidation requires mode cv")
		}

		if cfg.CrossValidation.TestSize <= 0 || cfg.CrossValidation.TestSize >= 1 {
			return errors.New("crossValidation requires parameter testSize in (0, 1)")
		}
	default:
		return fmt.Errorf("crossValidation requires parameter mode in [%s %s]", SplitModeCrossValidation, SplitModeHoldout)
	}

	if !slices.Contains([]EmbeddingType{EmbeddingTypeGlove, EmbeddingTypeGensim}, cfg.Embedding.Type) {
		return errors.New("embedding requires parameter type")
	}

	if cfg.Embedding.Pretrained {
		if cfg.Embedding.Path == "" {
			return errors.New("embedding requires parameter path")
		}

		if cfg.Embedding.Dimension <= 0 {
			return errors.New("embedding requires parameter dimension")
		}
	}

	if cfg.Output.ResultsDir == "" {
		return errors.New("output requires parameter resultsDir")
	}

	if cfg.Output.SummaryDir == "" {
		return errors.New("output requires parameter summaryDir")
	}

	if !slices.Contains([]SummaryFormat{SummaryFormatXLSX, SummaryFormatCSV}, cfg.Output.SummaryFormat) {
		return errors.New("output requires parameter summaryFormat")
	}

	if cfg.Output.PlotWidth <= 0 || cfg.Output.PlotHeight <= 0 {
		return errors.New("output requires parameter plotWidth and plotHeight")
	}

	if cfg.LSTM.TensorBoard && cfg.Output.TensorBoardDir == "" {
		return errors.New("output requires parameter tensorBoardDir")
	}

	switch cfg.Delegate.Kind {
	case DelegateKindExternal:
		if cfg.Delegate.Command == "" {
			return errors.New("delegate requires parameter command")
		}
	case DelegateKindBaseline:
		if cfg.Delegate.LearningRate <= 0 {
			return errors.New("delegate requires parameter learningRate")
		}
	default:
		return fmt.Errorf("delegate requires parameter kind in [%s %s]", DelegateKindExternal, DelegateKindBaseline)
	}

	if cfg.Delegate.Timeout < 0 {
		return errors.New("delegate requires parameter timeout")
	}

	if !cfg.Console && cfg.Log.Dir == "" {
		return errors.New("log requires parameter dir")
	}

	return nil
}

// Combinations returns the size of the hyper-parameter grid.
func (cfg *Config) Combinations() int {
	return len(cfg.LSTM.MaxLen) * len(cfg.LSTM.BatchSize) * len(cfg.LSTM.Dropout) * len(cfg.LSTM.HiddenSize)
}

// Params is one point of the hyper-parameter grid together with the shared scalars.
type Params struct {
	MaxLen     int     `json:"maxLen" yaml:"maxLen"`
	BatchSize  int     `json:"batchSize" yaml:"batchSize"`
	Dropout    float64 `json:"dropout" yaml:"dropout"`
	HiddenSize int     `json:"hiddenSize" yaml:"hiddenSize"`

	MaxFeatures      int       `json:"maxFeatures" yaml:"maxFeatures"`
	MaxNumWords      int       `json:"maxNumWords" yaml:"maxNumWords"`
	EmbeddingSize    int       `json:"embeddingSize" yaml:"embeddingSize"`
	NumEpoch         int       `json:"numEpoch" yaml:"numEpoch"`
	RecurrentDropout float64   `json:"recurrentDropout" yaml:"recurrentDropout"`
	Optimizer        Optimizer `json:"optimizer" yaml:"optimizer"`
	Patience         int       `json:"patience" yaml:"patience"`
}

// Params binds one grid point to the shared lstm scalars.
func (cfg *LSTMConfig) Params(maxLen, batchSize int, dropout float64, hiddenSize int) Params {
	return Params{
		MaxLen:           maxLen,
		BatchSize:        batchSize,
		Dropout:          dropout,
		HiddenSize:       hiddenSize,
		MaxFeatures:      cfg.MaxFeatures,
		MaxNumWords:      cfg.MaxNumWords,
		EmbeddingSize:    cfg.EmbeddingSize,
		NumEpoch:         cfg.NumEpoch,
		RecurrentDropout: cfg.RecurrentDropout,
		Optimizer:        cfg.Optimizer,
		Patience:         cfg.Patience,
	}
}

func positive(values []int) bool {
	for _, v := range values {
		if v <= 0 {
			return false
		}
	}

	return true
}

func isRate(v float64) bool {
	return v >= 0 && v < 1
}
