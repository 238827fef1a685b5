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

//go:generate mockgen -destination mocks/experiment_mock.go -source experiment.go -package mocks

package experiment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/looplab/fsm"

	logger "github.com/reviewlab/lstmsweep/internal/dflog"
	"github.com/reviewlab/lstmsweep/pkg/math"
	"github.com/reviewlab/lstmsweep/pkg/slices"
	"github.com/reviewlab/lstmsweep/pkg/types"
	"github.com/reviewlab/lstmsweep/sweep/aggregate"
	"github.com/reviewlab/lstmsweep/sweep/config"
	"github.com/reviewlab/lstmsweep/sweep/dataset"
	"github.com/reviewlab/lstmsweep/sweep/delegate"
	"github.com/reviewlab/lstmsweep/sweep/metrics"
	"github.com/reviewlab/lstmsweep/sweep/plot"
	"github.com/reviewlab/lstmsweep/sweep/selection"
	"github.com/reviewlab/lstmsweep/sweep/split"
	"github.com/reviewlab/lstmsweep/sweep/storage"
	"github.com/reviewlab/lstmsweep/sweep/summary"
)

const (
	// Experiment has been created but did not start training.
	StatePending = "Pending"

	// Experiment is training folds.
	StateTraining = "Training"

	// Experiment is selecting and averaging best epochs.
	StateSelecting = "Selecting"

	// Experiment is writing blobs, renaming run directories and appending the summary row.
	StatePersisting = "Persisting"

	// Experiment finished.
	StateSucceeded = "Succeeded"

	// Experiment failed.
	StateFailed = "Failed"
)

const (
	// Experiment starts training.
	EventTrain = "Train"

	// Every fold is trained.
	EventSelect = "Select"

	// Both families were averaged.
	EventPersist = "Persist"

	// Experiment is persisted.
	EventSucceed = "Succeed"

	// Experiment failed at any step.
	EventFail = "Fail"
)

const (
	// timeLayout formats the run time of the suffix.
	timeLayout = "2006-01-02-15-04-05"

	// testIndicesLogged is the number of test indices logged per fold.
	testIndicesLogged = 10
)

// ErrNoResult is returned when no fold produced a result to average.
var ErrNoResult = errors.New("no fold result to average")

// Result is the outcome of one successful combination.
type Result struct {
	Params config.Params
	Suffix string

	ROC selection.Outcome
	PR  selection.Outcome

	// ROCDir and PRDir are the renamed run directories.
	ROCDir string
	PRDir  string

	// Summarized is false for holdout runs.
	Summarized bool
}

// Runner is the interface used for training one hyper-parameter combination.
type Runner interface {
	// Run trains every fold of params and persists the averaged result.
	Run(ctx context.Context, params config.Params) (*Result, error)
}

type runner struct {
	config   *config.Config
	dataset  *dataset.Dataset
	splitter split.Splitter
	delegate delegate.Delegate
	storage  storage.Storage
	plotter  selection.Plotter
	appender summary.Appender
	at       time.Time
	log      logger.Logger
}

// Option is a functional option for configuring the runner.
type Option func(r *runner)

// WithPlotter sets the plotter, nil disables plots.
func WithPlotter(plotter selection.Plotter) Option {
	return func(r *runner) {
		r.plotter = plotter
	}
}

// WithAppender sets the summary appender, nil disables summary rows.
func WithAppender(appender summary.Appender) Option {
	return func(r *runner) {
		r.appender = appender
	}
}

// WithTime sets the run time of the suffix.
func WithTime(at time.Time) Option {
	return func(r *runner) {
		r.at = at
	}
}

// NewRunner returns a new Runner.
func NewRunner(cfg *config.Config, data *dataset.Dataset, splitter split.Splitter, dg delegate.Delegate, store storage.Storage, log logger.Logger, options ...Option) Runner {
	r := &runner{
		config:   cfg,
		dataset:  data,
		splitter: splitter,
		delegate: dg,
		storage:  store,
		plotter:  plot.New(plot.WithSize(cfg.Output.PlotWidth, cfg.Output.PlotHeight)),
		at:       time.Now(),
		log:      log,
	}

	for _, opt := range options {
		opt(r)
	}

	return r
}

// Run trains every fold of params and persists the averaged result.
func (r *runner) Run(ctx context.Context, params config.Params) (*Result, error) {
	e := r.newExperiment(params)
	result, err := e.run(ctx)
	if err != nil {
		if e.fsm.Can(EventFail) {
			if ferr := e.fsm.Event(EventFail); ferr != nil {
				e.log.Errorf("experiment state transit failed: %s", ferr.Error())
			}
		}

		metrics.CombinationFailureCount.WithLabelValues(r.config.Data.Vertical).Inc()
		return nil, err
	}

	if err := e.fsm.Event(EventSucceed); err != nil {
		return nil, err
	}

	metrics.CombinationCount.WithLabelValues(r.config.Data.Vertical).Inc()
	return result, nil
}

// Suffix identifies a run by every hyper-parameter, the embedding, the
// task flags, the split and the run time.
func Suffix(cfg *config.Config, params config.Params, at time.Time) string {
	return fmt.Sprintf("sen_len=%d_batch=%d_optimizer=%s_embedding=%d_lstm_hidden=%d_pre_trained=%t_pre_trained_type=%s_epoch=%d_dropout=%s_recurrent_dropout=%s_patience=%d_multi=%t_attention=%t_feat=%d_words=%d_emb_dim=%d_emb_win=%d_emb_ep=%d_emb_file=%s_split=%s_seed=%d_time=%s",
		params.MaxLen,
		params.BatchSize,
		params.Optimizer,
		params.EmbeddingSize,
		params.HiddenSize,
		cfg.Embedding.Pretrained,
		cfg.Embedding.Type,
		params.NumEpoch,
		math.FormatRound(params.Dropout, 6),
		math.FormatRound(params.RecurrentDropout, 6),
		params.Patience,
		cfg.MultiTask.Enable,
		cfg.Attention.Enable,
		params.MaxFeatures,
		params.MaxNumWords,
		cfg.Embedding.Dimension,
		cfg.Embedding.Window,
		cfg.Embedding.Epochs,
		embeddingFile(cfg.Embedding.Path),
		splitName(&cfg.CrossValidation),
		cfg.CrossValidation.Seed,
		at.Format(timeLayout),
	)
}

// embeddingFile is the base name of the embedding file without extension.
func embeddingFile(path string) string {
	if path == "" {
		return "none"
	}

	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func splitName(cfg *config.CrossValidationConfig) string {
	if cfg.Mode == config.SplitModeHoldout {
		return fmt.Sprintf("%s%s", cfg.Mode, math.FormatRound(cfg.TestSize, 6))
	}

	return fmt.Sprintf("%s%d", cfg.Mode, cfg.NumFold)
}

type experiment struct {
	*runner
	params config.Params
	suffix string
	fsm    *fsm.FSM
	log    logger.Logger
}

func (r *runner) newExperiment(params config.Params) *experiment {
	e := &experiment{
		runner: r,
		params: params,
		suffix: Suffix(r.config, params, r.at),
		log:    logger.WithCombination(r.log, params.MaxLen, params.BatchSize, params.Dropout, params.HiddenSize),
	}

	transit := func(ev *fsm.Event) {
		e.log.Debugf("experiment state is %s", ev.FSM.Current())
	}

	e.fsm = fsm.NewFSM(
		StatePending,
		fsm.Events{
			{Name: EventTrain, Src: []string{StatePending}, Dst: StateTraining},
			{Name: EventSelect, Src: []string{StateTraining}, Dst: StateSelecting},
			{Name: EventPersist, Src: []string{StateSelecting}, Dst: StatePersisting},
			{Name: EventSucceed, Src: []string{StatePersisting}, Dst: StateSucceeded},
			{Name: EventFail, Src: []string{StatePending, StateTraining, StateSelecting, StatePersisting}, Dst: StateFailed},
		},
		fsm.Callbacks{
			EventTrain:   transit,
			EventSelect:  transit,
			EventPersist: transit,
			EventSucceed: transit,
			EventFail: func(ev *fsm.Event) {
				e.log.Warnf("experiment failed in state %s", ev.Src)
			},
		},
	)

	return e
}

func (e *experiment) run(ctx context.Context) (*Result, error) {
	if err := e.fsm.Event(EventTrain); err != nil {
		return nil, err
	}

	agg, err := e.train(ctx)
	if err != nil {
		return nil, err
	}

	if err := e.fsm.Event(EventSelect); err != nil {
		return nil, err
	}

	rocDir := e.storage.RunDir(types.FamilyROC, e.suffix)
	prDir := e.storage.RunDir(types.FamilyPR, e.suffix)
	for _, dir := range []string{rocDir, prDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	roc, pr, err := e.selectBest(agg, rocDir, prDir)
	if err != nil {
		e.removeRunDirs(rocDir, prDir)
		return nil, err
	}

	if err := e.fsm.Event(EventPersist); err != nil {
		return nil, err
	}

	return e.persist(agg, roc, pr)
}

func (e *experiment) selectBest(agg *aggregate.Aggregate, rocDir, prDir string) (selection.Outcome, selection.Outcome, error) {
	roc, err := selection.Select(agg.ROC, e.plotter, rocDir, e.log)
	if err != nil {
		return selection.Outcome{}, selection.Outcome{}, err
	}

	pr, err := selection.Select(agg.PR, e.plotter, prDir, e.log)
	if err != nil {
		return selection.Outcome{}, selection.Outcome{}, err
	}

	if roc.Empty() || pr.Empty() {
		return selection.Outcome{}, selection.Outcome{}, ErrNoResult
	}

	return roc, pr, nil
}

// removeRunDirs drops run directories that will never be renamed.
func (e *experiment) removeRunDirs(dirs ...string) {
	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil {
			e.log.Warnf("remove run directory %s failed: %s", dir, err.Error())
			continue
		}

		e.log.Infof("removed run directory %s", dir)
	}
}

// train runs the delegate on every fold and collects both families.
func (e *experiment) train(ctx context.Context) (*aggregate.Aggregate, error) {
	folds, err := e.splitter.Split(e.dataset.Target)
	if err != nil {
		return nil, err
	}

	mode := string(e.splitter.Mode())
	agg := aggregate.New()
	for _, fold := range folds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log := logger.WithFold(e.log, fold.Number)
		e.logFold(log, fold)

		start := time.Now()
		result, err := e.delegate.Train(ctx, e.request(fold))
		elapsed := time.Since(start)
		metrics.FoldDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
		metrics.FoldCount.WithLabelValues(mode).Inc()
		if err != nil {
			metrics.FoldFailureCount.WithLabelValues(mode).Inc()
			return nil, fmt.Errorf("fold %d: %w", fold.Number, err)
		}

		if err := result.Validate(); err != nil {
			metrics.FoldFailureCount.WithLabelValues(mode).Inc()
			return nil, fmt.Errorf("fold %d: %w", fold.Number, err)
		}

		if err := agg.Add(fold.Number, result); err != nil {
			return nil, err
		}

		log.Infof("finish fold in %s, best AUC=%.4f at epoch %d, best AP=%.4f at epoch %d", units.HumanDuration(elapsed),
			result.BestROC.Value, result.BestROC.Epoch, result.BestPR.Value, result.BestPR.Epoch)
	}

	agg.Seal()
	e.log.Infof("trained %d folds in %s mode", agg.Len(), mode)
	return agg, nil
}

func (e *experiment) logFold(log logger.Logger, fold split.Fold) {
	if e.splitter.Mode() == config.SplitModeHoldout {
		log.Infof("split to test-train, data size=%d", e.dataset.Len())
	} else {
		log.Infof("split CV: %d", fold.Number)
	}

	head := fold.Test
	if len(head) > testIndicesLogged {
		head = head[:testIndicesLogged]
	}
	log.Infof("test indices: %v", head)

	for _, side := range []struct {
		name    string
		indices []int
	}{
		{"train", fold.Train},
		{"test", fold.Test},
	} {
		ratio := positiveRatio(slices.Pick(e.dataset.Target, side.indices))
		log.Infof("%s size=%d, ratio_good=%.3f, majority=%.3f", side.name, len(side.indices), ratio, 1-ratio)
	}
}

func positiveRatio(labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}

	var positives int
	for _, label := range labels {
		positives += label
	}

	return math.Round(float64(positives)/float64(len(labels)), 3)
}

func (e *experiment) request(fold split.Fold) *delegate.Request {
	var tensorBoardDir string
	if e.config.LSTM.TensorBoard {
		tensorBoardDir = filepath.Join(e.config.Output.TensorBoardDir, e.suffix, fmt.Sprintf("fold_%d", fold.Number))
	}

	return &delegate.Request{
		Fold:           fold.Number,
		Vertical:       e.config.Data.Vertical,
		TrainText:      slices.Pick(e.dataset.Text, fold.Train),
		TestText:       slices.Pick(e.dataset.Text, fold.Test),
		TrainReason:    slices.Pick(e.dataset.Reason, fold.Train),
		TestReason:     slices.Pick(e.dataset.Reason, fold.Test),
		TrainTargets:   split.Targets(e.dataset.Tasks, fold.Train),
		TestTargets:    split.Targets(e.dataset.Tasks, fold.Test),
		Labels:         e.config.MultiTask.Labels,
		LossWeights:    e.config.MultiTask.LossWeights,
		Params:         e.params,
		Attention:      e.config.Attention.Enable,
		Embedding:      e.config.Embedding,
		TensorBoardDir: tensorBoardDir,
	}
}

// persist writes the blobs, renames both run directories and appends the summary row.
func (e *experiment) persist(agg *aggregate.Aggregate, roc, pr selection.Outcome) (*Result, error) {
	if err := e.storage.SaveBlobs(e.suffix, &storage.Blobs{
		ROC:    agg.ROC.Statistic(),
		MaxROC: agg.ROC.BestStatistic(),
		PR:     agg.PR.Statistic(),
		MaxAP:  agg.PR.BestStatistic(),
	}); err != nil {
		return nil, err
	}

	rocDir, err := e.storage.Rename(types.FamilyROC, e.suffix, roc.Mean)
	if err != nil {
		return nil, err
	}
	e.log.Infof("change dir name: %s", rocDir)

	prDir, err := e.storage.Rename(types.FamilyPR, e.suffix, pr.Mean)
	if err != nil {
		return nil, err
	}
	e.log.Infof("change dir name: %s", prDir)

	metrics.AverageScore.WithLabelValues(types.FamilyROC.Name()).Set(roc.Mean)
	metrics.AverageScore.WithLabelValues(types.FamilyPR.Name()).Set(pr.Mean)

	result := &Result{
		Params: e.params,
		Suffix: e.suffix,
		ROC:    roc,
		PR:     pr,
		ROCDir: rocDir,
		PRDir:  prDir,
	}

	if e.appender == nil || e.splitter.Mode() == config.SplitModeHoldout {
		return result, nil
	}

	if err := e.appender.Append(e.row(roc, pr).Record()); err != nil {
		return nil, fmt.Errorf("append summary %s: %w", e.appender.Path(), err)
	}
	metrics.SummaryRowCount.Inc()
	e.log.Infof("insert a new row to summarized file %s", e.appender.Path())

	result.Summarized = true
	return result, nil
}

func (e *experiment) row(roc, pr selection.Outcome) summary.Row {
	return summary.Row{
		Vertical:         e.config.Data.Vertical,
		SentenceMaxLen:   e.params.MaxLen,
		BatchSize:        e.params.BatchSize,
		EmbeddingSize:    e.config.Embedding.Dimension,
		EmbeddingWindow:  e.config.Embedding.Window,
		EmbeddingEpochs:  e.config.Embedding.Epochs,
		LSTMHiddenSize:   e.params.HiddenSize,
		Dropout:          e.params.Dropout,
		RecurrentDropout: e.params.RecurrentDropout,
		Optimizer:        string(e.params.Optimizer),
		MaxEpoch:         e.params.NumEpoch,
		MultiTask:        e.config.MultiTask.Enable,
		Attention:        e.config.Attention.Enable,
		ClassNames:       e.config.MultiTask.Labels,
		LossWeights:      e.config.MultiTask.LossWeights,
		AUC:              roc.Mean,
		AveragePrecision: pr.Mean,
		KFoldAUC:         roc.Values(),
		KFoldAP:          pr.Values(),
	}
}
