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
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	logger "github.com/reviewlab/lstmsweep/internal/dflog"
	"github.com/reviewlab/lstmsweep/pkg/curve"
	"github.com/reviewlab/lstmsweep/sweep/config"
)

const (
	// TrainFileName is the train side of a fold in the exchange directory.
	TrainFileName = "train.csv"

	// TestFileName is the test side of a fold in the exchange directory.
	TestFileName = "test.csv"

	// RequestFileName describes the training in the exchange directory.
	RequestFileName = "request.json"

	// ResultFileName is written by the external trainer into the exchange directory.
	ResultFileName = "result.json"
)

// external runs a trainer process per fold. The process receives
// --request <path> --result <path> after the configured arguments, reads
// the fold files named by the request and writes the result file.
type external struct {
	config *config.DelegateConfig
	log    logger.Logger
}

// NewExternal returns a delegate running an external trainer process.
func NewExternal(cfg config.DelegateConfig, log logger.Logger) Delegate {
	return &external{config: &cfg, log: log}
}

type embeddingSpec struct {
	Pretrained bool   `json:"pretrained"`
	Type       string `json:"type"`
	Path       string `json:"path"`
	Dimension  int    `json:"dimension"`
	Window     int    `json:"window"`
	Epochs     int    `json:"epochs"`
}

type requestFile struct {
	ID             string        `json:"id"`
	Fold           int           `json:"fold"`
	Vertical       string        `json:"vertical"`
	TrainFile      string        `json:"train_file"`
	TestFile       string        `json:"test_file"`
	Labels         []string      `json:"labels"`
	LossWeights    []float64     `json:"loss_weights"`
	Params         config.Params `json:"params"`
	Attention      bool          `json:"attention"`
	Embedding      embeddingSpec `json:"embedding"`
	TensorBoardDir string        `json:"tensorboard_dir,omitempty"`
}

type resultFile struct {
	ROC     map[string]curve.ROC `mapstructure:"roc"`
	BestROC *curve.Best          `mapstructure:"best_roc"`
	PR      map[string]curve.PR  `mapstructure:"pr"`
	BestPR  *curve.Best          `mapstructure:"best_pr"`
}

// Train writes the fold into a fresh exchange directory, runs the trainer and reads its result.
func (e *external) Train(ctx context.Context, req *Request) (*Result, error) {
	id := uuid.NewString()
	workDir := e.config.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}

	dir := filepath.Join(workDir, fmt.Sprintf("fold-%d-%s", req.Fold, id))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := writeFold(filepath.Join(dir, TrainFileName), req.Labels, req.TrainText, req.TrainReason, req.TrainTargets); err != nil {
		return nil, fmt.Errorf("write train file: %w", err)
	}

	if err := writeFold(filepath.Join(dir, TestFileName), req.Labels, req.TestText, req.TestReason, req.TestTargets); err != nil {
		return nil, fmt.Errorf("write test file: %w", err)
	}

	requestPath := filepath.Join(dir, RequestFileName)
	if err := writeRequest(requestPath, id, dir, req); err != nil {
		return nil, fmt.Errorf("write request file: %w", err)
	}

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	resultPath := filepath.Join(dir, ResultFileName)
	args := append(append([]string{}, e.config.Args...), "--request", requestPath, "--result", resultPath)
	cmd := exec.CommandContext(ctx, e.config.Command, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	stdoutLog := &lineWriter{log: e.log, prefix: fmt.Sprintf("fold %d trainer: ", req.Fold)}
	stderrLog := &lineWriter{log: e.log, prefix: fmt.Sprintf("fold %d trainer stderr: ", req.Fold), tee: &stderr}
	cmd.Stdout = stdoutLog
	cmd.Stderr = stderrLog

	e.log.Infof("fold %d run trainer %s %v in %s", req.Fold, e.config.Command, args, dir)
	err := cmd.Run()
	stdoutLog.Flush()
	stderrLog.Flush()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("trainer of fold %d: %w", req.Fold, ctxErr)
		}

		return nil, fmt.Errorf("trainer of fold %d: %w: %s", req.Fold, err, bytes.TrimSpace(stderr.Bytes()))
	}

	return e.readResult(resultPath, req.Fold)
}

func (e *external) readResult(path string, fold int) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read result file: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("decode result file: %w", err)
	}

	var rf resultFile
	if err := mapstructure.Decode(raw, &rf); err != nil {
		return nil, fmt.Errorf("decode result file: %w", err)
	}

	result := &Result{
		ROC: make(map[int]curve.ROC, len(rf.ROC)),
		PR:  make(map[int]curve.PR, len(rf.PR)),
	}

	for key, roc := range rf.ROC {
		epoch, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("roc epoch %q: %w", key, err)
		}
		result.ROC[epoch] = roc
	}

	for key, pr := range rf.PR {
		epoch, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("pr epoch %q: %w", key, err)
		}
		result.PR[epoch] = pr
	}

	if len(result.ROC) == 0 || len(result.PR) == 0 {
		return nil, ErrEmptyResult
	}

	if rf.BestROC != nil {
		result.BestROC = *rf.BestROC
	} else {
		e.log.Warnf("fold %d trainer reported no best ROC epoch, picking it from the epochs", fold)
		result.BestROC, _ = curve.BestOf(result.ROC)
	}

	if rf.BestPR != nil {
		result.BestPR = *rf.BestPR
	} else {
		e.log.Warnf("fold %d trainer reported no best PR epoch, picking it from the epochs", fold)
		result.BestPR, _ = curve.BestOf(result.PR)
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return result, nil
}

// writeFold writes one side of a fold as csv: text, reason, then one column per task.
func writeFold(path string, labels []string, text, reason []string, targets [][]int) error {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	w := gocsv.NewSafeCSVWriter(csv.NewWriter(file))
	if err := w.Write(append([]string{"text", "reason"}, labels...)); err != nil {
		return err
	}

	for i := range text {
		var r string
		if i < len(reason) {
			r = reason[i]
		}

		record := make([]string, 0, 2+len(targets))
		record = append(record, text[i], r)
		for _, target := range targets {
			record = append(record, strconv.Itoa(target[i]))
		}

		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeRequest(path, id, dir string, req *Request) error {
	content, err := json.MarshalIndent(&requestFile{
		ID:          id,
		Fold:        req.Fold,
		Vertical:    req.Vertical,
		TrainFile:   filepath.Join(dir, TrainFileName),
		TestFile:    filepath.Join(dir, TestFileName),
		Labels:      req.Labels,
		LossWeights: req.LossWeights,
		Params:      req.Params,
		Attention:   req.Attention,
		Embedding: embeddingSpec{
			Pretrained: req.Embedding.Pretrained,
			Type:       string(req.Embedding.Type),
			Path:       req.Embedding.Path,
			Dimension:  req.Embedding.Dimension,
			Window:     req.Embedding.Window,
			Epochs:     req.Embedding.Epochs,
		},
		TensorBoardDir: req.TensorBoardDir,
	}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, content, 0600)
}

// lineWriter logs trainer output line by line, copying it to tee when set.
type lineWriter struct {
	log    logger.Logger
	prefix string
	tee    io.Writer
	buf    []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	if w.tee != nil {
		if _, err := w.tee.Write(p); err != nil {
			return 0, err
		}
	}

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}

		w.log.Infof("%s%s", w.prefix, bytes.TrimRight(w.buf[:i], "\r"))
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

// Flush logs a last line left without newline.
func (w *lineWriter) Flush() {
	if len(w.buf) > 0 {
		w.log.Infof("%s%s", w.prefix, bytes.TrimRight(w.buf, "\r"))
		w.buf = nil
	}
}
