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

package summary

import (
	"strconv"
	"strings"

	"github.com/reviewlab/lstmsweep/pkg/math"
	"github.com/reviewlab/lstmsweep/pkg/slices"
)

// NumFields is the number of columns of a summary row.
const NumFields = 20

// fieldSeparator joins list-valued fields.
const fieldSeparator = "  "

// Fields is the header of the summary spreadsheet.
var Fields = []string{
	"vertical",
	"sentence_maxlen",
	"batch_size",
	"embedding_size",
	"embedding_window",
	"embedding_epochs",
	"LSTM_hidden_size",
	"dropout",
	"recurrent_dropout",
	"optimizer",
	"max_epoch",
	"MTL_bool",
	"attention_bool",
	"MTL_class_name",
	"MTL_num_classes",
	"MTL_weights",
	"AUC",
	"average_precision",
	"k_fold_auc_score",
	"k_fold_ap_score",
}

// Row is one configuration's summary.
type Row struct {
	Vertical         string
	SentenceMaxLen   int
	BatchSize        int
	EmbeddingSize    int
	EmbeddingWindow  int
	EmbeddingEpochs  int
	LSTMHiddenSize   int
	Dropout          float64
	RecurrentDropout float64
	Optimizer        string
	MaxEpoch         int
	MultiTask        bool
	Attention        bool
	ClassNames       []string
	LossWeights      []float64
	AUC              float64
	AveragePrecision float64
	KFoldAUC         []float64
	KFoldAP          []float64
}

// Record renders the row in header order.
func (r Row) Record() []string {
	return []string{
		r.Vertical,
		strconv.Itoa(r.SentenceMaxLen),
		strconv.Itoa(r.BatchSize),
		strconv.Itoa(r.EmbeddingSize),
		strconv.Itoa(r.EmbeddingWindow),
		strconv.Itoa(r.EmbeddingEpochs),
		strconv.Itoa(r.LSTMHiddenSize),
		formatFloat(r.Dropout),
		formatFloat(r.RecurrentDropout),
		r.Optimizer,
		strconv.Itoa(r.MaxEpoch),
		strconv.FormatBool(r.MultiTask),
		strconv.FormatBool(r.Attention),
		strings.Join(r.ClassNames, fieldSeparator),
		strconv.Itoa(len(r.ClassNames)),
		joinFloats(r.LossWeights, -1),
		math.FormatRound(r.AUC, 3),
		math.FormatRound(r.AveragePrecision, 3),
		joinFloats(r.KFoldAUC, 4),
		joinFloats(r.KFoldAP, 4),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// joinFloats rounds every value unless places is negative.
func joinFloats(values []float64, places int) string {
	return strings.Join(slices.Map(values, func(v float64) string {
		if places < 0 {
			return formatFloat(v)
		}

		return math.FormatRound(v, places)
	}), fieldSeparator)
}
