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

package cmd

import (
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reviewlab/lstmsweep/pkg/curve"
	"github.com/reviewlab/lstmsweep/sweep/storage"
)

var inspectAll bool

var inspectCmd = &cobra.Command{
	Use:               "inspect <run-dir>",
	Short:             "print the persisted statistics of a run",
	Long:              `decode the ROC and PR statistics persisted in a run directory and print every fold's best epoch as yaml.`,
	Args:              cobra.ExactArgs(1),
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		blobs, err := storage.LoadBlobs(args[0])
		if err != nil {
			return err
		}

		var out any = summarize(blobs)
		if inspectAll {
			out = blobs
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		if err := enc.Encode(out); err != nil {
			return err
		}

		return enc.Close()
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectAll, "all", false, "print every epoch's curve instead of the best epochs")
}

type foldSummary struct {
	Fold    int        `yaml:"fold"`
	BestROC curve.Best `yaml:"bestROC"`
	BestPR  curve.Best `yaml:"bestPR"`
	Epochs  int        `yaml:"epochs"`
}

// summarize lists the best epochs of every fold in fold order.
func summarize(blobs *storage.Blobs) []foldSummary {
	folds := make([]int, 0, len(blobs.MaxROC))
	for fold := range blobs.MaxROC {
		folds = append(folds, fold)
	}
	sort.Ints(folds)

	summaries := make([]foldSummary, 0, len(folds))
	for _, fold := range folds {
		summaries = append(summaries, foldSummary{
			Fold:    fold,
			BestROC: blobs.MaxROC[fold],
			BestPR:  blobs.MaxAP[fold],
			Epochs:  len(blobs.ROC[fold]),
		})
	}

	return summaries
}

