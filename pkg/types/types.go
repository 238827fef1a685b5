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

package types

const (
	// LstmsweepName is name of the sweep binary.
	LstmsweepName = "lstmsweep"

	// MetricsNamespace is namespace of metrics.
	MetricsNamespace = "lstmsweep"

	// SweepMetricsName is name of the sweep metrics subsystem.
	SweepMetricsName = "sweep"
)

// Family is the metric family of a curve, ROC and PR are never mixed.
type Family int

const (
	// FamilyROC is the receiver operating characteristic family.
	FamilyROC Family = iota

	// FamilyPR is the precision recall family.
	FamilyPR
)

const (
	// FamilyROCName is the name of ROC family.
	FamilyROCName = "ROC"

	// FamilyPRName is the name of PR family.
	FamilyPRName = "PR"
)

// Name returns the name of family, it is also the name of its results directory.
func (f Family) Name() string {
	if f == FamilyPR {
		return FamilyPRName
	}

	return FamilyROCName
}

// ScoreName returns the name of the scalar summarizing a curve of the family.
func (f Family) ScoreName() string {
	if f == FamilyPR {
		return "AP"
	}

	return "AUC"
}

// PlotDir returns the directory name of the family's cross validation plots.
func (f Family) PlotDir() string {
	if f == FamilyPR {
		return "ap_cv"
	}

	return "auc_cv"
}
