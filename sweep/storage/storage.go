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

//go:generate mockgen -destination mocks/storage_mock.go -source storage.go -package mocks

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"

	"github.com/reviewlab/lstmsweep/pkg/curve"
	"github.com/reviewlab/lstmsweep/pkg/math"
	"github.com/reviewlab/lstmsweep/pkg/types"
)

const (
	// ROCStatisticFile is fold to epoch to ROC record.
	ROCStatisticFile = "ROC_statistic.msgpack"

	// MaxROCStatisticFile is fold to best ROC epoch.
	MaxROCStatisticFile = "max_ROC_statistic.msgpack"

	// PRStatisticFile is fold to epoch to PR record.
	PRStatisticFile = "PR_statistic.msgpack"

	// MaxAPStatisticFile is fold to best PR epoch.
	MaxAPStatisticFile = "max_AP_statistic.msgpack"
)

const (
	// defaultDirPerm is the permission of run directories.
	defaultDirPerm = 0755

	// defaultFilePerm is the permission of blob files.
	defaultFilePerm = 0644

	// metricPlaces is the number of decimals of the metric prefix.
	metricPlaces = 3
)

var (
	// ErrRunDirNotFound is returned when the directory to rename does not exist.
	ErrRunDirNotFound = errors.New("run directory not found")

	// ErrRunDirExists is returned when the rename destination already exists.
	ErrRunDirExists = errors.New("run directory already exists")
)

// Blobs are the four statistics persisted per run.
type Blobs struct {
	ROC    map[int]map[int]curve.ROC `msgpack:"roc" yaml:"roc"`
	MaxROC map[int]curve.Best        `msgpack:"max_roc" yaml:"max_roc"`
	PR     map[int]map[int]curve.PR  `msgpack:"pr" yaml:"pr"`
	MaxAP  map[int]curve.Best        `msgpack:"max_ap" yaml:"max_ap"`
}

// Storage is the interface used for run directories and their blobs.
type Storage interface {
	// RunDir returns the directory of a run before renaming.
	RunDir(family types.Family, suffix string) string

	// SaveBlobs writes the four blobs into the ROC run directory.
	SaveBlobs(suffix string, blobs *Blobs) error

	// Rename prefixes a run directory with the rounded metric and returns the new path.
	Rename(family types.Family, suffix string, metric float64) (string, error)
}

// storage provides storage function.
type storage struct {
	baseDir      string
	vertical     string
	positiveName string
}

// New returns a new Storage instance rooted at <baseDir>/<family>/<vertical>_<positiveName>.
func New(baseDir, vertical, positiveName string) Storage {
	return &storage{
		baseDir:      baseDir,
		vertical:     vertical,
		positiveName: positiveName,
	}
}

// groupDir returns the directory holding every run of a family.
func (s *storage) groupDir(family types.Family) string {
	return filepath.Join(s.baseDir, family.Name(), fmt.Sprintf("%s_%s", s.vertical, s.positiveName))
}

// RunDir returns the directory of a run before renaming.
func (s *storage) RunDir(family types.Family, suffix string) string {
	return filepath.Join(s.groupDir(family), suffix)
}

// SaveBlobs writes the four blobs into the ROC run directory.
func (s *storage) SaveBlobs(suffix string, blobs *Blobs) error {
	dir := s.RunDir(types.FamilyROC, suffix)
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return err
	}

	eg := errgroup.Group{}
	for name, v := range map[string]any{
		ROCStatisticFile:    blobs.ROC,
		MaxROCStatisticFile: blobs.MaxROC,
		PRStatisticFile:     blobs.PR,
		MaxAPStatisticFile:  blobs.MaxAP,
	} {
		name, v := name, v
		eg.Go(func() error {
			b, err := msgpack.Marshal(v)
			if err != nil {
				return fmt.Errorf("encode %s: %w", name, err)
			}

			return os.WriteFile(filepath.Join(dir, name), b, defaultFilePerm)
		})
	}

	return eg.Wait()
}

// Rename prefixes a run directory with the rounded metric. The destination is
// never created when the source is missing.
func (s *storage) Rename(family types.Family, suffix string, metric float64) (string, error) {
	src := s.RunDir(family, suffix)
	dst := filepath.Join(s.groupDir(family), fmt.Sprintf("%s_%s", math.FormatRound(metric, metricPlaces), suffix))

	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrRunDirNotFound, src)
		}

		return "", err
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrRunDirNotFound, src)
	}

	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("%w: %s", ErrRunDirExists, dst)
	}

	if err := os.Rename(src, dst); err != nil {
		return "", err
	}

	return dst, nil
}

// LoadBlobs reads the four blobs of a run directory.
func LoadBlobs(dir string) (*Blobs, error) {
	blobs := &Blobs{}
	for name, v := range map[string]any{
		ROCStatisticFile:    &blobs.ROC,
		MaxROCStatisticFile: &blobs.MaxROC,
		PRStatisticFile:     &blobs.PR,
		MaxAPStatisticFile:  &blobs.MaxAP,
	} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}

		if err := msgpack.Unmarshal(b, v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
	}

	return blobs, nil
}
