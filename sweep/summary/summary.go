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

//go:generate mockgen -destination mocks/summary_mock.go -source summary.go -package mocks

package summary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/gofrs/flock"
	"github.com/xuri/excelize/v2"

	"github.com/reviewlab/lstmsweep/sweep/config"
)

const (
	// lockSuffix is appended to the spreadsheet path to name its lock file.
	lockSuffix = ".lock"

	// defaultDirPerm is the permission of the summary directory.
	defaultDirPerm = 0755

	// defaultFilePerm is the permission of csv summaries.
	defaultFilePerm = 0644
)

// ErrFieldCount is returned when a record does not have NumFields fields.
var ErrFieldCount = errors.New("summary record has wrong number of fields")

// Appender is the interface used for appending summary rows.
type Appender interface {
	// Append writes one record, creating the file with a header if needed.
	Append(record []string) error

	// Path returns the spreadsheet path.
	Path() string
}

// New returns an appender of <dir>/<vertical>.<format>.
func New(format config.SummaryFormat, dir, vertical string) (Appender, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s.%s", vertical, format))
	switch format {
	case config.SummaryFormatXLSX:
		return &xlsxAppender{path: path}, nil
	case config.SummaryFormatCSV:
		return &csvAppender{path: path}, nil
	default:
		return nil, fmt.Errorf("unknown summary format %s", format)
	}
}

func checkRecord(record []string) error {
	if len(record) != NumFields {
		return fmt.Errorf("%w: got %d, expected %d", ErrFieldCount, len(record), NumFields)
	}

	return nil
}

// withLock runs fn holding the advisory lock of path.
func withLock(path string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return err
	}

	lock := flock.New(path + lockSuffix)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer lock.Unlock()

	return fn()
}

type xlsxAppender struct {
	path string
}

func (a *xlsxAppender) Path() string {
	return a.path
}

func (a *xlsxAppender) Append(record []string) error {
	if err := checkRecord(record); err != nil {
		return err
	}

	return withLock(a.path, func() error {
		var (
			f   *excelize.File
			err error
		)

		if _, err = os.Stat(a.path); errors.Is(err, os.ErrNotExist) {
			f = excelize.NewFile()
			if err := f.SetSheetRow(f.GetSheetName(0), "A1", &Fields); err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else if f, err = excelize.OpenFile(a.path); err != nil {
			return err
		}
		defer f.Close()

		sheet := f.GetSheetName(0)
		rows, err := f.GetRows(sheet)
		if err != nil {
			return err
		}

		cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return err
		}

		return f.SaveAs(a.path)
	})
}

type csvAppender struct {
	path string
}

func (a *csvAppender) Path() string {
	return a.path
}

func (a *csvAppender) Append(record []string) error {
	if err := checkRecord(record); err != nil {
		return err
	}

	return withLock(a.path, func() error {
		_, err := os.Stat(a.path)
		created := errors.Is(err, os.ErrNotExist)
		if err != nil && !created {
			return err
		}

		f, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, defaultFilePerm)
		if err != nil {
			return err
		}
		defer f.Close()

		w := gocsv.NewSafeCSVWriter(csv.NewWriter(f))
		if created {
			if err := w.Write(Fields); err != nil {
				return err
			}
		}

		if err := w.Write(record); err != nil {
			return err
		}

		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}

		return f.Close()
	})
}
