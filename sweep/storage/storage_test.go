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

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlab/lstmsweep/pkg/curve"
	"github.com/reviewlab/lstmsweep/pkg/types"
)

const mockSuffix = "sen_len=200_batch=32"

func mockBlobs() *Blobs {
	return &Blobs{
		ROC: map[int]map[int]curve.ROC{
			1: {1: {FPR: []float64{0, 1}, TPR: []float64{0, 1}, AUC: 0.5}, 2: {FPR: []float64{0, 0, 1}, TPR: []float64{0, 1, 1}, AUC: 1}},
			2: {1: {FPR: []float64{0, 1}, TPR: []float64{0, 1}, AUC: 0.5}},
		},
		MaxROC: map[int]curve.Best{1: {Value: 1, Epoch: 2}, 2: {Value: 0.5, Epoch: 1}},
		PR: map[int]map[int]curve.PR{
			1: {1: {Recall: []float64{0, 1}, Precision: []float64{1, 0.5}, AP: 0.5}},
			2: {1: {Recall: []float64{0, 1}, Precision: []float64{1, 0.75}, AP: 0.75}},
		},
		MaxAP: map[int]curve.Best{1: {Value: 0.5, Epoch: 1}, 2: {Value: 0.75, Epoch: 1}},
	}
}

func TestStorage_RunDir(t *testing.T) {
	s := New("results", "Fashion", "tag")
	assert := assert.New(t)
	assert.Equal(filepath.Join("results", "ROC", "Fashion_tag", mockSuffix), s.RunDir(types.FamilyROC, mockSuffix))
	assert.Equal(filepath.Join("results", "PR", "Fashion_tag", mockSuffix), s.RunDir(types.FamilyPR, mockSuffix))
}

func TestStorage_SaveBlobs(t *testing.T) {
	require := require.New(t)
	s := New(t.TempDir(), "Fashion", "tag")
	blobs := mockBlobs()
	require.NoError(s.SaveBlobs(mockSuffix, blobs))

	for _, name := range []string{ROCStatisticFile, MaxROCStatisticFile, PRStatisticFile, MaxAPStatisticFile} {
		require.FileExists(filepath.Join(s.RunDir(types.FamilyROC, mockSuffix), name))
	}

	loaded, err := LoadBlobs(s.RunDir(types.FamilyROC, mockSuffix))
	require.NoError(err)
	require.Equal(blobs, loaded)
}

func TestLoadBlobs(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	_, err := LoadBlobs(dir)
	assert.ErrorIs(err, os.ErrNotExist)

	s := New(dir, "Fashion", "tag")
	assert.NoError(s.SaveBlobs(mockSuffix, mockBlobs()))
	assert.NoError(os.WriteFile(filepath.Join(s.RunDir(types.FamilyROC, mockSuffix), PRStatisticFile), []byte("foo"), 0644))
	_, err = LoadBlobs(s.RunDir(types.FamilyROC, mockSuffix))
	assert.ErrorContains(err, "decode "+PRStatisticFile)
}

func TestStorage_Rename(t *testing.T) {
	tests := []struct {
		name   string
		family types.Family
		metric float64
		mock   func(t *testing.T, s Storage)
		expect func(t *testing.T, s Storage, path string, err error)
	}{
		{
			name:   "rename roc run",
			family: types.FamilyROC,
			metric: 0.81234,
			mock: func(t *testing.T, s Storage) {
				require.NoError(t, s.SaveBlobs(mockSuffix, mockBlobs()))
			},
			expect: func(t *testing.T, s Storage, path string, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal("0.812_"+mockSuffix, filepath.Base(path))
				assert.FileExists(filepath.Join(path, ROCStatisticFile))
				assert.NoDirExists(s.RunDir(types.FamilyROC, mockSuffix))
			},
		},
		{
			name:   "rename pr run",
			family: types.FamilyPR,
			metric: 0.5,
			mock: func(t *testing.T, s Storage) {
				require.NoError(t, os.MkdirAll(s.RunDir(types.FamilyPR, mockSuffix), 0755))
			},
			expect: func(t *testing.T, s Storage, path string, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal("0.5_"+mockSuffix, filepath.Base(path))
				assert.DirExists(path)
			},
		},
		{
			name:   "source missing never creates destination",
			family: types.FamilyPR,
			metric: 0.7,
			mock:   func(t *testing.T, s Storage) {},
			expect: func(t *testing.T, s Storage, path string, err error) {
				assert := assert.New(t)
				assert.ErrorIs(err, ErrRunDirNotFound)
				assert.Empty(path)
				assert.NoDirExists(filepath.Join(filepath.Dir(s.RunDir(types.FamilyPR, mockSuffix)), "0.7_"+mockSuffix))
			},
		},
		{
			name:   "destination exists",
			family: types.FamilyROC,
			metric: 0.7,
			mock: func(t *testing.T, s Storage) {
				require.NoError(t, os.MkdirAll(s.RunDir(types.FamilyROC, mockSuffix), 0755))
				require.NoError(t, os.MkdirAll(s.RunDir(types.FamilyROC, "0.7_"+mockSuffix), 0755))
			},
			expect: func(t *testing.T, s Storage, path string, err error) {
				assert := assert.New(t)
				assert.ErrorIs(err, ErrRunDirExists)
				assert.DirExists(s.RunDir(types.FamilyROC, mockSuffix))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(t.TempDir(), "Fashion", "tag")
			tc.mock(t, s)
			path, err := s.Rename(tc.family, mockSuffix, tc.metric)
			tc.expect(t, s, path, err)
		})
	}
}
