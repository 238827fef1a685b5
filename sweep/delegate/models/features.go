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

package models

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashFeatures turns texts into hashed bag-of-words vectors of the given width.
// Only the first maxLen tokens of a text are kept and every row is scaled to unit length.
func HashFeatures(texts []string, width, maxLen int) [][]float64 {
	rows := make([][]float64, len(texts))
	for i, text := range texts {
		row := make([]float64, width)
		tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if maxLen > 0 && len(tokens) > maxLen {
			tokens = tokens[:maxLen]
		}

		for _, token := range tokens {
			h := fnv.New32a()
			_, _ = h.Write([]byte(token))
			row[int(h.Sum32()%uint32(width))]++
		}

		var norm float64
		for _, v := range row {
			norm += v * v
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}

		rows[i] = row
	}

	return rows
}
