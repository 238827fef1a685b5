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

package logger

import (
	"go.uber.org/zap"
)

// Logger is the logging surface handed to library code. *zap.SugaredLogger satisfies it.
type Logger interface {
	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)
}

// Nop returns a logger discarding everything.
func Nop() Logger {
	return zap.NewNop().Sugar()
}

// With adds key value pairs to every line written through log.
// Loggers not backed by zap are returned unchanged.
func With(log Logger, args ...any) Logger {
	if sugar, ok := log.(*zap.SugaredLogger); ok {
		return sugar.With(args...)
	}

	return log
}

// WithCombination tags lines with the swept hyper-parameters of one combination.
func WithCombination(log Logger, maxLen, batchSize int, dropout float64, hiddenSize int) Logger {
	return With(log, "maxLen", maxLen, "batchSize", batchSize, "dropout", dropout, "hiddenSize", hiddenSize)
}

// WithFold tags lines with a fold number.
func WithFold(log Logger, fold int) Logger {
	return With(log, "fold", fold)
}
