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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// DefaultRotateMaxSize is the default maximum size in megabytes of a log file.
	DefaultRotateMaxSize = 1024

	// DefaultRotateMaxAge is the default number of days to retain old log files.
	DefaultRotateMaxAge = 7

	// DefaultRotateMaxBackups is the default number of old log files to keep.
	DefaultRotateMaxBackups = 20
)

const (
	encodeTimeFormat = "2006-01-02 15:04:05.000"

	fileNameTimeFormat = "2006-01-02-15-04-05"
)

// Options configures the sweep logger.
type Options struct {
	// Verbose lowers the level to debug and mirrors the file to stderr.
	Verbose bool

	// Console writes to stderr only.
	Console bool

	// Dir is the log directory.
	Dir string

	// FileName is the log file name inside Dir.
	FileName string

	MaxSize    int
	MaxAge     int
	MaxBackups int
}

// RunFileName names the log file of one sweep after its start time and the
// vertical, positive group and optimizer it trains.
func RunFileName(at time.Time, vertical, group, optimizer string) string {
	return fmt.Sprintf("%s_vertical=%s_group=%s_optimizer=%s.log", at.Format(fileNameTimeFormat), vertical, group, optimizer)
}

// New builds the logger of one sweep. It is created once at the entry point
// and passed down to every component.
func New(opts Options) (*zap.SugaredLogger, error) {
	if opts.Console {
		return createConsoleLogger(opts.Verbose)
	}

	if err := os.MkdirAll(opts.Dir, 0700); err != nil {
		return nil, err
	}

	log, err := CreateLogger(filepath.Join(opts.Dir, opts.FileName), opts)
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}

// CreateLogger creates a rotated file logger writing human readable lines.
func CreateLogger(filePath string, opts Options) (*zap.Logger, error) {
	rotateConfig := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    valueOr(opts.MaxSize, DefaultRotateMaxSize),
		MaxAge:     valueOr(opts.MaxAge, DefaultRotateMaxAge),
		MaxBackups: valueOr(opts.MaxBackups, DefaultRotateMaxBackups),
		LocalTime:  true,
	}
	syncer := zapcore.AddSync(rotateConfig)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(encodeTimeFormat)
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Verbose {
		level.SetLevel(zapcore.DebugLevel)
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), syncer, level)
	if opts.Verbose {
		core = zapcore.NewTee(core, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), level))
	}

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.WarnLevel)), nil
}

func createConsoleLogger(verbose bool) (*zap.SugaredLogger, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	log, err := config.Build(zap.AddCaller(), zap.AddStacktrace(zap.WarnLevel))
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}

func valueOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}

	return v
}
