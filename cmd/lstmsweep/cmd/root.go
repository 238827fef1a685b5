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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reviewlab/lstmsweep/cmd/dependency"
	logger "github.com/reviewlab/lstmsweep/internal/dflog"
	"github.com/reviewlab/lstmsweep/sweep"
	"github.com/reviewlab/lstmsweep/sweep/config"
	"github.com/reviewlab/lstmsweep/version"
)

var (
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lstmsweep",
	Short: "hyper-parameter sweep of lstm review classifiers",
	Long: `lstmsweep trains an lstm review classifier over a grid of hyper-parameters with stratified k-fold
cross validation, averages each fold's best epoch, plots ROC and PR overlays and appends one summary row
per configuration to the spreadsheet of the vertical.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Convert config.
		if err := cfg.Convert(); err != nil {
			return err
		}

		// Validate config.
		if err := cfg.Validate(); err != nil {
			return err
		}

		// Initialize logger.
		log, err := logger.New(logger.Options{
			Verbose:    cfg.Verbose,
			Console:    cfg.Console,
			Dir:        cfg.Log.Dir,
			FileName:   logger.RunFileName(time.Now(), cfg.Data.Vertical, cfg.Data.PositiveName, string(cfg.LSTM.Optimizer)),
			MaxSize:    cfg.Log.MaxSize,
			MaxAge:     cfg.Log.MaxAge,
			MaxBackups: cfg.Log.MaxBackups,
		})
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runSweep(ctx, log)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Initialize default sweep config.
	cfg = config.New()

	// Initialize command and config.
	dependency.InitCommandAndConfig(rootCmd, cfg)
	rootCmd.AddCommand(inspectCmd)
}

func runSweep(ctx context.Context, log logger.Logger) error {
	log.Infof("version: %s", version.Info())
	dependency.LogHost(log)

	stop := dependency.InitMonitor(cfg.Verbose, log)
	defer stop()

	log.Infof("sweep %s with %d combinations, split mode %s", cfg.Data.InputFile, cfg.Combinations(), cfg.CrossValidation.Mode)

	s, err := sweep.New(cfg, log)
	if err != nil {
		return err
	}

	report, err := s.Run(ctx)
	if err != nil {
		return err
	}

	log.Infof("sweep finished: %d/%d combinations succeeded", len(report.Succeeded()), report.Total)
	for _, outcome := range report.Succeeded() {
		log.Infof("model number %d: AUC=%.3f, AP=%.3f, %s", outcome.Index, outcome.Result.ROC.Mean, outcome.Result.PR.Mean, outcome.Result.ROCDir)
	}

	// Individual failures are logged, the sweep fails only when nothing trained.
	if report.Total > 0 && len(report.Succeeded()) == 0 {
		return report.Err()
	}

	return nil
}
