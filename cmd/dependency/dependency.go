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

package dependency

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reviewlab/lstmsweep/pkg/types"
)

// InitCommandAndConfig binds the common flags of cmd and loads the config
// file and environment into config before cmd runs.
func InitCommandAndConfig(cmd *cobra.Command, config any) {
	var cfgFile string

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "f", "", "the path of configuration file with yaml extension name")
	flags.Bool("console", false, "whether logger output records to the stdout")
	flags.Bool("verbose", false, "whether logger use debug level")
	flags.Bool("progress", false, "whether to render a progress bar of trained combinations")

	if err := viper.BindPFlag("console", flags.Lookup("console")); err != nil {
		panic(fmt.Errorf("bind flag console: %w", err))
	}

	if err := viper.BindPFlag("verbose", flags.Lookup("verbose")); err != nil {
		panic(fmt.Errorf("bind flag verbose: %w", err))
	}

	if err := viper.BindPFlag("output.progress", flags.Lookup("progress")); err != nil {
		panic(fmt.Errorf("bind flag progress: %w", err))
	}

	cobra.OnInitialize(func() {
		if err := initConfig(cfgFile, config); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	})

	cmd.AddCommand(VersionCmd)
}

func initConfig(cfgFile string, config any) error {
	viper.SetEnvPrefix(strings.ToUpper(types.LstmsweepName))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", cfgFile, err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	return nil
}
