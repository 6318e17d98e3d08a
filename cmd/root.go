// Copyright 2026 The RSPCore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd is rspcore's CLI entry point, modeled on gcsfuse's cmd
// package: a cobra root command whose persistent flags are bound through
// cfg.BindFlags, unmarshaled into a package-level Config by viper on
// cobra.OnInitialize.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rspcore/rspcore/cfg"
)

var (
	cfgFile       string
	bindErr       error
	configFileErr error
	unmarshalErr  error

	// Config is the fully resolved configuration after flag parsing,
	// optional --config-file overlay, and viper.Unmarshal.
	Config cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "rspcore",
	Short: "A Remote Serial Protocol debugger-side core",
	Long: `rspcore drives a Remote Serial Protocol session against a debug
stub (gdbserver or equivalent) over a byte-oriented transport: TCP,
a Unix domain socket, or a serial device.`,
	SilenceUsage: true,
}

// Execute runs the root command, exiting the process with status 1 on
// error, matching the teacher's cmd.Execute.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file overlaying the default flags")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(connectCmd)
}

func initConfig() {
	if cfgFile == "" {
		unmarshalErr = viper.Unmarshal(&Config)
		return
	}
	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("error while reading config file: %w", err)
		return
	}
	unmarshalErr = viper.Unmarshal(&Config)
}

func checkedConfig() (cfg.Config, error) {
	if bindErr != nil {
		return cfg.Config{}, bindErr
	}
	if configFileErr != nil {
		return cfg.Config{}, configFileErr
	}
	if unmarshalErr != nil {
		return cfg.Config{}, unmarshalErr
	}
	if err := cfg.ValidateConfig(&Config); err != nil {
		return cfg.Config{}, err
	}
	return Config, nil
}
