/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/aqueous/InputParameters"
)

var (
	cfgFile  string
	profiler interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aqueous",
	Short: "Aqueous humour flow in the anterior segment of the eye",
	Long: `Meshes the meridional section of the anterior chamber, solves the
temperature and flow fields with a porous trabecular meshwork and tabulates
the Goldmann pressure for a range of meshwork permeabilities`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		var level log.Level
		if level, err = log.ParseLevel(viper.GetString("log-level")); err != nil {
			return
		}
		log.SetLevel(level)
		if dir := viper.GetString("cpuprofile"); len(dir) != 0 {
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.NoShutdownHook)
		}
		return
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.aqueous.yaml)")
	rootCmd.PersistentFlags().StringP("inputConditionsFile", "I", "", "YAML file for the input parameters, defaults are used for anything missing")
	rootCmd.PersistentFlags().String("log-level", "info", "logging level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile into this directory")
	rootCmd.PersistentFlags().Bool("printParameters", false, "print the input parameters before running")
	for _, name := range []string{"inputConditionsFile", "log-level", "cpuprofile", "printParameters"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			log.WithError(err).Warn("home directory not found, skipping config file")
			return
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".aqueous")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("aqueous")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		log.WithField("config", viper.ConfigFileUsed()).Debug("using config file")
	}
}

// processInput returns the reference parameters overlaid with the input file
func processInput() (ip *InputParameters.InputParameters, err error) {
	ip = InputParameters.NewInputParameters()
	if ICFile := viper.GetString("inputConditionsFile"); len(ICFile) != 0 {
		var data []byte
		if data, err = os.ReadFile(filepath.Clean(ICFile)); err != nil {
			return
		}
		if err = ip.Parse(data); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", ICFile, err)
		}
	}
	if viper.GetBool("printParameters") {
		ip.Print()
	}
	return
}
