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
	"github.com/spf13/cobra"

	"github.com/notargets/aqueous/InputParameters"
	"github.com/notargets/aqueous/calibration"
	"github.com/notargets/aqueous/utils"
)

// CalibrateCmd represents the calibrate command
var CalibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Tabulate Goldmann IOP against TM permeability",
	Long: `Evaluates IOP = EVP + Q/C with C = k A/(mu L) for every episcleral
pressure and log spaced permeability and writes the table as CSV`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ip, err := processInput()
		if err != nil {
			return
		}
		cp := &ip.Calibration
		if cmd.Flags().Changed("output") {
			cp.Output, _ = cmd.Flags().GetString("output")
		}
		records, err := NewSweep(cp).Run()
		if err != nil {
			return
		}
		return calibration.WriteCSVFile(cp.Output, records)
	},
}

// NewSweep builds the sweep described by the calibration parameters
func NewSweep(cp *InputParameters.CalibrationParameters) *calibration.Sweep {
	return &calibration.Sweep{
		Constants: calibration.Constants{
			Viscosity: cp.Viscosity,
			Area:      cp.OutflowArea,
			Thickness: cp.TMThickness,
		},
		EVP:   cp.EVP,
		Q:     cp.InflowRate,
		Perms: utils.Logspace(cp.LogPermMin, cp.LogPermMax, cp.NumPerms),
	}
}

func init() {
	rootCmd.AddCommand(CalibrateCmd)
	CalibrateCmd.Flags().StringP("output", "o", "", "CSV file to write, overrides Calibration.Output")
}
