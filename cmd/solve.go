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
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/notargets/aqueous/model_problems/Aqueous2D"
)

// SolveCmd represents the solve command
var SolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Convert the mesh to XDMF and solve temperature and flow",
	Long: `Reads the Gmsh mesh, converts it to XDMF, solves the steady temperature
field and then the Stokes flow with Darcy (or Brinkman) drag in the TM and
writes velocity and temperature to the results file`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ip, err := processInput()
		if err != nil {
			return
		}
		sp := &ip.Solver
		if cmd.Flags().Changed("gridFile") {
			sp.MeshFile, _ = cmd.Flags().GetString("gridFile")
		}
		if cmd.Flags().Changed("model") {
			sp.Model, _ = cmd.Flags().GetString("model")
		}
		if cmd.Flags().Changed("results") {
			sp.ResultsFile, _ = cmd.Flags().GetString("results")
		}
		_, err = Aqueous2D.Run(sp, log.StandardLogger())
		return
	},
}

func init() {
	rootCmd.AddCommand(SolveCmd)
	SolveCmd.Flags().StringP("gridFile", "F", "", "Gmsh 2.2 mesh file, overrides Solver.MeshFile")
	SolveCmd.Flags().StringP("model", "m", "", "momentum model in the TM: darcy or brinkman")
	SolveCmd.Flags().StringP("results", "r", "", "XDMF results file, overrides Solver.ResultsFile")
}
