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

	"github.com/notargets/aqueous/model_problems/Brinkman2D"
)

// BrinkmanCmd represents the brinkman command
var BrinkmanCmd = &cobra.Command{
	Use:   "brinkman",
	Short: "Tag based Darcy-Brinkman formulation solved with GMRES (incomplete)",
	Long: `Uses the physical groups of the mesh for cell markers and boundary
conditions, a parabolic inlet profile and a fixed episcleral pressure at the
outflow wall. The formulation is a sketch and its results are not validated.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ip, err := processInput()
		if err != nil {
			return
		}
		sp := &ip.Solver
		if cmd.Flags().Changed("gridFile") {
			sp.MeshFile, _ = cmd.Flags().GetString("gridFile")
		}
		if cmd.Flags().Changed("EVP") {
			sp.EVP, _ = cmd.Flags().GetFloat64("EVP")
		}
		if cmd.Flags().Changed("results") {
			sp.SketchResults, _ = cmd.Flags().GetString("results")
		}
		if cmd.Flags().Changed("precond") {
			sp.GMRESPrecond, _ = cmd.Flags().GetString("precond")
		}
		_, err = Brinkman2D.Run(sp, log.StandardLogger())
		return
	},
}

func init() {
	rootCmd.AddCommand(BrinkmanCmd)
	BrinkmanCmd.Flags().StringP("gridFile", "F", "", "Gmsh 2.2 mesh file, overrides Solver.MeshFile")
	BrinkmanCmd.Flags().Float64("EVP", 0, "episcleral venous pressure at the outflow, Pa")
	BrinkmanCmd.Flags().StringP("results", "r", "", "XDMF results file, overrides Solver.SketchResults")
	BrinkmanCmd.Flags().String("precond", "ilu0", "GMRES preconditioner, jacobi or ilu0")
}
