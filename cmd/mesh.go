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

	"github.com/notargets/aqueous/geometry2D"
	"github.com/notargets/aqueous/readfiles"
)

// MeshCmd represents the mesh command
var MeshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Generate the anterior segment mesh in Gmsh 2.2 format",
	Long: `Builds the chamber and trabecular meshwork surfaces, meshes them with
Triangle and writes physical groups 1 (chamber), 2 (TM), 11 (inlet) and 12 (walls)`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ip, err := processInput()
		if err != nil {
			return
		}
		mp := &ip.Mesh
		if cmd.Flags().Changed("output") {
			mp.Output, _ = cmd.Flags().GetString("output")
		}
		if cmd.Flags().Changed("meshSize") {
			mp.MeshSize, _ = cmd.Flags().GetFloat64("meshSize")
		}
		if cmd.Flags().Changed("fineMeshSize") {
			mp.FineMeshSize, _ = cmd.Flags().GetFloat64("fineMeshSize")
		}
		msh, err := geometry2D.BuildAnteriorSegment(mp, log.StandardLogger())
		if err != nil {
			return
		}
		if err = readfiles.WriteGmsh22(mp.Output, msh); err != nil {
			return
		}
		log.WithField("file", mp.Output).Info("mesh written")
		return
	},
}

func init() {
	rootCmd.AddCommand(MeshCmd)
	MeshCmd.Flags().StringP("output", "o", "", "mesh file to write, overrides Mesh.Output")
	MeshCmd.Flags().Float64("meshSize", 0, "characteristic length of the chamber")
	MeshCmd.Flags().Float64("fineMeshSize", 0, "characteristic length of the TM, inlet and outflow wall")
}
