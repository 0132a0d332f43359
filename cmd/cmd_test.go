package cmd

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/aqueous/calibration"
)

func TestProcessInput(t *testing.T) {
	fileInput := []byte(`
Title: Test Case
Mesh:
  MeshSize: 4.e-4
Solver:
  Model: brinkman
  Permeability: 1.e-13
Calibration:
  EVP: [1000., 2000.]
  NumPerms: 3
`)
	ICFile := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(ICFile, fileInput, 0644))
	viper.Set("inputConditionsFile", ICFile)
	defer viper.Set("inputConditionsFile", "")

	ip, err := processInput()
	require.NoError(t, err)
	assert.Equal(t, "Test Case", ip.Title)
	assert.Equal(t, 4.e-4, ip.Mesh.MeshSize)
	// Untouched values keep their defaults
	assert.Equal(t, 6.4e-3, ip.Mesh.Radius)
	assert.Equal(t, "brinkman", ip.Solver.Model)
	assert.Equal(t, 1.e-13, ip.Solver.Permeability)
	assert.Equal(t, 7e-4, ip.Solver.Viscosity)
	assert.Equal(t, []float64{1000, 2000}, ip.Calibration.EVP)
	assert.Equal(t, 3, ip.Calibration.NumPerms)
	ip.Print()

	viper.Set("inputConditionsFile", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = processInput()
	assert.Error(t, err)
}

func TestNewSweepDefaults(t *testing.T) {
	ip, err := processInput()
	require.NoError(t, err)
	s := NewSweep(&ip.Calibration)
	ref := calibration.NewSweep()
	assert.Equal(t, ref.Constants, s.Constants)
	assert.Equal(t, ref.EVP, s.EVP)
	assert.Equal(t, ref.Q, s.Q)
	assert.Equal(t, ref.Perms, s.Perms)
}

func TestCalibrateCommand(t *testing.T) {
	output := filepath.Join(t.TempDir(), "sweep.csv")
	rootCmd.SetArgs([]string{"calibrate", "--output", output, "--log-level", "warn"})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 16)
	assert.Equal(t, []string{"EVP_Pa", "k_tm_m2", "facility_m3sPa", "IOP_Pa"}, rows[0])
	assert.Equal(t, "1200", rows[1][0])
	assert.Equal(t, "1800", rows[15][0])
}
