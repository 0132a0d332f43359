package calibration

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacility(t *testing.T) {
	c := DefaultConstants()
	assert.InDelta(t, 2.5e-20/1.4e-7, c.Facility(5e-14), 1.e-25)
	assert.Equal(t, 0., c.Facility(0))
	// Strictly increasing in k
	prev := c.Facility(1.e-16)
	for _, k := range []float64{1.e-15, 3.e-15, 1.e-14, 5.e-14, 1.e-13} {
		f := c.Facility(k)
		assert.Greater(t, f, prev)
		prev = f
	}
}

func TestIOP(t *testing.T) {
	var (
		c = DefaultConstants()
		Q = 2.5e-9 / 60.0
	)
	iop, err := IOP(1500, Q, c.Facility(5e-14))
	require.NoError(t, err)
	assert.InDelta(t, 1733.333, iop, 1.e-3)

	iop, err = IOP(1500, 0, c.Facility(5e-14))
	require.NoError(t, err)
	assert.Equal(t, 1500., iop)

	for _, C := range []float64{1.e-15, 1.e-13, 1.e-10} {
		iop, err = IOP(1200, Q, C)
		require.NoError(t, err)
		assert.Greater(t, iop, 1200.)
	}

	_, err = IOP(1500, Q, c.Facility(0))
	assert.ErrorIs(t, err, ErrZeroFacility)

	_, err = IOP(1500, math.Inf(1), 1.e-13)
	assert.ErrorIs(t, err, ErrNonFinite)
	_, err = IOP(math.NaN(), Q, 1.e-13)
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestSweep(t *testing.T) {
	s := NewSweep()
	records, err := s.Run()
	require.NoError(t, err)
	require.Len(t, records, 15)
	assert.Equal(t, 1200., records[0].EVP)
	assert.Equal(t, 1800., records[14].EVP)
	assert.InDelta(t, 1.e-15, records[0].K, 1.e-27)
	assert.InDelta(t, 1.e-13, records[4].K, 1.e-25)
	for i, r := range records {
		// EVP major ordering
		assert.Equal(t, s.EVP[i/5], r.EVP)
		assert.Equal(t, s.Perms[i%5], r.K)
		// Every row can be recomputed from its own inputs
		assert.Equal(t, s.Facility(r.K), r.Facility)
		iop, err := IOP(r.EVP, s.Q, r.Facility)
		require.NoError(t, err)
		assert.Equal(t, iop, r.IOP)
		assert.Greater(t, r.IOP, r.EVP)
	}

	s.Perms = append(s.Perms, 0)
	_, err = s.Run()
	assert.ErrorIs(t, err, ErrZeroFacility)
}

func TestWriteCSV(t *testing.T) {
	records, err := NewSweep().Run()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 16)
	assert.Equal(t, []string{"EVP_Pa", "k_tm_m2", "facility_m3sPa", "IOP_Pa"}, rows[0])
	assert.Equal(t, "1200", rows[1][0])
	for i, row := range rows[1:] {
		for j, field := range row {
			v, err := strconv.ParseFloat(field, 64)
			require.NoError(t, err)
			want := [4]float64{records[i].EVP, records[i].K, records[i].Facility, records[i].IOP}[j]
			// Shortest round trip formatting is exact
			assert.Equal(t, want, v)
		}
	}

	filename := filepath.Join(t.TempDir(), "goldmann_sweep.csv")
	require.NoError(t, os.WriteFile(filename, []byte("stale content that is longer than nothing\n"), 0644))
	require.NoError(t, WriteCSVFile(filename, records[:1]))
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	assert.Len(t, lines, 2)
}
