// Package calibration relates TM permeability to outflow facility and
// intraocular pressure through the Goldmann equation.
package calibration

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/aqueous/utils"
)

var (
	// ErrZeroFacility is returned when the IOP is asked for with C == 0
	ErrZeroFacility = errors.New("outflow facility is zero")
	// ErrNonFinite marks an input or result that is NaN or infinite
	ErrNonFinite = errors.New("value is not finite")
)

// Constants of the Darcy facility model, SI units
type Constants struct {
	Viscosity float64 // μ, Pa s
	Area      float64 // TM cross section A, m²
	Thickness float64 // TM thickness L, m
}

// DefaultConstants are the human TM values used by the calibration sweep
func DefaultConstants() Constants {
	return Constants{
		Viscosity: 7e-4,
		Area:      2e-4 * 2.5e-3,
		Thickness: 2e-4,
	}
}

// Facility returns C = k A / (μ L) in m³/(s Pa)
func (c Constants) Facility(k float64) float64 {
	return k * c.Area / (c.Viscosity * c.Thickness)
}

// IOP returns the Goldmann pressure EVP + Q/C
func IOP(EVP, Q, C float64) (iop float64, err error) {
	if C == 0 {
		err = fmt.Errorf("IOP with EVP = %g, Q = %g: %w", EVP, Q, ErrZeroFacility)
		return
	}
	iop = EVP + Q/C
	if math.IsNaN(iop) || math.IsInf(iop, 0) {
		err = fmt.Errorf("IOP with EVP = %g, Q = %g, C = %g: %w", EVP, Q, C, ErrNonFinite)
	}
	return
}

type Record struct {
	EVP, K, Facility, IOP float64
}

type Sweep struct {
	Constants
	EVP   []float64
	Q     float64
	Perms []float64
}

// NewSweep returns the reference sweep: EVP 1200, 1500, 1800 Pa, Q = 2.5 µL/min
// and five permeabilities log spaced over [1e-15, 1e-13] m²
func NewSweep() *Sweep {
	return &Sweep{
		Constants: DefaultConstants(),
		EVP:       []float64{1200, 1500, 1800},
		Q:         2.5e-9 / 60.0,
		Perms:     utils.Logspace(-15, -13, 5),
	}
}

// Run evaluates every (EVP, k) pair, EVP major. The first failing row aborts
// the sweep.
func (s *Sweep) Run() (records []Record, err error) {
	records = make([]Record, 0, len(s.EVP)*len(s.Perms))
	for _, evp := range s.EVP {
		for _, k := range s.Perms {
			var (
				C   = s.Facility(k)
				iop float64
			)
			if iop, err = IOP(evp, s.Q, C); err != nil {
				err = fmt.Errorf("sweep row EVP = %g, k = %g: %w", evp, k, err)
				return
			}
			records = append(records, Record{EVP: evp, K: k, Facility: C, IOP: iop})
		}
	}
	return
}

var header = []string{"EVP_Pa", "k_tm_m2", "facility_m3sPa", "IOP_Pa"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func WriteCSV(w io.Writer, records []Record) (err error) {
	cw := csv.NewWriter(w)
	if err = cw.Write(header); err != nil {
		return
	}
	for _, r := range records {
		row := []string{formatFloat(r.EVP), formatFloat(r.K), formatFloat(r.Facility), formatFloat(r.IOP)}
		if err = cw.Write(row); err != nil {
			return
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile overwrites filename with the table
func WriteCSVFile(filename string, records []Record) (err error) {
	var (
		file *os.File
	)
	if file, err = os.Create(filename); err != nil {
		return
	}
	if err = WriteCSV(file, records); err != nil {
		file.Close()
		return
	}
	if err = file.Close(); err != nil {
		return
	}
	log.WithFields(log.Fields{
		"file": filename,
		"rows": len(records),
	}).Info("calibration table written")
	return
}
