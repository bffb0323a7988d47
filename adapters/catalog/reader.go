// Package catalog reads open-access catalogue light-curve files into
// transients. CSV and xlsx layouts share one column convention.
package catalog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"transientfit/domain/transient"
	"transientfit/internal/errors"
)

// Catalogue column headers.
const (
	colTimeDays       = "time (days)"
	colTimeMJD        = "time"
	colMagnitude      = "magnitude"
	colMagnitudeErr   = "e_magnitude"
	colFluxDensity    = "flux_density(mjy)"
	colFluxDensityErr = "flux_density_error"
	colFlux           = "flux(erg cm^-2 s^-1)"
	colFluxErr        = "flux_error"
	colBand           = "band"
	colSystem         = "system"
)

// DataReader handles reading catalogue CSV and Excel light-curve files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader for the given file, picking the format from
// the extension.
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" {
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadLightCurve parses the file and builds a transient in the requested
// data mode. A non-empty path overrides the reader's configured file for
// this call only.
func (r *DataReader) ReadLightCurve(path string, mode transient.DataMode) (*transient.Transient, error) {
	reader := r
	if path != "" {
		reader = NewDataReader(path)
	}
	rows, err := reader.readRows()
	if err != nil {
		return nil, err
	}
	return reader.buildTransient(rows, mode)
}

func (r *DataReader) readRows() ([][]string, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.ConfigInvalidf("light curve file not found: %s", r.filePath)
	}
	switch r.fileType {
	case "csv":
		return r.readCSVRows()
	case "xlsx":
		return r.readExcelRows()
	default:
		return nil, errors.ConfigInvalidf("unsupported file type %q", r.fileType)
	}
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", r.filePath)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", r.filePath)
	}
	return rows, nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", r.filePath)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet from %s", r.filePath)
	}
	return rows, nil
}

func (r *DataReader) buildTransient(rows [][]string, mode transient.DataMode) (*transient.Transient, error) {
	if len(rows) < 2 {
		return nil, errors.ConfigInvalidf("%s has no data rows", r.filePath)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(header))] = i
	}

	spec := transient.Spec{
		Name: eventName(r.filePath),
		Mode: mode,
	}
	var parseErr error
	column := func(name string) []float64 {
		idx, ok := cols[name]
		if !ok {
			return nil
		}
		out := make([]float64, 0, len(rows)-1)
		for line, row := range rows[1:] {
			if idx >= len(row) {
				out = append(out, 0)
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
			if err != nil && parseErr == nil {
				parseErr = errors.ConfigInvalidf(
					"bad value %q for column %q on line %d of %s", row[idx], name, line+2, r.filePath)
			}
			out = append(out, v)
		}
		return out
	}

	spec.Time = column(colTimeDays)
	spec.TimeMJD = column(colTimeMJD)

	switch mode {
	case transient.ModePhotometry:
		spec.Magnitude = column(colMagnitude)
		spec.MagnitudeErr = column(colMagnitudeErr)
	case transient.ModeFluxDensity:
		spec.FluxDensity = column(colFluxDensity)
		spec.FluxDensityErr = column(colFluxDensityErr)
	case transient.ModeFlux:
		spec.Flux = column(colFlux)
		spec.FluxErr = column(colFluxErr)
	default:
		return nil, errors.ConfigInvalidf("catalogue files carry no %s data", mode)
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return transient.New(spec)
}

// eventName strips the directory, extension, and the catalogue "_data"
// suffix, so "outdir/SN2011kl_data.csv" names the event SN2011kl.
func eventName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, "_data")
}
