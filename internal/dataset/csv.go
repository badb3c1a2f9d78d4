// Package dataset loads recording tensors from long-format CSV files:
// one sample per line as row,col,time,trial,value with a header line.
// Extents are inferred from the largest index on each axis; cells absent
// from the file stay NaN and surface through bad-channel detection.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"neurowave/domain/field"
	apperrors "neurowave/internal/errors"
)

type sample struct {
	row, col, t, trial int
	value              float64
}

// LoadCSV reads a long-format tensor file from disk.
func LoadCSV(path string) (*field.ScalarField, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to open tensor file %s", path)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses long-format tensor data from a reader.
func ReadCSV(r io.Reader) (*field.ScalarField, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 5

	var samples []sample
	maxRow, maxCol, maxT, maxTrial := -1, -1, -1, -1
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrapf(err, "malformed tensor file at line %d", line+1)
		}
		line++
		if line == 1 && record[0] == "row" {
			continue // header
		}

		s, err := parseSample(record)
		if err != nil {
			return nil, apperrors.Wrapf(err, "malformed tensor file at line %d", line)
		}
		samples = append(samples, s)
		maxRow = max(maxRow, s.row)
		maxCol = max(maxCol, s.col)
		maxT = max(maxT, s.t)
		maxTrial = max(maxTrial, s.trial)
	}

	if len(samples) == 0 {
		return nil, apperrors.InvalidInput("tensor file contains no samples")
	}

	rec, err := field.NewScalarField(maxRow+1, maxCol+1, maxT+1, maxTrial+1)
	if err != nil {
		return nil, apperrors.InvalidShape(err)
	}
	// Absent cells read as missing, not silently zero.
	for tr := 0; tr < rec.Trials; tr++ {
		for t := 0; t < rec.Timesteps; t++ {
			for r := 0; r < rec.Rows; r++ {
				for c := 0; c < rec.Cols; c++ {
					rec.Set(r, c, t, tr, math.NaN())
				}
			}
		}
	}
	for _, s := range samples {
		rec.Set(s.row, s.col, s.t, s.trial, s.value)
	}
	return rec, nil
}

func parseSample(record []string) (sample, error) {
	var s sample
	var err error
	if s.row, err = strconv.Atoi(record[0]); err != nil || s.row < 0 {
		return s, fmt.Errorf("bad row index %q", record[0])
	}
	if s.col, err = strconv.Atoi(record[1]); err != nil || s.col < 0 {
		return s, fmt.Errorf("bad column index %q", record[1])
	}
	if s.t, err = strconv.Atoi(record[2]); err != nil || s.t < 0 {
		return s, fmt.Errorf("bad time index %q", record[2])
	}
	if s.trial, err = strconv.Atoi(record[3]); err != nil || s.trial < 0 {
		return s, fmt.Errorf("bad trial index %q", record[3])
	}
	if s.value, err = strconv.ParseFloat(record[4], 64); err != nil {
		return s, fmt.Errorf("bad sample value %q", record[4])
	}
	return s, nil
}
