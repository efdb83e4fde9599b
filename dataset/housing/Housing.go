// Package housing reads housing tables stored as plain text, with one
// house per line and the target value in the last column.
package housing

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/dataset"
)

// Load reads the housing table at filename. Columns may be separated
// by whitespace or commas. A single header line of column names is
// skipped if present. All columns but the last are features, and the
// last column is the regression target.
func Load(filename string) (*dataset.Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("load: could not open file: %v", err)
	}
	defer file.Close()

	var features []float64
	var targets []float64
	columns := -1

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		fields := split(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		row, err := parseRow(fields)
		if err != nil {
			// A header of column names may only appear first
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("load: line %v: %v", line, err)
		}

		if columns < 0 {
			columns = len(row)
			if columns < 2 {
				return nil, fmt.Errorf("load: line %v: need at least one "+
					"feature column and a target column, got %v columns",
					line, columns)
			}
		} else if len(row) != columns {
			return nil, fmt.Errorf("load: line %v: expected %v columns, "+
				"got %v", line, columns, len(row))
		}

		features = append(features, row[:len(row)-1]...)
		targets = append(targets, row[len(row)-1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("load: could not read file: %v", err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("load: no data rows in %v", filename)
	}

	data := mat.NewDense(len(targets), columns-1, features)
	return dataset.New(data, targets)
}

// split breaks a line into fields on commas or runs of whitespace
func split(line string) []string {
	if strings.Contains(line, ",") {
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		return fields
	}
	return strings.Fields(line)
}

func parseRow(fields []string) ([]float64, error) {
	row := make([]float64, len(fields))
	for i, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("could not parse column %v (%q) as a "+
				"number", i+1, field)
		}
		row[i] = value
	}
	return row, nil
}
