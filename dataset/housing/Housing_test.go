package housing

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeTable(t *testing.T, contents string) string {
	t.Helper()

	filename := filepath.Join(t.TempDir(), "housing.data")
	if err := os.WriteFile(filename, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return filename
}

// TestLoadWhitespace ensures whitespace-separated tables load with the
// last column taken as the target.
func TestLoadWhitespace(t *testing.T) {
	filename := writeTable(t, "0.1  2.0  24.0\n0.2  3.0  21.6\n")

	data, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}

	rows, cols := data.FeatureMatrix().Dims()
	if rows != 2 || cols != 2 {
		t.Fatalf("expected a 2x2 feature matrix, got %vx%v", rows, cols)
	}
	if got := data.FeatureMatrix().At(1, 1); got != 3.0 {
		t.Errorf("expected feature (1, 1) to be 3.0, got %v", got)
	}

	targets := data.Labels()
	if targets[0] != 24.0 || targets[1] != 21.6 {
		t.Errorf("expected targets [24.0 21.6], got %v", targets)
	}
}

// TestLoadComma ensures comma-separated tables load and a header line
// of column names is skipped.
func TestLoadComma(t *testing.T) {
	filename := writeTable(t, "crim, rooms, medv\n0.1, 6.5, 24.0\n")

	data, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}

	if data.Len() != 1 {
		t.Fatalf("expected 1 example, got %v", data.Len())
	}
	if got := data.FeatureMatrix().At(0, 1); math.Abs(got-6.5) > 1e-12 {
		t.Errorf("expected feature (0, 1) to be 6.5, got %v", got)
	}
	if got := data.Labels()[0]; got != 24.0 {
		t.Errorf("expected target 24.0, got %v", got)
	}
}

// TestLoadBlankLines ensures blank lines are ignored.
func TestLoadBlankLines(t *testing.T) {
	filename := writeTable(t, "\n0.1 24.0\n\n0.2 21.6\n\n")

	data, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}
	if data.Len() != 2 {
		t.Errorf("expected 2 examples, got %v", data.Len())
	}
}

// TestLoadRaggedRows ensures rows with a different number of columns
// are rejected.
func TestLoadRaggedRows(t *testing.T) {
	filename := writeTable(t, "0.1 2.0 24.0\n0.2 21.6\n")

	if _, err := Load(filename); err == nil {
		t.Error("expected an error for rows of differing width")
	}
}

// TestLoadNonNumeric ensures non-numeric values outside the header are
// rejected.
func TestLoadNonNumeric(t *testing.T) {
	filename := writeTable(t, "0.1 2.0 24.0\n0.2 oops 21.6\n")

	if _, err := Load(filename); err == nil {
		t.Error("expected an error for non-numeric data")
	}
}

// TestLoadEmpty ensures files without data rows are rejected.
func TestLoadEmpty(t *testing.T) {
	filename := writeTable(t, "crim, rooms, medv\n")

	if _, err := Load(filename); err == nil {
		t.Error("expected an error for a file with no data rows")
	}
}

// TestLoadMissingFile ensures a missing file is reported.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.data")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

// TestLoadSingleColumn ensures a table with no feature columns is
// rejected.
func TestLoadSingleColumn(t *testing.T) {
	filename := writeTable(t, "24.0\n21.6\n")

	if _, err := Load(filename); err == nil {
		t.Error("expected an error for a table with only a target column")
	}
}
