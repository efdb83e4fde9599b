package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	ts "github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/timestep"
)

func step(number int, position, angle float64) ts.TimeStep {
	obs := mat.NewVecDense(4, []float64{position, 0.0, angle, 0.0})
	return ts.New(ts.Mid, 1.0, 1.0, obs, number)
}

// TestTrackWritesFrames ensures one numbered PNG is written per
// tracked timestep.
func TestTrackWritesFrames(t *testing.T) {
	dir := t.TempDir()
	renderer := NewCartpole(dir)

	renderer.Track(step(0, 0.0, 0.0))
	renderer.Track(step(1, 0.5, 0.1))
	renderer.Track(step(2, -0.5, -0.1))

	if err := renderer.Save(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"frame-0000.png", "frame-0001.png",
		"frame-0002.png"} {
		file, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("expected frame %v to exist: %v", name, err)
		}

		image, err := png.Decode(file)
		file.Close()
		if err != nil {
			t.Fatalf("expected frame %v to be a PNG: %v", name, err)
		}

		bounds := image.Bounds()
		if bounds.Dx() != frameWidth || bounds.Dy() != frameHeight {
			t.Errorf("expected a %vx%v frame, got %vx%v", frameWidth,
				frameHeight, bounds.Dx(), bounds.Dy())
		}
	}
}

// TestSaveReportsMissingDirectory ensures drawing into a directory
// that does not exist is reported by Save.
func TestSaveReportsMissingDirectory(t *testing.T) {
	renderer := NewCartpole(filepath.Join(t.TempDir(), "missing"))

	renderer.Track(step(0, 0.0, 0.0))

	if err := renderer.Save(); err == nil {
		t.Error("expected an error for a missing frame directory")
	}
}
