package tracker

import (
	"math"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	ts "github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/timestep"
)

// episode sends a fixed-length episode with constant reward through a
// Tracker
func episode(t Tracker, length int, reward float64) {
	obs := mat.NewVecDense(1, []float64{0})
	t.Track(ts.New(ts.First, 0, 1.0, obs, 0))
	for i := 1; i < length; i++ {
		t.Track(ts.New(ts.Mid, reward, 1.0, obs, i))
	}
	t.Track(ts.New(ts.Last, reward, 0.0, obs, length))
}

func TestReturnTracksEpisodicReturns(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "returns.bin")
	tracker := NewReturn(filename)

	episode(tracker, 3, -1.0)
	episode(tracker, 5, 1.0)

	if err := tracker.Save(); err != nil {
		t.Fatalf("could not save returns: %v", err)
	}

	returns, err := LoadData(filename)
	if err != nil {
		t.Fatalf("could not load returns: %v", err)
	}

	want := []float64{-3.0, 5.0}
	if len(returns) != len(want) {
		t.Fatalf("expected %v returns, got %v", len(want), len(returns))
	}
	for i := range want {
		if math.Abs(returns[i]-want[i]) > 1e-12 {
			t.Errorf("episode %v: expected return %v, got %v", i, want[i],
				returns[i])
		}
	}
}

func TestReturnPanicsOnNonSequentialSteps(t *testing.T) {
	tracker := NewReturn(filepath.Join(t.TempDir(), "returns.bin"))

	obs := mat.NewVecDense(1, []float64{0})
	tracker.Track(ts.New(ts.First, 0, 1.0, obs, 0))

	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-sequential timesteps")
		}
	}()
	tracker.Track(ts.New(ts.Mid, -1.0, 1.0, obs, 5))
}

func TestEpisodeLengthTracksFinishedEpisodesOnly(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "lengths.bin")
	tracker := NewEpisodeLength(filename)

	episode(tracker, 4, -1.0)
	episode(tracker, 9, -1.0)

	// Unfinished episode should not be recorded
	obs := mat.NewVecDense(1, []float64{0})
	tracker.Track(ts.New(ts.First, 0, 1.0, obs, 0))
	tracker.Track(ts.New(ts.Mid, -1.0, 1.0, obs, 1))

	if err := tracker.Save(); err != nil {
		t.Fatalf("could not save lengths: %v", err)
	}

	lengths, err := LoadData(filename)
	if err != nil {
		t.Fatalf("could not load lengths: %v", err)
	}

	want := []float64{4, 9}
	if len(lengths) != len(want) {
		t.Fatalf("expected %v lengths, got %v", len(want), len(lengths))
	}
	for i := range want {
		if lengths[i] != want[i] {
			t.Errorf("episode %v: expected length %v, got %v", i, want[i],
				lengths[i])
		}
	}
}

func TestLoadDataMissingFile(t *testing.T) {
	if _, err := LoadData(filepath.Join(t.TempDir(), "nope.bin")); err == nil {
		t.Error("expected error for missing file")
	}
}
