package floatutils

import "testing"

func TestClip(t *testing.T) {
	tests := []struct {
		value, min, max, want float64
	}{
		{0.5, 0.0, 1.0, 0.5},
		{-1.5, 0.0, 1.0, 0.0},
		{2.5, 0.0, 1.0, 1.0},
		{1.0, 1.0, 1.0, 1.0},
	}

	for _, test := range tests {
		if got := Clip(test.value, test.min, test.max); got != test.want {
			t.Errorf("Clip(%v, %v, %v) = %v, want %v", test.value, test.min,
				test.max, got, test.want)
		}
	}
}

func TestMaxSlice(t *testing.T) {
	max, indices := MaxSlice([]float64{1.0, 3.0, 2.0, 3.0})
	if max != 3.0 {
		t.Errorf("expected max 3.0, got %v", max)
	}
	if len(indices) != 2 || indices[0] != 1 || indices[1] != 3 {
		t.Errorf("expected indices [1 3], got %v", indices)
	}

	max, indices = MaxSlice([]float64{-1.0})
	if max != -1.0 || len(indices) != 1 || indices[0] != 0 {
		t.Errorf("single element: got max %v indices %v", max, indices)
	}
}

func TestMean(t *testing.T) {
	if got := Mean(1.0, 2.0, 3.0, 4.0); got != 2.5 {
		t.Errorf("expected mean 2.5, got %v", got)
	}

	returns := []float64{10.0, 0.0, 2.0}
	if got := Mean(returns...); got != 4.0 {
		t.Errorf("expected mean 4.0, got %v", got)
	}
	if got := Mean(returns[len(returns)-2:]...); got != 1.0 {
		t.Errorf("expected mean 1.0 over trailing window, got %v", got)
	}
}
