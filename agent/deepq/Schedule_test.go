package deepq

import (
	"math"
	"testing"
)

func TestExpDecayScheduleStartsAtStart(t *testing.T) {
	schedule := NewExpDecaySchedule(0.9, 0.05, 1000)
	if got := schedule.Value(); got != 0.9 {
		t.Errorf("expected initial rate 0.9, got %v", got)
	}
}

func TestExpDecayScheduleAdvancesEveryCall(t *testing.T) {
	start, end, decay := 1.0, 0.1, 200.0
	schedule := NewExpDecaySchedule(start, end, decay)

	for i := 0; i < 500; i++ {
		want := end + (start-end)*math.Exp(-float64(i)/decay)
		got := schedule.Next()
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("step %v: expected rate %v, got %v", i, want, got)
		}
	}
}

func TestExpDecayScheduleIsMonotonicallyDecreasing(t *testing.T) {
	schedule := NewExpDecaySchedule(0.9, 0.05, 100)

	prev := schedule.Next()
	for i := 0; i < 1000; i++ {
		current := schedule.Next()
		if current > prev {
			t.Fatalf("rate increased from %v to %v at step %v", prev,
				current, i)
		}
		prev = current
	}
}

func TestExpDecayScheduleConvergesToEnd(t *testing.T) {
	schedule := NewExpDecaySchedule(1.0, 0.01, 50)

	var rate float64
	for i := 0; i < 10000; i++ {
		rate = schedule.Next()
	}
	if math.Abs(rate-0.01) > 1e-6 {
		t.Errorf("expected rate to converge to 0.01, got %v", rate)
	}
	if rate < 0.01 {
		t.Errorf("rate %v decayed below its floor 0.01", rate)
	}
}

func TestConstantSchedule(t *testing.T) {
	schedule := NewConstantSchedule(0.25)
	for i := 0; i < 10; i++ {
		if got := schedule.Next(); got != 0.25 {
			t.Errorf("expected constant rate 0.25, got %v", got)
		}
	}
}
