package engine

import (
	"testing"
	"time"
)

func TestManualClock(t *testing.T) {
	c := &ManualClock{}
	if c.NowMs() != 0 {
		t.Errorf("Expected 0, got %d", c.NowMs())
	}
	c.Advance(1500 * time.Millisecond)
	if c.NowMs() != 1500 {
		t.Errorf("Expected 1500, got %d", c.NowMs())
	}
	c.Set(10)
	if c.NowMs() != 10 {
		t.Errorf("Expected 10, got %d", c.NowMs())
	}
}

func TestManualClock_KeepsSubMillisecond(t *testing.T) {
	c := &ManualClock{}
	for i := 0; i < 3; i++ {
		c.Advance(500 * time.Microsecond)
	}
	if c.NowMs() != 1 {
		t.Errorf("Expected 1ms after three half steps, got %d", c.NowMs())
	}
	c.Advance(500 * time.Microsecond)
	if c.NowMs() != 2 {
		t.Errorf("Expected 2ms, got %d", c.NowMs())
	}
}

func TestSystemClock_Monotonic(t *testing.T) {
	c := NewSystemClock()
	a := c.NowMs()
	b := c.NowMs()
	if b < a {
		t.Errorf("Clock went backwards: %d then %d", a, b)
	}
}

func TestUniformGenerator(t *testing.T) {
	a := NewUniformGenerator(50, 7)
	b := NewUniformGenerator(50, 7)
	for i := 0; i < 100; i++ {
		ax, az := a.Next()
		bx, bz := b.Next()
		if ax != bx || az != bz {
			t.Fatal("Expected the same seed to give the same course")
		}
		if ax < -50 || ax >= 50 || az < -50 || az >= 50 {
			t.Fatalf("Point (%f, %f) outside extent", ax, az)
		}
	}
}

func TestFixedGenerator_Cycles(t *testing.T) {
	g := &FixedGenerator{Points: [][2]float64{{1, 2}, {3, 4}}}
	want := [][2]float64{{1, 2}, {3, 4}, {1, 2}}
	for _, w := range want {
		x, z := g.Next()
		if x != w[0] || z != w[1] {
			t.Errorf("Expected %v, got (%f, %f)", w, x, z)
		}
	}

	empty := &FixedGenerator{}
	if x, z := empty.Next(); x != 0 || z != 0 {
		t.Error("Expected origin from an empty generator")
	}
}
