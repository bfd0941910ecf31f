package pricing

import "testing"

func TestDecayFactor_Endpoints(t *testing.T) {
	if got := DecayFactor(0, 180, 20, 0.12); got != 0 {
		t.Errorf("departed stock should be worthless, got %.4f", got)
	}
	if got := DecayFactor(-3, 180, 20, 0.12); got != 0 {
		t.Errorf("past departure should be worthless, got %.4f", got)
	}
	if got := DecayFactor(60, 0, 20, 0.12); got != 1 {
		t.Errorf("degenerate horizon should hold full value, got %.4f", got)
	}
	if got := DecayFactor(180, 180, 20, 0.12); got < 0.99 {
		t.Errorf("full horizon should hold near-full value, got %.4f", got)
	}
}

func TestDecayFactor_CliffShape(t *testing.T) {
	// Value holds high through mid-horizon and collapses inside the last
	// ~12% of the lead time.
	if mid := DecayFactor(90, 180, 20, 0.12); mid < 0.95 {
		t.Errorf("mid-horizon value should be near 1, got %.4f", mid)
	}
	if late := DecayFactor(9, 180, 20, 0.12); late > 0.5 {
		t.Errorf("inside the cliff value should collapse, got %.4f", late)
	}
}

func TestDecayFactor_Monotonic(t *testing.T) {
	prev := -1.0
	for lead := 0; lead <= 180; lead++ {
		v := DecayFactor(lead, 180, 20, 0.12)
		if v < prev {
			t.Fatalf("decay not monotonic at lead %d: %.6f < %.6f", lead, v, prev)
		}
		if v < 0 || v > 1 {
			t.Fatalf("decay out of range at lead %d: %.6f", lead, v)
		}
		prev = v
	}
}
