package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	t.Setenv("INGEST_WORKERS", "")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{
			name:       "CPU-bound task (1.0x multiplier)",
			multiplier: 1.0,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
		{
			name:       "I/O-bound task (2.0x multiplier)",
			multiplier: 2.0,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU * 2,
		},
		{
			name:       "With limit lower than calculated",
			multiplier: 2.0,
			limit:      2,
			minExpect:  1,
			maxExpect:  2,
		},
		{
			name:       "Very low multiplier still yields a worker",
			multiplier: 0.1,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)

			if got < tt.minExpect {
				t.Errorf("Count(%v, %d) = %d, expected >= %d", tt.multiplier, tt.limit, got, tt.minExpect)
			}
			if got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, expected <= %d", tt.multiplier, tt.limit, got, tt.maxExpect)
			}
		})
	}
}

func TestCountOverride(t *testing.T) {
	t.Setenv("INGEST_WORKERS", "7")

	if got := Count(1.0, 0); got != 7 {
		t.Errorf("Expected override of 7, got %d", got)
	}
	if got := Count(1.0, 4); got != 4 {
		t.Errorf("Expected limit to cap override at 4, got %d", got)
	}
}

func TestCountInvalidOverrideIgnored(t *testing.T) {
	t.Setenv("INGEST_WORKERS", "not-a-number")

	if got := Count(1.0, 0); got < 1 {
		t.Errorf("Expected calculated count for invalid override, got %d", got)
	}

	t.Setenv("INGEST_WORKERS", "-3")
	if got := Count(1.0, 0); got < 1 {
		t.Errorf("Expected calculated count for negative override, got %d", got)
	}
}

func TestHelpers(t *testing.T) {
	if got := ForCPU(1); got != 1 {
		t.Errorf("ForCPU(1) = %d, expected 1", got)
	}
	if got := ForIO(2); got > 2 {
		t.Errorf("ForIO(2) = %d, expected <= 2", got)
	}
	if got := ForMixed(3); got > 3 {
		t.Errorf("ForMixed(3) = %d, expected <= 3", got)
	}
}
