package assemble

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	const yInit = 2025
	tests := []struct {
		name     string
		y, g     int
		lifetime int
		want     Regime
	}{
		{"beyond lifetime", 2027, 2020, 5, RegimeRetired},
		{"at lifetime in first year", 2025, 2020, 5, RegimeEndOfLifeSeed},
		{"at lifetime in later year", 2026, 2021, 5, RegimeEndOfLifeCarry},
		{"zero lifetime purchase in later year", 2026, 2026, 0, RegimeEndOfLifeOrphan},
		{"purchased this year", 2026, 2026, 5, RegimeNew},
		{"pre-horizon cohort in first year", 2025, 2023, 10, RegimeSeed},
		{"carried cohort", 2026, 2024, 10, RegimeMidLife},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(yInit, tt.y, tt.g, tt.lifetime))
		})
	}
}

// End-of-life wins over new purchase, new purchase wins over the first-year
// seed.
func TestClassifyPriority(t *testing.T) {
	const yInit = 2025
	require.Equal(t, RegimeEndOfLifeSeed, Classify(yInit, 2025, 2025, 0))
	require.Equal(t, RegimeNew, Classify(yInit, 2025, 2025, 10))
	require.Equal(t, RegimeRetired, Classify(yInit, 2025, 2025, -1))
}

// Every triangular tuple maps to exactly one regime for any lifetime.
func TestClassifyTotal(t *testing.T) {
	const yInit = 2025
	seen := make(map[Regime]bool)
	for y := yInit; y <= yInit+4; y++ {
		for g := yInit - 3; g <= y; g++ {
			for lifetime := 0; lifetime <= 6; lifetime++ {
				r := Classify(yInit, y, g, lifetime)
				require.GreaterOrEqual(t, r, RegimeRetired)
				require.LessOrEqual(t, r, RegimeMidLife)
				seen[r] = true
			}
		}
	}
	require.Len(t, seen, 7, "all regimes reachable")
}

func TestRegimeString(t *testing.T) {
	require.Equal(t, "retired", RegimeRetired.String())
	require.Equal(t, "end-of-life-carry", RegimeEndOfLifeCarry.String())
	require.Equal(t, "mid-life", RegimeMidLife.String())
}
