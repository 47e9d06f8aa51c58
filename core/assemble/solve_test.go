package assemble_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lmeyrat/transopt/core/assemble"
	"github.com/lmeyrat/transopt/core/entity"
	coresolver "github.com/lmeyrat/transopt/core/solver"
	"github.com/lmeyrat/transopt/infra/solver"
	"github.com/lmeyrat/transopt/internal/testcase"
)

func solve(t *testing.T, st *entity.Store) (*assemble.Result, coresolver.Solution) {
	t.Helper()
	res := assemble.Build(st, nil)
	sol, err := solver.New(0, nil).Solve(context.Background(), res.Model)
	require.NoError(t, err)
	require.Equal(t, coresolver.StatusOptimal, sol.Status)
	return res, sol
}

func yearFlow(res *assemble.Result, sol coresolver.Solution, year int) float64 {
	total := 0.0
	for k, id := range res.Vars.F {
		if k.Year == year {
			total += sol.Value(id)
		}
	}
	return total
}

func yearPurchases(res *assemble.Result, sol coresolver.Solution, year, vehicle int) float64 {
	total := 0.0
	for k, id := range res.Vars.HPlus {
		if k.Year == year && k.Vehicle == vehicle {
			total += sol.Value(id)
		}
	}
	return total
}

func yearStock(res *assemble.Result, sol coresolver.Solution, year int) float64 {
	total := 0.0
	for k, id := range res.Vars.H {
		if k.Year == year {
			total += sol.Value(id)
		}
	}
	return total
}

// One vehicle covers the corridor's demand: the optimum buys it in the
// first year and pays only fuel afterwards.
func TestSolveSingleCorridor(t *testing.T) {
	st, err := entity.NewStore(testcase.SingleCorridor())
	require.NoError(t, err)
	res, sol := solve(t, st)

	// 100 capital + 3 years * 10000 kWh * 0.1.
	require.InDelta(t, 3100, sol.Objective, 1e-5)

	for y := 2025; y <= 2027; y++ {
		require.InDelta(t, 100, yearFlow(res, sol, y), 1e-6, "flow %d", y)
		require.InDelta(t, 1, yearStock(res, sol, y), 1e-6, "stock %d", y)
	}
	require.InDelta(t, 1, yearPurchases(res, sol, 2025, 1), 1e-6)
	require.InDelta(t, 0, yearPurchases(res, sol, 2026, 1), 1e-6)
	require.InDelta(t, 0, yearPurchases(res, sol, 2027, 1), 1e-6)
}

// A seeded fleet ages out one cohort per year; replacements are always the
// cheap variant, one vehicle per year until the purchased cohorts carry the
// whole demand.
func TestSolveFleetTurnover(t *testing.T) {
	st, err := entity.NewStore(testcase.FleetTurnover())
	require.NoError(t, err)
	res, sol := solve(t, st)

	// 6 cheap vehicles at 100, 8 years * 6000 kWh * 0.1 in fuel and
	// 8 years * 6 vehicles in maintenance.
	require.InDelta(t, 5448, sol.Objective, 1e-4)

	for y := 2025; y <= 2032; y++ {
		require.InDelta(t, 60, yearFlow(res, sol, y), 1e-6, "flow %d", y)
	}

	// The premium variant is never bought.
	for y := 2025; y <= 2032; y++ {
		require.InDelta(t, 0, yearPurchases(res, sol, y, 2), 1e-6, "premium purchases %d", y)
	}

	require.InDelta(t, 0, yearPurchases(res, sol, 2025, 1), 1e-6)
	for y := 2026; y <= 2031; y++ {
		require.InDelta(t, 1, yearPurchases(res, sol, y, 1), 1e-6, "cheap purchases %d", y)
	}
	require.InDelta(t, 0, yearPurchases(res, sol, 2032, 1), 1e-6)

	// Cohorts beyond their lifetime hold no stock.
	for k, id := range res.Vars.H {
		tv := st.TechVehicleByID(k.Vehicle)
		if k.Year-k.Vintage > st.Lifetime(tv, k.Vintage) {
			require.InDelta(t, 0, sol.Value(id), 1e-9, "retired cohort %+v", k)
		}
	}
}

// Fueling energy booked across a path's elements always matches what the
// flow consumes end to end.
func TestSolveFuelingBalance(t *testing.T) {
	st, err := entity.NewStore(testcase.SingleCorridor())
	require.NoError(t, err)
	res, sol := solve(t, st)

	for y := 2025; y <= 2027; y++ {
		energy := 0.0
		for k, id := range res.Vars.SEdge {
			if k.Year == y {
				energy += sol.Value(id)
			}
		}
		for k, id := range res.Vars.SNode {
			if k.Year == y {
				energy += sol.Value(id)
			}
		}
		// 100 units * 100 km * 1 kWh/km / load 1.
		require.InDelta(t, 10000, energy, 1e-5, "energy %d", y)
	}
}
