package assemble

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lmeyrat/transopt/config"
	"github.com/lmeyrat/transopt/core/entity"
	"github.com/lmeyrat/transopt/core/indexset"
	"github.com/lmeyrat/transopt/core/lp"
	"github.com/lmeyrat/transopt/internal/testcase"
)

// hasRow reports whether the model contains an EQ row whose terms match
// want exactly (order-insensitive) with the given right-hand side.
func hasRow(m *lp.Model, want map[lp.VarID]float64, rhs float64) bool {
	return hasRowSense(m, lp.EQ, want, rhs)
}

func hasRowSense(m *lp.Model, sense lp.Sense, want map[lp.VarID]float64, rhs float64) bool {
	for _, con := range m.Constraints() {
		if con.Sense != sense || con.RHS != rhs || len(con.Terms) != len(want) {
			continue
		}
		ok := true
		for _, term := range con.Terms {
			if want[term.Var] != term.Coef {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func buildForTest(t *testing.T) (*entity.Store, *Result) {
	t.Helper()
	st, err := entity.NewStore(testcase.SingleCorridor())
	require.NoError(t, err)
	return st, Build(st, nil)
}

// A carried cohort's closing stock ends up at h[y-1] minus twice the year's
// retirements: once in the carry-forward of h_exist and once more in the
// stock identity. The two rows below encode that accounting.
func TestMidLifeRetirementAccounting(t *testing.T) {
	_, res := buildForTest(t)
	m, v := res.Model, res.Vars

	k := FleetKey{Year: 2026, Route: 1, Vehicle: 1, Vintage: 2025}
	prev := FleetKey{Year: 2025, Route: 1, Vehicle: 1, Vintage: 2025}

	require.True(t, hasRow(m, map[lp.VarID]float64{
		v.H[k]: 1, v.HExist[k]: -1, v.HMinus[k]: 1,
	}, 0), "stock identity")
	require.True(t, hasRow(m, map[lp.VarID]float64{
		v.HExist[k]: 1, v.H[prev]: -1, v.HMinus[k]: 1,
	}, 0), "carry-forward")
	require.True(t, hasRow(m, map[lp.VarID]float64{v.HPlus[k]: 1}, 0), "no purchases into an old vintage")
}

func TestSeedRegimeUsesInitialStock(t *testing.T) {
	st, err := entity.NewStore(testcase.FleetTurnover())
	require.NoError(t, err)
	res := Build(st, nil)
	m, v := res.Model, res.Vars

	// Vintage 2023 is mid-life in 2025: h_exist is pinned to the seeded 0.5.
	k := FleetKey{Year: 2025, Route: 1, Vehicle: 1, Vintage: 2023}
	require.True(t, hasRow(m, map[lp.VarID]float64{v.HExist[k]: 1}, 0.5))

	// Vintage 2019 reaches its lifetime in 2025: seeded, not yet retired.
	eol := FleetKey{Year: 2025, Route: 1, Vehicle: 1, Vintage: 2019}
	require.True(t, hasRow(m, map[lp.VarID]float64{v.HExist[eol]: 1}, 0.5))

	// One year later the cohort is beyond end-of-life: everything zeroed.
	gone := FleetKey{Year: 2026, Route: 1, Vehicle: 1, Vintage: 2019}
	require.True(t, hasRow(m, map[lp.VarID]float64{v.H[gone]: 1}, 0))
	require.True(t, hasRow(m, map[lp.VarID]float64{v.HExist[gone]: 1}, 0))
}

// shareCase extends the corridor with a second, levelized mode so the share
// denominator has flows outside the bounded family.
func shareCase() *config.Case {
	c := testcase.SingleCorridor()
	c.Modes = append(c.Modes, config.ModeRecord{
		ID: 2, Name: "rail", SizedByFleet: false,
		CostPerUkm: make([]float64, 3), EmissionFactor: make([]float64, 3),
		InfraBuildCost: make([]float64, 3), InfraOMCost: make([]float64, 3), WaitingTime: make([]float64, 3),
	})
	return c
}

func TestModeShareBoundRow(t *testing.T) {
	c := shareCase()
	c.ModeShareBounds = []config.ModeShareBoundRecord{
		{ID: 1, Mode: 1, Share: 0.75, Dir: "max", Year: 2025},
	}
	st, err := entity.NewStore(c)
	require.NoError(t, err)
	res := Build(st, nil)
	m, v := res.Model, res.Vars

	// Road flows count at 1-share, rail flows at -share, over 2025 only.
	want := make(map[lp.VarID]float64)
	for _, k := range v.FlowKeys {
		if k.Year != 2025 {
			continue
		}
		if k.Pair.Mode == 1 {
			want[v.F[k]] = 0.25
		} else {
			want[v.F[k]] = -0.75
		}
	}
	require.Len(t, want, 6)
	require.True(t, hasRowSense(m, lp.LE, want, 0))
}

func TestTechnologyShareBoundRow(t *testing.T) {
	c := shareCase()
	c.TechnologyShareBounds = []config.TechnologyShareBoundRecord{
		{ID: 1, Technology: 1, Share: 0.25, Dir: "min", Year: 0},
	}
	st, err := entity.NewStore(c)
	require.NoError(t, err)
	res := Build(st, nil)
	m, v := res.Model, res.Vars

	// Year 0 aggregates the horizon. Levelized flows carry no technology, so
	// they appear with the -share coefficient only.
	want := make(map[lp.VarID]float64)
	for _, k := range v.FlowKeys {
		if k.Pair.Vehicle.Kind == indexset.LevelizedMode {
			want[v.F[k]] = -0.25
		} else {
			want[v.F[k]] = 0.75
		}
	}
	require.Len(t, want, 24)
	require.True(t, hasRowSense(m, lp.GE, want, 0))
}

func TestVehicleTypeShareBoundRow(t *testing.T) {
	c := shareCase()
	c.VehicleTypeShareBounds = []config.VehicleTypeShareBoundRecord{
		{ID: 1, VehicleType: 1, Share: 0.5, Dir: "max", Year: 2026},
	}
	st, err := entity.NewStore(c)
	require.NoError(t, err)
	res := Build(st, nil)
	m, v := res.Model, res.Vars

	want := make(map[lp.VarID]float64)
	for _, k := range v.FlowKeys {
		if k.Year != 2026 {
			continue
		}
		if k.Pair.Vehicle.Kind == indexset.LevelizedMode {
			want[v.F[k]] = -0.5
		} else {
			want[v.F[k]] = 0.5
		}
	}
	require.Len(t, want, 8)
	require.True(t, hasRowSense(m, lp.LE, want, 0))
}

// Two assemblies of the same case must agree variable by variable and row by
// row, including term order inside each row.
func TestBuildDeterministic(t *testing.T) {
	st1, err := entity.NewStore(testcase.SingleCorridor())
	require.NoError(t, err)
	st2, err := entity.NewStore(testcase.SingleCorridor())
	require.NoError(t, err)

	a, b := Build(st1, nil).Model, Build(st2, nil).Model
	require.Equal(t, a.NumVariables(), b.NumVariables())
	for i := 0; i < a.NumVariables(); i++ {
		v := lp.VarID(i)
		require.Equal(t, a.Name(v), b.Name(v))
		require.Equal(t, a.Objective(v), b.Objective(v))
	}
	require.Equal(t, a.Constraints(), b.Constraints())
}

func TestDepreciationFactor(t *testing.T) {
	require.InDelta(t, 1, depreciationFactor(0, 10), 1e-12)
	require.InDelta(t, 0.5, depreciationFactor(5, 10), 1e-12)
	require.Zero(t, depreciationFactor(10, 10))
	require.Zero(t, depreciationFactor(12, 10))
	require.Zero(t, depreciationFactor(0, 0))
}

func TestAttributedLength(t *testing.T) {
	st, _ := buildForTest(t)

	edge := indexset.Quadruple{Product: 1, Route: 1, Path: 1, Element: 3}
	require.InDelta(t, 100, attributedLength(st, edge), 1e-12)

	node := indexset.Quadruple{Product: 1, Route: 1, Path: 1, Element: 1}
	require.InDelta(t, 50, attributedLength(st, node), 1e-12)
}

func TestEmissionCoef(t *testing.T) {
	c := testcase.SingleCorridor()
	c.Fuels[0].EmissionFactor = 500 // gCO2/kWh
	st, err := entity.NewStore(c)
	require.NoError(t, err)

	k := FlowKey{
		Year:    2025,
		Triple:  indexset.ProductRoutePath{Product: 1, Route: 1, Path: 1},
		Pair:    indexset.ModeVehicle{Mode: 1, Vehicle: indexset.Real(1)},
		Vintage: 2025,
	}
	// 100 km * 1 kWh/km * 500 g/kWh / load 1 = 50 kg = 0.05 t per unit.
	require.InDelta(t, 0.05, emissionCoef(st, k), 1e-12)
}
