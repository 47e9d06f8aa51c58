package indexset_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lmeyrat/transopt/config"
	"github.com/lmeyrat/transopt/core/entity"
	"github.com/lmeyrat/transopt/core/indexset"
	"github.com/lmeyrat/transopt/internal/testcase"
)

func zeros(n int) []float64 { return make([]float64, n) }

func buildSets(t *testing.T, c *config.Case) *indexset.Sets {
	t.Helper()
	st, err := entity.NewStore(c)
	require.NoError(t, err)
	return indexset.Build(st)
}

func TestBuildSets(t *testing.T) {
	c := testcase.SingleCorridor()
	// A second mode without a fleet gets a levelized placeholder pair.
	c.Modes = append(c.Modes, config.ModeRecord{
		ID: 2, Name: "rail", SizedByFleet: false,
		CostPerUkm: zeros(3), EmissionFactor: zeros(3),
		InfraBuildCost: zeros(3), InfraOMCost: zeros(3), WaitingTime: zeros(3),
	})
	s := buildSets(t, c)

	require.Equal(t, []indexset.ModeVehicle{
		{Mode: 1, Vehicle: indexset.Real(1)},
		{Mode: 2, Vehicle: indexset.Levelized(2)},
	}, s.ModeVehiclePairs)
	require.Len(t, s.VehicleRefs, 2)
	require.Equal(t, "tv1", indexset.Real(1).String())
	require.Equal(t, "lev2", indexset.Levelized(2).String())

	require.Equal(t, []indexset.RoutePath{{Route: 1, Path: 1}}, s.RoutePathPairs)
	require.Equal(t, []indexset.ProductRoutePath{{Product: 1, Route: 1, Path: 1}}, s.Triples)

	require.Equal(t, []indexset.Quadruple{{Product: 1, Route: 1, Path: 1, Element: 3}}, s.QuadruplesEdge)
	require.Len(t, s.QuadruplesNode, 2)
	for _, q := range s.QuadruplesNode {
		require.Equal(t, indexset.ProductRoutePath{Product: 1, Route: 1, Path: 1}, q.Triple())
	}

	require.True(t, s.HasModeVehicle(indexset.ModeVehicle{Mode: 1, Vehicle: indexset.Real(1)}))
	require.False(t, s.HasModeVehicle(indexset.ModeVehicle{Mode: 1, Vehicle: indexset.Levelized(1)}))
	require.True(t, s.HasRoutePath(indexset.RoutePath{Route: 1, Path: 1}))
	require.False(t, s.HasRoutePath(indexset.RoutePath{Route: 1, Path: 2}))
	require.True(t, s.HasTriple(indexset.ProductRoutePath{Product: 1, Route: 1, Path: 1}))
	require.False(t, s.HasTriple(indexset.ProductRoutePath{Product: 2, Route: 1, Path: 1}))

	require.Equal(t, []indexset.ModeVehicle{{Mode: 2, Vehicle: indexset.Levelized(2)}}, s.PairsForMode(2))
	require.Empty(t, s.PairsForMode(3))
}

func TestBuildSetsDeduplicates(t *testing.T) {
	c := testcase.SingleCorridor()
	// Two odpairs over the same path produce distinct route tuples but no
	// duplicate mode-vehicle pairs.
	c.Odpairs = append(c.Odpairs, config.OdpairRecord{
		ID: 2, Origin: 2, Destination: 1, Paths: []int{1}, Product: 1,
		Demand: []float64{1, 1, 1}, FinancialStatus: 1, Regiontype: 1,
	})
	s := buildSets(t, c)
	require.Len(t, s.ModeVehiclePairs, 1)
	require.Len(t, s.RoutePathPairs, 2)
	require.Len(t, s.Triples, 2)
	require.Len(t, s.QuadruplesEdge, 2)
	require.Len(t, s.QuadruplesNode, 4)
}
