package entity_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lmeyrat/transopt/config"
	"github.com/lmeyrat/transopt/core/entity"
	"github.com/lmeyrat/transopt/internal/testcase"
)

func TestNewStore(t *testing.T) {
	st, err := entity.NewStore(testcase.SingleCorridor())
	require.NoError(t, err)

	require.Equal(t, 2023, st.Horizon.GInit())
	require.Equal(t, 2027, st.Horizon.YEnd())
	require.Equal(t, 5, st.Horizon.VintageSpan())

	require.Len(t, st.Elements, 3)
	edge := st.Element(3)
	require.Equal(t, entity.KindEdge, edge.Kind)
	require.Equal(t, st.Element(1), edge.From)
	require.Equal(t, st.Element(2), edge.To)

	p := st.PathByID(1)
	require.Equal(t, 2, p.NodeCount())

	od := st.OdpairByID(1)
	require.Equal(t, st.PathByID(1), od.Paths[0])
	require.Equal(t, "average", od.FinancialStatus.Name)

	tv := st.TechVehicleByID(1)
	require.True(t, tv.VehicleType.CanCarry(1))
	require.False(t, tv.VehicleType.CanCarry(2))
	require.Equal(t, 10, st.Lifetime(tv, 2023))
}

func TestNewStoreUnknownReference(t *testing.T) {
	c := testcase.SingleCorridor()
	c.Odpairs[0].Paths = []int{99}
	_, err := entity.NewStore(c)
	require.Error(t, err)
	require.True(t, errors.Is(err, entity.ErrReference))
}

func TestNewStoreShareBoundReferences(t *testing.T) {
	c := testcase.SingleCorridor()
	c.TechnologyShareBounds = []config.TechnologyShareBoundRecord{
		{ID: 1, Technology: 1, Share: 0.5, Dir: "min", Year: 2025},
	}
	c.VehicleTypeShareBounds = []config.VehicleTypeShareBoundRecord{
		{ID: 1, VehicleType: 1, Share: 0.5, Dir: "max"},
	}
	st, err := entity.NewStore(c)
	require.NoError(t, err)
	require.Len(t, st.TechnologyShareBounds, 1)
	require.Equal(t, entity.ShareMin, st.TechnologyShareBounds[0].Dir)
	require.Equal(t, "bev", st.TechnologyShareBounds[0].Technology.Name)
	require.Len(t, st.VehicleTypeShareBounds, 1)
	require.Equal(t, entity.ShareMax, st.VehicleTypeShareBounds[0].Dir)

	c.TechnologyShareBounds[0].Technology = 99
	_, err = entity.NewStore(c)
	require.Error(t, err)
	require.True(t, errors.Is(err, entity.ErrReference))

	c.TechnologyShareBounds[0].Technology = 1
	c.VehicleTypeShareBounds[0].VehicleType = 99
	_, err = entity.NewStore(c)
	require.Error(t, err)
	require.True(t, errors.Is(err, entity.ErrReference))
}

func TestNewStoreShortSeries(t *testing.T) {
	c := testcase.SingleCorridor()
	c.Odpairs[0].Demand = []float64{100}
	_, err := entity.NewStore(c)
	require.Error(t, err)
	require.True(t, errors.Is(err, entity.ErrDomainSize))

	c = testcase.SingleCorridor()
	c.TechVehicles[0].Lifetime = []int{10, 10}
	_, err = entity.NewStore(c)
	require.Error(t, err)
	require.True(t, errors.Is(err, entity.ErrDomainSize))
}

func TestNewStoreZeroPaths(t *testing.T) {
	c := testcase.SingleCorridor()
	c.Odpairs[0].Paths = nil
	_, err := entity.NewStore(c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no paths")
}

func TestNewStoreInitialStockYearRange(t *testing.T) {
	for _, year := range []int{2022, 2025} {
		c := testcase.SingleCorridor()
		c.Odpairs[0].InitialStock = []config.InitialStockRecord{{TechVehicle: 1, Year: year, Stock: 1}}
		_, err := entity.NewStore(c)
		require.Error(t, err, "year %d", year)
	}

	c := testcase.SingleCorridor()
	c.Odpairs[0].InitialStock = []config.InitialStockRecord{{TechVehicle: 1, Year: 2023, Stock: 1.5}}
	st, err := entity.NewStore(c)
	require.NoError(t, err)
	require.InDelta(t, 1.5, st.InitialStock(st.OdpairByID(1), 1, 2023), 1e-12)
	require.Zero(t, st.InitialStock(st.OdpairByID(1), 1, 2024))
}

func TestNewStoreStockForLevelizedMode(t *testing.T) {
	c := testcase.SingleCorridor()
	c.Modes[0].SizedByFleet = false
	c.Odpairs[0].InitialStock = []config.InitialStockRecord{{TechVehicle: 1, Year: 2023, Stock: 1}}
	_, err := entity.NewStore(c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not fleet-sized")
}

func TestStoreSubsidy(t *testing.T) {
	c := testcase.SingleCorridor()
	c.VehicleSubsidies = []config.VehicleSubsidyRecord{
		{ID: 1, Name: "bev bonus", Years: []int{2025, 2026}, TechVehicle: 1, Amount: 20},
	}
	st, err := entity.NewStore(c)
	require.NoError(t, err)
	require.InDelta(t, 20, st.Subsidy(1, 2025), 1e-12)
	require.Zero(t, st.Subsidy(1, 2027))
	require.Zero(t, st.Subsidy(99, 2025))
}
