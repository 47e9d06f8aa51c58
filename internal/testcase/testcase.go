// Package testcase provides small, hand-checked case documents shared by
// tests across packages. Each scenario has a known optimal solution worked
// out on paper.
package testcase

import "github.com/lmeyrat/transopt/config"

func repF(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func repI(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// SingleCorridor is a one-odpair, one-vehicle case over a three-year
// horizon. Demand is 100 units/year over a 100 km path; one vehicle covers
// it (load 1, annual range 10000 km). With energy at 0.1/kWh and a capital
// cost of 100, the optimum buys one vehicle in the first year and pays
// 3 * 1000 in fuel: objective 3100.
func SingleCorridor() *config.Case {
	years, span := 3, 5
	return &config.Case{
		Model: config.ModelRecord{
			YInit: 2025, Years: 3, PreYears: 2,
			AlphaMode: 1000, BetaMode: 1000, AlphaTech: 1000, BetaTech: 1000,
			InfraSizingFactor: 1, DiscountRate: 0,
		},
		GeographicElements: []config.GeographicElementRecord{
			{ID: 1, Kind: "node", Name: "origin", CarbonPrice: repF(0, years)},
			{ID: 2, Kind: "node", Name: "destination", CarbonPrice: repF(0, years)},
			{ID: 3, Kind: "edge", Name: "corridor", CarbonPrice: repF(0, years), Length: 100, From: 1, To: 2},
		},
		Paths:    []config.PathRecord{{ID: 1, Name: "direct", Sequence: []int{1, 3, 2}, Length: 100}},
		Products: []config.ProductRecord{{ID: 1, Name: "freight"}},
		Modes: []config.ModeRecord{{
			ID: 1, Name: "road", SizedByFleet: true,
			CostPerUkm: repF(0, years), EmissionFactor: repF(0, years),
			InfraBuildCost: repF(0, years), InfraOMCost: repF(0, years), WaitingTime: repF(0, years),
		}},
		Fuels: []config.FuelRecord{{
			ID: 1, Name: "electricity", EmissionFactor: 0,
			CostPerKWh: repF(0.1, years), CostPerKW: repF(0, years), InfraOMCost: repF(0, years),
		}},
		Technologies: []config.TechnologyRecord{{ID: 1, Name: "bev", Fuel: 1}},
		VehicleTypes: []config.VehicleTypeRecord{{ID: 1, Name: "truck", Mode: 1, Products: []int{1}}},
		TechVehicles: []config.TechVehicleRecord{{
			ID: 1, Name: "bev-truck", VehicleType: 1, Technology: 1,
			CapitalCost:         repF(100, span),
			MaintenanceAnnual:   repF(0, span),
			MaintenanceDistance: repF(0, span),
			LoadFactor:          repF(1, span),
			SpecConsumption:     repF(1, span),
			Lifetime:            repI(10, span),
			AnnualRange:         repF(10000, span),
			TankCapacity:        repF(10000, span),
			PeakFueling:         repF(100, span),
		}},
		FinancialStatuses: []config.FinancialStatusRecord{{ID: 1, Name: "average", VoT: 0, PurchaseBudgetLB: 0, PurchaseBudgetUB: 1e9}},
		Regiontypes:       []config.RegiontypeRecord{{ID: 1, Name: "rural", Speed: 60, CostsVar: repF(0, years), CostsFix: repF(0, years)}},
		Odpairs: []config.OdpairRecord{{
			ID: 1, Origin: 1, Destination: 2, Paths: []int{1}, Product: 1,
			Demand: repF(100, years), FinancialStatus: 1, Regiontype: 1,
		}},
	}
}

// FleetTurnover is an eight-year case seeded with an aging fleet. Twelve
// half-vehicle cohorts (vintages 2019-2024, two vehicle variants) cover the
// demand exactly in the first year; lifetime 6 retires one full cohort per
// year, and the optimum replaces each with the cheap variant exactly when
// it is needed: six purchases of 100, 8 * 600 in fuel and 8 * 6 in annual
// maintenance, objective 5448. The per-vehicle maintenance cost makes early
// purchases strictly worse, so the replacement schedule is unique.
func FleetTurnover() *config.Case {
	years, span := 8, 14
	od := config.OdpairRecord{
		ID: 1, Origin: 1, Destination: 2, Paths: []int{1}, Product: 1,
		Demand: repF(60, years), FinancialStatus: 1, Regiontype: 1,
	}
	for _, tv := range []int{1, 2} {
		for g := 2019; g <= 2024; g++ {
			od.InitialStock = append(od.InitialStock, config.InitialStockRecord{TechVehicle: tv, Year: g, Stock: 0.5})
		}
	}
	vehicle := func(id int, name string, capital float64) config.TechVehicleRecord {
		return config.TechVehicleRecord{
			ID: id, Name: name, VehicleType: 1, Technology: 1,
			CapitalCost:         repF(capital, span),
			MaintenanceAnnual:   repF(1, span),
			MaintenanceDistance: repF(0, span),
			LoadFactor:          repF(1, span),
			SpecConsumption:     repF(1, span),
			Lifetime:            repI(6, span),
			AnnualRange:         repF(1000, span),
			TankCapacity:        repF(100000, span),
			PeakFueling:         repF(100, span),
		}
	}
	return &config.Case{
		Model: config.ModelRecord{
			YInit: 2025, Years: 8, PreYears: 6,
			AlphaMode: 1000, BetaMode: 1000, AlphaTech: 1000, BetaTech: 1000,
			InfraSizingFactor: 1, DiscountRate: 0,
		},
		GeographicElements: []config.GeographicElementRecord{
			{ID: 1, Kind: "node", Name: "origin", CarbonPrice: repF(0, years)},
			{ID: 2, Kind: "node", Name: "destination", CarbonPrice: repF(0, years)},
			{ID: 3, Kind: "edge", Name: "corridor", CarbonPrice: repF(0, years), Length: 100, From: 1, To: 2},
		},
		Paths:    []config.PathRecord{{ID: 1, Name: "direct", Sequence: []int{1, 3, 2}, Length: 100}},
		Products: []config.ProductRecord{{ID: 1, Name: "freight"}},
		Modes: []config.ModeRecord{{
			ID: 1, Name: "road", SizedByFleet: true,
			CostPerUkm: repF(0, years), EmissionFactor: repF(0, years),
			InfraBuildCost: repF(0, years), InfraOMCost: repF(0, years), WaitingTime: repF(0, years),
		}},
		Fuels: []config.FuelRecord{{
			ID: 1, Name: "electricity", EmissionFactor: 0,
			CostPerKWh: repF(0.1, years), CostPerKW: repF(0, years), InfraOMCost: repF(0, years),
		}},
		Technologies: []config.TechnologyRecord{{ID: 1, Name: "bev", Fuel: 1}},
		VehicleTypes: []config.VehicleTypeRecord{{ID: 1, Name: "truck", Mode: 1, Products: []int{1}}},
		TechVehicles: []config.TechVehicleRecord{
			vehicle(1, "cheap-truck", 100),
			vehicle(2, "premium-truck", 200),
		},
		FinancialStatuses: []config.FinancialStatusRecord{{ID: 1, Name: "average", VoT: 0, PurchaseBudgetLB: 0, PurchaseBudgetUB: 1e9}},
		Regiontypes:       []config.RegiontypeRecord{{ID: 1, Name: "rural", Speed: 60, CostsVar: repF(0, years), CostsFix: repF(0, years)}},
		Odpairs:           []config.OdpairRecord{od},
	}
}
