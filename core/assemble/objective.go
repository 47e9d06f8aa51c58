package assemble

import (
	"math"

	"github.com/lmeyrat/transopt/core/entity"
	"github.com/lmeyrat/transopt/core/indexset"
	"github.com/lmeyrat/transopt/core/lp"
)

// Penalty weights on the budget relaxation pair. Overruns are priced far
// above any real cost so the solver only uses them when a budget is
// genuinely infeasible; shortfalls are cheap enough not to force spending.
const (
	budgetOverrunWeight   = 1e6
	budgetShortfallWeight = 1e2
)

// discountFactor discounts a cost booked in year y to the first horizon
// year.
func discountFactor(h entity.Horizon, y int) float64 {
	return 1 / math.Pow(1+h.DiscountRate, float64(y-h.YInit))
}

// travelTimeReal is the hours one product unit spends on a path in a given
// vehicle cohort, including fueling detours when the tank cannot cover the
// path in one charge.
func travelTimeReal(od *entity.Odpair, tv *entity.TechVehicle, pathLen float64, gi int) float64 {
	t := pathLen / od.Regiontype.Speed
	rangePerCharge := tv.TankCapacity[gi] / tv.SpecConsumption[gi]
	if rangePerCharge < pathLen {
		charges := pathLen / rangePerCharge
		t += charges * tv.TankCapacity[gi] / tv.PeakFueling[gi]
	}
	return t
}

// emitObjective books the discounted system cost on every variable: flow
// operating and time costs, fleet holding and purchase costs, energy and
// carbon costs, infrastructure build and upkeep, and the budget penalties.
func emitObjective(m *lp.Model, st *entity.Store, vars *Variables) {
	h := st.Horizon

	for _, k := range vars.FlowKeys {
		id := vars.F[k]
		od := st.OdpairByID(k.Triple.Route)
		p := st.PathByID(k.Triple.Path)
		yi := h.YearIdx(k.Year)
		df := discountFactor(h, k.Year)

		if k.Pair.Vehicle.Kind == indexset.LevelizedMode {
			mode := st.ModeByID(k.Pair.Mode)
			cost := mode.CostPerUkm[yi] * p.Length
			time := p.Length/od.Regiontype.Speed + mode.WaitingTime[yi]
			m.AddObjective(id, df*(cost+od.FinancialStatus.VoT*time))
			continue
		}

		tv := st.TechVehicleByID(k.Pair.Vehicle.ID)
		gi := h.VintageIdx(k.Vintage)
		vehicleKm := p.Length / tv.LoadFactor[gi]
		cost := od.Regiontype.CostsVar[yi] * vehicleKm
		time := travelTimeReal(od, tv, p.Length, gi)
		m.AddObjective(id, df*(cost+od.FinancialStatus.VoT*time))
	}

	for _, k := range vars.FleetKeys {
		tv := st.TechVehicleByID(k.Vehicle)
		if k.Year-k.Vintage > st.Lifetime(tv, k.Vintage) {
			continue
		}
		od := st.OdpairByID(k.Route)
		yi, gi := h.YearIdx(k.Year), h.VintageIdx(k.Vintage)
		df := discountFactor(h, k.Year)
		holding := tv.MaintenanceAnnual[gi] + tv.MaintenanceDistance[gi]*tv.AnnualRange[gi] + od.Regiontype.CostsFix[yi]
		m.AddObjective(vars.H[k], df*holding)
	}

	for _, k := range vars.FleetKeys {
		if k.Vintage != k.Year {
			continue
		}
		tv := st.TechVehicleByID(k.Vehicle)
		net := tv.CapitalCost[h.VintageIdx(k.Vintage)] - st.Subsidy(tv.ID, k.Year)
		m.AddObjective(vars.HPlus[k], discountFactor(h, k.Year)*net)
	}

	emitFuelCost := func(keys []FuelKey, s map[FuelKey]lp.VarID) {
		for _, k := range keys {
			tv := st.TechVehicleByID(k.Vehicle)
			fuel := tv.Technology.Fuel
			e := st.Element(k.Quad.Element)
			yi := h.YearIdx(k.Year)
			perKWh := fuel.CostPerKWh[yi] + e.CarbonPrice[yi]*fuel.EmissionFactor*1e-6
			m.AddObjective(s[k], discountFactor(h, k.Year)*perKWh)
		}
	}
	emitFuelCost(vars.SEdgeKeys, vars.SEdge)
	emitFuelCost(vars.SNodeKeys, vars.SNode)

	emitInfraCost := func(keys []InfraKey, q map[InfraKey]lp.VarID) {
		for _, k := range keys {
			fuel := st.TechnologyByID(k.Technology).Fuel
			coef := discountFactor(h, k.Year) * fuel.CostPerKW[h.YearIdx(k.Year)]
			for y2 := k.Year; y2 <= h.YEnd(); y2++ {
				coef += discountFactor(h, y2) * fuel.InfraOMCost[h.YearIdx(y2)]
			}
			m.AddObjective(q[k], coef)
		}
	}
	emitInfraCost(vars.QEdgeKeys, vars.QEdge)
	emitInfraCost(vars.QNodeKeys, vars.QNode)

	emitModeInfraCost := func(keys []ModeInfraKey, q map[ModeInfraKey]lp.VarID) {
		for _, k := range keys {
			mode := st.ModeByID(k.Mode)
			coef := discountFactor(h, k.Year) * mode.InfraBuildCost[h.YearIdx(k.Year)]
			for y2 := k.Year; y2 <= h.YEnd(); y2++ {
				coef += discountFactor(h, y2) * mode.InfraOMCost[h.YearIdx(y2)]
			}
			m.AddObjective(q[k], coef)
		}
	}
	emitModeInfraCost(vars.QModeEdgeKeys, vars.QModeEdge)
	emitModeInfraCost(vars.QModeNodeKeys, vars.QModeNode)

	for _, k := range vars.BudgetKeys {
		m.AddObjective(vars.BudgetPlus[k], budgetOverrunWeight)
		m.AddObjective(vars.BudgetMinus[k], budgetShortfallWeight)
	}
}
