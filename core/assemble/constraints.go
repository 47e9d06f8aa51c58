package assemble

import (
	"github.com/lmeyrat/transopt/core/entity"
	"github.com/lmeyrat/transopt/core/indexset"
	"github.com/lmeyrat/transopt/core/lp"
)

// emitDemandCoverage requires, per (year, route), that the flow summed over
// the route's paths, mode-vehicle pairs and vintages covers the demand.
func emitDemandCoverage(m *lp.Model, st *entity.Store, sets *indexset.Sets, vars *Variables) {
	h := st.Horizon
	for y := h.YInit; y <= h.YEnd(); y++ {
		for _, od := range st.Odpairs {
			var terms []lp.Term
			for _, p := range od.Paths {
				prk := indexset.ProductRoutePath{Product: od.Product.ID, Route: od.ID, Path: p.ID}
				for _, pair := range sets.ModeVehiclePairs {
					for g := h.GInit(); g <= y; g++ {
						if id, ok := vars.F[FlowKey{Year: y, Triple: prk, Pair: pair, Vintage: g}]; ok {
							terms = append(terms, lp.Term{Var: id, Coef: 1})
						}
					}
				}
			}
			m.AddConstraint(terms, lp.GE, od.Demand[h.YearIdx(y)])
		}
	}
}

// emitFleetSizing ties vehicle counts to the flow they carry. For vehicles
// of fleet-sized modes, h must cover the vehicles needed to move the flow
// over each path; for vehicles of modes represented by levelized costs, all
// four fleet variables are forced to zero.
func emitFleetSizing(m *lp.Model, st *entity.Store, vars *Variables) {
	h := st.Horizon
	for _, tv := range st.TechVehicles {
		mode := tv.VehicleType.Mode
		pair := indexset.ModeVehicle{Mode: mode.ID, Vehicle: indexset.Real(tv.ID)}
		for y := h.YInit; y <= h.YEnd(); y++ {
			for _, od := range st.Odpairs {
				for g := h.GInit(); g <= y; g++ {
					k := FleetKey{Year: y, Route: od.ID, Vehicle: tv.ID, Vintage: g}
					if !mode.SizedByFleet {
						for _, id := range []lp.VarID{vars.H[k], vars.HPlus[k], vars.HMinus[k], vars.HExist[k]} {
							m.AddConstraint([]lp.Term{{Var: id, Coef: 1}}, lp.EQ, 0)
						}
						continue
					}
					gi := h.VintageIdx(g)
					terms := []lp.Term{{Var: vars.H[k], Coef: 1}}
					for _, p := range od.Paths {
						prk := indexset.ProductRoutePath{Product: od.Product.ID, Route: od.ID, Path: p.ID}
						id, ok := vars.F[FlowKey{Year: y, Triple: prk, Pair: pair, Vintage: g}]
						if !ok {
							continue
						}
						coef := p.Length / (tv.LoadFactor[gi] * tv.AnnualRange[gi])
						terms = append(terms, lp.Term{Var: id, Coef: -coef})
					}
					if len(terms) > 1 {
						m.AddConstraint(terms, lp.GE, 0)
					}
				}
			}
		}
	}
}

// emitModeShift bounds the year-over-year change of each mode's aggregate
// flow by a linear combination of the current and prior aggregate,
// preventing instantaneous full shifts between modes.
func emitModeShift(m *lp.Model, st *entity.Store, vars *Variables) {
	h := st.Horizon
	alpha, beta := h.AlphaMode, h.BetaMode
	for _, mode := range st.Modes {
		for y := h.YInit + 1; y <= h.YEnd(); y++ {
			cur := flowTermsForMode(vars, mode.ID, y)
			prev := flowTermsForMode(vars, mode.ID, y-1)
			if len(cur) == 0 && len(prev) == 0 {
				continue
			}
			emitShiftPair(m, cur, prev, alpha, beta)
		}
	}
}

// emitTechShift applies the same turnover limit to each technology's
// aggregate vehicle stock.
func emitTechShift(m *lp.Model, st *entity.Store, vars *Variables) {
	h := st.Horizon
	alpha, beta := h.AlphaTech, h.BetaTech
	for _, tech := range st.Technologies {
		for y := h.YInit + 1; y <= h.YEnd(); y++ {
			cur := stockTermsForTech(st, vars, tech.ID, y)
			prev := stockTermsForTech(st, vars, tech.ID, y-1)
			if len(cur) == 0 && len(prev) == 0 {
				continue
			}
			emitShiftPair(m, cur, prev, alpha, beta)
		}
	}
}

// emitShiftPair emits |cur - prev| <= alpha*cur + beta*prev as two rows.
func emitShiftPair(m *lp.Model, cur, prev []lp.Term, alpha, beta float64) {
	up := make([]lp.Term, 0, len(cur)+len(prev))
	down := make([]lp.Term, 0, len(cur)+len(prev))
	for _, t := range cur {
		up = append(up, lp.Term{Var: t.Var, Coef: (1 - alpha) * t.Coef})
		down = append(down, lp.Term{Var: t.Var, Coef: -(1 + alpha) * t.Coef})
	}
	for _, t := range prev {
		up = append(up, lp.Term{Var: t.Var, Coef: -(1 + beta) * t.Coef})
		down = append(down, lp.Term{Var: t.Var, Coef: (1 - beta) * t.Coef})
	}
	m.AddConstraint(up, lp.LE, 0)
	m.AddConstraint(down, lp.LE, 0)
}

func flowTermsForMode(vars *Variables, modeID, y int) []lp.Term {
	var terms []lp.Term
	for _, k := range vars.FlowKeys {
		if k.Year == y && k.Pair.Mode == modeID {
			terms = append(terms, lp.Term{Var: vars.F[k], Coef: 1})
		}
	}
	return terms
}

func stockTermsForTech(st *entity.Store, vars *Variables, techID, y int) []lp.Term {
	var terms []lp.Term
	for _, k := range vars.FleetKeys {
		if k.Year != y {
			continue
		}
		if st.TechVehicleByID(k.Vehicle).Technology.ID == techID {
			terms = append(terms, lp.Term{Var: vars.H[k], Coef: 1})
		}
	}
	return terms
}

// depreciationFactor is the residual value share of a vehicle retired at
// the given age (straight-line over the cohort's lifetime).
func depreciationFactor(age, lifetime int) float64 {
	if lifetime <= 0 || age >= lifetime {
		return 0
	}
	return 1 - float64(age)/float64(lifetime)
}

// emitBudget keeps each route's cumulative purchase expenditure, net of the
// depreciated resale value of retirements, within the bounds of its
// financial segment. Overruns and shortfalls are absorbed by the penalty
// pair so the solver can always report how far a budget was missed.
func emitBudget(m *lp.Model, st *entity.Store, vars *Variables) {
	h := st.Horizon
	for _, od := range st.Odpairs {
		fs := od.FinancialStatus
		for y := h.YInit; y <= h.YEnd(); y++ {
			var spend []lp.Term
			for y2 := h.YInit; y2 <= y; y2++ {
				for _, tv := range st.TechVehicles {
					buy := FleetKey{Year: y2, Route: od.ID, Vehicle: tv.ID, Vintage: y2}
					net := tv.CapitalCost[h.VintageIdx(y2)] - st.Subsidy(tv.ID, y2)
					spend = append(spend, lp.Term{Var: vars.HPlus[buy], Coef: net})
					for g := h.GInit(); g <= y2; g++ {
						dep := depreciationFactor(y2-g, st.Lifetime(tv, g))
						if dep == 0 {
							continue
						}
						sell := FleetKey{Year: y2, Route: od.ID, Vehicle: tv.ID, Vintage: g}
						spend = append(spend, lp.Term{Var: vars.HMinus[sell], Coef: -dep * tv.CapitalCost[h.VintageIdx(g)]})
					}
				}
			}
			elapsed := float64(y - h.YInit + 1)
			bk := BudgetKey{Year: y, Route: od.ID}

			upper := append(append([]lp.Term{}, spend...), lp.Term{Var: vars.BudgetPlus[bk], Coef: -1})
			m.AddConstraint(upper, lp.LE, elapsed*fs.PurchaseBudgetUB)

			lower := append(append([]lp.Term{}, spend...), lp.Term{Var: vars.BudgetMinus[bk], Coef: 1})
			m.AddConstraint(lower, lp.GE, elapsed*fs.PurchaseBudgetLB)
		}
	}
}

// attributedLength is the share of a path's length booked to one element:
// edges carry their own length, nodes split the path length evenly.
func attributedLength(st *entity.Store, q indexset.Quadruple) float64 {
	e := st.Element(q.Element)
	if e.Kind == entity.KindEdge {
		return e.Length
	}
	p := st.PathByID(q.Path)
	return p.Length / float64(p.NodeCount())
}

// emitFuelingDemand equates, per (year, triple, vehicle), the fueling
// energy booked across the path's elements with the energy the flow
// consumes over the whole path. Where along the path the fueling happens is
// the solver's choice, limited by the installed capacity at each element.
func emitFuelingDemand(m *lp.Model, st *entity.Store, sets *indexset.Sets, vars *Variables) {
	h := st.Horizon
	for y := h.YInit; y <= h.YEnd(); y++ {
		for _, trk := range sets.Triples {
			p := st.PathByID(trk.Path)
			for _, tv := range st.TechVehicles {
				var terms []lp.Term
				for _, q := range sets.QuadruplesEdge {
					if q.Triple() != trk {
						continue
					}
					if id, ok := vars.SEdge[FuelKey{Year: y, Quad: q, Vehicle: tv.ID}]; ok {
						terms = append(terms, lp.Term{Var: id, Coef: 1})
					}
				}
				for _, q := range sets.QuadruplesNode {
					if q.Triple() != trk {
						continue
					}
					if id, ok := vars.SNode[FuelKey{Year: y, Quad: q, Vehicle: tv.ID}]; ok {
						terms = append(terms, lp.Term{Var: id, Coef: 1})
					}
				}
				if len(terms) == 0 {
					continue
				}
				pair := indexset.ModeVehicle{Mode: tv.VehicleType.Mode.ID, Vehicle: indexset.Real(tv.ID)}
				for g := h.GInit(); g <= y; g++ {
					fID, ok := vars.F[FlowKey{Year: y, Triple: trk, Pair: pair, Vintage: g}]
					if !ok {
						continue
					}
					gi := h.VintageIdx(g)
					coef := tv.SpecConsumption[gi] * p.Length / tv.LoadFactor[gi]
					terms = append(terms, lp.Term{Var: fID, Coef: -coef})
				}
				m.AddConstraint(terms, lp.EQ, 0)
			}
		}
	}
}

// emitFuelingInfra sizes fueling capacity: additions accumulated up to and
// including y, plus pre-horizon capacity, must cover the sizing factor
// times the year's fueling demand of that technology at the element.
func emitFuelingInfra(m *lp.Model, st *entity.Store, sets *indexset.Sets, vars *Variables) {
	h := st.Horizon
	gamma := h.InfraSizingFactor
	emit := func(quads []indexset.Quadruple, s map[FuelKey]lp.VarID, q map[InfraKey]lp.VarID) {
		for y := h.YInit; y <= h.YEnd(); y++ {
			for _, t := range st.Technologies {
				for _, e := range st.Elements {
					var terms []lp.Term
					for _, quad := range quads {
						if quad.Element != e.ID {
							continue
						}
						for _, tv := range st.TechVehicles {
							if tv.Technology.ID != t.ID {
								continue
							}
							if sID, ok := s[FuelKey{Year: y, Quad: quad, Vehicle: tv.ID}]; ok {
								terms = append(terms, lp.Term{Var: sID, Coef: gamma})
							}
						}
					}
					if len(terms) == 0 {
						continue
					}
					for y2 := h.YInit; y2 <= y; y2++ {
						if qID, ok := q[InfraKey{Year: y2, Technology: t.ID, Element: e.ID}]; ok {
							terms = append(terms, lp.Term{Var: qID, Coef: -1})
						}
					}
					m.AddConstraint(terms, lp.LE, st.InstalledFuelingKW(t.ID, e.ID))
				}
			}
		}
	}
	emit(sets.QuadruplesEdge, vars.SEdge, vars.QEdge)
	emit(sets.QuadruplesNode, vars.SNode, vars.QNode)
}

// emitModeInfra sizes mode infrastructure: cumulative additions plus
// pre-horizon capacity must cover the transport volume routed through the
// element.
func emitModeInfra(m *lp.Model, st *entity.Store, sets *indexset.Sets, vars *Variables) {
	h := st.Horizon
	emit := func(quads []indexset.Quadruple, q map[ModeInfraKey]lp.VarID) {
		for y := h.YInit; y <= h.YEnd(); y++ {
			for _, mode := range st.Modes {
				for _, e := range st.Elements {
					var terms []lp.Term
					for _, quad := range quads {
						if quad.Element != e.ID {
							continue
						}
						length := attributedLength(st, quad)
						for _, pair := range sets.PairsForMode(mode.ID) {
							for g := h.GInit(); g <= y; g++ {
								if fID, ok := vars.F[FlowKey{Year: y, Triple: quad.Triple(), Pair: pair, Vintage: g}]; ok {
									terms = append(terms, lp.Term{Var: fID, Coef: length})
								}
							}
						}
					}
					if len(terms) == 0 {
						continue
					}
					for y2 := h.YInit; y2 <= y; y2++ {
						if qID, ok := q[ModeInfraKey{Year: y2, Mode: mode.ID, Element: e.ID}]; ok {
							terms = append(terms, lp.Term{Var: qID, Coef: -1})
						}
					}
					m.AddConstraint(terms, lp.LE, st.InstalledModeUkm(mode.ID, e.ID))
				}
			}
		}
	}
	emit(sets.QuadruplesEdge, vars.QModeEdge)
	emit(sets.QuadruplesNode, vars.QModeNode)
}

// emissionCoef returns the tCO2 emitted per unit of flow on a path for one
// mode-vehicle pair.
func emissionCoef(st *entity.Store, k FlowKey) float64 {
	h := st.Horizon
	p := st.PathByID(k.Triple.Path)
	if k.Pair.Vehicle.Kind == indexset.LevelizedMode {
		mode := st.ModeByID(k.Pair.Mode)
		return p.Length * mode.EmissionFactor[h.YearIdx(k.Year)] * 1e-6
	}
	tv := st.TechVehicleByID(k.Pair.Vehicle.ID)
	gi := h.VintageIdx(k.Vintage)
	perKm := tv.SpecConsumption[gi] * tv.Technology.Fuel.EmissionFactor // gCO2/km
	return p.Length * perKm / tv.LoadFactor[gi] * 1e-6
}

// emitEmissionLimits caps yearly emissions, in total or per mode.
func emitEmissionLimits(m *lp.Model, st *entity.Store, vars *Variables) {
	for _, lim := range st.EmissionLimits {
		var terms []lp.Term
		for _, k := range vars.FlowKeys {
			if k.Year != lim.Year {
				continue
			}
			if lim.Mode != nil && k.Pair.Mode != lim.Mode.ID {
				continue
			}
			terms = append(terms, lp.Term{Var: vars.F[k], Coef: emissionCoef(st, k)})
		}
		if len(terms) == 0 {
			continue
		}
		m.AddConstraint(terms, lp.LE, lim.Limit)
	}
}

// emitShareRow emits one share bound over total flow: flows selected by
// matches get coefficient 1-share, the rest -share, so the row is the
// selected share minus the bound times the total. Year 0 aggregates the
// whole horizon.
func emitShareRow(m *lp.Model, vars *Variables, year int, share float64, dir entity.ShareDir, matches func(FlowKey) bool) {
	var terms []lp.Term
	for _, k := range vars.FlowKeys {
		if year != 0 && k.Year != year {
			continue
		}
		if matches(k) {
			terms = append(terms, lp.Term{Var: vars.F[k], Coef: 1 - share})
		} else {
			terms = append(terms, lp.Term{Var: vars.F[k], Coef: -share})
		}
	}
	if len(terms) == 0 {
		return
	}
	sense := lp.LE
	if dir == entity.ShareMin {
		sense = lp.GE
	}
	m.AddConstraint(terms, sense, 0)
}

// emitModeShareBounds bounds one mode's share of total flow, for a single
// year or over the whole horizon.
func emitModeShareBounds(m *lp.Model, st *entity.Store, vars *Variables) {
	for _, b := range st.ModeShareBounds {
		mode := b.Mode
		emitShareRow(m, vars, b.Year, b.Share, b.Dir, func(k FlowKey) bool {
			return k.Pair.Mode == mode.ID
		})
	}
}

// emitTechShareBounds bounds one drivetrain technology's share of total
// flow. Levelized flows carry no technology and only count in the total.
func emitTechShareBounds(m *lp.Model, st *entity.Store, vars *Variables) {
	for _, b := range st.TechnologyShareBounds {
		tech := b.Technology
		emitShareRow(m, vars, b.Year, b.Share, b.Dir, func(k FlowKey) bool {
			if k.Pair.Vehicle.Kind == indexset.LevelizedMode {
				return false
			}
			return st.TechVehicleByID(k.Pair.Vehicle.ID).Technology.ID == tech.ID
		})
	}
}

// emitVehicleTypeShareBounds bounds one vehicle type's share of total flow.
func emitVehicleTypeShareBounds(m *lp.Model, st *entity.Store, vars *Variables) {
	for _, b := range st.VehicleTypeShareBounds {
		vt := b.VehicleType
		emitShareRow(m, vars, b.Year, b.Share, b.Dir, func(k FlowKey) bool {
			if k.Pair.Vehicle.Kind == indexset.LevelizedMode {
				return false
			}
			return st.TechVehicleByID(k.Pair.Vehicle.ID).VehicleType.ID == vt.ID
		})
	}
}
