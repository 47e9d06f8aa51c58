package assemble

import (
	"github.com/lmeyrat/transopt/core/entity"
	"github.com/lmeyrat/transopt/core/lp"
)

// Regime classifies one (year, vintage, route, vehicle) tuple of the
// triangular domain into exactly one stock-accounting case. The discriminant
// is computed once per tuple and dispatched through a single switch, so no
// tuple can receive the constraints of two regimes.
type Regime int

const (
	// RegimeRetired: the cohort is beyond end-of-life; no residual stock or
	// flow.
	RegimeRetired Regime = iota
	// RegimeEndOfLifeSeed: the cohort reaches its lifetime in the first
	// horizon year; existing stock comes from the initial vehicle stock.
	RegimeEndOfLifeSeed
	// RegimeEndOfLifeCarry: the cohort reaches its lifetime in a later year
	// and carries last year's closing stock.
	RegimeEndOfLifeCarry
	// RegimeEndOfLifeOrphan: the cohort reaches its lifetime with no usable
	// prior-year reference (zero-lifetime purchases after the first year).
	RegimeEndOfLifeOrphan
	// RegimeNew: the cohort is purchased this year.
	RegimeNew
	// RegimeSeed: a mid-life cohort in the first horizon year, seeded from
	// the initial vehicle stock.
	RegimeSeed
	// RegimeMidLife: a mid-life cohort carrying forward last year's stock
	// net of this year's retirements.
	RegimeMidLife
)

func (r Regime) String() string {
	switch r {
	case RegimeRetired:
		return "retired"
	case RegimeEndOfLifeSeed:
		return "end-of-life-seed"
	case RegimeEndOfLifeCarry:
		return "end-of-life-carry"
	case RegimeEndOfLifeOrphan:
		return "end-of-life-orphan"
	case RegimeNew:
		return "new"
	case RegimeSeed:
		return "seed"
	default:
		return "mid-life"
	}
}

// Classify maps one triangular tuple to its regime. Priority: retirement
// beats end-of-life, end-of-life beats new purchase, new purchase beats the
// mid-life cases. A prior-year stock reference exists iff y-1 >= yInit and
// g <= y-1.
func Classify(yInit, y, g, lifetime int) Regime {
	age := y - g
	switch {
	case age > lifetime:
		return RegimeRetired
	case age == lifetime:
		if y == yInit {
			return RegimeEndOfLifeSeed
		}
		if g <= y-1 {
			return RegimeEndOfLifeCarry
		}
		return RegimeEndOfLifeOrphan
	case g == y:
		return RegimeNew
	case y == yInit:
		return RegimeSeed
	default:
		return RegimeMidLife
	}
}

// emitAging walks the triangular fleet domain and emits, per tuple, the
// stock identity and closure constraints of its regime.
//
// The mid-life carry-forward h_exist[y] = h[y-1] - h_minus[y] subtracts this
// year's retirements that the h = h_exist - h_minus identity subtracts
// again. This reproduces the reference accounting as-is; see DESIGN.md
// before changing the formula.
func emitAging(m *lp.Model, st *entity.Store, vars *Variables) {
	h := st.Horizon
	for y := h.YInit; y <= h.YEnd(); y++ {
		for _, od := range st.Odpairs {
			for _, tv := range st.TechVehicles {
				// Vehicles of levelized modes carry no stock; their fleet
				// variables are zeroed by the fleet sizing builder instead.
				if !tv.VehicleType.Mode.SizedByFleet {
					continue
				}
				for g := h.GInit(); g <= y; g++ {
					k := FleetKey{Year: y, Route: od.ID, Vehicle: tv.ID, Vintage: g}
					hID, hpID, hmID, hxID := vars.H[k], vars.HPlus[k], vars.HMinus[k], vars.HExist[k]

					switch Classify(h.YInit, y, g, st.Lifetime(tv, g)) {
					case RegimeRetired:
						for _, id := range []lp.VarID{hID, hxID, hpID, hmID} {
							m.AddConstraint([]lp.Term{{Var: id, Coef: 1}}, lp.EQ, 0)
						}
					case RegimeEndOfLifeSeed:
						emitStockIdentity(m, hID, hxID, hmID, hpID)
						m.AddConstraint([]lp.Term{{Var: hxID, Coef: 1}}, lp.EQ, st.InitialStock(od, tv.ID, g))
					case RegimeEndOfLifeCarry:
						emitStockIdentity(m, hID, hxID, hmID, hpID)
						prev := vars.H[FleetKey{Year: y - 1, Route: od.ID, Vehicle: tv.ID, Vintage: g}]
						m.AddConstraint([]lp.Term{{Var: hxID, Coef: 1}, {Var: prev, Coef: -1}}, lp.EQ, 0)
					case RegimeEndOfLifeOrphan:
						emitStockIdentity(m, hID, hxID, hmID, hpID)
						m.AddConstraint([]lp.Term{{Var: hxID, Coef: 1}}, lp.EQ, 0)
					case RegimeNew:
						m.AddConstraint([]lp.Term{{Var: hID, Coef: 1}, {Var: hpID, Coef: -1}}, lp.EQ, 0)
						m.AddConstraint([]lp.Term{{Var: hxID, Coef: 1}}, lp.EQ, 0)
						m.AddConstraint([]lp.Term{{Var: hmID, Coef: 1}}, lp.EQ, 0)
					case RegimeSeed:
						emitStockIdentity(m, hID, hxID, hmID, hpID)
						m.AddConstraint([]lp.Term{{Var: hxID, Coef: 1}}, lp.EQ, st.InitialStock(od, tv.ID, g))
					case RegimeMidLife:
						emitStockIdentity(m, hID, hxID, hmID, hpID)
						prev := vars.H[FleetKey{Year: y - 1, Route: od.ID, Vehicle: tv.ID, Vintage: g}]
						m.AddConstraint([]lp.Term{{Var: hxID, Coef: 1}, {Var: prev, Coef: -1}, {Var: hmID, Coef: 1}}, lp.EQ, 0)
					}
				}
			}
		}
	}
}

// emitStockIdentity emits h = h_exist - h_minus with no purchases this year.
func emitStockIdentity(m *lp.Model, h, hx, hm, hp lp.VarID) {
	m.AddConstraint([]lp.Term{{Var: h, Coef: 1}, {Var: hx, Coef: -1}, {Var: hm, Coef: 1}}, lp.EQ, 0)
	m.AddConstraint([]lp.Term{{Var: hp, Coef: 1}}, lp.EQ, 0)
}
