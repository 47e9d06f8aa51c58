package assemble

import (
	"fmt"
	"math"

	"github.com/lmeyrat/transopt/core/entity"
	"github.com/lmeyrat/transopt/core/indexset"
	"github.com/lmeyrat/transopt/core/lp"
)

// FleetKey indexes the fleet variables h, h_plus, h_minus and h_exist.
// Vintage <= Year always holds (triangular domain).
type FleetKey struct {
	Year, Route, Vehicle, Vintage int
}

// FlowKey indexes the flow variable f.
type FlowKey struct {
	Year    int
	Triple  indexset.ProductRoutePath
	Pair    indexset.ModeVehicle
	Vintage int
}

// FuelKey indexes the fueling demand variables s_edge and s_node.
type FuelKey struct {
	Year    int
	Quad    indexset.Quadruple
	Vehicle int
}

// InfraKey indexes the fueling infrastructure addition variables.
type InfraKey struct {
	Year, Technology, Element int
}

// ModeInfraKey indexes the mode infrastructure addition variables.
type ModeInfraKey struct {
	Year, Mode, Element int
}

// BudgetKey indexes the budget penalty pair.
type BudgetKey struct {
	Year, Route int
}

// Variables maps every index tuple to its declared decision variable. The
// maps are populated only over the filtered index sets, never over the
// dense product of the dimensions. The *Keys slices hold each family's
// tuples in declaration order so builders that walk a whole family emit
// identical rows on every run.
type Variables struct {
	H      map[FleetKey]lp.VarID
	HPlus  map[FleetKey]lp.VarID
	HMinus map[FleetKey]lp.VarID
	HExist map[FleetKey]lp.VarID

	F map[FlowKey]lp.VarID

	SEdge map[FuelKey]lp.VarID
	SNode map[FuelKey]lp.VarID

	QEdge map[InfraKey]lp.VarID
	QNode map[InfraKey]lp.VarID

	QModeEdge map[ModeInfraKey]lp.VarID
	QModeNode map[ModeInfraKey]lp.VarID

	BudgetPlus  map[BudgetKey]lp.VarID
	BudgetMinus map[BudgetKey]lp.VarID

	FleetKeys     []FleetKey // shared by H, HPlus, HMinus, HExist
	FlowKeys      []FlowKey
	SEdgeKeys     []FuelKey
	SNodeKeys     []FuelKey
	QEdgeKeys     []InfraKey
	QNodeKeys     []InfraKey
	QModeEdgeKeys []ModeInfraKey
	QModeNodeKeys []ModeInfraKey
	BudgetKeys    []BudgetKey
}

// declareVariables populates the model's variable space over the derived
// index sets and the triangular (year, vintage) domain.
func declareVariables(m *lp.Model, st *entity.Store, sets *indexset.Sets) *Variables {
	v := &Variables{
		H:           make(map[FleetKey]lp.VarID),
		HPlus:       make(map[FleetKey]lp.VarID),
		HMinus:      make(map[FleetKey]lp.VarID),
		HExist:      make(map[FleetKey]lp.VarID),
		F:           make(map[FlowKey]lp.VarID),
		SEdge:       make(map[FuelKey]lp.VarID),
		SNode:       make(map[FuelKey]lp.VarID),
		QEdge:       make(map[InfraKey]lp.VarID),
		QNode:       make(map[InfraKey]lp.VarID),
		QModeEdge:   make(map[ModeInfraKey]lp.VarID),
		QModeNode:   make(map[ModeInfraKey]lp.VarID),
		BudgetPlus:  make(map[BudgetKey]lp.VarID),
		BudgetMinus: make(map[BudgetKey]lp.VarID),
	}

	h := st.Horizon
	inf := math.Inf(1)

	for y := h.YInit; y <= h.YEnd(); y++ {
		for _, od := range st.Odpairs {
			for _, tv := range st.TechVehicles {
				for g := h.GInit(); g <= y; g++ {
					k := FleetKey{Year: y, Route: od.ID, Vehicle: tv.ID, Vintage: g}
					v.FleetKeys = append(v.FleetKeys, k)
					v.H[k] = m.AddVariable(fmt.Sprintf("h[%d,r%d,tv%d,g%d]", y, od.ID, tv.ID, g), 0, inf)
					v.HPlus[k] = m.AddVariable(fmt.Sprintf("h_plus[%d,r%d,tv%d,g%d]", y, od.ID, tv.ID, g), 0, inf)
					v.HMinus[k] = m.AddVariable(fmt.Sprintf("h_minus[%d,r%d,tv%d,g%d]", y, od.ID, tv.ID, g), 0, inf)
					v.HExist[k] = m.AddVariable(fmt.Sprintf("h_exist[%d,r%d,tv%d,g%d]", y, od.ID, tv.ID, g), 0, inf)
				}
			}
		}
	}

	for y := h.YInit; y <= h.YEnd(); y++ {
		for _, prk := range sets.Triples {
			for _, pair := range sets.ModeVehiclePairs {
				if !pairServes(st, pair, prk.Product) {
					continue
				}
				for g := h.GInit(); g <= y; g++ {
					k := FlowKey{Year: y, Triple: prk, Pair: pair, Vintage: g}
					v.FlowKeys = append(v.FlowKeys, k)
					v.F[k] = m.AddVariable(fmt.Sprintf("f[%d,p%d,r%d,k%d,%s,g%d]", y, prk.Product, prk.Route, prk.Path, pair.Vehicle, g), 0, inf)
				}
			}
		}
	}

	declareFueling := func(quads []indexset.Quadruple, out map[FuelKey]lp.VarID, keys *[]FuelKey, tag string) {
		for y := h.YInit; y <= h.YEnd(); y++ {
			for _, q := range quads {
				for _, tv := range st.TechVehicles {
					if !tv.VehicleType.CanCarry(q.Product) {
						continue
					}
					k := FuelKey{Year: y, Quad: q, Vehicle: tv.ID}
					*keys = append(*keys, k)
					out[k] = m.AddVariable(fmt.Sprintf("%s[%d,p%d,r%d,k%d,e%d,tv%d]", tag, y, q.Product, q.Route, q.Path, q.Element, tv.ID), 0, inf)
				}
			}
		}
	}
	declareFueling(sets.QuadruplesEdge, v.SEdge, &v.SEdgeKeys, "s_edge")
	declareFueling(sets.QuadruplesNode, v.SNode, &v.SNodeKeys, "s_node")

	for y := h.YInit; y <= h.YEnd(); y++ {
		for _, t := range st.Technologies {
			for _, e := range st.Elements {
				k := InfraKey{Year: y, Technology: t.ID, Element: e.ID}
				if e.Kind == entity.KindEdge {
					v.QEdgeKeys = append(v.QEdgeKeys, k)
					v.QEdge[k] = m.AddVariable(fmt.Sprintf("q_edge[%d,t%d,e%d]", y, t.ID, e.ID), 0, inf)
				} else {
					v.QNodeKeys = append(v.QNodeKeys, k)
					v.QNode[k] = m.AddVariable(fmt.Sprintf("q_node[%d,t%d,e%d]", y, t.ID, e.ID), 0, inf)
				}
			}
		}
		for _, mo := range st.Modes {
			for _, e := range st.Elements {
				k := ModeInfraKey{Year: y, Mode: mo.ID, Element: e.ID}
				if e.Kind == entity.KindEdge {
					v.QModeEdgeKeys = append(v.QModeEdgeKeys, k)
					v.QModeEdge[k] = m.AddVariable(fmt.Sprintf("q_mode_edge[%d,m%d,e%d]", y, mo.ID, e.ID), 0, inf)
				} else {
					v.QModeNodeKeys = append(v.QModeNodeKeys, k)
					v.QModeNode[k] = m.AddVariable(fmt.Sprintf("q_mode_node[%d,m%d,e%d]", y, mo.ID, e.ID), 0, inf)
				}
			}
		}
		for _, od := range st.Odpairs {
			k := BudgetKey{Year: y, Route: od.ID}
			v.BudgetKeys = append(v.BudgetKeys, k)
			v.BudgetPlus[k] = m.AddVariable(fmt.Sprintf("budget_plus[%d,r%d]", y, od.ID), 0, inf)
			v.BudgetMinus[k] = m.AddVariable(fmt.Sprintf("budget_minus[%d,r%d]", y, od.ID), 0, inf)
		}
	}

	return v
}

// pairServes reports whether a mode-vehicle pair can carry a product. Real
// vehicles are restricted by their vehicle type; levelized placeholders
// serve any product of their mode's routes.
func pairServes(st *entity.Store, pair indexset.ModeVehicle, productID int) bool {
	if pair.Vehicle.Kind == indexset.LevelizedMode {
		return true
	}
	return st.TechVehicleByID(pair.Vehicle.ID).VehicleType.CanCarry(productID)
}
