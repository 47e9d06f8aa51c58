// Package export turns a solved model into tabular result files, one per
// variable family.
package export

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lmeyrat/transopt/core/assemble"
	"github.com/lmeyrat/transopt/core/lp"
	"github.com/lmeyrat/transopt/core/solver"
)

// Values below this magnitude are numerical noise and excluded from the
// result tables.
const zeroTol = 1e-9

// FleetRecord is one row of the fleet table: the cohort's stock and its
// year-over-year movements.
type FleetRecord struct {
	Year      int     `yaml:"year"`
	Route     int     `yaml:"route"`
	Vehicle   int     `yaml:"vehicle"`
	Vintage   int     `yaml:"vintage"`
	Stock     float64 `yaml:"stock"`
	Purchased float64 `yaml:"purchased"`
	Retired   float64 `yaml:"retired"`
	Existing  float64 `yaml:"existing"`
}

// FlowRecord is one row of the flow table.
type FlowRecord struct {
	Year    int     `yaml:"year"`
	Product int     `yaml:"product"`
	Route   int     `yaml:"route"`
	Path    int     `yaml:"path"`
	Vehicle string  `yaml:"vehicle"`
	Vintage int     `yaml:"vintage"`
	Flow    float64 `yaml:"flow"`
}

// FuelingRecord is one row of the fueling demand table.
type FuelingRecord struct {
	Year    int     `yaml:"year"`
	Product int     `yaml:"product"`
	Route   int     `yaml:"route"`
	Path    int     `yaml:"path"`
	Element int     `yaml:"element"`
	Vehicle int     `yaml:"vehicle"`
	Energy  float64 `yaml:"energy_kwh"`
}

// InfraRecord is one row of the fueling infrastructure table.
type InfraRecord struct {
	Year       int     `yaml:"year"`
	Technology int     `yaml:"technology"`
	Element    int     `yaml:"element"`
	AddedKW    float64 `yaml:"added_kw"`
}

// ModeInfraRecord is one row of the mode infrastructure table.
type ModeInfraRecord struct {
	Year     int     `yaml:"year"`
	Mode     int     `yaml:"mode"`
	Element  int     `yaml:"element"`
	AddedUkm float64 `yaml:"added_ukm"`
}

// BudgetRecord is one row of the budget slack table.
type BudgetRecord struct {
	Year      int     `yaml:"year"`
	Route     int     `yaml:"route"`
	Overrun   float64 `yaml:"overrun"`
	Shortfall float64 `yaml:"shortfall"`
}

// Plan is the complete solved result, ready for serialization.
type Plan struct {
	Status    string            `yaml:"status"`
	Objective float64           `yaml:"objective"`
	Fleet     []FleetRecord     `yaml:"fleet"`
	Flows     []FlowRecord      `yaml:"flows"`
	Fueling   []FuelingRecord   `yaml:"fueling"`
	Infra     []InfraRecord     `yaml:"infrastructure"`
	ModeInfra []ModeInfraRecord `yaml:"mode_infrastructure"`
	Budget    []BudgetRecord    `yaml:"budget"`
}

// Collect reads the solved values back through the variable maps and builds
// the result tables in deterministic row order. Rows where every value is
// numerical noise are dropped.
func Collect(res *assemble.Result, sol solver.Solution) *Plan {
	p := &Plan{Status: sol.Status.String(), Objective: sol.Objective}

	for k, id := range res.Vars.H {
		r := FleetRecord{
			Year: k.Year, Route: k.Route, Vehicle: k.Vehicle, Vintage: k.Vintage,
			Stock:     sol.Value(id),
			Purchased: sol.Value(res.Vars.HPlus[k]),
			Retired:   sol.Value(res.Vars.HMinus[k]),
			Existing:  sol.Value(res.Vars.HExist[k]),
		}
		if r.Stock > zeroTol || r.Purchased > zeroTol || r.Retired > zeroTol || r.Existing > zeroTol {
			p.Fleet = append(p.Fleet, r)
		}
	}
	sort.Slice(p.Fleet, func(i, j int) bool { return fleetLess(p.Fleet[i], p.Fleet[j]) })

	for k, id := range res.Vars.F {
		v := sol.Value(id)
		if v <= zeroTol {
			continue
		}
		p.Flows = append(p.Flows, FlowRecord{
			Year: k.Year, Product: k.Triple.Product, Route: k.Triple.Route,
			Path: k.Triple.Path, Vehicle: k.Pair.Vehicle.String(), Vintage: k.Vintage, Flow: v,
		})
	}
	sort.Slice(p.Flows, func(i, j int) bool { return flowLess(p.Flows[i], p.Flows[j]) })

	p.Fueling = collectFuelingRecords(res, sol)
	p.Infra = collectInfraRecords(res, sol)
	p.ModeInfra = collectModeInfraRecords(res, sol)
	p.Budget = collectBudgetRecords(res, sol)
	return p
}

func collectFuelingRecords(res *assemble.Result, sol solver.Solution) []FuelingRecord {
	var out []FuelingRecord
	add := func(vars map[assemble.FuelKey]lp.VarID) {
		for k, id := range vars {
			v := sol.Value(id)
			if v <= zeroTol {
				continue
			}
			out = append(out, FuelingRecord{
				Year: k.Year, Product: k.Quad.Product, Route: k.Quad.Route,
				Path: k.Quad.Path, Element: k.Quad.Element, Vehicle: k.Vehicle, Energy: v,
			})
		}
	}
	add(res.Vars.SEdge)
	add(res.Vars.SNode)
	sort.Slice(out, func(i, j int) bool { return fuelingLess(out[i], out[j]) })
	return out
}

func collectInfraRecords(res *assemble.Result, sol solver.Solution) []InfraRecord {
	var out []InfraRecord
	add := func(vars map[assemble.InfraKey]lp.VarID) {
		for k, id := range vars {
			v := sol.Value(id)
			if v <= zeroTol {
				continue
			}
			out = append(out, InfraRecord{Year: k.Year, Technology: k.Technology, Element: k.Element, AddedKW: v})
		}
	}
	add(res.Vars.QEdge)
	add(res.Vars.QNode)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Technology != b.Technology {
			return a.Technology < b.Technology
		}
		return a.Element < b.Element
	})
	return out
}

func collectModeInfraRecords(res *assemble.Result, sol solver.Solution) []ModeInfraRecord {
	var out []ModeInfraRecord
	add := func(vars map[assemble.ModeInfraKey]lp.VarID) {
		for k, id := range vars {
			v := sol.Value(id)
			if v <= zeroTol {
				continue
			}
			out = append(out, ModeInfraRecord{Year: k.Year, Mode: k.Mode, Element: k.Element, AddedUkm: v})
		}
	}
	add(res.Vars.QModeEdge)
	add(res.Vars.QModeNode)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Mode != b.Mode {
			return a.Mode < b.Mode
		}
		return a.Element < b.Element
	})
	return out
}

func collectBudgetRecords(res *assemble.Result, sol solver.Solution) []BudgetRecord {
	var out []BudgetRecord
	for k, id := range res.Vars.BudgetPlus {
		over := sol.Value(id)
		short := sol.Value(res.Vars.BudgetMinus[k])
		if over <= zeroTol && short <= zeroTol {
			continue
		}
		out = append(out, BudgetRecord{Year: k.Year, Route: k.Route, Overrun: over, Shortfall: short})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Route < b.Route
	})
	return out
}

func fleetLess(a, b FleetRecord) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.Route != b.Route {
		return a.Route < b.Route
	}
	if a.Vehicle != b.Vehicle {
		return a.Vehicle < b.Vehicle
	}
	return a.Vintage < b.Vintage
}

func flowLess(a, b FlowRecord) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.Route != b.Route {
		return a.Route < b.Route
	}
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	if a.Vehicle != b.Vehicle {
		return a.Vehicle < b.Vehicle
	}
	return a.Vintage < b.Vintage
}

func fuelingLess(a, b FuelingRecord) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.Route != b.Route {
		return a.Route < b.Route
	}
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	if a.Element != b.Element {
		return a.Element < b.Element
	}
	return a.Vehicle < b.Vehicle
}

// WriteYAML writes the whole plan to w in YAML format.
func WriteYAML(w io.Writer, p *Plan) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	return enc.Encode(p)
}

// WriteFleetCSV writes the fleet table to w.
func WriteFleetCSV(w io.Writer, recs []FleetRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"year", "route", "vehicle", "vintage", "stock", "purchased", "retired", "existing"}); err != nil {
		return err
	}
	for _, r := range recs {
		rec := []string{
			strconv.Itoa(r.Year), strconv.Itoa(r.Route), strconv.Itoa(r.Vehicle), strconv.Itoa(r.Vintage),
			fmtF(r.Stock), fmtF(r.Purchased), fmtF(r.Retired), fmtF(r.Existing),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFlowCSV writes the flow table to w.
func WriteFlowCSV(w io.Writer, recs []FlowRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"year", "product", "route", "path", "vehicle", "vintage", "flow"}); err != nil {
		return err
	}
	for _, r := range recs {
		rec := []string{
			strconv.Itoa(r.Year), strconv.Itoa(r.Product), strconv.Itoa(r.Route), strconv.Itoa(r.Path),
			r.Vehicle, strconv.Itoa(r.Vintage), fmtF(r.Flow),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFuelingCSV writes the fueling demand table to w.
func WriteFuelingCSV(w io.Writer, recs []FuelingRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"year", "product", "route", "path", "element", "vehicle", "energy_kwh"}); err != nil {
		return err
	}
	for _, r := range recs {
		rec := []string{
			strconv.Itoa(r.Year), strconv.Itoa(r.Product), strconv.Itoa(r.Route), strconv.Itoa(r.Path),
			strconv.Itoa(r.Element), strconv.Itoa(r.Vehicle), fmtF(r.Energy),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtF(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
