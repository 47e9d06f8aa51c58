package entity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lmeyrat/transopt/config"
)

// ErrReference marks a cross-reference that cannot be resolved against the
// store. ErrDomainSize marks a series or array too short for the horizon.
// Both are fatal: no model is assembled from a store that failed to build.
var (
	ErrReference  = errors.New("unresolved reference")
	ErrDomainSize = errors.New("series shorter than required span")
)

// Store owns every domain entity. Entities are built once from a validated
// case document and never mutated afterwards; downstream components hold
// references, never copies.
type Store struct {
	Horizon Horizon

	Elements               []*GeographicElement
	Paths                  []*Path
	Products               []*Product
	Modes                  []*Mode
	Fuels                  []*Fuel
	Technologies           []*Technology
	VehicleTypes           []*VehicleType
	TechVehicles           []*TechVehicle
	FinancialStatuses      []*FinancialStatus
	Regiontypes            []*Regiontype
	Odpairs                []*Odpair
	InitialFuelingInfr     []*InitialFuelingInfr
	InitialModeInfr        []*InitialModeInfr
	EmissionLimits         []*EmissionLimit
	ModeShareBounds        []*ModeShareBound
	TechnologyShareBounds  []*TechnologyShareBound
	VehicleTypeShareBounds []*VehicleTypeShareBound
	VehicleSubsidies       []*VehicleSubsidy

	elementByID     map[int]*GeographicElement
	pathByID        map[int]*Path
	productByID     map[int]*Product
	modeByID        map[int]*Mode
	fuelByID        map[int]*Fuel
	technologyByID  map[int]*Technology
	vehicleTypeByID map[int]*VehicleType
	techVehicleByID map[int]*TechVehicle
	fsByID          map[int]*FinancialStatus
	regiontypeByID  map[int]*Regiontype
}

// NewStore resolves the case document into cross-referenced entities and
// validates every referential and domain-size invariant. Any failure aborts
// the build before a single variable is declared.
func NewStore(c *config.Case) (*Store, error) {
	h := Horizon{
		YInit:             c.Model.YInit,
		Years:             c.Model.Years,
		PreYears:          c.Model.PreYears,
		AlphaMode:         c.Model.AlphaMode,
		BetaMode:          c.Model.BetaMode,
		AlphaTech:         c.Model.AlphaTech,
		BetaTech:          c.Model.BetaTech,
		InfraSizingFactor: c.Model.InfraSizingFactor,
		DiscountRate:      c.Model.DiscountRate,
	}
	s := &Store{
		Horizon:         h,
		elementByID:     make(map[int]*GeographicElement),
		pathByID:        make(map[int]*Path),
		productByID:     make(map[int]*Product),
		modeByID:        make(map[int]*Mode),
		fuelByID:        make(map[int]*Fuel),
		technologyByID:  make(map[int]*Technology),
		vehicleTypeByID: make(map[int]*VehicleType),
		techVehicleByID: make(map[int]*TechVehicle),
		fsByID:          make(map[int]*FinancialStatus),
		regiontypeByID:  make(map[int]*Regiontype),
	}

	if err := s.buildElements(c); err != nil {
		return nil, err
	}
	if err := s.buildPaths(c); err != nil {
		return nil, err
	}
	s.buildProducts(c)
	if err := s.buildModes(c); err != nil {
		return nil, err
	}
	if err := s.buildFuels(c); err != nil {
		return nil, err
	}
	if err := s.buildTechnologies(c); err != nil {
		return nil, err
	}
	if err := s.buildVehicleTypes(c); err != nil {
		return nil, err
	}
	if err := s.buildTechVehicles(c); err != nil {
		return nil, err
	}
	if err := s.buildSegments(c); err != nil {
		return nil, err
	}
	if err := s.buildOdpairs(c); err != nil {
		return nil, err
	}
	if err := s.buildInfrastructure(c); err != nil {
		return nil, err
	}
	if err := s.buildPolicies(c); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) buildElements(c *config.Case) error {
	// Nodes first so that edges can resolve their endpoints regardless of
	// record order.
	for _, r := range c.GeographicElements {
		if r.Kind != "node" {
			continue
		}
		if err := s.checkSeries(r.CarbonPrice, fmt.Sprintf("geographic element %d: carbon_price", r.ID)); err != nil {
			return err
		}
		e := &GeographicElement{ID: r.ID, Kind: KindNode, Name: r.Name, CarbonPrice: r.CarbonPrice}
		s.Elements = append(s.Elements, e)
		s.elementByID[e.ID] = e
	}
	for _, r := range c.GeographicElements {
		switch r.Kind {
		case "node":
			continue
		case "edge":
		default:
			return fmt.Errorf("geographic element %d: kind must be node or edge, got %q", r.ID, r.Kind)
		}
		if err := s.checkSeries(r.CarbonPrice, fmt.Sprintf("geographic element %d: carbon_price", r.ID)); err != nil {
			return err
		}
		from, ok := s.elementByID[r.From]
		if !ok {
			return fmt.Errorf("%w: edge %d references unknown node %d", ErrReference, r.ID, r.From)
		}
		to, ok := s.elementByID[r.To]
		if !ok {
			return fmt.Errorf("%w: edge %d references unknown node %d", ErrReference, r.ID, r.To)
		}
		if r.Length <= 0 {
			return fmt.Errorf("edge %d: length must be positive", r.ID)
		}
		e := &GeographicElement{ID: r.ID, Kind: KindEdge, Name: r.Name, CarbonPrice: r.CarbonPrice, Length: r.Length, From: from, To: to}
		s.Elements = append(s.Elements, e)
		s.elementByID[e.ID] = e
	}
	sortByID(s.Elements, func(e *GeographicElement) int { return e.ID })
	return nil
}

func (s *Store) buildPaths(c *config.Case) error {
	for _, r := range c.Paths {
		if len(r.Sequence) == 0 {
			return fmt.Errorf("path %d: empty sequence", r.ID)
		}
		seq := make([]*GeographicElement, len(r.Sequence))
		for i, id := range r.Sequence {
			e, ok := s.elementByID[id]
			if !ok {
				return fmt.Errorf("%w: path %d references unknown geographic element %d", ErrReference, r.ID, id)
			}
			seq[i] = e
		}
		p := &Path{ID: r.ID, Name: r.Name, Sequence: seq, Length: r.Length}
		s.Paths = append(s.Paths, p)
		s.pathByID[p.ID] = p
	}
	sortByID(s.Paths, func(p *Path) int { return p.ID })
	return nil
}

func (s *Store) buildProducts(c *config.Case) {
	for _, r := range c.Products {
		p := &Product{ID: r.ID, Name: r.Name}
		s.Products = append(s.Products, p)
		s.productByID[p.ID] = p
	}
	sortByID(s.Products, func(p *Product) int { return p.ID })
}

func (s *Store) buildModes(c *config.Case) error {
	for _, r := range c.Modes {
		for name, series := range map[string][]float64{
			"cost_per_ukm":     r.CostPerUkm,
			"emission_factor":  r.EmissionFactor,
			"infra_build_cost": r.InfraBuildCost,
			"infra_om_cost":    r.InfraOMCost,
			"waiting_time":     r.WaitingTime,
		} {
			if err := s.checkSeries(series, fmt.Sprintf("mode %d: %s", r.ID, name)); err != nil {
				return err
			}
		}
		m := &Mode{
			ID: r.ID, Name: r.Name, SizedByFleet: r.SizedByFleet,
			CostPerUkm: r.CostPerUkm, EmissionFactor: r.EmissionFactor,
			InfraBuildCost: r.InfraBuildCost, InfraOMCost: r.InfraOMCost,
			WaitingTime: r.WaitingTime,
		}
		s.Modes = append(s.Modes, m)
		s.modeByID[m.ID] = m
	}
	sortByID(s.Modes, func(m *Mode) int { return m.ID })
	return nil
}

func (s *Store) buildFuels(c *config.Case) error {
	for _, r := range c.Fuels {
		for name, series := range map[string][]float64{
			"cost_per_kwh":  r.CostPerKWh,
			"cost_per_kw":   r.CostPerKW,
			"infra_om_cost": r.InfraOMCost,
		} {
			if err := s.checkSeries(series, fmt.Sprintf("fuel %d: %s", r.ID, name)); err != nil {
				return err
			}
		}
		f := &Fuel{ID: r.ID, Name: r.Name, EmissionFactor: r.EmissionFactor,
			CostPerKWh: r.CostPerKWh, CostPerKW: r.CostPerKW, InfraOMCost: r.InfraOMCost}
		s.Fuels = append(s.Fuels, f)
		s.fuelByID[f.ID] = f
	}
	sortByID(s.Fuels, func(f *Fuel) int { return f.ID })
	return nil
}

func (s *Store) buildTechnologies(c *config.Case) error {
	for _, r := range c.Technologies {
		f, ok := s.fuelByID[r.Fuel]
		if !ok {
			return fmt.Errorf("%w: technology %d references unknown fuel %d", ErrReference, r.ID, r.Fuel)
		}
		t := &Technology{ID: r.ID, Name: r.Name, Fuel: f}
		s.Technologies = append(s.Technologies, t)
		s.technologyByID[t.ID] = t
	}
	sortByID(s.Technologies, func(t *Technology) int { return t.ID })
	return nil
}

func (s *Store) buildVehicleTypes(c *config.Case) error {
	for _, r := range c.VehicleTypes {
		m, ok := s.modeByID[r.Mode]
		if !ok {
			return fmt.Errorf("%w: vehicle type %d references unknown mode %d", ErrReference, r.ID, r.Mode)
		}
		products := make([]*Product, len(r.Products))
		for i, pid := range r.Products {
			p, ok := s.productByID[pid]
			if !ok {
				return fmt.Errorf("%w: vehicle type %d references unknown product %d", ErrReference, r.ID, pid)
			}
			products[i] = p
		}
		vt := &VehicleType{ID: r.ID, Name: r.Name, Mode: m, Products: products}
		s.VehicleTypes = append(s.VehicleTypes, vt)
		s.vehicleTypeByID[vt.ID] = vt
	}
	sortByID(s.VehicleTypes, func(vt *VehicleType) int { return vt.ID })
	return nil
}

func (s *Store) buildTechVehicles(c *config.Case) error {
	span := s.Horizon.VintageSpan()
	for _, r := range c.TechVehicles {
		vt, ok := s.vehicleTypeByID[r.VehicleType]
		if !ok {
			return fmt.Errorf("%w: tech vehicle %d references unknown vehicle type %d", ErrReference, r.ID, r.VehicleType)
		}
		t, ok := s.technologyByID[r.Technology]
		if !ok {
			return fmt.Errorf("%w: tech vehicle %d references unknown technology %d", ErrReference, r.ID, r.Technology)
		}
		for name, arr := range map[string][]float64{
			"capital_cost":         r.CapitalCost,
			"maintenance_annual":   r.MaintenanceAnnual,
			"maintenance_distance": r.MaintenanceDistance,
			"load_factor":          r.LoadFactor,
			"spec_consumption":     r.SpecConsumption,
			"annual_range":         r.AnnualRange,
			"tank_capacity":        r.TankCapacity,
			"peak_fueling":         r.PeakFueling,
		} {
			if len(arr) < span {
				return fmt.Errorf("%w: tech vehicle %d: %s has %d entries, need %d", ErrDomainSize, r.ID, name, len(arr), span)
			}
		}
		if len(r.Lifetime) < span {
			return fmt.Errorf("%w: tech vehicle %d: lifetime has %d entries, need %d", ErrDomainSize, r.ID, len(r.Lifetime), span)
		}
		v := &TechVehicle{
			ID: r.ID, Name: r.Name, VehicleType: vt, Technology: t,
			CapitalCost: r.CapitalCost, MaintenanceAnnual: r.MaintenanceAnnual,
			MaintenanceDistance: r.MaintenanceDistance, LoadFactor: r.LoadFactor,
			SpecConsumption: r.SpecConsumption, Lifetime: r.Lifetime,
			AnnualRange: r.AnnualRange, TankCapacity: r.TankCapacity,
			PeakFueling: r.PeakFueling,
		}
		s.TechVehicles = append(s.TechVehicles, v)
		s.techVehicleByID[v.ID] = v
	}
	sortByID(s.TechVehicles, func(v *TechVehicle) int { return v.ID })
	return nil
}

func (s *Store) buildSegments(c *config.Case) error {
	for _, r := range c.FinancialStatuses {
		fs := &FinancialStatus{ID: r.ID, Name: r.Name, VoT: r.VoT,
			PurchaseBudgetLB: r.PurchaseBudgetLB, PurchaseBudgetUB: r.PurchaseBudgetUB}
		s.FinancialStatuses = append(s.FinancialStatuses, fs)
		s.fsByID[fs.ID] = fs
	}
	sortByID(s.FinancialStatuses, func(f *FinancialStatus) int { return f.ID })
	for _, r := range c.Regiontypes {
		if r.Speed <= 0 {
			return fmt.Errorf("regiontype %d: speed must be positive", r.ID)
		}
		if err := s.checkSeries(r.CostsVar, fmt.Sprintf("regiontype %d: costs_var", r.ID)); err != nil {
			return err
		}
		if err := s.checkSeries(r.CostsFix, fmt.Sprintf("regiontype %d: costs_fix", r.ID)); err != nil {
			return err
		}
		rt := &Regiontype{ID: r.ID, Name: r.Name, Speed: r.Speed, CostsVar: r.CostsVar, CostsFix: r.CostsFix}
		s.Regiontypes = append(s.Regiontypes, rt)
		s.regiontypeByID[rt.ID] = rt
	}
	sortByID(s.Regiontypes, func(r *Regiontype) int { return r.ID })
	return nil
}

func (s *Store) buildOdpairs(c *config.Case) error {
	gInit := s.Horizon.GInit()
	stockID := 0
	for _, r := range c.Odpairs {
		origin, ok := s.elementByID[r.Origin]
		if !ok {
			return fmt.Errorf("%w: odpair %d references unknown origin %d", ErrReference, r.ID, r.Origin)
		}
		dest, ok := s.elementByID[r.Destination]
		if !ok {
			return fmt.Errorf("%w: odpair %d references unknown destination %d", ErrReference, r.ID, r.Destination)
		}
		if len(r.Paths) == 0 {
			return fmt.Errorf("odpair %d: no paths defined", r.ID)
		}
		paths := make([]*Path, len(r.Paths))
		for i, pid := range r.Paths {
			p, ok := s.pathByID[pid]
			if !ok {
				return fmt.Errorf("%w: odpair %d references unknown path %d", ErrReference, r.ID, pid)
			}
			paths[i] = p
		}
		product, ok := s.productByID[r.Product]
		if !ok {
			return fmt.Errorf("%w: odpair %d references unknown product %d", ErrReference, r.ID, r.Product)
		}
		fs, ok := s.fsByID[r.FinancialStatus]
		if !ok {
			return fmt.Errorf("%w: odpair %d references unknown financial status %d", ErrReference, r.ID, r.FinancialStatus)
		}
		rt, ok := s.regiontypeByID[r.Regiontype]
		if !ok {
			return fmt.Errorf("%w: odpair %d references unknown regiontype %d", ErrReference, r.ID, r.Regiontype)
		}
		if err := s.checkSeries(r.Demand, fmt.Sprintf("odpair %d: demand", r.ID)); err != nil {
			return err
		}
		var stocks []*InitialVehicleStock
		for _, sr := range r.InitialStock {
			v, ok := s.techVehicleByID[sr.TechVehicle]
			if !ok {
				return fmt.Errorf("%w: odpair %d initial stock references unknown tech vehicle %d", ErrReference, r.ID, sr.TechVehicle)
			}
			if sr.Year < gInit || sr.Year >= s.Horizon.YInit {
				return fmt.Errorf("odpair %d: initial stock purchase year %d outside [%d, %d]", r.ID, sr.Year, gInit, s.Horizon.YInit-1)
			}
			if !v.VehicleType.Mode.SizedByFleet {
				return fmt.Errorf("odpair %d: initial stock for vehicle %d of mode %q, which is not fleet-sized", r.ID, v.ID, v.VehicleType.Mode.Name)
			}
			stockID++
			stocks = append(stocks, &InitialVehicleStock{ID: stockID, TechVehicle: v, YearOfPurchase: sr.Year, Stock: sr.Stock})
		}
		od := &Odpair{ID: r.ID, Origin: origin, Destination: dest, Paths: paths,
			Product: product, Demand: r.Demand, InitialStock: stocks,
			FinancialStatus: fs, Regiontype: rt}
		s.Odpairs = append(s.Odpairs, od)
	}
	sortByID(s.Odpairs, func(o *Odpair) int { return o.ID })
	return nil
}

func (s *Store) buildInfrastructure(c *config.Case) error {
	for _, r := range c.InitialFuelingInfr {
		t, ok := s.technologyByID[r.Technology]
		if !ok {
			return fmt.Errorf("%w: initial fueling infrastructure %d references unknown technology %d", ErrReference, r.ID, r.Technology)
		}
		e, ok := s.elementByID[r.Element]
		if !ok {
			return fmt.Errorf("%w: initial fueling infrastructure %d references unknown element %d", ErrReference, r.ID, r.Element)
		}
		s.InitialFuelingInfr = append(s.InitialFuelingInfr, &InitialFuelingInfr{ID: r.ID, Technology: t, Element: e, InstalledKW: r.InstalledKW})
	}
	for _, r := range c.InitialModeInfr {
		m, ok := s.modeByID[r.Mode]
		if !ok {
			return fmt.Errorf("%w: initial mode infrastructure %d references unknown mode %d", ErrReference, r.ID, r.Mode)
		}
		e, ok := s.elementByID[r.Element]
		if !ok {
			return fmt.Errorf("%w: initial mode infrastructure %d references unknown element %d", ErrReference, r.ID, r.Element)
		}
		s.InitialModeInfr = append(s.InitialModeInfr, &InitialModeInfr{ID: r.ID, Mode: m, Element: e, InstalledUkm: r.InstalledUkm})
	}
	return nil
}

func (s *Store) buildPolicies(c *config.Case) error {
	for _, r := range c.EmissionLimits {
		var m *Mode
		if r.Mode != 0 {
			var ok bool
			m, ok = s.modeByID[r.Mode]
			if !ok {
				return fmt.Errorf("%w: emission limit %d references unknown mode %d", ErrReference, r.ID, r.Mode)
			}
		}
		if r.Year < s.Horizon.YInit || r.Year > s.Horizon.YEnd() {
			return fmt.Errorf("emission limit %d: year %d outside horizon", r.ID, r.Year)
		}
		s.EmissionLimits = append(s.EmissionLimits, &EmissionLimit{ID: r.ID, Mode: m, Year: r.Year, Limit: r.Limit})
	}
	for _, r := range c.ModeShareBounds {
		m, ok := s.modeByID[r.Mode]
		if !ok {
			return fmt.Errorf("%w: mode share bound %d references unknown mode %d", ErrReference, r.ID, r.Mode)
		}
		s.ModeShareBounds = append(s.ModeShareBounds, &ModeShareBound{ID: r.ID, Mode: m, Share: r.Share, Dir: shareDir(r.Dir), Year: r.Year})
	}
	for _, r := range c.TechnologyShareBounds {
		tech, ok := s.technologyByID[r.Technology]
		if !ok {
			return fmt.Errorf("%w: technology share bound %d references unknown technology %d", ErrReference, r.ID, r.Technology)
		}
		s.TechnologyShareBounds = append(s.TechnologyShareBounds, &TechnologyShareBound{ID: r.ID, Technology: tech, Share: r.Share, Dir: shareDir(r.Dir), Year: r.Year})
	}
	for _, r := range c.VehicleTypeShareBounds {
		vt, ok := s.vehicleTypeByID[r.VehicleType]
		if !ok {
			return fmt.Errorf("%w: vehicle type share bound %d references unknown vehicle type %d", ErrReference, r.ID, r.VehicleType)
		}
		s.VehicleTypeShareBounds = append(s.VehicleTypeShareBounds, &VehicleTypeShareBound{ID: r.ID, VehicleType: vt, Share: r.Share, Dir: shareDir(r.Dir), Year: r.Year})
	}
	for _, r := range c.VehicleSubsidies {
		v, ok := s.techVehicleByID[r.TechVehicle]
		if !ok {
			return fmt.Errorf("%w: vehicle subsidy %d references unknown tech vehicle %d", ErrReference, r.ID, r.TechVehicle)
		}
		s.VehicleSubsidies = append(s.VehicleSubsidies, &VehicleSubsidy{ID: r.ID, Name: r.Name, Years: r.Years, TechVehicle: v, Amount: r.Amount})
	}
	return nil
}

func shareDir(dir string) ShareDir {
	if dir == "min" {
		return ShareMin
	}
	return ShareMax
}

func (s *Store) checkSeries(series []float64, what string) error {
	if len(series) < s.Horizon.Years {
		return fmt.Errorf("%w: %s has %d entries, need %d", ErrDomainSize, what, len(series), s.Horizon.Years)
	}
	return nil
}

// Lifetime returns the lifetime of a vehicle cohort purchased in vintage g.
func (s *Store) Lifetime(v *TechVehicle, g int) int {
	return v.Lifetime[s.Horizon.VintageIdx(g)]
}

// InitialStock returns the seeded stock of (vehicle, vintage) on a route.
// Absence of a matching entry means no pre-horizon fleet of that cohort.
func (s *Store) InitialStock(r *Odpair, vehicleID, g int) float64 {
	total := 0.0
	for _, st := range r.InitialStock {
		if st.TechVehicle.ID == vehicleID && st.YearOfPurchase == g {
			total += st.Stock
		}
	}
	return total
}

// Subsidy returns the purchase subsidy for a vehicle bought in year y.
func (s *Store) Subsidy(vehicleID, y int) float64 {
	total := 0.0
	for _, sub := range s.VehicleSubsidies {
		if sub.TechVehicle.ID != vehicleID {
			continue
		}
		for _, yr := range sub.Years {
			if yr == y {
				total += sub.Amount
				break
			}
		}
	}
	return total
}

// InstalledFuelingKW returns the pre-horizon fueling capacity for a
// technology at an element.
func (s *Store) InstalledFuelingKW(technologyID, elementID int) float64 {
	total := 0.0
	for _, i := range s.InitialFuelingInfr {
		if i.Technology.ID == technologyID && i.Element.ID == elementID {
			total += i.InstalledKW
		}
	}
	return total
}

// InstalledModeUkm returns the pre-horizon mode infrastructure capacity at
// an element.
func (s *Store) InstalledModeUkm(modeID, elementID int) float64 {
	total := 0.0
	for _, i := range s.InitialModeInfr {
		if i.Mode.ID == modeID && i.Element.ID == elementID {
			total += i.InstalledUkm
		}
	}
	return total
}

// Element resolves a geographic element by id.
func (s *Store) Element(id int) *GeographicElement { return s.elementByID[id] }

// PathByID resolves a path by id.
func (s *Store) PathByID(id int) *Path { return s.pathByID[id] }

// ModeByID resolves a mode by id.
func (s *Store) ModeByID(id int) *Mode { return s.modeByID[id] }

// TechnologyByID resolves a technology by id.
func (s *Store) TechnologyByID(id int) *Technology { return s.technologyByID[id] }

// TechVehicleByID resolves a tech vehicle by id.
func (s *Store) TechVehicleByID(id int) *TechVehicle { return s.techVehicleByID[id] }

// OdpairByID resolves an odpair by id.
func (s *Store) OdpairByID(id int) *Odpair {
	for _, o := range s.Odpairs {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func sortByID[T any](items []T, id func(T) int) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
