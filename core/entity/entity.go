package entity

// ElementKind distinguishes the two kinds of geographic elements.
type ElementKind int

const (
	KindNode ElementKind = iota
	KindEdge
)

func (k ElementKind) String() string {
	if k == KindEdge {
		return "edge"
	}
	return "node"
}

// GeographicElement is a node or an edge of the transport network. Edges
// additionally carry a length and the nodes they connect.
type GeographicElement struct {
	ID          int
	Kind        ElementKind
	Name        string
	CarbonPrice []float64 // currency/tCO2 per horizon year
	Length      float64   // km, edges only
	From        *GeographicElement
	To          *GeographicElement
}

// Path is an ordered traversal of geographic elements between an origin and
// a destination.
type Path struct {
	ID       int
	Name     string
	Sequence []*GeographicElement
	Length   float64 // km
}

// NodeCount returns the number of node elements in the path sequence.
func (p *Path) NodeCount() int {
	n := 0
	for _, e := range p.Sequence {
		if e.Kind == KindNode {
			n++
		}
	}
	return n
}

// Product is a transportable good or passenger class.
type Product struct {
	ID   int
	Name string
}

// Mode is a transport mode. If SizedByFleet is true its capacity is tracked
// through explicit vehicle counts; otherwise it is represented by levelized
// per-km costs and emissions.
type Mode struct {
	ID             int
	Name           string
	SizedByFleet   bool
	CostPerUkm     []float64 // per horizon year
	EmissionFactor []float64 // gCO2/ukm, per horizon year
	InfraBuildCost []float64 // currency/ukm, per horizon year
	InfraOMCost    []float64 // currency/ukm/year, per horizon year
	WaitingTime    []float64 // h, per horizon year
}

// Fuel is the energy source of a drivetrain technology.
type Fuel struct {
	ID             int
	Name           string
	EmissionFactor float64   // gCO2/kWh
	CostPerKWh     []float64 // per horizon year
	CostPerKW      []float64 // infrastructure capital cost, per horizon year
	InfraOMCost    []float64 // per horizon year
}

// Technology is a drivetrain technology using one fuel.
type Technology struct {
	ID   int
	Name string
	Fuel *Fuel
}

// VehicleType is a vehicle archetype bound to one mode and the products it
// can carry.
type VehicleType struct {
	ID       int
	Name     string
	Mode     *Mode
	Products []*Product
}

// CanCarry reports whether the vehicle type carries the given product.
func (vt *VehicleType) CanCarry(productID int) bool {
	for _, p := range vt.Products {
		if p.ID == productID {
			return true
		}
	}
	return false
}

// TechVehicle is a (vehicle type, technology) pair. All arrays are indexed
// by purchase vintage, from the earliest considered vintage onward.
type TechVehicle struct {
	ID                  int
	Name                string
	VehicleType         *VehicleType
	Technology          *Technology
	CapitalCost         []float64
	MaintenanceAnnual   []float64
	MaintenanceDistance []float64 // currency/km
	LoadFactor          []float64 // product units per vehicle
	SpecConsumption     []float64 // kWh/km
	Lifetime            []int     // years
	AnnualRange         []float64 // km/year
	TankCapacity        []float64 // kWh
	PeakFueling         []float64 // kW
}

// InitialVehicleStock seeds the fleet aging machine with a cohort purchased
// before the optimization horizon.
type InitialVehicleStock struct {
	ID             int
	TechVehicle    *TechVehicle
	YearOfPurchase int
	Stock          float64
}

// InitialFuelingInfr is fueling capacity installed before the horizon.
type InitialFuelingInfr struct {
	ID          int
	Technology  *Technology
	Element     *GeographicElement
	InstalledKW float64
}

// InitialModeInfr is mode infrastructure installed before the horizon.
type InitialModeInfr struct {
	ID           int
	Mode         *Mode
	Element      *GeographicElement
	InstalledUkm float64
}

// FinancialStatus is a demographic segment with a value of time and yearly
// purchase budget bounds.
type FinancialStatus struct {
	ID               int
	Name             string
	VoT              float64
	PurchaseBudgetLB float64
	PurchaseBudgetUB float64
}

// Regiontype classifies a region (urban, rural) with its average speed and
// cost multipliers.
type Regiontype struct {
	ID       int
	Name     string
	Speed    float64
	CostsVar []float64 // currency/vehicle-km, per horizon year
	CostsFix []float64 // currency/vehicle/year, per horizon year
}

// Odpair is a transport demand relation: an origin, a destination, the
// usable paths between them and a per-year demand series.
type Odpair struct {
	ID              int
	Origin          *GeographicElement
	Destination     *GeographicElement
	Paths           []*Path
	Product         *Product
	Demand          []float64 // product units per horizon year
	InitialStock    []*InitialVehicleStock
	FinancialStatus *FinancialStatus
	Regiontype      *Regiontype
}

// EmissionLimit caps emissions in one year, for one mode (Mode != nil) or
// in total.
type EmissionLimit struct {
	ID    int
	Mode  *Mode
	Year  int
	Limit float64 // tCO2
}

// ShareDir is the direction of a share bound.
type ShareDir int

const (
	ShareMax ShareDir = iota
	ShareMin
)

// ModeShareBound bounds the share of a mode in total flow, in one year
// (Year > 0) or over the whole horizon (Year == 0).
type ModeShareBound struct {
	ID    int
	Mode  *Mode
	Share float64
	Dir   ShareDir
	Year  int
}

// TechnologyShareBound bounds the share of a drivetrain technology in total
// flow.
type TechnologyShareBound struct {
	ID         int
	Technology *Technology
	Share      float64
	Dir        ShareDir
	Year       int
}

// VehicleTypeShareBound bounds the share of a vehicle type in total flow.
type VehicleTypeShareBound struct {
	ID          int
	VehicleType *VehicleType
	Share       float64
	Dir         ShareDir
	Year        int
}

// VehicleSubsidy lowers the capital cost of a tech vehicle in given years.
type VehicleSubsidy struct {
	ID          int
	Name        string
	Years       []int
	TechVehicle *TechVehicle
	Amount      float64
}

// Horizon carries the model parameters every component depends on.
type Horizon struct {
	YInit             int // first optimization year
	Years             int // horizon length
	PreYears          int // pre-horizon vintage span
	AlphaMode         float64
	BetaMode          float64
	AlphaTech         float64
	BetaTech          float64
	InfraSizingFactor float64 // kW required per kWh/year of fueling demand
	DiscountRate      float64
}

// GInit returns the earliest considered vintage.
func (h Horizon) GInit() int { return h.YInit - h.PreYears }

// YEnd returns the last optimization year.
func (h Horizon) YEnd() int { return h.YInit + h.Years - 1 }

// YearIdx converts a calendar year to a per-year series index.
func (h Horizon) YearIdx(y int) int { return y - h.YInit }

// VintageIdx converts a purchase year to a vintage array index.
func (h Horizon) VintageIdx(g int) int { return g - h.GInit() }

// VintageSpan is the required length of every vintage-indexed array.
func (h Horizon) VintageSpan() int { return h.Years + h.PreYears }
