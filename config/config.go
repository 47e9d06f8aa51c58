package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/lmeyrat/transopt/core/factory"
)

// Case is the top-level case document: one key per entity type plus the
// model parameters and optional service sections. The core never reads
// files itself; it consumes the entity store built from a validated Case.
type Case struct {
	Model                  ModelRecord                   `json:"model"`
	GeographicElements     []GeographicElementRecord     `json:"geographic_elements"`
	Paths                  []PathRecord                  `json:"paths"`
	Products               []ProductRecord               `json:"products"`
	Modes                  []ModeRecord                  `json:"modes"`
	Fuels                  []FuelRecord                  `json:"fuels"`
	Technologies           []TechnologyRecord            `json:"technologies"`
	VehicleTypes           []VehicleTypeRecord           `json:"vehicle_types"`
	TechVehicles           []TechVehicleRecord           `json:"tech_vehicles"`
	FinancialStatuses      []FinancialStatusRecord       `json:"financial_statuses"`
	Regiontypes            []RegiontypeRecord            `json:"regiontypes"`
	Odpairs                []OdpairRecord                `json:"odpairs"`
	InitialFuelingInfr     []InitialFuelingInfrRecord    `json:"initial_fueling_infr"`
	InitialModeInfr        []InitialModeInfrRecord       `json:"initial_mode_infr"`
	EmissionLimits         []EmissionLimitRecord         `json:"emission_limits"`
	ModeShareBounds        []ModeShareBoundRecord        `json:"mode_share_bounds"`
	TechnologyShareBounds  []TechnologyShareBoundRecord  `json:"technology_share_bounds"`
	VehicleTypeShareBounds []VehicleTypeShareBoundRecord `json:"vehicle_type_share_bounds"`
	VehicleSubsidies       []VehicleSubsidyRecord        `json:"vehicle_subsidies"`
	Metrics                MetricsConfig                 `json:"metrics"`
	Solver                 SolverConfig                  `json:"solver"`
}

// ModelRecord carries the horizon and the global model parameters.
type ModelRecord struct {
	YInit             int     `json:"y_init"`
	Years             int     `json:"horizon"`
	PreYears          int     `json:"pre_horizon"`
	AlphaMode         float64 `json:"alpha_mode"`
	BetaMode          float64 `json:"beta_mode"`
	AlphaTech         float64 `json:"alpha_tech"`
	BetaTech          float64 `json:"beta_tech"`
	InfraSizingFactor float64 `json:"infra_sizing_factor"`
	DiscountRate      float64 `json:"discount_rate"`
}

type GeographicElementRecord struct {
	ID          int       `json:"id"`
	Kind        string    `json:"kind"` // "node" or "edge"
	Name        string    `json:"name"`
	CarbonPrice []float64 `json:"carbon_price"`
	Length      float64   `json:"length"`
	From        int       `json:"from"`
	To          int       `json:"to"`
}

type PathRecord struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Sequence []int   `json:"sequence"`
	Length   float64 `json:"length"`
}

type ProductRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ModeRecord struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	SizedByFleet   bool      `json:"sized_by_fleet"`
	CostPerUkm     []float64 `json:"cost_per_ukm"`
	EmissionFactor []float64 `json:"emission_factor"`
	InfraBuildCost []float64 `json:"infra_build_cost"`
	InfraOMCost    []float64 `json:"infra_om_cost"`
	WaitingTime    []float64 `json:"waiting_time"`
}

type FuelRecord struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	EmissionFactor float64   `json:"emission_factor"` // gCO2/kWh
	CostPerKWh     []float64 `json:"cost_per_kwh"`
	CostPerKW      []float64 `json:"cost_per_kw"`
	InfraOMCost    []float64 `json:"infra_om_cost"`
}

type TechnologyRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Fuel int    `json:"fuel"`
}

type VehicleTypeRecord struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Mode     int    `json:"mode"`
	Products []int  `json:"products"`
}

// TechVehicleRecord carries the vintage-indexed arrays of a (vehicle type,
// technology) pair. Arrays are indexed by purchase year, starting at the
// earliest considered vintage, not by calendar year.
type TechVehicleRecord struct {
	ID                  int       `json:"id"`
	Name                string    `json:"name"`
	VehicleType         int       `json:"vehicle_type"`
	Technology          int       `json:"technology"`
	CapitalCost         []float64 `json:"capital_cost"`
	MaintenanceAnnual   []float64 `json:"maintenance_annual"`
	MaintenanceDistance []float64 `json:"maintenance_distance"`
	LoadFactor          []float64 `json:"load_factor"`
	SpecConsumption     []float64 `json:"spec_consumption"` // kWh/km
	Lifetime            []int     `json:"lifetime"`
	AnnualRange         []float64 `json:"annual_range"`
	TankCapacity        []float64 `json:"tank_capacity"`
	PeakFueling         []float64 `json:"peak_fueling"` // kW
}

type FinancialStatusRecord struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	VoT              float64 `json:"vot"` // value of time in currency/h
	PurchaseBudgetLB float64 `json:"purchase_budget_lb"`
	PurchaseBudgetUB float64 `json:"purchase_budget_ub"`
}

type RegiontypeRecord struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Speed    float64   `json:"speed"` // km/h
	CostsVar []float64 `json:"costs_var"`
	CostsFix []float64 `json:"costs_fix"`
}

type InitialStockRecord struct {
	TechVehicle int     `json:"tech_vehicle"`
	Year        int     `json:"year"`
	Stock       float64 `json:"stock"`
}

type OdpairRecord struct {
	ID              int                  `json:"id"`
	Origin          int                  `json:"origin"`
	Destination     int                  `json:"destination"`
	Paths           []int                `json:"paths"`
	Product         int                  `json:"product"`
	Demand          []float64            `json:"demand"`
	InitialStock    []InitialStockRecord `json:"initial_stock"`
	FinancialStatus int                  `json:"financial_status"`
	Regiontype      int                  `json:"regiontype"`
}

type InitialFuelingInfrRecord struct {
	ID          int     `json:"id"`
	Technology  int     `json:"technology"`
	Element     int     `json:"element"`
	InstalledKW float64 `json:"installed_kw"`
}

type InitialModeInfrRecord struct {
	ID           int     `json:"id"`
	Mode         int     `json:"mode"`
	Element      int     `json:"element"`
	InstalledUkm float64 `json:"installed_ukm"`
}

// EmissionLimitRecord caps total emissions in a year, either for one mode
// (Mode > 0) or across all modes (Mode == 0).
type EmissionLimitRecord struct {
	ID    int     `json:"id"`
	Mode  int     `json:"mode"`
	Year  int     `json:"year"`
	Limit float64 `json:"limit"` // tCO2
}

// ModeShareBoundRecord bounds the share of a mode in total flow, for a
// single year (Year > 0) or over the whole horizon (Year == 0).
type ModeShareBoundRecord struct {
	ID    int     `json:"id"`
	Mode  int     `json:"mode"`
	Share float64 `json:"share"`
	Dir   string  `json:"dir"` // "min" or "max"
	Year  int     `json:"year"`
}

// TechnologyShareBoundRecord bounds the share of a drivetrain technology in
// total flow, with the same year semantics as mode share bounds.
type TechnologyShareBoundRecord struct {
	ID         int     `json:"id"`
	Technology int     `json:"technology"`
	Share      float64 `json:"share"`
	Dir        string  `json:"dir"`
	Year       int     `json:"year"`
}

// VehicleTypeShareBoundRecord bounds the share of a vehicle type in total
// flow.
type VehicleTypeShareBoundRecord struct {
	ID          int     `json:"id"`
	VehicleType int     `json:"vehicle_type"`
	Share       float64 `json:"share"`
	Dir         string  `json:"dir"`
	Year        int     `json:"year"`
}

type VehicleSubsidyRecord struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Years       []int   `json:"years"`
	TechVehicle int     `json:"tech_vehicle"`
	Amount      float64 `json:"amount"`
}

// MetricsConfig selects the sinks solve runs report to. Each sink entry
// names a registered sink type ("nop", "prometheus", "influx") with its raw
// settings. PrometheusPort, when set, exposes the scrape endpoint.
type MetricsConfig struct {
	Sinks          []factory.ModuleConfig `json:"sinks"`
	PrometheusPort int                    `json:"prometheus_port"`
}

// SolverConfig carries the defaults the solve command applies when the
// corresponding flags are not set.
type SolverConfig struct {
	TimeoutSeconds int     `json:"timeout_seconds"`
	Tolerance      float64 `json:"tolerance"`
}

// SetDefaults fills unset solver parameters.
func (c *SolverConfig) SetDefaults() {
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 3600
	}
	if c.Tolerance == 0 {
		c.Tolerance = 1e-9
	}
}

// Validate checks the model parameters that every downstream component
// depends on. Entity-level validation happens in the entity store.
func (c *Case) Validate() error {
	if c.Model.Years <= 0 {
		return fmt.Errorf("model: horizon must be positive, got %d", c.Model.Years)
	}
	if c.Model.PreYears < 0 {
		return fmt.Errorf("model: pre_horizon must not be negative, got %d", c.Model.PreYears)
	}
	if c.Model.YInit <= 0 {
		return fmt.Errorf("model: y_init must be set")
	}
	if c.Model.DiscountRate < 0 {
		return fmt.Errorf("model: discount_rate must not be negative")
	}
	if c.Model.InfraSizingFactor < 0 {
		return fmt.Errorf("model: infra_sizing_factor must not be negative")
	}
	for _, b := range c.ModeShareBounds {
		if b.Dir != "min" && b.Dir != "max" {
			return fmt.Errorf("mode_share_bounds %d: dir must be min or max, got %q", b.ID, b.Dir)
		}
	}
	for _, b := range c.TechnologyShareBounds {
		if b.Dir != "min" && b.Dir != "max" {
			return fmt.Errorf("technology_share_bounds %d: dir must be min or max, got %q", b.ID, b.Dir)
		}
	}
	for _, b := range c.VehicleTypeShareBounds {
		if b.Dir != "min" && b.Dir != "max" {
			return fmt.Errorf("vehicle_type_share_bounds %d: dir must be min or max, got %q", b.ID, b.Dir)
		}
	}
	return nil
}

// Load reads a case document in YAML or JSON format, applies TO_-prefixed
// environment overrides and validates the model section.
func Load(path string) (*Case, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported case format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides. The callback rewrites the variable
	// name into a dotted key path, so the provider must unflatten on ".".
	if err := k.Load(env.Provider("TO_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "to_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var c Case
	if err := k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	c.Solver.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
