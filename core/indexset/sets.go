// Package indexset derives the sparse combinatorial domains over which
// decision variables and constraints exist. Every set is minimal: a tuple is
// included only if it is reachable through an actual entity relationship,
// never from the dense cross product of the dimensions.
package indexset

import (
	"fmt"

	"github.com/lmeyrat/transopt/core/entity"
)

// RefKind tags the two representations behind a mode-vehicle pair.
type RefKind int

const (
	// RealVehicle wraps a TechVehicle id: the mode's capacity is tracked
	// through explicit vehicle counts.
	RealVehicle RefKind = iota
	// LevelizedMode wraps a Mode id: capacity is represented by levelized
	// per-km costs instead of a fleet.
	LevelizedMode
)

// VehicleRef identifies either a real tech vehicle or the levelized-cost
// placeholder of a mode that is not fleet-sized. Keeping the two cases
// tagged avoids overloading the vehicle id space with synthetic integers.
type VehicleRef struct {
	Kind RefKind
	ID   int
}

// Real returns a reference to a tech vehicle.
func Real(vehicleID int) VehicleRef { return VehicleRef{Kind: RealVehicle, ID: vehicleID} }

// Levelized returns the placeholder reference of a mode.
func Levelized(modeID int) VehicleRef { return VehicleRef{Kind: LevelizedMode, ID: modeID} }

func (r VehicleRef) String() string {
	if r.Kind == LevelizedMode {
		return fmt.Sprintf("lev%d", r.ID)
	}
	return fmt.Sprintf("tv%d", r.ID)
}

// ModeVehicle is a (mode, vehicle reference) pair.
type ModeVehicle struct {
	Mode    int
	Vehicle VehicleRef
}

// RoutePath is an (odpair, path) pair.
type RoutePath struct {
	Route, Path int
}

// ProductRoutePath is a (product, odpair, path) triple.
type ProductRoutePath struct {
	Product, Route, Path int
}

// Quadruple extends a triple by one geographic element of the path.
type Quadruple struct {
	Product, Route, Path, Element int
}

// Triple returns the quadruple's underlying product-route-path triple.
func (q Quadruple) Triple() ProductRoutePath {
	return ProductRoutePath{Product: q.Product, Route: q.Route, Path: q.Path}
}

// Sets holds every derived index set. Slices are in deterministic
// construction order (entities ordered by id); the membership maps back the
// Has* predicates.
type Sets struct {
	ModeVehiclePairs []ModeVehicle
	VehicleRefs      []VehicleRef
	RoutePathPairs   []RoutePath
	Triples          []ProductRoutePath
	QuadruplesEdge   []Quadruple
	QuadruplesNode   []Quadruple

	mv   map[ModeVehicle]struct{}
	refs map[VehicleRef]struct{}
	rk   map[RoutePath]struct{}
	prk  map[ProductRoutePath]struct{}
	prkE map[Quadruple]struct{}
	prkN map[Quadruple]struct{}
}

// Build derives all index sets from the entity store. Resolution failures
// are impossible here: the store already guarantees every reference.
func Build(st *entity.Store) *Sets {
	s := &Sets{
		mv:   make(map[ModeVehicle]struct{}),
		refs: make(map[VehicleRef]struct{}),
		rk:   make(map[RoutePath]struct{}),
		prk:  make(map[ProductRoutePath]struct{}),
		prkE: make(map[Quadruple]struct{}),
		prkN: make(map[Quadruple]struct{}),
	}

	for _, v := range st.TechVehicles {
		s.addModeVehicle(ModeVehicle{Mode: v.VehicleType.Mode.ID, Vehicle: Real(v.ID)})
	}
	for _, m := range st.Modes {
		if !m.SizedByFleet {
			s.addModeVehicle(ModeVehicle{Mode: m.ID, Vehicle: Levelized(m.ID)})
		}
	}

	for _, od := range st.Odpairs {
		for _, p := range od.Paths {
			rk := RoutePath{Route: od.ID, Path: p.ID}
			if _, ok := s.rk[rk]; !ok {
				s.rk[rk] = struct{}{}
				s.RoutePathPairs = append(s.RoutePathPairs, rk)
			}
			prk := ProductRoutePath{Product: od.Product.ID, Route: od.ID, Path: p.ID}
			if _, ok := s.prk[prk]; !ok {
				s.prk[prk] = struct{}{}
				s.Triples = append(s.Triples, prk)
			}
			for _, e := range p.Sequence {
				q := Quadruple{Product: od.Product.ID, Route: od.ID, Path: p.ID, Element: e.ID}
				if e.Kind == entity.KindEdge {
					if _, ok := s.prkE[q]; !ok {
						s.prkE[q] = struct{}{}
						s.QuadruplesEdge = append(s.QuadruplesEdge, q)
					}
				} else {
					if _, ok := s.prkN[q]; !ok {
						s.prkN[q] = struct{}{}
						s.QuadruplesNode = append(s.QuadruplesNode, q)
					}
				}
			}
		}
	}
	return s
}

func (s *Sets) addModeVehicle(mv ModeVehicle) {
	if _, ok := s.mv[mv]; ok {
		return
	}
	s.mv[mv] = struct{}{}
	s.ModeVehiclePairs = append(s.ModeVehiclePairs, mv)
	if _, ok := s.refs[mv.Vehicle]; !ok {
		s.refs[mv.Vehicle] = struct{}{}
		s.VehicleRefs = append(s.VehicleRefs, mv.Vehicle)
	}
}

// HasModeVehicle reports membership in the mode-vehicle pair set.
func (s *Sets) HasModeVehicle(mv ModeVehicle) bool {
	_, ok := s.mv[mv]
	return ok
}

// HasRoutePath reports membership in the route-path pair set.
func (s *Sets) HasRoutePath(rk RoutePath) bool {
	_, ok := s.rk[rk]
	return ok
}

// HasTriple reports membership in the product-route-path triple set.
func (s *Sets) HasTriple(prk ProductRoutePath) bool {
	_, ok := s.prk[prk]
	return ok
}

// PairsForMode returns the mode-vehicle pairs of one mode, in set order.
func (s *Sets) PairsForMode(modeID int) []ModeVehicle {
	var out []ModeVehicle
	for _, mv := range s.ModeVehiclePairs {
		if mv.Mode == modeID {
			out = append(out, mv)
		}
	}
	return out
}
