package solver

import (
	"fmt"

	corelp "github.com/lmeyrat/transopt/core/lp"
	coresolver "github.com/lmeyrat/transopt/core/solver"
)

// reduceZeroVars strips variables pinned to zero by singleton equality rows
// before the system reaches the simplex. Assembled models pin large numbers
// of variables this way (cohorts beyond end-of-life, vehicles of modes
// without a fleet) and the resulting x = 0 columns leave gonum's phase 1
// without a usable basis. Pinning propagates: a row whose other variables
// are all pinned becomes a singleton itself.
//
// The returned mapping has one entry per original variable, -1 where the
// variable was eliminated. Eliminated variables are zero in any feasible
// point, so the reduced optimum equals the full one.
func reduceZeroVars(m *corelp.Model) (*corelp.Model, []int, error) {
	n := m.NumVariables()
	zero := make([]bool, n)
	cons := m.Constraints()
	for changed := true; changed; {
		changed = false
		for _, con := range cons {
			if con.Sense != corelp.EQ || con.RHS != 0 {
				continue
			}
			live, count := -1, 0
			for _, t := range con.Terms {
				if t.Coef == 0 || zero[t.Var] {
					continue
				}
				live = int(t.Var)
				count++
				if count > 1 {
					break
				}
			}
			if count != 1 {
				continue
			}
			if lb, _ := m.Bounds(corelp.VarID(live)); lb > 0 {
				return nil, nil, fmt.Errorf("%w: %s is pinned to zero below its lower bound %v",
					coresolver.ErrInfeasible, m.Name(corelp.VarID(live)), lb)
			}
			zero[live] = true
			changed = true
		}
	}

	remap := make([]int, n)
	eliminated := 0
	for i, z := range zero {
		if z {
			eliminated++
		}
		remap[i] = i
	}
	if eliminated == 0 {
		return m, remap, nil
	}

	red := corelp.New()
	for i := 0; i < n; i++ {
		if zero[i] {
			remap[i] = -1
			continue
		}
		v := corelp.VarID(i)
		lb, ub := m.Bounds(v)
		nv := red.AddVariable(m.Name(v), lb, ub)
		red.AddObjective(nv, m.Objective(v))
		remap[i] = int(nv)
	}
	for _, con := range cons {
		terms := make([]corelp.Term, 0, len(con.Terms))
		for _, t := range con.Terms {
			if remap[t.Var] < 0 {
				continue
			}
			terms = append(terms, corelp.Term{Var: corelp.VarID(remap[t.Var]), Coef: t.Coef})
		}
		if len(terms) == 0 {
			satisfied := false
			switch con.Sense {
			case corelp.EQ:
				satisfied = con.RHS == 0
			case corelp.LE:
				satisfied = con.RHS >= 0
			case corelp.GE:
				satisfied = con.RHS <= 0
			}
			if !satisfied {
				return nil, nil, fmt.Errorf("%w: constraint 0 %s %v cannot hold with its variables pinned to zero",
					coresolver.ErrInfeasible, con.Sense, con.RHS)
			}
			continue
		}
		red.AddConstraint(terms, con.Sense, con.RHS)
	}
	return red, remap, nil
}
