// Package assemble turns a built entity store into a solvable optimization
// model: it derives the index sets, declares the variable space, walks the
// fleet aging regimes and emits every constraint family and the discounted
// cost objective.
package assemble

import (
	"github.com/lmeyrat/transopt/core/entity"
	"github.com/lmeyrat/transopt/core/indexset"
	"github.com/lmeyrat/transopt/core/logger"
	"github.com/lmeyrat/transopt/core/lp"
)

// Result is a fully assembled model together with the variable maps and
// index sets needed to interpret a solution.
type Result struct {
	Model *lp.Model
	Vars  *Variables
	Sets  *indexset.Sets
}

// Stats returns the assembled model size.
func (r *Result) Stats() lp.Stats { return r.Model.Stats() }

// Build assembles the full model from the store. Assembly is sequential by
// construction: the model is mutated by this goroutine only and handed over
// complete.
func Build(st *entity.Store, log logger.Logger) *Result {
	sets := indexset.Build(st)
	m := lp.New()
	vars := declareVariables(m, st, sets)
	if log != nil {
		log.Debugw("variables declared", map[string]any{
			"fleet":  len(vars.H) * 4,
			"flow":   len(vars.F),
			"fuel":   len(vars.SEdge) + len(vars.SNode),
			"infra":  len(vars.QEdge) + len(vars.QNode) + len(vars.QModeEdge) + len(vars.QModeNode),
			"budget": len(vars.BudgetPlus) + len(vars.BudgetMinus),
		})
	}

	emitAging(m, st, vars)
	emitDemandCoverage(m, st, sets, vars)
	emitFleetSizing(m, st, vars)
	emitModeShift(m, st, vars)
	emitTechShift(m, st, vars)
	emitBudget(m, st, vars)
	emitFuelingDemand(m, st, sets, vars)
	emitFuelingInfra(m, st, sets, vars)
	emitModeInfra(m, st, sets, vars)
	emitEmissionLimits(m, st, vars)
	emitModeShareBounds(m, st, vars)
	emitTechShareBounds(m, st, vars)
	emitVehicleTypeShareBounds(m, st, vars)
	emitObjective(m, st, vars)

	if log != nil {
		s := m.Stats()
		log.Infof("model assembled: %d variables, %d constraints", s.Variables, s.Constraints)
	}
	return &Result{Model: m, Vars: vars, Sets: sets}
}
