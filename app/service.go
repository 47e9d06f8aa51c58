// Package app wires a loaded case document into one end-to-end run:
// entity store, model assembly, solve and result export, with metrics
// reported along the way.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/lmeyrat/transopt/config"
	"github.com/lmeyrat/transopt/core/assemble"
	"github.com/lmeyrat/transopt/core/entity"
	coremetrics "github.com/lmeyrat/transopt/core/metrics"
	"github.com/lmeyrat/transopt/infra/logger"
	"github.com/lmeyrat/transopt/infra/metrics"
	infrasolver "github.com/lmeyrat/transopt/infra/solver"
	"github.com/lmeyrat/transopt/pkg/export"
)

// Options override the case document's solver section.
type Options struct {
	CaseName string
	OutDir   string
	Timeout  time.Duration
	Tol      float64
}

// Service runs assembled cases against the solver.
type Service struct {
	cfg  *config.Case
	sink coremetrics.Sink
	log  logger.Logger
}

// New creates a Service from a loaded case document.
func New(cfg *config.Case) (*Service, error) {
	logg := logger.New("service")
	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	if cfg.Metrics.PrometheusPort > 0 {
		go func() {
			if err := metrics.StartPromServer(cfg.Metrics.PrometheusPort); err != nil {
				logg.Errorf("prom server: %v", err)
			}
		}()
	}
	return &Service{cfg: cfg, sink: sink, log: logg}, nil
}

// Validate builds the entity store, running every referential and
// domain-size check without assembling a model.
func (s *Service) Validate() (*entity.Store, error) {
	return entity.NewStore(s.cfg)
}

// Run builds, solves and exports one case. It returns the run directory
// holding the result tables. Terminal solver statuses (infeasible,
// unbounded, timeout) are returned as errors after being recorded.
func (s *Service) Run(ctx context.Context, opts Options) (string, error) {
	st, err := entity.NewStore(s.cfg)
	if err != nil {
		return "", fmt.Errorf("build entities: %w", err)
	}

	start := time.Now()
	res := assemble.Build(st, s.log)
	stats := res.Stats()
	if err := s.sink.RecordAssembly(coremetrics.AssemblyEvent{
		Case:        opts.CaseName,
		Variables:   stats.Variables,
		Constraints: stats.Constraints,
		Duration:    time.Since(start),
		Time:        time.Now(),
	}); err != nil {
		s.log.Warnf("record assembly: %v", err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Duration(s.cfg.Solver.TimeoutSeconds) * time.Second
	}
	tol := opts.Tol
	if tol == 0 {
		tol = s.cfg.Solver.Tolerance
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slv := infrasolver.New(tol, s.log)
	solveStart := time.Now()
	sol, solveErr := slv.Solve(ctx, res.Model)
	if err := s.sink.RecordSolve(coremetrics.SolveEvent{
		Case:      opts.CaseName,
		Status:    sol.Status.String(),
		Objective: sol.Objective,
		Duration:  time.Since(solveStart),
		Time:      time.Now(),
	}); err != nil {
		s.log.Warnf("record solve: %v", err)
	}
	if solveErr != nil {
		return "", fmt.Errorf("solve %s: %w", opts.CaseName, solveErr)
	}
	s.log.Infof("solved %s: objective %.4f", opts.CaseName, sol.Objective)

	plan := export.Collect(res, sol)
	runDir, err := export.WriteFiles(opts.OutDir, opts.CaseName, plan)
	if err != nil {
		return "", fmt.Errorf("write results: %w", err)
	}
	return runDir, nil
}
