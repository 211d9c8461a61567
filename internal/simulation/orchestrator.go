// Package simulation runs Monte Carlo retirement ensembles: it fans
// scenarios across a worker pool, aggregates outcomes into success and
// risk statistics, and keeps every run reproducible from its seed.
package simulation

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wealthpath/retiresim/internal/domain"
	"github.com/wealthpath/retiresim/internal/returngen"
	"github.com/wealthpath/retiresim/internal/tax"
)

// DefaultIterations balances tail resolution against runtime for
// interactive use.
const DefaultIterations = 5000

// SimConfig controls one ensemble run.
type SimConfig struct {
	Iterations int
	Workers    int
	Seed       uint64
	StartYear  int

	Distribution     returngen.Distribution
	DegreesOfFreedom float64

	UseAntithetic      bool
	UseControlVariates bool
	UseStratified      bool

	// RecordTrajectories keeps per-year states on every outcome so the
	// aggregator can build balance bands and the median trajectory.
	RecordTrajectories bool

	Logger zerolog.Logger
}

func (c *SimConfig) normalize() {
	if c.Iterations <= 0 {
		c.Iterations = DefaultIterations
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.StartYear == 0 {
		c.StartYear = 2025
	}
	if c.Distribution == "" {
		c.Distribution = returngen.DistStudentT
	}
	if c.DegreesOfFreedom == 0 {
		c.DegreesOfFreedom = returngen.DefaultDegreesOfFreedom
	}
}

// Orchestrator owns one validated scenario and runs ensembles over it.
type Orchestrator struct {
	params *domain.ScenarioParams
	taxes  *tax.Engine
	cfg    SimConfig
	runner *runner
}

// NewOrchestrator validates and normalizes params and prepares a run. A
// nil tax engine gets the default table provider.
func NewOrchestrator(params *domain.ScenarioParams, taxes *tax.Engine, cfg SimConfig) (*Orchestrator, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if taxes == nil {
		taxes = tax.NewEngine(nil)
	}
	cfg.normalize()
	return &Orchestrator{
		params: params,
		taxes:  taxes,
		cfg:    cfg,
		runner: newRunner(params, taxes, cfg),
	}, nil
}

// Run executes the ensemble. Scenario indices are split into contiguous
// ranges across the worker pool; each scenario is seeded independently,
// so results are identical for a given (seed, params) regardless of
// worker count. A scenario that panics is retried once; a second panic
// aborts the run with a PartialEnsembleError carrying what completed.
// Cancellation also returns a PartialEnsembleError wrapping ctx.Err().
func (o *Orchestrator) Run(ctx context.Context) (*domain.EnsembleResult, error) {
	runID := uuid.NewString()
	log := o.cfg.Logger.With().Str("run_id", runID).Logger()
	log.Info().
		Int("iterations", o.cfg.Iterations).
		Int("workers", o.cfg.Workers).
		Uint64("seed", o.cfg.Seed).
		Str("distribution", string(o.cfg.Distribution)).
		Msg("starting ensemble")

	outcomes := make([]domain.ScenarioOutcome, o.cfg.Iterations)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	done := make([]bool, o.cfg.Iterations)

	chunk := (o.cfg.Iterations + o.cfg.Workers - 1) / o.cfg.Workers
	for w := 0; w < o.cfg.Workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > o.cfg.Iterations {
			hi = o.cfg.Iterations
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				if ctx.Err() != nil {
					return
				}
				out, err := o.runWithRetry(i, &log)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
				outcomes[i] = out
				done[i] = true
			}
		}(lo, hi)
	}
	wg.Wait()

	completed := make([]domain.ScenarioOutcome, 0, o.cfg.Iterations)
	for i, ok := range done {
		if ok {
			completed = append(completed, outcomes[i])
		}
	}
	sort.Slice(completed, func(i, j int) bool { return completed[i].Index < completed[j].Index })

	if cause := firstErr; cause != nil || ctx.Err() != nil {
		if cause == nil {
			cause = ctx.Err()
		}
		err := &domain.PartialEnsembleError{
			Completed: len(completed),
			Requested: o.cfg.Iterations,
			Cause:     cause,
		}
		if len(completed) == 0 {
			return nil, err
		}
		// Partial statistics are still useful; the caller sees both.
		result := o.aggregate(runID, completed)
		result.Partial = true
		log.Warn().Int("completed", len(completed)).Err(cause).Msg("ensemble incomplete")
		return result, err
	}

	result := o.aggregate(runID, completed)
	log.Info().
		Str("success_probability", result.SuccessProbability.StringFixed(1)).
		Msg("ensemble complete")
	return result, nil
}

// runWithRetry shields the pool from a panicking scenario: one retry,
// then the failure propagates.
func (o *Orchestrator) runWithRetry(index int, log *zerolog.Logger) (domain.ScenarioOutcome, error) {
	out, err := o.runOnce(index)
	if err == nil {
		return out, nil
	}
	log.Warn().Int("scenario", index).Err(err).Msg("scenario panicked, retrying")
	out, err = o.runOnce(index)
	if err != nil {
		return domain.ScenarioOutcome{}, fmt.Errorf("scenario %d failed after retry: %w", index, err)
	}
	return out, nil
}

func (o *Orchestrator) runOnce(index int) (out domain.ScenarioOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	out = o.runner.RunScenario(index)
	if !o.cfg.RecordTrajectories {
		out.Years = nil
	}
	return out, nil
}
