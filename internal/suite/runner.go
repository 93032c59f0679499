package suite

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/automata/internal/automaton"
	"github.com/dshills/automata/internal/engine"
	"github.com/dshills/automata/internal/loader"
	"github.com/dshills/automata/internal/logging"
	"github.com/dshills/automata/internal/script"
)

// DefaultScriptTimeout bounds each Lua generator.
const DefaultScriptTimeout = 2 * time.Second

// CaseResult is the outcome of one input on one machine.
type CaseResult struct {
	// Index is the position of the machine in the suite. Machines may
	// share a name.
	Index   int
	Machine string
	Kind    automaton.Kind
	Input   string
	Verdict engine.Verdict
	Steps   int
	// Expect is meaningful only when HasExpect is set.
	Expect    engine.Verdict
	HasExpect bool
	// Err is set for inconclusive runs.
	Err error
}

// Matched reports whether the verdict agrees with the expectation. Cases
// without an expectation always match.
func (c CaseResult) Matched() bool {
	return !c.HasExpect || c.Verdict == c.Expect
}

// Report is the outcome of a suite run. Results follow suite order:
// machines in declaration order, and for each machine its inputs, then its
// cases, then generated cases.
type Report struct {
	RunID    string
	Suite    string
	Results  []CaseResult
	Started  time.Time
	Duration time.Duration
}

// Summary counts results by verdict and mismatches.
type Summary struct {
	Total        int
	Accepted     int
	Rejected     int
	Inconclusive int
	Mismatched   int
}

// Summary tallies the report.
func (r *Report) Summary() Summary {
	var s Summary
	for _, c := range r.Results {
		s.Total++
		switch c.Verdict {
		case engine.Accepted:
			s.Accepted++
		case engine.Rejected:
			s.Rejected++
		default:
			s.Inconclusive++
		}
		if !c.Matched() {
			s.Mismatched++
		}
	}
	return s
}

// OK reports whether every case matched its expectation.
func (r *Report) OK() bool {
	return r.Summary().Mismatched == 0
}

// Runner loads a suite's definitions and simulates every case.
type Runner struct {
	opts          engine.Options
	workers       int
	scriptTimeout time.Duration
	logger        *logging.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithEngineOptions sets the limits passed to every simulation.
func WithEngineOptions(opts engine.Options) RunnerOption {
	return func(r *Runner) {
		r.opts = opts
	}
}

// WithWorkers sets how many cases run concurrently.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithScriptTimeout bounds each Lua generator.
func WithScriptTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.scriptTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner with default limits.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		opts:          engine.DefaultOptions(),
		workers:       runtime.NumCPU(),
		scriptTimeout: DefaultScriptTimeout,
		logger:        logging.NullLogger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// job is one case bound to its loaded machine and its slot in the report.
type job struct {
	slot    int
	index   int
	name    string
	machine automaton.Machine
	c       Case
}

// Run executes every case of s. A definition or generator that fails to
// load aborts the run before any case is simulated. Cancelling ctx stops
// pushdown and Turing machine runs, which then report Inconclusive.
func (r *Runner) Run(ctx context.Context, s *Suite) (*Report, error) {
	report := &Report{
		RunID:   uuid.New().String(),
		Suite:   s.Name,
		Started: time.Now(),
	}
	log := r.logger.WithFields(map[string]any{"run": report.RunID, "suite": s.Name})

	jobs, err := r.plan(ctx, s)
	if err != nil {
		log.Error("%v", err)
		return nil, err
	}
	log.Info("running %d cases on %d machines with %d workers", len(jobs), len(s.Machines), r.workers)

	report.Results = make([]CaseResult, len(jobs))
	queue := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < min(r.workers, max(len(jobs), 1)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				report.Results[j.slot] = r.simulate(ctx, j)
				res := report.Results[j.slot]
				log.Debug("%s %q → %s (%d steps)", j.name, j.c.Input, res.Verdict, res.Steps)
			}
		}()
	}
	for _, j := range jobs {
		queue <- j
	}
	close(queue)
	wg.Wait()

	report.Duration = time.Since(report.Started)
	sum := report.Summary()
	log.Info("%d cases: %d accepted, %d rejected, %d inconclusive, %d mismatched in %s",
		sum.Total, sum.Accepted, sum.Rejected, sum.Inconclusive, sum.Mismatched, report.Duration)
	return report, nil
}

// plan loads every definition and expands its cases.
func (r *Runner) plan(ctx context.Context, s *Suite) ([]job, error) {
	ld := loader.NewWithFS(s.FileSystem())

	var jobs []job
	for idx, spec := range s.Machines {
		kind := automaton.KindUnknown
		if spec.Kind != "" {
			k, err := automaton.ParseKind(spec.Kind)
			if err != nil {
				return nil, err
			}
			kind = k
		}

		m, err := ld.Load(s.DefinitionPath(spec), kind)
		if err != nil {
			return nil, err
		}
		name := spec.Name
		if name == "" {
			name = m.Definition().Name
		}

		cases, err := r.expand(ctx, name, spec)
		if err != nil {
			return nil, err
		}
		for _, c := range cases {
			jobs = append(jobs, job{slot: len(jobs), index: idx, name: name, machine: m, c: c})
		}
	}
	return jobs, nil
}

// expand lists a machine's inputs, cases and generated cases in order.
func (r *Runner) expand(ctx context.Context, name string, spec MachineSpec) ([]Case, error) {
	cases := make([]Case, 0, len(spec.Inputs)+len(spec.Cases))
	for _, in := range spec.Inputs {
		cases = append(cases, Case{Input: in})
	}
	cases = append(cases, spec.Cases...)

	if spec.Generate != "" {
		gctx, cancel := context.WithTimeout(ctx, r.scriptTimeout)
		defer cancel()

		generated, err := script.Generate(gctx, name+" generator", spec.Generate)
		if err != nil {
			return nil, fmt.Errorf("machine %s: %w", name, err)
		}
		for _, g := range generated {
			cases = append(cases, Case{Input: g.Input, Expect: g.Expect})
		}
	}
	return cases, nil
}

func (r *Runner) simulate(ctx context.Context, j job) CaseResult {
	res := CaseResult{
		Index:   j.index,
		Machine: j.name,
		Kind:    j.machine.Kind(),
		Input:   j.c.Input,
	}
	// Expectations were validated when the suite was parsed.
	res.Expect, res.HasExpect, _ = j.c.expectation()

	input := automaton.Symbols(automaton.Normalize(j.c.Input))
	out := engine.Simulate(ctx, j.machine, input, r.opts)
	res.Verdict = out.Verdict
	res.Steps = out.Steps
	res.Err = out.Err
	return res
}
