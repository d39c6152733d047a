// Package engine implements the Engine Driver (C9): the main loop that
// ties together the bound manager, tableau, cost-function manager, row
// bound tightener, PL-constraint registry, SMT core, precision
// restorer, and SoI manager into the SAT/UNSAT/TIMEOUT/ERROR decision
// procedure of spec.md §4.9. Grounded on the teacher's top-level
// orchestration pattern (a driver struct wiring independently-testable
// collaborators, returning a typed outcome instead of panicking) and
// on original_source/Engine.cpp's solve loop for step ordering and
// exception dispatch (SPEC_FULL.md's supplemented features 2-4).
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"plverify/internal/nlr"
	"plverify/internal/query"
	"plverify/internal/shared"
	"plverify/internal/solver/bounds"
	"plverify/internal/solver/costfunction"
	"plverify/internal/solver/plconstraint"
	"plverify/internal/solver/restore"
	"plverify/internal/solver/smt"
	"plverify/internal/solver/soi"
	"plverify/internal/solver/tableau"
	"plverify/internal/solver/tightening"
)

// Config holds the tunables the engine's components need, mirroring
// internal/config.Config's solver-relevant fields so the engine never
// imports the config package directly (keeping it independently
// testable, the way the teacher's core business logic takes plain
// values rather than a *viper.Viper).
type Config struct {
	PivotTolerance              float64
	DegradationEpsilon          float64
	TighteningStrategy          tightening.Strategy
	TighteningMatrixFrequency   int
	BranchingStrategy           smt.Strategy
	PolarityCandidatesThreshold int
	IntervalSplittingThreshold  int
	ScoreBump                   float64
	SoIEnabled                  bool
	SoIMaxProposedUpdates       int
	SoIRejectionsBeforeSplit    int
	SoIAnnealingInitialTemp     float64
	SoIAnnealingCoolingRate     float64
	RestorationDegradationThreshold float64
	RestorationDefaultLevel     tableau.StorageLevel
	TimeoutSeconds              int
}

// Statistics accumulates the counters spec.md §6/SPEC_FULL.md item 1
// asks the statistics sink to persist per run.
type Statistics struct {
	NumSimplexPivots        int
	NumVisitedTreeStates     int
	NumTableauPivots         int
	MaxDegradation           float64
	NumPrecisionRestorations int
}

// Engine drives the decision procedure for a single InputQuery.
type Engine struct {
	cfg    Config
	log    *zap.Logger
	mgr    *bounds.Manager
	tab    *tableau.Tableau
	cost   *costfunction.Manager
	tight  *tightening.Tightener
	smtCore *smt.Core
	restorer *restore.Restorer
	soiMgr *soi.Manager
	network *nlr.NLR

	constraints []plconstraint.Constraint
	rows        []tightening.Row
	stats       Statistics

	// equationMarks runs parallel to smtCore's case-split stack: each
	// entry is the tableau row count immediately before that level's
	// case-split equations were added, so backtracking out of the level
	// can drop exactly those rows again via tab.TruncateRows.
	equationMarks []int

	quitRequested bool
}

// New constructs an Engine ready to process q.
func New(cfg Config, log *zap.Logger, network *nlr.NLR) *Engine {
	return &Engine{
		cfg:      cfg,
		log:      log,
		tight:    tightening.New(cfg.TighteningStrategy, cfg.TighteningMatrixFrequency),
		smtCore:  smt.New(cfg.BranchingStrategy, cfg.PolarityCandidatesThreshold, cfg.IntervalSplittingThreshold, cfg.ScoreBump),
		restorer: restore.New(cfg.RestorationDegradationThreshold, cfg.RestorationDefaultLevel),
		soiMgr:   soi.New(cfg.SoIEnabled, cfg.SoIMaxProposedUpdates, cfg.SoIRejectionsBeforeSplit, cfg.SoIAnnealingInitialTemp, cfg.SoIAnnealingCoolingRate),
		network:  network,
		cost:     costfunction.New(),
	}
}

// RequestQuit asks the engine to stop at its next opportunity, the
// QUIT_REQUESTED path of spec.md §6.
func (e *Engine) RequestQuit() { e.quitRequested = true }

// Statistics returns a snapshot of the accumulated run counters.
func (e *Engine) Statistics() Statistics { return e.stats }

// processInputQuery ingests q into the bound manager, tableau, and PL
// constraint registry, the preprocessing step spec.md §1 scopes
// outside the solver proper but that the engine still has to drive.
func (e *Engine) processInputQuery(q *query.InputQuery) error {
	if err := q.Validate(); err != nil {
		return err
	}

	n := q.GetNumberOfVariables()
	equations := q.GetEquations()

	e.constraints = e.constraints[:0]
	for _, spec := range q.GetPiecewiseLinearConstraints() {
		con, err := plconstraint.FromSpec(spec)
		if err != nil {
			return shared.ErrMalformedInput.WithError(err)
		}
		e.constraints = append(e.constraints, con)
	}

	// Every ingestion equation gets one auxiliary basic variable; every
	// constraint that owns case-split equations (e.g. ReLU's active
	// phase f=b) gets its own reserved slack variable(s) on top of that,
	// so the tableau and bound manager are sized once, up front, before
	// any row is added.
	auxNext := n + len(equations)
	for _, con := range e.constraints {
		owner, ok := con.(plconstraint.AuxiliaryVariableOwner)
		if !ok {
			continue
		}
		if count := owner.ReserveAuxiliaryVariables(); count > 0 {
			owner.SetAuxiliaryVariables(auxNext)
			auxNext += count
		}
	}
	total := auxNext

	e.mgr = bounds.New(total)
	for v := 0; v < n; v++ {
		e.mgr.SetLowerBound(v, q.GetLowerBound(v))
		e.mgr.SetUpperBound(v, q.GetUpperBound(v))
	}
	// Every auxiliary variable, whether an ingestion-equation slack or a
	// case-split equation's reserved slack, starts pinned to exactly 0:
	// Σ cᵥxᵥ + aux = rhs is the real equation iff aux == 0.
	for v := n; v < total; v++ {
		e.mgr.SetLowerBound(v, 0)
		e.mgr.SetUpperBound(v, 0)
	}
	// An inequality's slack is one-sided instead: Σ cᵥxᵥ <= rhs holds iff
	// aux >= 0, and Σ cᵥxᵥ >= rhs holds iff aux <= 0.
	for i, eq := range equations {
		switch eq.Op {
		case query.OpLE:
			e.mgr.SetUpperBound(n+i, math.Inf(1))
		case query.OpGE:
			e.mgr.SetLowerBound(n+i, math.Inf(-1))
		}
	}
	if len(q.DebugSolution) > 0 {
		e.mgr.SetDebugSolution(q.DebugSolution)
	}

	e.tab = tableau.New(total, e.mgr.GetLowerBound, e.mgr.GetUpperBound, e.cfg.PivotTolerance)
	e.rows = e.rows[:0]
	auxEq := n
	for _, eq := range equations {
		coeffs := make(map[int]float64, len(eq.Coefficients)+1)
		for v, c := range eq.Coefficients {
			coeffs[v] = c
		}
		coeffs[auxEq] = 1
		e.tab.AddEquation(coeffs, auxEq, eq.Scalar)
		e.rows = append(e.rows, tightening.Row{Coefficients: coeffs, RHS: eq.Scalar})
		auxEq++
	}

	// A constraint's global (phase-independent) preprocessing equations,
	// if any, are ingested once here; phase-specific equations (ReLU's
	// active f=b, Disjunction's per-disjunct equations) are added later,
	// only once their branch is actually entered.
	for _, con := range e.constraints {
		for _, eq := range con.AddAuxiliaryEquationsAfterPreprocessing() {
			coeffs := make(map[int]float64, len(eq.Coefficients)+1)
			for v, c := range eq.Coefficients {
				coeffs[v] = c
			}
			coeffs[eq.AuxVariable] = 1
			e.tab.AddEquation(coeffs, eq.AuxVariable, eq.RHS)
			e.rows = append(e.rows, tightening.Row{Coefficients: coeffs, RHS: eq.RHS})
		}
	}

	e.tab.InitializeNonbasics()
	e.equationMarks = e.equationMarks[:0]

	// Seed every constraint's phase-fixing from the query's own input
	// bounds, before any tableau work happens (spec.md §4.5's
	// implied-split discovery applies just as much to a tight input
	// bound as to one derived mid-solve).
	for _, con := range e.constraints {
		for _, v := range con.ParticipatingVariables() {
			con.NotifyLowerBound(v, e.mgr.GetLowerBound(v))
			con.NotifyUpperBound(v, e.mgr.GetUpperBound(v))
		}
	}
	return nil
}

// Solve runs the main decision procedure for q and returns a terminal
// LoopOutcome: Sat, Unsat, Timeout, or (wrapped in the error) a fatal
// condition that maps to ErrorOutcome.
func (e *Engine) Solve(ctx context.Context, q *query.InputQuery) (shared.LoopOutcome, error) {
	if err := e.processInputQuery(q); err != nil {
		return shared.ErrorOutcome, err
	}

	deadline := time.Time{}
	if e.cfg.TimeoutSeconds > 0 {
		deadline = time.Now().Add(time.Duration(e.cfg.TimeoutSeconds) * time.Second)
	}

	for {
		if e.quitRequested {
			return shared.QuitRequested, nil
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return shared.Timeout, nil
		}
		select {
		case <-ctx.Done():
			return shared.Timeout, ctx.Err()
		default:
		}

		outcome, err := e.performOneRound()
		if err != nil {
			if shared.Recoverable(err) {
				handled, herr := e.handleRecoverableFailure(err)
				if herr != nil {
					return shared.ErrorOutcome, herr
				}
				if !handled {
					return shared.Unsat, nil
				}
				continue
			}
			return shared.ErrorOutcome, err
		}
		if outcome != shared.NotDone {
			return outcome, nil
		}
	}
}

// performOneRound executes one iteration of spec.md §4.9's seven
// steps: tighten bounds, re-optimize the tableau toward feasibility,
// check PL constraints, and either accept, locally fix via SoI, or
// case-split.
func (e *Engine) performOneRound() (shared.LoopOutcome, error) {
	if !e.mgr.ConsistentBounds() {
		return shared.NotDone, shared.ErrInfeasible
	}

	e.tight.TightenRows(e.rows, e.mgr)
	if pending := e.mgr.DrainPending(); len(pending) > 0 {
		e.notifyTightenings(pending)
		e.tab.SnapNonbasicsToBounds()
	}
	if v, violated := e.mgr.CheckDebugInvariant(); violated {
		return shared.NotDone, shared.ErrDebuggingInvariantViolated.WithError(fmt.Errorf("variable %d", v))
	}

	if e.restorer.NeedsRestoration(e.tab) {
		e.stats.NumPrecisionRestorations++
		snap := e.tab.StoreState(e.cfg.RestorationDefaultLevel)
		if err := e.restorer.Restore(e.tab, func() error {
			return e.tab.RestoreState(snap)
		}, func() error {
			e.tab.InitializeNonbasics()
			return nil
		}); err != nil {
			return shared.NotDone, err
		}
	}

	if err := e.restoreFeasibility(); err != nil {
		return shared.NotDone, err
	}

	assignment := e.currentAssignment()

	if e.allConstraintsSatisfied(assignment) {
		return shared.Sat, nil
	}

	if e.soiMgr.Enabled() {
		if fixed := e.tryLocalFix(assignment); fixed {
			return shared.NotDone, nil
		}
	} else if e.tryFixAssignment(assignment) {
		return shared.NotDone, nil
	}

	return e.caseSplitOrBacktrack(assignment)
}

// restoreFeasibility runs a bounded-variable primal simplex pass:
// while some basic variable sits outside its bounds, it pivots in a
// nonbasic variable whose movement would pull that basic variable back
// toward feasibility. Grounded on the teacher's PureGoSimplexSolver
// phase-1 loop (drive infeasibility to zero before optimizing),
// adapted to bounded nonbasics that can rest at either side rather
// than always at zero.
func (e *Engine) restoreFeasibility() error {
	const maxIterations = 10000
	for iter := 0; iter < maxIterations; iter++ {
		v, out := e.tab.BasicOutOfBounds()
		if !out {
			return nil
		}
		row, ok := e.tab.RowOfBasic(v)
		if !ok {
			return shared.ErrMalformedBasis
		}
		entering, found := e.chooseEnteringVariable(row, e.tab.Value(v) > e.mgr.GetUpperBound(v))
		if !found {
			return shared.ErrInfeasible
		}
		if err := e.tab.Pivot(row, entering); err != nil {
			return shared.ErrMalformedBasis.WithError(err)
		}
		e.stats.NumSimplexPivots++
		e.stats.NumTableauPivots++
		if d := e.tab.Degradation(); d > e.stats.MaxDegradation {
			e.stats.MaxDegradation = d
		}
	}
	return shared.ErrVarOutOfBoundDuringOptimization
}

// chooseEnteringVariable picks a nonbasic variable in row whose
// movement away from its current bound would push the row's basic
// variable in the needed direction (down if needDecrease, up
// otherwise) — the bounded-variable ratio test's direction rule.
// Candidates are ranked through the Cost Function Manager (C3) by
// Dantzig's rule: the row is installed as a reduced-cost vector
// (signed so an improving move always shows as negative at a
// lower-resting variable or positive at an upper-resting one), and the
// largest-magnitude improving coefficient wins, rather than the first
// one found by iteration order.
func (e *Engine) chooseEnteringVariable(row int, needDecrease bool) (int, bool) {
	sign := 1.0
	if needDecrease {
		sign = -1.0
	}
	costRow := costfunction.Row{}
	for _, j := range e.tab.NonbasicVariables() {
		if coeff := e.tab.RowCoefficient(row, j); coeff != 0 {
			costRow[j] = sign * coeff
		}
	}
	e.cost.ComputeCoreCostFunction(costRow)

	best, bestMagnitude := -1, 0.0
	for _, j := range e.tab.NonbasicVariables() {
		reduced := e.cost.ReducedCost(j)
		if reduced == 0 {
			continue
		}
		atLower := e.tab.Status(j) == tableau.AtLower
		improving := (atLower && reduced < 0) || (!atLower && reduced > 0)
		if !improving {
			continue
		}
		if magnitude := math.Abs(reduced); magnitude > bestMagnitude {
			best, bestMagnitude = j, magnitude
		}
	}
	e.cost.MarkUpdated()
	if best < 0 {
		return 0, false
	}
	return best, true
}

func (e *Engine) currentAssignment() plconstraint.Assignment {
	a := plconstraint.Assignment{}
	for _, con := range e.constraints {
		for _, v := range con.ParticipatingVariables() {
			a[v] = e.tab.Value(v)
		}
	}
	return a
}

func (e *Engine) allConstraintsSatisfied(a plconstraint.Assignment) bool {
	for _, con := range e.constraints {
		if !con.Satisfied(a) {
			return false
		}
	}
	return true
}

// tryLocalFix attempts the SoI phase-pattern local search for one
// round: it proposes flipping the worst-scoring eligible constraint's
// phase, actually commits that phase through the SMT core (pushing
// bounds and, if the phase needs one, its case-split equation) and
// re-runs feasibility restoration to see what the tableau really does
// under the new phase, then measures the heuristic cost of the
// resulting assignment. A rejected proposal is fully unwound: the
// bound-manager push, the tableau's added equation rows, and any
// pivots restoreFeasibility performed are all reverted before trying
// the next round.
func (e *Engine) tryLocalFix(a plconstraint.Assignment) bool {
	if len(e.soiMgr.CurrentPatternKeys()) == 0 {
		e.soiMgr.InitializePhasePattern(e.constraints, a)
	}
	before := e.soiMgr.HeuristicCost(e.constraints, a)
	keyVar, splitIdx := e.soiMgr.ProposePhasePatternUpdate(e.constraints, a)
	if keyVar == "" {
		return false
	}
	con := e.constraintByKey(keyVar)
	if con == nil {
		return false
	}

	tabSnapshot := e.tab.StoreState(tableau.StoreFull)
	entry, err := e.smtCore.PerformSplit(e.mgr, con, splitIdx)
	if err != nil {
		return false
	}
	mark := e.applySplitEquations(entry.AppliedSplit)
	e.tab.SnapNonbasicsToBounds()

	accept := false
	if rfErr := e.restoreFeasibility(); rfErr == nil {
		after := e.soiMgr.HeuristicCost(e.constraints, e.currentAssignment())
		accept = e.soiMgr.DecideToAcceptCurrentProposal(after-before, 0.5)
	}

	if !accept {
		if _, popErr := e.smtCore.PopSplit(e.mgr); popErr != nil {
			e.log.Warn("soi: failed to undo rejected local fix", zap.Error(popErr))
		}
		e.truncateEquationsTo(mark)
		if restoreErr := e.tab.RestoreState(tabSnapshot); restoreErr != nil {
			e.log.Warn("soi: failed to restore tableau after rejected local fix", zap.Error(restoreErr))
		}
		e.soiMgr.ReportRejectedPhasePatternProposal()
		return !e.soiMgr.ShouldFallBackToSplitting()
	}

	e.equationMarks = append(e.equationMarks, mark)
	e.notifyTightenings(toBoundsTightenings(entry.AppliedSplit.BoundTightenings))
	e.stats.NumVisitedTreeStates++
	e.soiMgr.AcceptCurrentPhasePatternUpdate(keyVar, splitIdx)
	return true
}

// constraintByKey recovers the Constraint backing a phase-pattern key,
// the string ProposePhasePatternUpdate returns without the object.
func (e *Engine) constraintByKey(key string) plconstraint.Constraint {
	for _, con := range e.constraints {
		if soi.ConstraintKeyFor(con) == key {
			return con
		}
	}
	return nil
}

// tryFixAssignment is the SoI-disabled counterpart of tryLocalFix:
// spec.md §4.5's smart-fix step, picking one unsatisfied constraint
// and pinning its cheapest single-variable correction as a bound
// tightening rather than committing to a full case split. It only
// reports progress when the tightening actually improved a bound, so
// the main loop cannot spin forever re-proposing the same fix.
func (e *Engine) tryFixAssignment(a plconstraint.Assignment) bool {
	for _, con := range e.constraints {
		if con.PhaseFixed() || con.Satisfied(a) {
			continue
		}
		fixes := con.GetSmartFixes(a)
		if len(fixes) == 0 {
			fixes = con.GetPossibleFixes(a)
		}
		if len(fixes) == 0 {
			continue
		}
		fix := fixes[0]
		loImproved := e.mgr.TightenLowerBound(fix.Variable, fix.Value)
		hiImproved := e.mgr.TightenUpperBound(fix.Variable, fix.Value)
		e.mgr.DrainPending() // consumed directly below; nothing stale left for the next round's drain
		if !loImproved && !hiImproved {
			continue
		}
		e.notifyTightenings([]bounds.Tightening{
			{Variable: fix.Variable, Value: fix.Value, IsUpper: false},
			{Variable: fix.Variable, Value: fix.Value, IsUpper: true},
		})
		e.tab.SnapNonbasicsToBounds()
		return true
	}
	return false
}

// notifyTightenings tells every constraint watching a tightened
// variable about its new bound (spec.md §4.5/§4.6's implied-split
// discovery), so PhaseFixed can flip to true from bound pressure alone
// rather than only ever being set by an explicit case split.
func (e *Engine) notifyTightenings(tightenings []bounds.Tightening) {
	for _, t := range tightenings {
		for _, con := range e.constraints {
			if t.IsUpper {
				con.NotifyUpperBound(t.Variable, t.Value)
			} else {
				con.NotifyLowerBound(t.Variable, t.Value)
			}
		}
	}
}

func toBoundsTightenings(bts []plconstraint.BoundTightening) []bounds.Tightening {
	out := make([]bounds.Tightening, len(bts))
	for i, bt := range bts {
		out[i] = bounds.Tightening{Variable: bt.Variable, Value: bt.Value, IsUpper: bt.IsUpper}
	}
	return out
}

// applySplitEquations adds split's linear equations to the tableau as
// new dynamic rows, returning the row count immediately before they
// were added so a later backtrack can drop exactly those rows via
// truncateEquationsTo.
func (e *Engine) applySplitEquations(split plconstraint.CaseSplit) int {
	mark := e.tab.RowCount()
	for _, eq := range split.Equations {
		coeffs := make(map[int]float64, len(eq.Coefficients)+1)
		for v, c := range eq.Coefficients {
			coeffs[v] = c
		}
		coeffs[eq.AuxVariable] = 1
		e.tab.AddDynamicEquation(coeffs, eq.AuxVariable, eq.RHS)
		e.rows = append(e.rows, tightening.Row{Coefficients: coeffs, RHS: eq.RHS})
	}
	return mark
}

// truncateEquationsTo undoes applySplitEquations, dropping both the
// tableau's dynamic rows and the row tightener's parallel view of them.
func (e *Engine) truncateEquationsTo(mark int) {
	e.tab.TruncateRows(mark)
	if mark < len(e.rows) {
		e.rows = e.rows[:mark]
	}
}

// enterSplit commits to one of con's case-split branches: it pushes a
// new bound-manager context and applies the branch's bound tightenings
// through the SMT core, adds the branch's linear equations (if any) as
// new tableau rows, snaps every nonbasic variable onto its freshly
// tightened bound, and notifies every constraint watching a tightened
// variable so bound-driven phase fixing (spec.md §4.5) can fire before
// the next split is even chosen.
func (e *Engine) enterSplit(con plconstraint.Constraint, splitIndex int) error {
	entry, err := e.smtCore.PerformSplit(e.mgr, con, splitIndex)
	if err != nil {
		return err
	}
	mark := e.applySplitEquations(entry.AppliedSplit)
	e.equationMarks = append(e.equationMarks, mark)
	e.tab.SnapNonbasicsToBounds()
	e.notifyTightenings(toBoundsTightenings(entry.AppliedSplit.BoundTightenings))
	e.stats.NumVisitedTreeStates++
	return nil
}

func (e *Engine) caseSplitOrBacktrack(a plconstraint.Assignment) (shared.LoopOutcome, error) {
	con := e.smtCore.SelectBranchingConstraint(e.constraints, a, e.mgr)
	if con == nil {
		return shared.Sat, nil
	}
	if err := e.enterSplit(con, 0); err != nil {
		return shared.NotDone, err
	}
	return shared.NotDone, nil
}

// popEquationMark pops equationMarks in lockstep with the SMT core's
// own stack; an empty equationMarks (e.g. a level entered before this
// bookkeeping existed) falls back to the tableau's current row count,
// which truncates nothing.
func (e *Engine) popEquationMark() int {
	if len(e.equationMarks) == 0 {
		return e.tab.RowCount()
	}
	mark := e.equationMarks[len(e.equationMarks)-1]
	e.equationMarks = e.equationMarks[:len(e.equationMarks)-1]
	return mark
}

// handleRecoverableFailure responds to the three recoverable error
// kinds of spec.md §7: back up the case-split stack and try the next
// alternative, or report UNSAT once the stack is exhausted. Popping a
// level always truncates that level's dynamic equation rows first, so
// a stale equation from an abandoned branch can never corrupt the
// branch explored after it.
func (e *Engine) handleRecoverableFailure(err error) (handled bool, fatal error) {
	for e.smtCore.Depth() > 0 {
		entry, popErr := e.smtCore.PopSplit(e.mgr)
		if popErr != nil {
			return false, popErr
		}
		e.truncateEquationsTo(e.popEquationMark())
		if len(entry.RemainingAlternatives) > 0 {
			if retryErr := e.smtCore.RetrySameLevel(e.mgr, entry); retryErr != nil {
				return false, retryErr
			}
			mark := e.applySplitEquations(entry.AppliedSplit)
			e.equationMarks = append(e.equationMarks, mark)
			e.tab.SnapNonbasicsToBounds()
			e.notifyTightenings(toBoundsTightenings(entry.AppliedSplit.BoundTightenings))
			e.smtCore.RecordSplitOutcome(entry.ChosenConstraint, -1)
			return true, nil
		}
		e.smtCore.RecordSplitOutcome(entry.ChosenConstraint, -1)
	}
	return false, nil
}
