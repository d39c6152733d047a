// Package tableau implements the Tableau (C2): the bounded-variable
// revised-simplex LP core that sits underneath every SAT/UNSAT
// decision. Grounded on the teacher's PureGoSimplexSolver
// (two-phase dense-tableau simplex with row pivoting, entering-column
// selection by most-negative reduced cost, and a minimum-ratio leaving
// test), generalized from the teacher's 0/standard-form variables to
// Marabou-style bounded variables: every nonbasic variable sits AT_LO
// or AT_HI rather than always at zero, and pivoting carries bound
// information instead of synthesizing slack/artificial columns.
package tableau

import (
	"fmt"
	"math"

	"plverify/internal/shared"
)

// NonbasicStatus records which bound a nonbasic variable currently sits at.
type NonbasicStatus int

const (
	AtLower NonbasicStatus = iota
	AtUpper
)

// StorageLevel controls how much of the tableau's state StoreState
// snapshots, mirroring spec.md §4.7's NONE/STRUCTURE/FULL levels used
// by the Precision Restorer.
type StorageLevel int

const (
	StoreNone StorageLevel = iota
	StoreStructure
	StoreFull
)

// snapshot is a saved tableau state for StoreState/RestoreState.
type snapshot struct {
	level     StorageLevel
	basic     []int
	nonbasic  []int
	status    map[int]NonbasicStatus
	assign    map[int]float64
	matrix    [][]float64
	rhs       []float64
}

// Tableau is the dense constraint matrix Ax = b together with the
// current basis and variable assignment.
type Tableau struct {
	numVars  int
	numRows  int
	A        [][]float64 // numRows x numVars
	b        []float64
	basic    []int // basic[row] = variable index basic in that row
	nonbasic []int
	status   map[int]NonbasicStatus
	assign   map[int]float64

	lowerBound func(int) float64
	upperBound func(int) float64

	pivotTolerance float64
	numPivots      int
}

// New builds an empty tableau for numVars structural variables. Rows
// are added with AddEquation; lowerBound/upperBound are callbacks into
// the Bound Manager (C1) so the tableau never owns bounds itself.
func New(numVars int, lowerBound, upperBound func(int) float64, pivotTolerance float64) *Tableau {
	return &Tableau{
		numVars:        numVars,
		status:         make(map[int]NonbasicStatus, numVars),
		assign:         make(map[int]float64, numVars),
		lowerBound:     lowerBound,
		upperBound:     upperBound,
		pivotTolerance: pivotTolerance,
	}
}

// AddEquation appends one row Σ coeffs[v]*x_v = rhs to the constraint
// matrix. Rows are expected to already include the auxiliary variable
// that will be basic for that row (spec.md §3's equality-only form).
func (t *Tableau) AddEquation(coeffs map[int]float64, auxVar int, rhs float64) {
	row := make([]float64, t.numVars)
	for v, c := range coeffs {
		row[v] = c
	}
	t.A = append(t.A, row)
	t.b = append(t.b, rhs)
	t.basic = append(t.basic, auxVar)
	t.numRows++
}

// RowCount returns the number of rows currently in the constraint
// matrix, used as a mark that a later TruncateRows can undo back to.
func (t *Tableau) RowCount() int { return t.numRows }

// AddDynamicEquation appends a new row after InitializeNonbasics has
// already run — the entry path for a case split's phase-specific
// equation (spec.md §3), as opposed to AddEquation's ingestion-time
// use. auxVar must already be nonbasic; it becomes basic in the new
// row and the whole basic assignment is recomputed so the new row
// holds immediately.
func (t *Tableau) AddDynamicEquation(coeffs map[int]float64, auxVar int, rhs float64) {
	t.AddEquation(coeffs, auxVar, rhs)
	for i, nb := range t.nonbasic {
		if nb == auxVar {
			t.nonbasic = append(t.nonbasic[:i], t.nonbasic[i+1:]...)
			break
		}
	}
	// Eliminate every variable already basic in an earlier row, so the
	// new row is expressed over nonbasic variables and its aux alone.
	last := t.numRows - 1
	for row := 0; row < last; row++ {
		bv := t.basic[row]
		if t.A[last][bv] == 0 || t.A[row][bv] == 0 {
			continue
		}
		factor := t.A[last][bv] / t.A[row][bv]
		for j := range t.A[last] {
			t.A[last][j] -= factor * t.A[row][j]
		}
		t.b[last] -= factor * t.b[row]
	}
	t.computeBasicAssignment()
}

// TruncateRows drops every row added at or after mark (as returned by
// an earlier RowCount), the undo half of AddDynamicEquation used when
// a case split is backtracked out of. Each dropped row's basic
// variable returns to the nonbasic set, resting at whichever of its
// bounds InitializeNonbasics would have chosen.
func (t *Tableau) TruncateRows(mark int) {
	if mark >= t.numRows {
		return
	}
	for row := mark; row < t.numRows; row++ {
		v := t.basic[row]
		t.nonbasic = append(t.nonbasic, v)
		lo, hi := t.lowerBound(v), t.upperBound(v)
		if math.IsInf(lo, -1) && !math.IsInf(hi, 1) {
			t.status[v] = AtUpper
			t.assign[v] = hi
		} else {
			t.status[v] = AtLower
			t.assign[v] = lo
		}
	}
	t.A = t.A[:mark]
	t.b = t.b[:mark]
	t.basic = t.basic[:mark]
	t.numRows = mark
	t.computeBasicAssignment()
}

// SnapNonbasicsToBounds re-seats every nonbasic variable onto its
// current resting bound. A bound tightening or a newly entered case
// split can move the bound a nonbasic variable is resting at out from
// under it; without this step the variable keeps its stale value and
// computeBasicAssignment derives every basic variable from a value
// that no longer reflects the tightened bound.
func (t *Tableau) SnapNonbasicsToBounds() {
	for _, v := range t.nonbasic {
		lo, hi := t.lowerBound(v), t.upperBound(v)
		if t.status[v] == AtUpper {
			if !math.IsInf(hi, 1) {
				t.assign[v] = hi
			} else if !math.IsInf(lo, -1) {
				t.status[v] = AtLower
				t.assign[v] = lo
			}
			continue
		}
		if !math.IsInf(lo, -1) {
			t.assign[v] = lo
		} else if !math.IsInf(hi, 1) {
			t.status[v] = AtUpper
			t.assign[v] = hi
		}
	}
	t.computeBasicAssignment()
}

// InitializeNonbasics marks every structural variable not already
// basic as nonbasic, starting at its lower bound (or upper, if the
// lower bound is -Inf and the upper is finite).
func (t *Tableau) InitializeNonbasics() {
	isBasic := make(map[int]bool, len(t.basic))
	for _, v := range t.basic {
		isBasic[v] = true
	}
	t.nonbasic = t.nonbasic[:0]
	for v := 0; v < t.numVars; v++ {
		if isBasic[v] {
			continue
		}
		t.nonbasic = append(t.nonbasic, v)
		lo, hi := t.lowerBound(v), t.upperBound(v)
		if math.IsInf(lo, -1) && !math.IsInf(hi, 1) {
			t.status[v] = AtUpper
			t.assign[v] = hi
		} else {
			t.status[v] = AtLower
			t.assign[v] = lo
		}
	}
	t.computeBasicAssignment()
}

// computeBasicAssignment recomputes every basic variable's value from
// the current nonbasic assignment and the constraint matrix, the
// direct-recomputation step the teacher's solveStandardForm performs
// after each phase switch.
func (t *Tableau) computeBasicAssignment() {
	for row := 0; row < t.numRows; row++ {
		basicVar := t.basic[row]
		pivotCoeff := t.A[row][basicVar]
		if pivotCoeff == 0 {
			continue
		}
		sum := t.b[row]
		for _, nb := range t.nonbasic {
			if t.A[row][nb] != 0 {
				sum -= t.A[row][nb] * t.assign[nb]
			}
		}
		t.assign[basicVar] = sum / pivotCoeff
	}
}

// Value returns the current assignment of v.
func (t *Tableau) Value(v int) float64 { return t.assign[v] }

// IsBasic reports whether v is currently a basic variable.
func (t *Tableau) IsBasic(v int) bool {
	for _, b := range t.basic {
		if b == v {
			return true
		}
	}
	return false
}

// BasicVariables returns the variable currently basic in each row.
func (t *Tableau) BasicVariables() []int { return append([]int(nil), t.basic...) }

// OutOfBounds reports whether v's current assignment violates its
// bounds by more than the pivot tolerance — the
// VarOutOfBoundDuringOptimization trigger of spec.md §4.2/§7.
func (t *Tableau) OutOfBounds(v int) bool {
	value := t.assign[v]
	lo, hi := t.lowerBound(v), t.upperBound(v)
	return value < lo-t.pivotTolerance || value > hi+t.pivotTolerance
}

// BasicOutOfBounds returns the first basic variable violating its
// bounds, used by the engine's restoreFeasibility to decide whether the
// current basis is already feasible.
func (t *Tableau) BasicOutOfBounds() (int, bool) {
	for _, v := range t.basic {
		if t.OutOfBounds(v) {
			return v, true
		}
	}
	return 0, false
}

// Pivot performs a single simplex pivot bringing entering into the
// basis in place of the variable currently basic in leavingRow. The
// variable that leaves rests at whichever bound it is closer to
// (leavingStatus); entering's value, like every basic variable's, is
// then derived from the row rather than assigned directly — the
// generalization of the teacher's row-normalize-and-eliminate pivot
// from always-zero nonbasics to bounded variables that can rest at
// either bound.
func (t *Tableau) Pivot(leavingRow, entering int) error {
	if leavingRow < 0 || leavingRow >= t.numRows {
		return shared.ErrMalformedBasis.WithError(fmt.Errorf("pivot row %d out of range", leavingRow))
	}
	if entering < 0 || entering >= t.numVars {
		return shared.ErrMalformedBasis.WithError(fmt.Errorf("entering variable %d out of range", entering))
	}
	pivotCoeff := t.A[leavingRow][entering]
	if math.Abs(pivotCoeff) < t.pivotTolerance {
		return shared.ErrMalformedBasis.WithError(fmt.Errorf("pivot element too small: %g", pivotCoeff))
	}

	leaving := t.basic[leavingRow]

	for j := range t.A[leavingRow] {
		t.A[leavingRow][j] /= pivotCoeff
	}
	t.b[leavingRow] /= pivotCoeff

	for row := 0; row < t.numRows; row++ {
		if row == leavingRow {
			continue
		}
		factor := t.A[row][entering]
		if factor == 0 {
			continue
		}
		for j := range t.A[row] {
			t.A[row][j] -= factor * t.A[leavingRow][j]
		}
		t.b[row] -= factor * t.b[leavingRow]
	}

	t.basic[leavingRow] = entering
	for i, nb := range t.nonbasic {
		if nb == entering {
			t.nonbasic[i] = leaving
			break
		}
	}
	t.status[leaving] = t.leavingStatus(leaving)
	if t.status[leaving] == AtUpper {
		t.assign[leaving] = t.upperBound(leaving)
	} else {
		t.assign[leaving] = t.lowerBound(leaving)
	}
	t.computeBasicAssignment()
	t.numPivots++
	return nil
}

// leavingStatus decides whether a variable that just left the basis
// rests at its lower or upper bound, based on which side it hit.
func (t *Tableau) leavingStatus(v int) NonbasicStatus {
	lo, hi := t.lowerBound(v), t.upperBound(v)
	value := t.assign[v]
	if math.Abs(value-hi) < math.Abs(value-lo) {
		return AtUpper
	}
	return AtLower
}

// NumPivots returns the running pivot count for statistics collection.
func (t *Tableau) NumPivots() int { return t.numPivots }

// RowOfBasic returns the row in which v is currently basic.
func (t *Tableau) RowOfBasic(v int) (int, bool) {
	for row, b := range t.basic {
		if b == v {
			return row, true
		}
	}
	return 0, false
}

// NonbasicVariables returns the variables currently out of the basis.
func (t *Tableau) NonbasicVariables() []int { return append([]int(nil), t.nonbasic...) }

// RowCoefficient returns row's coefficient on variable v.
func (t *Tableau) RowCoefficient(row, v int) float64 { return t.A[row][v] }

// Status returns the bound a nonbasic variable currently rests at; the
// result is meaningless for a basic variable.
func (t *Tableau) Status(v int) NonbasicStatus { return t.status[v] }

// StoreState snapshots the tableau at the requested level, matching
// spec.md §4.7: NONE captures nothing, STRUCTURE captures the basis and
// matrix for a cheap restart, FULL additionally captures the full
// variable assignment for restoring the precise pre-degradation state.
func (t *Tableau) StoreState(level StorageLevel) *snapshot {
	if level == StoreNone {
		return &snapshot{level: level}
	}
	s := &snapshot{
		level:    level,
		basic:    append([]int(nil), t.basic...),
		nonbasic: append([]int(nil), t.nonbasic...),
		status:   make(map[int]NonbasicStatus, len(t.status)),
	}
	for v, st := range t.status {
		s.status[v] = st
	}
	s.matrix = make([][]float64, len(t.A))
	for i, row := range t.A {
		s.matrix[i] = append([]float64(nil), row...)
	}
	s.rhs = append([]float64(nil), t.b...)
	if level == StoreFull {
		s.assign = make(map[int]float64, len(t.assign))
		for v, val := range t.assign {
			s.assign[v] = val
		}
	}
	return s
}

// RestoreState reverts the tableau to a previously stored snapshot.
func (t *Tableau) RestoreState(s *snapshot) error {
	if s == nil || s.level == StoreNone {
		return shared.ErrRestorationFailed.WithError(fmt.Errorf("no snapshot to restore"))
	}
	t.basic = append([]int(nil), s.basic...)
	t.nonbasic = append([]int(nil), s.nonbasic...)
	t.status = make(map[int]NonbasicStatus, len(s.status))
	for v, st := range s.status {
		t.status[v] = st
	}
	t.A = make([][]float64, len(s.matrix))
	for i, row := range s.matrix {
		t.A[i] = append([]float64(nil), row...)
	}
	t.b = append([]float64(nil), s.rhs...)
	t.numRows = len(t.A)
	if s.level == StoreFull {
		t.assign = make(map[int]float64, len(s.assign))
		for v, val := range s.assign {
			t.assign[v] = val
		}
	} else {
		t.computeBasicAssignment()
	}
	return nil
}

// Degradation measures how far every basic variable's computed value
// strays from satisfying its row exactly, the signal the Precision
// Restorer (C7) watches to decide when to re-factorize (spec.md §4.7).
func (t *Tableau) Degradation() float64 {
	worst := 0.0
	for row := 0; row < t.numRows; row++ {
		sum := -t.b[row]
		for v := 0; v < t.numVars; v++ {
			if t.A[row][v] != 0 {
				sum += t.A[row][v] * t.assign[v]
			}
		}
		if math.Abs(sum) > worst {
			worst = math.Abs(sum)
		}
	}
	return worst
}
