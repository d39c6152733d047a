//go:build !cgo || !golp

package lp

import "errors"

// GolpBackend is unavailable in this build; NewGolpBackend reports why
// rather than panicking, the way the teacher's nocgo stub does, so
// LP_BACKEND_ENABLED callers get a clear error instead of a missing
// symbol.
type GolpBackend struct{}

var errGolpUnavailable = errors.New("lp: golp backend requires building with cgo and the golp tag (go build -tags golp)")

func NewGolpBackend(numVars int) *GolpBackend { return &GolpBackend{} }

func (b *GolpBackend) Name() string { return "golp-lp_solve (unavailable)" }

func (b *GolpBackend) EncodeInputQuery(numVars int, equations []Equation, lower, upper map[int]float64) error {
	return errGolpUnavailable
}
func (b *GolpBackend) EncodeCostFunction(coefficients map[int]float64) error { return errGolpUnavailable }
func (b *GolpBackend) SetLowerBound(v int, value float64) error             { return errGolpUnavailable }
func (b *GolpBackend) SetUpperBound(v int, value float64) error             { return errGolpUnavailable }
func (b *GolpBackend) SetTimeLimit(seconds float64)                         {}
func (b *GolpBackend) SetVerbosity(level int)                               {}
func (b *GolpBackend) SetNumberOfThreads(n int)                             {}
func (b *GolpBackend) Solve() error                                         { return errGolpUnavailable }
func (b *GolpBackend) UpdateModel() error                                   { return errGolpUnavailable }
func (b *GolpBackend) HaveFeasibleSolution() bool                           { return false }
func (b *GolpBackend) Optimal() bool                                        { return false }
func (b *GolpBackend) Infeasible() bool                                     { return false }
func (b *GolpBackend) Timeout() bool                                        { return false }
func (b *GolpBackend) ExtractSolution() (map[int]float64, error)            { return nil, errGolpUnavailable }
func (b *GolpBackend) GetNumberOfSimplexIterations() int                   { return 0 }
func (b *GolpBackend) Close()                                               {}
