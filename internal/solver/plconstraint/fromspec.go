package plconstraint

import (
	"fmt"

	"plverify/internal/query"
)

// FromSpec turns one wire-form PLConstraintSpec into a live Constraint,
// the bridge between the InputQuery adapter (spec.md §6's consumed
// collaborator) and the engine's PL-constraint registry.
func FromSpec(spec query.PLConstraintSpec) (Constraint, error) {
	switch spec.Kind {
	case "relu":
		if len(spec.Variables) != 2 {
			return nil, fmt.Errorf("relu constraint needs exactly 2 variables, got %d", len(spec.Variables))
		}
		return NewReLU(spec.Variables[0], spec.Variables[1]), nil
	case "abs":
		if len(spec.Variables) != 2 {
			return nil, fmt.Errorf("abs constraint needs exactly 2 variables, got %d", len(spec.Variables))
		}
		return NewAbsoluteValue(spec.Variables[0], spec.Variables[1]), nil
	case "max":
		if len(spec.Variables) < 2 {
			return nil, fmt.Errorf("max constraint needs at least 2 variables, got %d", len(spec.Variables))
		}
		elements := spec.Variables[:len(spec.Variables)-1]
		f := spec.Variables[len(spec.Variables)-1]
		return NewMax(elements, f), nil
	case "sign":
		if len(spec.Variables) != 2 {
			return nil, fmt.Errorf("sign constraint needs exactly 2 variables, got %d", len(spec.Variables))
		}
		return NewSign(spec.Variables[0], spec.Variables[1]), nil
	case "disjunction":
		return nil, fmt.Errorf("disjunction constraints must be built programmatically, not from a flat spec")
	default:
		return nil, fmt.Errorf("unknown piecewise-linear constraint kind %q", spec.Kind)
	}
}
