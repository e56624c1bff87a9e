package capability

import (
	"context"
	"fmt"

	"github.com/kbukum/capdag/dag"
	"github.com/kbukum/capdag/errors"
)

// Register installs the built-in capability factories.
func Register(reg *dag.Registry) {
	reg.Register("echo", func(def dag.NodeDef) (dag.Node, error) {
		return Echo[any](def.ID, def.Next...), nil
	})
	reg.Register("sum", func(def dag.NodeDef) (dag.Node, error) {
		return numericSum(def.ID, def.Next...), nil
	})
	reg.Register("join", func(def dag.NodeDef) (dag.Node, error) {
		sep, err := def.StringParamOr("separator", "")
		if err != nil {
			return nil, err
		}
		return Join(def.ID, sep, def.Next...), nil
	})
	reg.Register("constant", func(def dag.NodeDef) (dag.Node, error) {
		value, ok := def.Param("value")
		if !ok {
			return nil, errors.InvalidArgument(def.ID, `missing parameter "value"`)
		}
		return Constant[any](def.ID, value, def.Next...), nil
	})
	reg.Register("template", func(def dag.NodeDef) (dag.Node, error) {
		text, err := def.StringParam("template")
		if err != nil {
			return nil, err
		}
		return Template(def.ID, text, def.Next...)
	})
}

// numericSum adds inputs of any numeric type as float64. Pipeline inputs
// arrive from JSON and YAML, where every number decodes as float64 or int.
func numericSum(id string, successors ...string) dag.Node {
	return dag.NewNode(id, func(_ context.Context, inputs []any) (float64, error) {
		var total float64
		for i, v := range inputs {
			f, ok := toFloat(v)
			if !ok {
				return 0, errors.InvalidArgument(id, fmt.Sprintf("input %d: %T is not a number", i, v))
			}
			total += f
		}
		return total, nil
	}, successors...)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
