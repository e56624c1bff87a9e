package logger

import (
	"time"
)

// Standard field key constants for structured logging.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldNode      = "node"
	FieldPipeline  = "pipeline"
	FieldMode      = "mode"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	log.Info("done", logger.Fields("node", "A", "inputs", 2))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for a node that failed.
func ErrorFields(node string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldNode:  node,
		FieldError: err.Error(),
	}
}

// DurationFields creates fields for a timed node execution.
func DurationFields(node string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldNode:     node,
		FieldDuration: d.Milliseconds(),
	}
}
