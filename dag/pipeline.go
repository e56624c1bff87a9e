package dag

import (
	"fmt"

	"github.com/kbukum/capdag/errors"
)

// Pipeline is a composable, YAML-defined graph definition.
type Pipeline struct {
	// Name is the pipeline identifier.
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	Description string `yaml:"description,omitempty" mapstructure:"description"`
	// Includes lists sub-pipeline names whose nodes are merged in first (recursive).
	Includes []string `yaml:"includes,omitempty" mapstructure:"includes"`
	// Nodes defines the pipeline's own nodes.
	Nodes []NodeDef `yaml:"nodes" mapstructure:"nodes" validate:"dive"`
}

// NodeDef defines a node within a pipeline.
type NodeDef struct {
	// ID is the node identifier in the resolved graph.
	ID string `yaml:"id" mapstructure:"id" validate:"required"`
	// Capability is the registry lookup key for the node's factory.
	Capability string `yaml:"capability" mapstructure:"capability" validate:"required"`
	// Next lists successor node ids.
	Next []string `yaml:"next,omitempty" mapstructure:"next"`
	// Params is passed to the capability factory.
	Params map[string]any `yaml:"params,omitempty" mapstructure:"params"`
}

// Param returns the raw parameter stored under key.
func (d NodeDef) Param(key string) (any, bool) {
	v, ok := d.Params[key]
	return v, ok
}

// StringParam returns a required string parameter.
func (d NodeDef) StringParam(key string) (string, error) {
	v, ok := d.Params[key]
	if !ok {
		return "", errors.InvalidArgument(d.ID, fmt.Sprintf("missing parameter %q", key))
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.InvalidArgument(d.ID, fmt.Sprintf("parameter %q must be a string, got %T", key, v))
	}
	return s, nil
}

// StringParamOr returns a string parameter or def when it is absent.
func (d NodeDef) StringParamOr(key, def string) (string, error) {
	if _, ok := d.Params[key]; !ok {
		return def, nil
	}
	return d.StringParam(key)
}
