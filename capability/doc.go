// Package capability provides reference capabilities for capdag graphs and
// registers them as pipeline factories.
//
//	reg := dag.NewRegistry()
//	capability.Register(reg)
//
// Registered names: echo, sum, join, constant, template.
package capability
