package dag

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/capdag/errors"
	"github.com/kbukum/capdag/validation"
)

// PipelineLoader loads pipeline definitions by name.
type PipelineLoader interface {
	Load(name string) (*Pipeline, error)
}

// FilePipelineLoader loads pipelines from YAML files on disk.
type FilePipelineLoader struct {
	dirs []string
}

// NewFilePipelineLoader creates a loader that searches the given directories for pipeline YAML files.
func NewFilePipelineLoader(dirs ...string) PipelineLoader {
	return &FilePipelineLoader{dirs: dirs}
}

// Load searches each directory, and its immediate subdirectories, for
// {name}.yaml or {name}.yml.
func (l *FilePipelineLoader) Load(name string) (*Pipeline, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			candidates := []string{filepath.Join(dir, name+ext)}
			matches, err := filepath.Glob(filepath.Join(dir, "*", name+ext))
			if err != nil {
				return nil, errors.New(errors.ErrCodeInvalidArgument, fmt.Sprintf("invalid pipeline name %q", name)).
					WithCause(err).WithDetail("pipeline", name)
			}
			candidates = append(candidates, matches...)

			for _, path := range candidates {
				p, err := loadPipelineFile(path)
				if err == nil {
					return p, nil
				}
				if !os.IsNotExist(err) {
					return nil, err
				}
			}
		}
	}
	return nil, errors.NotFound("pipeline", name).WithDetail("dirs", l.dirs)
}

func loadPipelineFile(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePipeline(data, path)
}

// ParsePipeline decodes and validates a YAML pipeline definition. source
// names the document in error messages.
func ParsePipeline(data []byte, source string) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, fmt.Sprintf("parsing pipeline %s", source)).WithCause(err)
	}
	if err := validation.Validate(p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPipeline loads a pipeline from explicit file paths, returning the
// first one that exists.
func LoadPipeline(name string, paths ...string) (*Pipeline, error) {
	for _, path := range paths {
		p, err := loadPipelineFile(path)
		if err == nil {
			return p, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return nil, errors.NotFound("pipeline", name)
}

// ResolvePipeline converts a Pipeline definition into a validated Graph.
// Includes are resolved recursively and their nodes registered before the
// including pipeline's own; a pipeline included along several paths is
// merged once, and a circular include is an error.
func ResolvePipeline(p *Pipeline, registry *Registry, loader PipelineLoader) (*Graph, error) {
	var defs []NodeDef
	stack := make(map[string]bool)    // current recursion path (cycle detection)
	resolved := make(map[string]bool) // already merged (diamond includes)
	if err := collectDefs(p, loader, stack, resolved, &defs); err != nil {
		return nil, err
	}

	g := NewGraph()
	for _, def := range defs {
		node, err := registry.Build(def)
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(node); err != nil {
			return nil, err
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func collectDefs(p *Pipeline, loader PipelineLoader, stack, resolved map[string]bool, defs *[]NodeDef) error {
	if stack[p.Name] {
		return errors.InvalidGraph(fmt.Sprintf("circular include detected for pipeline %q", p.Name)).
			WithDetail("pipeline", p.Name)
	}
	stack[p.Name] = true
	defer delete(stack, p.Name)

	for _, name := range p.Includes {
		if resolved[name] {
			continue
		}
		if loader == nil {
			return errors.NotFound("pipeline", name)
		}
		sub, err := loader.Load(name)
		if err != nil {
			return fmt.Errorf("loading include %q: %w", name, err)
		}
		if err := collectDefs(sub, loader, stack, resolved, defs); err != nil {
			return err
		}
		// A file may declare a name other than the one it is included by.
		resolved[name] = true
	}

	*defs = append(*defs, p.Nodes...)
	resolved[p.Name] = true
	return nil
}
