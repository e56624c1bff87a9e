package dag

import (
	"context"
	stderrors "errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/capdag/errors"
	"github.com/kbukum/capdag/logger"
	"github.com/kbukum/capdag/observability"
)

// Mode selects how an Engine drives a run.
type Mode string

const (
	// ModeSequential runs one node at a time in topological order.
	ModeSequential Mode = "sequential"
	// ModeParallel runs every ready node on a fixed worker pool.
	ModeParallel Mode = "parallel"
)

// Hooks observe node execution. In parallel mode they are called from
// worker goroutines and must be safe for concurrent use.
type Hooks struct {
	OnNodeStart    func(ctx context.Context, id string, inputs []any)
	OnNodeComplete func(ctx context.Context, result NodeResult)
}

// Engine executes a graph in dependency order. The zero value runs
// sequentially and logs through the "dag" logger.
type Engine struct {
	Mode Mode
	// Workers bounds parallel mode (0 = GOMAXPROCS).
	Workers int
	Logger  *logger.Logger
	// Metrics records run-level instruments when set.
	Metrics *observability.Metrics
	Hooks   Hooks
}

// Process runs g once. Initial inputs are validated against each node's
// expected type, the graph is validated and ordered, and every node is
// processed after all of its predecessors. On success the Result holds the
// outputs of all terminal nodes. Any failure aborts the run and no Result is
// returned; the engine never retries a node.
func (e *Engine) Process(ctx context.Context, g *Graph, initial map[string]any) (*Result, error) {
	start := time.Now()
	exec := newExecution()
	mode := e.mode()

	ctx = logger.ContextWithRunID(ctx, exec.RunID())
	log := e.logger().WithContext(ctx)

	if err := seedInputs(g, exec, initial); err != nil {
		log.Warn("run rejected", logger.Fields(logger.FieldError, err.Error()))
		return nil, err
	}

	order, err := g.validate()
	if err != nil {
		log.Warn("run rejected", logger.Fields(logger.FieldError, err.Error()))
		return nil, err
	}

	log.Info("run started", logger.Fields(
		logger.FieldMode, string(mode),
		"nodes", len(order),
	))
	if e.Metrics != nil {
		e.Metrics.RecordRunStart(ctx)
	}

	var results map[string]NodeResult
	if mode == ModeParallel {
		results, err = e.runParallel(ctx, g, exec, order)
	} else {
		results, err = e.runSequential(ctx, g, exec, order)
	}
	duration := time.Since(start)

	if err != nil {
		e.finishRun(ctx, mode, "error", duration)
		if e.Metrics != nil {
			appErr := errors.Wrap(err)
			node, _ := appErr.Details["node"].(string)
			e.Metrics.RecordError(ctx, string(appErr.Code), node)
		}
		log.Error("run failed", logger.Fields(
			logger.FieldError, err.Error(),
			logger.FieldDuration, duration.Milliseconds(),
		))
		return nil, err
	}

	outputs := make(map[string]any)
	for _, id := range g.EndNodeIDs() {
		if v, ok := exec.Output(id); ok {
			outputs[id] = v
		}
	}

	e.finishRun(ctx, mode, "ok", duration)
	log.Info("run completed", logger.Fields(
		"terminals", len(outputs),
		logger.FieldDuration, duration.Milliseconds(),
	))

	return &Result{
		RunID:       exec.RunID(),
		Outputs:     outputs,
		Order:       order,
		NodeResults: results,
		Duration:    duration,
	}, nil
}

func (e *Engine) finishRun(ctx context.Context, mode Mode, status string, d time.Duration) {
	if e.Metrics != nil {
		e.Metrics.RecordRunEnd(ctx, string(mode), status, d)
	}
}

// seedInputs checks every initial entry, in sorted id order, before any is
// installed: unknown ids fail with NOT_FOUND and values the node cannot
// accept with INVALID_ARGUMENT.
func seedInputs(g *Graph, exec *Execution, initial map[string]any) error {
	ids := make([]string, 0, len(initial))
	for id := range initial {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		expected, ok := g.ExpectedType(id)
		if !ok {
			return errors.NotFound("node", id)
		}
		if v := initial[id]; !assignable(v, expected) {
			return errors.InvalidArgument(id, fmt.Sprintf("initial input of type %T does not satisfy %s", v, expected))
		}
	}
	for _, id := range ids {
		exec.append(id, initial[id])
	}
	return nil
}

func (e *Engine) runSequential(ctx context.Context, g *Graph, exec *Execution, order []string) (map[string]NodeResult, error) {
	results := make(map[string]NodeResult, len(order))
	for i, id := range order {
		if err := ctx.Err(); err != nil {
			e.skip(ctx, order[i:], results)
			return results, errors.Cancelled("run", err)
		}
		nr := e.runNode(ctx, g, exec, id)
		results[id] = nr
		if nr.Error != nil {
			e.skip(ctx, order[i+1:], results)
			return results, nodeFailure(ctx, nr)
		}
	}
	return results, nil
}

// skip marks ids as skipped and reports each to OnNodeComplete.
func (e *Engine) skip(ctx context.Context, ids []string, results map[string]NodeResult) {
	for _, id := range ids {
		nr := NodeResult{ID: id, Status: StatusSkipped}
		results[id] = nr
		if e.Hooks.OnNodeComplete != nil {
			e.Hooks.OnNodeComplete(ctx, nr)
		}
	}
}

// nodeFailure reports a failed node as CAPABILITY_FAILED, unless the node
// only returned the cancellation of the caller's context.
func nodeFailure(ctx context.Context, nr NodeResult) error {
	if err := ctx.Err(); err != nil && stderrors.Is(nr.Error, err) {
		return errors.Cancelled("run", err)
	}
	return errors.CapabilityFailed(nr.ID, nr.Error)
}

// completion is sent by a worker when a node finishes, with the successors
// whose countdown reached zero.
type completion struct {
	result NodeResult
	ready  []string
}

// runParallel dispatches nodes to a fixed worker pool as their remaining
// predecessor count reaches zero. The first failure cancels the run context;
// nodes already running finish and nodes never dispatched are skipped.
func (e *Engine) runParallel(ctx context.Context, g *Graph, exec *Execution, order []string) (map[string]NodeResult, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pending := make(map[string]*atomic.Int32, len(order))
	var ready []string
	for _, id := range order {
		c := new(atomic.Int32)
		c.Store(int32(g.InDegree(id)))
		pending[id] = c
		if c.Load() == 0 {
			ready = append(ready, id)
		}
	}

	tasks := make(chan string)
	done := make(chan completion, len(order))

	var wg sync.WaitGroup
	workers := e.workers(len(order))
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for id := range tasks {
				nr := e.runNode(runCtx, g, exec, id)
				var next []string
				if nr.Error == nil {
					for _, s := range g.Successors(id) {
						if c, ok := pending[s]; ok && c.Add(-1) == 0 {
							next = append(next, s)
						}
					}
				}
				done <- completion{result: nr, ready: next}
			}
		}()
	}

	results := make(map[string]NodeResult, len(order))
	dispatched := make(map[string]bool, len(order))
	var failed *NodeResult
	inflight := 0

	for {
		for len(ready) > 0 && failed == nil && runCtx.Err() == nil {
			id := ready[0]
			ready = ready[1:]
			dispatched[id] = true
			inflight++
			tasks <- id
		}
		if inflight == 0 {
			break
		}

		c := <-done
		inflight--
		results[c.result.ID] = c.result
		if c.result.Error != nil && failed == nil {
			nr := c.result
			failed = &nr
			cancel()
		}
		ready = append(ready, c.ready...)
	}

	close(tasks)
	wg.Wait()

	var undispatched []string
	for _, id := range order {
		if !dispatched[id] {
			undispatched = append(undispatched, id)
		}
	}
	e.skip(ctx, undispatched, results)

	// The parent ctx, not runCtx: fail-fast cancellation must still report
	// the node that failed first.
	if failed != nil {
		return results, nodeFailure(ctx, *failed)
	}
	if err := ctx.Err(); err != nil {
		return results, errors.Cancelled("run", err)
	}
	return results, nil
}

// runNode processes one node with the inputs accumulated so far and, on
// success, records its output and forwards it to every successor.
func (e *Engine) runNode(ctx context.Context, g *Graph, exec *Execution, id string) (nr NodeResult) {
	node, _ := g.Node(id)
	inputs := exec.Inputs(id)
	nr = NodeResult{ID: id, Inputs: len(inputs)}

	if e.Hooks.OnNodeStart != nil {
		e.Hooks.OnNodeStart(ctx, id, inputs)
	}
	defer func() {
		if e.Hooks.OnNodeComplete != nil {
			e.Hooks.OnNodeComplete(ctx, nr)
		}
	}()

	start := time.Now()
	output, err := safeProcess(ctx, node, inputs)
	nr.Duration = time.Since(start)

	log := e.logger().WithContext(ctx)
	if err != nil {
		nr.Status = StatusFailed
		nr.Error = err
		log.Error("node failed", logger.ErrorFields(id, err))
		return nr
	}

	exec.record(id, output, g.Successors(id))
	nr.Status = StatusCompleted
	nr.Output = output
	log.Debug("node completed", logger.DurationFields(id, nr.Duration))
	return nr
}

// safeProcess converts a panic inside a capability into an error.
func safeProcess(ctx context.Context, node Node, inputs []any) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Internal(fmt.Errorf("node %q panicked: %v", node.ID(), r))
		}
	}()
	return node.Process(ctx, inputs)
}

func (e *Engine) mode() Mode {
	if e.Mode == ModeParallel {
		return ModeParallel
	}
	return ModeSequential
}

func (e *Engine) workers(nodes int) int {
	n := e.Workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n > nodes {
		n = nodes
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (e *Engine) logger() *logger.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logger.Get(logger.ComponentDAG)
}
