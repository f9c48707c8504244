package pipeline

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/semaphore"

	"nextmind-agent-be/pkg/agent/tools"
)

const defaultToolTimeout = 30 * time.Second

// Executor runs the single tool call of a request. A weighted semaphore
// bounds how many tool executions run concurrently across requests.
type Executor struct {
	registry *tools.Registry
	sem      *semaphore.Weighted
	timeout  time.Duration
	logger   *log.Logger
}

func NewExecutor(registry *tools.Registry, maxConcurrent int64, logger *log.Logger) *Executor {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	return &Executor{
		registry: registry,
		sem:      semaphore.NewWeighted(maxConcurrent),
		timeout:  defaultToolTimeout,
		logger:   logger,
	}
}

// Execute runs the state's tool call, if any. Tool failures never abort
// the request: the error becomes part of the tool result so the
// synthesizer can explain it.
func (e *Executor) Execute(ctx context.Context, state *State) {
	if state.ToolCall == nil {
		state.ToolResult = nil
		return
	}

	call := *state.ToolCall
	if err := e.sem.Acquire(ctx, 1); err != nil {
		state.ToolResult = map[string]interface{}{"error": err.Error(), "tool": call.Name}
		return
	}
	defer e.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result, err := e.registry.Execute(ctx, call)
	if err != nil {
		if e.logger != nil {
			e.logger.Printf("[EXECUTOR] tool %s failed: %v", call.Name, err)
		}
		state.ToolResult = map[string]interface{}{"error": err.Error(), "tool": call.Name}
		return
	}
	state.ToolResult = result
}
