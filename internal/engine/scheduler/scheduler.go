// Package scheduler executes a task graph, starting each task as soon as its
// dependencies have finished.
package scheduler

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting to be executed.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the task has finished successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates the task execution failed.
	StatusFailed TaskStatus = "Failed"
	// StatusSkipped indicates a dependency failed so the task never ran.
	StatusSkipped TaskStatus = "Skipped"
)

// Scheduler manages the execution of tasks in the dependency graph.
type Scheduler struct {
	executor ports.Executor
	tracer   ports.Tracer

	mu         sync.RWMutex
	taskStatus map[string]TaskStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(executor ports.Executor, tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		executor:   executor,
		tracer:     tracer,
		taskStatus: make(map[string]TaskStatus),
	}
}

// Status returns the status of the named task in the last run.
func (s *Scheduler) Status(name string) TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taskStatus[name]
}

func (s *Scheduler) updateStatus(name string, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[name] = status
}

// Run executes every task of graph with at most parallelism tasks at once.
// A parallelism below one uses the number of CPUs. Failed tasks are joined
// into the returned error; their dependents are skipped.
func (s *Scheduler) Run(ctx context.Context, graph *domain.Graph, parallelism int) error {
	if err := graph.Validate(); err != nil {
		return err
	}
	if parallelism < 1 {
		parallelism = runtime.NumCPU()
	}

	state := s.newRunState(ctx, graph, parallelism)
	return state.runExecutionLoop()
}

type result struct {
	task string
	err  error
}

type schedulerRunState struct {
	graph       *domain.Graph
	inDegree    map[string]int
	ready       []string
	active      int
	resultsCh   chan result
	errs        error
	ctx         context.Context
	parallelism int
	s           *Scheduler
}

func (s *Scheduler) newRunState(ctx context.Context, graph *domain.Graph, parallelism int) *schedulerRunState {
	inDegree := make(map[string]int, graph.TaskCount())
	var ready []string

	s.mu.Lock()
	clear(s.taskStatus)
	for task := range graph.Walk() {
		s.taskStatus[task.Name] = StatusPending
		inDegree[task.Name] = len(task.Dependencies)
		if len(task.Dependencies) == 0 {
			ready = append(ready, task.Name)
		}
	}
	s.mu.Unlock()

	return &schedulerRunState{
		graph:       graph,
		inDegree:    inDegree,
		ready:       ready,
		resultsCh:   make(chan result, parallelism),
		ctx:         ctx,
		parallelism: parallelism,
		s:           s,
	}
}

func (state *schedulerRunState) runExecutionLoop() error {
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil {
			if state.active == 0 {
				return errors.Join(state.errs, state.ctx.Err())
			}
			// Drain running tasks; nothing new starts after cancellation.
			state.handleResult(<-state.resultsCh)
			continue
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
		}
	}

	if state.ctx.Err() != nil {
		state.errs = errors.Join(state.errs, state.ctx.Err())
	}

	return state.errs
}

func (state *schedulerRunState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *schedulerRunState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil {
		taskName := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.s.updateStatus(taskName, StatusRunning)

		t, _ := state.graph.Task(taskName)
		go state.executeTask(&t)
	}
}

func (state *schedulerRunState) executeTask(t *domain.Task) {
	ctx, span := state.s.tracer.Start(state.ctx, t.Name)
	err := state.s.executor.Execute(ctx, t, span)
	if err != nil {
		span.RecordError(err)
	}
	span.End()

	state.resultsCh <- result{task: t.Name, err: err}
}

func (state *schedulerRunState) handleResult(res result) {
	state.active--
	if res.err != nil {
		wrappedErr := zerr.With(zerr.Wrap(res.err, domain.ErrTaskExecutionFailed.Error()), "task", res.task)
		state.errs = errors.Join(state.errs, wrappedErr)
		state.s.updateStatus(res.task, StatusFailed)
		state.skipDependents(res.task)
		return
	}

	state.s.updateStatus(res.task, StatusCompleted)
	dependents := slices.Clone(state.graph.Dependents(res.task))
	slices.Sort(dependents)
	for _, dep := range dependents {
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.ready = append(state.ready, dep)
		}
	}
}

func (state *schedulerRunState) skipDependents(name string) {
	for _, dep := range state.graph.Dependents(name) {
		if state.s.Status(dep) == StatusPending {
			state.s.updateStatus(dep, StatusSkipped)
			state.skipDependents(dep)
		}
	}
}
