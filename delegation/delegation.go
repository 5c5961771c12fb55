package delegation

import (
	"context"
	"fmt"
	"path"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/XinyueZ/tinyagent/core"
	"github.com/XinyueZ/tinyagent/logging"
	"github.com/XinyueZ/tinyagent/registry"
)

// Busy messages returned as Outcome.Message under lock contention. They are
// normal return values the parent model can react to, not faults.
const (
	busySingleMessage = "transfer_to_subagent is busy for this parent agent (another transfer_to_subagent call is in progress); skipped"
	busyManyMessage   = "transfer_to_subagents is busy for this parent agent (another transfer_to_subagents call is in progress); skipped"
)

// Delegator implements the transfer protocol on top of a registry and a
// workspace. One advisory try-lock exists per (parent id, pattern) pair,
// created lazily on first use and living for the delegator's lifetime; a lock
// is only ever held for the duration of one transfer call.
type Delegator struct {
	registry *registry.Registry
	ws       core.Workspace
	logger   logging.Logger

	mu          sync.Mutex // guards the two lock maps
	singleLocks map[string]*sync.Mutex
	multiLocks  map[string]*sync.Mutex
}

// New creates a delegator. A nil logger disables logging.
func New(reg *registry.Registry, ws core.Workspace, logger logging.Logger) *Delegator {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Delegator{
		registry:    reg,
		ws:          ws,
		logger:      logger,
		singleLocks: make(map[string]*sync.Mutex),
		multiLocks:  make(map[string]*sync.Mutex),
	}
}

func (d *Delegator) lockFor(locks map[string]*sync.Mutex, parentID string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	lk, ok := locks[parentID]
	if !ok {
		lk = &sync.Mutex{}
		locks[parentID] = lk
	}
	return lk
}

// TransferSingle hands task from the named parent to one of its subagents and
// runs it synchronously on the calling goroutine. Contention on the parent's
// single-target lock yields a StateBusy outcome immediately. A subagent error
// propagates to the caller, after the lock has been released.
func (d *Delegator) TransferSingle(ctx context.Context, from, to, task string) (Outcome, error) {
	parent, ok := d.registry.GetByName(from)
	if !ok {
		return Outcome{}, &NotFoundError{Name: from}
	}

	lk := d.lockFor(d.singleLocks, parent.ID())
	if !lk.TryLock() {
		d.logger.Info("delegate.single.busy", "from", from, "to", to)
		return Outcome{State: StateBusy, Message: busySingleMessage}, nil
	}
	defer lk.Unlock()

	sub, ok := parent.SubagentByName(to)
	if !ok {
		return Outcome{}, &NotFoundError{Name: to, Parent: from}
	}
	// A single-target recipient only needs the subagent flag; parallel
	// fan-out capability is not required here.
	if !sub.Subagent() {
		return Outcome{}, &CapabilityError{Name: to, Capability: "is_subagent"}
	}

	d.logger.Info("delegate.single.start", "from", from, "to", to)
	if _, err := sub.Invoke(ctx, task); err != nil {
		d.logger.Error("delegate.single.error", "from", from, "to", to, "error", err.Error())
		return Outcome{}, fmt.Errorf("subagent %q: %w", to, err)
	}

	status := d.resolve(sub)
	d.logger.Info("delegate.single.done", "from", from, "to", to)

	return Outcome{State: StateCompleted, Message: status}, nil
}

// TransferMany hands the same task to several subagents of the named parent
// concurrently. All targets are validated before anything is dispatched; the
// worker pool is bounded by min(len(to), available parallelism). Every
// requested name appears in the returned statuses exactly once; a failing
// subagent yields a StateFailed outcome for that name only.
func (d *Delegator) TransferMany(ctx context.Context, from string, to []string, task string) (Fanout, error) {
	if len(to) == 0 {
		return Fanout{}, fmt.Errorf("transfer from %q: no subagent names given", from)
	}

	parent, ok := d.registry.GetByName(from)
	if !ok {
		return Fanout{}, &NotFoundError{Name: from}
	}

	lk := d.lockFor(d.multiLocks, parent.ID())
	if !lk.TryLock() {
		d.logger.Info("delegate.many.busy", "from", from, "targets", len(to))
		return Fanout{State: StateBusy, Message: busyManyMessage}, nil
	}
	defer lk.Unlock()

	// Fail fast: resolve and validate every target before launching any.
	subs := make([]core.Agent, 0, len(to))
	for _, name := range to {
		sub, ok := parent.SubagentByName(name)
		if !ok {
			return Fanout{}, &NotFoundError{Name: name, Parent: from}
		}
		if !sub.Subagent() {
			return Fanout{}, &CapabilityError{Name: name, Capability: "is_subagent"}
		}
		if !sub.ParallelFanout() {
			return Fanout{}, &CapabilityError{Name: name, Capability: "supports_parallel_fanout"}
		}
		subs = append(subs, sub)
	}

	d.logger.Info("delegate.many.start", "from", from, "targets", len(subs))

	var (
		g        errgroup.Group
		resultMu sync.Mutex
		statuses = make(map[string]Outcome, len(subs))
	)
	g.SetLimit(min(len(subs), runtime.GOMAXPROCS(0)))

	for _, sub := range subs {
		g.Go(func() error {
			_, err := sub.Invoke(ctx, task)

			resultMu.Lock()
			defer resultMu.Unlock()
			if err != nil {
				// Capture the failure for this branch only; siblings run on.
				statuses[sub.Name()] = Outcome{
					State:   StateFailed,
					Message: fmt.Sprintf("Error from subagent '%s': %v", sub.Name(), err),
				}
				d.logger.Error("delegate.many.child_error", "from", from, "to", sub.Name(), "error", err.Error())
				return nil
			}
			statuses[sub.Name()] = Outcome{State: StateCompleted}
			return nil
		})
	}
	_ = g.Wait()

	for _, sub := range subs {
		if st := statuses[sub.Name()]; st.State == StateCompleted {
			statuses[sub.Name()] = Outcome{State: StateCompleted, Message: d.resolve(sub)}
		}
	}

	d.logger.Info("delegate.many.done", "from", from, "targets", len(subs))

	return Fanout{State: StateCompleted, Statuses: statuses}, nil
}

// resolve maps a finished subagent to its status message using a three-tier
// fallback: the dedicated result file, then the memory file, then a
// placeholder telling the parent to ignore this branch.
func (d *Delegator) resolve(sub core.Agent) string {
	resultPath := path.Join(sub.OutputLocation(), "result.md")
	if d.ws != nil && d.ws.Exists(resultPath) {
		return fmt.Sprintf("The %s has finished the task and you can check the result file: %s", sub.Name(), resultPath)
	}
	memoryPath := path.Join(sub.OutputLocation(), "memory.md")
	if d.ws != nil && d.ws.Exists(memoryPath) {
		return fmt.Sprintf("The %s has finished the task without a result file, **but** you can check the memory file: %s", sub.Name(), memoryPath)
	}
	return fmt.Sprintf("The %s has finished the task but no result or memory has been generated, please **ignore** this topic research.", sub.Name())
}
