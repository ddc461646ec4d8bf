package device

import (
	"context"
	"sync"
)

// FakeController is a test double simulating a plug without a network.
type FakeController struct {
	mu sync.Mutex

	// State is the simulated relay state. SetState updates it.
	State PlugState

	// QueryErrs contains errors consumed one per QueryState call.
	// A nil entry means that call succeeds. When exhausted, calls
	// succeed.
	QueryErrs []error
	queryIdx  int

	// SetErr, if set, is returned by every SetState call.
	SetErr error

	// Queries counts QueryState calls.
	Queries int

	// Sets records the desired state of every SetState call,
	// including failed ones.
	Sets []PlugState

	// Closed tracks if Close was called.
	Closed bool

	// OnSet, if set, is called while a write is in flight and before
	// the state is applied. Tests use it to hold a write open and
	// probe for overlapping writers.
	OnSet func()

	inFlight int
	overlaps int
}

// NewFakeController creates a FakeController with the given initial state.
func NewFakeController(initial PlugState) *FakeController {
	return &FakeController{State: initial}
}

// QueryState returns the simulated relay state or the next scripted error.
func (f *FakeController) QueryState(ctx context.Context) (PlugState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Queries++
	if f.queryIdx < len(f.QueryErrs) {
		err := f.QueryErrs[f.queryIdx]
		f.queryIdx++
		if err != nil {
			return StateUnknown, err
		}
	}
	return f.State, nil
}

// SetState records the write and applies it to State unless SetErr is set.
// Concurrent calls are detected and counted; see Overlaps.
func (f *FakeController) SetState(ctx context.Context, desired PlugState) error {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > 1 {
		f.overlaps++
	}
	hook := f.OnSet
	f.mu.Unlock()

	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	f.Sets = append(f.Sets, desired)
	if f.SetErr != nil {
		return f.SetErr
	}
	f.State = desired
	return nil
}

// Close marks the controller as closed.
func (f *FakeController) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Overlaps returns how many SetState calls observed another write in
// flight. Serialized callers must keep this at zero.
func (f *FakeController) Overlaps() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overlaps
}

// QueryCount returns the number of QueryState calls so far.
func (f *FakeController) QueryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Queries
}

// SetCount returns the number of SetState calls so far.
func (f *FakeController) SetCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Sets)
}

// LastSet returns the most recent written state, or Unknown if none.
func (f *FakeController) LastSet() PlugState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Sets) == 0 {
		return StateUnknown
	}
	return f.Sets[len(f.Sets)-1]
}
