package mqtt

import (
	"sync"

	"github.com/sweeney/plugwatch/internal/status"
)

// FakePublisher records published messages for tests.
type FakePublisher struct {
	mu sync.Mutex

	Statuses []status.Status
	Systems  []SystemEvent
	Closed   bool

	// PublishError, when set, is returned from both publish methods.
	PublishError error

	// Connected controls IsConnected. Defaults to true.
	connected    bool
	connectedSet bool
}

// NewFakePublisher creates a fake that accepts all publishes.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) PublishStatus(st status.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Statuses = append(f.Statuses, st)
	return nil
}

func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Systems = append(f.Systems, event)
	return nil
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectedSet {
		return f.connected
	}
	return true
}

// SetConnected overrides the reported connection state.
func (f *FakePublisher) SetConnected(connected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = connected
	f.connectedSet = true
}

// StatusCount returns how many statuses were published.
func (f *FakePublisher) StatusCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Statuses)
}

// LastStatus returns the most recently published status.
func (f *FakePublisher) LastStatus() (status.Status, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Statuses) == 0 {
		return status.Status{}, false
	}
	return f.Statuses[len(f.Statuses)-1], true
}
