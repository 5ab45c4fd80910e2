package app

import (
	"context"
	"sync"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

type DispatchState string

const (
	StateReceived              DispatchState = "RECEIVED"
	StateNotificationCancelled DispatchState = "NOTIFICATION_CANCELLED"
	StateLookup                DispatchState = "LOOKUP"
	StateCompleted             DispatchState = "COMPLETED"
	StateNotFound              DispatchState = "NOT_FOUND"
	StateLookupFailed          DispatchState = "LOOKUP_FAILED"
	StateCompleteWrite         DispatchState = "COMPLETE_WRITE"
	StateSuccess               DispatchState = "SUCCESS"
	StateWriteFailed           DispatchState = "WRITE_FAILED"
	StateCancelled             DispatchState = "CANCELLED"
	StateOpened                DispatchState = "OPENED"
	StateUnsupported           DispatchState = "UNSUPPORTED"
)

func (s DispatchState) IsTerminal() bool {
	switch s {
	case StateNotFound, StateLookupFailed, StateSuccess, StateWriteFailed,
		StateCancelled, StateOpened, StateUnsupported:
		return true
	default:
		return false
	}
}

// Outcome is the final result of handling one notification action.
type Outcome struct {
	Action     domain.ActionKind
	ReminderID domain.ReminderID
	DocumentID domain.DocumentID
	State      DispatchState
	Message    string
	Err        error
}

// Task tracks one dispatched action until it reaches a terminal state.
type Task struct {
	event  domain.ActionEvent
	done   chan struct{}
	cancel context.CancelFunc

	mu      sync.Mutex
	states  []DispatchState
	outcome Outcome
	closed  bool
}

func newTask(event domain.ActionEvent) *Task {
	return &Task{
		event:  event,
		done:   make(chan struct{}),
		states: []DispatchState{StateReceived},
	}
}

func (t *Task) Event() domain.ActionEvent {
	return t.event
}

// Done is closed once the task has an outcome.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-t.done:
		o, _ := t.Outcome()

		return o, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Cancel stops the background work of the task. Finished tasks are not
// affected.
func (t *Task) Cancel() {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (t *Task) Outcome() (Outcome, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.outcome, t.closed
}

// States returns every state the task has visited, in order.
func (t *Task) States() []DispatchState {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]DispatchState, len(t.states))
	copy(out, t.states)

	return out
}

func (t *Task) setCancel(cancel context.CancelFunc) {
	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()
}

// enter records an intermediate state. Terminal states are only recorded by
// finish, together with the outcome.
func (t *Task) enter(s DispatchState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || s.IsTerminal() {
		return
	}

	t.states = append(t.states, s)
}

func (t *Task) finish(o Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}

	o.Action = t.event.Kind
	o.ReminderID = t.event.ReminderID

	if t.states[len(t.states)-1] != o.State {
		t.states = append(t.states, o.State)
	}

	t.outcome = o
	t.closed = true
	close(t.done)
}
