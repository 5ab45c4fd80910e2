package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-payment-reminder/internal/observability/logging"
	"github.com/KasumiMercury/primind-payment-reminder/internal/observability/metrics"
)

const (
	DefaultDispatchTimeout = 10 * time.Second

	msgMarkedPaid   = "Reminder marked as paid"
	msgNotFound     = "Reminder not found"
	msgLookupFailed = "Could not load the reminder, please try again"
	msgWriteFailed  = "Could not mark the reminder as paid, please try again"
)

var ErrDispatcherClosed = errors.New("action dispatcher is shut down")

// ActionDispatcher handles actions taken on posted notifications. Mark as
// paid dismisses the notification right away and completes the reminder in
// the background.
type ActionDispatcher struct {
	canceller NotificationCanceller
	repo      domain.ReminderRepository
	messenger Messenger
	publisher pubsub.Publisher
	metrics   *metrics.ReminderMetrics
	timeout   time.Duration
	now       func() time.Time

	base context.Context
	stop context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

type DispatcherOption func(*ActionDispatcher)

func WithDispatchTimeout(d time.Duration) DispatcherOption {
	return func(a *ActionDispatcher) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithDispatchPublisher(publisher pubsub.Publisher) DispatcherOption {
	return func(a *ActionDispatcher) {
		a.publisher = publisher
	}
}

func WithDispatchMetrics(m *metrics.ReminderMetrics) DispatcherOption {
	return func(a *ActionDispatcher) {
		a.metrics = m
	}
}

func NewActionDispatcher(
	canceller NotificationCanceller,
	repo domain.ReminderRepository,
	messenger Messenger,
	opts ...DispatcherOption,
) *ActionDispatcher {
	base, stop := context.WithCancel(context.Background())

	d := &ActionDispatcher{
		canceller: canceller,
		repo:      repo,
		messenger: messenger,
		timeout:   DefaultDispatchTimeout,
		now:       time.Now,
		base:      base,
		stop:      stop,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Dispatch starts handling event and returns its task. The store work of a
// mark as paid action outlives ctx; only ctx's values are carried over.
func (d *ActionDispatcher) Dispatch(ctx context.Context, event domain.ActionEvent) *Task {
	ctx = logging.WithModule(ctx, logging.ModuleDispatch)
	task := newTask(event)

	slog.DebugContext(ctx, "notification action received",
		"event", "action.dispatch",
		"action", string(event.Kind),
		"reminder_id", event.ReminderID.String(),
	)

	switch event.Kind {
	case domain.ActionOpen:
		d.finish(ctx, task, Outcome{State: StateOpened})

		return task
	case domain.ActionMarkPaid:
	default:
		d.finish(ctx, task, Outcome{State: StateUnsupported})

		return task
	}

	if err := d.canceller.CancelNotification(ctx, event.ReminderID); err != nil {
		slog.WarnContext(ctx, "failed to cancel notification before marking paid",
			"error", err,
			"reminder_id", event.ReminderID.String(),
		)
	}

	task.enter(StateNotificationCancelled)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.finish(ctx, task, Outcome{State: StateCancelled, Err: ErrDispatcherClosed})

		return task
	}
	d.wg.Add(1)
	d.mu.Unlock()

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	unlink := context.AfterFunc(d.base, cancel)
	task.setCancel(cancel)

	go func() {
		defer d.wg.Done()
		defer cancel()
		defer unlink()

		d.markPaid(runCtx, task)
	}()

	return task
}

func (d *ActionDispatcher) markPaid(ctx context.Context, task *Task) {
	id := task.event.ReminderID

	if ctx.Err() != nil {
		d.finish(ctx, task, Outcome{State: StateCancelled, Err: ctx.Err()})

		return
	}

	task.enter(StateLookup)

	matches, err := d.repo.FindByReminderID(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			d.finish(ctx, task, Outcome{State: StateCancelled, Err: ctx.Err()})

			return
		}

		d.finish(ctx, task, Outcome{State: StateLookupFailed, Message: msgLookupFailed, Err: err})

		return
	}

	if len(matches) == 0 {
		d.finish(ctx, task, Outcome{State: StateNotFound, Message: msgNotFound})

		return
	}

	if len(matches) > 1 {
		slog.WarnContext(ctx, "several documents share a reminder id, completing the first",
			"reminder_id", id.String(),
			"count", len(matches),
		)
	}

	doc := matches[0].DocumentID()

	task.enter(StateCompleted)
	task.enter(StateCompleteWrite)

	if err := d.repo.MarkCompleted(ctx, doc); err != nil {
		if ctx.Err() != nil {
			d.finish(ctx, task, Outcome{State: StateCancelled, DocumentID: doc, Err: ctx.Err()})

			return
		}

		d.finish(ctx, task, Outcome{State: StateWriteFailed, DocumentID: doc, Message: msgWriteFailed, Err: err})

		return
	}

	if d.publisher != nil {
		event := pubsub.ReminderCompletedEvent{
			ReminderID:  id.Int64(),
			DocumentID:  doc.String(),
			Source:      "notification",
			CompletedAt: d.now(),
		}
		if pubErr := d.publisher.PublishReminderCompleted(ctx, event); pubErr != nil {
			slog.ErrorContext(ctx, "failed to publish reminder completed event",
				"reminder_id", id.String(),
				"error", pubErr.Error(),
			)
		}
	}

	d.finish(ctx, task, Outcome{State: StateSuccess, DocumentID: doc, Message: msgMarkedPaid})
}

// finish reports the outcome and then completes the task, so anyone waiting
// on the task sees the report already delivered.
func (d *ActionDispatcher) finish(ctx context.Context, task *Task, o Outcome) {
	defer task.finish(o)

	reportCtx := context.WithoutCancel(ctx)
	event := task.event

	d.metrics.ActionDispatched(reportCtx, string(event.Kind), string(o.State))

	attrs := []any{
		"event", "action.dispatch",
		"action", string(event.Kind),
		"reminder_id", event.ReminderID.String(),
		"state", string(o.State),
	}
	if !o.DocumentID.IsZero() {
		attrs = append(attrs, "document_id", o.DocumentID.String())
	}

	switch o.State {
	case StateLookupFailed, StateWriteFailed:
		slog.ErrorContext(reportCtx, "notification action failed", append(attrs, "error", o.Err)...)
	case StateCancelled:
		slog.WarnContext(reportCtx, "notification action cancelled", append(attrs, "error", o.Err)...)
	default:
		slog.InfoContext(reportCtx, "notification action handled", attrs...)
	}

	if o.Message == "" || d.messenger == nil {
		return
	}

	level := domain.MessageInfo
	if o.State == StateLookupFailed || o.State == StateWriteFailed {
		level = domain.MessageError
	}

	d.messenger.Show(reportCtx, domain.TransientMessage{
		ReminderID: event.ReminderID,
		Text:       o.Message,
		Level:      level,
		At:         d.now(),
	})
}

// Shutdown cancels in-flight actions and waits for them to settle.
func (d *ActionDispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.stop()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
