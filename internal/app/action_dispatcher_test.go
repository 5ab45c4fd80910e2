package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-payment-reminder/internal/app"
	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/notify"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/pubsub"
)

func waitOutcome(t *testing.T, task *app.Task) app.Outcome {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	outcome, err := task.Wait(ctx)
	require.NoError(t, err)

	return outcome
}

func TestDispatchMarkPaid(t *testing.T) {
	doc, _ := domain.DocumentIDFromString("abc")

	tests := []struct {
		name           string
		setupMock      func(repo *domain.MockReminderRepository)
		expectedState  app.DispatchState
		expectedStates []app.DispatchState
		expectedText   string
		expectedLevel  domain.MessageLevel
	}{
		{
			name: "reminder found and completed",
			setupMock: func(repo *domain.MockReminderRepository) {
				repo.EXPECT().FindByReminderID(gomock.Any(), domain.MustReminderID(42)).
					Return([]*domain.Reminder{storedReminder(42, "abc", false)}, nil)
				repo.EXPECT().MarkCompleted(gomock.Any(), doc).Return(nil)
			},
			expectedState: app.StateSuccess,
			expectedStates: []app.DispatchState{
				app.StateReceived, app.StateNotificationCancelled, app.StateLookup,
				app.StateCompleted, app.StateCompleteWrite, app.StateSuccess,
			},
			expectedText:  "Reminder marked as paid",
			expectedLevel: domain.MessageInfo,
		},
		{
			name: "no record for id",
			setupMock: func(repo *domain.MockReminderRepository) {
				repo.EXPECT().FindByReminderID(gomock.Any(), domain.MustReminderID(42)).Return(nil, nil)
			},
			expectedState: app.StateNotFound,
			expectedStates: []app.DispatchState{
				app.StateReceived, app.StateNotificationCancelled, app.StateLookup, app.StateNotFound,
			},
			expectedText:  "Reminder not found",
			expectedLevel: domain.MessageInfo,
		},
		{
			name: "several records completes the first",
			setupMock: func(repo *domain.MockReminderRepository) {
				repo.EXPECT().FindByReminderID(gomock.Any(), domain.MustReminderID(42)).
					Return([]*domain.Reminder{storedReminder(42, "abc", false), storedReminder(42, "xyz", false)}, nil)
				repo.EXPECT().MarkCompleted(gomock.Any(), doc).Return(nil)
			},
			expectedState: app.StateSuccess,
			expectedStates: []app.DispatchState{
				app.StateReceived, app.StateNotificationCancelled, app.StateLookup,
				app.StateCompleted, app.StateCompleteWrite, app.StateSuccess,
			},
			expectedText:  "Reminder marked as paid",
			expectedLevel: domain.MessageInfo,
		},
		{
			name: "lookup failure",
			setupMock: func(repo *domain.MockReminderRepository) {
				repo.EXPECT().FindByReminderID(gomock.Any(), gomock.Any()).Return(nil, errors.New("unavailable"))
			},
			expectedState: app.StateLookupFailed,
			expectedStates: []app.DispatchState{
				app.StateReceived, app.StateNotificationCancelled, app.StateLookup, app.StateLookupFailed,
			},
			expectedText:  "Could not load the reminder, please try again",
			expectedLevel: domain.MessageError,
		},
		{
			name: "write failure",
			setupMock: func(repo *domain.MockReminderRepository) {
				repo.EXPECT().FindByReminderID(gomock.Any(), gomock.Any()).
					Return([]*domain.Reminder{storedReminder(42, "abc", false)}, nil)
				repo.EXPECT().MarkCompleted(gomock.Any(), doc).Return(errors.New("permission denied"))
			},
			expectedState: app.StateWriteFailed,
			expectedStates: []app.DispatchState{
				app.StateReceived, app.StateNotificationCancelled, app.StateLookup,
				app.StateCompleted, app.StateCompleteWrite, app.StateWriteFailed,
			},
			expectedText:  "Could not mark the reminder as paid, please try again",
			expectedLevel: domain.MessageError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := domain.NewMockReminderRepository(ctrl)
			tt.setupMock(repo)

			f := newSchedulerFixture(t)
			inbox := notify.NewInbox(10)
			dispatcher := app.NewActionDispatcher(f.scheduler, repo, inbox)

			ctx := context.Background()
			id := domain.MustReminderID(42)
			require.NoError(t, f.scheduler.ScheduleNotification(ctx, reminderAt(t, 42, time.Now().Add(48*time.Hour))))
			require.NoError(t, f.presenter.ShowNotification(ctx, id, "Electric bill", storedReminder(42, "abc", false).Amount()))

			task := dispatcher.Dispatch(ctx, domain.ActionEvent{Kind: domain.ActionMarkPaid, ReminderID: id})

			// the notification goes away before the store is touched
			_, visible := f.tray.Get(id)
			assert.False(t, visible)
			assert.Empty(t, f.scheduler.Pending(id))

			outcome := waitOutcome(t, task)

			assert.Equal(t, tt.expectedState, outcome.State)
			assert.Equal(t, tt.expectedStates, task.States())
			assert.Equal(t, id, outcome.ReminderID)

			messages := inbox.Recent()
			require.Len(t, messages, 1)
			assert.Equal(t, tt.expectedText, messages[0].Text)
			assert.Equal(t, tt.expectedLevel, messages[0].Level)

			require.NoError(t, dispatcher.Shutdown(ctx))
		})
	}
}

func TestDispatchOpenSkipsStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := domain.NewMockReminderRepository(ctrl)

	f := newSchedulerFixture(t)
	dispatcher := app.NewActionDispatcher(f.scheduler, repo, notify.NewInbox(10))

	task := dispatcher.Dispatch(context.Background(), domain.ActionEvent{
		Kind:       domain.ActionOpen,
		ReminderID: domain.MustReminderID(3),
	})

	select {
	case <-task.Done():
	default:
		t.Fatal("open action should finish synchronously")
	}

	outcome, ok := task.Outcome()
	require.True(t, ok)
	assert.Equal(t, app.StateOpened, outcome.State)
	assert.Equal(t, []app.DispatchState{app.StateReceived, app.StateOpened}, task.States())
}

func TestDispatchPublishesCompletedEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := domain.NewMockReminderRepository(ctrl)
	publisher := pubsub.NewMockPublisher(ctrl)

	doc, _ := domain.DocumentIDFromString("abc")
	repo.EXPECT().FindByReminderID(gomock.Any(), gomock.Any()).
		Return([]*domain.Reminder{storedReminder(42, "abc", false)}, nil)
	repo.EXPECT().MarkCompleted(gomock.Any(), doc).Return(nil)
	publisher.EXPECT().
		PublishReminderCompleted(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event pubsub.ReminderCompletedEvent) error {
			assert.Equal(t, int64(42), event.ReminderID)
			assert.Equal(t, "abc", event.DocumentID)
			assert.Equal(t, "notification", event.Source)

			return errors.New("nats down")
		})

	f := newSchedulerFixture(t)
	dispatcher := app.NewActionDispatcher(f.scheduler, repo, notify.NewInbox(10),
		app.WithDispatchPublisher(publisher),
	)

	task := dispatcher.Dispatch(context.Background(), domain.ActionEvent{
		Kind:       domain.ActionMarkPaid,
		ReminderID: domain.MustReminderID(42),
	})

	// publish errors do not change the outcome
	assert.Equal(t, app.StateSuccess, waitOutcome(t, task).State)
}

func TestDispatchCancel(t *testing.T) {
	tests := []struct {
		name   string
		cancel func(task *app.Task, dispatcher *app.ActionDispatcher)
	}{
		{
			name: "task cancelled",
			cancel: func(task *app.Task, _ *app.ActionDispatcher) {
				task.Cancel()
			},
		},
		{
			name: "dispatcher shut down",
			cancel: func(_ *app.Task, dispatcher *app.ActionDispatcher) {
				_ = dispatcher.Shutdown(context.Background())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := domain.NewMockReminderRepository(ctrl)

			started := make(chan struct{})
			repo.EXPECT().FindByReminderID(gomock.Any(), gomock.Any()).
				DoAndReturn(func(ctx context.Context, _ domain.ReminderID) ([]*domain.Reminder, error) {
					close(started)
					<-ctx.Done()

					return nil, ctx.Err()
				})

			f := newSchedulerFixture(t)
			dispatcher := app.NewActionDispatcher(f.scheduler, repo, notify.NewInbox(10))

			task := dispatcher.Dispatch(context.Background(), domain.ActionEvent{
				Kind:       domain.ActionMarkPaid,
				ReminderID: domain.MustReminderID(42),
			})

			<-started
			tt.cancel(task, dispatcher)

			outcome := waitOutcome(t, task)
			assert.Equal(t, app.StateCancelled, outcome.State)
			assert.ErrorIs(t, outcome.Err, context.Canceled)
		})
	}
}

func TestDispatchTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := domain.NewMockReminderRepository(ctrl)

	repo.EXPECT().FindByReminderID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ domain.ReminderID) ([]*domain.Reminder, error) {
			<-ctx.Done()

			return nil, ctx.Err()
		})

	f := newSchedulerFixture(t)
	dispatcher := app.NewActionDispatcher(f.scheduler, repo, notify.NewInbox(10),
		app.WithDispatchTimeout(20*time.Millisecond),
	)

	task := dispatcher.Dispatch(context.Background(), domain.ActionEvent{
		Kind:       domain.ActionMarkPaid,
		ReminderID: domain.MustReminderID(42),
	})

	outcome := waitOutcome(t, task)
	assert.Equal(t, app.StateCancelled, outcome.State)
	assert.ErrorIs(t, outcome.Err, context.DeadlineExceeded)
}

func TestDispatchOutlivesRequestContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := domain.NewMockReminderRepository(ctrl)

	release := make(chan struct{})
	doc, _ := domain.DocumentIDFromString("abc")
	repo.EXPECT().FindByReminderID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.ReminderID) ([]*domain.Reminder, error) {
			<-release

			return []*domain.Reminder{storedReminder(42, "abc", false)}, nil
		})
	repo.EXPECT().MarkCompleted(gomock.Any(), doc).Return(nil)

	f := newSchedulerFixture(t)
	dispatcher := app.NewActionDispatcher(f.scheduler, repo, notify.NewInbox(10))

	reqCtx, cancel := context.WithCancel(context.Background())
	task := dispatcher.Dispatch(reqCtx, domain.ActionEvent{
		Kind:       domain.ActionMarkPaid,
		ReminderID: domain.MustReminderID(42),
	})
	cancel()
	close(release)

	assert.Equal(t, app.StateSuccess, waitOutcome(t, task).State)
}

func TestDispatchAfterShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := domain.NewMockReminderRepository(ctrl)

	f := newSchedulerFixture(t)
	dispatcher := app.NewActionDispatcher(f.scheduler, repo, notify.NewInbox(10))
	require.NoError(t, dispatcher.Shutdown(context.Background()))

	task := dispatcher.Dispatch(context.Background(), domain.ActionEvent{
		Kind:       domain.ActionMarkPaid,
		ReminderID: domain.MustReminderID(42),
	})

	outcome := waitOutcome(t, task)
	assert.Equal(t, app.StateCancelled, outcome.State)
	assert.ErrorIs(t, outcome.Err, app.ErrDispatcherClosed)
}
