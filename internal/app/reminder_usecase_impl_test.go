package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-payment-reminder/internal/app"
	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/alarm"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/notify"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/pubsub"
)

func setupUseCaseTest(t *testing.T) (app.ReminderUseCase, *domain.MockReminderRepository, schedulerFixture) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := domain.NewMockReminderRepository(ctrl)
	f := newSchedulerFixture(t)

	return app.NewReminderUseCase(repo, f.scheduler, nil), repo, f
}

func expectTx(repo *domain.MockReminderRepository) {
	repo.EXPECT().WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(domain.ReminderRepository) error) error {
			return fn(repo)
		})
}

func TestCreateReminderSuccess(t *testing.T) {
	tests := []struct {
		name           string
		dateTime       time.Time
		expectedAlarms int
	}{
		{
			name:           "due in two days",
			dateTime:       time.Now().Add(48 * time.Hour),
			expectedAlarms: 2,
		},
		{
			name:           "due in an hour",
			dateTime:       time.Now().Add(time.Hour),
			expectedAlarms: 1,
		},
		{
			name:           "no due date",
			dateTime:       time.Time{},
			expectedAlarms: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCase, repo, f := setupUseCaseTest(t)

			expectTx(repo)
			repo.EXPECT().NextReminderID(gomock.Any()).Return(domain.MustReminderID(42), nil)
			repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

			output, err := useCase.CreateReminder(context.Background(), app.CreateReminderInput{
				Title:    "Electric bill",
				DateTime: tt.dateTime,
				Amount:   decimal.NewFromInt(500000),
				Category: "Bills",
			})

			require.NoError(t, err)
			assert.Equal(t, int64(42), output.ID)
			assert.NotEmpty(t, output.DocumentID)
			assert.Equal(t, "Electric bill", output.Title)
			assert.Equal(t, "none", output.RepeatType)
			assert.False(t, output.Completed)
			assert.Len(t, f.scheduler.Pending(domain.MustReminderID(42)), tt.expectedAlarms)
		})
	}
}

func TestCreateReminderError(t *testing.T) {
	tests := []struct {
		name          string
		input         app.CreateReminderInput
		setupMock     func(repo *domain.MockReminderRepository)
		expectedErr   error
		expectedField string
	}{
		{
			name:  "empty title",
			input: app.CreateReminderInput{Title: "  ", Amount: decimal.NewFromInt(1)},
			setupMock: func(repo *domain.MockReminderRepository) {
				expectTx(repo)
				repo.EXPECT().NextReminderID(gomock.Any()).Return(domain.MustReminderID(1), nil)
			},
			expectedField: "title",
		},
		{
			name:  "negative amount",
			input: app.CreateReminderInput{Title: "Rent", Amount: decimal.NewFromInt(-5)},
			setupMock: func(repo *domain.MockReminderRepository) {
				expectTx(repo)
				repo.EXPECT().NextReminderID(gomock.Any()).Return(domain.MustReminderID(1), nil)
			},
			expectedField: "amount",
		},
		{
			name:  "sub-cent amount",
			input: app.CreateReminderInput{Title: "Rent", Amount: decimal.RequireFromString("10.005")},
			setupMock: func(repo *domain.MockReminderRepository) {
				expectTx(repo)
				repo.EXPECT().NextReminderID(gomock.Any()).Return(domain.MustReminderID(1), nil)
			},
			expectedField: "amount",
		},
		{
			name:          "invalid repeat type",
			input:         app.CreateReminderInput{Title: "Rent", RepeatType: "hourly"},
			setupMock:     func(_ *domain.MockReminderRepository) {},
			expectedField: "repeat_type",
		},
		{
			name:  "store failure",
			input: app.CreateReminderInput{Title: "Rent"},
			setupMock: func(repo *domain.MockReminderRepository) {
				expectTx(repo)
				repo.EXPECT().NextReminderID(gomock.Any()).Return(domain.MustReminderID(1), nil)
				repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
			},
			expectedErr: app.ErrInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCase, repo, _ := setupUseCaseTest(t)
			tt.setupMock(repo)

			_, err := useCase.CreateReminder(context.Background(), tt.input)

			require.Error(t, err)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			}

			if tt.expectedField != "" {
				var validationErr *app.ValidationError
				require.True(t, errors.As(err, &validationErr))
				assert.Equal(t, tt.expectedField, validationErr.Field)
			}
		})
	}
}

func TestUpdateReminderReschedules(t *testing.T) {
	useCase, repo, f := setupUseCaseTest(t)
	ctx := context.Background()
	id := domain.MustReminderID(42)

	stored := storedReminder(42, "abc", false)
	require.NoError(t, f.scheduler.ScheduleNotification(ctx, stored))
	require.Len(t, f.scheduler.Pending(id), 2)

	repo.EXPECT().FindByReminderID(gomock.Any(), id).Return([]*domain.Reminder{stored}, nil)
	repo.EXPECT().Update(gomock.Any(), stored).Return(nil)

	due := time.Now().Add(2 * time.Hour)
	output, err := useCase.UpdateReminder(ctx, app.UpdateReminderInput{
		ID:       "42",
		Title:    "Electric bill (March)",
		DateTime: due,
		Amount:   decimal.NewFromInt(650000),
	})

	require.NoError(t, err)
	assert.Equal(t, "Electric bill (March)", output.Title)

	pending := f.scheduler.Pending(id)
	require.Len(t, pending, 1)
	assert.True(t, due.Equal(pending[0].At))
}

func TestUpdateCompletedReminderIsNotScheduled(t *testing.T) {
	useCase, repo, f := setupUseCaseTest(t)
	id := domain.MustReminderID(42)

	stored := storedReminder(42, "abc", true)
	repo.EXPECT().FindByReminderID(gomock.Any(), id).Return([]*domain.Reminder{stored}, nil)
	repo.EXPECT().Update(gomock.Any(), stored).Return(nil)

	_, err := useCase.UpdateReminder(context.Background(), app.UpdateReminderInput{
		ID:       "42",
		Title:    "Electric bill",
		DateTime: time.Now().Add(72 * time.Hour),
	})

	require.NoError(t, err)
	assert.Empty(t, f.scheduler.Pending(id))
}

func TestGetReminder(t *testing.T) {
	tests := []struct {
		name             string
		id               string
		setupMock        func(repo *domain.MockReminderRepository)
		expectedErr      error
		expectValidation bool
	}{
		{
			name: "found",
			id:   "42",
			setupMock: func(repo *domain.MockReminderRepository) {
				repo.EXPECT().FindByReminderID(gomock.Any(), domain.MustReminderID(42)).
					Return([]*domain.Reminder{storedReminder(42, "abc", false)}, nil)
			},
		},
		{
			name: "not found",
			id:   "42",
			setupMock: func(repo *domain.MockReminderRepository) {
				repo.EXPECT().FindByReminderID(gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			expectedErr: app.ErrNotFound,
		},
		{
			name:             "invalid id",
			id:               "abc",
			setupMock:        func(_ *domain.MockReminderRepository) {},
			expectValidation: true,
		},
		{
			name: "store failure",
			id:   "42",
			setupMock: func(repo *domain.MockReminderRepository) {
				repo.EXPECT().FindByReminderID(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))
			},
			expectedErr: app.ErrInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCase, repo, _ := setupUseCaseTest(t)
			tt.setupMock(repo)

			output, err := useCase.GetReminder(context.Background(), app.GetReminderInput{ID: tt.id})

			switch {
			case tt.expectValidation:
				assert.True(t, app.IsValidationError(err))
			case tt.expectedErr != nil:
				assert.ErrorIs(t, err, tt.expectedErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, "abc", output.DocumentID)
			}
		})
	}
}

func TestListReminders(t *testing.T) {
	useCase, repo, _ := setupUseCaseTest(t)
	open := false

	repo.EXPECT().List(gomock.Any(), domain.ReminderFilter{Completed: &open}).
		Return([]*domain.Reminder{storedReminder(1, "a", false), storedReminder(2, "b", false)}, nil)

	output, err := useCase.ListReminders(context.Background(), app.ListRemindersInput{Completed: &open})

	require.NoError(t, err)
	assert.Equal(t, int32(2), output.Count)
	assert.Equal(t, int64(1), output.Reminders[0].ID)
}

func TestDeleteReminder(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(repo *domain.MockReminderRepository)
	}{
		{
			name: "existing reminder",
			setupMock: func(repo *domain.MockReminderRepository) {
				doc, _ := domain.DocumentIDFromString("abc")
				repo.EXPECT().FindByReminderID(gomock.Any(), gomock.Any()).
					Return([]*domain.Reminder{storedReminder(42, "abc", false)}, nil)
				repo.EXPECT().Delete(gomock.Any(), doc).Return(nil)
			},
		},
		{
			name: "missing reminder (idempotency)",
			setupMock: func(repo *domain.MockReminderRepository) {
				repo.EXPECT().FindByReminderID(gomock.Any(), gomock.Any()).Return(nil, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCase, repo, f := setupUseCaseTest(t)
			tt.setupMock(repo)

			ctx := context.Background()
			require.NoError(t, f.scheduler.ScheduleNotification(ctx, storedReminder(42, "abc", false)))

			err := useCase.DeleteReminder(ctx, app.DeleteReminderInput{ID: "42"})

			assert.NoError(t, err)
			if tt.name == "existing reminder" {
				assert.Empty(t, f.scheduler.Pending(domain.MustReminderID(42)))
			}
		})
	}
}

func TestCompleteReminder(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := domain.NewMockReminderRepository(ctrl)
	publisher := pubsub.NewMockPublisher(ctrl)
	f := newSchedulerFixture(t)
	useCase := app.NewReminderUseCase(repo, f.scheduler, publisher)

	ctx := context.Background()
	stored := storedReminder(42, "abc", false)
	require.NoError(t, f.scheduler.ScheduleNotification(ctx, stored))

	doc, _ := domain.DocumentIDFromString("abc")
	repo.EXPECT().FindByReminderID(gomock.Any(), domain.MustReminderID(42)).Return([]*domain.Reminder{stored}, nil)
	repo.EXPECT().MarkCompleted(gomock.Any(), doc).Return(nil)
	publisher.EXPECT().PublishReminderCompleted(gomock.Any(), gomock.Any()).Return(nil)

	output, err := useCase.CompleteReminder(ctx, app.CompleteReminderInput{ID: "42"})

	require.NoError(t, err)
	assert.True(t, output.Completed)
	assert.Empty(t, f.scheduler.Pending(domain.MustReminderID(42)))
}

func TestCompleteReminderAlreadyCompleted(t *testing.T) {
	useCase, repo, _ := setupUseCaseTest(t)

	repo.EXPECT().FindByReminderID(gomock.Any(), gomock.Any()).
		Return([]*domain.Reminder{storedReminder(42, "abc", true)}, nil)

	output, err := useCase.CompleteReminder(context.Background(), app.CompleteReminderInput{ID: "42"})

	require.NoError(t, err)
	assert.True(t, output.Completed)
}

func TestPendingAlarms(t *testing.T) {
	useCase, _, f := setupUseCaseTest(t)
	ctx := context.Background()

	require.NoError(t, f.scheduler.ScheduleNotification(ctx, storedReminder(42, "abc", false)))

	output, err := useCase.PendingAlarms(ctx, app.GetReminderInput{ID: "42"})

	require.NoError(t, err)
	assert.Equal(t, int64(42), output.ReminderID)
	require.Len(t, output.Alarms, 2)
	assert.Equal(t, "warning", output.Alarms[0].Kind)
	assert.Equal(t, "due", output.Alarms[1].Kind)

	_, err = useCase.PendingAlarms(ctx, app.GetReminderInput{ID: "0"})
	assert.True(t, app.IsValidationError(err))
}

func TestStoreWriteSurvivesCancelFailure(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(repo *domain.MockReminderRepository, stored *domain.Reminder)
		run       func(ctx context.Context, useCase app.ReminderUseCase) error
	}{
		{
			name: "update",
			setupMock: func(repo *domain.MockReminderRepository, stored *domain.Reminder) {
				repo.EXPECT().Update(gomock.Any(), stored).Return(nil)
			},
			run: func(ctx context.Context, useCase app.ReminderUseCase) error {
				_, err := useCase.UpdateReminder(ctx, app.UpdateReminderInput{
					ID:       "42",
					Title:    "Electric bill",
					DateTime: time.Now().Add(72 * time.Hour),
				})

				return err
			},
		},
		{
			name: "delete",
			setupMock: func(repo *domain.MockReminderRepository, stored *domain.Reminder) {
				repo.EXPECT().Delete(gomock.Any(), stored.DocumentID()).Return(nil)
			},
			run: func(ctx context.Context, useCase app.ReminderUseCase) error {
				return useCase.DeleteReminder(ctx, app.DeleteReminderInput{ID: "42"})
			},
		},
		{
			name: "complete",
			setupMock: func(repo *domain.MockReminderRepository, stored *domain.Reminder) {
				repo.EXPECT().MarkCompleted(gomock.Any(), stored.DocumentID()).Return(nil)
			},
			run: func(ctx context.Context, useCase app.ReminderUseCase) error {
				_, err := useCase.CompleteReminder(ctx, app.CompleteReminderInput{ID: "42"})

				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := domain.NewMockReminderRepository(ctrl)

			clock := alarm.NewClock()
			t.Cleanup(clock.Stop)

			tray := failingCancelTray{Tray: notify.NewTray()}
			scheduler := app.NewNotificationScheduler(clock, tray, app.NewNotificationPresenter(tray))
			useCase := app.NewReminderUseCase(repo, scheduler, nil)

			stored := storedReminder(42, "abc", false)
			repo.EXPECT().FindByReminderID(gomock.Any(), domain.MustReminderID(42)).
				Return([]*domain.Reminder{stored}, nil)
			tt.setupMock(repo, stored)

			ctx := context.Background()
			require.NoError(t, scheduler.ScheduleNotification(ctx, stored))

			err := tt.run(ctx, useCase)

			assert.NoError(t, err)
			if tt.name != "update" {
				assert.Empty(t, scheduler.Pending(domain.MustReminderID(42)))
			}
		})
	}
}

func TestReminderChangesArePublished(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := domain.NewMockReminderRepository(ctrl)
	publisher := pubsub.NewMockPublisher(ctrl)
	f := newSchedulerFixture(t)
	useCase := app.NewReminderUseCase(repo, f.scheduler, publisher)
	ctx := context.Background()

	expectTx(repo)
	repo.EXPECT().NextReminderID(gomock.Any()).Return(domain.MustReminderID(7), nil)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	var saved pubsub.ReminderChangedEvent
	publisher.EXPECT().PublishReminderChanged(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event pubsub.ReminderChangedEvent) error {
			saved = event

			return nil
		})

	created, err := useCase.CreateReminder(ctx, app.CreateReminderInput{
		Title:    "Water bill",
		DateTime: time.Now().Add(48 * time.Hour),
		Amount:   decimal.NewFromInt(120000),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), saved.ReminderID)
	assert.Equal(t, created.DocumentID, saved.DocumentID)
	assert.False(t, saved.Deleted)

	stored := storedReminder(7, created.DocumentID, false)
	repo.EXPECT().FindByReminderID(gomock.Any(), domain.MustReminderID(7)).Return([]*domain.Reminder{stored}, nil)
	repo.EXPECT().Delete(gomock.Any(), stored.DocumentID()).Return(nil)

	var deleted pubsub.ReminderChangedEvent
	publisher.EXPECT().PublishReminderChanged(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event pubsub.ReminderChangedEvent) error {
			deleted = event

			return errors.New("nats: connection closed")
		})

	require.NoError(t, useCase.DeleteReminder(ctx, app.DeleteReminderInput{ID: "7"}))
	assert.True(t, deleted.Deleted)
	assert.Empty(t, f.scheduler.Pending(domain.MustReminderID(7)))
}
