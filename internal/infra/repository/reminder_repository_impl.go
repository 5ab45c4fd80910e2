package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

// reminderIDLockKey serializes numeric id allocation across transactions.
const reminderIDLockKey = 7_314_001

type reminderRepositoryImpl struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) domain.ReminderRepository {
	return &reminderRepositoryImpl{
		db: db,
	}
}

func (r *reminderRepositoryImpl) Save(ctx context.Context, reminder *domain.Reminder) error {
	slog.DebugContext(ctx, "saving reminder to database",
		"reminder_id", reminder.ID().String(),
		"document_id", reminder.DocumentID().String(),
	)

	m := FromEntity(reminder)

	result := r.db.WithContext(ctx).Create(m)
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to save reminder to database",
			"document_id", m.DocumentID,
			"error", result.Error,
		)

		return result.Error
	}

	return nil
}

func (r *reminderRepositoryImpl) Update(ctx context.Context, reminder *domain.Reminder) error {
	m := FromEntity(reminder)

	result := r.db.WithContext(ctx).
		Model(&ReminderModel{}).
		Where("document_id = ?", m.DocumentID).
		Select("*").
		Omit("document_id", "created_at").
		Updates(m)
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to update reminder in database",
			"document_id", m.DocumentID,
			"error", result.Error,
		)

		return result.Error
	}

	if result.RowsAffected == 0 {
		slog.DebugContext(ctx, "reminder not found for update",
			"document_id", m.DocumentID,
		)

		return domain.ErrReminderNotFound
	}

	return nil
}

func (r *reminderRepositoryImpl) Delete(ctx context.Context, id domain.DocumentID) error {
	result := r.db.WithContext(ctx).Where("document_id = ?", id.String()).Delete(&ReminderModel{})
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to delete reminder from database",
			"document_id", id.String(),
			"error", result.Error,
		)

		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrReminderNotFound
	}

	slog.DebugContext(ctx, "reminder deleted from database",
		"document_id", id.String(),
	)

	return nil
}

func (r *reminderRepositoryImpl) FindByDocumentID(ctx context.Context, id domain.DocumentID) (*domain.Reminder, error) {
	var m ReminderModel

	result := r.db.WithContext(ctx).Where("document_id = ?", id.String()).First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReminderNotFound
		}

		slog.ErrorContext(ctx, "failed to find reminder by document ID",
			"document_id", id.String(),
			"error", result.Error,
		)

		return nil, result.Error
	}

	return m.ToEntity()
}

func (r *reminderRepositoryImpl) FindByReminderID(ctx context.Context, id domain.ReminderID) ([]*domain.Reminder, error) {
	var models []ReminderModel

	result := r.db.WithContext(ctx).
		Where("reminder_id = ?", id.Int64()).
		Order("created_at ASC").
		Find(&models)
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to find reminders by reminder ID",
			"reminder_id", id.String(),
			"error", result.Error,
		)

		return nil, result.Error
	}

	return toEntities(ctx, models)
}

// FindPending returns open reminders due inside timeRange. A zero End leaves
// the range open-ended.
func (r *reminderRepositoryImpl) FindPending(ctx context.Context, timeRange domain.TimeRange) ([]*domain.Reminder, error) {
	q := r.db.WithContext(ctx).
		Where("completed = ?", false).
		Where("date_time IS NOT NULL").
		Where("date_time >= ?", timeRange.Start)

	if !timeRange.End.IsZero() {
		q = q.Where("date_time <= ?", timeRange.End)
	}

	var models []ReminderModel
	if err := q.Order("date_time ASC").Find(&models).Error; err != nil {
		slog.ErrorContext(ctx, "failed to find pending reminders",
			"start", timeRange.Start,
			"end", timeRange.End,
			"error", err,
		)

		return nil, err
	}

	return toEntities(ctx, models)
}

func (r *reminderRepositoryImpl) List(ctx context.Context, filter domain.ReminderFilter) ([]*domain.Reminder, error) {
	q := r.db.WithContext(ctx)
	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}

	var models []ReminderModel
	if err := q.Order("reminder_id ASC").Order("created_at ASC").Find(&models).Error; err != nil {
		slog.ErrorContext(ctx, "failed to list reminders",
			"error", err,
		)

		return nil, err
	}

	return toEntities(ctx, models)
}

func (r *reminderRepositoryImpl) MarkCompleted(ctx context.Context, id domain.DocumentID) error {
	result := r.db.WithContext(ctx).
		Model(&ReminderModel{}).
		Where("document_id = ?", id.String()).
		Updates(map[string]any{
			"completed":  true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to mark reminder completed",
			"document_id", id.String(),
			"error", result.Error,
		)

		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrReminderNotFound
	}

	return nil
}

// NextReminderID returns one past the highest numeric id in use. Inside a
// transaction the advisory lock holds until commit, so concurrent creators
// do not draw the same id.
func (r *reminderRepositoryImpl) NextReminderID(ctx context.Context) (domain.ReminderID, error) {
	db := r.db.WithContext(ctx)

	if err := db.Exec("SELECT pg_advisory_xact_lock(?)", reminderIDLockKey).Error; err != nil {
		return domain.ReminderID{}, err
	}

	var current int64
	if err := db.Model(&ReminderModel{}).Select("COALESCE(MAX(reminder_id), 0)").Scan(&current).Error; err != nil {
		slog.ErrorContext(ctx, "failed to read highest reminder ID",
			"error", err,
		)

		return domain.ReminderID{}, err
	}

	return domain.NewReminderID(current + 1)
}

func (r *reminderRepositoryImpl) WithTx(ctx context.Context, fn func(repo domain.ReminderRepository) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		slog.ErrorContext(ctx, "failed to begin transaction",
			"error", tx.Error,
		)

		return tx.Error
	}

	txRepo := &reminderRepositoryImpl{db: tx}

	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			slog.ErrorContext(ctx, "failed to rollback transaction",
				"error", rbErr,
				"original_error", err,
			)
		}

		return err
	}

	if err := tx.Commit().Error; err != nil {
		slog.ErrorContext(ctx, "failed to commit transaction",
			"error", err,
		)

		return err
	}

	return nil
}

func toEntities(ctx context.Context, models []ReminderModel) ([]*domain.Reminder, error) {
	reminders := make([]*domain.Reminder, 0, len(models))
	for _, m := range models {
		reminder, err := m.ToEntity()
		if err != nil {
			slog.ErrorContext(ctx, "failed to convert model to entity",
				"document_id", m.DocumentID,
				"error", err,
			)

			return nil, err
		}

		reminders = append(reminders, reminder)
	}

	return reminders, nil
}
