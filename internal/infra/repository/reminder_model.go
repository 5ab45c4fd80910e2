package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

// ReminderModel is one reminder document. reminder_id is indexed but not
// unique: several documents may carry the same numeric id.
type ReminderModel struct {
	DocumentID string          `gorm:"column:document_id;type:varchar(64);primaryKey"`
	ReminderID int64           `gorm:"column:reminder_id;type:bigint;not null;index:idx_reminders_reminder_id"`
	Title      string          `gorm:"column:title;type:varchar(255);not null"`
	DateTime   *time.Time      `gorm:"column:date_time;type:timestamptz;index:idx_reminders_date_time"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(20,2);not null;default:0"`
	Completed  bool            `gorm:"column:completed;type:boolean;not null;default:false;index:idx_reminders_completed"`
	Category   string          `gorm:"column:category;type:varchar(255);not null;default:''"`
	Note       string          `gorm:"column:note;type:text;not null;default:''"`
	Repeating  bool            `gorm:"column:repeating;type:boolean;not null;default:false"`
	RepeatType string          `gorm:"column:repeat_type;type:varchar(16);not null;default:'none'"`
	CreatedAt  time.Time       `gorm:"column:created_at;type:timestamptz;not null"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;type:timestamptz;not null"`
}

func (ReminderModel) TableName() string {
	return "reminders"
}

func (m *ReminderModel) ToEntity() (*domain.Reminder, error) {
	documentID, err := domain.DocumentIDFromString(m.DocumentID)
	if err != nil {
		return nil, err
	}

	reminderID, err := domain.NewReminderID(m.ReminderID)
	if err != nil {
		return nil, err
	}

	repeatType, err := domain.NewRepeatType(m.RepeatType)
	if err != nil {
		return nil, err
	}

	var dateTime time.Time
	if m.DateTime != nil {
		dateTime = *m.DateTime
	}

	return domain.ReconstituteReminder(
		reminderID,
		documentID,
		domain.ReminderDetails{
			Title:      m.Title,
			DateTime:   dateTime,
			Amount:     m.Amount,
			Category:   m.Category,
			Note:       m.Note,
			Repeating:  m.Repeating,
			RepeatType: repeatType,
		},
		m.Completed,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func FromEntity(e *domain.Reminder) *ReminderModel {
	var dateTime *time.Time
	if e.HasDueDate() {
		t := e.DateTime()
		dateTime = &t
	}

	return &ReminderModel{
		DocumentID: e.DocumentID().String(),
		ReminderID: e.ID().Int64(),
		Title:      e.Title(),
		DateTime:   dateTime,
		Amount:     e.Amount(),
		Completed:  e.IsCompleted(),
		Category:   e.Category(),
		Note:       e.Note(),
		Repeating:  e.IsRepeating(),
		RepeatType: string(e.RepeatType()),
		CreatedAt:  e.CreatedAt(),
		UpdatedAt:  e.UpdatedAt(),
	}
}
