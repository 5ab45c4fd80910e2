package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of decimal places an amount may carry.
const AmountScale = 2

// maxAmount is the exclusive upper bound of a storable amount.
var maxAmount = decimal.New(1, 18)

type Reminder struct {
	id         ReminderID
	documentID DocumentID
	title      string
	dateTime   time.Time
	amount     decimal.Decimal
	completed  bool
	category   string
	note       string
	repeating  bool
	repeatType RepeatType
	createdAt  time.Time
	updatedAt  time.Time
}

// ReminderDetails groups the user-editable fields of a reminder.
type ReminderDetails struct {
	Title      string
	DateTime   time.Time
	Amount     decimal.Decimal
	Category   string
	Note       string
	Repeating  bool
	RepeatType RepeatType
}

func (d ReminderDetails) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}

	if d.Amount.IsNegative() {
		return ErrNegativeAmount
	}

	if !d.Amount.Equal(d.Amount.Round(AmountScale)) {
		return ErrAmountPrecision
	}

	if d.Amount.GreaterThanOrEqual(maxAmount) {
		return ErrAmountTooLarge
	}

	return nil
}

func NewReminder(id ReminderID, details ReminderDetails) (*Reminder, error) {
	if id.IsZero() {
		return nil, ErrInvalidReminderID
	}

	if err := details.validate(); err != nil {
		return nil, err
	}

	repeatType := details.RepeatType
	if repeatType == "" {
		repeatType = RepeatNone
	}

	now := time.Now()

	return &Reminder{
		id:         id,
		documentID: NewDocumentID(),
		title:      strings.TrimSpace(details.Title),
		dateTime:   details.DateTime,
		amount:     details.Amount,
		completed:  false,
		category:   details.Category,
		note:       details.Note,
		repeating:  details.Repeating,
		repeatType: repeatType,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

func ReconstituteReminder(
	id ReminderID,
	documentID DocumentID,
	details ReminderDetails,
	completed bool,
	createdAt time.Time,
	updatedAt time.Time,
) *Reminder {
	return &Reminder{
		id:         id,
		documentID: documentID,
		title:      details.Title,
		dateTime:   details.DateTime,
		amount:     details.Amount,
		completed:  completed,
		category:   details.Category,
		note:       details.Note,
		repeating:  details.Repeating,
		repeatType: details.RepeatType,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// Edit replaces the editable fields. Completed reminders can still be edited,
// they just never get scheduled again.
func (r *Reminder) Edit(details ReminderDetails) error {
	if err := details.validate(); err != nil {
		return err
	}

	if details.RepeatType == "" {
		details.RepeatType = RepeatNone
	}

	r.title = strings.TrimSpace(details.Title)
	r.dateTime = details.DateTime
	r.amount = details.Amount
	r.category = details.Category
	r.note = details.Note
	r.repeating = details.Repeating
	r.repeatType = details.RepeatType
	r.updatedAt = time.Now()

	return nil
}

func (r *Reminder) MarkCompleted() error {
	if r.completed {
		return ErrAlreadyCompleted
	}

	r.completed = true
	r.updatedAt = time.Now()

	return nil
}

func (r *Reminder) IsCompleted() bool {
	return r.completed
}

func (r *Reminder) HasDueDate() bool {
	return !r.dateTime.IsZero()
}

func (r *Reminder) ID() ReminderID {
	return r.id
}

func (r *Reminder) DocumentID() DocumentID {
	return r.documentID
}

func (r *Reminder) Title() string {
	return r.title
}

func (r *Reminder) DateTime() time.Time {
	return r.dateTime
}

func (r *Reminder) Amount() decimal.Decimal {
	return r.amount
}

func (r *Reminder) Category() string {
	return r.category
}

func (r *Reminder) Note() string {
	return r.note
}

func (r *Reminder) IsRepeating() bool {
	return r.repeating
}

func (r *Reminder) RepeatType() RepeatType {
	return r.repeatType
}

func (r *Reminder) Details() ReminderDetails {
	return ReminderDetails{
		Title:      r.title,
		DateTime:   r.dateTime,
		Amount:     r.amount,
		Category:   r.category,
		Note:       r.note,
		Repeating:  r.repeating,
		RepeatType: r.repeatType,
	}
}

func (r *Reminder) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Reminder) UpdatedAt() time.Time {
	return r.updatedAt
}
