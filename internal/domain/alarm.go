package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type AlarmKind string

const (
	// AlarmWarning fires one day ahead of the due moment.
	AlarmWarning AlarmKind = "warning"
	// AlarmDue fires at the due moment itself.
	AlarmDue AlarmKind = "due"
)

const WarningLead = 24 * time.Hour

// AlarmKey identifies one pending alarm. All alarms of a reminder share its
// ReminderID, so the id alone is enough to find and cancel them.
type AlarmKey struct {
	ReminderID ReminderID
	Kind       AlarmKind
}

func (k AlarmKey) String() string {
	return fmt.Sprintf("%s/%s", k.ReminderID, k.Kind)
}

type Trigger struct {
	Kind AlarmKind
	At   time.Time
}

// AlarmPayload travels with an alarm and is handed to the presenter on fire.
type AlarmPayload struct {
	ReminderID ReminderID
	DocumentID DocumentID
	Title      string
	Amount     decimal.Decimal
}

func PayloadOf(r *Reminder) AlarmPayload {
	return AlarmPayload{
		ReminderID: r.ID(),
		DocumentID: r.DocumentID(),
		Title:      r.Title(),
		Amount:     r.Amount(),
	}
}

type TriggerCalculator struct {
	lead time.Duration
}

func NewTriggerCalculator() *TriggerCalculator {
	return &TriggerCalculator{lead: WarningLead}
}

// Plan returns the triggers for a due time, earliest first.
//
//   - zero dateTime: no triggers
//   - warning (dateTime - 24h): only when strictly after now
//   - due (dateTime): always, even when already past
func (c *TriggerCalculator) Plan(dateTime time.Time, now time.Time) []Trigger {
	if dateTime.IsZero() {
		return nil
	}

	triggers := make([]Trigger, 0, 2)

	warning := dateTime.Add(-c.lead)
	if warning.After(now) {
		triggers = append(triggers, Trigger{Kind: AlarmWarning, At: warning})
	}

	triggers = append(triggers, Trigger{Kind: AlarmDue, At: dateTime})

	return triggers
}
