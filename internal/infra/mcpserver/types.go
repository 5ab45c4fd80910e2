package mcpserver

import (
	"time"

	"github.com/KasumiMercury/primind-payment-reminder/internal/app"
)

// reminder is the tool-facing view of a reminder. Amounts are preformatted so
// assistants can quote them directly.
type reminder struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	DateTime   *time.Time `json:"date_time,omitempty"`
	Amount     string     `json:"amount"`
	Completed  bool       `json:"completed"`
	Category   string     `json:"category,omitempty"`
	Note       string     `json:"note,omitempty"`
	RepeatType string     `json:"repeat_type,omitempty"`
}

func fromOutput(output app.ReminderOutput, currency string) reminder {
	r := reminder{
		ID:         output.ID,
		Title:      output.Title,
		Amount:     app.FormatAmount(output.Amount, currency),
		Completed:  output.Completed,
		Category:   output.Category,
		Note:       output.Note,
		RepeatType: output.RepeatType,
	}

	if !output.DateTime.IsZero() {
		t := output.DateTime
		r.DateTime = &t
	}

	return r
}
