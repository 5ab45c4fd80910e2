package domain

import "fmt"

// RepeatType is stored with a reminder but never consumed by scheduling.
type RepeatType string

const (
	RepeatNone    RepeatType = "none"
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
	RepeatYearly  RepeatType = "yearly"
)

func NewRepeatType(t string) (RepeatType, error) {
	switch t {
	case "":
		return RepeatNone, nil
	case string(RepeatNone), string(RepeatDaily), string(RepeatWeekly), string(RepeatMonthly), string(RepeatYearly):
		return RepeatType(t), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidRepeatType, t)
	}
}
