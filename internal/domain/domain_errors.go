package domain

import "errors"

var (
	ErrReminderNotFound = errors.New("reminder not found")
	ErrCategoryNotFound = errors.New("category not found")

	ErrInvalidTimeRange  = errors.New("invalid time range: start must be before end")
	ErrInvalidRepeatType = errors.New("invalid repeat type")

	ErrEmptyTitle       = errors.New("reminder title cannot be empty")
	ErrNegativeAmount   = errors.New("reminder amount cannot be negative")
	ErrAmountPrecision  = errors.New("reminder amount cannot have more than 2 decimal places")
	ErrAmountTooLarge   = errors.New("reminder amount exceeds 18 integer digits")
	ErrAlreadyCompleted = errors.New("reminder is already completed")

	ErrInvalidReminderID = errors.New("invalid reminder ID: must be a positive integer")
	ErrInvalidDocumentID = errors.New("invalid document ID: must not be empty")
)
