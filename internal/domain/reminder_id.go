package domain

import "strconv"

// ReminderID is the locally assigned numeric identifier of a reminder. It is
// also the key of the reminder's alarm and notification slot.
type ReminderID struct {
	value int64
}

func NewReminderID(v int64) (ReminderID, error) {
	if v <= 0 {
		return ReminderID{}, ErrInvalidReminderID
	}

	return ReminderID{value: v}, nil
}

func MustReminderID(v int64) ReminderID {
	id, err := NewReminderID(v)
	if err != nil {
		panic(err)
	}

	return id
}

func ReminderIDFromString(s string) (ReminderID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return ReminderID{}, ErrInvalidReminderID
	}

	return NewReminderID(v)
}

func (r ReminderID) Int64() int64 {
	return r.value
}

func (r ReminderID) String() string {
	return strconv.FormatInt(r.value, 10)
}

func (r ReminderID) IsZero() bool {
	return r.value == 0
}

func (r ReminderID) Equals(other ReminderID) bool {
	return r.value == other.value
}

// Offset returns the id shifted by n. Used to derive secondary request codes
// that must not collide with the id itself.
func (r ReminderID) Offset(n int64) int64 {
	return r.value + n
}
