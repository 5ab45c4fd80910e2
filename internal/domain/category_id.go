package domain

import (
	"errors"

	"github.com/google/uuid"
)

type CategoryID struct {
	value uuid.UUID
}

var ErrInvalidCategoryID = errors.New("invalid category ID: must be valid UUIDv7")

func NewCategoryID() CategoryID {
	return CategoryID{value: uuid.Must(uuid.NewV7())}
}

func CategoryIDFromString(s string) (CategoryID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return CategoryID{}, ErrInvalidCategoryID
	}

	if id.Version() != 7 {
		return CategoryID{}, ErrInvalidCategoryID
	}

	return CategoryID{value: id}, nil
}

func (c CategoryID) String() string {
	return c.value.String()
}

func (c CategoryID) UUID() uuid.UUID {
	return c.value
}

func (c CategoryID) IsZero() bool {
	return c.value == uuid.Nil
}

func (c CategoryID) Equals(other CategoryID) bool {
	return c.value == other.value
}
