package domain

import (
	"strings"

	"github.com/google/uuid"
)

// DocumentID is the key the remote store assigned to a reminder document.
// It is opaque: any non-empty string is accepted.
type DocumentID struct {
	value string
}

func NewDocumentID() DocumentID {
	return DocumentID{value: uuid.Must(uuid.NewV7()).String()}
}

func DocumentIDFromString(s string) (DocumentID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DocumentID{}, ErrInvalidDocumentID
	}

	return DocumentID{value: s}, nil
}

func (d DocumentID) String() string {
	return d.value
}

func (d DocumentID) IsZero() bool {
	return d.value == ""
}

func (d DocumentID) Equals(other DocumentID) bool {
	return d.value == other.value
}
