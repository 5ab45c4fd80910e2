package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

func TestReminderIDFromStringSuccess(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
	}{
		{name: "small id", input: "42", expected: 42},
		{name: "large id", input: "9007199254740993", expected: 9007199254740993},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := domain.ReminderIDFromString(tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, id.Int64())
			assert.Equal(t, tt.input, id.String())
		})
	}
}

func TestReminderIDFromStringError(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "zero", input: "0"},
		{name: "negative", input: "-3"},
		{name: "not a number", input: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ReminderIDFromString(tt.input)

			assert.ErrorIs(t, err, domain.ErrInvalidReminderID)
		})
	}
}

func TestReminderIDOffset(t *testing.T) {
	id := domain.MustReminderID(42)

	assert.Equal(t, int64(1042), id.Offset(1000))
	assert.True(t, id.Equals(domain.MustReminderID(42)))
	assert.False(t, id.Equals(domain.MustReminderID(43)))
}

func TestDocumentID(t *testing.T) {
	generated := domain.NewDocumentID()
	assert.False(t, generated.IsZero())
	assert.NotEqual(t, generated, domain.NewDocumentID())

	parsed, err := domain.DocumentIDFromString(" abc ")
	require.NoError(t, err)
	assert.Equal(t, "abc", parsed.String())

	_, err = domain.DocumentIDFromString("  ")
	assert.ErrorIs(t, err, domain.ErrInvalidDocumentID)
}
