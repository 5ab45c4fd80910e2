package app_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-payment-reminder/internal/app"
	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/notify"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/pubsub"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   decimal.Decimal
		currency string
		expected string
	}{
		{
			name:     "whole amount",
			amount:   decimal.NewFromInt(500000),
			currency: "VND",
			expected: "500,000 VND",
		},
		{
			name:     "small amount",
			amount:   decimal.NewFromInt(999),
			currency: "VND",
			expected: "999 VND",
		},
		{
			name:     "fractional amount",
			amount:   decimal.RequireFromString("1234.5"),
			currency: "USD",
			expected: "1,234.50 USD",
		},
		{
			name:     "zero",
			amount:   decimal.Zero,
			currency: "VND",
			expected: "0 VND",
		},
		{
			name:     "no currency",
			amount:   decimal.NewFromInt(1500000),
			currency: "",
			expected: "1,500,000",
		},
		{
			name:     "largest storable amount keeps every digit",
			amount:   decimal.RequireFromString("99999999999999999.99"),
			currency: "VND",
			expected: "99,999,999,999,999,999.99 VND",
		},
		{
			name:     "rounds to two places",
			amount:   decimal.RequireFromString("0.005"),
			currency: "USD",
			expected: "0.01 USD",
		},
		{
			name:     "negative fractional",
			amount:   decimal.RequireFromString("-1234.25"),
			currency: "",
			expected: "-1,234.25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, app.FormatAmount(tt.amount, tt.currency))
		})
	}
}

func TestShowNotificationContent(t *testing.T) {
	ctx := context.Background()
	tray := notify.NewTray()
	presenter := app.NewNotificationPresenter(tray)

	id := domain.MustReminderID(42)
	require.NoError(t, presenter.ShowNotification(ctx, id, "Electric bill", decimal.NewFromInt(500000)))

	n, ok := tray.Get(id)
	require.True(t, ok)

	assert.Equal(t, app.PaymentChannelID, n.ChannelID)
	assert.Equal(t, "Payment reminder", n.Title)
	assert.Equal(t, "Electric bill: 500,000 VND", n.Body)

	assert.Equal(t, domain.ActionOpen, n.Tap.Kind)
	assert.Equal(t, int64(42), n.Tap.RequestCode)
	assert.Equal(t, id, n.Tap.ReminderID)

	require.Len(t, n.Actions, 1)
	assert.Equal(t, domain.ActionMarkPaid, n.Actions[0].Kind)
	assert.Equal(t, "Mark as paid", n.Actions[0].Label)
	assert.Equal(t, int64(1042), n.Actions[0].RequestCode)
	assert.Equal(t, id, n.Actions[0].ReminderID)

	channels := tray.Channels()
	require.Len(t, channels, 1)
	assert.Equal(t, domain.ImportanceHigh, channels[0].Importance)
}

func TestShowNotificationReplacesSameID(t *testing.T) {
	ctx := context.Background()
	tray := &countingTray{Tray: notify.NewTray()}
	presenter := app.NewNotificationPresenter(tray, app.WithCurrency("USD"))

	id := domain.MustReminderID(7)
	require.NoError(t, presenter.ShowNotification(ctx, id, "Rent", decimal.NewFromInt(1200)))
	require.NoError(t, presenter.ShowNotification(ctx, id, "Rent", decimal.NewFromInt(1300)))

	visible := tray.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "Rent: 1,300 USD", visible[0].Body)
	assert.Equal(t, int32(1), tray.channelCalls.Load())
}

func TestShowNotificationPublishesEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := pubsub.NewMockPublisher(ctrl)

	publisher.EXPECT().
		PublishNotificationPosted(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event pubsub.NotificationPostedEvent) error {
			assert.Equal(t, int64(5), event.ReminderID)
			assert.Equal(t, "Water: 80,000 VND", event.Body)

			return nil
		})

	presenter := app.NewNotificationPresenter(notify.NewTray(), app.WithPresenterPublisher(publisher))

	err := presenter.ShowNotification(context.Background(), domain.MustReminderID(5), "Water", decimal.NewFromInt(80000))
	assert.NoError(t, err)
}
