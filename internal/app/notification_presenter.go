package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-payment-reminder/internal/observability/metrics"
)

const (
	PaymentChannelID = "payment_reminders"

	notificationTitle = "Payment reminder"
	openLabel         = "Open"
	markPaidLabel     = "Mark as paid"

	// markPaidRequestOffset keeps the button's request code clear of the
	// tap action, which uses the reminder id itself.
	markPaidRequestOffset = 1000

	DefaultCurrency = "VND"
)

var paymentChannel = domain.Channel{
	ID:          PaymentChannelID,
	Name:        "Payment reminders",
	Description: "Reminders for upcoming bill and debt payments",
	Importance:  domain.ImportanceHigh,
}

type NotificationPresenter struct {
	facility  NotificationFacility
	currency  string
	publisher pubsub.Publisher
	metrics   *metrics.ReminderMetrics
	now       func() time.Time

	mu           sync.Mutex
	channelReady bool
}

type PresenterOption func(*NotificationPresenter)

func WithCurrency(code string) PresenterOption {
	return func(p *NotificationPresenter) {
		if code != "" {
			p.currency = code
		}
	}
}

func WithPresenterPublisher(publisher pubsub.Publisher) PresenterOption {
	return func(p *NotificationPresenter) {
		p.publisher = publisher
	}
}

func WithPresenterMetrics(m *metrics.ReminderMetrics) PresenterOption {
	return func(p *NotificationPresenter) {
		p.metrics = m
	}
}

func NewNotificationPresenter(facility NotificationFacility, opts ...PresenterOption) *NotificationPresenter {
	p := &NotificationPresenter{
		facility: facility,
		currency: DefaultCurrency,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// ShowNotification posts the payment notification for a reminder, replacing
// any notification already shown under the same id.
func (p *NotificationPresenter) ShowNotification(ctx context.Context, id domain.ReminderID, title string, amount decimal.Decimal) error {
	if err := p.ensureChannel(ctx); err != nil {
		return err
	}

	n := domain.Notification{
		ID:        id,
		ChannelID: PaymentChannelID,
		Title:     notificationTitle,
		Body:      fmt.Sprintf("%s: %s", title, FormatAmount(amount, p.currency)),
		Tap: domain.Action{
			Kind:        domain.ActionOpen,
			Label:       openLabel,
			RequestCode: id.Int64(),
			ReminderID:  id,
		},
		Actions: []domain.Action{
			{
				Kind:        domain.ActionMarkPaid,
				Label:       markPaidLabel,
				RequestCode: id.Offset(markPaidRequestOffset),
				ReminderID:  id,
			},
		},
		PostedAt: p.now(),
	}

	if err := p.facility.Notify(ctx, n); err != nil {
		slog.ErrorContext(ctx, "failed to post notification",
			"event", "notification.post",
			"error", err,
			"reminder_id", id.String(),
		)

		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	p.metrics.NotificationPosted(ctx)

	slog.InfoContext(ctx, "notification posted",
		"event", "notification.post",
		"reminder_id", id.String(),
	)

	if p.publisher != nil {
		event := pubsub.NotificationPostedEvent{
			ReminderID: id.Int64(),
			Title:      n.Title,
			Body:       n.Body,
			PostedAt:   n.PostedAt,
		}
		if pubErr := p.publisher.PublishNotificationPosted(ctx, event); pubErr != nil {
			slog.ErrorContext(ctx, "failed to publish notification posted event",
				"reminder_id", id.String(),
				"error", pubErr.Error(),
			)
		}
	}

	return nil
}

func (p *NotificationPresenter) ensureChannel(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channelReady {
		return nil
	}

	if err := p.facility.CreateChannel(ctx, paymentChannel); err != nil {
		slog.ErrorContext(ctx, "failed to create notification channel",
			"error", err,
			"channel", PaymentChannelID,
		)

		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	p.channelReady = true

	return nil
}

// FormatAmount renders an amount with thousands separators followed by the
// currency code, e.g. "500,000 VND". Fractional amounts keep two decimals.
func FormatAmount(amount decimal.Decimal, currency string) string {
	rounded := amount.Round(2)
	abs := rounded.Abs()

	s := humanize.Comma(abs.IntPart())
	if !abs.IsInteger() {
		fixed := abs.StringFixed(2)
		s += fixed[strings.IndexByte(fixed, '.'):]
	}

	if rounded.IsNegative() {
		s = "-" + s
	}

	if currency == "" {
		return s
	}

	return s + " " + currency
}
