package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type recordingHandler struct {
	changed   []ReminderChangedEvent
	completed []ReminderCompletedEvent
	traceIDs  []string
	err       error
}

func (h *recordingHandler) HandleReminderChanged(ctx context.Context, event ReminderChangedEvent) error {
	h.changed = append(h.changed, event)
	h.traceIDs = append(h.traceIDs, trace.SpanContextFromContext(ctx).TraceID().String())

	return h.err
}

func (h *recordingHandler) HandleReminderCompleted(ctx context.Context, event ReminderCompletedEvent) error {
	h.completed = append(h.completed, event)
	h.traceIDs = append(h.traceIDs, trace.SpanContextFromContext(ctx).TraceID().String())

	return h.err
}

func newEventMessage(t *testing.T, event any, metadata map[string]string) *message.Message {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	msg := message.NewMessage(watermill.NewUUID(), payload)
	for k, v := range metadata {
		msg.Metadata.Set(k, v)
	}

	return msg
}

func TestChangedHandler(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"

	event := ReminderChangedEvent{
		ReminderID: 42,
		DocumentID: "abc",
		ChangedAt:  time.Now().UTC(),
	}

	tests := []struct {
		name          string
		msg           func(t *testing.T) *message.Message
		handlerErr    error
		expectedErr   bool
		expectedCalls int
	}{
		{
			name: "event from another process",
			msg: func(t *testing.T) *message.Message {
				return newEventMessage(t, event, map[string]string{
					metadataOrigin: "mcp-reminders",
					"traceparent":  "00-" + traceID + "-00f067aa0ba902b7-01",
				})
			},
			expectedCalls: 1,
		},
		{
			name: "own event is skipped",
			msg: func(t *testing.T) *message.Message {
				return newEventMessage(t, event, map[string]string{metadataOrigin: "service"})
			},
		},
		{
			name: "undecodable payload is dropped",
			msg: func(_ *testing.T) *message.Message {
				return message.NewMessage(watermill.NewUUID(), []byte("{not json"))
			},
		},
		{
			name: "handler failure is returned",
			msg: func(t *testing.T) *message.Message {
				return newEventMessage(t, event, nil)
			},
			handlerErr:    errors.New("database unavailable"),
			expectedErr:   true,
			expectedCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &recordingHandler{err: tt.handlerErr}

			err := ChangedHandler("service", handler)(tt.msg(t))

			if tt.expectedErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			require.Len(t, handler.changed, tt.expectedCalls)
			assert.Empty(t, handler.completed)

			if tt.name == "event from another process" {
				assert.Equal(t, event.DocumentID, handler.changed[0].DocumentID)
				assert.Equal(t, traceID, handler.traceIDs[0])
			}
		})
	}
}

func TestCompletedHandler(t *testing.T) {
	handler := &recordingHandler{}
	msg := newEventMessage(t, ReminderCompletedEvent{
		ReminderID:  7,
		DocumentID:  "def",
		Source:      "notification",
		CompletedAt: time.Now().UTC(),
	}, map[string]string{metadataEventType: TopicReminderCompleted})

	require.NoError(t, CompletedHandler("", handler)(msg))

	require.Len(t, handler.completed, 1)
	assert.Equal(t, int64(7), handler.completed[0].ReminderID)
	assert.Empty(t, handler.changed)
}
