package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"marketplace-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessageRoutesOrderPlaced(t *testing.T) {
	handler := NewEventHandler()

	var received *models.OrderPlacedEvent
	handler.OnOrderPlaced(func(_ context.Context, event *models.OrderPlacedEvent) error {
		received = event
		return nil
	})

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID: "ord-1",
		UserID:  "u1",
		Lines: []models.OrderLineData{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("19.99")},
		},
		ShippingMethod: "standard",
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	err = handler.HandleMessage(context.Background(), kafka.Message{Value: payload})
	require.NoError(t, err)

	require.NotNil(t, received)
	assert.Equal(t, "ord-1", received.OrderID)
	require.Len(t, received.Lines, 1)
	assert.Equal(t, 2, received.Lines[0].Quantity)
}

func TestHandleMessageIgnoresUnknownType(t *testing.T) {
	handler := NewEventHandler()
	handler.OnOrderPlaced(func(_ context.Context, _ *models.OrderPlacedEvent) error {
		t.Fatal("handler must not fire for unknown event types")
		return nil
	})

	payload, err := json.Marshal(models.BaseEvent{
		EventID:   "evt-2",
		EventType: "PRICE_CHANGED",
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	err = handler.HandleMessage(context.Background(), kafka.Message{Value: payload})
	assert.NoError(t, err)
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	handler := NewEventHandler()
	err := handler.HandleMessage(context.Background(), kafka.Message{Value: []byte("{not json")})
	assert.Error(t, err)
}
