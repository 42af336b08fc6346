package checkout

import (
	"context"
	"testing"

	"marketplace-service/internal/cart"
	"marketplace-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	events []*models.OrderPlacedEvent
}

func (p *capturingPublisher) PublishOrderPlaced(_ context.Context, event *models.OrderPlacedEvent) error {
	p.events = append(p.events, event)
	return nil
}

func filledShipping() ShippingDetails {
	return ShippingDetails{
		Email:     "buyer@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Address:   "1 Analytical Way",
		City:      "London",
		State:     "LDN",
		ZipCode:   "SW1A",
		Country:   "UK",
	}
}

func filledPayment() PaymentDetails {
	return PaymentDetails{
		CardNumber: "4242424242424242",
		CardName:   "Ada Lovelace",
		ExpiryDate: "12/27",
		CVV:        "123",
	}
}

func cartWithItem(t *testing.T) *cart.Cart {
	t.Helper()
	c := cart.New()
	require.NoError(t, c.Add(cart.LineItem{
		ProductID: "p1",
		Name:      "Premium Wireless Headphones",
		UnitPrice: decimal.RequireFromString("199.99"),
		Quantity:  1,
	}))
	return c
}

func TestInitialStep(t *testing.T) {
	co := New("u1", cart.New(), &capturingPublisher{})
	assert.Equal(t, StepShipping, co.Step())
	assert.Equal(t, "standard", co.Method().ID)
}

func TestNextRequiresFields(t *testing.T) {
	co := New("u1", cartWithItem(t), &capturingPublisher{})

	err := co.Next()
	require.Error(t, err)
	var missing *ErrMissingFields
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, StepShipping, missing.Step)
	assert.Contains(t, missing.Fields, "email")
	assert.Equal(t, StepShipping, co.Step(), "gated transition must not advance")

	co.SetShippingDetails(filledShipping())
	require.NoError(t, co.Next())
	assert.Equal(t, StepPayment, co.Step())

	err = co.Next()
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, StepPayment, missing.Step)
	assert.Equal(t, StepPayment, co.Step())

	co.SetPaymentDetails(filledPayment())
	require.NoError(t, co.Next())
	assert.Equal(t, StepReview, co.Step())

	assert.ErrorIs(t, co.Next(), ErrAlreadyLastStep)
}

func TestTransitionsAreAdjacent(t *testing.T) {
	co := New("u1", cartWithItem(t), &capturingPublisher{})
	co.SetShippingDetails(filledShipping())
	co.SetPaymentDetails(filledPayment())

	// Forward one step at a time; no shipping -> review jump exists.
	require.NoError(t, co.Next())
	assert.Equal(t, StepPayment, co.Step())
	require.NoError(t, co.Next())
	assert.Equal(t, StepReview, co.Step())

	// Backward is unconditional.
	require.NoError(t, co.Back())
	assert.Equal(t, StepPayment, co.Step())
	require.NoError(t, co.Back())
	assert.Equal(t, StepShipping, co.Step())
	assert.ErrorIs(t, co.Back(), ErrAlreadyFirstStep)
}

func TestSelectShipping(t *testing.T) {
	co := New("u1", cartWithItem(t), &capturingPublisher{})

	require.NoError(t, co.SelectShipping("express"))
	assert.True(t, co.Method().Price.Equal(decimal.NewFromInt(20)))

	assert.Error(t, co.SelectShipping("teleport"))
	assert.Equal(t, "express", co.Method().ID)
}

func TestTotalsFollowSelectedMethod(t *testing.T) {
	co := New("u1", cartWithItem(t), &capturingPublisher{})
	require.NoError(t, co.SelectShipping("overnight"))

	totals := co.Totals()
	assert.Equal(t, "199.99", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "30.00", totals.Shipping.StringFixed(2))
}

func TestPlaceOrder(t *testing.T) {
	pub := &capturingPublisher{}
	co := New("u1", cartWithItem(t), pub)

	_, err := co.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, ErrNotAtReview)

	co.SetShippingDetails(filledShipping())
	co.SetPaymentDetails(filledPayment())
	require.NoError(t, co.Next())
	require.NoError(t, co.Next())

	orderID, err := co.PlaceOrder(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, orderID)

	require.Len(t, pub.events, 1)
	event := pub.events[0]
	assert.Equal(t, models.EventTypeOrderPlaced, event.EventType)
	assert.Equal(t, orderID, event.OrderID)
	assert.Equal(t, "u1", event.UserID)
	require.Len(t, event.Lines, 1)
	assert.Equal(t, "p1", event.Lines[0].ProductID)
	assert.Equal(t, "229.99", event.Total.StringFixed(2)) // 199.99 + 10.00 shipping + 19.999 tax

	// Terminal action resets the flow.
	assert.Equal(t, StepShipping, co.Step())
	assert.Equal(t, 0, co.Cart().Len())
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	co := New("u1", cart.New(), &capturingPublisher{})
	co.step = StepReview

	_, err := co.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
}
