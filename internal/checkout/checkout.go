package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace-service/internal/cart"
	"marketplace-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Step is one phase of the linear purchase flow.
type Step string

const (
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
	StepReview   Step = "review"
)

// steps in forward order; transitions only ever move between neighbors.
var steps = []Step{StepShipping, StepPayment, StepReview}

var (
	ErrAlreadyLastStep  = errors.New("already at the review step")
	ErrAlreadyFirstStep = errors.New("already at the shipping step")
	ErrNotAtReview      = errors.New("order can only be placed at the review step")
	ErrEmptyCart        = errors.New("cart is empty")
)

// ErrMissingFields rejects a forward transition whose step is incomplete.
type ErrMissingFields struct {
	Step   Step
	Fields []string
}

func (e *ErrMissingFields) Error() string {
	return fmt.Sprintf("%s step incomplete, missing: %s", e.Step, strings.Join(e.Fields, ", "))
}

// ShippingMethod is one of the fixed delivery options.
type ShippingMethod struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	EstimatedDays string          `json:"estimated_days"`
}

// ShippingMethods is the fixed set of delivery options.
var ShippingMethods = []ShippingMethod{
	{ID: "standard", Name: "Standard Shipping", Price: decimal.NewFromInt(10), EstimatedDays: "3-5"},
	{ID: "express", Name: "Express Shipping", Price: decimal.NewFromInt(20), EstimatedDays: "1-2"},
	{ID: "overnight", Name: "Overnight Shipping", Price: decimal.NewFromInt(30), EstimatedDays: "1"},
}

// MethodByID looks up a shipping method in the fixed set.
func MethodByID(id string) (ShippingMethod, bool) {
	for _, m := range ShippingMethods {
		if m.ID == id {
			return m, true
		}
	}
	return ShippingMethod{}, false
}

// ShippingDetails are the buyer's address fields.
type ShippingDetails struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
}

// PaymentDetails are the buyer's card fields.
type PaymentDetails struct {
	CardNumber string `json:"card_number"`
	CardName   string `json:"card_name"`
	ExpiryDate string `json:"expiry_date"`
	CVV        string `json:"cvv"`
}

// OrderPublisher publishes the terminal place-order event.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
}

// Checkout drives the 3-step linear flow for one user's cart.
type Checkout struct {
	userID    string
	cart      *cart.Cart
	step      Step
	method    ShippingMethod
	shipping  ShippingDetails
	payment   PaymentDetails
	publisher OrderPublisher
}

// New creates a checkout at the shipping step with standard delivery selected.
func New(userID string, c *cart.Cart, publisher OrderPublisher) *Checkout {
	return &Checkout{
		userID:    userID,
		cart:      c,
		step:      StepShipping,
		method:    ShippingMethods[0],
		publisher: publisher,
	}
}

// Step returns the current step.
func (co *Checkout) Step() Step {
	return co.step
}

// Cart returns the cart this checkout is driving.
func (co *Checkout) Cart() *cart.Cart {
	return co.cart
}

// Method returns the selected shipping method.
func (co *Checkout) Method() ShippingMethod {
	return co.method
}

// SelectShipping picks one of the fixed shipping methods.
func (co *Checkout) SelectShipping(id string) error {
	method, ok := MethodByID(id)
	if !ok {
		return fmt.Errorf("unknown shipping method: %s", id)
	}
	co.method = method
	return nil
}

// SetShippingDetails replaces the address fields.
func (co *Checkout) SetShippingDetails(d ShippingDetails) {
	co.shipping = d
}

// SetPaymentDetails replaces the card fields.
func (co *Checkout) SetPaymentDetails(d PaymentDetails) {
	co.payment = d
}

func (co *Checkout) missingFields() []string {
	var missing []string
	require := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	switch co.step {
	case StepShipping:
		require("email", co.shipping.Email)
		require("first_name", co.shipping.FirstName)
		require("last_name", co.shipping.LastName)
		require("address", co.shipping.Address)
		require("city", co.shipping.City)
		require("zip_code", co.shipping.ZipCode)
	case StepPayment:
		require("card_number", co.payment.CardNumber)
		require("card_name", co.payment.CardName)
		require("expiry_date", co.payment.ExpiryDate)
		require("cvv", co.payment.CVV)
	}
	return missing
}

// Next advances to the adjacent forward step. The current step's required
// fields must be present; otherwise the step does not change.
func (co *Checkout) Next() error {
	idx := co.stepIndex()
	if idx == len(steps)-1 {
		return ErrAlreadyLastStep
	}

	if missing := co.missingFields(); len(missing) > 0 {
		return &ErrMissingFields{Step: co.step, Fields: missing}
	}

	co.step = steps[idx+1]
	return nil
}

// Back moves to the adjacent previous step, unconditionally.
func (co *Checkout) Back() error {
	idx := co.stepIndex()
	if idx == 0 {
		return ErrAlreadyFirstStep
	}
	co.step = steps[idx-1]
	return nil
}

func (co *Checkout) stepIndex() int {
	for i, s := range steps {
		if s == co.step {
			return i
		}
	}
	return 0
}

// Totals derives the order summary for the current cart and shipping method.
func (co *Checkout) Totals() cart.Totals {
	return co.cart.Totals(co.method.Price)
}

// PlaceOrder is the terminal action. It is only allowed at the review step
// with a non-empty cart; on success it publishes an OrderPlaced event and
// resets the flow.
func (co *Checkout) PlaceOrder(ctx context.Context) (string, error) {
	if co.step != StepReview {
		return "", ErrNotAtReview
	}

	items := co.cart.Items()
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	totals := co.Totals()
	orderID := uuid.New().String()

	lines := make([]models.OrderLineData, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.OrderLineData{
			ProductID: item.ProductID,
			StoreID:   item.StoreID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:        orderID,
		UserID:         co.userID,
		Lines:          lines,
		ShippingMethod: co.method.ID,
		Subtotal:       totals.Subtotal,
		Shipping:       totals.Shipping,
		Tax:            totals.Tax,
		Total:          totals.Total,
	}

	if err := co.publisher.PublishOrderPlaced(ctx, event); err != nil {
		return "", fmt.Errorf("failed to publish order: %w", err)
	}

	co.cart = cart.New()
	co.step = StepShipping
	co.shipping = ShippingDetails{}
	co.payment = PaymentDetails{}

	return orderID, nil
}
