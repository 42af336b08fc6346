package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity bounds for a single line item
const (
	MinQuantity = 1
	MaxQuantity = 99
)

// TaxRate is the flat tax applied to the subtotal.
var TaxRate = decimal.NewFromFloat(0.10)

// ErrQuantityOutOfRange is returned when a requested quantity falls outside
// [MinQuantity, MaxQuantity]. The cart is left unchanged.
type ErrQuantityOutOfRange struct {
	Quantity int
}

func (e *ErrQuantityOutOfRange) Error() string {
	return fmt.Sprintf("quantity must be between %d and %d, got %d",
		MinQuantity, MaxQuantity, e.Quantity)
}

// ErrItemNotFound is returned when a line item does not exist in the cart.
type ErrItemNotFound struct {
	ProductID string
}

func (e *ErrItemNotFound) Error() string {
	return fmt.Sprintf("item not in cart: %s", e.ProductID)
}

// LineItem associates a product with a desired quantity.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image"`
	StoreID   string          `json:"store_id"`
	StoreName string          `json:"store_name"`
	Quantity  int             `json:"quantity"`
}

// Cart holds the current line items. It is ephemeral, per-session state;
// there is exactly one mutator so no locking happens here.
type Cart struct {
	items []LineItem
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{}
}

// Items returns a copy of the current line items.
func (c *Cart) Items() []LineItem {
	items := make([]LineItem, len(c.items))
	copy(items, c.items)
	return items
}

// Len returns the number of line items.
func (c *Cart) Len() int {
	return len(c.items)
}

// Add puts an item into the cart. Adding a product already present replaces
// its quantity.
func (c *Cart) Add(item LineItem) error {
	if item.Quantity < MinQuantity || item.Quantity > MaxQuantity {
		return &ErrQuantityOutOfRange{Quantity: item.Quantity}
	}

	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i] = item
			return nil
		}
	}

	c.items = append(c.items, item)
	return nil
}

// UpdateQuantity replaces an item's quantity in place. Out-of-range values
// are rejected and prior state is preserved.
func (c *Cart) UpdateQuantity(productID string, quantity int) error {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return &ErrQuantityOutOfRange{Quantity: quantity}
	}

	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = quantity
			return nil
		}
	}

	return &ErrItemNotFound{ProductID: productID}
}

// Remove deletes an item from the cart entirely.
func (c *Cart) Remove(productID string) error {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return &ErrItemNotFound{ProductID: productID}
}

// Totals is the derived order summary. Values carry full decimal precision;
// rendering rounds to two fraction digits.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Display renders all monetary values with exactly two fraction digits.
func (t Totals) Display() map[string]string {
	return map[string]string{
		"subtotal": t.Subtotal.StringFixed(2),
		"shipping": t.Shipping.StringFixed(2),
		"tax":      t.Tax.StringFixed(2),
		"total":    t.Total.StringFixed(2),
	}
}

// ComputeTotals derives the order summary from the line items and the
// selected shipping price. Shipping applies only to a non-empty cart.
func ComputeTotals(items []LineItem, shippingPrice decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	shipping := decimal.Zero
	if len(items) > 0 {
		shipping = shippingPrice
	}

	tax := subtotal.Mul(TaxRate)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// Totals computes the summary for the cart's current items.
func (c *Cart) Totals(shippingPrice decimal.Decimal) Totals {
	return ComputeTotals(c.items, shippingPrice)
}
