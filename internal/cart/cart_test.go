package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headphones() LineItem {
	return LineItem{
		ProductID: "p1",
		Name:      "Premium Wireless Headphones",
		UnitPrice: decimal.RequireFromString("199.99"),
		StoreName: "Tech Haven",
		Quantity:  1,
	}
}

func watch() LineItem {
	return LineItem{
		ProductID: "p2",
		Name:      "Designer Watch",
		UnitPrice: decimal.RequireFromString("299.99"),
		StoreName: "Luxury Timepieces",
		Quantity:  1,
	}
}

func TestComputeTotalsScenario(t *testing.T) {
	items := []LineItem{headphones(), watch()}
	totals := ComputeTotals(items, decimal.NewFromInt(10))

	display := totals.Display()
	assert.Equal(t, "499.98", display["subtotal"])
	assert.Equal(t, "10.00", display["shipping"])
	assert.Equal(t, "50.00", display["tax"]) // 49.998 rounds up
	assert.Equal(t, "559.98", display["total"])
}

func TestTotalIsSumOfParts(t *testing.T) {
	items := []LineItem{
		{ProductID: "a", UnitPrice: decimal.RequireFromString("3.33"), Quantity: 7},
		{ProductID: "b", UnitPrice: decimal.RequireFromString("0.01"), Quantity: 99},
		{ProductID: "c", UnitPrice: decimal.RequireFromString("1249.50"), Quantity: 2},
	}

	totals := ComputeTotals(items, decimal.NewFromInt(20))

	sum := totals.Subtotal.Add(totals.Shipping).Add(totals.Tax)
	assert.True(t, totals.Total.Equal(sum),
		"total %s != subtotal+shipping+tax %s", totals.Total, sum)
}

func TestShippingZeroOnlyWhenEmpty(t *testing.T) {
	empty := ComputeTotals(nil, decimal.NewFromInt(30))
	assert.True(t, empty.Shipping.IsZero())
	assert.True(t, empty.Total.IsZero())

	nonEmpty := ComputeTotals([]LineItem{headphones()}, decimal.NewFromInt(30))
	assert.True(t, nonEmpty.Shipping.Equal(decimal.NewFromInt(30)))
}

func TestUpdateQuantityBounds(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(headphones()))

	err := c.UpdateQuantity("p1", 0)
	assert.Error(t, err)
	assert.IsType(t, &ErrQuantityOutOfRange{}, err)
	assert.Equal(t, 1, c.Items()[0].Quantity, "rejected update must not mutate state")

	err = c.UpdateQuantity("p1", 100)
	assert.Error(t, err)
	assert.Equal(t, 1, c.Items()[0].Quantity)

	assert.NoError(t, c.UpdateQuantity("p1", MinQuantity))
	assert.Equal(t, 1, c.Items()[0].Quantity)

	assert.NoError(t, c.UpdateQuantity("p1", MaxQuantity))
	assert.Equal(t, 99, c.Items()[0].Quantity)
}

func TestUpdateQuantityUnknownItem(t *testing.T) {
	c := New()
	err := c.UpdateQuantity("missing", 5)
	assert.Error(t, err)
	assert.IsType(t, &ErrItemNotFound{}, err)
}

func TestAddRejectsBadQuantity(t *testing.T) {
	c := New()
	item := headphones()
	item.Quantity = 0

	assert.Error(t, c.Add(item))
	assert.Equal(t, 0, c.Len())
}

func TestAddReplacesExisting(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(headphones()))

	again := headphones()
	again.Quantity = 4
	require.NoError(t, c.Add(again))

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 4, c.Items()[0].Quantity)
}

func TestRemoveDeletesLine(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(headphones()))
	require.NoError(t, c.Add(watch()))

	require.NoError(t, c.Remove("p1"))
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)

	assert.Error(t, c.Remove("p1"))
}
