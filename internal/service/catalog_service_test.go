package service

import (
	"testing"

	"marketplace-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateNewProduct(t *testing.T) {
	valid := func() *CreateProductRequest {
		return &CreateProductRequest{
			Name:   "Designer Watch",
			Price:  decimal.RequireFromString("299.99"),
			Stock:  3,
			Status: models.ProductStatusPublished,
		}
	}

	assert.NoError(t, validateNewProduct(valid()))

	req := valid()
	req.Name = ""
	err := validateNewProduct(req)
	assert.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)

	req = valid()
	req.Price = decimal.NewFromInt(-5)
	err = validateNewProduct(req)
	assert.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)

	req = valid()
	req.Price = decimal.Zero
	assert.Error(t, validateNewProduct(req))

	req = valid()
	req.Stock = -1
	assert.Error(t, validateNewProduct(req))

	req = valid()
	req.Status = "discontinued"
	assert.Error(t, validateNewProduct(req))
}

func TestValidateNewProductDefaultsStatus(t *testing.T) {
	req := &CreateProductRequest{
		Name:  "Ceramic Mug",
		Price: decimal.RequireFromString("14.50"),
	}

	assert.NoError(t, validateNewProduct(req))
	assert.Equal(t, models.ProductStatusDraft, req.Status)
}

func TestValidatePatch(t *testing.T) {
	err := validatePatch(&models.ProductPatch{})
	assert.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)

	name := "Updated Name"
	assert.NoError(t, validatePatch(&models.ProductPatch{Name: &name}))

	empty := ""
	assert.Error(t, validatePatch(&models.ProductPatch{Name: &empty}))

	badPrice := decimal.NewFromInt(-5)
	assert.Error(t, validatePatch(&models.ProductPatch{Price: &badPrice}))

	badStock := -1
	assert.Error(t, validatePatch(&models.ProductPatch{Stock: &badStock}))

	badStatus := "retired"
	assert.Error(t, validatePatch(&models.ProductPatch{Status: &badStatus}))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultPageSize, clampLimit(0))
	assert.Equal(t, DefaultPageSize, clampLimit(-3))
	assert.Equal(t, 25, clampLimit(25))
	assert.Equal(t, MaxPageSize, clampLimit(MaxPageSize))
	assert.Equal(t, MaxPageSize, clampLimit(5000))
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, clampPage(0))
	assert.Equal(t, 1, clampPage(-1))
	assert.Equal(t, 7, clampPage(7))
}
