package api

import (
	"errors"
	"net/http"
	"testing"

	"marketplace-service/internal/cart"
	"marketplace-service/internal/checkout"
	"marketplace-service/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", service.NewValidationError("price must be positive"), http.StatusBadRequest},
		{"not found", &service.NotFoundError{Resource: "product", ID: "p1"}, http.StatusNotFound},
		{"auth", &service.AuthError{Message: "invalid session"}, http.StatusUnauthorized},
		{"cart quantity", &cart.ErrQuantityOutOfRange{Quantity: 100}, http.StatusBadRequest},
		{"cart item missing", &cart.ErrItemNotFound{ProductID: "p1"}, http.StatusNotFound},
		{"checkout fields", &checkout.ErrMissingFields{Step: checkout.StepShipping, Fields: []string{"email"}}, http.StatusBadRequest},
		{"checkout last step", checkout.ErrAlreadyLastStep, http.StatusBadRequest},
		{"checkout empty cart", checkout.ErrEmptyCart, http.StatusBadRequest},
		{"wrapped validation", errors.Join(errors.New("outer"), service.NewValidationError("bad")), http.StatusBadRequest},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := statusForError(tt.err)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestStatusForErrorHidesInternalDetail(t *testing.T) {
	_, message := statusForError(errors.New("pq: password authentication failed"))
	assert.Equal(t, "internal server error", message)
}
