package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"marketplace-service/internal/cart"
	"marketplace-service/internal/checkout"
	"marketplace-service/internal/identity"
	"marketplace-service/internal/models"
	"marketplace-service/internal/service"
	"marketplace-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	catalog   *service.CatalogService
	idClient  *identity.Client
	checkouts *checkoutRegistry
}

// NewHandler creates a new HTTP handler
func NewHandler(catalog *service.CatalogService, idClient *identity.Client, publisher checkout.OrderPublisher) *Handler {
	return &Handler{
		catalog:   catalog,
		idClient:  idClient,
		checkouts: newCheckoutRegistry(publisher),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(authMiddleware(h.idClient))
	{
		api.POST("/products", h.createProduct)
		api.GET("/products/:id", h.getProduct)
		api.PUT("/products/:id", h.updateProduct)
		api.GET("/products", h.listProducts)

		api.GET("/cart", h.getCart)
		api.POST("/cart/items", h.addCartItem)
		api.PUT("/cart/items/:id", h.updateCartItem)
		api.DELETE("/cart/items/:id", h.removeCartItem)

		api.GET("/checkout", h.getCheckout)
		api.POST("/checkout/next", h.checkoutNext)
		api.POST("/checkout/back", h.checkoutBack)
		api.PUT("/checkout/shipping-method", h.selectShippingMethod)
		api.PUT("/checkout/details", h.setCheckoutDetails)
		api.POST("/checkout/place-order", h.placeOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// statusForError maps the service error taxonomy to HTTP statuses.
// Unrecognized errors map to 500; their detail stays server-side.
func statusForError(err error) (int, string) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, validationErr.Message
	}

	var notFoundErr *service.NotFoundError
	if errors.As(err, &notFoundErr) {
		return http.StatusNotFound, notFoundErr.Error()
	}

	var authErr *service.AuthError
	if errors.As(err, &authErr) {
		return http.StatusUnauthorized, authErr.Message
	}

	var qtyErr *cart.ErrQuantityOutOfRange
	if errors.As(err, &qtyErr) {
		return http.StatusBadRequest, qtyErr.Error()
	}

	var itemErr *cart.ErrItemNotFound
	if errors.As(err, &itemErr) {
		return http.StatusNotFound, itemErr.Error()
	}

	var missingErr *checkout.ErrMissingFields
	if errors.As(err, &missingErr) {
		return http.StatusBadRequest, missingErr.Error()
	}

	switch {
	case errors.Is(err, checkout.ErrAlreadyLastStep),
		errors.Is(err, checkout.ErrAlreadyFirstStep),
		errors.Is(err, checkout.ErrNotAtReview),
		errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest, err.Error()
	}

	return http.StatusInternalServerError, "internal server error"
}

func respondError(c *gin.Context, err error) {
	status, message := statusForError(err)
	if status == http.StatusInternalServerError {
		util.GetLogger().Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": message})
}

// createProduct handles product creation for the caller's store
func (h *Handler) createProduct(c *gin.Context) {
	session := sessionFrom(c)

	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.catalog.Create(c.Request.Context(), session.StoreID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// getProduct handles get product by ID
func (h *Handler) getProduct(c *gin.Context) {
	session := sessionFrom(c)

	product, err := h.catalog.Get(c.Request.Context(), session.StoreID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// updateProduct handles partial product updates
func (h *Handler) updateProduct(c *gin.Context) {
	session := sessionFrom(c)

	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.catalog.Update(c.Request.Context(), session.StoreID, c.Param("id"), &patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// listProducts handles paginated listing for the caller's store
func (h *Handler) listProducts(c *gin.Context) {
	session := sessionFrom(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	products, err := h.catalog.List(c.Request.Context(), session.StoreID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

func cartView(co *checkout.Checkout) gin.H {
	return gin.H{
		"items":  co.Cart().Items(),
		"totals": co.Totals().Display(),
	}
}

// getCart returns the caller's cart with derived totals
func (h *Handler) getCart(c *gin.Context) {
	co := h.checkouts.get(sessionFrom(c).UserID)
	c.JSON(http.StatusOK, cartView(co))
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// addCartItem puts a published product into the caller's cart
func (h *Handler) addCartItem(c *gin.Context) {
	session := sessionFrom(c)

	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.catalog.GetPublished(c.Request.Context(), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	co := h.checkouts.get(session.UserID)
	err = co.Cart().Add(cart.LineItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		StoreID:   product.StoreID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		util.CartQuantityRejectedTotal.Inc()
		respondError(c, err)
		return
	}

	util.CartItemsAddedTotal.Inc()
	c.JSON(http.StatusOK, cartView(co))
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// updateCartItem replaces a line item's quantity
func (h *Handler) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	co := h.checkouts.get(sessionFrom(c).UserID)
	if err := co.Cart().UpdateQuantity(c.Param("id"), req.Quantity); err != nil {
		util.CartQuantityRejectedTotal.Inc()
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartView(co))
}

// removeCartItem deletes a line item entirely
func (h *Handler) removeCartItem(c *gin.Context) {
	co := h.checkouts.get(sessionFrom(c).UserID)
	if err := co.Cart().Remove(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartView(co))
}

func checkoutView(co *checkout.Checkout) gin.H {
	return gin.H{
		"step":            co.Step(),
		"shipping_method": co.Method(),
		"totals":          co.Totals().Display(),
	}
}

// getCheckout returns the caller's checkout state
func (h *Handler) getCheckout(c *gin.Context) {
	co := h.checkouts.get(sessionFrom(c).UserID)
	c.JSON(http.StatusOK, checkoutView(co))
}

// checkoutNext advances the checkout to the adjacent forward step
func (h *Handler) checkoutNext(c *gin.Context) {
	co := h.checkouts.get(sessionFrom(c).UserID)
	if err := co.Next(); err != nil {
		respondError(c, err)
		return
	}

	util.CheckoutStepAdvancesTotal.WithLabelValues("forward").Inc()
	c.JSON(http.StatusOK, checkoutView(co))
}

// checkoutBack moves the checkout to the adjacent previous step
func (h *Handler) checkoutBack(c *gin.Context) {
	co := h.checkouts.get(sessionFrom(c).UserID)
	if err := co.Back(); err != nil {
		respondError(c, err)
		return
	}

	util.CheckoutStepAdvancesTotal.WithLabelValues("backward").Inc()
	c.JSON(http.StatusOK, checkoutView(co))
}

type selectShippingRequest struct {
	MethodID string `json:"method_id" binding:"required"`
}

// selectShippingMethod picks one of the fixed shipping methods
func (h *Handler) selectShippingMethod(c *gin.Context) {
	var req selectShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	co := h.checkouts.get(sessionFrom(c).UserID)
	if err := co.SelectShipping(req.MethodID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, checkoutView(co))
}

type checkoutDetailsRequest struct {
	Shipping *checkout.ShippingDetails `json:"shipping,omitempty"`
	Payment  *checkout.PaymentDetails  `json:"payment,omitempty"`
}

// setCheckoutDetails replaces the buyer's shipping and/or payment fields
func (h *Handler) setCheckoutDetails(c *gin.Context) {
	var req checkoutDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	co := h.checkouts.get(sessionFrom(c).UserID)
	if req.Shipping != nil {
		co.SetShippingDetails(*req.Shipping)
	}
	if req.Payment != nil {
		co.SetPaymentDetails(*req.Payment)
	}

	c.JSON(http.StatusOK, checkoutView(co))
}

// placeOrder completes the checkout and publishes the order
func (h *Handler) placeOrder(c *gin.Context) {
	co := h.checkouts.get(sessionFrom(c).UserID)

	orderID, err := co.PlaceOrder(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	util.OrdersPlacedTotal.Inc()
	c.JSON(http.StatusCreated, gin.H{"order_id": orderID})
}
