package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/assets"
	"storefront-service/internal/service"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	categories *service.CategoryService
	products   *service.ProductService
	orders     *service.OrderService
	assets     assets.Store
	logger     *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(categories *service.CategoryService, products *service.ProductService, orders *service.OrderService, assetStore assets.Store) *Handler {
	return &Handler{
		categories: categories,
		products:   products,
		orders:     orders,
		assets:     assetStore,
		logger:     util.GetLogger(),
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

	v1 := router.Group("/api/v1")
	{
		v1.GET("/categories", h.listCategories)
		v1.GET("/categories/:id", h.getCategory)
		v1.POST("/categories", h.createCategory)
		v1.PUT("/categories/:id", h.updateCategory)
		v1.DELETE("/categories/:id", h.deleteCategory)

		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.POST("/products", h.createProduct)
		v1.PUT("/products/:id", h.editProduct)
		v1.DELETE("/products/:id", h.deleteProduct)
		v1.GET("/categories/:id/products", h.listProductsByCategory)
		v1.POST("/products/by-price", h.listProductsByMaxPrice)
		v1.POST("/products/batch", h.listProductsByIDs)
		v1.POST("/products/:id/reviews", h.addReview)
		v1.DELETE("/products/:id/reviews/:reviewId", h.deleteReview)

		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/orders", h.createOrder)
		v1.GET("/buyers/:id/orders", h.listOrdersByBuyer)
		v1.PUT("/orders/:id/status", h.updateOrderStatus)
		v1.DELETE("/orders/:id", h.deleteOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// parseID parses a path parameter as an id; a malformed value maps to a
// 400, the way an unparseable store id must.
func (h *Handler) parseID(c *gin.Context, param string) (int64, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.respondError(c, apperr.MalformedID(raw))
		return 0, false
	}
	return id, true
}

// respondError maps a service error to the response convention: 4xx with a
// precise message or field map, 500 with a generic body and the details
// only in the log.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}

	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		c.JSON(status, gin.H{"error": "Validation failed", "fields": ve.Fields})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// storeUpload reads one multipart file and saves it to the asset store.
func (h *Handler) storeUpload(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	return h.assets.Save(c.Request.Context(), data, assets.Meta{
		OriginalName: fh.Filename,
		ContentType:  fh.Header.Get("Content-Type"),
	})
}

// storeUploads saves every file under the form field, rolling back the
// already-saved ones if a later save fails.
func (h *Handler) storeUploads(c *gin.Context, files []*multipart.FileHeader) ([]string, error) {
	refs := make([]string, 0, len(files))
	for _, fh := range files {
		ref, err := h.storeUpload(c, fh)
		if err != nil {
			h.assets.Rollback(c.Request.Context(), refs)
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// --- categories ---

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"categories": categories,
		"count":      len(categories),
	})
}

func (h *Handler) getCategory(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "category": category})
}

func (h *Handler) createCategory(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category image is required"})
		return
	}

	ref, err := h.storeUpload(c, fh)
	if err != nil {
		h.respondError(c, err)
		return
	}

	category, err := h.categories.Create(c.Request.Context(),
		c.PostForm("name"), c.PostForm("description"), c.PostForm("status"), ref)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":  "Category created successfully",
		"category": category,
	})
}

func (h *Handler) updateCategory(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Description string `json:"description"`
		Status      string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	category, err := h.categories.Update(c.Request.Context(), id, req.Description, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  "Category updated successfully",
		"category": category,
	})
}

func (h *Handler) deleteCategory(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  "Category deleted successfully",
		"category": gin.H{"id": category.ID, "name": category.Name},
	})
}

// --- products ---

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": products,
		"count":    len(products),
	})
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// productFields reads the writable product fields from a multipart form.
func (h *Handler) productFields(c *gin.Context) (service.ProductFields, bool) {
	fields := service.ProductFields{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       c.PostForm("price"),
		Quantity:    c.PostForm("quantity"),
		Offer:       c.PostForm("offer"),
		Status:      c.PostForm("status"),
	}

	raw := c.PostForm("category_id")
	if raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respondError(c, apperr.MalformedID(raw))
			return fields, false
		}
		fields.CategoryID = id
	}
	return fields, true
}

func (h *Handler) createProduct(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product images are required"})
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product images are required"})
		return
	}

	fields, ok := h.productFields(c)
	if !ok {
		return
	}

	refs, err := h.storeUploads(c, files)
	if err != nil {
		h.respondError(c, err)
		return
	}

	product, err := h.products.Create(c.Request.Context(), fields, refs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": "Product created successfully",
		"product": product,
	})
}

func (h *Handler) editProduct(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	fields, ok := h.productFields(c)
	if !ok {
		return
	}

	var refs []string
	if form, err := c.MultipartForm(); err == nil {
		files := form.File["images"]
		refs, err = h.storeUploads(c, files)
		if err != nil {
			h.respondError(c, err)
			return
		}
	}

	var oldRefs []string
	for _, ref := range strings.Split(c.PostForm("old_images"), ",") {
		if ref = strings.TrimSpace(ref); ref != "" {
			oldRefs = append(oldRefs, ref)
		}
	}

	product, err := h.products.Edit(c.Request.Context(), id, fields, refs, oldRefs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": "Product updated successfully",
		"product": product,
	})
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	product, err := h.products.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": "Product deleted successfully",
		"product": gin.H{"id": product.ID, "name": product.Name},
	})
}

func (h *Handler) listProductsByCategory(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	products, err := h.products.ListByCategory(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": products,
		"count":    len(products),
	})
}

func (h *Handler) listProductsByMaxPrice(c *gin.Context) {
	var req struct {
		Price string `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price filter is required"})
		return
	}

	products, err := h.products.ListByMaxPrice(c.Request.Context(), req.Price)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": products,
		"count":    len(products),
	})
}

func (h *Handler) listProductsByIDs(c *gin.Context) {
	var req struct {
		IDs []int64 `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product id array is required"})
		return
	}

	products, err := h.products.ListByIDs(c.Request.Context(), req.IDs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": products,
		"count":    len(products),
	})
}

func (h *Handler) addReview(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		AuthorID int64  `json:"author_id"`
		Rating   int    `json:"rating"`
		Review   string `json:"review"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	review, err := h.products.AddReview(c.Request.Context(), id, req.AuthorID, req.Rating, req.Review)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": "Thanks for your review",
		"review":  review,
	})
}

func (h *Handler) deleteReview(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	reviewID, ok := h.parseID(c, "reviewId")
	if !ok {
		return
	}

	if err := h.products.DeleteReview(c.Request.Context(), id, reviewID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    "Review deleted",
		"product_id": id,
	})
}

// --- orders ---

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  orders,
		"count":   len(orders),
	})
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := h.orders.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": "Order created successfully",
		"order":   order,
	})
}

func (h *Handler) listOrdersByBuyer(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	orders, err := h.orders.ListByBuyer(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  orders,
		"count":   len(orders),
	})
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := h.orders.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": "Order updated successfully",
		"order":   order,
	})
}

func (h *Handler) deleteOrder(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": "Order deleted successfully",
		"order":   gin.H{"id": order.ID, "amount": order.Amount, "status": order.Status},
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
