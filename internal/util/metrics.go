package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CategoriesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "categories_created_total",
		Help: "Total number of categories created",
	})

	CategoryConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "category_conflicts_total",
		Help: "Total number of category creations rejected for duplicate names",
	})

	ProductsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "Total number of products created",
	})

	ProductValidationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_validation_failures_total",
		Help: "Total number of product writes rejected by validation",
	})

	ReviewsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviews_added_total",
		Help: "Total number of reviews appended to products",
	})

	ReviewsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviews_rejected_total",
		Help: "Total number of rejected reviews",
	}, []string{"reason"})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order operations",
	}, []string{"reason"})

	OrderStatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_updates_total",
		Help: "Total number of order status updates",
	}, []string{"status"})

	AssetSavesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "asset_saves_total",
		Help: "Total number of assets written to the asset store",
	})

	AssetDeletesFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "asset_deletes_failed_total",
		Help: "Total number of asset deletions that failed and were swallowed",
	})

	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total number of listing cache hits",
	}, []string{"key"})

	CacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total number of listing cache misses",
	}, []string{"key"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
