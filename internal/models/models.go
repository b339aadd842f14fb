package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Category groups products and carries one bound image.
type Category struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Status      string    `db:"status" json:"status"`
	ImageRef    string    `db:"image_ref" json:"image"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Product is the catalog aggregate. ImageRefs always holds exactly two
// asset references; Reviews is the embedded review ledger, hydrated on
// single-product reads.
type Product struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Quantity    int             `db:"quantity" json:"quantity"`
	CategoryID  int64           `db:"category_id" json:"category_id"`
	ImageRefs   pq.StringArray  `db:"image_refs" json:"images"`
	OfferPct    int             `db:"offer_pct" json:"offer"`
	Status      string          `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`

	CategoryName string   `db:"category_name" json:"category_name,omitempty"`
	Reviews      []Review `db:"-" json:"reviews,omitempty"`
}

// Review is one entry in a product's review ledger. At most one review
// exists per (product, author) pair.
type Review struct {
	ID        int64     `db:"id" json:"id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	AuthorID  int64     `db:"author_id" json:"author_id"`
	Rating    int       `db:"rating" json:"rating"`
	Body      string    `db:"body" json:"review"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Buyer is a read-only projection of the external identity collaborator,
// used only to hydrate orders.
type Buyer struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

// Order is the checkout aggregate.
type Order struct {
	ID            int64           `db:"id" json:"id"`
	BuyerID       int64           `db:"buyer_id" json:"buyer_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	TransactionID string          `db:"transaction_id" json:"transaction_id"`
	Address       string          `db:"address" json:"address"`
	Phone         string          `db:"phone" json:"phone"`
	Status        string          `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`

	Items []OrderItem `db:"-" json:"items,omitempty"`
	Buyer *Buyer      `db:"-" json:"buyer,omitempty"`
}

// OrderItem is one (product, quantity) line within an order. The product
// reference is soft: it is not guaranteed to resolve after the product is
// deleted, and the hydration fields stay zero in that case.
type OrderItem struct {
	ID        int64 `db:"id" json:"id"`
	OrderID   int64 `db:"order_id" json:"order_id"`
	ProductID int64 `db:"product_id" json:"product_id"`
	Quantity  int   `db:"quantity" json:"quantity"`

	ProductName  string          `db:"product_name" json:"product_name,omitempty"`
	ProductPrice decimal.Decimal `db:"product_price" json:"product_price,omitempty"`
}

// Order statuses
const (
	OrderStatusNotProcessed = "Not processed"
	OrderStatusProcessing   = "Processing"
	OrderStatusShipped      = "Shipped"
	OrderStatusDelivered    = "Delivered"
	OrderStatusCancelled    = "Cancelled"
)

var orderStatuses = []string{
	OrderStatusNotProcessed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// OrderTransitions is the order status transition table. It is currently a
// total relation over the five labels: any known status may follow any
// other, including leaving Delivered or Cancelled. Stricter workflow rules
// belong here, expressed by removing entries.
var OrderTransitions = func() map[string][]string {
	t := make(map[string][]string, len(orderStatuses))
	for _, from := range orderStatuses {
		t[from] = append([]string(nil), orderStatuses...)
	}
	return t
}()

// NormalizeOrderStatus resolves a case-insensitive label to its canonical
// form. The second return is false for labels outside the five-label set.
func NormalizeOrderStatus(label string) (string, bool) {
	label = strings.TrimSpace(label)
	for _, canonical := range orderStatuses {
		if strings.EqualFold(canonical, label) {
			return canonical, true
		}
	}
	return "", false
}

// CanTransition reports whether an order currently in from may move to to.
// Both labels must be canonical.
func CanTransition(from, to string) bool {
	for _, allowed := range OrderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
