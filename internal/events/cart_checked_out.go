package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	CartCheckedOutEventName    = "CartCheckedOut"
	CartCheckedOutEventVersion = 1
	producerName               = "storefront"
)

// CartCheckedOut is published once a checkout has been handed to the backend
type CartCheckedOut struct {
	EventName    string                `json:"eventName"`
	EventVersion int                   `json:"eventVersion"`
	EventID      string                `json:"eventId"`
	Producer     string                `json:"producer"`
	PartitionKey string                `json:"partitionKey"`
	OccurredAt   time.Time             `json:"occurredAt"`
	Payload      CartCheckedOutPayload `json:"payload"`
}

type CartCheckedOutPayload struct {
	Reference     string               `json:"reference"`
	SessionID     string               `json:"sessionId"`
	Items         []CartCheckedOutItem `json:"items"`
	Subtotal      float64              `json:"subtotal"`
	DiscountTotal float64              `json:"discountTotal"`
	DeliveryFee   float64              `json:"deliveryFee"`
	TotalAmount   float64              `json:"totalAmount"`
}

type CartCheckedOutItem struct {
	ProductID string  `json:"productId"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// NewCartCheckedOut wraps payload in an envelope partitioned by session
func NewCartCheckedOut(payload CartCheckedOutPayload) CartCheckedOut {
	return CartCheckedOut{
		EventName:    CartCheckedOutEventName,
		EventVersion: CartCheckedOutEventVersion,
		EventID:      uuid.NewString(),
		Producer:     producerName,
		PartitionKey: payload.SessionID,
		OccurredAt:   time.Now().UTC(),
		Payload:      payload,
	}
}
