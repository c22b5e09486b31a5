package checkout

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/events"
	"github.com/jafarshop/storefront/pkg/errors"
)

const defaultCountry = "Bangladesh"

// Request is the payload handed to the backend when the shopper checks out
type Request struct {
	Reference string          `json:"reference"`
	Items     []Item          `json:"items"`
	Customer  CustomerInfo    `json:"customer"`
	Shipping  ShippingAddress `json:"shipping"`
	Totals    Totals          `json:"totals"`

	lines []domain.CartLineItem
}

type Item struct {
	ProductID     string  `json:"product_id"`
	Title         string  `json:"title"`
	Size          string  `json:"size,omitempty"`
	Color         string  `json:"color,omitempty"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price,omitempty"`
	Quantity      int     `json:"quantity"`
}

type CustomerInfo struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone_number" binding:"required"`
}

// ShippingAddress is where the order goes. Country defaults to Bangladesh.
type ShippingAddress struct {
	City       string `json:"city" binding:"required"`
	Area       string `json:"area"`
	Address    string `json:"address" binding:"required"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// OrderSubmitter posts a hand-off payload to the backend
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, payload interface{}) (json.RawMessage, error)
}

// Result is what Submit returns to the caller
type Result struct {
	Reference string          `json:"reference"`
	Totals    Totals          `json:"totals"`
	ItemCount int             `json:"item_count"`
	Order     json.RawMessage `json:"order,omitempty"`
}

// BuildRequest collects the selected cart lines into a hand-off request.
// Totals are computed from the selected lines only.
func BuildRequest(store *cart.Store, customer CustomerInfo, shipping ShippingAddress) (*Request, error) {
	if err := validateDetails(customer, shipping); err != nil {
		return nil, err
	}

	selected := store.SelectedItems()
	if len(selected) == 0 {
		return nil, &errors.ErrValidation{Message: "no items selected for checkout"}
	}

	items := make([]Item, 0, len(selected))
	sub, mrp := decimal.Zero, decimal.Zero
	for _, it := range selected {
		items = append(items, Item{
			ProductID:     it.ProductID,
			Title:         it.Name,
			Size:          it.SelectedSize,
			Color:         it.SelectedColor,
			Price:         it.UnitPrice,
			OriginalPrice: it.OriginalUnitPrice,
			Quantity:      it.Quantity,
		})
		qty := decimal.NewFromInt(int64(it.Quantity))
		unit := decimal.NewFromFloat(it.UnitPrice)
		sub = sub.Add(unit.Mul(qty))
		if it.OriginalUnitPrice > it.UnitPrice {
			unit = decimal.NewFromFloat(it.OriginalUnitPrice)
		}
		mrp = mrp.Add(unit.Mul(qty))
	}

	if strings.TrimSpace(shipping.Country) == "" {
		shipping.Country = defaultCountry
	}
	fee := decimal.NewFromFloat(store.DeliveryFee())

	return &Request{
		Reference: uuid.New().String(),
		Items:     items,
		Customer:  customer,
		Shipping:  shipping,
		Totals: Totals{
			Subtotal: sub.InexactFloat64(),
			Discount: mrp.Sub(sub).InexactFloat64(),
			Shipping: fee.InexactFloat64(),
			Total:    sub.Add(fee).InexactFloat64(),
		},
		lines: selected,
	}, nil
}

// Service hands checkouts to the backend and announces them
type Service struct {
	submitter OrderSubmitter
	publisher events.Publisher
	logger    *zap.Logger
}

// NewService creates a checkout service; a nil publisher disables events
func NewService(submitter OrderSubmitter, publisher events.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{submitter: submitter, publisher: publisher, logger: logger}
}

// Submit builds the request, posts it and removes the handed-off lines from the cart.
// Lines added or raised during the call keep their new units.
// The cart is left untouched when the backend rejects the order.
// A failed CartCheckedOut publish is logged and does not fail the checkout.
func (s *Service) Submit(ctx context.Context, sessionID string, store *cart.Store, customer CustomerInfo, shipping ShippingAddress) (*Result, error) {
	logger := s.logger.With(zap.String("session_id", sessionID))

	req, err := BuildRequest(store, customer, shipping)
	if err != nil {
		return nil, err
	}

	order, err := s.submitter.SubmitOrder(ctx, req)
	if err != nil {
		logger.Error("Checkout hand-off failed", zap.String("reference", req.Reference), zap.Error(err))
		return nil, fmt.Errorf("submit order %s: %w", req.Reference, err)
	}

	// the cart may have changed while the backend was answering
	store.RemoveLines(req.lines)
	logger.Info("Checkout handed off",
		zap.String("reference", req.Reference),
		zap.Int("item_count", len(req.Items)),
		zap.Float64("total", req.Totals.Total),
	)

	if err := s.publisher.PublishCartCheckedOut(ctx, checkedOutEvent(sessionID, req)); err != nil {
		logger.Warn("Failed to publish CartCheckedOut", zap.String("reference", req.Reference), zap.Error(err))
	}

	return &Result{
		Reference: req.Reference,
		Totals:    req.Totals,
		ItemCount: len(req.Items),
		Order:     order,
	}, nil
}

func checkedOutEvent(sessionID string, req *Request) events.CartCheckedOut {
	items := make([]events.CartCheckedOutItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, events.CartCheckedOutItem{
			ProductID: it.ProductID,
			Size:      it.Size,
			Color:     it.Color,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return events.NewCartCheckedOut(events.CartCheckedOutPayload{
		Reference:     req.Reference,
		SessionID:     sessionID,
		Items:         items,
		Subtotal:      req.Totals.Subtotal,
		DiscountTotal: req.Totals.Discount,
		DeliveryFee:   req.Totals.Shipping,
		TotalAmount:   req.Totals.Total,
	})
}

var validate = newValidator()

// newValidator reads the same binding tags gin uses, so the request types validate identically inside and outside HTTP handlers
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateDetails(customer CustomerInfo, shipping ShippingAddress) error {
	fields := map[string]string{}
	collect := func(prefix string, err error) {
		var verrs validator.ValidationErrors
		if !stderrors.As(err, &verrs) {
			return
		}
		for _, fe := range verrs {
			fields[prefix+"."+fe.Field()] = fe.Tag()
		}
	}
	collect("customer", validate.Struct(trimmedCustomer(customer)))
	collect("shipping", validate.Struct(trimmedShipping(shipping)))

	if len(fields) > 0 {
		return &errors.ErrValidation{Message: "missing checkout details", Fields: fields}
	}
	return nil
}

func trimmedCustomer(c CustomerInfo) CustomerInfo {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	return c
}

func trimmedShipping(s ShippingAddress) ShippingAddress {
	s.City = strings.TrimSpace(s.City)
	s.Address = strings.TrimSpace(s.Address)
	return s
}
