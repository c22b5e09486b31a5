package errors

import (
	"fmt"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrStockLimit is returned when an increment would exceed the stock available for a size.
// The cart is left unchanged.
type ErrStockLimit struct {
	ProductID string
	Size      string
	Limit     int
}

func (e *ErrStockLimit) Error() string {
	if e.Size != "" {
		return fmt.Sprintf("only %d in stock for size %s", e.Limit, e.Size)
	}
	return fmt.Sprintf("only %d in stock", e.Limit)
}

// ErrUpstream is returned when the catalog API fails or answers with success=false
type ErrUpstream struct {
	Status  int
	Message string
}

func (e *ErrUpstream) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog api returned %d: %s", e.Status, e.Message)
	}
	if e.Message != "" {
		return "catalog api: " + e.Message
	}
	return "catalog api request failed"
}

// ErrSuperseded is returned for a search response that arrived after a newer query was issued
type ErrSuperseded struct {
	Query string
}

func (e *ErrSuperseded) Error() string {
	return fmt.Sprintf("search %q superseded by a newer query", e.Query)
}
