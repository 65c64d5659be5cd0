package services

import "errors"

// Failure taxonomy shared by the gateway, the state machine and the
// controllers. Controllers map these onto HTTP codes and onto the
// customer-facing message catalog.
var (
	ErrEmptyItems        = errors.New("order must contain at least one item")
	ErrMissingContact    = errors.New("customer phone is required")
	ErrInvalidQuantity   = errors.New("item quantity must be positive")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderClosed       = errors.New("order is closed and cannot be changed")
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrRequiresApproval is not a failure of the request but a routing
	// signal: the request is valid, policy just demands a human.
	ErrRequiresApproval    = errors.New("cancellation requires staff approval")
	ErrUnknownMenuItem     = errors.New("menu item does not exist")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)

// ErrorKey maps a service error to its message-catalog key.
func ErrorKey(err error) string {
	switch {
	case errors.Is(err, ErrEmptyItems):
		return "empty_items"
	case errors.Is(err, ErrMissingContact):
		return "missing_contact"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, ErrOrderClosed):
		return "order_closed"
	case errors.Is(err, ErrRequiresApproval):
		return "requires_approval"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrUnknownMenuItem):
		return "unknown_menu_item"
	default:
		return "internal"
	}
}
