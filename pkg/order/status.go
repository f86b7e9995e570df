package order

import (
	"errors"
	"fmt"
)

const (
	StatusDraft          = "draft"
	StatusUploaded       = "uploaded"
	StatusAwaitingAdmin  = "awaiting_admin"
	StatusPaymentPending = "payment_pending"
	StatusPaid           = "paid"
	StatusInProgress     = "in_progress"
	StatusCompleted      = "completed"
	StatusArchived       = "archived"
	StatusCancelled      = "cancelled"
)

const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotNotified       = errors.New("admin has not been notified")
	ErrNoFiles           = errors.New("order has no files")
)

var transitions = map[string][]string{
	StatusDraft:          {StatusUploaded},
	StatusUploaded:       {StatusAwaitingAdmin},
	StatusAwaitingAdmin:  {StatusPaymentPending},
	StatusPaymentPending: {StatusPaid},
	StatusPaid:           {StatusInProgress},
	StatusInProgress:     {StatusCompleted},
}

// IsTerminal reports whether no further transition is allowed.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusArchived || status == StatusCancelled
}

// CanTransition validates a single step of the order lifecycle.
// Archived and cancelled are reachable from any non-terminal state.
func CanTransition(from, to string) bool {
	if to == StatusArchived || to == StatusCancelled {
		return !IsTerminal(from)
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanAdvanceTo checks the transition plus the gates that depend on
// order state: files must exist before `uploaded`, and the admin must
// have been notified before `awaiting_admin` (the payment gate).
func (o *Order) CanAdvanceTo(to string) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("order: `%s` to `%s`: %w", o.Status, to, ErrInvalidTransition)
	}
	if to == StatusUploaded && len(o.Files) == 0 {
		return fmt.Errorf("order: can't mark `%s` uploaded: %w", o.OrderID, ErrNoFiles)
	}
	if to == StatusAwaitingAdmin && !o.AdminNotified {
		return fmt.Errorf("order: can't advance `%s`: %w", o.OrderID, ErrNotNotified)
	}
	return nil
}
