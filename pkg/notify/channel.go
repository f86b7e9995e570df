// Package notify holds the out-of-band channels used to tell a human
// operator about a new submission. Every channel is independent: one
// failing must never stop another from being tried, so Send is total
// and reports through an Outcome instead of an error.
package notify

import (
	"context"
	"errors"
	"net"

	"github.com/handywriterz/submissions/pkg/files"
	"github.com/handywriterz/submissions/pkg/order"
)

const (
	ChannelEmail = "email"
	ChannelChat  = "chat"
	ChannelInApp = "in_app"
)

// Outcome is the result of one channel invocation. It is never
// persisted on its own: the orchestrator folds outcomes into the order
// row or, on total failure, into a failed-attempt entry.
type Outcome struct {
	Channel string `json:"channel"`
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`

	// ReceiptID is set by the email channel only: the id of the
	// customer confirmation message, best-effort.
	ReceiptID string `json:"-"`
}

// Channel delivers a submission alert over one external system.
// Implementations must be safe for at-least-once invocation; every
// outward message carries the orderId so a duplicate alert is
// recognizable by eye rather than silently merged.
type Channel interface {
	Name() string
	Send(ctx context.Context, o *order.Order, meta *order.Metadata, batch []files.Transferable) Outcome
}

// sendError collapses transport errors into the outcome error string,
// mapping all timeout shapes to plain "timeout".
func sendError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	return err.Error()
}
