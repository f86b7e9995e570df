package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/handywriterz/submissions/pkg/files"
	"github.com/handywriterz/submissions/pkg/logger"
	"github.com/handywriterz/submissions/pkg/order"
)

type iNoticeRepo interface {
	AddAdminNotice(ctx context.Context, n *order.AdminNotice) error
}

// InAppChannel writes the alert as a dashboard notice row in the order
// store itself. It is the channel of last resort when the gateways are
// down: as long as the database answers, the operator can still find
// the submission.
type InAppChannel struct {
	repo iNoticeRepo
}

func NewInAppChannel(r iNoticeRepo) *InAppChannel {
	return &InAppChannel{
		repo: r,
	}
}

func (c *InAppChannel) Name() string {
	return ChannelInApp
}

func (c *InAppChannel) Send(ctx context.Context, o *order.Order, meta *order.Metadata, batch []files.Transferable) Outcome {
	notice := &order.AdminNotice{
		ID:      uuid.NewString(),
		OrderID: o.OrderID,
		Title:   fmt.Sprintf("New order %s", o.OrderID),
		Body: fmt.Sprintf("%s (%s), %d words, due %s, %d file(s) from %s",
			meta.ServiceType, meta.SubjectArea, meta.WordCount, meta.DueDate,
			len(batch), meta.ClientName),
		CreatedAt: time.Now().UTC(),
	}
	if err := c.repo.AddAdminNotice(ctx, notice); err != nil {
		logger.Log(ctx).Errorf("notify/inapp: notice for `%s` failed, %v", o.OrderID, err)
		return Outcome{Channel: ChannelInApp, Error: sendError(err)}
	}
	return Outcome{Channel: ChannelInApp, Success: true, ID: notice.ID}
}
