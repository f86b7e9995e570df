package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handywriterz/submissions/pkg/order"
)

type stubNoticeRepo struct {
	notices []*order.AdminNotice
	err     error
}

func (r *stubNoticeRepo) AddAdminNotice(_ context.Context, n *order.AdminNotice) error {
	if r.err != nil {
		return r.err
	}
	r.notices = append(r.notices, n)
	return nil
}

func TestInAppChannel_Send(t *testing.T) {
	repo := &stubNoticeRepo{}
	ch := NewInAppChannel(repo)

	out := ch.Send(context.Background(), testOrder(), testMeta(), testBatch())

	assert.True(t, out.Success)
	assert.Equal(t, ChannelInApp, out.Channel)
	require.Len(t, repo.notices, 1)
	assert.Equal(t, out.ID, repo.notices[0].ID)
	assert.Equal(t, "ord-42", repo.notices[0].OrderID)
	assert.Contains(t, repo.notices[0].Title, "ord-42")
}

func TestInAppChannel_StoreDown(t *testing.T) {
	ch := NewInAppChannel(&stubNoticeRepo{err: errors.New("connection refused")})

	out := ch.Send(context.Background(), testOrder(), testMeta(), testBatch())

	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "connection refused")
}
