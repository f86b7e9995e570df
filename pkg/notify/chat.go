package notify

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/handywriterz/submissions/pkg/files"
	"github.com/handywriterz/submissions/pkg/logger"
	"github.com/handywriterz/submissions/pkg/order"
)

// ChatChannel posts an alert into the operators' room through the
// chat-bot gateway, then uploads the document batch to the same room.
// Document upload failures are logged only: once the alert message is
// in the room, the operator has been told.
type ChatChannel struct {
	client *resty.Client
	roomID string
}

func NewChatChannel(addr string, reqTimeout time.Duration, roomID string) *ChatChannel {
	return &ChatChannel{
		client: resty.New().SetBaseURL(addr).SetTimeout(reqTimeout),
		roomID: roomID,
	}
}

func (c *ChatChannel) Name() string {
	return ChannelChat
}

func (c *ChatChannel) Send(ctx context.Context, o *order.Order, meta *order.Metadata, batch []files.Transferable) Outcome {
	text := fmt.Sprintf("New order %s: %s (%s), %d words, due %s, from %s",
		o.OrderID, meta.ServiceType, meta.SubjectArea, meta.WordCount, meta.DueDate, meta.ClientName)

	sent := struct {
		MessageID string `json:"message_id"`
	}{}
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"room_id": c.roomID, "text": text}).
		SetResult(&sent).
		Post("/bot/messages")
	if err != nil {
		logger.Log(ctx).Errorf("notify/chat: alert for `%s` failed, %v", o.OrderID, err)
		return Outcome{Channel: ChannelChat, Error: sendError(err)}
	}
	if resp.IsError() {
		logger.Log(ctx).Errorf("notify/chat: gateway returned %d for `%s`", resp.StatusCode(), o.OrderID)
		return Outcome{Channel: ChannelChat, Error: fmt.Sprintf("chat gateway returned %d", resp.StatusCode())}
	}

	for _, f := range batch {
		docResp, err := c.client.R().
			SetContext(ctx).
			SetFileReader("document", f.Name, bytes.NewReader(f.Data)).
			SetFormData(map[string]string{
				"room_id": c.roomID,
				"caption": fmt.Sprintf("order %s: %s", o.OrderID, f.Name),
			}).
			Post("/bot/documents")
		if err != nil {
			logger.Log(ctx).Errorf("notify/chat: document `%s` for `%s` failed, %v", f.Name, o.OrderID, err)
			continue
		}
		if docResp.IsError() {
			logger.Log(ctx).Errorf("notify/chat: document `%s` for `%s` returned %d",
				f.Name, o.OrderID, docResp.StatusCode())
		}
	}

	return Outcome{Channel: ChannelChat, Success: true, ID: sent.MessageID}
}
