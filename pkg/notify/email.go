package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/handywriterz/submissions/pkg/files"
	"github.com/handywriterz/submissions/pkg/logger"
	"github.com/handywriterz/submissions/pkg/order"
)

// EmailChannel posts through the transactional email gateway. The
// admin alert is the authoritative "human was told" signal; a customer
// confirmation is also sent, best-effort, and never affects the outcome.
type EmailChannel struct {
	client *resty.Client
	from   string
	admins []string
}

func NewEmailChannel(addr string, reqTimeout time.Duration, from string, admins []string) *EmailChannel {
	return &EmailChannel{
		client: resty.New().SetBaseURL(addr).SetTimeout(reqTimeout),
		from:   from,
		admins: admins,
	}
}

func (c *EmailChannel) Name() string {
	return ChannelEmail
}

type emailMessage struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (c *EmailChannel) Send(ctx context.Context, o *order.Order, meta *order.Metadata, batch []files.Transferable) Outcome {
	subject := fmt.Sprintf("New order %s: %s", o.OrderID, meta.ServiceType)
	id, err := c.post(ctx, &emailMessage{
		From:    c.from,
		To:      c.admins,
		Subject: subject,
		HTML:    adminHTML(o, meta, batch),
	})
	if err != nil {
		logger.Log(ctx).Errorf("notify/email: admin alert for `%s` failed, %v", o.OrderID, err)
		return Outcome{Channel: ChannelEmail, Error: sendError(err)}
	}

	out := Outcome{Channel: ChannelEmail, Success: true, ID: id}

	receiptID, err := c.post(ctx, &emailMessage{
		From:    c.from,
		To:      []string{o.CustomerEmail},
		Subject: fmt.Sprintf("We received your order %s", o.OrderID),
		HTML:    receiptHTML(o, meta),
	})
	if err != nil {
		// confirmation is a courtesy, the admin alert already landed
		logger.Log(ctx).Errorf("notify/email: customer receipt for `%s` failed, %v", o.OrderID, err)
		return out
	}
	out.ReceiptID = receiptID
	return out
}

func (c *EmailChannel) post(ctx context.Context, msg *emailMessage) (string, error) {
	sent := struct {
		ID string `json:"id"`
	}{}
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(msg).
		SetResult(&sent).
		Post("/messages")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("email gateway returned %d", resp.StatusCode())
	}
	return sent.ID, nil
}

func adminHTML(o *order.Order, meta *order.Metadata, batch []files.Transferable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>New order %s</h2>", html.EscapeString(o.OrderID))
	fmt.Fprintf(&b, "<p>%s (%s), %d words, %s, due %s</p>",
		html.EscapeString(meta.ServiceType), html.EscapeString(meta.SubjectArea),
		meta.WordCount, html.EscapeString(meta.StudyLevel), html.EscapeString(meta.DueDate))
	fmt.Fprintf(&b, "<p>Customer: %s &lt;%s&gt;</p>",
		html.EscapeString(meta.ClientName), html.EscapeString(meta.ClientEmail))
	if meta.Instructions != "" {
		fmt.Fprintf(&b, "<p>Instructions: %s</p>", html.EscapeString(meta.Instructions))
	}
	b.WriteString("<ul>")
	for _, f := range batch {
		fmt.Fprintf(&b, `<li><a href="%s">%s</a> (%d bytes)</li>`,
			html.EscapeString(f.URL), html.EscapeString(f.Name), len(f.Data))
	}
	b.WriteString("</ul>")
	return b.String()
}

func receiptHTML(o *order.Order, meta *order.Metadata) string {
	return fmt.Sprintf(
		"<p>Hi %s, we received your order <b>%s</b> (%s, %d words). An operator will review it shortly.</p>",
		html.EscapeString(meta.ClientName), html.EscapeString(o.OrderID),
		html.EscapeString(meta.ServiceType), meta.WordCount)
}
