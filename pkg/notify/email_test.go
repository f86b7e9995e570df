package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handywriterz/submissions/pkg/files"
	"github.com/handywriterz/submissions/pkg/order"
)

func testOrder() *order.Order {
	return &order.Order{
		OrderID:       "ord-42",
		UserID:        "user-1",
		CustomerName:  "Ada",
		CustomerEmail: "student@example.com",
		Status:        order.StatusUploaded,
	}
}

func testMeta() *order.Metadata {
	return &order.Metadata{
		ServiceType: "essay",
		SubjectArea: "law",
		WordCount:   2500,
		StudyLevel:  "undergraduate",
		DueDate:     "2026-09-15",
		ClientEmail: "student@example.com",
		ClientName:  "Ada",
	}
}

func testBatch() []files.Transferable {
	return []files.Transferable{
		{Name: "essay.docx", URL: "https://store.example.com/f/1", Type: "application/msword", Data: []byte("doc")},
	}
}

func TestEmailChannel_Send(t *testing.T) {
	var posts int32
	var bodies []emailMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages", r.URL.Path)
		msg := emailMessage{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		bodies = append(bodies, msg)
		n := atomic.AddInt32(&posts, 1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"em_%d"}`, n)
	}))
	defer srv.Close()

	ch := NewEmailChannel(srv.URL, time.Second, "orders@handywriterz.com", []string{"admin@handywriterz.com"})
	out := ch.Send(context.Background(), testOrder(), testMeta(), testBatch())

	assert.Equal(t, ChannelEmail, out.Channel)
	assert.True(t, out.Success)
	assert.Equal(t, "em_1", out.ID)
	assert.Equal(t, "em_2", out.ReceiptID)

	require.Len(t, bodies, 2)
	assert.Equal(t, []string{"admin@handywriterz.com"}, bodies[0].To)
	assert.Contains(t, bodies[0].Subject, "ord-42", "orderId must be visible in every outward message")
	assert.Contains(t, bodies[0].HTML, "essay.docx")
	assert.Equal(t, []string{"student@example.com"}, bodies[1].To)
}

func TestEmailChannel_ReceiptFailureKeepsSuccess(t *testing.T) {
	var posts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&posts, 1) > 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"em_1"}`)
	}))
	defer srv.Close()

	ch := NewEmailChannel(srv.URL, time.Second, "orders@handywriterz.com", []string{"admin@handywriterz.com"})
	out := ch.Send(context.Background(), testOrder(), testMeta(), testBatch())

	assert.True(t, out.Success, "customer receipt is best-effort")
	assert.Equal(t, "em_1", out.ID)
	assert.Empty(t, out.ReceiptID)
}

func TestEmailChannel_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ch := NewEmailChannel(srv.URL, time.Second, "orders@handywriterz.com", []string{"admin@handywriterz.com"})
	out := ch.Send(context.Background(), testOrder(), testMeta(), testBatch())

	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "500")
}

func TestEmailChannel_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		fmt.Fprint(w, `{"id":"em_1"}`)
	}))
	defer srv.Close()

	ch := NewEmailChannel(srv.URL, 30*time.Millisecond, "orders@handywriterz.com", []string{"admin@handywriterz.com"})
	out := ch.Send(context.Background(), testOrder(), testMeta(), testBatch())

	assert.False(t, out.Success)
	assert.Equal(t, "timeout", out.Error)
}

func TestAdminHTML_EscapesUserInput(t *testing.T) {
	meta := testMeta()
	meta.Instructions = `<script>alert("x")</script>`

	html := adminHTML(testOrder(), meta, testBatch())
	assert.NotContains(t, html, "<script>")
	assert.True(t, strings.Contains(html, "&lt;script&gt;"))
}
