package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to the object storage gateway. It can fetch the bytes
// of a previously uploaded file and upload new ones.
type Client struct {
	http *resty.Client
}

func NewClient(addr string, reqTimeout time.Duration) *Client {
	return &Client{
		http: resty.New().SetBaseURL(addr).SetTimeout(reqTimeout),
	}
}

// UploadedRef is the stable reference storage hands back for a file.
type UploadedRef struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// Fetch downloads the file bytes behind an absolute storage URL.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("storage: failed fetching `%s`, %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("storage: fetching `%s` returned %d", url, resp.StatusCode())
	}
	return resp.Body(), nil
}

// Upload stores file bytes and returns the reference to them.
func (c *Client) Upload(ctx context.Context, name, mimeType string, data []byte) (*UploadedRef, error) {
	ref := &UploadedRef{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", name, bytes.NewReader(data)).
		SetFormData(map[string]string{"type": mimeType}).
		SetResult(ref).
		Post("/files")
	if err != nil {
		return nil, fmt.Errorf("storage: failed uploading `%s`, %w", name, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("storage: uploading `%s` returned %d", name, resp.StatusCode())
	}
	return ref, nil
}
