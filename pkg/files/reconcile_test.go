package files

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handywriterz/submissions/pkg/order"
)

type stubFetcher struct {
	failing map[string]bool
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if f.failing[url] {
		return nil, errors.New("storage: fetch failed")
	}
	return []byte("bytes of " + url), nil
}

func refs(n int) []order.File {
	out := make([]order.File, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, order.File{
			Name: fmt.Sprintf("doc-%d.pdf", i),
			URL:  fmt.Sprintf("https://store.example.com/f/%d", i),
			Type: "application/pdf",
			Size: 1024,
		})
	}
	return out
}

func TestReconcile_AllFetched(t *testing.T) {
	rc := NewReconciler(&stubFetcher{})

	batch, warnings := rc.Reconcile(context.Background(), nil, refs(3))

	require.Len(t, batch, 3)
	assert.Empty(t, warnings)
	for i, f := range batch {
		assert.Equal(t, fmt.Sprintf("doc-%d.pdf", i), f.Name, "input order must be preserved")
		assert.NotEmpty(t, f.Data)
	}
}

func TestReconcile_SkipsFailedFetches(t *testing.T) {
	in := refs(3)
	rc := NewReconciler(&stubFetcher{failing: map[string]bool{in[1].URL: true}})

	batch, warnings := rc.Reconcile(context.Background(), nil, in)

	require.Len(t, batch, 2, "one failed fetch must not abort the batch")
	assert.Equal(t, "doc-0.pdf", batch[0].Name)
	assert.Equal(t, "doc-2.pdf", batch[1].Name)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "doc-1.pdf")
}

func TestReconcile_AllFetchesFail(t *testing.T) {
	in := refs(2)
	rc := NewReconciler(&stubFetcher{failing: map[string]bool{in[0].URL: true, in[1].URL: true}})

	batch, warnings := rc.Reconcile(context.Background(), nil, in)

	assert.Empty(t, batch)
	assert.Len(t, warnings, 2)
}

func TestReconcile_TruncatesToCap(t *testing.T) {
	rc := NewReconciler(&stubFetcher{})

	batch, warnings := rc.Reconcile(context.Background(), nil, refs(12))

	require.Len(t, batch, MaxBatch)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[len(warnings)-1], "truncated")
	// deterministic: the first MaxBatch inputs survive
	assert.Equal(t, "doc-0.pdf", batch[0].Name)
	assert.Equal(t, fmt.Sprintf("doc-%d.pdf", MaxBatch-1), batch[MaxBatch-1].Name)
}

func TestReconcile_RawInputsComeFirst(t *testing.T) {
	rc := NewReconciler(&stubFetcher{})
	raw := []Transferable{{Name: "draft.md", Data: []byte(strings.Repeat("x", 10))}}

	batch, warnings := rc.Reconcile(context.Background(), raw, refs(2))

	require.Len(t, batch, 3)
	assert.Empty(t, warnings)
	assert.Equal(t, "draft.md", batch[0].Name)
}
