package files

import (
	"context"
	"fmt"
	"sync"

	"github.com/handywriterz/submissions/pkg/logger"
	"github.com/handywriterz/submissions/pkg/order"
)

// MaxBatch bounds how many files one submission may carry downstream.
const MaxBatch = order.MaxFiles

// Transferable is a file in the form a notification channel can send:
// raw bytes plus enough of the reference to name it.
type Transferable struct {
	Name string
	URL  string
	Type string
	Data []byte
}

type iFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Reconciler turns already-uploaded file references back into
// transferable byte content.
type Reconciler struct {
	fetcher iFetcher
}

func NewReconciler(f iFetcher) *Reconciler {
	return &Reconciler{
		fetcher: f,
	}
}

// Reconcile builds one ordered batch out of raw not-yet-uploaded
// inputs and uploaded references. References are fetched concurrently;
// a file whose fetch fails is skipped, not fatal, so the caller gets
// fewer files rather than none. The batch is truncated to MaxBatch in
// input order, with a warning per skip or truncation.
func (rc *Reconciler) Reconcile(ctx context.Context, raw []Transferable, refs []order.File) ([]Transferable, []string) {
	fetched := make([]*Transferable, len(refs))

	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref order.File) {
			defer wg.Done()

			data, err := rc.fetcher.Fetch(ctx, ref.URL)
			if err != nil {
				logger.Log(ctx).Errorf("files: skipping `%s`, %v", ref.Name, err)
				return
			}
			fetched[i] = &Transferable{
				Name: ref.Name,
				URL:  ref.URL,
				Type: ref.Type,
				Data: data,
			}
		}(i, ref)
	}
	wg.Wait()

	warnings := []string{}
	batch := make([]Transferable, 0, len(raw)+len(refs))
	batch = append(batch, raw...)
	for i, f := range fetched {
		if f == nil {
			warnings = append(warnings, fmt.Sprintf("file `%s` could not be fetched and was skipped", refs[i].Name))
			continue
		}
		batch = append(batch, *f)
	}

	if len(batch) > MaxBatch {
		warnings = append(warnings, fmt.Sprintf("file batch truncated to %d of %d files", MaxBatch, len(batch)))
		batch = batch[:MaxBatch]
	}

	return batch, warnings
}
