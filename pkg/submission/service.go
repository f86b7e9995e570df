// Package submission sequences the document-submission pipeline:
// resolve the order row, rehydrate the file batch, fan the alert out
// over every enabled notification channel, fold the per-channel
// outcomes into one result and advance the order.
package submission

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/handywriterz/submissions/pkg/files"
	"github.com/handywriterz/submissions/pkg/logger"
	"github.com/handywriterz/submissions/pkg/notify"
	"github.com/handywriterz/submissions/pkg/order"
)

var (
	// ErrValidation covers every bad-input condition: empty or
	// oversized file batch, incomplete metadata, nothing fetchable.
	// Rejected synchronously, before any side effect.
	ErrValidation = errors.New("invalid submission")

	// ErrAllChannelsFailed is the only fatal pipeline condition. The
	// order row survives it, status unchanged, and exactly one
	// failed-attempt entry is written for manual recovery.
	ErrAllChannelsFailed = errors.New("all notification channels failed")
)

type IOrderRepo interface {
	Add(ctx context.Context, o *order.Order) error
	GetPending(ctx context.Context, userID, filesDigest string) (*order.Order, error)
	AttachFiles(ctx context.Context, orderID string, fs []order.File, digest, status string) error
	FinalizeNotification(ctx context.Context, orderID, status, submissionID, adminEmailID, customerEmailID string) error
	AddFailedAttempt(ctx context.Context, fa *order.FailedAttempt) error
}

type iReconciler interface {
	Reconcile(ctx context.Context, raw []files.Transferable, refs []order.File) ([]files.Transferable, []string)
}

// Enabled selects which channels a submission fans out to.
type Enabled struct {
	Email bool `json:"email"`
	Chat  bool `json:"chat"`
	InApp bool `json:"inApp"`
}

// AllChannels is the default for the public intake endpoint.
var AllChannels = Enabled{Email: true, Chat: true, InApp: true}

// Result is the single user-facing answer of one submission attempt.
type Result struct {
	Success         bool             `json:"success"`
	OrderID         string           `json:"orderId"`
	SubmissionID    string           `json:"submissionId,omitempty"`
	FileURLs        []string         `json:"fileUrls"`
	ChannelOutcomes []notify.Outcome `json:"channelOutcomes"`
	Warnings        []string         `json:"warnings,omitempty"`
	Message         string           `json:"message"`
}

type service struct {
	repo        IOrderRepo
	reconciler  iReconciler
	channels    []notify.Channel
	sendTimeout time.Duration
}

func NewService(repo IOrderRepo, rc iReconciler, channels []notify.Channel, sendTimeout time.Duration) *service {
	return &service{
		repo:        repo,
		reconciler:  rc,
		channels:    channels,
		sendTimeout: sendTimeout,
	}
}

// SubmitDocuments runs the whole pipeline for one submission attempt.
// It is safe to call twice for the same user and file set: the retry
// resolves to the existing pending order instead of creating a second
// one, and every outward alert carries the orderId so duplicates stay
// visible to the operator.
func (s *service) SubmitDocuments(ctx context.Context, userID string, refs []order.File, meta *order.Metadata, enabled Enabled) (*Result, error) {
	if userID == "" {
		return nil, fmt.Errorf("submission: userId is empty: %w", ErrValidation)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("submission: file batch is empty: %w", ErrValidation)
	}
	if len(refs) > order.MaxFiles {
		return nil, fmt.Errorf("submission: file batch exceeds %d files: %w", order.MaxFiles, ErrValidation)
	}
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("submission: %v: %w", err, ErrValidation)
	}

	digest := filesDigest(refs)

	// Resolve the order: reuse the pending row from a previous attempt
	// with the same logical submission, create a draft otherwise.
	o, err := s.repo.GetPending(ctx, userID, digest)
	if errors.Is(err, order.ErrOrderNotFound) {
		o = order.New(userID, meta)
		o.FilesDigest = digest
		if err := s.repo.Add(ctx, o); err != nil {
			logger.Log(ctx).Errorf("submission: failed creating order, %v", err)
			return nil, err
		}
	} else if err != nil {
		logger.Log(ctx).Errorf("submission: failed resolving order, %v", err)
		return nil, err
	}

	batch, warnings := s.reconciler.Reconcile(ctx, nil, refs)
	if len(batch) == 0 {
		return nil, fmt.Errorf("submission: no files available: %w", ErrValidation)
	}

	attached := attachedRefs(refs, batch)
	if err := s.repo.AttachFiles(ctx, o.OrderID, attached, digest, order.StatusUploaded); err != nil {
		logger.Log(ctx).Errorf("submission: failed attaching files to `%s`, %v", o.OrderID, err)
		return nil, err
	}
	o.Files = attached
	o.Status = order.StatusUploaded

	outcomes := s.fanOut(ctx, o, meta, batch, enabled)

	result := &Result{
		OrderID:         o.OrderID,
		FileURLs:        fileURLs(batch),
		ChannelOutcomes: outcomes,
		Warnings:        warnings,
	}

	notified, partial := aggregate(outcomes)
	if !notified {
		s.recordFailedAttempt(ctx, o, outcomes)
		result.Message = "we could not notify an operator, please retry or contact support"
		return result, ErrAllChannelsFailed
	}

	submissionID, adminEmailID, receiptID := winningIDs(outcomes)
	result.Success = true
	result.SubmissionID = submissionID
	result.Message = "order submitted, an operator has been notified"
	if partial {
		result.Warnings = append(result.Warnings, "partialChannelFailure: one notification channel is degraded")
	}

	// The final status write is unconditional once fan-out completed.
	// If it fails, the alerts already sent are not rolled back and the
	// caller still gets a success: persistence failure does not revoke
	// notification. The store runs on a context detached from the
	// request so a client gone mid-flight can't interrupt it.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sendTimeout)
	defer cancel()
	o.AdminNotified = true
	if err := s.repo.FinalizeNotification(storeCtx, o.OrderID, order.StatusAwaitingAdmin, submissionID, adminEmailID, receiptID); err != nil {
		logger.Log(ctx).Errorf("submission: failed finalizing order `%s`, needs manual reconciliation, %v", o.OrderID, err)
	} else {
		o.Status = order.StatusAwaitingAdmin
		o.SubmissionID = submissionID
	}

	return result, nil
}

// fanOut invokes every enabled channel independently and joins before
// aggregation. Each send gets its own deadline on a context detached
// from the request: an in-flight alert runs to completion even if the
// caller walked away, a half-sent notification being worse than a late
// one.
func (s *service) fanOut(ctx context.Context, o *order.Order, meta *order.Metadata, batch []files.Transferable, enabled Enabled) []notify.Outcome {
	active := make([]notify.Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		if channelEnabled(ch.Name(), enabled) {
			active = append(active, ch)
		}
	}

	outcomes := make([]notify.Outcome, len(active))
	var wg sync.WaitGroup
	for i, ch := range active {
		wg.Add(1)
		go func(i int, ch notify.Channel) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sendTimeout)
			defer cancel()
			outcomes[i] = ch.Send(sendCtx, o, meta, batch)
		}(i, ch)
	}
	wg.Wait()
	return outcomes
}

// aggregate decides whether the order counts as notified.
// Email success alone is authoritative. Without it, both remaining
// channels succeeding is a clean pass, exactly one is a pass with a
// degraded-visibility warning, zero is the hard failure.
func aggregate(outcomes []notify.Outcome) (notified, partial bool) {
	byChannel := map[string]bool{}
	for _, out := range outcomes {
		if out.Success {
			byChannel[out.Channel] = true
		}
	}

	if byChannel[notify.ChannelEmail] {
		return true, false
	}
	if byChannel[notify.ChannelChat] && byChannel[notify.ChannelInApp] {
		return true, false
	}
	if byChannel[notify.ChannelChat] || byChannel[notify.ChannelInApp] {
		return true, true
	}
	return false, false
}

// winningIDs picks the submission id: email's message id when the
// email channel succeeded, otherwise the first successful channel's.
func winningIDs(outcomes []notify.Outcome) (submissionID, adminEmailID, receiptID string) {
	for _, out := range outcomes {
		if !out.Success {
			continue
		}
		if out.Channel == notify.ChannelEmail {
			return out.ID, out.ID, out.ReceiptID
		}
		if submissionID == "" {
			submissionID = out.ID
		}
	}
	return submissionID, "", ""
}

func (s *service) recordFailedAttempt(ctx context.Context, o *order.Order, outcomes []notify.Outcome) {
	detail, err := json.Marshal(outcomes)
	if err != nil {
		detail = []byte(fmt.Sprintf("%v", outcomes))
	}
	fa := &order.FailedAttempt{
		ID:        uuid.NewString(),
		OrderID:   o.OrderID,
		UserID:    o.UserID,
		Author:    "system",
		Detail:    string(detail),
		CreatedAt: time.Now().UTC(),
	}
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sendTimeout)
	defer cancel()
	if err := s.repo.AddFailedAttempt(storeCtx, fa); err != nil {
		logger.Log(ctx).Errorf("submission: failed logging attempt for `%s`, submission may be lost, %v", o.OrderID, err)
	}
}

func channelEnabled(name string, enabled Enabled) bool {
	switch name {
	case notify.ChannelEmail:
		return enabled.Email
	case notify.ChannelChat:
		return enabled.Chat
	case notify.ChannelInApp:
		return enabled.InApp
	}
	return false
}

// filesDigest is the idempotency key of a logical submission: the
// same user retrying with the same ordered file set maps to the same
// pending order row.
func filesDigest(refs []order.File) string {
	h := sha256.New()
	for _, ref := range refs {
		h.Write([]byte(ref.URL))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// attachedRefs keeps only the references that made it into the batch,
// preserving input order. Previously attached files are replaced
// explicitly, never silently dropped.
func attachedRefs(refs []order.File, batch []files.Transferable) []order.File {
	inBatch := map[string]bool{}
	for _, f := range batch {
		inBatch[f.URL] = true
	}
	attached := make([]order.File, 0, len(refs))
	for _, ref := range refs {
		if inBatch[ref.URL] {
			attached = append(attached, ref)
		}
	}
	return attached
}

func fileURLs(batch []files.Transferable) []string {
	urls := make([]string, 0, len(batch))
	for _, f := range batch {
		urls = append(urls, f.URL)
	}
	return urls
}
