package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/handywriterz/submissions/pkg/common"
	"github.com/handywriterz/submissions/pkg/logger"
	"github.com/handywriterz/submissions/pkg/order"
)

type iService interface {
	SubmitDocuments(ctx context.Context, userID string, refs []order.File, meta *order.Metadata, enabled Enabled) (*Result, error)
}

type Handler struct {
	service iService
}

func NewHandler(s iService) *Handler {
	return &Handler{
		service: s,
	}
}

type submitRequest struct {
	UserID   string          `json:"userId"`
	Files    []order.File    `json:"files"`
	Metadata *order.Metadata `json:"metadata"`
	Channels *Enabled        `json:"channels,omitempty"`
}

// Submit takes the order intake body, truncates oversized file batches
// at the boundary (the pipeline below still rejects >10 defensively)
// and runs the pipeline.
//
// Status codes:
// - 200 — submitted, operator notified (possibly with warnings);
// - 400 — validation failed, no side effects;
// - 502 — every notification channel failed, order kept for retry.
func (sh Handler) Submit(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	req := submitRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log(r.Context()).Errorf("submission: can't parse request body, %v", err)
		common.WriteMsg(w, "bad request format", http.StatusBadRequest)
		return
	}
	if req.Metadata == nil {
		common.WriteMsg(w, "metadata is required", http.StatusBadRequest)
		return
	}

	var truncWarning string
	if len(req.Files) > order.MaxFiles {
		truncWarning = fmt.Sprintf("only the first %d of %d files were accepted", order.MaxFiles, len(req.Files))
		req.Files = req.Files[:order.MaxFiles]
	}

	enabled := AllChannels
	if req.Channels != nil {
		enabled = *req.Channels
	}

	result, err := sh.service.SubmitDocuments(r.Context(), req.UserID, req.Files, req.Metadata, enabled)
	if errors.Is(err, ErrValidation) {
		common.WriteMsg(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, ErrAllChannelsFailed) {
		w.WriteHeader(http.StatusBadGateway)
		common.WriteRespJSON(w, result)
		return
	}
	if err != nil {
		logger.Log(r.Context()).Errorf("submission: pipeline failed, %v", err)
		common.WriteMsg(w, "can't process submission", http.StatusInternalServerError)
		return
	}

	if truncWarning != "" {
		result.Warnings = append(result.Warnings, truncWarning)
	}
	w.WriteHeader(http.StatusOK)
	common.WriteRespJSON(w, result)
}
