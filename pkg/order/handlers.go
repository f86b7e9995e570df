package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/handywriterz/submissions/pkg/common"
	"github.com/handywriterz/submissions/pkg/logger"
)

type IRepo interface {
	Get(ctx context.Context, orderID string) (*Order, error)
	GetByUser(ctx context.Context, userID string) ([]*Order, error)
	SetStatus(ctx context.Context, orderID, status string) error
}

type Handler struct {
	repo IRepo
}

func NewHandler(r IRepo) *Handler {
	return &Handler{
		repo: r,
	}
}

func (oh Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	orderID := mux.Vars(r)["orderId"]
	o, err := oh.repo.Get(r.Context(), orderID)
	if errors.Is(err, ErrOrderNotFound) {
		common.WriteMsg(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Log(r.Context()).Errorf("order: can't get order `%s`, %v", orderID, err)
		common.WriteMsg(w, "can't get order", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	common.WriteRespJSON(w, o)
}

func (oh Handler) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID := mux.Vars(r)["userId"]
	orders, err := oh.repo.GetByUser(r.Context(), userID)
	if err != nil {
		logger.Log(r.Context()).Errorf("order: can't get orders of user `%s`, %v", userID, err)
		common.WriteMsg(w, "can't get user orders", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	common.WriteRespJSON(w, orders)
}

// UpdateStatus moves an order one step through its lifecycle. Invalid
// or gated transitions are rejected, nothing is written for them.
func (oh Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	orderID := mux.Vars(r)["orderId"]
	body := struct {
		Status string `json:"status"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logger.Log(r.Context()).Errorf("order: can't parse status update body, %v", err)
		common.WriteMsg(w, "bad request format", http.StatusBadRequest)
		return
	}

	o, err := oh.repo.Get(r.Context(), orderID)
	if errors.Is(err, ErrOrderNotFound) {
		common.WriteMsg(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Log(r.Context()).Errorf("order: can't get order `%s`, %v", orderID, err)
		common.WriteMsg(w, "can't get order", http.StatusInternalServerError)
		return
	}

	if err := o.CanAdvanceTo(body.Status); err != nil {
		logger.Log(r.Context()).Errorf("order: rejected transition for `%s`, %v", orderID, err)
		common.WriteMsg(w, err.Error(), http.StatusConflict)
		return
	}

	if err := oh.repo.SetStatus(r.Context(), orderID, body.Status); err != nil {
		logger.Log(r.Context()).Errorf("order: failed updating status of `%s`, %v", orderID, err)
		common.WriteMsg(w, "can't update order status", http.StatusInternalServerError)
		return
	}

	o.Status = body.Status
	w.WriteHeader(http.StatusOK)
	common.WriteRespJSON(w, o)
}
