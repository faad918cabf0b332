package orders

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dealerdesk/dealerdesk/internal/ledger"
	"github.com/dealerdesk/dealerdesk/internal/platform/httpx"
	"github.com/dealerdesk/dealerdesk/internal/shared"
)

// Handler wires HTTP endpoints for the order lifecycle.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs an order handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Put("/orders/{id}", h.updateOrder)
	r.Delete("/orders/{id}", h.deleteOrder)
	r.Post("/orders/{id}/settle", h.settleOrder)
}

type createOrderForm struct {
	CustomerID    string   `json:"customer_id" validate:"required"`
	VehicleID     string   `json:"vehicle_id" validate:"required"`
	ServiceIDs    []string `json:"service_ids"`
	PaymentMethod string   `json:"payment_method"`
}

type updateOrderForm struct {
	ServiceIDs    []string `json:"service_ids"`
	PaymentMethod string   `json:"payment_method"`
}

type settleOrderForm struct {
	ServiceIDs    []string `json:"service_ids"`
	PromotionID   string   `json:"promotion_id"`
	PaymentMethod string   `json:"payment_method"`
	Serial        string   `json:"serial"`
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var form createOrderForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err))
		return
	}
	order, err := h.service.Create(r.Context(), CreateInput{
		CustomerID:    form.CustomerID,
		VehicleID:     form.VehicleID,
		ServiceIDs:    form.ServiceIDs,
		PaymentMethod: ledger.PaymentMethod(form.PaymentMethod),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var form updateOrderForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", shared.ErrValidation))
		return
	}
	order, err := h.service.UpdatePending(r.Context(), chi.URLParam(r, "id"), UpdateInput{
		ServiceIDs:    form.ServiceIDs,
		PaymentMethod: ledger.PaymentMethod(form.PaymentMethod),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) settleOrder(w http.ResponseWriter, r *http.Request) {
	var form settleOrderForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", shared.ErrValidation))
		return
	}
	order, err := h.service.Settle(r.Context(), chi.URLParam(r, "id"), SettleInput{
		ServiceIDs:    form.ServiceIDs,
		PromotionID:   form.PromotionID,
		PaymentMethod: ledger.PaymentMethod(form.PaymentMethod),
		Serial:        form.Serial,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}
