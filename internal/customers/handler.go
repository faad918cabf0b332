package customers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dealerdesk/dealerdesk/internal/platform/httpx"
	"github.com/dealerdesk/dealerdesk/internal/shared"
)

// Handler wires HTTP endpoints for the customer directory.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a customers handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/customers", h.listCustomers)
	r.Get("/customers/{id}", h.getCustomer)
	r.Post("/customers", h.createCustomer)
}

type addressForm struct {
	House  string `json:"house"`
	Hamlet string `json:"hamlet"`
	Ward   string `json:"ward"`
	City   string `json:"city"`
	Raw    string `json:"raw"`
}

type customerForm struct {
	Name    string      `json:"name" validate:"required,max=200"`
	Phone   string      `json:"phone" validate:"required,max=50"`
	Email   string      `json:"email" validate:"omitempty,email"`
	Address addressForm `json:"address"`
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	if phone := r.URL.Query().Get("phone"); phone != "" {
		matches, err := h.service.FindByPhone(r.Context(), phone)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, matches)
		return
	}
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var form customerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err))
		return
	}
	customer, err := h.service.Create(r.Context(), CreateInput{
		Name:  form.Name,
		Phone: form.Phone,
		Email: form.Email,
		Address: Address{
			House:  form.Address.House,
			Hamlet: form.Address.Hamlet,
			Ward:   form.Address.Ward,
			City:   form.Address.City,
			Raw:    form.Address.Raw,
		},
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}
