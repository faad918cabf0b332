package inventory

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dealerdesk/dealerdesk/internal/platform/httpx"
	"github.com/dealerdesk/dealerdesk/internal/shared"
)

// Handler wires HTTP endpoints for the inventory module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs an inventory handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/vehicles", h.listVehicles)
	r.Post("/vehicles", h.intake)
	r.Get("/vehicles/{id}", h.getVehicle)
	r.Delete("/vehicles/{id}", h.removeVehicle)
	r.Post("/vehicles/{id}/adjust", h.adjustQuantity)

	r.Get("/stocktakes", h.listStocktakes)
	r.Post("/stocktakes", h.recordStocktake)
}

type intakeForm struct {
	Brand        string   `json:"brand" validate:"required,max=100"`
	Model        string   `json:"model" validate:"required,max=100"`
	Year         int      `json:"year" validate:"gte=0"`
	Price        int64    `json:"price" validate:"gte=0"`
	Quantity     int      `json:"quantity" validate:"gte=0"`
	Simple       bool     `json:"simple"`
	Color        string   `json:"color"`
	Description  string   `json:"description"`
	ImageRef     string   `json:"image_ref"`
	ColorOptions []string `json:"color_options"`
}

type adjustForm struct {
	Delta int `json:"delta" validate:"required"`
}

type stocktakeForm struct {
	CreatedBy string          `json:"created_by" validate:"required,max=200"`
	Items     []StocktakeItem `json:"items" validate:"required,min=1,dive"`
	Note      string          `json:"note"`
}

func (h *Handler) listVehicles(w http.ResponseWriter, r *http.Request) {
	onlyInStock := r.URL.Query().Get("in_stock") == "true"
	vehicles, err := h.service.List(r.Context(), onlyInStock)
	if err != nil {
		h.logger.Error("list vehicles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, vehicles)
}

func (h *Handler) getVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, vehicle)
}

func (h *Handler) intake(w http.ResponseWriter, r *http.Request) {
	var form intakeForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err))
		return
	}
	vehicle, err := h.service.Intake(r.Context(), IntakeInput{
		Brand:        form.Brand,
		Model:        form.Model,
		Year:         form.Year,
		Price:        form.Price,
		Quantity:     form.Quantity,
		Simple:       form.Simple,
		Color:        form.Color,
		Description:  form.Description,
		ImageRef:     form.ImageRef,
		ColorOptions: form.ColorOptions,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, vehicle)
}

func (h *Handler) removeVehicle(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adjustQuantity(w http.ResponseWriter, r *http.Request) {
	var form adjustForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", shared.ErrValidation))
		return
	}
	quantity, err := h.service.AdjustQuantity(r.Context(), chi.URLParam(r, "id"), form.Delta)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"quantity": quantity})
}

func (h *Handler) listStocktakes(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.ListStocktakes(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reports)
}

func (h *Handler) recordStocktake(w http.ResponseWriter, r *http.Request) {
	var form stocktakeForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err))
		return
	}
	report, err := h.service.RecordStocktake(r.Context(), StocktakeInput{
		CreatedBy: form.CreatedBy,
		Items:     form.Items,
		Note:      form.Note,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, report)
}
