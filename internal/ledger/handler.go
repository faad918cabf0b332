package ledger

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dealerdesk/dealerdesk/internal/platform/httpx"
	"github.com/dealerdesk/dealerdesk/internal/shared"
)

// Handler wires HTTP endpoints for the payment ledger.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a ledger handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes. The ledger is read-only over HTTP;
// entries are booked by the order settlement flow.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/payments", h.listEntries)
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.Query(r.Context(), filter)
	if err != nil {
		h.logger.Error("query ledger", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func parseFilter(r *http.Request) (QueryFilter, error) {
	var filter QueryFilter
	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return QueryFilter{}, fmt.Errorf("%w: from must be RFC 3339", shared.ErrValidation)
		}
		filter.From = from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return QueryFilter{}, fmt.Errorf("%w: to must be RFC 3339", shared.ErrValidation)
		}
		filter.To = to
	}
	filter.VehicleID = q.Get("vehicle_id")
	return filter, nil
}
