package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kinworks/kin-engine/pkg/services"
)

// FamilyEventHandler handles family event HTTP requests.
type FamilyEventHandler struct {
	eventService services.FamilyEventService
	logger       *zap.Logger
}

// NewFamilyEventHandler creates a new FamilyEventHandler.
func NewFamilyEventHandler(eventService services.FamilyEventService, logger *zap.Logger) *FamilyEventHandler {
	return &FamilyEventHandler{
		eventService: eventService,
		logger:       logger,
	}
}

// RegisterRoutes registers the event handler's routes on the given mux.
func (h *FamilyEventHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/family/events", h.List)
	mux.HandleFunc("POST /api/family/events", h.Create)
	mux.HandleFunc("DELETE /api/family/events/{id}", h.Delete)
}

// List handles GET /api/family/events.
func (h *FamilyEventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.List(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to list family events")
		return
	}

	if err := WriteJSON(w, http.StatusOK, events); err != nil {
		h.logger.Error("Failed to encode events response", zap.Error(err))
	}
}

// Create handles POST /api/family/events.
func (h *FamilyEventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.FamilyEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	event, err := h.eventService.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to create family event")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, event); err != nil {
		h.logger.Error("Failed to encode event response", zap.Error(err))
	}
}

// Delete handles DELETE /api/family/events/{id}.
func (h *FamilyEventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid event ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.eventService.Delete(r.Context(), id); err != nil {
		h.writeError(w, err, "Failed to delete family event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FamilyEventHandler) writeError(w http.ResponseWriter, err error, msg string) {
	status, code := ServiceError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
	}
	if err := ErrorResponse(w, status, code, err.Error()); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
