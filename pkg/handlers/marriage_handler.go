package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kinworks/kin-engine/pkg/services"
)

// MarriageHandler handles marriage HTTP requests.
type MarriageHandler struct {
	marriageService services.MarriageService
	logger          *zap.Logger
}

// NewMarriageHandler creates a new MarriageHandler.
func NewMarriageHandler(marriageService services.MarriageService, logger *zap.Logger) *MarriageHandler {
	return &MarriageHandler{
		marriageService: marriageService,
		logger:          logger,
	}
}

// RegisterRoutes registers the marriage handler's routes on the given mux.
func (h *MarriageHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/family/marriages", h.AddOrUpdate)
	mux.HandleFunc("GET /api/family/members/{id}/marriages", h.ListForPerson)
}

// AddOrUpdate handles POST /api/family/marriages.
// Creates the marriage for the couple or updates the dates of the existing
// one; either way the couple ends up with a single marriage record.
func (h *MarriageHandler) AddOrUpdate(w http.ResponseWriter, r *http.Request) {
	var req services.MarriageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	marriage, err := h.marriageService.AddOrUpdate(r.Context(), &req)
	if err != nil {
		status, code := ServiceError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to record marriage", zap.Error(err))
		}
		if err := ErrorResponse(w, status, code, err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, marriage); err != nil {
		h.logger.Error("Failed to encode marriage response", zap.Error(err))
	}
}

// ListForPerson handles GET /api/family/members/{id}/marriages.
func (h *MarriageHandler) ListForPerson(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid person ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	marriages, err := h.marriageService.ListForPerson(r.Context(), id)
	if err != nil {
		status, code := ServiceError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to list marriages", zap.Error(err))
		}
		if err := ErrorResponse(w, status, code, err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, marriages); err != nil {
		h.logger.Error("Failed to encode marriages response", zap.Error(err))
	}
}
