package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kinworks/kin-engine/pkg/services"
)

// PersonHandler handles family member HTTP requests.
type PersonHandler struct {
	personService services.PersonService
	logger        *zap.Logger
}

// NewPersonHandler creates a new PersonHandler.
func NewPersonHandler(personService services.PersonService, logger *zap.Logger) *PersonHandler {
	return &PersonHandler{
		personService: personService,
		logger:        logger,
	}
}

// RegisterRoutes registers the person handler's routes on the given mux.
func (h *PersonHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/family/members", h.List)
	mux.HandleFunc("GET /api/family/members/recent", h.Recent)
	mux.HandleFunc("GET /api/family/members/{id}", h.Get)
	mux.HandleFunc("POST /api/family/members", h.Create)
	mux.HandleFunc("PUT /api/family/members/{id}", h.Update)
	mux.HandleFunc("DELETE /api/family/members/{id}", h.Delete)
}

// List handles GET /api/family/members.
func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	persons, err := h.personService.List(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to list family members")
		return
	}

	if err := WriteJSON(w, http.StatusOK, persons); err != nil {
		h.logger.Error("Failed to encode members response", zap.Error(err))
	}
}

// Recent handles GET /api/family/members/recent.
// Accepts an optional limit query parameter, default 5.
func (h *PersonHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		limit = parsed
	}

	persons, err := h.personService.Recent(r.Context(), limit)
	if err != nil {
		h.writeError(w, err, "Failed to list recent members")
		return
	}

	if err := WriteJSON(w, http.StatusOK, persons); err != nil {
		h.logger.Error("Failed to encode recent members response", zap.Error(err))
	}
}

// Get handles GET /api/family/members/{id}.
// Returns the person with deaths, marriages and relationships attached.
func (h *PersonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	detail, err := h.personService.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Failed to get family member")
		return
	}

	if err := WriteJSON(w, http.StatusOK, detail); err != nil {
		h.logger.Error("Failed to encode member response", zap.Error(err))
	}
}

// Create handles POST /api/family/members.
func (h *PersonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	person, err := h.personService.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to create family member")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, person); err != nil {
		h.logger.Error("Failed to encode create response", zap.Error(err))
	}
}

// Update handles PUT /api/family/members/{id}.
func (h *PersonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req services.UpdatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	person, err := h.personService.Update(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update family member")
		return
	}

	if err := WriteJSON(w, http.StatusOK, person); err != nil {
		h.logger.Error("Failed to encode update response", zap.Error(err))
	}
}

// Delete handles DELETE /api/family/members/{id}.
func (h *PersonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.personService.Delete(r.Context(), id); err != nil {
		h.writeError(w, err, "Failed to delete family member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PersonHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid person ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}

func (h *PersonHandler) writeError(w http.ResponseWriter, err error, msg string) {
	status, code := ServiceError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
	}
	if err := ErrorResponse(w, status, code, err.Error()); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
