package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kinworks/kin-engine/pkg/models"
	"github.com/kinworks/kin-engine/pkg/services"
)

// RelationshipHandler handles relationship HTTP requests.
type RelationshipHandler struct {
	relationshipService services.RelationshipService
	logger              *zap.Logger
}

// NewRelationshipHandler creates a new RelationshipHandler.
func NewRelationshipHandler(relationshipService services.RelationshipService, logger *zap.Logger) *RelationshipHandler {
	return &RelationshipHandler{
		relationshipService: relationshipService,
		logger:              logger,
	}
}

// RegisterRoutes registers the relationship handler's routes on the given mux.
func (h *RelationshipHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/family/relationships", h.ListAll)
	mux.HandleFunc("GET /api/family/members/{id}/relationships", h.ListForPerson)
	mux.HandleFunc("POST /api/family/members/{id}/relationships", h.Assert)
	mux.HandleFunc("PUT /api/family/members/{id}/relationships", h.Replace)
}

// ListAll handles GET /api/family/relationships.
func (h *RelationshipHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	rels, err := h.relationshipService.All(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to list relationships")
		return
	}

	if err := WriteJSON(w, http.StatusOK, rels); err != nil {
		h.logger.Error("Failed to encode relationships response", zap.Error(err))
	}
}

// ListForPerson handles GET /api/family/members/{id}/relationships.
func (h *RelationshipHandler) ListForPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	rels, err := h.relationshipService.ForPerson(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Failed to list relationships for person")
		return
	}

	if err := WriteJSON(w, http.StatusOK, rels); err != nil {
		h.logger.Error("Failed to encode relationships response", zap.Error(err))
	}
}

// Assert handles POST /api/family/members/{id}/relationships.
// Adds the given relationships and everything they imply to the graph.
func (h *RelationshipHandler) Assert(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.relationshipService.Assert)
}

// Replace handles PUT /api/family/members/{id}/relationships.
// Replaces the person's relationships with the given set.
func (h *RelationshipHandler) Replace(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.relationshipService.Replace)
}

func (h *RelationshipHandler) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, personID uuid.UUID, requests []models.RelationshipRequest) error) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var requests []models.RelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&requests); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := op(r.Context(), id, requests); err != nil {
		h.writeError(w, err, "Failed to modify relationships")
		return
	}

	rels, err := h.relationshipService.ForPerson(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Failed to list relationships for person")
		return
	}

	if err := WriteJSON(w, http.StatusOK, rels); err != nil {
		h.logger.Error("Failed to encode relationships response", zap.Error(err))
	}
}

func (h *RelationshipHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid person ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}

func (h *RelationshipHandler) writeError(w http.ResponseWriter, err error, msg string) {
	status, code := ServiceError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
	}
	if err := ErrorResponse(w, status, code, err.Error()); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
