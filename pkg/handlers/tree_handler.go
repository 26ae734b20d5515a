package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kinworks/kin-engine/pkg/services"
)

// TreeHandler serves the rooted family tree.
type TreeHandler struct {
	treeService services.FamilyTreeService
	logger      *zap.Logger
}

// NewTreeHandler creates a new TreeHandler.
func NewTreeHandler(treeService services.FamilyTreeService, logger *zap.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// RegisterRoutes registers the tree handler's routes on the given mux.
func (h *TreeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/family/tree/{id}", h.Get)
}

// Get handles GET /api/family/tree/{id}.
// Returns the descendant tree rooted at the person, or 404 when the person
// does not exist.
func (h *TreeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid person ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	tree, err := h.treeService.Build(r.Context(), id)
	if err != nil {
		status, code := ServiceError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to build family tree", zap.Error(err))
		}
		if err := ErrorResponse(w, status, code, err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if tree == nil {
		if err := ErrorResponse(w, http.StatusNotFound, "not_found", "Person not found"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, tree); err != nil {
		h.logger.Error("Failed to encode tree response", zap.Error(err))
	}
}
