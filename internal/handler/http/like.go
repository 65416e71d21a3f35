package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/flipit/flipit-session-go/internal/domain/like"
	"github.com/flipit/flipit-session-go/internal/handler/http/middleware"
	"github.com/flipit/flipit-session-go/internal/handler/http/response"
	"github.com/flipit/flipit-session-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// MaxBulkStatusItems bounds a single status lookup
const MaxBulkStatusItems = 100

// LikeHandler defines the like handler interface
type LikeHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	Toggle(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	BulkStatus(w http.ResponseWriter, r *http.Request)
}

type likeHandlerImpl struct {
	registry like.Registry
}

// NewLikeHandler creates a new like handler
func NewLikeHandler(registry like.Registry) LikeHandler {
	return &likeHandlerImpl{registry: registry}
}

// coordinator returns the coordinator of the request's session
func (h *likeHandlerImpl) coordinator(w http.ResponseWriter, r *http.Request) (like.Coordinator, bool) {
	c, err := h.registry.Acquire(r.Context(), middleware.SessionFromContext(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return nil, false
	}
	return c, true
}

// List returns the liked ids of the session
func (h *likeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}

	ids := c.Snapshot()
	response.Success(w, like.ListResponse{ItemIDs: ids, Total: len(ids)})
}

// Status returns the liked flag of one item
func (h *likeHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	itemID, err := validator.ParseItemID("item_id", chi.URLParam(r, "itemID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}

	response.Success(w, like.StatusResponse{ItemID: itemID, Liked: c.IsLiked(itemID)})
}

// Toggle flips the liked flag of one item
func (h *likeHandlerImpl) Toggle(w http.ResponseWriter, r *http.Request) {
	itemID, err := validator.ParseItemID("item_id", chi.URLParam(r, "itemID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}

	liked, err := c.ToggleLike(r.Context(), itemID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "Item unliked"
	if liked {
		message = "Item liked"
	}
	response.SuccessWithMessage(w, message, like.StatusResponse{ItemID: itemID, Liked: liked})
}

// Refresh reloads the liked set from the marketplace
func (h *likeHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	c, err := h.registry.Reload(r.Context(), middleware.SessionFromContext(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	ids := c.Snapshot()
	response.SuccessWithMessage(w, "Likes refreshed", like.ListResponse{ItemIDs: ids, Total: len(ids)})
}

// BulkStatus returns the liked flag of several items
func (h *likeHandlerImpl) BulkStatus(w http.ResponseWriter, r *http.Request) {
	var req like.BulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if len(req.ItemIDs) > MaxBulkStatusItems {
		response.HandleError(w, fmt.Errorf("%w: at most %d per request", like.ErrTooManyItemIDs, MaxBulkStatusItems))
		return
	}
	if err := validator.ValidateItemIDs("item_ids", req.ItemIDs); err != nil {
		response.HandleError(w, err)
		return
	}

	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}

	statuses, err := c.BulkStatus(r.Context(), req.ItemIDs)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, like.BulkStatusResponse{Statuses: statuses})
}
