package http

import (
	"encoding/json"
	"net/http"

	"github.com/flipit/flipit-session-go/internal/domain/preference"
	"github.com/flipit/flipit-session-go/internal/handler/http/middleware"
	"github.com/flipit/flipit-session-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// PreferenceHandler defines the notification preference handler interface
type PreferenceHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Toggle(w http.ResponseWriter, r *http.Request)
	Reset(w http.ResponseWriter, r *http.Request)
}

type preferenceHandlerImpl struct {
	prefService preference.Service
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(prefService preference.Service) PreferenceHandler {
	return &preferenceHandlerImpl{prefService: prefService}
}

// Get returns the current notification preferences
func (h *preferenceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.SessionFromContext(r.Context()).UserID

	state := h.prefService.Get(userID)
	response.Success(w, preference.NewStateResponse(state))
}

// Toggle sets one preference and applies the cascade rules
func (h *preferenceHandlerImpl) Toggle(w http.ResponseWriter, r *http.Request) {
	userID := middleware.SessionFromContext(r.Context()).UserID

	key, err := preference.ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req preference.ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if req.Value == nil {
		response.ValidationError(w, map[string]string{"value": "is required"})
		return
	}

	state, err := h.prefService.Toggle(userID, key, *req.Value)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Preference updated", preference.NewStateResponse(state))
}

// Reset restores the default preferences
func (h *preferenceHandlerImpl) Reset(w http.ResponseWriter, r *http.Request) {
	userID := middleware.SessionFromContext(r.Context()).UserID

	state := h.prefService.Reset(userID)
	response.SuccessWithMessage(w, "Preferences reset", preference.NewStateResponse(state))
}
