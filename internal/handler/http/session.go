package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/flipit/flipit-session-go/internal/domain/like"
	"github.com/flipit/flipit-session-go/internal/domain/preference"
	"github.com/flipit/flipit-session-go/internal/handler/http/middleware"
	"github.com/flipit/flipit-session-go/internal/handler/http/response"
	"github.com/flipit/flipit-session-go/internal/pkg/jwt"
	"github.com/flipit/flipit-session-go/internal/pkg/sse"
)

// SessionHandler defines the session lifecycle and change stream handlers
type SessionHandler interface {
	End(w http.ResponseWriter, r *http.Request)
	EventToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

// EventTokenResponse represents the SSE token response
type EventTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type sessionHandlerImpl struct {
	registry    like.Registry
	prefService preference.Service
	hub         *sse.Hub
	jwtService  jwt.Service
	keepalive   time.Duration
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(registry like.Registry, prefService preference.Service, hub *sse.Hub, jwtService jwt.Service) SessionHandler {
	return &sessionHandlerImpl{
		registry:    registry,
		prefService: prefService,
		hub:         hub,
		jwtService:  jwtService,
		keepalive:   30 * time.Second,
	}
}

// End drops every piece of in-memory state held for the user (logout)
func (h *sessionHandlerImpl) End(w http.ResponseWriter, r *http.Request) {
	userID := middleware.SessionFromContext(r.Context()).UserID

	h.registry.End(userID)
	h.prefService.Forget(userID)

	response.SuccessWithMessage(w, "Session ended", nil)
}

// EventToken generates a short-lived token for the change stream
func (h *sessionHandlerImpl) EventToken(w http.ResponseWriter, r *http.Request) {
	userID := middleware.SessionFromContext(r.Context()).UserID

	token, expiresIn, err := h.jwtService.GenerateSSEToken(userID)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, EventTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream pushes like and preference changes of the user to an open view
func (h *sessionHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Token comes from the query string (EventSource cannot set headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	userID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sub, cleanup := h.hub.Subscribe(userID)
	defer cleanup()

	slog.Debug("Change stream opened", "user_id", userID, "subscription_id", sub.ID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"subscription_id\":%q}\n\n", sub.ID)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			slog.Debug("Change stream closed", "user_id", userID, "subscription_id", sub.ID)
			return
		}
	}
}
