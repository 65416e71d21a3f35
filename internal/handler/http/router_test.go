package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/flipit/flipit-session-go/internal/domain/auth"
	"github.com/flipit/flipit-session-go/internal/domain/like"
	"github.com/flipit/flipit-session-go/internal/pkg/jwt"
	"github.com/flipit/flipit-session-go/internal/pkg/sse"
	likeService "github.com/flipit/flipit-session-go/internal/service/like"
	preferenceService "github.com/flipit/flipit-session-go/internal/service/preference"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

const handlerTestSecret = "test-secret-key-for-jwt"

// memoryBackend is a like.Backend shared by every session of a test
type memoryBackend struct {
	mu          sync.Mutex
	liked       map[string]map[int64]bool
	fail        error
	statusCalls int
	fetchCalls  int
	traceIDs    []string
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{liked: make(map[string]map[int64]bool)}
}

func (m *memoryBackend) factory(session auth.Session) like.Backend {
	return &memorySession{store: m, userID: session.UserID}
}

func (m *memoryBackend) setFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func (m *memoryBackend) statusCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCalls
}

func (m *memoryBackend) likeTraceIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.traceIDs...)
}

func (m *memoryBackend) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}

type memorySession struct {
	store  *memoryBackend
	userID string
}

func (s *memorySession) set(itemID int64, liked bool) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if s.store.fail != nil {
		return s.store.fail
	}
	if s.store.liked[s.userID] == nil {
		s.store.liked[s.userID] = make(map[int64]bool)
	}
	if liked {
		s.store.liked[s.userID][itemID] = true
	} else {
		delete(s.store.liked[s.userID], itemID)
	}
	return nil
}

func (s *memorySession) Like(ctx context.Context, itemID int64) error {
	s.store.mu.Lock()
	s.store.traceIDs = append(s.store.traceIDs, trace.SpanContextFromContext(ctx).TraceID().String())
	s.store.mu.Unlock()
	return s.set(itemID, true)
}

func (s *memorySession) Unlike(ctx context.Context, itemID int64) error {
	return s.set(itemID, false)
}

func (s *memorySession) FetchAll(ctx context.Context) ([]like.Item, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.fetchCalls++
	if s.store.fail != nil {
		return nil, s.store.fail
	}
	var items []like.Item
	for id := range s.store.liked[s.userID] {
		items = append(items, like.Item{ID: id})
	}
	return items, nil
}

func (s *memorySession) CheckStatus(ctx context.Context, itemIDs []int64) (map[int64]bool, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.statusCalls++
	if s.store.fail != nil {
		return nil, s.store.fail
	}
	out := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		out[id] = s.store.liked[s.userID][id]
	}
	return out, nil
}

type testApp struct {
	router  *chi.Mux
	backend *memoryBackend
	jwt     jwt.Service
	hub     *sse.Hub
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()

	backend := newMemoryBackend()
	hub := sse.NewHub()
	jwtSvc := jwt.NewJWTService(handlerTestSecret, time.Hour, time.Minute)
	registry := likeService.NewRegistry(backend.factory, hub, likeService.Config{ToggleTimeout: time.Second})
	prefs := preferenceService.NewPreferenceService(hub)

	router := NewRouter(
		RouterConfig{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))},
		jwtSvc,
		NewLikeHandler(registry),
		NewPreferenceHandler(prefs),
		NewSessionHandler(registry, prefs, hub, jwtSvc),
	)

	return &testApp{router: router, backend: backend, jwt: jwtSvc, hub: hub}
}

func (a *testApp) accessToken(t *testing.T, userID string) string {
	t.Helper()
	token, _, err := a.jwt.GenerateAccessToken(userID)
	require.NoError(t, err)
	return token
}

// do sends a request through the router; an empty token sends no Authorization header
func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()

	a.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return w, resp
}

func dataOf(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", resp)
	return data
}

func errorCodeOf(resp map[string]interface{}) string {
	detail, _ := resp["error"].(map[string]interface{})
	code, _ := detail["code"].(string)
	return code
}
