package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rifat0153/cleannotes/internal/auth"
	"github.com/rifat0153/cleannotes/internal/notes"
	"github.com/rifat0153/cleannotes/internal/notes/memory"
	"go.uber.org/zap"
)

const testTimestampMillis int64 = 1700000000123

type testServer struct {
	handler    http.Handler
	token      string
	repository notes.Repository
	sessions   *SessionRegistry
	realtime   *RealtimeDispatcher
}

type testServerOption func(*Dependencies)

func withRateLimit(rps float64, burst int) testServerOption {
	return func(deps *Dependencies) {
		deps.RateLimitRPS = rps
		deps.RateLimitBurst = burst
	}
}

func newTestServer(t *testing.T, options ...testServerOption) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	realtime := NewRealtimeDispatcher()
	repository := realtime.ObserveRepository(memory.NewRepository())
	useCases, err := notes.NewUseCases(notes.UseCasesConfig{Repository: repository})
	if err != nil {
		t.Fatalf("failed to build use cases: %v", err)
	}
	sessions, err := NewSessionRegistry(SessionRegistryConfig{
		UseCases: useCases,
		Clock:    func() time.Time { return time.UnixMilli(testTimestampMillis) },
	})
	if err != nil {
		t.Fatalf("failed to build session registry: %v", err)
	}
	t.Cleanup(sessions.CloseAll)

	issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{SigningSecret: []byte("test-signing-secret")})
	if err != nil {
		t.Fatalf("failed to build token issuer: %v", err)
	}
	token, _, err := issuer.IssueAccessToken(context.Background(), "owner")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	deps := Dependencies{
		TokenValidator: issuer,
		UseCases:       useCases,
		Sessions:       sessions,
		Realtime:       realtime,
		Logger:         zap.NewNop(),
	}
	for _, option := range options {
		option(&deps)
	}
	handler, err := NewHTTPHandler(deps)
	if err != nil {
		t.Fatalf("failed to construct http handler: %v", err)
	}
	return &testServer{
		handler:    handler,
		token:      token,
		repository: repository,
		sessions:   sessions,
		realtime:   realtime,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Authorization", "Bearer "+s.token)
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, request)
	return recorder
}

func (s *testServer) mustInsert(t *testing.T, note notes.Note) notes.NoteID {
	t.Helper()
	id, err := s.repository.InsertOrUpdate(context.Background(), note)
	if err != nil {
		t.Fatalf("failed to insert note: %v", err)
	}
	return id
}

func decodeJSON[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	if err := json.Unmarshal(recorder.Body.Bytes(), &value); err != nil {
		t.Fatalf("failed to decode response %q: %v", recorder.Body.String(), err)
	}
	return value
}
