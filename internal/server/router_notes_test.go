package server

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/rifat0153/cleannotes/internal/notes"
)

func TestHealthEndpointSkipsAuthorization(t *testing.T) {
	server := newTestServer(t)
	recorder := httptest.NewRecorder()
	server.handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected ok, got %d", recorder.Code)
	}
}

func TestNotesEndpointsRequireToken(t *testing.T) {
	server := newTestServer(t)
	recorder := httptest.NewRecorder()
	server.handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/notes", http.NoBody))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", recorder.Code)
	}
}

func TestListNotesReturnsEmptyArray(t *testing.T) {
	server := newTestServer(t)
	recorder := server.do(t, http.MethodGet, "/notes", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected ok, got %d", recorder.Code)
	}
	if recorder.Body.String() != `{"notes":[]}` {
		t.Fatalf("unexpected body %s", recorder.Body.String())
	}
}

func TestListNotesAppliesRequestedOrder(t *testing.T) {
	server := newTestServer(t)
	server.mustInsert(t, notes.Note{Title: "banana", Timestamp: 3, Color: notes.Violet})
	server.mustInsert(t, notes.Note{Title: "Apple", Timestamp: 1, Color: notes.RedPink})
	server.mustInsert(t, notes.Note{Title: "cherry", Timestamp: 2, Color: notes.BabyBlue})

	testCases := []struct {
		name     string
		query    string
		expected []string
	}{
		{name: "default is newest first", query: "", expected: []string{"banana", "cherry", "Apple"}},
		{name: "title ascending", query: "?order=title&direction=asc", expected: []string{"Apple", "banana", "cherry"}},
		{name: "date ascending", query: "?order=date&direction=asc", expected: []string{"Apple", "cherry", "banana"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			recorder := server.do(t, http.MethodGet, "/notes"+testCase.query, "")
			if recorder.Code != http.StatusOK {
				t.Fatalf("expected ok, got %d", recorder.Code)
			}
			response := decodeJSON[notesResponsePayload](t, recorder)
			if len(response.Notes) != len(testCase.expected) {
				t.Fatalf("expected %d notes, got %d", len(testCase.expected), len(response.Notes))
			}
			for index, title := range testCase.expected {
				if response.Notes[index].Title != title {
					t.Fatalf("position %d: expected %q, got %q", index, title, response.Notes[index].Title)
				}
			}
		})
	}
}

func TestListNotesRejectsUnknownOrder(t *testing.T) {
	server := newTestServer(t)
	recorder := server.do(t, http.MethodGet, "/notes?order=size", "")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", recorder.Code)
	}
	if recorder.Body.String() != `{"error":"invalid_order"}` {
		t.Fatalf("unexpected body %s", recorder.Body.String())
	}
}

func TestGetNoteReportsStoredNote(t *testing.T) {
	server := newTestServer(t)
	id := server.mustInsert(t, notes.Note{Title: "X", Content: "Y", Timestamp: 42, Color: notes.Violet})

	recorder := server.do(t, http.MethodGet, "/notes/"+formatID(id), "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected ok, got %d", recorder.Code)
	}
	payload := decodeJSON[notePayload](t, recorder)
	if payload.Title != "X" || payload.Content != "Y" || payload.Timestamp != 42 {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if payload.Color != "0xFFCF94DA" || payload.ColorName != "violet" {
		t.Fatalf("unexpected color %q / %q", payload.Color, payload.ColorName)
	}
}

func TestGetNoteRejectsMissingAndMalformedIDs(t *testing.T) {
	server := newTestServer(t)

	testCases := []struct {
		path   string
		status int
	}{
		{path: "/notes/999", status: http.StatusNotFound},
		{path: "/notes/0", status: http.StatusBadRequest},
		{path: "/notes/-1", status: http.StatusBadRequest},
		{path: "/notes/abc", status: http.StatusBadRequest},
	}
	for _, testCase := range testCases {
		recorder := server.do(t, http.MethodGet, testCase.path, "")
		if recorder.Code != testCase.status {
			t.Fatalf("%s: expected %d, got %d", testCase.path, testCase.status, recorder.Code)
		}
	}
}

func TestDeleteNoteRemovesIt(t *testing.T) {
	server := newTestServer(t)
	id := server.mustInsert(t, notes.Note{Title: "doomed"})

	recorder := server.do(t, http.MethodDelete, "/notes/"+formatID(id), "")
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected no content, got %d", recorder.Code)
	}
	recorder = server.do(t, http.MethodGet, "/notes/"+formatID(id), "")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected deleted note to be gone, got %d", recorder.Code)
	}
	recorder = server.do(t, http.MethodDelete, "/notes/"+formatID(id), "")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected second delete to report not found, got %d", recorder.Code)
	}
}

func TestRateLimitRejectsBursts(t *testing.T) {
	server := newTestServer(t, withRateLimit(1, 1))

	if recorder := server.do(t, http.MethodGet, "/notes", ""); recorder.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", recorder.Code)
	}
	recorder := server.do(t, http.MethodGet, "/notes", "")
	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("expected rate limit, got %d", recorder.Code)
	}
}

func TestNewHTTPHandlerRequiresDependencies(t *testing.T) {
	if _, err := NewHTTPHandler(Dependencies{}); err == nil {
		t.Fatalf("expected error without token validator")
	}
	if _, err := NewHTTPHandler(Dependencies{TokenValidator: stubTokenValidator{}}); err == nil {
		t.Fatalf("expected error without use cases")
	}
}

func formatID(id notes.NoteID) string {
	return strconv.FormatInt(id.Int64(), 10)
}
