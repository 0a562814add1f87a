package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dsjohal14/listmatch/internal/libs/jobs"
	"github.com/dsjohal14/listmatch/internal/libs/obs"
	"github.com/dsjohal14/listmatch/internal/scope/db"
	"github.com/dsjohal14/listmatch/internal/scope/reconcile"
	"github.com/go-chi/chi/v5"
)

func setupTestHandler(t *testing.T, maxBody int64) (*Handler, *chi.Mux) {
	t.Helper()

	obs.InitLogger("error", false) // Quiet logs during tests
	logger := obs.Logger("test")

	service := reconcile.NewService(reconcile.New(nil, logger), jobs.NewQueue(0), logger)
	handler := NewHandler(service, nil, maxBody, logger)

	return handler, NewRouter(handler)
}

func setupBoltHandler(t *testing.T) *chi.Mux {
	t.Helper()

	obs.InitLogger("error", false)
	logger := obs.Logger("test")

	sink, err := db.NewBoltSink(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("failed to open bolt sink: %v", err)
	}
	t.Cleanup(func() { _ = sink.Close() })

	service := reconcile.NewService(reconcile.New(nil, logger), jobs.NewQueue(0), logger, sink)
	return NewRouter(NewHandler(service, sink, 1<<20, logger))
}

func postMatch(t *testing.T, router http.Handler, req MatchRequest) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(req)
	r := httptest.NewRequest(http.MethodPost, "/match", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestHandleHealth(t *testing.T) {
	_, router := setupTestHandler(t, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("expected status healthy, got %v", resp.Status)
	}
}

func TestHandleMatch(t *testing.T) {
	_, router := setupTestHandler(t, 1<<20)

	w := postMatch(t, router, MatchRequest{
		Products: `{"product_name":"Canon 5D","manufacturer":"Canon","model":"5D"}`,
		Listings: "{\"title\":\"Canon PowerShot SX130\"}\n{\"title\":\"Canon EOS 5D Body\"}",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	want := `{"product_name":"Canon 5D","listings":[{"title":"Canon EOS 5D Body"}]}`
	if w.Body.String() != want {
		t.Errorf("expected body %s, got %s", want, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("expected ndjson content type, got %s", ct)
	}
	if w.Header().Get("X-Run-ID") == "" {
		t.Error("expected X-Run-ID header")
	}
}

func TestHandleMatchMalformedRecord(t *testing.T) {
	_, router := setupTestHandler(t, 1<<20)

	w := postMatch(t, router, MatchRequest{
		Products: `{"product_name":"Canon 5D","manufacturer":"Canon","model":"5D"}`,
		Listings: "{\"title\":\"Canon EOS 5D Body\"}\nnot json",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != "INVALID_RECORD" {
		t.Errorf("expected INVALID_RECORD, got %s", resp.Code)
	}
	if !strings.Contains(resp.Details, "listings line 2") {
		t.Errorf("expected details to name the line, got %q", resp.Details)
	}
}

func TestHandleMatchInvalidJSON(t *testing.T) {
	_, router := setupTestHandler(t, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/match", strings.NewReader("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestHandleMatchBodyTooLarge(t *testing.T) {
	_, router := setupTestHandler(t, 16)

	w := postMatch(t, router, MatchRequest{
		Products: strings.Repeat("x", 64),
	})

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected status 413, got %d", w.Code)
	}
}

func TestHandleRuns(t *testing.T) {
	_, router := setupTestHandler(t, 1<<20)

	w := postMatch(t, router, MatchRequest{
		Products: `{"product_name":"Sony A55","manufacturer":"Sony","model":"A55"}`,
		Listings: `{"title":"Sony Alpha A55"}`,
	})
	runID := w.Header().Get("X-Run-ID")

	req := httptest.NewRequest(http.MethodGet, "/runs", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var list RunsResponse
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if list.Count != 1 || list.Runs[0].ID != runID {
		t.Fatalf("unexpected runs %+v", list)
	}

	req = httptest.NewRequest(http.MethodGet, "/runs/"+runID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var job jobs.Job
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if job.Status != jobs.StatusDone || job.Matched != 1 {
		t.Errorf("unexpected run %+v", job)
	}
}

func TestHandleGetRunNotFound(t *testing.T) {
	_, router := setupTestHandler(t, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/runs/unknown", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestHandleRunMatches(t *testing.T) {
	router := setupBoltHandler(t)

	w := postMatch(t, router, MatchRequest{
		Products: "{\"product_name\":\"Canon 5D\",\"manufacturer\":\"Canon\",\"model\":\"5D\"}\n" +
			`{"product_name":"Sony A55","manufacturer":"Sony","model":"A55"}`,
		Listings: "{\"title\":\"Canon EOS 5D Body\"}\n{\"title\":\"Nikon D90\"}",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	runID := w.Header().Get("X-Run-ID")
	posted := w.Body.String()

	req := httptest.NewRequest(http.MethodGet, "/runs/"+runID+"/matches", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w.Body.String() != posted {
		t.Errorf("stored output differs from response:\n%s\n%s", w.Body.String(), posted)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("expected ndjson content type, got %s", ct)
	}
}

func TestHandleRunMatchesNotStored(t *testing.T) {
	_, unstored := setupTestHandler(t, 1<<20)

	tests := []struct {
		name   string
		router http.Handler
	}{
		{"no result storage", unstored},
		{"unknown run", setupBoltHandler(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/runs/unknown/matches", nil)
			w := httptest.NewRecorder()
			tt.router.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Fatalf("expected status 404, got %d", w.Code)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Code != "RESULTS_NOT_STORED" {
				t.Errorf("expected RESULTS_NOT_STORED, got %s", resp.Code)
			}
		})
	}
}
