package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
	"github.com/tanpawarit/supervisor-agent/agent/taskboard"
)

type fakeHandler struct {
	resp   contractx.QueryResponse
	err    error
	agents []contractx.WorkerDescriptor
	panics bool
	got    contractx.QueryRequest
}

func (f *fakeHandler) HandleQuery(ctx context.Context, req contractx.QueryRequest) (contractx.QueryResponse, error) {
	if f.panics {
		panic("boom")
	}
	f.got = req
	return f.resp, f.err
}

func (f *fakeHandler) Agents() ([]contractx.WorkerDescriptor, error) {
	return f.agents, nil
}

type fakeBoard struct {
	list taskboard.TaskList
	err  error
}

func (f *fakeBoard) ListTasks(ctx context.Context) (taskboard.TaskList, error) {
	return f.list, f.err
}

func newTestServer(t *testing.T, h QueryHandler, opts ...Option) *Server {
	t.Helper()
	s, err := New(h, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestQuerySuccess(t *testing.T) {
	t.Parallel()

	outcomes := contractx.NewOutcomes()
	outcomes.Set(0, contractx.SuccessOutcome("r0", "email_priority_agent", contractx.Output{Result: "done"}))
	h := &fakeHandler{resp: contractx.QueryResponse{
		Answer:              "done",
		UsedAgents:          []contractx.UsedAgentEntry{{Name: "email_priority_agent", Intent: "email.prioritize", Status: contractx.StatusSuccess}},
		IntermediateResults: outcomes,
		ConversationID:      "c1",
	}}
	s := newTestServer(t, h)

	rec := do(s, http.MethodPost, "/api/query", `{"query":"sort my inbox","user_id":"u1","file_uploads":[{"base64_data":"aGk=","filename":"a.txt","mime_type":"text/plain"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if h.got.UserID != "u1" || len(h.got.FileUploads) != 1 || h.got.FileUploads[0].Filename != "a.txt" {
		t.Fatalf("request not decoded: %+v", h.got)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["answer"] != "done" || body["conversation_id"] != "c1" {
		t.Fatalf("unexpected body: %v", body)
	}
	if v, ok := body["error"]; !ok || v != nil {
		t.Fatalf("error must be present and null: %v", body)
	}
	results, _ := body["intermediate_results"].(map[string]any)
	if _, ok := results["step_0"]; !ok {
		t.Fatalf("missing step_0: %v", body["intermediate_results"])
	}
}

func TestQueryEmpty(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeHandler{err: contractx.ErrEmptyQuery})
	rec := do(s, http.MethodPost, "/api/query", `{"query":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Query cannot be empty") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestQueryBadJSON(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeHandler{})
	if rec := do(s, http.MethodPost, "/api/query", `{"query":`); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestQueryInternalErrorHidesDetail(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeHandler{err: errors.New("load registry: open /etc/secret: permission denied")})
	rec := do(s, http.MethodPost, "/api/query", `{"query":"hi"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), string(contractx.KindHandlerError)) {
		t.Fatalf("expected handler_error tag: %s", rec.Body.String())
	}
}

func TestQueryPanicRecovered(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeHandler{panics: true})
	rec := do(s, http.MethodPost, "/api/query", `{"query":"hi"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Fatalf("panic value leaked: %s", rec.Body.String())
	}
}

func TestAgents(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeHandler{agents: []contractx.WorkerDescriptor{{Name: "a", Intents: []string{"x"}, Transport: contractx.TransportHTTP}}})
	rec := do(s, http.MethodGet, "/api/agents", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var agents []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &agents); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(agents) != 1 || agents[0]["name"] != "a" || agents[0]["timeout_ms"] != float64(15000) {
		t.Fatalf("unexpected agents: %v", agents)
	}
}

func TestTasks(t *testing.T) {
	t.Parallel()

	notConfigured := newTestServer(t, &fakeHandler{})
	if rec := do(notConfigured, http.MethodGet, "/api/tasks", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status without board = %d", rec.Code)
	}

	failing := newTestServer(t, &fakeHandler{}, WithTaskBoard(&fakeBoard{err: taskboard.ErrUpstream}))
	if rec := do(failing, http.MethodGet, "/api/tasks", ""); rec.Code != http.StatusBadGateway {
		t.Fatalf("status with failing board = %d", rec.Code)
	}

	ok := newTestServer(t, &fakeHandler{}, WithTaskBoard(&fakeBoard{list: taskboard.TaskList{
		Tasks:  []taskboard.Task{{"task_id": "T1"}},
		Count:  1,
		Status: "success",
	}}))
	rec := do(ok, http.MethodGet, "/api/tasks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["count"] != float64(1) || body["status"] != "success" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := do(newTestServer(t, &fakeHandler{}), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Supervisor is running") {
		t.Fatalf("unexpected health response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	rec := do(newTestServer(t, &fakeHandler{}), http.MethodGet, "/api/query", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}
