package taskboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListTasksEnvelope(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		_, _ = w.Write([]byte(`{"status":"success","tasks":[{"task_id":"T1","task_name":"Design schema"},{"_id":"abc","title":"Write docs"},"junk"]}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	list, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if list.Count != 2 || list.Status != "success" {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list.Tasks[1].ID() != "abc" || list.Tasks[1].Name() != "Write docs" {
		t.Fatalf("unexpected second task: %v", list.Tasks[1])
	}
}

func TestListTasksBareList(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":7}]`))
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	list, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if list.Count != 1 || list.Status != nil {
		t.Fatalf("unexpected list: %+v", list)
	}
	if got := list.Tasks[0].Name(); got != "Task 7" {
		t.Fatalf("Name() = %q, want generated name", got)
	}
}

func TestListTasksUpstreamFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	if _, err := c.ListTasks(context.Background()); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("  "); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestHumanizeDependencies(t *testing.T) {
	t.Parallel()

	tasks := []Task{
		{"task_id": "T1", "task_name": "Design schema"},
		{"task_id": "T2", "task_name": "Build API"},
		{"task_id": "T3", "title": "Ship"},
	}
	result := map[string]any{
		"execution_order": []any{"T1", "T2", "T2", "T9", "T3"},
		"dependencies": map[string]any{
			"T3": []any{"T2"},
			"T2": []any{"T1"},
			"T1": []any{},
		},
	}

	want := "Execution order tasks:\n- Design schema\n- Build API\n- Ship\nTasks with dependencies:\n- Build API\n- Ship"
	if got := HumanizeDependencies(result, tasks); got != want {
		t.Fatalf("HumanizeDependencies() =\n%s\nwant\n%s", got, want)
	}
}

func TestHumanizeDependenciesNothingResolved(t *testing.T) {
	t.Parallel()

	got := HumanizeDependencies(map[string]any{"execution_order": []any{"X"}}, []Task{{"task_id": "T1"}})
	if got != NoNamesResolved {
		t.Fatalf("unexpected output: %q", got)
	}
}
