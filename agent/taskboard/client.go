// Package taskboard reads the shared task store that task workers write to.
package taskboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 4 << 20
)

var (
	ErrNotConfigured = errors.New("taskboard url is not configured")
	ErrUpstream      = errors.New("taskboard request failed")
)

type Task map[string]any

// ID returns task_id, _id or id, whichever is set first.
func (t Task) ID() string {
	for _, key := range []string{"task_id", "_id", "id"} {
		if s := scalar(t[key]); s != "" {
			return s
		}
	}
	return ""
}

// Name returns task_name, title, or a generated "Task <id>".
func (t Task) Name() string {
	for _, key := range []string{"task_name", "title"} {
		if s := scalar(t[key]); s != "" {
			return s
		}
	}
	return "Task " + t.ID()
}

type TaskList struct {
	Tasks  []Task `json:"tasks"`
	Count  int    `json:"count"`
	Status any    `json:"status"`
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string, opts ...Option) (*Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrNotConfigured
	}
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListTasks accepts either {"tasks": [...], "status": ...} or a bare list.
func (c *Client) ListTasks(ctx context.Context) (TaskList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return TaskList{}, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TaskList{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return TaskList{}, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return TaskList{}, fmt.Errorf("%w: status=%d", ErrUpstream, resp.StatusCode)
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return TaskList{}, fmt.Errorf("%w: decode body: %v", ErrUpstream, err)
	}

	var out TaskList
	var items any
	switch v := raw.(type) {
	case map[string]any:
		items = v["tasks"]
		out.Status = v["status"]
	case []any:
		items = v
	}
	if list, ok := items.([]any); ok {
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				out.Tasks = append(out.Tasks, Task(m))
			}
		}
	}
	if out.Tasks == nil {
		out.Tasks = []Task{}
	}
	out.Count = len(out.Tasks)
	return out, nil
}

func scalar(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprint(s)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}
