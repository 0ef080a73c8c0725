package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
	openrouterx "github.com/tanpawarit/supervisor-agent/pkg/openrouter"
)

type fakeChatModel struct {
	reply *schema.Message
	err   error
	seen  []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.seen = input
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func TestGraphCompleterKeepsLiteralBraces(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{reply: &schema.Message{Role: schema.Assistant, Content: `{"steps":[]}`}}
	c, err := NewGraphCompleter(context.Background(), fake, "test.completion")
	if err != nil {
		t.Fatalf("NewGraphCompleter() error = %v", err)
	}

	system := `Reply with {"steps": [...]}`
	out, err := c.Complete(context.Background(), system, `{"user_query":"hi"}`)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != `{"steps":[]}` {
		t.Fatalf("unexpected reply: %q", out)
	}
	if len(fake.seen) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(fake.seen))
	}
	if fake.seen[0].Content != system {
		t.Fatalf("system prompt mangled: %q", fake.seen[0].Content)
	}
	if fake.seen[1].Content != `{"user_query":"hi"}` {
		t.Fatalf("user prompt mangled: %q", fake.seen[1].Content)
	}
}

func TestGraphCompleterErrors(t *testing.T) {
	t.Parallel()

	failing, err := NewGraphCompleter(context.Background(), &fakeChatModel{err: errors.New("boom")}, "test.failing")
	if err != nil {
		t.Fatalf("NewGraphCompleter() error = %v", err)
	}
	if _, err := failing.Complete(context.Background(), "s", "u"); !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}

	empty, err := NewGraphCompleter(context.Background(), &fakeChatModel{reply: &schema.Message{Content: "  "}}, "test.empty")
	if err != nil {
		t.Fatalf("NewGraphCompleter() error = %v", err)
	}
	if _, err := empty.Complete(context.Background(), "s", "u"); !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke for empty reply, got %v", err)
	}

	if _, err := NewGraphCompleter(context.Background(), nil, "test.nil"); !errors.Is(err, contractx.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestChatCompletionCompleter(t *testing.T) {
	t.Parallel()

	type seenRequest struct {
		model    string
		messages int
	}
	seen := make(chan seenRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var body struct {
			Model    string            `json:"model"`
			Messages []json.RawMessage `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		seen <- seenRequest{model: body.Model, messages: len(body.Messages)}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "test/model",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Here you go."}}]
		}`))
	}))
	defer srv.Close()

	cfg := openrouterx.Config{BaseURL: srv.URL, APIKey: "test-key", Model: "test/model"}
	c, err := NewChatCompletionCompleter(openrouterx.NewClient(cfg), cfg)
	if err != nil {
		t.Fatalf("NewChatCompletionCompleter() error = %v", err)
	}

	out, err := c.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != "Here you go." {
		t.Fatalf("unexpected reply: %q", out)
	}
	req := <-seen
	if req.model != "test/model" || req.messages != 2 {
		t.Fatalf("unexpected request: model=%q messages=%d", req.model, req.messages)
	}
}

func TestNewChatCompletionCompleterRequiresClient(t *testing.T) {
	t.Parallel()

	_, err := NewChatCompletionCompleter(nil, openrouterx.Config{Model: "m"})
	if !errors.Is(err, contractx.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestNewCompletersWithoutKey(t *testing.T) {
	t.Parallel()

	c := NewCompleters(context.Background(), Config{Model: "m"})
	if _, err := c.Planner.Complete(context.Background(), "s", "u"); !errors.Is(err, contractx.ErrModelUnavailable) {
		t.Fatalf("planner: expected ErrModelUnavailable, got %v", err)
	}
	if _, err := c.Synthesizer.Complete(context.Background(), "s", "u"); !errors.Is(err, contractx.ErrModelUnavailable) {
		t.Fatalf("synthesizer: expected ErrModelUnavailable, got %v", err)
	}
}

func TestOpenRouterForRoles(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:                 " key ",
		Model:                  "base/model",
		Temperature:            0.7,
		PlannerModel:           "planner/model",
		PlannerTemperature:     0,
		SynthesizerTemperature: -1,
		MaxCompletionToken:     500,
	}

	planner := cfg.OpenRouterFor(RolePlanner)
	if planner.Model != "planner/model" || planner.Temperature != 0 {
		t.Fatalf("unexpected planner config: %+v", planner)
	}
	if planner.APIKey != "key" {
		t.Fatalf("api key not trimmed: %q", planner.APIKey)
	}

	synth := cfg.OpenRouterFor(RoleSynthesizer)
	if synth.Model != "base/model" || synth.Temperature != 0.7 {
		t.Fatalf("unexpected synthesizer config: %+v", synth)
	}
	if synth.MaxCompletionToken == nil || *synth.MaxCompletionToken != 500 {
		t.Fatalf("unexpected max tokens: %v", synth.MaxCompletionToken)
	}
}
