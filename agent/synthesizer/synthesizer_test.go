package synthesizer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
	statex "github.com/tanpawarit/supervisor-agent/agent/state"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
	user  string
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	f.calls++
	f.user = userPrompt
	return f.reply, f.err
}

func outcomes(entries ...contractx.CallOutcome) *contractx.Outcomes {
	o := contractx.NewOutcomes()
	for i, e := range entries {
		o.Set(i, e)
	}
	return o
}

func TestSynthesizeEmptyIsOutOfScope(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{reply: "should not be used"}
	s := New(fake, "system")
	for _, q := range []string{"", "anything", "what's the weather today"} {
		if got := s.Synthesize(context.Background(), contractx.SynthesisRequest{Query: q, Outcomes: contractx.NewOutcomes()}); got != OutOfScopeMessage {
			t.Fatalf("Synthesize(%q) = %q", q, got)
		}
	}
	if got := s.Synthesize(context.Background(), contractx.SynthesisRequest{Query: "x"}); got != OutOfScopeMessage {
		t.Fatalf("nil outcomes should be out of scope, got %q", got)
	}
	if fake.calls != 0 {
		t.Fatalf("model must not be called, got %d calls", fake.calls)
	}
}

func TestSynthesizeAllFailed(t *testing.T) {
	t.Parallel()

	s := New(&fakeCompleter{reply: "nope"}, "system")
	got := s.Synthesize(context.Background(), contractx.SynthesisRequest{
		Query: "q",
		Outcomes: outcomes(
			contractx.ErrorOutcome("r0", "a", contractx.KindHTTPError, "HTTP 500"),
			contractx.ErrorOutcome("r1", "b", contractx.KindNetworkError, "timeout"),
		),
	})
	if got != TotalFailureMessage {
		t.Fatalf("unexpected answer: %q", got)
	}
}

func TestSynthesizeStitchesWithoutModel(t *testing.T) {
	t.Parallel()

	s := New(nil, "system")
	got := s.Synthesize(context.Background(), contractx.SynthesisRequest{
		Query: "q",
		Outcomes: outcomes(
			contractx.SuccessOutcome("r0", "a", contractx.Output{Result: "first"}),
			contractx.ErrorOutcome("r1", "b", contractx.KindHTTPError, "HTTP 500"),
			contractx.SuccessOutcome("r2", "c", contractx.Output{Result: map[string]any{"n": 2}}),
		),
	})
	if got != `first | {"n":2}` {
		t.Fatalf("unexpected stitched answer: %q", got)
	}
}

func TestStitchSkipsEmptyResults(t *testing.T) {
	t.Parallel()

	got := Stitch([]contractx.CallOutcome{
		contractx.SuccessOutcome("r0", "a", contractx.Output{Result: "first"}),
		contractx.SuccessOutcome("r1", "b", contractx.Output{Result: nil}),
		contractx.SuccessOutcome("r2", "c", contractx.Output{Result: "  "}),
		contractx.SuccessOutcome("r3", "d", contractx.Output{Result: "last"}),
	})
	if got != "first | last" {
		t.Fatalf("Stitch() = %q", got)
	}
}

func TestSynthesizeUsesModelAnswer(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{reply: "  Composed answer.  "}
	s := New(fake, "system")
	got := s.Synthesize(context.Background(), contractx.SynthesisRequest{
		Query: "q",
		Outcomes: outcomes(
			contractx.SuccessOutcome("r0", "a", contractx.Output{Result: "first", Details: "d"}),
			contractx.ErrorOutcome("r1", "b", contractx.KindHTTPError, "HTTP 500"),
		),
		History: []statex.Turn{{Role: statex.RoleUser, Content: "earlier"}},
	})
	if got != "Composed answer." {
		t.Fatalf("unexpected answer: %q", got)
	}

	var payload struct {
		UserQuery   string `json:"user_query"`
		ToolOutputs []struct {
			Agent   string  `json:"agent"`
			Status  string  `json:"status"`
			Result  any     `json:"result"`
			Details *string `json:"details"`
		} `json:"tool_outputs"`
		RecentHistory []map[string]string `json:"recent_history"`
	}
	if err := json.Unmarshal([]byte(fake.user), &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if len(payload.ToolOutputs) != 2 {
		t.Fatalf("failed steps must be included for context: %+v", payload.ToolOutputs)
	}
	if payload.ToolOutputs[1].Status != "error" || payload.ToolOutputs[1].Result != nil {
		t.Fatalf("unexpected failed finding: %+v", payload.ToolOutputs[1])
	}
	if payload.ToolOutputs[0].Details == nil || *payload.ToolOutputs[0].Details != "d" {
		t.Fatalf("details not forwarded: %+v", payload.ToolOutputs[0])
	}
	if len(payload.RecentHistory) != 1 {
		t.Fatalf("history not forwarded: %+v", payload.RecentHistory)
	}
}

func TestSynthesizeModelFailureFallsBack(t *testing.T) {
	t.Parallel()

	for _, fake := range []*fakeCompleter{
		{err: errors.New("unreachable")},
		{reply: "   "},
	} {
		s := New(fake, "system")
		got := s.Synthesize(context.Background(), contractx.SynthesisRequest{
			Query:    "q",
			Outcomes: outcomes(contractx.SuccessOutcome("r0", "a", contractx.Output{Result: "only"})),
		})
		if got != "only" {
			t.Fatalf("expected stitched fallback, got %q", got)
		}
	}
}

func TestSynthesizeEmptyResultsStayNonEmpty(t *testing.T) {
	t.Parallel()

	got := New(nil, "").Synthesize(context.Background(), contractx.SynthesisRequest{
		Query:    "q",
		Outcomes: outcomes(contractx.SuccessOutcome("r0", "a", contractx.Output{Result: nil})),
	})
	if got != EmptyResultMessage {
		t.Fatalf("unexpected answer: %q", got)
	}
}

const reviewJSON = `{
	"overall_score": 0.825,
	"summary": "Mostly clean.",
	"spelling_errors": [{"error": "teh", "suggestion": "the", "location": "para 1"}],
	"grammar_errors": [{"error": "they was", "suggestion": "they were", "type": "agreement"}],
	"compliance_issues": [
		{"severity": "high", "issue": "Missing disclaimer", "suggestion": "Add one"},
		{"severity": "medium", "issue": "Long sentence"},
		{"severity": "low", "issue": "Style"}
	]
}`

func TestSynthesizeRendersDocumentReview(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{reply: "model answer"}
	s := New(fake, "system")
	got := s.Synthesize(context.Background(), contractx.SynthesisRequest{
		Query: "review this",
		Outcomes: outcomes(
			contractx.SuccessOutcome("r0", "a", contractx.Output{Result: "other"}),
			contractx.SuccessOutcome("r1", "document_reviewer_agent", contractx.Output{Result: reviewJSON}),
		),
	})

	if fake.calls != 0 {
		t.Fatal("review rendering must bypass the model")
	}
	for _, want := range []string{
		"## Document Review Summary",
		"**Overall Score:** 82.5%",
		"Mostly clean.",
		"### Spelling Errors (1)",
		"- **teh** → the",
		"  - *Location: para 1*",
		"### Grammar Errors (1)",
		"  - *Type: agreement*",
		"### Compliance Issues (3)",
		"- 🔴 **HIGH**: Missing disclaimer",
		"  - *Suggestion: Add one*",
		"- 🟡 **MEDIUM**: Long sentence",
		"- 🟢 **LOW**: Style",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("rendered review missing %q:\n%s", want, got)
		}
	}
}

func TestAsReviewShape(t *testing.T) {
	t.Parallel()

	if _, ok := asReview(map[string]any{"overall_score": 1.0, "summary": "ok"}); !ok {
		t.Fatal("map payload should be detected")
	}
	if _, ok := asReview(json.RawMessage(`{"overall_score":1,"grammar_errors":[]}`)); !ok {
		t.Fatal("raw JSON payload should be detected")
	}
	if _, ok := asReview(`{"overall_score":1}`); ok {
		t.Fatal("score alone is not a review")
	}
	if _, ok := asReview(`{"summary":"x"}`); ok {
		t.Fatal("summary alone is not a review")
	}
	if _, ok := asReview("plain text"); ok {
		t.Fatal("plain text is not a review")
	}
	if _, ok := asReview(42); ok {
		t.Fatal("numbers are not reviews")
	}
}
