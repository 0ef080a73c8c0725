// Package synthesizer reduces step outcomes to one user-facing answer.
package synthesizer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
	"github.com/tanpawarit/supervisor-agent/agent/llm"
	statex "github.com/tanpawarit/supervisor-agent/agent/state"
)

const (
	OutOfScopeMessage   = "This information is not in my scope."
	TotalFailureMessage = "I could not complete your request because every tool failed. Please try again."
	EmptyResultMessage  = "Your request was processed, but the tools returned no details."

	stitchSeparator = " | "
)

type Synthesizer struct {
	completer    contractx.Completer
	systemPrompt string
}

var _ contractx.Synthesizer = (*Synthesizer)(nil)

func New(completer contractx.Completer, systemPrompt string) *Synthesizer {
	if completer == nil {
		completer = llm.Unavailable{}
	}
	return &Synthesizer{
		completer:    completer,
		systemPrompt: strings.TrimSpace(systemPrompt),
	}
}

// Synthesize always returns a non-empty answer.
func (s *Synthesizer) Synthesize(ctx context.Context, req contractx.SynthesisRequest) string {
	if req.Outcomes.Len() == 0 {
		return OutOfScopeMessage
	}
	successful := req.Outcomes.Successful()
	if len(successful) == 0 {
		return TotalFailureMessage
	}

	for _, o := range successful {
		if doc, ok := asReview(o.Output.Result); ok {
			return RenderReview(doc)
		}
	}

	stitched := Stitch(successful)
	answer, err := s.compose(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("answer synthesis fell back to stitched results")
		return nonEmpty(stitched)
	}
	return answer
}

// Stitch joins the non-empty successful results in order.
func Stitch(successful []contractx.CallOutcome) string {
	parts := make([]string, 0, len(successful))
	for _, o := range successful {
		if text := o.ResultText(); strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, stitchSeparator)
}

type toolFinding struct {
	Agent   string               `json:"agent"`
	Status  contractx.CallStatus `json:"status"`
	Result  any                  `json:"result"`
	Details *string              `json:"details"`
}

type historyEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type synthesisPayload struct {
	UserQuery     string         `json:"user_query"`
	ToolOutputs   []toolFinding  `json:"tool_outputs"`
	RecentHistory []historyEntry `json:"recent_history,omitempty"`
}

func (s *Synthesizer) compose(ctx context.Context, req contractx.SynthesisRequest) (answer string, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("answer synthesis panicked")
			answer, err = "", contractx.ErrModelInvoke
		}
	}()

	payload := synthesisPayload{
		UserQuery:     req.Query,
		ToolOutputs:   findings(req.Outcomes),
		RecentHistory: history(req.History),
	}
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}

	answer, err = s.completer.Complete(ctx, s.systemPrompt, string(raw))
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", contractx.ErrModelInvoke
	}
	return answer, nil
}

func findings(outcomes *contractx.Outcomes) []toolFinding {
	all := outcomes.All()
	out := make([]toolFinding, 0, len(all))
	for _, so := range all {
		f := toolFinding{Agent: so.Outcome.AgentName, Status: so.Outcome.Status}
		if so.Outcome.Output != nil {
			f.Result = so.Outcome.Output.Result
			if d := so.Outcome.Output.Details; d != "" {
				f.Details = &d
			}
		}
		out = append(out, f)
	}
	return out
}

func history(turns []statex.Turn) []historyEntry {
	if len(turns) == 0 {
		return nil
	}
	out := make([]historyEntry, 0, len(turns))
	for _, t := range turns {
		out = append(out, historyEntry{Role: t.Role, Content: t.Content})
	}
	return out
}

func nonEmpty(answer string) string {
	if strings.TrimSpace(strings.ReplaceAll(answer, stitchSeparator, "")) == "" {
		return EmptyResultMessage
	}
	return answer
}
