// Package planner turns a query into an ordered execution plan.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
	"github.com/tanpawarit/supervisor-agent/agent/llm"
	statex "github.com/tanpawarit/supervisor-agent/agent/state"
)

type Option func(*Planner)

func WithRules(rules []Rule) Option {
	return func(p *Planner) {
		p.rules = rules
	}
}

// Planner routes by keyword rules first and asks the model only when none match.
type Planner struct {
	rules        []Rule
	completer    contractx.Completer
	systemPrompt string
}

var _ contractx.Planner = (*Planner)(nil)

func New(completer contractx.Completer, systemPrompt string, opts ...Option) *Planner {
	if completer == nil {
		completer = llm.Unavailable{}
	}
	p := &Planner{
		rules:        DefaultRules(),
		completer:    completer,
		systemPrompt: strings.TrimSpace(systemPrompt),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Planner) Plan(ctx context.Context, req contractx.PlanRequest) contractx.Plan {
	if rule, ok := MatchRule(p.rules, req.Query); ok {
		log.Debug().Str("rule", rule.Name).Msg("planner heuristic matched")
		return contractx.Plan{Steps: append([]contractx.PlanStep(nil), rule.Steps...)}
	}
	if req.Registry == nil {
		return contractx.Plan{}
	}

	steps, err := p.planWithModel(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("planner model fallback failed, treating query as out of scope")
		return contractx.Plan{}
	}
	return contractx.Plan{Steps: steps}
}

type agentSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Intents     []string `json:"intents"`
}

type historyEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type plannerPayload struct {
	UserQuery       string         `json:"user_query"`
	AvailableAgents []agentSummary `json:"available_agents"`
	RecentHistory   []historyEntry `json:"recent_history,omitempty"`
}

type plannerReply struct {
	Steps []json.RawMessage `json:"steps"`
}

func (p *Planner) planWithModel(ctx context.Context, req contractx.PlanRequest) ([]contractx.PlanStep, error) {
	workers := req.Registry.List()
	payload := plannerPayload{
		UserQuery:       req.Query,
		AvailableAgents: make([]agentSummary, 0, len(workers)),
		RecentHistory:   summarizeHistory(req.History),
	}
	for _, w := range workers {
		payload.AvailableAgents = append(payload.AvailableAgents, agentSummary{
			Name:        w.Name,
			Description: w.Description,
			Intents:     w.Intents,
		})
	}
	userPrompt, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: marshal planner payload: %v", contractx.ErrValidation, err)
	}

	content, err := p.completer.Complete(ctx, p.buildSystemPrompt(workers), string(userPrompt))
	if err != nil {
		return nil, err
	}
	log.Debug().Str("content", content).Msg("planner model reply")

	var reply plannerReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &reply); err != nil {
		return nil, fmt.Errorf("%w: planner reply is not a steps object: %v", contractx.ErrSchemaViolation, err)
	}
	return ValidateSteps(reply.Steps, req.Registry), nil
}

func (p *Planner) buildSystemPrompt(workers []contractx.WorkerDescriptor) string {
	var b strings.Builder
	b.WriteString(p.systemPrompt)
	for _, w := range workers {
		fmt.Fprintf(&b, "\n- %s: %s (intents: %s)", w.Name, w.Description, strings.Join(w.Intents, ", "))
	}
	return b.String()
}

func summarizeHistory(turns []statex.Turn) []historyEntry {
	if len(turns) == 0 {
		return nil
	}
	out := make([]historyEntry, 0, len(turns))
	for _, t := range turns {
		out = append(out, historyEntry{Role: t.Role, Content: t.Content})
	}
	return out
}
