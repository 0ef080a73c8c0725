// Package executor walks a plan and records one outcome per worker call.
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
)

type Option func(*Executor)

// WithRequestIDs overrides how handshake request ids are minted.
func WithRequestIDs(next func() string) Option {
	return func(e *Executor) {
		if next != nil {
			e.newRequestID = next
		}
	}
}

type Executor struct {
	caller       contractx.WorkerCaller
	newRequestID func() string
}

var _ contractx.Executor = (*Executor)(nil)

func New(caller contractx.WorkerCaller, opts ...Option) (*Executor, error) {
	if caller == nil {
		return nil, fmt.Errorf("%w: worker caller is required", contractx.ErrValidation)
	}
	e := &Executor{
		caller:       caller,
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Execute runs the steps strictly in order. A failed step never stops the ones after it.
func (e *Executor) Execute(ctx context.Context, req contractx.ExecuteRequest) contractx.ExecuteResult {
	res := contractx.ExecuteResult{
		Outcomes:   contractx.NewOutcomes(),
		UsedAgents: make([]contractx.UsedAgentEntry, 0, len(req.Plan.Steps)),
	}
	nextFree := nextFreeStepID(req.Plan.Steps)

	for _, step := range req.Plan.Steps {
		input := ResolveInput(step.InputSource, req.Query, res.Outcomes)
		outcome := e.runStep(ctx, req, step, input)

		res.Outcomes.Set(step.StepID, outcome)
		res.UsedAgents = append(res.UsedAgents, contractx.UsedAgentEntry{
			Name:   step.Agent,
			Intent: step.Intent,
			Status: outcome.Status,
		})
		log.Info().
			Int("step_id", step.StepID).
			Str("agent", step.Agent).
			Str("intent", step.Intent).
			Str("status", string(outcome.Status)).
			Msg("plan step finished")

		if triggersDependencyResolution(step, outcome) {
			nextFree = e.cascadeDependencyResolution(ctx, req, &res, nextFree)
		}
	}
	return res
}

// nextFreeStepID is one past the highest id the plan itself uses.
func nextFreeStepID(steps []contractx.PlanStep) int {
	next := 0
	for _, step := range steps {
		if step.StepID >= next {
			next = step.StepID + 1
		}
	}
	return next
}

func (e *Executor) runStep(ctx context.Context, req contractx.ExecuteRequest, step contractx.PlanStep, input any) contractx.CallOutcome {
	requestID := e.newRequestID()
	if req.Registry == nil {
		return contractx.ErrorOutcome(requestID, step.Agent, contractx.KindConfigError, "registry is not available")
	}
	worker, err := req.Registry.Find(step.Agent)
	if err != nil {
		kind := contractx.KindConfigError
		if errors.Is(err, contractx.ErrUnknownAgent) {
			kind = contractx.KindUnknownAgent
		}
		return contractx.ErrorOutcome(requestID, step.Agent, kind, fmt.Sprintf("Agent %s not found in registry", step.Agent))
	}
	return e.dispatch(ctx, worker, contractx.HandshakeRequest{
		RequestID: requestID,
		AgentName: worker.Name,
		Intent:    step.Intent,
		Input:     input,
		Context:   req.Context,
	})
}

func (e *Executor) dispatch(ctx context.Context, worker contractx.WorkerDescriptor, hs contractx.HandshakeRequest) (out contractx.CallOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("agent", worker.Name).Msg("worker call panicked")
			out = contractx.ErrorOutcome(hs.RequestID, worker.Name, contractx.KindHandlerError, "worker call failed unexpectedly")
		}
	}()
	return e.caller.Call(ctx, worker, hs)
}
