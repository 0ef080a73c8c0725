package executor

import (
	"context"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
	registryx "github.com/tanpawarit/supervisor-agent/agent/registry"
)

func triggersDependencyResolution(step contractx.PlanStep, outcome contractx.CallOutcome) bool {
	return step.Agent == registryx.AgentTaskCreation &&
		step.Intent == registryx.IntentCreateTask &&
		outcome.Succeeded()
}

// cascadeDependencyResolution asks the dependency worker to re-read the task store
// after tasks were created. It is best effort: nothing it does can change the
// triggering step's outcome, and a missing dependency worker is skipped.
// The cascaded outcome never reuses an id the plan has claimed; the returned
// value is the next id still free.
func (e *Executor) cascadeDependencyResolution(ctx context.Context, req contractx.ExecuteRequest, res *contractx.ExecuteResult, nextFree int) (next int) {
	next = nextFree
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("dependency cascade aborted")
		}
	}()

	if req.Registry == nil {
		return next
	}
	worker, err := req.Registry.Find(registryx.AgentTaskDependency)
	if err != nil {
		log.Warn().Err(err).Msg("dependency worker not registered, skipping cascade")
		return next
	}

	outcome := e.dispatch(ctx, worker, contractx.HandshakeRequest{
		RequestID: e.newRequestID(),
		AgentName: worker.Name,
		Intent:    registryx.IntentResolveDependencies,
		Input:     contractx.TriggerInput{Trigger: contractx.TriggerDatabaseUpdate},
		Context:   req.Context,
	})

	stepID := max(res.Outcomes.NextID(), nextFree)
	next = stepID + 1
	res.Outcomes.Set(stepID, outcome)
	res.UsedAgents = append(res.UsedAgents, contractx.UsedAgentEntry{
		Name:   worker.Name,
		Intent: registryx.IntentResolveDependencies,
		Status: outcome.Status,
	})

	evt := log.Info()
	if !outcome.Succeeded() {
		evt = log.Warn()
	}
	evt.Int("step_id", stepID).Str("status", string(outcome.Status)).Msg("dependency cascade finished")
	return next
}
