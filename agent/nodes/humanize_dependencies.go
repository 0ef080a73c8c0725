package supervisornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
	registryx "github.com/tanpawarit/supervisor-agent/agent/registry"
	"github.com/tanpawarit/supervisor-agent/agent/taskboard"
)

type TaskLister interface {
	ListTasks(ctx context.Context) (taskboard.TaskList, error)
}

// HumanizeDependencies replaces raw dependency-worker results with task names.
// Without a task board, or when it cannot be read, outcomes stay untouched.
func HumanizeDependencies(ctx context.Context, in *GraphState, board TaskLister) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if board == nil || in.Result.Outcomes.Len() == 0 {
		return in, nil
	}

	type target struct {
		stepID  int
		outcome contractx.CallOutcome
		result  map[string]any
	}
	var targets []target
	for _, so := range in.Result.Outcomes.All() {
		o := so.Outcome
		if o.AgentName != registryx.AgentTaskDependency || !o.Succeeded() {
			continue
		}
		if result, ok := o.Output.Result.(map[string]any); ok {
			targets = append(targets, target{stepID: so.StepID, outcome: o, result: result})
		}
	}
	if len(targets) == 0 {
		return in, nil
	}

	list, err := board.ListTasks(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("task board unavailable, keeping raw dependency results")
		return in, nil
	}

	for _, t := range targets {
		out := *t.outcome.Output
		out.Result = taskboard.HumanizeDependencies(t.result, list.Tasks)
		t.outcome.Output = &out
		in.Result.Outcomes.Set(t.stepID, t.outcome)
	}
	return in, nil
}
