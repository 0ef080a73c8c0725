package supervisornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
)

func ExecutePlan(ctx context.Context, in *GraphState, executor contractx.Executor) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Result = executor.Execute(ctx, contractx.ExecuteRequest{
		Query:    in.Query,
		Plan:     in.Plan,
		Registry: in.Registry,
		Context:  in.Context,
	})
	if in.Result.Outcomes == nil {
		in.Result.Outcomes = contractx.NewOutcomes()
	}
	return in, nil
}
