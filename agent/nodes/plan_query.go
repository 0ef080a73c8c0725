package supervisornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
)

func PlanQuery(ctx context.Context, in *GraphState, planner contractx.Planner) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Plan = planner.Plan(ctx, contractx.PlanRequest{
		Query:    in.Query,
		Registry: in.Registry,
		History:  in.History,
	})
	return in, nil
}
