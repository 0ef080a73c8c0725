package supervisornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
)

func SynthesizeAnswer(ctx context.Context, in *GraphState, synthesizer contractx.Synthesizer) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Answer = synthesizer.Synthesize(ctx, contractx.SynthesisRequest{
		Query:    in.Query,
		Outcomes: in.Result.Outcomes,
		History:  in.History,
	})
	return in, nil
}
