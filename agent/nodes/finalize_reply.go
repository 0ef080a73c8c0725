package supervisornode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if strings.TrimSpace(in.Answer) == "" {
		return GraphOutput{}, fmt.Errorf("%w: synthesizer returned empty answer", contractx.ErrValidation)
	}

	outcomes := in.Result.Outcomes
	if outcomes == nil {
		outcomes = contractx.NewOutcomes()
	}
	used := in.Result.UsedAgents
	if used == nil {
		used = []contractx.UsedAgentEntry{}
	}
	return GraphOutput{Response: contractx.QueryResponse{
		Answer:              in.Answer,
		UsedAgents:          used,
		IntermediateResults: outcomes,
		ConversationID:      in.ConversationID,
	}}, nil
}
