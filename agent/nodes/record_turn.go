package supervisornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
	statex "github.com/tanpawarit/supervisor-agent/agent/state"
)

// RecordTurn appends the query and the answer. Failures are logged only.
func RecordTurn(ctx context.Context, in *GraphState, history statex.ConversationLog) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if history == nil {
		return in, nil
	}

	turns := []statex.Turn{
		{Role: statex.RoleUser, Content: in.Query, CreatedAt: in.Now},
		{Role: statex.RoleAssistant, Content: in.Answer, CreatedAt: in.Now},
	}
	for _, turn := range turns {
		if err := history.Append(ctx, in.ConversationID, turn); err != nil {
			log.Warn().
				Err(err).
				Str("conversation_id", in.ConversationID).
				Str("role", turn.Role).
				Msg("conversation turn not recorded")
			return in, nil
		}
	}
	return in, nil
}
