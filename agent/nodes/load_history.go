package supervisornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
	statex "github.com/tanpawarit/supervisor-agent/agent/state"
)

// LoadHistory never fails the request: an unreadable log means planning without history.
func LoadHistory(
	ctx context.Context,
	in *GraphState,
	history statex.ConversationLog,
	limit int,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if history == nil || limit <= 0 {
		return in, nil
	}

	turns, err := history.History(ctx, in.ConversationID, limit)
	if err != nil {
		log.Warn().Err(err).Str("conversation_id", in.ConversationID).Msg("conversation history unavailable")
		return in, nil
	}
	in.History = turns
	return in, nil
}
