package supervisornode

import (
	"strings"
	"time"

	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
	statex "github.com/tanpawarit/supervisor-agent/agent/state"
)

const AnonymousUser = "anonymous"

type GraphInput struct {
	Request contractx.QueryRequest
}

type GraphOutput struct {
	Response contractx.QueryResponse
}

// GraphState is carried through every node of one request.
type GraphState struct {
	Query          string
	ConversationID string
	Context        contractx.RequestContext
	Now            time.Time

	History  []statex.Turn
	Registry contractx.Registry
	Plan     contractx.Plan
	Result   contractx.ExecuteResult
	Answer   string
}

func ValidateRequest(in GraphInput, nowFn func() time.Time, newID func() string) (*GraphState, error) {
	query := in.Request.Query
	if strings.TrimSpace(query) == "" {
		return nil, contractx.ErrEmptyQuery
	}

	conversationID := strings.TrimSpace(in.Request.ConversationID)
	if conversationID == "" {
		conversationID = newID()
	}
	userID := strings.TrimSpace(in.Request.UserID)
	if userID == "" {
		userID = AnonymousUser
	}

	now := nowFn().UTC()
	return &GraphState{
		Query:          query,
		ConversationID: conversationID,
		Now:            now,
		Context: contractx.RequestContext{
			UserID:         userID,
			ConversationID: conversationID,
			Timestamp:      now.Format(time.RFC3339),
			FileUploads:    in.Request.FileUploads,
		},
	}, nil
}
