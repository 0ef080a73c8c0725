package contract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	statex "github.com/tanpawarit/supervisor-agent/agent/state"
)

// InputUserQuery tells the executor to hand the original query to the worker.
const InputUserQuery = "user_query"

// StepInput builds the input_source reference to a prior step's result.
func StepInput(stepID int) string {
	return "step:" + strconv.Itoa(stepID) + ".output.result"
}

type TransportKind string

const TransportHTTP TransportKind = "http"

const DefaultWorkerTimeout = 15 * time.Second

// WorkerDescriptor is one entry of the worker catalog.
type WorkerDescriptor struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Intents     []string      `json:"intents"`
	Transport   TransportKind `json:"type"`
	Endpoint    string        `json:"endpoint,omitempty"`
	Healthcheck string        `json:"healthcheck,omitempty"`
	Timeout     time.Duration `json:"timeout_ms"`
}

func (w WorkerDescriptor) AllowsIntent(intent string) bool {
	for _, allowed := range w.Intents {
		if allowed == intent {
			return true
		}
	}
	return false
}

// EffectiveTimeout falls back to DefaultWorkerTimeout when none is configured.
func (w WorkerDescriptor) EffectiveTimeout() time.Duration {
	if w.Timeout <= 0 {
		return DefaultWorkerTimeout
	}
	return w.Timeout
}

func (w WorkerDescriptor) MarshalJSON() ([]byte, error) {
	type alias WorkerDescriptor
	return json.Marshal(struct {
		alias
		Timeout int64 `json:"timeout_ms"`
	}{
		alias:   alias(w),
		Timeout: w.EffectiveTimeout().Milliseconds(),
	})
}

type PlanStep struct {
	StepID      int    `json:"step_id"`
	Agent       string `json:"agent"`
	Intent      string `json:"intent"`
	InputSource string `json:"input_source"`
}

// Plan is an ordered list of steps. An empty plan means the query is out of scope.
type Plan struct {
	Steps []PlanStep `json:"steps"`
}

func (p Plan) OutOfScope() bool {
	return len(p.Steps) == 0
}

type CallStatus string

const (
	StatusSuccess CallStatus = "success"
	StatusError   CallStatus = "error"
)

type Output struct {
	Result     any      `json:"result"`
	Confidence *float64 `json:"confidence,omitempty"`
	Details    string   `json:"details,omitempty"`
}

type CallError struct {
	Type    ErrorKind `json:"type"`
	Message string    `json:"message"`
}

// CallOutcome is both the worker handshake response and the recorded result of one step.
type CallOutcome struct {
	RequestID string     `json:"request_id"`
	AgentName string     `json:"agent_name"`
	Status    CallStatus `json:"status"`
	Output    *Output    `json:"output,omitempty"`
	Error     *CallError `json:"error,omitempty"`
}

func SuccessOutcome(requestID, agentName string, out Output) CallOutcome {
	return CallOutcome{
		RequestID: requestID,
		AgentName: agentName,
		Status:    StatusSuccess,
		Output:    &out,
	}
}

func ErrorOutcome(requestID, agentName string, kind ErrorKind, message string) CallOutcome {
	return CallOutcome{
		RequestID: requestID,
		AgentName: agentName,
		Status:    StatusError,
		Error:     &CallError{Type: kind, Message: message},
	}
}

func (o CallOutcome) Succeeded() bool {
	return o.Status == StatusSuccess && o.Output != nil && o.Error == nil
}

// Normalize enforces status == success <=> output present and error absent.
func (o CallOutcome) Normalize() CallOutcome {
	switch o.Status {
	case StatusSuccess:
		if o.Output == nil {
			return ErrorOutcome(o.RequestID, o.AgentName, KindSchemaError, "worker reported success without output")
		}
		o.Error = nil
		return o
	case StatusError:
		o.Output = nil
		if o.Error == nil {
			o.Error = &CallError{Type: KindHandlerError, Message: "worker reported an error without details"}
		}
		return o
	default:
		return ErrorOutcome(o.RequestID, o.AgentName, KindSchemaError, fmt.Sprintf("unknown worker status %q", o.Status))
	}
}

// ResultText stringifies the output result. Strings pass through, anything else is JSON.
func (o CallOutcome) ResultText() string {
	if o.Output == nil {
		return ""
	}
	return Stringify(o.Output.Result)
}

func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.RawMessage:
		return strings.TrimSpace(string(val))
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}

type UsedAgentEntry struct {
	Name   string     `json:"name"`
	Intent string     `json:"intent"`
	Status CallStatus `json:"status"`
}

type FileUpload struct {
	Base64Data string `json:"base64_data"`
	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type"`
}

// RequestContext travels with every handshake of one request.
type RequestContext struct {
	UserID         string       `json:"user_id"`
	ConversationID string       `json:"conversation_id"`
	Timestamp      string       `json:"timestamp"`
	FileUploads    []FileUpload `json:"file_uploads,omitempty"`
}

// TriggerDatabaseUpdate is sent to the dependency worker instead of text input.
const TriggerDatabaseUpdate = "database_update"

type TriggerInput struct {
	Trigger string `json:"trigger"`
}

type HandshakeRequest struct {
	RequestID string         `json:"request_id"`
	AgentName string         `json:"agent_name"`
	Intent    string         `json:"intent"`
	Input     any            `json:"input"`
	Context   RequestContext `json:"context"`
}

type PlanRequest struct {
	Query    string
	Registry Registry
	History  []statex.Turn
}

type ExecuteRequest struct {
	Query    string
	Plan     Plan
	Registry Registry
	Context  RequestContext
}

type ExecuteResult struct {
	Outcomes   *Outcomes
	UsedAgents []UsedAgentEntry
}

type SynthesisRequest struct {
	Query    string
	Outcomes *Outcomes
	History  []statex.Turn
}

type QueryRequest struct {
	Query          string       `json:"query"`
	UserID         string       `json:"user_id,omitempty"`
	ConversationID string       `json:"conversation_id,omitempty"`
	FileUploads    []FileUpload `json:"file_uploads,omitempty"`
}

type QueryResponse struct {
	Answer              string           `json:"answer"`
	UsedAgents          []UsedAgentEntry `json:"used_agents"`
	IntermediateResults *Outcomes        `json:"intermediate_results"`
	ConversationID      string           `json:"conversation_id"`
	Error               *string          `json:"error"`
}
