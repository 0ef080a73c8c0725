package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
)

type rawStep struct {
	StepID      *int    `json:"step_id"`
	Agent       *string `json:"agent"`
	Intent      *string `json:"intent"`
	InputSource *string `json:"input_source"`
}

func decodeStep(raw json.RawMessage) (contractx.PlanStep, error) {
	var s rawStep
	if err := json.Unmarshal(raw, &s); err != nil {
		return contractx.PlanStep{}, fmt.Errorf("%w: %v", contractx.ErrSchemaViolation, err)
	}
	switch {
	case s.StepID == nil:
		return contractx.PlanStep{}, fmt.Errorf("%w: step_id is required", contractx.ErrSchemaViolation)
	case s.Agent == nil || strings.TrimSpace(*s.Agent) == "":
		return contractx.PlanStep{}, fmt.Errorf("%w: agent is required", contractx.ErrSchemaViolation)
	case s.Intent == nil || strings.TrimSpace(*s.Intent) == "":
		return contractx.PlanStep{}, fmt.Errorf("%w: intent is required", contractx.ErrSchemaViolation)
	case s.InputSource == nil || strings.TrimSpace(*s.InputSource) == "":
		return contractx.PlanStep{}, fmt.Errorf("%w: input_source is required", contractx.ErrSchemaViolation)
	}
	return contractx.PlanStep{
		StepID:      *s.StepID,
		Agent:       strings.TrimSpace(*s.Agent),
		Intent:      strings.TrimSpace(*s.Intent),
		InputSource: strings.TrimSpace(*s.InputSource),
	}, nil
}

func checkStep(step contractx.PlanStep, reg contractx.Registry) error {
	worker, err := reg.Find(step.Agent)
	if err != nil {
		return err
	}
	if !worker.AllowsIntent(step.Intent) {
		return fmt.Errorf("%w: agent=%s intent=%s allowed=%v", contractx.ErrIntentMismatch, step.Agent, step.Intent, worker.Intents)
	}
	return nil
}

// ValidateSteps keeps the steps that decode into a PlanStep and name a registered
// (agent, intent) pair under an id not used by an earlier step. Rejected steps are
// logged and dropped; order is preserved.
func ValidateSteps(raw []json.RawMessage, reg contractx.Registry) []contractx.PlanStep {
	valid := make([]contractx.PlanStep, 0, len(raw))
	if reg == nil {
		return valid
	}
	seen := make(map[int]struct{}, len(raw))
	for i, r := range raw {
		step, err := decodeStep(r)
		if err == nil {
			if _, dup := seen[step.StepID]; dup {
				err = fmt.Errorf("%w: duplicate step_id %d", contractx.ErrSchemaViolation, step.StepID)
			}
		}
		if err == nil {
			err = checkStep(step, reg)
		}
		if err != nil {
			log.Warn().
				Err(err).
				Int("index", i).
				Str("reason", string(rejectionKind(err))).
				Msg("planner step rejected")
			continue
		}
		seen[step.StepID] = struct{}{}
		valid = append(valid, step)
	}
	return valid
}

func rejectionKind(err error) contractx.ErrorKind {
	switch {
	case errors.Is(err, contractx.ErrUnknownAgent):
		return contractx.KindUnknownAgent
	case errors.Is(err, contractx.ErrIntentMismatch):
		return contractx.KindIntentMismatch
	default:
		return contractx.KindSchemaError
	}
}
