package contract

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Outcomes maps step ids to call outcomes and remembers insertion order.
type Outcomes struct {
	order []int
	byID  map[int]CallOutcome
}

type StepOutcome struct {
	StepID  int
	Outcome CallOutcome
}

func NewOutcomes() *Outcomes {
	return &Outcomes{byID: make(map[int]CallOutcome, 4)}
}

// Set stores an outcome. Re-using an id replaces the value but keeps its original position.
func (o *Outcomes) Set(stepID int, outcome CallOutcome) {
	if o.byID == nil {
		o.byID = make(map[int]CallOutcome, 4)
	}
	if _, ok := o.byID[stepID]; !ok {
		o.order = append(o.order, stepID)
	}
	o.byID[stepID] = outcome
}

func (o *Outcomes) Get(stepID int) (CallOutcome, bool) {
	if o == nil {
		return CallOutcome{}, false
	}
	out, ok := o.byID[stepID]
	return out, ok
}

func (o *Outcomes) Len() int {
	if o == nil {
		return 0
	}
	return len(o.order)
}

// NextID returns max(existing ids) + 1, or 0 when empty.
func (o *Outcomes) NextID() int {
	if o.Len() == 0 {
		return 0
	}
	next := o.order[0]
	for _, id := range o.order[1:] {
		if id > next {
			next = id
		}
	}
	return next + 1
}

// All returns the outcomes in insertion order.
func (o *Outcomes) All() []StepOutcome {
	if o == nil {
		return nil
	}
	all := make([]StepOutcome, 0, len(o.order))
	for _, id := range o.order {
		all = append(all, StepOutcome{StepID: id, Outcome: o.byID[id]})
	}
	return all
}

func (o *Outcomes) Successful() []CallOutcome {
	var ok []CallOutcome
	for _, so := range o.All() {
		if so.Outcome.Succeeded() {
			ok = append(ok, so.Outcome)
		}
	}
	return ok
}

// Keyed renders the map as "step_<id>" keys for API responses.
func (o *Outcomes) Keyed() map[string]CallOutcome {
	keyed := make(map[string]CallOutcome, o.Len())
	for _, so := range o.All() {
		keyed["step_"+strconv.Itoa(so.StepID)] = so.Outcome
	}
	return keyed
}

// MarshalJSON writes a "step_<id>" object whose keys follow insertion order.
func (o *Outcomes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, so := range o.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal("step_" + strconv.Itoa(so.StepID))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(so.Outcome)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
