package planner

import (
	"strings"

	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
	registryx "github.com/tanpawarit/supervisor-agent/agent/registry"
)

// Matcher is a pure predicate over the lowercased query.
type Matcher func(query string) bool

// Rule routes queries that satisfy Match to a fixed step sequence.
type Rule struct {
	Name  string
	Match Matcher
	Steps []contractx.PlanStep
}

func containsAny(patterns ...string) Matcher {
	return func(query string) bool {
		for _, p := range patterns {
			if strings.Contains(query, p) {
				return true
			}
		}
		return false
	}
}

func allOf(matchers ...Matcher) Matcher {
	return func(query string) bool {
		for _, m := range matchers {
			if !m(query) {
				return false
			}
		}
		return true
	}
}

func single(agent, intent string) []contractx.PlanStep {
	return []contractx.PlanStep{{
		StepID:      0,
		Agent:       agent,
		Intent:      intent,
		InputSource: contractx.InputUserQuery,
	}}
}

const (
	agentOnboarding   = "onboarding_buddy_agent"
	agentFocus        = "focus_enforcer_agent"
	agentDeadline     = "deadline_guardian_agent"
	agentSummarizer   = "document_summarizer_agent"
	agentBudget       = "budget_tracker_agent"
	agentMeeting      = "meeting_followup_agent"
	agentEmail        = "email_priority_agent"
	agentProgress     = "progress_accountability_agent"
	agentProductivity = "productivity_agent"
)

// DefaultRules is evaluated top to bottom. Narrow rules sit above the broad
// rules that would otherwise shadow them.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "onboarding.update",
			Match: containsAny("update employee", "change employee", "modify employee", "edit employee", "update onboarding"),
			Steps: single(agentOnboarding, "onboarding.update"),
		},
		{
			Name: "onboarding.check_progress",
			Match: containsAny("employee progress", "onboarding progress", "employee status", "check employee",
				"employee completion", "profile completion", "onboarding status"),
			Steps: single(agentOnboarding, "onboarding.check_progress"),
		},
		{
			Name:  "onboarding.create",
			Match: containsAny("onboard", "new hire", "new employee", "employee setup", "hire someone", "add employee"),
			Steps: single(agentOnboarding, "onboarding.create"),
		},
		{
			Name: "document.review",
			Match: containsAny("review document", "review this document", "review the document", "review my document",
				"document review", "proofread", "grammar check", "check grammar", "spell check", "check spelling", "compliance review"),
			Steps: single(registryx.AgentDocumentReviewer, "document.review"),
		},
		{
			Name:  "focus.stop_monitoring",
			Match: containsAny("stop focus", "end focus", "stop monitoring", "end monitoring", "stop the focus", "end the focus"),
			Steps: single(agentFocus, "focus.stop_monitoring"),
		},
		{
			Name:  "focus.check_status",
			Match: containsAny("focus status", "monitoring status", "am i focused", "am i on track", "how focused"),
			Steps: single(agentFocus, "focus.check_status"),
		},
		{
			Name:  "focus.session",
			Match: containsAny("focus session", "start focus", "focus mode", "help me focus", "keep me focused", "start monitoring"),
			Steps: []contractx.PlanStep{
				{StepID: 0, Agent: agentDeadline, Intent: "deadline.monitor", InputSource: contractx.InputUserQuery},
				{StepID: 1, Agent: agentFocus, Intent: "focus.start_monitoring", InputSource: contractx.StepInput(0)},
			},
		},
		{
			Name:  registryx.IntentCreateTask,
			Match: containsAny("create task", "new task", "add task", "task:", "i need to", "implement", "fix bug"),
			Steps: single(registryx.AgentTaskCreation, registryx.IntentCreateTask),
		},
		{
			Name:  "summary.create",
			Match: containsAny("summary", "summarize", "summarise", "condense"),
			Steps: single(agentSummarizer, "summary.create"),
		},
		{
			// "risk" alone belongs to the deadline rule below.
			Name: "budget.assess_risk",
			Match: allOf(
				containsAny("risk", "overrun", "overspend", "exceed", "over budget"),
				containsAny("budget", "spend", "cost", "expense"),
			),
			Steps: single(agentBudget, "budget.assess_risk"),
		},
		{
			Name:  "deadline.monitor",
			Match: containsAny("deadline", "due date", "risk", "slip"),
			Steps: single(agentDeadline, "deadline.monitor"),
		},
		{
			Name:  "budget.track",
			Match: containsAny("budget", "expense", "spending", "spent"),
			Steps: single(agentBudget, "budget.track"),
		},
		{
			Name:  "meeting.followup",
			Match: containsAny("follow-up", "followup", "follow up", "action item", "minutes", "meeting transcript", "meeting notes"),
			Steps: single(agentMeeting, "meeting.followup"),
		},
		{
			Name:  registryx.IntentResolveDependencies,
			Match: containsAny("dependency", "dependencies", "depends on", "blocked by"),
			Steps: single(registryx.AgentTaskDependency, registryx.IntentResolveDependencies),
		},
		{
			Name:  "email.prioritize",
			Match: containsAny("email", "inbox", "priority"),
			Steps: single(agentEmail, "email.prioritize"),
		},
		{
			Name:  "goal.create",
			Match: containsAny("create goal", "new goal", "add goal"),
			Steps: single(agentProductivity, "goal.create"),
		},
		{
			Name:  "goal.update",
			Match: containsAny("update goal", "goal progress", "progress update"),
			Steps: single(agentProductivity, "goal.update"),
		},
		{
			Name:  "progress.track",
			Match: containsAny("progress", "goal", "task status"),
			Steps: single(agentProgress, "progress.track"),
		},
		{
			Name:  "reflection.add",
			Match: containsAny("add reflection", "journal", "daily log", "reflection", "wrote"),
			Steps: single(agentProductivity, "reflection.add"),
		},
		{
			Name:  "productivity.insights",
			Match: containsAny("insight"),
			Steps: single(agentProductivity, "productivity.insights"),
		},
		{
			Name:  "productivity.accountability",
			Match: containsAny("accountability"),
			Steps: single(agentProductivity, "productivity.accountability"),
		},
		{
			Name:  "productivity.analyze",
			Match: containsAny("analysis", "analyze", "analyse", "trend", "pattern"),
			Steps: single(agentProductivity, "productivity.analyze"),
		},
		{
			Name:  "productivity.report",
			Match: containsAny("report"),
			Steps: single(agentProductivity, "productivity.report"),
		},
	}
}

// MatchRule returns the first rule whose predicate accepts the query.
func MatchRule(rules []Rule, query string) (Rule, bool) {
	normalized := strings.ToLower(strings.TrimSpace(query))
	for _, r := range rules {
		if r.Match != nil && r.Match(normalized) {
			return r, true
		}
	}
	return Rule{}, false
}
