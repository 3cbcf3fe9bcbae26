// Package qualification scores a visitor's questionnaire answers and
// renders the localized verdict shown at the end of the chatbot flow.
package qualification

import (
	"strconv"
	"strings"
)

type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

type Offer string

const (
	OfferAudit    Offer = "audit"
	OfferCoaching Offer = "coaching"
	OfferMission  Offer = "mission"
	OfferUnknown  Offer = "unknown"
)

const (
	highThreshold   = 6
	mediumThreshold = 4
)

// Result is the deterministic outcome of Qualify.
type Result struct {
	Score            int      `json:"score"`
	Level            Level    `json:"level"`
	Reasons          []string `json:"reasons"`
	RecommendedOffer Offer    `json:"recommendedOffer"`
}

var goalCodes = map[string]string{
	"moderniser":     "goal_modernize",
	"performances":   "goal_performance",
	"reduire-couts":  "goal_reduce_costs",
	"accelerer":      "goal_accelerate",
	"autre-objectif": "goal_other",
}

var serviceCodes = map[string]string{
	"architecture-frontend": "service_architecture_frontend",
	"vue-nuxt":              "service_vue_nuxt",
	"ai-orchestration":      "service_ai_orchestration",
}

var urgencyCodes = map[string]string{
	"urgent":   "urgency_urgent",
	"1_month":  "urgency_1_month",
	"3_months": "urgency_3_months",
}

// effectiveAnswers holds the raw answers after value remapping.
type effectiveAnswers struct {
	service  string // ia-pragmatique remapped, stack used when service is absent
	goal     string
	teamSize string
	urgency  string // immediat -> urgent, 1-2-mois -> 1_month, 3-6-mois -> 3_months
	stack    string
}

func normalize(answers map[string]any) effectiveAnswers {
	ea := effectiveAnswers{
		service:  answerString(answers, "service"),
		goal:     answerString(answers, "goal"),
		teamSize: answerString(answers, "teamSize"),
		urgency:  normalizeUrgency(answerString(answers, "urgency")),
		stack:    answerString(answers, "stack"),
	}
	if ea.service == "ia-pragmatique" {
		ea.service = "ai-orchestration"
	}
	if ea.service == "" && ea.stack == "vue-nuxt" {
		ea.service = ea.stack
	}
	return ea
}

func normalizeUrgency(v string) string {
	switch v {
	case "immediat":
		return "urgent"
	case "1-2-mois":
		return "1_month"
	case "3-6-mois":
		return "3_months"
	}
	return v
}

type rule func(effectiveAnswers) (points int, reason string, ok bool)

// rules run in this order; reasons are appended in the same order.
var rules = []rule{
	serviceRule,
	goalRule,
	teamSizeRule,
	urgencyRule,
	stackRule,
}

func serviceRule(ea effectiveAnswers) (int, string, bool) {
	code, ok := serviceCodes[ea.service]
	if !ok {
		return 0, "", false
	}
	return 2, code, true
}

func goalRule(ea effectiveAnswers) (int, string, bool) {
	if ea.goal == "" {
		return 0, "", false
	}
	if code, ok := goalCodes[ea.goal]; ok {
		return 1, code, true
	}
	return 1, "goal_" + ea.goal, true
}

func teamSizeRule(ea effectiveAnswers) (int, string, bool) {
	switch ea.teamSize {
	case "", "1-3":
		return 0, "", false
	case "4-10":
		return 2, "team_4_10", true
	case "11-25", "25+":
		return 2, "team_10_plus", true
	}
	return 2, "team_" + ea.teamSize, true
}

func urgencyRule(ea effectiveAnswers) (int, string, bool) {
	code, ok := urgencyCodes[ea.urgency]
	if !ok {
		return 0, "", false
	}
	return 1, code, true
}

// stackRule fires independently of serviceRule, so "vue-nuxt" given only as
// a stack scores both.
func stackRule(ea effectiveAnswers) (int, string, bool) {
	if ea.stack == "" {
		return 0, "", false
	}
	lower := strings.ToLower(ea.stack)
	if strings.Contains(lower, "vue") || strings.Contains(lower, "nuxt") || ea.stack == "vue-nuxt" {
		return 1, "stack_vue_nuxt", true
	}
	return 0, "", false
}

// Qualify scores answers. It is total: any input, including nil, yields a result.
func Qualify(answers map[string]any) Result {
	ea := normalize(answers)

	res := Result{Reasons: []string{}}
	for _, r := range rules {
		points, reason, ok := r(ea)
		if !ok {
			continue
		}
		res.Score += points
		res.Reasons = append(res.Reasons, reason)
	}

	res.Level = LevelFor(res.Score)
	res.RecommendedOffer = recommendOffer(ea)
	return res
}

// LevelFor maps a score to its tier.
func LevelFor(score int) Level {
	switch {
	case score >= highThreshold:
		return LevelHigh
	case score >= mediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// recommendOffer picks the first matching offer; audit wins over coaching.
func recommendOffer(ea effectiveAnswers) Offer {
	goal := ea.goal
	if goal == "performances" {
		goal = "performance"
	}
	teamSize := ea.teamSize
	if teamSize == "11-25" || teamSize == "25+" {
		teamSize = "10+"
	}

	switch {
	case goal == "performance" || ea.urgency == "urgent" || ea.urgency == "1_month":
		return OfferAudit
	case ea.teamSize == "1-3" && ea.urgency != "urgent":
		return OfferCoaching
	case teamSize == "10+" ||
		(ea.service == "ai-orchestration" && (ea.urgency == "3_months" || ea.urgency == "urgent")):
		return OfferMission
	}
	return OfferUnknown
}

func answerString(answers map[string]any, key string) string {
	v, ok := answers[key]
	if !ok {
		return ""
	}
	return Stringify(v)
}

// Stringify renders an answer value as plain text. Arrays are comma-joined.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, Stringify(item))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	}
	return ""
}
