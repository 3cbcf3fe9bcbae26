package qualification

import "strings"

type Locale string

const (
	LocaleFR Locale = "fr"
	LocaleEN Locale = "en"
)

// ParseLocale returns fr for "fr" and en for anything else.
func ParseLocale(s string) Locale {
	if strings.EqualFold(strings.TrimSpace(s), string(LocaleFR)) {
		return LocaleFR
	}
	return LocaleEN
}

const maxSurfacedReasons = 2

var reasonLabels = map[Locale]map[string]string{
	LocaleFR: {
		"service_architecture_frontend": "Architecture Frontend",
		"service_vue_nuxt":              "Vue/Nuxt",
		"service_ai_orchestration":      "IA Pragmatique",
		"goal_modernize":                "Modernisation",
		"goal_performance":              "Performance",
		"goal_reduce_costs":             "Réduction des coûts",
		"goal_accelerate":               "Accélération",
		"goal_other":                    "Autre objectif",
		"team_4_10":                     "Équipe 4-10 développeurs",
		"team_10_plus":                  "Équipe 10+ développeurs",
		"urgency_urgent":                "Urgence immédiate",
		"urgency_1_month":               "Urgence 1-2 mois",
		"urgency_3_months":              "Urgence 3-6 mois",
		"stack_vue_nuxt":                "Stack Vue/Nuxt",
	},
	LocaleEN: {
		"service_architecture_frontend": "Frontend Architecture",
		"service_vue_nuxt":              "Vue/Nuxt",
		"service_ai_orchestration":      "Pragmatic AI",
		"goal_modernize":                "Modernization",
		"goal_performance":              "Performance",
		"goal_reduce_costs":             "Cost reduction",
		"goal_accelerate":               "Acceleration",
		"goal_other":                    "Other objective",
		"team_4_10":                     "Team of 4-10 developers",
		"team_10_plus":                  "Team of 10+ developers",
		"urgency_urgent":                "Immediate urgency",
		"urgency_1_month":               "Urgency 1-2 months",
		"urgency_3_months":              "Urgency 3-6 months",
		"stack_vue_nuxt":                "Vue/Nuxt stack",
	},
}

var levelLabels = map[Locale]map[Level]string{
	LocaleFR: {LevelHigh: "élevé", LevelMedium: "moyen", LevelLow: "faible"},
	LocaleEN: {LevelHigh: "high", LevelMedium: "medium", LevelLow: "low"},
}

var offerLabels = map[Offer]string{
	OfferAudit:    "Audit",
	OfferCoaching: "Coaching",
	OfferMission:  "Mission",
}

type levelMessage struct {
	plain       string
	withReasons func(reasons string) string
	cta         string
}

var messages = map[Locale]map[Level]levelMessage{
	LocaleFR: {
		LevelHigh: {
			plain:       "D'après ce que tu m'as indiqué, je peux t'aider.",
			withReasons: func(r string) string { return "D'après ce que tu m'as indiqué (" + r + "), je peux t'aider." },
			cta:         "Laisse ton email et je te réponds avec une première piste concrète.",
		},
		LevelMedium: {
			plain:       "Je peux peut-être t'aider.",
			withReasons: func(r string) string { return "Je peux peut-être t'aider. " + r + "." },
			cta:         "Laisse ton email et je te dis rapidement si ça vaut un échange.",
		},
		LevelLow: {
			plain:       "Je ne suis probablement pas la meilleure personne pour ton cas.",
			withReasons: func(r string) string { return "Je ne suis probablement pas la meilleure personne pour ton cas. " + r + "." },
			cta:         "Si tu veux, laisse ton email et je te redirige vers la meilleure option.",
		},
	},
	LocaleEN: {
		LevelHigh: {
			plain:       "Based on what you've told me, I can help you.",
			withReasons: func(r string) string { return "Based on what you've told me (" + r + "), I can help you." },
			cta:         "Leave your email and I'll reply with a concrete first step.",
		},
		LevelMedium: {
			plain:       "I might be able to help you.",
			withReasons: func(r string) string { return "I might be able to help you. " + r + "." },
			cta:         "Leave your email and I'll quickly tell you if it's worth an exchange.",
		},
		LevelLow: {
			plain:       "I'm probably not the best person for your case.",
			withReasons: func(r string) string { return "I'm probably not the best person for your case. " + r + "." },
			cta:         "If you want, leave your email and I'll redirect you to the best option.",
		},
	},
}

// FormatReasons translates reason codes; unknown codes pass through verbatim.
func FormatReasons(locale Locale, codes []string) []string {
	dict, ok := reasonLabels[locale]
	if !ok {
		dict = reasonLabels[LocaleEN]
	}
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if label, ok := dict[code]; ok {
			out = append(out, label)
			continue
		}
		out = append(out, code)
	}
	return out
}

// FormatMessage renders the rationale and call to action for res, separated
// by a blank line. At most the first two reasons are shown.
func FormatMessage(locale Locale, res Result) string {
	byLevel, ok := messages[locale]
	if !ok {
		byLevel = messages[LocaleEN]
	}
	msg, ok := byLevel[res.Level]
	if !ok {
		msg = byLevel[LevelLow]
	}

	reasons := FormatReasons(locale, res.Reasons)
	if len(reasons) > maxSurfacedReasons {
		reasons = reasons[:maxSurfacedReasons]
	}

	rationale := msg.plain
	if len(reasons) > 0 {
		rationale = msg.withReasons(strings.Join(reasons, ", "))
	}
	return rationale + "\n\n" + msg.cta
}

// LevelLabel returns the localized level name, or the raw value when unknown.
func LevelLabel(locale Locale, level string) string {
	if label, ok := levelLabels[locale][Level(level)]; ok {
		return label
	}
	return level
}

// OfferLabel returns the display name of an offer, or the raw value when unknown.
func OfferLabel(offer string) string {
	if label, ok := offerLabels[Offer(offer)]; ok {
		return label
	}
	return offer
}
