package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"portfolio/internal/domain/lead"
	"portfolio/internal/domain/qualification"
)

const (
	banner  = "============================================================"
	divider = "------------------------------------------------------------"
)

var (
	subjectServiceKeys = []string{"service", "serviceType", "type", "besoin", "need"}
	subjectUrgencyKeys = []string{"urgency", "urgence", "priority", "priorite", "timing", "deadline"}

	leadPathSuffix = regexp.MustCompile(`/lead(?:[/?].*)?$`)
)

type labels struct {
	newLead        string
	contactInfo    string
	name           string
	email          string
	qualification  string
	match          string
	recommendation string
	reasons        string
	fullContext    string
	viewLead       string
	fallbackTitle  string
}

var emailLabels = map[qualification.Locale]labels{
	qualification.LocaleFR: {
		newLead:        "NOUVEAU LEAD",
		contactInfo:    "📧 INFORMATIONS DE CONTACT",
		name:           "Nom",
		email:          "Email",
		qualification:  "QUALIFICATION",
		match:          "Match",
		recommendation: "Recommandation",
		reasons:        "Raisons",
		fullContext:    "CONTEXTE COMPLET (JSON)",
		viewLead:       "LIEN POUR VOIR LE LEAD",
		fallbackTitle:  "Nouveau lead",
	},
	qualification.LocaleEN: {
		newLead:        "NEW LEAD",
		contactInfo:    "📧 CONTACT INFORMATION",
		name:           "Name",
		email:          "Email",
		qualification:  "QUALIFICATION",
		match:          "Match",
		recommendation: "Recommendation",
		reasons:        "Reasons",
		fullContext:    "FULL CONTEXT (JSON)",
		viewLead:       "LINK TO VIEW LEAD",
		fallbackTitle:  "New lead",
	},
}

// Subject builds "[Lead] service — urgency" from the first matching answer keys.
func Subject(answers lead.Answers, locale qualification.Locale) string {
	var parts []string
	if v, ok := firstAnswer(answers, subjectServiceKeys); ok {
		parts = append(parts, v)
	}
	if v, ok := firstAnswer(answers, subjectUrgencyKeys); ok {
		parts = append(parts, v)
	}

	if len(parts) == 0 {
		return "[Lead] " + emailLabels[locale].fallbackTitle
	}
	return "[Lead] " + strings.Join(parts, " — ")
}

// firstAnswer returns the first key holding a non-empty value.
func firstAnswer(answers lead.Answers, keys []string) (string, bool) {
	for _, k := range keys {
		v, ok := answers[k]
		if !ok || !present(v) {
			continue
		}
		return qualification.Stringify(v), true
	}
	return "", false
}

func present(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	}
	return true
}

// CleanBaseURL trims trailing slashes and any /lead path already present.
func CleanBaseURL(raw string) string {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	if strings.Contains(base, "/lead") {
		base = leadPathSuffix.ReplaceAllString(base, "")
	}
	return base
}

// LeadURL is the page an admin opens to read the lead back.
func LeadURL(baseURL string, id int64, token string) string {
	return fmt.Sprintf("%s/lead/%d?token=%s", CleanBaseURL(baseURL), id, url.QueryEscape(token))
}

// BuildEmail renders the admin notification for nl.
func BuildEmail(cfg Config, nl lead.NewLead, now time.Time) (Email, error) {
	locale := qualification.ParseLocale(nl.Locale)
	l := emailLabels[locale]

	var lines []string
	lines = append(lines, banner, l.newLead, banner, "", l.contactInfo, divider)
	if nl.Name != "" {
		lines = append(lines, l.name+": "+nl.Name)
	}
	lines = append(lines, l.email+": "+nl.Email, "")

	if q := nl.Qualification; q != nil {
		lines = append(lines, banner, l.qualification, banner, "")
		lines = append(lines, fmt.Sprintf("%s: %s (score: %s)",
			l.match, qualification.LevelLabel(locale, q.Level), strconv.FormatFloat(q.Score, 'f', -1, 64)))

		if q.RecommendedOffer != "" && q.RecommendedOffer != string(qualification.OfferUnknown) {
			lines = append(lines, l.recommendation+": "+qualification.OfferLabel(q.RecommendedOffer))
		}
		if len(q.Reasons) > 0 {
			lines = append(lines, l.reasons+":")
			for _, r := range qualification.FormatReasons(locale, q.Reasons) {
				lines = append(lines, "  - "+r)
			}
		}
		lines = append(lines, "")
	}

	lines = append(lines, lead.Summary(nl.Context, now), "")

	raw, err := indentJSON(nl.Context)
	if err != nil {
		return Email{}, err
	}
	lines = append(lines, banner, l.fullContext, banner, "", raw, "")

	link := LeadURL(cfg.BaseURL, nl.LeadID, nl.Token)
	lines = append(lines, banner, l.viewLead, banner, "", link, "", "(Copier-coller: "+link+")", "")

	return Email{
		From:    cfg.FromEmail,
		To:      []string{cfg.AdminEmail},
		Subject: Subject(nl.Context.Answers, locale),
		Text:    strings.Join(lines, "\n"),
	}, nil
}

func indentJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
