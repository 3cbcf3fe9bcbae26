package lead

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
	"unicode"
	"unicode/utf8"
)

const (
	summaryRule       = "============================================================"
	summarySectionBar = "------------------------------------------------------------"
	displayTimezone   = "America/Montreal"
	maxUserAgentLen   = 100
)

var (
	displayLocation = loadDisplayLocation()

	frenchMonths = [...]string{
		"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre",
	}

	browserPattern = regexp.MustCompile(`(Chrome|Firefox|Safari|Edge|Opera)/[\d.]+`)
	osPattern      = regexp.MustCompile(`(Windows|Mac|Linux|iOS|Android)`)
)

func loadDisplayLocation() *time.Location {
	loc, err := time.LoadLocation(displayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Summary renders a plain-text report of a lead for humans. now stamps the footer.
func Summary(lc LeadContext, now time.Time) string {
	var lines []string

	lines = append(lines,
		summaryRule,
		"RÉSUMÉ DU LEAD",
		summaryRule,
		"",
		"📋 INFORMATIONS GÉNÉRALES",
		summarySectionBar,
		"Date de complétion: "+formatDisplayDate(lc.CompletedAt),
		"Nombre d'étapes complétées: "+strconv.Itoa(lc.StepCount),
		"",
		"📝 RÉPONSES DU FORMULAIRE",
		summarySectionBar,
	)

	keys := sortedKeys(lc.Answers)
	if len(keys) == 0 {
		lines = append(lines, "Aucune réponse enregistrée")
	}
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", humanizeKey(key), formatAnswer(lc.Answers[key])))
	}
	lines = append(lines, "")

	if meta := metadataLines(lc.Metadata); len(meta) > 0 {
		lines = append(lines, "🔍 MÉTADONNÉES", summarySectionBar)
		for _, m := range meta {
			lines = append(lines, m.label+": "+m.value)
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		summaryRule,
		"Généré le "+formatDisplayDate(now),
		summaryRule,
	)

	return strings.Join(lines, "\n")
}

// SummaryHTML renders the same sections as Summary as an HTML fragment.
func SummaryHTML(lc LeadContext) string {
	var b strings.Builder

	b.WriteString("<div class=\"lead-summary\">\n")
	b.WriteString("<h2>Résumé du Lead</h2>\n")

	b.WriteString("<section class=\"lead-section\">\n<h3>📋 Informations générales</h3>\n<dl>\n")
	writeHTMLItem(&b, "Date de complétion", formatDisplayDate(lc.CompletedAt))
	writeHTMLItem(&b, "Nombre d'étapes complétées", strconv.Itoa(lc.StepCount))
	b.WriteString("</dl>\n</section>\n")

	if keys := sortedKeys(lc.Answers); len(keys) > 0 {
		b.WriteString("<section class=\"lead-section\">\n<h3>📝 Réponses du formulaire</h3>\n<dl>\n")
		for _, key := range keys {
			writeHTMLItem(&b, humanizeKey(key), formatAnswer(lc.Answers[key]))
		}
		b.WriteString("</dl>\n</section>\n")
	}

	if meta := metadataLines(lc.Metadata); len(meta) > 0 {
		b.WriteString("<section class=\"lead-section\">\n<h3>🔍 Métadonnées</h3>\n<dl>\n")
		for _, m := range meta {
			writeHTMLItem(&b, m.label, m.value)
		}
		b.WriteString("</dl>\n</section>\n")
	}

	b.WriteString("</div>")
	return b.String()
}

func writeHTMLItem(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "<dt>%s</dt><dd>%s</dd>\n", html.EscapeString(label), html.EscapeString(value))
}

type metadataLine struct {
	label string
	value string
}

func metadataLines(m *Metadata) []metadataLine {
	if m == nil {
		return nil
	}

	var lines []metadataLine
	if m.Timestamp != "" {
		lines = append(lines, metadataLine{"Timestamp", formatDisplayDateString(m.Timestamp)})
	}
	if m.Referrer != "" {
		lines = append(lines, metadataLine{"Référent", m.Referrer})
	}
	if m.UserAgent != "" {
		lines = append(lines, userAgentLine(m.UserAgent))
	}
	return lines
}

func userAgentLine(ua string) metadataLine {
	var parts []string
	if browser := browserPattern.FindString(ua); browser != "" {
		parts = append(parts, browser)
	}
	if os := osPattern.FindString(ua); os != "" {
		parts = append(parts, os)
	}
	if len(parts) > 0 {
		return metadataLine{"Navigateur/Système", strings.Join(parts, " - ")}
	}

	if utf8.RuneCountInString(ua) > maxUserAgentLen {
		ua = string([]rune(ua)[:maxUserAgentLen]) + "..."
	}
	return metadataLine{"User Agent", ua}
}

// formatAnswer renders one answer value for display.
func formatAnswer(v any) string {
	switch val := v.(type) {
	case nil:
		return "Non renseigné"
	case bool:
		if val {
			return "Oui"
		}
		return "Non"
	case string:
		if strings.TrimSpace(val) == "" {
			return "Non renseigné"
		}
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		if len(val) == 0 {
			return "Aucune sélection"
		}
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = formatAnswer(item)
		}
		return strings.Join(parts, ", ")
	case []string:
		items := make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}
		return formatAnswer(items)
	}
	return fmt.Sprint(v)
}

// humanizeKey turns "team_size" or "team-size" into "Team Size".
func humanizeKey(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

func formatDisplayDateString(s string) string {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return "Date invalide"
	}
	return formatDisplayDate(t)
}

// formatDisplayDate renders t in Montreal time, e.g. "1 janvier 2024 à 07:00".
func formatDisplayDate(t time.Time) string {
	if t.IsZero() {
		return "Date non disponible"
	}
	t = t.In(displayLocation)
	return fmt.Sprintf("%d %s %d à %02d:%02d",
		t.Day(), frenchMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

func sortedKeys(a Answers) []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
