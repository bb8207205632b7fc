// Package normalize maps loosely shaped input records onto model.Event.
package normalize

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/hotbild/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/net/publicsuffix"
)

// Field lists the candidate input keys for one canonical field, first match wins
type Field struct {
	Name    string
	Aliases []string
}

// Keys returns the primary name followed by its aliases
func (f Field) Keys() []string {
	return append([]string{f.Name}, f.Aliases...)
}

// Canonical fields and their known aliases
var (
	FieldCategory   = Field{Name: "cat", Aliases: []string{"category", "kategori", "type"}}
	FieldCountry    = Field{Name: "country", Aliases: []string{"land", "nation"}}
	FieldTitle      = Field{Name: "title", Aliases: []string{"name", "rubrik", "headline"}}
	FieldSummary    = Field{Name: "summary", Aliases: []string{"desc", "description", "sammanfattning", "text"}}
	FieldURL        = Field{Name: "url", Aliases: []string{"link", "sourceUrl", "source_url", "href"}}
	FieldDomain     = Field{Name: "sourceDomain", Aliases: []string{"source_domain", "domain", "source"}}
	FieldDate       = Field{Name: "date", Aliases: []string{"time", "dt", "datum", "published"}}
	FieldLikelihood = Field{Name: "likelihood", Aliases: []string{"sannolikhet", "confidence"}}
	FieldRisk       = Field{Name: "risk", Aliases: []string{"riskScore", "risk_score"}}
)

var datePrefix = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

// Normalizer turns raw records into canonical events. It never fails: missing
// or wrong-typed fields degrade to empty values and are logged at debug level.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer; a nil logger discards output
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Normalizer{logger: logger}
}

// Normalize converts every record. Index equals the position in records.
func (n *Normalizer) Normalize(records []any) []model.Event {
	events := make([]model.Event, 0, len(records))
	for i, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			n.logger.Warn("record is not an object, using empty event", "index", i, "type", fmt.Sprintf("%T", rec))
			obj = map[string]any{}
		}
		events = append(events, n.Event(i, obj))
	}
	return events
}

// Event converts one record
func (n *Normalizer) Event(index int, rec map[string]any) model.Event {
	ev := model.Event{
		Index:     index,
		Category:  strings.TrimSpace(n.str(rec, FieldCategory, index)),
		Country:   strings.TrimSpace(n.str(rec, FieldCountry, index)),
		Title:     n.str(rec, FieldTitle, index),
		Summary:   StripMarkup(n.str(rec, FieldSummary, index)),
		SourceURL: strings.TrimSpace(n.str(rec, FieldURL, index)),
		Date:      strings.TrimSpace(n.str(rec, FieldDate, index)),
	}

	explicit := strings.TrimSpace(n.str(rec, FieldDomain, index))
	if ev.SourceURL == "" && (strings.HasPrefix(explicit, "http://") || strings.HasPrefix(explicit, "https://")) {
		ev.SourceURL = explicit
	}
	ev.SourceDomain = SourceDomain(explicit, ev.SourceURL)

	if ev.Date != "" {
		if d, ok := ParseDate(ev.Date); ok {
			ev.Parsed = &d
		} else {
			n.logger.Debug("unparseable date, treating as undated", "index", index, "date", ev.Date)
		}
	}

	if raw := n.str(rec, FieldLikelihood, index); raw != "" {
		if t, ok := model.ParseTier(raw); ok {
			ev.Override.Likelihood = &t
		} else {
			n.logger.Debug("unknown likelihood word ignored", "index", index, "likelihood", raw)
		}
	}

	if r, ok := n.number(rec, FieldRisk, index); ok {
		risk := ClampRisk(int(math.Round(r)))
		ev.Override.Risk = &risk
	}

	return ev
}

// lookup returns the value of the first key of f that is set. Null and
// blank strings count as unset, so an empty primary falls through to its
// aliases.
func lookup(rec map[string]any, f Field) (any, bool) {
	for _, key := range f.Keys() {
		v, ok := rec[key]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func (n *Normalizer) str(rec map[string]any, f Field, index int) string {
	v, ok := lookup(rec, f)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		// YAML decodes unquoted dates as timestamps
		return t.Format("2006-01-02")
	default:
		n.logger.Debug("unexpected field type, using empty string", "index", index, "field", f.Name, "type", fmt.Sprintf("%T", v))
		return ""
	}
}

func (n *Normalizer) number(rec map[string]any, f Field, index int) (float64, bool) {
	v, ok := lookup(rec, f)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		if val, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return val, true
		}
	}
	n.logger.Debug("non-numeric field ignored", "index", index, "field", f.Name)
	return 0, false
}

// ParseDate recognizes a leading YYYY-MM-DD and rejects impossible calendar dates
func ParseDate(s string) (model.Date, bool) {
	m := datePrefix.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return model.Date{}, false
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	if mo < 1 || mo > 12 || d < 1 {
		return model.Date{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(mo) || t.Day() != d {
		return model.Date{}, false
	}
	return model.Date{Year: y, Month: time.Month(mo), Day: d}, true
}

// ClampRisk bounds a risk score to 1..5
func ClampRisk(r int) int {
	if r < 1 {
		return 1
	}
	if r > 5 {
		return 5
	}
	return r
}

// SourceDomain picks the explicit domain field when it looks like a hostname,
// otherwise the host of the source URL. A leading "www." is dropped.
func SourceDomain(explicit, rawURL string) string {
	if host := hostname(explicit); host != "" {
		return host
	}
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		// scheme-less links like "svt.se/nyheter/..."
		u, err = url.Parse("https://" + rawURL)
		if err != nil {
			return ""
		}
	}
	return hostname(u.Hostname())
}

// hostname returns a lower-cased host if s has a registrable domain
func hostname(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ".")
	if s == "" || strings.ContainsAny(s, " /:") {
		return ""
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(s); err != nil {
		return ""
	}
	return strings.TrimPrefix(s, "www.")
}

// StripMarkup returns the visible text of s when it contains HTML tags
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if buf.Len() > 0 {
					buf.WriteString(" ")
				}
				buf.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return buf.String()
}
