package artifact

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// strictPattern expects type before title and nothing else.
	strictPattern = regexp.MustCompile(`(?s)<sanbao-doc\s+type="([^"]*)"\s+title="([^"]*)"\s*>(.*?)</sanbao-doc>`)

	// loosePattern accepts any attribute order and extra attributes. Quoted
	// values may contain '>'.
	loosePattern = regexp.MustCompile(`(?s)<sanbao-doc((?:\s+[A-Za-z][\w-]*\s*=\s*"[^"]*")*)\s*>(.*?)</sanbao-doc>`)

	attrPattern = regexp.MustCompile(`([A-Za-z][\w-]*)\s*=\s*"([^"]*)"`)
)

// match is one tag found by either pattern
type match struct {
	rawType string
	title   string
	body    string
	attrs   map[string]string
}

// Extractor turns tagged content into artifacts. The zero value is not
// usable; see NewExtractor.
type Extractor struct {
	now func() time.Time
}

// ExtractorOption configures an Extractor
type ExtractorOption func(*Extractor)

// WithClock sets the time source used for artifact timestamps
func WithClock(now func() time.Time) ExtractorOption {
	return func(e *Extractor) {
		e.now = now
	}
}

// NewExtractor creates an Extractor
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = NewExtractor()

// Extract scans content with the default extractor
func Extract(content string) Result {
	return defaultExtractor.Extract(content)
}

// Extract finds every <sanbao-doc> tag in document order. The strict
// pattern is tried first; the loose one only runs when the strict one finds
// nothing, and results from the two are never mixed.
//
// With no tags at all, CleanContent is content unchanged.
func (e *Extractor) Extract(content string) Result {
	matches := findStrict(content)
	if len(matches) == 0 {
		matches = findLoose(content)
	}
	if len(matches) == 0 {
		return Result{CleanContent: content}
	}

	now := e.now()
	artifacts := make([]Artifact, 0, len(matches))
	for i, m := range matches {
		artifacts = append(artifacts, build(i, m, now))
	}

	clean := strictPattern.ReplaceAllString(content, "")
	clean = loosePattern.ReplaceAllString(clean, "")

	return Result{
		Artifacts:    artifacts,
		CleanContent: strings.TrimSpace(clean),
	}
}

func findStrict(content string) []match {
	var out []match
	for _, sm := range strictPattern.FindAllStringSubmatch(content, -1) {
		out = append(out, match{rawType: sm[1], title: sm[2], body: sm[3]})
	}
	return out
}

func findLoose(content string) []match {
	var out []match
	for _, sm := range loosePattern.FindAllStringSubmatch(content, -1) {
		attrs := parseAttrs(sm[1])
		out = append(out, match{
			rawType: attrs["type"],
			title:   attrs["title"],
			body:    sm[2],
			attrs:   attrs,
		})
	}
	return out
}

func parseAttrs(raw string) map[string]string {
	attrs := make(map[string]string)
	for _, am := range attrPattern.FindAllStringSubmatch(raw, -1) {
		key := strings.ToLower(am[1])
		if _, seen := attrs[key]; !seen {
			attrs[key] = am[2]
		}
	}
	return attrs
}

func build(index int, m match, now time.Time) Artifact {
	body := strings.TrimSpace(m.body)

	a := Artifact{
		ID:      fmt.Sprintf("artifact_%d", index),
		Type:    ParseType(m.rawType),
		Title:   m.title,
		Content: body,
		Versions: []Version{{
			VersionNumber: 1,
			Label:         "Original",
			Content:       body,
			CreatedAt:     now,
		}},
		CurrentVersion: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if strings.EqualFold(strings.TrimSpace(m.rawType), "CODE") {
		lang := DetectLanguage(languageHint(m.attrs), body)
		a.Language = &lang
	}
	return a
}

func languageHint(attrs map[string]string) string {
	if hint := attrs["language"]; hint != "" {
		return hint
	}
	return attrs["lang"]
}
