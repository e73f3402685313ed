package artifact

import (
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// DefaultLanguage is reported for code with no recognizable markers.
const DefaultLanguage = "javascript"

// lexerNames renames chroma lexers whose names differ from the
// identifiers the client renders.
var lexerNames = map[string]string{
	"react":      "jsx",
	"c++":        "cpp",
	"c#":         "csharp",
	"plaintext":  "text",
	"plain text": "text",
}

// DetectLanguage picks a language for a code artifact. An explicit hint
// that chroma recognizes wins; otherwise the body is sniffed.
func DetectLanguage(hint, body string) string {
	if lang, ok := normalizeHint(hint); ok {
		return lang
	}
	return SniffLanguage(body)
}

func normalizeHint(hint string) (string, bool) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return "", false
	}
	lexer := lexers.Get(hint)
	if lexer == nil {
		return "", false
	}
	name := strings.ToLower(lexer.Config().Name)
	if renamed, ok := lexerNames[name]; ok {
		return renamed, true
	}
	return strings.ReplaceAll(name, " ", ""), true
}

// SniffLanguage guesses a language from body markers, checked in priority
// order.
func SniffLanguage(body string) string {
	code := strings.ToLower(body)
	has := func(s string) bool { return strings.Contains(code, s) }

	switch {
	case has("<!doctype html") || has("<html"):
		return "html"
	case has("import react") || has("from 'react'") || has(`from "react"`):
		return "jsx"
	case has("def ") && has("import "):
		return "python"
	case has("func ") && has("package "):
		return "go"
	case has("class ") && has("void "):
		return "java"
	default:
		return DefaultLanguage
	}
}
