// Package artifact extracts structured sub-documents that the assistant
// embeds in its reply as <sanbao-doc> tags.
package artifact

import (
	"strings"
	"time"
)

// Type is the closed set of artifact kinds
type Type string

const (
	TypeDocument    Type = "document"
	TypeCode        Type = "code"
	TypeLegal       Type = "legal"
	TypeSpreadsheet Type = "spreadsheet"
	TypeAnalysis    Type = "analysis"
	TypeImage       Type = "image"
)

// rawTypes maps upper-cased tag attribute values to artifact types.
var rawTypes = map[string]Type{
	"DOCUMENT":    TypeDocument,
	"CONTRACT":    TypeDocument,
	"CLAIM":       TypeDocument,
	"COMPLAINT":   TypeDocument,
	"LETTER":      TypeDocument,
	"MEMO":        TypeDocument,
	"CODE":        TypeCode,
	"LEGAL":       TypeLegal,
	"LAW":         TypeLegal,
	"REGULATION":  TypeLegal,
	"SPREADSHEET": TypeSpreadsheet,
	"TABLE":       TypeSpreadsheet,
	"ANALYSIS":    TypeAnalysis,
	"REPORT":      TypeAnalysis,
	"IMAGE":       TypeImage,
}

// ParseType maps a raw tag attribute to a Type, case-insensitively.
// Unrecognized values are documents.
func ParseType(raw string) Type {
	if t, ok := rawTypes[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return t
	}
	return TypeDocument
}

// Valid reports whether t is one of the defined types
func (t Type) Valid() bool {
	switch t {
	case TypeDocument, TypeCode, TypeLegal, TypeSpreadsheet, TypeAnalysis, TypeImage:
		return true
	}
	return false
}

// Version is one revision of an artifact's content
type Version struct {
	VersionNumber int       `json:"versionNumber" yaml:"versionNumber"`
	Label         string    `json:"label" yaml:"label"`
	Content       string    `json:"content" yaml:"content"`
	CreatedAt     time.Time `json:"createdAt" yaml:"createdAt"`
}

// Artifact is a structured sub-document found in assistant content.
//
// IDs are assigned per extraction call ("artifact_0", "artifact_1", ...)
// and restart at zero on every call. They identify an artifact within one
// result only; re-extracting content that has grown in the meantime can
// give the same artifact a different ID.
type Artifact struct {
	ID             string    `json:"id" yaml:"id"`
	Type           Type      `json:"type" yaml:"type"`
	Title          string    `json:"title" yaml:"title"`
	Content        string    `json:"content" yaml:"content"`
	Language       *string   `json:"language,omitempty" yaml:"language,omitempty"`
	Versions       []Version `json:"versions" yaml:"versions"`
	CurrentVersion int       `json:"currentVersion" yaml:"currentVersion"`
	CreatedAt      time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Result is the outcome of one extraction pass
type Result struct {
	Artifacts []Artifact
	// CleanContent is the input with every artifact tag removed.
	CleanContent string
}
