// Package clarify extracts the follow-up questions the assistant embeds in
// a <sanbao-clarify> block.
package clarify

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	TypeSelect = "select"
	TypeText   = "text"
)

var blockPattern = regexp.MustCompile(`(?s)<sanbao-clarify>(.*?)</sanbao-clarify>`)

// Question is a follow-up question asked of the user
type Question struct {
	ID          string   `json:"id" yaml:"id"`
	Question    string   `json:"question" yaml:"question"`
	Type        string   `json:"type" yaml:"type"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"`
	Placeholder *string  `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// IsSelect reports whether the question expects a choice. It does not
// check that options are present.
func (q Question) IsSelect() bool {
	return q.Type == TypeSelect
}

// IsTextInput reports whether the question expects free text
func (q Question) IsTextInput() bool {
	return q.Type == TypeText
}

// Result is the outcome of one extraction pass
type Result struct {
	Questions    []Question
	CleanContent string
	// Err is set when a block was found but its body was not a valid
	// question array.
	Err error
}

// rawQuestion mirrors the wire shape so absent fields can be told apart
// from empty ones.
type rawQuestion struct {
	ID          *string  `json:"id"`
	Question    *string  `json:"question"`
	Type        *string  `json:"type"`
	Options     []string `json:"options"`
	Placeholder *string  `json:"placeholder"`
}

// Extract finds the first <sanbao-clarify> block in content.
//
// Without a block, content is returned unchanged. On success the block is
// removed and the rest trimmed. When the block body is not a JSON array of
// question objects, both Questions and CleanContent are empty and Err
// describes the failure; callers that want to keep the surrounding text
// must fall back to content themselves.
func Extract(content string) Result {
	loc := blockPattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return Result{CleanContent: content}
	}
	body := strings.TrimSpace(content[loc[2]:loc[3]])

	var raw []rawQuestion
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return Result{Err: fmt.Errorf("parse clarify block: %w", err)}
	}

	questions := make([]Question, 0, len(raw))
	for _, r := range raw {
		questions = append(questions, r.question())
	}

	clean := content[:loc[0]] + content[loc[1]:]
	return Result{
		Questions:    questions,
		CleanContent: strings.TrimSpace(clean),
	}
}

func (r rawQuestion) question() Question {
	q := Question{
		Type:        TypeSelect,
		Options:     r.Options,
		Placeholder: r.Placeholder,
	}
	if r.ID != nil {
		q.ID = *r.ID
	}
	if r.Question != nil {
		q.Question = *r.Question
	}
	if r.Type != nil {
		q.Type = *r.Type
	}
	return q
}
