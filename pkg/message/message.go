// Package message turns a finished stream into the structured bundle the
// chat screen renders.
package message

import (
	"errors"

	"github.com/killallgit/sanbao/pkg/artifact"
	"github.com/killallgit/sanbao/pkg/clarify"
	"github.com/killallgit/sanbao/pkg/legal"
	"github.com/killallgit/sanbao/pkg/logger"
	"github.com/killallgit/sanbao/pkg/stream"
)

var ErrNotTerminal = errors.New("stream is still active")

// Final is a completed assistant message
type Final struct {
	StreamID        string              `json:"streamId" yaml:"streamId"`
	State           stream.State        `json:"state" yaml:"state"`
	Content         string              `json:"content" yaml:"content"`
	CleanContent    string              `json:"cleanContent" yaml:"cleanContent"`
	Reasoning       string              `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
	Plan            string              `json:"plan,omitempty" yaml:"plan,omitempty"`
	Context         map[string]any      `json:"context,omitempty" yaml:"context,omitempty"`
	Error           *string             `json:"error,omitempty" yaml:"error,omitempty"`
	Artifacts       []artifact.Artifact `json:"artifacts" yaml:"artifacts"`
	Questions       []clarify.Question  `json:"questions" yaml:"questions"`
	LegalReferences []legal.Reference   `json:"legalReferences" yaml:"legalReferences"`
}

// Finalizer runs the extractors over terminal snapshots
type Finalizer struct {
	artifacts *artifact.Extractor
}

// NewFinalizer creates a Finalizer using ex for artifacts. A nil ex uses
// the default extractor.
func NewFinalizer(ex *artifact.Extractor) *Finalizer {
	if ex == nil {
		ex = artifact.NewExtractor()
	}
	return &Finalizer{artifacts: ex}
}

var defaultFinalizer = NewFinalizer(nil)

// Finalize builds a Final with the default finalizer
func Finalize(snap stream.Snapshot) (Final, error) {
	return defaultFinalizer.Finalize(snap)
}

// Finalize extracts artifacts from the snapshot content, then clarify
// questions from the artifact-free text, then legal references from what
// remains. A malformed clarify block empties CleanContent, but references
// are still scanned from the artifact-free text. Partial content of errored
// or cancelled streams is finalized like completed content.
func (f *Finalizer) Finalize(snap stream.Snapshot) (Final, error) {
	if !snap.IsDone {
		return Final{}, ErrNotTerminal
	}

	arts := f.artifacts.Extract(snap.Content)
	questions := clarify.Extract(arts.CleanContent)
	legalText := questions.CleanContent
	if questions.Err != nil {
		logger.WithComponent("message").Warn("dropping malformed clarify block",
			"stream_id", snap.StreamID, "error", questions.Err)
		legalText = arts.CleanContent
	}

	return Final{
		StreamID:        snap.StreamID,
		State:           snap.State,
		Content:         snap.Content,
		CleanContent:    questions.CleanContent,
		Reasoning:       snap.Reasoning,
		Plan:            snap.Plan,
		Context:         snap.Context,
		Error:           snap.Error,
		Artifacts:       nonNil(arts.Artifacts),
		Questions:       nonNil(questions.Questions),
		LegalReferences: nonNil(legal.Extract(legalText)),
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
