package stream

import (
	"maps"

	"github.com/mitchellh/copystructure"
)

// Snapshot is a point-in-time copy of a session's accumulated state.
// Mutating a Snapshot, nested context values included, never affects the
// session it came from.
type Snapshot struct {
	StreamID   string
	State      State
	Content    string
	Reasoning  string
	Plan       string
	LastStatus *string
	Context    map[string]any
	Error      *string
	IsDone     bool
	// Events counts the events applied so far, Unknown excluded.
	Events int
}

// HasError reports whether the stream ended with a protocol or transport error
func (s Snapshot) HasError() bool {
	return s.Error != nil
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// copyContext deep-copies a decoded JSON object, nested maps and slices
// included.
func copyContext(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	dup, err := copystructure.Copy(m)
	if err != nil {
		// Unreachable for values produced by encoding/json
		return maps.Clone(m)
	}
	return dup.(map[string]any)
}
