package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedLine is matched by every decode failure.
var ErrMalformedLine = errors.New("malformed stream line")

// DecodeError reports a line that could not be decoded. It is never fatal
// to the stream.
type DecodeError struct {
	Line string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode stream line: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedLine) hold for any DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformedLine
}

type wireEvent struct {
	T Code            `json:"t"`
	V json.RawMessage `json:"v,omitempty"`
}

// Decode converts one line of the form {"t": <code>, "v": <payload>} into an
// Event. A missing or null "v" decodes to the zero payload of its kind.
// Unknown codes yield Unknown with a nil error.
func Decode(line string) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal([]byte(line), &w); err != nil {
		return nil, &DecodeError{Line: line, Err: err}
	}

	switch w.T {
	case CodeContent, CodeReasoning, CodePlan, CodeStatus, CodeError:
		text, err := decodeText(w.V)
		if err != nil {
			return nil, &DecodeError{Line: line, Err: fmt.Errorf("%q payload: %w", w.T, err)}
		}
		return textEvent(w.T, text), nil
	case CodeContext:
		payload, err := decodeObject(w.V)
		if err != nil {
			return nil, &DecodeError{Line: line, Err: fmt.Errorf("%q payload: %w", w.T, err)}
		}
		return Context{Payload: payload}, nil
	default:
		return Unknown{Raw: w.T}, nil
	}
}

func textEvent(code Code, text string) Event {
	switch code {
	case CodeContent:
		return Content{Text: text}
	case CodeReasoning:
		return Reasoning{Text: text}
	case CodePlan:
		return Plan{Text: text}
	case CodeStatus:
		return Status{Text: text}
	default:
		return Error{Message: text}
	}
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeText(raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func decodeObject(raw json.RawMessage) (map[string]any, error) {
	if isAbsent(raw) {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Encode renders ev in the wire format accepted by Decode.
func Encode(ev Event) (string, error) {
	var payload any
	switch e := ev.(type) {
	case Content:
		payload = e.Text
	case Reasoning:
		payload = e.Text
	case Plan:
		payload = e.Text
	case Status:
		payload = e.Text
	case Error:
		payload = e.Message
	case Context:
		if e.Payload == nil {
			payload = map[string]any{}
		} else {
			payload = e.Payload
		}
	case Unknown:
		payload = nil
	default:
		return "", fmt.Errorf("unsupported event %T", ev)
	}

	w := wireEvent{T: ev.Code()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("failed to marshal %q payload: %w", w.T, err)
		}
		w.V = raw
	}

	out, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}
	return string(out), nil
}
