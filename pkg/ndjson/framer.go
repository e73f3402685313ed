// Package ndjson splits an incrementally delivered text stream into lines.
//
// The framer applies no policy: empty lines are passed through as "" and the
// caller decides whether to skip them. Pending partial lines are buffered
// without a size bound, so a peer that never sends a newline grows the buffer
// until the transport closes. Bounding it is left to the transport.
package ndjson

import (
	"bytes"
	"errors"
	"io"
	"iter"
)

// Framer accumulates fragments and yields complete lines.
// The zero value is ready to use. A Framer is not safe for concurrent use.
type Framer struct {
	pending []byte
}

// Push appends a fragment and returns every line it completed, with the
// "\n" or "\r\n" terminator stripped.
func (f *Framer) Push(fragment string) []string {
	f.pending = append(f.pending, fragment...)

	var lines []string
	start := 0
	for {
		i := bytes.IndexByte(f.pending[start:], '\n')
		if i < 0 {
			break
		}
		end := start + i
		lines = append(lines, string(trimCR(f.pending[start:end])))
		start = end + 1
	}

	if start > 0 {
		// Keep only the unterminated tail
		n := copy(f.pending, f.pending[start:])
		f.pending = f.pending[:n]
	}
	return lines
}

// Flush returns the buffered partial line, if it is non-empty, and resets
// the framer.
func (f *Framer) Flush() (string, bool) {
	if len(f.pending) == 0 {
		return "", false
	}
	line := string(f.pending)
	f.pending = f.pending[:0]
	return line, true
}

// Buffered reports the number of bytes waiting for a terminator.
func (f *Framer) Buffered() int {
	return len(f.pending)
}

func trimCR(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\r' {
		return b[:n-1]
	}
	return b
}

// Lines frames a fragment sequence lazily. The trailing partial line is
// emitted when fragments ends, only if non-empty.
func Lines(fragments iter.Seq[string]) iter.Seq[string] {
	return func(yield func(string) bool) {
		var f Framer
		for fragment := range fragments {
			for _, line := range f.Push(fragment) {
				if !yield(line) {
					return
				}
			}
		}
		if line, ok := f.Flush(); ok {
			yield(line)
		}
	}
}

// ReaderFragments yields successive reads of at most size bytes from r.
// A read error other than io.EOF is yielded once, with an empty fragment,
// and ends the sequence.
func ReaderFragments(r io.Reader, size int) iter.Seq2[string, error] {
	if size <= 0 {
		size = 4096
	}
	return func(yield func(string, error) bool) {
		buf := make([]byte, size)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				if !yield(string(buf[:n]), nil) {
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield("", err)
				}
				return
			}
		}
	}
}
