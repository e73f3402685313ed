package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// FakeBackend is an HTTP chat backend that answers every request with a
// fixed NDJSON body, written in small chunks.
type FakeBackend struct {
	*httptest.Server

	mu         sync.Mutex
	body       string
	chunkSize  int           // Bytes per chunk
	chunkDelay time.Duration // Delay between chunks
	failAfter  int           // Drop the connection after N chunks (0 = never)
	status     int
	errorBody  string
	requests   [][]byte
}

// NewFakeBackend starts a backend streaming lines, one per NDJSON line
func NewFakeBackend(lines ...string) *FakeBackend {
	b := &FakeBackend{
		body:      strings.Join(lines, "\n") + "\n",
		chunkSize: 5,
		status:    http.StatusOK,
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	return b
}

// SetChunkSize sets the number of bytes written per chunk
func (b *FakeBackend) SetChunkSize(size int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chunkSize = size
}

// SetChunkDelay sets the delay between chunks
func (b *FakeBackend) SetChunkDelay(delay time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chunkDelay = delay
}

// SetFailAfter makes the backend drop the connection after n chunks
func (b *FakeBackend) SetFailAfter(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failAfter = n
}

// SetStatus makes the backend reject requests with code and body
func (b *FakeBackend) SetStatus(code int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = code
	b.errorBody = body
}

// Requests returns the raw request bodies received so far
func (b *FakeBackend) Requests() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]byte, len(b.requests))
	copy(out, b.requests)
	return out
}

func (b *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	reqBody, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.requests = append(b.requests, reqBody)
	body, size, delay, failAfter := b.body, b.chunkSize, b.chunkDelay, b.failAfter
	status, errorBody := b.status, b.errorBody
	b.mu.Unlock()

	if status != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, errorBody)
		return
	}

	if size <= 0 {
		size = len(body)
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	flusher, _ := w.(http.Flusher)

	chunks := 0
	for i := 0; i < len(body); i += size {
		if failAfter > 0 && chunks >= failAfter {
			dropConnection(w)
			return
		}

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		end := min(i+size, len(body))
		if _, err := io.WriteString(w, body[i:end]); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		chunks++
	}
}

// dropConnection closes the underlying connection mid-response so the
// client sees a truncated body.
func dropConnection(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic("testutil: response writer does not support hijacking")
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		return
	}
	conn.Close()
}
