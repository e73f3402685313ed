package testutil

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeBackend(t *testing.T) {
	t.Run("should stream the lines in chunks", func(t *testing.T) {
		b := NewFakeBackend(`{"t":"c","v":"a"}`, `{"t":"c","v":"b"}`)
		defer b.Close()
		b.SetChunkSize(3)

		resp, err := http.Post(b.URL, "application/json", strings.NewReader(`{"messages":[]}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))
		assert.Equal(t, "{\"t\":\"c\",\"v\":\"a\"}\n{\"t\":\"c\",\"v\":\"b\"}\n", string(body))

		reqs := b.Requests()
		require.Len(t, reqs, 1)
		assert.JSONEq(t, `{"messages":[]}`, string(reqs[0]))
	})

	t.Run("should reject with the configured status", func(t *testing.T) {
		b := NewFakeBackend()
		defer b.Close()
		b.SetStatus(http.StatusTooManyRequests, `{"error":"slow down"}`)

		resp, err := http.Post(b.URL, "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, `{"error":"slow down"}`, string(body))
	})

	t.Run("should truncate the body when failing", func(t *testing.T) {
		b := NewFakeBackend(`{"t":"c","v":"first"}`, `{"t":"c","v":"second"}`)
		defer b.Close()
		b.SetChunkSize(4)
		b.SetFailAfter(2)

		resp, err := http.Post(b.URL, "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		assert.Error(t, err)
		assert.Equal(t, `{"t"`+`:"c"`, string(body))
	})
}
