package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestHTTPProviderChat(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"hello there"}}]}`)
	defer srv.Close()

	p := NewHTTPProvider("groq", srv.URL, "test-key", "llama-3.3-70b")
	reply, err := p.Chat(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)
}

func TestHTTPProviderAuthFailure(t *testing.T) {
	srv := newChatServer(t, http.StatusUnauthorized, `{"error":"bad key"}`)
	defer srv.Close()

	p := NewHTTPProvider("groq", srv.URL, "test-key", "llama-3.3-70b")
	_, err := p.Chat(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrProviderAuth)
}

func TestHTTPProviderRateLimited(t *testing.T) {
	srv := newChatServer(t, http.StatusTooManyRequests, `{"error":"slow down"}`)
	defer srv.Close()

	p := NewHTTPProvider("gemini", srv.URL, "test-key", "gemini-2.0-flash")
	_, err := p.Chat(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrProviderRateLimited)
}

func TestHTTPProviderEmptyChoices(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, `{"choices":[]}`)
	defer srv.Close()

	p := NewHTTPProvider("groq", srv.URL, "test-key", "llama-3.3-70b")
	_, err := p.Chat(context.Background(), "hi")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProviderAuth)
	assert.NotErrorIs(t, err, ErrProviderRateLimited)
}
