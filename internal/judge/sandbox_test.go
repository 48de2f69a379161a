package judge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *SandboxClient {
	c := NewSandboxClient(url, "")
	c.pollInterval = time.Millisecond
	c.maxPolls = 5
	return c
}

func writeResult(w http.ResponseWriter, statusID int, token, stdout string) {
	r := ExecutionResult{Token: token, Stdout: stdout, Time: "0.004", Memory: 10240}
	r.Status.ID = statusID
	r.Status.Description = "status"
	json.NewEncoder(w).Encode(r)
}

func TestExecuteImmediateTerminalResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var req submissionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 63, req.LanguageID)
		writeResult(w, StatusAccepted, "tok-1", "42")
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Execute(context.Background(), "code", "javascript", "")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, res.Status.ID)
	assert.Equal(t, "42", res.Stdout)
	assert.Equal(t, 4, res.RuntimeMs())
}

func TestExecutePollsUntilTerminal(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeResult(w, statusRunning, "tok-2", "")
			return
		}
		if polls.Add(1) < 3 {
			writeResult(w, statusRunning, "tok-2", "")
			return
		}
		writeResult(w, StatusAccepted, "tok-2", "ok")
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Execute(context.Background(), "code", "python", "1 2")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, res.Status.ID)
	assert.EqualValues(t, 3, polls.Load())
}

func TestExecutePollsKeepSubmitTokenWhenOmitted(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeResult(w, statusInQueue, "tok-4", "")
			return
		}
		require.Equal(t, "/submissions/tok-4", r.URL.Path)
		// First poll answers without a token; the next poll URL must not
		// degrade.
		if polls.Add(1) < 2 {
			writeResult(w, statusRunning, "", "")
			return
		}
		writeResult(w, StatusAccepted, "", "done")
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Execute(context.Background(), "code", "javascript", "")
	require.NoError(t, err)
	assert.Equal(t, "done", res.Stdout)
	assert.EqualValues(t, 2, polls.Load())
}

func TestExecutePollTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, statusInQueue, "tok-3", "")
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Execute(context.Background(), "code", "javascript", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSandboxTimeout)
	// The timeout is still an execution-layer error to the caller.
	assert.ErrorIs(t, err, ErrSandbox)
}

func TestExecuteTransportError(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close() // Refuse all connections.

	_, err := newTestClient(srv.URL).Execute(context.Background(), "code", "javascript", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSandbox)
	assert.NotErrorIs(t, err, ErrSandboxTimeout)
}

func TestExecuteServerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Execute(context.Background(), "code", "javascript", "")
	assert.ErrorIs(t, err, ErrSandbox)
}

func TestExecuteUnsupportedLanguage(t *testing.T) {
	_, err := newTestClient("http://unused").Execute(context.Background(), "code", "cobol", "")
	assert.ErrorIs(t, err, ErrSandbox)
}
