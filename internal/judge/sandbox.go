package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

var (
	// ErrSandbox covers all execution-layer failures: transport errors and
	// poll timeouts alike. Callers decide whether that is retryable (it is
	// not retried at this layer).
	ErrSandbox = errors.New("sandbox execution failed")
	// ErrSandboxTimeout is raised when polling exceeds the attempt cap. It
	// wraps ErrSandbox so both surface as one error category.
	ErrSandboxTimeout = fmt.Errorf("sandbox polling timed out: %w", ErrSandbox)
)

// Sandbox status ids. Anything above statusRunning is terminal.
const (
	statusInQueue    = 1
	statusRunning    = 2
	StatusAccepted   = 3
	StatusWrongAns   = 4
	StatusTimeLimit  = 5
	StatusCompileErr = 6
	// 7..12 are the runtime-error range (SIGSEGV, SIGFPE, NZEC, ...).
	statusRuntimeErrLow  = 7
	statusRuntimeErrHigh = 12
)

const (
	defaultPollInterval = 200 * time.Millisecond
	defaultMaxPolls     = 60 // ~12s ceiling per execution
)

// ExecutionResult is the raw record returned by the sandbox for one run.
type ExecutionResult struct {
	Token         string `json:"token"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
	Time          string `json:"time"`   // Wall time, seconds, e.g. "0.004"
	Memory        int    `json:"memory"` // KB
	Status        struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
}

// RuntimeMs converts the sandbox's wall-time string to milliseconds.
func (r *ExecutionResult) RuntimeMs() int {
	secs, err := strconv.ParseFloat(r.Time, 64)
	if err != nil {
		return 0
	}
	return int(secs * 1000)
}

// Terminal reports whether the record carries a final status.
func (r *ExecutionResult) Terminal() bool {
	return r.Status.ID > statusRunning
}

// SandboxClient submits programs to the external code-execution service and
// polls until a terminal status, bounded by maxPolls attempts.
type SandboxClient struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
	maxPolls     int
}

func NewSandboxClient(baseURL, apiKey string) *SandboxClient {
	return &SandboxClient{
		baseURL:      baseURL,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		pollInterval: defaultPollInterval,
		maxPolls:     defaultMaxPolls,
	}
}

type submissionRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin,omitempty"`
}

// Execute submits source for the given language tag with the given stdin and
// waits for a terminal result. The initial response may already be terminal;
// otherwise the returned token is polled on a fixed interval.
func (c *SandboxClient) Execute(ctx context.Context, source, language, stdin string) (*ExecutionResult, error) {
	lang, ok := LookupLanguage(language)
	if !ok {
		return nil, fmt.Errorf("unsupported language %q: %w", language, ErrSandbox)
	}

	body, err := json.Marshal(submissionRequest{
		SourceCode: source,
		LanguageID: lang.SandboxID,
		Stdin:      stdin,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal sandbox request: %w", err)
	}

	result, err := c.post(ctx, "/submissions?base64_encoded=false&wait=true", body)
	if err != nil {
		return nil, err
	}
	if result.Terminal() {
		return result, nil
	}
	// Poll responses may omit the token field, so pin the URL to the token
	// from the submit response.
	token := result.Token
	if token == "" {
		return nil, fmt.Errorf("sandbox returned neither terminal status nor token: %w", ErrSandbox)
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for attempt := 0; attempt < c.maxPolls; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("sandbox wait canceled: %w", ErrSandbox)
		case <-ticker.C:
		}

		result, err = c.get(ctx, "/submissions/"+token+"?base64_encoded=false")
		if err != nil {
			return nil, err
		}
		if result.Terminal() {
			return result, nil
		}
	}
	return nil, ErrSandboxTimeout
}

func (c *SandboxClient) post(ctx context.Context, path string, body []byte) (*ExecutionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sandbox request: %w", ErrSandbox)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *SandboxClient) get(ctx context.Context, path string) (*ExecutionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build sandbox request: %w", ErrSandbox)
	}
	return c.do(req)
}

func (c *SandboxClient) do(req *http.Request) (*ExecutionResult, error) {
	if c.apiKey != "" {
		req.Header.Set("X-Auth-Token", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sandbox request failed: %v: %w", err, ErrSandbox)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("sandbox returned HTTP %d: %s: %w", resp.StatusCode, bytes.TrimSpace(payload), ErrSandbox)
	}

	var result ExecutionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode sandbox response: %v: %w", err, ErrSandbox)
	}
	return &result, nil
}
