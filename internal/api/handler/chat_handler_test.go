package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"algoarena/internal/ai"
	"algoarena/internal/common/security"
	"algoarena/internal/domain/model"
	"algoarena/internal/platform/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatProvider struct{ name string }

func (p stubChatProvider) Name() string { return p.name }

func (p stubChatProvider) Chat(context.Context, string) (string, error) {
	return "ok from " + p.name, nil
}

func newChatTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: []byte("test-secret"), JWTExp: time.Hour}
	security.InitJWT()

	router := ai.NewRouter([]ai.Provider{stubChatProvider{"alpha"}, stubChatProvider{"beta"}}, 100)
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(security.TokenAuth))
	r.Route("/chat", NewChatHandler(router).RegisterRoutes)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postChat(t *testing.T, srv *httptest.Server, token, body string) chatResponse {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/chat/", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return parsed
}

func TestChatProviderChoiceIsProOnly(t *testing.T) {
	srv := newChatTestServer(t)
	body := `{"prompt":"explain two pointers","provider":"beta"}`

	freeToken, err := security.GenerateToken("user-1", model.RoleUser, model.TierFree)
	require.NoError(t, err)
	got := postChat(t, srv, freeToken, body)
	assert.Equal(t, "alpha", got.Provider, "free users take the default fallback order")

	proToken, err := security.GenerateToken("user-2", model.RoleUser, model.TierPro)
	require.NoError(t, err)
	got = postChat(t, srv, proToken, body)
	assert.Equal(t, "beta", got.Provider, "pro users pick their provider")
}
