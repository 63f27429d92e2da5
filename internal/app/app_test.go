package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-explainer/internal/common"
	"github.com/joseph-ayodele/doc-explainer/internal/proxy"
)

// upstream answers every chat completion and records the credential it saw.
func upstream(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu    sync.Mutex
		auths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auths = append(auths, r.Header.Get("Authorization"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"deepseek/deepseek-chat","choices":[{"message":{"role":"assistant","content":"You pay rent."}}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), auths...)
	}
}

func wire(t *testing.T, upstreamURL string) *common.Config {
	t.Helper()
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("UPSTREAM_URL", upstreamURL)
	t.Setenv("PROXY_ORIGIN", "")
	t.Setenv(proxy.APIKeyEnv, "test-key")
	cfg := common.LoadConfig()

	relay, err := Relay(*cfg, nil, nil)
	require.NoError(t, err)
	rs := httptest.NewServer(relay)
	t.Cleanup(rs.Close)
	cfg.Proxy.URL = rs.URL
	return cfg
}

func TestBuild_ExplainThroughAllowListedRelay(t *testing.T) {
	up, auths := upstream(t)
	cfg := wire(t, up.URL)
	assert.Equal(t, "https://a.example", cfg.Proxy.Origin)

	a := Build(*cfg, nil, nil)
	res, err := a.Explainer.Explain(context.Background(), "Tenant pays rent.", true)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "You pay rent.")
	assert.NotEmpty(t, res.QuickTake)

	answer, err := a.Explainer.Ask(context.Background(), "Tenant pays rent.", "Who pays?")
	require.NoError(t, err)
	assert.Equal(t, "You pay rent.", answer)

	require.NotEmpty(t, auths())
	for _, h := range auths() {
		assert.Equal(t, "Bearer test-key", h)
	}
}

func TestBuild_ForeignOriginIsRejected(t *testing.T) {
	up, auths := upstream(t)
	cfg := wire(t, up.URL)
	cfg.Proxy.Origin = "https://evil.example"

	a := Build(*cfg, nil, nil)
	_, err := a.Explainer.Explain(context.Background(), "Tenant pays rent.", true)
	require.Error(t, err)
	assert.Equal(t, common.CodeUpstream, common.CodeOf(err))
	assert.Contains(t, err.Error(), "upstream error 403: Forbidden")
	assert.Empty(t, auths())
}
