// Command explain-proxy packages the relay as a Cloud Function with entry
// point ExplainProxy.
package main

import (
	"log"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/joseph-ayodele/doc-explainer/internal/app"
	"github.com/joseph-ayodele/doc-explainer/internal/common"
	"github.com/joseph-ayodele/doc-explainer/internal/proxy"
)

var (
	relay   *proxy.Relay
	once    sync.Once
	initErr error
)

func init() {
	functions.HTTP("ExplainProxy", handleExplainProxy)
}

// main is required by the Go Functions Framework.
func main() {}

func handleExplainProxy(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		cfg := common.LoadConfig()
		relay, initErr = app.Relay(*cfg, common.NewLogger(cfg.Log), nil)
	})
	if initErr != nil {
		log.Printf("relay initialization failed: %v", initErr)
		http.Error(w, "Proxy not configured", http.StatusInternalServerError)
		return
	}
	relay.ServeHTTP(w, r)
}
