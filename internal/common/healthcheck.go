package common

import (
	"context"
	"net/http"

	"github.com/exchora/auditchain/internal/audit"
	"github.com/exchora/auditchain/params"
)

// StartHealthCheckServer serves liveness and readiness on a side-car port.
// Readiness runs a full chain verification: a tampered log means the
// instance must not serve reads that would be presented as trustworthy.
func StartHealthCheckServer(ctx context.Context, done chan struct{}, auditLog *audit.Log) {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if report := auditLog.VerifyChain(); !report.IsValid {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:    params.HealthCheckServerAddr,
		Handler: mux,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		close(done)
	case <-serverErr:
		close(done)
	}
}
