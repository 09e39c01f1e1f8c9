// HTTP server exposing forwarder metrics to scrapers
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"gelfsend/internal/global"
	"gelfsend/internal/logctx"
)

// Sets up HTTP listener configuration for metric scraping
func SetupListener(ctx context.Context, listenAddr string, metricsHandler http.Handler) (server *http.Server) {
	if listenAddr == "" {
		listenAddr = global.HTTPListenAddr
	}

	requestMultiplexer := http.NewServeMux()

	// Root help page
	requestMultiplexer.HandleFunc("/", func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodGet {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if clientRequest.URL.Path != "/" {
			serverResponder.WriteHeader(http.StatusNotFound)
			return
		}

		serverResponder.Header().Set("Content-Type", "text/plain; charset=utf-8")
		serverResponder.WriteHeader(http.StatusOK)
		fmt.Fprintf(serverResponder, "%s %s\n\nPrometheus metrics: http://%s%s\n",
			global.ProgBaseName, global.ProgVersion, listenAddr, global.MetricsPath)
	})

	// Scrapes
	requestMultiplexer.HandleFunc(global.MetricsPath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodGet {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		metricsHandler.ServeHTTP(serverResponder, clientRequest)
	})

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      requestMultiplexer,
		ReadTimeout:  global.HTTPReadTimeout,
		WriteTimeout: global.HTTPWriteTimeout,
		IdleTimeout:  global.HTTPIdleTimeout,
		ErrorLog:     log.New(httpLogWriter{ctx: ctx}, "", 0),
	}
	return
}

// Starts the metric HTTP server and waits for requests
func Start(ctx context.Context, server *http.Server) {
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Metric server starting on %s (http://%s%s)\n",
		server.Addr, server.Addr, global.MetricsPath)
	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Metric server failed to start: %v\n", err)
	}
}

// Logs HTTP server errors to internal program buffer (via context logger)
func (logWriter httpLogWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	if n == 0 {
		return
	}
	logctx.LogEvent(
		logWriter.ctx,
		global.VerbosityStandard,
		global.ErrorLog,
		"%s\n", strings.TrimSpace(string(p)),
	)
	return
}
