// SPDX-License-Identifier: BSD-3-Clause

// Package transport exposes the daemon's device, setting, profile, mode,
// and alert state over a local JSON/SSE HTTP API. It is the only supervised
// service that talks to the outside world; every other service is reached
// exclusively through the embedded event bus.
package transport

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/lorenzosaino/go-sysctl"
	"github.com/nats-io/nats.go"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coolercontrol/coolerd/pkg/cert"
	"github.com/coolercontrol/coolerd/pkg/ipc"
	"github.com/coolercontrol/coolerd/pkg/log"
	"github.com/coolercontrol/coolerd/service"
)

// sessionCookieName is the HttpOnly cookie carrying the signed session
// token minted by POST /login (spec §6).
const sessionCookieName = "coolercontrol_session"

var _ service.Service = (*Transport)(nil)

// Transport serves the daemon's HTTP API: device discovery, status polling
// and streaming, setting application, profile/function/mode CRUD, alert
// management, and config persistence. Every handler is a thin translation
// layer that forwards requests to the appropriate internal service over
// the event bus and relays the response as JSON.
type Transport struct {
	config *config
	nc     *nats.Conn
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates a new Transport instance with the provided configuration options.
func New(opts ...Option) *Transport {
	cfg := &config{
		name:           "transport",
		addr:           ":11987",
		tlsEnabled:     false,
		hostname:       "localhost",
		certPath:       "/var/cache/coolerd/cert.pem",
		keyPath:        "/var/cache/coolerd/key.pem",
		readTimeout:    5 * time.Second,
		writeTimeout:   30 * time.Second,
		idleTimeout:    120 * time.Second,
		allowedOrigins: []string{"*"},
		rmemMax:        "7500000",
		wmemMax:        "7500000",
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	return &Transport{config: cfg}
}

// Name returns the service name.
func (s *Transport) Name() string {
	return s.config.name
}

// Run starts the HTTP API server and blocks until the context is canceled.
func (s *Transport) Run(ctx context.Context, ipcConn nats.InProcessConnProvider) error {
	s.tracer = otel.Tracer(s.config.name)
	ctx, span := s.tracer.Start(ctx, "transport.Run")
	defer span.End()

	s.logger = log.GetGlobalLogger().With("service", s.config.name)
	s.logger.InfoContext(ctx, "starting transport", "addr", s.config.addr, "tls", s.config.tlsEnabled)

	if s.config.name == "" || s.config.addr == "" {
		err := ErrInvalidConfiguration
		span.RecordError(err)
		return err
	}

	nc, err := nats.Connect("", nats.InProcessServer(ipcConn))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %w", ErrNATSConnectionFailed, err)
	}
	s.nc = nc
	defer nc.Drain() //nolint:errcheck

	if err := s.configureSysctl(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to configure sysctls for the status stream", "error", err)
	}

	router := s.setupRouter()

	var tlsConfig *tls.Config
	if s.config.tlsEnabled {
		tlsConfig, err = s.setupTLS()
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("%w: %w", ErrSetupTLS, err)
		}
	}

	lc := &net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", s.config.addr)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %w", ErrCreateListener, err)
	}
	defer listener.Close()

	httpServer := &http.Server{
		Handler:      router,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
		ReadTimeout:  s.config.readTimeout,
		WriteTimeout: s.config.writeTimeout,
		IdleTimeout:  s.config.idleTimeout,
		TLSConfig:    tlsConfig,
		ErrorLog:     log.NewStdLoggerAt(s.logger, slog.LevelWarn),
	}

	span.SetAttributes(
		attribute.String("service.name", s.config.name),
		attribute.String("net.addr", s.config.addr),
		attribute.Bool("tls.enabled", s.config.tlsEnabled),
	)

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "listening", "addr", s.config.addr)
		var serveErr error
		if s.config.tlsEnabled {
			serveErr = httpServer.ServeTLS(listener, "", "")
		} else {
			serveErr = httpServer.Serve(listener)
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			errCh <- fmt.Errorf("%w: %w", ErrHTTPServer, serveErr)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		s.logger.InfoContext(shutdownCtx, "shutting down transport")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.WarnContext(shutdownCtx, "transport shutdown error", "error", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// requireSession gates next behind a valid session cookie (spec §6:
// "admin endpoints require an authenticated session"). The signing key
// never leaves devicemgr, so validation is a config.session_valid
// round trip rather than local HMAC verification.
func (s *Transport) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
			return
		}
		if !s.validateSession(r.Context(), cookie.Value) {
			http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Transport) validateSession(ctx context.Context, token string) bool {
	data, err := json.Marshal(sessionValidPayload{Token: token})
	if err != nil {
		return false
	}
	msg, err := s.nc.RequestWithContext(ctx, ipc.SubjectConfigSessionValid, data)
	if err != nil {
		s.logger.WarnContext(ctx, "session validation request failed", "error", err)
		return false
	}
	var reply struct {
		Valid bool `json:"valid"`
	}
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return false
	}
	return reply.Valid
}

// configureSysctl raises the kernel socket buffer ceiling the SSE status
// stream's long-lived, bursty writes run into under the default Linux
// limits. Best-effort: a container or non-root runtime that can't write
// to /proc/sys still serves the API, just without the larger buffers.
func (s *Transport) configureSysctl(ctx context.Context) error {
	if s.config.rmemMax != "" {
		if err := sysctl.Set("net.core.rmem_max", s.config.rmemMax); err != nil {
			return fmt.Errorf("%w: %w", ErrSetRmemMax, err)
		}
	}
	if s.config.wmemMax != "" {
		if err := sysctl.Set("net.core.wmem_max", s.config.wmemMax); err != nil {
			return fmt.Errorf("%w: %w", ErrSetWmemMax, err)
		}
	}
	return nil
}

// setupTLS loads or generates the API server's TLS certificate.
func (s *Transport) setupTLS() (*tls.Config, error) {
	certOpts := cert.CertificateOptions{
		Hostname: s.config.hostname,
	}

	certPem, keyPem, err := cert.LoadOrGenerateCertificate(s.config.certPath, s.config.keyPath, certOpts)
	if err != nil {
		return nil, err
	}

	tlsCert, err := tls.X509KeyPair(certPem, keyPem)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{tlsCert},
		MinVersion:   tls.VersionTLS13,
	}, nil
}

// setupRouter builds the HTTP handler tree with CORS and tracing middleware applied.
func (s *Transport) setupRouter() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /devices", s.handleListDevices)
	mux.HandleFunc("GET /devices/{uid}/status", s.handleDeviceStatus)
	mux.HandleFunc("GET /devices/{uid}/status/stream", s.handleDeviceStatusStream)

	mux.HandleFunc("GET /settings/{uid}/{channel}", s.handleGetSetting)
	mux.HandleFunc("PUT /settings/{uid}/{channel}/manual", s.requireSession(s.handleApplyManual))
	mux.HandleFunc("PUT /settings/{uid}/{channel}/profile", s.requireSession(s.handleApplyProfile))
	mux.HandleFunc("DELETE /settings/{uid}/{channel}", s.requireSession(s.handleClearSetting))

	mux.HandleFunc("GET /profiles", s.handleListProfiles)
	mux.HandleFunc("POST /profiles", s.requireSession(s.handleCreateProfile))
	mux.HandleFunc("PUT /profiles/{uid}", s.requireSession(s.handleUpdateProfile))
	mux.HandleFunc("DELETE /profiles/{uid}", s.requireSession(s.handleDeleteProfile))

	mux.HandleFunc("GET /functions", s.handleListFunctions)
	mux.HandleFunc("POST /functions", s.requireSession(s.handleCreateFunction))
	mux.HandleFunc("PUT /functions/{uid}", s.requireSession(s.handleUpdateFunction))
	mux.HandleFunc("DELETE /functions/{uid}", s.requireSession(s.handleDeleteFunction))

	mux.HandleFunc("GET /modes", s.handleListModes)
	mux.HandleFunc("POST /modes", s.requireSession(s.handleCreateMode))
	mux.HandleFunc("POST /modes/{uid}/activate", s.requireSession(s.handleActivateMode))
	mux.HandleFunc("DELETE /modes/{uid}", s.requireSession(s.handleDeleteMode))

	mux.HandleFunc("GET /alerts", s.handleListAlerts)
	mux.HandleFunc("POST /alerts", s.requireSession(s.handleCreateAlert))
	mux.HandleFunc("DELETE /alerts/{uid}", s.requireSession(s.handleDeleteAlert))

	mux.HandleFunc("GET /config", s.handleGetConfig)
	mux.HandleFunc("POST /config", s.requireSession(s.handleSaveConfig))

	mux.HandleFunc("POST /handshake", s.handleHandshake)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("POST /passwd", s.requireSession(s.handlePasswd))
	mux.HandleFunc("GET /session/valid", s.requireSession(s.handleSessionValid))
	mux.HandleFunc("POST /shutdown", s.requireSession(s.handleShutdown))

	mux.HandleFunc("GET /logs", s.handleLogs)
	mux.HandleFunc("GET /sse/logs", s.handleLogsStream)
	mux.HandleFunc("GET /sse/modes", s.handleModesStream)
	mux.HandleFunc("GET /sse/alerts", s.handleAlertsStream)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   s.config.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return otelhttp.NewHandler(corsMiddleware.Handler(mux), s.config.name)
}
