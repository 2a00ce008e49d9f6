// SPDX-License-Identifier: BSD-3-Clause

package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/coolercontrol/coolerd/pkg/ipc"
	"github.com/coolercontrol/coolerd/pkg/log"
)

// requestPayload carries a request identifier alongside whatever body the
// caller sent, so internal services can address a specific device, channel,
// profile, function, mode, or alert without the transport needing to know
// their shapes.
type requestPayload struct {
	UID     string          `json:"uid,omitempty"`
	Channel string          `json:"channel,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
}

// sessionValidPayload is config.session_valid's request shape.
type sessionValidPayload struct {
	Token string `json:"token"`
}

// micro.Request.Error sets these headers on its reply; RespondWithError
// and RespondWithErrorCode are the only things on the other end that
// populate them (pkg/ipc/respond.go).
const (
	natsServiceErrorCodeHeader = "Nats-Service-Error-Code"
	natsServiceErrorHeader     = "Nats-Service-Error"
)

// proxyRequest marshals req, sends it to subject over the event bus, and
// writes the reply back to the client as JSON. A reply carrying a
// Nats-Service-Error-Code header (set by ipc.RespondWithError /
// RespondWithErrorCode) is translated to that HTTP status rather than
// relayed as a 200 with an empty body.
func (s *Transport) proxyRequest(w http.ResponseWriter, r *http.Request, subject string, req requestPayload) {
	data, err := json.Marshal(req)
	if err != nil {
		http.Error(w, ErrInvalidRequestBody.Error(), http.StatusBadRequest)
		return
	}

	msg, err := s.nc.RequestWithContext(r.Context(), subject, data)
	if err != nil {
		if err == nats.ErrTimeout {
			http.Error(w, "upstream timeout", http.StatusGatewayTimeout)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	if code := msg.Header.Get(natsServiceErrorCodeHeader); code != "" {
		status, err := strconv.Atoi(code)
		if err != nil || status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		http.Error(w, msg.Header.Get(natsServiceErrorHeader), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(msg.Data) //nolint:errcheck
}

func (s *Transport) readBody(r *http.Request) (json.RawMessage, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequestBody, err)
	}
	return data, nil
}

func (s *Transport) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.proxyRequest(w, r, ipc.SubjectSystemHealth, requestPayload{})
}

func (s *Transport) handleListDevices(w http.ResponseWriter, r *http.Request) {
	s.proxyRequest(w, r, ipc.SubjectDeviceList, requestPayload{})
}

func (s *Transport) handleDeviceStatus(w http.ResponseWriter, r *http.Request) {
	s.proxyRequest(w, r, ipc.SubjectDeviceStatus, requestPayload{UID: r.PathValue("uid")})
}

// handleDeviceStatusStream relays the per-tick status broadcast to the
// client as Server-Sent Events for as long as the connection stays open.
func (s *Transport) handleDeviceStatusStream(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("uid")
	s.streamEventBus(w, r, ipc.SubjectEventStatus, uid)
}

// handleModesStream relays mode.activate broadcasts as SSE (spec §6 GET
// /sse/modes).
func (s *Transport) handleModesStream(w http.ResponseWriter, r *http.Request) {
	s.streamEventBus(w, r, ipc.SubjectEventMode, "")
}

// handleAlertsStream relays alert transition broadcasts as SSE (spec §6
// GET /sse/alerts).
func (s *Transport) handleAlertsStream(w http.ResponseWriter, r *http.Request) {
	s.streamEventBus(w, r, ipc.SubjectEventAlert, "")
}

// streamEventBus relays every message published on subject to the
// client as Server-Sent Events until the request's context is done. A
// non-empty uid filters to only messages whose JSON body has a
// matching "uid" field, which is how handleDeviceStatusStream scopes
// the feed to a single device.
func (s *Transport) streamEventBus(w http.ResponseWriter, r *http.Request, subject, uid string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := s.nc.SubscribeSync(subject)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	defer sub.Unsubscribe() //nolint:errcheck

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		msg, err := sub.NextMsgWithContext(ctx)
		if err != nil {
			return
		}

		var payload struct {
			UID string `json:"uid"`
		}
		if uid != "" {
			if err := json.Unmarshal(msg.Data, &payload); err == nil && payload.UID != uid {
				continue
			}
		}

		fmt.Fprintf(w, "data: %s\n\n", msg.Data)
		flusher.Flush()
	}
}

func (s *Transport) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	s.proxyRequest(w, r, ipc.SubjectSettingInfo, requestPayload{UID: r.PathValue("uid"), Channel: r.PathValue("channel")})
}

func (s *Transport) handleApplyManual(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.proxyRequest(w, r, ipc.SubjectSettingApplyManual, requestPayload{UID: r.PathValue("uid"), Channel: r.PathValue("channel"), Body: body})
}

func (s *Transport) handleApplyProfile(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.proxyRequest(w, r, ipc.SubjectSettingApplyProfile, requestPayload{UID: r.PathValue("uid"), Channel: r.PathValue("channel"), Body: body})
}

func (s *Transport) handleClearSetting(w http.ResponseWriter, r *http.Request) {
	s.proxyRequest(w, r, ipc.SubjectSettingClear, requestPayload{UID: r.PathValue("uid"), Channel: r.PathValue("channel")})
}

func (s *Transport) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	s.proxyRequest(w, r, ipc.SubjectProfileList, requestPayload{})
}

func (s *Transport) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.proxyRequest(w, r, ipc.SubjectProfileCreate, requestPayload{Body: body})
}

func (s *Transport) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.proxyRequest(w, r, ipc.SubjectProfileUpdate, requestPayload{UID: r.PathValue("uid"), Body: body})
}

func (s *Transport) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	s.proxyRequest(w, r, ipc.SubjectProfileDelete, requestPayload{UID: r.PathValue("uid")})
}

func (s *Transport) handleListFunctions(w http.ResponseWriter, r *http.Request) {
	s.proxyRequest(w, r, ipc.SubjectFunctionList, requestPayload{})
}

func (s *Transport) handleCreateFunction(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.proxyRequest(w, r, ipc.SubjectFunctionCreate, requestPayload{Body: body})
}

func (s *Transport) handleUpdateFunction(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.proxyRequest(w, r, ipc.SubjectFunctionUpdate, requestPayload{UID: r.PathValue("uid"), Body: body})
}

func (s *Transport) handleDeleteFunction(w http.ResponseWriter, r *http.Request) {
	s.proxyRequest(w, r, ipc.SubjectFunctionDelete, requestPayload{UID: r.PathValue("uid")})
}

func (s *Transport) handleListModes(w http.ResponseWriter, r *http.Request) {
	s.proxyRequest(w, r, ipc.SubjectModeList, requestPayload{})
}

func (s *Transport) handleCreateMode(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.proxyRequest(w, r, ipc.SubjectModeCreate, requestPayload{Body: body})
}

func (s *Transport) handleActivateMode(w http.ResponseWriter, r *http.Request) {
	s.proxyRequest(w, r, ipc.SubjectModeActivate, requestPayload{UID: r.PathValue("uid")})
}

func (s *Transport) handleDeleteMode(w http.ResponseWriter, r *http.Request) {
	s.proxyRequest(w, r, ipc.SubjectModeDelete, requestPayload{UID: r.PathValue("uid")})
}

func (s *Transport) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	s.proxyRequest(w, r, ipc.SubjectAlertList, requestPayload{})
}

func (s *Transport) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.proxyRequest(w, r, ipc.SubjectAlertCreate, requestPayload{Body: body})
}

func (s *Transport) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	s.proxyRequest(w, r, ipc.SubjectAlertDelete, requestPayload{UID: r.PathValue("uid")})
}

func (s *Transport) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.proxyRequest(w, r, ipc.SubjectConfigGet, requestPayload{})
}

func (s *Transport) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.proxyRequest(w, r, ipc.SubjectConfigSave, requestPayload{Body: body})
}

// handleLogin verifies the submitted password through devicemgr and,
// on success, sets the signed session token devicemgr minted as an
// HttpOnly cookie (spec §6). Unlike the other handlers it can't use
// proxyRequest's raw passthrough: it needs to inspect the JSON reply
// to pull the token out and turn it into a cookie rather than relay
// it to the response body.
func (s *Transport) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := json.Marshal(requestPayload{Body: body})
	if err != nil {
		http.Error(w, ErrInvalidRequestBody.Error(), http.StatusBadRequest)
		return
	}

	msg, err := s.nc.RequestWithContext(r.Context(), ipc.SubjectConfigLogin, data)
	if err != nil {
		if err == nats.ErrTimeout {
			http.Error(w, "upstream timeout", http.StatusGatewayTimeout)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if code := msg.Header.Get(natsServiceErrorCodeHeader); code != "" {
		status, err := strconv.Atoi(code)
		if err != nil || status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		http.Error(w, msg.Header.Get(natsServiceErrorHeader), status)
		return
	}

	var reply struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    reply.Token,
		Path:     "/",
		Expires:  reply.ExpiresAt,
		HttpOnly: true,
		Secure:   s.config.tlsEnabled,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "application/json")
	w.Write(msg.Data) //nolint:errcheck
}

// handleLogout clears the session cookie. Sessions are stateless signed
// tokens with no server-side revocation list, so there is nothing to
// tell devicemgr: once the cookie is gone the client can no longer
// present it, and it expires on its own regardless (spec §6).
func (s *Transport) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.tlsEnabled,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// handlePasswd proxies a password change to devicemgr. Reachable only
// through requireSession (spec §6 POST /passwd).
func (s *Transport) handlePasswd(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.proxyRequest(w, r, ipc.SubjectConfigPasswd, requestPayload{Body: body})
}

// handleSessionValid backs GET /session/valid. requireSession already
// round-tripped to devicemgr to reach this handler, so getting here at
// all means the cookie is good.
func (s *Transport) handleSessionValid(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"valid":true}`)) //nolint:errcheck
}

// handleShutdown requests a graceful daemon shutdown (spec §6 POST
// /shutdown): it raises the same SIGTERM cmd/coolerd already listens
// for, so the existing signal-driven shutdown path runs unchanged.
func (s *Transport) handleShutdown(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusAccepted)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to find own process for shutdown", "error", err)
		return
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to signal self for shutdown", "error", err)
	}
}

// handleHandshake is the API's liveness probe for clients establishing
// a new connection (spec §6 POST /handshake).
func (s *Transport) handleHandshake(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"shake":true}`)) //nolint:errcheck
}

// handleLogs returns the daemon's recent log tail (spec §6 GET /logs).
func (s *Transport) handleLogs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"logs": log.Tail()}) //nolint:errcheck
}

// handleLogsStream relays newly emitted log entries as SSE (spec §6
// SSE /sse/logs). Unlike the other SSE handlers this reads from
// pkg/log's in-process broadcaster directly rather than the event bus,
// since every service in this daemon shares the same logger package.
func (s *Transport) handleLogsStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, cancel := log.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case entry := <-ch:
			data, err := json.Marshal(entry)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
