// SPDX-License-Identifier: BSD-3-Clause

package devicemgr

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coolercontrol/coolerd/internal/alert"
	cfgstore "github.com/coolercontrol/coolerd/internal/config"
	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/function"
	"github.com/coolercontrol/coolerd/internal/mode"
	"github.com/coolercontrol/coolerd/internal/profile"
	"github.com/coolercontrol/coolerd/internal/setting"
	"github.com/coolercontrol/coolerd/pkg/ipc"
)

// requestPayload mirrors the transport package's wire shape: a request
// identifier alongside whatever JSON body the caller sent.
type requestPayload struct {
	UID     string          `json:"uid,omitempty"`
	Channel string          `json:"channel,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
}

func (d *DeviceMgr) registerEndpoints(ctx context.Context) error {
	groups := make(map[string]micro.Group)

	register := func(subject string, handler func(context.Context, micro.Request)) error {
		return ipc.RegisterEndpointWithGroupCache(d.micro, subject, micro.HandlerFunc(d.createRequestHandler(ctx, handler)), groups)
	}

	endpoints := []struct {
		subject string
		handler func(context.Context, micro.Request)
	}{
		{ipc.SubjectSystemHealth, d.handleHealth},
		{ipc.SubjectDeviceList, d.handleDeviceList},
		{ipc.SubjectDeviceStatus, d.handleDeviceStatus},
		{ipc.SubjectSettingInfo, d.handleSettingInfo},
		{ipc.SubjectSettingApplyManual, d.handleApplyManual},
		{ipc.SubjectSettingApplyProfile, d.handleApplyProfile},
		{ipc.SubjectSettingClear, d.handleClearSetting},
		{ipc.SubjectProfileList, d.handleProfileList},
		{ipc.SubjectProfileCreate, d.handleProfileCreate},
		{ipc.SubjectProfileUpdate, d.handleProfileUpdate},
		{ipc.SubjectProfileDelete, d.handleProfileDelete},
		{ipc.SubjectFunctionList, d.handleFunctionList},
		{ipc.SubjectFunctionCreate, d.handleFunctionCreate},
		{ipc.SubjectFunctionUpdate, d.handleFunctionUpdate},
		{ipc.SubjectFunctionDelete, d.handleFunctionDelete},
		{ipc.SubjectModeList, d.handleModeList},
		{ipc.SubjectModeCreate, d.handleModeCreate},
		{ipc.SubjectModeActivate, d.handleModeActivate},
		{ipc.SubjectModeDelete, d.handleModeDelete},
		{ipc.SubjectAlertList, d.handleAlertList},
		{ipc.SubjectAlertCreate, d.handleAlertCreate},
		{ipc.SubjectAlertDelete, d.handleAlertDelete},
		{ipc.SubjectConfigGet, d.handleConfigGet},
		{ipc.SubjectConfigSave, d.handleConfigSave},
		{ipc.SubjectConfigLogin, d.handleLogin},
		{ipc.SubjectConfigPasswd, d.handlePasswd},
		{ipc.SubjectConfigSessionValid, d.handleSessionValid},
	}

	for _, e := range endpoints {
		if err := register(e.subject, e.handler); err != nil {
			return fmt.Errorf("failed to register %s endpoint: %w", e.subject, err)
		}
	}
	return nil
}

func (d *DeviceMgr) createRequestHandler(parentCtx context.Context, handler func(context.Context, micro.Request)) micro.HandlerFunc {
	return func(req micro.Request) {
		ctx := context.WithoutCancel(parentCtx)
		if d.tracer != nil {
			var span trace.Span
			ctx, span = d.tracer.Start(ctx, "devicemgr.handleRequest")
			span.SetAttributes(attribute.String("subject", req.Subject()))
			defer span.End()
		}
		handler(ctx, req) //nolint:contextcheck
	}
}

func respondJSON(ctx context.Context, req micro.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrMarshalingFailed, err.Error())
		return
	}
	_ = req.Respond(data) //nolint:errcheck
}

func decodeRequest(req micro.Request) (requestPayload, error) {
	var p requestPayload
	if len(req.Data()) == 0 {
		return p, nil
	}
	err := json.Unmarshal(req.Data(), &p)
	return p, err
}

func (d *DeviceMgr) handleHealth(ctx context.Context, req micro.Request) {
	respondJSON(ctx, req, map[string]any{
		"status":  "ok",
		"devices": len(d.registry.List()),
	})
}

func (d *DeviceMgr) handleDeviceList(ctx context.Context, req micro.Request) {
	respondJSON(ctx, req, d.registry.List())
}

func (d *DeviceMgr) handleDeviceStatus(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	status, ok := d.registry.Latest(p.UID)
	if !ok {
		ipc.RespondWithError(ctx, req, ipc.ErrComponentNotFound, "device not found or never sampled")
		return
	}
	respondJSON(ctx, req, status)
}

func (d *DeviceMgr) handleSettingInfo(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	ctrl, ok := d.settings.Get(p.UID, p.Channel)
	if !ok {
		respondJSON(ctx, req, setting.Setting{Kind: setting.KindUnset})
		return
	}
	respondJSON(ctx, req, map[string]any{
		"setting":      ctrl.Setting(),
		"last_applied": ctrl.LastApplied(),
	})
}

func (d *DeviceMgr) handleApplyManual(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	var body struct {
		Duty int `json:"duty"`
	}
	if err := json.Unmarshal(p.Body, &body); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	ctrl, err := d.settings.EnsureController(ctx, p.UID, p.Channel)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	if err := ctrl.ApplyManual(ctx, body.Duty); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrStateTransitionFailed, err.Error())
		return
	}
	_ = d.store.SaveSetting(p.UID, p.Channel, ctrl.Setting())
	respondJSON(ctx, req, ctrl.Setting())
}

func (d *DeviceMgr) handleApplyProfile(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	var body struct {
		ProfileUID string `json:"profile_uid"`
	}
	if err := json.Unmarshal(p.Body, &body); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if _, ok := d.Profile(body.ProfileUID); !ok {
		ipc.RespondWithError(ctx, req, ipc.ErrComponentNotFound, "profile not found")
		return
	}
	ctrl, err := d.settings.EnsureController(ctx, p.UID, p.Channel)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	if err := ctrl.ApplyProfile(ctx, body.ProfileUID); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrStateTransitionFailed, err.Error())
		return
	}
	_ = d.store.SaveSetting(p.UID, p.Channel, ctrl.Setting())
	respondJSON(ctx, req, ctrl.Setting())
}

func (d *DeviceMgr) handleClearSetting(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	ctrl, err := d.settings.EnsureController(ctx, p.UID, p.Channel)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	if err := ctrl.Clear(ctx); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrStateTransitionFailed, err.Error())
		return
	}
	_ = d.store.SaveSetting(p.UID, p.Channel, ctrl.Setting())
	respondJSON(ctx, req, ctrl.Setting())
}

func (d *DeviceMgr) handleProfileList(ctx context.Context, req micro.Request) {
	respondJSON(ctx, req, d.store.Profiles())
}

func (d *DeviceMgr) handleProfileCreate(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	var pr profile.Profile
	if err := json.Unmarshal(p.Body, &pr); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if pr.Type == profile.TypeGraph {
		if err := profile.ValidateGraph(pr.SpeedProfile); err != nil {
			ipc.RespondWithError(ctx, req, ipc.ErrInvalidTrigger, err.Error())
			return
		}
	}
	if err := d.store.PutProfile(&pr); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	d.mu.Lock()
	d.profiles[pr.UID] = &pr
	d.mu.Unlock()
	respondJSON(ctx, req, pr)
}

func (d *DeviceMgr) handleProfileUpdate(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	var pr profile.Profile
	if err := json.Unmarshal(p.Body, &pr); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	pr.UID = p.UID
	if pr.Type == profile.TypeGraph {
		if err := profile.ValidateGraph(pr.SpeedProfile); err != nil {
			ipc.RespondWithError(ctx, req, ipc.ErrInvalidTrigger, err.Error())
			return
		}
	}
	if err := d.store.PutProfile(&pr); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	d.mu.Lock()
	d.profiles[pr.UID] = &pr
	d.mu.Unlock()
	respondJSON(ctx, req, pr)
}

func (d *DeviceMgr) handleProfileDelete(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := d.store.DeleteProfile(p.UID); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	d.mu.Lock()
	delete(d.profiles, p.UID)
	d.mu.Unlock()
	respondJSON(ctx, req, map[string]string{"uid": p.UID})
}

func (d *DeviceMgr) handleFunctionList(ctx context.Context, req micro.Request) {
	respondJSON(ctx, req, d.store.Functions())
}

func (d *DeviceMgr) handleFunctionCreate(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	var fn function.Function
	if err := json.Unmarshal(p.Body, &fn); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := d.store.PutFunction(&fn); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	d.mu.Lock()
	d.functions[fn.UID] = &fn
	d.mu.Unlock()
	respondJSON(ctx, req, fn)
}

func (d *DeviceMgr) handleFunctionUpdate(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	var fn function.Function
	if err := json.Unmarshal(p.Body, &fn); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	fn.UID = p.UID
	if err := d.store.PutFunction(&fn); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	d.mu.Lock()
	d.functions[fn.UID] = &fn
	d.mu.Unlock()
	respondJSON(ctx, req, fn)
}

func (d *DeviceMgr) handleFunctionDelete(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := d.store.DeleteFunction(p.UID); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	d.mu.Lock()
	delete(d.functions, p.UID)
	d.mu.Unlock()
	respondJSON(ctx, req, map[string]string{"uid": p.UID})
}

func (d *DeviceMgr) handleModeList(ctx context.Context, req micro.Request) {
	respondJSON(ctx, req, d.modes.List())
}

// channelSettingWire is the JSON wire shape of one channel's snapshot
// setting within a mode create request, since mode.Mode.Settings is
// keyed by device.ChannelKey and tagged json:"-" for exactly this
// reason: the map key isn't a JSON object key on its own.
type channelSettingWire struct {
	DeviceUID  string `json:"device_uid"`
	Channel    string `json:"channel"`
	Kind       string `json:"kind"`
	Duty       int    `json:"duty,omitempty"`
	ProfileUID string `json:"profile_uid,omitempty"`
}

type modeWire struct {
	UID      string               `json:"uid"`
	Name     string               `json:"name"`
	Settings []channelSettingWire `json:"settings"`
}

func (d *DeviceMgr) handleModeCreate(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	var mw modeWire
	if err := json.Unmarshal(p.Body, &mw); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	m := &mode.Mode{
		UID:      mw.UID,
		Name:     mw.Name,
		Settings: make(map[device.ChannelKey]setting.Setting, len(mw.Settings)),
	}
	for _, s := range mw.Settings {
		m.Settings[device.ChannelKey{UID: s.DeviceUID, Channel: s.Channel}] = setting.Setting{
			Kind: setting.Kind(s.Kind), Duty: s.Duty, ProfileUID: s.ProfileUID,
		}
	}
	if err := d.store.PutMode(m); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	d.modes.Put(m)
	respondJSON(ctx, req, m)
}

func (d *DeviceMgr) handleModeActivate(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	results, event, err := d.modes.Activate(ctx, p.UID)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrComponentNotFound, err.Error())
		return
	}
	data, merr := json.Marshal(event)
	if merr == nil {
		_ = d.nc.Publish(ipc.SubjectEventMode, data)
	}
	respondJSON(ctx, req, results)
}

func (d *DeviceMgr) handleModeDelete(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := d.store.DeleteMode(p.UID); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	d.modes.Delete(p.UID)
	respondJSON(ctx, req, map[string]string{"uid": p.UID})
}

func (d *DeviceMgr) handleAlertList(ctx context.Context, req micro.Request) {
	respondJSON(ctx, req, d.alerts.List())
}

func (d *DeviceMgr) handleAlertCreate(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	var a alert.Alert
	if err := json.Unmarshal(p.Body, &a); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := d.alerts.Put(ctx, &a); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	if err := d.store.PutAlert(&a); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	respondJSON(ctx, req, a)
}

func (d *DeviceMgr) handleAlertDelete(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := d.store.DeleteAlert(p.UID); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	d.alerts.Delete(p.UID)
	respondJSON(ctx, req, map[string]string{"uid": p.UID})
}

func (d *DeviceMgr) handleConfigGet(ctx context.Context, req micro.Request) {
	respondJSON(ctx, req, map[string]any{
		"general":           d.store.General(),
		"devices_blacklist": d.store.DevicesBlacklist(),
	})
}

func (d *DeviceMgr) handleConfigSave(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	var body struct {
		General          cfgstore.General               `json:"general"`
		DevicesBlacklist []cfgstore.DeviceBlacklistEntry `json:"devices_blacklist"`
	}
	if err := json.Unmarshal(p.Body, &body); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := d.store.SaveGeneral(body.General); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	if err := d.store.SaveDevicesBlacklist(body.DevicesBlacklist); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	respondJSON(ctx, req, body)
}

func (d *DeviceMgr) handleLogin(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	var body struct {
		Password string `json:"password"`
	}
	if err := json.Unmarshal(p.Body, &body); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if !d.credentials.VerifyPassword(body.Password) {
		ipc.RespondWithErrorCode(ctx, req, "401", ErrUnauthorized, "invalid password")
		return
	}
	token, expiresAt, err := d.credentials.IssueSession(DefaultSessionTTL)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	respondJSON(ctx, req, map[string]any{"token": token, "expires_at": expiresAt})
}

// handlePasswd changes the bootstrapped admin password (spec §6 POST
// /passwd). The caller must already hold a valid session (enforced by
// transport's session middleware) and must supply the current
// password, so a stolen-but-live cookie alone can't lock the real
// operator out.
func (d *DeviceMgr) handlePasswd(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.Unmarshal(p.Body, &body); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if !d.credentials.VerifyPassword(body.CurrentPassword) {
		ipc.RespondWithErrorCode(ctx, req, "401", ErrUnauthorized, "current password does not match")
		return
	}
	if body.NewPassword == "" {
		ipc.RespondWithErrorCode(ctx, req, "400", ErrInvalidRequestBody, "new_password must not be empty")
		return
	}
	if err := d.credentials.SetPassword(body.NewPassword); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrInternalError, err.Error())
		return
	}
	respondJSON(ctx, req, map[string]bool{"ok": true})
}

// handleSessionValid backs both GET /session/valid and the session
// middleware itself (service/transport): the signing key never leaves
// this process, so every cookie check is a round trip here.
func (d *DeviceMgr) handleSessionValid(ctx context.Context, req micro.Request) {
	p, err := decodeRequest(req)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	var body struct {
		Token string `json:"token"`
	}
	if len(p.Body) > 0 {
		if err := json.Unmarshal(p.Body, &body); err != nil {
			ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
			return
		}
	}
	respondJSON(ctx, req, map[string]bool{"valid": body.Token != "" && d.credentials.VerifySession(body.Token)})
}

// onTickSample samples every repository's devices, appends each status
// to the registry's bounded history, and rebroadcasts the aggregated
// status for history/setting/alert consumers and the HTTP/SSE
// transport (spec §4.9 steps 1-2). The scheduler sends this as a NATS
// request and waits for the reply below before starting the apply
// phase, so settings and alerts never evaluate against a tick's
// history before this handler has finished writing it.
func (d *DeviceMgr) onTickSample(parentCtx context.Context) func(*nats.Msg) {
	return func(msg *nats.Msg) {
		ctx := context.WithoutCancel(parentCtx)
		if msg.Reply != "" {
			defer func() { _ = msg.Respond(nil) }()
		}
		now := time.Now()
		for _, dev := range d.registry.List() {
			repo, ok := d.Repository(dev.UID)
			if !ok {
				continue
			}
			status, err := repo.Sample(ctx, dev)
			if err != nil {
				d.logger.WarnContext(ctx, "sample failed", "device", dev.UID, "error", err)
				continue
			}
			if status.Timestamp.IsZero() {
				status.Timestamp = now
			}
			d.registry.Append(dev.UID, status)

			evt := struct {
				UID    string        `json:"uid"`
				Status device.Status `json:"status"`
			}{UID: dev.UID, Status: status}
			if data, err := json.Marshal(evt); err == nil {
				_ = d.nc.Publish(ipc.SubjectEventStatus, data)
			}
		}
	}
}

// onTickApply re-applies every active setting and evaluates every
// alert against the status just sampled (spec §4.9 steps 3-6).
func (d *DeviceMgr) onTickApply(parentCtx context.Context) func(*nats.Msg) {
	return func(msg *nats.Msg) {
		ctx := context.WithoutCancel(parentCtx)
		writes := d.settings.Tick(ctx)
		for _, w := range writes {
			if w.Err != nil {
				d.logger.WarnContext(ctx, "setting apply failed", "device", w.DeviceUID, "channel", w.Channel, "error", w.Err)
			}
		}

		fired := d.alerts.Tick(ctx, d, time.Now())
		for _, entry := range fired {
			if data, err := json.Marshal(entry); err == nil {
				_ = d.nc.Publish(ipc.SubjectEventAlert, data)
			}
		}
	}
}
