// SPDX-License-Identifier: BSD-3-Clause

package liquidctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/repository"
)

// helperDevice is one entry of the helper's GET /devices response.
type helperDevice struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Driver   string          `json:"driver"`
	Channels []helperChannel `json:"channels"`
}

// helperChannel describes one actuator or lighting channel the helper
// exposes for a device.
type helperChannel struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"` // "fan", "pump", "lighting", "lcd"
	MinDuty int    `json:"min_duty"`
	MaxDuty int    `json:"max_duty"`
}

// helperStatus is the helper's GET /devices/{id}/status response.
type helperStatus struct {
	Temps  []helperTemp    `json:"temps"`
	Speeds []helperReading `json:"speeds"`
}

type helperTemp struct {
	Name  string  `json:"name"`
	Value float32 `json:"value"`
}

type helperReading struct {
	Channel string   `json:"channel"`
	Duty    *float64 `json:"duty,omitempty"`
	RPM     *int     `json:"rpm,omitempty"`
}

// Repository talks to the liquidctl helper over a Unix-domain HTTP
// socket. The helper owns USB enumeration and the vendor protocol;
// this package is authoritative for policy (which duty to apply) and
// translates it into the helper's JSON request schema.
type Repository struct {
	config *config
	client *http.Client

	mu        sync.Mutex
	helperIDs map[string]string // device UID -> helper device id

	backoffUntil time.Time
	backoffDelay time.Duration
}

// New creates a liquidctl Repository.
func New(opts ...Option) *Repository {
	cfg := &config{
		socketPath:     DefaultSocketPath,
		requestTimeout: DefaultRequestTimeout,
		minBackoff:     DefaultMinBackoff,
		maxBackoff:     DefaultMaxBackoff,
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}

	r := &Repository{
		config:    cfg,
		helperIDs: make(map[string]string),
	}
	r.client = &http.Client{
		Timeout: cfg.requestTimeout,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", cfg.socketPath)
			},
		},
	}
	return r
}

// Name implements repository.Repository.
func (r *Repository) Name() string { return "liquidctl" }

// Initialize implements repository.Repository.
func (r *Repository) Initialize(ctx context.Context) ([]*device.Device, error) {
	var helperDevices []helperDevice
	if err := r.getJSON(ctx, "/devices", &helperDevices); err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrDiscoveryFailed, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*device.Device, 0, len(helperDevices))
	for i, hd := range helperDevices {
		uid := device.DeriveUID(device.TypeLiquidctl, hd.Driver, hd.ID)
		r.helperIDs[uid] = hd.ID

		info := make(map[string]device.ChannelInfo, len(hd.Channels))
		for _, ch := range hd.Channels {
			if ch.Kind == "fan" || ch.Kind == "pump" {
				info[ch.Name] = device.ChannelInfo{
					Label: ch.Name,
					Speed: &device.SpeedOptions{
						MinDuty: ch.MinDuty, MaxDuty: ch.MaxDuty,
						FixedEnabled: true, ProfilesEnabled: true, ManualProfilesEnabled: true,
					},
				}
			} else {
				info[ch.Name] = device.ChannelInfo{Label: ch.Name}
			}
		}

		out = append(out, &device.Device{
			UID:       uid,
			Name:      hd.Name,
			Type:      device.TypeLiquidctl,
			TypeIndex: i,
			Info:      info,
			LcInfo:    &device.LcInfo{DriverType: hd.Driver},
		})
	}
	return out, nil
}

// Sample implements repository.Repository.
func (r *Repository) Sample(ctx context.Context, d *device.Device) (device.Status, error) {
	r.mu.Lock()
	helperID, ok := r.helperIDs[d.UID]
	r.mu.Unlock()
	if !ok {
		return device.Status{}, fmt.Errorf("%w: %s", device.ErrDeviceNotFound, d.UID)
	}

	var hs helperStatus
	if err := r.getJSON(ctx, "/devices/"+helperID+"/status", &hs); err != nil {
		// Per spec §8: an unreachable helper yields an absent sample
		// for its devices, not a hard repository failure.
		return device.Status{}, nil
	}

	status := device.Status{}
	for _, t := range hs.Temps {
		status.Temps = append(status.Temps, device.TempReading{Name: t.Name, Temp: t.Value})
	}
	for _, s := range hs.Speeds {
		status.Channels = append(status.Channels, device.ChannelReading{Name: s.Channel, Duty: s.Duty, RPM: s.RPM})
	}
	return status, nil
}

// Apply implements repository.Repository.
func (r *Repository) Apply(ctx context.Context, d *device.Device, req repository.ApplyRequest) error {
	r.mu.Lock()
	helperID, ok := r.helperIDs[d.UID]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrDeviceNotFound, d.UID)
	}

	ch, ok := d.Info[req.Channel]
	if !ok || ch.Speed == nil {
		return fmt.Errorf("%w: %s", repository.ErrUnsupportedChannel, req.Channel)
	}

	if req.Duty == nil {
		return r.postJSON(ctx, fmt.Sprintf("/devices/%s/channels/%s/reset", helperID, req.Channel), nil)
	}
	if *req.Duty < ch.Speed.MinDuty || *req.Duty > ch.Speed.MaxDuty {
		return fmt.Errorf("%w: %d", repository.ErrOutOfRange, *req.Duty)
	}
	body := struct {
		Duty int `json:"duty"`
	}{Duty: *req.Duty}
	return r.postJSON(ctx, fmt.Sprintf("/devices/%s/channels/%s/speed", helperID, req.Channel), body)
}

// Shutdown implements repository.Repository: the helper process owns
// USB device lifetime and resets its own devices on exit, so there is
// nothing for this client to restore.
func (r *Repository) Shutdown(_ context.Context) error { return nil }

// getJSON performs a GET against the helper socket, honoring the
// reconnect backoff window on repeated failures (spec §8: min 500ms,
// max 30s exponential backoff).
func (r *Repository) getJSON(ctx context.Context, path string, out any) error {
	if err := r.checkBackoff(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://liqctld"+path, nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		r.recordFailure()
		return fmt.Errorf("%w: %w", ErrHelperUnreachable, err)
	}
	defer resp.Body.Close()
	r.recordSuccess()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrHelperResponse, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (r *Repository) postJSON(ctx context.Context, path string, body any) error {
	if err := r.checkBackoff(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://liqctld"+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		r.recordFailure()
		return fmt.Errorf("%w: %w", repository.ErrDriverError, err)
	}
	defer resp.Body.Close()
	r.recordSuccess()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", repository.ErrDriverError, resp.StatusCode)
	}
	return nil
}

func (r *Repository) checkBackoff() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Now().Before(r.backoffUntil) {
		return ErrHelperUnreachable
	}
	return nil
}

func (r *Repository) recordFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.backoffDelay == 0 {
		r.backoffDelay = r.config.minBackoff
	} else {
		r.backoffDelay *= 2
		if r.backoffDelay > r.config.maxBackoff {
			r.backoffDelay = r.config.maxBackoff
		}
	}
	r.backoffUntil = time.Now().Add(r.backoffDelay)
}

func (r *Repository) recordSuccess() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backoffDelay = 0
	r.backoffUntil = time.Time{}
}

var _ repository.Repository = (*Repository)(nil)
