// SPDX-License-Identifier: BSD-3-Clause

package mode

import (
	"context"
	"testing"

	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/function"
	"github.com/coolercontrol/coolerd/internal/profile"
	"github.com/coolercontrol/coolerd/internal/repository"
	"github.com/coolercontrol/coolerd/internal/setting"
)

type fakeDevices struct{ d *device.Device }

func (f fakeDevices) Device(uid string) (*device.Device, bool) {
	if f.d.UID == uid {
		return f.d, true
	}
	return nil, false
}

type fakeRepo struct{ writes []repository.ApplyRequest }

func (r *fakeRepo) Name() string { return "hwmon" }
func (r *fakeRepo) Initialize(ctx context.Context) ([]*device.Device, error) { return nil, nil }
func (r *fakeRepo) Sample(ctx context.Context, d *device.Device) (device.Status, error) {
	return device.Status{}, nil
}
func (r *fakeRepo) Apply(ctx context.Context, d *device.Device, req repository.ApplyRequest) error {
	r.writes = append(r.writes, req)
	return nil
}
func (r *fakeRepo) Shutdown(ctx context.Context) error { return nil }

type fakeRepos struct{ repo *fakeRepo }

func (f fakeRepos) Repository(deviceUID string) (repository.Repository, bool) { return f.repo, true }

type fakeProfiles map[string]*profile.Profile

func (f fakeProfiles) Profile(uid string) (*profile.Profile, bool) { p, ok := f[uid]; return p, ok }

type fakeFunctions map[string]*function.Function

func (f fakeFunctions) Function(uid string) (*function.Function, bool) { fn, ok := f[uid]; return fn, ok }

type fakeTemps map[string]float32

func (f fakeTemps) Temp(deviceUID, tempName string) (float32, bool) {
	v, ok := f[deviceUID+"/"+tempName]
	return v, ok
}

func TestActivateAppliesEveryChannel(t *testing.T) {
	ctx := context.Background()
	dev := &device.Device{UID: "hwmon-1", Type: device.TypeHwmon}
	repo := &fakeRepo{}

	sm := setting.NewManager(fakeDevices{dev}, fakeRepos{repo}, fakeProfiles{}, fakeFunctions{}, fakeTemps{})
	mc := NewController(sm)

	m := &Mode{
		UID:  "silent",
		Name: "Silent",
		Settings: map[device.ChannelKey]setting.Setting{
			{UID: dev.UID, Channel: "fan1"}: {Kind: setting.KindManual, Duty: 30},
			{UID: dev.UID, Channel: "fan2"}: {Kind: setting.KindManual, Duty: 35},
		},
	}
	mc.Put(m)

	results, event, err := mc.Activate(ctx, "silent")
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 activation results, got %d", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("channel %v: unexpected error %v", r.Key, r.Err)
		}
	}
	if event.UID != "silent" || event.PreviousUID != "" {
		t.Fatalf("unexpected event: %+v", event)
	}

	sm.Tick(ctx)
	if len(repo.writes) != 2 {
		t.Fatalf("expected 2 writes after activation tick, got %d", len(repo.writes))
	}
}

func TestActivateUnknownModeErrors(t *testing.T) {
	dev := &device.Device{UID: "hwmon-1", Type: device.TypeHwmon}
	repo := &fakeRepo{}
	sm := setting.NewManager(fakeDevices{dev}, fakeRepos{repo}, fakeProfiles{}, fakeFunctions{}, fakeTemps{})
	mc := NewController(sm)

	if _, _, err := mc.Activate(context.Background(), "missing"); err != ErrModeNotFound {
		t.Fatalf("expected ErrModeNotFound, got %v", err)
	}
}
