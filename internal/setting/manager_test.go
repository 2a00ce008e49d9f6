// SPDX-License-Identifier: BSD-3-Clause

package setting

import (
	"context"
	"testing"

	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/function"
	"github.com/coolercontrol/coolerd/internal/profile"
	"github.com/coolercontrol/coolerd/internal/repository"
)

type fakeDevices struct{ d *device.Device }

func (f fakeDevices) Device(uid string) (*device.Device, bool) {
	if f.d.UID == uid {
		return f.d, true
	}
	return nil, false
}

type fakeRepo struct {
	name   string
	writes []repository.ApplyRequest
}

func (r *fakeRepo) Name() string { return r.name }
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

func TestManualWriteOnChangeOnly(t *testing.T) {
	ctx := context.Background()
	dev := &device.Device{UID: "hwmon-abc", Type: device.TypeHwmon}
	repo := &fakeRepo{name: "hwmon"}

	mgr := NewManager(fakeDevices{dev}, fakeRepos{repo}, fakeProfiles{}, fakeFunctions{}, fakeTemps{})
	c, err := mgr.EnsureController(ctx, dev.UID, "pump")
	if err != nil {
		t.Fatalf("EnsureController: %v", err)
	}
	if err := c.ApplyManual(ctx, 40); err != nil {
		t.Fatalf("ApplyManual: %v", err)
	}

	for i := 0; i < 5; i++ {
		mgr.Tick(ctx)
	}

	if len(repo.writes) != 1 {
		t.Fatalf("expected exactly one write across 5 ticks, got %d: %+v", len(repo.writes), repo.writes)
	}
	if *repo.writes[0].Duty != 40 {
		t.Fatalf("expected duty 40, got %v", *repo.writes[0].Duty)
	}
}

func TestProfileDriveGraphWithEMA(t *testing.T) {
	ctx := context.Background()
	dev := &device.Device{UID: "hwmon-abc", Type: device.TypeHwmon}
	repo := &fakeRepo{name: "hwmon"}

	fn := &function.Function{UID: "fn1", Type: function.TypeEMA, TauS: 0, SampleWindow: 0}
	p := &profile.Profile{
		UID: "p1", Type: profile.TypeGraph, MaxDuty: 100,
		SpeedProfile: []profile.Point{{TempC: 30, Duty: 20}, {TempC: 60, Duty: 80}},
		FunctionUID:  "fn1",
		TempSource:   &profile.TempSource{DeviceUID: dev.UID, TempName: "coolant"},
	}

	mgr := NewManager(fakeDevices{dev}, fakeRepos{repo}, fakeProfiles{"p1": p}, fakeFunctions{"fn1": fn}, fakeTemps{})
	c, err := mgr.EnsureController(ctx, dev.UID, "pump")
	if err != nil {
		t.Fatalf("EnsureController: %v", err)
	}
	if err := c.ApplyProfile(ctx, "p1"); err != nil {
		t.Fatalf("ApplyProfile: %v", err)
	}

	temps := fakeTemps{dev.UID + "/coolant": 30}
	mgr.temps = temps
	mgr.Tick(ctx)

	temps[dev.UID+"/coolant"] = 45
	mgr.Tick(ctx)

	temps[dev.UID+"/coolant"] = 60
	mgr.Tick(ctx)

	var got []int
	for _, w := range repo.writes {
		got = append(got, *w.Duty)
	}
	want := []int{20, 50, 80}
	if len(got) != len(want) {
		t.Fatalf("expected %d writes, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("write %d: got %v, want %v (all: %v)", i, got[i], want[i], got)
		}
	}
}
