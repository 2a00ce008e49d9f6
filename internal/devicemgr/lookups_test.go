// SPDX-License-Identifier: BSD-3-Clause

package devicemgr

import (
	"context"
	"testing"

	"github.com/coolercontrol/coolerd/internal/alert"
	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/function"
	"github.com/coolercontrol/coolerd/internal/profile"
	"github.com/coolercontrol/coolerd/internal/repository"
)

type fakeRepo struct{ name string }

func (r *fakeRepo) Name() string { return r.name }
func (r *fakeRepo) Initialize(_ context.Context) ([]*device.Device, error) { return nil, nil }
func (r *fakeRepo) Sample(_ context.Context, _ *device.Device) (device.Status, error) {
	return device.Status{}, nil
}
func (r *fakeRepo) Apply(_ context.Context, _ *device.Device, _ repository.ApplyRequest) error {
	return nil
}
func (r *fakeRepo) Shutdown(_ context.Context) error { return nil }

var _ repository.Repository = (*fakeRepo)(nil)

func newTestMgr(t *testing.T) *DeviceMgr {
	t.Helper()
	d := New()
	d.registry = device.NewRegistry(16)
	return d
}

func TestDeviceAndRepositoryLookups(t *testing.T) {
	d := newTestMgr(t)
	dev := &device.Device{UID: "hwmon-0", Type: device.TypeHwmon}
	d.registry.Put(dev)
	d.repoByDevice[dev.UID] = &fakeRepo{name: "hwmon"}

	got, ok := d.Device(dev.UID)
	if !ok || got.UID != dev.UID {
		t.Fatalf("Device lookup failed, got %+v ok=%v", got, ok)
	}
	if _, ok := d.Device("missing"); ok {
		t.Fatal("expected Device lookup to fail for an unregistered UID")
	}

	repo, ok := d.Repository(dev.UID)
	if !ok || repo.Name() != "hwmon" {
		t.Fatalf("Repository lookup failed, got %+v ok=%v", repo, ok)
	}
}

func TestProfileAndFunctionLookups(t *testing.T) {
	d := newTestMgr(t)
	p := &profile.Profile{UID: "p1"}
	f := &function.Function{UID: "f1"}
	d.profiles[p.UID] = p
	d.functions[f.UID] = f

	if got, ok := d.Profile("p1"); !ok || got != p {
		t.Fatalf("Profile lookup failed, got %+v ok=%v", got, ok)
	}
	if _, ok := d.Profile("missing"); ok {
		t.Fatal("expected Profile lookup to fail for an unknown UID")
	}
	if got, ok := d.Function("f1"); !ok || got != f {
		t.Fatalf("Function lookup failed, got %+v ok=%v", got, ok)
	}
}

func TestTempLookup(t *testing.T) {
	d := newTestMgr(t)
	dev := &device.Device{UID: "cpu-0"}
	d.registry.Put(dev)
	d.registry.Append(dev.UID, device.Status{Temps: []device.TempReading{{Name: "cpu", Temp: 55.5}}})

	got, ok := d.Temp(dev.UID, "cpu")
	if !ok || got != 55.5 {
		t.Fatalf("expected Temp 55.5, got %v ok=%v", got, ok)
	}
	if _, ok := d.Temp(dev.UID, "missing"); ok {
		t.Fatal("expected Temp lookup to fail for an unknown channel")
	}
}

func TestChannelValueFallsBackFromTempToDuty(t *testing.T) {
	d := newTestMgr(t)
	dev := &device.Device{UID: "mix-source"}
	d.registry.Put(dev)
	duty := 0.75
	d.registry.Append(dev.UID, device.Status{
		Temps:    []device.TempReading{{Name: "liquid", Temp: 30}},
		Channels: []device.ChannelReading{{Name: "pump", Duty: &duty}},
	})

	if got, ok := d.ChannelValue(dev.UID, "liquid"); !ok || got != 30 {
		t.Fatalf("expected ChannelValue to resolve a temp reading, got %v ok=%v", got, ok)
	}
	if got, ok := d.ChannelValue(dev.UID, "pump"); !ok || got != 0.75 {
		t.Fatalf("expected ChannelValue to fall back to a duty reading, got %v ok=%v", got, ok)
	}
	if _, ok := d.ChannelValue(dev.UID, "missing"); ok {
		t.Fatal("expected ChannelValue to fail for an unknown channel")
	}
	if _, ok := d.ChannelValue("missing-device", "liquid"); ok {
		t.Fatal("expected ChannelValue to fail for an unknown device")
	}
}

func TestValueLookupByMetric(t *testing.T) {
	d := newTestMgr(t)
	dev := &device.Device{UID: "gpu-0"}
	d.registry.Put(dev)
	duty := 0.4
	rpm := 1200
	watts := 150.0
	d.registry.Append(dev.UID, device.Status{
		Temps:    []device.TempReading{{Name: "gpu", Temp: 72}},
		Channels: []device.ChannelReading{{Name: "fan1", Duty: &duty, RPM: &rpm, Watts: &watts}},
	})

	if got, ok := d.Value(dev.UID, "gpu", alert.MetricTemp); !ok || got != 72 {
		t.Fatalf("expected MetricTemp 72, got %v ok=%v", got, ok)
	}
	if got, ok := d.Value(dev.UID, "fan1", alert.MetricDuty); !ok || got != 0.4 {
		t.Fatalf("expected MetricDuty 0.4, got %v ok=%v", got, ok)
	}
	if got, ok := d.Value(dev.UID, "fan1", alert.MetricRPM); !ok || got != 1200 {
		t.Fatalf("expected MetricRPM 1200, got %v ok=%v", got, ok)
	}
	if got, ok := d.Value(dev.UID, "fan1", alert.MetricWatts); !ok || got != 150 {
		t.Fatalf("expected MetricWatts 150, got %v ok=%v", got, ok)
	}
	if _, ok := d.Value(dev.UID, "fan1", alert.MetricFreq); ok {
		t.Fatal("expected MetricFreq to be absent for a reading with no Freq set")
	}
}
