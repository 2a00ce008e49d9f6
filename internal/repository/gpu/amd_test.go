// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/repository"
	"github.com/coolercontrol/coolerd/pkg/hwmon"
)

func fixtureAMDDevice(t *testing.T) (*amdDriver, string, string) {
	t.Helper()
	dir := t.TempDir()
	pwmPath := filepath.Join(dir, "pwm1")
	pwmEnablePath := filepath.Join(dir, "pwm1_enable")
	tempPath := filepath.Join(dir, "temp1_input")
	powerPath := filepath.Join(dir, "power1_input")
	for path, content := range map[string]string{
		pwmPath:       "128",
		pwmEnablePath: "2",
		tempPath:      "72000",
		powerPath:     "150000000",
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", path, err)
		}
	}

	hw := &hwmon.Device{
		Name: amdgpuDriver,
		Path: dir,
		Sensors: map[string]*hwmon.SensorInfo{
			"pwm1": {
				Name: "pwm1", Index: 1, Type: hwmon.SensorTypePWM, Writable: true,
				Attributes: map[hwmon.SensorAttribute]string{
					hwmon.AttributeInput:  pwmPath,
					hwmon.AttributeEnable: pwmEnablePath,
				},
			},
			"temp1": {
				Name: "temp1", Index: 1, Type: hwmon.SensorTypeTemperature,
				Attributes: map[hwmon.SensorAttribute]string{hwmon.AttributeInput: tempPath},
			},
			"power1": {
				Name: "power1", Index: 1, Type: hwmon.SensorTypePower,
				Attributes: map[hwmon.SensorAttribute]string{hwmon.AttributeInput: powerPath},
			},
		},
	}

	a := newAMDDriver(dir)
	uid := device.DeriveUID(device.TypeGPU, amdgpuDriver, dir)
	a.byUID[uid] = hw
	return a, uid, pwmEnablePath
}

func amdDevice(uid string) *device.Device {
	return &device.Device{
		UID: uid,
		Info: map[string]device.ChannelInfo{
			"pwm1":   {Speed: &device.SpeedOptions{MinDuty: 0, MaxDuty: 100}},
			"temp1":  {},
			"power1": {},
		},
	}
}

func TestAMDSampleReportsTempPowerAndDuty(t *testing.T) {
	a, uid, _ := fixtureAMDDevice(t)
	status, err := a.sample(context.Background(), amdDevice(uid))
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(status.Temps) != 1 || status.Temps[0].Temp != 72 {
		t.Fatalf("expected temp1=72, got %+v", status.Temps)
	}

	var sawDuty, sawWatts bool
	for _, c := range status.Channels {
		if c.Name == "pwm1" && c.Duty != nil {
			sawDuty = true
		}
		if c.Name == "power1" && c.Watts != nil {
			sawWatts = true
			if *c.Watts != 150 {
				t.Fatalf("expected 150 watts, got %v", *c.Watts)
			}
		}
	}
	if !sawDuty || !sawWatts {
		t.Fatalf("expected both a duty and a watts channel reading, got %+v", status.Channels)
	}
}

func TestAMDApplyTogglesManualMode(t *testing.T) {
	a, uid, pwmEnablePath := fixtureAMDDevice(t)
	duty := 50
	err := a.apply(context.Background(), amdDevice(uid), repository.ApplyRequest{Channel: "pwm1", Duty: &duty})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	raw, err := hwmon.ReadIntCtx(context.Background(), pwmEnablePath)
	if err != nil {
		t.Fatalf("ReadIntCtx: %v", err)
	}
	if raw != 1 {
		t.Fatalf("expected pwm1_enable=1 after a manual duty write, got %d", raw)
	}
}

func TestAMDApplyRejectsOutOfRangeDuty(t *testing.T) {
	a, uid, _ := fixtureAMDDevice(t)
	duty := 200
	err := a.apply(context.Background(), amdDevice(uid), repository.ApplyRequest{Channel: "pwm1", Duty: &duty})
	if err == nil {
		t.Fatal("expected ErrOutOfRange for duty 200")
	}
}
