// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/repository"
)

const (
	tempChannel  = "gpu"
	powerChannel = "power"
	loadChannel  = "load"
	fanPrefix    = "fan"
)

// nvidiaDriver reads and controls NVIDIA GPUs through the nvidia-smi
// and nvidia-settings CLIs. Fan writes require the card's driver to
// already be in manual fan control policy; nvidia-settings is also
// used to flip that policy, matching the vendor tool's own split
// between the query path (nvidia-smi) and the control path
// (nvidia-settings).
type nvidiaDriver struct {
	smiPath      string
	settingsPath string

	mu    sync.Mutex
	index map[string]int // device UID -> nvidia-smi GPU index
	fans  map[string]int // device UID -> number of controllable fans
}

func newNvidiaDriver() *nvidiaDriver {
	return &nvidiaDriver{
		smiPath:      "nvidia-smi",
		settingsPath: "nvidia-settings",
		index:        make(map[string]int),
		fans:         make(map[string]int),
	}
}

// discover queries nvidia-smi for every visible GPU. A missing binary
// is not an error: the host simply has no NVIDIA card bound to the
// proprietary driver.
func (n *nvidiaDriver) discover(ctx context.Context, startIndex int) ([]*device.Device, error) {
	if _, err := exec.LookPath(n.smiPath); err != nil {
		return nil, nil
	}

	out, err := exec.CommandContext(ctx, n.smiPath,
		"--query-gpu=index,name,fan.count",
		"--format=csv,noheader,nounits",
	).Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNvidiaQueryFailed, err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	var devices []*device.Device
	typeIdx := startIndex
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ",")
		if len(fields) < 2 {
			continue
		}
		gpuIndex, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			continue
		}
		name := strings.TrimSpace(fields[1])
		fanCount := 0
		if len(fields) >= 3 {
			fanCount, _ = strconv.Atoi(strings.TrimSpace(fields[2]))
		}

		uid := device.DeriveUID(device.TypeGPU, "nvidia", strconv.Itoa(gpuIndex))
		info := map[string]device.ChannelInfo{
			tempChannel:  {Label: "GPU"},
			powerChannel: {Label: "Power"},
			loadChannel:  {Label: "Load"},
		}
		for i := 0; i < fanCount; i++ {
			info[fmt.Sprintf("%s%d", fanPrefix, i)] = device.ChannelInfo{
				Label: fmt.Sprintf("Fan %d", i),
				Speed: &device.SpeedOptions{
					MinDuty: 0, MaxDuty: 100,
					FixedEnabled: true, ProfilesEnabled: true, ManualProfilesEnabled: true,
				},
			}
		}

		n.index[uid] = gpuIndex
		n.fans[uid] = fanCount
		devices = append(devices, &device.Device{
			UID: uid, Name: name, Type: device.TypeGPU, TypeIndex: typeIdx, Info: info,
		})
		typeIdx++
	}
	return devices, nil
}

func (n *nvidiaDriver) owns(uid string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.index[uid]
	return ok
}

func (n *nvidiaDriver) sample(ctx context.Context, d *device.Device) (device.Status, error) {
	n.mu.Lock()
	idx, ok := n.index[d.UID]
	n.mu.Unlock()
	if !ok {
		return device.Status{}, fmt.Errorf("%w: %s", device.ErrDeviceNotFound, d.UID)
	}

	out, err := exec.CommandContext(ctx, n.smiPath,
		"--id="+strconv.Itoa(idx),
		"--query-gpu=temperature.gpu,power.draw,utilization.gpu",
		"--format=csv,noheader,nounits",
	).Output()
	if err != nil {
		return device.Status{}, nil // query failure: absent sample this tick
	}

	fields := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(fields) < 3 {
		return device.Status{}, nil
	}

	var status device.Status
	if temp, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 32); err == nil {
		status.Temps = append(status.Temps, device.TempReading{Name: tempChannel, Temp: float32(temp)})
	}
	if watts, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64); err == nil {
		status.Channels = append(status.Channels, device.ChannelReading{Name: powerChannel, Watts: &watts})
	}
	if load, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64); err == nil {
		status.Channels = append(status.Channels, device.ChannelReading{Name: loadChannel, Duty: &load})
	}
	return status, nil
}

func (n *nvidiaDriver) apply(ctx context.Context, d *device.Device, req repository.ApplyRequest) error {
	n.mu.Lock()
	idx, ok := n.index[d.UID]
	n.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrDeviceNotFound, d.UID)
	}
	if !strings.HasPrefix(req.Channel, fanPrefix) {
		return fmt.Errorf("%w: %s", repository.ErrUnsupportedChannel, req.Channel)
	}
	fanIdx := strings.TrimPrefix(req.Channel, fanPrefix)

	if req.Duty == nil {
		return n.runSettings(ctx, fmt.Sprintf("[gpu:%d]/GPUFanControlState=0", idx))
	}
	if *req.Duty < 0 || *req.Duty > 100 {
		return fmt.Errorf("%w: %d", repository.ErrOutOfRange, *req.Duty)
	}
	if err := n.runSettings(ctx, fmt.Sprintf("[gpu:%d]/GPUFanControlState=1", idx)); err != nil {
		return err
	}
	return n.runSettings(ctx, fmt.Sprintf("[fan:%s]/GPUTargetFanSpeed=%d", fanIdx, *req.Duty))
}

func (n *nvidiaDriver) runSettings(ctx context.Context, assignment string) error {
	if _, err := exec.LookPath(n.settingsPath); err != nil {
		return fmt.Errorf("%w: %w", ErrNvidiaToolMissing, err)
	}
	if err := exec.CommandContext(ctx, n.settingsPath, "-a", assignment).Run(); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrDriverError, err)
	}
	return nil
}

func (n *nvidiaDriver) shutdown(ctx context.Context) error {
	n.mu.Lock()
	indices := make([]int, 0, len(n.index))
	for _, idx := range n.index {
		indices = append(indices, idx)
	}
	n.mu.Unlock()

	var firstErr error
	for _, idx := range indices {
		if err := n.runSettings(ctx, fmt.Sprintf("[gpu:%d]/GPUFanControlState=0", idx)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
