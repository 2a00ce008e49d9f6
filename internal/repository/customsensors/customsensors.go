// SPDX-License-Identifier: BSD-3-Clause

package customsensors

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/repository"
)

// Repository implements repository.Repository for File and Mix
// virtual sensors. There is no hardware underneath either kind, so
// Apply always fails with ErrUnsupportedChannel and Shutdown is a
// no-op.
type Repository struct {
	cfg *config

	mu    sync.Mutex
	files map[string]FileSensor // device UID -> sensor
	mixes map[string]MixSensor  // device UID -> sensor
}

// New creates a customsensors Repository.
func New(opts ...Option) *Repository {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Repository{
		cfg:   cfg,
		files: make(map[string]FileSensor),
		mixes: make(map[string]MixSensor),
	}
}

// Name implements repository.Repository.
func (r *Repository) Name() string { return "customsensors" }

// Initialize implements repository.Repository.
func (r *Repository) Initialize(_ context.Context) ([]*device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*device.Device
	idx := 0
	for _, f := range r.cfg.files {
		uid := device.DeriveUID(device.TypeCustomSensors, "file", f.UID)
		r.files[uid] = f
		out = append(out, &device.Device{
			UID: uid, Name: f.Name, Type: device.TypeCustomSensors, TypeIndex: idx,
			Info: map[string]device.ChannelInfo{f.Channel: {Label: f.Name}},
		})
		idx++
	}
	for _, m := range r.cfg.mixes {
		uid := device.DeriveUID(device.TypeCustomSensors, "mix", m.UID)
		r.mixes[uid] = m
		out = append(out, &device.Device{
			UID: uid, Name: m.Name, Type: device.TypeCustomSensors, TypeIndex: idx,
			Info: map[string]device.ChannelInfo{m.Channel: {Label: m.Name}},
		})
		idx++
	}
	return out, nil
}

// Sample implements repository.Repository.
func (r *Repository) Sample(_ context.Context, d *device.Device) (device.Status, error) {
	r.mu.Lock()
	f, isFile := r.files[d.UID]
	m, isMix := r.mixes[d.UID]
	lookup := r.cfg.lookup
	r.mu.Unlock()

	switch {
	case isFile:
		value, err := readFileValue(f.Path)
		if err != nil {
			return device.Status{}, nil // absent this tick, not a fatal error
		}
		return device.Status{Temps: []device.TempReading{{Name: f.Channel, Temp: float32(value)}}}, nil
	case isMix:
		value, err := evaluateMix(m, lookup)
		if err != nil {
			return device.Status{}, nil
		}
		return device.Status{Temps: []device.TempReading{{Name: m.Channel, Temp: float32(value)}}}, nil
	default:
		return device.Status{}, fmt.Errorf("%w: %s", device.ErrDeviceNotFound, d.UID)
	}
}

func readFileValue(path string) (float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
}

func evaluateMix(m MixSensor, lookup ChannelLookup) (float64, error) {
	if len(m.Members) == 0 {
		return 0, ErrNoMembers
	}
	if lookup == nil {
		return 0, ErrAllMembersAbsent
	}

	var values []float64
	var weights []float64
	for _, member := range m.Members {
		v, ok := lookup(member.DeviceUID, member.Channel)
		if !ok {
			continue
		}
		values = append(values, v)
		weights = append(weights, member.Weight)
	}
	if len(values) == 0 {
		return 0, ErrAllMembersAbsent
	}

	switch m.Function {
	case MixMin:
		result := values[0]
		for _, v := range values[1:] {
			if v < result {
				result = v
			}
		}
		return result, nil
	case MixMax:
		result := values[0]
		for _, v := range values[1:] {
			if v > result {
				result = v
			}
		}
		return result, nil
	case MixWeightedAvg:
		var sum, weightSum float64
		for i, v := range values {
			sum += v * weights[i]
			weightSum += weights[i]
		}
		if weightSum == 0 {
			return 0, ErrAllMembersAbsent
		}
		return sum / weightSum, nil
	case MixAvg:
		fallthrough
	default:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values)), nil
	}
}

// Apply implements repository.Repository: custom sensors are
// read-only derived channels, never actuators.
func (r *Repository) Apply(_ context.Context, _ *device.Device, req repository.ApplyRequest) error {
	return fmt.Errorf("%w: %s", repository.ErrUnsupportedChannel, req.Channel)
}

// Shutdown implements repository.Repository.
func (r *Repository) Shutdown(_ context.Context) error { return nil }

var _ repository.Repository = (*Repository)(nil)
