// SPDX-License-Identifier: BSD-3-Clause

package setting

import (
	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/function"
	"github.com/coolercontrol/coolerd/internal/profile"
	"github.com/coolercontrol/coolerd/internal/repository"
)

// ProfileLookup resolves a Profile by UID. Implemented by whatever
// holds the config store's in-memory profile table.
type ProfileLookup interface {
	Profile(uid string) (*profile.Profile, bool)
}

// FunctionLookup resolves a Function by UID.
type FunctionLookup interface {
	Function(uid string) (*function.Function, bool)
}

// TempLookup resolves a device's latest sampled temperature reading by
// name, backed by the device.Registry's history.
type TempLookup interface {
	Temp(deviceUID, tempName string) (float32, bool)
}

// RepositoryLookup resolves the repository that owns a device UID, so
// the controller can route an actuator write without holding a direct
// reference to every driver instance.
type RepositoryLookup interface {
	Repository(deviceUID string) (repository.Repository, bool)
}

// DeviceLookup resolves a Device record by UID.
type DeviceLookup interface {
	Device(uid string) (*device.Device, bool)
}

// profileResolver adapts a ProfileLookup to profile.Resolver so the
// profile engine can walk Mix membership without importing setting.
type profileResolver struct {
	lookup ProfileLookup
}

func (r profileResolver) Resolve(uid string) (*profile.Profile, bool) {
	return r.lookup.Profile(uid)
}
