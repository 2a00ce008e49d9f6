// SPDX-License-Identifier: BSD-3-Clause

package customsensors

// MixFunction selects how a Mix sensor's members are combined.
type MixFunction string

const (
	MixMin         MixFunction = "min"
	MixMax         MixFunction = "max"
	MixAvg         MixFunction = "avg"
	MixWeightedAvg MixFunction = "weighted_avg"
)

// MemberRef names one channel a Mix sensor reads from.
type MemberRef struct {
	DeviceUID string
	Channel   string
	// Weight is only consulted for MixWeightedAvg; zero weight excludes
	// the member from both the numerator and denominator.
	Weight float64
}

// FileSensor reads a plain-text number from Path on every tick.
type FileSensor struct {
	UID     string
	Name    string
	Channel string
	Path    string
}

// MixSensor combines readings from other devices' channels.
type MixSensor struct {
	UID      string
	Name     string
	Channel  string
	Function MixFunction
	Members  []MemberRef
}

// ChannelLookup resolves a device UID and channel name to the latest
// sampled reading. internal/devicemgr supplies this bound to its
// device.Registry so Mix sensors can see other repositories' output
// without this package importing devicemgr (which would cycle back).
type ChannelLookup func(deviceUID, channel string) (value float64, ok bool)

type config struct {
	files  []FileSensor
	mixes  []MixSensor
	lookup ChannelLookup
}

// Option configures a Repository.
type Option func(*config)

// WithFileSensors registers File-kind sensors.
func WithFileSensors(sensors ...FileSensor) Option {
	return func(c *config) { c.files = append(c.files, sensors...) }
}

// WithMixSensors registers Mix-kind sensors.
func WithMixSensors(sensors ...MixSensor) Option {
	return func(c *config) { c.mixes = append(c.mixes, sensors...) }
}

// WithLookup supplies the channel reading lookup Mix sensors depend on.
func WithLookup(lookup ChannelLookup) Option {
	return func(c *config) { c.lookup = lookup }
}
