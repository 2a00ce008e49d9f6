// SPDX-License-Identifier: BSD-3-Clause

// Package hwmon provides a comprehensive interface for interacting with the Linux hwmon (hardware monitoring)
// subsystem through sysfs. This package enables hardware-monitoring daemons and other
// applications to read sensor values, control fans, and manage hardware monitoring devices in a safe and
// efficient manner.
//
// # Overview
//
// The Linux hwmon subsystem exposes hardware monitoring devices through the sysfs filesystem under
// /sys/class/hwmon/. Each hwmon device typically represents a monitoring chip (temperature sensors,
// voltage sensors, fan controllers, etc.) and provides various attributes for reading sensor values
// and controlling device behavior.
//
// This package provides the following key features:
//   - Automatic discovery of hwmon devices by name and label
//   - Type-safe reading and writing of sensor values
//   - Context-aware operations with timeout support
//   - Configurable retry mechanisms and error handling
//   - Support for various sensor types (temperature, voltage, fan, power, etc.)
//   - Thread-safe operations for concurrent access
//   - Structured error handling with specific error types
//   - Comprehensive validation of sensor paths and values
//
// # Core Concepts
//
// Hwmon Device: A hardware monitoring device exposed by the kernel through sysfs. Each device
// has a unique hwmon number (e.g., hwmon0, hwmon1) and typically contains multiple sensors.
//
// Sensor: An individual monitoring point within a hwmon device. Sensors have types (temp, fan,
// voltage, etc.) and provide various attributes like input values, labels, limits, and alarms.
//
// Attribute: A specific property of a sensor exposed as a file in sysfs. Common attributes include:
//   - _input: Current sensor reading
//   - _label: Human-readable sensor name
//   - _min/_max: Minimum/maximum thresholds
//   - _crit: Critical threshold
//   - _alarm: Alarm status
//   - _enable: Enable/disable sensor
//
// Sensor Path: The complete sysfs path to a sensor attribute, constructed from the hwmon device
// path and the specific attribute file.
//
// # Basic Usage
//
// Reading a temperature sensor:
//
//	ctx := context.Background()
//	discoverer := NewDiscoverer()
//
//	device, err := discoverer.FindDevice(ctx, "k10temp")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sensor, err := device.GetSensorByLabel(ctx, "Tctl")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	path, err := sensor.GetAttributePath(AttributeInput)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	raw, err := ReadIntCtx(ctx, path)
//	if err != nil {
//		log.Printf("Failed to read sensor: %v", err)
//		return
//	}
//
//	temp := NewTemperatureValue(int64(raw))
//	fmt.Printf("CPU temperature: %.1f°C\n", temp.Celsius())
//
// Discovering all temperature sensors:
//
//	sensors, err := discoverer.DiscoverSensors(ctx, SensorTypeTemperature)
//	if err != nil {
//		log.Printf("Discovery failed: %v", err)
//		return
//	}
//
//	for _, sensor := range sensors {
//		path, err := sensor.GetAttributePath(AttributeInput)
//		if err != nil {
//			continue
//		}
//		raw, err := ReadIntCtx(ctx, path)
//		if err != nil {
//			continue
//		}
//		fmt.Printf("%s: %.1f°C\n", sensor.Label, NewTemperatureValue(int64(raw)).Celsius())
//	}
//
// Controlling a fan:
//
//	device, err := discoverer.FindDevice(ctx, "nct6775")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	pwm, err := device.GetSensorByTypeAndIndex(ctx, SensorTypePWM, 1)
//	if err != nil || !pwm.Writable {
//		log.Fatal("pwm1 is not writable")
//	}
//
//	// The bare pwm1 file is recorded under AttributeInput
//	path, _ := pwm.GetAttributePath(AttributeInput)
//
//	// Set fan to 50% duty (127 of 255)
//	if err := WriteIntCtx(ctx, path, 127); err != nil {
//		log.Printf("Failed to set fan speed: %v", err)
//	}
//
// # Device Discovery
//
// The package provides automatic discovery of hwmon devices and sensors:
//
//	discoverer := NewDiscoverer(
//		WithDiscoveryPath("/sys/class/hwmon"),
//		WithDiscoveryTimeout(10*time.Second),
//	)
//
//	// Find device by name
//	device, err := discoverer.FindDevice(ctx, "k10temp")
//	if err != nil {
//		log.Printf("Device not found: %v", err)
//		return
//	}
//
//	// Get all sensors for the device
//	sensors, err := device.GetSensors(ctx)
//	if err != nil {
//		log.Printf("Failed to get sensors: %v", err)
//		return
//	}
//
// # Sensor Types and Values
//
// The package supports various sensor types with type-safe value handling:
//
//	// Temperature sensors (millidegree Celsius)
//	tempValue := value.AsTemperature()
//	fmt.Printf("Temperature: %.1f°C\n", tempValue.Celsius())
//
//	// Voltage sensors (millivolts)
//	voltageValue := value.AsVoltage()
//	fmt.Printf("Voltage: %.3fV\n", voltageValue.Volts())
//
//	// Fan sensors (RPM)
//	fanValue := value.AsFan()
//	fmt.Printf("Fan speed: %d RPM\n", fanValue.RPM())
//
//	// Power sensors (microwatts)
//	powerValue := value.AsPower()
//	fmt.Printf("Power: %.2fW\n", powerValue.Watts())
//
// # Configuration and Options
//
// Comprehensive configuration support for various use cases:
//
//	config := NewConfig(
//		WithDevice("acpi-0"),
//		WithSensorIndex(1),  // Use temp1_input instead of label
//		WithSensorType(SensorTypeTemperature),
//		WithTimeout(5*time.Second),
//		WithRetry(3, 100*time.Millisecond),
//		WithValidation(true),
//		WithCaching(true, 1*time.Second),
//	)
//
// # Error Handling
//
// The package provides structured error handling with specific error types:
//
//	device, err := discoverer.FindDevice(ctx, "k10temp")
//	if err != nil {
//		switch {
//		case errors.Is(err, ErrDeviceNotFound):
//			log.Printf("Hwmon device not found")
//		default:
//			log.Printf("Unexpected error: %v", err)
//		}
//		return
//	}
//
//	sensor, err := device.GetSensorByLabel(ctx, "Tctl")
//	if errors.Is(err, ErrSensorNotFound) {
//		log.Printf("Sensor not found on device")
//		return
//	}
//
//	path, _ := sensor.GetAttributePath(AttributeInput)
//	raw, err := ReadIntCtx(ctx, path)
//	if err != nil {
//		switch {
//		case errors.Is(err, ErrOperationTimeout):
//			log.Printf("Read operation timed out")
//		case errors.Is(err, ErrInvalidValue):
//			log.Printf("Invalid sensor value read")
//		case errors.Is(err, ErrFileNotFound):
//			log.Printf("Sensor file no longer exists")
//		case errors.Is(err, ErrPermissionDenied):
//			log.Printf("Permission denied accessing sensor")
//		default:
//			log.Printf("Read error: %v", err)
//		}
//		return
//	}
//
// # Thread Safety
//
// All operations in this package are thread-safe. Multiple goroutines can safely:
//   - Read from the same or different sensors simultaneously
//   - Perform device discovery operations concurrently
//   - Access sensor metadata and configuration
//   - Write to different sensors (writes to the same sensor should be coordinated by the caller)
//
// The implementation uses appropriate synchronization mechanisms to ensure data consistency
// while allowing concurrent access where safe.
//
// # Sensor Repository Integration
//
// This package is designed specifically for hardware-monitoring daemons where sampling latency is critical:
//
// Temperature Monitoring: Monitor CPU, GPU, motherboard, and ambient temperatures for thermal
// management and protection.
//
//	tempSensors, _ := discoverer.DiscoverSensors(ctx, SensorTypeTemperature)
//	for _, sensor := range tempSensors {
//		path, _ := sensor.GetAttributePath(AttributeInput)
//		raw, _ := ReadIntCtx(ctx, path)
//		temp := NewTemperatureValue(int64(raw))
//		if temp.Celsius() > 85.0 {
//			// Trigger thermal protection
//		}
//	}
//
// Fan Control: Monitor and control system fans for cooling optimization.
//
//	pwmSensors, _ := discoverer.DiscoverSensors(ctx, SensorTypePWM)
//	for _, sensor := range pwmSensors {
//		if sensor.Writable {
//			// Implement fan curve based on temperature
//			duty := calculateDuty(currentTemp)
//			path, _ := sensor.GetAttributePath(AttributeInput)
//			WriteIntCtx(ctx, path, duty)
//		}
//	}
//
// Power Monitoring: Track power consumption for efficiency and protection.
//
//	powerSensors, _ := discoverer.DiscoverSensors(ctx, SensorTypePower)
//	totalPower := 0.0
//	for _, sensor := range powerSensors {
//		path, _ := sensor.GetAttributePath(AttributeInput)
//		raw, _ := ReadIntCtx(ctx, path)
//		totalPower += NewPowerValue(int64(raw)).Watts()
//	}
//
// Voltage Monitoring: Monitor power rail voltages for stability.
//
//	voltageSensors, _ := discoverer.DiscoverSensors(ctx, SensorTypeVoltage)
//	for _, sensor := range voltageSensors {
//		path, _ := sensor.GetAttributePath(AttributeInput)
//		raw, _ := ReadIntCtx(ctx, path)
//		voltage := NewVoltageValue(int64(raw))
//		if voltage.Volts() < 11.4 || voltage.Volts() > 12.6 {
//			// Voltage out of acceptable range
//		}
//	}
//
// # Performance Considerations
//
// The package includes several performance optimizations:
//   - Optional caching of discovery results to reduce sysfs scans
//   - Efficient device discovery with early termination
//   - Minimal memory allocations during normal operations
//   - Context-aware operations that can be canceled
//   - Configurable retry mechanisms to handle transient errors
//
// Sensor values are always read from sysfs; the Config caching fields are
// validated but no read path consults them. For repeated lookups, enable
// the discovery cache:
//
//	discoverer := NewDiscoverer(
//		WithDiscoveryCache(true, 30*time.Second),
//	)
//
// # Integration with Other Packages
//
// This package is designed to integrate seamlessly with other coolerd packages:
//
//	// Integration with the alert state machine for thermal management
//	alertSM, _ := state.NewAlertStateMachine("cpu-overheat")
//	_ = alertSM.Start(ctx)
//
//	go func() {
//		for {
//			raw, _ := hwmon.ReadIntCtx(ctx, tempPath)
//			celsius := hwmon.NewTemperatureValue(int64(raw)).Celsius()
//
//			switch {
//			case celsius > 90 && alertSM.IsInState(state.AlertStateInactive):
//				alertSM.Fire(ctx, state.AlertTriggerBreach)
//			case celsius < 80 && alertSM.IsInState(state.AlertStateActive):
//				alertSM.Fire(ctx, state.AlertTriggerRecover)
//			}
//
//			time.Sleep(1 * time.Second)
//		}
//	}()
package hwmon
