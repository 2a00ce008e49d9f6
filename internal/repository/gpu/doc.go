// SPDX-License-Identifier: BSD-3-Clause

// Package gpu is a repository.Repository covering discrete GPUs (spec
// §4.1). AMD cards are driven entirely through the amdgpu hwmon node
// under /sys/class/hwmon, reusing the pwm1_enable manual-mode
// convention the internal/repository/hwmon package already implements
// for motherboard super-I/O controllers. NVIDIA cards have no pure-Go
// management-library binding anywhere in this module's dependency
// tree, so this package shells out to the nvidia-smi/nvidia-settings
// CLIs shipped with the proprietary driver, the same pragmatic
// approach userspace fan-control tools take in the absence of a cgo
// NVML binding (see DESIGN.md for the tradeoff).
package gpu
