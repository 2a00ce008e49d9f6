// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "errors"

var (
	// ErrNvidiaToolMissing indicates nvidia-smi or nvidia-settings could
	// not be found on PATH.
	ErrNvidiaToolMissing = errors.New("nvidia management tool not found")
	// ErrNvidiaQueryFailed indicates nvidia-smi returned an error or
	// output this package could not parse.
	ErrNvidiaQueryFailed = errors.New("nvidia-smi query failed")
	// ErrFanControlPolicyUnsupported indicates a fan control policy
	// toggle was requested for a device that does not support it.
	ErrFanControlPolicyUnsupported = errors.New("fan control policy unsupported")
)
