// SPDX-License-Identifier: BSD-3-Clause

package mode

import "errors"

// ErrModeNotFound indicates a reference to an unknown mode UID.
var ErrModeNotFound = errors.New("mode not found")
